package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"classpulse/internal/app"
	"classpulse/internal/config"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "classpulse",
		Short: "emotion-aware classroom backend",
	}
	root.AddCommand(serveCmd())
	return root
}

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "start the relay server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			level, err := zerolog.ParseLevel(cfg.LogLevel)
			if err != nil {
				level = zerolog.InfoLevel
			}
			logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

			application, err := app.NewApplication(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return application.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "directory containing config.yaml")
	return cmd
}
