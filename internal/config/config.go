package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration. Everything has a default;
// the only optional piece is the Gemini credential, whose absence
// disables the advisory bridge without failing startup.
type Config struct {
	HTTP      HTTPConfig
	WebSocket WebSocketConfig
	Insights  InsightsConfig
	LogLevel  string
}

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type WebSocketConfig struct {
	// PingInterval is the liveness heartbeat period. There is no
	// missed-PONG reaper; this interval is the only liveness policy.
	PingInterval time.Duration
	WriteTimeout time.Duration
	BufferSize   int
}

type InsightsConfig struct {
	APIKey  string // empty disables the bridge
	Model   string // empty falls back to the client default
	BaseURL string // overridable for tests
	Timeout time.Duration
}

// Load reads configuration with precedence file > environment >
// defaults. path may point at a directory holding config.yaml; a
// missing file is not an error. GEMINI_API_KEY and PORT are honored
// alongside the CLASSPULSE_* names for compatibility with existing
// deployments.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 3000)
	v.SetDefault("http.read_timeout", "30s")
	v.SetDefault("http.write_timeout", "30s")
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.write_timeout", "10s")
	v.SetDefault("websocket.buffer_size", 100)
	v.SetDefault("insights.api_key", "")
	v.SetDefault("insights.model", "")
	v.SetDefault("insights.base_url", "")
	v.SetDefault("insights.timeout", "60s")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("CLASSPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("http.port", "CLASSPULSE_HTTP_PORT", "PORT")
	_ = v.BindEnv("insights.api_key", "CLASSPULSE_INSIGHTS_API_KEY", "GEMINI_API_KEY")

	if path != "" {
		v.AddConfigPath(path)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Host:         v.GetString("http.host"),
			Port:         v.GetInt("http.port"),
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
		},
		WebSocket: WebSocketConfig{
			PingInterval: v.GetDuration("websocket.ping_interval"),
			WriteTimeout: v.GetDuration("websocket.write_timeout"),
			BufferSize:   v.GetInt("websocket.buffer_size"),
		},
		Insights: InsightsConfig{
			APIKey:  v.GetString("insights.api_key"),
			Model:   v.GetString("insights.model"),
			BaseURL: v.GetString("insights.base_url"),
			Timeout: v.GetDuration("insights.timeout"),
		},
		LogLevel: v.GetString("log.level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot run.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.Host == "" {
		return fmt.Errorf("http host cannot be empty")
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("http timeouts must be positive")
	}
	if c.WebSocket.PingInterval <= 0 {
		return fmt.Errorf("websocket ping interval must be positive")
	}
	if c.WebSocket.WriteTimeout <= 0 {
		return fmt.Errorf("websocket write timeout must be positive")
	}
	if c.WebSocket.BufferSize <= 0 {
		return fmt.Errorf("websocket buffer size must be positive")
	}
	if c.Insights.Timeout <= 0 {
		return fmt.Errorf("insights timeout must be positive")
	}
	return nil
}
