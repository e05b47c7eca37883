// Package insights turns a classroom aggregate and a transcript excerpt
// into free-text teaching advice from an external text-generation
// service. The bridge is optional: without a credential at startup it
// is disabled end-to-end and answers every request with a fixed error.
package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"classpulse/pkg/types"
)

// Generator produces text for a prompt. Implemented by GeminiClient;
// tests substitute doubles.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Bridge formats prompts and forwards them to the generator.
type Bridge struct {
	gen Generator // nil means the bridge is disabled
	log zerolog.Logger
}

// NewBridge wraps a generator. Passing nil yields a disabled bridge.
func NewBridge(gen Generator, logger zerolog.Logger) *Bridge {
	return &Bridge{
		gen: gen,
		log: logger.With().Str("component", "insights").Logger(),
	}
}

// Enabled reports whether a generator was configured at startup.
func (b *Bridge) Enabled() bool { return b != nil && b.gen != nil }

// Advise builds the prompt and returns the service's response verbatim.
// Failures come back as errors for the caller to surface; they are
// never fatal.
func (b *Bridge) Advise(ctx context.Context, summary types.AggregateSummary, transcript string) (string, error) {
	if !b.Enabled() {
		return "", ErrNotConfigured
	}

	prompt := BuildPrompt(summary, transcript)
	text, err := b.gen.Generate(ctx, prompt)
	if err != nil {
		b.log.Error().Err(err).Msg("insights generation failed")
		return "", err
	}
	return text, nil
}

// BuildPrompt renders the aggregate and transcript into the advisory
// prompt. Only emotion categories with a non-zero value are listed;
// the transcript is included verbatim when non-blank.
func BuildPrompt(summary types.AggregateSummary, transcript string) string {
	var sb strings.Builder

	sb.WriteString("You are an AI teaching assistant analyzing classroom engagement data in real-time.\n\n")
	sb.WriteString("**Current Classroom Metrics:**\n")
	fmt.Fprintf(&sb, "- Total Students: %d\n", summary.TotalStudents)
	fmt.Fprintf(&sb, "- Active (cameras on): %d\n", summary.ActiveStudents)
	fmt.Fprintf(&sb, "- Engaged: %d%%\n", summary.Engaged)
	fmt.Fprintf(&sb, "- Confused: %d%%\n\n", summary.Confused)
	sb.WriteString("**Emotion Distribution:**")

	categories := []struct {
		name  string
		value int
	}{
		{"Happy", summary.Emotions.Happy},
		{"Sad", summary.Emotions.Sad},
		{"Angry", summary.Emotions.Angry},
		{"Fearful", summary.Emotions.Fearful},
		{"Surprised", summary.Emotions.Surprised},
		{"Disgusted", summary.Emotions.Disgusted},
		{"Neutral", summary.Emotions.Neutral},
	}
	for _, c := range categories {
		if c.value > 0 {
			fmt.Fprintf(&sb, "\n- %s: %d%%", c.name, c.value)
		}
	}

	if strings.TrimSpace(transcript) != "" {
		fmt.Fprintf(&sb, "\n\n**Recent Teacher Speech:**\n\"%s\"", transcript)
	}

	sb.WriteString("\n\n**Task:**\n")
	sb.WriteString("Provide brief, actionable teaching insights (2-3 sentences max):\n")
	sb.WriteString("1. Interpret the emotional state of the class\n")
	sb.WriteString("2. Suggest one specific teaching adjustment if needed\n")
	sb.WriteString("3. Keep it concise and practical\n\n")
	sb.WriteString("Format your response as clear, direct advice for the teacher.")

	return sb.String()
}
