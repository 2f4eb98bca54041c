// Package coach turns grid statistics into a short AI coaching note.
//
// The grid is reduced to a compact plain-text digest before it is sent, so
// the request stays small and nothing beyond aggregate habit stats leaves
// the machine.
package coach

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nishantagraw/daily-routine-tracker/internal/grid"
)

var (
	// ErrNoAPIKey indicates no Anthropic API key was configured.
	ErrNoAPIKey = errors.New("ANTHROPIC_API_KEY not set")

	// ErrRequest indicates the insights request failed.
	ErrRequest = errors.New("insights request failed")
)

const systemPrompt = `You are a habit coach reviewing one person's daily habit tracker.
Given a stats digest, write a short, encouraging note: name the strongest habit,
the one most at risk, and one concrete suggestion for tomorrow.
Keep it under 120 words. Plain text only.`

// Config holds coach construction parameters.
type Config struct {
	// Model overrides the default Claude model.
	Model string

	// APIKey overrides the ANTHROPIC_API_KEY environment variable.
	APIKey string
}

// Coach asks the Anthropic API for coaching notes.
type Coach struct {
	client anthropic.Client
	model  anthropic.Model
}

// New creates a Coach. The API key comes from cfg or the environment.
func New(cfg Config) (*Coach, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("ANTHROPIC_API_KEY")
	}
	if key == "" {
		return nil, ErrNoAPIKey
	}

	model := anthropic.ModelClaudeSonnet4_5
	if cfg.Model != "" {
		model = anthropic.Model(cfg.Model)
	}

	return &Coach{
		client: anthropic.NewClient(option.WithAPIKey(key)),
		model:  model,
	}, nil
}

// Insights sends the grid digest to the model and returns its note.
func (c *Coach) Insights(ctx context.Context, g *grid.Grid) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 512,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(Digest(g))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRequest, err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrRequest)
	}
	return text, nil
}

// Digest reduces the grid to the plain-text stats summary used as the
// prompt. One line per habit plus an overall header.
func Digest(g *grid.Grid) string {
	var b strings.Builder

	sum := grid.Summarize(g)
	fmt.Fprintf(&b, "Tracking %d habits over %d days", sum.TotalHabits, len(g.Dates))
	if len(g.Dates) > 0 {
		fmt.Fprintf(&b, " (%s to %s)", g.Dates[0], g.Dates[len(g.Dates)-1])
	}
	b.WriteString(".\n")
	fmt.Fprintf(&b, "Overall completion: %.1f%% (%d done, %d missed). Best streak: %d days.\n",
		sum.OverallProgress, sum.TotalCompleted, sum.TotalMissed, sum.BestStreak)

	for _, h := range g.Habits {
		st := grid.Compute(h, g.Dates)
		fmt.Fprintf(&b, "%s: %d done, %d missed, %.1f%% complete, current streak %d\n",
			h.Name, st.Completed, st.Missed, st.Progress, st.Streak)
	}
	return strings.TrimRight(b.String(), "\n")
}
