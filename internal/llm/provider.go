// Package llm generates an optional natural-language rationale for a
// credibility report. The rationale explains the computed score; it never
// produces or alters one. A failed or absent provider leaves the report
// untouched.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/scholarlytrust/scholarlytrust/internal/model"
)

// Provider defines the interface for rationale providers.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Rationale explains an already-computed report in plain language
	Rationale(ctx context.Context, req RationaleRequest) (*model.Rationale, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// RationaleRequest contains the input for rationale generation.
type RationaleRequest struct {
	// Report is the finished credibility report to explain
	Report model.ScoreReport

	// Prompt is an optional custom prompt (if empty, the default is built
	// from the report)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// Config holds rationale provider configuration.
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests, in seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int
}

const systemPrompt = "You are an assistant that explains academic credibility " +
	"assessments. You restate the given findings in plain language. You never " +
	"invent findings, cite sources, or assign a score of your own."

// BuildPrompt constructs the default rationale prompt from a finished report.
// The score and verdict are stated as fixed inputs so the model explains
// rather than re-judges. Hijack-registry hits short-circuit before any
// provider call, so hijacked reports never arrive here.
func BuildPrompt(report model.ScoreReport) string {
	var sb strings.Builder

	kind := "journal"
	if report.Kind == model.KindPaper {
		kind = "paper"
	}

	fmt.Fprintf(&sb, `A rule-based engine assessed the academic %s %q and produced this verdict. The score and verdict are final; your task is only to explain them.

Score: %d/100
Verdict: %s
`, kind, report.Subject, report.Score, report.Band)

	if len(report.Reasons) > 0 {
		sb.WriteString("\nFindings that reduced the score:\n")
		for _, r := range report.Reasons {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	} else {
		sb.WriteString("\nNo findings reduced the score.\n")
	}

	if report.SkippedChecks() > 0 {
		sb.WriteString("\nChecks skipped for lack of data (not held against the subject):\n")
		for _, c := range report.Checks {
			if c.Status == model.CheckSkipped {
				fmt.Fprintf(&sb, "- %s\n", c.Name)
			}
		}
	}

	if report.ReducedConfidence {
		sb.WriteString("\nMore than half of the checks lacked data, so confidence in the score is reduced.\n")
	}

	sb.WriteString("\nWrite a plain-text explanation of at most 400 words. Do not restate the score as your own judgment, do not cite external sources, and do not suggest a different score.")
	return sb.String()
}
