package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"voicebooking/pkg/model"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
)

var ErrEmptySummary = errors.New("summarizer returned no text")

// SummaryInput carries the prompt and the structured session state it was built from.
type SummaryInput struct {
	Prompt      string
	Actions     []model.ActionRecord
	Preferences []string
	CallerName  string
}

type Summarizer interface {
	Summarize(ctx context.Context, in SummaryInput) (string, error)
}

type SummarizerFunc func(ctx context.Context, in SummaryInput) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, in SummaryInput) (string, error) {
	return f(ctx, in)
}

// GeminiSummarizer runs the summary prompt as a single-shot generation.
// Requests share one limiter across every session of the process.
type GeminiSummarizer struct {
	model   *genai.GenerativeModel
	limiter *rate.Limiter
	timeout time.Duration
}

func NewGeminiSummarizer(client *genai.Client, modelName string, requestsPerMinute int, timeout time.Duration) *GeminiSummarizer {
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.3)

	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
	}
	return &GeminiSummarizer{
		model:   model,
		limiter: limiter,
		timeout: timeout,
	}
}

func (g *GeminiSummarizer) Summarize(ctx context.Context, in SummaryInput) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	if err := g.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("summary rate limit: %w", err)
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(in.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptySummary
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	summary := strings.TrimSpace(sb.String())
	if summary == "" {
		return "", ErrEmptySummary
	}
	return summary, nil
}

// TemplateSummarizer builds a deterministic summary from the structured state.
// It serves when no model is configured and as the fallback when generation fails.
type TemplateSummarizer struct{}

func (TemplateSummarizer) Summarize(_ context.Context, in SummaryInput) (string, error) {
	return TemplateSummary(in), nil
}

func TemplateSummary(in SummaryInput) string {
	who := "An unidentified caller"
	if in.CallerName != "" {
		who = "User " + in.CallerName
	}

	sentences := []string{who + " called the appointment line."}
	if len(in.Actions) == 0 {
		sentences = append(sentences, "No appointment actions taken.")
	}
	for _, a := range in.Actions {
		switch a.Action {
		case model.ActionBooked:
			sentences = append(sentences, fmt.Sprintf("Booked %s at %s.", a.Date, a.Time))
		case model.ActionCancelled:
			sentences = append(sentences, fmt.Sprintf("Cancelled the appointment on %s at %s.", a.Date, a.Time))
		case model.ActionModified:
			sentences = append(sentences, fmt.Sprintf("Rescheduled from %s at %s to %s at %s.", a.OldDate, a.OldTime, a.NewDate, a.NewTime))
		}
	}
	if len(in.Preferences) > 0 {
		sentences = append(sentences, "Preferences mentioned: "+strings.Join(in.Preferences, ", ")+".")
	}
	return strings.Join(sentences, " ")
}
