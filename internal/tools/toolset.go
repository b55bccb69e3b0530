// Package tools implements the operations the decision-maker can call during a
// conversation. Every operation returns one short sentence for the decision-maker
// and emits a tool_call event with the full detail for the dashboard.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"voicebooking/internal/bookings/service"
	"voicebooking/internal/bookings/validator"
	"voicebooking/internal/events"
	"voicebooking/internal/session"
	"voicebooking/pkg/config"
	"voicebooking/pkg/logger"
	"voicebooking/pkg/metrics"
)

var ErrUnknownTool = errors.New("unknown tool")

const (
	outcomeOK            = "ok"
	outcomeNotIdentified = "not_identified"
	outcomeInvalidInput  = "invalid_input"
	outcomeStoreError    = "store_error"
)

type ToolSet struct {
	store     service.BookingStore
	sess      *session.Context
	sink      events.Sink
	validator *validator.Validator
	log       *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	lookaheadDays        int
	maxSpokenSlots       int
	maxEventSlots        int
	slotCheckConcurrency int
}

type Option func(*ToolSet)

func WithLogger(log *logger.Logger) Option {
	return func(t *ToolSet) { t.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *ToolSet) { t.metrics = m }
}

func WithValidator(v *validator.Validator) Option {
	return func(t *ToolSet) { t.validator = v }
}

func WithClock(now func() time.Time) Option {
	return func(t *ToolSet) { t.now = now }
}

// WithSlotPolicy overrides the fetch_slots defaults. Non-positive values keep the default.
func WithSlotPolicy(lookaheadDays, maxSpoken, maxEvent, concurrency int) Option {
	return func(t *ToolSet) {
		if lookaheadDays > 0 {
			t.lookaheadDays = lookaheadDays
		}
		if maxSpoken > 0 {
			t.maxSpokenSlots = maxSpoken
		}
		if maxEvent > 0 {
			t.maxEventSlots = maxEvent
		}
		if concurrency > 0 {
			t.slotCheckConcurrency = concurrency
		}
	}
}

func New(store service.BookingStore, sess *session.Context, sink events.Sink, opts ...Option) *ToolSet {
	t := &ToolSet{
		store:                store,
		sess:                 sess,
		sink:                 sink,
		now:                  time.Now,
		lookaheadDays:        config.DefaultSlotLookaheadDays,
		maxSpokenSlots:       config.DefaultMaxSpokenSlots,
		maxEventSlots:        config.DefaultMaxEventSlots,
		slotCheckConcurrency: config.DefaultSlotCheckConcurrency,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logger.Discard()
	}
	t.log = t.log.WithSession(sess.ID())
	if t.validator == nil {
		t.validator = validator.New(t.log)
	}
	return t
}

// Invoke decodes raw JSON arguments and dispatches to the named tool.
// Only an unknown tool name or undecodable arguments produce an error.
func (t *ToolSet) Invoke(ctx context.Context, name string, raw json.RawMessage) (string, error) {
	started := time.Now()
	var out string
	var err error
	switch name {
	case IdentifyUser:
		var in IdentifyUserInput
		if err = decode(raw, &in); err == nil {
			out, _ = t.IdentifyUser(ctx, in)
		}
	case FetchSlots:
		var in FetchSlotsInput
		if err = decode(raw, &in); err == nil {
			out, _ = t.FetchSlots(ctx, in)
		}
	case BookAppointment:
		var in BookAppointmentInput
		if err = decode(raw, &in); err == nil {
			out, _ = t.BookAppointment(ctx, in)
		}
	case RetrieveAppointments:
		var in RetrieveAppointmentsInput
		if err = decode(raw, &in); err == nil {
			out, _ = t.RetrieveAppointments(ctx, in)
		}
	case CancelAppointment:
		var in CancelAppointmentInput
		if err = decode(raw, &in); err == nil {
			out, _ = t.CancelAppointment(ctx, in)
		}
	case ModifyAppointment:
		var in ModifyAppointmentInput
		if err = decode(raw, &in); err == nil {
			out, _ = t.ModifyAppointment(ctx, in)
		}
	case EndConversation:
		var in EndConversationInput
		if err = decode(raw, &in); err == nil {
			out, _ = t.EndConversation(ctx, in)
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if err != nil {
		t.log.Warn("Invalid tool arguments", "tool", name, "error", err)
		t.report(ctx, name, started, outcomeInvalidInput,
			map[string]any{"arguments": string(raw)},
			errorResult("Invalid arguments: "+err.Error()),
			InvalidArgumentsSentence,
		)
		return "", fmt.Errorf("invalid arguments for %s: %w", name, err)
	}
	return out, nil
}

func decode(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// report emits the tool_call event and records the outcome. Emission failures
// are logged; the sentence is returned either way.
func (t *ToolSet) report(ctx context.Context, tool string, started time.Time, outcome string, params, result any, sentence string) (string, events.Event) {
	event := events.NewToolCall(t.sess.ID(), tool, params, result, t.now())
	if err := t.sink.Emit(ctx, event); err != nil {
		t.log.Warn("Failed to emit tool call event", "tool", tool, "error", err)
	}

	t.metrics.ObserveTool(tool, outcome, time.Since(started))
	t.log.Info("Tool call completed", "tool", tool, "outcome", outcome)
	return sentence, event
}

func errorResult(message string) map[string]any {
	return map[string]any{"error": message}
}

// nullable renders an empty string as JSON null.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
