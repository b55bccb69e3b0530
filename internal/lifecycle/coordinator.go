// Package lifecycle drives one conversation from its opening utterance to the
// single end-of-conversation summary.
package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"voicebooking/internal/bookings/service"
	"voicebooking/internal/events"
	"voicebooking/internal/pipeline"
	"voicebooking/internal/session"
	"voicebooking/internal/tools"
	"voicebooking/pkg/config"
	"voicebooking/pkg/logger"
	"voicebooking/pkg/metrics"
	"voicebooking/pkg/model"
)

var ErrAlreadyStarted = errors.New("conversation already started")

type State int32

const (
	StateIdle State = iota
	StateActive
	StateSummarizing
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateSummarizing:
		return "summarizing"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Trigger names the source that asked for the summary.
type Trigger string

const (
	TriggerEndPhrase Trigger = "end_phrase"
	TriggerRequest   Trigger = "request_summary"
	TriggerShutdown  Trigger = "shutdown"
)

const SignalRequestSummary = "request_summary"

// Speaker delivers text for the voice pipeline to say.
type Speaker interface {
	Say(ctx context.Context, sessionID, text string) error
}

type SpeakerFunc func(ctx context.Context, sessionID, text string) error

func (f SpeakerFunc) Say(ctx context.Context, sessionID, text string) error {
	return f(ctx, sessionID, text)
}

type Deps struct {
	Store      service.BookingStore
	Sink       events.Sink
	Speaker    Speaker
	Summarizer Summarizer
	// Claimer is optional; without it the session latch alone decides.
	Claimer Claimer
	Metrics *metrics.Metrics
	Log     *logger.Logger
}

type Options struct {
	AgentName        string
	GreetingDelay    time.Duration
	TranscriptWindow int
	Now              func() time.Time
}

type Coordinator struct {
	sess       *session.Context
	store      service.BookingStore
	sink       events.Sink
	speaker    Speaker
	summarizer Summarizer
	claimer    Claimer
	metrics    *metrics.Metrics
	log        *logger.Logger
	engine     *pipeline.Engine[*summaryRun]

	agentName        string
	greetingDelay    time.Duration
	transcriptWindow int
	now              func() time.Time

	state    atomic.Int32
	done     chan struct{}
	doneOnce sync.Once
}

func NewCoordinator(sess *session.Context, deps Deps, opts Options) *Coordinator {
	c := &Coordinator{
		sess:             sess,
		store:            deps.Store,
		sink:             deps.Sink,
		speaker:          deps.Speaker,
		summarizer:       deps.Summarizer,
		claimer:          deps.Claimer,
		metrics:          deps.Metrics,
		agentName:        opts.AgentName,
		greetingDelay:    opts.GreetingDelay,
		transcriptWindow: opts.TranscriptWindow,
		now:              opts.Now,
		done:             make(chan struct{}),
	}

	if c.agentName == "" {
		c.agentName = config.DefaultAgentName
	}
	if c.transcriptWindow <= 0 {
		c.transcriptWindow = config.DefaultTranscriptWindow
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.summarizer == nil {
		c.summarizer = TemplateSummarizer{}
	}
	log := deps.Log
	if log == nil {
		log = logger.Discard()
	}
	c.log = log.WithSession(sess.ID())

	c.engine = pipeline.NewEngine(c.newSummaryFlow()).Observe(func(flow, step string, elapsed time.Duration, err error) {
		if err != nil {
			c.log.Error("Summary step failed", "flow", flow, "step", step, "elapsed", elapsed, "error", err)
			return
		}
		c.log.Debug("Summary step completed", "flow", flow, "step", step, "elapsed", elapsed)
	})
	return c
}

func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Done is closed once the coordinator reaches StateEnded.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Start moves Idle to Active, announces readiness and speaks the opening line
// after the greeting delay. A cancelled ctx skips the greeting.
func (c *Coordinator) Start(ctx context.Context, hasAvatar bool) error {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StateActive)) {
		return ErrAlreadyStarted
	}
	c.log.Info("Conversation started", "has_avatar", hasAvatar)

	if err := c.sink.Emit(ctx, events.NewAgentReady(c.sess.ID(), hasAvatar, c.now())); err != nil {
		c.log.Warn("Could not deliver agent ready event", "error", err)
	}

	if c.greetingDelay > 0 {
		timer := time.NewTimer(c.greetingDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case <-timer.C:
		}
	}
	if c.closing() {
		c.log.Debug("Greeting skipped, conversation is closing")
		return nil
	}

	greeting := Greeting(c.agentName)
	if c.speaker != nil {
		if err := c.speaker.Say(ctx, c.sess.ID(), greeting); err != nil {
			return fmt.Errorf("speak greeting: %w", err)
		}
	}
	c.sess.AppendTranscript(model.RoleAssistant, greeting, c.now())
	return nil
}

func (c *Coordinator) RecordUserSpeech(text string) {
	if text = strings.TrimSpace(text); text != "" {
		c.sess.AppendTranscript(model.RoleUser, text, c.now())
	}
}

// RecordAgentSpeech appends the agent's committed speech and starts the
// summary when it carries the end-of-conversation sentinel.
func (c *Coordinator) RecordAgentSpeech(ctx context.Context, text string) error {
	if c.AppendAgentSpeech(text) {
		return c.Trigger(ctx, TriggerEndPhrase)
	}
	return nil
}

// AppendAgentSpeech appends the agent's committed speech and reports whether
// it carries the end-of-conversation sentinel. It does not start the summary.
func (c *Coordinator) AppendAgentSpeech(text string) bool {
	if text = strings.TrimSpace(text); text == "" {
		return false
	}
	c.sess.AppendTranscript(model.RoleAssistant, text, c.now())
	return strings.Contains(text, tools.EndConversationSentinel)
}

// HandleSignal reacts to a transport message; only request_summary does anything.
func (c *Coordinator) HandleSignal(ctx context.Context, payload []byte) error {
	var signal struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &signal); err != nil {
		return fmt.Errorf("decode signal: %w", err)
	}
	if signal.Type != SignalRequestSummary {
		return nil
	}
	return c.Trigger(ctx, TriggerRequest)
}

func (c *Coordinator) Shutdown(ctx context.Context) error {
	return c.Trigger(ctx, TriggerShutdown)
}

// Trigger runs the summary flow if this is the first trigger for the session.
// Later triggers return nil without doing anything. A persistence failure is
// returned to the caller; the coordinator ends either way.
func (c *Coordinator) Trigger(ctx context.Context, trigger Trigger) error {
	if !c.sess.TryBeginSummary() {
		c.log.Debug("Summary already claimed", "trigger", trigger)
		c.metrics.ObserveSummary(string(trigger), "skipped", 0)
		return nil
	}

	// The summary must outlive a signal or shutdown context that is already cancelled.
	ctx = context.WithoutCancel(ctx)
	defer c.end()

	if c.claimer != nil {
		claimed, err := c.claimer.Claim(ctx, c.sess.ID())
		switch {
		case err != nil:
			c.log.Warn("Summary claim unavailable, continuing locally", "error", err)
		case !claimed:
			c.log.Info("Summary claimed by another replica", "trigger", trigger)
			c.metrics.ObserveSummary(string(trigger), "claimed_elsewhere", 0)
			return nil
		}
	}

	c.state.Store(int32(StateSummarizing))
	c.log.Info("Summarizing conversation", "trigger", trigger)

	started := time.Now()
	err := c.engine.Run(ctx, summaryFlow, &summaryRun{trigger: trigger})
	if err != nil {
		c.metrics.ObserveSummary(string(trigger), "error", time.Since(started))
		return err
	}
	c.metrics.ObserveSummary(string(trigger), "ok", time.Since(started))
	return nil
}

// closing is true once a summary trigger has won, even before the state moves.
func (c *Coordinator) closing() bool {
	return c.State() >= StateSummarizing || c.sess.SummaryEmitted()
}

func (c *Coordinator) end() {
	c.state.Store(int32(StateEnded))
	c.doneOnce.Do(func() { close(c.done) })
}
