package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"voicebooking/internal/bookings/service"
	"voicebooking/internal/bookings/validator"
	"voicebooking/internal/events"
	"voicebooking/internal/lifecycle"
	"voicebooking/internal/session"
	"voicebooking/internal/tools"
	"voicebooking/pkg/config"
	"voicebooking/pkg/kafka"
	"voicebooking/pkg/logger"
	"voicebooking/pkg/metrics"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

type Deps struct {
	Store      service.BookingStore
	Sink       events.Sink
	Commands   *Commands
	Summarizer lifecycle.Summarizer
	Claimer    lifecycle.Claimer
	Validator  *validator.Validator
	Metrics    *metrics.Metrics
	Log        *logger.Logger
}

// Session is one live conversation and the components bound to it.
type Session struct {
	Context     *session.Context
	Tools       *tools.ToolSet
	Coordinator *lifecycle.Coordinator
}

// Registry maps session ids to live sessions. A session is dropped once its
// coordinator ends; signals for unknown sessions are ignored.
type Registry struct {
	deps Deps
	cfg  *config.Config
	log  *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

func NewRegistry(deps Deps, cfg *config.Config) *Registry {
	log := deps.Log
	if log == nil {
		log = logger.Discard()
	}
	if deps.Validator == nil {
		deps.Validator = validator.New(log)
	}
	return &Registry{
		deps:     deps,
		cfg:      cfg,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// Open returns the live session for id, creating it on first use. An empty id gets a fresh one.
func (r *Registry) Open(sessionID string) (*Session, bool) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sessionID]; ok {
		return s, false
	}

	sess := session.New(sessionID, time.Now().UTC())
	var speaker lifecycle.Speaker
	if r.deps.Commands != nil {
		speaker = r.deps.Commands
	}

	s := &Session{
		Context: sess,
		Tools: tools.New(r.deps.Store, sess, r.deps.Sink,
			tools.WithLogger(r.log),
			tools.WithMetrics(r.deps.Metrics),
			tools.WithValidator(r.deps.Validator),
			tools.WithSlotPolicy(r.cfg.SlotLookaheadDays, r.cfg.MaxSpokenSlots, r.cfg.MaxEventSlots, r.cfg.SlotCheckConcurrency),
		),
		Coordinator: lifecycle.NewCoordinator(sess, lifecycle.Deps{
			Store:      r.deps.Store,
			Sink:       r.deps.Sink,
			Speaker:    speaker,
			Summarizer: r.deps.Summarizer,
			Claimer:    r.deps.Claimer,
			Metrics:    r.deps.Metrics,
			Log:        r.log,
		}, lifecycle.Options{
			AgentName:        r.cfg.AgentName,
			GreetingDelay:    r.cfg.GreetingDelay,
			TranscriptWindow: r.cfg.TranscriptWindow,
		}),
	}
	r.sessions[sessionID] = s
	r.deps.Metrics.SessionOpened()
	r.log.Info("Session opened", logger.SESSION, sessionID)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		<-s.Coordinator.Done()
		r.remove(sessionID)
	}()
	return s, true
}

func (r *Registry) Get(sessionID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) remove(sessionID string) {
	r.mu.Lock()
	_, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	if ok {
		r.deps.Metrics.SessionClosed()
		r.log.Info("Session closed", logger.SESSION, sessionID)
	}
}

// HandleMessage routes one signal. Undecodable signals and tool invocations
// without a call id fail without retry so the consumer dead-letters them.
// Summary triggers return before the summary is written.
func (r *Registry) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var signal Signal
	if err := msg.DecodeValue(&signal); err != nil {
		return err
	}
	if signal.SessionID == "" {
		signal.SessionID = msg.GetConversationID()
	}
	if signal.SessionID == "" {
		return kafka.NewPermanentError("signal without session id", nil).WithDetail("type", signal.Type)
	}

	if signal.Type == SignalSessionStarted {
		s, created := r.Open(signal.SessionID)
		if !created {
			r.log.Warn("Duplicate session start ignored", logger.SESSION, signal.SessionID)
			return nil
		}
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			if err := s.Coordinator.Start(ctx, signal.HasAvatar); err != nil {
				r.log.Warn("Session start incomplete", logger.SESSION, signal.SessionID, "error", err)
			}
		}()
		return nil
	}

	s, ok := r.Get(signal.SessionID)
	if !ok {
		r.log.Debug("Signal for unknown session ignored", "type", signal.Type, logger.SESSION, signal.SessionID)
		return nil
	}

	switch signal.Type {
	case SignalUserTranscript:
		s.Coordinator.RecordUserSpeech(signal.Text)
	case SignalAgentTranscript:
		if s.Coordinator.AppendAgentSpeech(signal.Text) {
			r.summarize(ctx, signal, func(ctx context.Context) error {
				return s.Coordinator.Trigger(ctx, lifecycle.TriggerEndPhrase)
			})
		}
	case SignalToolInvocation:
		if signal.CallID == "" {
			return kafka.NewBusinessError("tool invocation without call id", nil).WithDetail("tool", signal.Tool)
		}
		return r.invokeTool(ctx, s, signal)
	case SignalUsage:
		s.Context.AddUsage(signal.Usage())
	case SignalPreference:
		s.Context.AddPreference(signal.Text)
	case SignalRequestSummary:
		payload := msg.Value
		r.summarize(ctx, signal, func(ctx context.Context) error {
			return s.Coordinator.HandleSignal(ctx, payload)
		})
	case SignalParticipantLeft:
		r.summarize(ctx, signal, s.Coordinator.Shutdown)
	default:
		r.log.Debug("Unknown signal ignored", "type", signal.Type, logger.SESSION, signal.SessionID)
	}
	return nil
}

// summarize runs a summary trigger off the consumer goroutine, so a slow
// summary never holds up the signals of other sessions.
func (r *Registry) summarize(ctx context.Context, signal Signal, trigger func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.logSummaryError(signal, trigger(ctx))
	}()
}

// logSummaryError records a failed summary. Redelivering the signal would not
// help: the session latch is already taken.
func (r *Registry) logSummaryError(signal Signal, err error) {
	if err != nil {
		r.log.Error("Conversation summary failed", "trigger", signal.Type, logger.SESSION, signal.SessionID, "error", err)
	}
}

func (r *Registry) invokeTool(ctx context.Context, s *Session, signal Signal) error {
	output, err := s.Tools.Invoke(ctx, signal.Tool, signal.Arguments)
	if err != nil {
		r.log.Warn("Tool invocation rejected", "tool", signal.Tool, logger.SESSION, signal.SessionID, "error", err)
		output = tools.InvalidArgumentsSentence
	}

	if r.deps.Commands == nil {
		return nil
	}
	// The tool has already run; a redelivery would repeat its side effects.
	if err := r.deps.Commands.ToolResult(ctx, signal.SessionID, signal.CallID, output); err != nil {
		r.log.Error("Failed to publish tool result",
			"tool", signal.Tool,
			"call_id", signal.CallID,
			logger.SESSION, signal.SessionID,
			"error", err,
		)
	}
	return nil
}

// RequestSummary triggers the summary of a live session in the background.
func (r *Registry) RequestSummary(ctx context.Context, sessionID string) error {
	s, ok := r.Get(sessionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	r.summarize(ctx, Signal{Type: SignalRequestSummary, SessionID: sessionID}, func(ctx context.Context) error {
		return s.Coordinator.Trigger(ctx, lifecycle.TriggerRequest)
	})
	return nil
}

// ShutdownAll summarizes every live session and waits for background work.
func (r *Registry) ShutdownAll(ctx context.Context) error {
	r.mu.Lock()
	live := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.mu.Unlock()

	r.log.Info("Shutting down sessions", "count", len(live))

	var mu sync.Mutex
	var errs []error
	var wg sync.WaitGroup
	for _, s := range live {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			if err := s.Coordinator.Shutdown(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("session %s: %w", s.Context.ID(), err))
				mu.Unlock()
			}
		}(s)
	}
	wg.Wait()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}
	return errors.Join(errs...)
}
