package agent

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"voicebooking/internal/bookings/repository"
	"voicebooking/internal/bookings/service"
	"voicebooking/internal/bookings/validator"
	"voicebooking/internal/events"
	"voicebooking/internal/lifecycle"
	"voicebooking/internal/tools"
	"voicebooking/pkg/config"
	"voicebooking/pkg/kafka"
	"voicebooking/pkg/logger"
	"voicebooking/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	mu       sync.Mutex
	messages []kafka.Message
}

func (f *fakePublisher) Publish(ctx context.Context, msg kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakePublisher) commands(t *testing.T) []Command {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Command, 0, len(f.messages))
	for _, msg := range f.messages {
		var cmd Command
		require.NoError(t, json.Unmarshal(msg.Value, &cmd))
		out = append(out, cmd)
	}
	return out
}

type fixture struct {
	registry  *Registry
	store     service.BookingStore
	published *fakePublisher
	sink      *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	cfg := &config.Config{
		Log:                   log,
		AgentName:             "Alex",
		RecentAppointmentScan: config.DefaultRecentAppointmentScan,
	}
	store := service.NewBookingStore(
		repository.NewMemoryCallerRepository(),
		repository.NewMemoryAppointmentRepository(),
		repository.NewMemoryConversationRepository(),
		validator.New(log),
		cfg,
	)
	commands := &fakePublisher{}
	sink := &fakePublisher{}

	registry := NewRegistry(Deps{
		Store:    store,
		Sink:     events.NewKafkaSink(sink),
		Commands: NewCommands(commands),
		Log:      log,
	}, cfg)
	return &fixture{registry: registry, store: store, published: commands, sink: sink}
}

func signal(t *testing.T, s Signal) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().WithKey(s.SessionID).WithValue(s).Build()
	require.NoError(t, err)
	return msg
}

func TestSessionStarted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.registry.HandleMessage(ctx, signal(t, Signal{Type: SignalSessionStarted, SessionID: "room-1", HasAvatar: true})))
	require.NoError(t, f.registry.HandleMessage(ctx, signal(t, Signal{Type: SignalSessionStarted, SessionID: "room-1"})))
	assert.Equal(t, 1, f.registry.Len())

	assert.Eventually(t, func() bool { return len(f.published.commands(t)) == 1 }, time.Second, 5*time.Millisecond)
	say := f.published.commands(t)[0]
	assert.Equal(t, CommandSay, say.Type)
	assert.Equal(t, "room-1", say.SessionID)
	assert.Equal(t, "Hello! I'm Alex, your appointment booking assistant. How can I help you today?", say.Text)

	f.sink.mu.Lock()
	defer f.sink.mu.Unlock()
	require.Len(t, f.sink.messages, 1)
	assert.Equal(t, events.TypeAgentReady, f.sink.messages[0].GetEventType())
	assert.Equal(t, "room-1", f.sink.messages[0].Key)
}

func TestToolInvocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registry.Open("room-1")

	require.NoError(t, f.registry.HandleMessage(ctx, signal(t, Signal{
		Type:      SignalToolInvocation,
		SessionID: "room-1",
		CallID:    "call-1",
		Tool:      tools.IdentifyUser,
		Arguments: json.RawMessage(`{"phone_number":"555-123-4567"}`),
	})))
	require.NoError(t, f.registry.HandleMessage(ctx, signal(t, Signal{
		Type:      SignalToolInvocation,
		SessionID: "room-1",
		CallID:    "call-2",
		Tool:      "transfer_call",
	})))

	commands := f.published.commands(t)
	require.Len(t, commands, 2)
	assert.Equal(t, CommandToolResult, commands[0].Type)
	assert.Equal(t, "call-1", commands[0].CallID)
	assert.Contains(t, commands[0].Output, "User identified successfully.")
	assert.Equal(t, tools.InvalidArgumentsSentence, commands[1].Output)

	f.published.mu.Lock()
	assert.Equal(t, "call-1", f.published.messages[0].GetCorrelationID())
	f.published.mu.Unlock()

	s, ok := f.registry.Get("room-1")
	require.True(t, ok)
	caller, ok := s.Context.Caller()
	require.True(t, ok)
	assert.Equal(t, "5551234567", caller.Phone)
}

func TestStateSignals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s, _ := f.registry.Open("room-1")

	for _, sig := range []Signal{
		{Type: SignalUserTranscript, SessionID: "room-1", Text: "Hi, I need an appointment"},
		{Type: SignalAgentTranscript, SessionID: "room-1", Text: "Sure, what's your phone number?"},
		{Type: SignalUsage, SessionID: "room-1", STTSeconds: 12.5, TTSCharacters: 40},
		{Type: SignalUsage, SessionID: "room-1", STTSeconds: 2.5, LLMInputTokens: 300, LLMOutputTokens: 20},
		{Type: SignalPreference, SessionID: "room-1", Text: "prefers mornings"},
		{Type: "typing_indicator", SessionID: "room-1"},
	} {
		require.NoError(t, f.registry.HandleMessage(ctx, signal(t, sig)))
	}

	transcript := s.Context.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, model.RoleUser, transcript[0].Role)
	assert.Equal(t, model.RoleAssistant, transcript[1].Role)
	assert.Equal(t, model.Usage{STTSeconds: 15, TTSCharacters: 40, LLMInputTokens: 300, LLMOutputTokens: 20}, s.Context.Usage())
	assert.Equal(t, []string{"prefers mornings"}, s.Context.Preferences())
	assert.False(t, s.Context.SummaryEmitted())
}

func TestRequestSummarySignal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registry.Open("room-1")

	require.NoError(t, f.registry.HandleMessage(ctx, signal(t, Signal{Type: SignalRequestSummary, SessionID: "room-1"})))
	require.NoError(t, f.registry.HandleMessage(ctx, signal(t, Signal{Type: SignalParticipantLeft, SessionID: "room-1"})))

	assert.Eventually(t, func() bool { return f.registry.Len() == 0 }, time.Second, 5*time.Millisecond)
	summary, err := f.store.FindSummaryBySession(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, "room-1", summary.SessionID)
}

func TestSummaryDoesNotBlockOtherSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	release := make(chan struct{})
	f.registry.deps.Summarizer = lifecycle.SummarizerFunc(func(ctx context.Context, in lifecycle.SummaryInput) (string, error) {
		<-release
		return "Caller said goodbye.", nil
	})
	f.registry.Open("room-1")
	f.registry.Open("room-2")

	handled := make(chan error, 1)
	go func() {
		handled <- f.registry.HandleMessage(ctx, signal(t, Signal{
			Type:      SignalAgentTranscript,
			SessionID: "room-1",
			Text:      "Goodbye! END_CONVERSATION",
		}))
	}()
	select {
	case err := <-handled:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("end phrase blocked the signal handler")
	}

	require.NoError(t, f.registry.HandleMessage(ctx, signal(t, Signal{
		Type:      SignalToolInvocation,
		SessionID: "room-2",
		CallID:    "call-9",
		Tool:      tools.IdentifyUser,
		Arguments: json.RawMessage(`{"phone_number":"555-987-6543"}`),
	})))
	commands := f.published.commands(t)
	require.Len(t, commands, 1)
	assert.Equal(t, "call-9", commands[0].CallID)

	close(release)
	assert.Eventually(t, func() bool {
		_, err := f.store.FindSummaryBySession(ctx, "room-1")
		return err == nil
	}, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return f.registry.Len() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHandleMessage_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.registry.HandleMessage(ctx, kafka.Message{Value: []byte("{")})
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))

	err = f.registry.HandleMessage(ctx, kafka.Message{Value: []byte(`{"type":"request_summary"}`)})
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))

	f.registry.Open("room-1")
	err = f.registry.HandleMessage(ctx, signal(t, Signal{Type: SignalToolInvocation, SessionID: "room-1", Tool: tools.FetchSlots}))
	assert.Equal(t, kafka.ErrorTypeBusiness, kafka.ClassifyError(err))
	assert.Empty(t, f.published.commands(t))

	assert.NoError(t, f.registry.HandleMessage(ctx, signal(t, Signal{Type: SignalRequestSummary, SessionID: "gone"})))
	assert.Equal(t, 1, f.registry.Len(), "late signals do not resurrect sessions")
}

func TestRequestSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.registry.RequestSummary(ctx, "nope"), ErrSessionNotFound)

	f.registry.Open("room-1")
	require.NoError(t, f.registry.RequestSummary(ctx, "room-1"))
	assert.Eventually(t, func() bool {
		_, err := f.store.FindSummaryBySession(ctx, "room-1")
		return err == nil
	}, time.Second, 5*time.Millisecond)
}

func TestShutdownAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.registry.Open("room-1")
	f.registry.Open("room-2")

	require.NoError(t, f.registry.ShutdownAll(ctx))
	for _, id := range []string{"room-1", "room-2"} {
		_, err := f.store.FindSummaryBySession(ctx, id)
		assert.NoError(t, err, id)
	}
	assert.Equal(t, 0, f.registry.Len())
}
