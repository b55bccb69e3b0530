package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"voicebooking/internal/bookings/repository"
	"voicebooking/internal/bookings/service"
	"voicebooking/internal/bookings/validator"
	"voicebooking/internal/events"
	"voicebooking/internal/session"
	"voicebooking/internal/slots"
	"voicebooking/pkg/config"
	apperrors "voicebooking/pkg/errors"
	"voicebooking/pkg/logger"
	"voicebooking/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sunday; the next bookable day is Monday 2025-03-10.
var testNow = time.Date(2025, time.March, 9, 12, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (s *recordingSink) Emit(ctx context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *recordingSink) last(t *testing.T) events.ToolCall {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.events)
	call, ok := s.events[len(s.events)-1].Data.(events.ToolCall)
	require.True(t, ok)
	return call
}

// storeOverride replaces single BookingStore methods; the rest fall through to the embedded store.
type storeOverride struct {
	service.BookingStore
	isSlotAvailable func(ctx context.Context, date, hhmm string) (bool, error)
	book            func(ctx context.Context, callerID, date, hhmm, label string) (service.AppointmentResult, error)
	getOrCreate     func(ctx context.Context, phone, name string) (*model.Caller, bool, error)
}

func (s storeOverride) GetOrCreateCaller(ctx context.Context, phone, name string) (*model.Caller, bool, error) {
	if s.getOrCreate != nil {
		return s.getOrCreate(ctx, phone, name)
	}
	return s.BookingStore.GetOrCreateCaller(ctx, phone, name)
}

func (s storeOverride) IsSlotAvailable(ctx context.Context, date, hhmm string) (bool, error) {
	if s.isSlotAvailable != nil {
		return s.isSlotAvailable(ctx, date, hhmm)
	}
	return s.BookingStore.IsSlotAvailable(ctx, date, hhmm)
}

func (s storeOverride) Book(ctx context.Context, callerID, date, hhmm, label string) (service.AppointmentResult, error) {
	if s.book != nil {
		return s.book(ctx, callerID, date, hhmm, label)
	}
	return s.BookingStore.Book(ctx, callerID, date, hhmm, label)
}

func newStore() service.BookingStore {
	log := logger.Discard()
	return service.NewBookingStore(
		repository.NewMemoryCallerRepository(),
		repository.NewMemoryAppointmentRepository(),
		repository.NewMemoryConversationRepository(),
		validator.New(log),
		&config.Config{Log: log, RecentAppointmentScan: config.DefaultRecentAppointmentScan},
	)
}

func newToolSet(store service.BookingStore, sessionID string) (*ToolSet, *session.Context, *recordingSink) {
	sess := session.New(sessionID, testNow)
	sink := &recordingSink{}
	tools := New(store, sess, sink, WithClock(func() time.Time { return testNow }))
	return tools, sess, sink
}

func identify(t *testing.T, tools *ToolSet, phone, name string) session.CallerRef {
	t.Helper()
	tools.IdentifyUser(context.Background(), IdentifyUserInput{PhoneNumber: phone, Name: name})
	caller, ok := tools.sess.Caller()
	require.True(t, ok)
	return caller
}

func TestIdentifyUser(t *testing.T) {
	ctx := context.Background()
	tools, sess, sink := newToolSet(newStore(), "room-1")

	out, _ := tools.IdentifyUser(ctx, IdentifyUserInput{PhoneNumber: "555-123"})
	assert.Equal(t, InvalidPhoneSentence, out)
	_, ok := sess.Caller()
	assert.False(t, ok)

	out, event := tools.IdentifyUser(ctx, IdentifyUserInput{PhoneNumber: "(555) 123-4567"})
	caller, ok := sess.Caller()
	require.True(t, ok)
	assert.Equal(t, "5551234567", caller.Phone)
	assert.Equal(t, "User identified successfully. I've identified you by your phone number. User ID: "+caller.ID, out)

	call := sink.last(t)
	assert.Equal(t, event.Data, call)
	assert.Equal(t, IdentifyUser, call.Tool)
	assert.Equal(t, testNow.UnixMilli(), call.Timestamp)
	result := call.Result.(map[string]any)
	assert.Equal(t, true, result["is_new"])
	assert.Nil(t, result["name"])

	out, _ = tools.IdentifyUser(ctx, IdentifyUserInput{PhoneNumber: "555.123.4567", Name: "  John   Smith "})
	assert.Contains(t, out, "Welcome back, John Smith!")
	result = sink.last(t).Result.(map[string]any)
	assert.Equal(t, false, result["is_new"])
	assert.Equal(t, caller.ID, result["user_id"])
}

func TestIdentifyUser_PhoneLength(t *testing.T) {
	ctx := context.Background()
	tools, sess, sink := newToolSet(newStore(), "room-1")

	out, _ := tools.IdentifyUser(ctx, IdentifyUserInput{PhoneNumber: "+1 (555) 123-4567 ext 90123"})
	assert.Equal(t, InvalidPhoneSentence, out)
	assert.Equal(t, map[string]any{"error": InvalidPhoneSentence}, sink.last(t).Result)
	_, ok := sess.Caller()
	assert.False(t, ok)

	out, _ = tools.IdentifyUser(ctx, IdentifyUserInput{PhoneNumber: "+44 20 7946 0958 12"})
	assert.True(t, strings.HasPrefix(out, "User identified successfully."), out)
	caller, ok := sess.Caller()
	require.True(t, ok)
	assert.Equal(t, "44207946095812", caller.Phone)
}

func TestIdentifyUser_StoreValidationIsNotAnOutage(t *testing.T) {
	store := storeOverride{
		BookingStore: newStore(),
		getOrCreate: func(ctx context.Context, phone, name string) (*model.Caller, bool, error) {
			return nil, false, apperrors.Validation("Caller validation failed", map[string]any{"error": "contact_number"})
		},
	}
	tools, sess, _ := newToolSet(store, "room-1")

	out, _ := tools.IdentifyUser(context.Background(), IdentifyUserInput{PhoneNumber: "5551234567"})
	assert.Equal(t, InvalidPhoneSentence, out)
	_, ok := sess.Caller()
	assert.False(t, ok)
}

func TestToolsRequireIdentification(t *testing.T) {
	ctx := context.Background()
	tools, sess, sink := newToolSet(newStore(), "room-1")

	outputs := []string{}
	out, _ := tools.BookAppointment(ctx, BookAppointmentInput{Date: "2025-03-10", Time: "09:00"})
	outputs = append(outputs, out)
	out, _ = tools.RetrieveAppointments(ctx, RetrieveAppointmentsInput{})
	outputs = append(outputs, out)
	out, _ = tools.CancelAppointment(ctx, CancelAppointmentInput{AppointmentID: "abcd1234"})
	outputs = append(outputs, out)
	out, _ = tools.ModifyAppointment(ctx, ModifyAppointmentInput{AppointmentID: "abcd1234", NewDate: "2025-03-11", NewTime: "10:00"})
	outputs = append(outputs, out)

	for _, out := range outputs {
		assert.Equal(t, NotIdentifiedSentence, out)
	}
	assert.Len(t, sink.events, 4)
	assert.Equal(t, map[string]any{"error": errUserNotIdentified}, sink.last(t).Result)
	assert.Empty(t, sess.Actions())
}

func TestFetchSlots(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	tools, _, sink := newToolSet(store, "room-1")
	caller := identify(t, tools, "5551234567", "")

	_, err := store.BookAppointment(ctx, caller.ID, "2025-03-10", "09:00", "")
	require.NoError(t, err)

	out, _ := tools.FetchSlots(ctx, FetchSlotsInput{DaysAhead: 1})
	assert.Equal(t,
		"On Monday, March 10, 2025, I have Morning - 10:00 AM, Morning - 11:00 AM, Afternoon - 2:00 PM, Afternoon - 3:00 PM and Afternoon - 4:00 PM.",
		out,
	)

	result := sink.last(t).Result.(map[string]any)
	assert.Equal(t, 5, result["total"])
	assert.Len(t, result["slots"], 5)
}

func TestFetchSlots_WeekAheadFromMonday(t *testing.T) {
	monday := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	sess := session.New("room-1", monday)
	sink := &recordingSink{}
	tools := New(newStore(), sess, sink,
		WithClock(func() time.Time { return monday }),
		WithSlotPolicy(7, 6, 100, 4),
	)

	out, _ := tools.FetchSlots(context.Background(), FetchSlotsInput{DaysAhead: 7})
	assert.True(t, strings.HasPrefix(out, "On Tuesday, March 11, 2025, I have"), out)

	result := sink.last(t).Result.(map[string]any)
	assert.Equal(t, 30, result["total"])
	dates := map[string]bool{}
	for _, s := range result["slots"].([]slots.Slot) {
		dates[s.Date] = true
	}
	assert.Equal(t, map[string]bool{
		"2025-03-11": true,
		"2025-03-12": true,
		"2025-03-13": true,
		"2025-03-14": true,
		"2025-03-17": true,
	}, dates)
}

func TestFetchSlots_DefaultLookaheadCapsEventSlots(t *testing.T) {
	tools, _, sink := newToolSet(newStore(), "room-1")

	out, _ := tools.FetchSlots(context.Background(), FetchSlotsInput{})
	assert.True(t, strings.HasPrefix(out, "On Monday, March 10, 2025, I have Morning - 9:00 AM"))

	result := sink.last(t).Result.(map[string]any)
	// Seven days from Sunday covers Monday through Friday.
	assert.Equal(t, 30, result["total"])
	assert.Len(t, result["slots"], config.DefaultMaxEventSlots)
	assert.Equal(t, map[string]any{"days_ahead": config.DefaultSlotLookaheadDays}, sink.last(t).Params)
}

func TestFetchSlots_NoneAvailable(t *testing.T) {
	// Friday with one day of lookahead lands on Saturday.
	friday := time.Date(2025, time.March, 7, 9, 0, 0, 0, time.UTC)
	tools := New(newStore(), session.New("room-1", friday), &recordingSink{}, WithClock(func() time.Time { return friday }))

	out, _ := tools.FetchSlots(context.Background(), FetchSlotsInput{DaysAhead: 1})
	assert.Equal(t, "I don't have any available slots at the moment.", out)
}

func TestFetchSlots_StoreFailure(t *testing.T) {
	store := storeOverride{
		BookingStore: newStore(),
		isSlotAvailable: func(ctx context.Context, date, hhmm string) (bool, error) {
			return false, apperrors.Unavailable("Booking store")
		},
	}
	tools, _, sink := newToolSet(store, "room-1")

	out, _ := tools.FetchSlots(context.Background(), FetchSlotsInput{DaysAhead: 3})
	assert.Equal(t, StoreFailureSentence, out)
	assert.Equal(t, map[string]any{"error": errStoreUnavailable}, sink.last(t).Result)
}

func TestBookAppointment(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	tools, sess, sink := newToolSet(store, "room-1")
	identify(t, tools, "5551234567", "John Smith")

	out, _ := tools.BookAppointment(ctx, BookAppointmentInput{Date: "2025-03-10", Time: "2 pm"})

	actions := sess.Actions()
	require.Len(t, actions, 1)
	booked := actions[0]
	assert.Equal(t, model.ActionBooked, booked.Action)
	assert.Equal(t, "2025-03-10", booked.Date)
	assert.Equal(t, "14:00", booked.Time)
	assert.Equal(t, "Afternoon - 2:00 PM", booked.Slot)
	assert.Equal(t,
		"Appointment booked successfully for Monday, March 10 at Afternoon - 2:00 PM. Your confirmation ID is "+booked.ID[:8]+".",
		out,
	)

	result := sink.last(t).Result.(map[string]any)
	assert.Equal(t, booked.ID, result["appointment_id"])
	assert.Equal(t, model.StatusBooked, result["status"])

	other, _, _ := newToolSet(store, "room-2")
	identify(t, other, "5559876543", "")
	out, _ = other.BookAppointment(ctx, BookAppointmentInput{Date: "2025-03-10", Time: "14:00"})
	assert.Equal(t, "Could not book appointment: Slot 2025-03-10 at 14:00 is already booked. Please choose a different time slot.", out)
	assert.Empty(t, other.sess.Actions())
}

func TestBookAppointment_RejectsOffCatalogSlots(t *testing.T) {
	tools, sess, _ := newToolSet(newStore(), "room-1")
	identify(t, tools, "5551234567", "")

	for _, in := range []BookAppointmentInput{
		{Date: "2025-03-10", Time: "1:30pm"},
		{Date: "2025-03-10", Time: "12:00"},
		{Date: "March 10", Time: "09:00"},
		{Date: "2025-03-10"},
	} {
		out, _ := tools.BookAppointment(context.Background(), in)
		assert.Equal(t, InvalidSlotSentence, out, "%+v", in)
	}
	assert.Empty(t, sess.Actions())
}

func TestBookAppointment_StoreFailure(t *testing.T) {
	store := storeOverride{
		BookingStore: newStore(),
		book: func(ctx context.Context, callerID, date, hhmm, label string) (service.AppointmentResult, error) {
			return service.AppointmentResult{}, errors.New("connection reset")
		},
	}
	tools, sess, _ := newToolSet(store, "room-1")
	identify(t, tools, "5551234567", "")

	out, _ := tools.BookAppointment(context.Background(), BookAppointmentInput{Date: "2025-03-10", Time: "09:00"})
	assert.Equal(t, StoreFailureSentence, out)
	assert.Empty(t, sess.Actions())
}

func TestRetrieveAppointments(t *testing.T) {
	ctx := context.Background()
	tools, _, sink := newToolSet(newStore(), "room-1")
	identify(t, tools, "5551234567", "")

	out, _ := tools.RetrieveAppointments(ctx, RetrieveAppointmentsInput{})
	assert.Equal(t, NoAppointmentsSentence, out)

	tools.BookAppointment(ctx, BookAppointmentInput{Date: "2025-03-11", Time: "10:00"})
	first := tools.sess.Actions()[0]

	out, _ = tools.RetrieveAppointments(ctx, RetrieveAppointmentsInput{})
	assert.Equal(t, "You have one appointment: Morning - 10:00 AM on Tuesday, March 11, ID: "+first.ID[:8]+".", out)

	tools.BookAppointment(ctx, BookAppointmentInput{Date: "2025-03-10", Time: "15:00"})
	tools.BookAppointment(ctx, BookAppointmentInput{Date: "2025-03-12", Time: "09:00"})
	actions := tools.sess.Actions()

	out, _ = tools.RetrieveAppointments(ctx, RetrieveAppointmentsInput{})
	assert.Equal(t,
		"You have 3 appointments: Afternoon - 3:00 PM on Monday, March 10, ID: "+actions[1].ID[:8]+
			", Morning - 10:00 AM on Tuesday, March 11, ID: "+actions[0].ID[:8]+
			", and Morning - 9:00 AM on Wednesday, March 12, ID: "+actions[2].ID[:8]+".",
		out,
	)
	assert.Equal(t, 3, sink.last(t).Result.(map[string]any)["count"])
}

func TestRetrieveAppointments_IncludeCancelled(t *testing.T) {
	ctx := context.Background()
	tools, _, _ := newToolSet(newStore(), "room-1")
	identify(t, tools, "5551234567", "")

	tools.BookAppointment(ctx, BookAppointmentInput{Date: "2025-03-10", Time: "09:00"})
	id := tools.sess.Actions()[0].ID
	tools.CancelAppointment(ctx, CancelAppointmentInput{AppointmentID: id})

	out, _ := tools.RetrieveAppointments(ctx, RetrieveAppointmentsInput{})
	assert.Equal(t, NoAppointmentsSentence, out)

	out, _ = tools.RetrieveAppointments(ctx, RetrieveAppointmentsInput{IncludeCancelled: true})
	assert.Equal(t, "You have one appointment: Morning - 9:00 AM on Monday, March 10 (cancelled), ID: "+id[:8]+".", out)
}

func TestCancelAppointment(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	tools, sess, sink := newToolSet(store, "room-1")
	identify(t, tools, "5551234567", "")

	tools.BookAppointment(ctx, BookAppointmentInput{Date: "2025-03-10", Time: "09:00"})
	id := sess.Actions()[0].ID

	intruder, _, _ := newToolSet(store, "room-2")
	identify(t, intruder, "5559876543", "")
	out, _ := intruder.CancelAppointment(ctx, CancelAppointmentInput{AppointmentID: id})
	assert.Equal(t, NotOwnedSentence, out)

	out, _ = tools.CancelAppointment(ctx, CancelAppointmentInput{AppointmentID: strings.ToUpper(id[:8])})
	assert.Equal(t, "Your appointment on 2025-03-10 at Morning - 9:00 AM has been cancelled.", out)
	assert.Equal(t, map[string]any{"appointment_id": id, "status": model.StatusCancelled}, sink.last(t).Result)

	actions := sess.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, model.ActionRecord{ID: id, Action: model.ActionCancelled, Date: "2025-03-10", Time: "09:00"}, actions[1])

	out, _ = tools.CancelAppointment(ctx, CancelAppointmentInput{AppointmentID: id})
	assert.Equal(t, AlreadyCancelledSentence, out)

	out, _ = tools.CancelAppointment(ctx, CancelAppointmentInput{AppointmentID: "ffffffff"})
	assert.Equal(t, CancelNotFoundSentence, out)
	assert.Len(t, sess.Actions(), 2)
}

func TestModifyAppointment(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	tools, sess, sink := newToolSet(store, "room-1")
	identify(t, tools, "5551234567", "")

	tools.BookAppointment(ctx, BookAppointmentInput{Date: "2025-03-10", Time: "09:00"})
	tools.BookAppointment(ctx, BookAppointmentInput{Date: "2025-03-10", Time: "10:00"})
	id := sess.Actions()[0].ID

	out, _ := tools.ModifyAppointment(ctx, ModifyAppointmentInput{AppointmentID: id, NewDate: "2025-03-10", NewTime: "10:00"})
	assert.Equal(t, "Could not modify appointment: Slot 2025-03-10 at 10:00 is already booked. The new slot may be unavailable.", out)

	out, _ = tools.ModifyAppointment(ctx, ModifyAppointmentInput{AppointmentID: id[:8], NewDate: "2025-03-12", NewTime: "3pm"})
	assert.Equal(t, "Your appointment has been rescheduled to Wednesday, March 12 at Afternoon - 3:00 PM.", out)

	actions := sess.Actions()
	require.Len(t, actions, 3)
	assert.Equal(t, model.ActionRecord{
		ID:      id,
		Action:  model.ActionModified,
		OldDate: "2025-03-10",
		OldTime: "09:00",
		NewDate: "2025-03-12",
		NewTime: "15:00",
	}, actions[2])

	result := sink.last(t).Result.(map[string]any)
	assert.Equal(t, "Afternoon - 3:00 PM", result["new_slot"])
	assert.Equal(t, model.ActionModified, result["status"])

	available, err := store.IsSlotAvailable(ctx, "2025-03-10", "09:00")
	require.NoError(t, err)
	assert.True(t, available, "the old slot is released")

	tools.CancelAppointment(ctx, CancelAppointmentInput{AppointmentID: id})
	out, _ = tools.ModifyAppointment(ctx, ModifyAppointmentInput{AppointmentID: id, NewDate: "2025-03-13", NewTime: "09:00"})
	assert.Equal(t, ModifyCancelledSentence, out)

	out, _ = tools.ModifyAppointment(ctx, ModifyAppointmentInput{AppointmentID: "ffffffff", NewDate: "2025-03-13", NewTime: "09:00"})
	assert.Equal(t, ModifyNotFoundSentence, out)

	out, _ = tools.ModifyAppointment(ctx, ModifyAppointmentInput{AppointmentID: id, NewDate: "2025-03-13", NewTime: "noon"})
	assert.Equal(t, InvalidSlotSentence, out)
}

func TestEndConversation(t *testing.T) {
	ctx := context.Background()
	tools, sess, sink := newToolSet(newStore(), "room-1")

	out, _ := tools.EndConversation(ctx, EndConversationInput{})
	assert.Equal(t, "END_CONVERSATION: Conversation ended. Reason: user requested. Please say goodbye to the user.", out)
	result := sink.last(t).Result.(map[string]any)
	assert.Nil(t, result["user_id"])
	assert.Equal(t, true, result["should_end"])

	identify(t, tools, "5551234567", "Jane Doe")
	out, _ = tools.EndConversation(ctx, EndConversationInput{
		Reason:      "  all done ",
		Preferences: []string{"prefers mornings", "Prefers Mornings"},
	})
	assert.True(t, strings.HasPrefix(out, EndConversationSentinel))
	assert.Contains(t, out, "Reason: all done.")
	assert.Equal(t, []string{"prefers mornings"}, sess.Preferences())

	result = sink.last(t).Result.(map[string]any)
	assert.Equal(t, "5551234567", result["user_phone"])
	assert.Equal(t, "Jane Doe", result["user_name"])
	assert.Equal(t, []string{"prefers mornings"}, result["preferences_mentioned"])
}

func TestInvoke(t *testing.T) {
	ctx := context.Background()
	tools, sess, _ := newToolSet(newStore(), "room-1")

	out, err := tools.Invoke(ctx, IdentifyUser, json.RawMessage(`{"phone_number":"5551234567","name":"Sam"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome back, Sam!")
	_, ok := sess.Caller()
	assert.True(t, ok)

	out, err = tools.Invoke(ctx, RetrieveAppointments, nil)
	require.NoError(t, err)
	assert.Equal(t, NoAppointmentsSentence, out)

	_, err = tools.Invoke(ctx, "transfer_call", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrUnknownTool)

	_, err = tools.Invoke(ctx, BookAppointment, json.RawMessage(`{"date":`))
	assert.Error(t, err)
}

func TestInvoke_UndecodableArgumentsEmitEvent(t *testing.T) {
	tools, _, sink := newToolSet(newStore(), "room-1")

	_, err := tools.Invoke(context.Background(), BookAppointment, json.RawMessage(`{"date":`))
	require.Error(t, err)

	call := sink.last(t)
	assert.Equal(t, BookAppointment, call.Tool)
	assert.Equal(t, map[string]any{"arguments": `{"date":`}, call.Params)
	result, ok := call.Result.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, result["error"], "Invalid arguments")
}

func TestSinkFailureStillAnswers(t *testing.T) {
	tools, _, sink := newToolSet(newStore(), "room-1")
	sink.err = errors.New("broker down")

	out, _ := tools.IdentifyUser(context.Background(), IdentifyUserInput{PhoneNumber: "5551234567"})
	assert.True(t, strings.HasPrefix(out, "User identified successfully."))
}

func TestCatalogCoversEveryTool(t *testing.T) {
	var names []string
	for _, def := range Catalog() {
		names = append(names, def.Name)
		assert.Equal(t, "object", def.Parameters["type"])
	}
	assert.Equal(t, Names(), names)
}
