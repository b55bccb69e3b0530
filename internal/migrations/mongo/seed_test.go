package mongo

import (
	"context"
	"testing"
	"time"

	"voicebooking/internal/bookings/repository"
	"voicebooking/internal/bookings/service"
	"voicebooking/internal/bookings/validator"
	"voicebooking/pkg/config"
	"voicebooking/pkg/logger"
	"voicebooking/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryStore() service.BookingStore {
	log := logger.Discard()
	return service.NewBookingStore(
		repository.NewMemoryCallerRepository(),
		repository.NewMemoryAppointmentRepository(),
		repository.NewMemoryConversationRepository(),
		validator.New(log),
		&config.Config{Log: log, RecentAppointmentScan: config.DefaultRecentAppointmentScan},
	)
}

func TestSeedDemoData(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	now := time.Date(2025, time.March, 10, 8, 30, 0, 0, time.UTC)

	report, err := SeedDemoData(ctx, store, now, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, SeedReport{CallersCreated: 5, AppointmentsCreated: 6, SummaryCreated: true}, report)

	john, err := store.FindCallerByPhone(ctx, "5551234567")
	require.NoError(t, err)
	assert.Equal(t, "John Smith", john.Name)

	upcoming, err := store.ListAppointments(ctx, john.ID, false)
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, "2025-03-12", upcoming[0].Date)
	assert.Equal(t, "Morning - 9:00 AM", upcoming[0].Label)

	sarah, err := store.FindCallerByPhone(ctx, "5559876543")
	require.NoError(t, err)
	all, err := store.ListAppointments(ctx, sarah.ID, true)
	require.NoError(t, err)
	booked, err := store.ListAppointments(ctx, sarah.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Len(t, booked, 1)

	unnamed, err := store.FindCallerByPhone(ctx, "5552223333")
	require.NoError(t, err)
	assert.Empty(t, unnamed.Name)

	free, err := store.IsSlotAvailable(ctx, "2025-03-12", "10:00")
	require.NoError(t, err)
	assert.False(t, free, "Emily holds the 10:00 slot next to John's")

	summary, err := store.FindSummaryBySession(ctx, DemoSessionID)
	require.NoError(t, err)
	assert.Equal(t, john.ID, summary.CallerID)
	assert.Equal(t, []string{"morning appointments", "weekday preferred"}, summary.PreferencesMentioned)
	assert.Equal(t, model.ActionBooked, summary.AppointmentsDiscussed[0].Action)
}

func TestSeedDemoData_SkipsExistingRows(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	now := time.Date(2025, time.March, 10, 8, 30, 0, 0, time.UTC)

	_, err := SeedDemoData(ctx, store, now, logger.Discard())
	require.NoError(t, err)

	report, err := SeedDemoData(ctx, store, now, logger.Discard())
	require.NoError(t, err)
	assert.Equal(t, SeedReport{AppointmentsSkipped: 6}, report)

	john, err := store.FindCallerByPhone(ctx, "5551234567")
	require.NoError(t, err)
	all, err := store.ListAppointments(ctx, john.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
