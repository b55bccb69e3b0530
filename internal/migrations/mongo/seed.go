package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "voicebooking/internal/bookings/errors"
	"voicebooking/internal/bookings/service"
	"voicebooking/internal/slots"
	"voicebooking/pkg/logger"
	"voicebooking/pkg/model"
)

const DemoSessionID = "demo-session-5551234567"

type demoCaller struct {
	phone string
	name  string
}

type demoAppointment struct {
	caller    int
	dayOffset int
	hhmm      string
	cancelled bool
}

var (
	demoCallers = []demoCaller{
		{phone: "5551234567", name: "John Smith"},
		{phone: "5559876543", name: "Sarah Johnson"},
		{phone: "5555551212", name: "Mike Wilson"},
		{phone: "5550001111", name: "Emily Davis"},
		{phone: "5552223333"},
	}

	demoAppointments = []demoAppointment{
		{caller: 0, dayOffset: 2, hhmm: "09:00"},
		{caller: 0, dayOffset: 5, hhmm: "14:00"},
		{caller: 1, dayOffset: 3, hhmm: "10:00"},
		{caller: 1, dayOffset: 1, hhmm: "15:00", cancelled: true},
		{caller: 2, dayOffset: 4, hhmm: "11:00"},
		{caller: 3, dayOffset: 2, hhmm: "10:00"},
	}
)

type SeedReport struct {
	CallersCreated      int
	AppointmentsCreated int
	AppointmentsSkipped int
	SummaryCreated      bool
}

// SeedDemoData inserts demo callers, their appointments relative to now and one
// past conversation. Rows that already exist are left untouched.
func SeedDemoData(ctx context.Context, store service.BookingStore, now time.Time, log *logger.Logger) (SeedReport, error) {
	var report SeedReport

	callers := make([]*model.Caller, len(demoCallers))
	for i, dc := range demoCallers {
		caller, created, err := store.GetOrCreateCaller(ctx, dc.phone, dc.name)
		if err != nil {
			return report, fmt.Errorf("seed caller %s: %w", dc.phone, err)
		}
		if created {
			report.CallersCreated++
		}
		callers[i] = caller
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, da := range demoAppointments {
		caller := callers[da.caller]
		date := today.AddDate(0, 0, da.dayOffset).Format(model.DateLayout)

		exists, err := hasAppointment(ctx, store, caller.ID, date, da.hhmm)
		if err != nil {
			return report, err
		}
		if exists {
			report.AppointmentsSkipped++
			continue
		}

		label, _ := slots.LabelFor(da.hhmm)
		result, err := store.Book(ctx, caller.ID, date, da.hhmm, label)
		if err != nil {
			return report, fmt.Errorf("seed appointment %s %s: %w", date, da.hhmm, err)
		}
		if !result.OK() {
			log.Warn("Demo slot already taken", "date", date, "time", da.hhmm, "outcome", result.Outcome.String())
			report.AppointmentsSkipped++
			continue
		}
		if da.cancelled {
			if _, err := store.CancelAppointment(ctx, result.Appointment.ID); err != nil {
				return report, fmt.Errorf("seed cancellation %s: %w", result.Appointment.ID, err)
			}
		}
		report.AppointmentsCreated++
	}

	created, err := seedConversation(ctx, store, callers[0], today)
	if err != nil {
		return report, err
	}
	report.SummaryCreated = created

	log.Info("Demo data seeded",
		"callers_created", report.CallersCreated,
		"appointments_created", report.AppointmentsCreated,
		"appointments_skipped", report.AppointmentsSkipped,
		"summary_created", report.SummaryCreated,
	)
	return report, nil
}

func hasAppointment(ctx context.Context, store service.BookingStore, callerID, date, hhmm string) (bool, error) {
	existing, err := store.ListAppointments(ctx, callerID, true)
	if err != nil {
		return false, fmt.Errorf("list demo appointments: %w", err)
	}
	for _, a := range existing {
		if a.Date == date && a.Time == hhmm {
			return true, nil
		}
	}
	return false, nil
}

func seedConversation(ctx context.Context, store service.BookingStore, caller *model.Caller, today time.Time) (bool, error) {
	_, err := store.FindSummaryBySession(ctx, DemoSessionID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, bookingserrors.ErrNotFound) {
		return false, fmt.Errorf("find demo summary: %w", err)
	}

	date := today.AddDate(0, 0, 2).Format(model.DateLayout)
	label, _ := slots.LabelFor("09:00")
	transcript := []model.TranscriptEntry{
		{Role: model.RoleAssistant, Content: "Hello! I'm Alex, your appointment booking assistant. How can I help you today?"},
		{Role: model.RoleUser, Content: "Hi, I'd like to book an appointment"},
		{Role: model.RoleAssistant, Content: "I'd be happy to help you book an appointment. May I have your phone number please?"},
		{Role: model.RoleUser, Content: "Sure, it's 555-123-4567"},
		{Role: model.RoleAssistant, Content: "Thank you John! When would you like to schedule your appointment?"},
		{Role: model.RoleUser, Content: "Do you have anything in the morning?"},
		{Role: model.RoleAssistant, Content: "Yes! I have Morning - 9:00 AM and Morning - 10:00 AM available. Which works better for you?"},
		{Role: model.RoleUser, Content: "9 AM works great"},
		{Role: model.RoleAssistant, Content: "I've booked your appointment for Morning - 9:00 AM. Is there anything else I can help you with?"},
		{Role: model.RoleUser, Content: "No, that's all. Thank you!"},
	}
	for i := range transcript {
		transcript[i].Timestamp = today.Add(time.Duration(i) * 10 * time.Second)
	}

	_, err = store.SaveConversationSummary(ctx, &model.ConversationSummary{
		CallerID:  caller.ID,
		SessionID: DemoSessionID,
		Summary:   "User John Smith called to book an appointment. Successfully booked for Morning - 9:00 AM. User mentioned preference for morning slots.",
		AppointmentsDiscussed: []model.ActionRecord{
			{Action: model.ActionBooked, Date: date, Time: "09:00", Slot: label},
		},
		PreferencesMentioned: []string{"morning appointments", "weekday preferred"},
		Transcript:           transcript,
		CostBreakdown: model.CostBreakdown{
			STTCost:   0.0021,
			TTSCost:   0.0015,
			LLMCost:   0.0012,
			TotalCost: 0.0048,
		},
		DurationSeconds: 95,
		CreatedAt:       today,
	})
	if err != nil {
		return false, fmt.Errorf("seed demo summary: %w", err)
	}
	return true, nil
}
