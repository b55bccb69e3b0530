package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"voicebooking/internal/bookings/service"
	"voicebooking/internal/events"
	"voicebooking/internal/slots"
	"voicebooking/pkg/model"
)

func (t *ToolSet) BookAppointment(ctx context.Context, in BookAppointmentInput) (string, events.Event) {
	started := time.Now()

	caller, ok := t.sess.Caller()
	if !ok {
		return t.report(ctx, BookAppointment, started, outcomeNotIdentified,
			map[string]any{"date": in.Date, "time": in.Time},
			errorResult(errUserNotIdentified),
			NotIdentifiedSentence,
		)
	}

	if err := t.validator.Validate(in); err != nil {
		return t.report(ctx, BookAppointment, started, outcomeInvalidInput,
			map[string]any{"date": in.Date, "time": in.Time},
			errorResult(err.Error()),
			InvalidSlotSentence,
		)
	}

	hhmm, _ := slots.NormalizeTime(in.Time)
	label := in.SlotName
	if label == "" {
		label, _ = slots.LabelFor(hhmm)
	}

	result, err := t.store.Book(ctx, caller.ID, in.Date, hhmm, label)
	if err != nil {
		t.log.Error("Failed to book appointment", "caller_id", caller.ID, "date", in.Date, "time", hhmm, "error", err)
		return t.report(ctx, BookAppointment, started, outcomeStoreError,
			map[string]any{"date": in.Date, "time": hhmm},
			errorResult(errStoreUnavailable),
			StoreFailureSentence,
		)
	}
	if result.Outcome == service.OutcomeSlotConflict {
		return t.report(ctx, BookAppointment, started, result.Outcome.String(),
			map[string]any{"date": in.Date, "time": hhmm},
			errorResult(slotConflictReason(in.Date, hhmm)),
			bookConflictSentence(in.Date, hhmm),
		)
	}

	appointment := result.Appointment
	t.sess.AppendAction(model.ActionRecord{
		ID:     appointment.ID,
		Action: model.ActionBooked,
		Date:   appointment.Date,
		Time:   appointment.Time,
		Slot:   appointment.Label,
	})

	return t.report(ctx, BookAppointment, started, outcomeOK,
		map[string]any{"date": appointment.Date, "time": appointment.Time, "slot": appointment.Label},
		map[string]any{
			"appointment_id": appointment.ID,
			"date":           appointment.Date,
			"time":           appointment.Time,
			"slot":           appointment.Label,
			"status":         model.StatusBooked,
		},
		bookedSentence(slots.SpokenDate(appointment.Date), appointment.Label, appointment.ShortID()),
	)
}

func (t *ToolSet) RetrieveAppointments(ctx context.Context, in RetrieveAppointmentsInput) (string, events.Event) {
	started := time.Now()

	caller, ok := t.sess.Caller()
	if !ok {
		return t.report(ctx, RetrieveAppointments, started, outcomeNotIdentified,
			map[string]any{},
			errorResult(errUserNotIdentified),
			NotIdentifiedSentence,
		)
	}

	params := map[string]any{"include_cancelled": in.IncludeCancelled}
	appointments, err := t.store.ListAppointments(ctx, caller.ID, in.IncludeCancelled)
	if err != nil {
		t.log.Error("Failed to retrieve appointments", "caller_id", caller.ID, "error", err)
		return t.report(ctx, RetrieveAppointments, started, outcomeStoreError, params, errorResult(errStoreUnavailable), StoreFailureSentence)
	}

	result := map[string]any{"appointments": appointments, "count": len(appointments)}
	return t.report(ctx, RetrieveAppointments, started, outcomeOK, params, result, describeAppointments(appointments))
}

// describeAppointments lists each appointment with its 8-character confirmation id.
func describeAppointments(appointments []*model.Appointment) string {
	if len(appointments) == 0 {
		return NoAppointmentsSentence
	}

	parts := make([]string, 0, len(appointments))
	for _, a := range appointments {
		status := ""
		if a.Status == model.StatusCancelled {
			status = " (cancelled)"
		}
		parts = append(parts, fmt.Sprintf("%s on %s%s, ID: %s", a.Label, slots.SpokenDate(a.Date), status, a.ShortID()))
	}

	if len(parts) == 1 {
		return fmt.Sprintf("You have one appointment: %s.", parts[0])
	}
	return fmt.Sprintf("You have %d appointments: %s, and %s.",
		len(parts), strings.Join(parts[:len(parts)-1], ", "), parts[len(parts)-1])
}

func (t *ToolSet) CancelAppointment(ctx context.Context, in CancelAppointmentInput) (string, events.Event) {
	started := time.Now()
	params := map[string]any{"appointment_id": in.AppointmentID}

	caller, ok := t.sess.Caller()
	if !ok {
		return t.report(ctx, CancelAppointment, started, outcomeNotIdentified, params, errorResult(errUserNotIdentified), NotIdentifiedSentence)
	}

	result, err := t.store.CancelOwned(ctx, caller.ID, in.AppointmentID)
	if err != nil {
		t.log.Error("Failed to cancel appointment", "caller_id", caller.ID, "appointment_id", in.AppointmentID, "error", err)
		return t.report(ctx, CancelAppointment, started, outcomeStoreError, params, errorResult(errStoreUnavailable), StoreFailureSentence)
	}

	outcome := result.Outcome.String()
	switch result.Outcome {
	case service.OutcomeNotFound:
		return t.report(ctx, CancelAppointment, started, outcome, params, errorResult(errNotFound), CancelNotFoundSentence)
	case service.OutcomeNotOwned:
		return t.report(ctx, CancelAppointment, started, outcome, params, errorResult(errUnauthorized), NotOwnedSentence)
	case service.OutcomeAlreadyCancelled:
		return t.report(ctx, CancelAppointment, started, outcome, params, errorResult(errAlreadyCancelled), AlreadyCancelledSentence)
	case service.OutcomeAmbiguous:
		return t.report(ctx, CancelAppointment, started, outcome, params, errorResult(errAmbiguous), AmbiguousIDSentence)
	}

	previous := result.Previous
	t.sess.AppendAction(model.ActionRecord{
		ID:     previous.ID,
		Action: model.ActionCancelled,
		Date:   previous.Date,
		Time:   previous.Time,
	})

	return t.report(ctx, CancelAppointment, started, outcome,
		map[string]any{"appointment_id": previous.ID},
		map[string]any{"appointment_id": previous.ID, "status": model.StatusCancelled},
		cancelledSentence(previous.Date, previous.Label),
	)
}

func (t *ToolSet) ModifyAppointment(ctx context.Context, in ModifyAppointmentInput) (string, events.Event) {
	started := time.Now()
	params := map[string]any{"appointment_id": in.AppointmentID}

	caller, ok := t.sess.Caller()
	if !ok {
		return t.report(ctx, ModifyAppointment, started, outcomeNotIdentified, params, errorResult(errUserNotIdentified), NotIdentifiedSentence)
	}

	if err := t.validator.Validate(in); err != nil {
		return t.report(ctx, ModifyAppointment, started, outcomeInvalidInput, params, errorResult(err.Error()), InvalidSlotSentence)
	}

	hhmm, _ := slots.NormalizeTime(in.NewTime)
	label := in.NewSlotName
	if label == "" {
		label, _ = slots.LabelFor(hhmm)
	}

	result, err := t.store.RescheduleOwned(ctx, caller.ID, in.AppointmentID, in.NewDate, hhmm, label)
	if err != nil {
		t.log.Error("Failed to modify appointment",
			"caller_id", caller.ID,
			"appointment_id", in.AppointmentID,
			"new_date", in.NewDate,
			"new_time", hhmm,
			"error", err,
		)
		return t.report(ctx, ModifyAppointment, started, outcomeStoreError, params, errorResult(errStoreUnavailable), StoreFailureSentence)
	}

	outcome := result.Outcome.String()
	switch result.Outcome {
	case service.OutcomeNotFound:
		return t.report(ctx, ModifyAppointment, started, outcome, params, errorResult(errNotFound), ModifyNotFoundSentence)
	case service.OutcomeNotOwned:
		return t.report(ctx, ModifyAppointment, started, outcome, params, errorResult(errUnauthorized), NotOwnedSentence)
	case service.OutcomeAlreadyCancelled:
		return t.report(ctx, ModifyAppointment, started, outcome, params, errorResult(errCancelled), ModifyCancelledSentence)
	case service.OutcomeAmbiguous:
		return t.report(ctx, ModifyAppointment, started, outcome, params, errorResult(errAmbiguous), AmbiguousIDSentence)
	case service.OutcomeSlotConflict:
		return t.report(ctx, ModifyAppointment, started, outcome, params,
			errorResult(slotConflictReason(in.NewDate, hhmm)),
			modifyConflictSentence(in.NewDate, hhmm),
		)
	}

	previous, modified := result.Previous, result.Appointment
	t.sess.AppendAction(model.ActionRecord{
		ID:      modified.ID,
		Action:  model.ActionModified,
		OldDate: previous.Date,
		OldTime: previous.Time,
		NewDate: modified.Date,
		NewTime: modified.Time,
	})

	return t.report(ctx, ModifyAppointment, started, outcome,
		map[string]any{"appointment_id": modified.ID, "new_date": modified.Date, "new_time": modified.Time},
		map[string]any{
			"appointment_id": modified.ID,
			"new_date":       modified.Date,
			"new_time":       modified.Time,
			"new_slot":       modified.Label,
			"status":         model.ActionModified,
		},
		rescheduledSentence(slots.SpokenDate(modified.Date), modified.Label),
	)
}
