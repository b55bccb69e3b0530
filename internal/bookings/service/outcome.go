package service

import (
	"errors"

	bookingserrors "voicebooking/internal/bookings/errors"
	"voicebooking/pkg/model"
)

// Outcome tags the expected, caller-facing results of an appointment mutation.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeNotOwned
	OutcomeAlreadyCancelled
	OutcomeSlotConflict
	OutcomeAmbiguous
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeNotOwned:
		return "not_owned"
	case OutcomeAlreadyCancelled:
		return "already_cancelled"
	case OutcomeSlotConflict:
		return "slot_conflict"
	case OutcomeAmbiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// AppointmentResult is returned by the caller-scoped mutations. Previous is set
// by CancelOwned and RescheduleOwned and holds the appointment as it was before the change.
type AppointmentResult struct {
	Appointment *model.Appointment
	Previous    *model.Appointment
	Outcome     Outcome
}

func (r AppointmentResult) OK() bool {
	return r.Outcome == OutcomeOK
}

// OutcomeOf maps the caller-facing sentinels to an outcome. Any other error is a store failure.
func OutcomeOf(err error) (Outcome, bool) {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound), errors.Is(err, bookingserrors.ErrInvalidID):
		return OutcomeNotFound, true
	case errors.Is(err, bookingserrors.ErrNotOwned):
		return OutcomeNotOwned, true
	case errors.Is(err, bookingserrors.ErrAlreadyCancelled):
		return OutcomeAlreadyCancelled, true
	case errors.Is(err, bookingserrors.ErrSlotConflict):
		return OutcomeSlotConflict, true
	case errors.Is(err, bookingserrors.ErrAmbiguousID):
		return OutcomeAmbiguous, true
	}
	return OutcomeOK, false
}

func refused(err error) (AppointmentResult, error) {
	if outcome, ok := OutcomeOf(err); ok {
		return AppointmentResult{Outcome: outcome}, nil
	}
	return AppointmentResult{}, err
}
