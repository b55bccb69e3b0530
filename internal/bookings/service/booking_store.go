package service

import (
	"context"
	"errors"
	"strings"

	bookingserrors "voicebooking/internal/bookings/errors"
	"voicebooking/internal/bookings/repository"
	"voicebooking/internal/bookings/validator"
	"voicebooking/internal/slots"
	"voicebooking/pkg/config"
	apperrors "voicebooking/pkg/errors"
	"voicebooking/pkg/model"
	"voicebooking/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

const canonicalIDLength = 36

// BookingStore is the transactional surface over callers, appointments and
// conversation summaries. Lookups fail with errors matching the
// internal/bookings/errors sentinels; transport failures match ErrStore.
type BookingStore interface {
	FindCallerByPhone(ctx context.Context, phone string) (*model.Caller, error)
	CreateCaller(ctx context.Context, phone, name string) (*model.Caller, error)
	// GetOrCreateCaller reports created=true only when this call inserted the row.
	GetOrCreateCaller(ctx context.Context, phone, name string) (caller *model.Caller, created bool, err error)
	UpdateCallerName(ctx context.Context, id, name string) (*model.Caller, error)

	ListAppointments(ctx context.Context, callerID string, includeCancelled bool) ([]*model.Appointment, error)
	ResolveAppointmentID(ctx context.Context, idOrPrefix, callerID string) (*model.Appointment, error)
	IsSlotAvailable(ctx context.Context, date, hhmm string) (bool, error)
	BookAppointment(ctx context.Context, callerID, date, hhmm, label string) (*model.Appointment, error)
	CancelAppointment(ctx context.Context, id string) (*model.Appointment, error)
	ModifyAppointment(ctx context.Context, id, date, hhmm, label string) (*model.Appointment, error)

	// Book, CancelOwned and RescheduleOwned return a non-nil error only on store failure.
	Book(ctx context.Context, callerID, date, hhmm, label string) (AppointmentResult, error)
	CancelOwned(ctx context.Context, callerID, idOrPrefix string) (AppointmentResult, error)
	RescheduleOwned(ctx context.Context, callerID, idOrPrefix, date, hhmm, label string) (AppointmentResult, error)

	SaveConversationSummary(ctx context.Context, summary *model.ConversationSummary) (*model.ConversationSummary, error)
	FindSummaryBySession(ctx context.Context, sessionID string) (*model.ConversationSummary, error)
	ListCallerSummaries(ctx context.Context, phone string, limit int) ([]*model.ConversationSummary, error)
}

type bookingStore struct {
	callers       repository.CallerRepository
	appointments  repository.AppointmentRepository
	conversations repository.ConversationRepository
	validator     *validator.Validator
	cfg           *config.Config
}

func NewBookingStore(
	callers repository.CallerRepository,
	appointments repository.AppointmentRepository,
	conversations repository.ConversationRepository,
	validator *validator.Validator,
	cfg *config.Config,
) BookingStore {
	return &bookingStore{
		callers:       callers,
		appointments:  appointments,
		conversations: conversations,
		validator:     validator,
		cfg:           cfg,
	}
}

func (s *bookingStore) FindCallerByPhone(ctx context.Context, phone string) (*model.Caller, error) {
	phone = sanitizer.NormalizePhone(phone)
	caller, err := s.callers.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Caller", phone).WithCause(err)
		}
		return nil, s.storeFailure("find caller by phone", err, "phone", phone)
	}
	return caller, nil
}

func (s *bookingStore) CreateCaller(ctx context.Context, phone, name string) (*model.Caller, error) {
	caller := &model.Caller{
		ID:            uuid.NewString(),
		ContactNumber: sanitizer.NormalizePhone(phone),
		Name:          sanitizer.NormalizeName(name),
	}
	if err := s.validator.Validate(caller); err != nil {
		s.cfg.Log.Warn("Caller validation failed", "error", err)
		return nil, apperrors.Validation("Caller validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.callers.Create(ctx, caller); err != nil {
		if errors.Is(err, bookingserrors.ErrCallerExists) {
			return nil, apperrors.Conflict("Caller already exists").WithCause(err)
		}
		return nil, s.storeFailure("create caller", err, "phone", caller.ContactNumber)
	}

	s.cfg.Log.Info("Caller created", "id", caller.ID)
	return caller, nil
}

func (s *bookingStore) GetOrCreateCaller(ctx context.Context, phone, name string) (*model.Caller, bool, error) {
	caller, err := s.FindCallerByPhone(ctx, phone)
	if err == nil {
		name = sanitizer.NormalizeName(name)
		if name != "" && caller.Name == "" {
			caller, err = s.UpdateCallerName(ctx, caller.ID, name)
			if err != nil {
				return nil, false, err
			}
		}
		return caller, false, nil
	}
	if !errors.Is(err, bookingserrors.ErrNotFound) {
		return nil, false, err
	}

	caller, err = s.CreateCaller(ctx, phone, name)
	if err == nil {
		return caller, true, nil
	}
	if !errors.Is(err, bookingserrors.ErrCallerExists) {
		return nil, false, err
	}

	// Lost the race against a concurrent first contact; the unique index kept the winner.
	caller, err = s.FindCallerByPhone(ctx, phone)
	if err != nil {
		return nil, false, err
	}
	return caller, false, nil
}

func (s *bookingStore) UpdateCallerName(ctx context.Context, id, name string) (*model.Caller, error) {
	caller, err := s.callers.UpdateName(ctx, id, sanitizer.NormalizeName(name))
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Caller", id).WithCause(err)
		}
		return nil, s.storeFailure("update caller name", err, "caller_id", id)
	}
	return caller, nil
}

func (s *bookingStore) ListAppointments(ctx context.Context, callerID string, includeCancelled bool) ([]*model.Appointment, error) {
	appointments, err := s.appointments.FindByCaller(ctx, callerID, includeCancelled)
	if err != nil {
		return nil, s.storeFailure("list appointments", err, "caller_id", callerID)
	}
	return appointments, nil
}

// ResolveAppointmentID matches a full id exactly, or a spoken prefix against the
// caller's appointments (or the most recent ones when callerID is empty).
// More than one prefix match fails with ErrAmbiguousID.
func (s *bookingStore) ResolveAppointmentID(ctx context.Context, idOrPrefix, callerID string) (*model.Appointment, error) {
	key := sanitizer.NormalizeAppointmentID(idOrPrefix)
	if key == "" {
		return nil, apperrors.InvalidInput("Appointment ID is required").WithCause(bookingserrors.ErrInvalidID)
	}

	if len(key) == canonicalIDLength && strings.Contains(key, "-") {
		appointment, err := s.appointments.FindByID(ctx, key)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return nil, apperrors.NotFoundWithID("Appointment", key).WithCause(err)
			}
			return nil, s.storeFailure("find appointment", err, "appointment_id", key)
		}
		return appointment, nil
	}

	var candidates []*model.Appointment
	var err error
	if callerID != "" {
		candidates, err = s.appointments.FindByCaller(ctx, callerID, true)
	} else {
		candidates, err = s.appointments.FindRecent(ctx, s.cfg.RecentAppointmentScan)
	}
	if err != nil {
		return nil, s.storeFailure("scan appointments", err, "prefix", key, "caller_id", callerID)
	}

	var match *model.Appointment
	for _, a := range candidates {
		if !strings.HasPrefix(a.ID, key) {
			continue
		}
		if match != nil {
			s.cfg.Log.Warn("Ambiguous appointment prefix", "prefix", key, "caller_id", callerID)
			return nil, apperrors.Conflict("Appointment ID is ambiguous").WithCause(bookingserrors.ErrAmbiguousID)
		}
		match = a
	}
	if match == nil {
		return nil, apperrors.NotFoundWithID("Appointment", key).WithCause(bookingserrors.ErrNotFound)
	}
	return match, nil
}

func (s *bookingStore) IsSlotAvailable(ctx context.Context, date, hhmm string) (bool, error) {
	booked, err := s.appointments.ExistsBooked(ctx, date, hhmm)
	if err != nil {
		return false, s.storeFailure("check slot", err, "date", date, "time", hhmm)
	}
	return !booked, nil
}

func (s *bookingStore) BookAppointment(ctx context.Context, callerID, date, hhmm, label string) (*model.Appointment, error) {
	available, err := s.IsSlotAvailable(ctx, date, hhmm)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, apperrors.SlotConflict(date, hhmm).WithCause(bookingserrors.ErrSlotConflict)
	}

	if label == "" {
		label, _ = slots.LabelFor(hhmm)
	}
	appointment := &model.Appointment{
		ID:       uuid.NewString(),
		CallerID: callerID,
		Date:     date,
		Time:     hhmm,
		Label:    label,
		Status:   model.StatusBooked,
	}
	if err := s.validator.Validate(appointment); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "error", err)
		return nil, apperrors.Validation("Appointment validation failed", map[string]any{"error": err.Error()})
	}

	// The unique index on booked (date, time) decides races the availability read cannot see.
	if err := s.appointments.Create(ctx, appointment); err != nil {
		if errors.Is(err, bookingserrors.ErrSlotConflict) {
			return nil, apperrors.SlotConflict(date, hhmm).WithCause(err)
		}
		return nil, s.storeFailure("book appointment", err, "caller_id", callerID, "date", date, "time", hhmm)
	}

	s.cfg.Log.Info("Appointment booked",
		"id", appointment.ID,
		"caller_id", callerID,
		"date", date,
		"time", hhmm,
	)
	return appointment, nil
}

func (s *bookingStore) CancelAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	appointment, err := s.appointments.UpdateStatus(ctx, id, model.StatusCancelled)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id).WithCause(err)
		}
		return nil, s.storeFailure("cancel appointment", err, "appointment_id", id)
	}

	s.cfg.Log.Info("Appointment cancelled", "id", id)
	return appointment, nil
}

func (s *bookingStore) ModifyAppointment(ctx context.Context, id, date, hhmm, label string) (*model.Appointment, error) {
	if label == "" {
		label, _ = slots.LabelFor(hhmm)
	}
	appointment, err := s.appointments.Reschedule(ctx, id, date, hhmm, label)
	if err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Appointment", id).WithCause(err)
		case errors.Is(err, bookingserrors.ErrSlotConflict):
			return nil, apperrors.SlotConflict(date, hhmm).WithCause(err)
		}
		return nil, s.storeFailure("modify appointment", err, "appointment_id", id, "date", date, "time", hhmm)
	}

	s.cfg.Log.Info("Appointment modified", "id", id, "date", date, "time", hhmm)
	return appointment, nil
}

func (s *bookingStore) Book(ctx context.Context, callerID, date, hhmm, label string) (AppointmentResult, error) {
	appointment, err := s.BookAppointment(ctx, callerID, date, hhmm, label)
	if err != nil {
		return refused(err)
	}
	return AppointmentResult{Appointment: appointment, Outcome: OutcomeOK}, nil
}

func (s *bookingStore) CancelOwned(ctx context.Context, callerID, idOrPrefix string) (AppointmentResult, error) {
	var result AppointmentResult
	err := s.appointments.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.resolveOwned(sessCtx, callerID, idOrPrefix)
		if err != nil {
			return err
		}

		cancelled, err := s.CancelAppointment(sessCtx, existing.ID)
		if err != nil {
			return err
		}
		result = AppointmentResult{Appointment: cancelled, Previous: existing, Outcome: OutcomeOK}
		return nil
	})
	if err != nil {
		return refused(err)
	}
	return result, nil
}

func (s *bookingStore) RescheduleOwned(ctx context.Context, callerID, idOrPrefix, date, hhmm, label string) (AppointmentResult, error) {
	var result AppointmentResult
	err := s.appointments.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.resolveOwned(sessCtx, callerID, idOrPrefix)
		if err != nil {
			return err
		}

		if existing.Date != date || existing.Time != hhmm {
			available, err := s.IsSlotAvailable(sessCtx, date, hhmm)
			if err != nil {
				return err
			}
			if !available {
				return apperrors.SlotConflict(date, hhmm).WithCause(bookingserrors.ErrSlotConflict)
			}
		}

		modified, err := s.ModifyAppointment(sessCtx, existing.ID, date, hhmm, label)
		if err != nil {
			return err
		}
		result = AppointmentResult{Appointment: modified, Previous: existing, Outcome: OutcomeOK}
		return nil
	})
	if err != nil {
		return refused(err)
	}
	return result, nil
}

// resolveOwned returns a booked appointment of callerID, or an error wrapping
// one of the caller-facing sentinels.
func (s *bookingStore) resolveOwned(ctx context.Context, callerID, idOrPrefix string) (*model.Appointment, error) {
	appointment, err := s.ResolveAppointmentID(ctx, idOrPrefix, callerID)
	if err != nil {
		return nil, err
	}
	if appointment.CallerID != callerID {
		s.cfg.Log.Warn("Appointment ownership mismatch",
			"appointment_id", appointment.ID,
			"caller_id", callerID,
		)
		return nil, apperrors.Forbidden("Appointment belongs to another caller").WithCause(bookingserrors.ErrNotOwned)
	}
	if appointment.Status == model.StatusCancelled {
		return nil, apperrors.Conflict("Appointment is already cancelled").WithCause(bookingserrors.ErrAlreadyCancelled)
	}
	return appointment, nil
}

func (s *bookingStore) SaveConversationSummary(ctx context.Context, summary *model.ConversationSummary) (*model.ConversationSummary, error) {
	if summary.ID == "" {
		summary.ID = uuid.NewString()
	}
	if summary.AppointmentsDiscussed == nil {
		summary.AppointmentsDiscussed = []model.ActionRecord{}
	}
	if summary.PreferencesMentioned == nil {
		summary.PreferencesMentioned = []string{}
	}
	if summary.Transcript == nil {
		summary.Transcript = []model.TranscriptEntry{}
	}
	if err := s.validator.Validate(summary); err != nil {
		s.cfg.Log.Warn("Conversation summary validation failed", "session_id", summary.SessionID, "error", err)
		return nil, apperrors.Validation("Conversation summary validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.conversations.Create(ctx, summary); err != nil {
		return nil, s.storeFailure("save conversation summary", err,
			"session_id", summary.SessionID,
			"caller_id", summary.CallerID,
		)
	}

	s.cfg.Log.Info("Conversation summary saved", "id", summary.ID, "session_id", summary.SessionID)
	return summary, nil
}

func (s *bookingStore) FindSummaryBySession(ctx context.Context, sessionID string) (*model.ConversationSummary, error) {
	summary, err := s.conversations.FindLatestBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Conversation summary", sessionID).WithCause(err)
		}
		return nil, s.storeFailure("find conversation summary", err, "session_id", sessionID)
	}
	return summary, nil
}

func (s *bookingStore) ListCallerSummaries(ctx context.Context, phone string, limit int) ([]*model.ConversationSummary, error) {
	caller, err := s.FindCallerByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	summaries, err := s.conversations.FindByCaller(ctx, caller.ID, config.NormalizePaginationLimit(limit))
	if err != nil {
		return nil, s.storeFailure("list conversation summaries", err, "caller_id", caller.ID)
	}
	return summaries, nil
}

func (s *bookingStore) storeFailure(op string, err error, args ...any) error {
	s.cfg.Log.Error("Booking store operation failed", append([]any{"operation", op, "error", err}, args...)...)
	return apperrors.Unavailable("Booking store").WithCause(err)
}
