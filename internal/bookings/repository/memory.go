package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingserrors "voicebooking/internal/bookings/errors"
	mongotx "voicebooking/pkg/db/mongo"
	"voicebooking/pkg/model"
)

// The in-memory repositories back STORE_DRIVER=memory and the package tests.
// They enforce the same uniqueness rules as the Mongo indexes and hand out copies.

type memoryCallerRepository struct {
	mu      sync.RWMutex
	byID    map[string]*model.Caller
	byPhone map[string]string
}

func NewMemoryCallerRepository() CallerRepository {
	return &memoryCallerRepository{
		byID:    make(map[string]*model.Caller),
		byPhone: make(map[string]string),
	}
}

func (r *memoryCallerRepository) Create(_ context.Context, caller *model.Caller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byPhone[caller.ContactNumber]; exists {
		return bookingserrors.ErrCallerExists
	}
	if caller.CreatedAt.IsZero() {
		caller.CreatedAt = time.Now().UTC()
	}
	stored := *caller
	r.byID[caller.ID] = &stored
	r.byPhone[caller.ContactNumber] = caller.ID
	return nil
}

func (r *memoryCallerRepository) FindByID(_ context.Context, id string) (*model.Caller, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	caller, ok := r.byID[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	found := *caller
	return &found, nil
}

func (r *memoryCallerRepository) FindByPhone(ctx context.Context, phone string) (*model.Caller, error) {
	r.mu.RLock()
	id, ok := r.byPhone[phone]
	r.mu.RUnlock()
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *memoryCallerRepository) UpdateName(_ context.Context, id string, name string) (*model.Caller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	caller, ok := r.byID[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	caller.Name = name
	updated := *caller
	return &updated, nil
}

type memoryAppointmentRepository struct {
	mu        sync.RWMutex
	rows      []*model.Appointment
	txManager mongotx.TransactionManager
}

func NewMemoryAppointmentRepository() AppointmentRepository {
	return &memoryAppointmentRepository{
		txManager: mongotx.NewLocalTransactionManager(),
	}
}

func (r *memoryAppointmentRepository) Create(_ context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if appointment.IsBooked() && r.bookedLocked(appointment.Date, appointment.Time, "") {
		return bookingserrors.ErrSlotConflict
	}

	now := time.Now().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now
	stored := *appointment
	r.rows = append(r.rows, &stored)
	return nil
}

func (r *memoryAppointmentRepository) bookedLocked(date, hhmm, exceptID string) bool {
	for _, a := range r.rows {
		if a.ID != exceptID && a.IsBooked() && a.Date == date && a.Time == hhmm {
			return true
		}
	}
	return false
}

func (r *memoryAppointmentRepository) findLocked(id string) *model.Appointment {
	for _, a := range r.rows {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (r *memoryAppointmentRepository) FindByID(_ context.Context, id string) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a := r.findLocked(id)
	if a == nil {
		return nil, bookingserrors.ErrNotFound
	}
	found := *a
	return &found, nil
}

func (r *memoryAppointmentRepository) FindByCaller(_ context.Context, callerID string, includeCancelled bool) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.Appointment{}
	for _, a := range r.rows {
		if a.CallerID != callerID {
			continue
		}
		if !includeCancelled && a.Status == model.StatusCancelled {
			continue
		}
		found := *a
		out = append(out, &found)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func (r *memoryAppointmentRepository) FindRecent(_ context.Context, limit int) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.Appointment{}
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		found := *r.rows[i]
		out = append(out, &found)
	}
	return out, nil
}

func (r *memoryAppointmentRepository) ExistsBooked(_ context.Context, date, hhmm string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.bookedLocked(date, hhmm, ""), nil
}

func (r *memoryAppointmentRepository) UpdateStatus(_ context.Context, id string, status string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.findLocked(id)
	if a == nil {
		return nil, bookingserrors.ErrNotFound
	}
	if status == model.StatusBooked && !a.IsBooked() && r.bookedLocked(a.Date, a.Time, a.ID) {
		return nil, bookingserrors.ErrSlotConflict
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	updated := *a
	return &updated, nil
}

func (r *memoryAppointmentRepository) Reschedule(_ context.Context, id string, date, hhmm, label string) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := r.findLocked(id)
	if a == nil {
		return nil, bookingserrors.ErrNotFound
	}
	if a.IsBooked() && r.bookedLocked(date, hhmm, a.ID) {
		return nil, bookingserrors.ErrSlotConflict
	}
	a.Date = date
	a.Time = hhmm
	a.Label = label
	a.UpdatedAt = time.Now().UTC()
	updated := *a
	return &updated, nil
}

func (r *memoryAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

type memoryConversationRepository struct {
	mu   sync.RWMutex
	rows []*model.ConversationSummary
}

func NewMemoryConversationRepository() ConversationRepository {
	return &memoryConversationRepository{}
}

func (r *memoryConversationRepository) Create(_ context.Context, summary *model.ConversationSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}
	stored := *summary
	r.rows = append(r.rows, &stored)
	return nil
}

func (r *memoryConversationRepository) FindLatestBySession(_ context.Context, sessionID string) (*model.ConversationSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].SessionID == sessionID {
			found := *r.rows[i]
			return &found, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (r *memoryConversationRepository) FindByCaller(_ context.Context, callerID string, limit int) ([]*model.ConversationSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.ConversationSummary{}
	for i := len(r.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if r.rows[i].CallerID == callerID {
			found := *r.rows[i]
			out = append(out, &found)
		}
	}
	return out, nil
}
