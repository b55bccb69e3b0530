package errors

import "errors"

var (
	ErrNotFound = errors.New("record not found")

	ErrInvalidID = errors.New("invalid appointment ID format")

	ErrCallerExists = errors.New("caller with this contact number already exists")

	ErrSlotConflict = errors.New("slot is already booked")

	ErrNotOwned = errors.New("appointment belongs to another caller")

	ErrAlreadyCancelled = errors.New("appointment is already cancelled")

	ErrAmbiguousID = errors.New("appointment ID prefix matches more than one appointment")

	// ErrStore marks transport or driver failures of the persistence layer.
	ErrStore = errors.New("booking store unavailable")
)
