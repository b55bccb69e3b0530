package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "voicebooking/internal/bookings/errors"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CallersCollection       = "Callers"
	AppointmentsCollection  = "Appointments"
	ConversationsCollection = "Conversations"
)

// withTimeout wraps the context with a timeout if not already in a transaction.
// A SessionContext is returned unchanged with a no-op cancel, since wrapping it
// detaches the operation from the transaction.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", bookingserrors.ErrStore, op, err)
}
