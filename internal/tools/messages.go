package tools

import "fmt"

// Sentences returned to the decision-maker. They are read aloud, so they stay short.
const (
	InvalidPhoneSentence      = "The phone number seems invalid. Please ask for a valid 10-digit phone number."
	NotIdentifiedSentence     = "I need to identify you first. Please provide your phone number."
	InvalidSlotSentence       = "That time isn't one of our appointment slots. Please pick a time from the available slots."
	NoAppointmentsSentence    = "You don't have any upcoming appointments scheduled."
	CancelNotFoundSentence    = "I couldn't find that appointment. Please check the ID and try again."
	ModifyNotFoundSentence    = "I couldn't find that appointment."
	NotOwnedSentence          = "That appointment doesn't belong to your account."
	AlreadyCancelledSentence  = "That appointment is already cancelled."
	ModifyCancelledSentence   = "Cannot modify a cancelled appointment. Please book a new one."
	AmbiguousIDSentence       = "More than one appointment matches that ID. Please read me the full confirmation ID."
	StoreFailureSentence      = "I'm having trouble reaching the booking system right now. Please try again in a moment."
	InvalidArgumentsSentence  = "I couldn't read the details for that request. Please try again."
	EndConversationSentinel   = "END_CONVERSATION"
	DefaultEndReason          = "user requested"
	identifiedByPhoneGreeting = "I've identified you by your phone number."
)

// Event error values for the dashboard.
const (
	errUserNotIdentified = "User not identified"
	errNotFound          = "Not found"
	errUnauthorized      = "Unauthorized"
	errAlreadyCancelled  = "Already cancelled"
	errCancelled         = "Cancelled"
	errAmbiguous         = "Ambiguous appointment ID"
	errStoreUnavailable  = "Booking store unavailable"
)

func identifiedSentence(name, callerID string) string {
	greeting := identifiedByPhoneGreeting
	if name != "" {
		greeting = fmt.Sprintf("Welcome back, %s!", name)
	}
	return fmt.Sprintf("User identified successfully. %s User ID: %s", greeting, callerID)
}

func slotConflictReason(date, hhmm string) string {
	return fmt.Sprintf("Slot %s at %s is already booked", date, hhmm)
}

func bookedSentence(spokenDate, label, shortID string) string {
	return fmt.Sprintf("Appointment booked successfully for %s at %s. Your confirmation ID is %s.", spokenDate, label, shortID)
}

func bookConflictSentence(date, hhmm string) string {
	return fmt.Sprintf("Could not book appointment: %s. Please choose a different time slot.", slotConflictReason(date, hhmm))
}

func cancelledSentence(date, label string) string {
	return fmt.Sprintf("Your appointment on %s at %s has been cancelled.", date, label)
}

func modifyConflictSentence(date, hhmm string) string {
	return fmt.Sprintf("Could not modify appointment: %s. The new slot may be unavailable.", slotConflictReason(date, hhmm))
}

func rescheduledSentence(spokenDate, label string) string {
	return fmt.Sprintf("Your appointment has been rescheduled to %s at %s.", spokenDate, label)
}

func endSentence(reason string) string {
	return fmt.Sprintf("%s: Conversation ended. Reason: %s. Please say goodbye to the user.", EndConversationSentinel, reason)
}
