package tools

type IdentifyUserInput struct {
	PhoneNumber string `json:"phone_number" validate:"required,callerphone"`
	Name        string `json:"name,omitempty" validate:"omitempty,max=100"`
}

type FetchSlotsInput struct {
	DaysAhead int `json:"days_ahead,omitempty"`
}

type BookAppointmentInput struct {
	Date     string `json:"date" validate:"required,slotdate"`
	Time     string `json:"time" validate:"required,slottime"`
	SlotName string `json:"slot_name,omitempty" validate:"omitempty,max=64"`
}

type RetrieveAppointmentsInput struct {
	IncludeCancelled bool `json:"include_cancelled,omitempty"`
}

type CancelAppointmentInput struct {
	AppointmentID string `json:"appointment_id"`
}

type ModifyAppointmentInput struct {
	AppointmentID string `json:"appointment_id"`
	NewDate       string `json:"new_date" validate:"required,slotdate"`
	NewTime       string `json:"new_time" validate:"required,slottime"`
	NewSlotName   string `json:"new_slot_name,omitempty" validate:"omitempty,max=64"`
}

type EndConversationInput struct {
	Reason      string   `json:"reason,omitempty"`
	Preferences []string `json:"preferences,omitempty"`
}
