package model

import "time"

const (
	ActionBooked    = "booked"
	ActionCancelled = "cancelled"
	ActionModified  = "modified"

	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ActionRecord is one booking mutation made during a session. Modify records
// carry both the old and the new slot.
type ActionRecord struct {
	ID      string `json:"id" bson:"id"`
	Action  string `json:"action" bson:"action" validate:"required,oneof=booked cancelled modified"`
	Date    string `json:"date,omitempty" bson:"date,omitempty"`
	Time    string `json:"time,omitempty" bson:"time,omitempty"`
	Slot    string `json:"slot,omitempty" bson:"slot,omitempty"`
	OldDate string `json:"old_date,omitempty" bson:"old_date,omitempty"`
	OldTime string `json:"old_time,omitempty" bson:"old_time,omitempty"`
	NewDate string `json:"new_date,omitempty" bson:"new_date,omitempty"`
	NewTime string `json:"new_time,omitempty" bson:"new_time,omitempty"`
}

type TranscriptEntry struct {
	Role      string    `json:"role" bson:"role" validate:"required,oneof=user assistant"`
	Content   string    `json:"content" bson:"content"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

type ConversationSummary struct {
	ID                    string            `json:"id" bson:"_id" validate:"required,uuid"`
	CallerID              string            `json:"user_id,omitempty" bson:"user_id,omitempty" validate:"omitempty,uuid"`
	SessionID             string            `json:"session_id" bson:"session_id" validate:"required"`
	Summary               string            `json:"summary" bson:"summary" validate:"required"`
	AppointmentsDiscussed []ActionRecord    `json:"appointments_discussed" bson:"appointments_discussed" validate:"dive"`
	PreferencesMentioned  []string          `json:"preferences_mentioned" bson:"preferences_mentioned"`
	Transcript            []TranscriptEntry `json:"transcript" bson:"transcript" validate:"dive"`
	CostBreakdown         CostBreakdown     `json:"cost_breakdown" bson:"cost_breakdown"`
	DurationSeconds       int64             `json:"duration_seconds" bson:"duration_seconds" validate:"gte=0"`
	CreatedAt             time.Time         `json:"created_at" bson:"created_at"`
}
