package model

import "time"

const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Appointment struct {
	ID        string    `json:"id" bson:"_id" validate:"required,uuid"`
	CallerID  string    `json:"user_id" bson:"user_id" validate:"required,uuid"`
	Date      string    `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Time      string    `json:"time" bson:"time" validate:"required,datetime=15:04"`
	Label     string    `json:"slot" bson:"slot" validate:"required,max=64"`
	Status    string    `json:"status" bson:"status" validate:"required,oneof=booked cancelled completed"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ShortID is the 8-character confirmation id read out to callers.
func (a Appointment) ShortID() string {
	if len(a.ID) < 8 {
		return a.ID
	}
	return a.ID[:8]
}

func (a Appointment) IsBooked() bool {
	return a.Status == StatusBooked
}
