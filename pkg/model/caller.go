package model

import "time"

type Caller struct {
	ID            string    `json:"id" bson:"_id" validate:"required,uuid"`
	ContactNumber string    `json:"contact_number" bson:"contact_number" validate:"required,numeric,min=10,max=15"`
	Name          string    `json:"name,omitempty" bson:"name,omitempty" validate:"omitempty,max=100"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}
