package tools

const (
	IdentifyUser         = "identify_user"
	FetchSlots           = "fetch_slots"
	BookAppointment      = "book_appointment"
	RetrieveAppointments = "retrieve_appointments"
	CancelAppointment    = "cancel_appointment"
	ModifyAppointment    = "modify_appointment"
	EndConversation      = "end_conversation"
)

// Definition describes a tool to the decision-maker. Parameters is a JSON schema object.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

func Names() []string {
	return []string{
		IdentifyUser,
		FetchSlots,
		BookAppointment,
		RetrieveAppointments,
		CancelAppointment,
		ModifyAppointment,
		EndConversation,
	}
}

func Catalog() []Definition {
	return []Definition{
		{
			Name:        IdentifyUser,
			Description: "Identify the user by asking for their phone number. Call this when you need to know who the user is before booking or retrieving appointments.",
			Parameters: object(map[string]any{
				"phone_number": str("The user's phone number (10 digits)"),
				"name":         str("The user's name if provided"),
			}, "phone_number"),
		},
		{
			Name:        FetchSlots,
			Description: "Fetch available appointment slots. Call this when the user wants to know what times are available for booking.",
			Parameters: object(map[string]any{
				"days_ahead": map[string]any{
					"type":        "integer",
					"description": "Number of days to look ahead (default 7)",
					"minimum":     1,
					"maximum":     30,
				},
			}),
		},
		{
			Name:        BookAppointment,
			Description: "Book an appointment for the user. Requires user to be identified first. Call this when the user wants to book a specific slot.",
			Parameters: object(map[string]any{
				"date":      str("Appointment date in YYYY-MM-DD format"),
				"time":      str("Appointment time in HH:MM format (24-hour)"),
				"slot_name": str("Human-readable slot name like 'Morning - 9:00 AM'"),
			}, "date", "time"),
		},
		{
			Name:        RetrieveAppointments,
			Description: "Retrieve the user's existing appointments. Call this when the user wants to see their scheduled appointments.",
			Parameters: object(map[string]any{
				"include_cancelled": map[string]any{
					"type":        "boolean",
					"description": "Whether to include cancelled appointments",
				},
			}),
		},
		{
			Name:        CancelAppointment,
			Description: "Cancel an existing appointment. Call this when the user wants to cancel a scheduled appointment.",
			Parameters: object(map[string]any{
				"appointment_id": str("The appointment ID to cancel"),
			}, "appointment_id"),
		},
		{
			Name:        ModifyAppointment,
			Description: "Modify an existing appointment's date or time. Call this when the user wants to reschedule.",
			Parameters: object(map[string]any{
				"appointment_id": str("The appointment ID to modify"),
				"new_date":       str("New date in YYYY-MM-DD format"),
				"new_time":       str("New time in HH:MM format (24-hour)"),
				"new_slot_name":  str("New human-readable slot name"),
			}, "appointment_id", "new_date", "new_time"),
		},
		{
			Name:        EndConversation,
			Description: "End the conversation. Call this when the user says goodbye, wants to end the call, or the conversation is complete. This will generate a summary.",
			Parameters: object(map[string]any{
				"reason": str("Reason for ending (e.g., 'user requested', 'task complete')"),
				"preferences": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Preferences or notes the user mentioned during the call",
				},
			}),
		},
	}
}

func object(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func str(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}
