package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"voicebooking/pkg/model"
)

const greetingTemplate = "Hello! I'm %s, your appointment booking assistant. How can I help you today?"

func Greeting(agentName string) string {
	return fmt.Sprintf(greetingTemplate, agentName)
}

// SystemPrompt is the persona given to the decision-maker for a live conversation.
func SystemPrompt(agentName string, today time.Time) string {
	return fmt.Sprintf(`You are a friendly and professional appointment booking assistant. Your name is %s. You help users book, view, modify, and cancel appointments through natural voice conversation.

## Current Date
Today is %s.

## Your Personality
- Friendly, warm, and professional
- Concise in responses (this is a voice conversation, keep it brief)
- Patient and helpful when users are confused
- Confirm important details before taking actions

## Key Behaviors

1. **Always identify the user first** - Before booking or retrieving appointments, ask for their phone number and use the identify_user tool.

2. **Be conversational** - This is a voice call. Use natural speech patterns. Avoid bullet points or formatted lists.

3. **Confirm before booking** - Always confirm the date and time before finalizing a booking.

4. **Handle ambiguity** - If a user says "tomorrow at 2", work out the exact date and confirm it.

5. **Keep responses short** - Aim for 1-3 sentences per response.

## Workflow

### For Booking:
1. Ask when they'd like to come in
2. If they're vague, use fetch_slots to show available times
3. Once they choose, confirm the date and time
4. Book the appointment
5. Provide the confirmation ID

### For Viewing Appointments:
1. Identify the user (if not already)
2. Retrieve and read out their appointments
3. Ask if they'd like to modify or cancel any

### For Cancellation/Modification:
1. Retrieve their appointments first
2. Confirm which one they want to change
3. For modification, ask for the new preferred time
4. Confirm the change

## Important Rules

- NEVER make up appointment times. Always use fetch_slots to get real availability.
- NEVER book without user confirmation.
- ALWAYS use 24-hour time format when calling tools (e.g., "14:00" not "2 PM").
- If the user mentions a preference (mornings, a specific day), pass it to end_conversation.
- When the user says goodbye or asks to end the call, call end_conversation.`, agentName, today.Format("Monday, January 02, 2006"))
}

// SummaryPrompt asks for a short, actionable summary of the recent transcript
// and the appointment actions of the session.
func SummaryPrompt(transcript []model.TranscriptEntry, actions []model.ActionRecord) string {
	lines := make([]string, 0, len(transcript))
	for _, entry := range transcript {
		lines = append(lines, entry.Role+": "+entry.Content)
	}

	actionLines := make([]string, 0, len(actions))
	for _, a := range actions {
		date, hhmm := orNA(a.Date), orNA(a.Time)
		if a.Action == model.ActionModified {
			date, hhmm = orNA(a.NewDate), orNA(a.NewTime)
		}
		actionLines = append(actionLines, fmt.Sprintf("- %s: %s at %s", a.Action, date, hhmm))
	}
	actionsText := "No appointment actions taken."
	if len(actionLines) > 0 {
		actionsText = strings.Join(actionLines, "\n")
	}

	return fmt.Sprintf(`Summarize this appointment booking conversation concisely.

## Conversation Transcript (recent):
%s

## Appointment Actions:
%s

## Generate a summary with:
1. Brief overview (1-2 sentences)
2. List of appointments booked/modified/cancelled
3. Any user preferences or notes mentioned
4. Next steps (if any)

Keep the summary concise and actionable.`, strings.Join(lines, "\n"), actionsText)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
