package lifecycle

import (
	"context"
	"strings"
	"testing"
	"time"

	"voicebooking/internal/events"
	"voicebooking/internal/session"
	"voicebooking/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryFlowSteps(t *testing.T) {
	c := NewCoordinator(session.New("room-1", time.Now()), Deps{}, Options{})

	var names []string
	for _, step := range c.newSummaryFlow().Steps() {
		names = append(names, step.Name)
	}
	assert.Equal(t, []string{
		"build_prompt",
		"generate_summary",
		"normalize_appointments",
		"estimate_cost",
		"persist_summary",
		"emit_summary",
	}, names)
}

func TestNormalizeActions(t *testing.T) {
	got := NormalizeActions([]model.ActionRecord{
		{ID: "a1", Action: model.ActionBooked, Date: "2025-03-10", Time: "09:00", Slot: "Morning - 9:00 AM"},
		{ID: "a2", Action: model.ActionCancelled, Date: "2025-03-11", Time: "10:00"},
		{ID: "a3", Action: model.ActionModified, OldDate: "2025-03-12", OldTime: "14:00", NewDate: "2025-03-13", NewTime: "15:00"},
	})

	assert.Equal(t, []events.SummaryAppointment{
		{ID: "a1", Action: model.ActionBooked, Date: "2025-03-10", Time: "09:00"},
		{ID: "a2", Action: model.ActionCancelled, Date: "2025-03-11", Time: "10:00"},
		{ID: "a3", Action: model.ActionModified, Date: "2025-03-13", Time: "15:00", RescheduledTime: "2025-03-13 at 15:00"},
	}, got)

	assert.Empty(t, NormalizeActions(nil))
	assert.NotNil(t, NormalizeActions(nil))
}

func TestSummaryPrompt(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	prompt := SummaryPrompt(
		[]model.TranscriptEntry{
			{Role: model.RoleUser, Content: "Book me Tuesday at nine", Timestamp: at},
			{Role: model.RoleAssistant, Content: "Done.", Timestamp: at},
		},
		[]model.ActionRecord{
			{Action: model.ActionBooked, Date: "2025-03-11", Time: "09:00"},
			{Action: model.ActionModified, NewDate: "2025-03-12", NewTime: "10:00"},
			{Action: model.ActionCancelled},
		},
	)

	assert.Contains(t, prompt, "user: Book me Tuesday at nine\nassistant: Done.")
	assert.Contains(t, prompt, "- booked: 2025-03-11 at 09:00\n- modified: 2025-03-12 at 10:00\n- cancelled: N/A at N/A")
	assert.True(t, strings.HasSuffix(prompt, "Keep the summary concise and actionable."))

	assert.Contains(t, SummaryPrompt(nil, nil), "## Appointment Actions:\nNo appointment actions taken.")
}

func TestSystemPrompt(t *testing.T) {
	prompt := SystemPrompt("Alex", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, prompt, "Your name is Alex.")
	assert.Contains(t, prompt, "Today is Monday, March 10, 2025.")
}

func TestTemplateSummarizer(t *testing.T) {
	text, err := TemplateSummarizer{}.Summarize(context.Background(), SummaryInput{
		CallerName: "Sarah Johnson",
		Actions: []model.ActionRecord{
			{Action: model.ActionModified, OldDate: "2025-03-10", OldTime: "09:00", NewDate: "2025-03-11", NewTime: "14:00"},
			{Action: model.ActionCancelled, Date: "2025-03-12", Time: "10:00"},
		},
		Preferences: []string{"prefers afternoons", "no Fridays"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"User Sarah Johnson called the appointment line. Rescheduled from 2025-03-10 at 09:00 to 2025-03-11 at 14:00. "+
			"Cancelled the appointment on 2025-03-12 at 10:00. Preferences mentioned: prefers afternoons, no Fridays.",
		text,
	)

	text, _ = TemplateSummarizer{}.Summarize(context.Background(), SummaryInput{})
	assert.Equal(t, "An unidentified caller called the appointment line. No appointment actions taken.", text)
}

func TestStateString(t *testing.T) {
	for state, want := range map[State]string{
		StateIdle:        "idle",
		StateActive:      "active",
		StateSummarizing: "summarizing",
		StateEnded:       "ended",
		State(9):         "unknown",
	} {
		assert.Equal(t, want, state.String())
	}
}
