// Package events defines the messages sent to the transport boundary and the
// sinks that deliver them.
package events

import (
	"context"
	"time"

	"voicebooking/pkg/model"

	"github.com/google/uuid"
)

const (
	TypeToolCall        = "tool_call"
	TypeSummary         = "summary"
	TypeConversationEnd = "conversation_end"
	TypeAgentReady      = "agent_ready"
)

type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ToolCall is the data of a tool_call event. Timestamp is in epoch milliseconds.
type ToolCall struct {
	ID        string `json:"id"`
	Tool      string `json:"tool"`
	Params    any    `json:"params"`
	Result    any    `json:"result"`
	Timestamp int64  `json:"timestamp"`
}

type AgentReady struct {
	HasAvatar bool `json:"has_avatar"`
}

// SummaryAppointment is one action record reduced to its caller-facing shape.
type SummaryAppointment struct {
	ID              string `json:"id"`
	Action          string `json:"action"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	RescheduledTime string `json:"rescheduled_time,omitempty"`
}

type SummaryPayload struct {
	Summary         string               `json:"summary"`
	Appointments    []SummaryAppointment `json:"appointments"`
	Preferences     []string             `json:"preferences"`
	UserPhone       string               `json:"user_phone"`
	UserName        string               `json:"user_name"`
	DurationSeconds int64                `json:"duration_seconds"`
	Costs           model.CostBreakdown  `json:"costs"`
}

func NewToolCall(sessionID, tool string, params, result any, at time.Time) Event {
	return Event{
		Type:      TypeToolCall,
		SessionID: sessionID,
		Data: ToolCall{
			ID:        uuid.NewString(),
			Tool:      tool,
			Params:    params,
			Result:    result,
			Timestamp: at.UnixMilli(),
		},
		Timestamp: at,
	}
}

func NewSummary(sessionID string, payload SummaryPayload, at time.Time) Event {
	return Event{Type: TypeSummary, SessionID: sessionID, Data: payload, Timestamp: at}
}

func NewConversationEnd(sessionID string, at time.Time) Event {
	return Event{Type: TypeConversationEnd, SessionID: sessionID, Timestamp: at}
}

func NewAgentReady(sessionID string, hasAvatar bool, at time.Time) Event {
	return Event{Type: TypeAgentReady, SessionID: sessionID, Data: AgentReady{HasAvatar: hasAvatar}, Timestamp: at}
}

// Sink delivers events to the transport boundary.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

type SinkFunc func(ctx context.Context, event Event) error

func (f SinkFunc) Emit(ctx context.Context, event Event) error {
	return f(ctx, event)
}
