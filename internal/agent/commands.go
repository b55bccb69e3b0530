package agent

import (
	"context"
	"fmt"
	"time"

	"voicebooking/internal/events"
	"voicebooking/pkg/kafka"
)

const (
	CommandSay        = "say"
	CommandToolResult = "tool_result"
)

type Command struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	CallID    string    `json:"call_id,omitempty"`
	Text      string    `json:"text,omitempty"`
	Output    string    `json:"output,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Commands publishes instructions for the voice pipeline, keyed by session id.
type Commands struct {
	publisher kafka.Publisher
	now       func() time.Time
}

func NewCommands(publisher kafka.Publisher) *Commands {
	return &Commands{publisher: publisher, now: time.Now}
}

// Say implements lifecycle.Speaker.
func (c *Commands) Say(ctx context.Context, sessionID, text string) error {
	return c.publish(ctx, Command{Type: CommandSay, SessionID: sessionID, Text: text})
}

func (c *Commands) ToolResult(ctx context.Context, sessionID, callID, output string) error {
	return c.publish(ctx, Command{Type: CommandToolResult, SessionID: sessionID, CallID: callID, Output: output})
}

func (c *Commands) publish(ctx context.Context, cmd Command) error {
	cmd.Timestamp = c.now()
	msg, err := kafka.NewMessage().
		WithKey(cmd.SessionID).
		WithValue(cmd).
		WithEventType(cmd.Type).
		WithConversationID(cmd.SessionID).
		WithCorrelationID(cmd.CallID).
		WithSchemaVersion(events.SchemaVersion).
		WithSource(events.Source).
		WithTimestamp(cmd.Timestamp).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s command: %w", cmd.Type, err)
	}
	return c.publisher.Publish(ctx, msg)
}
