package tools

import (
	"context"
	"time"

	"voicebooking/internal/events"
	"voicebooking/pkg/sanitizer"
)

// EndConversation packages the session state for the dashboard and tells the
// decision-maker to say goodbye. Summarization is started by the lifecycle
// when it sees the sentinel in the spoken reply, not here.
func (t *ToolSet) EndConversation(ctx context.Context, in EndConversationInput) (string, events.Event) {
	started := time.Now()

	reason := sanitizer.TrimAndNormalize(in.Reason)
	if reason == "" {
		reason = DefaultEndReason
	}
	for _, preference := range in.Preferences {
		t.sess.AddPreference(preference)
	}

	caller, _ := t.sess.Caller()
	result := map[string]any{
		"user_id":                nullable(caller.ID),
		"user_phone":             nullable(caller.Phone),
		"user_name":              nullable(caller.Name),
		"appointments_discussed": t.sess.Actions(),
		"preferences_mentioned":  t.sess.Preferences(),
		"reason":                 reason,
		"should_end":             true,
	}
	return t.report(ctx, EndConversation, started, outcomeOK, map[string]any{"reason": reason}, result, endSentence(reason))
}
