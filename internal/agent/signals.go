// Package agent hosts live conversations: it routes transport signals to the
// session they belong to and publishes commands back to the voice pipeline.
package agent

import (
	"encoding/json"

	"voicebooking/pkg/model"
)

const (
	SignalSessionStarted  = "session_started"
	SignalUserTranscript  = "user_transcript"
	SignalAgentTranscript = "agent_transcript"
	SignalToolInvocation  = "tool_invocation"
	SignalUsage           = "usage"
	SignalPreference      = "preference"
	SignalRequestSummary  = "request_summary"
	SignalParticipantLeft = "participant_left"
)

// Signal is the envelope of every message on the signals topic. Only the
// fields of its type are set.
type Signal struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`

	HasAvatar bool   `json:"has_avatar,omitempty"`
	Text      string `json:"text,omitempty"`

	CallID    string          `json:"call_id,omitempty"`
	Tool      string          `json:"tool,omitempty"`
	Arguments json.RawMessage `json:"arguments,omitempty"`

	STTSeconds      float64 `json:"stt_seconds,omitempty"`
	TTSCharacters   int64   `json:"tts_characters,omitempty"`
	LLMInputTokens  int64   `json:"llm_input_tokens,omitempty"`
	LLMOutputTokens int64   `json:"llm_output_tokens,omitempty"`
}

func (s Signal) Usage() model.Usage {
	return model.Usage{
		STTSeconds:      s.STTSeconds,
		TTSCharacters:   s.TTSCharacters,
		LLMInputTokens:  s.LLMInputTokens,
		LLMOutputTokens: s.LLMOutputTokens,
	}
}
