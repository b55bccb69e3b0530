package model

// Usage accumulates the billable consumption of one session.
type Usage struct {
	STTSeconds      float64 `json:"stt_seconds" bson:"stt_seconds"`
	TTSCharacters   int64   `json:"tts_characters" bson:"tts_characters"`
	LLMInputTokens  int64   `json:"llm_input_tokens" bson:"llm_input_tokens"`
	LLMOutputTokens int64   `json:"llm_output_tokens" bson:"llm_output_tokens"`
}

func (u Usage) Add(other Usage) Usage {
	return Usage{
		STTSeconds:      u.STTSeconds + other.STTSeconds,
		TTSCharacters:   u.TTSCharacters + other.TTSCharacters,
		LLMInputTokens:  u.LLMInputTokens + other.LLMInputTokens,
		LLMOutputTokens: u.LLMOutputTokens + other.LLMOutputTokens,
	}
}

type CostBreakdown struct {
	STTCost   float64 `json:"stt_cost" bson:"stt_cost"`
	TTSCost   float64 `json:"tts_cost" bson:"tts_cost"`
	LLMCost   float64 `json:"llm_cost" bson:"llm_cost"`
	TotalCost float64 `json:"total_cost" bson:"total_cost"`
	Usage     Usage   `json:"usage" bson:"usage"`
}
