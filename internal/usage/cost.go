// Package usage turns accumulated provider counters into a cost breakdown.
package usage

import (
	"math"

	"voicebooking/pkg/model"
)

// Fixed linear rates in USD.
const (
	STTPerMinute         = 0.0058
	TTSPerCharacter      = 0.0000099
	LLMInputPer1KTokens  = 0.00015
	LLMOutputPer1KTokens = 0.0006
)

// Estimate prices u. Costs are rounded to 6 decimals and stt_seconds to 2.
// Negative counters are treated as zero.
func Estimate(u model.Usage) model.CostBreakdown {
	u = clamp(u)

	stt := u.STTSeconds * STTPerMinute / 60
	tts := float64(u.TTSCharacters) * TTSPerCharacter
	llm := float64(u.LLMInputTokens)*LLMInputPer1KTokens/1000 +
		float64(u.LLMOutputTokens)*LLMOutputPer1KTokens/1000

	u.STTSeconds = round(u.STTSeconds, 2)
	return model.CostBreakdown{
		STTCost:   round(stt, 6),
		TTSCost:   round(tts, 6),
		LLMCost:   round(llm, 6),
		TotalCost: round(stt+tts+llm, 6),
		Usage:     u,
	}
}

func clamp(u model.Usage) model.Usage {
	u.STTSeconds = math.Max(u.STTSeconds, 0)
	u.TTSCharacters = max(u.TTSCharacters, 0)
	u.LLMInputTokens = max(u.LLMInputTokens, 0)
	u.LLMOutputTokens = max(u.LLMOutputTokens, 0)
	return u
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
