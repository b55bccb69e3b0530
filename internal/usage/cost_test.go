package usage

import (
	"testing"

	"voicebooking/pkg/model"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name  string
		usage model.Usage
		want  model.CostBreakdown
	}{
		{
			name:  "zero usage",
			usage: model.Usage{},
			want:  model.CostBreakdown{},
		},
		{
			name:  "two minute call",
			usage: model.Usage{STTSeconds: 120, TTSCharacters: 500, LLMInputTokens: 1000, LLMOutputTokens: 200},
			want: model.CostBreakdown{
				STTCost:   0.0116,
				TTSCost:   0.00495,
				LLMCost:   0.00027,
				TotalCost: 0.01682,
				Usage:     model.Usage{STTSeconds: 120, TTSCharacters: 500, LLMInputTokens: 1000, LLMOutputTokens: 200},
			},
		},
		{
			name:  "fractional seconds are rounded",
			usage: model.Usage{STTSeconds: 12.3456},
			want: model.CostBreakdown{
				STTCost:   0.001193,
				TotalCost: 0.001193,
				Usage:     model.Usage{STTSeconds: 12.35},
			},
		},
		{
			name:  "negative counters clamp to zero",
			usage: model.Usage{STTSeconds: -5, TTSCharacters: -1},
			want:  model.CostBreakdown{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Estimate(tt.usage)
			assert.InDelta(t, tt.want.STTCost, got.STTCost, 1e-9)
			assert.InDelta(t, tt.want.TTSCost, got.TTSCost, 1e-9)
			assert.InDelta(t, tt.want.LLMCost, got.LLMCost, 1e-9)
			assert.InDelta(t, tt.want.TotalCost, got.TotalCost, 1e-9)
			assert.InDelta(t, tt.want.Usage.STTSeconds, got.Usage.STTSeconds, 1e-9)
			assert.Equal(t, tt.want.Usage.TTSCharacters, got.Usage.TTSCharacters)
			assert.Equal(t, tt.want.Usage.LLMInputTokens, got.Usage.LLMInputTokens)
			assert.Equal(t, tt.want.Usage.LLMOutputTokens, got.Usage.LLMOutputTokens)
		})
	}
}

func TestEstimate_TotalIsSumOfParts(t *testing.T) {
	got := Estimate(model.Usage{STTSeconds: 300, TTSCharacters: 2500, LLMInputTokens: 5000, LLMOutputTokens: 1200})
	assert.InDelta(t, got.STTCost+got.TTSCost+got.LLMCost, got.TotalCost, 1e-6)
}
