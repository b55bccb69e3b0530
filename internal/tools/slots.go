package tools

import (
	"context"
	"time"

	"voicebooking/internal/events"
	"voicebooking/internal/pipeline"
	"voicebooking/internal/slots"
	"voicebooking/pkg/config"
)

// FetchSlots lists open catalog slots after today. Availability checks run
// concurrently; the result keeps catalog order.
func (t *ToolSet) FetchSlots(ctx context.Context, in FetchSlotsInput) (string, events.Event) {
	started := time.Now()

	days := in.DaysAhead
	if days <= 0 {
		days = t.lookaheadDays
	}
	days = min(days, config.MaxSlotLookaheadDays)
	params := map[string]any{"days_ahead": days}

	candidates := slots.Generate(t.now(), days)
	open := make([]bool, len(candidates))
	err := pipeline.ForEach(ctx, len(candidates), t.slotCheckConcurrency, func(ctx context.Context, i int) error {
		available, err := t.store.IsSlotAvailable(ctx, candidates[i].Date, candidates[i].Time)
		if err != nil {
			return err
		}
		open[i] = available
		return nil
	})
	if err != nil {
		t.log.Error("Failed to check slot availability", "days_ahead", days, "error", err)
		return t.report(ctx, FetchSlots, started, outcomeStoreError, params, errorResult(errStoreUnavailable), StoreFailureSentence)
	}

	available := make([]slots.Slot, 0, len(candidates))
	for i, s := range candidates {
		if open[i] {
			available = append(available, s)
		}
	}

	shown := available
	if len(shown) > t.maxEventSlots {
		shown = shown[:t.maxEventSlots]
	}
	result := map[string]any{"slots": shown, "total": len(available)}
	return t.report(ctx, FetchSlots, started, outcomeOK, params, result, slots.FormatForSpeech(available, t.maxSpokenSlots))
}
