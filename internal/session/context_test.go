package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"voicebooking/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_Caller(t *testing.T) {
	c := New("room-1", time.Now())

	_, ok := c.Caller()
	assert.False(t, ok)

	c.SetCaller(CallerRef{ID: "id-1", Phone: "5551234567", Name: "John"})
	ref, ok := c.Caller()
	require.True(t, ok)
	assert.Equal(t, "id-1", ref.ID)
	assert.Equal(t, "room-1", c.ID())
}

func TestContext_ActionsKeepOrderAndAreCopied(t *testing.T) {
	c := New("room-1", time.Now())
	c.AppendAction(model.ActionRecord{ID: "a", Action: model.ActionBooked})
	c.AppendAction(model.ActionRecord{ID: "b", Action: model.ActionCancelled})

	actions := c.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, "a", actions[0].ID)
	assert.Equal(t, "b", actions[1].ID)

	actions[0].ID = "mutated"
	assert.Equal(t, "a", c.Actions()[0].ID)
}

func TestContext_Preferences(t *testing.T) {
	c := New("room-1", time.Now())
	c.AddPreference("Prefers mornings")
	c.AddPreference("  ")
	c.AddPreference("prefers  MORNINGS")
	c.AddPreference("Dr. Lee only")

	assert.Equal(t, []string{"Prefers mornings", "Dr. Lee only"}, c.Preferences())
}

func TestContext_RecentTranscript(t *testing.T) {
	c := New("room-1", time.Now())
	for _, text := range []string{"one", "two", "three"} {
		c.AppendTranscript(model.RoleUser, text, time.Now())
	}

	recent := c.RecentTranscript(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Content)
	assert.Equal(t, "three", recent[1].Content)
	assert.Len(t, c.Transcript(), 3)
	assert.Len(t, c.RecentTranscript(10), 3)
}

func TestContext_Usage(t *testing.T) {
	c := New("room-1", time.Now())
	c.AddUsage(model.Usage{STTSeconds: 1.5, TTSCharacters: 10})
	c.AddUsage(model.Usage{STTSeconds: 0.5, LLMInputTokens: 100, LLMOutputTokens: 20})

	assert.Equal(t, model.Usage{STTSeconds: 2, TTSCharacters: 10, LLMInputTokens: 100, LLMOutputTokens: 20}, c.Usage())
}

func TestContext_TryBeginSummaryIsExactlyOnce(t *testing.T) {
	c := New("room-1", time.Now())

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.TryBeginSummary() {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
	assert.True(t, c.SummaryEmitted())
	assert.False(t, c.TryBeginSummary())
}
