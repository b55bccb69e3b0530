// Package session holds the mutable state of one live conversation.
//
// A Context is shared by the tool dispatcher, the inbound signal router and
// the host shutdown hook. Its fields are guarded by a mutex that is never held
// across store or model calls; the summary latch is a separate atomic flag.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"voicebooking/pkg/model"
	"voicebooking/pkg/sanitizer"
)

// CallerRef is a copy of the identified caller, not a live store row.
type CallerRef struct {
	ID    string
	Phone string
	Name  string
}

type Context struct {
	id        string
	startedAt time.Time

	mu          sync.RWMutex
	caller      *CallerRef
	actions     []model.ActionRecord
	preferences []string
	transcript  []model.TranscriptEntry
	usage       model.Usage

	summaryEmitted atomic.Bool
}

func New(id string, startedAt time.Time) *Context {
	return &Context{
		id:        id,
		startedAt: startedAt,
	}
}

func (c *Context) ID() string {
	return c.id
}

func (c *Context) StartedAt() time.Time {
	return c.startedAt
}

func (c *Context) SetCaller(ref CallerRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.caller = &ref
}

// Caller returns the identified caller, or false before identification.
func (c *Context) Caller() (CallerRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.caller == nil {
		return CallerRef{}, false
	}
	return *c.caller, true
}

// AppendAction records a completed booking mutation. Order is completion order.
func (c *Context) AppendAction(record model.ActionRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions = append(c.actions, record)
}

func (c *Context) Actions() []model.ActionRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.ActionRecord, len(c.actions))
	copy(out, c.actions)
	return out
}

// AddPreference keeps the first spelling of each case-insensitively distinct preference.
func (c *Context) AddPreference(preference string) {
	preference = sanitizer.TrimAndNormalize(preference)
	if preference == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preferences = sanitizer.DedupeFold(append(c.preferences, preference))
}

func (c *Context) Preferences() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.preferences))
	copy(out, c.preferences)
	return out
}

func (c *Context) AppendTranscript(role, content string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transcript = append(c.transcript, model.TranscriptEntry{
		Role:      role,
		Content:   content,
		Timestamp: at,
	})
}

func (c *Context) Transcript() []model.TranscriptEntry {
	return c.RecentTranscript(0)
}

// RecentTranscript returns the last n entries, or all of them when n <= 0.
func (c *Context) RecentTranscript(n int) []model.TranscriptEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := c.transcript
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	out := make([]model.TranscriptEntry, len(entries))
	copy(out, entries)
	return out
}

func (c *Context) AddUsage(delta model.Usage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.usage = c.usage.Add(delta)
}

func (c *Context) Usage() model.Usage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.usage
}

// TryBeginSummary sets the summary latch. Exactly one caller ever gets true.
func (c *Context) TryBeginSummary() bool {
	return c.summaryEmitted.CompareAndSwap(false, true)
}

func (c *Context) SummaryEmitted() bool {
	return c.summaryEmitted.Load()
}
