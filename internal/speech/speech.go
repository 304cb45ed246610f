// Package speech accumulates dictation transcripts from a stream of
// interim and final fragments.
package speech

import (
	"context"
	"strings"
	"sync"
)

// Fragment is one transcription delta. Interim fragments are volatile:
// each replaces the previous preview. Final fragments are committed to
// the transcript.
type Fragment struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// Stream produces transcription fragments. The transport behind it is
// deliberately opaque.
type Stream interface {
	// Fragments returns the fragment channel. Closed when the stream ends.
	Fragments() <-chan Fragment
}

// Collector assembles a transcript from a fragment stream. Safe for
// concurrent use.
type Collector struct {
	mu      sync.Mutex
	parts   []string
	preview string
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Consume drains the stream until it closes or ctx is cancelled.
func (c *Collector) Consume(ctx context.Context, s Stream) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case frag, ok := <-s.Fragments():
			if !ok {
				return nil
			}
			c.Add(frag)
		}
	}
}

// Add applies one fragment. Final fragments append to the transcript
// and clear the preview; interim fragments only replace the preview.
func (c *Collector) Add(frag Fragment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if frag.Final {
		if frag.Text != "" {
			c.parts = append(c.parts, frag.Text)
		}
		c.preview = ""
		return
	}
	c.preview = frag.Text
}

// Transcript returns the committed text joined with spaces.
func (c *Collector) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.parts, " ")
}

// Preview returns the transcript plus the current interim fragment, as
// shown to the user while dictation is in flight.
func (c *Collector) Preview() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.preview == "" {
		return strings.Join(c.parts, " ")
	}
	if len(c.parts) == 0 {
		return c.preview
	}
	return strings.Join(c.parts, " ") + " " + c.preview
}

// Reset clears the transcript and preview.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.parts = nil
	c.preview = ""
}
