package detect

import (
	"sort"
	"time"

	"github.com/PixPMusic/gopher-gesture/internal/event"
)

type heldNote struct {
	note      uint8
	pressedAt time.Time
}

// ChordDetector aggregates notes pressed within a short window into chords.
type ChordDetector struct {
	held []heldNote
}

// NewChordDetector creates an empty detector
func NewChordDetector() *ChordDetector {
	return &ChordDetector{}
}

// NoteOn adds a press to the buffer. Entries pressed more than window before
// this press are dropped first; if two or more notes remain a chord with the
// full note set is emitted. Pressing a note that is already buffered only
// refreshes its press time.
func (c *ChordDetector) NoteOn(note uint8, now time.Time, window time.Duration) []event.ProcessedEvent {
	repeat := false
	kept := c.held[:0]
	for _, h := range c.held {
		switch {
		case h.note == note:
			repeat = true
		case now.Sub(h.pressedAt) <= window:
			kept = append(kept, h)
		}
	}
	c.held = append(kept, heldNote{note: note, pressedAt: now})

	if repeat {
		return nil
	}
	if len(c.held) < 2 {
		return nil
	}
	return []event.ProcessedEvent{{
		Type:     event.ChordDetected,
		Notes:    c.Notes(),
		Duration: now.Sub(c.held[0].pressedAt),
		Time:     now,
	}}
}

// NoteOff removes a note from the buffer
func (c *ChordDetector) NoteOff(note uint8) {
	for i, h := range c.held {
		if h.note == note {
			c.held = append(c.held[:i], c.held[i+1:]...)
			return
		}
	}
}

// Notes returns the buffered notes in ascending order
func (c *ChordDetector) Notes() []uint8 {
	notes := make([]uint8, len(c.held))
	for i, h := range c.held {
		notes[i] = h.note
	}
	sort.Slice(notes, func(i, j int) bool { return notes[i] < notes[j] })
	return notes
}

// Reset clears the buffer
func (c *ChordDetector) Reset() {
	c.held = nil
}
