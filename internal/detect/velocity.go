// Package detect holds the gesture detectors. Detectors keep per-note state
// in plain maps with explicit deadlines and take the current time as an
// argument, so they never own timers and are fully deterministic.
package detect

import "github.com/PixPMusic/gopher-gesture/internal/event"

// Classify maps a velocity onto a level: v <= softMax is Soft,
// softMax < v <= mediumMax is Medium, anything above is Hard.
func Classify(velocity, softMax, mediumMax uint8) event.VelocityLevel {
	switch {
	case velocity <= softMax:
		return event.Soft
	case velocity <= mediumMax:
		return event.Medium
	default:
		return event.Hard
	}
}
