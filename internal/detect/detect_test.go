package detect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PixPMusic/gopher-gesture/internal/event"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func defaultThresholds() Thresholds {
	return Thresholds{Short: ms(200), Hold: ms(2000), DoubleTap: ms(300)}
}

func types(events []event.ProcessedEvent) []event.Type {
	out := make([]event.Type, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestClassify_AllVelocities(t *testing.T) {
	for v := 0; v <= 127; v++ {
		got := Classify(uint8(v), 40, 80)
		switch {
		case v <= 40:
			assert.Equal(t, event.Soft, got, "velocity %d", v)
		case v <= 80:
			assert.Equal(t, event.Medium, got, "velocity %d", v)
		default:
			assert.Equal(t, event.Hard, got, "velocity %d", v)
		}
	}
}

func TestTimingDetector_PressClassification(t *testing.T) {
	tests := []struct {
		name string
		held time.Duration
		want []event.Type
	}{
		{"short", ms(50), []event.Type{event.ShortPress, event.PadReleased}},
		{"medium lower bound", ms(200), []event.Type{event.MediumPress, event.PadReleased}},
		{"medium", ms(1999), []event.Type{event.MediumPress, event.PadReleased}},
		{"long without tick", ms(2000), []event.Type{event.HoldDetected, event.LongPress, event.PadReleased}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewTimingDetector()
			assert.Empty(t, d.NoteOn(60, 100, t0, defaultThresholds()))

			out := d.NoteOff(60, t0.Add(tt.held))
			require.Equal(t, tt.want, types(out))

			last := out[len(out)-1]
			assert.Equal(t, uint8(60), last.Note)
			assert.Equal(t, tt.held, last.Duration)
		})
	}
}

func TestTimingDetector_HoldFiresOnceOnAdvance(t *testing.T) {
	d := NewTimingDetector()
	d.NoteOn(36, 90, t0, defaultThresholds())

	assert.Empty(t, d.Advance(t0.Add(ms(1999))))

	out := d.Advance(t0.Add(ms(2005)))
	require.Len(t, out, 1)
	assert.Equal(t, event.HoldDetected, out[0].Type)
	assert.Equal(t, ms(2005), out[0].Duration)

	assert.Empty(t, d.Advance(t0.Add(ms(3000))), "hold must fire once")

	out = d.NoteOff(36, t0.Add(ms(3500)))
	assert.Equal(t, []event.Type{event.LongPress, event.PadReleased}, types(out))
	assert.Equal(t, ms(3500), out[1].Duration)
}

func TestTimingDetector_DoubleTap(t *testing.T) {
	d := NewTimingDetector()
	th := defaultThresholds()

	d.NoteOn(60, 100, t0, th)
	d.NoteOff(60, t0.Add(ms(40)))

	out := d.NoteOn(60, 100, t0.Add(ms(340)), th)
	require.Equal(t, []event.Type{event.DoubleTap}, types(out))
	assert.Equal(t, ms(300), out[0].Duration)

	// The second press is reported but not classified
	out = d.NoteOff(60, t0.Add(ms(380)))
	assert.Equal(t, []event.Type{event.PadReleased}, types(out))

	// A third quick tap starts a fresh cycle
	assert.Empty(t, d.NoteOn(60, 100, t0.Add(ms(420)), th))
	out = d.NoteOff(60, t0.Add(ms(450)))
	assert.Equal(t, []event.Type{event.ShortPress, event.PadReleased}, types(out))
}

func TestTimingDetector_DoubleTapWindowExpired(t *testing.T) {
	d := NewTimingDetector()
	th := defaultThresholds()

	d.NoteOn(60, 100, t0, th)
	d.NoteOff(60, t0.Add(ms(40)))

	assert.Empty(t, d.NoteOn(60, 100, t0.Add(ms(341)), th))
	out := d.NoteOff(60, t0.Add(ms(380)))
	assert.Equal(t, []event.Type{event.ShortPress, event.PadReleased}, types(out))
}

func TestTimingDetector_ReleaseExpiryCollectsState(t *testing.T) {
	d := NewTimingDetector()
	d.NoteOn(60, 100, t0, defaultThresholds())
	d.NoteOff(60, t0.Add(ms(10)))
	assert.Equal(t, 1, d.Tracked())

	d.Advance(t0.Add(ms(310)))
	assert.Equal(t, 1, d.Tracked())

	d.Advance(t0.Add(ms(311)))
	assert.Equal(t, 0, d.Tracked())
}

func TestTimingDetector_ThresholdsCapturedAtPress(t *testing.T) {
	d := NewTimingDetector()
	d.NoteOn(60, 100, t0, Thresholds{Short: ms(100), Hold: ms(500), DoubleTap: ms(300)})

	// Later presses use different settings; the first one keeps its own
	d.NoteOn(61, 100, t0, Thresholds{Short: ms(1000), Hold: ms(5000), DoubleTap: ms(300)})

	out := d.NoteOff(60, t0.Add(ms(300)))
	assert.Equal(t, event.MediumPress, out[0].Type)
	out = d.NoteOff(61, t0.Add(ms(300)))
	assert.Equal(t, event.ShortPress, out[0].Type)
}

func TestTimingDetector_StrayNoteOff(t *testing.T) {
	d := NewTimingDetector()
	assert.Empty(t, d.NoteOff(10, t0))

	d.NoteOn(10, 1, t0, defaultThresholds())
	d.NoteOff(10, t0.Add(ms(5)))
	assert.Empty(t, d.NoteOff(10, t0.Add(ms(6))), "duplicate release")
}

func TestChordDetector_WithinWindow(t *testing.T) {
	c := NewChordDetector()
	assert.Empty(t, c.NoteOn(64, t0, ms(100)))

	out := c.NoteOn(60, t0.Add(ms(100)), ms(100))
	require.Len(t, out, 1)
	assert.Equal(t, event.ChordDetected, out[0].Type)
	assert.Equal(t, []uint8{60, 64}, out[0].Notes)
}

func TestChordDetector_OutsideWindow(t *testing.T) {
	c := NewChordDetector()
	c.NoteOn(60, t0, ms(100))
	assert.Empty(t, c.NoteOn(64, t0.Add(ms(101)), ms(100)))
	assert.Equal(t, []uint8{64}, c.Notes())
}

func TestChordDetector_GrowsAndShrinks(t *testing.T) {
	c := NewChordDetector()
	c.NoteOn(60, t0, ms(100))
	c.NoteOn(64, t0.Add(ms(20)), ms(100))

	out := c.NoteOn(67, t0.Add(ms(40)), ms(100))
	require.Len(t, out, 1)
	assert.Equal(t, []uint8{60, 64, 67}, out[0].Notes)

	// Re-pressing a held note does not duplicate it or emit a chord
	assert.Empty(t, c.NoteOn(64, t0.Add(ms(50)), ms(100)))
	assert.Equal(t, []uint8{60, 64, 67}, c.Notes())

	c.NoteOff(64)
	assert.Equal(t, []uint8{60, 67}, c.Notes())

	c.NoteOff(99)
	assert.Equal(t, []uint8{60, 67}, c.Notes())
}

func TestChordDetector_RepressRefreshesStaleNote(t *testing.T) {
	c := NewChordDetector()
	// the release of 60 was lost, so it stays buffered
	c.NoteOn(60, t0, ms(100))

	assert.Empty(t, c.NoteOn(60, t0.Add(ms(5000)), ms(100)))
	out := c.NoteOn(62, t0.Add(ms(5030)), ms(100))
	require.Len(t, out, 1)
	assert.Equal(t, []uint8{60, 62}, out[0].Notes)
	assert.Equal(t, ms(30), out[0].Duration)
}

func TestChordDetector_RepressPrunesExpired(t *testing.T) {
	c := NewChordDetector()
	c.NoteOn(60, t0, ms(100))
	c.NoteOn(64, t0.Add(ms(20)), ms(100))

	assert.Empty(t, c.NoteOn(60, t0.Add(ms(500)), ms(100)))
	assert.Equal(t, []uint8{60}, c.Notes())
}
