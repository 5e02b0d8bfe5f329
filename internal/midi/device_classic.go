package midi

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// ClassicDevice drives the top row of a Launchpad S. The row is addressed
// with CC 104-111 and colors are packed into the velocity byte.
type ClassicDevice struct{}

const classicTopRow = 104

func (d *ClassicDevice) Activate(send func(midi.Message) error) error {
	// Send reset: B0 00 00 (CC 0 value 0)
	if err := send(midi.ControlChange(0, 0, 0)); err != nil {
		return fmt.Errorf("failed to reset Launchpad S: %w", err)
	}
	return nil
}

func (d *ClassicDevice) ShowColor(send func(midi.Message) error, color PadColor) error {
	velocity := d.velocity(color)
	for col := 0; col < 8; col++ {
		if err := send(midi.ControlChange(0, uint8(classicTopRow+col), velocity)); err != nil {
			return err
		}
	}
	return nil
}

// velocity packs a color as 0bGGCCRR where CC = 11 (copy+clear)
func (d *ClassicDevice) velocity(color PadColor) uint8 {
	if color.IsOff() {
		return 0x0C // flags only, no color = off
	}

	// Blue leans toward green since that's closer on the spectrum
	effectiveR := min(int(color.R)+int(color.B)/4, 127)
	effectiveG := min(int(color.G)+(int(color.B)*3)/4, 127)

	redLevel := d.colorTo4Level(uint8(effectiveR))
	greenLevel := d.colorTo4Level(uint8(effectiveG))
	return (greenLevel << 4) | 0x0C | redLevel
}

func (d *ClassicDevice) colorTo4Level(value uint8) uint8 {
	if value < 32 {
		return 0
	} else if value < 64 {
		return 1
	} else if value < 96 {
		return 2
	}
	return 3
}

func (d *ClassicDevice) Clear(send func(midi.Message) error) error {
	// Reset Launchpad S: B0 00 00
	return send(midi.ControlChange(0, 0, 0))
}
