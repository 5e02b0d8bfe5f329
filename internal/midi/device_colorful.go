package midi

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
)

// ColorfulDevice drives the top row of a Launchpad Mini Mk3 in programmer
// mode, where LED indices run from 11 (bottom left) to 99 (top right).
type ColorfulDevice struct{}

var mk3Header = []byte{0x00, 0x20, 0x29, 0x02, 0x0D}

func (d *ColorfulDevice) Activate(send func(midi.Message) error) error {
	// SysEx for programmer mode: 00 20 29 02 0D 0E 01
	if err := send(midi.SysEx(append(append([]byte{}, mk3Header...), 0x0E, 0x01))); err != nil {
		return fmt.Errorf("failed to send programmer mode message: %w", err)
	}
	return nil
}

func (d *ColorfulDevice) ShowColor(send func(midi.Message) error, color PadColor) error {
	r := d.scaleColor(color.R)
	g := d.scaleColor(color.G)
	b := d.scaleColor(color.B)

	// One lighting SysEx with an RGB entry (03 <led> <r> <g> <b>) per top-row pad
	sysex := append(append([]byte{}, mk3Header...), 0x03)
	for led := uint8(91); led <= 98; led++ {
		sysex = append(sysex, 0x03, led, r&0x7F, g&0x7F, b&0x7F)
	}
	return send(midi.SysEx(sysex))
}

// scaleColor applies a power curve so mid-range colors stay distinct
func (d *ColorfulDevice) scaleColor(value uint8) uint8 {
	if value == 0 {
		return 0
	}
	f := float64(value) / 127.0
	scaled := f * f * 127.0
	if scaled < 1 {
		scaled = 1 // Ensure non-zero input gives non-zero output
	}
	return uint8(scaled)
}

func (d *ColorfulDevice) Clear(send func(midi.Message) error) error {
	// Static color 0 for every valid LED index
	sysex := append(append([]byte{}, mk3Header...), 0x03)
	for i := 11; i <= 99; i++ {
		if i%10 >= 1 && i%10 <= 9 {
			sysex = append(sysex, 0x00, uint8(i), 0x00)
		}
	}
	return send(midi.SysEx(sysex))
}
