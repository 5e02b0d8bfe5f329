package midi

import "gitlab.com/gomidi/midi/v2"

// Indicator shows the active mode's color on a controller's LEDs
type Indicator interface {
	// Activate puts the device into a state where the LEDs can be driven
	Activate(send func(midi.Message) error) error

	// ShowColor lights the indicator row in the given color
	ShowColor(send func(midi.Message) error, color PadColor) error

	// Clear turns the indicator LEDs off
	Clear(send func(midi.Message) error) error
}

// NewIndicator returns the Indicator for the given type, or false when the
// type drives no LEDs.
func NewIndicator(t IndicatorType) (Indicator, bool) {
	switch t {
	case IndicatorLaunchpadS:
		return &ClassicDevice{}, true
	case IndicatorLaunchpadMk3:
		return &ColorfulDevice{}, true
	default:
		return nil, false
	}
}
