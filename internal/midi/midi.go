// Package midi is the hardware boundary: port discovery, listening, sending,
// raw message decoding and mode-color feedback on controllers with LEDs.
package midi

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register rtmidi driver
)

// Port is the part of a driver port the manager needs
type Port interface {
	String() string
}

// Manager handles MIDI device discovery and management
type Manager struct {
	mu sync.RWMutex
}

// NewManager creates a new MIDI manager
func NewManager() *Manager {
	return &Manager{}
}

// Close cleans up the MIDI driver
func (m *Manager) Close() {
	midi.CloseDriver()
}

// ListInPorts returns the names of available MIDI input ports
func (m *Manager) ListInPorts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return portNames(midi.GetInPorts())
}

// ListOutPorts returns the names of available MIDI output ports
func (m *Manager) ListOutPorts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return portNames(midi.GetOutPorts())
}

// GetInPort returns an input port by name. An exact match wins over a
// case-insensitive substring match.
func (m *Manager) GetInPort(name string) (drivers.In, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ins := midi.GetInPorts()
	i := MatchPort(portNames(ins), name)
	if i < 0 {
		return nil, portNotFound("input", name)
	}
	return ins[i], nil
}

// GetOutPort returns an output port by name, matched like GetInPort
func (m *Manager) GetOutPort(name string) (drivers.Out, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	outs := midi.GetOutPorts()
	i := MatchPort(portNames(outs), name)
	if i < 0 {
		return nil, portNotFound("output", name)
	}
	return outs[i], nil
}

// Listen delivers every raw message received on the named input port to
// handler until stop is called. handler runs on the driver's goroutine.
func (m *Manager) Listen(inPortName string, handler func(raw []byte)) (stop func(), err error) {
	inPort, err := m.GetInPort(inPortName)
	if err != nil {
		return nil, err
	}

	stop, err = midi.ListenTo(inPort, func(msg midi.Message, timestampms int32) {
		handler(msg.Bytes())
	})
	if err != nil {
		return nil, fault.Wrap(err,
			fmsg.With(fmt.Sprintf("failed to listen on %s", inPort.String())),
			ftag.With(ftag.Internal))
	}
	return stop, nil
}

// Send writes one message to the named output port
func (m *Manager) Send(outPortName string, msg midi.Message) error {
	outPort, err := m.GetOutPort(outPortName)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	send, err := midi.SendTo(outPort)
	if err != nil {
		return fault.Wrap(err, fmsg.With("failed to create sender"))
	}
	if err := send(msg); err != nil {
		return fault.Wrap(err, fmsg.With(fmt.Sprintf("send to %s failed", outPort.String())))
	}
	return nil
}

// ShowMode lights the indicator LEDs of the device on outPortName in the
// given mode color. Devices without an indicator are left alone.
func (m *Manager) ShowMode(outPortName string, t IndicatorType, color PadColor) error {
	return m.withIndicator(outPortName, t, func(ind Indicator, send func(midi.Message) error) error {
		if err := ind.Activate(send); err != nil {
			return err
		}
		return ind.ShowColor(send, color)
	})
}

// ClearMode turns the indicator LEDs off
func (m *Manager) ClearMode(outPortName string, t IndicatorType) error {
	return m.withIndicator(outPortName, t, func(ind Indicator, send func(midi.Message) error) error {
		return ind.Clear(send)
	})
}

func (m *Manager) withIndicator(outPortName string, t IndicatorType, fn func(Indicator, func(midi.Message) error) error) error {
	indicator, ok := NewIndicator(t)
	if !ok || outPortName == "" {
		return nil
	}

	outPort, err := m.GetOutPort(outPortName)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	send, err := midi.SendTo(outPort)
	if err != nil {
		return fault.Wrap(err, fmsg.With("failed to create sender"))
	}
	return fn(indicator, send)
}

// MatchPort returns the index of the port called name, preferring an exact
// match over a case-insensitive substring match, or -1.
func MatchPort(ports []string, name string) int {
	if name == "" {
		return -1
	}
	for i, p := range ports {
		if p == name {
			return i
		}
	}
	lower := strings.ToLower(name)
	for i, p := range ports {
		if strings.Contains(strings.ToLower(p), lower) {
			return i
		}
	}
	return -1
}

func portNames[P Port](ports []P) []string {
	names := make([]string, 0, len(ports))
	for _, p := range ports {
		names = append(names, p.String())
	}
	return names
}

func portNotFound(kind, name string) error {
	return fault.New(
		fmt.Sprintf("%s port not found: %s", kind, name),
		ftag.With(ftag.NotFound),
		fmsg.WithDesc("port not found", fmt.Sprintf("No MIDI %s port matches %q", kind, name)),
	)
}
