// Package actuator drives the shared pan/tilt joystick rig: ICS serial
// servos advanced at a fixed rate from operator-set directions.
package actuator

import (
	"fmt"
	"sync"

	"go.bug.st/serial"

	"github.com/hrilab/go-duo/internal/log"
)

// PositionSender sends a bounded position command to one servo.
// Fire-and-forget: the ICS position frame has no acknowledgment, so there
// is nothing useful to return.
type PositionSender interface {
	SendPosition(servoID int, angle float64)
}

// ICS position mapping. Angles in [-60, 60] map linearly onto servo
// positions around the 7500 center; the hard device range is 3500-11500.
const (
	icsCenter    = 7500
	icsSwing     = 2000
	icsAngleSpan = 60.0
	icsMin       = 3500
	icsMax       = 11500

	// DefaultBaudRate is the ICS bus rate (8 data bits, even parity).
	DefaultBaudRate = 1250000
)

// angleToPosition converts a target angle to an ICS position value.
func angleToPosition(angle float64) int {
	position := icsCenter + int(angle/icsAngleSpan*icsSwing)
	if position < icsMin {
		return icsMin
	}
	if position > icsMax {
		return icsMax
	}
	return position
}

// ICSDriver sends position frames to ICS servos over one shared serial
// port. Writes are serialized so frames from different axes never
// interleave on the wire.
type ICSDriver struct {
	mu   sync.Mutex
	port serial.Port
}

// OpenICS opens the ICS serial bus.
func OpenICS(portName string, baudRate int) (*ICSDriver, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.EvenParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	log.Info("ICS serial port opened", "port", portName, "baud", baudRate)
	return &ICSDriver{port: port}, nil
}

// SendPosition sends one 3-byte ICS position frame:
// command byte (0x80 | id), then the position's high and low 7-bit halves.
func (d *ICSDriver) SendPosition(servoID int, angle float64) {
	position := angleToPosition(angle)
	frame := []byte{
		0x80 | byte(servoID),
		byte((position >> 7) & 0x7F),
		byte(position & 0x7F),
	}

	d.mu.Lock()
	_, err := d.port.Write(frame)
	d.mu.Unlock()
	if err != nil {
		// The channel is unreliable by design; the rig re-sends every
		// tick, so a lost frame corrects itself.
		log.Debug("ICS write failed", "servo", servoID, "error", err)
	}
}

// Close closes the serial port.
func (d *ICSDriver) Close() error {
	return d.port.Close()
}

// Discard is a PositionSender that drops every command. Used when the
// serial port is absent so the rest of the server still runs.
type Discard struct{}

func (Discard) SendPosition(servoID int, angle float64) {}
