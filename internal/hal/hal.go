// Package hal declares the hardware abstraction the peripheral actors are
// built against: digital GPIO and an addressed I2C bus. It is deliberately
// narrower than a general-purpose board HAL (no PWM, SPI, or serial) since
// the device-dispatch core only ever drives a strike relay, a keypad
// matrix, and a PN532 reader.
package hal

import "fmt"

// PinMode is the direction a GPIO pin is configured for.
type PinMode int

const (
	Input PinMode = iota
	Output
)

// GPIOProvider is the digital I/O surface the door actor (single strike
// pin) and the keypad actor (row/column matrix) are built against.
type GPIOProvider interface {
	// SetMode configures a pin's direction. Pins are exported lazily, the
	// first time SetMode is called for them, and are never unexported
	// (§3's lifecycle invariant).
	SetMode(pin int, mode PinMode) error
	DigitalRead(pin int) (bool, error)
	DigitalWrite(pin int, value bool) error
	Close() error
}

// I2CBus is the bus-level I2C surface the NFC actor drives the PN532
// through: a fixed 7-bit address, raw byte writes and reads, no register
// addressing (the PN532 protocol is entirely payload-framed, not
// register-mapped).
type I2CBus interface {
	Write(addr uint16, data []byte) error
	Read(addr uint16, data []byte) error
	Close() error
}

// ErrPinNotConfigured is returned by a GPIOProvider when a pin is used
// before SetMode has been called for it.
func ErrPinNotConfigured(pin int) error {
	return fmt.Errorf("hal: pin %d not configured", pin)
}
