//go:build linux

package hal

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// PeriphI2C wraps a periph.io i2c.BusCloser as an hal.I2CBus, the same
// wrapping the pack's board-support layer uses for its I2C nodes: a single
// Tx call does a write-only or read-only transaction depending on which
// side is nil.
type PeriphI2C struct {
	bus i2c.BusCloser
}

// OpenPeriphI2C initializes periph.io's host drivers and opens the named
// I2C bus (e.g. "/dev/i2c-2").
func OpenPeriphI2C(name string) (*PeriphI2C, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("hal: init periph host: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("hal: open i2c bus %s: %w", name, err)
	}
	return &PeriphI2C{bus: bus}, nil
}

func (p *PeriphI2C) Write(addr uint16, data []byte) error {
	return p.bus.Tx(addr, data, nil)
}

func (p *PeriphI2C) Read(addr uint16, data []byte) error {
	return p.bus.Tx(addr, nil, data)
}

func (p *PeriphI2C) Close() error {
	return p.bus.Close()
}
