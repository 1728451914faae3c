//go:build linux

package main

import (
	"github.com/brianmakesthings/cautious-axela/internal/config"
	"github.com/brianmakesthings/cautious-axela/internal/hal"
)

// newHAL opens the real go-rpio GPIO register and the periph.io I2C bus
// named in cfg, the only backend this binary ships on its target board.
func newHAL(cfg *config.Config) (hal.GPIOProvider, hal.I2CBus, error) {
	gpio, err := hal.NewRPIOGPIO()
	if err != nil {
		return nil, nil, err
	}
	bus, err := hal.OpenPeriphI2C(cfg.I2C.Bus)
	if err != nil {
		gpio.Close()
		return nil, nil, err
	}
	return gpio, bus, nil
}
