//go:build !linux

package main

import (
	"log"

	"github.com/brianmakesthings/cautious-axela/internal/config"
	"github.com/brianmakesthings/cautious-axela/internal/hal"
)

// newHAL stands in for the real board on any non-Linux build host: the
// go-rpio and periph.io backends are Linux-only, so a development build
// off-target gets the in-memory mocks instead. It never fires in
// production; the target board is always Linux.
func newHAL(cfg *config.Config) (hal.GPIOProvider, hal.I2CBus, error) {
	log.Println("non-linux build: using simulated GPIO/I2C, no real hardware will respond")
	return hal.NewMockGPIO(), hal.NewMockI2C(), nil
}
