//go:build linux

package hal

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// RPIOGPIO is the Linux GPIO backend, wired to go-rpio the same way the
// pack's board-support layer wires it: Open() once, map pin numbers to
// rpio.Pin handles lazily, and never unexport on Close (matching §3's
// "exported at construction, not unexported" lifecycle).
type RPIOGPIO struct {
	mu   sync.Mutex
	pins map[int]rpio.Pin
}

// NewRPIOGPIO opens the go-rpio memory-mapped GPIO register and returns a
// provider ready to configure pins on demand.
func NewRPIOGPIO() (*RPIOGPIO, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("hal: open gpio: %w", err)
	}
	return &RPIOGPIO{pins: make(map[int]rpio.Pin)}, nil
}

func (g *RPIOGPIO) SetMode(pin int, mode PinMode) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := rpio.Pin(pin)
	switch mode {
	case Input:
		p.Input()
	case Output:
		p.Output()
	default:
		return fmt.Errorf("hal: unsupported pin mode %v", mode)
	}
	g.pins[pin] = p
	return nil
}

func (g *RPIOGPIO) DigitalWrite(pin int, value bool) error {
	g.mu.Lock()
	p, ok := g.pins[pin]
	g.mu.Unlock()
	if !ok {
		return ErrPinNotConfigured(pin)
	}
	if value {
		p.High()
	} else {
		p.Low()
	}
	return nil
}

func (g *RPIOGPIO) DigitalRead(pin int) (bool, error) {
	g.mu.Lock()
	p, ok := g.pins[pin]
	g.mu.Unlock()
	if !ok {
		return false, ErrPinNotConfigured(pin)
	}
	return p.Read() == rpio.High, nil
}

func (g *RPIOGPIO) Close() error {
	return rpio.Close()
}
