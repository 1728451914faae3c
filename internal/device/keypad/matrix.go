package keypad

import (
	"fmt"

	"github.com/brianmakesthings/cautious-axela/internal/hal"
)

// layout is the fixed 4x4 keypad character map (§4.6).
var layout = [4][4]byte{
	{'1', '2', '3', 'A'},
	{'4', '5', '6', 'B'},
	{'7', '8', '9', 'C'},
	{'*', '0', '#', 'D'},
}

// Matrix drives the row/column scan. Rows are toggled to output and driven
// low one at a time; columns are read as input, and a column reading low
// means that (row, col) intersection is pressed.
type Matrix struct {
	gpio hal.GPIOProvider
	rows [4]int
	cols [4]int
}

// NewMatrix configures the four column pins as input and returns a Matrix
// ready to scan. Row pins are put in output mode lazily by Scan, since they
// must toggle direction every scan (output while driven, input otherwise).
func NewMatrix(gpio hal.GPIOProvider, rows, cols [4]int) (*Matrix, error) {
	for _, col := range cols {
		if err := gpio.SetMode(col, hal.Input); err != nil {
			return nil, fmt.Errorf("keypad: configure column pin %d: %w", col, err)
		}
	}
	return &Matrix{gpio: gpio, rows: rows, cols: cols}, nil
}

// Scan drives each row low in turn and samples every column, returning the
// set of characters currently pressed.
func (m *Matrix) Scan() (map[byte]struct{}, error) {
	pressed := make(map[byte]struct{})
	for i, row := range m.rows {
		if err := m.gpio.SetMode(row, hal.Output); err != nil {
			return nil, fmt.Errorf("keypad: drive row pin %d: %w", row, err)
		}
		if err := m.gpio.DigitalWrite(row, false); err != nil {
			return nil, fmt.Errorf("keypad: write row pin %d low: %w", row, err)
		}

		for j, col := range m.cols {
			level, err := m.gpio.DigitalRead(col)
			if err != nil {
				return nil, fmt.Errorf("keypad: read column pin %d: %w", col, err)
			}
			if !level {
				pressed[layout[i][j]] = struct{}{}
			}
		}

		if err := m.gpio.SetMode(row, hal.Input); err != nil {
			return nil, fmt.Errorf("keypad: restore row pin %d to input: %w", row, err)
		}
	}
	return pressed, nil
}
