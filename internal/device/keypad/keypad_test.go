package keypad

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brianmakesthings/cautious-axela/internal/actor"
	"github.com/brianmakesthings/cautious-axela/internal/hal"
	"github.com/brianmakesthings/cautious-axela/internal/mailbox"
	"github.com/brianmakesthings/cautious-axela/internal/notify"
	"github.com/brianmakesthings/cautious-axela/internal/proto"
)

var (
	testRows = [4]int{3, 2, 15, 115}
	testCols = [4]int{66, 67, 69, 68}
)

// fakeMatrixGPIO models the row/column coupling a real matrix has (reading
// a column depends on which row is currently driven low), which the plain
// hal.MockGPIO deliberately does not.
type fakeMatrixGPIO struct {
	activeRow int
	pressed   map[byte]struct{}
}

func newFakeMatrixGPIO() *fakeMatrixGPIO {
	return &fakeMatrixGPIO{activeRow: -1, pressed: map[byte]struct{}{}}
}

func (f *fakeMatrixGPIO) SetMode(pin int, mode hal.PinMode) error {
	for i, r := range testRows {
		if r == pin {
			if mode == hal.Output {
				f.activeRow = i
			} else {
				f.activeRow = -1
			}
		}
	}
	return nil
}

func (f *fakeMatrixGPIO) DigitalWrite(pin int, value bool) error { return nil }

func (f *fakeMatrixGPIO) DigitalRead(pin int) (bool, error) {
	if f.activeRow < 0 {
		return true, nil
	}
	for j, c := range testCols {
		if c == pin {
			_, isPressed := f.pressed[layout[f.activeRow][j]]
			return !isPressed, nil
		}
	}
	return true, nil
}

func (f *fakeMatrixGPIO) Close() error { return nil }

func newTestKeypad(t *testing.T, codeFile string) (*Actor, *fakeMatrixGPIO, *mailbox.Mailbox[proto.Request]) {
	t.Helper()
	gpio := newFakeMatrixGPIO()
	matrix, err := NewMatrix(gpio, testRows, testCols)
	require.NoError(t, err)

	doorInternal := mailbox.New[proto.Request]()
	client := notify.NewClient(notify.Config{})
	a, err := New(matrix, codeFile, doorInternal, client, zap.NewNop())
	require.NoError(t, err)
	return a, gpio, doorInternal
}

func typeSequence(a *Actor, gpio *fakeMatrixGPIO, chars string) {
	for _, ch := range chars {
		gpio.pressed = map[byte]struct{}{byte(ch): {}}
		a.Step()
		gpio.pressed = map[byte]struct{}{}
		a.Step()
	}
}

// TestCodeMatchTriggersUnlock exercises testable property 6.
func TestCodeMatchTriggersUnlock(t *testing.T) {
	codeFile := filepath.Join(t.TempDir(), "code")
	require.NoError(t, os.WriteFile(codeFile, []byte("1234"), 0644))

	a, gpio, doorInternal := newTestKeypad(t, codeFile)
	typeSequence(a, gpio, "1234#")

	req, ok, _ := doorInternal.TryReceive()
	require.True(t, ok)
	assert.Equal(t, proto.DoorSetState, req.Variant)

	_, ok, _ = doorInternal.TryReceive()
	assert.False(t, ok, "expected exactly one internal unlock request")
}

// TestRingThrottle exercises testable property 7: two ring sequences close
// together trigger one notification window entry; far apart trigger two.
func TestRingThrottle(t *testing.T) {
	codeFile := filepath.Join(t.TempDir(), "code")
	a, gpio, _ := newTestKeypad(t, codeFile)

	typeSequence(a, gpio, "***#")
	firstRang := a.lastRang
	assert.False(t, firstRang.IsZero())

	a.lastPressed = time.Now()
	typeSequence(a, gpio, "***#")
	assert.Equal(t, firstRang, a.lastRang, "second ring within the throttle window must not update lastRang")

	a.lastRang = time.Now().Add(-6 * time.Second)
	before := a.lastRang
	typeSequence(a, gpio, "***#")
	assert.NotEqual(t, before, a.lastRang, "a ring after the throttle window must update lastRang")
}

// TestCodePersistence exercises testable property 8.
func TestCodePersistence(t *testing.T) {
	codeFile := filepath.Join(t.TempDir(), "code")
	a, _, _ := newTestKeypad(t, codeFile)

	candidate, err := json.Marshal(Code{Data: "0000"})
	require.NoError(t, err)

	shutdown := a.HandleCommand(actor.Command{Request: proto.Request{
		Variant:   proto.KeyPadSetCode,
		ID:        proto.NewID(0, 1),
		Candidate: candidate,
	}})
	assert.False(t, shutdown)

	raw, err := os.ReadFile(codeFile)
	require.NoError(t, err)
	assert.Equal(t, "0000", string(raw))

	// A restarted process reads the persisted code back as the active code.
	restarted, _, _ := newTestKeypad(t, codeFile)
	assert.Equal(t, "0000", restarted.code.Data)
}

// TestSetInvalidCodeRejectedAndFileUnchanged exercises testable property 10
// at the actor/persistence level.
func TestSetInvalidCodeRejectedAndFileUnchanged(t *testing.T) {
	codeFile := filepath.Join(t.TempDir(), "code")
	require.NoError(t, os.WriteFile(codeFile, []byte("1234"), 0644))
	a, _, _ := newTestKeypad(t, codeFile)

	candidate, err := json.Marshal(Code{Data: "12*4"})
	require.NoError(t, err)

	a.HandleCommand(actor.Command{Request: proto.Request{
		Variant:   proto.KeyPadSetCode,
		ID:        proto.NewID(0, 2),
		Candidate: candidate,
	}})

	raw, readErr := os.ReadFile(codeFile)
	require.NoError(t, readErr)
	assert.Equal(t, "1234", string(raw))
	assert.Equal(t, "1234", a.code.Data)
}

func TestResetClearsStaleBuffer(t *testing.T) {
	codeFile := filepath.Join(t.TempDir(), "code")
	a, gpio, _ := newTestKeypad(t, codeFile)

	gpio.pressed = map[byte]struct{}{'1': {}}
	a.Step()
	gpio.pressed = map[byte]struct{}{}
	a.Step()
	assert.NotEmpty(t, a.buffer.data)

	a.lastPressed = time.Now().Add(-resetTimer - time.Second)
	a.Step()
	assert.Empty(t, a.buffer.data)
}
