package door

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brianmakesthings/cautious-axela/internal/actor"
	"github.com/brianmakesthings/cautious-axela/internal/hal"
	"github.com/brianmakesthings/cautious-axela/internal/proto"
)

func newTestActor(t *testing.T) (*Actor, *hal.MockGPIO) {
	t.Helper()
	gpio := hal.NewMockGPIO()
	a, err := New(gpio, 48, zap.NewNop())
	require.NoError(t, err)
	return a, gpio
}

func TestInitialStateIsLockedAtLevelZero(t *testing.T) {
	a, gpio := newTestActor(t)
	assert.Equal(t, proto.StateLock, a.state)
	assert.False(t, gpio.Value(48))
}

// TestAutoRelock exercises testable property 3: Get returns Unlock for at
// most 3s after Set(Unlock); between 3s and 4s the state is Lock and the
// observed GPIO level is 0.
func TestAutoRelock(t *testing.T) {
	a, gpio := newTestActor(t)

	require.NoError(t, a.set(proto.StateUnlock))
	assert.Equal(t, proto.StateUnlock, a.state)
	assert.True(t, gpio.Value(48))

	// Simulate elapsed time by backdating lastUnlocked rather than sleeping
	// for real seconds in a unit test.
	a.lastUnlocked = time.Now().Add(-3500 * time.Millisecond)
	a.Step()

	assert.Equal(t, proto.StateLock, a.state)
	assert.False(t, gpio.Value(48))
}

func TestAutoRelockDoesNotFireEarly(t *testing.T) {
	a, _ := newTestActor(t)
	require.NoError(t, a.set(proto.StateUnlock))
	a.lastUnlocked = time.Now().Add(-1 * time.Second)
	a.Step()
	assert.Equal(t, proto.StateUnlock, a.state)
}

func TestInternalUnlockRequiresNoResponse(t *testing.T) {
	a, gpio := newTestActor(t)
	a.Internal().Send(proto.NewInternalUnlock())

	cmd, ready := a.Receive()
	require.True(t, ready)
	assert.Nil(t, cmd.Conn)

	shutdown := a.HandleCommand(cmd)
	assert.False(t, shutdown)
	assert.Equal(t, proto.StateUnlock, a.state)
	assert.True(t, gpio.Value(48))
}

func TestExternalMailboxTakesPriorityOverInternal(t *testing.T) {
	a, _ := newTestActor(t)
	a.Internal().Send(proto.NewInternalUnlock())
	a.external.Send(actor.Command{Request: proto.NewGetRequest(proto.NewID(0, 1), proto.DoorGetState)})

	cmd, ready := a.Receive()
	require.True(t, ready)
	assert.Equal(t, proto.DoorGetState, cmd.Request.Variant)
}
