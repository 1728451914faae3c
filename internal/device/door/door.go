// Package door implements the electric strike actor: a two-state machine
// (Lock/Unlock) with an auto-relock timer, driven by a single GPIO pin.
package door

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/brianmakesthings/cautious-axela/internal/actor"
	"github.com/brianmakesthings/cautious-axela/internal/hal"
	"github.com/brianmakesthings/cautious-axela/internal/mailbox"
	"github.com/brianmakesthings/cautious-axela/internal/proto"
)

const (
	tickPeriod  = 500 * time.Millisecond
	relockAfter = 3 * time.Second
)

// Actor is the door peripheral. It owns the strike GPIO pin and is the
// only writer of door state; keypad and NFC actors reach it only through
// Internal, a one-way mailbox with no response channel (§9 "cyclic actor
// refs").
type Actor struct {
	gpio     hal.GPIOProvider
	pin      int
	external *mailbox.Mailbox[actor.Command]
	internal *mailbox.Mailbox[proto.Request]
	log      *zap.Logger

	state        proto.DoorState
	lastUnlocked time.Time
}

// New constructs the door actor, exports the strike pin as output, and
// drives it to the Lock level.
func New(gpio hal.GPIOProvider, pin int, log *zap.Logger) (*Actor, error) {
	if err := gpio.SetMode(pin, hal.Output); err != nil {
		return nil, fmt.Errorf("door: set pin %d output: %w", pin, err)
	}
	a := &Actor{
		gpio:     gpio,
		pin:      pin,
		external: mailbox.New[actor.Command](),
		internal: mailbox.New[proto.Request](),
		log:      log,
		state:    proto.StateLock,
	}
	if err := a.writeLevel(proto.StateLock); err != nil {
		return nil, fmt.Errorf("door: initial lock write: %w", err)
	}
	return a, nil
}

// Mailbox is the external, TCP-dispatch-facing mailbox for DoorGetState and
// DoorSetState requests.
func (a *Actor) Mailbox() *mailbox.Mailbox[actor.Command] { return a.external }

// Internal is the one-way mailbox the keypad and NFC actors send
// Door.Set(Unlock) requests to; it carries no connection and produces no
// response.
func (a *Actor) Internal() *mailbox.Mailbox[proto.Request] { return a.internal }

func (a *Actor) Receive() (actor.Command, bool) {
	if cmd, ok, _ := a.external.TryReceive(); ok {
		return cmd, true
	}
	if req, ok, _ := a.internal.TryReceive(); ok {
		return actor.Command{Request: req, Conn: nil}, true
	}
	return actor.Command{}, false
}

func (a *Actor) HandleCommand(cmd actor.Command) bool {
	switch cmd.Request.Variant {
	case proto.DoorGetState:
		a.respond(cmd.Conn, proto.NewGetResponse(cmd.Request.ID, proto.DoorGetState, a.state, nil))

	case proto.DoorSetState:
		var target proto.DoorState
		err := json.Unmarshal(cmd.Request.Candidate, &target)
		if err == nil {
			err = a.set(target)
		}
		a.respond(cmd.Conn, proto.NewSetResponse(cmd.Request.ID, proto.DoorSetState, cmd.Request.Candidate, err))

	default:
		panic(fmt.Sprintf("door actor: misrouted request variant %q", cmd.Request.Variant))
	}
	return false
}

// Step implements the auto-relock timer: once Unlock has held longer than
// relockAfter, the strike is driven back to Lock with no response emitted
// (this is an internal transition, not answering any pending request).
func (a *Actor) Step() {
	if a.state == proto.StateUnlock && time.Since(a.lastUnlocked) > relockAfter {
		if err := a.writeLevel(proto.StateLock); err != nil {
			a.log.Fatal("gpio write failed during auto-relock", zap.Error(err))
		}
		a.state = proto.StateLock
	}
}

func (a *Actor) SleepDuration() time.Duration { return tickPeriod }

func (a *Actor) set(target proto.DoorState) error {
	if target != proto.StateLock && target != proto.StateUnlock {
		return fmt.Errorf("door: invalid state %q", target)
	}
	if err := a.writeLevel(target); err != nil {
		// GPIO write failure is an unrecoverable hardware fault (§4.5).
		a.log.Fatal("gpio write failed", zap.Error(err))
	}
	a.state = target
	if target == proto.StateUnlock {
		a.lastUnlocked = time.Now()
	}
	return nil
}

func (a *Actor) writeLevel(state proto.DoorState) error {
	level := state == proto.StateUnlock
	return a.gpio.DigitalWrite(a.pin, level)
}

func (a *Actor) respond(conn net.Conn, resp proto.Response) {
	if conn == nil {
		return
	}
	actor.Respond(conn, resp, a.log)
}
