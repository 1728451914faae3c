// Package actor defines the receive-handle-step-sleep runtime loop shared
// by every peripheral actor (door, keypad, NFC, terminal), and the Command
// envelope carrying a decoded request alongside the connection it arrived
// on (or no connection, for internally generated commands).
package actor

import (
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/brianmakesthings/cautious-axela/internal/proto"
)

// Command pairs a decoded Request with the net.Conn it arrived on. Conn is
// nil for commands that arrived over an actor's internal mailbox from a peer
// actor (§4.5's internal Door.Set(Unlock)); such commands never produce a
// response frame.
type Command struct {
	Request proto.Request
	Conn    net.Conn
}

// Actor is the interface every peripheral implements. Receive is a
// non-blocking mailbox poll; HandleCommand performs the operation and
// writes a response frame when Conn is non-nil; Step does periodic work
// independent of incoming commands; SleepDuration is the tick period.
type Actor interface {
	Receive() (Command, bool)
	HandleCommand(cmd Command) (shutdown bool)
	Step()
	SleepDuration() time.Duration
}

// Run drives an Actor's loop until HandleCommand requests shutdown. It is
// meant to be called on its own goroutine; the hardware-backed actors pin
// that goroutine to an OS thread with runtime.LockOSThread before calling
// Run, since go-rpio and periph.io both assume a consistent calling thread.
func Run(a Actor) {
	for {
		if cmd, ready := a.Receive(); ready {
			if a.HandleCommand(cmd) {
				return
			}
		}
		a.Step()
		time.Sleep(a.SleepDuration())
	}
}

// Respond writes a framed response on conn and closes it, per §4.3's
// "one request per connection, the response consumes it" contract. conn is
// nil for internally generated commands (§4.5's internal mailbox); callers
// check that before invoking Respond. A write failure is logged, not
// fatal: the gateway will simply see the connection drop and retry.
func Respond(conn net.Conn, resp proto.Response, log *zap.Logger) {
	defer conn.Close()
	if err := proto.WriteResponse(conn, resp); err != nil {
		log.Warn("failed to write response", zap.Error(err), zap.String("variant", string(resp.Variant)))
	}
}
