// Package terminal implements the operator console actor: Set prints a
// line, Get blocks on a line of stdin. It is the one actor whose
// handle_command can legitimately stall (§5: "by design... an interactive
// operator prompt"), so it is never pinned to an OS thread the way the
// hardware-touching actors are.
package terminal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/brianmakesthings/cautious-axela/internal/actor"
	"github.com/brianmakesthings/cautious-axela/internal/mailbox"
	"github.com/brianmakesthings/cautious-axela/internal/proto"
)

const tickPeriod = 250 * time.Millisecond

// Text is the Terminal resource's Value type.
type Text string

// Actor is the terminal peripheral.
type Actor struct {
	external *mailbox.Mailbox[actor.Command]
	reader   *bufio.Reader
	writer   io.Writer
	log      *zap.Logger
}

// New constructs the terminal actor over the given reader (stdin in
// production) and writer (stdout in production).
func New(reader io.Reader, writer io.Writer, log *zap.Logger) *Actor {
	return &Actor{
		external: mailbox.New[actor.Command](),
		reader:   bufio.NewReader(reader),
		writer:   writer,
		log:      log,
	}
}

// Mailbox is the external, TCP-dispatch-facing mailbox.
func (a *Actor) Mailbox() *mailbox.Mailbox[actor.Command] { return a.external }

func (a *Actor) Receive() (actor.Command, bool) {
	cmd, ok, _ := a.external.TryReceive()
	return cmd, ok
}

func (a *Actor) HandleCommand(cmd actor.Command) bool {
	switch cmd.Request.Variant {
	case proto.TerminalGetText:
		text, err := a.get()
		a.respond(cmd.Conn, proto.NewGetResponse(cmd.Request.ID, proto.TerminalGetText, text, err))

	case proto.TerminalSetText:
		var text Text
		err := json.Unmarshal(cmd.Request.Candidate, &text)
		if err == nil {
			err = a.set(text)
		}
		a.respond(cmd.Conn, proto.NewSetResponse(cmd.Request.ID, proto.TerminalSetText, cmd.Request.Candidate, err))

	default:
		panic(fmt.Sprintf("terminal actor: misrouted request variant %q", cmd.Request.Variant))
	}
	return false
}

func (a *Actor) Step() {}

func (a *Actor) SleepDuration() time.Duration { return tickPeriod }

func (a *Actor) set(text Text) error {
	_, err := fmt.Fprintln(a.writer, string(text))
	return err
}

// get blocks reading one line from stdin. EOF is not an error: the text read
// before it is returned, which is the empty string when nothing was read,
// matching the original's "Ok(0) => empty string" behavior.
func (a *Actor) get() (Text, error) {
	line, err := a.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return Text(line), nil
		}
		return "", fmt.Errorf("terminal: read stdin: %w", err)
	}
	return Text(line), nil
}

func (a *Actor) respond(conn net.Conn, resp proto.Response) {
	if conn == nil {
		return
	}
	actor.Respond(conn, resp, a.log)
}
