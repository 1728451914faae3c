// Package keypad implements the 4x4 matrix keypad actor: debounced matrix
// scanning, a bounded candidate buffer, code matching (triggers an
// internal door unlock), and the "***" ring sequence (triggers an outbound
// SMS notification, throttled to one per 5s window).
package keypad

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brianmakesthings/cautious-axela/internal/actor"
	"github.com/brianmakesthings/cautious-axela/internal/mailbox"
	"github.com/brianmakesthings/cautious-axela/internal/notify"
	"github.com/brianmakesthings/cautious-axela/internal/proto"
)

const (
	tickPeriod   = 50 * time.Millisecond
	resetTimer   = 5 * time.Second
	ringSequence = "***"
	ringThrottle = 5 * time.Second
)

// Actor is the keypad peripheral.
type Actor struct {
	external *mailbox.Mailbox[actor.Command]
	matrix   *Matrix
	buffer   *candidateBuffer

	code        Code
	phoneNumber PhoneNumber
	codeFile    string

	lastPressed time.Time
	lastRang    time.Time

	doorInternal *mailbox.Mailbox[proto.Request]
	notifier     *notify.Client
	log          *zap.Logger
}

// New constructs the keypad actor. If codeFile exists, its trimmed contents
// become the initial code; otherwise the default code is used and nothing
// is written until the first successful Set.
func New(matrix *Matrix, codeFile string, doorInternal *mailbox.Mailbox[proto.Request], notifier *notify.Client, log *zap.Logger) (*Actor, error) {
	code, err := loadCode(codeFile)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Actor{
		external:     mailbox.New[actor.Command](),
		matrix:       matrix,
		buffer:       newCandidateBuffer(),
		code:         code,
		codeFile:     codeFile,
		lastPressed:  now,
		lastRang:     now.Add(-ringThrottle),
		doorInternal: doorInternal,
		notifier:     notifier,
		log:          log,
	}, nil
}

// Mailbox is the external, TCP-dispatch-facing mailbox.
func (a *Actor) Mailbox() *mailbox.Mailbox[actor.Command] { return a.external }

// SetPhoneNumber seeds the ring-notification recipient from configuration
// at startup, bypassing the wire validation path since an operator-supplied
// config value is trusted the same way the initial code file is.
func (a *Actor) SetPhoneNumber(number PhoneNumber) {
	a.phoneNumber = number
}

func (a *Actor) Receive() (actor.Command, bool) {
	cmd, ok, _ := a.external.TryReceive()
	return cmd, ok
}

func (a *Actor) HandleCommand(cmd actor.Command) bool {
	switch cmd.Request.Variant {
	case proto.KeyPadGetCode:
		a.respond(cmd.Conn, proto.NewGetResponse(cmd.Request.ID, proto.KeyPadGetCode, a.code, nil))

	case proto.KeyPadSetCode:
		var candidate Code
		err := json.Unmarshal(cmd.Request.Candidate, &candidate)
		if err == nil {
			err = validateCode(candidate)
		}
		if err == nil {
			err = persistCode(a.codeFile, candidate)
		}
		if err == nil {
			a.code = candidate
		}
		a.respond(cmd.Conn, proto.NewSetResponse(cmd.Request.ID, proto.KeyPadSetCode, cmd.Request.Candidate, err))

	case proto.KeyPadGetPhoneNumber:
		a.respond(cmd.Conn, proto.NewGetResponse(cmd.Request.ID, proto.KeyPadGetPhoneNumber, a.phoneNumber, nil))

	case proto.KeyPadSetPhoneNumber:
		var candidate PhoneNumber
		err := json.Unmarshal(cmd.Request.Candidate, &candidate)
		if err == nil {
			err = validatePhoneNumber(candidate)
		}
		if err == nil {
			a.phoneNumber = candidate
		}
		a.respond(cmd.Conn, proto.NewSetResponse(cmd.Request.ID, proto.KeyPadSetPhoneNumber, cmd.Request.Candidate, err))

	default:
		panic(fmt.Sprintf("keypad actor: misrouted request variant %q", cmd.Request.Variant))
	}
	return false
}

// Step scans the matrix, feeds the debounced releases into the candidate
// buffer, evaluates at most one candidate per tick, and applies the 5s
// inactivity reset.
func (a *Actor) Step() {
	pressed, err := a.matrix.Scan()
	if err != nil {
		a.log.Error("matrix scan failed", zap.Error(err))
		return
	}
	if len(pressed) > 0 {
		a.lastPressed = time.Now()
	}

	a.buffer.addKeys(pressed)

	// The candidate buffer's release-edge ordering within a single tick is
	// implementation-defined (map iteration); only the last extracted
	// candidate per tick is evaluated (§4.6, §9).
	candidates := a.buffer.extractCandidates()
	if len(candidates) > 0 {
		a.evaluate(candidates[len(candidates)-1])
	}

	if time.Since(a.lastPressed) >= resetTimer {
		a.buffer.reset()
	}
}

func (a *Actor) SleepDuration() time.Duration { return tickPeriod }

func (a *Actor) evaluate(candidate string) {
	switch {
	case candidate == a.code.Data:
		a.log.Info("code matched, requesting door unlock")
		a.doorInternal.Send(proto.NewInternalUnlock())

	case candidate == ringSequence:
		if time.Since(a.lastRang) >= ringThrottle {
			a.lastRang = time.Now()
			a.log.Info("ring sequence matched, sending notification", zap.String("to", string(a.phoneNumber)))
			a.notifier.SendAsync(string(a.phoneNumber), "Someone is ringing the door.", a.log)
		}

	default:
		a.log.Debug("candidate did not match code or ring sequence", zap.String("candidate", candidate))
	}
}

func (a *Actor) respond(conn net.Conn, resp proto.Response) {
	if conn == nil {
		return
	}
	actor.Respond(conn, resp, a.log)
}

func loadCode(path string) (Code, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Code{Data: defaultCode}, nil
		}
		return Code{}, fmt.Errorf("keypad: read code file %s: %w", path, err)
	}
	return Code{Data: strings.TrimSpace(string(raw))}, nil
}

// persistCode writes candidate to path atomically: write to a temp file in
// the same directory, then rename over the target, so a crash mid-write
// never leaves a truncated code file (§4.6 "persisted atomically").
func persistCode(path string, candidate Code) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(candidate.Data), 0644); err != nil {
		return fmt.Errorf("keypad: write temp code file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("keypad: rename temp code file: %w", err)
	}
	return nil
}
