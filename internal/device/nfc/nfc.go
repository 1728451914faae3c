package nfc

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brianmakesthings/cautious-axela/internal/actor"
	"github.com/brianmakesthings/cautious-axela/internal/hal"
	"github.com/brianmakesthings/cautious-axela/internal/mailbox"
	"github.com/brianmakesthings/cautious-axela/internal/proto"
)

const (
	tickPeriod       = 200 * time.Millisecond
	matchDebounce    = time.Second
	enrollRetryDelay = time.Second
)

// Actor is the NFC peripheral: it polls the PN532 for a UID each tick and
// compares it against the enrolled list, and services Set(NFCids) requests
// by spin-reading until a card is presented.
type Actor struct {
	bus     hal.I2CBus
	address uint16

	external     *mailbox.Mailbox[actor.Command]
	doorInternal *mailbox.Mailbox[proto.Request]
	log          *zap.Logger

	enrolledUIDs [][]byte
}

// New initializes the PN532 (SAMConfiguration + ack sync) and returns the
// NFC actor ready to poll.
func New(bus hal.I2CBus, address uint16, doorInternal *mailbox.Mailbox[proto.Request], log *zap.Logger) (*Actor, error) {
	a := &Actor{
		bus:          bus,
		address:      address,
		external:     mailbox.New[actor.Command](),
		doorInternal: doorInternal,
		log:          log,
	}
	if err := a.init(); err != nil {
		return nil, fmt.Errorf("nfc: pn532 init: %w", err)
	}
	return a, nil
}

func (a *Actor) init() error {
	if err := sendCommand(a.bus, a.address, []byte{cmdSAMConfiguration, maxTargets}); err != nil {
		return err
	}
	return syncAck(a.bus, a.address)
}

// Mailbox is the external, TCP-dispatch-facing mailbox.
func (a *Actor) Mailbox() *mailbox.Mailbox[actor.Command] { return a.external }

func (a *Actor) Receive() (actor.Command, bool) {
	cmd, ok, _ := a.external.TryReceive()
	return cmd, ok
}

func (a *Actor) HandleCommand(cmd actor.Command) bool {
	switch cmd.Request.Variant {
	case proto.NFCGetID:
		a.respond(cmd.Conn, proto.NewGetResponse(cmd.Request.ID, proto.NFCGetID, a.renderEnrolled(), nil))

	case proto.NFCSetID:
		a.enroll()
		a.respond(cmd.Conn, proto.NewSetResponse(cmd.Request.ID, proto.NFCSetID, cmd.Request.Candidate, nil))

	default:
		panic(fmt.Sprintf("nfc actor: misrouted request variant %q", cmd.Request.Variant))
	}
	return false
}

// Step polls for a UID and, on a match against the enrolled list, requests
// an internal door unlock and sleeps briefly to debounce repeated reads of
// the same card (§4.7).
func (a *Actor) Step() {
	uid, err := a.getUID()
	if err != nil || uid == nil {
		return
	}
	for _, enrolled := range a.enrolledUIDs {
		if bytes.Equal(enrolled, uid) {
			a.log.Info("nfc uid matched, requesting door unlock", zap.String("uid", hex.EncodeToString(uid)))
			a.doorInternal.Send(proto.NewInternalUnlock())
			time.Sleep(matchDebounce)
			return
		}
	}
}

func (a *Actor) SleepDuration() time.Duration { return tickPeriod }

// enroll spin-reads UIDs at enrollRetryDelay spacing until one is obtained,
// then appends it to the enrolled list. It holds the actor's goroutine for
// the duration - no other request is processed until enrollment completes
// (an acknowledged trade-off, §4.7).
func (a *Actor) enroll() {
	for {
		uid, err := a.getUID()
		if err == nil && uid != nil {
			a.enrolledUIDs = append(a.enrolledUIDs, uid)
			return
		}
		time.Sleep(enrollRetryDelay)
	}
}

func (a *Actor) renderEnrolled() string {
	parts := make([]string, len(a.enrolledUIDs))
	for i, uid := range a.enrolledUIDs {
		parts[i] = strings.ToUpper(hex.EncodeToString(uid))
	}
	return strings.Join(parts, ",")
}

// getUID sends InListPassiveTarget, synchronises the ack, reads the
// response frame, reads the UID-length byte at offset 6 of the payload and
// extracts that many following bytes as the UID. A
// too-short response (no target in field) yields a nil UID, not an error.
func (a *Actor) getUID() ([]byte, error) {
	if err := sendCommand(a.bus, a.address, []byte{cmdInListPassiveTarget, maxTargets, cardTypeISO14443A}); err != nil {
		return nil, err
	}
	if err := syncAck(a.bus, a.address); err != nil {
		return nil, err
	}
	reply, err := readResponseFrame(a.bus, a.address)
	if err != nil {
		return nil, err
	}
	const idLengthOffset = 6
	if len(reply) < 5 || idLengthOffset >= len(reply) {
		return nil, nil
	}
	idLen := int(reply[idLengthOffset])
	start := idLengthOffset + 1
	if start+idLen > len(reply) {
		return nil, nil
	}
	return append([]byte(nil), reply[start:start+idLen]...), nil
}

func (a *Actor) respond(conn net.Conn, resp proto.Response) {
	if conn == nil {
		return
	}
	actor.Respond(conn, resp, a.log)
}
