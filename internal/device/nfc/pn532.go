// Package nfc implements the PN532 NFC reader actor: I2C frame
// construction and checksums, the ack/nack sync state machine, UID
// enrollment, and tick-driven polling against the enrolled UID list.
package nfc

import (
	"errors"
	"time"

	"github.com/brianmakesthings/cautious-axela/internal/hal"
)

const (
	cmdSAMConfiguration    = 0x14
	cmdInListPassiveTarget = 0x4A
	hostToPN532            = 0xD4

	cardTypeISO14443A = 0x00
	maxTargets        = 0x01

	syncAttempts     = 5
	responseAttempts = 10
	readChunkSize    = 128
)

var (
	errMalformedAck      = errors.New("pn532: malformed preamble in ack frame")
	errNack              = errors.New("pn532: received nack")
	errApplicationError  = errors.New("pn532: application error response")
	errAckTimeout        = errors.New("pn532: ack sync timed out")
	errMalformedResponse = errors.New("pn532: malformed preamble in response frame")
	errResponseTimeout   = errors.New("pn532: response read timed out")
)

// buildFrame assembles the wire frame for a command whose payload (command
// byte followed by parameters) is payload, per §4.7:
//
//	00 00 FF (L+1) LCS TFI=D4 D[0]..D[L-1] DCS 00
//
// LCS is the bitwise complement of L, which in mod-256 arithmetic equals
// -(L+1) mod 256 - exactly the two's complement of the LEN field actually
// written (L+1). DCS is the two's complement of TFI plus the running sum of
// payload, so that TFI + sum(payload) + DCS = 0 mod 256 (property 9).
func buildFrame(payload []byte) []byte {
	length := byte(len(payload))
	lcs := ^length

	dcs := byte(hostToPN532)
	for _, b := range payload {
		dcs += b
	}
	dcs = ^dcs + 1

	frame := make([]byte, 0, 6+len(payload)+2)
	frame = append(frame, 0x00, 0x00, 0xFF, length+1, lcs, hostToPN532)
	frame = append(frame, payload...)
	frame = append(frame, dcs, 0x00)
	return frame
}

func sendCommand(bus hal.I2CBus, addr uint16, payload []byte) error {
	return bus.Write(addr, buildFrame(payload))
}

// syncAck reads up to syncAttempts 128-byte chunks, running a state
// machine over each chunk's bytes: 0/1 preamble zeroes, then FF, then a
// resolving byte (00=ack, FF=nack, 01=application error). A malformed
// preamble byte is an immediate error, not a retry; a resolving byte not
// found by the end of a chunk starts over with a freshly read chunk.
func syncAck(bus hal.I2CBus, addr uint16) error {
	time.Sleep(time.Millisecond)
	for attempt := 0; attempt < syncAttempts; attempt++ {
		buf := make([]byte, readChunkSize)
		if err := bus.Read(addr, buf); err != nil {
			return err
		}

		state := 0
		for _, b := range buf {
			switch state {
			case 0, 1:
				if b == 0x00 {
					state++
				} else {
					state = 0
				}
			case 2:
				if b == 0xFF {
					state++
				} else {
					return errMalformedAck
				}
			case 3:
				switch b {
				case 0x00:
					return nil
				case 0xFF:
					return errNack
				case 0x01:
					return errApplicationError
				}
			}
		}
	}
	return errAckTimeout
}

// readResponseFrame reads up to responseAttempts 128-byte chunks, locating
// the same 00 00 FF preamble, then treats the byte right after it as
// either an application-error marker (0x01) or the response's size byte;
// on success it skips the LCS and TFI bytes after the size byte and returns
// the size-1 bytes that follow them.
func readResponseFrame(bus hal.I2CBus, addr uint16) ([]byte, error) {
	for attempt := 0; attempt < responseAttempts; attempt++ {
		time.Sleep(time.Millisecond)
		buf := make([]byte, readChunkSize)
		if err := bus.Read(addr, buf); err != nil {
			return nil, err
		}

		state := 0
		for j, b := range buf {
			switch state {
			case 0, 1:
				if b == 0x00 {
					state++
				} else {
					state = 0
				}
			case 2:
				if b == 0xFF {
					state++
				} else {
					return nil, errMalformedResponse
				}
			case 3:
				if b == 0x01 {
					return nil, errApplicationError
				}
				size := int(b)
				end := j + 3 + (size - 1)
				if size == 0 || end > len(buf) {
					return nil, nil
				}
				return buf[j+3 : end], nil
			}
		}
	}
	return nil, errResponseTimeout
}
