package nfc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSAMConfigurationChecksums exercises testable property 9: for
// SAMConfiguration with mode 0x01, (L+1)+LCS == 0 mod 256 and
// TFI + sum(D) + DCS == 0 mod 256.
func TestSAMConfigurationChecksums(t *testing.T) {
	payload := []byte{cmdSAMConfiguration, 0x01}
	frame := buildFrame(payload)

	require.Len(t, frame, 6+len(payload)+2, "unexpected frame length")

	assert.Equal(t, byte(0x00), frame[0])
	assert.Equal(t, byte(0x00), frame[1])
	assert.Equal(t, byte(0xFF), frame[2])

	length := frame[3]
	lcs := frame[4]
	assert.Equal(t, byte(0), byte(int(length)+int(lcs))&0xFF, "(L+1)+LCS must be 0 mod 256")

	tfi := frame[5]
	assert.Equal(t, byte(0xD4), tfi)

	sum := int(tfi)
	for _, b := range payload {
		sum += int(b)
	}
	dcs := frame[6+len(payload)]
	assert.Equal(t, byte(0), byte(sum+int(dcs))&0xFF, "TFI+sum(D)+DCS must be 0 mod 256")

	assert.Equal(t, byte(0x00), frame[len(frame)-1])
}

func TestBuildFrameLengthByte(t *testing.T) {
	payload := []byte{cmdInListPassiveTarget, maxTargets, cardTypeISO14443A}
	frame := buildFrame(payload)
	assert.Equal(t, byte(len(payload)+1), frame[3])
}
