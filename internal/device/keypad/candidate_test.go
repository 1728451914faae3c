package keypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pressedSet(chars ...byte) map[byte]struct{} {
	s := make(map[byte]struct{}, len(chars))
	for _, c := range chars {
		s[c] = struct{}{}
	}
	return s
}

// TestReleaseEdgeAccounting exercises testable property 4: pressing {1}
// then {1,2} then {2} then {} appends '1' then '2', in that order; holding
// a key forever never appends it.
func TestReleaseEdgeAccounting(t *testing.T) {
	c := newCandidateBuffer()

	c.addKeys(pressedSet('1'))       // first tick: baseline only, no emission
	c.addKeys(pressedSet('1', '2'))  // '1' still held, '2' newly pressed: no release yet
	c.addKeys(pressedSet('2'))       // '1' released
	c.addKeys(pressedSet())          // '2' released

	assert.Equal(t, "12", string(c.data))
}

func TestHeldKeyNeverAppends(t *testing.T) {
	c := newCandidateBuffer()
	c.addKeys(pressedSet('1'))
	for i := 0; i < 50; i++ {
		c.addKeys(pressedSet('1'))
	}
	assert.Empty(t, c.data)
}

// TestCandidateParsingIdempotence exercises testable property 5.
func TestCandidateParsingIdempotence(t *testing.T) {
	c := newCandidateBuffer()
	c.data = []byte("A123#")
	first := c.extractCandidates()
	assert.Equal(t, []string{"A123"}, first)
	assert.Empty(t, c.data)

	c.data = append(c.data, []byte("456#")...)
	second := c.extractCandidates()
	assert.Equal(t, []string{"456"}, second)
	assert.Empty(t, c.data)
}

func TestExtractLeavesUnterminatedTail(t *testing.T) {
	c := newCandidateBuffer()
	c.data = []byte("12#34")
	got := c.extractCandidates()
	assert.Equal(t, []string{"12"}, got)
	assert.Equal(t, "34", string(c.data))
}

func TestRingBufferEvictsOldestOnOverflow(t *testing.T) {
	c := newCandidateBuffer()
	c.addKeys(pressedSet()) // baseline

	for i := 0; i < candidateCapacity+10; i++ {
		c.addKeys(pressedSet('1')) // press
		c.addKeys(pressedSet())    // release: appends '1'
	}
	assert.Equal(t, candidateCapacity, len(c.data))
}
