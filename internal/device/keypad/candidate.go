package keypad

const (
	candidateCapacity = 256
	terminator        = '#'
)

// candidateBuffer accumulates released keypad characters into a bounded
// ring, and extracts '#'-terminated candidate substrings from it. It is
// the Go port of the original firmware's CandidateKey.
type candidateBuffer struct {
	data            []byte
	previousPressed map[byte]struct{}
	initialized     bool
}

func newCandidateBuffer() *candidateBuffer {
	return &candidateBuffer{previousPressed: make(map[byte]struct{})}
}

// addKeys implements release-edge debouncing: a character is appended only
// when it was pressed on the previous tick and is no longer pressed now.
// The very first call only records the baseline and emits nothing, so a
// key already held when the actor starts is never spuriously "released".
func (c *candidateBuffer) addKeys(pressed map[byte]struct{}) {
	if !c.initialized {
		c.initialized = true
		c.previousPressed = pressed
		return
	}

	for ch := range c.previousPressed {
		if _, stillPressed := pressed[ch]; !stillPressed {
			c.data = append(c.data, ch)
			if len(c.data) > candidateCapacity {
				c.data = c.data[1:]
			}
		}
	}
	c.previousPressed = pressed
}

// extractCandidates scans the buffer left to right, pulling out every
// maximal run terminated by '#' (the '#' itself consumed, not returned),
// and leaving any trailing unterminated run in place for future ticks.
func (c *candidateBuffer) extractCandidates() []string {
	var candidates []string
	consumed := 0
	start := 0
	for i, b := range c.data {
		if b == terminator {
			candidates = append(candidates, string(c.data[start:i]))
			consumed = i + 1
			start = i + 1
		}
	}
	if consumed > 0 {
		c.data = append([]byte(nil), c.data[consumed:]...)
	}
	return candidates
}

// reset clears the buffer and the debounce baseline (§4.6's 5s inactivity
// reset).
func (c *candidateBuffer) reset() {
	c.data = nil
	c.previousPressed = make(map[byte]struct{})
	c.initialized = false
}
