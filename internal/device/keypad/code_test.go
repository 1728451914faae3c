package keypad

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeValidAlphabet(t *testing.T) {
	assert.True(t, Code{Data: "1234"}.Valid())
	assert.True(t, Code{Data: "ABCD0"}.Valid())
}

// TestCodeRejectsReservedChars exercises testable property 10.
func TestCodeRejectsReservedChars(t *testing.T) {
	assert.False(t, Code{Data: "12*4"}.Valid())
	assert.False(t, Code{Data: "12#4"}.Valid())
}

func TestPhoneNumberE164(t *testing.T) {
	assert.True(t, PhoneNumber("+15555550123").Valid())
	assert.False(t, PhoneNumber("5555550123").Valid())
	assert.False(t, PhoneNumber("+0123").Valid())
}
