package mailbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTryReceiveDistinguishesEmptyFromClosed(t *testing.T) {
	m := New[int]()

	_, ok, closed := m.TryReceive()
	assert.False(t, ok)
	assert.False(t, closed)

	m.Close()
	_, ok, closed = m.TryReceive()
	assert.False(t, ok)
	assert.True(t, closed)
}

func TestFIFOOrder(t *testing.T) {
	m := New[int]()
	m.Send(1)
	m.Send(2)
	m.Send(3)

	for _, want := range []int{1, 2, 3} {
		got, ok, _ := m.TryReceive()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestReceiveBlocksUntilSend(t *testing.T) {
	m := New[string]()
	done := make(chan string, 1)
	go func() {
		v, ok := m.Receive()
		if ok {
			done <- v
		}
	}()

	select {
	case <-done:
		t.Fatal("Receive returned before any Send")
	case <-time.After(20 * time.Millisecond):
	}

	m.Send("hello")
	select {
	case v := <-done:
		assert.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("Receive never unblocked after Send")
	}
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	m := New[int]()
	m.Close()
	m.Send(1)
	_, ok, closed := m.TryReceive()
	assert.False(t, ok)
	assert.True(t, closed)
}
