package terminal

import (
	"bytes"
	"encoding/json"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brianmakesthings/cautious-axela/internal/actor"
	"github.com/brianmakesthings/cautious-axela/internal/proto"
)

func newTestActor(input string) (*Actor, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return New(strings.NewReader(input), out, zap.NewNop()), out
}

func TestSetWritesLineToWriter(t *testing.T) {
	a, out := newTestActor("")
	err := a.set("door unlocked by keypad")
	require.NoError(t, err)
	assert.Equal(t, "door unlocked by keypad\n", out.String())
}

func TestGetReadsOneLine(t *testing.T) {
	a, _ := newTestActor("status ok\nsecond line\n")
	text, err := a.get()
	require.NoError(t, err)
	assert.Equal(t, Text("status ok\n"), text)
}

func TestGetAtEOFReturnsEmptyStringNotError(t *testing.T) {
	a, _ := newTestActor("")
	text, err := a.get()
	require.NoError(t, err)
	assert.Equal(t, Text(""), text)
}

func TestHandleCommandSetTextRespondsOk(t *testing.T) {
	a, out := newTestActor("")
	server, client := net.Pipe()
	defer client.Close()

	candidate, err := json.Marshal(Text("hello operator"))
	require.NoError(t, err)
	req := proto.Request{Variant: proto.TerminalSetText, ID: proto.NewID(0, 1), Candidate: candidate}

	done := make(chan struct{})
	go func() {
		a.HandleCommand(actor.Command{Request: req, Conn: server})
		close(done)
	}()

	resp, err := proto.ReadResponse(client)
	require.NoError(t, err)
	assert.True(t, resp.Ok)
	assert.Equal(t, "hello operator\n", out.String())
	<-done
}

func TestHandleCommandGetTextRespondsWithLine(t *testing.T) {
	a, _ := newTestActor("present\n")
	server, client := net.Pipe()
	defer client.Close()

	req := proto.Request{Variant: proto.TerminalGetText, ID: proto.NewID(0, 1)}

	done := make(chan struct{})
	go func() {
		a.HandleCommand(actor.Command{Request: req, Conn: server})
		close(done)
	}()

	resp, err := proto.ReadResponse(client)
	require.NoError(t, err)
	require.True(t, resp.Ok)

	var got Text
	require.NoError(t, json.Unmarshal(resp.Value, &got))
	assert.Equal(t, Text("present\n"), got)
	<-done
}

func TestHandleCommandMisroutedPanics(t *testing.T) {
	a, _ := newTestActor("")
	assert.Panics(t, func() {
		a.HandleCommand(actor.Command{Request: proto.Request{Variant: proto.DoorGetState, ID: proto.NewID(0, 1)}})
	})
}
