// Package proto defines the wire-level request/response algebra shared by
// every peripheral actor: the closed set of (Resource, Value, Operation)
// variants, the envelope that carries a correlation ID across a connection,
// and the length-prefixed frame codec the envelopes travel in.
package proto

import "encoding/json"

// Resource names one of the four addressable peripherals.
type Resource string

const (
	ResourceTerminal Resource = "Terminal"
	ResourceDoor     Resource = "Door"
	ResourceKeyPad   Resource = "KeyPad"
	ResourceNFC      Resource = "NFC"
)

// Variant names one (Resource, Value, Operation) triple. It doubles as the
// JSON tag on both the request and the response, and as the dispatcher's
// routing key.
type Variant string

const (
	TerminalGetText Variant = "TerminalGetText"
	TerminalSetText Variant = "TerminalSetText"

	DoorGetState Variant = "DoorGetState"
	DoorSetState Variant = "DoorSetState"

	KeyPadGetCode Variant = "KeyPadGetCode"
	KeyPadSetCode Variant = "KeyPadSetCode"

	KeyPadGetPhoneNumber Variant = "KeyPadGetPhoneNumber"
	KeyPadSetPhoneNumber Variant = "KeyPadSetPhoneNumber"

	NFCGetID Variant = "NFCGetID"
	NFCSetID Variant = "NFCSetID"
)

// resourceOf maps every variant of the closed set to its target resource.
// Every variant this package declares must appear here; ResourceOf looks up
// the target resource, an unlisted variant is a construction bug.
var resourceOf = map[Variant]Resource{
	TerminalGetText:      ResourceTerminal,
	TerminalSetText:      ResourceTerminal,
	DoorGetState:         ResourceDoor,
	DoorSetState:         ResourceDoor,
	KeyPadGetCode:        ResourceKeyPad,
	KeyPadSetCode:        ResourceKeyPad,
	KeyPadGetPhoneNumber: ResourceKeyPad,
	KeyPadSetPhoneNumber: ResourceKeyPad,
	NFCGetID:             ResourceNFC,
	NFCSetID:             ResourceNFC,
}

// ResourceOf returns the target resource for a variant and whether the
// variant is known at all.
func ResourceOf(v Variant) (Resource, bool) {
	r, ok := resourceOf[v]
	return r, ok
}

// IsSet reports whether a variant is a Set operation (Get otherwise). By
// convention every Set variant name ends in "Set<Value>" - rather than
// parsing the string, operations are classified explicitly so renames can't
// silently misclassify a variant.
var setVariants = map[Variant]bool{
	TerminalSetText:      true,
	DoorSetState:         true,
	KeyPadSetCode:        true,
	KeyPadSetPhoneNumber: true,
	NFCSetID:             true,
}

func IsSet(v Variant) bool { return setVariants[v] }

// Request is the single closed sum type over every variant: a Get request
// carries no candidate, a Set request carries one.
type Request struct {
	Variant   Variant         `json:"variant"`
	ID        ID              `json:"id"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
}

// Response mirrors Request; Value is populated on a successful Get and, as
// the echoed candidate, on every Set response; Error is populated when Ok
// is false.
type Response struct {
	Variant Variant         `json:"variant"`
	ID      ID              `json:"id"`
	Ok      bool            `json:"ok"`
	Value   json.RawMessage `json:"value,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NewGetResponse builds a Get response from a Go value (marshaled into
// Value) or an error (surfaced as Err(reason), per spec.md's error channel).
func NewGetResponse(id ID, variant Variant, value any, err error) Response {
	if err != nil {
		return Response{Variant: variant, ID: id, Ok: false, Error: err.Error()}
	}
	raw, merr := json.Marshal(value)
	if merr != nil {
		return Response{Variant: variant, ID: id, Ok: false, Error: merr.Error()}
	}
	return Response{Variant: variant, ID: id, Ok: true, Value: raw}
}

// NewSetResponse builds a Set response. The candidate is echoed back in
// Value regardless of outcome, matching §3's "a copy of the candidate
// value" requirement for Set responses.
func NewSetResponse(id ID, variant Variant, candidate json.RawMessage, err error) Response {
	if err != nil {
		return Response{Variant: variant, ID: id, Ok: false, Value: candidate, Error: err.Error()}
	}
	return Response{Variant: variant, ID: id, Ok: true, Value: candidate}
}

// NewGetRequest builds a Get request with no candidate body.
func NewGetRequest(id ID, variant Variant) Request {
	return Request{Variant: variant, ID: id}
}

// NewSetRequest builds a Set request by marshaling the candidate value.
func NewSetRequest(id ID, variant Variant, candidate any) (Request, error) {
	raw, err := json.Marshal(candidate)
	if err != nil {
		return Request{}, err
	}
	return Request{Variant: variant, ID: id, Candidate: raw}, nil
}

// zeroInternalID is the fixed ID carried by internal-only requests
// (keypad/NFC -> door) that never cross a connection and have no
// gateway-assigned correlation. Zero is used by convention, matching the "no return channel" nature of
// the internal mailbox: nothing ever reads these IDs back.
var zeroInternalID = IDFromUint64(0)

// NewInternalUnlock builds the internal Door.Set(Unlock) request sent by the
// keypad and NFC actors on a match. It carries no connection and is never
// responded to (§4.5's internal mailbox).
func NewInternalUnlock() Request {
	req, err := NewSetRequest(zeroInternalID, DoorSetState, StateUnlock)
	if err != nil {
		// StateUnlock is a constant string; marshaling it cannot fail.
		panic(err)
	}
	return req
}
