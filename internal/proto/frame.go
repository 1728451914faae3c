package proto

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// maxFrameBytes guards ReadFrame against a corrupt or hostile length prefix
// causing an unbounded allocation; no real request/response body approaches
// this size.
const maxFrameBytes = 16 << 20 // 16 MiB

// WriteFrame writes an 8-byte little-endian length prefix followed by
// payload, as a single Write call so the two never appear as separate TCP
// segments that a partial write could tear apart.
func WriteFrame(w io.Writer, payload []byte) error {
	buf := make([]byte, 8+len(payload))
	binary.LittleEndian.PutUint64(buf[:8], uint64(len(payload)))
	copy(buf[8:], payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads exactly one frame: 8 bytes of length, then that many bytes
// of payload. A short read at either stage is returned as an error; callers
// on the TCP path treat that as fatal for the connection (§4.1).
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [8]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("proto: read frame length: %w", err)
	}
	n := binary.LittleEndian.Uint64(lenBuf[:])
	if n > maxFrameBytes {
		return nil, fmt.Errorf("proto: frame length %d exceeds limit", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("proto: read frame payload: %w", err)
	}
	return payload, nil
}

// WriteRequest encodes and frames a Request.
func WriteRequest(w io.Writer, req Request) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("proto: encode request: %w", err)
	}
	return WriteFrame(w, raw)
}

// ReadRequest reads one frame and decodes it as a Request.
func ReadRequest(r io.Reader) (Request, error) {
	raw, err := ReadFrame(r)
	if err != nil {
		return Request{}, err
	}
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, fmt.Errorf("proto: decode request: %w", err)
	}
	return req, nil
}

// WriteResponse encodes and frames a Response.
func WriteResponse(w io.Writer, resp Response) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("proto: encode response: %w", err)
	}
	return WriteFrame(w, raw)
}

// ReadResponse reads one frame and decodes it as a Response.
func ReadResponse(r io.Reader) (Response, error) {
	raw, err := ReadFrame(r)
	if err != nil {
		return Response{}, err
	}
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, fmt.Errorf("proto: decode response: %w", err)
	}
	return resp, nil
}
