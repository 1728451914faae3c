package proto

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ID is the 128-bit correlation identifier minted by the gateway and echoed
// verbatim on the matching response. JSON numbers lose precision past 53
// bits, so it is carried on the wire as a decimal string rather than a
// number; internally it is kept as two uint64 halves to avoid pulling a
// big.Int into every envelope.
type ID struct {
	Hi uint64
	Lo uint64
}

// NewID builds an ID from its high and low 64-bit halves.
func NewID(hi, lo uint64) ID { return ID{Hi: hi, Lo: lo} }

// IDFromUint64 is a convenience constructor for small, process-local IDs
// (e.g. internal requests that carry no correlation back to a connection).
func IDFromUint64(v uint64) ID { return ID{Lo: v} }

func (id ID) bigInt() *big.Int {
	n := new(big.Int).SetUint64(id.Hi)
	n.Lsh(n, 64)
	n.Or(n, new(big.Int).SetUint64(id.Lo))
	return n
}

func (id ID) String() string { return id.bigInt().String() }

// MarshalJSON encodes the ID as a quoted decimal string.
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.String())), nil
}

// UnmarshalJSON accepts either a quoted decimal string or a bare JSON number,
// so the wire format can interoperate with a gateway that has not yet moved
// to the string encoding.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" {
		return fmt.Errorf("proto: empty correlation id")
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("proto: invalid correlation id %q", s)
	}
	if n.Sign() < 0 {
		return fmt.Errorf("proto: correlation id must be non-negative, got %q", s)
	}
	if n.BitLen() > 128 {
		return fmt.Errorf("proto: correlation id %q overflows 128 bits", s)
	}
	var buf [16]byte
	n.FillBytes(buf[:])
	id.Hi = binary.BigEndian.Uint64(buf[0:8])
	id.Lo = binary.BigEndian.Uint64(buf[8:16])
	return nil
}
