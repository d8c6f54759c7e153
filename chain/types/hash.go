package types

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"golang.org/x/xerrors"
)

// Hash is a 32 byte block or extrinsic hash.
type Hash [32]byte

var EmptyHash Hash

func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := decodeHex(s)
	if err != nil {
		return h, err
	}
	if len(b) != len(h) {
		return h, xerrors.Errorf("hash must be %d bytes, got %d", len(h), len(b))
	}
	copy(h[:], b)
	return h, nil
}

func (h Hash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Hash) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := ParseHash(s)
	if err != nil {
		return err
	}
	*h = p
	return nil
}

// Bytes is a byte string carried as 0x-prefixed hex on the wire.
type Bytes []byte

func (b Bytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	d, err := decodeHex(s)
	if err != nil {
		return err
	}
	*b = d
	return nil
}

// HexNumber is an integer carried as 0x-prefixed hex, as in block headers.
type HexNumber uint64

func (n *HexNumber) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var v uint64
		if err2 := json.Unmarshal(data, &v); err2 != nil {
			return err
		}
		*n = HexNumber(v)
		return nil
	}
	s = strings.TrimPrefix(s, "0x")
	var v uint64
	for _, c := range s {
		d, ok := hexDigit(c)
		if !ok {
			return xerrors.Errorf("invalid hex number %q", s)
		}
		v = v<<4 | uint64(d)
	}
	*n = HexNumber(v)
	return nil
}

func hexDigit(c rune) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return byte(c - '0'), true
	case c >= 'a' && c <= 'f':
		return byte(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return byte(c-'A') + 10, true
	}
	return 0, false
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, xerrors.Errorf("decoding hex: %w", err)
	}
	return b, nil
}

// DecodeHex parses an optionally 0x-prefixed hex string.
func DecodeHex(s string) ([]byte, error) {
	return decodeHex(s)
}
