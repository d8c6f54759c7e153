package types

import (
	"bytes"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/build"
)

// AccountID is a 32 byte sr25519 public key.
type AccountID [32]byte

var ss58Prefix = []byte("SS58PRE")

func ss58PrefixBytes(prefix uint16) []byte {
	if prefix < 64 {
		return []byte{byte(prefix)}
	}
	return []byte{
		byte((prefix&0b1111_1100)>>2) | 0b0100_0000,
		byte(prefix>>8) | byte((prefix&0b11)<<6),
	}
}

func ss58Checksum(data []byte) []byte {
	h, _ := blake2b.New512(nil)
	h.Write(ss58Prefix)
	h.Write(data)
	return h.Sum(nil)[:2]
}

// SS58 renders the account in the SS58 address format for the given network
// prefix.
func (a AccountID) SS58(prefix uint16) string {
	body := append(ss58PrefixBytes(prefix), a[:]...)
	return base58.Encode(append(body, ss58Checksum(body)...))
}

func (a AccountID) String() string {
	return a.SS58(build.SS58Prefix)
}

func (a AccountID) Hex() string {
	return Bytes(a[:]).String()
}

// ParseSS58 decodes an SS58 address, checking its checksum.
func ParseSS58(s string) (AccountID, uint16, error) {
	var a AccountID
	raw, err := base58.Decode(s)
	if err != nil {
		return a, 0, xerrors.Errorf("decoding base58: %w", err)
	}

	var prefix uint16
	var plen int
	switch {
	case len(raw) > 0 && raw[0] < 64:
		prefix, plen = uint16(raw[0]), 1
	case len(raw) > 1 && raw[0] < 128:
		lower := (raw[0] << 2) | (raw[1] >> 6)
		upper := raw[1] & 0b0011_1111
		prefix, plen = uint16(lower)|uint16(upper)<<8, 2
	default:
		return a, 0, xerrors.Errorf("invalid ss58 prefix")
	}

	if len(raw) != plen+len(a)+2 {
		return a, 0, xerrors.Errorf("unexpected ss58 length %d", len(raw))
	}
	body := raw[:plen+len(a)]
	if !bytes.Equal(ss58Checksum(body), raw[len(body):]) {
		return a, 0, xerrors.Errorf("ss58 checksum mismatch")
	}
	copy(a[:], body[plen:])
	return a, prefix, nil
}

// AccountSnapshot is the part of System.Account the bot tracks across a
// transaction.
type AccountSnapshot struct {
	Nonce    uint64
	Free     *uint256.Int
	Reserved *uint256.Int
	Frozen   *uint256.Int
}

func (s AccountSnapshot) String() string {
	return fmt.Sprintf("nonce=%d free=%s", s.Nonce, WND(s.Free))
}
