package wallet

import (
	"fmt"
	"strings"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/chain/types"
)

const redacted = "[REDACTED]"

var ErrWiped = xerrors.New("secret already wiped")

// Secret holds key material. It never prints its contents and is zeroed by
// Wipe.
type Secret struct {
	b []byte
}

// NewSecret copies b into a new Secret. The caller should clear b.
func NewSecret(b []byte) *Secret {
	return &Secret{b: append([]byte(nil), b...)}
}

// Use calls f with a scratch copy of the secret which is zeroed when f
// returns, whatever the outcome.
func (s *Secret) Use(f func(b []byte) error) error {
	if s == nil || s.b == nil {
		return ErrWiped
	}
	scratch := make([]byte, len(s.b))
	copy(scratch, s.b)
	defer zero(scratch)
	return f(scratch)
}

func (s *Secret) Wipe() {
	if s == nil {
		return
	}
	zero(s.b)
	s.b = nil
}

func (s *Secret) Wiped() bool {
	return s == nil || s.b == nil
}

func (s *Secret) String() string   { return redacted }
func (s *Secret) GoString() string { return redacted }

func (s *Secret) Format(f fmt.State, _ rune) {
	_, _ = f.Write([]byte(redacted))
}

func (s *Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ParseSeed turns the SIGNER_SEED value into a 32 byte mini secret. Accepted
// forms are a 0x-prefixed hex seed or a BIP-39 mnemonic. Errors never echo
// the input.
func ParseSeed(s string) (*Secret, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, xerrors.New("empty seed")
	}

	if strings.HasPrefix(s, "0x") {
		raw, err := types.DecodeHex(s)
		if err != nil {
			return nil, xerrors.New("seed is not valid hex")
		}
		defer zero(raw)
		if len(raw) != 32 {
			return nil, xerrors.Errorf("hex seed must be 32 bytes, got %d", len(raw))
		}
		return NewSecret(raw), nil
	}

	if strings.Contains(s, "//") || strings.Contains(s, "///") {
		return nil, xerrors.New("derivation paths are not supported")
	}
	words := strings.Fields(s)
	switch len(words) {
	case 12, 15, 18, 21, 24:
	default:
		return nil, xerrors.Errorf("mnemonic must have 12 to 24 words, got %d", len(words))
	}

	msk, err := schnorrkel.MiniSecretKeyFromMnemonic(strings.Join(words, " "), "")
	if err != nil {
		return nil, xerrors.New("invalid mnemonic")
	}
	raw := msk.Encode()
	defer func() { raw = [32]byte{} }()
	return NewSecret(raw[:]), nil
}
