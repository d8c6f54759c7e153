// Package extrinsic builds, signs and inspects version 4 signed extrinsics.
package extrinsic

import (
	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/chain/metadata"
	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/lib/scale"
	"github.com/trie-migrate/westend-migrate/lib/sigs"
)

const (
	version       = 4
	signedBit     = 0x80
	addressID     = 0x00
	maxPayloadLen = 256
)

// Call is an encoded runtime call.
type Call struct {
	Pallet uint8
	Method uint8
	Args   []byte
}

func (c Call) Bytes() []byte {
	out := make([]byte, 0, 2+len(c.Args))
	out = append(out, c.Pallet, c.Method)
	return append(out, c.Args...)
}

func ContinueMigrate(p metadata.Pallet, args []byte) Call {
	return Call{Pallet: p.Index, Method: p.ContinueMigrate, Args: args}
}

func SetSignedMaxLimits(p metadata.Pallet, args []byte) Call {
	return Call{Pallet: p.Index, Method: p.SetSignedMaxLimits, Args: args}
}

// Extensions selects the optional signed extensions of the runtime. Nonce,
// era, tip, spec and transaction version and genesis are always present.
type Extensions struct {
	// AssetTxPayment is set when the tip is paid through ChargeAssetTxPayment,
	// which carries an optional asset id after the tip.
	AssetTxPayment bool
	// MetadataHash is set when the runtime has CheckMetadataHash. The bot
	// always signs with the hash disabled.
	MetadataHash bool
}

// DefaultExtensions match Westend Asset Hub.
var DefaultExtensions = Extensions{AssetTxPayment: true, MetadataHash: true}

// Params are the per-signature inputs. They are read fresh from the chain for
// every signature.
type Params struct {
	Era   Era
	Nonce uint64
	Tip   uint64

	SpecVersion uint32
	TxVersion   uint32
	Genesis     types.Hash
	// BirthHash is the hash of the era's birth block, or the genesis hash for
	// an immortal era.
	BirthHash types.Hash

	Extensions Extensions
}

func (p Params) encodeExtra(e *scale.Encoder) {
	p.Era.Encode(e)
	e.PutCompact(p.Nonce)
	e.PutCompact(p.Tip)
	if p.Extensions.AssetTxPayment {
		e.PutU8(0) // no asset id
	}
	if p.Extensions.MetadataHash {
		e.PutU8(0) // mode disabled
	}
}

func (p Params) encodeAdditional(e *scale.Encoder) {
	e.PutU32(p.SpecVersion)
	e.PutU32(p.TxVersion)
	e.PutRaw(p.Genesis[:])
	e.PutRaw(p.BirthHash[:])
	if p.Extensions.MetadataHash {
		e.PutU8(0) // None
	}
}

// SigningPayload is the message signed by the account. Payloads longer than
// 256 bytes are replaced by their blake2b-256 hash.
func SigningPayload(call Call, p Params) []byte {
	e := scale.NewEncoder()
	e.PutRaw(call.Bytes())
	p.encodeExtra(e)
	p.encodeAdditional(e)

	payload := e.Bytes()
	if len(payload) > maxPayloadLen {
		h := blake2b.Sum256(payload)
		return h[:]
	}
	return payload
}

// Signer produces signatures for one account.
type Signer interface {
	Account() types.AccountID
	Type() sigs.SigType
	Sign(msg []byte) ([]byte, error)
}

// Signed is a signed extrinsic ready for the pool. Every call to Sign
// produces a new one; they are never reused.
type Signed struct {
	Bytes  types.Bytes
	Hash   types.Hash
	Signer types.AccountID
	Nonce  uint64
}

func Hash(encoded []byte) types.Hash {
	return blake2b.Sum256(encoded)
}

func sigLen(t sigs.SigType) (int, error) {
	switch t {
	case sigs.SigTypeEd25519, sigs.SigTypeSr25519:
		return 64, nil
	case sigs.SigTypeEcdsa:
		return 65, nil
	default:
		return 0, xerrors.Errorf("unknown signature type %d", t)
	}
}

// Sign signs call with p and encodes the extrinsic.
func Sign(call Call, p Params, s Signer) (*Signed, error) {
	sig, err := s.Sign(SigningPayload(call, p))
	if err != nil {
		return nil, xerrors.Errorf("signing extrinsic: %w", err)
	}
	want, err := sigLen(s.Type())
	if err != nil {
		return nil, err
	}
	if len(sig) != want {
		return nil, xerrors.Errorf("signature has %d bytes, expected %d", len(sig), want)
	}

	acct := s.Account()
	body := scale.NewEncoder()
	body.PutU8(signedBit | version)
	body.PutU8(addressID)
	body.PutRaw(acct[:])
	body.PutU8(byte(s.Type()))
	body.PutRaw(sig)
	p.encodeExtra(body)
	body.PutRaw(call.Bytes())

	e := scale.NewEncoder()
	e.PutBytes(body.Bytes())
	enc := e.Bytes()

	return &Signed{
		Bytes:  enc,
		Hash:   Hash(enc),
		Signer: acct,
		Nonce:  p.Nonce,
	}, nil
}
