package sr25519

import (
	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/lib/sigs"
)

// ErrSignatureMismatch is returned when a well formed signature does not verify.
var ErrSignatureMismatch = xerrors.New("signature did not match")

// signingContext is the transcript label substrate uses for extrinsics.
var signingContext = []byte("substrate")

type sr25519Signer struct{}

func secretKey(pk []byte) (*schnorrkel.SecretKey, error) {
	if len(pk) != 32 {
		return nil, xerrors.Errorf("sr25519 mini secret must be 32 bytes, got %d", len(pk))
	}
	var raw [32]byte
	copy(raw[:], pk)
	defer func() { raw = [32]byte{} }()

	msk, err := schnorrkel.NewMiniSecretKeyFromRaw(raw)
	if err != nil {
		return nil, xerrors.Errorf("loading mini secret: %w", err)
	}
	return msk.ExpandEd25519(), nil
}

func (sr25519Signer) ToPublic(pk []byte) ([]byte, error) {
	sk, err := secretKey(pk)
	if err != nil {
		return nil, err
	}
	pub, err := sk.Public()
	if err != nil {
		return nil, xerrors.Errorf("deriving public key: %w", err)
	}
	enc := pub.Encode()
	return enc[:], nil
}

func (sr25519Signer) Sign(pk []byte, msg []byte) ([]byte, error) {
	sk, err := secretKey(pk)
	if err != nil {
		return nil, err
	}
	sig, err := sk.Sign(schnorrkel.NewSigningContext(signingContext, msg))
	if err != nil {
		return nil, xerrors.Errorf("sr25519 sign: %w", err)
	}
	enc := sig.Encode()
	return enc[:], nil
}

func (sr25519Signer) Verify(sig []byte, pub []byte, msg []byte) error {
	if len(sig) != 64 || len(pub) != 32 {
		return xerrors.Errorf("bad sr25519 signature or key length: sig %d, key %d", len(sig), len(pub))
	}
	var sraw [64]byte
	copy(sraw[:], sig)
	var praw [32]byte
	copy(praw[:], pub)

	s := new(schnorrkel.Signature)
	if err := s.Decode(sraw); err != nil {
		return xerrors.Errorf("decoding signature: %w", err)
	}
	p := new(schnorrkel.PublicKey)
	if err := p.Decode(praw); err != nil {
		return xerrors.Errorf("decoding public key: %w", err)
	}
	ok, err := p.Verify(s, schnorrkel.NewSigningContext(signingContext, msg))
	if err != nil {
		return err
	}
	if !ok {
		return ErrSignatureMismatch
	}
	return nil
}

func init() {
	sigs.RegisterSignature(sigs.SigTypeSr25519, sr25519Signer{})
}
