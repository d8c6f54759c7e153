package sigs

import (
	"fmt"

	"golang.org/x/xerrors"
)

// SigType is the MultiSignature variant index of a scheme.
type SigType byte

const (
	SigTypeEd25519 SigType = 0
	SigTypeSr25519 SigType = 1
	SigTypeEcdsa   SigType = 2
)

func (t SigType) Name() (string, error) {
	switch t {
	case SigTypeEd25519:
		return "ed25519", nil
	case SigTypeSr25519:
		return "sr25519", nil
	case SigTypeEcdsa:
		return "ecdsa", nil
	default:
		return "", fmt.Errorf("invalid signature type: %d", t)
	}
}

// SigShim is used for introducing signature functions
type SigShim interface {
	ToPublic(pk []byte) ([]byte, error)
	Sign(pk []byte, msg []byte) ([]byte, error)
	Verify(sig []byte, pub []byte, msg []byte) error
}

var sigs map[SigType]SigShim

// RegisterSignature should be only used during init
func RegisterSignature(typ SigType, vs SigShim) {
	if sigs == nil {
		sigs = make(map[SigType]SigShim)
	}
	sigs[typ] = vs
}

// Sign takes in signature type, private key and message. Returns a signature for that message.
// Valid sigTypes are: "sr25519"
func Sign(sigType SigType, privkey []byte, msg []byte) ([]byte, error) {
	sv, ok := sigs[sigType]
	if !ok {
		return nil, xerrors.Errorf("cannot sign message with signature of unsupported type: %v", sigType)
	}

	sb, err := sv.Sign(privkey, msg)
	if err != nil {
		return nil, err
	}
	return sb, nil
}

// Verify verifies signatures
func Verify(sigType SigType, sig []byte, pub []byte, msg []byte) error {
	sv, ok := sigs[sigType]
	if !ok {
		return xerrors.Errorf("cannot verify signature of unsupported type: %v", sigType)
	}

	return sv.Verify(sig, pub, msg)
}

// ToPublic converts private key to public key
func ToPublic(sigType SigType, pk []byte) ([]byte, error) {
	sv, ok := sigs[sigType]
	if !ok {
		return nil, xerrors.Errorf("cannot generate public key of unsupported type: %v", sigType)
	}

	return sv.ToPublic(pk)
}
