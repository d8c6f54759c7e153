package extrinsic

import (
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/lib/scale"
	"github.com/trie-migrate/westend-migrate/lib/sigs"
)

var ErrUnsigned = xerrors.New("extrinsic is not signed")

// Info is what Inspect recovers from an encoded extrinsic.
type Info struct {
	Signer types.AccountID
	Nonce  uint64
	Era    Era
	Hash   types.Hash
}

// Inspect decodes the signer and nonce of a length prefixed extrinsic, as
// returned by author_pendingExtrinsics. Only MultiAddress::Id signers are
// recognised.
func Inspect(encoded []byte) (Info, error) {
	d := scale.NewDecoder(encoded)
	n, err := d.Compact()
	if err != nil {
		return Info{}, xerrors.Errorf("reading length: %w", err)
	}
	if n != uint64(d.Remaining()) {
		return Info{}, xerrors.Errorf("length prefix %d does not match body of %d bytes", n, d.Remaining())
	}

	v, err := d.U8()
	if err != nil {
		return Info{}, err
	}
	if v&0x7f != version {
		return Info{}, xerrors.Errorf("unsupported extrinsic version %d", v&0x7f)
	}
	if v&signedBit == 0 {
		return Info{}, ErrUnsigned
	}

	addr, err := d.U8()
	if err != nil {
		return Info{}, err
	}
	if addr != addressID {
		return Info{}, xerrors.Errorf("unsupported address kind %d", addr)
	}
	raw, err := d.Raw(32)
	if err != nil {
		return Info{}, err
	}
	info := Info{Hash: Hash(encoded)}
	copy(info.Signer[:], raw)

	st, err := d.U8()
	if err != nil {
		return Info{}, err
	}
	l, err := sigLen(sigs.SigType(st))
	if err != nil {
		return Info{}, err
	}
	if _, err := d.Raw(l); err != nil {
		return Info{}, err
	}

	if info.Era, err = decodeEra(d); err != nil {
		return Info{}, err
	}
	if info.Nonce, err = d.Compact(); err != nil {
		return Info{}, xerrors.Errorf("reading nonce: %w", err)
	}
	return info, nil
}
