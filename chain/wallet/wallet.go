package wallet

import (
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/lib/sigs"
	_ "github.com/trie-migrate/westend-migrate/lib/sigs/sr25519"
)

var log = logging.Logger("wallet")

// Key is the single controller key of the bot.
type Key struct {
	typ     sigs.SigType
	secret  *Secret
	account types.AccountID
	signs   int
}

// NewKey takes ownership of secret.
func NewKey(secret *Secret) (*Key, error) {
	k := &Key{typ: sigs.SigTypeSr25519, secret: secret}

	err := secret.Use(func(pk []byte) error {
		pub, err := sigs.ToPublic(k.typ, pk)
		if err != nil {
			return err
		}
		if len(pub) != len(k.account) {
			return xerrors.Errorf("unexpected public key length %d", len(pub))
		}
		copy(k.account[:], pub)
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("deriving controller account: %w", err)
	}
	log.Debugw("loaded controller key", "account", k.account)
	return k, nil
}

func (k *Key) Account() types.AccountID {
	return k.account
}

func (k *Key) Type() sigs.SigType {
	return k.typ
}

// Sign signs msg. The key material is copied out of the secret only for the
// duration of the call.
func (k *Key) Sign(msg []byte) ([]byte, error) {
	var out []byte
	err := k.secret.Use(func(pk []byte) error {
		sig, err := sigs.Sign(k.typ, pk, msg)
		if err != nil {
			return err
		}
		out = sig
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("signing: %w", err)
	}
	k.signs++
	return out, nil
}

// Signatures reports how many signatures the key has produced.
func (k *Key) Signatures() int {
	return k.signs
}

// Close wipes the key material.
func (k *Key) Close() error {
	k.secret.Wipe()
	return nil
}
