package cli

import (
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/build"
	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/chain/wallet"
	"github.com/trie-migrate/westend-migrate/node/config"
)

var accountFlag = &cli.StringFlag{
	Name:  "account",
	Usage: "SS58 address to inspect instead of the " + config.SeedEnv + " account",
}

// loadKey reads the controller key from the environment.
func loadKey() (*wallet.Key, error) {
	secret, err := config.LoadSeed()
	if err != nil {
		return nil, err
	}
	key, err := wallet.NewKey(secret)
	if err != nil {
		secret.Wipe()
		return nil, err
	}
	return key, nil
}

// account is --account when given, otherwise the controller account. The key
// is wiped before returning.
func account(cctx *cli.Context) (types.AccountID, error) {
	if s := cctx.String("account"); s != "" {
		a, prefix, err := types.ParseSS58(s)
		if err != nil {
			return types.AccountID{}, xerrors.Errorf("parsing --account: %w", err)
		}
		if prefix != build.SS58Prefix {
			log.Warnw("address uses a different network prefix", "prefix", prefix, "expected", build.SS58Prefix)
		}
		return a, nil
	}

	key, err := loadKey()
	if err != nil {
		return types.AccountID{}, err
	}
	defer key.Close() //nolint:errcheck
	return key.Account(), nil
}
