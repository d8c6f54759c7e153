package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/chain/wallet"
)

// SeedEnv holds the controller seed: a 0x hex mini secret or a BIP-39
// mnemonic. It is never read from flags or files.
const SeedEnv = "SIGNER_SEED"

type secrets struct {
	SignerSeed string `envconfig:"SIGNER_SEED" required:"true"`
}

// LoadSeed reads SeedEnv, parses it and removes it from the environment.
// Errors name the variable, never its value.
func LoadSeed() (*wallet.Secret, error) {
	var s secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, xerrors.Errorf("%s must be set", SeedEnv)
	}
	defer func() {
		s.SignerSeed = ""
		_ = os.Unsetenv(SeedEnv)
	}()

	secret, err := wallet.ParseSeed(s.SignerSeed)
	if err != nil {
		return nil, xerrors.Errorf("parsing %s: %w", SeedEnv, err)
	}
	return secret, nil
}
