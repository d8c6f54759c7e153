package config

import (
	"encoding"
	"time"

	"github.com/trie-migrate/westend-migrate/build"
	"github.com/trie-migrate/westend-migrate/chain/metadata"
)

// Default returns the default config
func Default() *Config {
	p := metadata.DefaultPallet
	return &Config{
		Node: Node{
			RPCURL: build.DefaultRPC,
		},
		Migration: Migration{
			Pallet: Pallet{
				Index:              p.Index,
				ContinueMigrate:    p.ContinueMigrate,
				SetSignedMaxLimits: p.SetSignedMaxLimits,
			},
		},
		Recovery: Recovery{
			RetryWait:            Duration(build.RetryWait),
			MaxRetryWait:         Duration(build.MaxRetryWait),
			BannedWait:           Duration(build.BannedTxWait),
			FinalityTimeout:      Duration(build.FinalityTimeout),
			BlockTime:            Duration(build.BlockDelay),
			PendingPollBlocks:    build.PendingTxPollIterations,
			MaxConsecutiveErrors: build.MaxConsecutiveErrors,
			HeartbeatInterval:    Duration(build.HeartbeatInterval),
		},
		Lock: Lock{
			Dir: build.DefaultLockDir,
		},
	}
}

var _ encoding.TextMarshaler = (*Duration)(nil)
var _ encoding.TextUnmarshaler = (*Duration)(nil)

// Duration is a wrapper type for time.Duration
// for decoding and encoding from/to TOML
type Duration time.Duration

// UnmarshalText implements interface for TOML decoding
func (dur *Duration) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*dur = Duration(d)
	return err
}

func (dur Duration) MarshalText() ([]byte, error) {
	d := time.Duration(dur)
	return []byte(d.String()), nil
}
