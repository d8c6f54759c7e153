package migrate

import (
	"context"

	"github.com/trie-migrate/westend-migrate/build"
	"github.com/trie-migrate/westend-migrate/chain/extrinsic"
	"github.com/trie-migrate/westend-migrate/chain/metadata"
	"github.com/trie-migrate/westend-migrate/chain/types"
)

// ResolveLimits turns configured limits into the ones used for every call.
// A zero field takes the chain maximum, or the built in default when the
// chain reports no limits.
func ResolveLimits(cfg types.MigrationLimits, chain *types.MigrationLimits) types.MigrationLimits {
	def := types.MigrationLimits{Item: build.DefaultItemLimit, Size: build.DefaultSizeLimit}
	if chain != nil {
		def = *chain
	}
	out := cfg
	if out.Item == 0 {
		out.Item = def.Item
	}
	if out.Size == 0 {
		out.Size = def.Size
	}
	return out
}

// SetChainLimits submits set_signed_max_limits, dry running it first, and
// waits for finality.
func SetChainLimits(ctx context.Context, v *Validator, w *Watcher, r *StateReader, pallet metadata.Pallet, limits types.MigrationLimits) (types.Hash, error) {
	args, err := metadata.SetSignedMaxLimitsArgs(limits)
	if err != nil {
		return types.Hash{}, Errorf(ConfigurationError, "encoding set_signed_max_limits: %w", err)
	}
	call := extrinsic.SetSignedMaxLimits(pallet, args)

	if _, err := v.Validate(ctx, call); err != nil {
		return types.Hash{}, err
	}
	pre, err := r.AccountSnapshot(ctx, nil)
	if err != nil {
		return types.Hash{}, err
	}
	sub, err := w.SubmitAndWatch(context.WithoutCancel(ctx), call, pre.Nonce)
	if err != nil {
		return types.Hash{}, err
	}
	log.Infow("set_signed_max_limits finalized", "limits", limits, "block", sub.Block)
	return sub.Block, nil
}
