package migrate

import (
	"math"

	"github.com/trie-migrate/westend-migrate/build"
	"github.com/trie-migrate/westend-migrate/chain/extrinsic"
	"github.com/trie-migrate/westend-migrate/chain/metadata"
	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/chain/value"
)

// Intent is the argument set of one continue_migrate call. It is built fresh
// for every attempt.
type Intent struct {
	Limits        types.MigrationLimits
	RealSizeUpper uint32
	// Witness is the task as read from storage, with its storage type context
	// erased so it encodes against the call argument type.
	Witness value.Value[value.Unit]

	Task types.MigrationTask
}

// BuildIntent derives the next call from the task just read. limits must be
// resolved (see ResolveLimits); they are clamped to max when max is set.
// ErrMigrationComplete is returned when both cursors are Complete.
func BuildIntent(task types.MigrationTask, raw value.Value[value.TypeID], limits types.MigrationLimits, max *types.MigrationLimits) (*Intent, error) {
	if task.IsComplete() {
		return nil, ErrMigrationComplete
	}
	if limits.Item == 0 || limits.Size == 0 {
		return nil, Errorf(ConfigurationError, "unresolved migration limits (%s)", limits)
	}
	if max != nil {
		if max.Item > 0 && limits.Item > max.Item {
			limits.Item = max.Item
		}
		if max.Size > 0 && limits.Size > max.Size {
			limits.Size = max.Size
		}
	}

	upper := uint64(limits.Size) * build.SizeUpperFactor
	if upper > math.MaxUint32 {
		upper = math.MaxUint32
	}

	return &Intent{
		Limits:        limits,
		RealSizeUpper: uint32(upper),
		Witness:       value.Erase(raw),
		Task:          task,
	}, nil
}

// Call encodes the intent as a continue_migrate call of pallet p.
func (i *Intent) Call(p metadata.Pallet) (extrinsic.Call, error) {
	args, err := metadata.ContinueMigrateArgs(i.Limits, i.RealSizeUpper, i.Witness)
	if err != nil {
		return extrinsic.Call{}, Errorf(ConfigurationError, "encoding continue_migrate: %w", err)
	}
	return extrinsic.ContinueMigrate(p, args), nil
}
