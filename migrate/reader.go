package migrate

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/samber/lo"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/api"
	"github.com/trie-migrate/westend-migrate/build"
	"github.com/trie-migrate/westend-migrate/chain/extrinsic"
	"github.com/trie-migrate/westend-migrate/chain/metadata"
	"github.com/trie-migrate/westend-migrate/chain/storagekey"
	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/chain/value"
)

var (
	keyMigrationProcess = storagekey.Plain("StateTrieMigration", "MigrationProcess")
	keySignedMaxLimits  = storagekey.Plain("StateTrieMigration", "SignedMigrationMaxLimits")
)

func accountKey(a types.AccountID) []byte {
	return storagekey.Map("System", "Account", a[:])
}

// StateReader reads chain state for one controller account. Nothing is
// cached: every call goes to the node. A nil block reads the best block.
type StateReader struct {
	node    api.Node
	account types.AccountID
	ext     extrinsic.Extensions
}

func NewStateReader(node api.Node, account types.AccountID, ext extrinsic.Extensions) *StateReader {
	return &StateReader{node: node, account: account, ext: ext}
}

func (r *StateReader) Account() types.AccountID {
	return r.account
}

// Task reads StateTrieMigration.MigrationProcess. The registry tagged value is
// returned alongside the typed task for witness construction.
func (r *StateReader) Task(ctx context.Context, at *types.Hash) (types.MigrationTask, value.Value[value.TypeID], error) {
	raw, err := r.node.StateGetStorage(ctx, keyMigrationProcess, at)
	if err != nil {
		return types.MigrationTask{}, value.Value[value.TypeID]{}, Errorf(ReadFailure, "reading migration progress: %w", err)
	}
	if raw == nil {
		return types.MigrationTask{}, value.Value[value.TypeID]{}, Errorf(ReadFailure, "no migration progress")
	}
	task, v, err := metadata.DecodeTask(*raw)
	if err != nil {
		return types.MigrationTask{}, value.Value[value.TypeID]{}, Errorf(ReadFailure, "decoding migration progress: %w", err)
	}
	return task, v, nil
}

// AccountSnapshot reads System.Account of the controller. An account that
// does not exist reads as zero.
func (r *StateReader) AccountSnapshot(ctx context.Context, at *types.Hash) (types.AccountSnapshot, error) {
	raw, err := r.node.StateGetStorage(ctx, accountKey(r.account), at)
	if err != nil {
		return types.AccountSnapshot{}, Errorf(ReadFailure, "reading account %s: %w", r.account, err)
	}
	if raw == nil {
		return types.AccountSnapshot{Free: new(uint256.Int), Reserved: new(uint256.Int), Frozen: new(uint256.Int)}, nil
	}
	snap, err := metadata.DecodeAccount(*raw)
	if err != nil {
		return types.AccountSnapshot{}, Errorf(ReadFailure, "decoding account %s: %w", r.account, err)
	}
	return snap, nil
}

// SignedMaxLimits reads the chain's limits for signed migrations, nil when
// none are set.
func (r *StateReader) SignedMaxLimits(ctx context.Context) (*types.MigrationLimits, error) {
	raw, err := r.node.StateGetStorage(ctx, keySignedMaxLimits, nil)
	if err != nil {
		return nil, Errorf(ReadFailure, "reading signed migration limits: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	l, err := metadata.DecodeSignedMaxLimits(*raw)
	if err != nil {
		return nil, Errorf(ReadFailure, "decoding signed migration limits: %w", err)
	}
	return l, nil
}

// Pending lists the pool entries signed by the controller. Entries that do
// not decode are skipped.
func (r *StateReader) Pending(ctx context.Context) ([]extrinsic.Info, error) {
	blobs, err := r.node.AuthorPendingExtrinsics(ctx)
	if err != nil {
		return nil, Errorf(ReadFailure, "listing pending extrinsics: %w", err)
	}
	infos := lo.FilterMap(blobs, func(b types.Bytes, _ int) (extrinsic.Info, bool) {
		info, err := extrinsic.Inspect(b)
		if err != nil {
			if !xerrors.Is(err, extrinsic.ErrUnsigned) {
				log.Debugw("skipping undecodable pool entry", "error", err)
			}
			return extrinsic.Info{}, false
		}
		return info, info.Signer == r.account
	})
	return infos, nil
}

// SigningParams builds fresh signing parameters for nonce. The era is mortal
// and born at the finalized head.
func (r *StateReader) SigningParams(ctx context.Context, nonce uint64) (extrinsic.Params, error) {
	head, err := r.node.ChainGetFinalizedHead(ctx)
	if err != nil {
		return extrinsic.Params{}, Errorf(ReadFailure, "reading finalized head: %w", err)
	}
	hdr, err := r.node.ChainGetHeader(ctx, &head)
	if err != nil {
		return extrinsic.Params{}, Errorf(ReadFailure, "reading header %s: %w", head, err)
	}
	if hdr == nil {
		return extrinsic.Params{}, Errorf(ReadFailure, "finalized header %s not found", head)
	}
	rv, err := r.node.StateGetRuntimeVersion(ctx, &head)
	if err != nil {
		return extrinsic.Params{}, Errorf(ReadFailure, "reading runtime version: %w", err)
	}
	if rv == nil {
		return extrinsic.Params{}, Errorf(ReadFailure, "node returned no runtime version")
	}
	var zero uint64
	genesis, err := r.node.ChainGetBlockHash(ctx, &zero)
	if err != nil {
		return extrinsic.Params{}, Errorf(ReadFailure, "reading genesis hash: %w", err)
	}
	if genesis == nil {
		return extrinsic.Params{}, Errorf(ReadFailure, "node has no genesis hash")
	}

	number := uint64(hdr.Number)
	era := extrinsic.MortalEra(number, build.MortalPeriod)
	birth := head
	if b := era.Birth(number); b != number {
		h, err := r.node.ChainGetBlockHash(ctx, &b)
		if err != nil || h == nil {
			return extrinsic.Params{}, Errorf(ReadFailure, "reading era birth block %d: %v", b, err)
		}
		birth = *h
	}

	return extrinsic.Params{
		Era:         era,
		Nonce:       nonce,
		SpecVersion: rv.SpecVersion,
		TxVersion:   rv.TransactionVersion,
		Genesis:     *genesis,
		BirthHash:   birth,
		Extensions:  r.ext,
	}, nil
}
