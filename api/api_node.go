package api

import (
	"context"

	"github.com/trie-migrate/westend-migrate/chain/types"
)

//go:generate go run github.com/golang/mock/mockgen -destination=mocks/mock_node.go -package=mocks . Node

// Node is the JSON-RPC surface of a Substrate node used by the bot.
//
// Optional block arguments select the best block when nil.
type Node interface {
	// MethodGroup: Chain

	ChainGetBlockHash(ctx context.Context, number *uint64) (*types.Hash, error)
	ChainGetFinalizedHead(ctx context.Context) (types.Hash, error)
	ChainGetHeader(ctx context.Context, at *types.Hash) (*Header, error)

	// MethodGroup: State

	StateGetRuntimeVersion(ctx context.Context, at *types.Hash) (*RuntimeVersion, error)
	// StateGetStorage returns nil when the key is not set.
	StateGetStorage(ctx context.Context, key types.Bytes, at *types.Hash) (*types.Bytes, error)
	// StateTrieMigrationStatus scans the whole state trie. It is slow and
	// must not be called from the attempt loop.
	StateTrieMigrationStatus(ctx context.Context, at *types.Hash) (*MigrationStatus, error)

	// MethodGroup: System

	// SystemAccountNextIndex includes transactions in the pool.
	SystemAccountNextIndex(ctx context.Context, account string) (uint64, error)
	// SystemDryRun is an unsafe RPC, the node must run with
	// --rpc-methods=unsafe.
	SystemDryRun(ctx context.Context, extrinsic types.Bytes, at *types.Hash) (types.Bytes, error)
	RPCMethods(ctx context.Context) (*RPCMethods, error)

	// MethodGroup: Author

	// AuthorSubmitAndWatchExtrinsic streams status updates until a terminal
	// status, ctx cancellation, or connection loss closes the channel.
	AuthorSubmitAndWatchExtrinsic(ctx context.Context, extrinsic types.Bytes) (<-chan types.TxStatus, error)
	AuthorPendingExtrinsics(ctx context.Context) ([]types.Bytes, error)
	AuthorRemoveExtrinsic(ctx context.Context, which []ExtrinsicOrHash) ([]types.Hash, error)
}
