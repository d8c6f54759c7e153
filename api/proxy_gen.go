package api

import (
	"context"

	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/chain/types"
)

var ErrNotSupported = xerrors.New("method not supported")

type NodeStruct struct {
	Internal NodeMethods
}

type NodeMethods struct {
	AuthorPendingExtrinsics func(p0 context.Context) ([]types.Bytes, error) `rpc_method:"author_pendingExtrinsics"`

	AuthorRemoveExtrinsic func(p0 context.Context, p1 []ExtrinsicOrHash) ([]types.Hash, error) `rpc_method:"author_removeExtrinsic"`

	AuthorSubmitAndWatchExtrinsic func(p0 context.Context, p1 types.Bytes) (<-chan types.TxStatus, error) `rpc_method:"author_submitAndWatchExtrinsic" notify:"author_extrinsicUpdate" unsub:"author_unwatchExtrinsic"`

	ChainGetBlockHash func(p0 context.Context, p1 *uint64) (*types.Hash, error) `rpc_method:"chain_getBlockHash"`

	ChainGetFinalizedHead func(p0 context.Context) (types.Hash, error) `rpc_method:"chain_getFinalizedHead"`

	ChainGetHeader func(p0 context.Context, p1 *types.Hash) (*Header, error) `rpc_method:"chain_getHeader"`

	RPCMethods func(p0 context.Context) (*RPCMethods, error) `rpc_method:"rpc_methods"`

	StateGetRuntimeVersion func(p0 context.Context, p1 *types.Hash) (*RuntimeVersion, error) `rpc_method:"state_getRuntimeVersion"`

	StateGetStorage func(p0 context.Context, p1 types.Bytes, p2 *types.Hash) (*types.Bytes, error) `rpc_method:"state_getStorage"`

	StateTrieMigrationStatus func(p0 context.Context, p1 *types.Hash) (*MigrationStatus, error) `rpc_method:"state_trieMigrationStatus"`

	SystemAccountNextIndex func(p0 context.Context, p1 string) (uint64, error) `rpc_method:"system_accountNextIndex"`

	SystemDryRun func(p0 context.Context, p1 types.Bytes, p2 *types.Hash) (types.Bytes, error) `rpc_method:"system_dryRun"`
}

func (s *NodeStruct) AuthorPendingExtrinsics(p0 context.Context) ([]types.Bytes, error) {
	if s.Internal.AuthorPendingExtrinsics == nil {
		return *new([]types.Bytes), ErrNotSupported
	}
	return s.Internal.AuthorPendingExtrinsics(p0)
}

func (s *NodeStruct) AuthorRemoveExtrinsic(p0 context.Context, p1 []ExtrinsicOrHash) ([]types.Hash, error) {
	if s.Internal.AuthorRemoveExtrinsic == nil {
		return *new([]types.Hash), ErrNotSupported
	}
	return s.Internal.AuthorRemoveExtrinsic(p0, p1)
}

func (s *NodeStruct) AuthorSubmitAndWatchExtrinsic(p0 context.Context, p1 types.Bytes) (<-chan types.TxStatus, error) {
	if s.Internal.AuthorSubmitAndWatchExtrinsic == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.AuthorSubmitAndWatchExtrinsic(p0, p1)
}

func (s *NodeStruct) ChainGetBlockHash(p0 context.Context, p1 *uint64) (*types.Hash, error) {
	if s.Internal.ChainGetBlockHash == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.ChainGetBlockHash(p0, p1)
}

func (s *NodeStruct) ChainGetFinalizedHead(p0 context.Context) (types.Hash, error) {
	if s.Internal.ChainGetFinalizedHead == nil {
		return *new(types.Hash), ErrNotSupported
	}
	return s.Internal.ChainGetFinalizedHead(p0)
}

func (s *NodeStruct) ChainGetHeader(p0 context.Context, p1 *types.Hash) (*Header, error) {
	if s.Internal.ChainGetHeader == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.ChainGetHeader(p0, p1)
}

func (s *NodeStruct) RPCMethods(p0 context.Context) (*RPCMethods, error) {
	if s.Internal.RPCMethods == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.RPCMethods(p0)
}

func (s *NodeStruct) StateGetRuntimeVersion(p0 context.Context, p1 *types.Hash) (*RuntimeVersion, error) {
	if s.Internal.StateGetRuntimeVersion == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.StateGetRuntimeVersion(p0, p1)
}

func (s *NodeStruct) StateGetStorage(p0 context.Context, p1 types.Bytes, p2 *types.Hash) (*types.Bytes, error) {
	if s.Internal.StateGetStorage == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.StateGetStorage(p0, p1, p2)
}

func (s *NodeStruct) StateTrieMigrationStatus(p0 context.Context, p1 *types.Hash) (*MigrationStatus, error) {
	if s.Internal.StateTrieMigrationStatus == nil {
		return nil, ErrNotSupported
	}
	return s.Internal.StateTrieMigrationStatus(p0, p1)
}

func (s *NodeStruct) SystemAccountNextIndex(p0 context.Context, p1 string) (uint64, error) {
	if s.Internal.SystemAccountNextIndex == nil {
		return 0, ErrNotSupported
	}
	return s.Internal.SystemAccountNextIndex(p0, p1)
}

func (s *NodeStruct) SystemDryRun(p0 context.Context, p1 types.Bytes, p2 *types.Hash) (types.Bytes, error) {
	if s.Internal.SystemDryRun == nil {
		return *new(types.Bytes), ErrNotSupported
	}
	return s.Internal.SystemDryRun(p0, p1, p2)
}

var _ Node = new(NodeStruct)
