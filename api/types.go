package api

import (
	"github.com/trie-migrate/westend-migrate/chain/types"
)

// Header is the subset of a block header the bot reads.
type Header struct {
	ParentHash     types.Hash      `json:"parentHash"`
	Number         types.HexNumber `json:"number"`
	StateRoot      types.Hash      `json:"stateRoot"`
	ExtrinsicsRoot types.Hash      `json:"extrinsicsRoot"`
}

type RuntimeVersion struct {
	SpecName           string `json:"specName"`
	ImplName           string `json:"implName"`
	SpecVersion        uint32 `json:"specVersion"`
	ImplVersion        uint32 `json:"implVersion"`
	TransactionVersion uint32 `json:"transactionVersion"`
	StateVersion       uint8  `json:"stateVersion"`
}

// RPCMethods is the result of rpc_methods.
type RPCMethods struct {
	Methods []string `json:"methods"`
}

func (m *RPCMethods) Has(method string) bool {
	for _, n := range m.Methods {
		if n == method {
			return true
		}
	}
	return false
}

// ExtrinsicOrHash selects pool entries for author_removeExtrinsic.
type ExtrinsicOrHash struct {
	Hash      *types.Hash `json:"hash,omitempty"`
	Extrinsic types.Bytes `json:"extrinsic,omitempty"`
}

// MigrationStatus is the result of state_trieMigrationStatus, the full trie
// scan run by the node.
type MigrationStatus struct {
	TopRemainingToMigrate   uint64 `json:"topRemainingToMigrate"`
	ChildRemainingToMigrate uint64 `json:"childRemainingToMigrate"`
	TotalTop                uint64 `json:"totalTop"`
	TotalChild              uint64 `json:"totalChild"`
}

func (s *MigrationStatus) Done() bool {
	return s.TopRemainingToMigrate == 0 && s.ChildRemainingToMigrate == 0
}
