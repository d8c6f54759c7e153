package migrate

import (
	"context"

	"github.com/trie-migrate/westend-migrate/api"
	"github.com/trie-migrate/westend-migrate/chain/extrinsic"
	"github.com/trie-migrate/westend-migrate/chain/types"
)

// CountersCaveat accompanies every rendering of the local counters.
const CountersCaveat = "top_items, child_items and size count work performed so far, not work remaining; " +
	"they are not a completion percentage. Only state_trieMigrationStatus (status --full-scan) is authoritative."

// StatusReport is a read-only view of the migration and the controller.
type StatusReport struct {
	Account types.AccountID
	Task    types.MigrationTask
	Balance types.AccountSnapshot
	Limits  *types.MigrationLimits
	Runtime *api.RuntimeVersion

	Pending []extrinsic.Info
	// PendingErr is set when the node refused to list its pool, which it
	// does unless unsafe rpc methods are enabled.
	PendingErr error

	// FullScan is the node's trie scan, only when requested.
	FullScan *api.MigrationStatus
}

// Status reads everything the status command shows. fullScan asks the node
// to walk the whole state trie, which takes a while.
func Status(ctx context.Context, node api.Node, r *StateReader, fullScan bool) (*StatusReport, error) {
	task, _, err := r.Task(ctx, nil)
	if err != nil {
		return nil, err
	}
	bal, err := r.AccountSnapshot(ctx, nil)
	if err != nil {
		return nil, err
	}
	limits, err := r.SignedMaxLimits(ctx)
	if err != nil {
		return nil, err
	}
	rv, err := node.StateGetRuntimeVersion(ctx, nil)
	if err != nil {
		return nil, Errorf(ReadFailure, "reading runtime version: %w", err)
	}

	rep := &StatusReport{
		Account: r.Account(),
		Task:    task,
		Balance: bal,
		Limits:  limits,
		Runtime: rv,
	}
	rep.Pending, rep.PendingErr = r.Pending(ctx)

	if fullScan {
		log.Info("running state_trieMigrationStatus, this scans the whole trie")
		st, err := node.StateTrieMigrationStatus(ctx, nil)
		if err != nil {
			return nil, Errorf(ReadFailure, "state_trieMigrationStatus: %w", err)
		}
		rep.FullScan = st
	}
	return rep, nil
}
