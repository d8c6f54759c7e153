package migrate

import (
	"context"
	"time"

	"github.com/raulk/clock"

	"github.com/trie-migrate/westend-migrate/api"
	"github.com/trie-migrate/westend-migrate/build"
)

// Resolver decides what a failed submission means by looking at the chain.
// It never resubmits.
type Resolver struct {
	node   api.Node
	reader *StateReader
	clock  clock.Clock
}

func NewResolver(node api.Node, reader *StateReader) *Resolver {
	return &Resolver{node: node, reader: reader, clock: build.Clock}
}

// Resolve classifies cause, a failure of the submission signed with nonce
// used, against the current account nonce and our pending pool entries.
//
//	nonce advanced             -> NonceStale
//	unchanged, pending from us -> PoolConflict
//	unchanged, nothing pending -> Transient
func (r *Resolver) Resolve(ctx context.Context, used uint64, cause error) error {
	acct, err := r.reader.AccountSnapshot(ctx, nil)
	if err != nil {
		return Errorf(ReadFailure, "resolving %v: %w", cause, err)
	}
	if acct.Nonce > used {
		log.Infow("nonce advanced past failed submission", "used", used, "nonce", acct.Nonce, "cause", cause)
		return Errorf(NonceStale, "nonce advanced from %d to %d after: %w", used, acct.Nonce, cause)
	}

	pending, err := r.reader.Pending(ctx)
	if err != nil {
		return Errorf(ReadFailure, "resolving %v: %w", cause, err)
	}
	if len(pending) > 0 {
		fields := []interface{}{"count", len(pending), "nonce", pending[0].Nonce, "hash", pending[0].Hash}
		// the pool-aware index counts queued entries, so it should sit above
		// the on-chain nonce while ours is pending
		if next, err := r.node.SystemAccountNextIndex(ctx, r.reader.Account().String()); err != nil {
			log.Debugw("pool-aware account index unavailable", "error", err)
		} else {
			fields = append(fields, "poolNext", next)
			if next <= acct.Nonce {
				log.Warnw("node pool index does not cover pending extrinsic", "nonce", acct.Nonce, "poolNext", next)
			}
		}
		log.Warnw("pending extrinsic from controller blocks submission", fields...)
		return Errorf(PoolConflict, "%d pending extrinsic(s) at nonce %d: %w", len(pending), acct.Nonce, cause)
	}
	return Errorf(Transient, "nonce %d unchanged and nothing pending: %w", acct.Nonce, cause)
}

// ClearPending removes the controller's pending extrinsics from the node's
// pool and returns how many the node dropped.
func (r *Resolver) ClearPending(ctx context.Context) (int, error) {
	pending, err := r.reader.Pending(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		log.Info("no pending transactions to clear")
		return 0, nil
	}

	req := make([]api.ExtrinsicOrHash, 0, len(pending))
	for _, p := range pending {
		h := p.Hash
		req = append(req, api.ExtrinsicOrHash{Hash: &h})
	}
	removed, err := r.node.AuthorRemoveExtrinsic(ctx, req)
	if err != nil {
		return 0, Errorf(Transient, "removing pending extrinsics: %w", err)
	}
	for _, h := range removed {
		log.Infow("removed pending extrinsic", "hash", h)
	}
	if len(removed) < len(pending) {
		log.Warnw("some pending extrinsics could not be removed", "pending", len(pending), "removed", len(removed))
	}
	return len(removed), nil
}

// WaitForNonceChange polls the account nonce every interval until it differs
// from from, or iterations polls have been made. It reports the last nonce
// seen and whether it changed.
func (r *Resolver) WaitForNonceChange(ctx context.Context, from uint64, iterations int, interval time.Duration) (uint64, bool, error) {
	nonce := from
	for i := 0; i < iterations; i++ {
		select {
		case <-r.clock.After(interval):
		case <-ctx.Done():
			return nonce, false, ctx.Err()
		}
		acct, err := r.reader.AccountSnapshot(ctx, nil)
		if err != nil {
			log.Debugw("nonce poll failed", "error", err)
			continue
		}
		nonce = acct.Nonce
		if nonce != from {
			return nonce, true, nil
		}
	}
	return nonce, false, nil
}
