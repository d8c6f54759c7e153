package migrate

import (
	"context"
	"time"

	"github.com/raulk/clock"

	"github.com/trie-migrate/westend-migrate/api"
	"github.com/trie-migrate/westend-migrate/build"
	"github.com/trie-migrate/westend-migrate/chain/extrinsic"
	"github.com/trie-migrate/westend-migrate/chain/types"
)

// Submission is a finalized extrinsic.
type Submission struct {
	Signed *extrinsic.Signed
	// Block is the finalized block that includes the extrinsic.
	Block types.Hash
	// Statuses lists the status stream as observed, for diagnostics.
	Statuses []types.TxStatusKind
	Latency  time.Duration
}

// Watcher signs, submits and follows one extrinsic to finality.
type Watcher struct {
	node     api.Node
	reader   *StateReader
	signer   extrinsic.Signer
	resolver *Resolver

	timeout time.Duration
	clock   clock.Clock
}

func NewWatcher(node api.Node, reader *StateReader, signer extrinsic.Signer, resolver *Resolver) *Watcher {
	return &Watcher{
		node:     node,
		reader:   reader,
		signer:   signer,
		resolver: resolver,
		timeout:  build.FinalityTimeout,
		clock:    build.Clock,
	}
}

// SubmitAndWatch signs call with nonce, submits it and waits for Finalized.
// InBlock alone is never a success. Pool, nonce and timeout failures are
// settled by the resolver before they are returned.
func (w *Watcher) SubmitAndWatch(ctx context.Context, call extrinsic.Call, nonce uint64) (*Submission, error) {
	params, err := w.reader.SigningParams(ctx, nonce)
	if err != nil {
		return nil, err
	}
	signed, err := extrinsic.Sign(call, params, w.signer)
	if err != nil {
		return nil, Errorf(SigningFailure, "signing extrinsic: %w", err)
	}

	wctx, cancel := context.WithCancel(ctx)
	defer cancel() // unwatches

	start := w.clock.Now()
	updates, err := w.node.AuthorSubmitAndWatchExtrinsic(wctx, signed.Bytes)
	if err != nil {
		return nil, w.settle(ctx, nonce, ClassifySubmitError(err))
	}
	log.Infow("submitted extrinsic", "hash", signed.Hash, "nonce", nonce, "era_birth", params.BirthHash)

	sub := &Submission{Signed: signed}
	if err := w.watch(ctx, updates, sub); err != nil {
		return nil, w.settle(ctx, nonce, err)
	}
	sub.Latency = w.clock.Since(start)
	return sub, nil
}

func (w *Watcher) settle(ctx context.Context, nonce uint64, err error) error {
	if !needsResolution(err) {
		return err
	}
	return w.resolver.Resolve(ctx, nonce, err)
}

func (w *Watcher) watch(ctx context.Context, updates <-chan types.TxStatus, sub *Submission) error {
	timer := w.clock.Timer(w.timeout)
	defer timer.Stop()

	var inBlock *types.Hash
	for {
		select {
		case st, ok := <-updates:
			if !ok {
				return resolvable(Errorf(FinalityTimeout, "status stream ended after %v", sub.Statuses))
			}
			sub.Statuses = append(sub.Statuses, st.Kind)
			log.Debugw("extrinsic status", "hash", sub.Signed.Hash, "status", st)

			switch st.Kind {
			case types.TxInBlock:
				b := st.Block
				inBlock = &b
				log.Infow("extrinsic in block, waiting for finality", "hash", sub.Signed.Hash, "block", b)
			case types.TxRetracted:
				log.Warnw("block retracted", "hash", sub.Signed.Hash, "block", st.Block)
				inBlock = nil
			case types.TxFinalized:
				if inBlock == nil {
					return resolvable(Errorf(Transient, "finalized in %s without an inBlock status", st.Block))
				}
				sub.Block = st.Block
				log.Infow("extrinsic finalized", "hash", sub.Signed.Hash, "block", st.Block)
				return nil
			case types.TxFinalityTimeout:
				return resolvable(Errorf(FinalityTimeout, "node gave up waiting for finality of %s", st.Block))
			case types.TxUsurped:
				return resolvable(Errorf(Usurped, "replaced by %s", st.Block))
			case types.TxInvalid:
				return resolvable(Errorf(Invalid, "invalid after submission"))
			case types.TxDropped:
				return Errorf(Dropped, "dropped from pool after %v", sub.Statuses[:len(sub.Statuses)-1])
			}
		case <-timer.C:
			return resolvable(Errorf(FinalityTimeout, "not finalized within %s (seen %v)", w.timeout, sub.Statuses))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
