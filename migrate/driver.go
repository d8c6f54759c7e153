package migrate

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/jpillora/backoff"
	"github.com/raulk/clock"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"golang.org/x/sync/errgroup"

	"github.com/trie-migrate/westend-migrate/api"
	"github.com/trie-migrate/westend-migrate/build"
	"github.com/trie-migrate/westend-migrate/chain/extrinsic"
	"github.com/trie-migrate/westend-migrate/chain/metadata"
	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/journal"
	"github.com/trie-migrate/westend-migrate/metrics"
)

var log = logging.Logger("migrate")

type Options struct {
	// Limits per extrinsic. Zero fields take the chain maximum.
	Limits types.MigrationLimits
	// Runs stops the driver after this many successful attempts, 0 for no
	// limit.
	Runs int
	// Once stops after the first attempt whatever its outcome.
	Once bool
	// DryRun stops after the first pre-flight and never submits.
	DryRun bool
	// Delay is slept between attempts.
	Delay time.Duration

	// RaiseChainLimits submits set_signed_max_limits when the chain limits
	// are missing or below Limits.
	RaiseChainLimits bool
	// ClearPending removes our pending extrinsics before the first attempt
	// and on every pool conflict.
	ClearPending bool

	Pallet     metadata.Pallet
	Extensions extrinsic.Extensions

	RetryWait             time.Duration
	MaxRetryWait          time.Duration
	BannedWait            time.Duration
	BlockTime             time.Duration
	FinalityTimeout       time.Duration
	PendingPollIterations int
	MaxConsecutiveErrors  int
	Heartbeat             time.Duration
}

func DefaultOptions() Options {
	return Options{
		Pallet:                metadata.DefaultPallet,
		Extensions:            extrinsic.DefaultExtensions,
		RetryWait:             build.RetryWait,
		MaxRetryWait:          build.MaxRetryWait,
		BannedWait:            build.BannedTxWait,
		BlockTime:             build.BlockDelay,
		FinalityTimeout:       build.FinalityTimeout,
		PendingPollIterations: build.PendingTxPollIterations,
		MaxConsecutiveErrors:  build.MaxConsecutiveErrors,
		Heartbeat:             build.HeartbeatInterval,
	}
}

// Report summarizes a driver run.
type Report struct {
	RunID     string
	Attempts  int
	Successes int
	Failures  int
	// Terminal is MigrationComplete or MaxAttemptsReached when the run ended
	// on one of them, KindUnknown otherwise.
	Terminal Kind
	Task     types.MigrationTask
	Limits   types.MigrationLimits
	// Last is the recoverable failure a single attempt run ended on.
	Last error
}

// Driver runs attempts one after another. Each attempt reads fresh state,
// builds the call, dry runs it, then submits a second signature and follows
// it to finality before checking the balance.
type Driver struct {
	node   api.Node
	opts   Options
	clock  clock.Clock
	runID  string
	events evtTypes
	j      journal.Journal

	reader    *StateReader
	validator *Validator
	resolver  *Resolver
	watcher   *Watcher

	chainMax *types.MigrationLimits
	limits   types.MigrationLimits

	// unverified is the pre snapshot of an attempt that may have executed
	// without its post balance being checked. The next pre snapshot is
	// checked against it.
	unverified *types.AccountSnapshot

	started  time.Time
	attempts atomic.Int64
	failures atomic.Int64
}

func NewDriver(node api.Node, signer extrinsic.Signer, j journal.Journal, opts Options) *Driver {
	if j == nil {
		j = journal.NilJournal()
	}
	reader := NewStateReader(node, signer.Account(), opts.Extensions)
	resolver := NewResolver(node, reader)
	validator := NewValidator(node, reader, signer, opts.Pallet)
	watcher := NewWatcher(node, reader, signer, resolver)
	if opts.FinalityTimeout > 0 {
		watcher.timeout = opts.FinalityTimeout
	}

	return &Driver{
		node:      node,
		opts:      opts,
		clock:     build.Clock,
		runID:     uuid.New().String(),
		events:    registerEvents(j),
		j:         j,
		reader:    reader,
		validator: validator,
		resolver:  resolver,
		watcher:   watcher,
	}
}

func (d *Driver) Reader() *StateReader { return d.reader }
func (d *Driver) Resolver() *Resolver  { return d.resolver }

// Run drives attempts until the migration completes, Runs successes are
// reached, or an attempt fails fatally. The returned error is nil exactly
// when the process should exit 0, except for context cancellation which is
// returned as is.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	d.started = d.clock.Now()
	report := &Report{RunID: d.runID}

	if err := d.prepare(ctx); err != nil {
		d.notify(d.events.fatal, "Migration bot failed to start", err.Error(), true)
		return report, err
	}
	report.Limits = d.limits
	d.notify(d.events.started, "Westend bot started", "Bot is running and monitoring migration.", false)

	hbctx, stop := context.WithCancel(ctx)
	var eg errgroup.Group
	eg.Go(func() error {
		d.heartbeat(hbctx)
		return nil
	})

	err := d.loop(ctx, report)
	if KindOf(err) != BalanceDecreased {
		if serr := d.settleUnverified(ctx); serr != nil {
			log.Error(FailureLine(report.Attempts, serr))
			d.notify(d.events.balance, "CRITICAL: migration bot stopped", serr.Error(), true)
			report.Terminal = KindUnknown
			err = serr
		}
	}
	stop()
	_ = eg.Wait()
	return report, err
}

func (d *Driver) prepare(ctx context.Context) error {
	if err := d.validator.CheckAvailable(ctx); err != nil {
		return err
	}

	acct, err := d.reader.AccountSnapshot(ctx, nil)
	if err != nil {
		return err
	}
	log.Infow("controller account", "account", d.reader.Account(), "nonce", acct.Nonce, "free", types.WND(acct.Free))
	if acct.Free == nil || acct.Free.IsZero() {
		if !d.opts.DryRun {
			return Errorf(ConfigurationError, "controller %s has zero balance", d.reader.Account())
		}
		log.Warnw("controller has zero balance; transactions would fail", "account", d.reader.Account())
	}

	d.chainMax, err = d.reader.SignedMaxLimits(ctx)
	if err != nil {
		return err
	}
	d.limits = ResolveLimits(d.opts.Limits, d.chainMax)

	switch {
	case d.chainMax != nil && d.limits.Within(*d.chainMax):
		log.Infow("using limits", "limits", d.limits, "chain_max", *d.chainMax)
	case !d.opts.RaiseChainLimits:
		if d.chainMax != nil {
			log.Warnw("configured limits exceed the chain maximum and will be clamped", "limits", d.limits, "chain_max", *d.chainMax)
		} else {
			log.Warnw("chain reports no signed migration limits", "limits", d.limits)
		}
	case d.opts.DryRun:
		log.Infow("dry run: not raising chain limits", "limits", d.limits)
	default:
		log.Infow("setting chain limits", "limits", d.limits)
		if _, err := SetChainLimits(ctx, d.validator, d.watcher, d.reader, d.opts.Pallet, d.limits); err != nil {
			return err
		}
		l := d.limits
		d.chainMax = &l
	}

	if d.opts.ClearPending && !d.opts.DryRun {
		if _, err := d.resolver.ClearPending(ctx); err != nil {
			log.Warnw("could not clear pending transactions", "error", err)
		}
	}
	return nil
}

func (d *Driver) loop(ctx context.Context, report *Report) error {
	bo := &backoff.Backoff{Min: d.opts.RetryWait, Max: d.opts.MaxRetryWait, Factor: 2}
	consecutive := 0

	for {
		if err := ctx.Err(); err != nil {
			log.Infow("stopping between attempts", "reason", err)
			return err
		}

		n := int(d.attempts.Add(1))
		report.Attempts = n
		stats.Record(ctx, metrics.Attempts.M(1))

		out := d.attempt(ctx, n)
		report.Task = out.Task
		d.record(out)

		if out.Err != nil && ctx.Err() != nil && errors.Is(out.Err, ctx.Err()) {
			return ctx.Err()
		}

		switch out.Kind {
		case OutcomeComplete:
			log.Info(CompleteLine)
			d.notify(d.events.complete, "Migration complete", "The Westend state trie migration is complete (local flag).", false)
			report.Terminal = MigrationComplete
			return nil

		case OutcomeSuccess:
			consecutive = 0
			bo.Reset()
			stats.Record(ctx, metrics.ConsecutiveFails.M(0))
			if out.DryRun {
				log.Infow("dry run passed; not submitting", "attempt", n)
				return nil
			}
			report.Successes++
			log.Info(SuccessLine(n, out.Task))
			d.notify(d.events.tx, "Transaction confirmed", SuccessLine(n, out.Task), false)
			if d.opts.Runs > 0 && report.Successes >= d.opts.Runs {
				log.Infow("run limit reached", "successes", report.Successes)
				report.Terminal = MaxAttemptsReached
				return nil
			}

		case OutcomeFatal:
			report.Failures++
			d.failures.Add(1)
			log.Error(FailureLine(n, out.Err))
			evt := d.events.fatal
			if KindOf(out.Err) == BalanceDecreased {
				evt = d.events.balance
			}
			d.notify(evt, "CRITICAL: migration bot stopped", out.Err.Error(), true)
			return out.Err

		case OutcomeRecoverable:
			report.Failures++
			d.failures.Add(1)
			consecutive++
			stats.Record(ctx, metrics.ConsecutiveFails.M(int64(consecutive)))
			log.Warn(FailureLine(n, out.Err))

			if consecutive >= d.opts.MaxConsecutiveErrors {
				err := Errorf(TooManyErrors, "consecutive errors (%d/%d), last: %w", consecutive, d.opts.MaxConsecutiveErrors, out.Err)
				log.Error(FailureLine(n, err))
				d.notify(d.events.fatal, "CRITICAL: migration bot stopped", err.Error(), true)
				return err
			}
			if d.opts.Once || d.opts.DryRun {
				report.Last = out.Err
				log.Infow("single attempt failed; exiting", "kind", KindOf(out.Err))
				return nil
			}
			if err := d.recover(ctx, out.Err, bo); err != nil {
				return err
			}
		}

		if d.opts.Once {
			log.Info("--once set, exiting after a single attempt")
			return nil
		}
		if d.opts.Delay > 0 {
			if err := d.sleep(ctx, d.opts.Delay); err != nil {
				return err
			}
		}
	}
}

// attempt runs read, build, pre-flight, submit, watch and verify once.
func (d *Driver) attempt(ctx context.Context, n int) Outcome {
	task, raw, err := d.reader.Task(ctx, nil)
	if err != nil {
		return failed(n, task, err)
	}
	log.Info(task.StatusLine())

	intent, err := BuildIntent(task, raw, d.limits, d.chainMax)
	if errors.Is(err, ErrMigrationComplete) {
		return Outcome{Kind: OutcomeComplete, Attempt: n, Task: task}
	}
	if err != nil {
		return failed(n, task, err)
	}
	call, err := intent.Call(d.opts.Pallet)
	if err != nil {
		return failed(n, task, err)
	}

	if _, err := d.validator.Validate(ctx, call); err != nil {
		return failed(n, task, err)
	}
	if d.opts.DryRun {
		return Outcome{Kind: OutcomeSuccess, Attempt: n, Task: task, DryRun: true}
	}

	// From the pre snapshot until the post snapshot nothing is cancelled: a
	// signed extrinsic may be in flight.
	cctx := context.WithoutCancel(ctx)

	pre, err := d.reader.AccountSnapshot(cctx, nil)
	if err != nil {
		return failed(n, task, err)
	}
	if d.unverified != nil {
		if err := CheckBalance(*d.unverified, pre); err != nil {
			return failed(n, task, err)
		}
		d.unverified = nil
	}

	sub, err := d.watcher.SubmitAndWatch(cctx, call, pre.Nonce)
	if err != nil {
		// the extrinsic may have executed anyway, so the next pre snapshot
		// settles the balance
		d.unverified = &pre
		return failed(n, task, err)
	}
	stats.Record(ctx, metrics.FinalityLatency.M(float64(sub.Latency.Milliseconds())))

	post, err := d.reader.AccountSnapshot(cctx, &sub.Block)
	if err != nil {
		d.unverified = &pre
		return failed(n, task, Errorf(ReadFailure, "balance after %s not verified: %w", sub.Signed.Hash, err))
	}
	if err := CheckBalance(pre, post); err != nil {
		return Outcome{Kind: OutcomeFatal, Err: err, Attempt: n, Task: task, Block: sub.Block, Hash: sub.Signed.Hash}
	}
	log.Debugw("balance unchanged", "free", types.WND(post.Free), "nonce", post.Nonce)

	after, _, err := d.reader.Task(cctx, &sub.Block)
	if err != nil {
		log.Warnw("could not read progress at finalized block", "block", sub.Block, "error", err)
		after = task
	}
	stats.Record(ctx,
		metrics.Successes.M(1),
		metrics.TopItems.M(int64(after.TopItems)),
		metrics.ChildItems.M(int64(after.ChildItems)),
		metrics.MigratedSize.M(int64(after.Size)),
		metrics.ItemsPerTx.M(int64(after.TopItems)-int64(task.TopItems)+int64(after.ChildItems)-int64(task.ChildItems)),
	)
	return Outcome{Kind: OutcomeSuccess, Attempt: n, Task: after, Block: sub.Block, Hash: sub.Signed.Hash}
}

// settleUnverified checks a carried over snapshot against the current
// account before the driver exits. Only a decrease is an error.
func (d *Driver) settleUnverified(ctx context.Context) error {
	if d.unverified == nil {
		return nil
	}
	now, err := d.reader.AccountSnapshot(context.WithoutCancel(ctx), nil)
	if err != nil {
		log.Warnw("balance of the last submission not verified", "error", err)
		return nil
	}
	if err := CheckBalance(*d.unverified, now); err != nil {
		return err
	}
	d.unverified = nil
	return nil
}

// recover waits before the next attempt according to the failure.
func (d *Driver) recover(ctx context.Context, cause error, bo *backoff.Backoff) error {
	switch {
	case KindOf(cause) == PoolConflict:
		if d.opts.ClearPending {
			if n, err := d.resolver.ClearPending(ctx); err != nil {
				log.Warnw("could not clear pending transactions", "error", err)
			} else if n > 0 {
				return nil
			}
		}
		acct, err := d.reader.AccountSnapshot(ctx, nil)
		if err != nil {
			return d.sleep(ctx, bo.Duration())
		}
		log.Warnw("pool conflict, waiting for the pending extrinsic to clear", "nonce", acct.Nonce, "max_blocks", d.opts.PendingPollIterations)
		nonce, changed, err := d.resolver.WaitForNonceChange(ctx, acct.Nonce, d.opts.PendingPollIterations, d.opts.BlockTime)
		if err != nil {
			return err
		}
		if !changed {
			log.Warnw("pending extrinsic did not clear; retrying anyway", "nonce", nonce)
		}
		return nil

	case errors.Is(cause, ErrTxBanned):
		log.Warnw("transaction temporarily banned", "wait", d.opts.BannedWait)
		return d.sleep(ctx, d.opts.BannedWait)

	case KindOf(cause) == NonceStale:
		return d.sleep(ctx, d.opts.BlockTime)
	}

	wait := bo.Duration()
	log.Infow("retrying after recoverable error", "wait", wait)
	return d.sleep(ctx, wait)
}

func (d *Driver) sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return nil
	}
	select {
	case <-d.clock.After(dur):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Driver) record(out Outcome) {
	if out.Kind == OutcomeRecoverable || out.Kind == OutcomeFatal {
		kind := KindOf(out.Err).String()
		if err := stats.RecordWithTags(context.Background(), []tag.Mutator{tag.Upsert(metrics.Kind, kind)}, metrics.Failures.M(1)); err != nil {
			log.Debugw("recording failure metric", "error", err)
		}
	}

	journal.MaybeRecordEvent(d.j, d.events.attempt, func() interface{} {
		evt := AttemptEvt{
			RunID:      d.runID,
			Attempt:    out.Attempt,
			Outcome:    out.Kind.String(),
			TopItems:   out.Task.TopItems,
			ChildItems: out.Task.ChildItems,
			Size:       out.Task.Size,
		}
		if out.Err != nil {
			evt.Kind = KindOf(out.Err).String()
			evt.Error = out.Err.Error()
		}
		if out.Hash != (types.Hash{}) {
			evt.Hash = out.Hash.String()
			evt.Block = out.Block.String()
		}
		return evt
	})
}

func (d *Driver) notify(evt journal.EventType, title, msg string, critical bool) {
	journal.MaybeRecordEvent(d.j, evt, func() interface{} {
		return NotifyEvt{RunID: d.runID, Title: title, Message: msg, Critical: critical}
	})
}
