package migrate

import (
	"bytes"
	"context"
	"encoding/hex"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/trie-migrate/westend-migrate/chain/extrinsic"
	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/lib/jsonrpc"
)

func hexBytes(t *testing.T, s string) types.Bytes {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestDriverRunsToLimit(t *testing.T) {
	opts := testOptions()
	opts.Runs = 25
	d, node, j := newTestDriver(t, opts)
	node.task.TopItems = 330866

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 25, report.Successes)
	require.Equal(t, 25, report.Attempts)
	require.Equal(t, 0, report.Failures)
	require.Equal(t, MaxAttemptsReached, report.Terminal)
	require.EqualValues(t, 356466, report.Task.TopItems)

	submitted, dryRuns, task, acct := node.snapshot()
	require.EqualValues(t, 356466, task.TopItems)
	require.EqualValues(t, 28, acct.Nonce)
	require.Len(t, submitted, 25)
	require.Len(t, dryRuns, 25)

	for i, blob := range submitted {
		info, err := extrinsic.Inspect(blob)
		require.NoError(t, err)
		require.EqualValues(t, 3+i, info.Nonce)
		require.Equal(t, d.reader.Account(), info.Signer)

		// the pre-flight blob is never the one submitted
		for _, dr := range dryRuns {
			require.False(t, bytes.Equal(dr, blob))
		}
	}

	attempts := j.byType("migrate", evtAttempt)
	require.Len(t, attempts, 25)
	last := attempts[24].Data.(AttemptEvt)
	require.Equal(t, "success", last.Outcome)
	require.EqualValues(t, 356466, last.TopItems)
	require.NotEmpty(t, last.Block)
	require.Len(t, j.byType(NotifySystem, notifyTx), 25)
}

func TestDriverStopsWhenComplete(t *testing.T) {
	d, node, j := newTestDriver(t, testOptions())
	node.task.ProgressChild = types.Progress{Kind: types.ProgressComplete}
	node.topTarget = 2048

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, MigrationComplete, report.Terminal)
	require.Equal(t, 2, report.Successes)
	require.Equal(t, 3, report.Attempts)

	submitted, dryRuns, _, _ := node.snapshot()
	require.Len(t, submitted, 2)
	require.Len(t, dryRuns, 2)
	require.Len(t, j.byType(NotifySystem, notifyComplete), 1)
}

func TestDriverAlreadyComplete(t *testing.T) {
	d, node, _ := newTestDriver(t, testOptions())
	node.task = types.MigrationTask{
		ProgressTop:   types.Progress{Kind: types.ProgressComplete},
		ProgressChild: types.Progress{Kind: types.ProgressComplete},
		TopItems:      400000,
	}

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, MigrationComplete, report.Terminal)
	require.Equal(t, 0, report.Successes)

	submitted, dryRuns, _, _ := node.snapshot()
	require.Empty(t, submitted)
	require.Empty(t, dryRuns)
}

func TestDriverInBlockThenDropped(t *testing.T) {
	opts := testOptions()
	opts.Once = true
	d, node, _ := newTestDriver(t, opts)
	node.submitFn = func(f *fakeNode, _ int, _ types.Bytes) ([]types.TxStatus, error) {
		return []types.TxStatus{
			{Kind: types.TxReady},
			{Kind: types.TxInBlock, Block: blockHash(f.head + 1)},
			{Kind: types.TxDropped},
		}, nil
	}

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, Dropped, KindOf(report.Last))
	require.Equal(t, 0, report.Successes)
	require.Equal(t, 1, report.Failures)
}

func TestDriverPoolConflict(t *testing.T) {
	opts := testOptions()
	opts.Once = true
	d, node, _ := newTestDriver(t, opts)

	// a blob of ours stuck in the pool at the current nonce
	params, err := d.reader.SigningParams(context.Background(), node.acct.Nonce)
	require.NoError(t, err)
	stuck, err := extrinsic.Sign(extrinsic.Call{Pallet: 70, Method: 1, Args: []byte{0}}, params, testKey(t))
	require.NoError(t, err)
	node.pending = []types.Bytes{stuck.Bytes}

	node.submitFn = func(*fakeNode, int, types.Bytes) ([]types.TxStatus, error) {
		return nil, &jsonrpc.RPCError{Code: 1014, Message: "Priority is too low: (0 vs 0)"}
	}

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, PoolConflict, KindOf(report.Last))
	require.Contains(t, report.Last.Error(), "Priority is too low")
	require.Equal(t, 1, report.Failures)

	submitted, _, _, _ := node.snapshot()
	require.Len(t, submitted, 1)

	node.mu.Lock()
	defer node.mu.Unlock()
	require.Equal(t, []string{d.reader.Account().String()}, node.indexQueries)
}

func TestDriverPoolConflictNeverResubmitsBlob(t *testing.T) {
	opts := testOptions()
	opts.MaxConsecutiveErrors = 3
	d, node, _ := newTestDriver(t, opts)

	params, err := d.reader.SigningParams(context.Background(), node.acct.Nonce)
	require.NoError(t, err)
	stuck, err := extrinsic.Sign(extrinsic.Call{Pallet: 70, Method: 1, Args: []byte{0}}, params, testKey(t))
	require.NoError(t, err)
	node.pending = []types.Bytes{stuck.Bytes}
	node.submitFn = func(*fakeNode, int, types.Bytes) ([]types.TxStatus, error) {
		return nil, &jsonrpc.RPCError{Code: 1014, Message: "Priority is too low"}
	}

	report, err := d.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, TooManyErrors, KindOf(err))
	require.Contains(t, err.Error(), "consecutive errors (3/3)")
	require.Equal(t, 3, report.Attempts)

	submitted, _, _, _ := node.snapshot()
	require.Len(t, submitted, 3)
	seen := map[string]bool{}
	for _, b := range submitted {
		require.False(t, seen[string(b)], "blob submitted twice")
		seen[string(b)] = true
	}
}

func TestDriverClearPendingOnConflict(t *testing.T) {
	opts := testOptions()
	opts.Runs = 1
	opts.ClearPending = true
	d, node, _ := newTestDriver(t, opts)

	params, err := d.reader.SigningParams(context.Background(), node.acct.Nonce)
	require.NoError(t, err)
	stuck, err := extrinsic.Sign(extrinsic.Call{Pallet: 70, Method: 1, Args: []byte{0}}, params, testKey(t))
	require.NoError(t, err)

	// the stuck entry shows up after start, so only the conflict path clears it
	node.submitFn = func(f *fakeNode, n int, _ types.Bytes) ([]types.TxStatus, error) {
		if n == 1 {
			f.pending = []types.Bytes{stuck.Bytes}
			return nil, &jsonrpc.RPCError{Code: 1014, Message: "Priority is too low"}
		}
		return defaultStatuses(f), nil
	}

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Successes)
	require.Equal(t, 1, report.Failures)
	require.Equal(t, []types.Hash{stuck.Hash}, node.removed)
}

func TestDriverNonceAdvancedAfterRejection(t *testing.T) {
	opts := testOptions()
	opts.Once = true
	d, node, _ := newTestDriver(t, opts)
	node.submitFn = func(f *fakeNode, _ int, _ types.Bytes) ([]types.TxStatus, error) {
		f.acct.Nonce++
		return nil, &jsonrpc.RPCError{Code: 1010, Message: "Invalid Transaction", Data: []byte(`"Transaction is outdated"`)}
	}

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, NonceStale, KindOf(report.Last))
}

func TestDriverOnceRecoverableExitsClean(t *testing.T) {
	opts := testOptions()
	opts.Once = true
	d, node, _ := newTestDriver(t, opts)
	node.dryRunFn = func(int, types.Bytes) (types.Bytes, error) {
		return hexBytes(t, "00010346"+"03000000"), nil // BadWitness
	}

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, PreflightRejected, KindOf(report.Last))
	require.Contains(t, report.Last.Error(), "BadWitness")
	require.Equal(t, 1, report.Attempts)
	require.Equal(t, 1, report.Failures)

	submitted, _, _, _ := node.snapshot()
	require.Empty(t, submitted)
}

// executedUnseen includes the submission and charges 1 WND, but the status
// stream closes before reporting inBlock.
func executedUnseen(t *testing.T) func(f *fakeNode, n int, _ types.Bytes) ([]types.TxStatus, error) {
	return func(f *fakeNode, n int, _ types.Bytes) ([]types.TxStatus, error) {
		if n == 1 {
			f.finalize()
			f.acct.Free = new(uint256.Int).Sub(f.acct.Free, wnd(t, "1"))
			return []types.TxStatus{{Kind: types.TxReady}}, nil
		}
		return defaultStatuses(f), nil
	}
}

func TestDriverBalanceCheckedAfterUnseenExecution(t *testing.T) {
	d, node, j := newTestDriver(t, testOptions())
	node.submitFn = executedUnseen(t)

	report, err := d.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, BalanceDecreased, KindOf(err))
	require.Contains(t, err.Error(), "Balance decreased by 1 WND")
	require.Equal(t, 0, report.Successes)
	require.Equal(t, 2, report.Attempts)

	// the second attempt stops at its pre snapshot
	submitted, _, _, _ := node.snapshot()
	require.Len(t, submitted, 1)
	require.Len(t, j.byType(NotifySystem, notifyBalance), 1)
}

func TestDriverOnceChecksBalanceBeforeExit(t *testing.T) {
	opts := testOptions()
	opts.Once = true
	d, node, j := newTestDriver(t, opts)
	node.submitFn = executedUnseen(t)

	report, err := d.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, BalanceDecreased, KindOf(err))
	require.Equal(t, 1, report.Attempts)
	require.Len(t, j.byType(NotifySystem, notifyBalance), 1)
}

func TestDriverBalanceDecreaseIsFatal(t *testing.T) {
	d, node, j := newTestDriver(t, testOptions())
	node.submitFn = func(f *fakeNode, _ int, _ types.Bytes) ([]types.TxStatus, error) {
		f.acct.Free = new(uint256.Int).Sub(f.acct.Free, wnd(t, "1"))
		return defaultStatuses(f), nil
	}

	report, err := d.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, BalanceDecreased, KindOf(err))
	require.Contains(t, err.Error(), "Balance decreased by 1 WND")
	require.Equal(t, 0, report.Successes)

	submitted, _, _, _ := node.snapshot()
	require.Len(t, submitted, 1)
	require.Len(t, j.byType(NotifySystem, notifyBalance), 1)
}

func TestDriverPermissionDenied(t *testing.T) {
	d, node, _ := newTestDriver(t, testOptions())
	node.dryRunFn = func(int, types.Bytes) (types.Bytes, error) {
		return hexBytes(t, "00010346"+"04000000"), nil
	}

	_, err := d.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, PermissionDenied, KindOf(err))

	submitted, _, _, _ := node.snapshot()
	require.Empty(t, submitted)
}

func TestDriverPreflightRejectedThenOk(t *testing.T) {
	opts := testOptions()
	opts.Runs = 1
	d, node, _ := newTestDriver(t, opts)
	node.dryRunFn = func(n int, _ types.Bytes) (types.Bytes, error) {
		if n == 1 {
			return hexBytes(t, "00010346"+"03000000"), nil // BadWitness
		}
		return types.Bytes{0, 0}, nil
	}

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Successes)
	require.Equal(t, 1, report.Failures)
	require.Equal(t, 2, report.Attempts)

	submitted, _, _, _ := node.snapshot()
	require.Len(t, submitted, 1)
}

func TestDriverDryRunStaleRetries(t *testing.T) {
	opts := testOptions()
	opts.Runs = 1
	d, node, _ := newTestDriver(t, opts)
	node.dryRunFn = func(n int, _ types.Bytes) (types.Bytes, error) {
		if n < 3 {
			return hexBytes(t, "010003"), nil
		}
		return types.Bytes{0, 0}, nil
	}

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Successes)
	require.Equal(t, 0, report.Failures)

	_, dryRuns, _, _ := node.snapshot()
	require.Len(t, dryRuns, 3)
	require.NotEqual(t, dryRuns[0], dryRuns[1])
}

func TestDriverBannedThenOk(t *testing.T) {
	opts := testOptions()
	opts.Runs = 1
	d, node, _ := newTestDriver(t, opts)
	node.submitFn = func(f *fakeNode, n int, _ types.Bytes) ([]types.TxStatus, error) {
		if n == 1 {
			return nil, &jsonrpc.RPCError{Code: 1012, Message: "Transaction is temporarily banned"}
		}
		return defaultStatuses(f), nil
	}

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Successes)
	require.Equal(t, 2, report.Attempts)
}

func TestDriverConsecutiveErrorCap(t *testing.T) {
	d, node, _ := newTestDriver(t, testOptions())
	node.taskErr = &jsonrpc.RPCError{Code: -32000, Message: "state unavailable"}

	report, err := d.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, TooManyErrors, KindOf(err))
	require.Contains(t, err.Error(), "consecutive errors (5/5)")
	require.Equal(t, 5, report.Attempts)
	require.Equal(t, 5, report.Failures)
}

func TestDriverZeroBalance(t *testing.T) {
	d, node, _ := newTestDriver(t, testOptions())
	node.acct.Free = new(uint256.Int)

	_, err := d.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, ConfigurationError, KindOf(err))
}

func TestDriverDryRunMode(t *testing.T) {
	opts := testOptions()
	opts.DryRun = true
	d, node, _ := newTestDriver(t, opts)
	node.acct.Free = new(uint256.Int)

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Attempts)
	require.Equal(t, 0, report.Successes)

	submitted, dryRuns, _, _ := node.snapshot()
	require.Empty(t, submitted)
	require.Len(t, dryRuns, 1)
}

func TestDriverNeedsDryRun(t *testing.T) {
	d, node, _ := newTestDriver(t, testOptions())
	node.methods = []string{"author_submitAndWatchExtrinsic"}

	_, err := d.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, ConfigurationError, KindOf(err))
}

func TestDriverRaisesChainLimits(t *testing.T) {
	opts := testOptions()
	opts.Runs = 1
	opts.Limits = types.MigrationLimits{Item: 2048, Size: 102400}
	opts.RaiseChainLimits = true
	d, node, _ := newTestDriver(t, opts)
	node.limits = &types.MigrationLimits{Item: 1024, Size: 51200}
	node.submitFn = func(f *fakeNode, n int, _ types.Bytes) ([]types.TxStatus, error) {
		if n == 1 {
			f.limits = &types.MigrationLimits{Item: 2048, Size: 102400}
			f.acct.Nonce++
			f.head++
			b := blockHash(f.head)
			return []types.TxStatus{{Kind: types.TxInBlock, Block: b}, {Kind: types.TxFinalized, Block: b}}, nil
		}
		return defaultStatuses(f), nil
	}

	report, err := d.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Successes)
	require.Equal(t, types.MigrationLimits{Item: 2048, Size: 102400}, report.Limits)

	submitted, _, _, _ := node.snapshot()
	require.Len(t, submitted, 2)
	first, err := extrinsic.Inspect(submitted[0])
	require.NoError(t, err)
	require.EqualValues(t, 3, first.Nonce)
}

func TestDriverClampsToChainMax(t *testing.T) {
	opts := testOptions()
	opts.Runs = 1
	opts.Limits = types.MigrationLimits{Item: 4096, Size: 409600}
	d, node, _ := newTestDriver(t, opts)
	node.limits = &types.MigrationLimits{Item: 512, Size: 51200}

	var args []byte
	node.dryRunFn = func(_ int, blob types.Bytes) (types.Bytes, error) {
		args = blob
		return types.Bytes{0, 0}, nil
	}

	_, err := d.Run(context.Background())
	require.NoError(t, err)

	// limits {size: 51200, item: 512} follow the 70/1 call index
	require.True(t, bytes.Contains(args, hexBytes(t, "4601"+"00c80000"+"00020000"+"00900100")))
}

func TestDriverCancelledBetweenAttempts(t *testing.T) {
	d, _, _ := newTestDriver(t, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
