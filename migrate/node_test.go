package migrate

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/api"
	"github.com/trie-migrate/westend-migrate/chain/extrinsic"
	"github.com/trie-migrate/westend-migrate/chain/metadata"
	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/chain/wallet"
	"github.com/trie-migrate/westend-migrate/journal"
)

func blockHash(n uint64) types.Hash {
	var h types.Hash
	binary.LittleEndian.PutUint64(h[:8], n)
	h[31] = 0xbb
	return h
}

func wnd(t *testing.T, s string) *uint256.Int {
	v, err := types.ParseWND(s)
	require.NoError(t, err)
	return v
}

// fakeNode is an in-memory node. A default submission is included and
// finalized straight away, advancing the nonce and top_items by step.
type fakeNode struct {
	t  *testing.T
	mu sync.Mutex

	task    types.MigrationTask
	account types.AccountID
	acct    types.AccountSnapshot
	limits  *types.MigrationLimits
	methods []string
	head    uint64
	step    uint32
	// topTarget completes the top cursor once top_items reaches it.
	topTarget uint32

	taskErr   error
	dryRunFn  func(n int, blob types.Bytes) (types.Bytes, error)
	submitFn  func(f *fakeNode, n int, blob types.Bytes) ([]types.TxStatus, error)
	pending   []types.Bytes
	keepAlive bool // leave status streams open

	dryRuns   []types.Bytes
	submitted []types.Bytes
	removed   []types.Hash

	indexQueries []string
}

func newFakeNode(t *testing.T, account types.AccountID) *fakeNode {
	return &fakeNode{
		t:       t,
		account: account,
		task: types.MigrationTask{
			ProgressTop:   types.Progress{Kind: types.ProgressLastKey, LastKey: []byte{0x26, 0xaa}},
			ProgressChild: types.Progress{Kind: types.ProgressToStart},
		},
		acct:    types.AccountSnapshot{Nonce: 3, Free: wnd(t, "10"), Reserved: new(uint256.Int), Frozen: new(uint256.Int)},
		methods: []string{"system_dryRun", "author_submitAndWatchExtrinsic"},
		head:    1000,
		step:    1024,
	}
}

var _ api.Node = (*fakeNode)(nil)

// finalize applies the effect of an included continue_migrate.
func (f *fakeNode) finalize() types.Hash {
	f.acct.Nonce++
	f.head++
	f.task.TopItems += f.step
	f.task.Size += f.step * 32
	if f.topTarget > 0 && f.task.TopItems >= f.topTarget {
		f.task.ProgressTop = types.Progress{Kind: types.ProgressComplete}
	}
	return blockHash(f.head)
}

func defaultStatuses(f *fakeNode) []types.TxStatus {
	b := f.finalize()
	return []types.TxStatus{
		{Kind: types.TxReady},
		{Kind: types.TxBroadcast, Peers: []string{"peer"}},
		{Kind: types.TxInBlock, Block: b},
		{Kind: types.TxFinalized, Block: b},
	}
}

func (f *fakeNode) ChainGetBlockHash(_ context.Context, n *uint64) (*types.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	num := f.head
	if n != nil {
		num = *n
	}
	if num > f.head {
		return nil, nil
	}
	h := blockHash(num)
	return &h, nil
}

func (f *fakeNode) ChainGetFinalizedHead(context.Context) (types.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return blockHash(f.head), nil
}

func (f *fakeNode) ChainGetHeader(_ context.Context, h *types.Hash) (*api.Header, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	num := f.head
	if h != nil {
		num = binary.LittleEndian.Uint64(h[:8])
	}
	return &api.Header{ParentHash: blockHash(num - 1), Number: types.HexNumber(num)}, nil
}

func (f *fakeNode) StateGetRuntimeVersion(context.Context, *types.Hash) (*api.RuntimeVersion, error) {
	return &api.RuntimeVersion{SpecName: "westmint", SpecVersion: 1017001, TransactionVersion: 16}, nil
}

func (f *fakeNode) StateGetStorage(_ context.Context, key types.Bytes, _ *types.Hash) (*types.Bytes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var (
		raw []byte
		err error
	)
	switch {
	case bytes.Equal(key, keyMigrationProcess):
		if f.taskErr != nil {
			return nil, f.taskErr
		}
		raw, err = metadata.EncodeTask(f.task)
	case bytes.Equal(key, keySignedMaxLimits):
		if f.limits == nil {
			return nil, nil
		}
		raw, err = metadata.EncodeSignedMaxLimits(*f.limits)
	case bytes.Equal(key, accountKey(f.account)):
		raw, err = metadata.EncodeAccount(f.acct)
	default:
		return nil, nil
	}
	require.NoError(f.t, err)
	b := types.Bytes(raw)
	return &b, nil
}

func (f *fakeNode) StateTrieMigrationStatus(context.Context, *types.Hash) (*api.MigrationStatus, error) {
	return &api.MigrationStatus{TopRemainingToMigrate: 12, TotalTop: 400000}, nil
}

func (f *fakeNode) SystemAccountNextIndex(_ context.Context, address string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexQueries = append(f.indexQueries, address)
	return f.acct.Nonce + uint64(len(f.pending)), nil
}

func (f *fakeNode) SystemDryRun(_ context.Context, blob types.Bytes, _ *types.Hash) (types.Bytes, error) {
	f.mu.Lock()
	f.dryRuns = append(f.dryRuns, blob)
	n := len(f.dryRuns)
	fn := f.dryRunFn
	f.mu.Unlock()

	if fn != nil {
		return fn(n, blob)
	}
	return types.Bytes{0x00, 0x00}, nil
}

func (f *fakeNode) RPCMethods(context.Context) (*api.RPCMethods, error) {
	return &api.RPCMethods{Methods: f.methods}, nil
}

func (f *fakeNode) AuthorSubmitAndWatchExtrinsic(ctx context.Context, blob types.Bytes) (<-chan types.TxStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, blob)

	var (
		sts []types.TxStatus
		err error
	)
	if f.submitFn != nil {
		sts, err = f.submitFn(f, len(f.submitted), blob)
	} else {
		sts = defaultStatuses(f)
	}
	if err != nil {
		return nil, err
	}

	ch := make(chan types.TxStatus, len(sts))
	for _, st := range sts {
		ch <- st
	}
	if f.keepAlive {
		go func() {
			<-ctx.Done()
			close(ch)
		}()
	} else {
		close(ch)
	}
	return ch, nil
}

func (f *fakeNode) AuthorPendingExtrinsics(context.Context) ([]types.Bytes, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Bytes(nil), f.pending...), nil
}

func (f *fakeNode) AuthorRemoveExtrinsic(_ context.Context, req []api.ExtrinsicOrHash) ([]types.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Hash
	for _, r := range req {
		if r.Hash == nil {
			return nil, xerrors.New("only hashes are supported")
		}
		keep := f.pending[:0]
		for _, p := range f.pending {
			if extrinsic.Hash(p) == *r.Hash {
				out = append(out, *r.Hash)
				continue
			}
			keep = append(keep, p)
		}
		f.pending = keep
	}
	f.removed = append(f.removed, out...)
	return out, nil
}

func (f *fakeNode) snapshot() (submitted, dryRuns []types.Bytes, task types.MigrationTask, acct types.AccountSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.Bytes(nil), f.submitted...), append([]types.Bytes(nil), f.dryRuns...), f.task, f.acct
}

func testKey(t *testing.T) *wallet.Key {
	secret, err := wallet.ParseSeed("0x" + "0707070707070707070707070707070707070707070707070707070707070707")
	require.NoError(t, err)
	key, err := wallet.NewKey(secret)
	require.NoError(t, err)
	t.Cleanup(func() { _ = key.Close() })
	return key
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Limits = types.MigrationLimits{Item: 1024}
	opts.RetryWait = time.Millisecond
	opts.MaxRetryWait = 2 * time.Millisecond
	opts.BannedWait = time.Millisecond
	opts.BlockTime = time.Millisecond
	opts.FinalityTimeout = 5 * time.Second
	opts.PendingPollIterations = 3
	opts.Heartbeat = 0
	return opts
}

func newTestDriver(t *testing.T, opts Options) (*Driver, *fakeNode, *memJournal) {
	key := testKey(t)
	node := newFakeNode(t, key.Account())
	j := newMemJournal(nil)
	d := NewDriver(node, key, j, opts)
	d.validator.retryDelay = time.Millisecond
	return d, node, j
}

// memJournal keeps events in memory.
type memJournal struct {
	journal.EventTypeRegistry

	mu     sync.Mutex
	events []journal.Event
}

func newMemJournal(disabled journal.DisabledEvents) *memJournal {
	return &memJournal{EventTypeRegistry: journal.NewEventTypeRegistry(disabled)}
}

func (m *memJournal) RecordEvent(et journal.EventType, supplier func() interface{}) {
	if !et.Enabled() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, journal.Event{EventType: et, Timestamp: time.Now(), Data: supplier()})
}

func (m *memJournal) Close() error { return nil }

func (m *memJournal) byType(system, event string) []journal.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []journal.Event
	for _, e := range m.events {
		if e.System == system && e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
