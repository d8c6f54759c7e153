package migrate

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/api"
	"github.com/trie-migrate/westend-migrate/api/mocks"
	"github.com/trie-migrate/westend-migrate/chain/extrinsic"
	"github.com/trie-migrate/westend-migrate/chain/metadata"
	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/chain/wallet"
)

func signedBy(t *testing.T, key extrinsic.Signer, nonce uint64) *extrinsic.Signed {
	s, err := extrinsic.Sign(testCall, extrinsic.Params{
		Era:        extrinsic.MortalEra(1000, 64),
		Nonce:      nonce,
		Genesis:    blockHash(0),
		BirthHash:  blockHash(1000),
		Extensions: extrinsic.DefaultExtensions,
	}, key)
	require.NoError(t, err)
	return s
}

func otherKey(t *testing.T) *wallet.Key {
	secret, err := wallet.ParseSeed("0x" + "0101010101010101010101010101010101010101010101010101010101010101")
	require.NoError(t, err)
	key, err := wallet.NewKey(secret)
	require.NoError(t, err)
	t.Cleanup(func() { _ = key.Close() })
	return key
}

func mockResolver(t *testing.T) (*Resolver, *mocks.MockNode, *wallet.Key) {
	m := mocks.NewMockNode(gomock.NewController(t))
	key := testKey(t)
	reader := NewStateReader(m, key.Account(), extrinsic.DefaultExtensions)
	return NewResolver(m, reader), m, key
}

func TestResolveDecisionTable(t *testing.T) {
	cause := ClassifySubmitError(xerrors.New("boom"))

	t.Run("nonce advanced", func(t *testing.T) {
		r, m, _ := mockResolver(t)
		expectAccount(t, m, 8)

		err := r.Resolve(context.Background(), 7, cause)
		require.Equal(t, NonceStale, KindOf(err))
		require.Contains(t, err.Error(), "nonce advanced from 7 to 8")
	})

	t.Run("unchanged with our entry pending", func(t *testing.T) {
		r, m, key := mockResolver(t)
		expectAccount(t, m, 7)
		m.EXPECT().AuthorPendingExtrinsics(gomock.Any()).Return([]types.Bytes{
			signedBy(t, otherKey(t), 1).Bytes,
			signedBy(t, key, 7).Bytes,
		}, nil)

		m.EXPECT().SystemAccountNextIndex(gomock.Any(), key.Account().String()).Return(uint64(8), nil)

		err := r.Resolve(context.Background(), 7, cause)
		require.Equal(t, PoolConflict, KindOf(err))
		require.Contains(t, err.Error(), "1 pending extrinsic(s) at nonce 7")
	})

	t.Run("pool index unavailable keeps the verdict", func(t *testing.T) {
		r, m, key := mockResolver(t)
		expectAccount(t, m, 7)
		m.EXPECT().AuthorPendingExtrinsics(gomock.Any()).Return([]types.Bytes{signedBy(t, key, 7).Bytes}, nil)
		m.EXPECT().SystemAccountNextIndex(gomock.Any(), key.Account().String()).Return(uint64(0), xerrors.New("method not found"))

		err := r.Resolve(context.Background(), 7, cause)
		require.Equal(t, PoolConflict, KindOf(err))
	})

	t.Run("unchanged with only foreign entries", func(t *testing.T) {
		r, m, _ := mockResolver(t)
		expectAccount(t, m, 7)
		m.EXPECT().AuthorPendingExtrinsics(gomock.Any()).Return([]types.Bytes{
			signedBy(t, otherKey(t), 7).Bytes,
			{0x04, 0x04}, // unsigned
			{0xff},       // garbage
		}, nil)

		err := r.Resolve(context.Background(), 7, cause)
		require.Equal(t, Transient, KindOf(err))
	})

	t.Run("re-read fails", func(t *testing.T) {
		r, m, _ := mockResolver(t)
		m.EXPECT().StateGetStorage(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, xerrors.New("ws closed"))

		err := r.Resolve(context.Background(), 7, cause)
		require.Equal(t, ReadFailure, KindOf(err))
	})
}

func TestClearPending(t *testing.T) {
	r, m, key := mockResolver(t)
	ours := signedBy(t, key, 4)
	m.EXPECT().AuthorPendingExtrinsics(gomock.Any()).Return([]types.Bytes{signedBy(t, otherKey(t), 4).Bytes, ours.Bytes}, nil)
	m.EXPECT().AuthorRemoveExtrinsic(gomock.Any(), []api.ExtrinsicOrHash{{Hash: &ours.Hash}}).Return([]types.Hash{ours.Hash}, nil)

	n, err := r.ClearPending(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestClearPendingNothingToDo(t *testing.T) {
	r, m, _ := mockResolver(t)
	m.EXPECT().AuthorPendingExtrinsics(gomock.Any()).Return(nil, nil)

	n, err := r.ClearPending(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestWaitForNonceChange(t *testing.T) {
	r, m, _ := mockResolver(t)

	nonces := []uint64{5, 5, 6}
	m.EXPECT().StateGetStorage(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, types.Bytes, *types.Hash) (*types.Bytes, error) {
		raw, err := metadata.EncodeAccount(types.AccountSnapshot{Nonce: nonces[0]})
		require.NoError(t, err)
		nonces = nonces[1:]
		b := types.Bytes(raw)
		return &b, nil
	}).Times(3)

	nonce, changed, err := r.WaitForNonceChange(context.Background(), 5, 10, time.Millisecond)
	require.NoError(t, err)
	require.True(t, changed)
	require.EqualValues(t, 6, nonce)
}

func TestWaitForNonceChangeGivesUp(t *testing.T) {
	r, m, _ := mockResolver(t)
	expectAccount(t, m, 5)

	nonce, changed, err := r.WaitForNonceChange(context.Background(), 5, 3, time.Millisecond)
	require.NoError(t, err)
	require.False(t, changed)
	require.EqualValues(t, 5, nonce)
}
