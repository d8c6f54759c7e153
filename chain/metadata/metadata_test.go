package metadata

import (
	"encoding/hex"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/chain/value"
)

const taskHex = "01080a0b" + "02" + "64000000" + "05000000" + "00000000"

func TestDecodeTask(t *testing.T) {
	raw, err := hex.DecodeString(taskHex)
	require.NoError(t, err)

	task, v, err := DecodeTask(raw)
	require.NoError(t, err)
	require.Equal(t, types.ProgressLastKey, task.ProgressTop.Kind)
	require.Equal(t, []byte{0x0a, 0x0b}, task.ProgressTop.LastKey)
	require.True(t, task.ProgressChild.Done())
	require.EqualValues(t, 100, task.Size)
	require.EqualValues(t, 5, task.TopItems)
	require.Equal(t, Types.MustLookup(TypeMigrationTask), v.Context)

	enc, err := EncodeTask(task)
	require.NoError(t, err)
	require.Equal(t, taskHex, hex.EncodeToString(enc))
}

func TestContinueMigrateArgsFromStorage(t *testing.T) {
	raw, err := hex.DecodeString(taskHex)
	require.NoError(t, err)
	_, v, err := DecodeTask(raw)
	require.NoError(t, err)

	args, err := ContinueMigrateArgs(types.MigrationLimits{Size: 409600, Item: 4096}, 819200, value.Erase(v))
	require.NoError(t, err)
	require.Equal(t, "00400600"+"00100000"+"00800c00"+taskHex, hex.EncodeToString(args))
}

func TestSignedMaxLimits(t *testing.T) {
	enc, err := EncodeSignedMaxLimits(types.MigrationLimits{Size: 1024, Item: 16})
	require.NoError(t, err)
	require.Equal(t, "00040000"+"10000000", hex.EncodeToString(enc))

	got, err := DecodeSignedMaxLimits(enc)
	require.NoError(t, err)
	require.Equal(t, &types.MigrationLimits{Size: 1024, Item: 16}, got)

	_, err = DecodeSignedMaxLimits([]byte{0x00})
	require.Error(t, err)

	args, err := SetSignedMaxLimitsArgs(*got)
	require.NoError(t, err)
	require.Equal(t, "00040000"+"10000000", hex.EncodeToString(args))
}

func TestAccountRoundTrip(t *testing.T) {
	snap := types.AccountSnapshot{Nonce: 7, Free: uint256.NewInt(5_000_000_000_000)}
	enc, err := EncodeAccount(snap)
	require.NoError(t, err)
	require.Len(t, enc, 16+64)

	// newer runtimes may append fields
	got, err := DecodeAccount(append(enc, 0xaa, 0xbb))
	require.NoError(t, err)
	require.EqualValues(t, 7, got.Nonce)
	require.Equal(t, snap.Free.Uint64(), got.Free.Uint64())
	require.True(t, got.Reserved.IsZero())
}

func TestPalletErrorName(t *testing.T) {
	name, ok := DefaultPallet.ErrorName(4)
	require.True(t, ok)
	require.Equal(t, "SignedMigrationNotAllowed", name)

	_, ok = DefaultPallet.ErrorName(42)
	require.False(t, ok)
}
