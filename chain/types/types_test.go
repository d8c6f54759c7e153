package types

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

const alicePub = "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"

func TestSS58(t *testing.T) {
	var a AccountID
	b, err := hex.DecodeString(alicePub)
	require.NoError(t, err)
	copy(a[:], b)

	require.Equal(t, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", a.String())

	back, prefix, err := ParseSS58(a.String())
	require.NoError(t, err)
	require.Equal(t, a, back)
	require.EqualValues(t, 42, prefix)

	_, _, err = ParseSS58("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQZ")
	require.Error(t, err)
}

func TestWND(t *testing.T) {
	require.Equal(t, "0 WND", WND(uint256.NewInt(0)))
	require.Equal(t, "1 WND", WND(uint256.NewInt(1_000_000_000_000)))
	require.Equal(t, "0.000000000001 WND", WND(uint256.NewInt(1)))
	require.Equal(t, "12.5 WND", WND(uint256.NewInt(12_500_000_000_000)))

	v, err := ParseWND("12.5 WND")
	require.NoError(t, err)
	require.Equal(t, uint64(12_500_000_000_000), v.Uint64())

	_, err = ParseWND("0.0000000000001")
	require.Error(t, err)
}

func TestTxStatusJSON(t *testing.T) {
	hash := "0x" + alicePub

	cases := map[string]TxStatus{
		`"ready"`:                        {Kind: TxReady},
		`"dropped"`:                      {Kind: TxDropped},
		`{"broadcast":["peer1","peer2"]}`: {Kind: TxBroadcast, Peers: []string{"peer1", "peer2"}},
		`{"inBlock":"` + hash + `"}`:     {Kind: TxInBlock, Block: mustHash(t, hash)},
		`{"finalized":"` + hash + `"}`:   {Kind: TxFinalized, Block: mustHash(t, hash)},
	}

	for in, want := range cases {
		var got TxStatus
		require.NoError(t, json.Unmarshal([]byte(in), &got), in)
		require.Equal(t, want, got)

		out, err := json.Marshal(got)
		require.NoError(t, err)
		require.JSONEq(t, in, string(out))
	}

	var bad TxStatus
	require.Error(t, json.Unmarshal([]byte(`"exploded"`), &bad))
	require.Error(t, json.Unmarshal([]byte(`{"inBlock":"0x00","finalized":"0x00"}`), &bad))
}

func TestTaskCompletion(t *testing.T) {
	task := MigrationTask{
		ProgressTop:   Progress{Kind: ProgressComplete},
		ProgressChild: Progress{Kind: ProgressLastKey, LastKey: []byte{1}},
		TopItems:      10,
	}
	require.False(t, task.IsComplete())
	require.Equal(t, "Status: top=done/10 child=wip/0 size=0", task.StatusLine())

	task.ProgressChild = Progress{Kind: ProgressComplete}
	require.True(t, task.IsComplete())
}

func mustHash(t *testing.T, s string) Hash {
	h, err := ParseHash(s)
	require.NoError(t, err)
	return h
}
