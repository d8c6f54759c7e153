package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/trie-migrate/westend-migrate/api"
	"github.com/trie-migrate/westend-migrate/chain/types"
)

const blockHash = "0x" + "ab" + "00000000000000000000000000000000000000000000000000000000000000"

type message struct {
	ID     *int64            `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func fakeNode(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			t.Error(err)
			return
		}
		defer conn.Close() //nolint:errcheck

		write := func(v string) {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(v))
		}
		for {
			var m message
			if err := conn.ReadJSON(&m); err != nil {
				return
			}
			id, _ := json.Marshal(m.ID)
			switch m.Method {
			case "chain_getFinalizedHead":
				write(`{"jsonrpc":"2.0","id":` + string(id) + `,"result":"` + blockHash + `"}`)
			case "chain_getBlockHash":
				write(`{"jsonrpc":"2.0","id":` + string(id) + `,"result":null}`)
			case "system_accountNextIndex":
				var who string
				require.NoError(t, json.Unmarshal(m.Params[0], &who))
				require.Equal(t, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", who)
				write(`{"jsonrpc":"2.0","id":` + string(id) + `,"result":12}`)
			case "rpc_methods":
				write(`{"jsonrpc":"2.0","id":` + string(id) + `,"result":{"methods":["system_dryRun","author_submitAndWatchExtrinsic"]}}`)
			case "author_submitAndWatchExtrinsic":
				write(`{"jsonrpc":"2.0","id":` + string(id) + `,"result":"xyz"}`)
				for _, st := range []string{`"ready"`, `{"broadcast":["peer"]}`, `{"inBlock":"` + blockHash + `"}`, `{"finalized":"` + blockHash + `"}`} {
					write(`{"jsonrpc":"2.0","method":"author_extrinsicUpdate","params":{"subscription":"xyz","result":` + st + `}}`)
				}
			case "author_unwatchExtrinsic":
				write(`{"jsonrpc":"2.0","id":` + string(id) + `,"result":true}`)
			default:
				write(`{"jsonrpc":"2.0","id":` + string(id) + `,"error":{"code":-32601,"message":"Method not found"}}`)
			}
		}
	}))
}

func TestNodeRPC(t *testing.T) {
	srv := fakeNode(t)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	node, closer, err := NewNodeRPC(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer closer()

	head, err := node.ChainGetFinalizedHead(ctx)
	require.NoError(t, err)
	require.Equal(t, blockHash, head.String())

	h, err := node.ChainGetBlockHash(ctx, nil)
	require.NoError(t, err)
	require.Nil(t, h)

	nonce, err := node.SystemAccountNextIndex(ctx, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY")
	require.NoError(t, err)
	require.EqualValues(t, 12, nonce)

	methods, err := node.RPCMethods(ctx)
	require.NoError(t, err)
	require.True(t, methods.Has("system_dryRun"))

	_, err = node.StateTrieMigrationStatus(ctx, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Method not found")

	ch, err := node.AuthorSubmitAndWatchExtrinsic(ctx, types.Bytes{1, 2, 3})
	require.NoError(t, err)

	var kinds []types.TxStatusKind
	timeout := time.After(5 * time.Second)
	for len(kinds) < 4 {
		select {
		case st := <-ch:
			kinds = append(kinds, st.Kind)
		case <-timeout:
			t.Fatal("timed out waiting for status")
		}
	}
	require.Equal(t, []types.TxStatusKind{types.TxReady, types.TxBroadcast, types.TxInBlock, types.TxFinalized}, kinds)
}

var _ api.Node = (*api.NodeStruct)(nil)
