package client

import (
	"context"
	"net/http"

	"github.com/trie-migrate/westend-migrate/api"
	"github.com/trie-migrate/westend-migrate/lib/jsonrpc"
)

// NewNodeRPC creates a new websocket jsonrpc client for a Substrate node.
func NewNodeRPC(ctx context.Context, addr string, requestHeader http.Header) (api.Node, jsonrpc.ClientCloser, error) {
	var res api.NodeStruct
	closer, err := jsonrpc.NewMergeClient(ctx, addr,
		[]interface{}{
			&res.Internal,
		},
		requestHeader,
	)

	return &res, closer, err
}
