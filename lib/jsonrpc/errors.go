package jsonrpc

import (
	"encoding/json"
	"fmt"

	"golang.org/x/xerrors"
)

// ErrClient is an error which occurred on the client side the library
type ErrClient struct {
	err error
}

func (e *ErrClient) Error() string {
	return fmt.Sprintf("RPC client error: %s", e.err)
}

// Unwrap unwraps the actual error
func (e *ErrClient) Unwrap() error {
	return e.err
}

var ErrConnClosed = xerrors.New("websocket connection closed")

// RPCError is an error object returned by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// DataString renders Data, unquoting it when it is a JSON string.
func (e *RPCError) DataString() string {
	if len(e.Data) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(e.Data, &s); err == nil {
		return s
	}
	return string(e.Data)
}

func (e *RPCError) Error() string {
	if d := e.DataString(); d != "" {
		return fmt.Sprintf("RPC error (%d): %s: %s", e.Code, e.Message, d)
	}
	return fmt.Sprintf("RPC error (%d): %s", e.Code, e.Message)
}

var _ error = &RPCError{}
