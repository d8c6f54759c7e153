package types

import (
	"bytes"
	"encoding/json"
	"strconv"

	"golang.org/x/xerrors"
)

// TxStatusKind enumerates the transaction pool lifecycle events delivered by
// author_submitAndWatchExtrinsic.
type TxStatusKind int

const (
	TxUnknown TxStatusKind = iota
	TxFuture
	TxReady
	TxBroadcast
	TxInBlock
	TxRetracted
	TxFinalityTimeout
	TxFinalized
	TxUsurped
	TxDropped
	TxInvalid
)

var txStatusNames = map[TxStatusKind]string{
	TxFuture:          "future",
	TxReady:           "ready",
	TxBroadcast:       "broadcast",
	TxInBlock:         "inBlock",
	TxRetracted:       "retracted",
	TxFinalityTimeout: "finalityTimeout",
	TxFinalized:       "finalized",
	TxUsurped:         "usurped",
	TxDropped:         "dropped",
	TxInvalid:         "invalid",
}

func (k TxStatusKind) String() string {
	if n, ok := txStatusNames[k]; ok {
		return n
	}
	return "TxStatusKind(" + strconv.Itoa(int(k)) + ")"
}

// Terminal reports whether the node stops sending updates after this status.
func (k TxStatusKind) Terminal() bool {
	switch k {
	case TxFinalized, TxFinalityTimeout, TxUsurped, TxDropped, TxInvalid:
		return true
	}
	return false
}

// TxStatus is one update of a watched extrinsic.
type TxStatus struct {
	Kind TxStatusKind
	// Block is set for inBlock, retracted, finalityTimeout and finalized. For
	// usurped it holds the replacing extrinsic hash.
	Block Hash
	Peers []string
}

func (s TxStatus) String() string {
	switch s.Kind {
	case TxInBlock, TxRetracted, TxFinalityTimeout, TxFinalized, TxUsurped:
		return s.Kind.String() + "(" + s.Block.String() + ")"
	case TxBroadcast:
		return s.Kind.String() + "(" + strconv.Itoa(len(s.Peers)) + " peers)"
	}
	return s.Kind.String()
}

func kindByName(name string) (TxStatusKind, bool) {
	for k, n := range txStatusNames {
		if n == name {
			return k, true
		}
	}
	return TxUnknown, false
}

func (s *TxStatus) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var name string
		if err := json.Unmarshal(b, &name); err != nil {
			return err
		}
		k, ok := kindByName(name)
		if !ok {
			return xerrors.Errorf("unknown tx status %q", name)
		}
		*s = TxStatus{Kind: k}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(b, &obj); err != nil {
		return xerrors.Errorf("decoding tx status: %w", err)
	}
	if len(obj) != 1 {
		return xerrors.Errorf("tx status object must have exactly one key, got %d", len(obj))
	}
	for name, raw := range obj {
		k, ok := kindByName(name)
		if !ok {
			return xerrors.Errorf("unknown tx status %q", name)
		}
		out := TxStatus{Kind: k}
		switch k {
		case TxBroadcast:
			if err := json.Unmarshal(raw, &out.Peers); err != nil {
				return xerrors.Errorf("decoding broadcast peers: %w", err)
			}
		case TxInBlock, TxRetracted, TxFinalityTimeout, TxFinalized, TxUsurped:
			if err := json.Unmarshal(raw, &out.Block); err != nil {
				return xerrors.Errorf("decoding %s hash: %w", name, err)
			}
		}
		*s = out
	}
	return nil
}

func (s TxStatus) MarshalJSON() ([]byte, error) {
	name, ok := txStatusNames[s.Kind]
	if !ok {
		return nil, xerrors.Errorf("cannot marshal %s", s.Kind)
	}
	switch s.Kind {
	case TxBroadcast:
		peers := s.Peers
		if peers == nil {
			peers = []string{}
		}
		return json.Marshal(map[string][]string{name: peers})
	case TxInBlock, TxRetracted, TxFinalityTimeout, TxFinalized, TxUsurped:
		return json.Marshal(map[string]Hash{name: s.Block})
	}
	return json.Marshal(name)
}
