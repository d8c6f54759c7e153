package extrinsic

import (
	"fmt"

	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/chain/metadata"
	"github.com/trie-migrate/westend-migrate/chain/value"
	"github.com/trie-migrate/westend-migrate/lib/scale"
)

// ModuleError is a pallet error raised during dispatch.
type ModuleError struct {
	Index uint8
	Error uint8
	// Name is set when the error belongs to the migration pallet.
	Name string
}

// DispatchError is a failed dispatch. Name is the DispatchError variant, Sub
// the inner variant for Token, Arithmetic, Transactional and Trie.
type DispatchError struct {
	Name   string
	Sub    string
	Module *ModuleError
}

func (e *DispatchError) Error() string {
	switch {
	case e.Module != nil && e.Module.Name != "":
		return fmt.Sprintf("dispatch error: Module(%s)", e.Module.Name)
	case e.Module != nil:
		return fmt.Sprintf("dispatch error: Module(index=%d error=%d)", e.Module.Index, e.Module.Error)
	case e.Sub != "":
		return fmt.Sprintf("dispatch error: %s(%s)", e.Name, e.Sub)
	}
	return "dispatch error: " + e.Name
}

// ValidityError is a TransactionValidityError. Class is Invalid or Unknown.
type ValidityError struct {
	Class  string
	Name   string
	Custom uint8
}

func (e *ValidityError) Error() string {
	if e.Name == "Custom" {
		return fmt.Sprintf("%s transaction: Custom(%d)", e.Class, e.Custom)
	}
	return fmt.Sprintf("%s transaction: %s", e.Class, e.Name)
}

// ApplyResult is a decoded ApplyExtrinsicResult. At most one of Dispatch and
// Validity is set.
type ApplyResult struct {
	Dispatch *DispatchError
	Validity *ValidityError
}

func (r ApplyResult) Ok() bool {
	return r.Dispatch == nil && r.Validity == nil
}

func (r ApplyResult) Err() error {
	switch {
	case r.Validity != nil:
		return r.Validity
	case r.Dispatch != nil:
		return r.Dispatch
	}
	return nil
}

// DecodeApplyResult decodes the bytes returned by system_dryRun. If the full
// result does not decode, a bare TransactionValidityError after the Err tag
// is tried, which is the shape the node reports on early validity failures.
func DecodeApplyResult(raw []byte, p metadata.Pallet) (ApplyResult, error) {
	v, err := metadata.Types.DecodeBytes(metadata.Types.MustLookup(metadata.TypeApplyExtrinsicResult), raw)
	if err == nil {
		return applyFromValue(v, p)
	}

	if len(raw) > 1 && raw[0] == 1 {
		vv, verr := metadata.Types.Decode(metadata.Types.MustLookup(metadata.TypeTransactionValidityError), scale.NewDecoder(raw[1:]))
		if verr == nil {
			ve, verr := validityFromValue(vv)
			if verr == nil {
				return ApplyResult{Validity: ve}, nil
			}
		}
	}
	return ApplyResult{}, xerrors.Errorf("decoding dry run result: %w", err)
}

func inner(v value.Value[value.TypeID]) (value.Value[value.TypeID], error) {
	f, ok := v.At(0)
	if !ok {
		return f, xerrors.Errorf("variant %s has no payload", v.Variant)
	}
	return f, nil
}

func applyFromValue(v value.Value[value.TypeID], p metadata.Pallet) (ApplyResult, error) {
	body, err := inner(v)
	if err != nil {
		return ApplyResult{}, err
	}
	switch v.Variant {
	case "Err":
		ve, err := validityFromValue(body)
		if err != nil {
			return ApplyResult{}, err
		}
		return ApplyResult{Validity: ve}, nil
	case "Ok":
		if body.Variant == "Ok" {
			return ApplyResult{}, nil
		}
		de, err := inner(body)
		if err != nil {
			return ApplyResult{}, err
		}
		d, err := dispatchFromValue(de, p)
		if err != nil {
			return ApplyResult{}, err
		}
		return ApplyResult{Dispatch: d}, nil
	}
	return ApplyResult{}, xerrors.Errorf("unexpected result variant %q", v.Variant)
}

func validityFromValue(v value.Value[value.TypeID]) (*ValidityError, error) {
	body, err := inner(v)
	if err != nil {
		return nil, err
	}
	out := &ValidityError{Class: v.Variant, Name: body.Variant}
	if body.Variant == "Custom" {
		c, err := inner(body)
		if err != nil {
			return nil, err
		}
		out.Custom = uint8(c.Uint)
	}
	return out, nil
}

func dispatchFromValue(v value.Value[value.TypeID], p metadata.Pallet) (*DispatchError, error) {
	out := &DispatchError{Name: v.Variant}
	if len(v.Fields) == 0 {
		return out, nil
	}
	body := v.Fields[0].Value

	if v.Variant != "Module" {
		out.Sub = body.Variant
		return out, nil
	}

	idx, ok := body.Field("index")
	if !ok {
		return nil, xerrors.New("module error without index")
	}
	code, ok := body.Field("error")
	if !ok || len(code.Bytes) == 0 {
		return nil, xerrors.New("module error without error code")
	}
	me := &ModuleError{Index: uint8(idx.Uint), Error: code.Bytes[0]}
	if me.Index == p.Index {
		me.Name, _ = p.ErrorName(me.Error)
	}
	out.Module = me
	return out, nil
}
