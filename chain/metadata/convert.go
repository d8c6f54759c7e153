package metadata

import (
	"github.com/holiman/uint256"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/chain/types"
	"github.com/trie-migrate/westend-migrate/chain/value"
	"github.com/trie-migrate/westend-migrate/lib/scale"
)

// Pallet locates StateTrieMigration inside the runtime.
type Pallet struct {
	Index              uint8
	ContinueMigrate    uint8
	SetSignedMaxLimits uint8
	// Errors lists the pallet's error variants in declaration order, so a
	// Module dispatch error can be named.
	Errors []string
}

// DefaultPallet is StateTrieMigration as deployed on Westend Asset Hub.
var DefaultPallet = Pallet{
	Index:              70,
	ContinueMigrate:    1,
	SetSignedMaxLimits: 4,
	Errors: []string{
		"MaxSignedLimits",
		"KeyTooLong",
		"NotEnoughFunds",
		"BadWitness",
		"SignedMigrationNotAllowed",
		"BadChildRoot",
	},
}

// ErrorName resolves a pallet error index.
func (p Pallet) ErrorName(idx uint8) (string, bool) {
	if int(idx) >= len(p.Errors) {
		return "", false
	}
	return p.Errors[idx], true
}

func uintField(v value.Value[value.TypeID], name string) (uint64, error) {
	f, ok := v.Field(name)
	if !ok {
		return 0, xerrors.Errorf("missing field %q", name)
	}
	if f.Kind != value.KindUint {
		return 0, xerrors.Errorf("field %q: expected integer, got %s", name, f.Kind)
	}
	return f.Uint, nil
}

func bigField(v value.Value[value.TypeID], name string) (*uint256.Int, error) {
	f, ok := v.Field(name)
	if !ok {
		return nil, xerrors.Errorf("missing field %q", name)
	}
	if f.Kind != value.KindU128 {
		return nil, xerrors.Errorf("field %q: expected u128, got %s", name, f.Kind)
	}
	return f.Big, nil
}

func progressFromValue(v value.Value[value.TypeID]) (types.Progress, error) {
	if v.Kind != value.KindVariant {
		return types.Progress{}, xerrors.Errorf("progress: expected variant, got %s", v.Kind)
	}
	switch v.Variant {
	case "ToStart":
		return types.Progress{Kind: types.ProgressToStart}, nil
	case "Complete":
		return types.Progress{Kind: types.ProgressComplete}, nil
	case "LastKey":
		key, ok := v.At(0)
		if !ok || key.Kind != value.KindBytes {
			return types.Progress{}, xerrors.New("progress: LastKey without key bytes")
		}
		return types.Progress{Kind: types.ProgressLastKey, LastKey: key.Bytes}, nil
	}
	return types.Progress{}, xerrors.Errorf("progress: unknown variant %q", v.Variant)
}

// DecodeTask decodes a MigrationProcess storage value. The raw value is
// returned alongside as it becomes the witness of the next call.
func DecodeTask(raw []byte) (types.MigrationTask, value.Value[value.TypeID], error) {
	v, err := Types.DecodeBytes(Types.MustLookup(TypeMigrationTask), raw)
	if err != nil {
		return types.MigrationTask{}, v, xerrors.Errorf("decoding migration task: %w", err)
	}
	task, err := TaskFromValue(v)
	return task, v, err
}

func TaskFromValue(v value.Value[value.TypeID]) (types.MigrationTask, error) {
	var task types.MigrationTask
	var err error

	for _, c := range []struct {
		name string
		dst  *types.Progress
	}{{"progress_top", &task.ProgressTop}, {"progress_child", &task.ProgressChild}} {
		f, ok := v.Field(c.name)
		if !ok {
			return task, xerrors.Errorf("missing field %q", c.name)
		}
		if *c.dst, err = progressFromValue(f); err != nil {
			return task, xerrors.Errorf("%s: %w", c.name, err)
		}
	}

	for _, c := range []struct {
		name string
		dst  *uint32
	}{{"size", &task.Size}, {"top_items", &task.TopItems}, {"child_items", &task.ChildItems}} {
		n, err := uintField(v, c.name)
		if err != nil {
			return task, err
		}
		*c.dst = uint32(n)
	}
	return task, nil
}

func progressValue(p types.Progress) value.Value[value.Unit] {
	switch p.Kind {
	case types.ProgressLastKey:
		return value.Variant("LastKey", value.Unnamed(value.Bytes[value.Unit](p.LastKey)))
	default:
		return value.Variant[value.Unit](p.Kind.String())
	}
}

// TaskValue builds the value tree of a task.
func TaskValue(t types.MigrationTask) value.Value[value.Unit] {
	return value.Composite(
		value.Named("progress_top", progressValue(t.ProgressTop)),
		value.Named("progress_child", progressValue(t.ProgressChild)),
		value.Named("size", value.Uint[value.Unit](uint64(t.Size))),
		value.Named("top_items", value.Uint[value.Unit](uint64(t.TopItems))),
		value.Named("child_items", value.Uint[value.Unit](uint64(t.ChildItems))),
	)
}

// EncodeTask is the storage encoding of t.
func EncodeTask(t types.MigrationTask) ([]byte, error) {
	return value.EncodeToBytes(Types, Types.MustLookup(TypeMigrationTask), TaskValue(t))
}

func limitsValue(l types.MigrationLimits) value.Value[value.Unit] {
	return value.Composite(
		value.Named("size", value.Uint[value.Unit](uint64(l.Size))),
		value.Named("item", value.Uint[value.Unit](uint64(l.Item))),
	)
}

// DecodeSignedMaxLimits decodes a SignedMigrationMaxLimits value. The item
// is an OptionQuery, so an unset value never reaches the decoder.
func DecodeSignedMaxLimits(raw []byte) (*types.MigrationLimits, error) {
	v, err := Types.DecodeBytes(Types.MustLookup(TypeSignedMaxLimits), raw)
	if err != nil {
		return nil, xerrors.Errorf("decoding signed max limits: %w", err)
	}
	size, err := uintField(v, "size")
	if err != nil {
		return nil, err
	}
	item, err := uintField(v, "item")
	if err != nil {
		return nil, err
	}
	return &types.MigrationLimits{Size: uint32(size), Item: uint32(item)}, nil
}

func EncodeSignedMaxLimits(l types.MigrationLimits) ([]byte, error) {
	return value.EncodeToBytes(Types, Types.MustLookup(TypeSignedMaxLimits), limitsValue(l))
}

// DecodeAccount decodes a System.Account value. Fields appended by newer
// runtimes are ignored.
func DecodeAccount(raw []byte) (types.AccountSnapshot, error) {
	var snap types.AccountSnapshot
	v, err := Types.Decode(Types.MustLookup(TypeAccountInfo), scale.NewDecoder(raw))
	if err != nil {
		return snap, xerrors.Errorf("decoding account info: %w", err)
	}
	nonce, err := uintField(v, "nonce")
	if err != nil {
		return snap, err
	}
	data, ok := v.Field("data")
	if !ok {
		return snap, xerrors.New("account info without data")
	}
	snap.Nonce = nonce
	if snap.Free, err = bigField(data, "free"); err != nil {
		return snap, err
	}
	if snap.Reserved, err = bigField(data, "reserved"); err != nil {
		return snap, err
	}
	if snap.Frozen, err = bigField(data, "frozen"); err != nil {
		return snap, err
	}
	return snap, nil
}

func EncodeAccount(s types.AccountSnapshot) ([]byte, error) {
	u128 := func(v *uint256.Int) value.Value[value.Unit] {
		if v == nil {
			v = new(uint256.Int)
		}
		return value.U128[value.Unit](v)
	}
	zero := value.Uint[value.Unit](0)
	v := value.Composite(
		value.Named("nonce", value.Uint[value.Unit](s.Nonce)),
		value.Named("consumers", zero),
		value.Named("providers", value.Uint[value.Unit](1)),
		value.Named("sufficients", zero),
		value.Named("data", value.Composite(
			value.Named("free", u128(s.Free)),
			value.Named("reserved", u128(s.Reserved)),
			value.Named("frozen", u128(s.Frozen)),
			value.Named("flags", u128(nil)),
		)),
	)
	return value.EncodeToBytes(Types, Types.MustLookup(TypeAccountInfo), v)
}

// ContinueMigrateArgs encodes the arguments of continue_migrate. The witness
// must be context free: a task decoded from storage is erased first.
func ContinueMigrateArgs(limits types.MigrationLimits, realSizeUpper uint32, witness value.Value[value.Unit]) ([]byte, error) {
	args := value.Composite(
		value.Named("limits", limitsValue(limits)),
		value.Named("real_size_upper", value.Uint[value.Unit](uint64(realSizeUpper))),
		value.Named("witness_task", witness),
	)
	return value.EncodeToBytes(Types, Types.MustLookup(TypeContinueMigrate), args)
}

func SetSignedMaxLimitsArgs(limits types.MigrationLimits) ([]byte, error) {
	args := value.Composite(value.Named("limits", limitsValue(limits)))
	return value.EncodeToBytes(Types, Types.MustLookup(TypeSetSignedMaxLimits), args)
}
