// Package metadata describes the parts of the Westend runtime the bot talks
// to: storage item types, call argument types and the dispatch result of a
// dry run.
package metadata

import (
	"github.com/trie-migrate/westend-migrate/chain/value"
)

// Registered type names.
const (
	TypeMigrationTask   = "pallet_state_trie_migration::MigrationTask"
	TypeSignedMaxLimits = "pallet_state_trie_migration::MigrationLimits"
	TypeAccountInfo     = "frame_system::AccountInfo"

	TypeContinueMigrate    = "StateTrieMigration::continue_migrate"
	TypeSetSignedMaxLimits = "StateTrieMigration::set_signed_max_limits"

	TypeApplyExtrinsicResult     = "sp_runtime::ApplyExtrinsicResult"
	TypeDispatchError            = "sp_runtime::DispatchError"
	TypeTransactionValidityError = "sp_runtime::TransactionValidityError"
)

// Types is the registry for the runtime the bot targets.
var Types = buildRegistry()

func unitVariants(names ...string) value.TypeDef {
	def := value.TypeDef{Kind: value.DefVariant}
	for i, n := range names {
		def.Variants = append(def.Variants, value.VariantDef{Index: uint8(i), Name: n})
	}
	return def
}

func migrationTypes(r *value.Registry, prefix, taskName, limitsName string) (task, limits value.TypeID) {
	u32 := r.Prim(value.PrimU32)
	keyBytes := r.Seq(r.Prim(value.PrimU8))

	progress := r.Add(prefix+"Progress", value.TypeDef{Kind: value.DefVariant, Variants: []value.VariantDef{
		{Index: 0, Name: "ToStart"},
		{Index: 1, Name: "LastKey", Fields: []value.FieldDef{{Type: keyBytes}}},
		{Index: 2, Name: "Complete"},
	}})

	task = r.Add(taskName, value.TypeDef{Kind: value.DefComposite, Fields: []value.FieldDef{
		{Name: "progress_top", Type: progress},
		{Name: "progress_child", Type: progress},
		{Name: "size", Type: u32},
		{Name: "top_items", Type: u32},
		{Name: "child_items", Type: u32},
	}})

	limits = r.Add(limitsName, value.TypeDef{Kind: value.DefComposite, Fields: []value.FieldDef{
		{Name: "size", Type: u32},
		{Name: "item", Type: u32},
	}})
	return task, limits
}

func buildRegistry() *value.Registry {
	r := value.NewRegistry()

	// Storage side. The pallet keeps its own copies of these types in storage
	// metadata; call arguments resolve to a distinct set below.
	migrationTypes(r, "storage::", TypeMigrationTask, TypeSignedMaxLimits)

	u32 := r.Prim(value.PrimU32)
	u128 := r.Prim(value.PrimU128)
	accountData := r.Add("pallet_balances::AccountData", value.TypeDef{Kind: value.DefComposite, Fields: []value.FieldDef{
		{Name: "free", Type: u128},
		{Name: "reserved", Type: u128},
		{Name: "frozen", Type: u128},
		{Name: "flags", Type: u128},
	}})
	r.Add(TypeAccountInfo, value.TypeDef{Kind: value.DefComposite, Fields: []value.FieldDef{
		{Name: "nonce", Type: u32},
		{Name: "consumers", Type: u32},
		{Name: "providers", Type: u32},
		{Name: "sufficients", Type: u32},
		{Name: "data", Type: accountData},
	}})

	// Call side.
	callTask, callLimits := migrationTypes(r, "call::", "call::MigrationTask", "call::MigrationLimits")
	r.Add(TypeContinueMigrate, value.TypeDef{Kind: value.DefComposite, Fields: []value.FieldDef{
		{Name: "limits", Type: callLimits},
		{Name: "real_size_upper", Type: r.Prim(value.PrimU32)},
		{Name: "witness_task", Type: callTask},
	}})
	r.Add(TypeSetSignedMaxLimits, value.TypeDef{Kind: value.DefComposite, Fields: []value.FieldDef{
		{Name: "limits", Type: callLimits},
	}})

	addDispatchTypes(r)
	return r
}

func addDispatchTypes(r *value.Registry) {
	u8 := r.Prim(value.PrimU8)
	unit := r.Add("()", value.TypeDef{Kind: value.DefComposite})

	moduleError := r.Add("sp_runtime::ModuleError", value.TypeDef{Kind: value.DefComposite, Fields: []value.FieldDef{
		{Name: "index", Type: u8},
		{Name: "error", Type: r.Array(u8, 4)},
	}})
	token := r.Add("sp_runtime::TokenError", unitVariants(
		"FundsUnavailable", "OnlyProvider", "BelowMinimum", "CannotCreate", "UnknownAsset",
		"Frozen", "Unsupported", "CannotCreateHold", "NotExpendable", "Blocked"))
	arith := r.Add("sp_arithmetic::ArithmeticError", unitVariants("Underflow", "Overflow", "DivisionByZero"))
	transactional := r.Add("sp_runtime::TransactionalError", unitVariants("LimitReached", "NoLayer"))
	trie := r.Add("sp_runtime::TrieError", unitVariants(
		"InvalidStateRoot", "IncompleteDatabase", "ValueAtIncompleteKey", "DecoderError", "InvalidHash",
		"DuplicateKey", "ExtraneousNode", "ExtraneousValue", "ExtraneousHashReference",
		"InvalidChildReference", "ValueMismatch", "IncompleteProof", "RootMismatch", "DecodeError"))

	wrap := func(t value.TypeID) []value.FieldDef { return []value.FieldDef{{Type: t}} }

	dispatchErr := r.Add(TypeDispatchError, value.TypeDef{Kind: value.DefVariant, Variants: []value.VariantDef{
		{Index: 0, Name: "Other"},
		{Index: 1, Name: "CannotLookup"},
		{Index: 2, Name: "BadOrigin"},
		{Index: 3, Name: "Module", Fields: wrap(moduleError)},
		{Index: 4, Name: "ConsumerRemaining"},
		{Index: 5, Name: "NoProviders"},
		{Index: 6, Name: "TooManyConsumers"},
		{Index: 7, Name: "Token", Fields: wrap(token)},
		{Index: 8, Name: "Arithmetic", Fields: wrap(arith)},
		{Index: 9, Name: "Transactional", Fields: wrap(transactional)},
		{Index: 10, Name: "Exhausted"},
		{Index: 11, Name: "Corruption"},
		{Index: 12, Name: "Unavailable"},
		{Index: 13, Name: "RootNotAllowed"},
		{Index: 14, Name: "Trie", Fields: wrap(trie)},
	}})

	invalid := r.Add("sp_runtime::InvalidTransaction", value.TypeDef{Kind: value.DefVariant, Variants: []value.VariantDef{
		{Index: 0, Name: "Call"},
		{Index: 1, Name: "Payment"},
		{Index: 2, Name: "Future"},
		{Index: 3, Name: "Stale"},
		{Index: 4, Name: "BadProof"},
		{Index: 5, Name: "AncientBirthBlock"},
		{Index: 6, Name: "ExhaustsResources"},
		{Index: 7, Name: "Custom", Fields: wrap(u8)},
		{Index: 8, Name: "BadMandatory"},
		{Index: 9, Name: "MandatoryValidation"},
		{Index: 10, Name: "BadSigner"},
		{Index: 11, Name: "IndeterminateImplicit"},
		{Index: 12, Name: "UnknownOrigin"},
	}})
	unknown := r.Add("sp_runtime::UnknownTransaction", value.TypeDef{Kind: value.DefVariant, Variants: []value.VariantDef{
		{Index: 0, Name: "CannotLookup"},
		{Index: 1, Name: "NoUnsignedValidator"},
		{Index: 2, Name: "Custom", Fields: wrap(u8)},
	}})
	validity := r.Add(TypeTransactionValidityError, value.TypeDef{Kind: value.DefVariant, Variants: []value.VariantDef{
		{Index: 0, Name: "Invalid", Fields: wrap(invalid)},
		{Index: 1, Name: "Unknown", Fields: wrap(unknown)},
	}})

	result := func(name string, ok, err value.TypeID) value.TypeID {
		return r.Add(name, value.TypeDef{Kind: value.DefVariant, Variants: []value.VariantDef{
			{Index: 0, Name: "Ok", Fields: wrap(ok)},
			{Index: 1, Name: "Err", Fields: wrap(err)},
		}})
	}
	dispatchOutcome := result("sp_runtime::DispatchOutcome", unit, dispatchErr)
	result(TypeApplyExtrinsicResult, dispatchOutcome, validity)
}
