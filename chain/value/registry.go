package value

import (
	"golang.org/x/xerrors"
)

// TypeID indexes a TypeDef in a Registry.
type TypeID uint32

type DefKind int

const (
	DefPrimitive DefKind = iota
	DefComposite
	DefVariant
	DefSequence
	DefArray
	DefCompact
)

type Primitive int

const (
	PrimU8 Primitive = iota
	PrimU16
	PrimU32
	PrimU64
	PrimU128
	PrimBool
)

// FieldDef is a member of a composite or variant.
type FieldDef struct {
	Name string
	Type TypeID
}

type VariantDef struct {
	Index  uint8
	Name   string
	Fields []FieldDef
}

// TypeDef describes the wire shape of a type.
type TypeDef struct {
	Kind DefKind

	Primitive Primitive
	Fields    []FieldDef
	Variants  []VariantDef

	// Elem is the element type of sequences, arrays and compacts.
	Elem TypeID
	// Len is the array length.
	Len int
}

func (d TypeDef) variantByName(name string) (VariantDef, bool) {
	for _, v := range d.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return VariantDef{}, false
}

func (d TypeDef) variantByIndex(idx uint8) (VariantDef, bool) {
	for _, v := range d.Variants {
		if v.Index == idx {
			return v, true
		}
	}
	return VariantDef{}, false
}

// Registry is a runtime type table, the moral equivalent of the type
// section of chain metadata.
type Registry struct {
	defs  []TypeDef
	names map[string]TypeID
}

func NewRegistry() *Registry {
	return &Registry{names: map[string]TypeID{}}
}

// Add registers def, optionally under a name, and returns its id.
func (r *Registry) Add(name string, def TypeDef) TypeID {
	id := TypeID(len(r.defs))
	r.defs = append(r.defs, def)
	if name != "" {
		r.names[name] = id
	}
	return id
}

func (r *Registry) Def(id TypeID) (TypeDef, error) {
	if int(id) >= len(r.defs) {
		return TypeDef{}, xerrors.Errorf("unknown type id %d", id)
	}
	return r.defs[id], nil
}

func (r *Registry) Lookup(name string) (TypeID, error) {
	id, ok := r.names[name]
	if !ok {
		return 0, xerrors.Errorf("type %q not registered", name)
	}
	return id, nil
}

// MustLookup is Lookup for names registered at init time.
func (r *Registry) MustLookup(name string) TypeID {
	id, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}
	return id
}

// Helpers for building registries.

func (r *Registry) Prim(p Primitive) TypeID {
	return r.Add("", TypeDef{Kind: DefPrimitive, Primitive: p})
}

func (r *Registry) Seq(elem TypeID) TypeID {
	return r.Add("", TypeDef{Kind: DefSequence, Elem: elem})
}

func (r *Registry) Array(elem TypeID, n int) TypeID {
	return r.Add("", TypeDef{Kind: DefArray, Elem: elem, Len: n})
}

func (r *Registry) Compact(elem TypeID) TypeID {
	return r.Add("", TypeDef{Kind: DefCompact, Elem: elem})
}
