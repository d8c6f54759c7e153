package value

import (
	"math"

	"github.com/holiman/uint256"
	"golang.org/x/xerrors"

	"github.com/trie-migrate/westend-migrate/lib/scale"
)

// Decode reads a value of type id, tagging every node with its TypeID.
func (r *Registry) Decode(id TypeID, d *scale.Decoder) (Value[TypeID], error) {
	def, err := r.Def(id)
	if err != nil {
		return Value[TypeID]{}, err
	}

	var out Value[TypeID]
	switch def.Kind {
	case DefPrimitive:
		out, err = decodePrim(def.Primitive, d)
	case DefCompact:
		var n uint64
		n, err = d.Compact()
		out = Uint[TypeID](n)
	case DefComposite:
		out = Composite[TypeID]()
		out.Fields, err = r.decodeFields(def.Fields, d)
	case DefVariant:
		var idx uint8
		if idx, err = d.U8(); err != nil {
			break
		}
		vd, ok := def.variantByIndex(idx)
		if !ok {
			return out, xerrors.Errorf("type %d: unknown variant index %d", id, idx)
		}
		out = Variant[TypeID](vd.Name)
		out.Fields, err = r.decodeFields(vd.Fields, d)
	case DefSequence, DefArray:
		out, err = r.decodeSeq(def, d)
	default:
		return out, xerrors.Errorf("type %d: unsupported def kind %d", id, def.Kind)
	}
	if err != nil {
		return Value[TypeID]{}, xerrors.Errorf("decoding type %d: %w", id, err)
	}
	out.Context = id
	return out, nil
}

// DecodeBytes decodes b as a value of type id. Trailing bytes are an error.
func (r *Registry) DecodeBytes(id TypeID, b []byte) (Value[TypeID], error) {
	d := scale.NewDecoder(b)
	v, err := r.Decode(id, d)
	if err != nil {
		return v, err
	}
	if d.Remaining() != 0 {
		return v, xerrors.Errorf("%d trailing bytes after type %d", d.Remaining(), id)
	}
	return v, nil
}

func (r *Registry) decodeFields(defs []FieldDef, d *scale.Decoder) ([]Field[TypeID], error) {
	if len(defs) == 0 {
		return nil, nil
	}
	fields := make([]Field[TypeID], len(defs))
	for i, fd := range defs {
		v, err := r.Decode(fd.Type, d)
		if err != nil {
			return nil, err
		}
		fields[i] = Field[TypeID]{Name: fd.Name, Value: v}
	}
	return fields, nil
}

func (r *Registry) isByte(id TypeID) bool {
	def, err := r.Def(id)
	return err == nil && def.Kind == DefPrimitive && def.Primitive == PrimU8
}

func (r *Registry) decodeSeq(def TypeDef, d *scale.Decoder) (Value[TypeID], error) {
	n := def.Len
	if def.Kind == DefSequence {
		l, err := d.Compact()
		if err != nil {
			return Value[TypeID]{}, err
		}
		if l > uint64(d.Remaining()) {
			return Value[TypeID]{}, scale.ErrShortInput
		}
		n = int(l)
	}

	if r.isByte(def.Elem) {
		raw, err := d.Raw(n)
		if err != nil {
			return Value[TypeID]{}, err
		}
		return Bytes[TypeID](append([]byte(nil), raw...)), nil
	}

	out := Composite[TypeID]()
	out.Fields = make([]Field[TypeID], 0, n)
	for i := 0; i < n; i++ {
		v, err := r.Decode(def.Elem, d)
		if err != nil {
			return Value[TypeID]{}, err
		}
		out.Fields = append(out.Fields, Unnamed(v))
	}
	return out, nil
}

func decodePrim(p Primitive, d *scale.Decoder) (Value[TypeID], error) {
	switch p {
	case PrimU8:
		v, err := d.U8()
		return Uint[TypeID](uint64(v)), err
	case PrimU16:
		v, err := d.U16()
		return Uint[TypeID](uint64(v)), err
	case PrimU32:
		v, err := d.U32()
		return Uint[TypeID](uint64(v)), err
	case PrimU64:
		v, err := d.U64()
		return Uint[TypeID](v), err
	case PrimU128:
		v, err := d.U128()
		return U128[TypeID](v), err
	case PrimBool:
		v, err := d.Bool()
		return Bool[TypeID](v), err
	default:
		return Value[TypeID]{}, xerrors.Errorf("unsupported primitive %d", p)
	}
}

// Encode writes v as type id. Composites are matched by field name when the
// type has named fields, positionally otherwise; variants by name.
func Encode[C any](r *Registry, id TypeID, v Value[C], e *scale.Encoder) error {
	def, err := r.Def(id)
	if err != nil {
		return err
	}

	switch def.Kind {
	case DefPrimitive:
		return encodePrim(def.Primitive, v, e)
	case DefCompact:
		n, err := asUint(v, math.MaxUint64)
		if err != nil {
			return err
		}
		e.PutCompact(n)
		return nil
	case DefComposite:
		return encodeFields(r, def.Fields, v, e)
	case DefVariant:
		if v.Kind != KindVariant {
			return xerrors.Errorf("type %d: expected variant, got %s", id, v.Kind)
		}
		vd, ok := def.variantByName(v.Variant)
		if !ok {
			return xerrors.Errorf("type %d: no variant named %q", id, v.Variant)
		}
		e.PutU8(vd.Index)
		return encodeFields(r, vd.Fields, v, e)
	case DefSequence, DefArray:
		return encodeSeq(r, def, v, e)
	default:
		return xerrors.Errorf("type %d: unsupported def kind %d", id, def.Kind)
	}
}

// EncodeToBytes is Encode into a fresh buffer.
func EncodeToBytes[C any](r *Registry, id TypeID, v Value[C]) ([]byte, error) {
	e := scale.NewEncoder()
	if err := Encode(r, id, v, e); err != nil {
		return nil, err
	}
	return e.Bytes(), nil
}

func encodeFields[C any](r *Registry, defs []FieldDef, v Value[C], e *scale.Encoder) error {
	if len(defs) > 0 && v.Kind != KindComposite && v.Kind != KindVariant {
		return xerrors.Errorf("expected %d fields, got %s", len(defs), v.Kind)
	}
	named := len(defs) > 0 && defs[0].Name != ""
	if !named && len(v.Fields) != len(defs) {
		return xerrors.Errorf("expected %d fields, got %d", len(defs), len(v.Fields))
	}
	for i, fd := range defs {
		var fv Value[C]
		if named {
			var ok bool
			if fv, ok = v.Field(fd.Name); !ok {
				return xerrors.Errorf("missing field %q", fd.Name)
			}
		} else {
			fv = v.Fields[i].Value
		}
		if err := Encode(r, fd.Type, fv, e); err != nil {
			if fd.Name != "" {
				return xerrors.Errorf("field %q: %w", fd.Name, err)
			}
			return xerrors.Errorf("field %d: %w", i, err)
		}
	}
	return nil
}

func encodeSeq[C any](r *Registry, def TypeDef, v Value[C], e *scale.Encoder) error {
	if v.Kind == KindBytes {
		if !r.isByte(def.Elem) {
			return xerrors.Errorf("byte string for non-byte sequence")
		}
		if def.Kind == DefArray && len(v.Bytes) != def.Len {
			return xerrors.Errorf("array wants %d bytes, got %d", def.Len, len(v.Bytes))
		}
		if def.Kind == DefSequence {
			e.PutCompact(uint64(len(v.Bytes)))
		}
		e.PutRaw(v.Bytes)
		return nil
	}

	if v.Kind != KindComposite {
		return xerrors.Errorf("expected sequence, got %s", v.Kind)
	}
	if def.Kind == DefArray && len(v.Fields) != def.Len {
		return xerrors.Errorf("array wants %d items, got %d", def.Len, len(v.Fields))
	}
	if def.Kind == DefSequence {
		e.PutCompact(uint64(len(v.Fields)))
	}
	for i, f := range v.Fields {
		if err := Encode(r, def.Elem, f.Value, e); err != nil {
			return xerrors.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

func asUint[C any](v Value[C], limit uint64) (uint64, error) {
	var n uint64
	switch v.Kind {
	case KindUint:
		n = v.Uint
	case KindU128:
		if v.Big == nil {
			return 0, nil
		}
		if !v.Big.IsUint64() {
			return 0, scale.ErrOverflow
		}
		n = v.Big.Uint64()
	default:
		return 0, xerrors.Errorf("expected integer, got %s", v.Kind)
	}
	if n > limit {
		return 0, scale.ErrOverflow
	}
	return n, nil
}

func encodePrim[C any](p Primitive, v Value[C], e *scale.Encoder) error {
	switch p {
	case PrimBool:
		if v.Kind != KindBool {
			return xerrors.Errorf("expected bool, got %s", v.Kind)
		}
		e.PutBool(v.Bool)
		return nil
	case PrimU128:
		switch v.Kind {
		case KindU128:
			return e.PutU128(v.Big)
		case KindUint:
			return e.PutU128(uint256.NewInt(v.Uint))
		}
		return xerrors.Errorf("expected integer, got %s", v.Kind)
	}

	var limit uint64
	switch p {
	case PrimU8:
		limit = math.MaxUint8
	case PrimU16:
		limit = math.MaxUint16
	case PrimU32:
		limit = math.MaxUint32
	case PrimU64:
		limit = math.MaxUint64
	default:
		return xerrors.Errorf("unsupported primitive %d", p)
	}
	n, err := asUint(v, limit)
	if err != nil {
		return err
	}
	switch p {
	case PrimU8:
		e.PutU8(uint8(n))
	case PrimU16:
		e.PutU16(uint16(n))
	case PrimU32:
		e.PutU32(uint32(n))
	case PrimU64:
		e.PutU64(n)
	}
	return nil
}
