package codec

import (
	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/internal/scalebuf"
	"github.com/dynascale/scalekit/typeregistry"
	"github.com/dynascale/scalekit/value"
)

// alignFields matches a composite value's fields against a type's declared
// fields, in field order. Plain composite fields require an exact shape
// match (Named type fields need a Named value matched by name; Unnamed
// type fields need an Unnamed value matched by position). Variant fields
// additionally accept the other value shape when lengths align, per the
// documented coercion ("For variant fields, both shapes are acceptable
// where position aligns").
func alignFields(op string, fields []typeregistry.Field, c value.Composite, allowPositionalFallback bool) ([]value.Value, error) {
	named := fieldsAreNamed(fields)
	if named {
		if c.Shape == value.Named {
			return alignNamed(op, fields, c.Named)
		}
		if allowPositionalFallback && len(c.Unnamed) == len(fields) {
			return append([]value.Value(nil), c.Unnamed...), nil
		}
		return nil, chainerr.Shapef(op, 0, "", "expected a named composite value")
	}
	if c.Shape == value.Unnamed {
		if len(c.Unnamed) != len(fields) {
			return nil, chainerr.Capacityf(op, "expected %d positional fields, got %d", len(fields), len(c.Unnamed))
		}
		return append([]value.Value(nil), c.Unnamed...), nil
	}
	if allowPositionalFallback && len(c.Named) == len(fields) {
		out := make([]value.Value, len(c.Named))
		for i, f := range c.Named {
			out[i] = f.Value
		}
		return out, nil
	}
	return nil, chainerr.Shapef(op, 0, "", "expected an unnamed (positional) composite value")
}

func fieldsAreNamed(fields []typeregistry.Field) bool {
	for _, f := range fields {
		if f.Named() {
			return true
		}
	}
	return false
}

func alignNamed(op string, fields []typeregistry.Field, given []value.NamedField) ([]value.Value, error) {
	byName := make(map[string]value.Value, len(given))
	for _, f := range given {
		byName[f.Name] = f.Value
	}
	out := make([]value.Value, len(fields))
	seen := make(map[string]bool, len(fields))
	for i, f := range fields {
		v, ok := byName[f.Name]
		if !ok {
			return nil, chainerr.NotFoundf(op, f.Name, "composite fields")
		}
		out[i] = v
		seen[f.Name] = true
	}
	for name := range byName {
		if !seen[name] {
			return nil, chainerr.Shapef(op, 0, "", "unknown field %q", name)
		}
	}
	return out, nil
}

// encodeComposite encodes v against a Composite definition's fields,
// applying the single-field transparent-unwrap coercion when v is not
// itself a composite.
func encodeComposite(buf *scalebuf.Buffer, v value.Value, fields []typeregistry.Field, reg *typeregistry.Registry) error {
	if v.Shape() == value.ShapeComposite {
		vals, err := alignFields("codec.Encode", fields, v.AsComposite(), false)
		if err != nil {
			return err
		}
		for i, f := range fields {
			if err := encodeInto(buf, vals[i], f.Type, reg); err != nil {
				return err
			}
		}
		return nil
	}
	if len(fields) == 1 {
		return encodeInto(buf, v, fields[0].Type, reg)
	}
	return chainerr.Shapef("codec.Encode", 0, "", "expected a composite value with %d fields, got %v", len(fields), v.Shape())
}

func decodeComposite(cur *scalebuf.Cursor, fields []typeregistry.Field, reg *typeregistry.Registry) (value.Value, error) {
	named := fieldsAreNamed(fields)
	if named {
		out := make([]value.NamedField, len(fields))
		for i, f := range fields {
			fv, err := decodeFrom(cur, f.Type, reg)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = value.NamedField{Name: f.Name, Value: fv}
		}
		return value.NewNamedComposite(out...), nil
	}
	out := make([]value.Value, len(fields))
	for i, f := range fields {
		fv, err := decodeFrom(cur, f.Type, reg)
		if err != nil {
			return value.Value{}, err
		}
		out[i] = fv
	}
	return value.NewComposite(out...), nil
}

func encodeVariant(buf *scalebuf.Buffer, v value.Value, variants []typeregistry.VariantDef, reg *typeregistry.Registry) error {
	if v.Shape() != value.ShapeVariant {
		return chainerr.Shapef("codec.Encode", 0, "", "expected a variant value, got %v", v.Shape())
	}
	for _, vd := range variants {
		if vd.Name != v.VariantName() {
			continue
		}
		buf.WriteByte(vd.Index)
		vals, err := alignFields("codec.Encode", vd.Fields, v.VariantFields(), true)
		if err != nil {
			return err
		}
		for i, f := range vd.Fields {
			if err := encodeInto(buf, vals[i], f.Type, reg); err != nil {
				return err
			}
		}
		return nil
	}
	return chainerr.NotFoundf("codec.Encode", v.VariantName(), "variant")
}

func decodeVariant(cur *scalebuf.Cursor, variants []typeregistry.VariantDef, reg *typeregistry.Registry) (value.Value, error) {
	idx, err := cur.Byte()
	if err != nil {
		return value.Value{}, err
	}
	for _, vd := range variants {
		if vd.Index != idx {
			continue
		}
		named := fieldsAreNamed(vd.Fields)
		if named {
			out := make([]value.NamedField, len(vd.Fields))
			for i, f := range vd.Fields {
				fv, err := decodeFrom(cur, f.Type, reg)
				if err != nil {
					return value.Value{}, err
				}
				out[i] = value.NamedField{Name: f.Name, Value: fv}
			}
			return value.NamedVariant(vd.Name, out...), nil
		}
		out := make([]value.Value, len(vd.Fields))
		for i, f := range vd.Fields {
			fv, err := decodeFrom(cur, f.Type, reg)
			if err != nil {
				return value.Value{}, err
			}
			out[i] = fv
		}
		return value.Variant(vd.Name, out...), nil
	}
	return value.Value{}, chainerr.Shapef("codec.Decode", 0, "", "unknown variant discriminant 0x%02x", idx)
}
