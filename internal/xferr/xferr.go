// Package xferr decodes a runtime's DispatchError value tree into a typed
// Go error, matching the well-known shapes a FRAME-style runtime emits
// rather than leaving callers to pattern-match value.Value themselves.
//
// Supplemented from original_source/new/src/error.rs, which performs this
// same match on an already-decoded dispatch error before displaying it;
// spec.md §7 calls out dispatch-error decoding as its own path but the
// distillation doesn't enumerate the shape list.
package xferr

import (
	"fmt"

	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/value"
)

// Kind classifies a decoded DispatchError by its outer variant.
type Kind int

const (
	KindModule Kind = iota
	KindBadOrigin
	KindCannotLookup
	KindArithmetic
	KindToken
	KindTransactional
	KindOther
	KindUnrecognized
)

// DispatchError is the typed form of a decoded runtime dispatch failure.
type DispatchError struct {
	Kind Kind

	// KindModule
	PalletIndex uint8
	ErrorBytes  [4]byte

	// KindArithmetic / KindToken / KindTransactional: the name of the
	// nested variant (e.g. "Overflow", "FundsUnavailable", "NoFunds").
	Detail string

	// KindOther
	Message string

	// KindUnrecognized: the outer variant name that matched nothing known.
	RawVariant string
}

func (e *DispatchError) Error() string {
	switch e.Kind {
	case KindModule:
		return fmt.Sprintf("dispatch error: module %d error %x", e.PalletIndex, e.ErrorBytes)
	case KindBadOrigin:
		return "dispatch error: bad origin"
	case KindCannotLookup:
		return "dispatch error: cannot lookup"
	case KindArithmetic:
		return "dispatch error: arithmetic: " + e.Detail
	case KindToken:
		return "dispatch error: token: " + e.Detail
	case KindTransactional:
		return "dispatch error: transactional: " + e.Detail
	case KindOther:
		return "dispatch error: " + e.Message
	default:
		return "dispatch error: unrecognized shape " + e.RawVariant
	}
}

// Decode matches v (the decoded value of a chain's DispatchError type)
// against the shapes original_source/new/src/error.rs recognizes, falling
// back to a generic "unrecognized dispatch error shape" typed error when
// v is some pallet-specific or future variant this package doesn't know.
func Decode(v value.Value) (*DispatchError, error) {
	const op = "xferr.Decode"
	if v.Shape() != value.ShapeVariant {
		return nil, chainerr.Shapef(op, 0, "", "value is not a variant")
	}
	name := v.VariantName()
	fields := v.VariantFields()

	switch name {
	case "BadOrigin":
		return &DispatchError{Kind: KindBadOrigin}, nil
	case "CannotLookup":
		return &DispatchError{Kind: KindCannotLookup}, nil
	case "Module":
		idx, errBytes, err := decodeModuleFields(fields)
		if err != nil {
			return nil, chainerr.Wrap(op, err)
		}
		return &DispatchError{Kind: KindModule, PalletIndex: idx, ErrorBytes: errBytes}, nil
	case "Arithmetic":
		detail, err := innerVariantName(fields)
		if err != nil {
			return nil, chainerr.Wrap(op, err)
		}
		return &DispatchError{Kind: KindArithmetic, Detail: detail}, nil
	case "Token":
		detail, err := innerVariantName(fields)
		if err != nil {
			return nil, chainerr.Wrap(op, err)
		}
		return &DispatchError{Kind: KindToken, Detail: detail}, nil
	case "Transactional":
		detail, err := innerVariantName(fields)
		if err != nil {
			return nil, chainerr.Wrap(op, err)
		}
		return &DispatchError{Kind: KindTransactional, Detail: detail}, nil
	case "Other":
		msg, err := soleStringField(fields)
		if err != nil {
			return nil, chainerr.Wrap(op, err)
		}
		return &DispatchError{Kind: KindOther, Message: msg}, nil
	default:
		return &DispatchError{Kind: KindUnrecognized, RawVariant: name}, nil
	}
}

func decodeModuleFields(fields value.Composite) (uint8, [4]byte, error) {
	const op = "xferr.decodeModuleFields"
	var idx value.Value
	var errVal value.Value
	switch fields.Shape {
	case value.Named:
		for _, f := range fields.Named {
			switch f.Name {
			case "index":
				idx = f.Value
			case "error":
				errVal = f.Value
			}
		}
	default:
		if len(fields.Unnamed) < 2 {
			return 0, [4]byte{}, chainerr.Shapef(op, 0, "", "Module variant needs index and error fields")
		}
		idx, errVal = fields.Unnamed[0], fields.Unnamed[1]
	}
	if idx.Shape() != value.ShapeUint {
		return 0, [4]byte{}, chainerr.Shapef(op, 0, "", "Module.index is not an unsigned integer")
	}
	var out [4]byte
	if errVal.Shape() == value.ShapeComposite {
		c := errVal.AsComposite()
		if c.Shape != value.Unnamed || len(c.Unnamed) != 4 {
			return 0, [4]byte{}, chainerr.Shapef(op, 0, "", "Module.error is not a 4-byte array")
		}
		for i, b := range c.Unnamed {
			if b.Shape() != value.ShapeUint {
				return 0, [4]byte{}, chainerr.Shapef(op, 0, "", "Module.error byte is not an unsigned integer")
			}
			out[i] = byte(b.AsBigInt().Uint64())
		}
	} else {
		return 0, [4]byte{}, chainerr.Shapef(op, 0, "", "Module.error has unrecognized shape")
	}
	return uint8(idx.AsBigInt().Uint64()), out, nil
}

func innerVariantName(fields value.Composite) (string, error) {
	const op = "xferr.innerVariantName"
	var inner value.Value
	switch fields.Shape {
	case value.Named:
		if len(fields.Named) != 1 {
			return "", chainerr.Shapef(op, 0, "", "expected exactly one nested field")
		}
		inner = fields.Named[0].Value
	default:
		if len(fields.Unnamed) != 1 {
			return "", chainerr.Shapef(op, 0, "", "expected exactly one nested field")
		}
		inner = fields.Unnamed[0]
	}
	if inner.Shape() != value.ShapeVariant {
		return "", chainerr.Shapef(op, 0, "", "nested field is not a variant")
	}
	return inner.VariantName(), nil
}

func soleStringField(fields value.Composite) (string, error) {
	const op = "xferr.soleStringField"
	var inner value.Value
	switch fields.Shape {
	case value.Named:
		if len(fields.Named) != 1 {
			return "", chainerr.Shapef(op, 0, "", "expected exactly one string field")
		}
		inner = fields.Named[0].Value
	default:
		if len(fields.Unnamed) != 1 {
			return "", chainerr.Shapef(op, 0, "", "expected exactly one string field")
		}
		inner = fields.Unnamed[0]
	}
	if inner.Shape() != value.ShapeStr {
		return "", chainerr.Shapef(op, 0, "", "Other's field is not a string")
	}
	return inner.AsStr(), nil
}
