package metadata

import (
	"github.com/dynascale/scalekit/chainerr"
	"github.com/dynascale/scalekit/codec"
	"github.com/dynascale/scalekit/typeregistry"
	"github.com/dynascale/scalekit/value"
)

// BuildExtra concatenates the on-wire encoding of every transaction
// extension in the chain declared for version (in chain order), each
// keyed by its Identifier in inputs. This is the "extra" byte string
// that travels in the extrinsic itself, alongside the call and envelope.
//
// Grounded on original_source/subxt/src/transaction.rs, which builds the
// signed payload and wire bytes the same way: walk the extension chain
// once per purpose (extra vs implicit), encoding each named input
// against its own type.
func (e ExtrinsicFormat) BuildExtra(version uint8, inputs map[string]value.Value, reg *typeregistry.Registry) ([]byte, error) {
	return e.buildChain(version, inputs, reg, func(ext TransactionExtension) typeregistry.TypeID { return ext.ExtraType })
}

// BuildImplicit concatenates the encoding of every transaction
// extension's implicit type for version, in chain order. Implicit bytes
// are mixed into the signed payload but never appear on the wire.
func (e ExtrinsicFormat) BuildImplicit(version uint8, inputs map[string]value.Value, reg *typeregistry.Registry) ([]byte, error) {
	return e.buildChain(version, inputs, reg, func(ext TransactionExtension) typeregistry.TypeID { return ext.ImplicitType })
}

func (e ExtrinsicFormat) buildChain(version uint8, inputs map[string]value.Value, reg *typeregistry.Registry, pick func(TransactionExtension) typeregistry.TypeID) ([]byte, error) {
	const op = "metadata.ExtrinsicFormat.buildChain"
	chain, ok := e.Extensions[version]
	if !ok {
		return nil, chainerr.NotFoundf(op, idVersionName(version), "extrinsic format")
	}
	var out []byte
	for _, ext := range chain {
		v, ok := inputs[ext.Identifier]
		if !ok {
			return nil, chainerr.NotFoundf(op, ext.Identifier, "extension inputs")
		}
		b, err := codec.Encode(v, pick(ext), reg)
		if err != nil {
			return nil, chainerr.Wrap(op, err)
		}
		out = append(out, b...)
	}
	return out, nil
}

// SignedPayload builds the bytes that get signed: call ++ extra ++
// implicit, per original_source/subxt/src/transaction.rs.
func (e ExtrinsicFormat) SignedPayload(version uint8, call []byte, inputs map[string]value.Value, reg *typeregistry.Registry) ([]byte, error) {
	extra, err := e.BuildExtra(version, inputs, reg)
	if err != nil {
		return nil, err
	}
	implicit, err := e.BuildImplicit(version, inputs, reg)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(call)+len(extra)+len(implicit))
	out = append(out, call...)
	out = append(out, extra...)
	out = append(out, implicit...)
	return out, nil
}

func idVersionName(v uint8) string {
	const hexDigits = "0123456789abcdef"
	return "0x" + string([]byte{hexDigits[v>>4], hexDigits[v&0xf]})
}
