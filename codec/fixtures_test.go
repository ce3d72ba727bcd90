package codec_test

import "github.com/dynascale/scalekit/typeregistry"

// Fixed ids for a small hand-built registry shared across codec tests.
// Kept in one file so every test can refer to the same shapes by name.
const (
	idBool typeregistry.TypeID = iota
	idU8
	idU16
	idU32
	idU64
	idU128
	idI8
	idI32
	idChar
	idStr
	idCompactU128
	idTupleCompactBool
	idVariantFooBar
	idSeqU8
	idArrU8x32
	idBitOrderLsb0
	idBitOrderMsb0
	idBitSeqLsb0U8
	idBitSeqMsb0U8
	idBitSeqLsb0U16
	idBitSeqMsb0U16
	idBitSeqLsb0U32
	idBitSeqMsb0U64
	idWrapperU32
	idSeqWrapperU32
	idCallDest
	idCallTransfer
)

func buildFixtureRegistry() *typeregistry.Registry {
	descs := make([]typeregistry.TypeDescriptor, idCallTransfer+1)

	prim := func(id typeregistry.TypeID, k typeregistry.PrimitiveKind) {
		descs[id] = typeregistry.TypeDescriptor{Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: k}}
	}
	prim(idBool, typeregistry.Bool)
	prim(idU8, typeregistry.U8)
	prim(idU16, typeregistry.U16)
	prim(idU32, typeregistry.U32)
	prim(idU64, typeregistry.U64)
	prim(idU128, typeregistry.U128)
	prim(idI8, typeregistry.I8)
	prim(idI32, typeregistry.I32)
	prim(idChar, typeregistry.Char)
	prim(idStr, typeregistry.Str)

	descs[idCompactU128] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindCompact, Element: idU128},
	}
	descs[idTupleCompactBool] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindTuple, Tuple: []typeregistry.TypeID{idCompactU128, idBool}},
	}
	descs[idVariantFooBar] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: []typeregistry.VariantDef{
			{Name: "Foo", Index: 1},
			{Name: "Bar", Index: 0, Fields: []typeregistry.Field{{Type: idBool}}},
		}},
	}
	descs[idSeqU8] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindSequence, Element: idU8},
	}
	descs[idArrU8x32] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindArray, Element: idU8, Length: 32},
	}
	descs[idBitOrderLsb0] = typeregistry.TypeDescriptor{Path: []string{"bitvec", "order", "Lsb0"}}
	descs[idBitOrderMsb0] = typeregistry.TypeDescriptor{Path: []string{"bitvec", "order", "Msb0"}}
	descs[idBitSeqLsb0U8] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindBitSequence, BitOrderType: idBitOrderLsb0, BitStoreType: idU8},
	}
	descs[idBitSeqMsb0U8] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindBitSequence, BitOrderType: idBitOrderMsb0, BitStoreType: idU8},
	}
	descs[idBitSeqLsb0U16] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindBitSequence, BitOrderType: idBitOrderLsb0, BitStoreType: idU16},
	}
	descs[idBitSeqMsb0U16] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindBitSequence, BitOrderType: idBitOrderMsb0, BitStoreType: idU16},
	}
	descs[idBitSeqLsb0U32] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindBitSequence, BitOrderType: idBitOrderLsb0, BitStoreType: idU32},
	}
	descs[idBitSeqMsb0U64] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindBitSequence, BitOrderType: idBitOrderMsb0, BitStoreType: idU64},
	}
	descs[idWrapperU32] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindComposite, Fields: []typeregistry.Field{{Name: "value", Type: idU32}}},
	}
	descs[idSeqWrapperU32] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindSequence, Element: idWrapperU32},
	}
	descs[idCallDest] = typeregistry.TypeDescriptor{Def: typeregistry.Definition{Kind: typeregistry.KindPrimitive, Primitive: typeregistry.U32}}
	descs[idCallTransfer] = typeregistry.TypeDescriptor{
		Def: typeregistry.Definition{Kind: typeregistry.KindVariant, Variants: []typeregistry.VariantDef{
			{Name: "transfer", Index: 7, Fields: []typeregistry.Field{
				{Name: "dest", Type: idCallDest},
				{Name: "value", Type: idCompactU128},
			}},
		}},
	}
	return typeregistry.New(descs)
}
