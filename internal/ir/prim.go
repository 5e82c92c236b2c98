package ir

import "fmt"

// PrimKind enumerates the primitive operator table. The enumeration is
// closed: lowering switches over it exhaustively and rejects nothing at
// runtime that validation has not already rejected.
type PrimKind int

const (
	// Integer arithmetic over boxed 32-bit values.
	PAddInt PrimKind = iota
	PSubInt
	PMulInt
	PDivInt
	PModInt
	PNegInt

	// Integer comparison; boxed 0/1 result. Parameterized by Cmp.
	PIntCmp

	// Float arithmetic over raw 64-bit values.
	PAddFloat
	PSubFloat
	PMulFloat
	PDivFloat
	PNegFloat

	// Float comparison; boxed 0/1 result. Parameterized by Cmp.
	PFloatCmp

	// Numeric conversions. Contract is implementation-defined beyond
	// "must not crash"; the saturating target instructions are used.
	PIntOfFloat
	PFloatOfInt

	// Block (record / variant payload) operations. PMakeBlock takes Tag
	// and Size; PField and PSetField take a field Index.
	PMakeBlock
	PField
	PSetField

	// Array operations. The unsafe variants skip the bounds check.
	PMakeArray
	PArrayLength
	PArrayGet
	PArraySet
	PArrayGetUnsafe
	PArraySetUnsafe

	// Variant introspection.
	PIsInt
	PGetTag

	// Foreign call by external name and declared arity.
	PCCall
)

// Cmp selects the relation of PIntCmp and PFloatCmp.
type Cmp int

const (
	CmpEq Cmp = iota
	CmpNe
	CmpLt
	CmpGt
	CmpLe
	CmpGe
)

// String returns the conventional spelling of the relation.
func (c Cmp) String() string {
	switch c {
	case CmpEq:
		return "=="
	case CmpNe:
		return "!="
	case CmpLt:
		return "<"
	case CmpGt:
		return ">"
	case CmpLe:
		return "<="
	case CmpGe:
		return ">="
	}
	return fmt.Sprintf("Cmp(%d)", int(c))
}

// Primitive is a primitive operator instance: a kind plus the kind's
// parameters. Unused parameter fields are zero.
type Primitive struct {
	Kind  PrimKind
	Cmp   Cmp    // PIntCmp, PFloatCmp
	Tag   int    // PMakeBlock
	Size  int    // PMakeBlock
	Index int    // PField, PSetField
	Name  string // PCCall: external name
	Arity int    // PCCall: declared operand count
}

// ArityOf returns the operator's fixed operand count.
func (p Primitive) ArityOf() int {
	switch p.Kind {
	case PAddInt, PSubInt, PMulInt, PDivInt, PModInt,
		PAddFloat, PSubFloat, PMulFloat, PDivFloat,
		PIntCmp, PFloatCmp:
		return 2
	case PNegInt, PNegFloat, PIntOfFloat, PFloatOfInt,
		PArrayLength, PIsInt, PGetTag, PField:
		return 1
	case PSetField:
		return 2
	case PArrayGet, PArrayGetUnsafe:
		return 2
	case PArraySet, PArraySetUnsafe:
		return 3
	case PMakeBlock:
		return p.Size
	case PMakeArray:
		return p.Size
	case PCCall:
		return p.Arity
	}
	return 0
}

// String returns a diagnostic mnemonic for the operator.
func (p Primitive) String() string {
	switch p.Kind {
	case PAddInt:
		return "addint"
	case PSubInt:
		return "subint"
	case PMulInt:
		return "mulint"
	case PDivInt:
		return "divint"
	case PModInt:
		return "modint"
	case PNegInt:
		return "negint"
	case PIntCmp:
		return fmt.Sprintf("intcmp %s", p.Cmp)
	case PAddFloat:
		return "addfloat"
	case PSubFloat:
		return "subfloat"
	case PMulFloat:
		return "mulfloat"
	case PDivFloat:
		return "divfloat"
	case PNegFloat:
		return "negfloat"
	case PFloatCmp:
		return fmt.Sprintf("floatcmp %s", p.Cmp)
	case PIntOfFloat:
		return "intoffloat"
	case PFloatOfInt:
		return "floatofint"
	case PMakeBlock:
		return fmt.Sprintf("makeblock %d/%d", p.Tag, p.Size)
	case PField:
		return fmt.Sprintf("field %d", p.Index)
	case PSetField:
		return fmt.Sprintf("setfield %d", p.Index)
	case PMakeArray:
		return fmt.Sprintf("makearray %d", p.Size)
	case PArrayLength:
		return "arraylength"
	case PArrayGet:
		return "arrayget"
	case PArraySet:
		return "arrayset"
	case PArrayGetUnsafe:
		return "arrayget.u"
	case PArraySetUnsafe:
		return "arrayset.u"
	case PIsInt:
		return "isint"
	case PGetTag:
		return "gettag"
	case PCCall:
		return fmt.Sprintf("ccall %s/%d", p.Name, p.Arity)
	}
	return fmt.Sprintf("prim(%d)", int(p.Kind))
}

// Convenience constructors for the parameterized operators.

// MakeBlock builds the block-construction primitive for tag and size.
func MakeBlock(tag, size int) Primitive {
	return Primitive{Kind: PMakeBlock, Tag: tag, Size: size}
}

// Field builds the field-read primitive for index.
func Field(index int) Primitive {
	return Primitive{Kind: PField, Index: index}
}

// SetField builds the field-write primitive for index.
func SetField(index int) Primitive {
	return Primitive{Kind: PSetField, Index: index}
}

// MakeArray builds the array-construction primitive for size elements.
func MakeArray(size int) Primitive {
	return Primitive{Kind: PMakeArray, Size: size}
}

// IntCmp builds the integer-comparison primitive for the relation.
func IntCmp(c Cmp) Primitive {
	return Primitive{Kind: PIntCmp, Cmp: c}
}

// FloatCmp builds the float-comparison primitive for the relation.
func FloatCmp(c Cmp) Primitive {
	return Primitive{Kind: PFloatCmp, Cmp: c}
}

// CCall builds the foreign-call primitive for an external name and arity.
func CCall(name string, arity int) Primitive {
	return Primitive{Kind: PCCall, Name: name, Arity: arity}
}
