package graph

import (
	"io"

	"github.com/google/uuid"
)

// VariantType tags the serialized form of a node constant or parameter
// default. The numeric ids are part of the version 7000 wire format.
type VariantType int32

const (
	VariantNull VariantType = iota
	VariantBool
	VariantInt
	VariantUint
	VariantFloat
	VariantFloat2
	VariantFloat3
	VariantFloat4
	VariantColor
	VariantGuid
	VariantString
	VariantBlob
	VariantMatrix
)

// Variant is a tagged constant value stored in a node's value array or as a
// parameter default. The concrete types below implement it.
type Variant interface {
	variantType() VariantType
}

type (
	// NullValue is the absent value.
	NullValue struct{}

	// BoolValue is a boolean constant.
	BoolValue bool

	// IntValue is a signed integer constant.
	IntValue int32

	// UintValue is an unsigned integer constant.
	UintValue uint32

	// FloatValue is a float constant.
	FloatValue float32

	// Float2Value is a 2-component vector constant.
	Float2Value [2]float32

	// Float3Value is a 3-component vector constant.
	Float3Value [3]float32

	// Float4Value is a 4-component vector constant.
	Float4Value [4]float32

	// ColorValue is an RGBA color constant.
	ColorValue [4]float32

	// GuidValue is an asset or parameter reference.
	GuidValue uuid.UUID

	// StringValue is a UTF-8 string constant.
	StringValue string

	// BlobValue is raw binary data (curve tables, editor payloads).
	BlobValue []byte

	// MatrixValue is a row-major 4x4 matrix constant.
	MatrixValue [16]float32
)

func (NullValue) variantType() VariantType   { return VariantNull }
func (BoolValue) variantType() VariantType   { return VariantBool }
func (IntValue) variantType() VariantType    { return VariantInt }
func (UintValue) variantType() VariantType   { return VariantUint }
func (FloatValue) variantType() VariantType  { return VariantFloat }
func (Float2Value) variantType() VariantType { return VariantFloat2 }
func (Float3Value) variantType() VariantType { return VariantFloat3 }
func (Float4Value) variantType() VariantType { return VariantFloat4 }
func (ColorValue) variantType() VariantType  { return VariantColor }
func (GuidValue) variantType() VariantType   { return VariantGuid }
func (StringValue) variantType() VariantType { return VariantString }
func (BlobValue) variantType() VariantType   { return VariantBlob }
func (MatrixValue) variantType() VariantType { return VariantMatrix }

// TypeOf returns the variant tag, treating nil as VariantNull.
func TypeOf(v Variant) VariantType {
	if v == nil {
		return VariantNull
	}
	return v.variantType()
}

// EncodeVariant writes a single variant in the wire encoding used inside
// graph files. Shared with the hlsl package's parameter blob.
func EncodeVariant(w io.Writer, v Variant) error {
	e := &encoder{w: w}
	e.variant(v)
	return e.err
}

// DecodeVariant reads a single variant in the wire encoding.
func DecodeVariant(r io.Reader) (Variant, error) {
	d := &decoder{r: r}
	v := d.variant()
	if d.err != nil {
		return nil, d.err
	}
	return v, nil
}

// Value accessors on Node coerce between numeric variants so handlers do
// not care whether the editor stored 1 or 1.0.

// BoolValue returns the i-th node value as a bool.
func (n *Node) BoolValue(i int) bool {
	if i < 0 || i >= len(n.Values) {
		return false
	}
	switch v := n.Values[i].(type) {
	case BoolValue:
		return bool(v)
	case IntValue:
		return v != 0
	case UintValue:
		return v != 0
	case FloatValue:
		return v != 0
	default:
		return false
	}
}

// IntValue returns the i-th node value as an int.
func (n *Node) IntValue(i int) int32 {
	if i < 0 || i >= len(n.Values) {
		return 0
	}
	switch v := n.Values[i].(type) {
	case IntValue:
		return int32(v)
	case UintValue:
		return int32(v)
	case FloatValue:
		return int32(v)
	case BoolValue:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// UintValue returns the i-th node value as an unsigned int.
func (n *Node) UintValue(i int) uint32 {
	if i < 0 || i >= len(n.Values) {
		return 0
	}
	switch v := n.Values[i].(type) {
	case UintValue:
		return uint32(v)
	case IntValue:
		return uint32(v)
	case FloatValue:
		return uint32(v)
	case BoolValue:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// FloatValue returns the i-th node value as a float.
func (n *Node) FloatValue(i int) float32 {
	if i < 0 || i >= len(n.Values) {
		return 0
	}
	switch v := n.Values[i].(type) {
	case FloatValue:
		return float32(v)
	case IntValue:
		return float32(v)
	case UintValue:
		return float32(v)
	case BoolValue:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Float4ValueAt returns the i-th node value widened to four components.
// Scalars splat into x; missing components are zero.
func (n *Node) Float4ValueAt(i int) [4]float32 {
	if i < 0 || i >= len(n.Values) {
		return [4]float32{}
	}
	switch v := n.Values[i].(type) {
	case FloatValue:
		return [4]float32{float32(v)}
	case IntValue:
		return [4]float32{float32(v)}
	case Float2Value:
		return [4]float32{v[0], v[1]}
	case Float3Value:
		return [4]float32{v[0], v[1], v[2]}
	case Float4Value:
		return [4]float32(v)
	case ColorValue:
		return [4]float32(v)
	default:
		return [4]float32{}
	}
}

// GUIDValue returns the i-th node value as a GUID, or uuid.Nil.
func (n *Node) GUIDValue(i int) uuid.UUID {
	if i < 0 || i >= len(n.Values) {
		return uuid.Nil
	}
	if v, ok := n.Values[i].(GuidValue); ok {
		return uuid.UUID(v)
	}
	return uuid.Nil
}

// StringValueAt returns the i-th node value as a string, or "".
func (n *Node) StringValueAt(i int) string {
	if i < 0 || i >= len(n.Values) {
		return ""
	}
	if v, ok := n.Values[i].(StringValue); ok {
		return string(v)
	}
	return ""
}
