package graph

// ValueType is the tagged type of a box value or an evaluated expression.
type ValueType uint8

const (
	// TypeInvalid marks an unset or failed value.
	TypeInvalid ValueType = iota

	// TypeBool is a boolean scalar.
	TypeBool

	// TypeInt is a signed 32-bit integer scalar.
	TypeInt

	// TypeUint is an unsigned 32-bit integer scalar.
	TypeUint

	// TypeFloat is a 32-bit float scalar.
	TypeFloat

	// TypeFloat2 is a 2-component float vector.
	TypeFloat2

	// TypeFloat3 is a 3-component float vector.
	TypeFloat3

	// TypeFloat4 is a 4-component float vector.
	TypeFloat4

	// TypeColor is an RGBA color, layout-identical to Float4.
	TypeColor

	// TypeObject is an opaque resource handle (texture, sampler state).
	// It has no numeric representation and cannot be cast.
	TypeObject

	// TypeVoid is the aggregate material value produced by layer nodes and
	// consumed by the material root.
	TypeVoid
)

// String returns the HLSL spelling of the type, or a marker for types that
// have no direct spelling.
func (t ValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeUint:
		return "uint"
	case TypeFloat:
		return "float"
	case TypeFloat2:
		return "float2"
	case TypeFloat3:
		return "float3"
	case TypeFloat4, TypeColor:
		return "float4"
	case TypeObject:
		return "object"
	case TypeVoid:
		return "Material"
	default:
		return "invalid"
	}
}

// Components returns the component count for numeric types and 0 otherwise.
func (t ValueType) Components() int {
	switch t {
	case TypeBool, TypeInt, TypeUint, TypeFloat:
		return 1
	case TypeFloat2:
		return 2
	case TypeFloat3:
		return 3
	case TypeFloat4, TypeColor:
		return 4
	default:
		return 0
	}
}

// IsNumeric reports whether the type is a scalar or vector number.
func (t ValueType) IsNumeric() bool {
	return t >= TypeBool && t <= TypeColor
}

// IsVector reports whether the type has more than one component.
func (t ValueType) IsVector() bool {
	return t.Components() > 1
}

// VectorOf returns the float vector type with the given component count.
// Counts outside 1..4 return TypeInvalid.
func VectorOf(components int) ValueType {
	switch components {
	case 1:
		return TypeFloat
	case 2:
		return TypeFloat2
	case 3:
		return TypeFloat3
	case 4:
		return TypeFloat4
	default:
		return TypeInvalid
	}
}
