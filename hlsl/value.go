// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/visject/graph"
)

// Value is the currency of graph evaluation: a typed HLSL r-value expression.
// The text is always safe to paste into a larger expression; multi-token
// texts are parenthesized on creation, and Component/Cast wrap texts that
// would bind wrongly under member access.
type Value struct {
	// Type is the value's element type.
	Type graph.ValueType

	// Text is the HLSL expression. It references only constants, previously
	// emitted locals, declared parameters, and shader inputs (named "input").
	Text string
}

// True and False are the boolean literal values.
var (
	True  = Value{Type: graph.TypeBool, Text: "true"}
	False = Value{Type: graph.TypeBool, Text: "false"}
)

// NewValue creates a value from a type and an expression text.
func NewValue(t graph.ValueType, text string) Value {
	return Value{Type: t, Text: text}
}

// MakeBool returns a boolean literal value.
func MakeBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// MakeInt returns an integer literal value.
func MakeInt(v int32) Value {
	return Value{Type: graph.TypeInt, Text: strconv.FormatInt(int64(v), 10)}
}

// MakeUint returns an unsigned integer literal value.
func MakeUint(v uint32) Value {
	return Value{Type: graph.TypeUint, Text: strconv.FormatUint(uint64(v), 10)}
}

// MakeFloat returns a float literal value in the fixed 6-decimal form
// (0.8 renders as "0.800000").
func MakeFloat(v float32) Value {
	return Value{Type: graph.TypeFloat, Text: formatFloat(v)}
}

// MakeFloat2 returns a float2 constructor literal.
func MakeFloat2(x, y float32) Value {
	return Value{
		Type: graph.TypeFloat2,
		Text: fmt.Sprintf("float2(%s, %s)", formatFloat(x), formatFloat(y)),
	}
}

// MakeFloat3 returns a float3 constructor literal.
func MakeFloat3(x, y, z float32) Value {
	return Value{
		Type: graph.TypeFloat3,
		Text: fmt.Sprintf("float3(%s, %s, %s)", formatFloat(x), formatFloat(y), formatFloat(z)),
	}
}

// MakeFloat4 returns a float4 constructor literal.
func MakeFloat4(x, y, z, w float32) Value {
	return Value{
		Type: graph.TypeFloat4,
		Text: fmt.Sprintf("float4(%s, %s, %s, %s)", formatFloat(x), formatFloat(y), formatFloat(z), formatFloat(w)),
	}
}

// MakeColor returns an RGBA color literal (a float4 constructor).
func MakeColor(r, g, b, a float32) Value {
	v := MakeFloat4(r, g, b, a)
	v.Type = graph.TypeColor
	return v
}

func formatFloat(v float32) string {
	return fmt.Sprintf("%f", v)
}

// makeVector builds a literal of the given float type from the leading
// components of v.
func makeVector(t graph.ValueType, v [4]float32) Value {
	switch t {
	case graph.TypeFloat2:
		return MakeFloat2(v[0], v[1])
	case graph.TypeFloat3:
		return MakeFloat3(v[0], v[1], v[2])
	case graph.TypeFloat4:
		return MakeFloat4(v[0], v[1], v[2], v[3])
	case graph.TypeColor:
		return MakeColor(v[0], v[1], v[2], v[3])
	default:
		return MakeFloat(v[0])
	}
}

// Zero returns the zero value for a type. Object has no zero and yields an
// invalid value; Void zeroes to an empty material aggregate.
func Zero(t graph.ValueType) Value {
	switch t {
	case graph.TypeBool:
		return False
	case graph.TypeInt, graph.TypeUint:
		return Value{Type: t, Text: "0"}
	case graph.TypeFloat:
		return Value{Type: t, Text: "0"}
	case graph.TypeFloat2:
		return Value{Type: t, Text: "float2(0, 0)"}
	case graph.TypeFloat3:
		return Value{Type: t, Text: "float3(0, 0, 0)"}
	case graph.TypeFloat4, graph.TypeColor:
		return Value{Type: t, Text: "float4(0, 0, 0, 0)"}
	case graph.TypeVoid:
		return Value{Type: t, Text: "(Material)0"}
	default:
		return Value{}
	}
}

// One returns the one value for a type (true for Bool).
func One(t graph.ValueType) Value {
	switch t {
	case graph.TypeBool:
		return True
	case graph.TypeInt, graph.TypeUint, graph.TypeFloat:
		return Value{Type: t, Text: "1"}
	case graph.TypeFloat2:
		return Value{Type: t, Text: "float2(1, 1)"}
	case graph.TypeFloat3:
		return Value{Type: t, Text: "float3(1, 1, 1)"}
	case graph.TypeFloat4, graph.TypeColor:
		return Value{Type: t, Text: "float4(1, 1, 1, 1)"}
	default:
		return Value{}
	}
}

// IsInvalid reports whether the value carries no usable expression.
func (v Value) IsInvalid() bool {
	return v.Type == graph.TypeInvalid || v.Text == ""
}

// IsZero reports whether the expression is a literal zero of its type.
func (v Value) IsZero() bool {
	return isLiteral(v.Text, 0)
}

// IsOne reports whether the expression is a literal one of its type.
func (v Value) IsOne() bool {
	return isLiteral(v.Text, 1)
}

// isLiteral matches a scalar literal, "true"/"false", or a floatN
// constructor whose components all equal want.
func isLiteral(text string, want float64) bool {
	switch text {
	case "true":
		return want == 1
	case "false":
		return want == 0
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f == want
	}
	open := strings.IndexByte(text, '(')
	if open < 0 || !strings.HasSuffix(text, ")") || !strings.HasPrefix(text, "float") {
		return false
	}
	for _, part := range strings.Split(text[open+1:len(text)-1], ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || f != want {
			return false
		}
	}
	return true
}

// AsBool casts to Bool, yielding false on an impossible cast.
func (v Value) AsBool() Value { return v.as(graph.TypeBool) }

// AsInt casts to Int, yielding zero on an impossible cast.
func (v Value) AsInt() Value { return v.as(graph.TypeInt) }

// AsUint casts to Uint, yielding zero on an impossible cast.
func (v Value) AsUint() Value { return v.as(graph.TypeUint) }

// AsFloat casts to Float, yielding zero on an impossible cast.
func (v Value) AsFloat() Value { return v.as(graph.TypeFloat) }

// AsFloat2 casts to Float2, yielding zero on an impossible cast.
func (v Value) AsFloat2() Value { return v.as(graph.TypeFloat2) }

// AsFloat3 casts to Float3, yielding zero on an impossible cast.
func (v Value) AsFloat3() Value { return v.as(graph.TypeFloat3) }

// AsFloat4 casts to Float4, yielding zero on an impossible cast.
func (v Value) AsFloat4() Value { return v.as(graph.TypeFloat4) }

func (v Value) as(t graph.ValueType) Value {
	out, err := Cast(v, t)
	if err != nil {
		return Zero(t)
	}
	return out
}

// Component extracts the i-th component (0 = x) as a Float value. Scalars
// return themselves for i == 0.
func (v Value) Component(i int) Value {
	if i == 0 && !v.Type.IsVector() {
		return v.as(graph.TypeFloat)
	}
	if i < 0 || i >= v.Type.Components() {
		return Zero(graph.TypeFloat)
	}
	return Value{Type: graph.TypeFloat, Text: group(v.Text) + "." + string("xyzw"[i])}
}

// swizzle applies a component selector, typing the result by its length.
func (v Value) swizzle(sw string) Value {
	return Value{Type: graph.VectorOf(len(sw)), Text: group(v.Text) + "." + sw}
}

// Cast coerces a value to the target type following the graph type rules:
// scalars broadcast into vectors by swizzle, vectors truncate by swizzle or
// extend through constructors (Color fills .w with one), numeric kinds
// convert with HLSL cast prefixes, and Bool bridges through ternaries.
// Object and Void values only cast to themselves.
func Cast(v Value, to graph.ValueType) (Value, error) {
	if v.Type == to {
		return v, nil
	}
	if v.IsInvalid() {
		return Zero(to), nil
	}
	if to == graph.TypeInvalid || to == graph.TypeObject || to == graph.TypeVoid ||
		v.Type == graph.TypeObject || v.Type == graph.TypeVoid {
		return Value{}, errorf(ErrUnsupportedCast, "cannot cast %s to %s", v.Type, to)
	}

	switch {
	case to == graph.TypeBool:
		scalar := v
		if v.Type.IsVector() {
			scalar = v.Component(0)
		}
		return Value{Type: to, Text: "(" + scalar.Text + " != 0)"}, nil

	case v.Type == graph.TypeBool:
		var one, zero string
		switch to {
		case graph.TypeInt, graph.TypeUint:
			one, zero = "1", "0"
		default:
			one, zero = "1.0", "0.0"
		}
		scalar := Value{Type: scalarKind(to), Text: "(" + v.Text + " ? " + one + " : " + zero + ")"}
		if !to.IsVector() {
			return scalar, nil
		}
		return Cast(scalar, to)

	case !v.Type.IsVector() && !to.IsVector():
		// Int, Uint, Float conversions.
		return Value{Type: to, Text: "(" + to.String() + ")" + group(v.Text)}, nil

	case !v.Type.IsVector():
		// Scalar to vector: convert the element kind, then broadcast.
		scalar := v
		if v.Type != graph.TypeFloat {
			scalar = v.as(graph.TypeFloat)
		}
		return Value{Type: to, Text: group(scalar.Text) + "." + "xxxx"[:to.Components()]}, nil

	case !to.IsVector():
		// Vector to scalar: take x, then convert the element kind.
		return Cast(v.Component(0), to)

	default:
		return castVector(v, to), nil
	}
}

func castVector(v Value, to graph.ValueType) Value {
	from, want := v.Type.Components(), to.Components()
	switch {
	case from == want:
		// Color <-> Float4: same layout, only the tag changes.
		return Value{Type: to, Text: v.Text}
	case from > want:
		return Value{Type: to, Text: group(v.Text) + "." + "xyzw"[:want]}
	default:
		fill := make([]string, 0, want-from)
		for i := from; i < want; i++ {
			if to == graph.TypeColor && i == 3 {
				fill = append(fill, "1")
			} else {
				fill = append(fill, "0")
			}
		}
		return Value{
			Type: to,
			Text: fmt.Sprintf("float%d(%s, %s)", want, v.Text, strings.Join(fill, ", ")),
		}
	}
}

// commonType picks the promotion target for a binary operation: the
// higher-ranked of the two operand types, ordered Bool < Int < Uint <
// Float < Float2 < Float3 < Float4 < Color.
func commonType(a, b graph.ValueType) graph.ValueType {
	if typeRank(b) > typeRank(a) {
		return b
	}
	return a
}

func typeRank(t graph.ValueType) int {
	switch t {
	case graph.TypeBool:
		return 0
	case graph.TypeInt:
		return 1
	case graph.TypeUint:
		return 2
	case graph.TypeFloat:
		return 3
	case graph.TypeFloat2:
		return 4
	case graph.TypeFloat3:
		return 5
	case graph.TypeFloat4:
		return 6
	case graph.TypeColor:
		return 7
	default:
		return -1
	}
}

func scalarKind(t graph.ValueType) graph.ValueType {
	switch t {
	case graph.TypeInt, graph.TypeUint, graph.TypeBool:
		return t
	default:
		return graph.TypeFloat
	}
}

// group wraps text in parentheses unless it already binds as a single
// postfix-safe token (identifier chain, call, index, or parenthesized
// group). Needed before swizzles and member access.
func group(text string) string {
	if isToken(text) {
		return text
	}
	return "(" + text + ")"
}

func isToken(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	if c != '(' && c != '_' && !isAlpha(c) {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch == '(' || ch == '[':
			depth++
		case ch == ')' || ch == ']':
			depth--
			if depth < 0 {
				return false
			}
			if depth == 0 && i != len(s)-1 && s[i+1] != '.' && s[i+1] != '[' && s[i+1] != '(' {
				return false
			}
		case depth > 0:
			// Anything goes inside parentheses or brackets.
		case isAlpha(ch) || isDigit(ch) || ch == '_' || ch == '.':
			// Identifier or member chain.
		default:
			return false
		}
	}
	return depth == 0
}

func isAlpha(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// variantValue converts a graph constant into a literal value. Guids,
// strings, blobs, and matrices have no expression form and come back
// invalid.
func variantValue(v graph.Variant) Value {
	switch c := v.(type) {
	case graph.BoolValue:
		return MakeBool(bool(c))
	case graph.IntValue:
		return MakeInt(int32(c))
	case graph.UintValue:
		return MakeUint(uint32(c))
	case graph.FloatValue:
		return MakeFloat(float32(c))
	case graph.Float2Value:
		return MakeFloat2(c[0], c[1])
	case graph.Float3Value:
		return MakeFloat3(c[0], c[1], c[2])
	case graph.Float4Value:
		return MakeFloat4(c[0], c[1], c[2], c[3])
	case graph.ColorValue:
		return MakeColor(c[0], c[1], c[2], c[3])
	default:
		return Value{}
	}
}
