// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"math"
	"strings"

	"github.com/gogpu/visject/graph"
)

// constantsGroup handles literal nodes. Vector constants expose the whole
// vector on box 0 and single components on boxes 1..N, pulled straight
// from the stored value so a component tap does not drag the constructor
// text along.
func constantsGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	switch node.TypeID() {
	case ConstBool:
		return MakeBool(node.BoolValue(0))
	case ConstFloat:
		return MakeFloat(node.FloatValue(0))
	case ConstInt:
		return MakeInt(node.IntValue(0))
	case ConstUint:
		return MakeUint(node.UintValue(0))
	case ConstPI:
		return MakeFloat(math.Pi)
	case ConstFloat2:
		return vectorConstant(node, box, graph.TypeFloat2)
	case ConstFloat3:
		return vectorConstant(node, box, graph.TypeFloat3)
	case ConstFloat4:
		return vectorConstant(node, box, graph.TypeFloat4)
	case ConstColor:
		return vectorConstant(node, box, graph.TypeColor)
	default:
		c.report(ErrInternal, node, box, "unknown constant node type %d", node.TypeID())
		return Value{}
	}
}

func vectorConstant(node *graph.Node, box *graph.Box, t graph.ValueType) Value {
	v := node.Float4ValueAt(0)
	if box.ID == 0 {
		switch t {
		case graph.TypeFloat2:
			return MakeFloat2(v[0], v[1])
		case graph.TypeFloat3:
			return MakeFloat3(v[0], v[1], v[2])
		case graph.TypeColor:
			return MakeColor(v[0], v[1], v[2], v[3])
		default:
			return MakeFloat4(v[0], v[1], v[2], v[3])
		}
	}
	i := int(box.ID) - 1
	if i >= t.Components() {
		return Value{}
	}
	return MakeFloat(v[i])
}

// channelMasks maps mask node types to swizzle selectors.
var channelMasks = map[uint16]string{
	MaskX:   "x",
	MaskY:   "y",
	MaskZ:   "z",
	MaskW:   "w",
	MaskXY:  "xy",
	MaskYZ:  "yz",
	MaskXZ:  "xz",
	MaskZW:  "zw",
	MaskXYZ: "xyz",
}

// packingGroup handles vector construction, splitting, channel masks and
// append. Everything emits inline expressions; constructors and swizzles
// are paste-safe without locals.
func packingGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	switch typ := node.TypeID(); typ {
	case PackFloat2:
		return packVector(c, node, graph.TypeFloat2)
	case PackFloat3:
		return packVector(c, node, graph.TypeFloat3)
	case PackFloat4:
		return packVector(c, node, graph.TypeFloat4)

	case UnpackFloat2:
		return unpackVector(c, node, box, graph.TypeFloat2)
	case UnpackFloat3:
		return unpackVector(c, node, box, graph.TypeFloat3)
	case UnpackFloat4:
		return unpackVector(c, node, box, graph.TypeFloat4)

	case MaskX, MaskY, MaskZ, MaskW, MaskXY, MaskYZ, MaskXZ, MaskZW, MaskXYZ:
		in := c.tryValueDefault(node, 0, Zero(graph.TypeFloat4)).AsFloat4()
		return in.swizzle(channelMasks[typ])

	case PackAppend:
		a := c.tryValueDefault(node, 0, Zero(graph.TypeFloat))
		b := c.tryValueDefault(node, 1, Zero(graph.TypeFloat))
		total := a.Type.Components() + b.Type.Components()
		if total < 2 || total > 4 {
			c.report(ErrUnsupportedCast, node, box, "cannot append %s and %s", a.Type, b.Type)
			return Value{}
		}
		if !a.Type.IsVector() {
			a = a.AsFloat()
		}
		if !b.Type.IsVector() {
			b = b.AsFloat()
		}
		out := graph.VectorOf(total)
		return NewValue(out, out.String()+"("+a.Text+", "+b.Text+")")

	default:
		c.report(ErrInternal, node, box, "unknown packing node type %d", typ)
		return Value{}
	}
}

// packVector builds a vector from component inputs on boxes 1..N; an
// unconnected box falls back to the node constant with the same index.
func packVector(c *compilation, node *graph.Node, t graph.ValueType) Value {
	parts := make([]string, 0, t.Components())
	for i := 0; i < t.Components(); i++ {
		comp := c.tryValue(node, uint8(i+1), i)
		if comp.IsInvalid() {
			comp = Zero(graph.TypeFloat)
		}
		parts = append(parts, comp.AsFloat().Text)
	}
	return NewValue(t, t.String()+"("+strings.Join(parts, ", ")+")")
}

// unpackVector splits the box 0 input across component outputs 1..N.
func unpackVector(c *compilation, node *graph.Node, box *graph.Box, t graph.ValueType) Value {
	in := c.tryValueDefault(node, 0, Zero(t))
	v, err := Cast(in, t)
	if err != nil {
		c.report(ErrUnsupportedCast, node, box, "cannot cast %s to %s", in.Type, t)
		return Value{}
	}
	i := int(box.ID) - 1
	if i < 0 || i >= t.Components() {
		return Value{}
	}
	return v.Component(i)
}

// booleanGroup handles logic nodes. Inputs coerce to bool and the results
// stay inline.
func booleanGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	if node.TypeID() == BoolNot {
		a := c.tryValue(node, 0, 0).AsBool()
		return NewValue(graph.TypeBool, "(!"+a.Text+")")
	}
	a := c.tryValue(node, 0, 0).AsBool()
	b := c.tryValue(node, 1, 1).AsBool()
	var format string
	switch node.TypeID() {
	case BoolAnd:
		format = "({0} && {1})"
	case BoolOr:
		format = "({0} || {1})"
	case BoolXor:
		format = "({0} != {1})"
	case BoolNor:
		format = "(!({0} || {1}))"
	case BoolNand:
		format = "(!({0} && {1}))"
	default:
		c.report(ErrInternal, node, box, "unknown boolean node type %d", node.TypeID())
		return Value{}
	}
	return NewValue(graph.TypeBool, expand(format, []any{a, b}))
}

// bitwiseGroup handles integer bit operations. Inputs coerce to int.
func bitwiseGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	if node.TypeID() == BitwiseNot {
		a := c.tryValue(node, 0, 0).AsInt()
		return NewValue(graph.TypeInt, "(~"+a.Text+")")
	}
	a := c.tryValue(node, 0, 0).AsInt()
	b := c.tryValue(node, 1, 1).AsInt()
	var op string
	switch node.TypeID() {
	case BitwiseAnd:
		op = "&"
	case BitwiseOr:
		op = "|"
	case BitwiseXor:
		op = "^"
	default:
		c.report(ErrInternal, node, box, "unknown bitwise node type %d", node.TypeID())
		return Value{}
	}
	return NewValue(graph.TypeInt, expand("({0} "+op+" {1})", []any{a, b}))
}

// comparisonsGroup handles relational nodes and the bool-driven selector.
func comparisonsGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	if node.TypeID() == SwitchOnBool {
		cond := c.tryValue(node, 0, 0).AsBool()
		onTrue := c.tryValue(node, 1, 1)
		onFalse := c.tryValue(node, 2, 2)
		if onTrue.IsInvalid() {
			return Value{}
		}
		onFalse = c.cast(onFalse, onTrue.Type, node, box)
		return NewValue(onTrue.Type, expand("({0} ? {1} : {2})", []any{cond, onTrue, onFalse}))
	}

	var op string
	switch node.TypeID() {
	case CompareEqual:
		op = "=="
	case CompareNotEqual:
		op = "!="
	case CompareGreater:
		op = ">"
	case CompareLess:
		op = "<"
	case CompareLessEqual:
		op = "<="
	case CompareGreaterEqual:
		op = ">="
	default:
		c.report(ErrInternal, node, box, "unknown comparison node type %d", node.TypeID())
		return Value{}
	}
	a := c.tryValue(node, 0, 0)
	b := c.tryValue(node, 1, 1)
	t := commonType(a.Type, b.Type)
	if t == graph.TypeInvalid {
		t = graph.TypeFloat
	}
	a = c.cast(a, t, node, box)
	b = c.cast(b, t, node, box)
	return NewValue(graph.TypeBool, expand("({0} "+op+" {1})", []any{a, b}))
}
