// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/gogpu/visject/graph"
)

// mathIntrinsics1 maps unary math nodes (in box 0, out box 1) to HLSL
// intrinsics applied componentwise.
var mathIntrinsics1 = map[uint16]string{
	MathAbsolute:   "abs",
	MathCeil:       "ceil",
	MathCosine:     "cos",
	MathFloor:      "floor",
	MathNormalize:  "normalize",
	MathRound:      "round",
	MathSaturate:   "saturate",
	MathSine:       "sin",
	MathSqrt:       "sqrt",
	MathTangent:    "tan",
	MathArcSine:    "asin",
	MathArcCosine:  "acos",
	MathArcTangent: "atan",
	MathTrunc:      "trunc",
	MathFrac:       "frac",
	MathDegrees:    "degrees",
	MathRadians:    "radians",
}

// mathIntrinsics2 maps binary math nodes (in boxes 0 and 1, out box 2) to
// two-argument HLSL intrinsics.
var mathIntrinsics2 = map[uint16]string{
	MathPower:       "pow",
	MathMaximum:     "max",
	MathMinimum:     "min",
	MathFmod:        "fmod",
	MathStep:        "step",
	MathArcTangent2: "atan2",
	MathReflect:     "reflect",
}

// spaceTransforms maps (from, to) space pairs to conversion fragments with
// {0} as the vector. The diagonal is empty: same-space transforms pass the
// value through. Helper functions come from the material common include.
var spaceTransforms = [4][4]string{
	SpaceTangent: {
		SpaceWorld: "TransformTangentVectorToWorld(input, {0})",
		SpaceView:  "TransformWorldVectorToView(TransformTangentVectorToWorld(input, {0}))",
		SpaceLocal: "TransformWorldVectorToLocal(TransformTangentVectorToWorld(input, {0}))",
	},
	SpaceWorld: {
		SpaceTangent: "TransformWorldVectorToTangent(input, {0})",
		SpaceView:    "TransformWorldVectorToView({0})",
		SpaceLocal:   "TransformWorldVectorToLocal({0})",
	},
	SpaceView: {
		SpaceTangent: "TransformWorldVectorToTangent(input, TransformViewVectorToWorld({0}))",
		SpaceWorld:   "TransformViewVectorToWorld({0})",
		SpaceLocal:   "TransformWorldVectorToLocal(TransformViewVectorToWorld({0}))",
	},
	SpaceLocal: {
		SpaceTangent: "TransformWorldVectorToTangent(input, TransformLocalVectorToWorld({0}))",
		SpaceWorld:   "TransformLocalVectorToWorld({0})",
		SpaceView:    "TransformWorldVectorToView(TransformLocalVectorToWorld({0}))",
	},
}

// mathGroup handles arithmetic and intrinsic nodes. Every result goes
// through a local so a source shared by many sinks is computed once.
func mathGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	typ := node.TypeID()
	if fn, ok := mathIntrinsics1[typ]; ok {
		v := mathInput(c, node, 0)
		return c.w.WriteLocal(v.Type, fn+"({0})", v)
	}
	if fn, ok := mathIntrinsics2[typ]; ok {
		a, b := mathPair(c, node, box)
		return c.w.WriteLocal(a.Type, fn+"({0}, {1})", a, b)
	}

	switch typ {
	case MathAdd:
		return mathOperator(c, node, box, "+")
	case MathSubtract:
		return mathOperator(c, node, box, "-")
	case MathMultiply:
		return mathOperator(c, node, box, "*")
	case MathDivide:
		return mathDivision(c, node, box, "/")
	case MathModulo:
		return mathDivision(c, node, box, "%")

	case MathLength:
		v := mathInput(c, node, 0)
		return c.w.WriteLocal(graph.TypeFloat, "length({0})", v)

	case MathDot:
		a, b := mathPair(c, node, box)
		return c.w.WriteLocal(graph.TypeFloat, "dot({0}, {1})", a, b)

	case MathDistance:
		a, b := mathPair(c, node, box)
		return c.w.WriteLocal(graph.TypeFloat, "distance({0}, {1})", a, b)

	case MathCross:
		a := c.cast(c.tryValue(node, 0, 0), graph.TypeFloat3, node, box)
		b := c.cast(c.tryValue(node, 1, 1), graph.TypeFloat3, node, box)
		return c.w.WriteLocal(graph.TypeFloat3, "cross({0}, {1})", a, b)

	case MathNegate:
		v := mathInput(c, node, 0)
		return c.w.WriteLocal(v.Type, "-({0})", v)

	case MathOneMinus:
		v := mathInput(c, node, 0)
		return c.w.WriteLocal(v.Type, "1.0 - {0}", v)

	case MathClamp:
		v := mathInput(c, node, 0)
		lo := c.cast(c.tryValue(node, 1, 1), v.Type, node, box)
		hi := c.cast(c.tryValue(node, 2, 2), v.Type, node, box)
		return c.w.WriteLocal(v.Type, "clamp({0}, {1}, {2})", v, lo, hi)

	case MathLerp:
		a, b := mathPair(c, node, box)
		alpha := c.tryValue(node, 2, 2).AsFloat()
		return c.w.WriteLocal(a.Type, "lerp({0}, {1}, {2})", a, b, alpha)

	case MathSmoothstep:
		lo, hi := mathPair(c, node, box)
		v := c.cast(c.tryValue(node, 2, 2), lo.Type, node, box)
		return c.w.WriteLocal(lo.Type, "smoothstep({0}, {1}, {2})", lo, hi, v)

	case MathMad:
		a, b := mathPair(c, node, box)
		add := c.cast(c.tryValue(node, 2, 2), a.Type, node, box)
		return c.w.WriteLocal(a.Type, "mad({0}, {1}, {2})", a, b, add)

	case MathBiasScale:
		v := mathInput(c, node, 0)
		bias := c.cast(c.tryValue(node, 1, 1), v.Type, node, box)
		scale := c.cast(c.tryValue(node, 2, 2), v.Type, node, box)
		return c.w.WriteLocal(v.Type, "({0} + {1}) * {2}", v, bias, scale)

	case MathNearEqual:
		a, b := mathPair(c, node, box)
		eps := c.tryValue(node, 2, 2)
		if eps.IsInvalid() {
			eps = MakeFloat(1e-6)
		}
		return c.w.WriteLocal(graph.TypeBool, "all(abs({0} - {1}) <= {2})", a, b, eps.AsFloat())

	case MathDeriveNormalZ:
		xy := c.w.WriteLocal(graph.TypeFloat2, "{0}", c.cast(c.tryValue(node, 0, 0), graph.TypeFloat2, node, box))
		return c.w.WriteLocal(graph.TypeFloat3, "float3({0}, sqrt(saturate(1.0 - dot({0}, {0}))))", xy)

	case MathLargestComponentMask:
		v := c.w.WriteLocal(graph.TypeFloat3, "abs({0})", c.cast(c.tryValue(node, 0, 0), graph.TypeFloat3, node, box))
		return c.w.WriteLocal(graph.TypeFloat3,
			"({0}.x >= {0}.y && {0}.x >= {0}.z) ? float3(1, 0, 0) : (({0}.y >= {0}.z) ? float3(0, 1, 0) : float3(0, 0, 1))", v)

	case MathRemap:
		v := mathInput(c, node, 0)
		from := c.tryValue(node, 1, 1)
		if from.IsInvalid() {
			from = MakeFloat2(0, 1)
		}
		to := c.tryValue(node, 2, 2)
		if to.IsInvalid() {
			to = MakeFloat2(0, 1)
		}
		from = c.w.WriteLocal(graph.TypeFloat2, "{0}", from.AsFloat2())
		to = c.w.WriteLocal(graph.TypeFloat2, "{0}", to.AsFloat2())
		return c.w.WriteLocal(v.Type, "{1}.x + ({0} - {2}.x) * ({1}.y - {1}.x) / ({2}.y - {2}.x)", v, to, from)

	case MathRotateAboutAxis:
		axis := c.cast(c.tryValue(node, 0, 0), graph.TypeFloat3, node, box)
		angle := c.tryValue(node, 1, 1).AsFloat()
		pivot := c.cast(c.tryValue(node, 2, 2), graph.TypeFloat3, node, box)
		pos := c.cast(c.tryValue(node, 3, 3), graph.TypeFloat3, node, box)
		return c.w.WriteLocal(graph.TypeFloat3, "RotateAboutAxis(float4({0}, {1}), {2}, {3})", axis, angle, pivot, pos)

	case MathRotateVector:
		v := c.w.WriteLocal(graph.TypeFloat3, "{0}", c.cast(c.tryValue(node, 0, 0), graph.TypeFloat3, node, box))
		axis := c.tryValue(node, 1, 1)
		if axis.IsInvalid() {
			axis = MakeFloat3(0, 0, 1)
		}
		axis = c.w.WriteLocal(graph.TypeFloat3, "{0}", c.cast(axis, graph.TypeFloat3, node, box))
		angle := c.tryValue(node, 2, 2).AsFloat()
		cosA := c.w.WriteLocal(graph.TypeFloat, "cos({0})", angle)
		sinA := c.w.WriteLocal(graph.TypeFloat, "sin({0})", angle)
		return c.w.WriteLocal(graph.TypeFloat3,
			"{0} * {2} + cross({1}, {0}) * {3} + {1} * dot({1}, {0}) * (1.0 - {2})", v, axis, cosA, sinA)

	case MathTransformSpace:
		return mathTransformSpace(c, node, box)

	default:
		c.report(ErrInternal, node, box, "unknown math node type %d", typ)
		return Value{}
	}
}

// mathInput reads the primary operand, promoting Bool/Int/Uint scalars to
// Float so intrinsic results stay in float domain.
func mathInput(c *compilation, node *graph.Node, boxID uint8) Value {
	v := c.tryValue(node, boxID, int(boxID))
	if v.IsInvalid() {
		return Zero(graph.TypeFloat)
	}
	switch v.Type {
	case graph.TypeBool, graph.TypeInt, graph.TypeUint:
		return v.AsFloat()
	}
	return v
}

// mathPair reads both operands of a binary node and promotes them to their
// common type.
func mathPair(c *compilation, node *graph.Node, box *graph.Box) (Value, Value) {
	a := mathInput(c, node, 0)
	b := c.tryValue(node, 1, 1)
	if b.IsInvalid() {
		b = Zero(a.Type)
	}
	t := commonType(a.Type, b.Type)
	return c.cast(a, t, node, box), c.cast(b, t, node, box)
}

func mathOperator(c *compilation, node *graph.Node, box *graph.Box, op string) Value {
	a, b := mathPair(c, node, box)
	return c.w.WriteLocal(a.Type, "{0} "+op+" {1}", a, b)
}

// mathDivision guards the constant-zero divisor case: the node degrades to
// dividing by one and the graph keeps compiling.
func mathDivision(c *compilation, node *graph.Node, box *graph.Box, op string) Value {
	a, b := mathPair(c, node, box)
	if b.IsZero() {
		c.report(ErrDivideByZero, node, box, "Cannot divide by zero!")
		b = One(b.Type)
	}
	return c.w.WriteLocal(a.Type, "{0} "+op+" {1}", a, b)
}

func mathTransformSpace(c *compilation, node *graph.Node, box *graph.Box) Value {
	v := c.cast(c.tryValue(node, 0, -1), graph.TypeFloat3, node, box)
	from := node.IntValue(0)
	to := node.IntValue(1)
	if from < 0 || from > 3 || to < 0 || to > 3 {
		c.report(ErrInternal, node, box, "unknown transform space %d to %d", from, to)
		return Value{}
	}
	if from == to {
		return v
	}
	return c.w.WriteLocal(graph.TypeFloat3, spaceTransforms[from][to], v)
}
