// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strings"

	"github.com/gogpu/visject/graph"
)

// curveKey is one keyframe of a Bezier curve node, with tangents already
// scaled by a third of the neighboring segment duration so the emitted
// control points are plain additions.
type curveKey struct {
	time   float32
	value  [4]float32
	tanIn  [4]float32
	tanOut [4]float32
}

// readCurveKeys unpacks the keyframe table stored in the node values as
// values[0]=count then (time, value, tangentIn, tangentOut) per key, and
// pre-scales the tangents. TangentOut of key i acts in segment i -> i+1;
// tangentIn of key i in segment i-1 -> i.
func readCurveKeys(node *graph.Node) []curveKey {
	count := int(node.IntValue(0))
	if count < 0 {
		return nil
	}
	keys := make([]curveKey, count)
	for i := range keys {
		base := 1 + i*4
		keys[i] = curveKey{
			time:   node.FloatValue(base),
			value:  node.Float4ValueAt(base + 1),
			tanIn:  node.Float4ValueAt(base + 2),
			tanOut: node.Float4ValueAt(base + 3),
		}
	}
	for i := range keys {
		if i+1 < count {
			scale := (keys[i+1].time - keys[i].time) / 3
			for j := 0; j < 4; j++ {
				keys[i].tanOut[j] *= scale
			}
		}
		if i > 0 {
			scale := (keys[i].time - keys[i-1].time) / 3
			for j := 0; j < 4; j++ {
				keys[i].tanIn[j] *= scale
			}
		}
	}
	return keys
}

// bakeCurve lowers a curve node into HLSL evaluating it at the given time.
// Zero keys collapse to zero and one key to a constant. Two keys emit one
// cubic Bezier; more keys emit static key arrays with a binary search for
// the straddling segment. The Bezier itself is a de Casteljau lerp
// cascade, which keeps every step a plain lerp the compiler can fold.
func bakeCurve(c *compilation, node *graph.Node, t graph.ValueType, time Value) Value {
	keys := readCurveKeys(node)
	switch len(keys) {
	case 0:
		return Zero(t)
	case 1:
		return makeVector(t, keys[0].value)
	case 2:
		return bakeCurveSegment(c, t, time, keys[0], keys[1])
	default:
		return bakeCurveSearch(c, t, time, keys)
	}
}

// bakeCurveSegment handles the two-key curve: control points fold to
// literals at compile time.
func bakeCurveSegment(c *compilation, t graph.ValueType, time Value, k0, k1 curveKey) Value {
	dt := k1.time - k0.time
	if dt <= 0 {
		return makeVector(t, k1.value)
	}
	clamped := c.w.WriteLocal(graph.TypeFloat, "clamp({0}, {1}, {2})", time, MakeFloat(k0.time), MakeFloat(k1.time))
	alpha := c.w.WriteLocal(graph.TypeFloat, "({0} - {1}) * {2}", clamped, MakeFloat(k0.time), MakeFloat(1/dt))

	var p1, p2 [4]float32
	for j := 0; j < 4; j++ {
		p1[j] = k0.value[j] + k0.tanOut[j]
		p2[j] = k1.value[j] + k1.tanIn[j]
	}
	return bezierCascade(c, t,
		makeVector(t, k0.value), makeVector(t, p1),
		makeVector(t, p2), makeVector(t, k1.value), alpha)
}

// bakeCurveSearch handles N >= 3 keys: static arrays plus an upper-bound
// binary search for the last key at or before the time.
func bakeCurveSearch(c *compilation, t graph.ValueType, time Value, keys []curveKey) Value {
	n := len(keys)
	res := c.w.DeclareLocal(t)
	c.w.WriteLine("{")
	c.w.pushIndent()

	clamped := c.w.WriteLocal(graph.TypeFloat, "clamp({0}, {1}, {2})",
		time, MakeFloat(keys[0].time), MakeFloat(keys[n-1].time))

	times := c.writeCurveArray(graph.TypeFloat, n, func(i int) string {
		return MakeFloat(keys[i].time).Text
	})
	values := c.writeCurveArray(t, n, func(i int) string {
		return makeVector(t, keys[i].value).Text
	})
	tanIn := c.writeCurveArray(t, n, func(i int) string {
		return makeVector(t, keys[i].tanIn).Text
	})
	tanOut := c.writeCurveArray(t, n, func(i int) string {
		return makeVector(t, keys[i].tanOut).Text
	})

	// Search start in [0, n-2] so start+1 stays a valid key.
	start := c.w.WriteLocal(graph.TypeInt, "0")
	end := c.w.WriteLocal(graph.TypeInt, "{0}", MakeInt(int32(n-2)))
	c.w.WriteLine("while ({0} < {1})", start, end)
	c.w.WriteLine("{")
	c.w.pushIndent()
	mid := c.w.WriteLocal(graph.TypeInt, "({0} + {1} + 1) / 2", start, end)
	c.w.WriteLine("if ({0}[{1}] <= {2})", times, mid, clamped)
	c.w.pushIndent()
	c.w.WriteLine("{0} = {1};", start, mid)
	c.w.popIndent()
	c.w.WriteLine("else")
	c.w.pushIndent()
	c.w.WriteLine("{0} = {1} - 1;", end, mid)
	c.w.popIndent()
	c.w.popIndent()
	c.w.WriteLine("}")

	t0 := c.w.WriteLocal(graph.TypeFloat, "{0}[{1}]", times, start)
	t1 := c.w.WriteLocal(graph.TypeFloat, "{0}[{1} + 1]", times, start)
	alpha := c.w.WriteLocal(graph.TypeFloat, "saturate(({0} - {1}) / max({2} - {1}, 0.000001))", clamped, t0, t1)
	p0 := c.w.WriteLocal(t, "{0}[{1}]", values, start)
	p3 := c.w.WriteLocal(t, "{0}[{1} + 1]", values, start)
	p1 := c.w.WriteLocal(t, "{0} + {1}[{2}]", p0, tanOut, start)
	p2 := c.w.WriteLocal(t, "{0} + {1}[{2} + 1]", p3, tanIn, start)
	v := bezierCascade(c, t, p0, p1, p2, p3, alpha)
	c.w.WriteLine("{0} = {1};", res, v)

	c.w.popIndent()
	c.w.WriteLine("}")
	return res
}

// writeCurveArray declares a static array local initialized with n
// elements and returns its value.
func (c *compilation) writeCurveArray(t graph.ValueType, n int, elem func(int) string) Value {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = elem(i)
	}
	name := c.w.nextLocal()
	c.w.WriteLine("{0} {1}[{2}] = { {3} };", t.String(), name, MakeInt(int32(n)), strings.Join(parts, ", "))
	return NewValue(t, name)
}

// bezierCascade emits the de Casteljau evaluation of a cubic Bezier.
func bezierCascade(c *compilation, t graph.ValueType, p0, p1, p2, p3, alpha Value) Value {
	a := c.w.WriteLocal(t, "lerp({0}, {1}, {2})", p0, p1, alpha)
	b := c.w.WriteLocal(t, "lerp({0}, {1}, {2})", p1, p2, alpha)
	d := c.w.WriteLocal(t, "lerp({0}, {1}, {2})", p2, p3, alpha)
	ab := c.w.WriteLocal(t, "lerp({0}, {1}, {2})", a, b, alpha)
	bd := c.w.WriteLocal(t, "lerp({0}, {1}, {2})", b, d, alpha)
	return c.w.WriteLocal(t, "lerp({0}, {1}, {2})", ab, bd, alpha)
}
