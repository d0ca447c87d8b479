// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/gogpu/visject/graph"
)

// =============================================================================
// Helpers for curve tests
// =============================================================================

type testKey struct {
	time   float32
	value  float32
	tanIn  float32
	tanOut float32
}

// addCurveNode builds a float curve node: values hold the key count then
// (time, value, tangentIn, tangentOut) per key; sink 0 is the sample time,
// source 1 the sampled value.
func addCurveNode(g *graph.Graph, id uint32, keys ...testKey) *graph.Node {
	values := []graph.Variant{graph.IntValue(int32(len(keys)))}
	for _, k := range keys {
		values = append(values,
			graph.FloatValue(k.time),
			graph.FloatValue(k.value),
			graph.FloatValue(k.tanIn),
			graph.FloatValue(k.tanOut),
		)
	}
	n := g.AddNode(id, GroupTools, CurveFloat, values...)
	n.AddBox(graph.TypeFloat)
	n.AddBox(graph.TypeFloat)
	return n
}

func evalCurve(g *graph.Graph, curve *graph.Node) (Value, string) {
	c := newTestCompilation(g)
	v := c.value(curve.Box(1))
	return v, c.w.String()
}

// =============================================================================
// Test: degenerate key counts
// =============================================================================

func TestCurveNoKeys(t *testing.T) {
	var g graph.Graph
	curve := addCurveNode(&g, 1)

	v, out := evalCurve(&g, curve)
	assert.Equal(t, "0", v.Text)
	assert.Equal(t, "", out)
}

func TestCurveSingleKeyIsConstant(t *testing.T) {
	var g graph.Graph
	curve := addCurveNode(&g, 1, testKey{time: 0, value: 3})

	v, out := evalCurve(&g, curve)
	assert.Equal(t, "3.000000", v.Text)
	assert.Equal(t, "", out)
}

// =============================================================================
// Test: two-key segment
// =============================================================================

func TestCurveTwoKeysFoldsControlPoints(t *testing.T) {
	var g graph.Graph
	curve := addCurveNode(&g, 1,
		testKey{time: 0, value: 1},
		testKey{time: 1, value: 5},
	)

	v, out := evalCurve(&g, curve)

	assert.Contains(t, out, "clamp(0, 0.000000, 1.000000)")
	// Zero tangents collapse the inner control points onto the endpoints.
	assert.Contains(t, out, "lerp(1.000000, 1.000000,")
	assert.Contains(t, out, "lerp(5.000000, 5.000000,")
	assert.Equal(t, graph.TypeFloat, v.Type)
	assert.Equal(t, 6, strings.Count(out, "lerp("))
}

// Tangents act as thirds of the segment duration: an outgoing tangent of 3
// over a unit segment lands the control point one unit above the key.
func TestCurveTangentScaling(t *testing.T) {
	var g graph.Graph
	curve := addCurveNode(&g, 1,
		testKey{time: 0, value: 0, tanOut: 3},
		testKey{time: 1, value: 3, tanIn: 3},
	)

	_, out := evalCurve(&g, curve)
	assert.Contains(t, out, "lerp(0.000000, 1.000000,")
	assert.Contains(t, out, "lerp(1.000000, 4.000000,")
}

// =============================================================================
// Test: multi-key binary search
// =============================================================================

func TestCurveThreeKeys(t *testing.T) {
	var g graph.Graph
	timeIn := addFloatConst(&g, 1, 0.5)
	curve := addCurveNode(&g, 2,
		testKey{time: 0, value: 0},
		testKey{time: 0.5, value: 1},
		testKey{time: 1, value: 0},
	)
	curve.Box(0).Connect(timeIn.Box(0))

	v, out := evalCurve(&g, curve)

	// Static key tables.
	assert.Contains(t, out, "[3] = { 0.000000, 0.500000, 1.000000 };")
	assert.Contains(t, out, "[3] = { 0.000000, 1.000000, 0.000000 };")

	// Upper-bound binary search for the straddling segment.
	assert.Contains(t, out, "while (")
	assert.Contains(t, out, "clamp(0.500000, 0.000000, 1.000000)")
	assert.Contains(t, out, "saturate((")

	// De Casteljau cascade into the declared result local.
	assert.Equal(t, 6, strings.Count(out, "lerp("))
	assert.Equal(t, "local0", v.Text)
	assert.Contains(t, out, "float local0 = 0;")
	assert.Contains(t, out, "    local0 = local")
}

func TestCurveVectorKeys(t *testing.T) {
	var g graph.Graph
	values := []graph.Variant{
		graph.IntValue(2),
		graph.FloatValue(0), graph.Float3Value{1, 0, 0}, graph.Float3Value{}, graph.Float3Value{},
		graph.FloatValue(1), graph.Float3Value{0, 0, 1}, graph.Float3Value{}, graph.Float3Value{},
	}
	curve := g.AddNode(1, GroupTools, CurveFloat3, values...)
	curve.AddBox(graph.TypeFloat)
	curve.AddBox(graph.TypeFloat3)

	v, out := evalCurve(&g, curve)

	assert.Equal(t, graph.TypeFloat3, v.Type)
	assert.Contains(t, out, "lerp(float3(1.000000, 0.000000, 0.000000), float3(1.000000, 0.000000, 0.000000),")
}
