// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gogpu/visject/graph"
)

// =============================================================================
// Helpers for material compile tests
// =============================================================================

// addMaterialRoot builds a material root node: sink 0 is the Layer input,
// sinks 1..14 the material inputs in declaration order.
func addMaterialRoot(g *graph.Graph) *graph.Node {
	n := g.AddNode(1, GroupMaterial, MaterialRoot)
	n.AddBox(graph.TypeVoid)
	for i := range materialInputs {
		n.AddBox(materialInputs[i].typ)
	}
	return n
}

func compileMaterial(t *testing.T, g *graph.Graph, info MaterialInfo) *Result {
	t.Helper()
	res, err := CompileMaterial(g, info, DefaultOptions())
	if err != nil {
		t.Fatalf("CompileMaterial failed: %v", err)
	}
	return res
}

func compileSurface(t *testing.T, g *graph.Graph) *Result {
	t.Helper()
	return compileMaterial(t, g, MaterialInfo{Domain: DomainSurface})
}

func mustContain(t *testing.T, source, expected string) {
	t.Helper()
	if !strings.Contains(source, expected) {
		t.Errorf("Expected output to contain %q.\nOutput:\n%s", expected, source)
	}
}

func mustNotContain(t *testing.T, source, banned string) {
	t.Helper()
	if strings.Contains(source, banned) {
		t.Errorf("Expected output to not contain %q.\nOutput:\n%s", banned, source)
	}
}

// mustContainInOrder checks the fragments appear left to right.
func mustContainInOrder(t *testing.T, source string, fragments ...string) {
	t.Helper()
	pos := 0
	for _, f := range fragments {
		i := strings.Index(source[pos:], f)
		if i < 0 {
			t.Fatalf("Expected %q after position %d.\nOutput:\n%s", f, pos, source)
		}
		pos += i + len(f)
	}
}

func hasDiagnostic(res *Result, kind ErrorKind, message string) bool {
	for _, d := range res.Diagnostics {
		if d.Kind == kind && d.Message == message {
			return true
		}
	}
	return false
}

// =============================================================================
// Test: constant-only surface material
// =============================================================================

func TestCompileConstantColorMaterial(t *testing.T) {
	var g graph.Graph
	root := addMaterialRoot(&g)
	color := g.AddNode(2, GroupConstants, ConstFloat3, graph.Float3Value{0.8, 0.2, 0.1})
	color.AddBox(graph.TypeFloat3)
	root.Box(1).Connect(color.Box(0))

	res := compileSurface(t, &g)
	source := string(res.Source)

	mustContainInOrder(t, source,
		"Material GetMaterialPS(MaterialInput input)",
		"Material material = (Material)0;",
		"material.Color = float3(0.800000, 0.200000, 0.100000);",
		"material.Normal *= input.TwoSidedSign;",
		"material.Normal = normalize(material.Normal);",
		"material.Metalness = saturate(material.Metalness);",
		"material.Roughness = clamp(material.Roughness, 0.04, 1.0);",
		"return material;",
	)
	if n := len(res.Parameters.List()); n != 0 {
		t.Errorf("parameter count = %d, want 0", n)
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", res.Diagnostics)
	}
	if res.Err() != nil {
		t.Errorf("Err() = %v, want nil", res.Err())
	}
}

func TestCompileDefaultInputs(t *testing.T) {
	var g graph.Graph
	addMaterialRoot(&g)

	res := compileSurface(t, &g)
	source := string(res.Source)

	mustContain(t, source, "material.Color = float3(1.000000, 1.000000, 1.000000);")
	mustContain(t, source, "material.Specular = 0.500000;")
	mustContain(t, source, "material.Normal = float3(0.000000, 0.000000, 1.000000);")
	mustContain(t, source, "material.TessellationMultiplier = 4.000000;")
	mustContain(t, source, "material.WorldDisplacement = float3(0.000000, 0.000000, 0.000000);")
}

func TestCompileSourceFraming(t *testing.T) {
	var g graph.Graph
	addMaterialRoot(&g)

	res := compileSurface(t, &g)
	source := string(res.Source)

	mustContain(t, source, "#define MATERIAL_DOMAIN_SURFACE 1")
	mustContain(t, source, "// Graph format version: 7000")
	mustContain(t, source, "Material GetMaterialVS(MaterialInput input)")
	mustContain(t, source, "Material GetMaterialDS(MaterialInput input)")

	if res.Source[len(res.Source)-1] != 0 {
		t.Error("source is not null-terminated")
	}
}

// Each tree evaluates its own inputs: the pixel body carries the color,
// the vertex body the position offset, the domain body the displacement.
func TestCompileTreeSeparation(t *testing.T) {
	var g graph.Graph
	root := addMaterialRoot(&g)
	offset := g.AddNode(2, GroupConstants, ConstFloat3, graph.Float3Value{0, 1, 0})
	offset.AddBox(graph.TypeFloat3)
	root.Box(11).Connect(offset.Box(0))

	res := compileSurface(t, &g)
	source := string(res.Source)

	ps := strings.Index(source, "GetMaterialPS")
	vs := strings.Index(source, "GetMaterialVS")
	ds := strings.Index(source, "GetMaterialDS")
	if !(ps < vs && vs < ds) {
		t.Fatalf("tree order PS=%d VS=%d DS=%d", ps, vs, ds)
	}

	pixelBody := source[ps:vs]
	vertexBody := source[vs:ds]
	mustNotContain(t, pixelBody, "PositionOffset")
	mustContain(t, vertexBody, "material.PositionOffset = float3(0.000000, 1.000000, 0.000000);")
	mustNotContain(t, vertexBody, "material.Color")
}

// =============================================================================
// Test: math into material inputs
// =============================================================================

func TestCompileAddIntoEmissive(t *testing.T) {
	var g graph.Graph
	root := addMaterialRoot(&g)
	a := addFloatConst(&g, 2, 2)
	b := addFloatConst(&g, 3, 3)
	add := addMathNode(&g, 4, MathAdd)
	add.Box(0).Connect(a.Box(0))
	add.Box(1).Connect(b.Box(0))
	root.Box(3).Connect(add.Box(2))

	res := compileSurface(t, &g)
	source := string(res.Source)

	mustContain(t, source, "float local0 = 2.000000 + 3.000000;")
	mustContain(t, source, "material.Emissive = local0.xxx;")
}

func TestCompileDivideByZero(t *testing.T) {
	var g graph.Graph
	root := addMaterialRoot(&g)
	a := addFloatConst(&g, 2, 2)
	zero := addFloatConst(&g, 3, 0)
	div := addMathNode(&g, 4, MathDivide)
	div.Box(0).Connect(a.Box(0))
	div.Box(1).Connect(zero.Box(0))
	root.Box(6).Connect(div.Box(2))

	res := compileSurface(t, &g)
	source := string(res.Source)

	if !hasDiagnostic(res, ErrDivideByZero, "Cannot divide by zero!") {
		t.Errorf("missing divide-by-zero diagnostic, got %v", res.Diagnostics)
	}
	mustContain(t, source, "float local0 = 2.000000 / 1;")
	mustContain(t, source, "return material;")
	if res.Err() == nil {
		t.Error("Err() = nil, want aggregated diagnostic error")
	}
}

func TestCompileCyclicGraph(t *testing.T) {
	var g graph.Graph
	root := addMaterialRoot(&g)
	a := addMathNode(&g, 2, MathAdd)
	b := addMathNode(&g, 3, MathAdd)
	a.Box(0).Connect(b.Box(2))
	b.Box(0).Connect(a.Box(2))
	root.Box(1).Connect(a.Box(2))

	res := compileSurface(t, &g)

	if !hasDiagnostic(res, ErrCycle, "Graph is looped or too deep!") {
		t.Errorf("missing cycle diagnostic, got %v", res.Diagnostics)
	}
	mustContain(t, string(res.Source), "return material;")
}

// =============================================================================
// Test: per-domain input sets
// =============================================================================

func TestCompileDomainGating(t *testing.T) {
	var g graph.Graph
	addMaterialRoot(&g)

	tests := []struct {
		name    string
		domain  MaterialDomain
		present []string
		absent  []string
	}{
		{
			"surface",
			DomainSurface,
			[]string{"material.Metalness", "material.AO", "material.Refraction"},
			nil,
		},
		{
			"gui",
			DomainGUI,
			[]string{"material.Color", "material.Opacity"},
			[]string{"material.Metalness", "material.Normal", "material.AO"},
		},
		{
			"post_process",
			DomainPostProcess,
			[]string{"material.Color", "material.Emissive"},
			[]string{"material.Mask", "material.Normal"},
		},
		{
			"decal",
			DomainDecal,
			[]string{"material.Normal", "material.Roughness"},
			[]string{"material.AO", "material.Refraction"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := compileMaterial(t, &g, MaterialInfo{Domain: tt.domain})
			source := string(res.Source)
			for _, p := range tt.present {
				mustContain(t, source, p)
			}
			for _, a := range tt.absent {
				mustNotContain(t, source, a)
			}
		})
	}
}

// =============================================================================
// Test: world-space normal transform
// =============================================================================

func TestCompileWorldSpaceNormalFlag(t *testing.T) {
	var g graph.Graph
	addMaterialRoot(&g)

	res := compileMaterial(t, &g, MaterialInfo{Domain: DomainSurface, Flags: FlagWorldSpaceNormal})
	mustContainInOrder(t, string(res.Source),
		"material.Normal = normalize(material.Normal);",
		"material.Normal = TransformWorldVectorToTangent(input, material.Normal);",
	)

	res = compileSurface(t, &g)
	mustNotContain(t, string(res.Source), "TransformWorldVectorToTangent(input, material.Normal)")
}

// =============================================================================
// Test: vertex interpolators
// =============================================================================

func TestCompileVertexInterpolator(t *testing.T) {
	var g graph.Graph
	root := addMaterialRoot(&g)

	carried := g.AddNode(2, GroupConstants, ConstFloat4, graph.Float4Value{1, 2, 3, 4})
	carried.AddBox(graph.TypeFloat4)
	interp := g.AddNode(3, GroupMaterial, VertexInterpolator)
	interp.AddBox(graph.TypeFloat4)
	interp.AddBox(graph.TypeFloat4)
	interp.Box(0).Connect(carried.Box(0))
	root.Box(3).Connect(interp.Box(1))

	res := compileSurface(t, &g)
	source := string(res.Source)

	// The pixel tree reads the slot, the vertex tree writes it.
	mustContain(t, source, "material.Emissive = input.CustomVSToPS[0].xyz;")
	mustContain(t, source, "material.CustomVSToPS[0] = float4(1.000000, 2.000000, 3.000000, 4.000000);")
	mustContain(t, source, "#define CUSTOM_VERTEX_INTERPOLATORS_COUNT 1")
}

func TestCompileInterpolatorRejectedForDecal(t *testing.T) {
	var g graph.Graph
	root := addMaterialRoot(&g)
	interp := g.AddNode(2, GroupMaterial, VertexInterpolator)
	interp.AddBox(graph.TypeFloat4)
	interp.AddBox(graph.TypeFloat4)
	root.Box(3).Connect(interp.Box(1))

	res := compileMaterial(t, &g, MaterialInfo{Domain: DomainDecal})

	found := false
	for _, d := range res.Diagnostics {
		if d.Kind == ErrInternal && strings.Contains(d.Message, "vertex interpolators") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing interpolator diagnostic, got %v", res.Diagnostics)
	}
	mustNotContain(t, string(res.Source), "CUSTOM_VERTEX_INTERPOLATORS_COUNT 1")
}

// =============================================================================
// Test: tessellation
// =============================================================================

func TestCompileTessellationDefines(t *testing.T) {
	var g graph.Graph
	addMaterialRoot(&g)

	res := compileMaterial(t, &g, MaterialInfo{
		Domain:           DomainSurface,
		TessellationMode: TessellationPointNormal,
	})
	mustContain(t, string(res.Source), "#define MAX_TESSELLATION_FACTOR 15")

	res = compileMaterial(t, &g, MaterialInfo{
		Domain:                DomainSurface,
		TessellationMode:      TessellationPhong,
		MaxTessellationFactor: 8,
	})
	mustContain(t, string(res.Source), "#define MAX_TESSELLATION_FACTOR 8")

	res = compileSurface(t, &g)
	mustNotContain(t, string(res.Source), "MAX_TESSELLATION_FACTOR")
}

// =============================================================================
// Test: compile determinism
// =============================================================================

func TestCompileIdempotent(t *testing.T) {
	var g graph.Graph
	root := addMaterialRoot(&g)
	a := addFloatConst(&g, 2, 2)
	add := addMathNode(&g, 3, MathAdd, graph.FloatValue(0), graph.FloatValue(3))
	add.Box(0).Connect(a.Box(0))
	root.Box(6).Connect(add.Box(2))

	first := compileSurface(t, &g)
	second := compileSurface(t, &g)

	if !bytes.Equal(first.Source, second.Source) {
		t.Error("repeated compiles produced different source")
	}

	var blob1, blob2 bytes.Buffer
	if err := first.Parameters.Encode(&blob1); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := second.Parameters.Encode(&blob2); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(blob1.Bytes(), blob2.Bytes()) {
		t.Error("repeated compiles produced different parameter blobs")
	}
}

// =============================================================================
// Test: malformed graphs
// =============================================================================

func TestCompileRejectsMissingRoot(t *testing.T) {
	var g graph.Graph
	addFloatConst(&g, 1, 1)

	if _, err := CompileMaterial(&g, MaterialInfo{}, DefaultOptions()); err == nil {
		t.Error("compile of rootless graph succeeded, want error")
	}
	if _, err := CompileMaterial(nil, MaterialInfo{}, DefaultOptions()); err == nil {
		t.Error("compile of nil graph succeeded, want error")
	}
}
