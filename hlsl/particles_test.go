// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strings"
	"testing"

	"github.com/gogpu/visject/graph"
)

// =============================================================================
// Helpers for particle emitter tests
// =============================================================================

func addEmitter(g *graph.Graph, capacity int32) *graph.Node {
	return g.AddNode(1, GroupParticles, ParticleEmitter, graph.IntValue(capacity))
}

func addParticleModule(g *graph.Graph, id uint32, typ uint16, values ...graph.Variant) *graph.Node {
	return g.AddNode(id, GroupParticleModules, typ, values...)
}

func compileParticles(t *testing.T, g *graph.Graph) *Result {
	t.Helper()
	res, err := CompileParticleEmitter(g, DefaultOptions())
	if err != nil {
		t.Fatalf("CompileParticleEmitter failed: %v", err)
	}
	return res
}

// =============================================================================
// Test: full simulation pipeline
// =============================================================================

func TestCompileParticleEmitter(t *testing.T) {
	var g graph.Graph
	addEmitter(&g, 1000)
	addParticleModule(&g, 2, ModulePositionSphere)
	addParticleModule(&g, 3, ModuleSetLifetime, graph.FloatValue(5))
	addParticleModule(&g, 4, ModuleUpdateAge)
	addParticleModule(&g, 5, ModuleGravity)
	addParticleModule(&g, 6, ModuleLinearDrag)

	res := compileParticles(t, &g)
	src := string(res.Source)

	// Attribute layout follows module discovery order.
	mustContainInOrder(t, src,
		"// Particle attributes layout:",
		"// - offset 0, type Float3, name Position",
		"// - offset 12, type Float, name Lifetime",
		"// - offset 16, type Float, name Age",
		"// - offset 20, type Float3, name Velocity",
		"// Stride: 32 bytes",
		"// Data: 32000 bytes for 1000 particles",
		"// Buffer: 36004 bytes including the alive counter and list",
	)

	mustContain(t, src, "#define PARTICLE_STRIDE 32")
	mustContain(t, src, "#define PARTICLE_CAPACITY 1000")
	mustContain(t, src, "#define PARTICLE_THRESHOLD 32000")
	mustContain(t, src, "// Graph format version: 7000")

	// Initialize: zeroed attributes, spawn modules, writebacks.
	mustContainInOrder(t, src,
		"void CS_Initialize",
		"float3 local0 = float3(0, 0, 0);",
		"local0 = float3(0, 0, 0) + RandomPointInsideSphere(context) * 100.000000;",
		"local1 = 5.000000;",
		"SetParticleFloat3(context.ParticleIndex, 0, local0);",
		"SetParticleFloat(context.ParticleIndex, 12, local1);",
	)

	// Update: buffer reads, update modules, kill, integration, alive list
	// re-registration, writebacks.
	mustContainInOrder(t, src,
		"void CS_Update",
		"float3 local0 = GetParticleFloat3(context.ParticleIndex, 0);",
		"float local1 = GetParticleFloat(context.ParticleIndex, 12);",
		"float local2 = GetParticleFloat(context.ParticleIndex, 16);",
		"float3 local3 = GetParticleFloat3(context.ParticleIndex, 20);",
		"local2 += DeltaTime;",
		"local3 += float3(0.000000, -981.000000, 0.000000) * DeltaTime;",
		"local3 *= saturate(1.0 - 0.100000 * DeltaTime);",
		"bool kill = local2 >= local1;",
		"if (kill) return;",
		"local0 += local3 * DeltaTime;",
		"if (AddParticle(context.ParticleIndex)) return;",
		"SetParticleFloat3(context.ParticleIndex, 0, local0);",
	)

	if src[len(src)-1] != 0 {
		t.Error("generated source is not null-terminated")
	}
	if err := res.Err(); err != nil {
		t.Errorf("unexpected diagnostics: %v", err)
	}
}

func TestCompileParticleDefaultCapacity(t *testing.T) {
	var g graph.Graph
	g.AddNode(1, GroupParticles, ParticleEmitter)

	res := compileParticles(t, &g)
	mustContain(t, string(res.Source), "#define PARTICLE_CAPACITY 1024")
}

// =============================================================================
// Test: custom attributes
// =============================================================================

func TestCompileCustomAttribute(t *testing.T) {
	var g graph.Graph
	addEmitter(&g, 100)
	addParticleModule(&g, 2, ModuleSetAttribute,
		graph.StringValue("Temperature"), graph.IntValue(0), graph.FloatValue(37.5))
	addParticleModule(&g, 3, ModuleUpdateAttribute,
		graph.StringValue("Temperature"), graph.IntValue(0), graph.FloatValue(100))

	res := compileParticles(t, &g)
	src := string(res.Source)

	// Both stages share one layout slot.
	mustContain(t, src, "// - offset 0, type Float, name Temperature")
	mustContain(t, src, "// Stride: 4 bytes")
	if n := strings.Count(src, "name Temperature"); n != 1 {
		t.Errorf("attribute listed %d times, want 1", n)
	}

	mustContainInOrder(t, src,
		"void CS_Initialize",
		"local0 = 37.500000;",
		"void CS_Update",
		"local0 = 100.000000;",
	)
}

func TestCompileNormalizedAge(t *testing.T) {
	var g graph.Graph
	addEmitter(&g, 100)
	nage := g.AddNode(2, GroupParticles, ParticleNormalizedAge)
	nage.AddBox(graph.TypeFloat)
	mod := addParticleModule(&g, 3, ModuleUpdateAttribute,
		graph.StringValue("Brightness"), graph.IntValue(0), graph.NullValue{})
	mod.AddBox(graph.TypeFloat)
	mod.Box(0).Connect(nage.Box(0))

	res := compileParticles(t, &g)
	src := string(res.Source)

	mustContain(t, src, "// - offset 0, type Float, name Brightness")
	mustContain(t, src, "// - offset 4, type Float, name Age")
	mustContain(t, src, "// - offset 8, type Float, name Lifetime")

	// Age over lifetime, guarded against a zero lifetime.
	mustContain(t, src, "float local3 = local1 / max(local2, 0.000001);")
	mustContain(t, src, "local0 = local3;")
}

// =============================================================================
// Test: integration pairs
// =============================================================================

// Attributes bind in every pass, so spawn-only rotation modules still get
// the angular Euler step during update.
func TestCompileRotationIntegration(t *testing.T) {
	var g graph.Graph
	addEmitter(&g, 100)
	addParticleModule(&g, 2, ModuleSetRotation, graph.Float3Value{0, 90, 0})
	addParticleModule(&g, 3, ModuleSetAngularVelocity, graph.Float3Value{0, 10, 0})

	res := compileParticles(t, &g)
	src := string(res.Source)

	mustContainInOrder(t, src,
		"void CS_Update",
		"local0 += local1 * DeltaTime;",
	)
}

// =============================================================================
// Test: misuse and failure paths
// =============================================================================

func TestCompileParticleEmitterRejectsMissingRoot(t *testing.T) {
	var g graph.Graph
	addParticleModule(&g, 1, ModuleUpdateAge)

	_, err := CompileParticleEmitter(&g, DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), "no particle emitter root") {
		t.Errorf("CompileParticleEmitter error = %v, want missing root", err)
	}

	if _, err := CompileParticleEmitter(nil, DefaultOptions()); err == nil {
		t.Error("CompileParticleEmitter accepted a nil graph")
	}
}

func TestParticleInputInMaterialReports(t *testing.T) {
	var g graph.Graph
	root := addMaterialRoot(&g)
	pos := g.AddNode(2, GroupParticles, ParticlePosition)
	pos.AddBox(graph.TypeFloat3)
	root.Box(3).Connect(pos.Box(0))

	res := compileSurface(t, &g)
	if !hasDiagnostic(res, ErrInternal, "particle input used outside a particle graph") {
		t.Errorf("diagnostics = %v, want a particle misuse report", res.Diagnostics)
	}
}
