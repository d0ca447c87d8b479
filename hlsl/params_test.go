// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/google/uuid"

	"github.com/gogpu/visject/graph"
)

func newTestParameterSet() *ParameterSet {
	opts := DefaultOptions()
	opts.setDefaults()
	return newParameterSet(&opts)
}

// =============================================================================
// Test: shader name assignment
// =============================================================================

func TestParameterShaderNames(t *testing.T) {
	s := newTestParameterSet()
	a := s.FindOrAdd(graph.ParamFloat, "Brightness", graph.FloatValue(1))
	b := s.FindOrAdd(graph.ParamTexture, "Albedo", graph.NullValue{})
	c := s.FindOrAdd(graph.ParamFloat4, "Tint", graph.Float4Value{1, 1, 1, 1})

	assert.Equal(t, "In1", a.ShaderName)
	assert.Equal(t, "In2", b.ShaderName)
	assert.Equal(t, "In3", c.ShaderName)

	// Same kind and name resolves to the existing entry.
	again := s.FindOrAdd(graph.ParamFloat, "Brightness", graph.FloatValue(1))
	assert.Equal(t, a, again)
	assert.Equal(t, 3, len(s.List()))
}

func TestFindByShaderName(t *testing.T) {
	s := newTestParameterSet()
	s.FindOrAdd(graph.ParamTexture, "Albedo", graph.NullValue{})

	assert.NotZero(t, s.FindByShaderName("In1"))
	assert.Zero(t, s.FindByShaderName("In2"))
}

// =============================================================================
// Test: constant buffer layout
// =============================================================================

func TestParameterLayoutOffsets(t *testing.T) {
	s := newTestParameterSet()
	f := s.FindOrAdd(graph.ParamFloat, "A", graph.FloatValue(0))
	v3 := s.FindOrAdd(graph.ParamFloat3, "B", graph.Float3Value{})
	f2 := s.FindOrAdd(graph.ParamFloat, "C", graph.FloatValue(0))
	v4 := s.FindOrAdd(graph.ParamFloat4, "D", graph.Float4Value{})
	m := s.FindOrAdd(graph.ParamMatrix, "E", graph.MatrixValue{})
	s.layout()

	// float at 0, float3 aligned to 16, float packs into the tail slot,
	// float4 to the next 16, matrix follows.
	assert.Equal(t, int32(0), f.Offset)
	assert.Equal(t, int32(16), v3.Offset)
	assert.Equal(t, int32(28), f2.Offset)
	assert.Equal(t, int32(32), v4.Offset)
	assert.Equal(t, int32(48), m.Offset)
}

func TestParameterLayoutInvariants(t *testing.T) {
	s := newTestParameterSet()
	kinds := []graph.ParameterKind{
		graph.ParamBool, graph.ParamFloat2, graph.ParamFloat3, graph.ParamInt,
		graph.ParamColor, graph.ParamFloat, graph.ParamMatrix, graph.ParamFloat4,
	}
	for i, k := range kinds {
		s.FindOrAdd(k, fmt.Sprintf("P%d", i), graph.NullValue{})
	}
	s.layout()

	prevEnd := int32(0)
	for _, p := range s.List() {
		_, size, align, ok := cbLayout(p)
		if !ok {
			continue
		}
		assert.True(t, p.Offset >= prevEnd, "offset %d overlaps previous end %d", p.Offset, prevEnd)
		assert.Equal(t, int32(0), p.Offset%align, "offset %d not aligned to %d", p.Offset, align)
		prevEnd = p.Offset + size
	}
}

func TestGameplayGlobalUsesValueType(t *testing.T) {
	s := newTestParameterSet()
	v := s.FindOrAdd(graph.ParamGameplayGlobal, "WindDirection", graph.Float3Value{0, 0, 1})
	f := s.FindOrAdd(graph.ParamFloat, "After", graph.FloatValue(0))
	s.layout()

	assert.Equal(t, int32(0), v.Offset)
	assert.Equal(t, int32(12), f.Offset)
}

// =============================================================================
// Test: resource registers
// =============================================================================

func TestResourceRegistersDistinct(t *testing.T) {
	s := newTestParameterSet()
	var regs []int32
	for i := 0; i < 5; i++ {
		p := s.FindOrAdd(graph.ParamTexture, fmt.Sprintf("T%d", i), graph.NullValue{})
		regs = append(regs, p.Register)
	}

	seen := map[int32]bool{}
	for _, r := range regs {
		assert.True(t, r >= 2, "register %d below the base", r)
		assert.False(t, seen[r], "register %d assigned twice", r)
		seen[r] = true
	}
}

func TestSamplersUseOwnRegisterSpace(t *testing.T) {
	s := newTestParameterSet()
	tex := s.FindOrAdd(graph.ParamTexture, "T", graph.NullValue{})
	smp := s.FindOrAdd(graph.ParamTextureGroupSampler, "S", graph.NullValue{})

	assert.Equal(t, int32(2), tex.Register)
	assert.Equal(t, int32(6), smp.Register)
}

func TestClaimSRVPrecedesParameters(t *testing.T) {
	s := newTestParameterSet()
	assert.Equal(t, int32(2), s.ClaimSRV())
	assert.Equal(t, int32(3), s.ClaimSRV())

	p := s.FindOrAdd(graph.ParamTexture, "T", graph.NullValue{})
	assert.Equal(t, int32(4), p.Register)
}

func TestRegisterOverflowLeavesUnbound(t *testing.T) {
	s := newTestParameterSet()
	var last *ShaderParameter
	for i := 0; s.nextSRV < MaxSRVSlots; i++ {
		last = s.FindOrAdd(graph.ParamTexture, fmt.Sprintf("T%d", i), graph.NullValue{})
	}

	assert.Equal(t, int32(MaxSRVSlots-1), last.Register)
	over := s.FindOrAdd(graph.ParamTexture, "Straw", graph.NullValue{})
	assert.Equal(t, int32(-1), over.Register)
	assert.Equal(t, int32(0), over.Offset)
}

// =============================================================================
// Test: stable internal identity
// =============================================================================

func TestInternalParameterIDStable(t *testing.T) {
	a := internalParamID(graph.ParamSceneTexture, "SceneDepth")
	b := internalParamID(graph.ParamSceneTexture, "SceneDepth")
	c := internalParamID(graph.ParamSceneTexture, "SceneColor")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, uuid.Nil, a)
}

// =============================================================================
// Test: graph registration
// =============================================================================

func TestRegisterGraphKeepsDeclarationOrder(t *testing.T) {
	var g graph.Graph
	g.AddParameter(graph.Parameter{
		Kind: graph.ParamFloat,
		ID:   uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		Name: "First",
	})
	g.AddParameter(graph.Parameter{
		Kind: graph.ParamTexture,
		ID:   uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"),
		Name: "Second",
	})

	s := newTestParameterSet()
	s.RegisterGraph(&g)

	list := s.List()
	assert.Equal(t, 2, len(list))
	assert.Equal(t, "First", list[0].Name)
	assert.Equal(t, "In1", list[0].ShaderName)
	assert.Equal(t, "Second", list[1].Name)
	assert.Equal(t, "In2", list[1].ShaderName)

	// Registering again is a no-op.
	s.RegisterGraph(&g)
	assert.Equal(t, 2, len(s.List()))
}

// =============================================================================
// Test: segment emission
// =============================================================================

func TestEmitConstantsPadsGaps(t *testing.T) {
	s := newTestParameterSet()
	s.FindOrAdd(graph.ParamFloat, "A", graph.FloatValue(0))
	s.FindOrAdd(graph.ParamFloat4, "B", graph.Float4Value{})
	s.layout()

	w := NewCodeWriter()
	s.emitConstants(w)
	text := w.String()

	assert.Contains(t, text, "cbuffer GraphParameters : register(b2)")
	assert.Contains(t, text, "float In1;")
	assert.Contains(t, text, "uint PADDING_0;")
	assert.Contains(t, text, "uint PADDING_1;")
	assert.Contains(t, text, "uint PADDING_2;")
	assert.Contains(t, text, "float4 In2;")
	assert.True(t, strings.HasSuffix(text, "};\n"))
}

func TestEmitConstantsSkipsResourceOnly(t *testing.T) {
	s := newTestParameterSet()
	s.FindOrAdd(graph.ParamTexture, "T", graph.NullValue{})
	s.layout()

	w := NewCodeWriter()
	s.emitConstants(w)
	assert.Equal(t, "", w.String())
}

func TestEmitResources(t *testing.T) {
	s := newTestParameterSet()
	s.FindOrAdd(graph.ParamTexture, "A", graph.NullValue{})
	s.FindOrAdd(graph.ParamCubeTexture, "B", graph.NullValue{})
	s.FindOrAdd(graph.ParamVolumeTexture, "C", graph.NullValue{})
	s.FindOrAdd(graph.ParamTextureGroupSampler, "D", graph.NullValue{})
	s.FindOrAdd(graph.ParamFloat, "E", graph.FloatValue(0))
	s.layout()

	w := NewCodeWriter()
	s.emitResources(w)
	text := w.String()

	assert.Contains(t, text, "Texture2D In1 : register(t2);")
	assert.Contains(t, text, "TextureCube In2 : register(t3);")
	assert.Contains(t, text, "Texture3D In3 : register(t4);")
	assert.Contains(t, text, "SamplerState In4 : register(s6);")
	assert.NotContains(t, text, "In5")
}

// =============================================================================
// Test: parameter blob
// =============================================================================

func TestEncodeParameters(t *testing.T) {
	s := newTestParameterSet()
	s.FindOrAdd(graph.ParamFloat, "Brightness", graph.FloatValue(2))
	s.FindOrAdd(graph.ParamTexture, "Albedo", graph.NullValue{})
	s.layout()

	var buf bytes.Buffer
	assert.NoError(t, s.Encode(&buf))

	data := buf.Bytes()
	assert.True(t, len(data) > 4)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[:4]))
	assert.Contains(t, string(data), "Brightness")
	assert.Contains(t, string(data), "In1")

	// Encoding is deterministic.
	var again bytes.Buffer
	assert.NoError(t, s.Encode(&again))
	assert.Equal(t, buf.Bytes(), again.Bytes())
}
