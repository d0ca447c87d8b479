// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/gogpu/visject/graph"
)

// MaxSRVSlots caps the shader resource views a single compiled shader may
// bind, engine slots excluded.
const MaxSRVSlots = 32

// ShaderParameter is one bindable input of the compiled shader: a graph
// parameter or an internal resource the compiler appended (scene textures,
// gameplay globals, texture assets referenced directly by nodes).
type ShaderParameter struct {
	// Kind selects the binding class.
	Kind graph.ParameterKind

	// ID is the stable identifier, deterministic for internal parameters.
	ID uuid.UUID

	// Name is the editor-facing name.
	Name string

	// ShaderName is the HLSL identifier, In1, In2, ... in append order.
	ShaderName string

	// Public marks author-exposed parameters.
	Public bool

	// Value is the default value.
	Value graph.Variant

	// Offset is the constant buffer byte offset. Meaningful only for
	// constant-typed parameters; resources leave it zero.
	Offset int32

	// Register is the SRV (t#) or sampler (s#) register, -1 for constants.
	Register int32
}

// IsResource reports whether the parameter binds a register instead of
// constant buffer bytes.
func (p *ShaderParameter) IsResource() bool {
	return p.Kind.IsTexture() || p.Kind == graph.ParamGlobalSDF ||
		p.Kind == graph.ParamTextureGroupSampler
}

type internalKey struct {
	kind graph.ParameterKind
	name string
}

// ParameterSet accumulates shader parameters during a compile. The list is
// append-only; shader names and resource registers are assigned at append
// time so output is deterministic in graph order.
type ParameterSet struct {
	params []*ShaderParameter
	byID   map[uuid.UUID]*ShaderParameter
	byKey  map[internalKey]*ShaderParameter

	baseSRV     int32
	baseSampler int32
	nextSRV     int32
	nextSampler int32

	// cbSize is the padded constant buffer size, set by layout.
	cbSize int32
}

func newParameterSet(opts *Options) *ParameterSet {
	return &ParameterSet{
		byID:        make(map[uuid.UUID]*ShaderParameter),
		byKey:       make(map[internalKey]*ShaderParameter),
		baseSRV:     opts.BaseSRVRegister,
		baseSampler: opts.BaseSamplerRegister,
		nextSRV:     opts.BaseSRVRegister,
		nextSampler: opts.BaseSamplerRegister,
	}
}

// RegisterGraph appends every parameter of a graph in declaration order.
// Layer graphs register this way when they load, so the layer's full
// parameter set reaches the engine binder even when only some of its
// parameters are referenced by nodes.
func (s *ParameterSet) RegisterGraph(g *graph.Graph) {
	for _, p := range g.Parameters {
		s.Register(p)
	}
}

// Register appends one graph parameter, or returns the already-registered
// entry with the same id.
func (s *ParameterSet) Register(p *graph.Parameter) *ShaderParameter {
	if got, ok := s.byID[p.ID]; ok {
		return got
	}
	return s.add(&ShaderParameter{
		Kind:   p.Kind,
		ID:     p.ID,
		Name:   p.Name,
		Public: p.Public,
		Value:  p.Value,
	})
}

// FindOrAdd returns the internal parameter with the given kind and name,
// appending it on first use. Internal parameter ids derive from the kind
// and name so recompiles bind identically.
func (s *ParameterSet) FindOrAdd(kind graph.ParameterKind, name string, value graph.Variant) *ShaderParameter {
	key := internalKey{kind: kind, name: name}
	if p, ok := s.byKey[key]; ok {
		return p
	}
	p := s.add(&ShaderParameter{
		Kind:  kind,
		ID:    internalParamID(kind, name),
		Name:  name,
		Value: value,
	})
	s.byKey[key] = p
	return p
}

// FindOrAddAsset returns the internal parameter bound to a texture asset
// referenced directly by a node, appending it on first use. The asset id
// doubles as the parameter id so two nodes sampling one texture share a
// register.
func (s *ParameterSet) FindOrAddAsset(kind graph.ParameterKind, asset uuid.UUID) *ShaderParameter {
	if p, ok := s.byID[asset]; ok {
		return p
	}
	return s.add(&ShaderParameter{
		Kind:  kind,
		ID:    asset,
		Name:  kind.String(),
		Value: graph.GuidValue(asset),
	})
}

// FindByID returns the parameter with the given id, or nil.
func (s *ParameterSet) FindByID(id uuid.UUID) *ShaderParameter {
	return s.byID[id]
}

// FindByShaderName returns the parameter emitting under the given HLSL
// identifier, or nil.
func (s *ParameterSet) FindByShaderName(name string) *ShaderParameter {
	for _, p := range s.params {
		if p.ShaderName == name {
			return p
		}
	}
	return nil
}

// List returns the parameters in append order.
func (s *ParameterSet) List() []*ShaderParameter {
	return s.params
}

// ClaimSRV reserves the next SRV register and returns its index. Feature
// templates claim their resources this way, ahead of parameter layout.
func (s *ParameterSet) ClaimSRV() int32 {
	r := s.nextSRV
	s.nextSRV++
	return r
}

func (s *ParameterSet) add(p *ShaderParameter) *ShaderParameter {
	p.ShaderName = fmt.Sprintf("In%d", len(s.params)+1)
	p.Offset = 0
	p.Register = -1
	switch {
	case p.Kind.IsTexture() || p.Kind == graph.ParamGlobalSDF:
		if s.nextSRV < MaxSRVSlots {
			p.Register = s.nextSRV
			s.nextSRV++
		}
	case p.Kind == graph.ParamTextureGroupSampler:
		p.Register = s.nextSampler
		s.nextSampler++
	}
	s.params = append(s.params, p)
	if p.ID != uuid.Nil {
		if _, ok := s.byID[p.ID]; !ok {
			s.byID[p.ID] = p
		}
	}
	return p
}

func internalParamID(kind graph.ParameterKind, name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("visject:"+kind.String()+":"+name))
}

// cbLayout returns the constant buffer spelling, size and alignment for a
// parameter, or ok=false for resource bindings.
func cbLayout(p *ShaderParameter) (typ string, size, align int32, ok bool) {
	kind := p.Kind
	if kind == graph.ParamGameplayGlobal {
		// Globals occupy the slot their resolved value type needs.
		switch graph.TypeOf(p.Value) {
		case graph.VariantBool:
			kind = graph.ParamBool
		case graph.VariantInt, graph.VariantUint:
			kind = graph.ParamInt
		case graph.VariantFloat2:
			kind = graph.ParamFloat2
		case graph.VariantFloat3:
			kind = graph.ParamFloat3
		case graph.VariantFloat4, graph.VariantColor:
			kind = graph.ParamFloat4
		default:
			kind = graph.ParamFloat
		}
	}
	switch kind {
	case graph.ParamBool:
		return "bool", 4, 4, true
	case graph.ParamInt:
		return "int", 4, 4, true
	case graph.ParamFloat:
		return "float", 4, 4, true
	case graph.ParamFloat2:
		return "float2", 8, 8, true
	case graph.ParamFloat3:
		return "float3", 12, 16, true
	case graph.ParamFloat4, graph.ParamColor, graph.ParamChannelMask:
		return "float4", 16, 16, true
	case graph.ParamMatrix:
		return "float4x4", 64, 16, true
	default:
		return "", 0, 0, false
	}
}

func alignTo(v, align int32) int32 {
	return (v + align - 1) / align * align
}

// layout assigns constant buffer offsets in append order. Resource
// parameters already carry their registers.
func (s *ParameterSet) layout() {
	offset := int32(0)
	for _, p := range s.params {
		_, size, align, ok := cbLayout(p)
		if !ok {
			continue
		}
		offset = alignTo(offset, align)
		p.Offset = offset
		offset += size
	}
	s.cbSize = alignTo(offset, 16)
}

// emitConstants writes the graph parameters cbuffer. Register b2 sits
// after the engine's per-view and per-draw buffers. Gaps forced by
// alignment are filled with uint padding members so the declared layout
// matches the offsets handed to the binder.
func (s *ParameterSet) emitConstants(w *CodeWriter) {
	offset := int32(0)
	padding := 0
	open := false
	for _, p := range s.params {
		typ, size, _, ok := cbLayout(p)
		if !ok {
			continue
		}
		if !open {
			w.WriteLine("cbuffer GraphParameters : register(b2)")
			w.WriteLine("{")
			w.pushIndent()
			open = true
		}
		for offset < p.Offset {
			w.WriteLine("uint PADDING_{0};", padding)
			padding++
			offset += 4
		}
		w.WriteLine("{0} {1};", typ, p.ShaderName)
		offset = p.Offset + size
	}
	if open {
		w.popIndent()
		w.WriteLine("};")
	}
}

// emitResources writes the texture and sampler declarations.
func (s *ParameterSet) emitResources(w *CodeWriter) {
	for _, p := range s.params {
		if p.Register < 0 {
			continue
		}
		switch p.Kind {
		case graph.ParamTexture, graph.ParamNormalMap, graph.ParamSceneTexture:
			w.WriteLine("Texture2D {0} : register(t{1});", p.ShaderName, p.Register)
		case graph.ParamCubeTexture:
			w.WriteLine("TextureCube {0} : register(t{1});", p.ShaderName, p.Register)
		case graph.ParamTextureArray:
			w.WriteLine("Texture2DArray {0} : register(t{1});", p.ShaderName, p.Register)
		case graph.ParamVolumeTexture, graph.ParamGlobalSDF:
			w.WriteLine("Texture3D {0} : register(t{1});", p.ShaderName, p.Register)
		case graph.ParamTextureGroupSampler:
			w.WriteLine("SamplerState {0} : register(s{1});", p.ShaderName, p.Register)
		}
	}
}

// Encode serializes the parameter table for the engine binder: count, then
// per parameter the kind, id, names, visibility, register, offset and
// default value. Layout primitives match the graph wire format.
func (s *ParameterSet) Encode(w io.Writer) error {
	b := blobWriter{w: w}
	b.i32(int32(len(s.params)))
	for _, p := range s.params {
		b.u8(uint8(p.Kind))
		b.guid(p.ID)
		b.str(p.Name)
		b.boolean(p.Public)
		b.str(p.ShaderName)
		b.i32(p.Register)
		b.i32(p.Offset)
		if b.err == nil {
			b.err = graph.EncodeVariant(w, p.Value)
		}
	}
	return b.err
}

type blobWriter struct {
	w   io.Writer
	err error
	buf [16]byte
}

func (b *blobWriter) write(p []byte) {
	if b.err != nil {
		return
	}
	if _, err := b.w.Write(p); err != nil {
		b.err = fmt.Errorf("parameters write: %w", err)
	}
}

func (b *blobWriter) u8(v byte) { b.buf[0] = v; b.write(b.buf[:1]) }

func (b *blobWriter) i32(v int32) {
	binary.LittleEndian.PutUint32(b.buf[:4], uint32(v))
	b.write(b.buf[:4])
}

func (b *blobWriter) boolean(v bool) {
	if v {
		b.u8(1)
	} else {
		b.u8(0)
	}
}

func (b *blobWriter) guid(id uuid.UUID) {
	copy(b.buf[:16], id[:])
	b.write(b.buf[:16])
}

func (b *blobWriter) str(s string) {
	b.i32(int32(len(s)))
	b.write([]byte(s))
}
