// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/visject/graph"
)

// defaultParticleCapacity is used when the emitter root does not carry a
// capacity value.
const defaultParticleCapacity = 1024

// particleAccess records how a pass touches an attribute.
type particleAccess uint8

const (
	accessRead particleAccess = 1 << iota
	accessWrite
)

// particleAttribute is one named, typed slot in the GPU particle layout.
// Attributes pack sequentially; every element size is a multiple of four
// bytes so raw buffer loads stay aligned.
type particleAttribute struct {
	Name   string
	Type   graph.ValueType
	Offset int32

	access particleAccess
	local  Value
}

type particleKey struct {
	name string
	typ  graph.ValueType
}

// particleState is the per-compile particle layout plus the bindings of
// the segment currently being generated.
type particleState struct {
	attrs    []*particleAttribute
	byKey    map[particleKey]*particleAttribute
	stride   int32
	capacity int32

	// reading selects how on-demand locals are produced: the update pass
	// reads attributes from the buffer, the initialize pass zeroes them.
	reading bool
}

func newParticleState() *particleState {
	return &particleState{byKey: make(map[particleKey]*particleAttribute)}
}

// attributeSize returns the packed byte size of an attribute element.
func attributeSize(t graph.ValueType) int32 {
	switch t {
	case graph.TypeFloat2:
		return 8
	case graph.TypeFloat3:
		return 12
	case graph.TypeFloat4:
		return 16
	default:
		return 4
	}
}

// typeSuffix names the typed raw buffer accessor for an element type, as
// in GetParticleFloat3 or SetParticleUint.
func typeSuffix(t graph.ValueType) string {
	switch t {
	case graph.TypeFloat:
		return "Float"
	case graph.TypeFloat2:
		return "Float2"
	case graph.TypeFloat3:
		return "Float3"
	case graph.TypeFloat4:
		return "Float4"
	case graph.TypeInt:
		return "Int"
	case graph.TypeUint:
		return "Uint"
	}
	return "Float"
}

// normalizeAttributeType maps value types onto the six supported particle
// element types.
func normalizeAttributeType(t graph.ValueType) graph.ValueType {
	switch t {
	case graph.TypeFloat, graph.TypeFloat2, graph.TypeFloat3, graph.TypeFloat4,
		graph.TypeInt, graph.TypeUint:
		return t
	case graph.TypeColor:
		return graph.TypeFloat4
	case graph.TypeBool:
		return graph.TypeUint
	}
	return graph.TypeFloat
}

// attributeTypeFromValue decodes the type selector a custom attribute node
// stores: 0 Float, 1 Float2, 2 Float3, 3 Float4, 4 Int, 5 Uint.
func attributeTypeFromValue(sel int32) (graph.ValueType, bool) {
	switch sel {
	case 0:
		return graph.TypeFloat, true
	case 1:
		return graph.TypeFloat2, true
	case 2:
		return graph.TypeFloat3, true
	case 3:
		return graph.TypeFloat4, true
	case 4:
		return graph.TypeInt, true
	case 5:
		return graph.TypeUint, true
	}
	return graph.TypeInvalid, false
}

// registerParticleAttribute finds or appends an attribute without binding
// a local. Offsets are append-only, so the layout is stable once the
// passes start emitting buffer accesses.
func (ps *particleState) register(name string, t graph.ValueType, mode particleAccess) *particleAttribute {
	t = normalizeAttributeType(t)
	key := particleKey{name, t}
	a := ps.byKey[key]
	if a == nil {
		a = &particleAttribute{Name: name, Type: t, Offset: ps.stride}
		ps.stride += attributeSize(t)
		ps.byKey[key] = a
		ps.attrs = append(ps.attrs, a)
	}
	a.access |= mode
	return a
}

// bindAttribute gives an attribute its local for the current segment:
// a typed buffer read in the update pass, a zero in initialize.
func (c *compilation) bindAttribute(a *particleAttribute) {
	if c.particles.reading {
		a.local = c.w.WriteLocal(a.Type, "GetParticle{0}(context.ParticleIndex, {1})", typeSuffix(a.Type), a.Offset)
	} else {
		a.local = c.w.WriteLocal(a.Type, "{0}", Zero(a.Type))
	}
}

// accessParticleAttribute resolves an attribute to its segment local,
// creating the attribute and the binding as needed.
func (c *compilation) accessParticleAttribute(node *graph.Node, box *graph.Box, name string, t graph.ValueType, mode particleAccess) Value {
	if c.particles == nil {
		c.report(ErrInternal, node, box, "particle attribute used outside a particle graph")
		return Value{}
	}
	a := c.particles.register(name, t, mode)
	if a.local.IsInvalid() {
		c.bindAttribute(a)
	}
	return a.local
}

// particleAttrNodes maps the typed attribute input nodes onto layout slots.
var particleAttrNodes = map[uint16]struct {
	name string
	typ  graph.ValueType
}{
	ParticlePosition:        {"Position", graph.TypeFloat3},
	ParticleLifetime:        {"Lifetime", graph.TypeFloat},
	ParticleAge:             {"Age", graph.TypeFloat},
	ParticleColor:           {"Color", graph.TypeFloat4},
	ParticleVelocity:        {"Velocity", graph.TypeFloat3},
	ParticleSpriteSize:      {"SpriteSize", graph.TypeFloat2},
	ParticleMass:            {"Mass", graph.TypeFloat},
	ParticleRotation:        {"Rotation", graph.TypeFloat3},
	ParticleAngularVelocity: {"AngularVelocity", graph.TypeFloat3},
}

// moduleSetters maps the typed setter modules onto their target slots.
var moduleSetters = map[uint16]struct {
	name string
	typ  graph.ValueType
}{
	ModuleSetPosition:        {"Position", graph.TypeFloat3},
	ModuleSetLifetime:        {"Lifetime", graph.TypeFloat},
	ModuleSetAge:             {"Age", graph.TypeFloat},
	ModuleSetColor:           {"Color", graph.TypeFloat4},
	ModuleSetVelocity:        {"Velocity", graph.TypeFloat3},
	ModuleSetRotation:        {"Rotation", graph.TypeFloat3},
	ModuleSetAngularVelocity: {"AngularVelocity", graph.TypeFloat3},
	ModuleSetSpriteSize:      {"SpriteSize", graph.TypeFloat2},
	ModuleSetMass:            {"Mass", graph.TypeFloat},
}

// particlesGroup handles particle data inputs: attribute reads and the
// simulation constants.
func particlesGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	if c.particles == nil {
		c.report(ErrInternal, node, box, "particle input used outside a particle graph")
		return Value{}
	}
	switch node.TypeID() {
	case ParticleEmitter:
		c.report(ErrInternal, node, box, "particle emitter root evaluated as a source")
		return Value{}

	case ParticleAttribute:
		t, ok := attributeTypeFromValue(node.IntValue(1))
		if !ok {
			c.report(ErrInternal, node, box, "unsupported particle attribute type %d", node.IntValue(1))
			return Value{}
		}
		name := node.StringValueAt(0)
		if name == "" {
			c.report(ErrInternal, node, box, "particle attribute has no name")
			return Value{}
		}
		return c.accessParticleAttribute(node, box, name, t, accessRead)

	case ParticleNormalizedAge:
		age := c.accessParticleAttribute(node, box, "Age", graph.TypeFloat, accessRead)
		life := c.accessParticleAttribute(node, box, "Lifetime", graph.TypeFloat, accessRead)
		return c.w.WriteLocal(graph.TypeFloat, "{0} / max({1}, 0.000001)", age, life)

	case ParticleDeltaTime:
		return NewValue(graph.TypeFloat, "DeltaTime")

	default:
		if attr, ok := particleAttrNodes[node.TypeID()]; ok {
			return c.accessParticleAttribute(node, box, attr.name, attr.typ, accessRead)
		}
		c.report(ErrInternal, node, box, "unknown particle node type %d", node.TypeID())
		return Value{}
	}
}

// particleModulesGroup rejects module nodes evaluated as sources. Modules
// are statements, driven in order by the pass writers.
func particleModulesGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	c.report(ErrInternal, node, box, "particle module evaluated as a source")
	return Value{}
}

// moduleStage returns which pass a module type belongs to, or false for
// the CPU-side stages (spawn, render) the GPU codegen skips.
func moduleStage(typ uint16) (update bool, ok bool) {
	switch {
	case typ >= 200 && typ <= 299:
		return false, true
	case typ >= 300 && typ <= 399:
		return true, true
	}
	return false, false
}

// evalModule emits the statements of one simulation module.
func (c *compilation) evalModule(n *graph.Node) {
	switch n.TypeID() {
	case ModuleSetAttribute, ModuleUpdateAttribute:
		t, ok := attributeTypeFromValue(n.IntValue(1))
		if !ok {
			c.report(ErrInternal, n, nil, "unsupported particle attribute type %d", n.IntValue(1))
			return
		}
		name := n.StringValueAt(0)
		if name == "" {
			c.report(ErrInternal, n, nil, "particle attribute has no name")
			return
		}
		a := c.accessParticleAttribute(n, nil, name, t, accessWrite)
		v := c.cast(c.tryValue(n, 0, 2), a.Type, n, n.Box(0))
		c.w.WriteLine("{0} = {1};", a, v)

	case ModulePositionSphere:
		pos := c.accessParticleAttribute(n, nil, "Position", graph.TypeFloat3, accessWrite)
		center := c.cast(c.tryValueDefault(n, 0, Zero(graph.TypeFloat3)), graph.TypeFloat3, n, n.Box(0))
		radius := c.tryValueDefault(n, 1, MakeFloat(100)).AsFloat()
		c.w.WriteLine("{0} = {1} + RandomPointInsideSphere(context) * {2};", pos, center, radius)

	case ModuleUpdateAge:
		age := c.accessParticleAttribute(n, nil, "Age", graph.TypeFloat, accessRead|accessWrite)
		c.w.WriteLine("{0} += DeltaTime;", age)

	case ModuleGravity:
		vel := c.accessParticleAttribute(n, nil, "Velocity", graph.TypeFloat3, accessRead|accessWrite)
		force := c.cast(c.tryValueDefault(n, 0, MakeFloat3(0, -981, 0)), graph.TypeFloat3, n, n.Box(0))
		c.w.WriteLine("{0} += {1} * DeltaTime;", vel, force)

	case ModuleLinearDrag:
		vel := c.accessParticleAttribute(n, nil, "Velocity", graph.TypeFloat3, accessRead|accessWrite)
		drag := c.tryValueDefault(n, 0, MakeFloat(0.1)).AsFloat()
		c.w.WriteLine("{0} *= saturate(1.0 - {1} * DeltaTime);", vel, drag)

	default:
		if target, ok := moduleSetters[n.TypeID()]; ok {
			a := c.accessParticleAttribute(n, nil, target.name, target.typ, accessWrite)
			v := c.cast(c.tryValue(n, 0, 0), a.Type, n, n.Box(0))
			c.w.WriteLine("{0} = {1};", a, v)
			return
		}
	}
}

// prescanParticles walks the emitter graph before any code is generated
// so the layout is complete when the first buffer offset is emitted. The
// walk follows every connection and descends into called function graphs.
func (c *compilation) prescanParticles(g *graph.Graph) {
	seen := make(map[*graph.Node]bool)
	for _, n := range g.Nodes {
		if n.GroupID() == GroupParticleModules {
			if _, ok := moduleStage(n.TypeID()); ok {
				c.prescanNode(n, seen)
			}
		}
	}
}

func (c *compilation) prescanNode(n *graph.Node, seen map[*graph.Node]bool) {
	if n == nil || seen[n] {
		return
	}
	seen[n] = true

	switch n.GroupID() {
	case GroupParticles:
		switch n.TypeID() {
		case ParticleAttribute:
			if t, ok := attributeTypeFromValue(n.IntValue(1)); ok && n.StringValueAt(0) != "" {
				c.particles.register(n.StringValueAt(0), t, accessRead)
			}
		case ParticleNormalizedAge:
			c.particles.register("Age", graph.TypeFloat, accessRead)
			c.particles.register("Lifetime", graph.TypeFloat, accessRead)
		default:
			if attr, ok := particleAttrNodes[n.TypeID()]; ok {
				c.particles.register(attr.name, attr.typ, accessRead)
			}
		}

	case GroupParticleModules:
		switch n.TypeID() {
		case ModuleSetAttribute, ModuleUpdateAttribute:
			if t, ok := attributeTypeFromValue(n.IntValue(1)); ok && n.StringValueAt(0) != "" {
				c.particles.register(n.StringValueAt(0), t, accessWrite)
			}
		case ModulePositionSphere:
			c.particles.register("Position", graph.TypeFloat3, accessWrite)
		case ModuleUpdateAge:
			c.particles.register("Age", graph.TypeFloat, accessRead|accessWrite)
		case ModuleGravity, ModuleLinearDrag:
			c.particles.register("Velocity", graph.TypeFloat3, accessRead|accessWrite)
		default:
			if target, ok := moduleSetters[n.TypeID()]; ok {
				c.particles.register(target.name, target.typ, accessWrite)
			}
		}

	case GroupFunction:
		if n.TypeID() == FunctionCall {
			if fg, ok := c.loadGraph(n.GUIDValue(0), n); ok {
				for _, fn := range fg.Nodes {
					c.prescanNode(fn, seen)
				}
			}
		}
	}

	for i := range n.Boxes {
		for _, peer := range n.Boxes[i].Connections {
			c.prescanNode(peer.Parent, seen)
		}
	}
}

// writeParticlePass generates one simulation segment body. The initialize
// pass zeroes every attribute, runs the init modules and stores the
// results; the update pass reads every attribute, runs the update
// modules, applies the kill test and the integration steps, re-registers
// the surviving particle and stores the results.
func (c *compilation) writeParticlePass(g *graph.Graph, update bool) {
	ps := c.particles
	ps.reading = update
	if update {
		c.tree = treeParticleUpdate
	} else {
		c.tree = treeParticleSpawn
	}
	for _, a := range ps.attrs {
		a.local = Value{}
	}

	// Bind every known attribute up front so module order cannot change
	// what a read observes.
	for _, a := range ps.attrs {
		a.access |= accessRead | accessWrite
		c.bindAttribute(a)
	}

	for _, n := range g.Nodes {
		if n.GroupID() != GroupParticleModules {
			continue
		}
		stage, ok := moduleStage(n.TypeID())
		if !ok || stage != update {
			continue
		}
		c.evalModule(n)
	}

	if update {
		c.writeParticleKill()
		c.writeParticleIntegration()
		c.w.WriteLine("if (AddParticle(context.ParticleIndex)) return;")
	}

	for _, a := range ps.attrs {
		if a.access&accessWrite == 0 || a.local.IsInvalid() {
			continue
		}
		c.w.WriteLine("SetParticle{0}(context.ParticleIndex, {1}, {2});", typeSuffix(a.Type), a.Offset, a.local)
	}
}

// writeParticleKill retires particles whose age passed their lifetime.
// Killed particles skip the writebacks and the alive-list hand-off.
func (c *compilation) writeParticleKill() {
	ps := c.particles
	age := ps.byKey[particleKey{"Age", graph.TypeFloat}]
	life := ps.byKey[particleKey{"Lifetime", graph.TypeFloat}]
	if age == nil || life == nil || age.local.IsInvalid() || life.local.IsInvalid() {
		return
	}
	c.w.WriteLine("bool kill = {0} >= {1};", age.local, life.local)
	c.w.WriteLine("if (kill) return;")
}

// writeParticleIntegration applies the Euler steps for the attribute
// pairs that drive them.
func (c *compilation) writeParticleIntegration() {
	ps := c.particles
	pairs := [...][2]particleKey{
		{{"Position", graph.TypeFloat3}, {"Velocity", graph.TypeFloat3}},
		{{"Rotation", graph.TypeFloat3}, {"AngularVelocity", graph.TypeFloat3}},
	}
	for _, p := range pairs {
		dst := ps.byKey[p[0]]
		src := ps.byKey[p[1]]
		if dst == nil || src == nil || dst.local.IsInvalid() || src.local.IsInvalid() {
			continue
		}
		dst.access |= accessWrite
		c.w.WriteLine("{0} += {1} * DeltaTime;", dst.local, src.local)
	}
}

// writeParticleLayout emits the commented attribute table segment.
func (c *compilation) writeParticleLayout() {
	ps := c.particles
	c.w.WriteLine("// Particle attributes layout:")
	for _, a := range ps.attrs {
		c.w.WriteLine("// - offset {0}, type {1}, name {2}", a.Offset, typeSuffix(a.Type), a.Name)
	}
	c.w.WriteLine("// Stride: {0} bytes", ps.stride)
	c.w.WriteLine("// Data: {0} bytes for {1} particles", ps.stride*ps.capacity, ps.capacity)
	c.w.WriteLine("// Buffer: {0} bytes including the alive counter and list", ps.stride*ps.capacity+4+ps.capacity*4)
}

// particleDefines appends the simulation constants to the defines list.
func (c *compilation) particleDefines() {
	ps := c.particles
	c.addDefine(fmt.Sprintf("PARTICLE_STRIDE %d", ps.stride))
	c.addDefine(fmt.Sprintf("PARTICLE_CAPACITY %d", ps.capacity))
	c.addDefine(fmt.Sprintf("PARTICLE_THRESHOLD %d", ps.stride*ps.capacity))
}

// findParticleRoot returns the emitter root node, or nil.
func findParticleRoot(g *graph.Graph) *graph.Node {
	for _, n := range g.Nodes {
		if n.GroupID() == GroupParticles && n.TypeID() == ParticleEmitter {
			return n
		}
	}
	return nil
}
