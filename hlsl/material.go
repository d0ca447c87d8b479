// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/visject/graph"
)

// maxVertexInterpolators caps the custom float4 slots carried from the
// vertex to the pixel stage.
const maxVertexInterpolators = 16

// domainMask selects the material domains an input participates in.
type domainMask uint16

const allDomains domainMask = 1<<DomainSurface | 1<<DomainPostProcess |
	1<<DomainDecal | 1<<DomainGUI | 1<<DomainTerrain | 1<<DomainParticle |
	1<<DomainDeformable | 1<<DomainVolumeParticle

const surfaceDomains domainMask = 1<<DomainSurface | 1<<DomainTerrain | 1<<DomainDeformable

// materialInput describes one sink of a material root (or layer root)
// node: the box id, the Material struct field it lands in, the expected
// type and default, the tree that evaluates it and the domains where the
// input is meaningful.
type materialInput struct {
	box     uint8
	field   string
	typ     graph.ValueType
	def     Value
	tree    shaderTree
	domains domainMask
}

var materialInputs = []materialInput{
	{1, "Color", graph.TypeFloat3, MakeFloat3(1, 1, 1), treePixel, allDomains},
	{2, "Mask", graph.TypeFloat, MakeFloat(1), treePixel, allDomains &^ (1 << DomainPostProcess)},
	{3, "Emissive", graph.TypeFloat3, MakeFloat3(0, 0, 0), treePixel, allDomains},
	{4, "Metalness", graph.TypeFloat, MakeFloat(0), treePixel, surfaceDomains | 1<<DomainDecal},
	{5, "Specular", graph.TypeFloat, MakeFloat(0.5), treePixel, surfaceDomains | 1<<DomainDecal},
	{6, "Roughness", graph.TypeFloat, MakeFloat(0.5), treePixel, surfaceDomains | 1<<DomainDecal},
	{7, "AO", graph.TypeFloat, MakeFloat(1), treePixel, surfaceDomains},
	{8, "Normal", graph.TypeFloat3, MakeFloat3(0, 0, 1), treePixel, surfaceDomains | 1<<DomainDecal | 1<<DomainParticle},
	{9, "Opacity", graph.TypeFloat, MakeFloat(1), treePixel, allDomains &^ (1 << DomainTerrain)},
	{10, "Refraction", graph.TypeFloat, MakeFloat(1), treePixel, 1<<DomainSurface | 1<<DomainDeformable},
	{11, "PositionOffset", graph.TypeFloat3, MakeFloat3(0, 0, 0), treeVertex, surfaceDomains | 1<<DomainParticle},
	{12, "TessellationMultiplier", graph.TypeFloat, MakeFloat(4), treeVertex, surfaceDomains},
	{13, "WorldDisplacement", graph.TypeFloat3, MakeFloat3(0, 0, 0), treeDomain, surfaceDomains},
	{14, "SubsurfaceColor", graph.TypeFloat3, MakeFloat3(0, 0, 0), treePixel, 1<<DomainSurface | 1<<DomainDeformable},
}

func materialInputByBox(box uint8) *materialInput {
	for i := range materialInputs {
		if materialInputs[i].box == box {
			return &materialInputs[i]
		}
	}
	return nil
}

func (c *compilation) domainHas(in *materialInput) bool {
	return in.domains&(1<<c.info.Domain) != 0
}

// materialVar is the aggregate local every tree body builds and returns.
var materialVar = NewValue(graph.TypeVoid, "material")

// writeMaterialAggregate pulls the root-shaped node's inputs for the
// active tree and domain and assigns them onto target, a Material-typed
// local.
func (c *compilation) writeMaterialAggregate(target Value, node *graph.Node) {
	for i := range materialInputs {
		in := &materialInputs[i]
		if in.tree != c.tree || !c.domainHas(in) {
			continue
		}
		v := c.tryValueDefault(node, in.box, in.def)
		v = c.cast(v, in.typ, node, node.Box(in.box))
		c.w.WriteLine("{0}.{1} = {2};", target, in.field, v)
	}
}

// writeMaterialFixups emits the normal flip and the range clamps the
// lighting model expects. Applied once per pixel tree, after the
// aggregate is complete, layered or not.
func (c *compilation) writeMaterialFixups(target Value) {
	if in := materialInputByBox(8); c.domainHas(in) {
		c.w.WriteLine("{0}.Normal *= input.TwoSidedSign;", target)
		c.w.WriteLine("{0}.Normal = normalize({0}.Normal);", target)
		if c.info.Flags&FlagWorldSpaceNormal != 0 {
			c.w.WriteLine("{0}.Normal = TransformWorldVectorToTangent(input, {0}.Normal);", target)
		}
	}
	if in := materialInputByBox(4); c.domainHas(in) {
		c.w.WriteLine("{0}.Metalness = saturate({0}.Metalness);", target)
	}
	if in := materialInputByBox(6); c.domainHas(in) {
		c.w.WriteLine("{0}.Roughness = clamp({0}.Roughness, 0.04, 1.0);", target)
	}
	if in := materialInputByBox(7); c.domainHas(in) {
		c.w.WriteLine("{0}.AO = saturate({0}.AO);", target)
	}
	if in := materialInputByBox(9); c.domainHas(in) {
		c.w.WriteLine("{0}.Opacity = saturate({0}.Opacity);", target)
	}
}

// writeMaterialTree generates one tree body: pixel, vertex or domain.
// When the root's Layer input is connected the aggregate comes from the
// layer subtree, otherwise from direct input pulls.
func (c *compilation) writeMaterialTree(root *graph.Node, tree shaderTree) {
	c.tree = tree
	layer := root.Box(0)
	if layer != nil && layer.HasConnection() {
		v := c.cast(c.value(layer.FirstConnection()), graph.TypeVoid, root, layer)
		c.w.WriteLine("Material material = {0};", v)
	} else {
		c.w.WriteLine("Material material = (Material)0;")
		c.writeMaterialAggregate(materialVar, root)
	}

	switch tree {
	case treePixel:
		c.writeMaterialFixups(materialVar)
	case treeVertex:
		for slot, n := range c.interpolators {
			v := c.cast(c.tryValueDefault(n, 0, Zero(graph.TypeFloat4)), graph.TypeFloat4, n, n.Box(0))
			c.w.WriteLine("material.CustomVSToPS[{0}] = {1};", slot, v)
		}
	}
	c.w.WriteLine("return material;")
}

// materialGroup handles shader input nodes and the vertex interpolator.
// The root node itself is driven by the tree writer and owns no sources.
func materialGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	switch node.TypeID() {
	case MaterialRoot:
		c.report(ErrInternal, node, box, "material root evaluated as a source")
		return Value{}

	case WorldPosition:
		return NewValue(graph.TypeFloat3, "input.WorldPosition")
	case VertexNormal:
		return NewValue(graph.TypeFloat3, "input.WorldNormal")
	case VertexColor:
		c.addDefine("USE_VERTEX_COLOR")
		return NewValue(graph.TypeFloat4, "input.VertexColor")
	case CameraVector:
		return NewValue(graph.TypeFloat3, "GetCameraVector(input)")
	case ScreenPosition:
		return NewValue(graph.TypeFloat2, "input.SVPosition.xy")
	case ScreenSize:
		return NewValue(graph.TypeFloat2, "ScreenSize.xy")
	case TwoSidedSign:
		return NewValue(graph.TypeFloat, "input.TwoSidedSign")
	case ObjectPosition:
		return NewValue(graph.TypeFloat3, "GetObjectPosition(input)")
	case ObjectScale:
		return NewValue(graph.TypeFloat3, "GetObjectScale(input)")
	case PerInstanceRandom:
		return NewValue(graph.TypeFloat, "GetPerInstanceRandom(input)")

	case DDX, DDY:
		if c.tree != treePixel {
			c.report(ErrInternal, node, box, "screen-space derivatives are pixel shader only")
			return Value{}
		}
		v := c.tryValue(node, 0, -1)
		if v.IsInvalid() {
			v = Zero(graph.TypeFloat)
		}
		fn := "ddx"
		if node.TypeID() == DDY {
			fn = "ddy"
		}
		return c.w.WriteLocal(v.Type, fn+"({0})", v)

	case VertexInterpolator:
		return vertexInterpolator(c, node, box)

	default:
		c.report(ErrInternal, node, box, "unknown material node type %d", node.TypeID())
		return Value{}
	}
}

// vertexInterpolator carries a float4 from the vertex stage to the pixel
// stage. In the pixel tree a slot is allocated and read; the vertex tree
// writer later fills the slots. Other trees pass the input through.
func vertexInterpolator(c *compilation, node *graph.Node, box *graph.Box) Value {
	if c.tree != treePixel {
		return c.cast(c.tryValueDefault(node, 0, Zero(graph.TypeFloat4)), graph.TypeFloat4, node, box)
	}
	if c.info.Domain == DomainDecal || c.info.Domain == DomainPostProcess {
		c.report(ErrInternal, node, box, "vertex interpolators are not available for %s materials", c.info.Domain)
		return Value{}
	}
	slot := -1
	for i, n := range c.interpolators {
		if n == node {
			slot = i
			break
		}
	}
	if slot < 0 {
		if len(c.interpolators) >= maxVertexInterpolators {
			c.report(ErrInternal, node, box, "too many vertex interpolators used (limit %d)", maxVertexInterpolators)
			return Value{}
		}
		c.interpolators = append(c.interpolators, node)
		slot = len(c.interpolators) - 1
	}
	return NewValue(graph.TypeFloat4, fmt.Sprintf("input.CustomVSToPS[%d]", slot))
}

// layersGroup handles material aggregates as first-class values: layer
// asset sampling, packing, unpacking and blending.
func layersGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	switch node.TypeID() {
	case SampleLayer:
		return sampleLayer(c, node, box)

	case PackMaterial:
		v := c.w.DeclareLocal(graph.TypeVoid)
		saved := c.tree
		for _, tree := range []shaderTree{treePixel, treeVertex, treeDomain} {
			c.tree = tree
			c.writeMaterialAggregate(v, node)
		}
		c.tree = saved
		return v

	case UnpackMaterial:
		in := c.materialLocal(c.cast(c.tryValue(node, 0, -1), graph.TypeVoid, node, box))
		f := materialInputByBox(box.ID)
		if f == nil {
			return Value{}
		}
		return NewValue(f.typ, group(in.Text)+"."+f.field)

	case LinearLayerBlend:
		bottom := c.materialLocal(c.cast(c.tryValue(node, 0, -1), graph.TypeVoid, node, box))
		top := c.materialLocal(c.cast(c.tryValue(node, 1, -1), graph.TypeVoid, node, box))
		alpha := c.w.WriteLocal(graph.TypeFloat, "{0}", c.tryValue(node, 2, 2).AsFloat())
		res := c.w.DeclareLocal(graph.TypeVoid)
		for i := range materialInputs {
			f := &materialInputs[i]
			if !c.domainHas(f) || f.tree != c.tree {
				continue
			}
			if f.field == "Normal" {
				c.w.WriteLine("{0}.Normal = normalize(lerp({1}.Normal, {2}.Normal, {3}));", res, bottom, top, alpha)
				continue
			}
			c.w.WriteLine("{0}.{1} = lerp({2}.{1}, {3}.{1}, {4});", res, f.field, bottom, top, alpha)
		}
		return res

	default:
		c.report(ErrInternal, node, box, "unknown layer node type %d", node.TypeID())
		return Value{}
	}
}

// sampleLayer inlines a layer asset: its parameters join the compile and
// its root inputs are pulled into a fresh Material local, in the active
// tree's context.
func sampleLayer(c *compilation, node *graph.Node, box *graph.Box) Value {
	lg, ok := c.loadGraph(node.GUIDValue(0), node)
	if !ok {
		return Value{}
	}
	root := findMaterialRoot(lg)
	if root == nil {
		c.report(ErrMissingAsset, node, box, "layer graph has no material root")
		return Value{}
	}
	c.params.RegisterGraph(lg)

	if c.lastCall[lg] != node {
		lg.ClearCaches()
		c.lastCall[lg] = node
	}

	v := c.w.DeclareLocal(graph.TypeVoid)
	c.frames = append(c.frames, frame{graph: lg, call: node})
	c.writeMaterialAggregate(v, root)
	c.frames = c.frames[:len(c.frames)-1]
	return v
}

// materialLocal pins a Material-typed value to a named local so repeated
// field reads do not duplicate the producing expression.
func (c *compilation) materialLocal(v Value) Value {
	if isIdentifier(v.Text) {
		return v
	}
	return c.w.WriteLocal(graph.TypeVoid, "{0}", v)
}

func isIdentifier(s string) bool {
	if s == "" || isDigit(s[0]) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isAlpha(c) && !isDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

// findMaterialRoot returns the graph's material root node, or nil.
func findMaterialRoot(g *graph.Graph) *graph.Node {
	for _, n := range g.Nodes {
		if n.GroupID() == GroupMaterial && n.TypeID() == MaterialRoot {
			return n
		}
	}
	return nil
}
