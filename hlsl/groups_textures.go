// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/google/uuid"

	"github.com/gogpu/visject/graph"
)

// Engine static samplers, declared by the template prelude.
const (
	samplerLinearWrap = "SamplerLinearWrap"
	samplerPointClamp = "SamplerPointClamp"
)

// sceneTextureNames maps SceneTexture selector values to GBuffer slots.
var sceneTextureNames = []string{
	"SceneColor",
	"SceneDepth",
	"DiffuseColor",
	"SpecularColor",
	"WorldNormal",
	"AmbientOcclusion",
	"Metalness",
	"Roughness",
	"Specular",
	"BaseColor",
	"ShadingModel",
}

// texturesGroup handles texture sampling nodes. Texture assets referenced
// by value become internal parameters so the engine binds them like any
// other texture input.
func texturesGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	switch node.TypeID() {
	case TexCoord:
		return NewValue(graph.TypeFloat2, "input.TexCoord")

	case Texture:
		return assetTextureBox(c, node, box, graph.ParamTexture)
	case CubeTexture:
		return assetTextureBox(c, node, box, graph.ParamCubeTexture)
	case NormalMap:
		return assetTextureBox(c, node, box, graph.ParamNormalMap)

	case SceneTexture:
		selector := int(node.IntValue(0))
		if selector < 0 || selector >= len(sceneTextureNames) {
			c.report(ErrInternal, node, box, "unknown scene texture %d", selector)
			return Value{}
		}
		p := c.params.FindOrAdd(graph.ParamSceneTexture, sceneTextureNames[selector], graph.NullValue{})
		return textureBox(c, node, box, p)

	case SceneDepth:
		p := c.params.FindOrAdd(graph.ParamSceneTexture, "SceneDepth", graph.NullValue{})
		if !c.checkSlot(p, node) {
			return Zero(graph.TypeFloat)
		}
		uv := c.cast(c.tryValueDefault(node, 0, NewValue(graph.TypeFloat2, "input.ScreenUV")), graph.TypeFloat2, node, box)
		return c.w.WriteLocal(graph.TypeFloat, "{0}.Sample({1}, {2}).r", p.ShaderName, samplerPointClamp, uv)

	case SampleTexture:
		obj := c.tryValue(node, 0, -1)
		if obj.Type != graph.TypeObject || obj.Text == "" {
			c.report(ErrMissingAsset, node, box, "no texture object to sample")
			return Value{}
		}
		if p := c.params.FindByShaderName(obj.Text); p != nil && !c.checkSlot(p, node) {
			return Zero(graph.TypeFloat4)
		}
		uv := c.tryValueDefault(node, 1, NewValue(graph.TypeFloat2, "input.TexCoord"))
		if uv.Type != graph.TypeFloat3 {
			uv = c.cast(uv, graph.TypeFloat2, node, box)
		}
		return c.w.WriteLocal(graph.TypeFloat4, "{0}.Sample({1}, {2})", obj, samplerLinearWrap, uv)

	default:
		c.report(ErrInternal, node, box, "unknown texture node type %d", node.TypeID())
		return Value{}
	}
}

func assetTextureBox(c *compilation, node *graph.Node, box *graph.Box, kind graph.ParameterKind) Value {
	asset := node.GUIDValue(0)
	if asset == uuid.Nil {
		c.report(ErrMissingAsset, node, box, "texture node has no asset")
		return Value{}
	}
	return textureBox(c, node, box, c.params.FindOrAddAsset(kind, asset))
}

// textureBox resolves one box of a texture-shaped node: box 1 is the
// texture object, box 2 the sampled color, boxes 3..6 its components. The
// sample itself caches on box 2 so component taps reuse one Sample call.
func textureBox(c *compilation, node *graph.Node, box *graph.Box, p *ShaderParameter) Value {
	switch {
	case box.ID == 1:
		return NewValue(graph.TypeObject, p.ShaderName)

	case box.ID == 2:
		if !c.checkSlot(p, node) {
			if p.Kind == graph.ParamNormalMap {
				return Zero(graph.TypeFloat3)
			}
			return Zero(graph.TypeFloat4)
		}
		return emitSample(c, node, p)

	case box.ID >= 3 && box.ID <= 6:
		sample := c.value(node.Box(2))
		return sample.Component(int(box.ID) - 3)

	default:
		return Value{}
	}
}

// emitSample writes the Sample call for a texture-shaped node, box 0
// supplying the coordinates.
func emitSample(c *compilation, node *graph.Node, p *ShaderParameter) Value {
	sampler := samplerLinearWrap
	uvDefault := NewValue(graph.TypeFloat2, "input.TexCoord")
	uvType := graph.TypeFloat2
	switch p.Kind {
	case graph.ParamSceneTexture:
		sampler = samplerPointClamp
		uvDefault = NewValue(graph.TypeFloat2, "input.ScreenUV")
	case graph.ParamCubeTexture, graph.ParamVolumeTexture, graph.ParamGlobalSDF:
		uvDefault = Zero(graph.TypeFloat3)
		uvType = graph.TypeFloat3
	}
	uv := c.cast(c.tryValueDefault(node, 0, uvDefault), uvType, node, nil)
	if p.Kind == graph.ParamNormalMap {
		return c.w.WriteLocal(graph.TypeFloat3, "{0}.Sample({1}, {2}).xyz * 2.0 - 1.0", p.ShaderName, sampler, uv)
	}
	return c.w.WriteLocal(graph.TypeFloat4, "{0}.Sample({1}, {2})", p.ShaderName, sampler, uv)
}

// parametersGroup handles parameter reference nodes. Scalar and vector
// parameters read straight from the constant buffer; texture parameters
// behave like the matching texture node; channel masks fold into a dot.
func parametersGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	if node.TypeID() != GetParameter {
		c.report(ErrInternal, node, box, "unknown parameter node type %d", node.TypeID())
		return Value{}
	}
	id := node.GUIDValue(0)
	gp := c.currentGraph().ParameterByID(id)
	if gp == nil {
		c.report(ErrMissingVariable, node, box, "missing graph parameter %s", id)
		return Value{}
	}
	sp := c.params.FindByID(id)
	if sp == nil {
		sp = c.params.Register(gp)
	}

	switch gp.Kind {
	case graph.ParamBool, graph.ParamInt, graph.ParamFloat:
		return NewValue(gp.Kind.ValueType(), sp.ShaderName)

	case graph.ParamFloat2, graph.ParamFloat3, graph.ParamFloat4, graph.ParamColor:
		t := gp.Kind.ValueType()
		v := NewValue(t, sp.ShaderName)
		if box.ID == 0 {
			return v
		}
		i := int(box.ID) - 1
		if i >= t.Components() {
			return Value{}
		}
		return v.Component(i)

	case graph.ParamGameplayGlobal:
		return NewValue(variantValueType(gp.Value), sp.ShaderName)

	case graph.ParamMatrix:
		// No matrix slot in the value system; expose the raw identifier for
		// object-typed consumers.
		return NewValue(graph.TypeObject, sp.ShaderName)

	case graph.ParamChannelMask:
		in := c.cast(c.tryValue(node, 0, -1), graph.TypeFloat4, node, box)
		return c.w.WriteLocal(graph.TypeFloat, "dot({0}, {1})", in, sp.ShaderName)

	case graph.ParamTexture, graph.ParamNormalMap, graph.ParamCubeTexture,
		graph.ParamTextureArray, graph.ParamVolumeTexture, graph.ParamSceneTexture:
		return textureBox(c, node, box, sp)

	case graph.ParamTextureGroupSampler, graph.ParamGlobalSDF:
		return NewValue(graph.TypeObject, sp.ShaderName)

	default:
		c.report(ErrInternal, node, box, "unsupported parameter kind %s", gp.Kind)
		return Value{}
	}
}

// variantValueType maps a stored default value to the type a reference to
// it evaluates as.
func variantValueType(v graph.Variant) graph.ValueType {
	switch graph.TypeOf(v) {
	case graph.VariantBool:
		return graph.TypeBool
	case graph.VariantInt:
		return graph.TypeInt
	case graph.VariantUint:
		return graph.TypeUint
	case graph.VariantFloat2:
		return graph.TypeFloat2
	case graph.VariantFloat3:
		return graph.TypeFloat3
	case graph.VariantFloat4:
		return graph.TypeFloat4
	case graph.VariantColor:
		return graph.TypeColor
	default:
		return graph.TypeFloat
	}
}
