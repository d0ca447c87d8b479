// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/gogpu/visject/graph"
)

// platformDefines maps PlatformSwitch input boxes 2..7 to preprocessor
// symbols, in box order.
var platformDefines = []string{
	"PLATFORM_WINDOWS",
	"PLATFORM_LINUX",
	"PLATFORM_PS4",
	"PLATFORM_XBOX_ONE",
	"PLATFORM_ANDROID",
	"PLATFORM_SWITCH",
}

// noiseInclude is the shader library with the noise helpers.
const noiseInclude = "./Flax/Noise.hlsl"

// toolsGroup handles utility nodes: desaturation, time, gradients, curves,
// platform switches, noise and gameplay globals.
func toolsGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	switch node.TypeID() {
	case Desaturation:
		in := c.cast(c.tryValue(node, 0, -1), graph.TypeFloat3, node, box)
		scale := c.tryValueDefault(node, 1, One(graph.TypeFloat)).AsFloat()
		weights := variantValue(nodeValue(node, 0))
		if weights.IsInvalid() {
			weights = MakeFloat3(0.299, 0.587, 0.114)
		}
		lum := c.w.WriteLocal(graph.TypeFloat, "dot({0}, {1})", in, weights.AsFloat3())
		return c.w.WriteLocal(graph.TypeFloat3, "lerp({0}, {1}, {2})", in, lum.AsFloat3(), scale)

	case Time:
		return NewValue(graph.TypeFloat, "TimeParam")

	case ColorGradient:
		return colorGradient(c, node)

	case CurveFloat, CurveFloat2, CurveFloat3, CurveFloat4:
		t := graph.VectorOf(int(node.TypeID()-CurveFloat) + 1)
		time := c.tryValue(node, 0, -1).AsFloat()
		return bakeCurve(c, node, t, time)

	case PlatformSwitch:
		return platformSwitch(c, node)

	case PerlinNoise, SimplexNoise, WorleyNoise, VoronoiNoise, CustomNoise:
		return noise(c, node, box)

	case GameplayGlobal:
		return gameplayGlobal(c, node, box)

	default:
		c.report(ErrInternal, node, box, "unknown tool node type %d", node.TypeID())
		return Value{}
	}
}

// nodeValue returns the i-th node constant, or nil.
func nodeValue(node *graph.Node, i int) graph.Variant {
	if i < 0 || i >= len(node.Values) {
		return nil
	}
	return node.Values[i]
}

// colorGradient folds the gradient stops stored in the node values into a
// piecewise lerp over the time input. Stops come as values[0]=count then
// (time, color) pairs.
func colorGradient(c *compilation, node *graph.Node) Value {
	count := int(node.IntValue(0))
	if count <= 0 {
		return Zero(graph.TypeFloat4)
	}
	times := make([]float32, count)
	colors := make([]Value, count)
	for i := 0; i < count; i++ {
		times[i] = node.FloatValue(1 + i*2)
		colors[i] = variantValue(nodeValue(node, 2+i*2)).AsFloat4()
	}
	if count == 1 {
		return colors[0]
	}

	time := c.w.WriteLocal(graph.TypeFloat, "{0}", c.tryValue(node, 0, -1).AsFloat())
	if count == 2 {
		dt := times[1] - times[0]
		if dt <= 0 {
			return colors[1]
		}
		alpha := c.w.WriteLocal(graph.TypeFloat, "saturate(({0} - {1}) * {2})", time, MakeFloat(times[0]), MakeFloat(1/dt))
		return c.w.WriteLocal(graph.TypeFloat4, "lerp({0}, {1}, {2})", colors[0], colors[1], alpha)
	}

	res := c.w.DeclareLocal(graph.TypeFloat4)
	c.w.WriteLine("if ({0} <= {1})", time, MakeFloat(times[0]))
	c.w.pushIndent()
	c.w.WriteLine("{0} = {1};", res, colors[0])
	c.w.popIndent()
	for i := 1; i < count; i++ {
		c.w.WriteLine("else if ({0} < {1})", time, MakeFloat(times[i]))
		c.w.pushIndent()
		dt := times[i] - times[i-1]
		if dt <= 0 {
			c.w.WriteLine("{0} = {1};", res, colors[i])
		} else {
			c.w.WriteLine("{0} = lerp({1}, {2}, ({3} - {4}) * {5});",
				res, colors[i-1], colors[i], time, MakeFloat(times[i-1]), MakeFloat(1/dt))
		}
		c.w.popIndent()
	}
	c.w.WriteLine("else")
	c.w.pushIndent()
	c.w.WriteLine("{0} = {1};", res, colors[count-1])
	c.w.popIndent()
	return res
}

// platformSwitch picks a per-platform value at shader compile time.
// Box 1 is the fallback, boxes 2..7 override under their platform define.
func platformSwitch(c *compilation, node *graph.Node) Value {
	def := c.tryValue(node, 1, -1)
	if def.IsInvalid() {
		def = Zero(graph.TypeFloat)
	}
	res := c.w.WriteLocal(def.Type, "{0}", def)
	for i, define := range platformDefines {
		boxID := uint8(i + 2)
		b := node.Box(boxID)
		if b == nil || !b.HasConnection() {
			continue
		}
		c.w.Write("#ifdef " + define + "\n")
		v := c.cast(c.value(b.FirstConnection()), def.Type, node, b)
		c.w.WriteLine("{0} = {1};", res, v)
		c.w.Write("#endif\n")
	}
	return res
}

// noise emits a call into the shared noise library, registering the
// include once.
func noise(c *compilation, node *graph.Node, box *graph.Box) Value {
	c.w.AddInclude(noiseInclude)
	pos2 := func() Value { return c.cast(c.tryValue(node, 0, -1), graph.TypeFloat2, node, box) }
	switch node.TypeID() {
	case PerlinNoise:
		return c.w.WriteLocal(graph.TypeFloat, "PerlinNoise({0})", pos2())
	case SimplexNoise:
		return c.w.WriteLocal(graph.TypeFloat, "SimplexNoise({0})", pos2())
	case WorleyNoise:
		return c.w.WriteLocal(graph.TypeFloat, "WorleyNoise({0}).x", pos2())
	case VoronoiNoise:
		return c.w.WriteLocal(graph.TypeFloat, "VoronoiNoise({0}).x", pos2())
	default:
		pos := c.cast(c.tryValue(node, 0, -1), graph.TypeFloat3, node, box)
		return c.w.WriteLocal(graph.TypeFloat, "CustomNoise({0})", pos)
	}
}

// gameplayGlobal resolves a variable from a gameplay globals asset into an
// internal constant buffer parameter updated by the engine each frame.
func gameplayGlobal(c *compilation, node *graph.Node, box *graph.Box) Value {
	asset := node.GUIDValue(0)
	name := node.StringValueAt(1)
	vars, ok := c.opts.GameplayGlobals[asset]
	if !ok {
		c.report(ErrMissingAsset, node, box, "missing gameplay globals asset %s", asset)
		return Value{}
	}
	t, ok := vars[name]
	if !ok {
		c.report(ErrMissingVariable, node, box, "missing gameplay global variable %q", name)
		return Value{}
	}
	p := c.params.FindOrAdd(graph.ParamGameplayGlobal, name, zeroVariant(t))
	return NewValue(t, p.ShaderName)
}

// zeroVariant returns the default stored value for a gameplay global of
// the given type.
func zeroVariant(t graph.ValueType) graph.Variant {
	switch t {
	case graph.TypeBool:
		return graph.BoolValue(false)
	case graph.TypeInt:
		return graph.IntValue(0)
	case graph.TypeUint:
		return graph.UintValue(0)
	case graph.TypeFloat2:
		return graph.Float2Value{}
	case graph.TypeFloat3:
		return graph.Float3Value{}
	case graph.TypeFloat4:
		return graph.Float4Value{}
	case graph.TypeColor:
		return graph.ColorValue{}
	default:
		return graph.FloatValue(0)
	}
}
