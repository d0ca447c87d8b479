// visjectdump - Visject graph inspector
// Prints the parameters, nodes, boxes and connections of a serialized graph
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/gogpu/visject/graph"
)

var groupNames = map[uint16]string{
	1: "Material", 2: "Constants", 3: "Math", 4: "Packing",
	5: "Textures", 6: "Parameters", 7: "Tools", 8: "Layers",
	12: "Boolean", 13: "Bitwise", 14: "Comparisons", 15: "Particles",
	16: "ParticleModules", 17: "Function",
}

var nodeNames = map[uint16]map[uint16]string{
	1: {
		1: "Root", 2: "WorldPosition", 3: "VertexNormal", 4: "VertexColor",
		5: "CameraVector", 6: "ScreenPosition", 7: "ScreenSize",
		8: "TwoSidedSign", 9: "ObjectPosition", 10: "ObjectScale",
		11: "VertexInterpolator", 12: "PerInstanceRandom", 13: "DDX", 14: "DDY",
	},
	2: {
		1: "Bool", 2: "Float", 3: "Float2", 4: "Float3", 5: "Float4",
		6: "Color", 7: "Int", 8: "Uint", 9: "PI",
	},
	3: {
		1: "Add", 2: "Subtract", 3: "Multiply", 4: "Divide", 5: "Modulo",
		6: "Absolute", 7: "Ceil", 8: "Cosine", 9: "Floor", 10: "Length",
		11: "Normalize", 12: "Power", 13: "Round", 14: "Saturate", 15: "Sine",
		16: "Sqrt", 17: "Tangent", 18: "Cross", 19: "Distance", 20: "Dot",
		21: "Maximum", 22: "Minimum", 23: "Clamp", 24: "Lerp", 25: "Reflect",
		26: "Negate", 27: "OneMinus", 28: "DeriveNormalZ", 29: "Mad",
		30: "LargestComponentMask", 31: "ArcSine", 32: "ArcCosine",
		33: "ArcTangent", 34: "ArcTangent2", 35: "BiasScale",
		36: "RotateAboutAxis", 37: "Trunc", 38: "Frac", 39: "Fmod",
		40: "NearEqual", 41: "Degrees", 42: "Radians", 43: "Remap",
		44: "RotateVector", 45: "Smoothstep", 46: "Step", 47: "TransformSpace",
	},
	4: {
		20: "PackFloat2", 21: "PackFloat3", 22: "PackFloat4",
		30: "UnpackFloat2", 31: "UnpackFloat3", 32: "UnpackFloat4",
		40: "MaskX", 41: "MaskY", 42: "MaskZ", 43: "MaskW",
		44: "MaskXY", 45: "MaskYZ", 46: "MaskXZ", 47: "MaskZW", 48: "MaskXYZ",
		60: "Append",
	},
	5: {
		1: "Texture", 2: "TexCoord", 3: "CubeTexture", 4: "NormalMap",
		5: "SceneTexture", 6: "SceneDepth", 7: "SampleTexture",
	},
	6: {1: "GetParameter"},
	7: {
		1: "Desaturation", 2: "Time", 5: "ColorGradient",
		7: "CurveFloat", 8: "CurveFloat2", 9: "CurveFloat3", 10: "CurveFloat4",
		11: "PlatformSwitch", 12: "PerlinNoise", 13: "SimplexNoise",
		14: "WorleyNoise", 15: "VoronoiNoise", 16: "CustomNoise",
		17: "GameplayGlobal",
	},
	8: {
		1: "SampleLayer", 2: "PackMaterial", 3: "UnpackMaterial",
		4: "LinearLayerBlend",
	},
	12: {1: "Not", 2: "And", 3: "Or", 4: "Xor", 5: "Nor", 6: "Nand"},
	13: {1: "Not", 2: "And", 3: "Or", 4: "Xor"},
	14: {
		1: "Equal", 2: "NotEqual", 3: "Greater", 4: "Less",
		5: "LessEqual", 6: "GreaterEqual", 7: "SwitchOnBool",
	},
	15: {
		1: "Emitter", 100: "Attribute", 101: "Position", 102: "Lifetime",
		103: "Age", 104: "Color", 105: "Velocity", 106: "NormalizedAge",
		107: "SpriteSize", 108: "Mass", 109: "Rotation",
		110: "AngularVelocity", 150: "DeltaTime",
	},
	16: {
		200: "SetAttribute", 201: "SetPosition", 202: "SetLifetime",
		203: "SetAge", 204: "SetColor", 205: "SetVelocity", 206: "SetRotation",
		207: "SetAngularVelocity", 208: "SetSpriteSize", 209: "SetMass",
		210: "PositionSphere", 300: "UpdateAttribute", 301: "UpdateAge",
		302: "Gravity", 303: "LinearDrag",
	},
	17: {1: "Call", 2: "Input", 3: "Output"},
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: visjectdump <file.visject>")
		return
	}
	f, err := os.Open(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	g, err := graph.Read(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("; Visject graph\n")
	fmt.Printf("; Version: %d\n", graph.Version)
	fmt.Printf("; Nodes: %d\n", len(g.Nodes))
	fmt.Printf("; Parameters: %d\n", len(g.Parameters))
	if len(g.Meta.Entries) > 0 {
		fmt.Printf("; Meta entries: %d\n", len(g.Meta.Entries))
	}
	fmt.Println()

	for _, p := range g.Parameters {
		printParameter(p)
	}
	if len(g.Parameters) > 0 {
		fmt.Println()
	}
	for _, n := range g.Nodes {
		printNode(n)
	}
}

func printParameter(p *graph.Parameter) {
	vis := "internal"
	if p.Public {
		vis = "public"
	}
	fmt.Printf("parameter %s %s %q %s = %s\n", p.ID, p.Kind, p.Name, vis, formatValue(p.Value))
}

func printNode(n *graph.Node) {
	fmt.Printf("node %d = %s\n", n.ID, nodeName(n))
	for i, v := range n.Values {
		fmt.Printf("    value %d = %s\n", i, formatValue(v))
	}
	for i := range n.Boxes {
		b := &n.Boxes[i]
		fmt.Printf("    box %d %s", b.ID, b.Type)
		for _, peer := range b.Connections {
			fmt.Printf(" -> %d:%d", peer.Parent.ID, peer.ID)
		}
		fmt.Println()
	}
}

func nodeName(n *graph.Node) string {
	group, ok := groupNames[n.GroupID()]
	if !ok {
		group = fmt.Sprintf("Group%d", n.GroupID())
	}
	typ, ok := nodeNames[n.GroupID()][n.TypeID()]
	if !ok {
		typ = fmt.Sprintf("Type%d", n.TypeID())
	}
	return group + "." + typ
}

func formatValue(v graph.Variant) string {
	switch t := v.(type) {
	case nil, graph.NullValue:
		return "null"
	case graph.BoolValue:
		return fmt.Sprintf("bool %v", bool(t))
	case graph.IntValue:
		return fmt.Sprintf("int %d", int32(t))
	case graph.UintValue:
		return fmt.Sprintf("uint %d", uint32(t))
	case graph.FloatValue:
		return fmt.Sprintf("float %g", float32(t))
	case graph.Float2Value:
		return fmt.Sprintf("float2 (%g, %g)", t[0], t[1])
	case graph.Float3Value:
		return fmt.Sprintf("float3 (%g, %g, %g)", t[0], t[1], t[2])
	case graph.Float4Value:
		return fmt.Sprintf("float4 (%g, %g, %g, %g)", t[0], t[1], t[2], t[3])
	case graph.ColorValue:
		return fmt.Sprintf("color (%g, %g, %g, %g)", t[0], t[1], t[2], t[3])
	case graph.GuidValue:
		return fmt.Sprintf("guid %s", uuid.UUID(t))
	case graph.StringValue:
		return fmt.Sprintf("string %q", string(t))
	case graph.BlobValue:
		return fmt.Sprintf("blob %d bytes", len(t))
	case graph.MatrixValue:
		return fmt.Sprintf("matrix [%g %g %g %g; ...]", t[0], t[1], t[2], t[3])
	}
	return fmt.Sprintf("%v", v)
}
