package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/gogpu/visject/graph"
	"github.com/gogpu/visject/hlsl"
)

// buildMaterial assembles a small surface material: an albedo texture
// scaled by a color tint drives the material color, a constant drives
// the roughness.
func buildMaterial() *graph.Graph {
	g := &graph.Graph{}

	// Material root: box 0 is the material sink, boxes 1.. the surface
	// inputs in declaration order.
	root := g.AddNode(1, hlsl.GroupMaterial, hlsl.MaterialRoot)
	root.AddBox(graph.TypeVoid)
	for _, t := range []graph.ValueType{
		graph.TypeFloat3, graph.TypeFloat, graph.TypeFloat3, graph.TypeFloat,
		graph.TypeFloat, graph.TypeFloat, graph.TypeFloat, graph.TypeFloat3,
		graph.TypeFloat, graph.TypeFloat, graph.TypeFloat3, graph.TypeFloat,
		graph.TypeFloat3, graph.TypeFloat3,
	} {
		root.AddBox(t)
	}

	// Albedo texture parameter: sink 0 carries the UV, source 2 the
	// sampled color.
	albedoID := uuid.NewSHA1(uuid.NameSpaceOID, []byte("demo:Albedo"))
	g.AddParameter(graph.Parameter{Kind: graph.ParamTexture, ID: albedoID, Name: "Albedo", Public: true})
	albedo := g.AddNode(2, hlsl.GroupParameters, hlsl.GetParameter, graph.GuidValue(albedoID))
	albedo.AddBox(graph.TypeFloat2)
	albedo.AddBox(graph.TypeObject)
	albedo.AddBox(graph.TypeFloat4)
	for i := 0; i < 4; i++ {
		albedo.AddBox(graph.TypeFloat)
	}

	// Tint color parameter: source 0 is the whole value, sources 1..4
	// the components.
	tintID := uuid.NewSHA1(uuid.NameSpaceOID, []byte("demo:Tint"))
	g.AddParameter(graph.Parameter{
		Kind:   graph.ParamColor,
		ID:     tintID,
		Name:   "Tint",
		Public: true,
		Value:  graph.ColorValue{1, 1, 1, 1},
	})
	tint := g.AddNode(3, hlsl.GroupParameters, hlsl.GetParameter, graph.GuidValue(tintID))
	tint.AddBox(graph.TypeColor)
	for i := 0; i < 4; i++ {
		tint.AddBox(graph.TypeFloat)
	}

	uv := g.AddNode(4, hlsl.GroupTextures, hlsl.TexCoord)
	uv.AddBox(graph.TypeFloat2)

	mul := g.AddNode(5, hlsl.GroupMath, hlsl.MathMultiply)
	mul.AddBox(graph.TypeFloat4)
	mul.AddBox(graph.TypeFloat4)
	mul.AddBox(graph.TypeFloat4)

	rough := g.AddNode(6, hlsl.GroupConstants, hlsl.ConstFloat, graph.FloatValue(0.35))
	rough.AddBox(graph.TypeFloat)

	albedo.Box(0).Connect(uv.Box(0))
	mul.Box(0).Connect(albedo.Box(2))
	mul.Box(1).Connect(tint.Box(0))
	root.Box(1).Connect(mul.Box(2))
	root.Box(6).Connect(rough.Box(0))

	return g
}

func main() {
	g := buildMaterial()

	fmt.Println("=== Graph ===")
	fmt.Printf("Nodes: %d\n", len(g.Nodes))
	fmt.Printf("Parameters: %d\n", len(g.Parameters))

	// Compile to HLSL
	info := hlsl.MaterialInfo{Domain: hlsl.DomainSurface}
	res, err := hlsl.CompileMaterial(g, info, hlsl.DefaultOptions())
	if err != nil {
		fmt.Println("Compile error:", err)
		os.Exit(1)
	}
	for _, d := range res.Diagnostics {
		fmt.Println("Warning:", d)
	}

	fmt.Printf("\n=== Parameters ===\n")
	for i, p := range res.Parameters.List() {
		fmt.Printf("  Param[%d]: name=%s, shader=%s, kind=%v, register=%d, offset=%d\n",
			i, p.Name, p.ShaderName, p.Kind, p.Register, p.Offset)
	}

	fmt.Printf("\n=== HLSL ===\n")
	fmt.Printf("Size: %d bytes\n", len(res.Source))

	// Save the graph and the shader
	var buf bytes.Buffer
	if err := graph.Write(&buf, g); err != nil {
		fmt.Println("Write error:", err)
		os.Exit(1)
	}
	if err := os.WriteFile("test_material.visject", buf.Bytes(), 0600); err != nil {
		fmt.Println("Write error:", err)
		os.Exit(1)
	}
	if err := os.WriteFile("test_material.hlsl", res.Source, 0600); err != nil {
		fmt.Println("Write error:", err)
		os.Exit(1)
	}
	fmt.Println("Saved to test_material.visject and test_material.hlsl")
}
