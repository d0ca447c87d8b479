package visject

import (
	"bytes"
	"runtime"
	"testing"

	"github.com/gogpu/visject/graph"
	"github.com/gogpu/visject/hlsl"
)

// ---------------------------------------------------------------------------
// Benchmark graphs: realistic material assets at different sizes
// ---------------------------------------------------------------------------

// benchSmallMaterial is a constant-color surface, the floor below which a
// compile cannot shrink.
func benchSmallMaterial() *graph.Graph {
	return newSurfaceGraph()
}

// benchMediumMaterial layers a math subtree over the base color the way a
// hand-authored surface typically does.
func benchMediumMaterial() *graph.Graph {
	g := newSurfaceGraph()
	root := g.Nodes[0]

	prev := g.AddNode(3, hlsl.GroupConstants, hlsl.ConstFloat, graph.FloatValue(1))
	prev.AddBox(graph.TypeFloat)
	prevBox := prev.Box(0)
	for i := 0; i < 8; i++ {
		n := g.AddNode(uint32(4+i), hlsl.GroupMath, hlsl.MathMultiply,
			graph.NullValue{}, graph.FloatValue(0.9))
		n.AddBox(graph.TypeFloat)
		n.AddBox(graph.TypeFloat)
		n.AddBox(graph.TypeFloat)
		n.Box(0).Connect(prevBox)
		prevBox = n.Box(2)
	}
	root.Box(3).Connect(prevBox)
	return g
}

// benchEmitterGraph simulates position, age and velocity over a thousand
// particles.
func benchEmitterGraph() *graph.Graph {
	g := &graph.Graph{}
	g.AddNode(1, hlsl.GroupParticles, hlsl.ParticleEmitter, graph.IntValue(1000))
	g.AddNode(2, hlsl.GroupParticleModules, hlsl.ModulePositionSphere)
	g.AddNode(3, hlsl.GroupParticleModules, hlsl.ModuleSetLifetime, graph.FloatValue(5))
	g.AddNode(4, hlsl.GroupParticleModules, hlsl.ModuleUpdateAge)
	g.AddNode(5, hlsl.GroupParticleModules, hlsl.ModuleGravity)
	return g
}

// ---------------------------------------------------------------------------
// Benchmark: the package-level compile entry points
// ---------------------------------------------------------------------------

func BenchmarkCompileMaterial(b *testing.B) {
	benches := []struct {
		name  string
		build func() *graph.Graph
	}{
		{"small", benchSmallMaterial},
		{"medium", benchMediumMaterial},
	}

	for _, bc := range benches {
		b.Run(bc.name, func(b *testing.B) {
			g := bc.build()

			b.ReportAllocs()
			b.ResetTimer()

			var res *Result
			for i := 0; i < b.N; i++ {
				var err error
				res, err = CompileMaterial(g, MaterialInfo{Domain: DomainSurface}, nil)
				if err != nil {
					b.Fatalf("compile failed: %v", err)
				}
			}
			runtime.KeepAlive(res)
		})
	}
}

func BenchmarkCompileParticleEmitter(b *testing.B) {
	g := benchEmitterGraph()

	b.ReportAllocs()
	b.ResetTimer()

	var res *Result
	for i := 0; i < b.N; i++ {
		var err error
		res, err = CompileParticleEmitter(g, nil)
		if err != nil {
			b.Fatalf("compile failed: %v", err)
		}
	}
	runtime.KeepAlive(res)
}

// ---------------------------------------------------------------------------
// Benchmark: full pipeline including the binary codec
// ---------------------------------------------------------------------------

// BenchmarkFullPipeline measures load, compile and the diagnostics pass
// together, the path an asset pipeline takes per material.
func BenchmarkFullPipeline(b *testing.B) {
	var buf bytes.Buffer
	if err := Save(&buf, benchMediumMaterial()); err != nil {
		b.Fatalf("save failed: %v", err)
	}
	data := buf.Bytes()

	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	var res *Result
	for i := 0; i < b.N; i++ {
		g, err := Load(bytes.NewReader(data))
		if err != nil {
			b.Fatalf("load failed: %v", err)
		}
		res, err = CompileMaterial(g, MaterialInfo{Domain: DomainSurface}, nil)
		if err != nil {
			b.Fatalf("compile failed: %v", err)
		}
		if diag := res.Err(); diag != nil {
			b.Fatalf("unexpected diagnostics: %v", diag)
		}
	}
	runtime.KeepAlive(res)
}

// ---------------------------------------------------------------------------
// Benchmark: codec stages in isolation
// ---------------------------------------------------------------------------

func BenchmarkSave(b *testing.B) {
	g := benchMediumMaterial()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		if err := Save(&buf, g); err != nil {
			b.Fatalf("save failed: %v", err)
		}
	}
}

func BenchmarkLoad(b *testing.B) {
	var buf bytes.Buffer
	if err := Save(&buf, benchMediumMaterial()); err != nil {
		b.Fatalf("save failed: %v", err)
	}
	data := buf.Bytes()

	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	var g *graph.Graph
	for i := 0; i < b.N; i++ {
		var err error
		g, err = Load(bytes.NewReader(data))
		if err != nil {
			b.Fatalf("load failed: %v", err)
		}
	}
	runtime.KeepAlive(g)
}
