// Package visject compiles surface node graphs into HLSL shader source.
//
// A Visject graph is the node-based description behind material and
// particle assets: typed nodes wired through boxes, stored in a portable
// binary format. The package covers the full pipeline:
//   - graph holds the model, the binary codec and the value variants
//   - hlsl holds the generator: evaluation, parameters, templates, drivers
//
// The generator is forgiving: recoverable graph problems (missing
// assets, impossible casts, division by a constant zero) substitute a
// typed zero, collect a diagnostic and keep going, so a broken graph
// still yields a complete, parseable shader for authoring feedback.
//
// Example usage (surface material):
//
//	g, err := visject.Load(file)
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := visject.CompileMaterial(g, visject.MaterialInfo{Domain: visject.DomainSurface}, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if diag := res.Err(); diag != nil {
//		log.Print(diag)
//	}
//	os.WriteFile("material.hlsl", res.Source, 0o644)
//
// For GPU particle emitters, use CompileParticleEmitter; the result is a
// compute simulation source with an initialize and an update pass.
package visject

import (
	"io"

	"github.com/gogpu/visject/graph"
	"github.com/gogpu/visject/hlsl"
)

// The facade works in terms of the generator's types.
type (
	// Options configures shader generation. See hlsl.Options.
	Options = hlsl.Options

	// MaterialInfo is the material metadata: domain, blending, shading
	// model, tessellation and flags.
	MaterialInfo = hlsl.MaterialInfo

	// MaterialDomain selects the shader template a material compiles
	// against.
	MaterialDomain = hlsl.MaterialDomain

	// BlendMode is the material blending mode.
	BlendMode = hlsl.BlendMode

	// Result is a compile output: null-terminated HLSL source, the
	// parameter set and the diagnostics.
	Result = hlsl.Result

	// Diagnostic is one recoverable compile problem.
	Diagnostic = hlsl.Diagnostic
)

// Material domains, re-exported for convenience.
const (
	DomainSurface        = hlsl.DomainSurface
	DomainPostProcess    = hlsl.DomainPostProcess
	DomainDecal          = hlsl.DomainDecal
	DomainGUI            = hlsl.DomainGUI
	DomainTerrain        = hlsl.DomainTerrain
	DomainParticle       = hlsl.DomainParticle
	DomainDeformable     = hlsl.DomainDeformable
	DomainVolumeParticle = hlsl.DomainVolumeParticle
)

// Blend modes, re-exported for convenience.
const (
	BlendOpaque      = hlsl.BlendOpaque
	BlendTransparent = hlsl.BlendTransparent
	BlendAdditive    = hlsl.BlendAdditive
	BlendMultiply    = hlsl.BlendMultiply
)

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return hlsl.DefaultOptions()
}

// Load reads a graph from its serialized binary form.
func Load(r io.Reader) (*graph.Graph, error) {
	return graph.Read(r)
}

// Save writes a graph in the serialized form Load accepts.
func Save(w io.Writer, g *graph.Graph) error {
	return graph.Write(w, g)
}

// CompileMaterial generates the HLSL source for a material graph. A nil
// opts means DefaultOptions. The returned error is fatal only; check
// Result.Err for the recoverable diagnostics.
func CompileMaterial(g *graph.Graph, info MaterialInfo, opts *Options) (*Result, error) {
	if opts == nil {
		o := DefaultOptions()
		opts = &o
	}
	return hlsl.CompileMaterial(g, info, *opts)
}

// CompileParticleEmitter generates the GPU simulation source for a
// particle emitter graph. A nil opts means DefaultOptions.
func CompileParticleEmitter(g *graph.Graph, opts *Options) (*Result, error) {
	if opts == nil {
		o := DefaultOptions()
		opts = &o
	}
	return hlsl.CompileParticleEmitter(g, *opts)
}
