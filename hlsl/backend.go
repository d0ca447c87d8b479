// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/gogpu/visject/graph"
)

//go:embed templates
var templateFiles embed.FS

// MaterialDomain selects the surface pipeline a material is rendered in,
// and with it the output template.
type MaterialDomain uint8

const (
	DomainSurface MaterialDomain = iota
	DomainPostProcess
	DomainDecal
	DomainGUI
	DomainTerrain
	DomainParticle
	DomainDeformable
	DomainVolumeParticle
)

func (d MaterialDomain) String() string {
	switch d {
	case DomainSurface:
		return "Surface"
	case DomainPostProcess:
		return "PostProcess"
	case DomainDecal:
		return "Decal"
	case DomainGUI:
		return "GUI"
	case DomainTerrain:
		return "Terrain"
	case DomainParticle:
		return "Particle"
	case DomainDeformable:
		return "Deformable"
	case DomainVolumeParticle:
		return "VolumeParticle"
	}
	return fmt.Sprintf("MaterialDomain(%d)", uint8(d))
}

func (d MaterialDomain) templateFile() string {
	return "templates/" + d.String() + ".hlsl"
}

// BlendMode selects how a material combines with the frame.
type BlendMode uint8

const (
	BlendOpaque BlendMode = iota
	BlendTransparent
	BlendAdditive
	BlendMultiply
)

func (m BlendMode) String() string {
	switch m {
	case BlendOpaque:
		return "Opaque"
	case BlendTransparent:
		return "Transparent"
	case BlendAdditive:
		return "Additive"
	case BlendMultiply:
		return "Multiply"
	}
	return fmt.Sprintf("BlendMode(%d)", uint8(m))
}

// ShadingModel selects the lighting response.
type ShadingModel uint8

const (
	ShadingUnlit ShadingModel = iota
	ShadingLit
	ShadingSubsurface
	ShadingFoliage
)

func (m ShadingModel) String() string {
	switch m {
	case ShadingUnlit:
		return "Unlit"
	case ShadingLit:
		return "Lit"
	case ShadingSubsurface:
		return "Subsurface"
	case ShadingFoliage:
		return "Foliage"
	}
	return fmt.Sprintf("ShadingModel(%d)", uint8(m))
}

// TessellationMode selects the hull/domain stage behavior.
type TessellationMode uint8

const (
	TessellationNone TessellationMode = iota
	TessellationFlat
	TessellationPointNormal
	TessellationPhong
)

func (m TessellationMode) String() string {
	switch m {
	case TessellationNone:
		return "None"
	case TessellationFlat:
		return "Flat"
	case TessellationPointNormal:
		return "PointNormal"
	case TessellationPhong:
		return "Phong"
	}
	return fmt.Sprintf("TessellationMode(%d)", uint8(m))
}

// MaterialFlags carry the boolean material switches.
type MaterialFlags uint32

const (
	// FlagUseLightmap enables baked lightmap sampling.
	FlagUseLightmap MaterialFlags = 1 << iota

	// FlagDisableDistortion removes the distortion pass from transparent
	// materials.
	FlagDisableDistortion

	// FlagGlobalIllumination enables the dynamic GI contribution.
	FlagGlobalIllumination

	// FlagSDFReflections enables software reflections traced against the
	// global SDF.
	FlagSDFReflections

	// FlagWorldSpaceNormal marks the Normal input as world-space; the
	// pixel tree converts it to tangent space after the fixups.
	FlagWorldSpaceNormal
)

// MaterialInfo is the material metadata driving template selection,
// feature composition and per-domain input sets.
type MaterialInfo struct {
	Domain           MaterialDomain
	BlendMode        BlendMode
	ShadingModel     ShadingModel
	TessellationMode TessellationMode

	// MaxTessellationFactor bounds the tessellation amount. Zero means
	// the default of 15.
	MaxTessellationFactor int32

	Flags MaterialFlags
}

// Options configures shader generation.
type Options struct {
	// Logger receives structured notes about diagnostics and feature
	// selection. A zero Logger discards everything.
	Logger logr.Logger

	// BaseSRVRegister is the first t# register available to graph
	// resources; lower registers belong to the engine. Defaults to 2.
	BaseSRVRegister int32

	// BaseSamplerRegister is the first s# register available to graph
	// samplers, after the engine static samplers. Defaults to 6.
	BaseSamplerRegister int32

	// TemplateFS provides the shader template files. Defaults to the
	// embedded set.
	TemplateFS fs.FS

	// LoadGraph resolves function, layer and gameplay-global graph assets
	// by id. Nil means every asset reference fails with a diagnostic.
	LoadGraph func(uuid.UUID) (*graph.Graph, error)

	// GameplayGlobals lists the variables of gameplay globals assets.
	GameplayGlobals map[uuid.UUID]map[string]graph.ValueType
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Logger:              logr.Discard(),
		BaseSRVRegister:     2,
		BaseSamplerRegister: 6,
	}
}

func (o *Options) setDefaults() {
	if o.BaseSRVRegister <= 0 {
		o.BaseSRVRegister = 2
	}
	if o.BaseSamplerRegister <= 0 {
		o.BaseSamplerRegister = 6
	}
	if o.Logger.GetSink() == nil {
		o.Logger = logr.Discard()
	}
}

func (o *Options) templateFS() fs.FS {
	if o.TemplateFS != nil {
		return o.TemplateFS
	}
	return templateFiles
}

// Result is the output of one compile.
type Result struct {
	// Source is the generated HLSL text, null-terminated.
	Source []byte

	// Parameters describes the material parameters and their bindings.
	Parameters *ParameterSet

	// Diagnostics lists the recoverable problems hit during generation.
	// The source is complete despite them; broken spots carry zeros.
	Diagnostics []Diagnostic
}

// Err combines the diagnostics into one error, or nil if the compile was
// clean.
func (r *Result) Err() error {
	var err error
	for _, d := range r.Diagnostics {
		err = multierr.Append(err, d)
	}
	return err
}

// CompileMaterial generates the HLSL source for a material graph. The
// graph must contain a material root node. Recoverable graph problems
// are reported in Result.Diagnostics; a nil error does not mean a clean
// compile.
func CompileMaterial(g *graph.Graph, info MaterialInfo, opts Options) (*Result, error) {
	opts.setDefaults()
	if g == nil {
		return nil, errorf(ErrMalformedGraph, "nil graph")
	}
	root := findMaterialRoot(g)
	if root == nil {
		return nil, errorf(ErrMalformedGraph, "graph has no material root node")
	}

	c := newCompilation(g, info, &opts)
	if err := c.applyFeatures(); err != nil {
		return nil, err
	}

	var segments [segmentCount]string

	// Tree order matters: the pixel tree discovers the vertex
	// interpolators the vertex tree writes.
	trees := []struct {
		tree    shaderTree
		segment int
	}{
		{treePixel, 7},
		{treeVertex, 8},
		{treeDomain, 9},
	}
	for _, t := range trees {
		c.clearCache()
		c.w.Clear()
		c.w.pushIndent()
		c.writeMaterialTree(root, t.tree)
		segments[t.segment] = c.w.String()
	}

	if len(c.interpolators) > 0 {
		c.addDefine(fmt.Sprintf("CUSTOM_VERTEX_INTERPOLATORS_COUNT %d", len(c.interpolators)))
	}
	if info.TessellationMode != TessellationNone {
		factor := info.MaxTessellationFactor
		if factor <= 0 {
			factor = 15
		}
		c.addDefine(fmt.Sprintf("MAX_TESSELLATION_FACTOR %d", factor))
	}

	c.params.layout()
	segments[0] = fmt.Sprint(graph.Version)
	segments[1] = c.features[featureDefines] + c.defineText()
	segments[2] = c.features[featureIncludes] + c.includeText()
	segments[3] = c.features[featureConstants] + c.constantsText()
	segments[4] = c.features[featureResources] + c.resourcesText()
	segments[5] = c.features[featureUtilities]
	segments[6] = c.features[featureShaders]

	source, err := spliceTemplate(opts.templateFS(), info.Domain.templateFile(), &segments)
	if err != nil {
		return nil, err
	}
	return &Result{
		Source:      source,
		Parameters:  c.params,
		Diagnostics: c.diags,
	}, nil
}

// CompileParticleEmitter generates the GPU simulation source for a
// particle emitter graph: an initialize pass and an update pass over a
// raw attribute buffer.
func CompileParticleEmitter(g *graph.Graph, opts Options) (*Result, error) {
	opts.setDefaults()
	if g == nil {
		return nil, errorf(ErrMalformedGraph, "nil graph")
	}
	root := findParticleRoot(g)
	if root == nil {
		return nil, errorf(ErrMalformedGraph, "graph has no particle emitter root node")
	}

	c := newCompilation(g, MaterialInfo{Domain: DomainParticle}, &opts)
	c.particles = newParticleState()
	c.particles.capacity = root.IntValue(0)
	if c.particles.capacity <= 0 {
		c.particles.capacity = defaultParticleCapacity
	}

	// The layout must be complete before the first buffer offset is
	// emitted, so attribute discovery runs ahead of both passes.
	c.prescanParticles(g)

	var segments [segmentCount]string
	passes := []struct {
		update  bool
		segment int
	}{
		{false, 7},
		{true, 8},
	}
	for _, p := range passes {
		c.clearCache()
		c.w.Clear()
		c.w.pushIndent()
		c.writeParticlePass(g, p.update)
		segments[p.segment] = c.w.String()
	}

	c.w.Clear()
	c.writeParticleLayout()
	segments[2] = c.w.String()
	c.particleDefines()

	c.params.layout()
	segments[0] = fmt.Sprint(graph.Version)
	segments[1] = c.defineText()
	segments[3] = c.includeText()
	segments[4] = c.constantsText()
	segments[5] = c.resourcesText()

	source, err := spliceTemplate(opts.templateFS(), "templates/GPUParticles.hlsl", &segments)
	if err != nil {
		return nil, err
	}
	return &Result{
		Source:      source,
		Parameters:  c.params,
		Diagnostics: c.diags,
	}, nil
}

// defineText renders the collected defines, one directive per line.
func (c *compilation) defineText() string {
	w := NewCodeWriter()
	for _, d := range c.defines {
		w.WriteLine("#define {0}", d)
	}
	return w.String()
}

// includeText renders the collected include directives.
func (c *compilation) includeText() string {
	w := NewCodeWriter()
	for _, inc := range c.w.Includes() {
		w.WriteLine("#include \"{0}\"", inc)
	}
	return w.String()
}

// constantsText renders the graph parameters constant buffer.
func (c *compilation) constantsText() string {
	w := NewCodeWriter()
	c.params.emitConstants(w)
	return w.String()
}

// resourcesText renders the SRV and sampler declarations.
func (c *compilation) resourcesText() string {
	w := NewCodeWriter()
	c.params.emitResources(w)
	return w.String()
}
