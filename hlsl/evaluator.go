// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/gogpu/visject/graph"
)

// maxEvalDepth bounds the evaluation call stack. Graphs deeper than this
// are treated as cyclic.
const maxEvalDepth = 128

// shaderTree identifies the output segment currently being generated.
// Node handlers use it to gate stage-specific inputs (screen-space
// derivatives, interpolator direction, particle context).
type shaderTree uint8

const (
	treePixel shaderTree = iota
	treeVertex
	treeDomain
	treeParticleSpawn
	treeParticleUpdate
)

func (t shaderTree) String() string {
	switch t {
	case treePixel:
		return "pixel"
	case treeVertex:
		return "vertex"
	case treeDomain:
		return "domain"
	case treeParticleSpawn:
		return "spawn"
	case treeParticleUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// groupHandler evaluates one box of one node. It returns the value for the
// requested box; an invalid value makes the evaluator substitute a typed
// zero after the handler has reported its diagnostic.
type groupHandler func(c *compilation, node *graph.Node, box *graph.Box) Value

// groupHandlers dispatches by archetype group id. Unused slots stay nil.
// Filled in init: the handlers refer back to groupHandlers through
// dispatch, which a composite-literal initializer would make a cycle.
var groupHandlers [GroupFunction + 1]groupHandler

func init() {
	groupHandlers = [GroupFunction + 1]groupHandler{
		GroupMaterial:        materialGroup,
		GroupConstants:       constantsGroup,
		GroupMath:            mathGroup,
		GroupPacking:         packingGroup,
		GroupTextures:        texturesGroup,
		GroupParameters:      parametersGroup,
		GroupTools:           toolsGroup,
		GroupLayers:          layersGroup,
		GroupBoolean:         booleanGroup,
		GroupBitwise:         bitwiseGroup,
		GroupComparisons:     comparisonsGroup,
		GroupParticles:       particlesGroup,
		GroupParticleModules: particleModulesGroup,
		GroupFunction:        functionGroup,
	}
}

// frame is one level of function-graph inlining: the call node in the
// caller graph plus the input and output nodes of the inlined graph.
type frame struct {
	graph   *graph.Graph
	call    *graph.Node
	inputs  []*graph.Node
	outputs []*graph.Node
}

// compilation is the state of a single material or particle emitter
// compile: the graph under evaluation, the writer for the current segment,
// the accumulated parameters, and the collected diagnostics.
type compilation struct {
	root *graph.Graph
	opts *Options
	info MaterialInfo
	log  logr.Logger

	w      *CodeWriter
	params *ParameterSet

	diags []Diagnostic

	tree  shaderTree
	depth int

	// Function inlining stack. Empty means the root graph is active.
	frames []frame

	// Function and layer graphs loaded during this compile, by asset id.
	loaded map[uuid.UUID]*graph.Graph

	// Last call node a function graph was inlined for. Cached values inside
	// a function graph belong to one call site; a different caller wipes
	// them.
	lastCall map[*graph.Graph]*graph.Node

	// Requested #define names in first-seen order.
	defines    []string
	defineSeen map[string]struct{}

	// VertexInterpolator nodes in pixel-tree discovery order. The vertex
	// tree writes one float4 slot per entry.
	interpolators []*graph.Node

	// Set once the texture slot budget diagnostic has been reported.
	srvReported bool

	// Composed feature template sections, filled before evaluation.
	features [featureSegmentCount]string

	// Particle compile state, nil for material compiles.
	particles *particleState
}

func newCompilation(root *graph.Graph, info MaterialInfo, opts *Options) *compilation {
	return &compilation{
		root:       root,
		opts:       opts,
		info:       info,
		log:        opts.Logger,
		w:          NewCodeWriter(),
		params:     newParameterSet(opts),
		loaded:     make(map[uuid.UUID]*graph.Graph),
		lastCall:   make(map[*graph.Graph]*graph.Node),
		defineSeen: make(map[string]struct{}),
	}
}

// currentGraph returns the graph evaluation is happening in: the innermost
// inlined function graph, or the root.
func (c *compilation) currentGraph() *graph.Graph {
	if n := len(c.frames); n > 0 {
		return c.frames[n-1].graph
	}
	return c.root
}

// value evaluates a source box: cached result if the segment has seen it,
// otherwise group handler dispatch. Results are memoized on the box so a
// source feeding many sinks is emitted once.
func (c *compilation) value(box *graph.Box) Value {
	if box == nil {
		c.report(ErrInternal, nil, nil, "evaluated a missing box")
		return Value{}
	}
	if box.Cache.Valid {
		return Value{Type: box.Cache.Type, Text: box.Cache.Text}
	}
	if c.depth >= maxEvalDepth {
		c.report(ErrCycle, box.Parent, box, "Graph is looped or too deep!")
		return Zero(box.Type)
	}
	c.depth++
	v := c.dispatch(box)
	c.depth--

	if v.IsInvalid() {
		v = Zero(box.Type)
	}
	box.Cache = graph.CachedValue{Type: v.Type, Text: v.Text, Valid: true}
	return v
}

func (c *compilation) dispatch(box *graph.Box) Value {
	node := box.Parent
	group := node.GroupID()
	if int(group) >= len(groupHandlers) || groupHandlers[group] == nil {
		c.report(ErrInternal, node, box, "no handler for node group %d", group)
		return Value{}
	}
	return groupHandlers[group](c, node, box)
}

// tryValue returns the value of an input box, falling back to the node
// constant at valueIndex when the box is absent or not connected.
func (c *compilation) tryValue(node *graph.Node, boxID uint8, valueIndex int) Value {
	if v, ok := c.connected(node, boxID); ok {
		return v
	}
	if valueIndex >= 0 && valueIndex < len(node.Values) {
		return variantValue(node.Values[valueIndex])
	}
	return Value{}
}

// tryValueDefault returns the value of an input box, or def when the box
// is absent or not connected.
func (c *compilation) tryValueDefault(node *graph.Node, boxID uint8, def Value) Value {
	if v, ok := c.connected(node, boxID); ok {
		return v
	}
	return def
}

// connected evaluates the source feeding the given sink box, if any.
func (c *compilation) connected(node *graph.Node, boxID uint8) (Value, bool) {
	box := node.Box(boxID)
	if box == nil || !box.HasConnection() {
		return Value{}, false
	}
	return c.value(box.FirstConnection()), true
}

// cast coerces a value for the given node context, reporting impossible
// casts as diagnostics and substituting a typed zero.
func (c *compilation) cast(v Value, to graph.ValueType, node *graph.Node, box *graph.Box) Value {
	out, err := Cast(v, to)
	if err != nil {
		c.report(ErrUnsupportedCast, node, box, "cannot cast %s to %s", v.Type, to)
		return Zero(to)
	}
	return out
}

// report records a recoverable diagnostic and logs it.
func (c *compilation) report(kind ErrorKind, node *graph.Node, box *graph.Box, format string, args ...any) {
	d := Diagnostic{Kind: kind, Box: -1, Message: fmt.Sprintf(format, args...)}
	if node != nil {
		d.Node = node.ID
	}
	if box != nil {
		d.Box = int16(box.ID)
	}
	c.diags = append(c.diags, d)
	c.log.Info("graph diagnostic", "kind", kind.String(), "node", d.Node, "box", d.Box, "message", d.Message)
}

// addDefine registers a #define name for the defines segment. Names are
// deduplicated and kept in first-seen order.
func (c *compilation) addDefine(name string) {
	if _, ok := c.defineSeen[name]; ok {
		return
	}
	c.defineSeen[name] = struct{}{}
	c.defines = append(c.defines, name)
}

// clearCache invalidates every box cache in the root and all loaded
// graphs. Cached values name locals that exist only inside the segment
// that declared them, so drivers clear between segments alongside the
// writer reset.
func (c *compilation) clearCache() {
	c.root.ClearCaches()
	for _, g := range c.loaded {
		g.ClearCaches()
	}
	for k := range c.lastCall {
		delete(c.lastCall, k)
	}
}

// checkSlot reports the texture budget overflow once per compile. A
// parameter that missed its register still occupies the table; sampling it
// degrades to zero at the call site.
func (c *compilation) checkSlot(p *ShaderParameter, node *graph.Node) bool {
	if p == nil {
		return false
	}
	if p.Register >= 0 || !p.IsResource() {
		return true
	}
	if !c.srvReported {
		c.srvReported = true
		c.report(ErrSRVOverflow, node, nil, "Too many textures used")
	}
	return false
}

// loadGraph resolves a nested graph asset (material function or layer)
// through the options callback, memoizing per compile.
func (c *compilation) loadGraph(id uuid.UUID, node *graph.Node) (*graph.Graph, bool) {
	if g, ok := c.loaded[id]; ok {
		return g, g != nil
	}
	if id == uuid.Nil || c.opts.LoadGraph == nil {
		c.loaded[id] = nil
		c.report(ErrMissingAsset, node, nil, "missing graph asset %s", id)
		return nil, false
	}
	g, err := c.opts.LoadGraph(id)
	if err != nil || g == nil {
		c.loaded[id] = nil
		c.report(ErrMissingAsset, node, nil, "cannot load graph asset %s", id)
		return nil, false
	}
	c.loaded[id] = g
	return g, true
}
