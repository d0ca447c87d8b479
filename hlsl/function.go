// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"github.com/gogpu/visject/graph"
)

// functionGroup handles material function nodes. A function call inlines
// the referenced graph: no HLSL functions are emitted, the callee's nodes
// evaluate inside the caller's segment with inputs bound to the call
// node's sinks.
func functionGroup(c *compilation, node *graph.Node, box *graph.Box) Value {
	switch node.TypeID() {
	case FunctionCall:
		return functionCall(c, node, box)
	case FunctionInput:
		return functionInput(c, node, box)
	case FunctionOutput:
		// Outputs are reached through the call node, never evaluated as
		// sources themselves.
		c.report(ErrInternal, node, box, "function output evaluated outside a call")
		return Value{}
	default:
		c.report(ErrInternal, node, box, "unknown function node type %d", node.TypeID())
		return Value{}
	}
}

// functionCall evaluates the j-th output of the referenced function graph,
// j given by the source box id offset. Sinks 0..15 carry the arguments.
func functionCall(c *compilation, node *graph.Node, box *graph.Box) Value {
	fg, ok := c.loadGraph(node.GUIDValue(0), node)
	if !ok {
		return Value{}
	}
	inputs, outputs := functionPorts(fg)
	j := int(box.ID) - 16
	if j < 0 || j >= len(outputs) {
		c.report(ErrInternal, node, box, "function has no output %d", j)
		return Value{}
	}

	// Cached values inside the function graph belong to one call site.
	if c.lastCall[fg] != node {
		fg.ClearCaches()
		c.lastCall[fg] = node
	}

	c.frames = append(c.frames, frame{graph: fg, call: node, inputs: inputs, outputs: outputs})
	out := outputs[j]
	v, connected := c.connected(out, 0)
	c.frames = c.frames[:len(c.frames)-1]

	if !connected {
		if in := out.Box(0); in != nil {
			return Zero(in.Type)
		}
		return Value{}
	}
	return v
}

// functionInput resolves an input node to the caller's argument, or to its
// own default subtree when the argument box is unconnected.
func functionInput(c *compilation, node *graph.Node, box *graph.Box) Value {
	if len(c.frames) == 0 {
		c.report(ErrInternal, node, box, "function input outside a function graph")
		return Value{}
	}
	fr := c.frames[len(c.frames)-1]
	i := -1
	for k, in := range fr.inputs {
		if in == node {
			i = k
			break
		}
	}
	if i < 0 || i > 15 {
		c.report(ErrInternal, node, box, "function input is not a port of the active call")
		return Value{}
	}

	if callBox := fr.call.Box(uint8(i)); callBox != nil && callBox.HasConnection() {
		// The argument subtree lives in the caller's graph; evaluate it with
		// the frame popped so nested inputs resolve against the right call.
		src := callBox.FirstConnection()
		c.frames = c.frames[:len(c.frames)-1]
		v := c.value(src)
		c.frames = append(c.frames, fr)
		return v
	}

	if v, ok := c.connected(node, 1); ok {
		return v
	}
	return Zero(box.Type)
}

// functionPorts collects the input and output nodes of a function graph in
// declaration order.
func functionPorts(fg *graph.Graph) (inputs, outputs []*graph.Node) {
	for _, n := range fg.Nodes {
		if n.GroupID() != GroupFunction {
			continue
		}
		switch n.TypeID() {
		case FunctionInput:
			inputs = append(inputs, n)
		case FunctionOutput:
			outputs = append(outputs, n)
		}
	}
	return inputs, outputs
}
