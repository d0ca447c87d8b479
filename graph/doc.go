// Package graph defines the in-memory model for Visject surface graphs.
//
// A surface graph is the authored form of a material or particle emitter:
// an ordered list of nodes, each carrying constant values and typed boxes
// (ports), wired together by directed connections. Graphs are produced by
// a visual editor, stored in a versioned binary form, and consumed by the
// hlsl package which lowers them to shader source.
//
// # Structure
//
// The model is organized around a Graph that contains:
//   - Nodes: units of computation, identified by a 32-bit id and a packed
//     (group, type) pair that selects the codegen handler
//   - Parameters: externally bindable constants and resources, identified
//     by GUID
//   - Meta: opaque editor metadata that round-trips through load and save
//
// Boxes are dense per node: Box.ID equals its index in Node.Boxes, so port
// lookup is O(1). Connections are plain *Box references resolved at load
// time from (node id, box id) pairs.
//
// # Serialized form
//
// Read and Write implement version 7000 of the binary format. Older
// versions are rejected; see Read for the layout.
package graph
