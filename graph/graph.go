package graph

import (
	"github.com/google/uuid"
)

// Graph is a single surface graph: ordered nodes, ordered parameters and
// editor metadata. A compile unit may involve several graphs (a root plus
// nested function graphs and material layers); each keeps its own node and
// parameter id spaces.
type Graph struct {
	// Nodes holds the graph nodes in serialized order.
	Nodes []*Node

	// Parameters holds the public and internal parameters in serialized order.
	Parameters []*Parameter

	// Meta holds opaque editor metadata.
	Meta Meta
}

// AddNode appends a node with the given id, packed type and constant
// values. Boxes are added separately with Node.AddBox.
func (g *Graph) AddNode(id uint32, group, typ uint16, values ...Variant) *Node {
	n := &Node{
		ID:     id,
		Type:   NodeType(group, typ),
		Values: values,
	}
	g.Nodes = append(g.Nodes, n)
	return n
}

// AddParameter appends a parameter and returns it.
func (g *Graph) AddParameter(p Parameter) *Parameter {
	added := p
	g.Parameters = append(g.Parameters, &added)
	return &added
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id uint32) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// ParameterByID returns the parameter with the given identifier, or nil.
func (g *Graph) ParameterByID(id uuid.UUID) *Parameter {
	for _, p := range g.Parameters {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// ClearCaches invalidates every box cache in the graph. The hlsl evaluator
// calls this between output segments; locals emitted for one segment are
// not addressable in another.
func (g *Graph) ClearCaches() {
	for _, n := range g.Nodes {
		for i := range n.Boxes {
			n.Boxes[i].Cache = CachedValue{}
		}
	}
}

// NodeType packs a group id and a per-group type id into the 32-bit node
// type stored in the serialized form.
func NodeType(group, typ uint16) uint32 {
	return uint32(group)<<16 | uint32(typ)
}

// Node is a unit of computation: a unique id, a packed (group, type) pair,
// an ordered list of constant values, and an ordered set of boxes.
type Node struct {
	// ID is unique within the owning graph.
	ID uint32

	// Type is the packed (group << 16) | type pair.
	Type uint32

	// Values holds the node constants (literals, asset ids, keyframes...).
	Values []Variant

	// Boxes holds the node ports. Box.ID equals the slice index.
	Boxes []Box

	// Meta holds opaque editor metadata.
	Meta Meta
}

// GroupID returns the handler group this node belongs to.
func (n *Node) GroupID() uint16 { return uint16(n.Type >> 16) }

// TypeID returns the node type within its group.
func (n *Node) TypeID() uint16 { return uint16(n.Type) }

// Box returns the box with the given id, or nil if the node has no such
// port. Box ids are dense, so this is an index lookup.
func (n *Node) Box(id uint8) *Box {
	if int(id) >= len(n.Boxes) {
		return nil
	}
	return &n.Boxes[id]
}

// AddBox appends a box with the next dense id and the given declared type.
func (n *Node) AddBox(typ ValueType) *Box {
	n.Boxes = append(n.Boxes, Box{
		Parent: n,
		ID:     uint8(len(n.Boxes)),
		Type:   typ,
	})
	return &n.Boxes[len(n.Boxes)-1]
}

// Box is a typed input or output port on a node. Sinks and sources share
// the same structure; direction is a property of how the graph uses them.
type Box struct {
	// Parent is the owning node.
	Parent *Node

	// ID is the box id, equal to the index in Parent.Boxes.
	ID uint8

	// Type is the declared value type of the port.
	Type ValueType

	// Connections holds the peer boxes. A sink uses the first connection;
	// a source may feed any number of sinks.
	Connections []*Box

	// Cache holds the value computed for this box during the current output
	// segment. It belongs to the active compile and is cleared between
	// segments.
	Cache CachedValue
}

// HasConnection reports whether the box is wired to at least one peer.
func (b *Box) HasConnection() bool { return len(b.Connections) > 0 }

// FirstConnection returns the first connected peer box, or nil. A sink box
// holds at most one meaningful connection; extras are tolerated and ignored.
func (b *Box) FirstConnection() *Box {
	if len(b.Connections) == 0 {
		return nil
	}
	return b.Connections[0]
}

// Connect wires b and peer both ways. It does not deduplicate; loaders are
// expected to wire each connection once.
func (b *Box) Connect(peer *Box) {
	b.Connections = append(b.Connections, peer)
	peer.Connections = append(peer.Connections, b)
}

// CachedValue is the per-segment memoized result of evaluating a box:
// a value type and a self-contained HLSL expression. The zero value means
// "not evaluated yet".
type CachedValue struct {
	Type  ValueType
	Text  string
	Valid bool
}
