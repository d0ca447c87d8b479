package graph

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/google/uuid"
)

// Serialized form constants.
const (
	// Magic identifies a serialized surface graph.
	Magic int32 = 1963542358

	// Version is the only accepted format version. Graphs saved by older
	// editors must be migrated before they reach this package.
	Version uint32 = 7000

	// endMark terminates the stream.
	endMark byte = '\t'
)

// Hard caps on count fields. A corrupt stream must fail cleanly instead of
// asking the allocator for gigabytes.
const (
	maxNodes     = 1 << 20
	maxParams    = 1 << 16
	maxValues    = 1 << 16
	maxBoxes     = 1 << 8
	maxConns     = 1 << 14
	maxBlobBytes = 1 << 26
	maxMetaSize  = 1 << 24
)

// Read parses the version 7000 binary form of a surface graph.
//
// Layout (all integers little-endian):
//
//	magic    int32   1963542358
//	version  uint32  7000
//	nodes    int32   node count
//	params   int32   parameter count
//	headers  { id uint32, type uint32 } per node
//	params   { kind uint8, id guid, name string, public uint8, value variant, meta } per parameter
//	bodies   { values int32 + variants, boxes uint16 + { id uint8, type uint8,
//	           conns uint16 + { nodeID uint32, boxID uint8 } }, meta } per node
//	meta     graph metadata
//	end      uint8   '\t'
//
// Connections are serialized as (node id, box id) pairs on both endpoints;
// Read resolves them into *Box references in a second pass once every node
// exists. A pair naming a missing node or box fails the load.
func Read(r io.Reader) (*Graph, error) {
	d := &decoder{r: r}

	if magic := d.i32(); d.err == nil && magic != Magic {
		return nil, errf(ErrBadMagic, "bad magic 0x%08x", uint32(magic))
	}
	if version := d.u32(); d.err == nil && version != Version {
		return nil, errf(ErrUnsupportedVersion, "version %d not supported (want %d)", version, Version)
	}
	nodeCount := int(d.i32())
	paramCount := int(d.i32())
	if d.err != nil {
		return nil, d.err
	}
	if nodeCount < 0 || nodeCount > maxNodes {
		return nil, errf(ErrMalformed, "node count %d out of range", nodeCount)
	}
	if paramCount < 0 || paramCount > maxParams {
		return nil, errf(ErrMalformed, "parameter count %d out of range", paramCount)
	}

	g := &Graph{
		Nodes:      make([]*Node, 0, nodeCount),
		Parameters: make([]*Parameter, 0, paramCount),
	}

	// Node headers.
	byID := make(map[uint32]*Node, nodeCount)
	for i := 0; i < nodeCount; i++ {
		n := &Node{
			ID:   d.u32(),
			Type: d.u32(),
		}
		if d.err != nil {
			return nil, d.err
		}
		if _, dup := byID[n.ID]; dup {
			return nil, errf(ErrMalformed, "duplicate node id %d", n.ID)
		}
		byID[n.ID] = n
		g.Nodes = append(g.Nodes, n)
	}

	// Parameters.
	seenParams := make(map[uuid.UUID]struct{}, paramCount)
	for i := 0; i < paramCount; i++ {
		p := &Parameter{
			Kind: ParameterKind(d.u8()),
			ID:   d.guid(),
			Name: d.str(MaxParameterName),
		}
		p.Public = d.u8() != 0
		p.Value = d.variant()
		p.Meta = d.meta()
		if d.err != nil {
			return nil, d.err
		}
		if _, dup := seenParams[p.ID]; dup {
			return nil, errf(ErrMalformed, "duplicate parameter id %s", p.ID)
		}
		seenParams[p.ID] = struct{}{}
		g.Parameters = append(g.Parameters, p)
	}

	// Node bodies. Connection targets are recorded as hints and rewritten
	// into box references once all boxes exist.
	type connHint struct {
		node   *Node
		box    uint8
		toNode uint32
		toBox  uint8
	}
	var hints []connHint

	for _, n := range g.Nodes {
		valueCount := int(d.i32())
		if d.err != nil {
			return nil, d.err
		}
		if valueCount < 0 || valueCount > maxValues {
			return nil, errf(ErrMalformed, "node %d value count %d out of range", n.ID, valueCount)
		}
		n.Values = make([]Variant, valueCount)
		for i := 0; i < valueCount; i++ {
			n.Values[i] = d.variant()
		}

		boxCount := int(d.u16())
		if d.err != nil {
			return nil, d.err
		}
		if boxCount > maxBoxes {
			return nil, errf(ErrMalformed, "node %d box count %d out of range", n.ID, boxCount)
		}
		n.Boxes = make([]Box, boxCount)
		for i := 0; i < boxCount; i++ {
			id := d.u8()
			typ := ValueType(d.u8())
			if d.err != nil {
				return nil, d.err
			}
			if int(id) != i {
				return nil, errf(ErrMalformed, "node %d box id %d at index %d (ids must be dense)", n.ID, id, i)
			}
			n.Boxes[i] = Box{Parent: n, ID: id, Type: typ}
			connCount := int(d.u16())
			if connCount > maxConns {
				return nil, errf(ErrMalformed, "node %d box %d connection count %d out of range", n.ID, id, connCount)
			}
			for c := 0; c < connCount; c++ {
				hints = append(hints, connHint{
					node:   n,
					box:    id,
					toNode: d.u32(),
					toBox:  d.u8(),
				})
			}
		}
		n.Meta = d.meta()
		if d.err != nil {
			return nil, d.err
		}
	}

	g.Meta = d.meta()
	if d.err != nil {
		return nil, d.err
	}
	if end := d.u8(); d.err != nil || end != endMark {
		if d.err != nil {
			return nil, errf(ErrMissingEndMark, "stream ended before end marker")
		}
		return nil, errf(ErrMissingEndMark, "bad end marker 0x%02x", end)
	}

	// Second pass: rewrite hints into box references.
	for _, h := range hints {
		target := byID[h.toNode]
		if target == nil {
			return nil, errf(ErrDanglingConnection, "node %d box %d references missing node %d", h.node.ID, h.box, h.toNode)
		}
		peer := target.Box(h.toBox)
		if peer == nil {
			return nil, errf(ErrDanglingConnection, "node %d box %d references missing box %d on node %d", h.node.ID, h.box, h.toBox, h.toNode)
		}
		src := h.node.Box(h.box)
		src.Connections = append(src.Connections, peer)
	}

	return g, nil
}

// decoder wraps an io.Reader with little-endian primitives and a sticky
// error, so the happy path reads straight through.
type decoder struct {
	r   io.Reader
	err error
	buf [16]byte
}

func (d *decoder) read(n int) []byte {
	if d.err != nil {
		return d.buf[:n]
	}
	if _, err := io.ReadFull(d.r, d.buf[:n]); err != nil {
		d.err = errf(ErrTruncated, "unexpected end of stream: %v", err)
	}
	return d.buf[:n]
}

func (d *decoder) u8() byte    { return d.read(1)[0] }
func (d *decoder) u16() uint16 { return binary.LittleEndian.Uint16(d.read(2)) }
func (d *decoder) u32() uint32 { return binary.LittleEndian.Uint32(d.read(4)) }
func (d *decoder) i32() int32  { return int32(d.u32()) }
func (d *decoder) f32() float32 {
	return math.Float32frombits(d.u32())
}

func (d *decoder) guid() uuid.UUID {
	var id uuid.UUID
	copy(id[:], d.read(16))
	return id
}

func (d *decoder) bytes(limit int) []byte {
	n := int(d.i32())
	if d.err != nil {
		return nil
	}
	if n < 0 || n > limit {
		d.err = errf(ErrMalformed, "length %d out of range (limit %d)", n, limit)
		return nil
	}
	if n == 0 {
		return nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(d.r, b); err != nil {
		d.err = errf(ErrTruncated, "unexpected end of stream: %v", err)
		return nil
	}
	return b
}

func (d *decoder) str(limit int) string {
	return string(d.bytes(limit))
}

func (d *decoder) variant() Variant {
	tag := VariantType(d.i32())
	if d.err != nil {
		return nil
	}
	switch tag {
	case VariantNull:
		return NullValue{}
	case VariantBool:
		return BoolValue(d.u8() != 0)
	case VariantInt:
		return IntValue(d.i32())
	case VariantUint:
		return UintValue(d.u32())
	case VariantFloat:
		return FloatValue(d.f32())
	case VariantFloat2:
		return Float2Value{d.f32(), d.f32()}
	case VariantFloat3:
		return Float3Value{d.f32(), d.f32(), d.f32()}
	case VariantFloat4:
		return Float4Value{d.f32(), d.f32(), d.f32(), d.f32()}
	case VariantColor:
		return ColorValue{d.f32(), d.f32(), d.f32(), d.f32()}
	case VariantGuid:
		return GuidValue(d.guid())
	case VariantString:
		return StringValue(d.str(maxBlobBytes))
	case VariantBlob:
		return BlobValue(d.bytes(maxBlobBytes))
	case VariantMatrix:
		var m MatrixValue
		for i := range m {
			m[i] = d.f32()
		}
		return m
	default:
		d.err = errf(ErrMalformed, "unknown variant tag %d", tag)
		return nil
	}
}

func (d *decoder) meta() Meta {
	count := int(d.i32())
	if d.err != nil {
		return Meta{}
	}
	if count < 0 || count > maxValues {
		d.err = errf(ErrMalformed, "meta entry count %d out of range", count)
		return Meta{}
	}
	var m Meta
	for i := 0; i < count; i++ {
		typeID := d.i32()
		size := int(d.u32())
		if d.err != nil {
			return Meta{}
		}
		if size > maxMetaSize {
			d.err = errf(ErrMalformed, "meta entry %d size %d out of range", typeID, size)
			return Meta{}
		}
		data := make([]byte, size)
		if size > 0 {
			if _, err := io.ReadFull(d.r, data); err != nil {
				d.err = errf(ErrTruncated, "unexpected end of stream: %v", err)
				return Meta{}
			}
		}
		m.Entries = append(m.Entries, MetaEntry{TypeID: typeID, Data: data})
	}
	return m
}
