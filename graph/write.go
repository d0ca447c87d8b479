package graph

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"
)

// Write serializes the graph in the version 7000 binary form accepted by
// Read. Box connections are written exactly as held in memory, so a graph
// wired with Box.Connect round-trips with both endpoints listed.
func Write(w io.Writer, g *Graph) error {
	e := &encoder{w: w}

	e.i32(Magic)
	e.u32(Version)
	e.i32(int32(len(g.Nodes)))
	e.i32(int32(len(g.Parameters)))

	for _, n := range g.Nodes {
		e.u32(n.ID)
		e.u32(n.Type)
	}

	for _, p := range g.Parameters {
		if len(p.Name) > MaxParameterName {
			return errf(ErrMalformed, "parameter %q name exceeds %d bytes", p.Name, MaxParameterName)
		}
		e.u8(byte(p.Kind))
		e.guid(p.ID)
		e.str(p.Name)
		e.boolean(p.Public)
		e.variant(p.Value)
		e.meta(p.Meta)
	}

	for _, n := range g.Nodes {
		e.i32(int32(len(n.Values)))
		for _, v := range n.Values {
			e.variant(v)
		}
		if len(n.Boxes) > maxBoxes {
			return errf(ErrMalformed, "node %d has %d boxes", n.ID, len(n.Boxes))
		}
		e.u16(uint16(len(n.Boxes)))
		for i := range n.Boxes {
			b := &n.Boxes[i]
			e.u8(b.ID)
			e.u8(byte(b.Type))
			e.u16(uint16(len(b.Connections)))
			for _, peer := range b.Connections {
				e.u32(peer.Parent.ID)
				e.u8(peer.ID)
			}
		}
		e.meta(n.Meta)
	}

	e.meta(g.Meta)
	e.u8(endMark)
	return e.err
}

type encoder struct {
	w   io.Writer
	err error
	buf [16]byte
}

func (e *encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	if _, err := e.w.Write(b); err != nil {
		e.err = fmt.Errorf("graph write: %w", err)
	}
}

func (e *encoder) u8(v byte) { e.buf[0] = v; e.write(e.buf[:1]) }

func (e *encoder) u16(v uint16) {
	binary.LittleEndian.PutUint16(e.buf[:2], v)
	e.write(e.buf[:2])
}

func (e *encoder) u32(v uint32) {
	binary.LittleEndian.PutUint32(e.buf[:4], v)
	e.write(e.buf[:4])
}

func (e *encoder) i32(v int32) { e.u32(uint32(v)) }

func (e *encoder) f32(v float32) { e.u32(math.Float32bits(v)) }

func (e *encoder) boolean(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *encoder) guid(id uuid.UUID) {
	copy(e.buf[:16], id[:])
	e.write(e.buf[:16])
}

func (e *encoder) str(s string) {
	e.i32(int32(len(s)))
	e.write([]byte(s))
}

func (e *encoder) variant(v Variant) {
	e.i32(int32(TypeOf(v)))
	switch val := v.(type) {
	case nil, NullValue:
	case BoolValue:
		e.boolean(bool(val))
	case IntValue:
		e.i32(int32(val))
	case UintValue:
		e.u32(uint32(val))
	case FloatValue:
		e.f32(float32(val))
	case Float2Value:
		e.f32(val[0])
		e.f32(val[1])
	case Float3Value:
		e.f32(val[0])
		e.f32(val[1])
		e.f32(val[2])
	case Float4Value:
		for _, c := range val {
			e.f32(c)
		}
	case ColorValue:
		for _, c := range val {
			e.f32(c)
		}
	case GuidValue:
		e.guid(uuid.UUID(val))
	case StringValue:
		e.str(string(val))
	case BlobValue:
		e.i32(int32(len(val)))
		e.write(val)
	case MatrixValue:
		for _, c := range val {
			e.f32(c)
		}
	default:
		e.err = errf(ErrMalformed, "unknown variant type %T", v)
	}
}

func (e *encoder) meta(m Meta) {
	e.i32(int32(len(m.Entries)))
	for _, entry := range m.Entries {
		e.i32(entry.TypeID)
		e.u32(uint32(len(entry.Data)))
		e.write(entry.Data)
	}
}
