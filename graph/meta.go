package graph

// Meta is an opaque metadata container attached to graphs, nodes and
// parameters. The compiler never interprets entries; they round-trip
// through load and save so editor state survives a recompile.
type Meta struct {
	Entries []MetaEntry
}

// MetaEntry is a single typed blob.
type MetaEntry struct {
	TypeID int32
	Data   []byte
}

// Get returns the data of the first entry with the given type id, or nil.
func (m *Meta) Get(typeID int32) []byte {
	for i := range m.Entries {
		if m.Entries[i].TypeID == typeID {
			return m.Entries[i].Data
		}
	}
	return nil
}

// Set replaces the first entry with the given type id or appends a new one.
func (m *Meta) Set(typeID int32, data []byte) {
	for i := range m.Entries {
		if m.Entries[i].TypeID == typeID {
			m.Entries[i].Data = data
			return
		}
	}
	m.Entries = append(m.Entries, MetaEntry{TypeID: typeID, Data: data})
}
