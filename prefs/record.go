package prefs

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/teranos/graphstyle/errors"
	"github.com/teranos/graphstyle/graph"
)

// Preferences is the persisted user styling record. Type ids are unique.
// Values are never mutated in place; every change builds a new one.
type Preferences struct {
	Edges []graph.EdgeOverride `json:"edges"`
}

// Clone returns a deep copy
func (p Preferences) Clone() Preferences {
	out := Preferences{Edges: make([]graph.EdgeOverride, len(p.Edges))}
	for i, o := range p.Edges {
		out.Edges[i] = o.Clone()
	}
	return out
}

func (p Preferences) index(typeID string) int {
	for i, o := range p.Edges {
		if o.Type == typeID {
			return i
		}
	}
	return -1
}

// upsert returns a new record with partial merged into the entry for its
// type, or appended when the type has no entry yet
func (p Preferences) upsert(partial graph.EdgeOverride) Preferences {
	out := p.Clone()
	if i := out.index(partial.Type); i >= 0 {
		out.Edges[i] = out.Edges[i].Merge(partial)
		return out
	}
	out.Edges = append(out.Edges, partial.Clone())
	return out
}

// reset returns a new record without the entry for typeID
func (p Preferences) reset(typeID string) Preferences {
	out := Preferences{Edges: make([]graph.EdgeOverride, 0, len(p.Edges))}
	for _, o := range p.Edges {
		if o.Type != typeID {
			out.Edges = append(out.Edges, o.Clone())
		}
	}
	return out
}

// Encode serializes the record
func Encode(p Preferences) ([]byte, error) {
	if p.Edges == nil {
		p.Edges = []graph.EdgeOverride{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "encode preferences")
	}
	return data, nil
}

// Decode parses a persisted record. Unknown fields, invalid enum values
// and entries without a type id reject the whole record. Duplicate type
// ids are collapsed, later fields winning.
func Decode(data []byte) (Preferences, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw Preferences
	if err := dec.Decode(&raw); err != nil {
		return Preferences{}, errors.Wrapf(errors.ErrInvalidRequest, "malformed preference record: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Preferences{}, errors.NewInvalidRequestError("malformed preference record: trailing data")
	}

	out := Preferences{Edges: []graph.EdgeOverride{}}
	for _, o := range raw.Edges {
		if err := o.Validate(); err != nil {
			return Preferences{}, errors.Wrap(err, "malformed preference record")
		}
		out = out.upsert(o)
	}
	return out, nil
}
