// Package payload models the JSON-like trees exchanged by the protocol and
// the two pure functions the signing scheme is built on: Vacuum, which
// strips null values and empty containers, and Serialize, which flattens a
// tree into the canonical text that gets signed.
package payload

import "encoding/json"

// Payload is the root mapping owned by a single message. Reads and writes
// address nested mappings by path; writes create the intermediate mappings
// they need.
type Payload struct {
	root Value
}

// New returns an empty Payload.
func New() *Payload {
	return &Payload{root: Map(nil)}
}

// FromValue returns a Payload owning a deep copy of v. A non-mapping v
// yields an empty Payload.
func FromValue(v Value) *Payload {
	if !v.IsMap() {
		return New()
	}
	return &Payload{root: v.Clone()}
}

// Value returns a deep copy of the whole tree.
func (p *Payload) Value() Value { return p.root.Clone() }

// Get returns the value stored at path, or null when any step is missing.
func (p *Payload) Get(path ...string) Value {
	v, _ := p.root.Lookup(path...)
	return v
}

// Has reports whether a value is stored at path.
func (p *Payload) Has(path ...string) bool {
	_, ok := p.root.Lookup(path...)
	return ok
}

// String returns the string stored at path, or "" when absent or not a
// string.
func (p *Payload) String(path ...string) string {
	s, _ := p.Get(path...).AsString()
	return s
}

// Set stores v at path, replacing any non-mapping found along the way with
// a fresh mapping. An empty path replaces the root when v is a mapping.
func (p *Payload) Set(v Value, path ...string) {
	if len(path) == 0 {
		if v.IsMap() {
			p.root = v.Clone()
		}
		return
	}
	p.root = setAt(p.root, path, v)
}

func setAt(cur Value, path []string, v Value) Value {
	if len(path) == 1 {
		return cur.With(path[0], v)
	}
	child, _ := cur.Get(path[0])
	return cur.With(path[0], setAt(child, path[1:], v))
}

// MarshalJSON implements json.Marshaler.
func (p *Payload) MarshalJSON() ([]byte, error) {
	return p.root.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var v Value
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	p.root = Map(nil)
	if v.IsMap() {
		p.root = v
	}
	return nil
}
