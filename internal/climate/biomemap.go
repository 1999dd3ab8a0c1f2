package climate

import "fmt"

type Entry struct {
	Point ParameterPoint
	Biome string
}

// ParameterMap is an ordered, frozen list of rectangles. It is safe for
// concurrent use.
type ParameterMap struct {
	entries []Entry
	filled  int
}

func (m *ParameterMap) Len() int { return len(m.entries) }

// Entries returns a copy of the entries in registration order.
func (m *ParameterMap) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// FilledCells is the number of grid cells assigned to the last biome by the
// fill_last gap policy.
func (m *ParameterMap) FilledCells() int { return m.filled }

// Biomes returns the distinct biome ids in first-registered order.
func (m *ParameterMap) Biomes() []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range m.entries {
		if !seen[e.Biome] {
			seen[e.Biome] = true
			out = append(out, e.Biome)
		}
	}
	return out
}

// Resolve returns the biome for t: the first registered rectangle that
// contains t, otherwise the rectangle with the lowest fitness (earliest on a
// tie).
func (m *ParameterMap) Resolve(t Target) string {
	if len(m.entries) == 0 {
		return ""
	}
	for _, e := range m.entries {
		if e.Point.Contains(t) {
			return e.Biome
		}
	}
	best, bestFit := 0, m.entries[0].Point.Fitness(t)
	for i := 1; i < len(m.entries); i++ {
		if f := m.entries[i].Point.Fitness(t); f < bestFit {
			best, bestFit = i, f
		}
	}
	return m.entries[best].Biome
}

// Lookup is Resolve restricted to containment.
func (m *ParameterMap) Lookup(t Target) (string, bool) {
	for _, e := range m.entries {
		if e.Point.Contains(t) {
			return e.Biome, true
		}
	}
	return "", false
}

// Builder collects explicit rectangles for hand-tuned bodies. Registration
// order is resolution order.
type Builder struct {
	entries []Entry
	err     error
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Add(biome string, p ParameterPoint) *Builder {
	if b.err != nil {
		return b
	}
	if biome == "" {
		b.err = fmt.Errorf("climate: entry %d: empty biome id", len(b.entries))
		return b
	}
	if err := p.Validate(); err != nil {
		b.err = fmt.Errorf("climate: %s: %w", biome, err)
		return b
	}
	b.entries = append(b.entries, Entry{Point: p, Biome: biome})
	return b
}

func (b *Builder) Build() (*ParameterMap, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.entries) == 0 {
		return nil, fmt.Errorf("climate: no entries")
	}
	entries := make([]Entry, len(b.entries))
	copy(entries, b.entries)
	return &ParameterMap{entries: entries}, nil
}
