package noise

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"

	perlin "github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"

	"planetgen.ai/internal/density"
)

type generator interface {
	eval(x, y, z float64) float64
}

type simplexGen struct{ n opensimplex.Noise }

func (g simplexGen) eval(x, y, z float64) float64 { return g.n.Eval3(x, y, z) }

type perlinGen struct{ p *perlin.Perlin }

func (g perlinGen) eval(x, y, z float64) float64 { return g.p.Noise3D(x, y, z) }

// Octaves is a summed octave noise normalized to about [-1, 1]. It is
// read-only after construction.
type Octaves struct {
	gens    []generator
	freqs   []float64
	weights []float64
	norm    float64
}

func (o *Octaves) Sample(x, y, z float64) float64 {
	var sum float64
	for i, g := range o.gens {
		if g == nil {
			continue
		}
		f := o.freqs[i]
		sum += o.weights[i] * g.eval(x*f, y*f, z*f)
	}
	return sum * o.norm
}

// NewOctaves builds the sampler for def with octave seeds derived from seed
// and id.
func NewOctaves(seed int64, id string, d Definition) (*Octaves, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", id, err)
	}
	n := len(d.Amplitudes)
	o := &Octaves{
		gens:    make([]generator, n),
		freqs:   make([]float64, n),
		weights: make([]float64, n),
	}
	base := idHash(seed, id)
	var total float64
	for i, amp := range d.Amplitudes {
		if amp == 0 {
			continue
		}
		octSeed := int64(mix64(base + uint64(i)*0x9e3779b97f4a7c15))
		if d.Kind == Perlin {
			o.gens[i] = perlinGen{perlin.NewPerlin(2, 2, 1, octSeed)}
		} else {
			o.gens[i] = simplexGen{opensimplex.New(octSeed)}
		}
		o.freqs[i] = math.Exp2(float64(d.FirstOctave + i))
		// higher octaves carry half the weight of the one below
		o.weights[i] = amp * math.Exp2(-float64(i))
		total += math.Abs(o.weights[i])
	}
	o.norm = 1 / total
	return o, nil
}

// Registry is the noise service for one world seed. It implements
// density.NoiseSource and is safe for concurrent use.
type Registry struct {
	seed     int64
	defs     map[string]Definition
	samplers map[string]*Octaves
}

func NewRegistry(seed int64, defs map[string]Definition) (*Registry, error) {
	r := &Registry{
		seed:     seed,
		defs:     make(map[string]Definition, len(defs)),
		samplers: make(map[string]*Octaves, len(defs)),
	}
	for id, d := range defs {
		o, err := NewOctaves(seed, id, d)
		if err != nil {
			return nil, err
		}
		r.defs[id] = d.clone()
		r.samplers[id] = o
	}
	return r, nil
}

// ForIDs builds a registry with the default definition of every id.
func ForIDs(seed int64, ids []string) (*Registry, error) {
	defs, err := DefinitionsFor(ids)
	if err != nil {
		return nil, err
	}
	return NewRegistry(seed, defs)
}

func (r *Registry) Seed() int64 { return r.seed }

func (r *Registry) Sampler(id string) (density.NoiseSampler, bool) {
	o, ok := r.samplers[id]
	if !ok {
		return nil, false
	}
	return o, true
}

func (r *Registry) Definition(id string) (Definition, bool) {
	d, ok := r.defs[id]
	if !ok {
		return Definition{}, false
	}
	return d.clone(), true
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.defs))
	for id := range r.defs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func idHash(seed int64, id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return mix64(uint64(seed) ^ h.Sum64())
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
