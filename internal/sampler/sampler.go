package sampler

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"planetgen.ai/internal/climate"
	"planetgen.ai/internal/density"
	"planetgen.ai/internal/planet"
	"planetgen.ai/internal/router"
)

// Column is the sampled surface and biome of one x/z column.
type Column struct {
	X       int            `json:"x"`
	Z       int            `json:"z"`
	Surface int            `json:"surface"`
	Biome   string         `json:"biome"`
	Climate climate.Target `json:"climate"`
}

// Sampler evaluates a planet's compiled router per column. It holds only
// compiled programs and is safe for concurrent use.
type Sampler struct {
	minY, maxY int
	biomes     *climate.ParameterMap

	final   *density.Program
	climate [6]*density.Program
}

// climateSlots maps each climate axis to the router slot that drives it.
var climateSlots = [6]router.Slot{
	climate.Temperature:     router.Temperature,
	climate.Humidity:        router.Vegetation,
	climate.Continentalness: router.Continents,
	climate.Erosion:         router.Erosion,
	climate.Depth:           router.Depth,
	climate.Weirdness:       router.Ridges,
}

func New(a *planet.Artifact, noises density.NoiseSource) (*Sampler, error) {
	s := &Sampler{minY: a.Spec.MinY, maxY: a.Spec.MaxY, biomes: a.Biomes}
	var err error
	if s.final, err = a.Compile(router.FinalDensity, noises); err != nil {
		return nil, fmt.Errorf("sampler %s: %w", a.Spec.ID, err)
	}
	for axis, slot := range climateSlots {
		if s.climate[axis], err = a.Compile(slot, noises); err != nil {
			return nil, fmt.Errorf("sampler %s: %w", a.Spec.ID, err)
		}
	}
	return s, nil
}

// Surface returns the highest y with positive final density, or minY-1 for
// a column with no solid block.
func (s *Sampler) Surface(x, z int) int {
	fx, fz := float64(x), float64(z)
	for y := s.maxY - 1; y >= s.minY; y-- {
		if s.final.ComputeAt(fx, float64(y), fz) > 0 {
			return y
		}
	}
	return s.minY - 1
}

// Climate samples the six climate axes at a block position.
func (s *Sampler) Climate(x, y, z int) climate.Target {
	var t climate.Target
	for axis, p := range s.climate {
		t[axis] = float32(p.ComputeAt(float64(x), float64(y), float64(z)))
	}
	return t
}

func (s *Sampler) Column(x, z int) Column {
	surface := s.Surface(x, z)
	y := surface
	if y < s.minY {
		y = s.minY
	}
	t := s.Climate(x, y, z)
	return Column{X: x, Z: z, Surface: surface, Biome: s.biomes.Resolve(t), Climate: t}
}

// MaxRegionColumns bounds Width*Depth of a sampled region.
const MaxRegionColumns = 1 << 20

// Region describes a grid of columns starting at (X, Z), Width by Depth
// samples spaced Stride blocks apart.
type Region struct {
	X      int `json:"x"`
	Z      int `json:"z"`
	Width  int `json:"width"`
	Depth  int `json:"depth"`
	Stride int `json:"stride"`
}

func (r Region) Validate() error {
	if r.Width <= 0 || r.Depth <= 0 {
		return fmt.Errorf("sampler: region %dx%d is empty", r.Width, r.Depth)
	}
	if r.Stride <= 0 {
		return fmt.Errorf("sampler: stride %d must be > 0", r.Stride)
	}
	if r.Width > MaxRegionColumns || r.Depth > MaxRegionColumns/r.Width {
		return fmt.Errorf("sampler: region %dx%d too large", r.Width, r.Depth)
	}
	return nil
}

// SampleRegion samples every column of r over a worker pool. Columns are
// returned row-major (z outer). Cancelling ctx stops the pool.
func (s *Sampler) SampleRegion(ctx context.Context, r Region, workers int) ([]Column, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	total := r.Width * r.Depth
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > total {
		workers = total
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make(chan int, workers)
	errs := make(chan error, 1)
	out := make([]Column, total)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				if err := ctx.Err(); err != nil {
					select {
					case errs <- err:
					default:
					}
					return
				}
				i, j := idx%r.Width, idx/r.Width
				out[idx] = s.Column(r.X+i*r.Stride, r.Z+j*r.Stride)
			}
		}()
	}

	go func() {
		defer close(tasks)
		for idx := 0; idx < total; idx++ {
			select {
			case <-ctx.Done():
				return
			case tasks <- idx:
			}
		}
	}()

	wg.Wait()
	select {
	case err := <-errs:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
