package climate

import (
	"fmt"
	"sort"
)

// CoverageGapError reports elementary cells of climate space that no
// rectangle contains.
type CoverageGapError struct {
	Cells   int
	Total   int
	Example Target
}

func (e *CoverageGapError) Error() string {
	return fmt.Sprintf("climate: %d of %d cells unmapped, e.g. %v", e.Cells, e.Total, e.Example)
}

// CheckCoverage splits every axis at the rectangle boundaries and checks
// that each resulting cell lies inside some rectangle.
func CheckCoverage(m *ParameterMap) error {
	var mids [numAxes][]float32
	total := 1
	for a := Axis(0); a < numAxes; a++ {
		mids[a] = midpoints(a, m.entries)
		total *= len(mids[a])
	}

	var gaps int
	var example Target
	var idx [numAxes]int
	for {
		var t Target
		for a := Axis(0); a < numAxes; a++ {
			t[a] = mids[a][idx[a]]
		}
		if _, ok := m.Lookup(t); !ok {
			if gaps == 0 {
				example = t
			}
			gaps++
		}
		// odometer increment
		a := Axis(0)
		for ; a < numAxes; a++ {
			idx[a]++
			if idx[a] < len(mids[a]) {
				break
			}
			idx[a] = 0
		}
		if a == numAxes {
			break
		}
	}
	if gaps > 0 {
		return &CoverageGapError{Cells: gaps, Total: total, Example: example}
	}
	return nil
}

// midpoints returns the centre of every interval between adjacent distinct
// boundaries on the axis.
func midpoints(a Axis, entries []Entry) []float32 {
	b := a.Bounds()
	set := map[float32]bool{b.Min: true, b.Max: true}
	for _, e := range entries {
		r := e.Point.Axis(a)
		for _, v := range []float32{r.Min, r.Max} {
			if v >= b.Min && v <= b.Max {
				set[v] = true
			}
		}
	}
	edges := make([]float32, 0, len(set))
	for v := range set {
		edges = append(edges, v)
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i] < edges[j] })
	out := make([]float32, 0, len(edges)-1)
	for i := 1; i < len(edges); i++ {
		out = append(out, (edges[i-1]+edges[i])/2)
	}
	return out
}
