// Package sampler distributes random points over the surface of a
// triangulated body, weighting each triangle by its area.
package sampler

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/olivier-w/wishcake/internal/geom"
)

// degenerateArea is the area at or below which a triangle is ignored.
const degenerateArea = 1e-12

// InvalidGeometryError reports a mesh that has no samplable surface.
type InvalidGeometryError struct {
	Triangles int
	Reason    string
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("invalid geometry (%d triangles): %s", e.Triangles, e.Reason)
}

// Sampler picks area-weighted surface points from one mesh. Build it once
// and draw as many points as needed.
type Sampler struct {
	tris []geom.Triangle
	cdf  []float64
	area float64
	rng  *rand.Rand
}

// New prepares a sampler for mesh. rng must not be nil.
func New(mesh *geom.Mesh, rng *rand.Rand) (*Sampler, error) {
	if mesh == nil || len(mesh.Triangles) == 0 {
		return nil, &InvalidGeometryError{Reason: "no triangles"}
	}

	s := &Sampler{
		tris: make([]geom.Triangle, 0, len(mesh.Triangles)),
		cdf:  make([]float64, 0, len(mesh.Triangles)),
		rng:  rng,
	}
	for _, t := range mesh.Triangles {
		a := t.Area()
		if !(a > degenerateArea) {
			continue
		}
		s.area += a
		s.tris = append(s.tris, t)
		s.cdf = append(s.cdf, s.area)
	}
	if len(s.tris) == 0 {
		return nil, &InvalidGeometryError{
			Triangles: len(mesh.Triangles),
			Reason:    "zero surface area",
		}
	}
	return s, nil
}

// Area returns the total sampled surface area.
func (s *Sampler) Area() float64 { return s.area }

// Point returns one random point on the surface.
func (s *Sampler) Point() geom.Vec3 {
	r := s.rng.Float64() * s.area
	i := sort.SearchFloat64s(s.cdf, r)
	if i >= len(s.tris) {
		i = len(s.tris) - 1
	}
	t := s.tris[i]

	u, v := s.rng.Float64(), s.rng.Float64()
	if u+v > 1 {
		u, v = 1-u, 1-v
	}
	return t.A.Add(t.B.Sub(t.A).Scale(u)).Add(t.C.Sub(t.A).Scale(v))
}

// Points returns count random surface points.
func (s *Sampler) Points(count int) []geom.Vec3 {
	if count <= 0 {
		return nil
	}
	out := make([]geom.Vec3, count)
	for i := range out {
		out[i] = s.Point()
	}
	return out
}

// Sample is a one-shot helper: build a sampler for mesh and draw count points.
func Sample(mesh *geom.Mesh, count int, rng *rand.Rand) ([]geom.Vec3, error) {
	s, err := New(mesh, rng)
	if err != nil {
		return nil, err
	}
	return s.Points(count), nil
}
