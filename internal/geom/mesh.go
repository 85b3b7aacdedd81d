package geom

import "math"

// Triangle is three vertices in counter-clockwise order.
type Triangle struct {
	A, B, C Vec3
}

// Area returns the surface area of the triangle.
func (t Triangle) Area() float64 {
	return t.B.Sub(t.A).Cross(t.C.Sub(t.A)).Len() * 0.5
}

// Mesh is a triangulated surface. It carries no normals or UVs; the sampler
// only needs positions.
type Mesh struct {
	Triangles []Triangle
}

// Area returns the summed area of all triangles.
func (m *Mesh) Area() float64 {
	if m == nil {
		return 0
	}
	total := 0.0
	for _, t := range m.Triangles {
		total += t.Area()
	}
	return total
}

// Bounds returns the axis-aligned bounding box of all vertices. An empty
// mesh reports zero vectors.
func (m *Mesh) Bounds() (lo, hi Vec3) {
	if m == nil || len(m.Triangles) == 0 {
		return Vec3{}, Vec3{}
	}
	inf := math.Inf(1)
	lo = Vec3{inf, inf, inf}
	hi = Vec3{-inf, -inf, -inf}
	for _, t := range m.Triangles {
		for _, p := range [3]Vec3{t.A, t.B, t.C} {
			lo = Vec3{math.Min(lo.X, p.X), math.Min(lo.Y, p.Y), math.Min(lo.Z, p.Z)}
			hi = Vec3{math.Max(hi.X, p.X), math.Max(hi.Y, p.Y), math.Max(hi.Z, p.Z)}
		}
	}
	return lo, hi
}

// Translate shifts every vertex by d in place.
func (m *Mesh) Translate(d Vec3) {
	for i := range m.Triangles {
		t := &m.Triangles[i]
		t.A = t.A.Add(d)
		t.B = t.B.Add(d)
		t.C = t.C.Add(d)
	}
}

// Center moves the mesh so its bounding box is centered on the origin.
func (m *Mesh) Center() {
	lo, hi := m.Bounds()
	m.Translate(lo.Add(hi).Scale(-0.5))
}

func (m *Mesh) addQuad(a, b, c, d Vec3) {
	m.Triangles = append(m.Triangles, Triangle{a, b, c}, Triangle{a, c, d})
}

// Cylinder builds a closed cylinder (side wall plus both caps) centered on
// the origin with its axis along Y.
func Cylinder(radiusTop, radiusBottom, height float64, radialSegments int) *Mesh {
	if radialSegments < 3 {
		radialSegments = 3
	}
	half := height / 2
	m := &Mesh{Triangles: make([]Triangle, 0, radialSegments*4)}
	top := Vec3{0, half, 0}
	bottom := Vec3{0, -half, 0}
	for i := 0; i < radialSegments; i++ {
		a0 := float64(i) / float64(radialSegments) * 2 * math.Pi
		a1 := float64(i+1) / float64(radialSegments) * 2 * math.Pi
		s0, c0 := math.Sincos(a0)
		s1, c1 := math.Sincos(a1)

		t0 := Vec3{s0 * radiusTop, half, c0 * radiusTop}
		t1 := Vec3{s1 * radiusTop, half, c1 * radiusTop}
		b0 := Vec3{s0 * radiusBottom, -half, c0 * radiusBottom}
		b1 := Vec3{s1 * radiusBottom, -half, c1 * radiusBottom}

		m.addQuad(t0, b0, b1, t1)
		m.Triangles = append(m.Triangles,
			Triangle{top, t0, t1},
			Triangle{bottom, b1, b0},
		)
	}
	return m
}

// Sphere builds a UV sphere centered on the origin.
func Sphere(radius float64, widthSegments, heightSegments int) *Mesh {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}
	point := func(u, v float64) Vec3 {
		phi := u * 2 * math.Pi
		theta := v * math.Pi
		st, ct := math.Sincos(theta)
		sp, cp := math.Sincos(phi)
		return Vec3{-radius * cp * st, radius * ct, radius * sp * st}
	}
	m := &Mesh{Triangles: make([]Triangle, 0, widthSegments*heightSegments*2)}
	for iy := 0; iy < heightSegments; iy++ {
		v0 := float64(iy) / float64(heightSegments)
		v1 := float64(iy+1) / float64(heightSegments)
		for ix := 0; ix < widthSegments; ix++ {
			u0 := float64(ix) / float64(widthSegments)
			u1 := float64(ix+1) / float64(widthSegments)
			a := point(u0, v0)
			b := point(u0, v1)
			c := point(u1, v1)
			d := point(u1, v0)
			if iy != 0 {
				m.Triangles = append(m.Triangles, Triangle{a, b, d})
			}
			if iy != heightSegments-1 {
				m.Triangles = append(m.Triangles, Triangle{b, c, d})
			}
		}
	}
	return m
}
