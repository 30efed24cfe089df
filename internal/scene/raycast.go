package scene

import "math"

// Hit is one ray/mesh intersection.
type Hit struct {
	Mesh     *Mesh
	Distance float64
	Point    Vec3
}

// IntersectSphere returns the nearest non-negative distance at which r meets
// the sphere, or false.
func IntersectSphere(r Ray, center Vec3, radius float64) (float64, bool) {
	oc := r.Origin.Sub(center)
	b := oc.Dot(r.Direction)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	s := math.Sqrt(disc)
	t0, t1 := -b-s, -b+s
	if t1 < 0 {
		return 0, false
	}
	if t0 >= 0 {
		return t0, true
	}
	return t1, true
}

// Intersect returns the nearest hit among all meshes.
func (s *Scene) Intersect(r Ray) (Hit, bool) {
	var (
		best  Hit
		found bool
	)
	for _, m := range s.objects {
		if m.Geometry == nil {
			continue
		}
		t, ok := IntersectSphere(r, m.Position, m.Radius())
		if !ok {
			continue
		}
		if !found || t < best.Distance {
			best = Hit{Mesh: m, Distance: t}
			found = true
		}
	}
	if found {
		best.Point = r.At(best.Distance)
	}
	return best, found
}

// IntersectAll appends every hit to dst sorted nearest first and returns it.
func (s *Scene) IntersectAll(r Ray, dst []Hit) []Hit {
	dst = dst[:0]
	for _, m := range s.objects {
		if m.Geometry == nil {
			continue
		}
		t, ok := IntersectSphere(r, m.Position, m.Radius())
		if !ok {
			continue
		}
		dst = append(dst, Hit{Mesh: m, Distance: t, Point: r.At(t)})
	}
	// small n; insertion sort keeps this allocation free
	for i := 1; i < len(dst); i++ {
		for j := i; j > 0 && dst[j].Distance < dst[j-1].Distance; j-- {
			dst[j], dst[j-1] = dst[j-1], dst[j]
		}
	}
	return dst
}
