package render

import (
	"math"

	"github.com/rpggio/tracespace/internal/scene"
)

// Lighting constants. Emissive light is scaled down so the record colour
// reads as a glow instead of flattening the shading.
const (
	EmissiveIntensity = 0.35
	SpecularStrength  = 0.5
	opaqueCutoff      = 0.995
)

// facetNormal snaps a world-space sphere normal to the centre of the
// latitude/longitude facet it falls in, in the mesh's rotated frame.
func facetNormal(n scene.Vec3, rotation scene.Vec3, segments int) scene.Vec3 {
	local := n.UnrotateEuler(rotation)

	lonStep := 2 * math.Pi / float64(segments)
	latStep := math.Pi / float64(segments)

	lon := math.Atan2(local.Z, local.X)
	lat := math.Acos(max(-1, min(1, local.Y)))
	lon = (math.Floor(lon/lonStep) + 0.5) * lonStep
	lat = (math.Floor(lat/latStep) + 0.5) * latStep

	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	snapped := scene.Vec3{X: sinLat * cosLon, Y: cosLat, Z: sinLat * sinLon}
	return snapped.RotateEuler(rotation)
}

// shade evaluates the Phong model at a surface point seen from eye.
func shade(s *scene.Scene, m *scene.Mesh, point, normal, eye scene.Vec3) scene.Color {
	mat := m.Material
	out := s.Ambient.Color.Scale(s.Ambient.Intensity).Mul(mat.Color)
	view := eye.Sub(point).Normalize()

	for _, l := range s.Points {
		dir := l.Position.Sub(point).Normalize()
		diff := normal.Dot(dir)
		if diff <= 0 {
			continue
		}
		light := l.Color.Scale(l.Intensity)
		out = out.Add(light.Mul(mat.Color).Scale(diff))

		reflect := normal.Scale(2 * diff).Sub(dir)
		if spec := reflect.Dot(view); spec > 0 {
			out = out.Add(light.Scale(SpecularStrength * math.Pow(spec, mat.Shininess)))
		}
	}
	return out.Add(mat.Emissive.Scale(EmissiveIntensity)).Clamp()
}

// sample composites every hit along one ray front to back over the
// background.
func sample(s *scene.Scene, cam *scene.Camera, ndcX, ndcY float64, hits []scene.Hit) (scene.Color, []scene.Hit) {
	ray := cam.Ray(ndcX, ndcY)
	hits = s.IntersectAll(ray, hits)

	var (
		acc   scene.Color
		alpha float64
	)
	for _, h := range hits {
		if h.Distance < cam.Near || h.Distance > cam.Far {
			continue
		}
		m := h.Mesh
		normal := h.Point.Sub(m.Position).Normalize()
		normal = facetNormal(normal, m.Rotation, m.Geometry.Segments)
		c := shade(s, m, h.Point, normal, ray.Origin)

		a := m.Material.Opacity
		if !m.Material.Transparent {
			a = 1
		}
		w := (1 - alpha) * a
		acc = acc.Add(c.Scale(w))
		alpha += w
		if alpha >= opaqueCutoff {
			break
		}
	}
	return acc.Add(s.Background.Scale(1 - alpha)).Clamp(), hits
}
