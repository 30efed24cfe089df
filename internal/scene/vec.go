package scene

import "math"

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }
func (a Vec3) MaxComponent() float64 { return math.Max(a.X, math.Max(a.Y, a.Z)) }
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Normalize returns the unit vector, or the zero vector for zero input.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// RotateY rotates around the world Y axis by angle radians.
func (a Vec3) RotateY(angle float64) Vec3 {
	s, c := math.Sincos(angle)
	return Vec3{
		X: a.X*c + a.Z*s,
		Y: a.Y,
		Z: -a.X*s + a.Z*c,
	}
}

// RotateEuler applies X, then Y, then Z rotations (radians).
func (a Vec3) RotateEuler(r Vec3) Vec3 {
	sx, cx := math.Sincos(r.X)
	v := Vec3{a.X, a.Y*cx - a.Z*sx, a.Y*sx + a.Z*cx}
	sy, cy := math.Sincos(r.Y)
	v = Vec3{v.X*cy + v.Z*sy, v.Y, -v.X*sy + v.Z*cy}
	sz, cz := math.Sincos(r.Z)
	return Vec3{v.X*cz - v.Y*sz, v.X*sz + v.Y*cz, v.Z}
}

// UnrotateEuler inverts RotateEuler.
func (a Vec3) UnrotateEuler(r Vec3) Vec3 {
	sz, cz := math.Sincos(-r.Z)
	v := Vec3{a.X*cz - a.Y*sz, a.X*sz + a.Y*cz, a.Z}
	sy, cy := math.Sincos(-r.Y)
	v = Vec3{v.X*cy + v.Z*sy, v.Y, -v.X*sy + v.Z*cy}
	sx, cx := math.Sincos(-r.X)
	return Vec3{v.X, v.Y*cx - v.Z*sx, v.Y*sx + v.Z*cx}
}

// Color is a linear RGB colour with channels nominally in [0,1].
type Color struct {
	R, G, B float64
}

func (c Color) Add(o Color) Color { return Color{c.R + o.R, c.G + o.G, c.B + o.B} }
func (c Color) Mul(o Color) Color { return Color{c.R * o.R, c.G * o.G, c.B * o.B} }
func (c Color) Scale(s float64) Color { return Color{c.R * s, c.G * s, c.B * s} }
func (c Color) Luminance() float64 { return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B }

// Clamp limits every channel to [0,1].
func (c Color) Clamp() Color {
	return Color{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

// Hex builds a colour from a 0xRRGGBB value.
func Hex(v uint32) Color {
	return Color{
		R: float64((v>>16)&0xff) / 255,
		G: float64((v>>8)&0xff) / 255,
		B: float64(v&0xff) / 255,
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
