package scene

import "math"

var worldUp = Vec3{0, 1, 0}

// Viewport is the size of the output surface. CellRatio is the height/width
// ratio of one output cell: 1 for square pixels, about 2 for terminal cells.
type Viewport struct {
	Width     int
	Height    int
	CellRatio float64
}

// Aspect returns the width/height ratio in physical units.
func (v Viewport) Aspect() float64 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	ratio := v.CellRatio
	if ratio <= 0 {
		ratio = 1
	}
	return float64(v.Width) / (float64(v.Height) * ratio)
}

// NDC maps a cell coordinate to normalized device coordinates, sampling the
// cell centre. Y grows upwards in NDC.
func (v Viewport) NDC(x, y int) (float64, float64, bool) {
	if v.Width <= 0 || v.Height <= 0 || x < 0 || y < 0 || x >= v.Width || y >= v.Height {
		return 0, 0, false
	}
	nx := (float64(x)+0.5)/float64(v.Width)*2 - 1
	ny := -((float64(y)+0.5)/float64(v.Height)*2 - 1)
	return nx, ny, true
}

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Camera is a perspective camera that always knows its look-at basis.
type Camera struct {
	FOV    float64 // vertical, degrees
	Aspect float64
	Near   float64
	Far    float64

	Position Vec3
	target   Vec3
	forward  Vec3
	right    Vec3
	up       Vec3
}

// NewPerspectiveCamera creates a camera at the origin looking down -Z.
func NewPerspectiveCamera(fov, aspect, near, far float64) *Camera {
	c := &Camera{FOV: fov, Aspect: aspect, Near: near, Far: far}
	c.Position = Vec3{0, 0, 1}
	c.LookAt(Vec3{})
	return c
}

// LookAt aims the camera at target and recomputes its basis.
func (c *Camera) LookAt(target Vec3) {
	c.target = target
	f := target.Sub(c.Position).Normalize()
	if f == (Vec3{}) {
		f = Vec3{0, 0, -1}
	}
	up := worldUp
	if math.Abs(f.Dot(up)) > 0.999 {
		up = Vec3{0, 0, -1}
	}
	r := f.Cross(up).Normalize()
	c.forward = f
	c.right = r
	c.up = r.Cross(f).Normalize()
}

// Target returns the point the camera was last aimed at.
func (c *Camera) Target() Vec3 { return c.target }

// Forward returns the unit viewing direction.
func (c *Camera) Forward() Vec3 { return c.forward }

// Distance returns the distance from the camera to its target.
func (c *Camera) Distance() float64 {
	return c.Position.Sub(c.target).Len()
}

// Ray casts from the camera through a point in normalized device coordinates.
func (c *Camera) Ray(ndcX, ndcY float64) Ray {
	tanHalf := math.Tan(c.FOV * math.Pi / 360)
	dir := c.forward.
		Add(c.right.Scale(ndcX * tanHalf * c.Aspect)).
		Add(c.up.Scale(ndcY * tanHalf))
	return Ray{Origin: c.Position, Direction: dir.Normalize()}
}
