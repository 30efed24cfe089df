// Package interact turns pointer and wheel input into camera motion and
// hover inspection.
package interact

import (
	"github.com/rpggio/tracespace/internal/organism"
	"github.com/rpggio/tracespace/internal/scene"
	"github.com/rpggio/tracespace/internal/viewer"
)

// Input scaling and zoom limits.
const (
	DragScale   = 0.05
	ZoomScale   = 0.01 * 2
	MinDistance = 10.0
	MaxDistance = 60.0

	// WheelNotch is the delta of one wheel step, matching a browser line
	// scroll of 100 units.
	WheelNotch = 100.0

	// A terminal cell is roughly 8x16 pixels; drag deltas are converted so
	// the same hand motion moves the camera as far as it would in pixels.
	CellWidthPx  = 8
	CellHeightPx = 16
)

// Controller owns the drag state machine and the hover target. It must run
// on the goroutine that owns the viewer.
type Controller struct {
	viewer *viewer.Viewer

	dragging     bool
	lastX, lastY int

	pointerX, pointerY int
	hover              organism.Handle
	hovering           bool
}

// New creates a Controller for v.
func New(v *viewer.Viewer) *Controller {
	return &Controller{viewer: v}
}

// Dragging reports whether a drag session is active.
func (c *Controller) Dragging() bool { return c.dragging }

// PointerDown starts a drag session at cell (x, y).
func (c *Controller) PointerDown(x, y int) {
	c.dragging = true
	c.lastX, c.lastY = x, y
}

// PointerUp ends the drag session.
func (c *Controller) PointerUp(x, y int) {
	c.dragging = false
	c.lastX, c.lastY = x, y
}

// PointerMove pans the camera while dragging and always refreshes the hover
// target.
func (c *Controller) PointerMove(x, y int) {
	if c.dragging {
		cam := c.viewer.Camera()
		if cam != nil {
			dx := float64((x - c.lastX) * CellWidthPx)
			dy := float64((y - c.lastY) * CellHeightPx)
			cam.Position.X += dx * DragScale
			cam.Position.Y += dy * DragScale
			cam.LookAt(scene.Vec3{})
		}
		c.lastX, c.lastY = x, y
	}
	c.HitTest(x, y)
}

// Wheel dollies the camera along its viewing axis. Positive delta moves
// towards the target. The distance is clamped to [MinDistance, MaxDistance].
func (c *Controller) Wheel(delta float64) {
	cam := c.viewer.Camera()
	if cam == nil {
		return
	}
	target := cam.Target()
	dist := min(max(cam.Distance()-delta*ZoomScale, MinDistance), MaxDistance)
	cam.Position = target.Sub(cam.Forward().Scale(dist))
	cam.LookAt(target)
}

// HitTest casts a ray through cell (x, y) and records the nearest organism
// if it responds to hover. It returns the hovered organism, if any.
func (c *Controller) HitTest(x, y int) (*organism.Organism, bool) {
	c.pointerX, c.pointerY = x, y
	c.hovering = false

	cam := c.viewer.Camera()
	s := c.viewer.Scene()
	if cam == nil || s == nil {
		return nil, false
	}
	nx, ny, ok := c.viewer.Viewport().NDC(x, y)
	if !ok {
		return nil, false
	}
	hit, ok := s.Intersect(cam.Ray(nx, ny))
	if !ok {
		return nil, false
	}
	o, ok := c.viewer.Registry().ForMesh(hit.Mesh)
	if !ok || !o.Level.Hoverable() {
		return nil, false
	}
	c.hover = o.Handle
	c.hovering = true
	return o, true
}

// ClearHover drops the hover target, for example when the pointer leaves.
func (c *Controller) ClearHover() {
	c.hovering = false
}

// Hovered resolves the current hover target. Targets from a replaced
// snapshot no longer resolve.
func (c *Controller) Hovered() (*organism.Organism, bool) {
	if !c.hovering {
		return nil, false
	}
	return c.viewer.Registry().Get(c.hover)
}

// Pointer returns the last pointer cell.
func (c *Controller) Pointer() (x, y int) {
	return c.pointerX, c.pointerY
}
