// Package animate advances every organism and the camera once per frame.
package animate

import (
	"math"
	"time"

	"github.com/rpggio/tracespace/internal/scene"
	"github.com/rpggio/tracespace/internal/viewer"
)

// Per-tick motion constants.
const (
	PulseAmplitude       = 0.15
	RotationStepX        = 0.001
	RotationStepY        = 0.002
	DriftFrequency       = 0.005
	DriftRadius          = 0.01 / DriftFrequency
	DefaultRotationSpeed = 0.001
)

// PulseScale is the isotropic scale of an organism at time t seconds.
func PulseScale(t, velocity, phase float64) float64 {
	return math.Sin(t*(velocity*2+0.5)+phase)*PulseAmplitude + 1
}

// DriftOffset is the displacement from home after tick frames. It is the
// closed form of stepping 0.01*sin(nω+φ) on X and 0.01*cos(nω+1.3φ) on Y,
// so it never exceeds 2*DriftRadius on either axis.
func DriftOffset(tick uint64, phase float64) (dx, dy float64) {
	a := float64(tick) * DriftFrequency
	dx = DriftRadius * (math.Cos(phase) - math.Cos(a+phase))
	dy = DriftRadius * (math.Sin(a+1.3*phase) - math.Sin(1.3*phase))
	return dx, dy
}

// DragSource reports whether a camera drag is in progress.
type DragSource interface {
	Dragging() bool
}

// Options configures an Animator.
type Options struct {
	// RotationSpeed is the camera orbit step in radians per frame.
	RotationSpeed float64
}

// Animator integrates one frame at a time. It must run on the goroutine that
// owns the viewer.
type Animator struct {
	viewer *viewer.Viewer
	drag   DragSource
	speed  float64
	start  time.Time
	tick   uint64
}

// New creates an Animator. A nil drag source never suspends the orbit.
func New(v *viewer.Viewer, drag DragSource, opts Options) *Animator {
	speed := opts.RotationSpeed
	if speed == 0 {
		speed = DefaultRotationSpeed
	}
	return &Animator{viewer: v, drag: drag, speed: speed}
}

// Tick returns the number of frames integrated so far.
func (a *Animator) Tick() uint64 { return a.tick }

// Frame integrates one tick at wall time now and renders.
func (a *Animator) Frame(now time.Time) {
	if a.start.IsZero() {
		a.start = now
	}
	a.tick++
	a.Step(now.Sub(a.start).Seconds())
	a.viewer.Render()
}

// Step applies pulse, rotation and drift to every organism for time t
// seconds at the current tick, then orbits the camera unless dragging.
func (a *Animator) Step(t float64) {
	for o := range a.viewer.Registry().All() {
		m := o.Mesh
		s := PulseScale(t, o.Velocity, o.Phase)
		m.Scale = scene.Vec3{X: s, Y: s, Z: s}
		m.Rotation.X += RotationStepX
		m.Rotation.Y += RotationStepY

		if o.Level.Drifts() {
			dx, dy := DriftOffset(a.tick, o.Phase)
			m.Position = scene.Vec3{X: o.Home.X + dx, Y: o.Home.Y + dy, Z: o.Home.Z}
		}
	}

	if a.drag != nil && a.drag.Dragging() {
		return
	}
	if cam := a.viewer.Camera(); cam != nil {
		cam.Position = cam.Position.RotateY(a.speed)
		cam.LookAt(scene.Vec3{})
	}
}
