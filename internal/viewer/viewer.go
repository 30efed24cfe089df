// Package viewer owns the scene, camera, renderer and organism registry and
// applies snapshots to them. A Viewer is confined to one goroutine.
package viewer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/rpggio/tracespace/internal/domain/snapshot"
	"github.com/rpggio/tracespace/internal/infopanel"
	"github.com/rpggio/tracespace/internal/organism"
	"github.com/rpggio/tracespace/internal/scene"
)

// Camera and material constants.
const (
	DefaultFOV            = 75.0
	DefaultNear           = 0.1
	DefaultFar            = 1000.0
	DefaultCameraDistance = 30.0
	Shininess             = 30.0
)

// ErrNotInitialized is returned by operations that need Initialize first.
var ErrNotInitialized = errors.New("viewer not initialized")

// Renderer draws a scene from a camera onto an output surface.
type Renderer interface {
	SetSize(vp scene.Viewport)
	Render(s *scene.Scene, c *scene.Camera)
}

// Options configures a Viewer.
type Options struct {
	CameraDistance float64
	FOV            float64
	Rand           *rand.Rand
	Now            func() time.Time
}

// Viewer is the single owner of all scene state.
type Viewer struct {
	opts     Options
	renderer Renderer
	logger   *slog.Logger
	rng      *rand.Rand
	now      func() time.Time

	scene     *scene.Scene
	camera    *scene.Camera
	resources *scene.Resources
	registry  *organism.Registry
	viewport  scene.Viewport

	panel       infopanel.Panel
	status      infopanel.Status
	lastApplied uint64
}

// New creates a viewer drawing through renderer.
func New(renderer Renderer, opts Options, logger *slog.Logger) *Viewer {
	if opts.CameraDistance <= 0 {
		opts.CameraDistance = DefaultCameraDistance
	}
	if opts.FOV <= 0 {
		opts.FOV = DefaultFOV
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Viewer{
		opts:      opts,
		renderer:  renderer,
		logger:    logger,
		rng:       rng,
		now:       now,
		resources: scene.NewResources(),
		registry:  organism.NewRegistry(),
	}
}

// Initialize builds the scene, camera and lighting rig and sizes the output.
func (v *Viewer) Initialize(vp scene.Viewport) {
	v.scene = scene.New()
	v.scene.Background = scene.Hex(0x000011)
	v.scene.Ambient = scene.AmbientLight{Color: scene.Hex(0x404040), Intensity: 1}
	v.scene.Points = []scene.PointLight{
		{Color: scene.Hex(0x00ffff), Intensity: 1, Position: scene.Vec3{X: 10, Y: 10, Z: 10}},
		{Color: scene.Hex(0xff00ff), Intensity: 1, Position: scene.Vec3{X: -10, Y: -10, Z: -10}},
	}

	v.camera = scene.NewPerspectiveCamera(v.opts.FOV, vp.Aspect(), DefaultNear, DefaultFar)
	v.camera.Position = scene.Vec3{Z: v.opts.CameraDistance}
	v.camera.LookAt(scene.Vec3{})

	v.viewport = vp
	if v.renderer != nil {
		v.renderer.SetSize(vp)
	}
	v.status = infopanel.Loading(v.now())
	v.logger.Debug("viewer initialized", "width", vp.Width, "height", vp.Height)
}

// Initialized reports whether Initialize has run.
func (v *Viewer) Initialized() bool { return v.scene != nil }

// Resize updates the camera aspect and the output surface.
func (v *Viewer) Resize(vp scene.Viewport) {
	v.viewport = vp
	if v.camera != nil {
		v.camera.Aspect = vp.Aspect()
	}
	if v.renderer != nil {
		v.renderer.SetSize(vp)
	}
}

// Rebuild disposes every current object and creates one sphere per record:
// subcomponents, then components, then the entity.
func (v *Viewer) Rebuild(snap *snapshot.Snapshot) error {
	if v.scene == nil {
		return ErrNotInitialized
	}

	err := v.scene.Clear(v.resources)
	if err != nil {
		err = fmt.Errorf("clearing scene: %w", err)
	}
	v.registry.Reset()

	for i := range snap.Subcomponents {
		v.spawn(snap.Subcomponents[i], organism.LevelSubcomponent)
	}
	for i := range snap.Components {
		v.spawn(snap.Components[i], organism.LevelComponent)
	}
	if snap.Entity != nil {
		v.spawn(*snap.Entity, organism.LevelEntity)
	}

	v.logger.Debug("scene rebuilt",
		"organisms", v.registry.Len(),
		"subcomponents", v.registry.CountLevel(organism.LevelSubcomponent),
		"live_resources", v.resources.Live())
	return err
}

func (v *Viewer) spawn(rec snapshot.OrganismRecord, level organism.Level) {
	c := scene.Color{R: rec.Color.R, G: rec.Color.G, B: rec.Color.B}
	geo := v.resources.NewSphereGeometry(rec.Size, level.Detail())
	mat := v.resources.NewPhongMaterial(scene.MaterialSpec{
		Color:     c,
		Emissive:  c,
		Shininess: Shininess,
		Opacity:   level.Opacity(),
	})
	home := scene.Vec3{X: rec.Position.X, Y: rec.Position.Y, Z: rec.Position.Z}
	mesh := v.scene.Add(geo, mat, home)

	v.registry.Add(organism.Organism{
		Mesh:     mesh,
		Record:   rec,
		Level:    level,
		BaseSize: rec.Size,
		Velocity: rec.Velocity,
		Phase:    v.rng.Float64() * 2 * math.Pi,
		Home:     home,
	})
}

// Render draws one frame.
func (v *Viewer) Render() {
	if v.scene == nil || v.renderer == nil {
		return
	}
	v.renderer.Render(v.scene, v.camera)
}

// Teardown releases every object. The viewer must be initialized again
// before further use.
func (v *Viewer) Teardown() error {
	if v.scene == nil {
		return nil
	}
	err := v.scene.Clear(v.resources)
	v.registry.Reset()
	v.scene = nil
	v.camera = nil
	if err != nil {
		return fmt.Errorf("tearing down scene: %w", err)
	}
	return nil
}

// Scene returns the current scene, nil before Initialize.
func (v *Viewer) Scene() *scene.Scene { return v.scene }

// Camera returns the current camera, nil before Initialize.
func (v *Viewer) Camera() *scene.Camera { return v.camera }

// Registry returns the organism registry.
func (v *Viewer) Registry() *organism.Registry { return v.registry }

// Resources returns the graphics allocation table.
func (v *Viewer) Resources() *scene.Resources { return v.resources }

// Viewport returns the current output size.
func (v *Viewer) Viewport() scene.Viewport { return v.viewport }

// Panel returns the figures of the last applied snapshot.
func (v *Viewer) Panel() infopanel.Panel { return v.panel }

// Status returns the current status indicator.
func (v *Viewer) Status() infopanel.Status { return v.status }

// LastApplied returns the sequence number of the last applied snapshot.
func (v *Viewer) LastApplied() uint64 { return v.lastApplied }
