package viewer_test

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rpggio/tracespace/internal/domain/refresh"
	"github.com/rpggio/tracespace/internal/domain/snapshot"
	"github.com/rpggio/tracespace/internal/infopanel"
	"github.com/rpggio/tracespace/internal/loader"
	"github.com/rpggio/tracespace/internal/organism"
	"github.com/rpggio/tracespace/internal/scene"
	"github.com/rpggio/tracespace/internal/testserver"
	"github.com/rpggio/tracespace/internal/viewer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRenderer struct {
	renders int
	sizes   []scene.Viewport
}

func (r *countingRenderer) SetSize(vp scene.Viewport) { r.sizes = append(r.sizes, vp) }
func (r *countingRenderer) Render(*scene.Scene, *scene.Camera) { r.renders++ }

var testViewport = scene.Viewport{Width: 80, Height: 24, CellRatio: 2}

func newViewer(t *testing.T) (*viewer.Viewer, *countingRenderer) {
	t.Helper()
	r := &countingRenderer{}
	v := viewer.New(r, viewer.Options{Rand: rand.New(rand.NewPCG(1, 2))}, nil)
	v.Initialize(testViewport)
	return v, r
}

func decode(t *testing.T, subs, comps int, entity bool) *snapshot.Snapshot {
	t.Helper()
	snap, err := snapshot.Decode(testserver.SnapshotJSON(subs, comps, entity))
	require.NoError(t, err)
	return snap
}

func TestInitialize(t *testing.T) {
	v, r := newViewer(t)

	cam := v.Camera()
	require.NotNil(t, cam)
	assert.Equal(t, viewer.DefaultFOV, cam.FOV)
	assert.Equal(t, scene.Vec3{Z: viewer.DefaultCameraDistance}, cam.Position)
	assert.InDelta(t, viewer.DefaultCameraDistance, cam.Distance(), 1e-9)
	assert.InDelta(t, testViewport.Aspect(), cam.Aspect, 1e-9)

	s := v.Scene()
	require.NotNil(t, s)
	assert.Len(t, s.Points, 2)
	assert.Positive(t, s.Ambient.Intensity)
	assert.Equal(t, []scene.Viewport{testViewport}, r.sizes)
	assert.Equal(t, infopanel.StateLoading, v.Status().State)
}

func TestRebuild_ObjectCountMatchesRecords(t *testing.T) {
	v, _ := newViewer(t)

	require.NoError(t, v.Rebuild(decode(t, 10, 1, true)))

	assert.Equal(t, 12, v.Registry().Len())
	assert.Equal(t, 12, v.Scene().Len())
	assert.Equal(t, 12, v.Resources().LiveGeometries())
	assert.Equal(t, 12, v.Resources().LiveMaterials())
	assert.Equal(t, 10, v.Registry().CountLevel(organism.LevelSubcomponent))
	assert.Equal(t, 1, v.Registry().CountLevel(organism.LevelComponent))
	assert.Equal(t, 1, v.Registry().CountLevel(organism.LevelEntity))
}

func TestRebuild_LevelPolicyAndOrder(t *testing.T) {
	v, _ := newViewer(t)
	require.NoError(t, v.Rebuild(decode(t, 2, 1, true)))

	var levels []organism.Level
	for o := range v.Registry().All() {
		levels = append(levels, o.Level)
		mesh := o.Mesh
		assert.Equal(t, o.Level.Detail(), mesh.Geometry.Segments)
		assert.Equal(t, o.Level.Opacity(), mesh.Material.Opacity)
		assert.True(t, mesh.Material.Transparent)
		assert.Equal(t, viewer.Shininess, mesh.Material.Shininess)
		assert.Equal(t, mesh.Material.Color, mesh.Material.Emissive)
		assert.Equal(t, o.Record.Size, mesh.Geometry.Radius)
		assert.GreaterOrEqual(t, o.Phase, 0.0)
		assert.Less(t, o.Phase, 2*math.Pi)
		assert.Equal(t, o.Home, mesh.Position)

		got, ok := v.Registry().ForMesh(mesh)
		require.True(t, ok)
		assert.Same(t, o, got)
	}
	assert.Equal(t, []organism.Level{
		organism.LevelSubcomponent, organism.LevelSubcomponent,
		organism.LevelComponent, organism.LevelEntity,
	}, levels)
}

func TestRebuild_Idempotent(t *testing.T) {
	v, _ := newViewer(t)
	snap := decode(t, 5, 2, true)

	require.NoError(t, v.Rebuild(snap))
	first := v.State().Organisms
	require.NoError(t, v.Rebuild(snap))
	second := v.State().Organisms

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("rebuild is not idempotent (-first +second):\n%s", diff)
	}
	assert.Equal(t, 7, v.Scene().Len())
}

func TestRebuild_NoResourceLeak(t *testing.T) {
	v, _ := newViewer(t)

	for i := range 20 {
		require.NoError(t, v.Rebuild(decode(t, i%7, i%3, i%2 == 0)))
		assert.Equal(t, 2*v.Registry().Len(), v.Resources().Live(), "iteration %d", i)
		assert.Equal(t, v.Registry().Len(), v.Scene().Len())
	}

	require.NoError(t, v.Rebuild(decode(t, 0, 0, false)))
	assert.Zero(t, v.Resources().Live())
	assert.Zero(t, v.Scene().Len())
}

func TestRebuild_OldHandlesDoNotResolve(t *testing.T) {
	v, _ := newViewer(t)
	require.NoError(t, v.Rebuild(decode(t, 3, 0, false)))

	var old []*scene.Mesh
	for o := range v.Registry().All() {
		old = append(old, o.Mesh)
	}
	require.NoError(t, v.Rebuild(decode(t, 3, 0, false)))

	for _, m := range old {
		_, ok := v.Registry().ForMesh(m)
		assert.False(t, ok)
	}
}

func TestRebuild_EntityAbsent(t *testing.T) {
	v, _ := newViewer(t)
	require.NoError(t, v.Rebuild(decode(t, 3, 1, false)))

	assert.Equal(t, 4, v.Registry().Len())
	assert.Zero(t, v.Registry().CountLevel(organism.LevelEntity))
}

func TestRebuild_RequiresInitialize(t *testing.T) {
	v := viewer.New(nil, viewer.Options{}, nil)
	err := v.Rebuild(decode(t, 1, 0, false))
	assert.ErrorIs(t, err, viewer.ErrNotInitialized)
}

func TestResize(t *testing.T) {
	v, r := newViewer(t)
	vp := scene.Viewport{Width: 120, Height: 30, CellRatio: 2}

	v.Resize(vp)
	assert.InDelta(t, vp.Aspect(), v.Camera().Aspect, 1e-9)
	assert.Equal(t, vp, v.Viewport())
	assert.Equal(t, vp, r.sizes[len(r.sizes)-1])
}

func TestRender(t *testing.T) {
	v, r := newViewer(t)
	v.Render()
	v.Render()
	assert.Equal(t, 2, r.renders)
}

func TestTeardown_ReleasesEverything(t *testing.T) {
	v, _ := newViewer(t)
	require.NoError(t, v.Rebuild(decode(t, 4, 1, true)))

	require.NoError(t, v.Teardown())
	assert.Zero(t, v.Resources().Live())
	assert.Zero(t, v.Registry().Len())
	assert.False(t, v.Initialized())
	require.NoError(t, v.Teardown())
}

func TestApply_Success(t *testing.T) {
	v, _ := newViewer(t)
	snap := decode(t, 10, 1, true)

	outcome := v.Apply(loader.Result{Seq: 1, Snapshot: snap})
	assert.Equal(t, refresh.OutcomeApplied, outcome)
	assert.Equal(t, infopanel.StateActive, v.Status().State)
	assert.Equal(t, int64(10), v.Panel().Organisms)
	assert.Equal(t, int64(5500), v.Panel().Engagement)
	assert.Equal(t, "5,500", v.Panel().EngagementText())
	assert.Equal(t, uint64(1), v.LastApplied())
	assert.Equal(t, 12, v.Scene().Len())
}

func TestApply_FailureKeepsScene(t *testing.T) {
	ss := testserver.New(t, testserver.SnapshotJSON(4, 1, true))
	l, err := loader.New(loader.Options{Endpoint: ss.URL()}, nil)
	require.NoError(t, err)
	t.Cleanup(l.Close)

	v, _ := newViewer(t)
	require.Equal(t, refresh.OutcomeApplied, v.Apply(l.Fetch(context.Background())))

	before := append([]*scene.Mesh(nil), v.Scene().Objects()...)
	panel := v.Panel()

	ss.SetStatus(http.StatusInternalServerError)
	outcome := v.Apply(l.Fetch(context.Background()))

	assert.Equal(t, refresh.OutcomeFetchError, outcome)
	assert.Equal(t, infopanel.StateError, v.Status().State)
	assert.NotEmpty(t, v.Status().Message)
	assert.Equal(t, before, v.Scene().Objects())
	assert.Equal(t, panel, v.Panel())
	assert.Equal(t, 12, v.Resources().Live())
}

func TestApply_MalformedKeepsScene(t *testing.T) {
	v, _ := newViewer(t)
	require.Equal(t, refresh.OutcomeApplied, v.Apply(loader.Result{Seq: 1, Snapshot: decode(t, 2, 0, false)}))

	_, err := snapshot.Decode([]byte(`{"subcomponents": []}`))
	require.Error(t, err)

	outcome := v.Apply(loader.Result{Seq: 2, Err: err})
	assert.Equal(t, refresh.OutcomeMalformed, outcome)
	assert.Equal(t, infopanel.StateError, v.Status().State)
	assert.Equal(t, 2, v.Scene().Len())
}

func TestApply_DiscardsStaleResults(t *testing.T) {
	v, _ := newViewer(t)

	require.Equal(t, refresh.OutcomeApplied, v.Apply(loader.Result{Seq: 3, Snapshot: decode(t, 5, 0, false)}))

	assert.Equal(t, refresh.OutcomeStale, v.Apply(loader.Result{Seq: 2, Snapshot: decode(t, 1, 0, false)}))
	assert.Equal(t, 5, v.Scene().Len())

	assert.Equal(t, refresh.OutcomeStale, v.Apply(loader.Result{Seq: 1, Err: errors.New("late failure")}))
	assert.Equal(t, infopanel.StateActive, v.Status().State)

	assert.Equal(t, refresh.OutcomeApplied, v.Apply(loader.Result{Seq: 4, Snapshot: decode(t, 2, 0, false)}))
	assert.Equal(t, 2, v.Scene().Len())
}

func TestApply_WarmStartSupersededByLiveFetch(t *testing.T) {
	v, _ := newViewer(t)

	require.Equal(t, refresh.OutcomeApplied, v.Apply(loader.Result{Seq: 0, Snapshot: decode(t, 1, 0, false)}))
	require.Equal(t, refresh.OutcomeApplied, v.Apply(loader.Result{Seq: 1, Snapshot: decode(t, 3, 0, false)}))
	assert.Equal(t, refresh.OutcomeStale, v.Apply(loader.Result{Seq: 0, Snapshot: decode(t, 1, 0, false)}))
	assert.Equal(t, 3, v.Scene().Len())
}

func TestApply_StatusTimestamps(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	v := viewer.New(nil, viewer.Options{Now: func() time.Time { return now }}, nil)
	v.Initialize(testViewport)

	v.Apply(loader.Result{Seq: 1, Err: &snapshot.FetchError{Endpoint: "x", StatusCode: 503}})
	assert.Equal(t, now, v.Status().Since)
	assert.False(t, v.Panel().Applied)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, refresh.OutcomeApplied, viewer.Classify(nil))
	assert.Equal(t, refresh.OutcomeFetchError, viewer.Classify(&snapshot.FetchError{Endpoint: "x"}))
	assert.Equal(t, refresh.OutcomeMalformed, viewer.Classify(&snapshot.MalformedSnapshotError{Field: "timestamp"}))
	assert.Equal(t, refresh.OutcomeFetchError, viewer.Classify(context.DeadlineExceeded))
}

func TestState_CopiesOrganisms(t *testing.T) {
	v, _ := newViewer(t)
	v.Apply(loader.Result{Seq: 1, Snapshot: decode(t, 2, 1, false)})

	st := v.State()
	require.Len(t, st.Organisms, 3)
	assert.Equal(t, "bluesky_0", st.Organisms[0].ID)
	assert.Equal(t, "user0", st.Organisms[0].Author)
	assert.Equal(t, organism.LevelComponent, st.Organisms[2].Level)
	assert.InDelta(t, viewer.DefaultCameraDistance, st.CameraDistance, 1e-9)

	var store viewer.Store
	assert.Empty(t, store.Load().Organisms)
	store.Publish(st)
	if diff := cmp.Diff(st, store.Load(), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("published state differs:\n%s", diff)
	}
}
