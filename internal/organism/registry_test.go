package organism

import (
	"testing"

	"github.com/rpggio/tracespace/internal/scene"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddAndResolve(t *testing.T) {
	res := scene.NewResources()
	s := scene.New()
	reg := NewRegistry()

	var handles []Handle
	for i, lvl := range []Level{LevelSubcomponent, LevelSubcomponent, LevelComponent, LevelEntity} {
		m := s.Add(res.NewSphereGeometry(1, lvl.Detail()), res.NewPhongMaterial(scene.MaterialSpec{Opacity: lvl.Opacity()}), scene.Vec3{X: float64(i)})
		handles = append(handles, reg.Add(Organism{Mesh: m, Level: lvl}))
	}

	require.Equal(t, 4, reg.Len())
	require.Equal(t, 2, reg.CountLevel(LevelSubcomponent))

	for i, h := range handles {
		o, ok := reg.Get(h)
		require.True(t, ok)
		require.Equal(t, i, o.Handle.Index())

		byMesh, ok := reg.ForMesh(s.Objects()[i])
		require.True(t, ok)
		require.Same(t, o, byMesh)
	}

	var order []Level
	for o := range reg.All() {
		order = append(order, o.Level)
	}
	require.Equal(t, []Level{LevelSubcomponent, LevelSubcomponent, LevelComponent, LevelEntity}, order)
}

func TestRegistry_ResetInvalidatesHandles(t *testing.T) {
	res := scene.NewResources()
	s := scene.New()
	reg := NewRegistry()

	m := s.Add(res.NewSphereGeometry(1, 16), res.NewPhongMaterial(scene.MaterialSpec{Opacity: 0.9}), scene.Vec3{})
	h := reg.Add(Organism{Mesh: m, Level: LevelSubcomponent})

	reg.Reset()
	require.Equal(t, 0, reg.Len())
	_, ok := reg.Get(h)
	require.False(t, ok)
	_, ok = reg.ForMesh(m)
	require.False(t, ok)

	// a new organism at the same index gets a distinct handle
	m2 := s.Add(res.NewSphereGeometry(1, 16), res.NewPhongMaterial(scene.MaterialSpec{Opacity: 0.9}), scene.Vec3{})
	h2 := reg.Add(Organism{Mesh: m2, Level: LevelSubcomponent})
	require.Equal(t, h.Index(), h2.Index())
	require.NotEqual(t, h, h2)
	_, ok = reg.ForMesh(m)
	require.False(t, ok)
}

func TestHandle_PackRoundTrip(t *testing.T) {
	h := Handle{index: 7, generation: 42}
	require.Equal(t, h, Unpack(h.Pack()))
}

func TestLevel_Policy(t *testing.T) {
	tests := []struct {
		level     Level
		name      string
		detail    int
		opacity   float64
		drifts    bool
		hoverable bool
	}{
		{LevelSubcomponent, "subcomponent", 16, 0.9, true, true},
		{LevelComponent, "component", 32, 0.6, false, false},
		{LevelEntity, "entity", 64, 0.3, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.name, tt.level.String())
			require.Equal(t, tt.detail, tt.level.Detail())
			require.Equal(t, tt.opacity, tt.level.Opacity())
			require.Equal(t, tt.drifts, tt.level.Drifts())
			require.Equal(t, tt.hoverable, tt.level.Hoverable())
		})
	}
	require.Panics(t, func() { Level(9).Detail() })
}

func TestLevel_TextRoundTrip(t *testing.T) {
	for _, l := range Levels {
		b, err := l.MarshalText()
		require.NoError(t, err)

		var got Level
		require.NoError(t, got.UnmarshalText(b))
		require.Equal(t, l, got)
	}

	var l Level
	require.Error(t, l.UnmarshalText([]byte("galaxy")))
}
