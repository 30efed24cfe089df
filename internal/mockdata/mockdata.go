// Package mockdata generates a plausible snapshot for running the viewer
// without the ingestion pipeline.
package mockdata

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/rpggio/tracespace/internal/domain/snapshot"
)

// PositionRange bounds subcomponent coordinates to [-PositionRange, PositionRange].
const PositionRange = 5.0

// Post is one mock social post.
type Post struct {
	Text    string
	Author  string
	Likes   int64
	Reposts int64
	Replies int64
}

// Engagement is the sum of all interactions.
func (p Post) Engagement() int64 {
	return p.Likes + p.Reposts + p.Replies
}

// Posts is the built-in sample feed.
var Posts = []Post{
	{"Just shipped our new AI feature! So excited to see what people build with it.", "techfounder", 342, 89, 67},
	{"Hot take: The future of computing is not in the cloud, it's in local-first software.", "devthoughts", 567, 234, 123},
	{"Our team just hit 1M users! Thank you all for the amazing support 🎉", "startup_ceo", 892, 156, 201},
	{"AI agents are getting really good at coding. Just had an assistant help me debug a nasty race condition.", "engineer_mike", 445, 98, 87},
	{"The intersection of consciousness and computation is fascinating. Hoffman's work is mind-bending.", "philo_coder", 234, 67, 45},
	{"Deployed to production on a Friday. Living dangerously 😎", "devops_guru", 678, 201, 134},
	{"Just finished reading 'The Case Against Reality'. My perception of reality will never be the same.", "curious_mind", 189, 45, 32},
	{"Why does every SaaS product now have an AI chatbot? Sometimes I just want a simple FAQ page.", "ux_designer", 523, 167, 98},
	{"Breakthrough in quantum error correction! This could be the path to practical quantum computers.", "quantum_researcher", 756, 289, 156},
	{"Remember when websites were just HTML and CSS? Those were simpler times...", "old_school_dev", 412, 123, 89},
}

var (
	positiveColor  = snapshot.Color{R: 0.3, G: 0.4, B: 0.8}
	negativeColor  = snapshot.Color{R: 0.8, G: 0.3, B: 0.3}
	neutralColor   = snapshot.Color{R: 0.4, G: 0.7, B: 0.4}
	componentColor = snapshot.Color{R: 0.5, G: 0.6, B: 0.5}
	entityColor    = snapshot.Color{R: 0.4, G: 0.5, B: 0.6}
)

// SentimentColor buckets a post by a crude likes-versus-replies score.
func SentimentColor(p Post) snapshot.Color {
	total := p.Engagement()
	if total == 0 {
		return neutralColor
	}
	score := (float64(p.Likes) - float64(p.Replies)*0.3) / float64(total)
	switch {
	case score > 0.3:
		return positiveColor
	case score < -0.1:
		return negativeColor
	default:
		return neutralColor
	}
}

// Generate builds a snapshot of posts with one component and one entity
// aggregating them. rng drives the positions.
func Generate(rng *rand.Rand, posts []Post, now time.Time) *snapshot.Snapshot {
	snap := &snapshot.Snapshot{
		Subcomponents: make([]snapshot.OrganismRecord, 0, len(posts)),
		Timestamp:     snapshot.Timestamp{Time: now},
	}

	var (
		total  int64
		centre snapshot.Position
	)
	for i, p := range posts {
		eng := p.Engagement()
		total += eng
		pos := snapshot.Position{
			X: uniform(rng, -PositionRange, PositionRange),
			Y: uniform(rng, -PositionRange, PositionRange),
			Z: uniform(rng, -PositionRange, PositionRange),
		}
		centre.X += pos.X
		centre.Y += pos.Y
		centre.Z += pos.Z

		snap.Subcomponents = append(snap.Subcomponents, snapshot.OrganismRecord{
			ID:       fmt.Sprintf("bluesky_%d", i),
			Size:     math.Log1p(float64(eng))/2 + 0.5,
			Color:    SentimentColor(p),
			Position: pos,
			Velocity: math.Min(float64(eng)/500, 1),
			Text:     p.Text,
			Metadata: snapshot.Metadata{
				Source:     "bluesky",
				Author:     p.Author,
				Engagement: &eng,
				Likes:      p.Likes,
				Reposts:    p.Reposts,
				Replies:    p.Replies,
			},
		})
	}
	if n := float64(len(posts)); n > 0 {
		centre = snapshot.Position{X: centre.X / n, Y: centre.Y / n, Z: centre.Z / n}
	}

	component := snapshot.OrganismRecord{
		ID:       "social_media_component",
		Size:     math.Log1p(float64(total)) + 1,
		Color:    componentColor,
		Position: centre,
		Velocity: 0.5,
		Text:     fmt.Sprintf("Composite of %d organisms", len(posts)),
		Metadata: snapshot.Metadata{
			ChildCount:      len(posts),
			TotalEngagement: total,
			AggregateMethod: "statistical",
		},
	}
	entity := snapshot.OrganismRecord{
		ID:       "internet_consciousness_entity",
		Size:     math.Log1p(float64(total)) + 2,
		Color:    entityColor,
		Position: centre,
		Velocity: 0.3,
		Text:     "Composite of 1 components",
		Metadata: snapshot.Metadata{
			ChildCount:      1,
			TotalEngagement: total,
			AggregateMethod: "statistical",
		},
	}

	snap.Components = []snapshot.OrganismRecord{component}
	snap.Entity = &entity
	snap.Stats = snapshot.Stats{
		TotalOrganisms:  int64(len(posts)),
		TotalEngagement: total,
		ComponentCount:  1,
	}
	return snap
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Write encodes snap as indented JSON at path, creating parent directories.
func Write(path string, snap *snapshot.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
