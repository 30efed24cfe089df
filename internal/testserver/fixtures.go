package testserver

import (
	"encoding/json"
	"fmt"
)

// FixtureTimestamp is the timestamp carried by generated documents.
const FixtureTimestamp = "2025-01-15T10:30:00"

// SnapshotJSON builds a valid document with the given number of organisms per
// level. Subcomponent i has engagement 100*(i+1) split as likes/reposts/replies.
func SnapshotJSON(subcomponents, components int, entity bool) []byte {
	record := func(i int, size float64, meta map[string]any) map[string]any {
		return map[string]any{
			"size":     size,
			"color":    map[string]float64{"r": 0.3, "g": 0.6, "b": 0.9},
			"position": map[string]float64{"x": float64(i*3 - 6), "y": float64(i%3 - 1), "z": 0},
			"velocity": 0.5,
			"metadata": meta,
		}
	}

	var total int64
	subs := make([]map[string]any, 0, subcomponents)
	for i := range subcomponents {
		eng := int64(100 * (i + 1))
		total += eng
		r := record(i, 1, map[string]any{
			"source":     "bluesky",
			"author":     fmt.Sprintf("user%d", i),
			"engagement": eng,
			"likes":      eng * 7 / 10,
			"reposts":    eng * 2 / 10,
			"replies":    eng - eng*7/10 - eng*2/10,
		})
		r["id"] = fmt.Sprintf("bluesky_%d", i)
		r["text"] = fmt.Sprintf("post number %d", i)
		subs = append(subs, r)
	}

	comps := make([]map[string]any, 0, components)
	for i := range components {
		comps = append(comps, record(i, 3, map[string]any{
			"child_count":      subcomponents,
			"total_engagement": total,
			"aggregate_method": "statistical",
		}))
	}

	doc := map[string]any{
		"timestamp":     FixtureTimestamp,
		"subcomponents": subs,
		"components":    comps,
		"stats": map[string]any{
			"total_organisms":  subcomponents,
			"component_count":  components,
			"total_engagement": total,
		},
	}
	if entity {
		doc["entity"] = record(0, 8, map[string]any{"child_count": components})
	}

	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return data
}
