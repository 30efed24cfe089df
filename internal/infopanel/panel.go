// Package infopanel projects snapshot-level statistics and refresh health
// into the status display.
package infopanel

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rpggio/tracespace/internal/domain/snapshot"
)

// TimestampLayout is the human-readable rendering of a snapshot timestamp.
const TimestampLayout = "Jan 2, 2006 15:04:05"

// Panel is the projection of the last applied snapshot.
type Panel struct {
	Organisms  int64     `json:"total_organisms"`
	Engagement int64     `json:"total_engagement"`
	Timestamp  time.Time `json:"timestamp"`
	Applied    bool      `json:"applied"`
}

// Project derives the panel from a snapshot. Absent stats read as zero.
func Project(snap *snapshot.Snapshot) Panel {
	if snap == nil {
		return Panel{}
	}
	return Panel{
		Organisms:  snap.Stats.TotalOrganisms,
		Engagement: snap.Stats.TotalEngagement,
		Timestamp:  snap.Timestamp.Time,
		Applied:    true,
	}
}

// OrganismsText renders the organism count.
func (p Panel) OrganismsText() string {
	return strconv.FormatInt(p.Organisms, 10)
}

// EngagementText renders total engagement with grouping separators.
func (p Panel) EngagementText() string {
	return humanize.Comma(p.Engagement)
}

// UpdatedText renders the snapshot timestamp in local time.
func (p Panel) UpdatedText() string {
	if !p.Applied || p.Timestamp.IsZero() {
		return "-"
	}
	return p.Timestamp.Local().Format(TimestampLayout)
}
