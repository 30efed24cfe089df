package viewer

import (
	"errors"

	"github.com/rpggio/tracespace/internal/domain/refresh"
	"github.com/rpggio/tracespace/internal/domain/snapshot"
	"github.com/rpggio/tracespace/internal/infopanel"
	"github.com/rpggio/tracespace/internal/loader"
)

// Apply folds one fetch result into the viewer. Results older than the last
// applied snapshot are discarded. A failure keeps the current scene and only
// flips the status indicator.
func (v *Viewer) Apply(res loader.Result) refresh.Outcome {
	if v.panel.Applied && res.Seq < v.lastApplied {
		v.logger.Info("discarding stale snapshot result", "seq", res.Seq, "last_applied", v.lastApplied)
		return refresh.OutcomeStale
	}

	if res.Err != nil || res.Snapshot == nil {
		err := res.Err
		if err == nil {
			err = &snapshot.MalformedSnapshotError{Cause: errors.New("empty result")}
		}
		v.status = infopanel.Failed(v.now(), err)
		v.logger.Warn("snapshot refresh failed, keeping last scene", "seq", res.Seq, "error", err)
		return Classify(err)
	}

	if err := v.Rebuild(res.Snapshot); err != nil {
		v.logger.Error("scene rebuild reported an error", "seq", res.Seq, "error", err)
	}
	v.lastApplied = res.Seq
	v.panel = infopanel.Project(res.Snapshot)
	v.status = infopanel.Active(v.now())
	v.logger.Info("snapshot applied", "seq", res.Seq, "organisms", v.registry.Len())
	return refresh.OutcomeApplied
}

// Classify maps a fetch error to its journal outcome.
func Classify(err error) refresh.Outcome {
	switch {
	case err == nil:
		return refresh.OutcomeApplied
	case errors.Is(err, snapshot.ErrMalformed):
		return refresh.OutcomeMalformed
	default:
		return refresh.OutcomeFetchError
	}
}
