package app

import (
	"time"

	"tsurface/internal/core/errors"
	"tsurface/internal/data/history"
	"tsurface/internal/engine/inventory"
	"tsurface/internal/shared/observability"
)

// OpenHistory attaches the snapshot store at path. Calling it again replaces
// the previous store.
func (a *App) OpenHistory(path string) error {
	store, err := history.Open(path)
	if err != nil {
		code := errors.CodeInternal
		if history.IsCorruptError(err) {
			code = errors.CodeHistoryCorrupt
		}
		return errors.AddContext(errors.Wrap(err, code, "open history store"), errors.CtxPath, path)
	}
	if a.history != nil {
		_ = a.history.Close()
	}
	a.history = store
	return nil
}

func (a *App) HistoryEnabled() bool {
	return a.history != nil
}

// Record stores res as the newest snapshot of projectKey and returns the
// diff against the snapshot it supersedes. With no earlier snapshot every
// function and external counts as added.
func (a *App) Record(projectKey string, res Result) (inventory.Diff, error) {
	if a.history == nil {
		return inventory.Diff{}, errors.New(errors.CodeUsage, "history store is not configured")
	}

	prev, err := a.history.LatestSnapshot(projectKey)
	if err != nil {
		return inventory.Diff{}, errors.Wrap(err, errors.CodeInternal, "load previous snapshot")
	}

	var before *inventory.Report
	if prev != nil {
		before = prev.Report
	}
	diff := inventory.Compare(before, res.Report)

	snap := history.NewSnapshot(res.Mode.String(), res.Files, res.Report)
	if _, err := a.history.SaveSnapshot(projectKey, snap); err != nil {
		return inventory.Diff{}, errors.Wrap(err, errors.CodeInternal, "save snapshot")
	}
	observability.SnapshotsSaved.Inc()
	return diff, nil
}

// Trend summarises the recorded snapshots of projectKey taken since the
// given time, averaged over window.
func (a *App) Trend(projectKey string, since time.Time, window time.Duration) (history.TrendReport, error) {
	if a.history == nil {
		return history.TrendReport{}, errors.New(errors.CodeUsage, "history store is not configured")
	}
	snapshots, err := a.history.LoadSnapshots(projectKey, since)
	if err != nil {
		return history.TrendReport{}, errors.Wrap(err, errors.CodeInternal, "load snapshots")
	}
	if len(snapshots) == 0 {
		return history.TrendReport{}, errors.New(errors.CodeNoSnapshots, "no snapshots recorded for project "+projectKey)
	}
	return history.BuildTrendReport(projectKey, snapshots, window)
}
