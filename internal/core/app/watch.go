package app

import (
	"context"
	"log/slog"
	"path/filepath"

	"tsurface/internal/core/errors"
	"tsurface/internal/core/watcher"
	"tsurface/internal/shared/util"
)

// Watch analyses root once, then again whenever a matching source file or
// the project configuration changes, handing every result to emit. Re-runs
// are spaced by watch.min_interval. Failed re-runs are logged and the
// previous document stays current. Watch returns when ctx is done or emit
// fails.
func (a *App) Watch(ctx context.Context, root string, emit func(Result) error) error {
	res, err := a.Analyze(ctx, root)
	if err != nil {
		return err
	}
	if err := emit(res); err != nil {
		return err
	}

	changes := make(chan []string, 1)
	w, err := watcher.New(watcher.Options{
		Debounce:     a.Config.Watch.Debounce,
		ExcludeDirs:  a.Config.Exclude.Dirs,
		ExcludeFiles: a.Config.Exclude.Files,
		Extensions:   append(a.scanner.Extensions(), ".json"),
		// either one appearing or vanishing switches the resolution mode
		Triggers: []string{
			filepath.Join(root, a.Config.Project.TSConfig),
			filepath.Join(root, a.Config.Project.DepsDir),
		},
	}, func(paths []string) {
		select {
		case changes <- paths:
		default:
			// a run is already pending and will pick these up
		}
	})
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "start watcher")
	}
	defer w.Close()

	if err := w.Watch([]string{root}); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "watch root"), errors.CtxPath, root)
	}
	slog.Info("watching for changes", "root", root, "debounce", a.Config.Watch.Debounce)

	limiter := util.NewIntervalLimiter(a.Config.Watch.MinInterval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			if err := limiter.Wait(ctx, 1); err != nil {
				return nil
			}
			slog.Debug("change detected", "files", len(paths), "first", paths[0])

			res, err := a.Analyze(ctx, root)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Error("re-analysis failed", "error", err)
				continue
			}
			if err := emit(res); err != nil {
				return err
			}
		}
	}
}
