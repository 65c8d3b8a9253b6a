// Package watch reruns work when files on disk change.
//
// A Watcher observes a fixed set of files through fsnotify. It watches the
// directories that hold them, so editors that save by renaming a temporary
// file over the original are still seen. Bursts of events are debounced into
// a single callback, and callbacks run on the goroutine that called Run.
//
//	w, err := watch.New([]string{"program.yaml", "input.yaml"}, watch.DefaultDebounce, logger)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	return w.Run(ctx, func(ctx context.Context) error {
//	    return rebuild(ctx)
//	})
package watch
