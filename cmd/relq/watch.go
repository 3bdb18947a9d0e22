package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// debounce absorbs the burst of events editors produce for one save.
const debounce = 100 * time.Millisecond

func newWatchCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &optimizeOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-run optimize every time the document changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session(cmd)
			if err != nil {
				return err
			}
			return watchFile(cmd.Context(), s, args[0], opts.Dot, nil)
		},
	}
	opts.bind(cmd)
	return cmd
}

// watchFile optimizes path once, then again after every write until ctx
// is done. Errors in the document are printed, not returned. ready, when
// not nil, is closed once the watcher is in place.
func watchFile(ctx context.Context, s *Session, path, dot string, ready chan<- struct{}) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// watch the directory; editors often replace the file on save
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	if ready != nil {
		close(ready)
	}

	rerun := func() {
		if err := runOptimize(s, path, dot); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
		fmt.Fprintf(s.out, "-- watching %s\n", path)
	}
	rerun()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			s.logger.Debug("document changed", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			rerun()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", slog.Any("error", err))
		}
	}
}
