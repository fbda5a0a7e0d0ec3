package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqltree/internal/cli/config"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-render a SQL file whenever it changes",
		Long: `Render a SQL file to its output files, then render it again every time
the file is written. Parse errors are reported and the previous output is
kept until the file parses again.`,
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{LongRunningAnnotation: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := NewCommandContext(cmd)
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}

			refresh := func() {
				if err := cc.renderFile(cmd, path); err != nil && !Reported(err) {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				}
			}
			refresh()
			cc.Logger.Info("watching", slog.String("file", path))
			return watchFile(cmd.Context(), path, cc.Cfg.Watch.Debounce, cc.Logger, refresh)
		},
	}
	cmd.Flags().Duration("debounce", config.DefaultWatchDebounce, "Delay before re-rendering after a change")
	return cmd
}

// renderFile renders path into the configured output files.
func (cc *CommandContext) renderFile(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	tree, err := cc.capture(cmd, string(data))
	if err != nil {
		return err
	}
	_, err = cc.writeFiles(cmd, tree)
	return err
}

// watchFile calls onChange, debounced, each time path is written or
// recreated, until ctx is cancelled. The parent directory is watched so that
// editors replacing the file are followed. onChange runs on the calling
// goroutine, so calls never overlap and none is running once watchFile
// returns.
func watchFile(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("file changed", slog.String("file", event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if ctx.Err() != nil {
				return nil
			}
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", slog.Any("error", err))
		}
	}
}
