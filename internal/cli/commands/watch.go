package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/featdesign/internal/cli/config"
	"github.com/leapstack-labs/featdesign/internal/design"
	"github.com/leapstack-labs/featdesign/internal/engine"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompile the design whenever the config or template changes",
		Long: `Compile the design once, then watch featdesign.yaml and the design template
and compile again after every change. Errors are reported and watching
continues. Press Ctrl+C to stop.

watch needs a config file and --outfile.`,
		Example: `  featdesign watch --outfile design.fsf --no-run`,
		Args:    cobra.NoArgs,
		RunE:    runWatch,
	}

	addDesignFlags(cmd)
	addRunFlags(cmd)
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile := config.GetConfigFileUsed()
	if cfgFile == "" {
		return fmt.Errorf("%w: watch needs a config file (featdesign.yaml or --config)", design.ErrValidation)
	}
	if getConfig().OutFile == "" {
		return fmt.Errorf("%w: watch needs --outfile", design.ErrValidation)
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	targets, err := watchTargets(watcher, cfgFile, cmdCtx.Cfg.Template)
	if err != nil {
		return err
	}

	w := &designWatcher{cmd: cmd, cfgFile: cfgFile, engine: cmdCtx.Engine, logger: cmdCtx.Logger}
	w.rebuild(ctx, cmdCtx.Cfg)
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Watching for changes. Press Ctrl+C to stop.")

	return w.loop(ctx, watcher, targets, cmdCtx.Cfg.WatchDebounce)
}

// watchTargets adds the directories of the given files to watcher and
// returns the cleaned absolute paths to react to. Directories are watched
// rather than files so editors that replace files on save are seen.
func watchTargets(watcher *fsnotify.Watcher, files ...string) (map[string]bool, error) {
	targets := map[string]bool{}
	dirs := map[string]bool{}
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		targets[abs] = true

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}
	return targets, nil
}

type designWatcher struct {
	cmd     *cobra.Command
	cfgFile string
	engine  *engine.Engine
	logger  *slog.Logger
}

// loop handles file system events until ctx ends. Bursts of events within
// debounce of each other trigger one rebuild.
func (w *designWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher, targets map[string]bool, debounce time.Duration) error {
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
			// Only handle write/create events for watched files
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !targets[filepath.Clean(event.Name)] {
				continue
			}
			w.logger.Debug("change detected", "file", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			cfg, err := config.LoadConfig(w.cfgFile, w.cmd.Flags())
			if err != nil {
				w.report(err)
				continue
			}
			w.rebuild(ctx, cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *designWatcher) rebuild(ctx context.Context, cfg *config.Config) {
	dc, err := designFromFlags(w.cmd, cfg)
	if err != nil {
		w.report(err)
		return
	}
	res, err := w.engine.Compile(ctx, dc, engine.Options{
		OutFile:  cfg.OutFile,
		Template: cfg.Template,
		NoRun:    cfg.NoRun,
	})
	if err != nil {
		w.report(err)
		return
	}
	_, _ = fmt.Fprintf(w.cmd.ErrOrStderr(), "[%s] Design written to %s\n", time.Now().Format(time.TimeOnly), res.DesignPath)
}

func (w *designWatcher) report(err error) {
	_, _ = fmt.Fprintf(w.cmd.ErrOrStderr(), "[%s] Error: %v\n", time.Now().Format(time.TimeOnly), err)
}
