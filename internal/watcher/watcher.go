// Package watcher submits files dropped into a local folder. New audio or
// image files appearing in the watched directory are read, submitted and
// then moved into a "submitted" subdirectory so they are not picked up twice.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rinwao/hakobu/internal/library"
	"github.com/rinwao/hakobu/internal/logging"
	"github.com/rinwao/hakobu/internal/platform"
)

// Submitter is the slice of the orchestrator the watcher needs.
type Submitter interface {
	SubmitAsset(ctx context.Context, req platform.SubmitRequest, tags []string) (*library.Asset, error)
}

// Config holds drop-folder watcher settings.
type Config struct {
	Dir          string
	SettleDelay  time.Duration // wait after the last write before submitting
	SubmittedDir string        // relative to Dir, default "submitted"
}

// DefaultConfig returns sensible watcher defaults.
func DefaultConfig() Config {
	return Config{
		SettleDelay:  2 * time.Second,
		SubmittedDir: "submitted",
	}
}

var kindByExt = map[string]platform.Kind{
	".mp3":  platform.KindAudio,
	".ogg":  platform.KindAudio,
	".wav":  platform.KindAudio,
	".flac": platform.KindAudio,
	".png":  platform.KindImage,
	".jpg":  platform.KindImage,
	".jpeg": platform.KindImage,
	".gif":  platform.KindImage,
	".bmp":  platform.KindImage,
}

// Watcher monitors a drop folder and submits new files.
type Watcher struct {
	cfg       Config
	submitter Submitter
	logger    logging.Logger

	timers map[string]*time.Timer
}

// New creates a drop-folder watcher.
func New(cfg Config, submitter Submitter, logger logging.Logger) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("watcher: dir is required")
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = DefaultConfig().SettleDelay
	}
	if cfg.SubmittedDir == "" {
		cfg.SubmittedDir = DefaultConfig().SubmittedDir
	}
	return &Watcher{
		cfg:       cfg,
		submitter: submitter,
		logger:    logger,
		timers:    make(map[string]*time.Timer),
	}, nil
}

// Run watches the drop folder until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := os.MkdirAll(filepath.Join(w.cfg.Dir, w.cfg.SubmittedDir), 0o755); err != nil {
		return fmt.Errorf("prepare submitted dir: %w", err)
	}
	if err := fsw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}

	w.logger.Info("Watching drop folder", logging.Field{Key: "dir", Value: w.cfg.Dir})

	// Pick up files already present at startup.
	w.scanExisting(ctx)

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logging.Field{Key: "error", Value: err.Error()})

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) scanExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		w.logger.Warn("Initial scan failed", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		w.schedule(ctx, filepath.Join(w.cfg.Dir, e.Name()))
	}
}

// schedule debounces a path: the file is submitted once writes settle.
func (w *Watcher) schedule(ctx context.Context, path string) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return
	}
	if _, ok := kindByExt[strings.ToLower(filepath.Ext(base))]; !ok {
		return
	}

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.cfg.SettleDelay, func() {
		w.submitFile(ctx, path)
	})
}

func (w *Watcher) submitFile(ctx context.Context, path string) {
	base := filepath.Base(path)
	kind := kindByExt[strings.ToLower(filepath.Ext(base))]

	payload, err := os.ReadFile(path)
	if err != nil {
		w.logger.Warn("Failed to read dropped file",
			logging.Field{Key: "path", Value: path},
			logging.Field{Key: "error", Value: err.Error()})
		return
	}

	name := strings.TrimSuffix(base, filepath.Ext(base))
	asset, err := w.submitter.SubmitAsset(ctx, platform.SubmitRequest{
		Payload:  payload,
		Filename: base,
		Kind:     kind,
		Name:     name,
	}, nil)
	if err != nil {
		w.logger.Error("Submission from drop folder failed",
			logging.Field{Key: "file", Value: base},
			logging.Field{Key: "error", Value: err.Error()})
		return
	}

	dest := filepath.Join(w.cfg.Dir, w.cfg.SubmittedDir, base)
	if err := os.Rename(path, dest); err != nil {
		w.logger.Warn("Failed to move submitted file",
			logging.Field{Key: "path", Value: path},
			logging.Field{Key: "error", Value: err.Error()})
	}

	w.logger.Info("Submitted dropped file",
		logging.Field{Key: "file", Value: base},
		logging.Field{Key: "asset_id", Value: asset.ID})
}
