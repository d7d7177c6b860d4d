// Package scheduler periodically re-judges pending assets and surfaces
// status transitions.
package scheduler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/rinwao/hakobu/internal/interfaces"
	"github.com/rinwao/hakobu/internal/library"
	"github.com/rinwao/hakobu/internal/logging"
	"github.com/rinwao/hakobu/internal/platform"
)

// StatusEvent describes one observed status transition.
type StatusEvent struct {
	AssetID       string          `json:"asset_id"`
	Old           platform.Status `json:"old"`
	New           platform.Status `json:"new"`
	At            time.Time       `json:"at"`
	ChangeSummary string          `json:"change_summary,omitempty"`
}

// Config tunes the refresh loop.
type Config struct {
	// Interval between cycles.
	Interval time.Duration

	// MaxSummaryLen truncates the listing-page change summary attached to
	// events. 0 disables summaries.
	MaxSummaryLen int
}

func DefaultConfig() Config {
	return Config{
		Interval:      10 * time.Second,
		MaxSummaryLen: 280,
	}
}

// Scheduler re-runs evidence collection + resolution for all records still
// pending, on a fixed interval. Cycles never overlap: a tick that fires while
// a cycle is in flight is skipped, and records within a cycle are processed
// sequentially to bound the outbound request rate.
type Scheduler struct {
	cfg      Config
	store    interfaces.AssetStore
	source   interfaces.EvidenceSource
	session  *platform.Session
	onChange func(changed []*library.Asset)
	notify   func(ev StatusEvent)
	logger   logging.Logger

	cycleMu sync.Mutex // held for the duration of one cycle

	mu       sync.Mutex
	lastPage map[string]string // asset id -> last seen listing-page text
	stop     chan struct{}
	done     chan struct{}
	started  bool
}

// New creates a Scheduler. onChange receives the changed subset after each
// cycle that produced transitions; notify receives one event per transition.
// Either may be nil.
func New(cfg Config, store interfaces.AssetStore, source interfaces.EvidenceSource,
	session *platform.Session, onChange func(changed []*library.Asset),
	notify func(ev StatusEvent), logger logging.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Scheduler{
		cfg:      cfg,
		store:    store,
		source:   source,
		session:  session,
		onChange: onChange,
		notify:   notify,
		logger:   logger.With(logging.Field{Key: "component", Value: "scheduler"}),
		lastPage: make(map[string]string),
	}
}

// Start launches the refresh loop. Calling Start twice is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	<-done
	// Wait out a cycle still holding the lock.
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()
}

// tick runs one cycle unless the previous one is still in flight.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.cycleMu.TryLock() {
		s.logger.Debug("previous refresh cycle still running, skipping tick")
		return
	}
	defer s.cycleMu.Unlock()

	s.RunCycle(ctx)
}

// RunCycle performs one sequential pass over pending records. Exported so a
// user-initiated "refresh now" can reuse the exact loop.
func (s *Scheduler) RunCycle(ctx context.Context) {
	pending, err := s.store.List(ctx, platform.StatusPending, 0)
	if err != nil {
		s.logger.Error("listing pending assets", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	if len(pending) == 0 {
		return
	}

	changed := make([]*library.Asset, 0)
	for _, rec := range pending {
		if ctx.Err() != nil {
			return
		}

		bundle := s.source.Collect(ctx, rec.ID, rec.Kind, s.session)
		resolved := platform.Resolve(bundle)

		summary := s.pageChangeSummary(rec.ID, bundle.PageText)

		if resolved == rec.Status {
			if err := s.store.Touch(ctx, rec.ID); err != nil {
				s.logger.Warn("touch asset", logging.Field{Key: "asset_id", Value: rec.ID},
					logging.Field{Key: "error", Value: err.Error()})
			}
			continue
		}

		old := rec.Status
		if err := s.store.UpdateStatus(ctx, rec.ID, resolved); err != nil {
			s.logger.Error("updating asset status",
				logging.Field{Key: "asset_id", Value: rec.ID},
				logging.Field{Key: "error", Value: err.Error()})
			continue
		}
		rec.Status = resolved
		changed = append(changed, rec)

		s.logger.Info("asset status changed",
			logging.Field{Key: "asset_id", Value: rec.ID},
			logging.Field{Key: "old", Value: string(old)},
			logging.Field{Key: "new", Value: string(resolved)})

		if s.notify != nil {
			s.notify(StatusEvent{
				AssetID:       rec.ID,
				Old:           old,
				New:           resolved,
				At:            time.Now().UTC(),
				ChangeSummary: summary,
			})
		}
	}

	if len(changed) > 0 && s.onChange != nil {
		s.onChange(changed)
	}
}

// pageChangeSummary diffs the listing-page text against the previous
// observation and returns a compact added/removed summary for operator
// forensics. The text cache is in-memory only; evidence is never persisted.
func (s *Scheduler) pageChangeSummary(assetID, text string) string {
	if s.cfg.MaxSummaryLen <= 0 || text == "" {
		return ""
	}

	s.mu.Lock()
	prev := s.lastPage[assetID]
	s.lastPage[assetID] = text
	s.mu.Unlock()

	if prev == "" || prev == text {
		return ""
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(prev, text, true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for _, d := range diffs {
		frag := strings.TrimSpace(d.Text)
		if frag == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			sb.WriteString("+" + frag + " ")
		case diffmatchpatch.DiffDelete:
			sb.WriteString("-" + frag + " ")
		}
	}

	out := strings.TrimSpace(sb.String())
	if len(out) > s.cfg.MaxSummaryLen {
		out = out[:s.cfg.MaxSummaryLen]
	}
	return out
}

// Forget drops the cached page text for an asset (after withdrawal).
func (s *Scheduler) Forget(assetID string) {
	s.mu.Lock()
	delete(s.lastPage, assetID)
	s.mu.Unlock()
}
