package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rinwao/hakobu/internal/interfaces"
	"github.com/rinwao/hakobu/internal/library"
	"github.com/rinwao/hakobu/internal/logging"
	"github.com/rinwao/hakobu/internal/platform"
	"github.com/rinwao/hakobu/internal/scheduler"
	"github.com/rinwao/hakobu/internal/webclient"
)

// Orchestrator ties together session, engine components, the record store and
// the refresh scheduler, and exposes the operations the surrounding
// application calls.
type Orchestrator struct {
	cfg     *Config
	logger  logging.Logger
	session *platform.Session

	store      interfaces.AssetStore
	collector  interfaces.EvidenceSource
	submitter  interfaces.Submitter
	withdrawer interfaces.Withdrawer
	sched      *scheduler.Scheduler

	wc     webclient.WebClient
	pageWC webclient.WebClient

	subsMu sync.Mutex
	subs   map[string]chan scheduler.StatusEvent
}

// NewOrchestrator builds the full component graph from cfg.
func NewOrchestrator(cfg *Config, logger logging.Logger) (*Orchestrator, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	wc, err := webclient.NewWebClient(cfg.WebClientCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("new webclient: %w", err)
	}

	var pageWC webclient.WebClient
	if cfg.PageWebClientCfg != nil {
		pageWC, err = webclient.NewWebClient(*cfg.PageWebClientCfg, logger)
		if err != nil {
			_ = wc.Close()
			return nil, fmt.Errorf("new page webclient: %w", err)
		}
	}

	store, err := library.Open(cfg.StorePath, logger)
	if err != nil {
		_ = wc.Close()
		if pageWC != nil {
			_ = pageWC.Close()
		}
		return nil, fmt.Errorf("open asset store: %w", err)
	}

	session := platform.NewSession(cfg.PlatformCfg, cfg.Credential, cfg.GroupID, wc, logger)
	collector := platform.NewCollector(cfg.PlatformCfg, wc, pageWC, logger)

	o := &Orchestrator{
		cfg:        cfg,
		logger:     logger,
		session:    session,
		store:      store,
		collector:  collector,
		submitter:  platform.NewSubmitter(cfg.PlatformCfg, session, wc, logger),
		withdrawer: platform.NewWithdrawer(cfg.PlatformCfg, session, wc, logger),
		wc:         wc,
		pageWC:     pageWC,
		subs:       make(map[string]chan scheduler.StatusEvent),
	}

	o.sched = scheduler.New(cfg.SchedulerCfg, store, collector, session,
		nil, o.publish, logger)

	return o, nil
}

// StartScheduler launches the background refresh loop.
func (o *Orchestrator) StartScheduler(ctx context.Context) {
	o.sched.Start(ctx)
}

// SubmitAsset submits the payload and records the assigned identifier with
// status pending. Submission failures are returned untouched so the caller
// can surface the most specific message.
func (o *Orchestrator) SubmitAsset(ctx context.Context, req platform.SubmitRequest, tags []string) (*library.Asset, error) {
	assetID, err := o.submitter.Submit(ctx, req)
	if err != nil {
		return nil, err
	}

	rec := &library.Asset{
		ID:          assetID,
		Kind:        req.Kind,
		Status:      platform.StatusPending,
		DisplayName: req.Name,
		Description: req.Description,
		Tags:        tags,
		GroupID:     o.session.GroupID(),
		SubmittedAt: time.Now().UTC(),
	}
	if err := o.store.Put(ctx, rec); err != nil {
		// The remote submission succeeded; losing the record would orphan
		// the asset, so this is surfaced loudly.
		o.logger.Error("submitted asset could not be recorded",
			logging.Field{Key: "asset_id", Value: assetID},
			logging.Field{Key: "error", Value: err.Error()})
		return nil, fmt.Errorf("asset %s submitted but not recorded: %w", assetID, err)
	}
	return rec, nil
}

// CheckStatus runs one immediate evidence collection + resolution for the
// asset and persists a transition if one occurred. Failures degrade to the
// record's current status rather than erroring.
func (o *Orchestrator) CheckStatus(ctx context.Context, assetID string) (platform.Status, error) {
	rec, err := o.store.Get(ctx, assetID)
	if err != nil {
		return "", err
	}

	bundle := o.collector.Collect(ctx, rec.ID, rec.Kind, o.session)
	resolved := platform.Resolve(bundle)

	if resolved != rec.Status {
		old := rec.Status
		if err := o.store.UpdateStatus(ctx, rec.ID, resolved); err != nil {
			o.logger.Warn("persisting status change",
				logging.Field{Key: "asset_id", Value: rec.ID},
				logging.Field{Key: "error", Value: err.Error()})
			return rec.Status, nil
		}
		o.publish(scheduler.StatusEvent{
			AssetID: rec.ID,
			Old:     old,
			New:     resolved,
			At:      time.Now().UTC(),
		})
	} else if err := o.store.Touch(ctx, rec.ID); err != nil {
		o.logger.Warn("touching asset record",
			logging.Field{Key: "asset_id", Value: rec.ID},
			logging.Field{Key: "error", Value: err.Error()})
	}

	return resolved, nil
}

// WithdrawAsset removes the asset from the platform and, on success, deletes
// the local record.
func (o *Orchestrator) WithdrawAsset(ctx context.Context, assetID string) error {
	if _, err := o.store.Get(ctx, assetID); err != nil {
		return err
	}

	if err := o.withdrawer.Withdraw(ctx, assetID); err != nil {
		var werr *platform.WithdrawalError
		if errors.As(err, &werr) && werr.Kind == platform.FailureNotFound {
			// The platform no longer knows the asset. The record is stale
			// either way, so clean it up and let the caller see the reason.
			o.sched.Forget(assetID)
			_ = o.store.Delete(ctx, assetID)
		}
		return err
	}

	o.sched.Forget(assetID)
	if err := o.store.Delete(ctx, assetID); err != nil && !errors.Is(err, library.ErrAssetNotFound) {
		return fmt.Errorf("asset %s withdrawn but record not removed: %w", assetID, err)
	}
	return nil
}

// GetAsset returns one record.
func (o *Orchestrator) GetAsset(ctx context.Context, assetID string) (*library.Asset, error) {
	return o.store.Get(ctx, assetID)
}

// ListAssets returns records, optionally filtered by status.
func (o *Orchestrator) ListAssets(ctx context.Context, status platform.Status, limit int) ([]*library.Asset, error) {
	return o.store.List(ctx, status, limit)
}

// Subscribe registers a status-change listener. The returned channel is
// buffered; events are dropped, not blocked on, when a subscriber lags.
// Call the returned cancel func to unsubscribe.
func (o *Orchestrator) Subscribe() (<-chan scheduler.StatusEvent, func()) {
	id := uuid.New().String()
	ch := make(chan scheduler.StatusEvent, 16)

	o.subsMu.Lock()
	o.subs[id] = ch
	o.subsMu.Unlock()

	cancel := func() {
		o.subsMu.Lock()
		if c, ok := o.subs[id]; ok {
			delete(o.subs, id)
			close(c)
		}
		o.subsMu.Unlock()
	}
	return ch, cancel
}

// publish fans an event out to all subscribers. Non-blocking send; drop if a
// buffer is full.
func (o *Orchestrator) publish(ev scheduler.StatusEvent) {
	o.subsMu.Lock()
	defer o.subsMu.Unlock()
	for _, ch := range o.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close stops the scheduler and releases resources.
func (o *Orchestrator) Close() error {
	o.sched.Stop()

	o.subsMu.Lock()
	for id, ch := range o.subs {
		delete(o.subs, id)
		close(ch)
	}
	o.subsMu.Unlock()

	var firstErr error
	if err := o.session.Close(); err != nil {
		firstErr = err
	}
	if err := o.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := o.wc.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if o.pageWC != nil {
		if err := o.pageWC.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
