package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rinwao/hakobu/internal/library"
	"github.com/rinwao/hakobu/internal/platform"
	"github.com/rinwao/hakobu/internal/testutil"
	"github.com/rinwao/hakobu/internal/watcher"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	requests []platform.SubmitRequest
}

func (f *fakeSubmitter) SubmitAsset(_ context.Context, req platform.SubmitRequest, _ []string) (*library.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return &library.Asset{ID: "w-1", Kind: req.Kind, Status: platform.StatusPending}, nil
}

func (f *fakeSubmitter) submitted() []platform.SubmitRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.SubmitRequest(nil), f.requests...)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestWatcher_SubmitsDroppedFile(t *testing.T) {
	dir := t.TempDir()
	sub := &fakeSubmitter{}

	w, err := watcher.New(watcher.Config{Dir: dir, SettleDelay: 50 * time.Millisecond}, sub, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// Give the watcher a moment to install its fsnotify watch.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(path, []byte("mp3 bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitFor(t, 3*time.Second, func() bool { return len(sub.submitted()) == 1 })

	req := sub.submitted()[0]
	if req.Kind != platform.KindAudio || req.Filename != "song.mp3" || req.Name != "song" {
		t.Errorf("request = %+v", req)
	}
	if string(req.Payload) != "mp3 bytes" {
		t.Errorf("payload = %q", req.Payload)
	}

	moved := filepath.Join(dir, "submitted", "song.mp3")
	waitFor(t, time.Second, func() bool {
		_, err := os.Stat(moved)
		return err == nil
	})
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("original file still present: %v", err)
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	sub := &fakeSubmitter{}

	w, err := watcher.New(watcher.Config{Dir: dir, SettleDelay: 30 * time.Millisecond}, sub, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	for _, name := range []string{"notes.txt", ".hidden.png", "~lock.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	time.Sleep(300 * time.Millisecond)
	if got := sub.submitted(); len(got) != 0 {
		t.Errorf("unexpected submissions: %+v", got)
	}
}

func TestWatcher_PicksUpExistingFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "old.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	sub := &fakeSubmitter{}
	w, err := watcher.New(watcher.Config{Dir: dir, SettleDelay: 30 * time.Millisecond}, sub, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	waitFor(t, 3*time.Second, func() bool { return len(sub.submitted()) == 1 })
	if req := sub.submitted()[0]; req.Kind != platform.KindImage {
		t.Errorf("kind = %v, want image", req.Kind)
	}
}
