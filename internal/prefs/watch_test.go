package prefs

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReportsChanges(t *testing.T) {
	s, _ := newTestStore(t)

	changes := make(chan *Document, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	ready := make(chan struct{})
	go func() {
		close(ready)
		done <- s.watch(ctx, 20*time.Millisecond, func(doc *Document) { changes <- doc })
	}()
	<-ready

	// Give the watcher time to register the directory.
	deadline := time.Now().Add(2 * time.Second)
	var got *Document
	for got == nil && time.Now().Before(deadline) {
		if err := s.Save(NewDocument("Alice", "Main")); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		select {
		case got = <-changes:
		case <-time.After(200 * time.Millisecond):
		}
	}
	if got == nil || got.PlayerName != "Alice" {
		t.Fatalf("expected change for Alice, got %+v", got)
	}

	// Drain anything queued by the retries before checking removal.
	time.Sleep(100 * time.Millisecond)
	for len(changes) > 0 {
		<-changes
	}

	if _, err := s.Reset(); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	select {
	case doc := <-changes:
		if doc != nil {
			t.Errorf("removal should report nil, got %+v", doc)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("removal was not reported")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watch() returned %v after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watch() did not stop after cancel")
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	s, _ := newTestStore(t)

	changes := make(chan *Document, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = s.watch(ctx, 10*time.Millisecond, func(doc *Document) { changes <- doc })
	}()
	time.Sleep(100 * time.Millisecond)

	writeLegacy(t, filepath.Join(s.Dir(), "sub"), `{}`)

	select {
	case doc := <-changes:
		t.Errorf("unexpected change %+v", doc)
	case <-time.After(200 * time.Millisecond):
	}
}
