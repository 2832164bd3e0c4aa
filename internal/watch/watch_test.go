package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRunCoalescesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.html")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	calls := make(chan struct{}, 8)
	w := New(path, func() error {
		calls <- struct{}{}
		return nil
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	for _, body := range []string{"v2", "v3", "v4"} {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	select {
	case <-calls:
	case <-time.After(3 * time.Second):
		t.Fatalf("callback not invoked")
	}
	time.Sleep(200 * time.Millisecond)
	if extra := len(calls); extra != 0 {
		t.Fatalf("burst should fire once, got %d extra calls", extra)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunStopsWhenFileRemoved(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.html")
	if err := os.WriteFile(path, []byte("v1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	w := New(path, nil)

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()
	time.Sleep(100 * time.Millisecond)
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, ErrFileRemoved) {
			t.Fatalf("expected ErrFileRemoved, got %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("watcher did not stop")
	}
}
