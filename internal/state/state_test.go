package state

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSetStackStatusUpserts(t *testing.T) {
	store := openTestStore(t)

	if err := store.SetStackStatus("minitweet", "minitweet-web:latest", "running"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetStackStatus("minitweet", "minitweet-web:latest", "stopped"); err != nil {
		t.Fatalf("update: %v", err)
	}

	stack, err := store.CurrentStack("minitweet")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if stack == nil {
		t.Fatal("stack record missing")
	}
	if stack.Status != "stopped" {
		t.Errorf("status = %q, want stopped", stack.Status)
	}
}

func TestCurrentStackMissing(t *testing.T) {
	store := openTestStore(t)

	stack, err := store.CurrentStack("nope")
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if stack != nil {
		t.Errorf("expected nil for unknown stack, got %+v", stack)
	}
}

func TestRecentEventsNewestFirst(t *testing.T) {
	store := openTestStore(t)

	for _, action := range []string{"setup", "start", "stop"} {
		if err := store.RecordEvent(action, ""); err != nil {
			t.Fatalf("record %s: %v", action, err)
		}
	}

	events, err := store.RecentEvents(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Action != "stop" || events[1].Action != "start" {
		t.Errorf("unexpected order: %v, %v", events[0].Action, events[1].Action)
	}
}
