package state

import (
	"errors"
	"testing"
)

func TestEnsureStateVersion(t *testing.T) {
	mgr := newTestManager(t)
	if err := EnsureStateVersion(mgr.Trie(), false); !errors.Is(err, ErrStateVersionMismatch) {
		t.Fatalf("fresh state should mismatch, got %v", err)
	}
	if err := EnsureStateVersion(mgr.Trie(), true); err != nil {
		t.Fatalf("migration override: %v", err)
	}
	if err := mgr.SetStateVersion(StateVersion); err != nil {
		t.Fatalf("set version: %v", err)
	}
	if err := EnsureStateVersion(mgr.Trie(), false); err != nil {
		t.Fatalf("matching version: %v", err)
	}
}
