package sync

import (
	"fmt"
	"testing"
)

func TestRegistryPending(t *testing.T) {
	r := NewRegistry()

	if !r.IsPending("a") {
		t.Error("fresh id should be pending")
	}

	r.MarkProcessed("a")
	if r.IsPending("a") {
		t.Error("processed id should not be pending")
	}

	r.MarkFailed("b")
	if r.IsPending("b") {
		t.Error("failed id should not be pending")
	}
}

func TestRegistryDisjointSets(t *testing.T) {
	r := NewRegistry()

	r.MarkFailed("a")
	r.MarkProcessed("a")

	processed, failed := r.Counts()
	if processed != 1 || failed != 0 {
		t.Errorf("expected 1 processed / 0 failed, got %d / %d", processed, failed)
	}

	r.MarkFailed("a")
	processed, failed = r.Counts()
	if processed != 0 || failed != 1 {
		t.Errorf("expected 0 processed / 1 failed, got %d / %d", processed, failed)
	}
}

func TestRegistryMarkIdempotent(t *testing.T) {
	r := NewRegistry()

	r.MarkProcessed("a")
	r.MarkProcessed("a")
	r.MarkFailed("b")
	r.MarkFailed("b")

	processed, failed := r.Counts()
	if processed != 1 || failed != 1 {
		t.Errorf("expected 1 processed / 1 failed, got %d / %d", processed, failed)
	}
}

func TestRegistryRetryFailed(t *testing.T) {
	r := NewRegistry()

	r.MarkProcessed("keep")
	r.MarkFailed("x")
	r.MarkFailed("y")

	cleared := r.RetryFailed()
	if len(cleared) != 2 {
		t.Fatalf("expected 2 cleared ids, got %d", len(cleared))
	}
	if cleared[0] != "x" || cleared[1] != "y" {
		t.Errorf("expected [x y] in insertion order, got %v", cleared)
	}

	processed, failed := r.Counts()
	if processed != 1 {
		t.Errorf("retry must not touch processed set, got %d", processed)
	}
	if failed != 0 {
		t.Errorf("failed set should be empty after retry, got %d", failed)
	}

	if !r.IsPending("x") || !r.IsPending("y") {
		t.Error("cleared ids should be pending again")
	}
}

func TestRegistryEvictionOldestFirst(t *testing.T) {
	r := NewRegistryWithCapacity(3, 2)

	for i := 0; i < 4; i++ {
		r.MarkProcessed(fmt.Sprintf("p%d", i))
	}

	processed, _ := r.Counts()
	if processed != 3 {
		t.Errorf("expected processed capped at 3, got %d", processed)
	}
	if !r.IsPending("p0") {
		t.Error("oldest processed id should have been evicted")
	}
	if r.IsPending("p3") {
		t.Error("newest processed id should still be marked")
	}

	r.MarkFailed("f0")
	r.MarkFailed("f1")
	r.MarkFailed("f2")

	_, failed := r.Counts()
	if failed != 2 {
		t.Errorf("expected failed capped at 2, got %d", failed)
	}
	if !r.IsPending("f0") {
		t.Error("oldest failed id should have been evicted")
	}
}
