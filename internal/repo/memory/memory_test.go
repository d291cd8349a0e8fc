package memory

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_LoadSave(t *testing.T) {
	ctx := context.Background()
	s := New(3)

	v, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v != 3 {
		t.Fatalf("want 3, got %d", v)
	}

	if err := s.Save(ctx, 4); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if v, _ := s.Load(ctx); v != 4 {
		t.Fatalf("want 4 after save, got %d", v)
	}
	if s.Saves() != 1 {
		t.Fatalf("want 1 save, got %d", s.Saves())
	}
	if h := s.History(); len(h) != 1 || h[0] != 4 {
		t.Fatalf("unexpected history: %v", h)
	}
}

func TestMemoryStore_FailSavesKeepsValue(t *testing.T) {
	ctx := context.Background()
	s := New(1)
	s.FailSaves(errors.New("disk full"))

	if err := s.Save(ctx, 2); err == nil {
		t.Fatalf("expected save error")
	}
	if v, _ := s.Load(ctx); v != 1 {
		t.Fatalf("value changed on failed save: %d", v)
	}
	if s.Saves() != 1 || len(s.History()) != 0 {
		t.Fatalf("saves=%d history=%v", s.Saves(), s.History())
	}
}
