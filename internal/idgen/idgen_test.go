package idgen

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGeneratorUnique(t *testing.T) {
	gen := NewUUIDGenerator()
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := gen.NewID()
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("not a uuid: %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestSequenceGenerator(t *testing.T) {
	gen := NewSequenceGenerator("q")
	if got := gen.NewID(); got != "q-1" {
		t.Fatalf("expected q-1, got %s", got)
	}
	if got := gen.NewID(); got != "q-2" {
		t.Fatalf("expected q-2, got %s", got)
	}
}
