package model

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestHierarchyOutOfOrder(t *testing.T) {
	root, mid, leaf := uuid.New(), uuid.New(), uuid.New()

	h, err := BuildHierarchy([]*Trend{
		{ID: leaf, ParentTrendID: ptr(mid)},
		{ID: mid, ParentTrendID: ptr(root)},
		{ID: root},
	})
	if err != nil {
		t.Fatalf("BuildHierarchy: %v", err)
	}
	if p, ok := h.Parent(leaf); !ok || p != mid {
		t.Fatalf("Parent(leaf) = %v, %v; want %v", p, ok, mid)
	}
	if got := h.Children(root); len(got) != 1 || got[0] != mid {
		t.Fatalf("Children(root) = %v", got)
	}
	anc := h.Ancestors(leaf)
	if len(anc) != 2 || anc[0] != mid || anc[1] != root {
		t.Fatalf("Ancestors(leaf) = %v", anc)
	}
	if roots := h.Roots(); len(roots) != 1 || roots[0] != root {
		t.Fatalf("Roots() = %v", roots)
	}
	if err := h.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestHierarchyRejectsCycle(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	h := NewHierarchy()
	for _, step := range []struct {
		id     uuid.UUID
		parent *uuid.UUID
	}{{a, nil}, {b, ptr(a)}, {c, ptr(b)}} {
		if err := h.Add(step.id, step.parent); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	if !h.WouldCycle(a, c) {
		t.Fatalf("a under c should be a cycle")
	}
	if !h.WouldCycle(a, a) {
		t.Fatalf("self parent should be a cycle")
	}
	if h.WouldCycle(c, a) {
		t.Fatalf("c under a is not a cycle")
	}

	err := h.SetParent(a, ptr(c))
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("SetParent = %v, want ErrCycle", err)
	}
	if _, ok := h.Parent(a); ok {
		t.Fatalf("rejected SetParent must not modify the hierarchy")
	}
}

func TestHierarchySetParentMovesChild(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	h := NewHierarchy()
	_ = h.Add(a, nil)
	_ = h.Add(b, nil)
	_ = h.Add(c, ptr(a))

	if err := h.SetParent(c, ptr(b)); err != nil {
		t.Fatalf("SetParent: %v", err)
	}
	if len(h.Children(a)) != 0 {
		t.Fatalf("a still has children: %v", h.Children(a))
	}
	if got := h.Children(b); len(got) != 1 || got[0] != c {
		t.Fatalf("Children(b) = %v", got)
	}
	if err := h.SetParent(c, nil); err != nil {
		t.Fatalf("SetParent(nil): %v", err)
	}
	if len(h.Roots()) != 3 {
		t.Fatalf("Roots() = %v", h.Roots())
	}
}

func TestHierarchyValidateDetectsStoredCycle(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	h, err := BuildHierarchy([]*Trend{
		{ID: a, ParentTrendID: ptr(b)},
		{ID: b, ParentTrendID: ptr(a)},
	})
	if err != nil {
		t.Fatalf("BuildHierarchy: %v", err)
	}
	if err := h.Validate(); !errors.Is(err, ErrCycle) {
		t.Fatalf("Validate = %v, want ErrCycle", err)
	}
	if n := len(h.Ancestors(a)); n > h.Len() {
		t.Fatalf("Ancestors did not terminate on cycle: %d", n)
	}
}

func TestHierarchyDuplicateAdd(t *testing.T) {
	id := uuid.New()
	h := NewHierarchy()
	if err := h.Add(id, nil); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := h.Add(id, nil); err == nil {
		t.Fatalf("duplicate Add should fail")
	}
}
