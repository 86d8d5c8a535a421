package model

import (
	"testing"

	"agtui/api"
	"agtui/storage"
)

func TestHistoryIDsStrictlyIncreasing(t *testing.T) {
	h := NewHistory()

	first := h.AddUser("one", nil)
	second := h.AddInfo("two")
	third := h.AddError("three")

	if first.ID != 1 || second.ID != 2 || third.ID != 3 {
		t.Errorf("ids = %d, %d, %d, want 1, 2, 3", first.ID, second.ID, third.ID)
	}
}

func TestHistoryFromSessionResumesIDSequence(t *testing.T) {
	session := &storage.Session{
		Messages: []storage.HistoryItem{
			{ID: 1, Type: storage.ItemTypeUser, Text: "a"},
			{ID: 5, Type: storage.ItemTypeAssistant, Text: "b"},
		},
	}

	h := HistoryFromSession(session)
	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}

	next := h.AddUser("c", nil)
	if next.ID != 6 {
		t.Errorf("resumed id = %d, want 6", next.ID)
	}
}

func TestAddUserRecordsTarget(t *testing.T) {
	h := NewHistory()
	target := &api.TargetInfo{Type: api.TargetAgent, ID: "researcher"}

	item := h.AddUser("question", target)
	if item.Metadata == nil || item.Metadata.Target == nil {
		t.Fatal("user item missing target metadata")
	}
	if item.Metadata.Target.ID != "researcher" {
		t.Errorf("target id = %q, want researcher", item.Metadata.Target.ID)
	}

	// The stored copy must not alias the caller's struct
	target.ID = "mutated"
	if got, _ := h.Last(); got.Metadata.Target.ID != "researcher" {
		t.Error("item metadata aliases the caller's target")
	}
}

func TestAppendDeltaCreatesPendingItemLazily(t *testing.T) {
	h := NewHistory()
	h.AddUser("question", nil)

	if h.HasPending() {
		t.Fatal("no pending item should exist before the first chunk")
	}

	first := h.AppendDelta("Hello")
	if !h.HasPending() {
		t.Fatal("pending item should exist after the first chunk")
	}
	if first.Type != storage.ItemTypeAssistant {
		t.Errorf("pending item type = %q, want assistant", first.Type)
	}

	h.AppendDelta(", world")
	last, _ := h.Last()
	if last.Text != "Hello, world" {
		t.Errorf("accumulated text = %q, want %q", last.Text, "Hello, world")
	}
	if last.ID != first.ID {
		t.Errorf("deltas created a new item: id %d != %d", last.ID, first.ID)
	}
}

func TestFinalizePending(t *testing.T) {
	h := NewHistory()

	if _, ok := h.FinalizePending(); ok {
		t.Error("finalize with nothing pending must report false")
	}

	h.AppendDelta("chunk")
	item, ok := h.FinalizePending()
	if !ok {
		t.Fatal("finalize with a pending item must report true")
	}
	if item.Text != "chunk" {
		t.Errorf("finalized text = %q, want chunk", item.Text)
	}
	if h.HasPending() {
		t.Error("pending flag must clear after finalize")
	}
}

func TestCancelPendingMarksTruncated(t *testing.T) {
	h := NewHistory()

	if _, ok := h.CancelPending(); ok {
		t.Error("cancel with nothing pending must report false")
	}

	h.AppendDelta("partial resp")
	item, ok := h.CancelPending()
	if !ok {
		t.Fatal("cancel with a pending item must report true")
	}
	if item.Metadata == nil || !item.Metadata.Cancelled {
		t.Error("cancelled item must carry the truncation marker")
	}
	if item.Text != "partial resp" {
		t.Errorf("partial text = %q, want preserved", item.Text)
	}
	if h.HasPending() {
		t.Error("pending flag must clear after cancel")
	}
}

func TestLastAssistant(t *testing.T) {
	h := NewHistory()

	if _, ok := h.LastAssistant(); ok {
		t.Error("empty history must report no assistant item")
	}

	h.AddUser("q1", nil)
	h.AppendDelta("a1")
	h.FinalizePending()
	h.AddUser("q2", nil)

	item, ok := h.LastAssistant()
	if !ok || item.Text != "a1" {
		t.Errorf("LastAssistant = %+v, %v, want a1", item, ok)
	}
}

func TestClearRestartsSequence(t *testing.T) {
	h := NewHistory()
	h.AddUser("a", nil)
	h.AppendDelta("b")

	h.Clear()
	if h.Len() != 0 {
		t.Errorf("Len after clear = %d, want 0", h.Len())
	}
	if h.HasPending() {
		t.Error("pending flag must clear")
	}

	item := h.AddUser("fresh", nil)
	if item.ID != 1 {
		t.Errorf("id after clear = %d, want 1", item.ID)
	}
}
