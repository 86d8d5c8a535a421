package model

import (
	"time"

	"agtui/api"
	"agtui/storage"
)

// HistoryModel is the in-memory ordered log of the current session's
// messages. Items get strictly increasing ids starting at 1 and are
// append-only; the single exception is the pending assistant item, which
// accumulates streamed deltas until it is finalized.
type HistoryModel struct {
	items     []storage.HistoryItem
	nextID    int64
	pendingID int64 // 0 when no assistant item is pending
}

func NewHistory() *HistoryModel {
	return &HistoryModel{nextID: 1}
}

// HistoryFromSession rebuilds the model from a loaded session, resuming the
// id sequence after the highest persisted id.
func HistoryFromSession(session *storage.Session) *HistoryModel {
	h := &HistoryModel{nextID: 1}
	for _, item := range session.Messages {
		h.items = append(h.items, item)
		if item.ID >= h.nextID {
			h.nextID = item.ID + 1
		}
	}
	return h
}

// Items returns the backing slice. Callers must not mutate it.
func (h *HistoryModel) Items() []storage.HistoryItem {
	return h.items
}

func (h *HistoryModel) Len() int {
	return len(h.items)
}

func (h *HistoryModel) append(itemType, text string, meta *storage.ItemMetadata) storage.HistoryItem {
	item := storage.HistoryItem{
		ID:        h.nextID,
		Type:      itemType,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
		Metadata:  meta,
	}
	h.nextID++
	h.items = append(h.items, item)
	return item
}

// AddUser appends a user message, recording the target it was sent to.
func (h *HistoryModel) AddUser(text string, target *api.TargetInfo) storage.HistoryItem {
	var meta *storage.ItemMetadata
	if target != nil {
		t := *target
		meta = &storage.ItemMetadata{Target: &t}
	}
	return h.append(storage.ItemTypeUser, text, meta)
}

// AddInfo appends an informational entry (slash command output, notices).
func (h *HistoryModel) AddInfo(text string) storage.HistoryItem {
	return h.append(storage.ItemTypeInfo, text, nil)
}

// AddError appends an error entry. Errors are readable chat-log text, never
// crashes.
func (h *HistoryModel) AddError(text string) storage.HistoryItem {
	return h.append(storage.ItemTypeError, text, nil)
}

// AppendDelta extends the pending assistant item with a streamed chunk,
// creating the item on the first chunk.
func (h *HistoryModel) AppendDelta(chunk string) storage.HistoryItem {
	if h.pendingID == 0 {
		item := h.append(storage.ItemTypeAssistant, chunk, nil)
		h.pendingID = item.ID
		return item
	}

	idx := len(h.items) - 1
	h.items[idx].Text += chunk
	return h.items[idx]
}

// HasPending reports whether an assistant item is still receiving deltas.
func (h *HistoryModel) HasPending() bool {
	return h.pendingID != 0
}

// FinalizePending seals the pending assistant item. Returns false when no
// item was pending (the stream ended before any content arrived).
func (h *HistoryModel) FinalizePending() (storage.HistoryItem, bool) {
	if h.pendingID == 0 {
		return storage.HistoryItem{}, false
	}
	idx := len(h.items) - 1
	h.pendingID = 0
	return h.items[idx], true
}

// CancelPending seals the pending assistant item and marks it truncated.
// Returns false when nothing was pending.
func (h *HistoryModel) CancelPending() (storage.HistoryItem, bool) {
	if h.pendingID == 0 {
		return storage.HistoryItem{}, false
	}
	idx := len(h.items) - 1
	if h.items[idx].Metadata == nil {
		h.items[idx].Metadata = &storage.ItemMetadata{}
	}
	h.items[idx].Metadata.Cancelled = true
	h.pendingID = 0
	return h.items[idx], true
}

// Last returns the most recent item.
func (h *HistoryModel) Last() (storage.HistoryItem, bool) {
	if len(h.items) == 0 {
		return storage.HistoryItem{}, false
	}
	return h.items[len(h.items)-1], true
}

// LastAssistant returns the most recent assistant item, for clipboard copy.
func (h *HistoryModel) LastAssistant() (storage.HistoryItem, bool) {
	for i := len(h.items) - 1; i >= 0; i-- {
		if h.items[i].Type == storage.ItemTypeAssistant {
			return h.items[i], true
		}
	}
	return storage.HistoryItem{}, false
}

// Clear drops all items and restarts the id sequence.
func (h *HistoryModel) Clear() {
	h.items = nil
	h.nextID = 1
	h.pendingID = 0
}
