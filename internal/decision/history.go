package decision

import "sync"

// History 追加写的内存决策日志。容量有上限，最旧的先被淘汰；
// 持久记录交给审计库。
type History struct {
	mu      sync.Mutex
	limit   int
	entries []Decision
}

const defaultHistoryLimit = 1000

// NewHistory builds a bounded history; limit <= 0 uses the default cap.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &History{limit: limit}
}

// Append records a decision, evicting the oldest entry past the cap.
func (h *History) Append(d Decision) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, d)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
}

// Recent returns up to n decisions, newest first.
func (h *History) Recent(n int) []Decision {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]Decision, 0, n)
	for i := len(h.entries) - 1; i >= len(h.entries)-n; i-- {
		out = append(out, h.entries[i])
	}
	return out
}

// Get looks up a decision by id.
func (h *History) Get(id string) (Decision, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := len(h.entries) - 1; i >= 0; i-- {
		if h.entries[i].ID == id {
			return h.entries[i], true
		}
	}
	return Decision{}, false
}

// Len returns the number of retained decisions.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
