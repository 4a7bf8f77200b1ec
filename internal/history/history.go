// Package history keeps the back/forward list of opened datasets.
package history

// History is a bounded back/forward list of dataset paths.
type History struct {
	stack    []string
	current  int
	capacity int
}

// New creates a History holding at most capacity entries.
// A capacity of 0 disables history; negative values are treated as 0.
func New(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}
	return &History{
		stack:    make([]string, 0, capacity),
		current:  -1,
		capacity: capacity,
	}
}

// Len returns the number of remembered datasets.
func (h *History) Len() int {
	return len(h.stack)
}

// Current returns the dataset at the current position.
func (h *History) Current() (string, bool) {
	if h.current < 0 {
		return "", false
	}
	return h.stack[h.current], true
}

// RecordOpen records that path was opened. Opening something new after going
// back drops the forward part of the history.
func (h *History) RecordOpen(path string) {
	if h.capacity == 0 || path == "" {
		return
	}
	if h.current >= 0 && h.current < len(h.stack)-1 {
		h.stack = h.stack[:h.current+1]
	}
	if h.current >= 0 && h.stack[h.current] == path {
		return
	}
	h.stack = append(h.stack, path)
	if len(h.stack) > h.capacity {
		h.stack = h.stack[len(h.stack)-h.capacity:]
	}
	h.current = len(h.stack) - 1
}

// CanBack reports whether Back would succeed.
func (h *History) CanBack() bool {
	return h.current > 0
}

// CanForward reports whether Forward would succeed.
func (h *History) CanForward() bool {
	return h.current >= 0 && h.current < len(h.stack)-1
}

// Back moves to the previously opened dataset.
func (h *History) Back() (string, bool) {
	if !h.CanBack() {
		return "", false
	}
	h.current--
	return h.stack[h.current], true
}

// Forward moves to the dataset opened after the current one.
func (h *History) Forward() (string, bool) {
	if !h.CanForward() {
		return "", false
	}
	h.current++
	return h.stack[h.current], true
}

// Remove drops every occurrence of path. When the current dataset is removed
// the position moves to the one opened before it.
func (h *History) Remove(path string) {
	if len(h.stack) == 0 {
		return
	}

	kept := make([]string, 0, len(h.stack))
	before := 0
	currentRemoved := false
	for i, p := range h.stack {
		if p != path {
			kept = append(kept, p)
			continue
		}
		switch {
		case i < h.current:
			before++
		case i == h.current:
			currentRemoved = true
		}
	}
	if len(kept) == len(h.stack) {
		return
	}
	h.stack = kept
	if len(kept) == 0 {
		h.current = -1
		return
	}

	idx := h.current - before
	if currentRemoved {
		idx--
	}
	h.current = max(0, min(idx, len(kept)-1))
}

// Clear forgets everything.
func (h *History) Clear() {
	h.stack = h.stack[:0]
	h.current = -1
}

// Recent returns up to n distinct datasets, most recently opened first.
// n <= 0 returns all of them.
func (h *History) Recent(n int) []string {
	var out []string
	seen := make(map[string]bool, len(h.stack))
	for i := len(h.stack) - 1; i >= 0; i-- {
		if n > 0 && len(out) == n {
			break
		}
		p := h.stack[i]
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
