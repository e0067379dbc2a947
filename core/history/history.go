// Package history holds the interpreter's bounded command history.
package history

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// DefaultCapacity is the number of lines retained when none is configured.
const DefaultCapacity = 10

// History is a fixed capacity FIFO of input lines. Once full, appending a
// line evicts the oldest one. The zero value is not usable; use New.
type History struct {
	capacity int
	entries  []string
}

// New creates an empty history retaining at most capacity lines.
func New(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &History{
		capacity: capacity,
		entries:  make([]string, 0, capacity),
	}
}

// Cap returns the maximum number of retained lines.
func (h *History) Cap() int {
	return h.capacity
}

// Len returns the number of retained lines.
func (h *History) Len() int {
	return len(h.entries)
}

// Append records a line, dropping a single trailing newline.
func (h *History) Append(line string) {
	line = strings.TrimSuffix(line, "\n")
	if len(h.entries) == h.capacity {
		copy(h.entries, h.entries[1:])
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, line)
}

// Entries returns a copy of the retained lines, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clear removes every retained line.
func (h *History) Clear() {
	h.entries = h.entries[:0]
}

// WriteTo prints each entry as "[N] line" with a 1-based index.
func (h *History) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, line := range h.entries {
		n, err := fmt.Fprintf(w, "[%d] %s\n", i+1, line)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// MarshalJSON encodes the retained lines as a JSON array, oldest first.
func (h *History) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.entries)
}

// Restore creates a history of the given capacity from a JSON array produced
// by MarshalJSON. Lines beyond the capacity are evicted oldest first. A
// capacity below 1 keeps every decoded line.
func Restore(capacity int, data []byte) (*History, error) {
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	if capacity < 1 {
		capacity = len(lines)
	}
	h := New(capacity)
	for _, line := range lines {
		h.Append(line)
	}
	return h, nil
}
