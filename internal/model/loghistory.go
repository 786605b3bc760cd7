package model

const defaultLogCap = 500

// LogHistory is a fixed-size ring buffer of rendered log lines feeding the
// TUI log pane. When the buffer is full, new pushes overwrite the oldest
// entry.
type LogHistory struct {
	buf  []string
	head int // index of the next write position
	size int // number of valid entries
}

// NewLogHistory creates a LogHistory with the given capacity.
// If capacity <= 0, the defaultLogCap (500) is used.
func NewLogHistory(capacity int) *LogHistory {
	if capacity <= 0 {
		capacity = defaultLogCap
	}
	return &LogHistory{
		buf: make([]string, capacity),
	}
}

// Push appends a line, overwriting the oldest if full.
func (h *LogHistory) Push(line string) {
	h.buf[h.head] = line
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
}

// Len returns the number of valid entries.
func (h *LogHistory) Len() int {
	return h.size
}

// Clear resets the history to empty.
func (h *LogHistory) Clear() {
	h.head = 0
	h.size = 0
}

// Lines returns the stored lines in chronological order (oldest first).
func (h *LogHistory) Lines() []string {
	out := make([]string, h.size)
	// oldest entry sits at (head - size + cap) % cap
	start := (h.head - h.size + len(h.buf)) % len(h.buf)
	for i := 0; i < h.size; i++ {
		out[i] = h.buf[(start+i)%len(h.buf)]
	}
	return out
}

// Tail returns the newest n lines in chronological order.
func (h *LogHistory) Tail(n int) []string {
	lines := h.Lines()
	if n >= len(lines) {
		return lines
	}
	return lines[len(lines)-n:]
}
