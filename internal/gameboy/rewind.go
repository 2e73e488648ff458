package gameboy

import "github.com/dmgo-project/dmgo/internal/state"

// rewindBuffer is a fixed-depth ring of recent save-state blobs. Depth
// and cadence are a frontend concern (§4.10); the façade only supplies
// the push/pop primitives on top of the existing save/load plumbing.
type rewindBuffer struct {
	entries []state.Blob
	max     int
}

func newRewindBuffer(depth int) rewindBuffer {
	if depth < 0 {
		depth = 0
	}
	return rewindBuffer{max: depth}
}

func (r *rewindBuffer) depth() int { return r.max }

func (r *rewindBuffer) push(b state.Blob) {
	if r.max == 0 {
		return
	}
	r.entries = append(r.entries, b)
	if len(r.entries) > r.max {
		r.entries = r.entries[len(r.entries)-r.max:]
	}
}

// pop removes and returns the newest entry.
func (r *rewindBuffer) pop() (state.Blob, bool) {
	if len(r.entries) == 0 {
		return state.Blob{}, false
	}
	last := len(r.entries) - 1
	b := r.entries[last]
	r.entries = r.entries[:last]
	return b, true
}
