// Package ram provides a flat byte-addressable block of RAM used for
// work RAM, high RAM, and video RAM.
package ram

// RAM is a fixed-size, zero-indexed block of bytes.
type RAM struct {
	data []byte
}

// New returns a new RAM block of the given size, zero-initialized.
func New(size int) *RAM {
	return &RAM{data: make([]byte, size)}
}

// Read returns the byte at the given offset.
func (r *RAM) Read(offset uint16) uint8 {
	return r.data[int(offset)%len(r.data)]
}

// Write stores the byte at the given offset.
func (r *RAM) Write(offset uint16, value uint8) {
	r.data[int(offset)%len(r.data)] = value
}

// Len returns the size of the RAM block.
func (r *RAM) Len() int {
	return len(r.data)
}

// Bytes exposes the underlying slice for bulk reads (save-state, renderer
// tile decode). Callers must not retain it across a Load.
func (r *RAM) Bytes() []byte {
	return r.data
}

// Load replaces the contents of the RAM block. The slice lengths must match.
func (r *RAM) Load(data []byte) {
	copy(r.data, data)
}
