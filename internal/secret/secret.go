// Package secret provides scoped ownership of sensitive byte buffers.
// Every passphrase, derived key, and plaintext copy in this codebase is
// supposed to pass through a Buffer, or at minimum through Wipe, before it is
// released.
package secret

import "sync"

// Wipe overwrites a byte slice in memory with zeros.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Buffer owns a secret byte slice and guarantees it is zeroed when destroyed.
// The backing memory is locked against swapping on a best-effort basis; a
// failed lock is not an error on targets without an MMU or the privilege.
type Buffer struct {
	mu        sync.Mutex
	b         []byte
	locked    bool
	destroyed bool
}

// New allocates a zeroed Buffer of n bytes.
func New(n int) *Buffer {
	return From(make([]byte, n))
}

// From takes ownership of b. The caller must not retain or reuse b.
func From(b []byte) *Buffer {
	s := &Buffer{b: b}
	if len(b) > 0 && lockMemory(b) == nil {
		s.locked = true
	}
	return s
}

// FromString copies s into a fresh Buffer. Go strings are immutable, so the
// original backing array cannot be wiped here; callers that can should pass
// secrets around as byte slices instead.
func FromString(s string) *Buffer {
	b := make([]byte, len(s))
	copy(b, s)
	return From(b)
}

// Bytes exposes the underlying slice. The slice is only valid until Destroy.
func (s *Buffer) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	return s.b
}

func (s *Buffer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.b)
}

// Destroy wipes the buffer and releases the memory lock. It is idempotent.
func (s *Buffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	Wipe(s.b)
	if s.locked {
		_ = unlockMemory(s.b)
		s.locked = false
	}
	s.destroyed = true
}
