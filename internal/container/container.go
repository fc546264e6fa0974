// Package container implements the fixed-layout binary codec for vault files:
//
//	magic || salt || nonce || tag || ciphertext
//
// The magic, salt, nonce and tag fields have sizes fixed by config.Params; the
// ciphertext runs from the cipher offset to the end of the buffer. The codec
// never looks inside the ciphertext; payload semantics belong to the caller.
package container

import (
	"bytes"

	"github.com/hrootzel/Password-Manager/internal/config"
	"github.com/hrootzel/Password-Manager/internal/secret"
)

// Container owns the raw bytes of one vault file. Getters tolerate truncated
// buffers and return nil instead of failing; callers treat a nil field as a
// malformed file, never as a legitimate zero-length value.
type Container struct {
	params config.Params
	data   []byte
}

// New returns an empty container. Fields are populated with the setters, in
// header order, before serialization.
func New(params config.Params) *Container {
	return &Container{params: params}
}

// FromBytes wraps a raw buffer read from storage. No validation happens here;
// HasValidMagic is the admission gate before any other accessor is trusted.
func FromBytes(params config.Params, raw []byte) *Container {
	return &Container{params: params, data: raw}
}

// HasValidMagic reports whether the buffer is long enough to hold the magic
// and starts with it exactly.
func (c *Container) HasValidMagic() bool {
	m := c.params.Magic
	return len(c.data) >= len(m) && bytes.Equal(c.data[:len(m)], m)
}

func (c *Container) field(off, size int) []byte {
	if len(c.data) < off+size {
		return nil
	}
	out := make([]byte, size)
	copy(out, c.data[off:off+size])
	return out
}

// Salt returns a copy of the salt field, or nil if the buffer is too short.
func (c *Container) Salt() []byte {
	return c.field(c.params.SaltOffset(), c.params.SaltSize)
}

func (c *Container) Nonce() []byte {
	return c.field(c.params.NonceOffset(), c.params.NonceSize)
}

func (c *Container) Tag() []byte {
	return c.field(c.params.TagOffset(), c.params.TagSize)
}

// Ciphertext returns a copy of every byte past the header, or nil when the
// buffer does not extend beyond the cipher offset.
func (c *Container) Ciphertext() []byte {
	off := c.params.CipherOffset()
	if len(c.data) <= off {
		return nil
	}
	out := make([]byte, len(c.data)-off)
	copy(out, c.data[off:])
	return out
}

// ensureHeader grows the buffer to cover the magic if needed and writes the
// magic bytes in place. Fields that follow are left untouched.
func (c *Container) ensureHeader() {
	m := c.params.Magic
	if len(c.data) < len(m) {
		c.data = append(c.data, make([]byte, len(m)-len(c.data))...)
	}
	copy(c.data, m)
}

func (c *Container) setField(off int, b []byte) {
	c.ensureHeader()
	if need := off + len(b); len(c.data) < need {
		c.data = append(c.data, make([]byte, need-len(c.data))...)
	}
	copy(c.data[off:], b)
}

// SetSalt overwrites the salt field in place, zero-padding the buffer first if
// it is too short to reach the field. Setting header fields in order (salt,
// nonce, tag) before the ciphertext keeps every already-set field intact.
func (c *Container) SetSalt(salt []byte) {
	c.setField(c.params.SaltOffset(), salt)
}

func (c *Container) SetNonce(nonce []byte) {
	c.setField(c.params.NonceOffset(), nonce)
}

func (c *Container) SetTag(tag []byte) {
	c.setField(c.params.TagOffset(), tag)
}

// SetCiphertext discards everything from the cipher offset onward and appends
// the new ciphertext. The header region is never truncated.
func (c *Container) SetCiphertext(ct []byte) {
	c.ensureHeader()
	off := c.params.CipherOffset()
	if len(c.data) < off {
		c.data = append(c.data, make([]byte, off-len(c.data))...)
	}
	c.data = append(c.data[:off], ct...)
}

// Bytes returns the serialized container, ready for persistence. The slice
// aliases the internal buffer; persist or copy it before mutating further.
func (c *Container) Bytes() []byte { return c.data }

func (c *Container) Len() int { return len(c.data) }

// Wipe zeroes the owned buffer. Callers discard the container afterwards.
func (c *Container) Wipe() {
	secret.Wipe(c.data)
}
