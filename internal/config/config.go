package config

import "errors"

// Params fixes the geometry of the vault file format and the key derivation
// settings. One value is built at startup and handed to both the container
// codec and the crypto engine; the two must share it or the header fields
// cannot be located inside the serialized file.
type Params struct {
	Magic         []byte
	SaltSize      int
	NonceSize     int
	TagSize       int
	KeySize       int
	KDFIterations int
}

// Default returns the production format: "VLT2" files sealed with AES-256-GCM
// under a PBKDF2-HMAC-SHA256 derived key.
func Default() Params {
	return Params{
		Magic:         []byte("VLT2"),
		SaltSize:      16,
		NonceSize:     12,
		TagSize:       16,
		KeySize:       32,
		KDFIterations: 10000,
	}
}

var errBadParams = errors.New("config: invalid vault parameters")

func (p Params) Validate() error {
	if len(p.Magic) == 0 {
		return errBadParams
	}
	if p.SaltSize <= 0 || p.NonceSize <= 0 || p.TagSize <= 0 {
		return errBadParams
	}
	if p.KeySize <= 0 || p.KDFIterations <= 0 {
		return errBadParams
	}
	return nil
}

// Offsets are strictly cumulative: salt starts where the magic ends, and so on.
func (p Params) SaltOffset() int   { return len(p.Magic) }
func (p Params) NonceOffset() int  { return p.SaltOffset() + p.SaltSize }
func (p Params) TagOffset() int    { return p.NonceOffset() + p.NonceSize }
func (p Params) CipherOffset() int { return p.TagOffset() + p.TagSize }

// HeaderSize is the serialized size of every field before the ciphertext.
func (p Params) HeaderSize() int { return p.CipherOffset() }
