// Package crypto implements the passphrase-based authenticated encryption
// scheme protecting vault payloads: PBKDF2-HMAC-SHA256 key derivation and
// AES-256-GCM with a detached tag, matching the on-disk field split.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/hrootzel/Password-Manager/internal/config"
	"github.com/hrootzel/Password-Manager/internal/secret"
)

// ErrAuthentication covers both a wrong passphrase and tampered or corrupted
// ciphertext. The AEAD cannot tell the two apart, so neither can callers.
var ErrAuthentication = errors.New("crypto: message authentication failed")

// KdfError reports that the key derivation primitive could not run. It is an
// environment fault, not a user error; callers propagate it instead of
// re-prompting for a passphrase.
type KdfError struct {
	Reason string
}

func (e *KdfError) Error() string { return "crypto: kdf: " + e.Reason }

// Blob is the result of one encryption and the input to one decryption. It is
// never persisted directly; it is copied into and out of a container, then
// wiped.
type Blob struct {
	Salt       []byte
	Nonce      []byte
	Tag        []byte
	Ciphertext []byte
}

// Complete reports whether every field is present.
func (b *Blob) Complete() bool {
	return b.Salt != nil && b.Nonce != nil && b.Tag != nil && b.Ciphertext != nil
}

// Wipe zeroes every field in place.
func (b *Blob) Wipe() {
	secret.Wipe(b.Salt)
	secret.Wipe(b.Nonce)
	secret.Wipe(b.Tag)
	secret.Wipe(b.Ciphertext)
}

// Engine derives keys and seals/opens vault payloads. All calls are
// synchronous and run to completion on the calling goroutine.
type Engine struct {
	params  config.Params
	entropy Entropy
}

// New returns an Engine backed by the operating system CSPRNG.
func New(params config.Params) *Engine {
	return NewWithEntropy(params, osEntropy{})
}

// NewWithEntropy returns an Engine drawing randomness from src. Constrained
// targets substitute their hardware RNG here; tests substitute a recorder.
func NewWithEntropy(params config.Params, src Entropy) *Engine {
	return &Engine{params: params, entropy: src}
}

// DeriveKey stretches a passphrase into a key of the configured size using
// PBKDF2-HMAC-SHA256 with the configured iteration count.
func (e *Engine) DeriveKey(passphrase, salt []byte) ([]byte, error) {
	if len(salt) == 0 {
		return nil, &KdfError{Reason: "empty salt"}
	}
	if e.params.KeySize <= 0 || e.params.KDFIterations <= 0 {
		return nil, &KdfError{Reason: "invalid derivation parameters"}
	}
	return pbkdf2.Key(passphrase, salt, e.params.KDFIterations, e.params.KeySize, sha256.New), nil
}

// RandomBytes returns n cryptographically strong random bytes.
func (e *Engine) RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if err := e.entropy.FillRandom(b); err != nil {
		return nil, fmt.Errorf("crypto: entropy: %w", err)
	}
	return b, nil
}

// Encrypt seals plaintext under a key derived from the passphrase and a fresh
// random salt. The nonce is freshly drawn as well; since the salt re-roll
// changes the derived key on every call, a nonce can never repeat under the
// same key even for an identical passphrase.
func (e *Engine) Encrypt(plaintext, passphrase []byte) (Blob, error) {
	salt, err := e.RandomBytes(e.params.SaltSize)
	if err != nil {
		return Blob{}, err
	}
	key, err := e.DeriveKey(passphrase, salt)
	if err != nil {
		return Blob{}, err
	}
	defer secret.Wipe(key)

	aead, err := e.newGCM(key)
	if err != nil {
		return Blob{}, err
	}
	nonce, err := e.RandomBytes(e.params.NonceSize)
	if err != nil {
		return Blob{}, err
	}

	sealed := aead.Seal(nil, nonce, plaintext, nil)
	split := len(sealed) - e.params.TagSize
	return Blob{
		Salt:       salt,
		Nonce:      nonce,
		Tag:        sealed[split:],
		Ciphertext: sealed[:split:split],
	}, nil
}

// Decrypt derives the key from the blob's salt and the passphrase, then opens
// the ciphertext against the supplied nonce and tag. The plaintext is returned
// only if the tag verifies; every verification failure is ErrAuthentication.
func (e *Engine) Decrypt(b Blob, passphrase []byte) ([]byte, error) {
	key, err := e.DeriveKey(passphrase, b.Salt)
	if err != nil {
		return nil, err
	}
	defer secret.Wipe(key)

	aead, err := e.newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(b.Nonce) != aead.NonceSize() || len(b.Tag) != e.params.TagSize {
		return nil, ErrAuthentication
	}

	sealed := make([]byte, 0, len(b.Ciphertext)+len(b.Tag))
	sealed = append(sealed, b.Ciphertext...)
	sealed = append(sealed, b.Tag...)
	defer secret.Wipe(sealed)

	plaintext, err := aead.Open(nil, b.Nonce, sealed, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

func (e *Engine) newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypto: init cipher: %w", err)
	}
	if e.params.NonceSize != 12 {
		return cipher.NewGCMWithNonceSize(block, e.params.NonceSize)
	}
	return cipher.NewGCM(block)
}
