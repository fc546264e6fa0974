// Package vault ties the container codec, the crypto engine and the atomic
// store into the open/save operations a controller calls. One operation is in
// flight at a time; every secret copy an operation materializes is wiped
// before it returns, on success and on every error path.
package vault

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/hrootzel/Password-Manager/internal/config"
	"github.com/hrootzel/Password-Manager/internal/container"
	vcrypto "github.com/hrootzel/Password-Manager/internal/crypto"
	"github.com/hrootzel/Password-Manager/internal/secret"
	"github.com/hrootzel/Password-Manager/internal/storage"
)

var (
	// ErrInvalidVault marks a buffer that failed the magic gate or is missing
	// header fields: not a vault file, regardless of any passphrase.
	ErrInvalidVault = errors.New("vault: invalid vault data")
	// ErrInvalidPassword is returned for a wrong passphrase and for corrupted
	// or tampered ciphertext alike.
	ErrInvalidPassword = errors.New("vault: invalid password")
	// ErrThrottled rejects an unlock attempt before any key derivation work.
	ErrThrottled = errors.New("vault: too many unlock attempts")
	// ErrEmptyPayload rejects persisting zero-length plaintext. A header-only
	// file cannot be told apart from a truncated one, and the payload
	// encoding always carries at least an empty JSON object.
	ErrEmptyPayload = errors.New("vault: empty payload")
)

// Session executes vault open/save operations against one store.
type Session struct {
	params   config.Params
	engine   *vcrypto.Engine
	store    *storage.Store
	throttle *unlockThrottle
}

func NewSession(params config.Params, engine *vcrypto.Engine, store *storage.Store) *Session {
	return &Session{
		params:   params,
		engine:   engine,
		store:    store,
		throttle: newUnlockThrottle(rate.Every(2*time.Second), 5, 10*time.Minute),
	}
}

// Create encrypts plaintext under passphrase and persists it as a new vault
// file. An existing file under the same name is replaced (its previous
// content survives as the backup).
func (s *Session) Create(name string, passphrase, plaintext []byte) error {
	return s.seal(name, passphrase, plaintext)
}

// Save re-encrypts plaintext with a fresh salt and nonce and persists it over
// the existing vault. The current file must pass the magic gate first; a
// mangled file is reported instead of being silently overwritten.
func (s *Session) Save(name string, passphrase, plaintext []byte) error {
	raw, err := s.store.Load(name)
	if err != nil {
		return err
	}
	ok := container.FromBytes(s.params, raw).HasValidMagic()
	secret.Wipe(raw)
	if !ok {
		return ErrInvalidVault
	}
	return s.seal(name, passphrase, plaintext)
}

// Open reads the vault file, gates on the magic, extracts the header fields
// and returns the decrypted payload. The caller owns the returned plaintext
// and wipes it when done.
func (s *Session) Open(name string, passphrase []byte) ([]byte, error) {
	raw, err := s.store.Load(name)
	if err != nil {
		return nil, err
	}
	defer secret.Wipe(raw)

	c := container.FromBytes(s.params, raw)
	if !c.HasValidMagic() {
		return nil, ErrInvalidVault
	}
	blob := vcrypto.Blob{
		Salt:       c.Salt(),
		Nonce:      c.Nonce(),
		Tag:        c.Tag(),
		Ciphertext: c.Ciphertext(),
	}
	defer blob.Wipe()
	if !blob.Complete() {
		return nil, ErrInvalidVault
	}

	if !s.throttle.allow(name) {
		return nil, ErrThrottled
	}
	plaintext, err := s.engine.Decrypt(blob, passphrase)
	if err != nil {
		var kdfErr *vcrypto.KdfError
		if errors.As(err, &kdfErr) {
			return nil, err
		}
		return nil, ErrInvalidPassword
	}
	return plaintext, nil
}

func (s *Session) seal(name string, passphrase, plaintext []byte) error {
	if len(plaintext) == 0 {
		return ErrEmptyPayload
	}
	blob, err := s.engine.Encrypt(plaintext, passphrase)
	if err != nil {
		return errors.Wrap(err, "vault: encrypt")
	}
	defer blob.Wipe()

	c := container.New(s.params)
	c.SetSalt(blob.Salt)
	c.SetNonce(blob.Nonce)
	c.SetTag(blob.Tag)
	c.SetCiphertext(blob.Ciphertext)
	defer c.Wipe()

	return s.store.Save(name, c.Bytes())
}
