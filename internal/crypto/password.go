package crypto

import (
	"errors"

	"github.com/hrootzel/Password-Manager/internal/secret"
)

// Characters the device keyboard layer can type on every supported layout.
const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"abcdefghijklmnopqrstuvwxyz" +
	"0123456789" +
	"!@#$&*-_=+"

// GeneratePassword returns a random password of the given length drawn from
// the fixed printable alphabet, consuming exactly length bytes of entropy.
func (e *Engine) GeneratePassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("crypto: password length must be positive")
	}
	raw, err := e.RandomBytes(length)
	if err != nil {
		return "", err
	}
	defer secret.Wipe(raw)

	out := make([]byte, length)
	for i, b := range raw {
		out[i] = passwordAlphabet[int(b)%len(passwordAlphabet)]
	}
	pw := string(out)
	secret.Wipe(out)
	return pw, nil
}
