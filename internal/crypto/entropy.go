package crypto

import (
	"crypto/rand"
	"io"
)

// Entropy fills buffers with cryptographically strong random bytes. The
// default implementation reads the operating system CSPRNG; device builds
// plug in the hardware RNG.
type Entropy interface {
	FillRandom(b []byte) error
}

type osEntropy struct{}

func (osEntropy) FillRandom(b []byte) error {
	_, err := io.ReadFull(rand.Reader, b)
	return err
}
