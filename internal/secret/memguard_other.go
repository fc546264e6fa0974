//go:build !linux && !darwin

package secret

import "errors"

var errUnsupported = errors.New("secret: memory locking unsupported")

func lockMemory(b []byte) error   { return errUnsupported }
func unlockMemory(b []byte) error { return errUnsupported }
