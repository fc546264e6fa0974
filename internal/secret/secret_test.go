package secret

import (
	"bytes"
	"testing"
)

func TestWipe(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Wipe(b)
	if !bytes.Equal(b, []byte{0, 0, 0, 0}) {
		t.Fatal("buffer not zeroed")
	}
	Wipe(nil) // must not panic
}

func TestBufferDestroyZeroesBacking(t *testing.T) {
	backing := []byte("super secret")
	buf := From(backing)
	if !bytes.Equal(buf.Bytes(), []byte("super secret")) {
		t.Fatal("contents changed on construction")
	}
	buf.Destroy()
	for i, c := range backing {
		if c != 0 {
			t.Fatalf("backing byte %d not wiped", i)
		}
	}
	if buf.Bytes() != nil {
		t.Fatal("Bytes must return nil after Destroy")
	}
	buf.Destroy() // idempotent
}

func TestFromStringCopies(t *testing.T) {
	buf := FromString("passphrase")
	defer buf.Destroy()
	if string(buf.Bytes()) != "passphrase" {
		t.Fatal("contents mismatch")
	}
	if buf.Len() != len("passphrase") {
		t.Fatalf("length = %d", buf.Len())
	}
}

func TestNewAllocatesZeroed(t *testing.T) {
	buf := New(8)
	defer buf.Destroy()
	if buf.Len() != 8 {
		t.Fatalf("length = %d, want 8", buf.Len())
	}
	for _, c := range buf.Bytes() {
		if c != 0 {
			t.Fatal("fresh buffer not zeroed")
		}
	}
}
