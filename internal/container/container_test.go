package container

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/hrootzel/Password-Manager/internal/config"
)

func randBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return b
}

func TestMagicGate(t *testing.T) {
	params := config.Default()
	cases := []struct {
		name string
		raw  []byte
		want bool
	}{
		{"empty", nil, false},
		{"one byte", []byte("V"), false},
		{"three bytes", []byte("VLT"), false},
		{"exact magic", []byte("VLT2"), true},
		{"magic plus payload", []byte("VLT2xxxx"), true},
		{"wrong magic", []byte("XLT2xxxxxxxx"), false},
		{"case mismatch", []byte("vlt2"), false},
	}
	for _, tc := range cases {
		if got := FromBytes(params, tc.raw).HasValidMagic(); got != tc.want {
			t.Errorf("%s: HasValidMagic = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestGettersTolerateTruncation(t *testing.T) {
	params := config.Default()
	// One byte short of each field boundary.
	for _, n := range []int{0, 3, params.SaltOffset(), params.NonceOffset() - 1, params.TagOffset() - 1, params.CipherOffset() - 1} {
		c := FromBytes(params, make([]byte, n))
		if n < params.NonceOffset() && c.Salt() != nil {
			t.Errorf("len %d: expected nil salt", n)
		}
		if n < params.TagOffset() && c.Nonce() != nil {
			t.Errorf("len %d: expected nil nonce", n)
		}
		if n < params.CipherOffset() && c.Tag() != nil {
			t.Errorf("len %d: expected nil tag", n)
		}
		if c.Ciphertext() != nil {
			t.Errorf("len %d: expected nil ciphertext", n)
		}
	}
}

func TestCiphertextEmptyAtExactHeader(t *testing.T) {
	params := config.Default()
	c := FromBytes(params, make([]byte, params.HeaderSize()))
	if ct := c.Ciphertext(); ct != nil {
		t.Fatalf("expected nil ciphertext for header-only buffer, got %d bytes", len(ct))
	}
}

func TestSerializedLayout(t *testing.T) {
	params := config.Default()
	c := New(params)
	c.SetSalt(make([]byte, 16))
	c.SetNonce(make([]byte, 12))
	c.SetTag(make([]byte, 16))
	c.SetCiphertext([]byte{0x01, 0x02, 0x03})

	got := c.Bytes()
	want := append([]byte("VLT2"), make([]byte, 16+12+16)...)
	want = append(want, 0x01, 0x02, 0x03)
	if len(got) != 51 {
		t.Fatalf("serialized length = %d, want 51", len(got))
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("serialized buffer mismatch\n got %x\nwant %x", got, want)
	}
}

func TestFieldRoundTrip(t *testing.T) {
	params := config.Default()
	orig := New(params)
	orig.SetSalt(randBytes(t, params.SaltSize))
	orig.SetNonce(randBytes(t, params.NonceSize))
	orig.SetTag(randBytes(t, params.TagSize))
	orig.SetCiphertext(randBytes(t, 100))

	rebuilt := New(params)
	rebuilt.SetSalt(orig.Salt())
	rebuilt.SetNonce(orig.Nonce())
	rebuilt.SetTag(orig.Tag())
	rebuilt.SetCiphertext(orig.Ciphertext())

	if !bytes.Equal(orig.Bytes(), rebuilt.Bytes()) {
		t.Fatal("field round-trip did not reproduce the serialized buffer")
	}
}

func TestSettersDoNotDisturbLaterFields(t *testing.T) {
	params := config.Default()
	c := New(params)
	salt := randBytes(t, params.SaltSize)
	nonce := randBytes(t, params.NonceSize)
	tag := randBytes(t, params.TagSize)
	ct := randBytes(t, 32)
	c.SetSalt(salt)
	c.SetNonce(nonce)
	c.SetTag(tag)
	c.SetCiphertext(ct)

	// Overwriting the salt in place must leave everything after it intact.
	newSalt := randBytes(t, params.SaltSize)
	c.SetSalt(newSalt)
	if !bytes.Equal(c.Salt(), newSalt) {
		t.Fatal("salt not updated")
	}
	if !bytes.Equal(c.Nonce(), nonce) || !bytes.Equal(c.Tag(), tag) || !bytes.Equal(c.Ciphertext(), ct) {
		t.Fatal("later fields disturbed by SetSalt")
	}
}

func TestSetCiphertextReplaces(t *testing.T) {
	params := config.Default()
	c := New(params)
	c.SetCiphertext(randBytes(t, 64))
	c.SetCiphertext([]byte{0xAB})
	if c.Len() != params.HeaderSize()+1 {
		t.Fatalf("length = %d, want header+1", c.Len())
	}
	if !bytes.Equal(c.Ciphertext(), []byte{0xAB}) {
		t.Fatal("ciphertext not replaced")
	}
}

func TestSettersWriteMagicOnShortBuffer(t *testing.T) {
	params := config.Default()
	c := FromBytes(params, []byte{0xFF, 0xFF})
	c.SetSalt(randBytes(t, params.SaltSize))
	if !c.HasValidMagic() {
		t.Fatal("setter did not establish the magic")
	}
}

func TestWipeZeroesBuffer(t *testing.T) {
	params := config.Default()
	c := New(params)
	c.SetSalt(randBytes(t, params.SaltSize))
	c.SetCiphertext(randBytes(t, 16))
	buf := c.Bytes()
	c.Wipe()
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not wiped", i)
		}
	}
}
