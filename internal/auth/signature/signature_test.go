package signature

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyPair(t *testing.T) (ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub, priv
}

func TestVerify_RoundTrip(t *testing.T) {
	pub, priv := newKeyPair(t)
	msg := []byte("Sign in to Certifly\nnonce: 8f2c")
	sig := ed25519.Sign(priv, msg)

	t.Run("base58 signature", func(t *testing.T) {
		assert.True(t, Verify(msg, base58.Encode(sig), base58.Encode(pub)))
	})

	t.Run("padded base64 signature", func(t *testing.T) {
		assert.True(t, Verify(msg, base64.StdEncoding.EncodeToString(sig), base58.Encode(pub)))
	})

	t.Run("unpadded base64 signature", func(t *testing.T) {
		assert.True(t, Verify(msg, base64.RawStdEncoding.EncodeToString(sig), base58.Encode(pub)))
	})
}

func TestVerify_SingleBitMutationsFail(t *testing.T) {
	pub, priv := newKeyPair(t)
	msg := []byte("certifly login")
	sig := ed25519.Sign(priv, msg)

	t.Run("message", func(t *testing.T) {
		for i := range msg {
			mutated := append([]byte(nil), msg...)
			mutated[i] ^= 0x01
			assert.False(t, Verify(mutated, base58.Encode(sig), base58.Encode(pub)), "byte %d", i)
		}
	})

	t.Run("signature", func(t *testing.T) {
		for i := range sig {
			mutated := append([]byte(nil), sig...)
			mutated[i] ^= 0x01
			assert.False(t, Verify(msg, base58.Encode(mutated), base58.Encode(pub)), "byte %d", i)
		}
	})

	t.Run("public key", func(t *testing.T) {
		mutated := append([]byte(nil), pub...)
		mutated[0] ^= 0x01
		assert.False(t, Verify(msg, base58.Encode(sig), base58.Encode(mutated)))
	})
}

func TestVerify_MalformedInputs(t *testing.T) {
	pub, priv := newKeyPair(t)
	msg := []byte("hello")
	sig := ed25519.Sign(priv, msg)
	other, _ := newKeyPair(t)

	tests := []struct {
		name string
		sig  string
		key  string
	}{
		{"empty signature", "", base58.Encode(pub)},
		{"empty key", base58.Encode(sig), ""},
		{"key not base58", base58.Encode(sig), "0OIl+/"},
		{"short key", base58.Encode(sig), base58.Encode(pub[:31])},
		{"long key", base58.Encode(sig), base58.Encode(append(append([]byte{}, pub...), 0x00))},
		{"short signature", base58.Encode(sig[:63]), base58.Encode(pub)},
		{"garbage signature", "!!!not-a-signature!!!", base58.Encode(pub)},
		{"signature from other key", base58.Encode(sig), base58.Encode(other)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, Verify(msg, tt.sig, tt.key))
			})
		})
	}
}

func TestVerify_Deterministic(t *testing.T) {
	pub, priv := newKeyPair(t)
	msg := []byte("same input, same answer")
	sig := base58.Encode(ed25519.Sign(priv, msg))
	v := New(nil)
	for range 5 {
		assert.True(t, v.Verify(msg, sig, base58.Encode(pub)))
	}
}
