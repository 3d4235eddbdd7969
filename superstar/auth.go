package superstar

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns hex HMAC-SHA256 of payload.
// HMAC key is the ASCII hex of SHA-256(secret), not the raw digest;
// superstar stores and compares keys in this form.
func Sign(secret string, payload []byte) string {
	return hex.EncodeToString(sign(secret, payload))
}

// Verify checks hex signature in constant time.
func Verify(secret string, payload []byte, signature string) bool {
	b, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(b, sign(secret, payload))
}

// AuthPayload is exactly what superstar authenticates: path immediately followed by opts JSON.
func AuthPayload(path string, opts []byte) []byte {
	b := make([]byte, 0, len(path)+len(opts))
	b = append(b, path...)
	return append(b, opts...)
}

func sign(secret string, payload []byte) []byte {
	sum := sha256.Sum256([]byte(secret))
	key := []byte(hex.EncodeToString(sum[:]))
	h := hmac.New(sha256.New, key)
	_, _ = h.Write(payload)
	return h.Sum(nil)
}
