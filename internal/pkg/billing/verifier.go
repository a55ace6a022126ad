package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Verifier checks payment confirmation signatures. The provider signs the
// canonical string "orderID|paymentRef" with HMAC-SHA256 over a shared
// secret; we recompute and compare in constant time. The secret is never
// logged and never leaves the process.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier for the given shared secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify reports whether the provided signature matches the expected one.
// Any malformed input yields false; callers cannot distinguish a bad
// signature from a bad format.
func (v *Verifier) Verify(orderID, paymentRef, signature string) bool {
	if len(v.secret) == 0 || orderID == "" || paymentRef == "" {
		return false
	}

	provided, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(signature)))
	if err != nil || len(provided) == 0 {
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentRef))
	return hmac.Equal(mac.Sum(nil), provided)
}

// Sign computes the signature the provider is expected to send. Used by
// tests and local tooling, never exposed over the wire.
func (v *Verifier) Sign(orderID, paymentRef string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(orderID + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}
