package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	billingdomain "github.com/joseikin-rescue/server/internal/billing/domain"
)

// HMACVerifier checks the processor's hex-encoded HMAC-SHA256 payload
// signature against a shared webhook secret.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(strings.TrimSpace(secret))}
}

func (v *HMACVerifier) Verify(payload []byte, signature string) error {
	if len(v.secret) == 0 {
		return billingdomain.ErrInvalidSignature
	}

	expected, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return billingdomain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	if !hmac.Equal(mac.Sum(nil), expected) {
		return billingdomain.ErrInvalidSignature
	}
	return nil
}
