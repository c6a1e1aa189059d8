// internal/gateway/signature.go
package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptySecret is returned when a Signer is built without a secret.
var ErrEmptySecret = errors.New("gateway: webhook secret must not be empty")

// Signer computes and checks gateway webhook signatures: lowercase hex
// HMAC-SHA256 over "{payment_id}:{provider_reference}".
type Signer struct {
	secret []byte
}

// NewSigner returns a Signer keyed with secret.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &Signer{secret: []byte(secret)}, nil
}

func signedPayload(paymentID uuid.UUID, providerReference string) []byte {
	return []byte(paymentID.String() + ":" + providerReference)
}

// Sign returns the signature the gateway sends for the payment.
func (s *Signer) Sign(paymentID uuid.UUID, providerReference string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(signedPayload(paymentID, providerReference))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches. The comparison is constant time
// and accepts upper or lower case hex.
func (s *Signer) Verify(paymentID uuid.UUID, providerReference, signature string) bool {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(signedPayload(paymentID, providerReference))
	return hmac.Equal(got, mac.Sum(nil))
}
