package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// WebhookVerifier checks inbound webhook authenticity: an HMAC-SHA256 digest
// of the exact raw body bytes, base64-encoded, must match the signature
// header. Comparison is constant-time.
type WebhookVerifier struct {
	secret []byte
}

// NewWebhookVerifier creates a verifier for the process-wide webhook secret.
func NewWebhookVerifier(secret string) *WebhookVerifier {
	return &WebhookVerifier{secret: []byte(secret)}
}

// Verify reports whether signatureHeader matches rawBody. A missing secret
// or missing header rejects; verification never panics or errors.
func (v *WebhookVerifier) Verify(rawBody []byte, signatureHeader string) bool {
	if len(v.secret) == 0 || signatureHeader == "" {
		return false
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(rawBody)
	digest := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(digest), []byte(signatureHeader)) == 1
}
