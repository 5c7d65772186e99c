package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	v := NewWebhookVerifier("shh")
	body := []byte(`{"id": 42}`)

	assert.True(t, v.Verify(body, sign("shh", body)))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := NewWebhookVerifier("shh")
	body := []byte(`{"id": 42}`)

	assert.False(t, v.Verify(body, sign("other", body)))
}

func TestVerifyRejectsTrailingWhitespaceDifference(t *testing.T) {
	v := NewWebhookVerifier("shh")
	body := []byte(`{"id": 42}`)

	// A signature over the body plus trailing whitespace must not validate
	// the original body, and vice versa.
	assert.False(t, v.Verify(body, sign("shh", append(body, '\n'))))
	assert.False(t, v.Verify(append(body, ' '), sign("shh", body)))
}

func TestVerifyRejectsMissingHeader(t *testing.T) {
	v := NewWebhookVerifier("shh")
	assert.False(t, v.Verify([]byte(`{}`), ""))
}

func TestVerifyRejectsWhenSecretUnconfigured(t *testing.T) {
	v := NewWebhookVerifier("")
	body := []byte(`{}`)
	assert.False(t, v.Verify(body, sign("", body)))
}

func TestVerifyRejectsGarbageHeader(t *testing.T) {
	v := NewWebhookVerifier("shh")
	assert.False(t, v.Verify([]byte(`{}`), "not-base64-at-all"))
}
