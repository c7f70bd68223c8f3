package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := []byte("canteen-secret")
	payload := []byte("order_abc123|pay_def456")

	sig := SignPayload(payload, secret)
	assert.True(t, VerifySignature(payload, sig, secret))
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	payload := []byte("order_abc123|pay_def456")

	sig := SignPayload(payload, []byte("right-secret"))
	assert.False(t, VerifySignature(payload, sig, []byte("wrong-secret")))
}

func TestVerifySignatureTamperedPayload(t *testing.T) {
	secret := []byte("canteen-secret")

	sig := SignPayload([]byte(`{"amount":1000000}`), secret)
	assert.False(t, VerifySignature([]byte(`{"amount":1}`), sig, secret))
}

func TestVerifySignatureBitFlip(t *testing.T) {
	secret := []byte("canteen-secret")
	payload := []byte("order_abc123|pay_def456")

	sig := []byte(SignPayload(payload, secret))
	if sig[0] == '0' {
		sig[0] = '1'
	} else {
		sig[0] = '0'
	}
	assert.False(t, VerifySignature(payload, string(sig), secret))
}

func TestVerifySignatureMalformedInput(t *testing.T) {
	secret := []byte("canteen-secret")
	payload := []byte("order_abc123|pay_def456")

	assert.False(t, VerifySignature(payload, "", secret), "empty signature")
	assert.False(t, VerifySignature(payload, "not-hex-at-all", secret), "non-hex signature")
	assert.False(t, VerifySignature(payload, "deadbeef", secret), "truncated signature")
	assert.False(t, VerifySignature(payload, SignPayload(payload, secret), nil), "empty secret")
}
