package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature checks a hex-encoded HMAC-SHA256 signature over payload.
// It never returns an error: malformed input yields false with a warning,
// and the byte comparison is constant-time. The same primitive covers
// payment signatures (payload "gatewayOrderID|gatewayPaymentID") and webhook
// signatures (payload = raw request body).
func VerifySignature(payload []byte, signatureHex string, secret []byte) bool {
	if signatureHex == "" || len(secret) == 0 {
		LogWarn("Signature verification called with empty signature or secret")
		return false
	}

	provided, err := hex.DecodeString(signatureHex)
	if err != nil {
		LogWarn("Signature verification received malformed hex: %v", err)
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	expected := mac.Sum(nil)

	if len(provided) != len(expected) {
		LogWarn("Signature verification length mismatch: got %d bytes, want %d", len(provided), len(expected))
		return false
	}

	return hmac.Equal(provided, expected)
}

// SignPayload computes the hex-encoded HMAC-SHA256 signature for payload.
// Used by tests and by the simulated-gateway tooling.
func SignPayload(payload []byte, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
