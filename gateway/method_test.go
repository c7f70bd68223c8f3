package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeMethodCard(t *testing.T) {
	method := DecodeMethod(map[string]interface{}{
		"method": "card",
		"card": map[string]interface{}{
			"network": "Visa",
			"last4":   "4242",
		},
	})

	assert.Equal(t, "card", method.Type)
	assert.Equal(t, "Visa", method.Provider)
	assert.Equal(t, "**** 4242", method.Details)
}

func TestDecodeMethodUPI(t *testing.T) {
	method := DecodeMethod(map[string]interface{}{
		"method": "upi",
		"vpa":    "alice@okicici",
	})

	assert.Equal(t, "upi", method.Type)
	assert.Equal(t, "okicici", method.Provider)
	assert.Equal(t, "alice@okicici", method.Details)
}

func TestDecodeMethodUPINestedVPA(t *testing.T) {
	method := DecodeMethod(map[string]interface{}{
		"method": "upi",
		"upi": map[string]interface{}{
			"vpa": "bob@ybl",
		},
	})

	assert.Equal(t, "upi", method.Type)
	assert.Equal(t, "ybl", method.Provider)
	assert.Equal(t, "bob@ybl", method.Details)
}

func TestDecodeMethodWallet(t *testing.T) {
	method := DecodeMethod(map[string]interface{}{
		"method": "wallet",
		"wallet": "phonepe",
	})

	assert.Equal(t, "wallet", method.Type)
	assert.Equal(t, "phonepe", method.Provider)
}

func TestDecodeMethodNetbanking(t *testing.T) {
	method := DecodeMethod(map[string]interface{}{
		"method": "netbanking",
		"bank":   "SBIN",
	})

	assert.Equal(t, "netbanking", method.Type)
	assert.Equal(t, "SBIN", method.Provider)
	assert.Equal(t, "SBIN", method.Details)
}

func TestDecodeMethodUnknown(t *testing.T) {
	method := DecodeMethod(map[string]interface{}{
		"method": "emi",
	})

	assert.Equal(t, "emi", method.Type)
	assert.Empty(t, method.Provider)
	assert.Empty(t, method.Details)
}

func TestDecodeMethodCardNoDetails(t *testing.T) {
	method := DecodeMethod(map[string]interface{}{
		"method": "card",
	})

	assert.Equal(t, "card", method.Type)
	assert.Empty(t, method.Details, "no card block means no masked details")
}
