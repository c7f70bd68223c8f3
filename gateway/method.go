package gateway

import (
	"fmt"
)

// DecodeMethod normalizes the gateway's instrument-specific fields into one
// {type, provider, details} shape regardless of card/UPI/wallet/netbanking
// origin. Details never carries more than the gateway's own masked data.
func DecodeMethod(body map[string]interface{}) Method {
	methodType := asString(body["method"])

	switch methodType {
	case "card":
		provider := ""
		details := ""
		if card, ok := body["card"].(map[string]interface{}); ok {
			provider = asString(card["network"])
			if last4 := asString(card["last4"]); last4 != "" {
				details = fmt.Sprintf("**** %s", last4)
			}
		}
		return Method{Type: "card", Provider: provider, Details: details}

	case "upi":
		vpa := asString(body["vpa"])
		if upi, ok := body["upi"].(map[string]interface{}); ok && vpa == "" {
			vpa = asString(upi["vpa"])
		}
		return Method{Type: "upi", Provider: providerFromVPA(vpa), Details: vpa}

	case "wallet":
		wallet := asString(body["wallet"])
		return Method{Type: "wallet", Provider: wallet, Details: wallet}

	case "netbanking":
		bank := asString(body["bank"])
		return Method{Type: "netbanking", Provider: bank, Details: bank}

	default:
		return Method{Type: methodType}
	}
}

// providerFromVPA extracts the PSP handle from a UPI address, e.g.
// "alice@okicici" -> "okicici".
func providerFromVPA(vpa string) string {
	for i := len(vpa) - 1; i >= 0; i-- {
		if vpa[i] == '@' {
			return vpa[i+1:]
		}
	}
	return ""
}
