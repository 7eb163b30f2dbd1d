package chain

import (
	"regexp"
	"strings"
)

var (
	addressPattern = regexp.MustCompile(`^0x[a-f0-9]{40}$`)
	txHashPattern  = regexp.MustCompile(`^0x[a-f0-9]{64}$`)
)

// NormalizeAddress canonicalizes an EVM account address to lower-case hex.
// The second return is false when the input is not a valid address.
func NormalizeAddress(s string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(s))
	if !addressPattern.MatchString(lowered) {
		return "", false
	}
	return lowered, true
}

// NormalizeTxHash canonicalizes a 32-byte transaction hash to lower-case hex.
func NormalizeTxHash(s string) (string, bool) {
	lowered := strings.ToLower(strings.TrimSpace(s))
	if !txHashPattern.MatchString(lowered) {
		return "", false
	}
	return lowered, true
}

// ParseReceiptStatus folds the indexer's polymorphic receipt status into a
// boolean. Indexers report the field as an integer (1), a numeric string
// ("1"), or a status name ("success"); anything else, including null or a
// missing field, means the transaction did not succeed.
func ParseReceiptStatus(v any) bool {
	switch s := v.(type) {
	case int:
		return s == 1
	case int64:
		return s == 1
	case float64:
		return s == 1
	case string:
		t := strings.ToLower(strings.TrimSpace(s))
		return t == "1" || t == "success"
	default:
		return false
	}
}
