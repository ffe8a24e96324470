package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult contains the result of an injection check on a value.
type InjectionCheckResult struct {
	Name        string // what the value is, e.g. "catalog"
	Value       string
	Fingerprint string // libinjection fingerprint of the detected pattern
}

// CheckForInjection runs libinjection over value.
// Returns nil when no injection pattern is detected.
//
// Example:
//
//	CheckForInjection("table", "orders")                    // nil
//	CheckForInjection("table", "1' OR '1'='1")             // Fingerprint "s&1c" or similar
func CheckForInjection(name, value string) *InjectionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &InjectionCheckResult{
		Name:        name,
		Value:       value,
		Fingerprint: string(fingerprint),
	}
}
