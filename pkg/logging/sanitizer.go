package logging

import (
	"regexp"
)

const (
	// MaxQueryLogLength is the maximum length of a query to log
	MaxQueryLogLength = 100
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// Bearer and Basic authorization values (OAuth access tokens, PATs, base64 credentials)
	authHeaderPattern = regexp.MustCompile(`(?i)\b(Bearer|Basic)\s+[A-Za-z0-9\-_.~+/=]+`)

	// Databricks personal access tokens
	patPattern = regexp.MustCompile(`\bdapi[a-f0-9]{16,}(-\d+)?\b`)

	// client_secret=xxx, password=xxx, api_key=xxx style pairs
	secretPairPattern = regexp.MustCompile(`(?i)(client_secret|password|pwd|api[_-]?key|access_token)=[^;&\s"]+`)

	// JSON string fields carrying secrets
	secretJSONPattern = regexp.MustCompile(`(?i)"(client_secret|password|access_token|token_value)"\s*:\s*"[^"]*"`)

	// user:pass@host credentials in URLs
	urlCredentialsPattern = regexp.MustCompile(`://[^:/\s]+:[^@/\s]+@`)
)

// SanitizeError sanitizes error messages that might contain sensitive data.
// Use this before logging any error returned by the workspace, warehouse, or model endpoints.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeText(err.Error())
}

// SanitizeText removes credentials and tokens from arbitrary text such as response bodies.
func SanitizeText(s string) string {
	if s == "" {
		return ""
	}

	sanitized := authHeaderPattern.ReplaceAllString(s, "${1} "+RedactedText)
	sanitized = patPattern.ReplaceAllString(sanitized, RedactedText)
	sanitized = secretPairPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = secretJSONPattern.ReplaceAllString(sanitized, `"${1}":"`+RedactedText+`"`)
	sanitized = urlCredentialsPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@")

	return sanitized
}

// SanitizeQuery truncates and sanitizes a SQL statement for logging.
// Comment statements carry user text, so long statements are cut at MaxQueryLogLength.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}

	sanitized := query
	if len(sanitized) > MaxQueryLogLength {
		sanitized = sanitized[:MaxQueryLogLength] + "..."
	}

	return secretPairPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
