// Package sql builds Databricks SQL text safely: identifier validation and
// quoting, string literal escaping and injection screening.
package sql

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ekaya-inc/ekaya-enrich/pkg/apperrors"
)

// MaxIdentifierLength is the Unity Catalog limit for object names.
const MaxIdentifierLength = 255

// ValidateIdentifier rejects names that cannot be a Unity Catalog object:
// empty, too long, containing control characters, or matching an injection pattern.
// The error wraps apperrors.ErrInvalidIdentifier.
func ValidateIdentifier(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %s name is required", apperrors.ErrInvalidIdentifier, kind)
	}
	if len(name) > MaxIdentifierLength {
		return fmt.Errorf("%w: %s name exceeds %d characters", apperrors.ErrInvalidIdentifier, kind, MaxIdentifierLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %s name contains control characters", apperrors.ErrInvalidIdentifier, kind)
		}
	}
	if result := CheckForInjection(kind, name); result != nil {
		return fmt.Errorf("%w: %s name rejected (fingerprint %s)", apperrors.ErrInvalidIdentifier, kind, result.Fingerprint)
	}
	return nil
}

// QuoteIdentifier wraps name in backticks, doubling embedded backticks.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// QualifiedName quotes each part and joins them with dots: `c`.`s`.`t`.
func QualifiedName(parts ...string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = QuoteIdentifier(p)
	}
	return strings.Join(quoted, ".")
}

// QuoteLiteral returns s as a single-quoted SQL string literal.
// Backslashes and single quotes are backslash-escaped, which is how
// Databricks SQL reads string literals.
func QuoteLiteral(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return "'" + escaped + "'"
}
