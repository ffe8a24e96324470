package models

import "strings"

// MinDescriptionLength is the shortest trimmed text that counts as a real description.
const MinDescriptionLength = 4

var placeholderDescriptions = map[string]bool{
	"null": true,
	"none": true,
	"nan":  true,
	"n/a":  true,
	"-":    true,
}

// IsMissingDescription reports whether a stored comment is effectively absent:
// nil, blank, a placeholder such as "null" or "n/a", or shorter than MinDescriptionLength.
func IsMissingDescription(desc *string) bool {
	if desc == nil {
		return true
	}
	trimmed := strings.TrimSpace(*desc)
	if trimmed == "" {
		return true
	}
	if placeholderDescriptions[strings.ToLower(trimmed)] {
		return true
	}
	return len([]rune(trimmed)) < MinDescriptionLength
}

// TableDescription is the stored comment of a table.
type TableDescription struct {
	CurrentDescription *string `json:"current_description"`
	IsMissing          bool    `json:"is_missing"`
}

// ColumnMetadata is a column with its stored comment.
type ColumnMetadata struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description *string `json:"description"`
	IsMissing   bool    `json:"is_missing"`
}

// GeneratedColumnDescription is one model-drafted column description.
type GeneratedColumnDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
