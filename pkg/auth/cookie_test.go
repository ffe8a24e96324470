package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveCookieSettings(t *testing.T) {
	tests := []struct {
		name           string
		baseURL        string
		configDomain   string
		expectedSecure bool
		expectedDomain string
	}{
		{"localhost with port", "http://localhost:8000", "", false, ""},
		{"loopback ip", "http://127.0.0.1:8000", "", false, ""},
		{"public https host", "https://enrich.example.com", "", true, ""},
		{"internal network", "https://enrich.corp.internal", "", true, ".corp.internal"},
		{"config override keeps scheme", "http://localhost:8000", ".example.com", false, ".example.com"},
		{"config override with empty base", "", ".example.com", true, ".example.com"},
		{"empty base url", "", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveCookieSettings(tt.baseURL, tt.configDomain)
			assert.Equal(t, tt.expectedSecure, got.Secure)
			assert.Equal(t, tt.expectedDomain, got.Domain)
		})
	}
}
