package logutil

import "testing"

func TestTruncateForLog(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "empty string with positive maxLen",
			input:    "",
			maxLen:   10,
			expected: "",
		},
		{
			name:     "string shorter than maxLen",
			input:    "hello",
			maxLen:   10,
			expected: "hello",
		},
		{
			name:     "string equal to maxLen",
			input:    "hello",
			maxLen:   5,
			expected: "hello",
		},
		{
			name:     "string longer than maxLen",
			input:    "telegram API error 400: Bad Request",
			maxLen:   8,
			expected: "telegram...",
		},
		{
			name:     "multi-byte runes are kept whole",
			input:    "привет мир",
			maxLen:   6,
			expected: "привет...",
		},
		{
			name:     "maxLen is zero",
			input:    "hello",
			maxLen:   0,
			expected: "...",
		},
		{
			name:     "maxLen is negative",
			input:    "hello",
			maxLen:   -1,
			expected: "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TruncateForLog(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("TruncateForLog(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"user@example.com", "u***@example.com"},
		{"a@example.com", "a***@example.com"},
		{"@example.com", "***@example.com"},
		{"not-an-email", "***"},
		{"élodie@example.fr", "é***@example.fr"},
	}

	for _, tt := range tests {
		if got := MaskEmail(tt.input); got != tt.expected {
			t.Errorf("MaskEmail(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
