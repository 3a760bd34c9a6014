package dto

import "testing"

func TestValidateCameraName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"door", true},
		{"front-Door_2", true},
		{"", false},
		{"../../../escaped", false},
		{"a/b", false},
		{`a\b`, false},
		{"cam.1", false},
		{"caméra", false},
		{string(make([]byte, 65)), false},
	}

	for _, tt := range tests {
		err := ValidateCameraName(tt.name)
		if tt.valid && err != nil {
			t.Errorf("ValidateCameraName(%q) returned %v", tt.name, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ValidateCameraName(%q) should fail", tt.name)
		}
	}
}

func TestSanitizeCameraName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"door", "door"},
		{"../../../escaped", "_________escaped"},
		{"10.0.0.9", "10_0_0_9"},
		{"", "camera"},
	}

	for _, tt := range tests {
		result := SanitizeCameraName(tt.input)
		if result != tt.expected {
			t.Errorf("SanitizeCameraName(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
		if err := ValidateCameraName(result); err != nil {
			t.Errorf("Sanitized name %q is not valid: %v", result, err)
		}
	}

	long := SanitizeCameraName(string(make([]rune, 100)))
	if len(long) != 64 {
		t.Errorf("Expected name truncated to 64, got %d", len(long))
	}
}
