package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "label", false},
		{"with space", "I Heart", false},
		{"unicode", "café", false},
		{"with dash", "logo-1", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", 300), true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "input", false},
		{"absolute", "/tmp/output", false},
		{"with spaces", "My Stickers/input", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "in\x00put", true},
		{"control char", "in\x01put", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDimension(t *testing.T) {
	if err := ValidateDimension("max_dimension", 618); err != nil {
		t.Errorf("618 should be valid: %v", err)
	}
	for _, v := range []int{0, -1, 20000} {
		err := ValidateDimension("max_dimension", v)
		if err == nil {
			t.Errorf("ValidateDimension(%d) should fail", v)
			continue
		}
		if !Is(err, ErrCodeInvalidConfig) {
			t.Errorf("ValidateDimension(%d) code = %v", v, GetCode(err))
		}
	}
}
