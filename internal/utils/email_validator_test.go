package utils

import (
	"testing"
)

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		expected string
		hasError bool
	}{
		{"Valid email", "test@example.com", "example.com", false},
		{"Valid email with subdomain", "user@mail.example.com", "mail.example.com", false},
		{"Email with uppercase", "TEST@EXAMPLE.COM", "example.com", false},
		{"Email with spaces", "  test@example.com  ", "example.com", false},
		{"Invalid email - no @", "testexample.com", "", true},
		{"Invalid email - multiple @", "test@@example.com", "", true},
		{"Empty email", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := extractDomain(tt.email)
			if tt.hasError {
				if err == nil {
					t.Errorf("extractDomain(%s) expected error but got none", tt.email)
				}
			} else {
				if err != nil {
					t.Errorf("extractDomain(%s) unexpected error: %v", tt.email, err)
				}
				if result != tt.expected {
					t.Errorf("extractDomain(%s) = %s; expected %s", tt.email, result, tt.expected)
				}
			}
		})
	}
}

func TestValidateEmailAddress(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		expectError bool
		errorCode   string
	}{
		{"Valid business email", "john@microsoft.com", false, ""},
		{"Valid personal email", "john@gmail.com", false, ""},
		{"Disposable email", "user@mailinator.com", true, "DISPOSABLE_EMAIL"},
		{"Another disposable email", "user@yopmail.com", true, "DISPOSABLE_EMAIL"},
		{"Invalid email format", "notanemail", true, "INVALID_FORMAT"},
		{"Empty email", "", true, "INVALID_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmailAddress(tt.email)
			if tt.expectError {
				if err == nil {
					t.Errorf("ValidateEmailAddress(%s) expected error but got none", tt.email)
					return
				}
				emailErr, ok := err.(*EmailValidationError)
				if !ok {
					t.Errorf("ValidateEmailAddress(%s) expected EmailValidationError but got %T", tt.email, err)
					return
				}
				if emailErr.Code != tt.errorCode {
					t.Errorf("ValidateEmailAddress(%s) error code = %s; expected %s", tt.email, emailErr.Code, tt.errorCode)
				}
			} else if err != nil {
				t.Errorf("ValidateEmailAddress(%s) unexpected error: %v", tt.email, err)
			}
		})
	}
}
