package utils

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/lindell/go-burner-email-providers/burner"
)

// EmailValidationError represents an error during email validation
type EmailValidationError struct {
	Message string
	Code    string
}

func (e *EmailValidationError) Error() string {
	return e.Message
}

// ValidateEmailAddress validates an email address and rejects disposable
// email services. Sign-ups feed the rating and leaderboard system, so
// throwaway accounts are not welcome.
func ValidateEmailAddress(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return &EmailValidationError{
			Message: "Invalid email format",
			Code:    "INVALID_FORMAT",
		}
	}

	if burner.IsBurnerEmail(email) {
		domain, _ := extractDomain(email)
		return &EmailValidationError{
			Message: fmt.Sprintf("Email from disposable domain '%s' is not allowed. Please use a permanent email address.", domain),
			Code:    "DISPOSABLE_EMAIL",
		}
	}

	return nil
}

// extractDomain extracts the domain part from an email address
func extractDomain(email string) (string, error) {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid email format")
	}
	return strings.ToLower(parts[1]), nil
}
