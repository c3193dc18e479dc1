package api

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLen = 8

// validateEmail normalizes and checks an email address before it goes
// near the network.
func validateEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", &ValidationError{Field: "email", Reason: "required"}
	}
	if !emailPattern.MatchString(email) {
		return "", &ValidationError{Field: "email", Reason: "not a valid email address"}
	}
	return email, nil
}

func validatePassword(password string) (string, error) {
	password = strings.TrimSpace(password)
	if password == "" {
		return "", &ValidationError{Field: "password", Reason: "required"}
	}
	if len(password) < minPasswordLen {
		return "", &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	return password, nil
}

func (p NewProduct) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "required"}
	}
	if strings.TrimSpace(p.SKU) == "" {
		return &ValidationError{Field: "sku", Reason: "required"}
	}
	if p.Price < 0 {
		return &ValidationError{Field: "price", Reason: "must be >= 0"}
	}
	if p.Cost < 0 {
		return &ValidationError{Field: "cost", Reason: "must be >= 0"}
	}
	if p.Quantity < 0 {
		return &ValidationError{Field: "quantity", Reason: "must be >= 0"}
	}
	return nil
}
