// Package validate holds the field validation rules used to gate
// registration and profile edits. Every rule is a pure function returning an
// empty string when the value is acceptable and a human-readable message
// otherwise, so callers can collect results into a field-to-message map.
package validate

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	nameRegex  = regexp.MustCompile(`^[a-zA-Zа-яА-ЯіІїЇєЄґҐ' -]+$`)
)

const minimumAge = 16

// Email requires a local-part@domain.tld shape with an alphabetic TLD of at
// least two characters.
func Email(email string) string {
	if strings.TrimSpace(email) == "" {
		return "Email is required"
	}
	if !emailRegex.MatchString(email) {
		return "Invalid email format"
	}
	return ""
}

// Name allows Latin and Cyrillic letters, apostrophe, hyphen and space.
// fieldName is used in the message, e.g. "First name".
func Name(name, fieldName string) string {
	if strings.TrimSpace(name) == "" {
		return fieldName + " is required"
	}
	if !nameRegex.MatchString(name) {
		return fieldName + " must not contain special characters"
	}
	return ""
}

// DateOfBirth accepts YYYY-MM-DD dates that are not in the future and put
// the person at 16 or older today.
func DateOfBirth(date string) string {
	return dateOfBirthAt(date, time.Now())
}

func dateOfBirthAt(date string, now time.Time) string {
	if strings.TrimSpace(date) == "" {
		return "Date of birth is required"
	}

	birth, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "Invalid date"
	}

	if birth.After(now) {
		return "Date of birth cannot be in the future"
	}

	if ageAt(birth, now) < minimumAge {
		return "You must be at least 16 years old"
	}
	return ""
}

// ageAt computes age in whole years, counting a year only once its month and
// day have been reached.
func ageAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if int(now.Month()) < int(birth.Month()) ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// Password requires at least 6 characters. There is no complexity rule.
func Password(password string) string {
	if strings.TrimSpace(password) == "" {
		return "Password is required"
	}
	if utf8.RuneCountInString(password) < 6 {
		return "Password must be at least 6 characters"
	}
	return ""
}

// ConfirmPassword requires the confirmation to exactly equal the password.
func ConfirmPassword(password, confirmPassword string) string {
	if strings.TrimSpace(confirmPassword) == "" {
		return "Password confirmation is required"
	}
	if password != confirmPassword {
		return "Passwords do not match"
	}
	return ""
}

// RegistrationForm carries the raw field values of the sign-up form.
type RegistrationForm struct {
	Email           string `json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	DateOfBirth     string `json:"dateOfBirth"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Registration runs every field rule and returns a field-to-message map.
// An empty map means the form may be submitted.
func Registration(form RegistrationForm) map[string]string {
	errs := map[string]string{}

	if msg := Email(form.Email); msg != "" {
		errs["email"] = msg
	}
	if msg := Name(form.FirstName, "First name"); msg != "" {
		errs["firstName"] = msg
	}
	if msg := Name(form.LastName, "Last name"); msg != "" {
		errs["lastName"] = msg
	}
	if msg := DateOfBirth(form.DateOfBirth); msg != "" {
		errs["dateOfBirth"] = msg
	}
	if msg := Password(form.Password); msg != "" {
		errs["password"] = msg
	}
	if msg := ConfirmPassword(form.Password, form.ConfirmPassword); msg != "" {
		errs["confirmPassword"] = msg
	}
	return errs
}
