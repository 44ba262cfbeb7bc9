package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/agencyscout/scout-funnel/internal/entity"
)

// MinAge is the campaign's lower age bound; the funnel targets mature
// applicants only.
const MinAge = 30

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var nonDigits = regexp.MustCompile(`\D`)

func ValidateSubmitLeadInput(input SubmitLeadInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.FirstName) == "" {
		errors = append(errors, ValidationError{"first_name", "is required"})
	} else if len(input.FirstName) > 100 {
		errors = append(errors, ValidationError{"first_name", "must not exceed 100 characters"})
	}

	if strings.TrimSpace(input.LastName) == "" {
		errors = append(errors, ValidationError{"last_name", "is required"})
	} else if len(input.LastName) > 100 {
		errors = append(errors, ValidationError{"last_name", "must not exceed 100 characters"})
	}

	if input.Age < MinAge {
		errors = append(errors, ValidationError{"age", fmt.Sprintf("must be at least %d", MinAge)})
	} else if input.Age > 120 {
		errors = append(errors, ValidationError{"age", "is invalid"})
	}

	if !isValidGender(input.Gender) {
		errors = append(errors, ValidationError{"gender", "must be female, male or non-binary"})
	}

	if strings.TrimSpace(input.Phone) == "" {
		errors = append(errors, ValidationError{"phone", "is required"})
	} else if !isValidPhoneNumber(input.Phone) {
		errors = append(errors, ValidationError{"phone", "must be a valid phone number"})
	}

	if strings.TrimSpace(input.Email) == "" {
		errors = append(errors, ValidationError{"email", "is required"})
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		errors = append(errors, ValidationError{"email", "is invalid"})
	}

	if strings.TrimSpace(input.Postcode) == "" {
		errors = append(errors, ValidationError{"postcode", "is required"})
	} else if len(strings.TrimSpace(input.Postcode)) > 12 {
		errors = append(errors, ValidationError{"postcode", "is invalid"})
	}

	return errors
}

func isValidGender(gender string) bool {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case entity.GenderFemale, entity.GenderMale, entity.GenderNonBinary:
		return true
	}
	return false
}

func isValidPhoneNumber(phone string) bool {
	cleaned := nonDigits.ReplaceAllString(phone, "")
	return len(cleaned) >= 8 && len(cleaned) <= 15
}
