package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSubmitLeadInputAcceptsCompleteInput(t *testing.T) {
	errs := ValidateSubmitLeadInput(validInput())
	assert.Empty(t, errs)
}

func TestValidateSubmitLeadInput(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*SubmitLeadInput)
		wantField string
	}{
		{"missing first name", func(in *SubmitLeadInput) { in.FirstName = "  " }, "first_name"},
		{"first name too long", func(in *SubmitLeadInput) { in.FirstName = strings.Repeat("a", 101) }, "first_name"},
		{"missing last name", func(in *SubmitLeadInput) { in.LastName = "" }, "last_name"},
		{"below minimum age", func(in *SubmitLeadInput) { in.Age = MinAge - 1 }, "age"},
		{"implausible age", func(in *SubmitLeadInput) { in.Age = 121 }, "age"},
		{"unknown gender", func(in *SubmitLeadInput) { in.Gender = "other" }, "gender"},
		{"missing phone", func(in *SubmitLeadInput) { in.Phone = "" }, "phone"},
		{"phone too short", func(in *SubmitLeadInput) { in.Phone = "12345" }, "phone"},
		{"phone too long", func(in *SubmitLeadInput) { in.Phone = "1234567890123456" }, "phone"},
		{"missing email", func(in *SubmitLeadInput) { in.Email = "" }, "email"},
		{"malformed email", func(in *SubmitLeadInput) { in.Email = "not-an-address" }, "email"},
		{"missing postcode", func(in *SubmitLeadInput) { in.Postcode = "" }, "postcode"},
		{"postcode too long", func(in *SubmitLeadInput) { in.Postcode = "1234567890123" }, "postcode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			errs := ValidateSubmitLeadInput(input)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

func TestValidateSubmitLeadInputAgeBoundary(t *testing.T) {
	input := validInput()
	input.Age = MinAge
	assert.Empty(t, ValidateSubmitLeadInput(input), "exactly the minimum age is accepted")
}

func TestValidatePhoneAcceptsFormattedNumbers(t *testing.T) {
	for _, phone := range []string{"+44 7700 900123", "(020) 7946-0958", "07700900123"} {
		input := validInput()
		input.Phone = phone
		assert.Empty(t, ValidateSubmitLeadInput(input), phone)
	}
}

func TestValidateGenderIsCaseInsensitive(t *testing.T) {
	input := validInput()
	input.Gender = "Female"
	assert.Empty(t, ValidateSubmitLeadInput(input))
}
