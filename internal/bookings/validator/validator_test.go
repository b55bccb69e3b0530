package validator

import (
	"errors"
	"testing"

	"voicebooking/pkg/logger"
	"voicebooking/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotInput struct {
	Phone string `json:"phone" validate:"required,callerphone"`
	Date  string `json:"date" validate:"required,slotdate"`
	Time  string `json:"time" validate:"required,slottime"`
}

func TestValidator_CustomTags(t *testing.T) {
	v := New(logger.Discard())

	tests := []struct {
		name       string
		input      slotInput
		wantFields []string
	}{
		{
			name:  "valid spoken forms",
			input: slotInput{Phone: "(555) 123-4567", Date: "2025-03-10", Time: "2 pm"},
		},
		{
			name:       "short phone",
			input:      slotInput{Phone: "555-1234", Date: "2025-03-10", Time: "09:00"},
			wantFields: []string{"phone"},
		},
		{
			name:       "bad date and time",
			input:      slotInput{Phone: "5551234567", Date: "March 10", Time: "13:00"},
			wantFields: []string{"date", "time"},
		},
		{
			name:       "missing everything",
			input:      slotInput{},
			wantFields: []string{"phone", "date", "time"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs))
			assert.Len(t, verrs, len(tt.wantFields))
			for _, field := range tt.wantFields {
				assert.True(t, verrs.HasField(field), "expected failure on %s", field)
			}
		})
	}
}

func TestValidator_Messages(t *testing.T) {
	v := New(logger.Discard())

	err := v.Validate(slotInput{Phone: "123", Date: "2025-03-10", Time: "noon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phone must contain 10 to 15 digits")
	assert.Contains(t, err.Error(), "time must be one of the appointment times: 09:00, 10:00, 11:00, 14:00, 15:00, 16:00")
}

func TestValidator_Models(t *testing.T) {
	v := New(logger.Discard())

	err := v.Validate(model.Caller{ID: "not-a-uuid", ContactNumber: "5551234567"})
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.HasField("id"))
	assert.Contains(t, err.Error(), "id must be a valid UUID")
}
