package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"voicebooking/internal/slots"
	"voicebooking/pkg/logger"
	"voicebooking/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

const (
	TagCallerPhone = "callerphone"
	TagSlotDate    = "slotdate"
	TagSlotTime    = "slottime"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// HasField reports whether any failure is on the given field.
func (v ValidationErrors) HasField(field string) bool {
	for _, err := range v {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Validator checks records before persistence and tool inputs before dispatch.
// Field names in errors are the json names.
type Validator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func New(log *logger.Logger) *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)

	custom := map[string]validator.Func{
		TagCallerPhone: validateCallerPhone,
		TagSlotDate:    validateSlotDate,
		TagSlotTime:    validateSlotTime,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatal("Failed to register validator", "tag", tag, "error", err)
		}
	}

	return &Validator{
		validate: v,
		logger:   log,
	}
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

func validateCallerPhone(fl validator.FieldLevel) bool {
	return sanitizer.IsValidPhone(fl.Field().String())
}

func validateSlotDate(fl validator.FieldLevel) bool {
	return slots.IsValidDate(fl.Field().String())
}

func validateSlotTime(fl validator.FieldLevel) bool {
	_, ok := slots.NormalizeTime(fl.Field().String())
	return ok
}

func (v *Validator) Validate(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *Validator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "uuid":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case TagCallerPhone:
			message = fmt.Sprintf("%s must contain %d to %d digits", err.Field(), sanitizer.MinPhoneDigits, sanitizer.MaxPhoneDigits)
		case TagSlotDate:
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case TagSlotTime:
			message = fmt.Sprintf("%s must be one of the appointment times: %s", err.Field(), strings.Join(slots.Times(), ", "))
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
