package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ActivityValidator wraps go-playground validator with activity-input rules
type ActivityValidator struct {
	validate *validator.Validate
}

// NewActivityValidator creates a validator with the day_hours rule registered
func NewActivityValidator() *ActivityValidator {
	v := validator.New()

	// day_hours bounds an hour count to a single calendar day
	v.RegisterValidation("day_hours", validateDayHours)

	return &ActivityValidator{validate: v}
}

// Validate validates a struct and returns a caller-friendly error listing
// every failed field.
func (av *ActivityValidator) Validate(i interface{}) error {
	err := av.validate.Struct(i)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("invalid activity input: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "min", "gte":
		return fmt.Sprintf("%s must not be negative", field)
	case "day_hours":
		return fmt.Sprintf("%s must be between 0 and 24", field)
	case "required":
		return fmt.Sprintf("%s is required", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

func validateDayHours(fl validator.FieldLevel) bool {
	hours := fl.Field().Float()
	return hours >= 0 && hours <= 24
}
