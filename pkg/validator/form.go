package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// FieldError describes the first form field that failed validation
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// FormValidator validates bound form structs using their `validate` tags and
// reports failures with the `form` tag name of the field
type FormValidator struct {
	validate *playground.Validate
	labels   map[string]string
	messages map[string]string
}

// New creates a new form validator
func New() *FormValidator {
	v := playground.New()
	v.RegisterTagNameFunc(formFieldName)

	return &FormValidator{
		validate: v,
		labels:   make(map[string]string),
		messages: make(map[string]string),
	}
}

func formFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}

// RegisterRule adds a custom tag that checks a string field
func (v *FormValidator) RegisterRule(tag string, check func(string) bool) error {
	return v.validate.RegisterValidation(tag, func(fl playground.FieldLevel) bool {
		return check(fl.Field().String())
	})
}

// SetLabel sets the human-readable name used in messages for field
func (v *FormValidator) SetLabel(field, label string) {
	v.labels[field] = label
}

// SetMessage replaces every generated message for field
func (v *FormValidator) SetMessage(field, message string) {
	v.messages[field] = message
}

// Validate checks form and returns a *FieldError for the first failing field
func (v *FormValidator) Validate(form interface{}) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	return &FieldError{
		Field:   fe.Field(),
		Tag:     fe.Tag(),
		Message: v.message(fe),
	}
}

func (v *FormValidator) message(fe playground.FieldError) string {
	if msg, ok := v.messages[fe.Field()]; ok {
		return msg
	}

	label := v.label(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "email":
		return "Enter a valid email address."
	case "url":
		return "Enter a valid URL."
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}

func (v *FormValidator) label(field string) string {
	if label, ok := v.labels[field]; ok {
		return label
	}
	label := strings.ReplaceAll(field, "_", " ")
	if label == "" {
		return "Field"
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
