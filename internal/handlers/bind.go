package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/models"
	"github.com/scentdesk/usage-backend/pkg/validator"
)

var formValidator = newFormValidator()

func newFormValidator() *validator.FormValidator {
	v := validator.New()
	if err := v.RegisterRule("gender", func(s string) bool {
		_, err := models.ParseGender(s)
		return err == nil
	}); err != nil {
		panic(err)
	}

	v.SetLabel("password1", "Password")
	v.SetLabel("password2", "Password confirmation")
	v.SetLabel("capacity_ml", "Capacity")
	v.SetLabel("image_url", "Image URL")
	v.SetMessage("gender", "Please select a valid gender.")
	return v
}

// bindForm decodes the submitted form into form and validates it. Failures
// are returned as apperrors validation errors carrying the form field name.
func bindForm(c *gin.Context, form interface{}) error {
	if err := c.ShouldBind(form); err != nil {
		return apperrors.Validation("", "The submitted form could not be read.")
	}

	if err := formValidator.Validate(form); err != nil {
		var fe *validator.FieldError
		if errors.As(err, &fe) {
			return apperrors.Validation(fe.Field, fe.Message)
		}
		return err
	}
	return nil
}
