package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

var barcodePattern = regexp.MustCompile(`^[0-9A-Za-z\-]{4,64}$`)

func InitValidator() {
	if Validate != nil {
		return
	}
	Validate = validator.New()
	_ = Validate.RegisterValidation("barcode", func(fl validator.FieldLevel) bool {
		return barcodePattern.MatchString(fl.Field().String())
	})
}
