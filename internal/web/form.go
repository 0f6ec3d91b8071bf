package web

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// error messages use the human label of the field
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		return field.Name
	})
	// max counts runes; maxbytes bounds the encoded length, as bcrypt does
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// FormValue returns the trimmed value of a form field; the form is parsed on first use
func FormValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// ValidateForm validates the struct tags of form and returns one spanish message per failing field
func ValidateForm(form any) []string {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return []string{"Formulario inválido."}
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, validationMessage(fe))
	}
	return messages
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("El campo %s es obligatorio.", fe.Field())
	case "url":
		return fmt.Sprintf("El campo %s debe ser una URL válida.", fe.Field())
	case "email":
		return fmt.Sprintf("El campo %s debe ser un email válido.", fe.Field())
	case "max":
		return fmt.Sprintf("El campo %s es demasiado largo.", fe.Field())
	case "maxbytes":
		return fmt.Sprintf("El campo %s no puede superar los %s caracteres.", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("El campo %s es inválido.", fe.Field())
	}
}
