// Package validation configures form validation with human readable messages.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

var texts = map[string]string{
	"required": "{0}: обязательное поле.",
	"email":    "{0}: некорректный адрес электронной почты.",
	"datetime": "{0}: неверный формат даты. Используйте ГГГГ-ММ-ДД.",
	"max":      "{0}: не длиннее {1} символов.",
	"number":   "{0}: должно быть целым числом.",
	"excludes": "{0}: не должно содержать «{1}».",
}

// New builds a validator whose errors translate to the messages shown in forms.
// Field names come from the `label` struct tag.
func New() (*validator.Validate, ut.Translator) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	locale := ru.New()
	uni := ut.New(locale, locale)
	translator, _ := uni.GetTranslator("ru")

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	for tag, text := range texts {
		registerTranslation(validate, translator, tag, text)
	}

	return validate, translator
}

func registerTranslation(validate *validator.Validate, translator ut.Translator, tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, err := t.T(tag, fe.Field(), fe.Param())
			if err != nil {
				return fe.Error()
			}
			return s
		},
	)
}

// Messages flattens a validation error into translated messages. Errors that
// are not validator errors are returned as their text.
func Messages(err error, translator ut.Translator) []string {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		out = append(out, fe.Translate(translator))
	}
	return out
}

// IsValidationError reports whether err carries validator field errors.
func IsValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}
