package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	notBlankTag  = "notblank"
	notBlankText = "this field cannot be blank"

	clientIDTag   = "clientid"
	clientIDText  = "invalid identifier"
	clientIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

	assistKindTag  = "assistkind"
	assistKindText = "{0} must be one of: description, tagline, poster_idea"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)

	_ = validate.RegisterValidation(clientIDTag, clientIDValidation)
	RegisterCustomTranslation(validate, translator, clientIDTag, clientIDText)

	_ = validate.RegisterValidation(assistKindTag, OneOfValidation(AssistKinds...))
	RegisterCustomTranslation(validate, translator, assistKindTag, assistKindText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// OneOfValidation returns a validator.Func accepting only the given string values.
func OneOfValidation(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return ContainsString(values, fl.Field().String())
	}
}

// Custom Global Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// clientIDValidation accepts identifiers generated on clients (e.g. comment ids).
func clientIDValidation(fl validator.FieldLevel) bool {
	return clientIDRegex.MatchString(fl.Field().String())
}
