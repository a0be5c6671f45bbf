package event

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/theadruss/Clix-App/core"
)

var (
	eventStatusTag  = "eventstatus"
	eventStatusText = "invalid status"
)

// InitValidators registers the event validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(eventStatusTag, core.OneOfValidation(AllStatuses...))
	core.RegisterCustomTranslation(validate, translator, eventStatusTag, eventStatusText)
}
