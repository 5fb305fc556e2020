package pricing

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/signquick/signquick/core"
)

var (
	calcTypeTag  = "calctype"
	calcTypeText = "{0} must be one of unit, m2 or char"

	unitTypeTag  = "unittype"
	unitTypeText = "{0} must be one of ea, m or m2"
)

// RegisterValidators registers the calctype and unittype tags.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(calcTypeTag, calcTypeValidation)
	core.RegisterCustomTranslation(validate, translator, calcTypeTag, calcTypeText)

	_ = validate.RegisterValidation(unitTypeTag, unitTypeValidation)
	core.RegisterCustomTranslation(validate, translator, unitTypeTag, unitTypeText)
}

func calcTypeValidation(fl validator.FieldLevel) bool {
	_, ok := ParseCalcType(fl.Field().String())
	return ok
}

func unitTypeValidation(fl validator.FieldLevel) bool {
	_, ok := ParseUnitType(fl.Field().String())
	return ok
}
