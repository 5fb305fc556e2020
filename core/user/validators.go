package user

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/signquick/signquick/core"
)

var (
	// password policy
	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to the username"
)

// RegisterValidators registers the NewUser struct validation and its translations.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(userStructValidation, NewUser{})
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// userStructValidation does struct level validation on NewUser.
func userStructValidation(sl validator.StructLevel) {
	if nu, ok := sl.Current().Interface().(NewUser); ok {
		validatePassword(nu.Password, nu.Username, sl)
	}
}

// validatePassword rejects passwords too similar to the username.
func validatePassword(pwd, uname string, sl validator.StructLevel) {
	if pwd == "" || uname == "" {
		return
	}
	ratio := difflib.NewMatcher(strings.Split(strings.ToLower(pwd), ""), strings.Split(strings.ToLower(uname), "")).QuickRatio()
	if ratio >= pwdMaxSim {
		sl.ReportError(pwd, "password", "Password", pwdAttrSimTag, "")
	}
}
