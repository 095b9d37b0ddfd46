package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
)

var (
	// custom validation tags & texts
	matriculeTag   = "matricule"
	matriculeText  = "only letters, digits and dashes are allowed"
	matriculeRegex = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

	requiredTag  = "required"
	requiredText = "this field is required"
)

// NewTranslator returns the english translator used to render validation errors.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use form (then JSON) tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	// register custom validators
	_ = validate.RegisterValidation(matriculeTag, matriculeValidation)
	RegisterCustomTranslation(validate, translator, matriculeTag, matriculeText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
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

// TranslateErrors flattens validation errors into field errors.
// Any other error is returned in a single FieldError without a field.
func TranslateErrors(err error, translator ut.Translator) []FieldError {
	switch vErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		fldErrs := make([]FieldError, 0, len(vErr))
		for _, fe := range vErr {
			fldErrs = append(fldErrs, FieldError{Field: fe.Field(), Error: fe.Translate(translator)})
		}
		return fldErrs
	case *ValidationError:
		if vErr.Fields != nil {
			return vErr.Fields
		}
	}
	return []FieldError{{Error: err.Error()}}
}

// Custom Global Validators

// matriculeValidation only allows alphanumeric characters and dashes.
func matriculeValidation(fl validator.FieldLevel) bool {
	return matriculeRegex.MatchString(fl.Field().String())
}
