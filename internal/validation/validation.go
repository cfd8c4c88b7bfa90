// Package validation wires go-playground/validator with English messages and
// the amount rules shared by the bill form and the bill API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/kyawswar87/share-mal/internal/calculator"
)

// TagMinAmount accepts a string amount that parses to at least 0.01.
const TagMinAmount = "min_amount"

// TagNotBlank rejects strings made only of white space.
const TagNotBlank = "notblank"

// Validator bundles a validator with its translator.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

var (
	defaultValidator *Validator
	defaultOnce      sync.Once
	defaultErr       error
)

// Default returns the process-wide Validator, building it on first use.
func Default() (*Validator, error) {
	defaultOnce.Do(func() {
		defaultValidator, defaultErr = New()
	})
	return defaultValidator, defaultErr
}

// New builds a Validator that reports fields by their JSON names.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation(TagMinAmount, func(fl validator.FieldLevel) bool {
		d, err := calculator.ParseAmount(fl.Field().String())
		if err != nil {
			return false
		}
		return d.GreaterThanOrEqual(calculator.MinAmount)
	}); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", TagMinAmount, err)
	}

	if err := v.RegisterValidation(TagNotBlank, validators.NotBlank); err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", TagNotBlank, err)
	}

	eng := en.New()
	uni := ut.New(eng, eng)
	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("translator not found")
	}
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("failed to register translations: %w", err)
	}
	if err := v.RegisterTranslation(TagMinAmount, trans,
		func(ut ut.Translator) error {
			return ut.Add(TagMinAmount, "{0} must be at least {1}", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(TagMinAmount, fe.Field(), calculator.FormatAmount(calculator.MinAmount))
			return msg
		},
	); err != nil {
		return nil, fmt.Errorf("failed to register %s translation: %w", TagMinAmount, err)
	}

	if err := v.RegisterTranslation(TagNotBlank, trans,
		func(ut ut.Translator) error {
			return ut.Add(TagNotBlank, "{0} must not be blank", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(TagNotBlank, fe.Field())
			return msg
		},
	); err != nil {
		return nil, fmt.Errorf("failed to register %s translation: %w", TagNotBlank, err)
	}

	return &Validator{validate: v, trans: trans}, nil
}

// Engine exposes the underlying validator for struct-level registrations.
func (v *Validator) Engine() *validator.Validate { return v.validate }

// Struct validates s and returns the individual field failures, or nil.
// Errors that are not field failures (for example a nil struct) are returned
// as err.
func (v *Validator) Struct(s any) (validator.ValidationErrors, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs, nil
	}
	return nil, err
}

// Translate renders one field failure as an English sentence.
func (v *Validator) Translate(fe validator.FieldError) string {
	return fe.Translate(v.trans)
}

// FieldPath turns a validator namespace such as "formView.persons[0].name"
// into "persons[0].name" by dropping the root struct name.
func FieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
