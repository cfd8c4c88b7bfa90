package draft

import (
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kyawswar87/share-mal/internal/validation"
	"github.com/kyawswar87/share-mal/pkg/api"
)

// FieldErrors maps a form field path ("title", "persons[1].amount") to the
// message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	paths := make([]string, 0, len(fe))
	for p := range fe {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	parts := make([]string, len(paths))
	for i, p := range paths {
		parts[i] = p + ": " + fe[p]
	}
	return strings.Join(parts, "; ")
}

type formView struct {
	Title       string       `json:"title" validate:"required,notblank,max=255"`
	TotalAmount string       `json:"totalAmount" validate:"required,min_amount"`
	BillDate    string       `json:"billDate" validate:"required,datetime=2006-01-02"`
	Persons     []personView `json:"persons" validate:"min=1,dive"`
}

type personView struct {
	Name   string `json:"name" validate:"required,notblank,max=100"`
	Amount string `json:"amount" validate:"omitempty,min_amount"`
	custom bool
}

// messages overrides the translator for the form's own wording, keyed by
// field name then validation tag.
var messages = map[string]map[string]string{
	"title": {
		"required":             "Bill title is required",
		validation.TagNotBlank: "Bill title is required",
		"max":                  "Title must be no more than 255 characters",
	},
	"totalAmount": {
		"required":              "Total amount is required",
		validation.TagMinAmount: "Amount must be at least $0.01",
	},
	"billDate": {
		"required": "Bill date is required",
	},
	"persons": {
		"min": "At least one person is required",
	},
	"name": {
		"required":             "Person name is required",
		validation.TagNotBlank: "Person name is required",
		"max":                  "Name must be no more than 100 characters",
	},
	"amount": {
		"required":              "Amount is required for custom split",
		validation.TagMinAmount: "Amount must be at least $0.01",
	},
}

var (
	formOnce      sync.Once
	formValidator *validation.Validator
	formErr       error
)

func validatorForForm() (*validation.Validator, error) {
	formOnce.Do(func() {
		formValidator, formErr = validation.New()
		if formErr != nil {
			return
		}
		formValidator.Engine().RegisterStructValidation(func(sl validator.StructLevel) {
			p := sl.Current().Interface().(personView)
			if p.custom && strings.TrimSpace(p.Amount) == "" {
				sl.ReportError(p.Amount, "amount", "Amount", "required", "")
			}
		}, personView{})
	})
	return formValidator, formErr
}

// Validate runs the field-level checks that must pass before the draft is
// submitted. It returns nil when the draft is valid.
//
// Custom shares are checked one by one; their sum is not compared with the
// total here.
func (d Draft) Validate() FieldErrors {
	v, err := validatorForForm()
	if err != nil {
		return FieldErrors{"form": err.Error()}
	}

	custom := d.Strategy == api.OperatorCustom
	view := formView{
		Title:       d.Title,
		TotalAmount: d.TotalAmount,
		BillDate:    d.BillDate,
		Persons:     make([]personView, len(d.Participants)),
	}
	for i, p := range d.Participants {
		view.Persons[i] = personView{Name: p.Name, custom: custom}
		if custom {
			view.Persons[i].Amount = p.Share
		}
	}

	fieldErrs, err := v.Struct(view)
	if err != nil {
		return FieldErrors{"form": err.Error()}
	}
	if len(fieldErrs) == 0 {
		return nil
	}

	out := make(FieldErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[validation.FieldPath(fe)] = message(v, fe)
	}
	return out
}

func message(v *validation.Validator, fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()][fe.Tag()]; ok {
		return msg
	}
	return v.Translate(fe)
}
