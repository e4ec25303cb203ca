// Package validation runs declarative rule chains over request fields.
//
// A RuleSet is an ordered list of chains, one per field. A chain is an ordered
// list of steps: normalizers rewrite the value, checks are go-playground
// validator tags. The first failing check of a chain ends that chain; the other
// chains still run, so one call reports every invalid field.
package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/domain"
	"github.com/sysu-ecnc-dev/task-tracker/backend/internal/utils"
)

// Input binds field names to the request values a rule set reads and rewrites.
// A field missing from Input is validated as the empty string.
type Input map[string]*string

type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	en := en.New()
	uni := ut.New(en, en)
	trans, _ := uni.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	custom := []struct {
		tag  string
		fn   validator.Func
		text string
	}{
		{"strongpassword", isStrongPassword, "{0} must contain at least one lowercase letter, one uppercase letter, and one number"},
		{"iso8601", isISO8601, "{0} must be a valid ISO 8601 date"},
	}
	for _, c := range custom {
		if err := validate.RegisterValidation(c.tag, c.fn); err != nil {
			return nil, err
		}
		if err := validate.RegisterTranslation(c.tag, trans, registerText(c.tag, c.text), translate(c.tag)); err != nil {
			return nil, err
		}
	}

	return &Validator{
		validate:   validate,
		translator: trans,
	}, nil
}

// Run applies rs to in. Normalized values are written back into in.
// The returned errors follow the field order of rs.
func (v *Validator) Run(rs RuleSet, in Input) []domain.FieldError {
	var errs []domain.FieldError

	for _, c := range rs.chains {
		ptr := in[c.field]
		value := ""
		if ptr != nil {
			value = *ptr
		}

		// blank counts as absent for optional fields
		if c.optional && strings.TrimSpace(value) == "" {
			if ptr != nil {
				*ptr = ""
			}
			continue
		}

		msg, ok := v.runChain(c, &value)
		if ptr != nil {
			*ptr = value
		}
		if !ok {
			errs = append(errs, domain.FieldError{Field: c.field, Message: msg})
		}
	}

	return errs
}

// Validate is Run that folds the errors into a ValidationFailed error.
func (v *Validator) Validate(rs RuleSet, in Input) error {
	if errs := v.Run(rs, in); len(errs) > 0 {
		return domain.ValidationFailed(errs)
	}
	return nil
}

func (v *Validator) runChain(c *Chain, value *string) (string, bool) {
	for _, s := range c.steps {
		if s.normalize != nil {
			*value = s.normalize(*value)
			continue
		}

		if err := v.validate.Var(*value, s.tag); err != nil {
			if s.message != "" {
				return s.message, false
			}
			return v.translate(c.field, err), false
		}
	}
	return "", true
}

// translate renders a validator error the way the handler shows it when a
// check carries no message of its own.
func (v *Validator) translate(field string, err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return err.Error()
	}
	return field + " " + strings.TrimSpace(validationErrors[0].Translate(v.translator))
}

func isStrongPassword(fl validator.FieldLevel) bool {
	return utils.IsStrongPassword(fl.Field().String())
}

func isISO8601(fl validator.FieldLevel) bool {
	_, err := utils.ParseDueDate(fl.Field().String())
	return err == nil
}

func registerText(tag, text string) validator.RegisterTranslationsFunc {
	return func(ut ut.Translator) error {
		return ut.Add(tag, text, true)
	}
}

func translate(tag string) validator.TranslationFunc {
	return func(ut ut.Translator, fe validator.FieldError) string {
		t, _ := ut.T(tag, fe.Field())
		return t
	}
}
