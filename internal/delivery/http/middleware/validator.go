package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// StructValidator plugs validator/v10 into fiber's Bind.
type StructValidator struct {
	validate *validator.Validate
}

func NewStructValidator() *StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &StructValidator{validate: v}
}

func (s *StructValidator) Validate(out any) error {
	return s.validate.Struct(out)
}

// ValidationFields flattens validator errors into {field: rule}.
func ValidationFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if p := fe.Param(); p != "" {
			rule += "=" + p
		}
		out[fe.Field()] = rule
	}
	return out
}
