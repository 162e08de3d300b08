// Package validation checks decoded request structs with go-playground's
// validator and reports failures as domain field errors.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "tenantry/pkg/domain-errors"
)

const (
	// MaxBodySize caps request bodies at 64 KiB.
	MaxBodySize = 64 << 10

	// MaxAssociationIDs caps workspace_ids and group_ids per request.
	MaxAssociationIDs = 100
)

var std = build()

func build() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(wireName)
	v.RegisterAlias("limit", "min=0,max=200")
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// wireName reports a field under the name clients send: the query tag, then
// the json tag, then the lower-cased Go name.
func wireName(f reflect.StructField) string {
	for _, key := range []string{"query", "json"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return strings.ToLower(f.Name)
}

// Validate checks req and returns every failing field at once, in the
// shape changesets use.
func Validate(req any) error {
	err := std.Struct(req)
	if err == nil {
		return nil
	}
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request")
	}
	fields := make([]dErrors.FieldError, len(failures))
	for i, fe := range failures {
		fields[i] = dErrors.FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: message(fe),
		}
	}
	return dErrors.Invalid(fields)
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "uuid":
		return name + " must be a valid uuid"
	case "min":
		return name + " must be at least " + fe.Param()
	case "max":
		return name + " must be at most " + fe.Param()
	case "oneof":
		return name + " must be one of [" + fe.Param() + "]"
	case "notblank":
		return name + " must not be blank"
	case "limit":
		return name + " must be between 0 and 200"
	}
	return name + " is invalid"
}
