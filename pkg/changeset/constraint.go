package changeset

import (
	"errors"
	"fmt"

	dErrors "tenantry/pkg/domain-errors"
)

// ConstraintKind identifies the storage constraint family.
type ConstraintKind string

const (
	Unique     ConstraintKind = "unique"
	ForeignKey ConstraintKind = "foreign_key"
)

// ConstraintViolation is returned by stores when a commit trips a named constraint.
type ConstraintViolation struct {
	Kind ConstraintKind
	Name string
	Err  error
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("%s constraint %q violated", e.Kind, e.Name)
}

func (e *ConstraintViolation) Unwrap() error {
	return e.Err
}

type constraint struct {
	kind    ConstraintKind
	name    string
	field   string
	message string
}

// UniqueConstraint maps a storage unique constraint back onto field.
func (c *Changeset) UniqueConstraint(field, name string) *Changeset {
	c.constraints = append(c.constraints, constraint{kind: Unique, name: name, field: field, message: "has already been taken"})
	return c
}

// ForeignKeyConstraint maps a storage foreign key constraint back onto field.
func (c *Changeset) ForeignKeyConstraint(field, name string) *Changeset {
	c.constraints = append(c.constraints, constraint{kind: ForeignKey, name: name, field: field, message: "does not exist"})
	return c
}

// MapConstraint translates a registered ConstraintViolation into the same
// validation error shape Err() produces. Unregistered violations and other
// errors are returned unchanged.
func (c *Changeset) MapConstraint(err error) error {
	var violation *ConstraintViolation
	if !errors.As(err, &violation) {
		return err
	}
	for _, k := range c.constraints {
		if k.kind == violation.Kind && k.name == violation.Name {
			fields := append(c.Errors(), dErrors.FieldError{Field: k.field, Rule: string(k.kind), Message: k.message})
			return dErrors.Invalid(fields)
		}
	}
	return err
}
