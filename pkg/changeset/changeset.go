// Package changeset turns untrusted attribute maps into validated changes
// against a base entity state.
//
// Rules run in the order they are called and never short-circuit: every
// violated rule appends a field error, so callers can render all problems at
// once. Nothing is persisted here; stores consume Changes() after Err() is nil.
package changeset

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	dErrors "tenantry/pkg/domain-errors"
)

// Rule names reported in field errors.
const (
	RuleRequired  = "required"
	RuleFormat    = "format"
	RuleLength    = "length"
	RuleInclusion = "inclusion"
	RuleCast      = "cast"
)

// Changeset accumulates the permitted changes and rule violations for one mutation.
type Changeset struct {
	data        map[string]any
	params      map[string]any
	changes     map[string]any
	keepBlank   map[string]bool
	errors      []dErrors.FieldError
	constraints []constraint
}

// New wraps the current state of an entity. A nil map is a new entity.
func New(data map[string]any) *Changeset {
	if data == nil {
		data = map[string]any{}
	}
	return &Changeset{
		data:    data,
		params:  map[string]any{},
		changes: map[string]any{},
	}
}

// KeepBlank exempts fields from the blank-to-nil step of later Cast calls, so
// a blank value reaches the validators as supplied.
func (c *Changeset) KeepBlank(fields ...string) *Changeset {
	if c.keepBlank == nil {
		c.keepBlank = make(map[string]bool, len(fields))
	}
	for _, f := range fields {
		c.keepBlank[f] = true
	}
	return c
}

// Cast records every permitted key present in params whose value differs from
// the current data. Blank strings are cast to nil unless the field was passed
// to KeepBlank. Unknown keys are ignored.
func (c *Changeset) Cast(params map[string]any, permitted ...string) *Changeset {
	for _, field := range permitted {
		value, ok := params[field]
		if !ok {
			continue
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" && !c.keepBlank[field] {
			value = nil
		}
		c.params[field] = value
		if current, exists := c.data[field]; exists && reflect.DeepEqual(current, value) {
			continue
		}
		c.changes[field] = value
	}
	return c
}

// HasParam reports whether the request carried field, even if it did not change anything.
func (c *Changeset) HasParam(field string) bool {
	_, ok := c.params[field]
	return ok
}

// Fetch returns the pending change for field, falling back to the current data.
func (c *Changeset) Fetch(field string) (any, bool) {
	if v, ok := c.changes[field]; ok {
		return v, true
	}
	v, ok := c.data[field]
	return v, ok
}

// FetchString is Fetch for string-valued fields. Missing or non-string values return "".
func (c *Changeset) FetchString(field string) string {
	v, _ := c.Fetch(field)
	s, _ := v.(string)
	return s
}

// Change returns the pending change for field only.
func (c *Changeset) Change(field string) (any, bool) {
	v, ok := c.changes[field]
	return v, ok
}

// Changed reports whether field has a pending change.
func (c *Changeset) Changed(field string) bool {
	_, ok := c.changes[field]
	return ok
}

// PutChange sets a derived change, bypassing Cast.
func (c *Changeset) PutChange(field string, value any) *Changeset {
	c.changes[field] = value
	return c
}

// DeleteChange drops a pending change, e.g. a plaintext secret after hashing.
func (c *Changeset) DeleteChange(field string) *Changeset {
	delete(c.changes, field)
	return c
}

// Changes returns a copy of the pending changes.
func (c *Changeset) Changes() map[string]any {
	out := make(map[string]any, len(c.changes))
	for k, v := range c.changes {
		out[k] = v
	}
	return out
}

// AddError appends a rule violation.
func (c *Changeset) AddError(field, rule, message string) *Changeset {
	c.errors = append(c.errors, dErrors.FieldError{Field: field, Rule: rule, Message: message})
	return c
}

// ValidateRequired checks fields are present and non-blank after applying changes.
func (c *Changeset) ValidateRequired(fields ...string) *Changeset {
	for _, field := range fields {
		v, _ := c.Fetch(field)
		if isBlank(v) {
			c.AddError(field, RuleRequired, "can't be blank")
		}
	}
	return c
}

// ValidateFormat checks a changed string field against re.
func (c *Changeset) ValidateFormat(field string, re *regexp.Regexp) *Changeset {
	v, ok := c.Change(field)
	if !ok || v == nil {
		return c
	}
	s, isString := v.(string)
	if !isString {
		return c.AddError(field, RuleCast, "is invalid")
	}
	if !re.MatchString(s) {
		c.AddError(field, RuleFormat, "has invalid format")
	}
	return c
}

// ValidateLength checks the rune length of a changed string field.
// A zero bound is not enforced.
func (c *Changeset) ValidateLength(field string, minLen, maxLen int) *Changeset {
	v, ok := c.Change(field)
	if !ok || v == nil {
		return c
	}
	s, isString := v.(string)
	if !isString {
		return c.AddError(field, RuleCast, "is invalid")
	}
	n := utf8.RuneCountInString(s)
	if minLen > 0 && n < minLen {
		c.AddError(field, RuleLength, fmt.Sprintf("should be at least %d character(s)", minLen))
	}
	if maxLen > 0 && n > maxLen {
		c.AddError(field, RuleLength, fmt.Sprintf("should be at most %d character(s)", maxLen))
	}
	return c
}

// ValidateInclusion checks a changed field is one of allowed.
func (c *Changeset) ValidateInclusion(field string, allowed ...string) *Changeset {
	v, ok := c.Change(field)
	if !ok || v == nil {
		return c
	}
	s, isString := v.(string)
	if !isString || !slices.Contains(allowed, s) {
		c.AddError(field, RuleInclusion, "is invalid")
	}
	return c
}

// ValidateChange runs fn against a changed, non-nil field and appends whatever it reports.
func (c *Changeset) ValidateChange(field string, fn func(value any) []dErrors.FieldError) *Changeset {
	v, ok := c.Change(field)
	if !ok || v == nil {
		return c
	}
	c.errors = append(c.errors, fn(v)...)
	return c
}

// Valid reports whether no rule has been violated so far.
func (c *Changeset) Valid() bool {
	return len(c.errors) == 0
}

// Errors returns a copy of the accumulated field errors.
func (c *Changeset) Errors() []dErrors.FieldError {
	return slices.Clone(c.errors)
}

// Err returns a validation error carrying every field error, or nil.
func (c *Changeset) Err() error {
	if c.Valid() {
		return nil
	}
	return dErrors.Invalid(c.Errors())
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}
