package changeset

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "tenantry/pkg/domain-errors"
)

type ChangesetSuite struct {
	suite.Suite
}

func TestChangesetSuite(t *testing.T) {
	suite.Run(t, new(ChangesetSuite))
}

var emailFormat = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (s *ChangesetSuite) TestCast() {
	s.Run("keeps permitted keys that differ from data", func() {
		cs := New(map[string]any{"name": "Acme", "status": "active"}).
			Cast(map[string]any{"name": "Acme", "status": "deleted", "deleted_at": "now"}, "name", "status")

		s.False(cs.Changed("name"))
		s.True(cs.Changed("status"))
		s.False(cs.Changed("deleted_at"))
		s.True(cs.HasParam("name"))
		s.Equal(map[string]any{"status": "deleted"}, cs.Changes())
	})

	s.Run("casts blank strings to nil", func() {
		cs := New(map[string]any{"name": "Acme"}).Cast(map[string]any{"name": "   "}, "name")

		v, ok := cs.Change("name")
		s.True(ok)
		s.Nil(v)
	})

	s.Run("kept blank fields reach validators as supplied", func() {
		cs := New(nil).KeepBlank("password").
			Cast(map[string]any{"password": "   ", "name": ""}, "password", "name").
			ValidateLength("password", 8, 0)

		v, _ := cs.Change("password")
		s.Equal("   ", v)
		name, _ := cs.Change("name")
		s.Nil(name)
		s.False(cs.Valid())
		s.Equal(RuleLength, cs.Errors()[0].Rule)
	})

	s.Run("fetch falls back to data", func() {
		cs := New(map[string]any{"name": "Acme"}).Cast(map[string]any{"type": "basic"}, "type")

		s.Equal("Acme", cs.FetchString("name"))
		s.Equal("basic", cs.FetchString("type"))
		s.Equal("", cs.FetchString("missing"))
	})
}

func (s *ChangesetSuite) TestRulesAccumulateWithoutShortCircuit() {
	cs := New(nil).
		Cast(map[string]any{"email": "nope", "password": "short", "type": "robot"}, "email", "password", "type", "name").
		ValidateRequired("email", "name").
		ValidateFormat("email", emailFormat).
		ValidateLength("password", 8, 72).
		ValidateInclusion("type", "agent", "contact")

	s.False(cs.Valid())
	s.Equal([]dErrors.FieldError{
		{Field: "name", Rule: RuleRequired, Message: "can't be blank"},
		{Field: "email", Rule: RuleFormat, Message: "has invalid format"},
		{Field: "password", Rule: RuleLength, Message: "should be at least 8 character(s)"},
		{Field: "type", Rule: RuleInclusion, Message: "is invalid"},
	}, cs.Errors())

	err := cs.Err()
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Len(dErrors.Fields(err), 4)
}

func (s *ChangesetSuite) TestMultipleErrorsForOneFieldArePreserved() {
	cs := New(nil).
		Cast(map[string]any{"name": "x"}, "name").
		ValidateLength("name", 2, 0).
		AddError("name", "reserved", "is reserved")

	s.Len(cs.Errors(), 2)
	s.Equal("name", cs.Errors()[0].Field)
	s.Equal("name", cs.Errors()[1].Field)
}

func (s *ChangesetSuite) TestRulesIgnoreUnchangedFields() {
	cs := New(map[string]any{"email": "legacy-without-at"}).
		Cast(map[string]any{}, "email").
		ValidateFormat("email", emailFormat).
		ValidateRequired("email")

	s.True(cs.Valid())
	s.NoError(cs.Err())
}

func (s *ChangesetSuite) TestNonStringValuesFailCast() {
	cs := New(nil).
		Cast(map[string]any{"email": 42.0, "status": true}, "email", "status").
		ValidateFormat("email", emailFormat).
		ValidateInclusion("status", "active")

	s.Equal(RuleCast, cs.Errors()[0].Rule)
	s.Equal(RuleInclusion, cs.Errors()[1].Rule)
}

func (s *ChangesetSuite) TestValidateChange() {
	cs := New(nil).
		Cast(map[string]any{"timezone": "Mars/Olympus"}, "timezone").
		ValidateChange("timezone", func(v any) []dErrors.FieldError {
			return []dErrors.FieldError{{Field: "timezone", Rule: "timezone", Message: "is invalid"}}
		})

	s.Equal("timezone", cs.Errors()[0].Rule)
}

func (s *ChangesetSuite) TestDerivedChanges() {
	cs := New(map[string]any{"password_hash": "old"}).
		Cast(map[string]any{"password": "supersecret"}, "password")

	s.True(cs.Changed("password"))
	cs.PutChange("password_hash", "new").DeleteChange("password")

	s.Equal(map[string]any{"password_hash": "new"}, cs.Changes())
}

func (s *ChangesetSuite) TestMapConstraint() {
	s.Run("maps registered unique constraint onto field", func() {
		cs := New(nil).
			Cast(map[string]any{"email": "a@b.co"}, "email").
			UniqueConstraint("email", "users_email_key")

		err := cs.MapConstraint(&ConstraintViolation{Kind: Unique, Name: "users_email_key"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Equal([]dErrors.FieldError{{Field: "email", Rule: "unique", Message: "has already been taken"}}, dErrors.Fields(err))
	})

	s.Run("maps foreign key through wrapping", func() {
		cs := New(nil).ForeignKeyConstraint("role_id", "users_role_id_fkey")

		wrapped := errors.Join(errors.New("commit failed"), &ConstraintViolation{Kind: ForeignKey, Name: "users_role_id_fkey"})
		err := cs.MapConstraint(wrapped)
		s.Equal("role_id", dErrors.Fields(err)[0].Field)
		s.Equal("does not exist", dErrors.Fields(err)[0].Message)
	})

	s.Run("leaves unregistered violations alone", func() {
		cs := New(nil).UniqueConstraint("email", "users_email_key")
		violation := &ConstraintViolation{Kind: Unique, Name: "other"}

		s.Same(violation, cs.MapConstraint(violation))
	})

	s.Run("leaves unrelated errors alone", func() {
		boom := errors.New("boom")
		s.Same(boom, New(nil).MapConstraint(boom))
	})
}
