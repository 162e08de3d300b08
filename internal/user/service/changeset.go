package service

import (
	"context"
	"fmt"

	"tenantry/internal/platform/tracer"
	"tenantry/internal/user/models"
	"tenantry/pkg/changeset"
	id "tenantry/pkg/domain"
	dErrors "tenantry/pkg/domain-errors"
	"tenantry/pkg/requestcontext"
	"tenantry/pkg/session"
	"tenantry/pkg/validation"
)

// Association keys accepted in attrs.
const (
	FieldWorkspaceIDs = "workspace_ids"
	FieldGroupIDs     = "group_ids"
)

// Business rule reported when a user would end up outside every workspace.
const RuleWorkspaceRequired = "workspace_required"

// Changeset validates attrs against existing (nil for a new user) and
// resolves the association sets the result must be stored with.
//
// Every rule contributes to the returned error list; none stops another.
// An account type outside the dispatch set fails with CodeUnsupportedType.
// Its field errors still include malformed association ids and an empty
// workspace list, but no eligibility filtering runs.
func (s *Service) Changeset(ctx context.Context, existing *models.User, attrs map[string]any, caller *session.Caller) (_ *models.UserChange, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanUserChangeset)
	defer func() { span.End(err) }()

	if caller == nil {
		return nil, dErrors.New(dErrors.CodeForbidden, "caller is required")
	}

	base := models.NewUser(caller.TenantID)
	current := models.Associations{}
	if existing != nil {
		base = existing
		current, err = s.users.Associations(ctx, existing.ID)
		if err != nil {
			return nil, wrapStoreErr(nil, err, "failed to load user associations")
		}
	}

	cs := models.Changeset(base, attrs)

	if err := s.hashSecrets(cs); err != nil {
		return nil, err
	}

	requestedWorkspaces := current.WorkspaceIDs
	if raw, ok := attrs[FieldWorkspaceIDs]; ok {
		requestedWorkspaces = parseIDs(cs, FieldWorkspaceIDs, raw, id.ParseWorkspaceID)
	}
	requestedGroups := current.GroupIDs
	if raw, ok := attrs[FieldGroupIDs]; ok {
		requestedGroups = parseIDs(cs, FieldGroupIDs, raw, id.ParseGroupID)
	}

	accountType := models.AccountType(cs.FetchString("type"))
	span.SetAttributes(tracer.String(tracer.AttrAccountType, string(accountType)))
	policy, ok := policyFor(accountType, s.directory)
	if !ok {
		if len(requestedWorkspaces) == 0 {
			addWorkspaceRequired(cs)
		}
		return nil, dErrors.WithFields(dErrors.CodeUnsupportedType,
			fmt.Sprintf("account type %q is not supported", accountType), cs.Errors())
	}

	workspaces, err := policy.EligibleWorkspaces(ctx, caller.TenantID, requestedWorkspaces)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve workspaces")
	}
	groups, err := policy.EligibleGroups(ctx, caller.TenantID, requestedGroups)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve groups")
	}

	if len(workspaces) == 0 {
		addWorkspaceRequired(cs)
	}

	if err := cs.Err(); err != nil {
		span.SetAttributes(tracer.Int(tracer.AttrFieldErrors, len(cs.Errors())))
		if s.metrics != nil {
			s.metrics.ObserveFieldErrors(dErrors.Fields(err))
		}
		return nil, err
	}

	return &models.UserChange{
		User:         models.Apply(base, cs, requestcontext.Now(ctx)),
		Associations: models.Associations{WorkspaceIDs: workspaces, GroupIDs: groups},
		Changeset:    cs,
	}, nil
}

func addWorkspaceRequired(cs *changeset.Changeset) {
	cs.AddError("user", RuleWorkspaceRequired, "must belong to at least one workspace")
}

// hashSecrets replaces each supplied plaintext secret with its hash. A secret
// that failed validation is dropped without hashing; one that was not
// supplied leaves the stored hash untouched.
func (s *Service) hashSecrets(cs *changeset.Changeset) error {
	for plain, hashField := range models.SecretFields {
		v, ok := cs.Change(plain)
		if !ok {
			continue
		}
		cs.DeleteChange(plain)
		secret, isString := v.(string)
		if !isString || secret == "" || hasFieldError(cs, plain) {
			continue
		}
		hash, err := s.hasher.Hash(secret)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash "+plain)
		}
		cs.PutChange(hashField, hash)
	}
	return nil
}

func hasFieldError(cs *changeset.Changeset, field string) bool {
	for _, fe := range cs.Errors() {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// parseIDs reads a list of id strings. Malformed entries and lists longer
// than validation.MaxAssociationIDs are reported on field.
func parseIDs[T any](cs *changeset.Changeset, field string, raw any, parse func(string) (T, error)) []T {
	var items []any
	switch v := raw.(type) {
	case nil:
	case []any:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	default:
		cs.AddError(field, changeset.RuleCast, "must be a list of ids")
		return nil
	}
	if len(items) > validation.MaxAssociationIDs {
		cs.AddError(field, changeset.RuleLength, fmt.Sprintf("should have at most %d item(s)", validation.MaxAssociationIDs))
		return nil
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		s, _ := item.(string)
		parsed, err := parse(s)
		if err != nil {
			cs.AddError(field, changeset.RuleCast, fmt.Sprintf("contains an invalid id %q", s))
			continue
		}
		out = append(out, parsed)
	}
	return out
}
