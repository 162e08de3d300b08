// Package query composes the filter, sort and page parts of a user listing.
// Each part renders both to SQL (squirrel) and to an in-memory predicate or
// comparator so every store shares one definition.
package query

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"tenantry/internal/user/models"
	id "tenantry/pkg/domain"
)

// Filter narrows a listing. Zero values are no-ops.
type Filter struct {
	Email        string
	Name         string
	Statuses     []string
	Types        []string
	WorkspaceIDs []id.WorkspaceID
}

// ParseFilter reads the recognized keys of raw. Email and name apply when
// they are non-blank strings; status, type and workspace_ids apply only as
// non-empty lists. Anything else is ignored rather than rejected.
func ParseFilter(raw map[string]any) Filter {
	var f Filter
	f.Email = substring(raw["email"])
	f.Name = substring(raw["name"])
	f.Statuses = lowered(stringList(raw["status"]))
	f.Types = lowered(stringList(raw["type"]))
	for _, v := range stringList(raw["workspace_ids"]) {
		if wid, err := id.ParseWorkspaceID(v); err == nil {
			f.WorkspaceIDs = append(f.WorkspaceIDs, wid)
		}
	}
	return f
}

func substring(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func stringList(v any) []string {
	var items []any
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	case []any:
		items = t
	}
	var out []string
	for _, item := range items {
		if s := substring(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lowered(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToLower(v)
	}
	return values
}

// IsZero reports whether the filter matches every user.
func (f Filter) IsZero() bool {
	return f.Email == "" && f.Name == "" && len(f.Statuses) == 0 && len(f.Types) == 0 && len(f.WorkspaceIDs) == 0
}

// Apply adds the filter predicates to b.
func (f Filter) Apply(b sq.SelectBuilder) sq.SelectBuilder {
	if f.Email != "" {
		b = b.Where(sq.ILike{"users.email": likePattern(f.Email)})
	}
	if f.Name != "" {
		b = b.Where(sq.ILike{"users.name": likePattern(f.Name)})
	}
	if len(f.Statuses) > 0 {
		b = b.Where(sq.Eq{"users.status": f.Statuses})
	}
	if len(f.Types) > 0 {
		b = b.Where(sq.Eq{"users.type": f.Types})
	}
	if len(f.WorkspaceIDs) > 0 {
		ids := make([]string, len(f.WorkspaceIDs))
		for i, wid := range f.WorkspaceIDs {
			ids[i] = wid.String()
		}
		b = b.Where(sq.Eq{"uw.workspace_id": ids})
	}
	return b
}

// Match is the in-memory form of Apply.
func (f Filter) Match(u *models.User, assoc models.Associations) bool {
	if f.Email != "" && !containsFold(u.Email, f.Email) {
		return false
	}
	if f.Name != "" && !containsFold(u.Name, f.Name) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, string(u.Status)) {
		return false
	}
	if len(f.Types) > 0 && !contains(f.Types, string(u.Type)) {
		return false
	}
	if len(f.WorkspaceIDs) > 0 && !overlaps(f.WorkspaceIDs, assoc.WorkspaceIDs) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func overlaps(want, have []id.WorkspaceID) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
