package handler

import (
	"net/url"
	"strconv"
	"strings"

	"tenantry/internal/user/query"
	dErrors "tenantry/pkg/domain-errors"
	"tenantry/pkg/validation"
)

// ListUsersRequest is read from the query string of GET /users. List filters
// accept repeated keys or comma-separated values.
type ListUsersRequest struct {
	Email        string   `query:"email"`
	Name         string   `query:"name"`
	Status       []string `query:"status"`
	Type         []string `query:"type"`
	WorkspaceIDs []string `query:"workspace_ids" validate:"max=100,dive,uuid"`
	Sort         string   `query:"sort"`
	Direction    string   `query:"direction"`
	Limit        int      `query:"limit" validate:"limit"`
	Offset       int      `query:"offset" validate:"min=0"`
}

func parseListUsersRequest(values url.Values) (*ListUsersRequest, error) {
	req := &ListUsersRequest{
		Email:        values.Get("email"),
		Name:         values.Get("name"),
		Status:       list(values, "status"),
		Type:         list(values, "type"),
		WorkspaceIDs: list(values, "workspace_ids"),
		Sort:         values.Get("sort"),
		Direction:    values.Get("direction"),
	}
	var err error
	if req.Limit, err = intParam(values, "limit"); err != nil {
		return nil, err
	}
	if req.Offset, err = intParam(values, "offset"); err != nil {
		return nil, err
	}
	return req, nil
}

func list(values url.Values, key string) []string {
	var out []string
	for _, v := range values[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intParam(values url.Values, key string) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.Invalid([]dErrors.FieldError{{Field: key, Rule: "integer", Message: key + " must be an integer"}})
	}
	return n, nil
}

func (r *ListUsersRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

func (r *ListUsersRequest) Validate() error {
	return validation.Validate(r)
}

// Query converts the request into a listing query. Filters go through
// query.ParseFilter so absent values stay no-ops.
func (r *ListUsersRequest) Query() query.Query {
	raw := map[string]any{
		"email":         r.Email,
		"name":          r.Name,
		"status":        r.Status,
		"type":          r.Type,
		"workspace_ids": r.WorkspaceIDs,
	}
	page := query.Page{Limit: r.Limit, Offset: r.Offset}
	return query.New(query.ParseFilter(raw), query.ParseSort(r.Sort, r.Direction), page)
}
