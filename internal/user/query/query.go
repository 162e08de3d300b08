package query

import (
	sq "github.com/Masterminds/squirrel"

	id "tenantry/pkg/domain"
)

// Columns selected for a user row, in scan order.
var Columns = []string{
	"users.id",
	"users.tenant_id",
	"users.role_id",
	"users.type",
	"users.status",
	"users.email",
	"users.name",
	"users.username",
	"users.basic_auth_password_hash",
	"users.password_hash",
	"users.locale",
	"users.timezone",
	"users.phone",
	"users.provider",
	"users.deleted_at",
	"users.created_at",
	"users.updated_at",
}

// Query is a complete listing request.
type Query struct {
	Filter Filter
	Sort   Sort
	Page   Page
}

// New builds a query with the default sort and page.
func New(filter Filter, sort Sort, page Page) Query {
	if sort.Field == "" {
		sort = DefaultSort
	}
	return Query{Filter: filter, Sort: sort, Page: page.Normalize()}
}

// Base selects the live users of tenantID joined to their workspace
// memberships. The join fans out one row per membership, so rows are grouped
// by the primary key to return each user once.
func Base(tenantID id.TenantID) sq.SelectBuilder {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(Columns...).
		From("users").
		LeftJoin("user_workspaces uw ON uw.user_id = users.id").
		Where(sq.Eq{"users.tenant_id": tenantID.String()}).
		Where(sq.Eq{"users.deleted_at": nil}).
		GroupBy("users.id")
}

// ToSQL renders the full listing statement for tenantID.
func (q Query) ToSQL(tenantID id.TenantID) (string, []any, error) {
	page := q.Page.Normalize()
	b := q.Filter.Apply(Base(tenantID))
	b = q.Sort.Apply(b)
	return b.Limit(uint64(page.Limit)).Offset(uint64(page.Offset)).ToSql()
}
