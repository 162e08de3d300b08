package query

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"tenantry/internal/user/models"
)

type SortField string

const (
	SortCreated SortField = "created"
	SortEmail   SortField = "email"
	SortName    SortField = "name"
	SortStatus  SortField = "status"
	SortUpdated SortField = "updated"
	SortType    SortField = "type"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// DefaultSort is case-insensitive name, ascending.
var DefaultSort = Sort{Field: SortName, Direction: Asc}

type Sort struct {
	Field     SortField
	Direction Direction
}

// ParseSort accepts only the closed field and direction sets; anything else
// falls back to DefaultSort.
func ParseSort(field, direction string) Sort {
	f := SortField(strings.ToLower(strings.TrimSpace(field)))
	d := Direction(strings.ToLower(strings.TrimSpace(direction)))
	switch f {
	case SortCreated, SortEmail, SortName, SortStatus, SortUpdated, SortType:
	default:
		return DefaultSort
	}
	if d != Asc && d != Desc {
		return DefaultSort
	}
	return Sort{Field: f, Direction: d}
}

// key is one ORDER BY term.
type key struct {
	column    string
	direction Direction
	value     func(u *models.User) string
	less      func(a, b *models.User) bool
}

func lowerName(u *models.User) string {
	return strings.ToLower(u.Name)
}

func (s Sort) keys() []key {
	nameKey := func(d Direction) key {
		return key{column: "lower(users.name)", direction: d, value: lowerName}
	}
	createdKey := func(d Direction) key {
		return key{column: "users.created_at", direction: d, less: func(a, b *models.User) bool { return a.CreatedAt.Before(b.CreatedAt) }}
	}

	switch s.Field {
	case SortCreated:
		return []key{createdKey(s.Direction)}
	case SortUpdated:
		return []key{{column: "users.updated_at", direction: s.Direction, less: func(a, b *models.User) bool { return a.UpdatedAt.Before(b.UpdatedAt) }}}
	case SortEmail:
		if s.Direction == Desc {
			// Descending email orders by creation time. Kept for compatibility
			// with existing clients until product decides otherwise.
			return []key{createdKey(Desc)}
		}
		return []key{{column: "users.email", direction: Asc, value: func(u *models.User) string { return u.Email }}}
	case SortStatus:
		return []key{{column: "users.status", direction: s.Direction, value: func(u *models.User) string { return string(u.Status) }}, nameKey(Asc)}
	case SortType:
		return []key{{column: "users.type", direction: s.Direction, value: func(u *models.User) string { return string(u.Type) }}, nameKey(Asc)}
	default:
		return []key{nameKey(s.Direction)}
	}
}

// Apply adds ORDER BY terms to b. users.id breaks remaining ties so pages are stable.
func (s Sort) Apply(b sq.SelectBuilder) sq.SelectBuilder {
	for _, k := range s.keys() {
		b = b.OrderBy(k.column + " " + strings.ToUpper(string(k.direction)))
	}
	return b.OrderBy("users.id ASC")
}

// Less is the in-memory comparator equivalent of Apply.
func (s Sort) Less(a, b *models.User) bool {
	for _, k := range s.keys() {
		var lt, gt bool
		if k.less != nil {
			lt, gt = k.less(a, b), k.less(b, a)
		} else {
			va, vb := k.value(a), k.value(b)
			lt, gt = va < vb, va > vb
		}
		if !lt && !gt {
			continue
		}
		if k.direction == Desc {
			return gt
		}
		return lt
	}
	return a.ID.String() < b.ID.String()
}
