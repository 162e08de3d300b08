package models

import "tenantry/pkg/changeset"

// UserChange is the output of a successful user changeset: the fully resolved
// user plus the association sets that replace the stored ones.
type UserChange struct {
	User         *User
	Associations Associations
	Changeset    *changeset.Changeset
}

// MapConstraint translates a store constraint violation into field errors.
func (c *UserChange) MapConstraint(err error) error {
	if c == nil || c.Changeset == nil {
		return err
	}
	return c.Changeset.MapConstraint(err)
}
