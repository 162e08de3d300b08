package handler

import (
	"time"

	"tenantry/internal/user/models"
)

type UserResponse struct {
	ID           string             `json:"id"`
	TenantID     string             `json:"tenant_id"`
	RoleID       string             `json:"role_id"`
	Type         models.AccountType `json:"type"`
	Status       models.UserStatus  `json:"status"`
	Email        string             `json:"email"`
	Name         string             `json:"name"`
	Username     string             `json:"username,omitempty"`
	Locale       string             `json:"locale,omitempty"`
	Timezone     string             `json:"timezone,omitempty"`
	Phone        string             `json:"phone,omitempty"`
	Provider     string             `json:"provider"`
	WorkspaceIDs []string           `json:"workspace_ids,omitempty"`
	GroupIDs     []string           `json:"group_ids,omitempty"`
	DeletedAt    *time.Time         `json:"deleted_at,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

type ListUsersResponse struct {
	Users  []*UserResponse `json:"users"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func toUserResponse(u *models.User, assoc *models.Associations) *UserResponse {
	resp := &UserResponse{
		ID:        u.ID.String(),
		TenantID:  u.TenantID.String(),
		RoleID:    u.RoleID.String(),
		Type:      u.Type,
		Status:    u.Status,
		Email:     u.Email,
		Name:      u.Name,
		Username:  u.Username,
		Locale:    u.Locale,
		Timezone:  u.Timezone,
		Phone:     u.Phone,
		Provider:  u.Provider,
		DeletedAt: u.DeletedAt,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if assoc != nil {
		resp.WorkspaceIDs = make([]string, len(assoc.WorkspaceIDs))
		for i, wid := range assoc.WorkspaceIDs {
			resp.WorkspaceIDs[i] = wid.String()
		}
		resp.GroupIDs = make([]string, len(assoc.GroupIDs))
		for i, gid := range assoc.GroupIDs {
			resp.GroupIDs[i] = gid.String()
		}
	}
	return resp
}
