package admin

import (
	"context"

	"floreria/internal/dto"
)

// UsersAPI is the remote side of the users screen. client.UsersClient
// implements it.
type UsersAPI interface {
	RoleAPI
	List(ctx context.Context, f dto.UserFilter) ([]dto.UserResponse, error)
	Delete(ctx context.Context, id uint) error
	UpdatePassword(ctx context.Context, id uint, newPassword string) error
}

// Users applies the self-protection and password rules before anything
// reaches the backend.
type Users struct {
	api UsersAPI
}

func NewUsers(api UsersAPI) *Users { return &Users{api: api} }

// Search lists users and narrows them by query on username and email.
func (u *Users) Search(ctx context.Context, f dto.UserFilter, query string) ([]dto.UserResponse, error) {
	list, err := u.api.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return FilterUsers(list, query), nil
}

// Delete removes id unless it is the signed-in user.
func (u *Users) Delete(ctx context.Context, selfID, id uint) error {
	if err := CanDelete(selfID, id); err != nil {
		return err
	}
	return u.api.Delete(ctx, id)
}

// ChangePassword sets a new password for id once pw passes the strength rules
// and matches confirm. Failures come back as apierror.FieldErrors.
func (u *Users) ChangePassword(ctx context.Context, id uint, pw, confirm string) error {
	if errs := ValidatePassword(pw, confirm); errs != nil {
		return errs
	}
	return u.api.UpdatePassword(ctx, id, pw)
}

// ApplyRoles submits the staged role changes of draft as selfID.
func (u *Users) ApplyRoles(ctx context.Context, draft *RoleDraft, selfID uint) (*ApplyResult, error) {
	return draft.Apply(ctx, u.api, selfID)
}
