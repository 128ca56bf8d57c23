package dto

type UserFilter struct {
	Page
	Search string `form:"search"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"     validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=120"`
	IsActive *bool   `json:"is_active"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type UpdatePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required"`
}
