package dto

import "time"

type CreateSellerRequest struct {
	Name        string `json:"name"         validate:"required,max=120"`
	ContactInfo string `json:"contact_info" validate:"max=500"`
}

type UpdateSellerRequest struct {
	Name        *string `json:"name"         validate:"omitempty,min=1,max=120"`
	ContactInfo *string `json:"contact_info" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active"`
}

type SellerResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	ContactInfo string    `json:"contact_info"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
