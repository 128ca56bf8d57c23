package admin

import (
	"strings"

	"floreria/internal/apierror"
	"floreria/internal/dto"
)

// ValidateSeller checks the seller form.
func ValidateSeller(req dto.CreateSellerRequest) apierror.FieldErrors {
	if strings.TrimSpace(req.Name) == "" {
		return apierror.FieldErrors{"name": "El nombre del vendedor es requerido"}
	}
	return nil
}

// ActiveSellers keeps sellers that have not been soft-deleted.
func ActiveSellers(sellers []dto.SellerResponse) []dto.SellerResponse {
	out := make([]dto.SellerResponse, 0, len(sellers))
	for _, s := range sellers {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out
}
