package service

import (
	"floreria/internal/dto"
	"floreria/internal/earnings"
	"floreria/internal/model"
)

func userToResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CostPrice:   p.CostPrice,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func sellerToResponse(s *model.Seller) dto.SellerResponse {
	return dto.SellerResponse{
		ID:          s.ID,
		Name:        s.Name,
		ContactInfo: s.ContactInfo,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt,
	}
}

// SaleToResponse flattens a sale with its preloaded product and seller names.
func SaleToResponse(s *model.Sale) dto.SaleResponse {
	resp := dto.SaleResponse{
		ID:              s.ID,
		ProductID:       s.ProductID,
		SellerID:        s.SellerID,
		Quantity:        s.Quantity,
		UnitPrice:       s.UnitPrice,
		Discount:        s.Discount,
		Subtotal:        s.Subtotal,
		TotalPrice:      s.TotalPrice,
		AmountPaid:      s.AmountPaid,
		AmountRemaining: s.AmountRemaining,
		Status:          s.Status,
		PaymentMethod:   s.PaymentMethod,
		Notes:           s.Notes,
		CancelReason:    s.CancelReason,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
	if s.DueDate != nil {
		d := s.DueDate.Format(dto.DateLayout)
		resp.DueDate = &d
	}
	if s.Product != nil {
		resp.ProductName = s.Product.Name
	}
	if s.Seller != nil {
		resp.SellerName = s.Seller.Name
	}
	return resp
}

func paymentToResponse(p *model.SalePayment) dto.SalePaymentResponse {
	return dto.SalePaymentResponse{
		ID:            p.ID,
		SaleID:        p.SaleID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		RegisteredBy:  p.RegisteredBy,
		CreatedAt:     p.CreatedAt,
	}
}

func earningToResponse(e *model.Earning) dto.EarningResponse {
	return dto.EarningResponse{
		ID:           e.ID,
		SaleID:       e.SaleID,
		ProductID:    e.ProductID,
		SellerID:     e.SellerID,
		Quantity:     e.Quantity,
		CostPrice:    e.CostPrice,
		SalePrice:    e.SalePrice,
		TotalCost:    e.TotalCost,
		TotalRevenue: e.TotalRevenue,
		Profit:       e.Profit,
		ProfitMargin: e.ProfitMargin,
		IsRecorded:   e.IsRecorded,
		CreatedAt:    e.CreatedAt,
	}
}

// earningToRow joins an earning with its product and seller names. Rows of
// deleted products keep an empty name.
func earningToRow(e *model.Earning) earnings.Row {
	r := earnings.Row{
		ID:           e.ID,
		SaleID:       e.SaleID,
		ProductID:    e.ProductID,
		SellerID:     e.SellerID,
		Quantity:     e.Quantity,
		CostPrice:    e.CostPrice,
		SalePrice:    e.SalePrice,
		TotalCost:    e.TotalCost,
		TotalRevenue: e.TotalRevenue,
		Profit:       e.Profit,
		ProfitMargin: e.ProfitMargin,
		CreatedAt:    e.CreatedAt,
	}
	if e.Product != nil {
		r.ProductName = e.Product.Name
	}
	if e.Seller != nil {
		r.SellerName = e.Seller.Name
	}
	return r
}

func investmentToResponse(i *model.Investment) dto.InvestmentResponse {
	return dto.InvestmentResponse{
		ID:           i.ID,
		Amount:       i.Amount,
		Description:  i.Description,
		Date:         i.Date,
		RegisteredBy: i.RegisteredBy,
		CreatedAt:    i.CreatedAt,
	}
}
