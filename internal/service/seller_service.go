package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"floreria/internal/admin"
	"floreria/internal/dto"
	"floreria/internal/model"
	"floreria/internal/repository"

	"gorm.io/gorm"
)

const (
	msgSellerExists   = "El vendedor con este nombre ya existe."
	msgSellerNotFound = "Vendedor no encontrado."
)

type SellerService interface {
	List(ctx context.Context, page dto.Page) ([]dto.SellerResponse, error)
	Get(ctx context.Context, id uint) (*dto.SellerResponse, error)
	Create(ctx context.Context, req dto.CreateSellerRequest) (*dto.SellerResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateSellerRequest) (*dto.SellerResponse, error)
	// Delete deactivates the seller; its sales stay attributed to it.
	Delete(ctx context.Context, id uint) error
	Sales(ctx context.Context, id uint, page dto.Page) ([]dto.SaleResponse, error)
}

type sellerService struct {
	repo  repository.SellerRepository
	sales repository.SaleRepository
}

func NewSellerService(repo repository.SellerRepository, sales repository.SaleRepository) SellerService {
	return &sellerService{repo: repo, sales: sales}
}

func (s *sellerService) List(ctx context.Context, page dto.Page) ([]dto.SellerResponse, error) {
	sellers, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("sellers: list: %w", err)
	}
	resp := make([]dto.SellerResponse, len(sellers))
	for i := range sellers {
		resp[i] = sellerToResponse(&sellers[i])
	}
	return resp, nil
}

func (s *sellerService) Get(ctx context.Context, id uint) (*dto.SellerResponse, error) {
	seller, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := sellerToResponse(seller)
	return &resp, nil
}

func (s *sellerService) Create(ctx context.Context, req dto.CreateSellerRequest) (*dto.SellerResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	if errs := admin.ValidateSeller(req); errs != nil {
		return nil, errs
	}
	if err := s.ensureNameFree(ctx, req.Name, 0); err != nil {
		return nil, err
	}
	seller := &model.Seller{
		Name:        req.Name,
		ContactInfo: strings.TrimSpace(req.ContactInfo),
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, seller); err != nil {
		return nil, fmt.Errorf("sellers: create: %w", err)
	}
	resp := sellerToResponse(seller)
	return &resp, nil
}

func (s *sellerService) Update(ctx context.Context, id uint, req dto.UpdateSellerRequest) (*dto.SellerResponse, error) {
	seller, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fieldError("name", "El nombre del vendedor es requerido")
		}
		if name != seller.Name {
			if err := s.ensureNameFree(ctx, name, id); err != nil {
				return nil, err
			}
		}
		seller.Name = name
	}
	if req.ContactInfo != nil {
		seller.ContactInfo = strings.TrimSpace(*req.ContactInfo)
	}
	if req.IsActive != nil {
		seller.IsActive = *req.IsActive
	}
	if err := s.repo.Update(ctx, seller); err != nil {
		return nil, fmt.Errorf("sellers: update: %w", err)
	}
	resp := sellerToResponse(seller)
	return &resp, nil
}

func (s *sellerService) Delete(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("sellers: delete: %w", err)
	}
	return nil
}

func (s *sellerService) Sales(ctx context.Context, id uint, page dto.Page) ([]dto.SaleResponse, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.sales.List(ctx, dto.SaleFilter{Page: page, SellerID: id})
	if err != nil {
		return nil, fmt.Errorf("sellers: sales: %w", err)
	}
	resp := make([]dto.SaleResponse, len(list))
	for i := range list {
		resp[i] = SaleToResponse(&list[i])
	}
	return resp, nil
}

func (s *sellerService) ensureNameFree(ctx context.Context, name string, self uint) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("sellers: find by name: %w", err)
	case existing.ID != self:
		return business(msgSellerExists)
	}
	return nil
}

func (s *sellerService) find(ctx context.Context, id uint) (*model.Seller, error) {
	seller, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(msgSellerNotFound)
		}
		return nil, fmt.Errorf("sellers: find: %w", err)
	}
	return seller, nil
}
