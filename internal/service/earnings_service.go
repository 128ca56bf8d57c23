package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"floreria/internal/dto"
	"floreria/internal/earnings"
	"floreria/internal/infra"
	"floreria/internal/model"
	"floreria/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EarningsService serves the profit reports. Every report is derived from the
// earning rows written when sales complete.
type EarningsService interface {
	Summary(ctx context.Context) (*dto.EarningsSummary, error)
	ByProduct(ctx context.Context, orderBy string) ([]dto.EarningsByProduct, error)
	ByPeriod(ctx context.Context, q dto.PeriodQuery) ([]dto.EarningsByPeriod, error)
	BySeller(ctx context.Context) ([]dto.EarningsBySeller, error)
	ForSale(ctx context.Context, saleID uint) (*dto.EarningResponse, error)
	RecordInvestment(ctx context.Context, actor Actor, req dto.InvestmentRequest) (*dto.InvestmentResponse, error)
	Investments(ctx context.Context, page dto.Page) ([]dto.InvestmentResponse, error)
	UpdateEarning(ctx context.Context, id uint, q dto.UpdateEarningQuery) (*dto.EarningResponse, error)
	Export(ctx context.Context, w io.Writer) error
}

type earningsService struct {
	repo repository.EarningRepository
	now  func() time.Time
}

func NewEarningsService(repo repository.EarningRepository) EarningsService {
	return &earningsService{repo: repo, now: time.Now}
}

func (s *earningsService) Summary(ctx context.Context) (*dto.EarningsSummary, error) {
	invested, err := s.repo.SumInvestments(ctx)
	if err != nil {
		return nil, fmt.Errorf("earnings: sum investments: %w", err)
	}
	rows, err := s.rows(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	summary := earnings.Summarize(rows, invested)
	return &summary, nil
}

func (s *earningsService) ByProduct(ctx context.Context, orderBy string) ([]dto.EarningsByProduct, error) {
	switch orderBy {
	case "":
		orderBy = earnings.OrderProfit
	case earnings.OrderProfit, earnings.OrderQuantity, earnings.OrderMargin:
	default:
		return nil, fieldError("order_by", "Orden invalido: use profit, quantity o margin")
	}
	rows, err := s.rows(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	return earnings.ByProduct(rows, orderBy), nil
}

func (s *earningsService) ByPeriod(ctx context.Context, q dto.PeriodQuery) ([]dto.EarningsByPeriod, error) {
	period, err := earnings.ParsePeriod(q.Period)
	if err != nil {
		return nil, fieldError("period", err.Error())
	}
	start, end, err := earnings.ResolveRange(q, s.now())
	if err != nil {
		return nil, business(err.Error())
	}
	rows, err := s.rows(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return earnings.ByPeriod(rows, period, start, end), nil
}

func (s *earningsService) BySeller(ctx context.Context) ([]dto.EarningsBySeller, error) {
	rows, err := s.rows(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	return earnings.BySeller(rows), nil
}

func (s *earningsService) ForSale(ctx context.Context, saleID uint) (*dto.EarningResponse, error) {
	e, err := s.repo.FindBySaleID(ctx, saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(fmt.Sprintf("No se encontró registro de ganancia para la venta %d", saleID))
		}
		return nil, fmt.Errorf("earnings: find by sale: %w", err)
	}
	resp := earningToResponse(e)
	return &resp, nil
}

// ── Investments ───────────────────────────────────────────────────────────────

func (s *earningsService) RecordInvestment(ctx context.Context, actor Actor, req dto.InvestmentRequest) (*dto.InvestmentResponse, error) {
	if errs := earnings.ValidateInvestment(req, s.now()); errs != nil {
		return nil, errs
	}
	inv := &model.Investment{
		Amount:       req.Amount.Round(2),
		Description:  strings.TrimSpace(req.Description),
		Date:         *req.Date,
		RegisteredBy: actor.Username,
	}
	if err := s.repo.CreateInvestment(ctx, inv); err != nil {
		return nil, fmt.Errorf("earnings: create investment: %w", err)
	}
	log.Info().Uint("investment_id", inv.ID).Str("amount", inv.Amount.StringFixed(2)).Str("by", actor.Username).Msg("Inversión registrada")
	resp := investmentToResponse(inv)
	return &resp, nil
}

func (s *earningsService) Investments(ctx context.Context, page dto.Page) ([]dto.InvestmentResponse, error) {
	list, err := s.repo.ListInvestments(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("earnings: list investments: %w", err)
	}
	resp := make([]dto.InvestmentResponse, len(list))
	for i := range list {
		resp[i] = investmentToResponse(&list[i])
	}
	return resp, nil
}

// ── Corrections ───────────────────────────────────────────────────────────────

// UpdateEarning overwrites the unit prices of an earning and recomputes its
// totals.
func (s *earningsService) UpdateEarning(ctx context.Context, id uint, q dto.UpdateEarningQuery) (*dto.EarningResponse, error) {
	if q.CostPrice == nil || q.SalePrice == nil {
		return nil, business(earnings.ErrInvalidPrices.Error())
	}
	if err := earnings.ValidatePrices(*q.CostPrice, *q.SalePrice); err != nil {
		return nil, business(err.Error())
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(fmt.Sprintf("No se encontró registro de earning con ID %d", id))
		}
		return nil, fmt.Errorf("earnings: find: %w", err)
	}
	applyPrices(e, *q.CostPrice, *q.SalePrice)
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("earnings: update: %w", err)
	}
	resp := earningToResponse(e)
	return &resp, nil
}

func applyPrices(e *model.Earning, cost, sale decimal.Decimal) {
	f := earnings.Compute(cost, sale, e.Quantity)
	e.CostPrice = cost
	e.SalePrice = sale
	e.TotalCost = f.TotalCost
	e.TotalRevenue = f.TotalRevenue
	e.Profit = f.Profit
	e.ProfitMargin = f.ProfitMargin
}

// ── Export ────────────────────────────────────────────────────────────────────

// Export writes every report as an xlsx workbook into w.
func (s *earningsService) Export(ctx context.Context, w io.Writer) error {
	invested, err := s.repo.SumInvestments(ctx)
	if err != nil {
		return fmt.Errorf("earnings: sum investments: %w", err)
	}
	all, err := s.repo.ListRows(ctx, time.Time{}, time.Time{})
	if err != nil {
		return fmt.Errorf("earnings: rows: %w", err)
	}
	rows := make([]earnings.Row, len(all))
	detail := make([]dto.EarningResponse, len(all))
	for i := range all {
		rows[i] = earningToRow(&all[i])
		detail[i] = earningToResponse(&all[i])
	}
	wb := infra.EarningsWorkbook{
		Summary:   earnings.Summarize(rows, invested),
		ByProduct: earnings.ByProduct(rows, earnings.OrderProfit),
		BySeller:  earnings.BySeller(rows),
		Earnings:  detail,
	}
	if err := infra.WriteEarningsXLSX(w, wb); err != nil {
		return fmt.Errorf("earnings: export: %w", err)
	}
	return nil
}

func (s *earningsService) rows(ctx context.Context, start, end time.Time) ([]earnings.Row, error) {
	list, err := s.repo.ListRows(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("earnings: rows: %w", err)
	}
	rows := make([]earnings.Row, len(list))
	for i := range list {
		rows[i] = earningToRow(&list[i])
	}
	return rows, nil
}
