package earnings

import (
	"errors"
	"strings"
	"time"

	"floreria/internal/apierror"
	"floreria/internal/dto"

	"github.com/shopspring/decimal"
)

var ErrInvalidPrices = errors.New("Los precios deben ser mayores a 0")

// ValidatePrices checks a price correction. Both prices must be > 0.
func ValidatePrices(cost, sale decimal.Decimal) error {
	if !cost.IsPositive() || !sale.IsPositive() {
		return ErrInvalidPrices
	}
	return nil
}

// EditDefaults pre-fills the correction form of a by-product row with its
// average unit cost and unit sale price.
func EditDefaults(row dto.EarningsByProduct) (cost, sale decimal.Decimal) {
	if row.QuantitySold <= 0 {
		return decimal.Zero, decimal.Zero
	}
	qty := decimal.NewFromInt(int64(row.QuantitySold))
	return row.TotalInvested.Div(qty).Round(2), row.TotalGenerated.Div(qty).Round(2)
}

// ValidateInvestment checks an investment entry. now bounds the date.
func ValidateInvestment(req dto.InvestmentRequest, now time.Time) apierror.FieldErrors {
	errs := apierror.FieldErrors{}
	if !req.Amount.IsPositive() {
		errs.Add("amount", "Ingresa un monto válido mayor a 0")
	}
	if strings.TrimSpace(req.Description) == "" {
		errs.Add("description", "Ingresa una descripción de la inversión")
	}
	switch {
	case req.Date == nil || req.Date.IsZero():
		errs.Add("date", "Selecciona una fecha")
	case req.Date.After(now):
		errs.Add("date", "La fecha de inversión no puede ser futura")
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
