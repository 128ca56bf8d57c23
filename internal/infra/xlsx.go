package infra

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"floreria/internal/dto"
)

// EarningsWorkbook is the content of the earnings export.
type EarningsWorkbook struct {
	Summary   dto.EarningsSummary
	ByProduct []dto.EarningsByProduct
	BySeller  []dto.EarningsBySeller
	Earnings  []dto.EarningResponse
}

// WriteEarningsXLSX renders wb as a workbook with one sheet per report.
func WriteEarningsXLSX(w io.Writer, wb EarningsWorkbook) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"B5487A"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}

	// ── Resumen ──────────────────────────────────────────────────────────────
	const summary = "Resumen"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return fmt.Errorf("xlsx: sheet: %w", err)
	}
	net := "-"
	if wb.Summary.NetProfit != nil {
		net = wb.Summary.NetProfit.StringFixed(2)
	}
	rows := [][]any{
		{"Concepto", "Valor"},
		{"Total invertido", wb.Summary.TotalInvested.InexactFloat64()},
		{"Total vendido", wb.Summary.TotalSold.InexactFloat64()},
		{"Ganancia bruta", wb.Summary.GrossProfit.InexactFloat64()},
		{"Ganancia neta", net},
		{"Margen promedio (%)", wb.Summary.AverageProfitMargin.InexactFloat64()},
		{"Estado", wb.Summary.Status},
		{"Ventas", wb.Summary.TotalSales},
	}
	if err := writeSheet(f, summary, rows, header); err != nil {
		return err
	}

	// ── Por producto ─────────────────────────────────────────────────────────
	products := [][]any{{"ID", "Producto", "Cantidad", "Invertido", "Generado", "Ganancia", "Margen (%)"}}
	for _, p := range wb.ByProduct {
		products = append(products, []any{
			p.ProductID, p.ProductName, p.QuantitySold,
			p.TotalInvested.InexactFloat64(), p.TotalGenerated.InexactFloat64(),
			p.Profit.InexactFloat64(), p.ProfitMargin.InexactFloat64(),
		})
	}
	if err := addSheet(f, "Por producto", products, header); err != nil {
		return err
	}

	// ── Por vendedor ─────────────────────────────────────────────────────────
	sellers := [][]any{{"ID", "Vendedor", "Ventas", "Ingresos", "Costo", "Ganancia"}}
	for _, s := range wb.BySeller {
		sellers = append(sellers, []any{
			s.SellerID, s.SellerName, s.TotalSales,
			s.TotalRevenue.InexactFloat64(), s.TotalCost.InexactFloat64(), s.Profit.InexactFloat64(),
		})
	}
	if err := addSheet(f, "Por vendedor", sellers, header); err != nil {
		return err
	}

	// ── Detalle ──────────────────────────────────────────────────────────────
	detail := [][]any{{"ID", "Venta", "Producto", "Vendedor", "Cantidad", "Costo unit.", "Precio unit.", "Costo", "Ingreso", "Ganancia", "Margen (%)", "Fecha"}}
	for _, e := range wb.Earnings {
		detail = append(detail, []any{
			e.ID, e.SaleID, e.ProductID, e.SellerID, e.Quantity,
			e.CostPrice.InexactFloat64(), e.SalePrice.InexactFloat64(),
			e.TotalCost.InexactFloat64(), e.TotalRevenue.InexactFloat64(),
			e.Profit.InexactFloat64(), e.ProfitMargin.InexactFloat64(),
			e.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	if err := addSheet(f, "Detalle", detail, header); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func addSheet(f *excelize.File, name string, rows [][]any, header int) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("xlsx: sheet %s: %w", name, err)
	}
	return writeSheet(f, name, rows, header)
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, header int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) > 0 {
		end, _ := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err := f.SetCellStyle(sheet, "A1", end, header); err != nil {
			return fmt.Errorf("xlsx: %s style: %w", sheet, err)
		}
		last, _ := excelize.ColumnNumberToName(len(rows[0]))
		_ = f.SetColWidth(sheet, "A", last, 16)
	}
	return nil
}
