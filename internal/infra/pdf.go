package infra

// pdf.go renders the sale receipt with go-pdf/fpdf: a half-letter page with
// the shop header, the sale line, discount, total, the payment history and
// the pending balance with its due date.

import (
	"fmt"
	"io"

	"floreria/internal/dto"
	"floreria/internal/sales"

	"github.com/go-pdf/fpdf"
)

// ReceiptTitle is printed at the top of every receipt.
const ReceiptTitle = "Florería Artesanal"

// WriteReceiptPDF writes the receipt of sale to w.
func WriteReceiptPDF(w io.Writer, sale dto.SaleResponse, payments []dto.SalePaymentResponse) error {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 140, Ht: 216},
	})
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, tr(ReceiptTitle), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Comprobante de venta"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW/2, 5, fmt.Sprintf("Venta #%d", sale.ID), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW/2, 5, sale.CreatedAt.Format("02/01/2006 15:04"), "", 1, "R", false, 0, "")
	pdf.CellFormat(contentW, 5, tr("Estado: "+sales.StatusLabel(sale.Status)), "", 1, "L", false, 0, "")
	if sale.SellerName != "" {
		pdf.CellFormat(contentW, 5, tr("Vendedor: "+sale.SellerName), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	// ── Line ─────────────────────────────────────────────────────────────────
	col1, col2, col3, col4 := contentW*0.46, contentW*0.14, contentW*0.2, contentW*0.2
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(col1, 6, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "Precio", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Subtotal", "B", 1, "R", false, 0, "")

	name := sale.ProductName
	if name == "" {
		name = fmt.Sprintf("Producto #%d", sale.ProductID)
	}
	if r := []rune(name); len(r) > 34 {
		name = string(r[:33]) + "..."
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(col1, 6, tr(name), "", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, fmt.Sprintf("x%d", sale.Quantity), "", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "$"+sale.UnitPrice.StringFixed(2), "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "$"+sale.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	label := col1 + col2 + col3
	if !sale.Discount.IsZero() {
		pdf.CellFormat(label, 5, fmt.Sprintf("Descuento (%s%%):", sale.Discount.String()), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 5, "-$"+sale.Subtotal.Sub(sale.TotalPrice).StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(label, 6, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "$"+sale.TotalPrice.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Payments ─────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Pagos", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	if len(payments) == 0 {
		pdf.CellFormat(contentW, 5, "Sin pagos registrados", "", 1, "L", false, 0, "")
	}
	for _, p := range payments {
		pdf.CellFormat(label, 5, tr(fmt.Sprintf("%s  %s", p.CreatedAt.Format("02/01/2006"), methodLabel(p.PaymentMethod))), "", 0, "L", false, 0, "")
		pdf.CellFormat(col4, 5, "$"+p.Amount.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(label, 6, "Pagado:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "$"+sale.AmountPaid.StringFixed(2), "", 1, "R", false, 0, "")
	if sale.AmountRemaining.IsPositive() {
		pdf.CellFormat(label, 6, "Saldo pendiente:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+sale.AmountRemaining.StringFixed(2), "", 1, "R", false, 0, "")
		if sale.DueDate != nil {
			pdf.SetFont("Helvetica", "", 8)
			pdf.CellFormat(contentW, 5, "Vence: "+*sale.DueDate, "", 1, "R", false, 0, "")
		}
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 5, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write receipt: %w", err)
	}
	return nil
}

func methodLabel(m string) string {
	switch m {
	case sales.MethodCash:
		return "Efectivo"
	case sales.MethodCard:
		return "Tarjeta"
	case sales.MethodTransfer:
		return "Transferencia"
	case sales.MethodMixed:
		return "Mixto"
	}
	return m
}
