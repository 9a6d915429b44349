// Package pdf renders priced quotations as printable documents.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Line is one itemized charge.
type Line struct {
	ServiceType string
	Rate        decimal.Decimal
}

// Document is the printable view of a quotation.
type Document struct {
	Number              string
	RequestCode         string
	IssuedAt            time.Time
	OfficerName         string
	CustomerName        string
	CustomerEmail       string
	Route               string
	ContainerType       string
	Containers          int
	Scope               string
	Status              string
	Lines               []Line
	Subtotal            decimal.Decimal
	DiscountPercentage  decimal.Decimal
	DiscountAmount      decimal.Decimal
	AmountAfterDiscount decimal.Decimal
	GST                 decimal.Decimal
	TotalAmount         decimal.Decimal
}

// Generator renders Documents with gofpdf core fonts.
type Generator struct {
	company string
	printer *message.Printer
}

// New returns a generator that prints company in the header.
func New(company string) *Generator {
	if company == "" {
		company = "Interport Cargo"
	}
	return &Generator{company: company, printer: message.NewPrinter(language.English)}
}

// Generate renders doc to PDF bytes.
func (g *Generator) Generate(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Quotation "+doc.Number, false)
	pdf.SetAuthor(g.company, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, g.company+" - Quotation")
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range [][2]string{
		{"Quotation", doc.Number},
		{"Request", doc.RequestCode},
		{"Issued", doc.IssuedAt.Format("02 Jan 2006")},
		{"Officer", doc.OfficerName},
		{"Customer", fmt.Sprintf("%s <%s>", doc.CustomerName, doc.CustomerEmail)},
		{"Route", doc.Route},
		{"Containers", fmt.Sprintf("%d x %s", doc.Containers, doc.ContainerType)},
		{"Status", doc.Status},
	} {
		pdf.Cell(35, 6, row[0]+":")
		pdf.Cell(0, 6, trim(row[1], 90))
		pdf.Ln(6)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, "Scope")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, doc.Scope, "", "L", false)

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 7, "Service", "B", 0, "L", false, 0, "")
	pdf.CellFormat(50, 7, "Rate", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range doc.Lines {
		pdf.CellFormat(130, 6, trim(line.ServiceType, 70), "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, g.Money(line.Rate), "", 1, "R", false, 0, "")
	}

	pdf.Ln(3)
	g.total(pdf, "Subtotal", doc.Subtotal, false)
	g.total(pdf, fmt.Sprintf("Discount (%s%%)", doc.DiscountPercentage.String()), doc.DiscountAmount.Neg(), false)
	g.total(pdf, "Amount after discount", doc.AmountAfterDiscount, false)
	g.total(pdf, "GST", doc.GST, false)
	g.total(pdf, "Total", doc.TotalAmount, true)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render quotation %s: %w", doc.Number, err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) total(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 10)
	pdf.CellFormat(130, 6, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(50, 6, g.Money(amount), "", 1, "R", false, 0, "")
}

// Money formats amount with grouped thousands and two decimals, e.g. $4,950.00.
func (g *Generator) Money(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	whole := rounded.Truncate(0)
	cents := rounded.Sub(whole).Shift(2).IntPart()
	return sign + g.printer.Sprintf("$%d.%02d", whole.IntPart(), cents)
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
