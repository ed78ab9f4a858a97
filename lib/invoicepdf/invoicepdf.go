// Package invoicepdf renders a resolved listing into a fixed-layout PDF
// invoice. The layout is deliberately static: every field it prints has been
// validated and sanitized upstream, this package does typesetting only.
package invoicepdf

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	"garage-invoice-backend/lib/scrapers/garage"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"
)

// Renderer produces invoice PDFs. The zero value is usable.
type Renderer struct {
	// Now is injectable so tests get a stable invoice date.
	Now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{Now: time.Now}
}

// InvoiceNumber derives a display invoice number from a listing id.
func InvoiceNumber(listingId string) string {
	id := listingId
	if len(id) > 8 {
		id = id[:8]
	}
	return "INV-" + strings.ToUpper(id)
}

// formatPrice renders USD without decimal places, "$425,000".
func formatPrice(price float64) string {
	return "$" + humanize.Comma(int64(math.Round(price)))
}

// formatItemSpecs joins the structured fields into the short spec line shown
// under the listing title, "2018 • Pierce • Enforcer • 15,000 miles".
func formatItemSpecs(l garage.Listing) string {
	var parts []string
	if l.Year > 0 {
		parts = append(parts, strconv.Itoa(l.Year))
	}
	if l.Make != "" {
		parts = append(parts, l.Make)
	}
	if l.Model != "" {
		parts = append(parts, l.Model)
	}
	if l.Mileage > 0 {
		parts = append(parts, humanize.Comma(int64(l.Mileage))+" miles")
	}
	return strings.Join(parts, " • ")
}

func (r *Renderer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Render produces the invoice PDF bytes for a listing.
func (r *Renderer) Render(l garage.Listing) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// header
	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetTextColor(30, 41, 59)
	pdf.CellFormat(0, 12, "INVOICE", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(0, 6, "Garage Fire Truck Marketplace", "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetDrawColor(37, 99, 235)
	pdf.SetLineWidth(0.8)
	x, y := pdf.GetX(), pdf.GetY()
	pdf.Line(x, y, 200, y)
	pdf.Ln(8)

	// metadata
	pdf.SetTextColor(30, 41, 59)
	metaRow := func(label, value string) {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(100, 116, 139)
		pdf.CellFormat(45, 5, strings.ToUpper(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetTextColor(30, 41, 59)
		pdf.CellFormat(0, 5, tr(value), "", 1, "L", false, 0, "")
	}
	metaRow("Invoice Number", InvoiceNumber(l.Id))
	metaRow("Invoice Date", r.now().Format("January 2, 2006"))
	metaRow("Listing ID", l.Id)
	pdf.Ln(8)

	// listing
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(30, 41, 59)
	pdf.MultiCell(0, 8, tr(l.Title), "", "L", false)

	specs := formatItemSpecs(l)
	if specs == "" {
		specs = l.Specs
	}
	if specs != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(71, 85, 105)
		pdf.MultiCell(0, 5, tr(specs), "", "L", false)
	}
	pdf.Ln(4)

	if l.Description != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.SetTextColor(71, 85, 105)
		pdf.MultiCell(0, 5.5, tr(l.Description), "", "L", false)
		pdf.Ln(4)
	}

	// full attribute line, everything the normalizer recognized
	if l.Specs != "" && l.Specs != specs {
		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(100, 116, 139)
		pdf.CellFormat(0, 5, "SPECIFICATIONS", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(30, 41, 59)
		pdf.MultiCell(0, 5, tr(l.Specs), "", "L", false)
		pdf.Ln(4)
	}

	// price box
	pdf.Ln(6)
	pdf.SetFillColor(248, 250, 252)
	pdf.SetDrawColor(226, 232, 240)
	pdf.SetLineWidth(0.3)
	boxY := pdf.GetY()
	pdf.Rect(10, boxY, 190, 26, "FD")
	pdf.SetXY(16, boxY+5)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(0, 5, "TOTAL PRICE", "", 1, "L", false, 0, "")
	pdf.SetX(16)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.SetTextColor(37, 99, 235)
	pdf.CellFormat(0, 10, formatPrice(l.Price), "", 1, "L", false, 0, "")

	// footer
	pdf.SetY(-30)
	pdf.SetDrawColor(226, 232, 240)
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(148, 163, 184)
	pdf.CellFormat(0, 4, "Generated by Garage Invoice Generator", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 4, "This invoice is informational and does not constitute a bill of sale.", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
