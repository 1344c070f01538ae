// Package slip renders barber salary slips as PDF.
package slip

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/barberkas/api/internal/money"
	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Adjustment is one bonus or deduction line.
type Adjustment struct {
	Kind        string
	Description string
	Amount      decimal.Decimal
}

// Slip holds everything printed on a salary slip.
type Slip struct {
	BranchName string
	BarberName string
	StartDate  time.Time
	EndDate    time.Time
	Status     string
	PaidAt     *time.Time

	BaseSalary    decimal.Decimal
	Commission    decimal.Decimal
	Bonus         decimal.Decimal
	Deduction     decimal.Decimal
	Gross         decimal.Decimal
	DebtDeduction decimal.Decimal
	Net           decimal.Decimal

	ServiceCount     int64
	TransactionCount int64
	DaysPresent      int64
	Adjustments      []Adjustment
}

var months = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// FormatDate prints "1 Maret 2026".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), months[t.Month()-1], t.Year())
}

// Title title-cases a name as typed by staff ("budi santoso" -> "Budi Santoso").
// A Caser keeps state, so each call gets its own.
func Title(s string) string {
	return cases.Title(language.Indonesian).String(strings.TrimSpace(s))
}

const (
	labelWidth = 110.0
	valueWidth = 70.0
	rowHeight  = 7.0
)

// Render writes the slip as a single A4 page.
func Render(w io.Writer, s Slip) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Slip Gaji "+Title(s.BarberName), false)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "SLIP GAJI", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, Title(s.BranchName), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	info := [][2]string{
		{"Nama", Title(s.BarberName)},
		{"Periode", FormatDate(s.StartDate) + " - " + FormatDate(s.EndDate)},
		{"Status", statusLabel(s.Status)},
		{"Hari hadir", fmt.Sprintf("%d hari", s.DaysPresent)},
		{"Layanan", fmt.Sprintf("%d layanan dari %d transaksi", s.ServiceCount, s.TransactionCount)},
	}
	if s.PaidAt != nil {
		info = append(info, [2]string{"Dibayar", FormatDate(*s.PaidAt)})
	}
	for _, kv := range info {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(40, 6, kv[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, ": "+kv[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	section(pdf, "PENDAPATAN")
	row(pdf, "Gaji pokok", s.BaseSalary, false)
	row(pdf, "Komisi", s.Commission, false)
	for _, a := range s.Adjustments {
		if a.Kind == "BONUS" {
			row(pdf, "Bonus: "+a.Description, a.Amount, false)
		}
	}

	section(pdf, "POTONGAN")
	for _, a := range s.Adjustments {
		if a.Kind == "DEDUCTION" {
			row(pdf, "Potongan: "+a.Description, a.Amount.Neg(), false)
		}
	}
	if s.DebtDeduction.IsPositive() {
		row(pdf, "Cicilan kasbon", s.DebtDeduction.Neg(), false)
	}

	pdf.Ln(2)
	row(pdf, "Gaji kotor", s.Gross, true)
	row(pdf, "GAJI BERSIH", s.Net, true)

	pdf.Ln(16)
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(90, 6, "Penerima", "", 0, "C", false, 0, "")
	pdf.CellFormat(90, 6, "Pemilik", "", 1, "C", false, 0, "")
	pdf.Ln(18)
	pdf.CellFormat(90, 6, "( "+Title(s.BarberName)+" )", "", 0, "C", false, 0, "")
	pdf.CellFormat(90, 6, "( ........................ )", "", 1, "C", false, 0, "")

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(labelWidth+valueWidth, rowHeight, title, "", 1, "L", true, 0, "")
}

func row(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal, bold bool) {
	style := ""
	border := ""
	if bold {
		style = "B"
		border = "T"
	}
	pdf.SetFont("Helvetica", style, 10)
	pdf.CellFormat(labelWidth, rowHeight, label, border, 0, "L", false, 0, "")
	pdf.CellFormat(valueWidth, rowHeight, money.Rupiah(amount), border, 1, "R", false, 0, "")
}

func statusLabel(s string) string {
	switch s {
	case "PAID":
		return "Lunas"
	case "OPEN":
		return "Belum dibayar"
	default:
		return s
	}
}
