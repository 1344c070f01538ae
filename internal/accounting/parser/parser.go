// Package parser reads free-text expense notes such as
//
//	12 mei
//	galon 2btl 40rb
//	token listrik 200k
//	sabun Rp25.000
//
// into dated expense lines.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyNote = errors.New("catatan pengeluaran kosong")
	ErrNoLines   = errors.New("tidak ada baris pengeluaran yang terbaca")
)

// Note is a parsed expense note.
type Note struct {
	// Date is the date from the first line, or the zero time when the note
	// has no date line.
	Date     time.Time
	Lines    []Line
	Warnings []string
}

// HasDate reports whether the note started with a date line.
func (n *Note) HasDate() bool {
	return !n.Date.IsZero()
}

// Total sums the amounts of every line.
func (n *Note) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range n.Lines {
		total = total.Add(l.Amount)
	}
	return total
}

// Line is one priced line of a note.
type Line struct {
	RawText     string
	Description string
	Qty         decimal.Decimal
	Unit        string
	Amount      decimal.Decimal
}

var indonesianMonths = map[string]time.Month{
	"jan": time.January, "januari": time.January,
	"feb": time.February, "februari": time.February,
	"mar": time.March, "maret": time.March,
	"apr": time.April, "april": time.April,
	"mei": time.May,
	"jun": time.June, "juni": time.June,
	"jul": time.July, "juli": time.July,
	"agu": time.August, "ags": time.August, "agustus": time.August,
	"sep": time.September, "september": time.September,
	"okt": time.October, "oktober": time.October,
	"nov": time.November, "november": time.November,
	"des": time.December, "desember": time.December,
}

// Quantity units seen on barbershop receipts. These are never price suffixes.
var qtyUnits = map[string]bool{
	"pcs": true, "bh": true, "buah": true, "btl": true, "botol": true,
	"pack": true, "pak": true, "box": true, "dus": true, "lusin": true,
	"ltr": true, "l": true, "ml": true, "kg": true, "g": true,
	"sachet": true, "tube": true, "rim": true, "roll": true, "lbr": true,
	"bulan": true, "hari": true, "kali": true, "x": true,
}

// Parse reads a note. now fixes the year of a date line: a date more than
// 30 days after now is taken to be from the previous year.
func Parse(text string, now time.Time) (*Note, error) {
	note := &Note{}
	first := true

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if first {
			first = false
			if date, ok := parseDateLine(line, now); ok {
				note.Date = date
				continue
			}
		}

		l, err := parseLine(line)
		if err != nil {
			note.Warnings = append(note.Warnings, fmt.Sprintf("dilewati: %s", line))
			continue
		}
		note.Lines = append(note.Lines, *l)
	}

	if first {
		return nil, ErrEmptyNote
	}
	if len(note.Lines) == 0 {
		return nil, ErrNoLines
	}
	return note, nil
}

// parseDateLine reads "12 mei" or "12 mei 2026".
func parseDateLine(line string, now time.Time) (time.Time, bool) {
	parts := strings.Fields(strings.ToLower(line))
	if len(parts) != 2 && len(parts) != 3 {
		return time.Time{}, false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	month, ok := indonesianMonths[parts[1]]
	if !ok {
		return time.Time{}, false
	}

	loc := now.Location()
	if len(parts) == 3 {
		year, err := strconv.Atoi(parts[2])
		if err != nil || year < 2000 || year > 2100 {
			return time.Time{}, false
		}
		return validDate(year, month, day, loc)
	}

	parsed, ok := validDate(now.Year(), month, day, loc)
	if !ok {
		return time.Time{}, false
	}
	if parsed.After(now.AddDate(0, 0, 30)) {
		return validDate(now.Year()-1, month, day, loc)
	}
	return parsed, true
}

// validDate rejects days that time.Date would normalize into the next month.
func validDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// parseLine reads "galon 2btl 40rb". The last price token wins when a line
// carries more than one.
func parseLine(line string) (*Line, error) {
	tokens := strings.Fields(strings.ToLower(line))

	var (
		amount     decimal.Decimal
		priceFound bool
		qty        = decimal.NewFromInt(1)
		unit       string
		qtyFound   bool
		descTokens []string
	)

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		// "rp 25.000" split over two tokens.
		if (tok == "rp" || tok == "rp.") && i+1 < len(tokens) {
			if p, ok := parseRupiah(tokens[i+1]); ok {
				amount, priceFound = p, true
				i++
				continue
			}
		}
		if p, ok := parsePrice(tok); ok {
			amount, priceFound = p, true
			continue
		}
		if q, u, ok := parseQtyUnitToken(tok); ok && !qtyFound {
			qty, unit, qtyFound = q, u, true
			continue
		}
		descTokens = append(descTokens, tok)
	}

	if !priceFound {
		return nil, fmt.Errorf("no price in line %q", line)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("non-positive price in line %q", line)
	}
	if len(descTokens) == 0 {
		return nil, fmt.Errorf("no description in line %q", line)
	}

	return &Line{
		RawText:     line,
		Description: strings.Join(descTokens, " "),
		Qty:         qty,
		Unit:        unit,
		Amount:      amount.Round(2),
	}, nil
}

// parsePrice reads "200k", "40rb", "1,5jt", "rp25.000" and "25.000".
func parsePrice(tok string) (decimal.Decimal, bool) {
	tok = strings.ToLower(tok)

	if rest, ok := strings.CutPrefix(tok, "rp."); ok {
		return parseRupiah(rest)
	}
	if rest, ok := strings.CutPrefix(tok, "rp"); ok {
		return parseRupiah(rest)
	}

	suffixes := []struct {
		s string
		m int64
	}{
		{"jt", 1_000_000},
		{"rb", 1_000},
		{"ribu", 1_000},
		{"k", 1_000},
	}
	for _, sf := range suffixes {
		numStr, ok := strings.CutSuffix(tok, sf.s)
		if !ok || numStr == "" {
			continue
		}
		num, err := decimal.NewFromString(strings.ReplaceAll(numStr, ",", "."))
		if err != nil {
			continue
		}
		return num.Mul(decimal.NewFromInt(sf.m)), true
	}

	// A bare number only counts as a price when written with thousand
	// separators, so "2" or "10" stay in the description.
	if strings.Contains(tok, ".") {
		return parseRupiah(tok)
	}
	return decimal.Zero, false
}

// parseRupiah reads Indonesian formatted amounts: "25.000", "25.000,50", "25000".
func parseRupiah(s string) (decimal.Decimal, bool) {
	s = strings.TrimSuffix(s, ",-")
	if s == "" {
		return decimal.Zero, false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return decimal.Zero, false
		}
	}
	whole, frac, hasFrac := strings.Cut(s, ",")
	groups := strings.Split(whole, ".")
	for i, g := range groups {
		if g == "" || (i > 0 && len(g) != 3) {
			return decimal.Zero, false
		}
	}
	normalized := strings.Join(groups, "")
	if hasFrac {
		normalized += "." + frac
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// parseQtyUnitToken reads "2btl" as (2, "btl"). Only known units match.
func parseQtyUnitToken(tok string) (decimal.Decimal, string, bool) {
	digitEnd := 0
	for i, r := range tok {
		if unicode.IsDigit(r) || r == '.' || r == ',' {
			digitEnd = i + 1
		} else {
			break
		}
	}
	if digitEnd == 0 || digitEnd == len(tok) {
		return decimal.Zero, "", false
	}

	unit := tok[digitEnd:]
	if !qtyUnits[unit] {
		return decimal.Zero, "", false
	}
	qty, err := decimal.NewFromString(strings.ReplaceAll(tok[:digitEnd], ",", "."))
	if err != nil {
		return decimal.Zero, "", false
	}
	return qty, unit, true
}
