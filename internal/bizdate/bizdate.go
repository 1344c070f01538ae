// Package bizdate converts between wall-clock instants and business dates.
// Business dates are calendar days in Asia/Jakarta (WIB).
package bizdate

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const Layout = "2006-01-02"

var ErrInvalidDate = errors.New("format tanggal harus YYYY-MM-DD")

var Location *time.Location

func init() {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		loc = time.FixedZone("WIB", 7*60*60)
	}
	Location = loc
}

// Of returns the business date t falls on.
func Of(t time.Time) pgtype.Date {
	y, m, d := t.In(Location).Date()
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// Parse reads YYYY-MM-DD.
func Parse(s string) (pgtype.Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return pgtype.Date{}, ErrInvalidDate
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}

// ParseOptional returns an invalid (NULL) date for the empty string.
func ParseOptional(s string) (pgtype.Date, error) {
	if s == "" {
		return pgtype.Date{}, nil
	}
	return Parse(s)
}

func Format(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(Layout)
}

// FormatPtr renders a nullable date; NULL becomes nil.
func FormatPtr(d pgtype.Date) *string {
	if !d.Valid {
		return nil
	}
	s := Format(d)
	return &s
}

// MonthStart is the first day of the month containing d.
func MonthStart(d pgtype.Date) pgtype.Date {
	y, m, _ := d.Time.Date()
	return pgtype.Date{Time: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), Valid: true}
}

// StartOfDay is midnight WIB of d, as an instant.
func StartOfDay(d pgtype.Date) time.Time {
	y, m, day := d.Time.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, Location)
}

// Compact renders d as YYYYMMDD.
func Compact(d pgtype.Date) string {
	return d.Time.Format("20060102")
}
