package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/money"
	"github.com/barberkas/api/internal/service"
	"github.com/barberkas/api/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	msgInternal   = "terjadi kesalahan pada server"
	msgBadBody    = "body request tidak valid"
	msgValidation = "validasi gagal"

	defaultLimit = 50
	maxLimit     = 500
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// serverError logs err and answers 500 without leaking details.
func serverError(w http.ResponseWriter, err error, msg string) {
	log.Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

// decodeJSON reads the body into dst and runs the validate tags. On failure
// it writes the 400 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return false
	}
	if err := validation.Struct(dst); err != nil {
		var fields validation.Errors
		if errors.As(err, &fields) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": msgValidation, "fields": fields})
			return false
		}
		serverError(w, err, "validate request")
		return false
	}
	return true
}

// urlUUID parses a chi URL param. label names the entity in the error text.
func urlUUID(w http.ResponseWriter, r *http.Request, param, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "ID "+label+" tidak valid")
		return uuid.Nil, false
	}
	return id, true
}

func branchID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	return urlUUID(w, r, "bid", "cabang")
}

// parsePagination reads limit and offset, defaulting to 50 and capping at 500.
func parsePagination(r *http.Request) (int32, int32) {
	limit := defaultLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := 0
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = v
		}
	}
	return int32(limit), int32(offset)
}

// parseDateRange reads start_date and end_date. Missing bounds default to the
// first day of the current month and today.
func parseDateRange(w http.ResponseWriter, r *http.Request, today pgtype.Date) (pgtype.Date, pgtype.Date, bool) {
	start, err := bizdate.ParseOptional(r.URL.Query().Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date: "+err.Error())
		return pgtype.Date{}, pgtype.Date{}, false
	}
	end, err := bizdate.ParseOptional(r.URL.Query().Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date: "+err.Error())
		return pgtype.Date{}, pgtype.Date{}, false
	}
	if !end.Valid {
		end = today
	}
	if !start.Valid {
		start = bizdate.MonthStart(end)
	}
	if start.Time.After(end.Time) {
		writeError(w, http.StatusBadRequest, "start_date tidak boleh setelah end_date")
		return pgtype.Date{}, pgtype.Date{}, false
	}
	return start, end, true
}

// optionalUUID reads an optional UUID query parameter.
func optionalUUID(w http.ResponseWriter, r *http.Request, name string) (pgtype.UUID, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return pgtype.UUID{}, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" tidak valid")
		return pgtype.UUID{}, false
	}
	return pgtype.UUID{Bytes: id, Valid: true}, true
}

var hundred = decimal.NewFromInt(100)

// parseAmount converts a validated money string. Call it after decodeJSON so
// the format is already known to be good.
func parseAmount(s string) decimal.Decimal {
	d, _ := money.Parse(s)
	return d
}

// parseRate reads a commission percentage. It writes a 400 when the value is
// above 100.
func parseRate(w http.ResponseWriter, field, s string) (decimal.Decimal, bool) {
	d := parseAmount(s)
	if d.GreaterThan(hundred) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  msgValidation,
			"fields": validation.Errors{{Field: field, Error: "maksimal 100"}},
		})
		return decimal.Zero, false
	}
	return d, true
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func uuidPtr(id pgtype.UUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	u := uuid.UUID(id.Bytes)
	return &u
}

// Service errors grouped by the status they answer with. Anything else is a 500.
var (
	notFoundErrors = []error{
		pgx.ErrNoRows,
		service.ErrTransactionNotFound,
		service.ErrBarberNotFound,
		service.ErrAccountNotFound,
	}
	conflictErrors = []error{
		service.ErrTransactionNotCompleted,
		service.ErrTransactionLocked,
		service.ErrInsufficientBalance,
		service.ErrAccountInactive,
		service.ErrDefaultAccountMissing,
		service.ErrAlreadyCheckedIn,
		service.ErrAlreadyCheckedOut,
		service.ErrNotCheckedIn,
	}
	badRequestErrors = []error{
		service.ErrEmptyItems,
		service.ErrInvalidQuantity,
		service.ErrCatalogItemNotFound,
		service.ErrBarberRequired,
		service.ErrCustomerNotFound,
		service.ErrInvalidDiscount,
		service.ErrNegativePayment,
		service.ErrPaymentMismatch,
		service.ErrCashReceivedTooLow,
		service.ErrInvalidAttendanceStatus,
		service.ErrNonPositiveAmount,
	}
)

func matchAny(err error, targets []error) error {
	for _, t := range targets {
		if errors.Is(err, t) {
			return t
		}
	}
	return nil
}

// writeServiceError answers with the sentinel's text and its status, or a 500
// logged under msg.
func writeServiceError(w http.ResponseWriter, err error, msg string) {
	if t := matchAny(err, notFoundErrors); t != nil {
		if t == pgx.ErrNoRows {
			writeError(w, http.StatusNotFound, "data tidak ditemukan")
			return
		}
		writeError(w, http.StatusNotFound, t.Error())
		return
	}
	if t := matchAny(err, conflictErrors); t != nil {
		writeError(w, http.StatusConflict, t.Error())
		return
	}
	if t := matchAny(err, badRequestErrors); t != nil {
		writeError(w, http.StatusBadRequest, t.Error())
		return
	}
	serverError(w, err, msg)
}
