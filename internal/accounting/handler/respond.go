package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/barberkas/api/internal/accounting/parser"
	"github.com/barberkas/api/internal/auth"
	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/middleware"
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
	msgNotFound   = "data tidak ditemukan"
	msgNoClaims   = "belum login"

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

func serverError(w http.ResponseWriter, err error, msg string) {
	log.Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, msgInternal)
}

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

// requireClaims returns the caller's claims or answers 401.
func requireClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, msgNoClaims)
		return nil, false
	}
	return claims, true
}

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

// parseDateRange reads start_date and end_date (YYYY-MM-DD). Missing bounds
// default to month to date.
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

// optionalDate parses a YYYY-MM-DD body field; empty yields an invalid date
// so the service picks today.
func optionalDate(w http.ResponseWriter, field, s string) (pgtype.Date, bool) {
	d, err := bizdate.ParseOptional(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, field+": "+err.Error())
		return pgtype.Date{}, false
	}
	return d, true
}

// parseAmount converts a money string already checked by the money tag.
func parseAmount(s string) decimal.Decimal {
	d, _ := money.Parse(s)
	return d
}

func parseUUIDOrNil(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
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

func decimalString(d decimal.Decimal) string {
	return d.StringFixed(2)
}

var (
	notFoundErrors = []error{
		service.ErrAccountNotFound,
		service.ErrBarberNotFound,
		service.ErrExpenseCategoryNotFound,
		service.ErrExpenseNotFound,
		service.ErrPeriodNotFound,
		service.ErrAdjustmentNotFound,
	}
	conflictErrors = []error{
		service.ErrInsufficientBalance,
		service.ErrAccountInactive,
		service.ErrDefaultAccountMissing,
		service.ErrDefaultAccountLocked,
		service.ErrAccountHasBalance,
		service.ErrPeriodPaid,
		service.ErrPeriodOverlap,
		service.ErrAlreadyClosed,
	}
	badRequestErrors = []error{
		service.ErrNonPositiveAmount,
		service.ErrInvalidAccountKind,
		service.ErrSameAccount,
		service.ErrNegativeOpening,
		service.ErrInvalidPeriodRange,
		service.ErrInvalidAdjustmentKind,
		service.ErrNegativeDebtDeduction,
		service.ErrDebtDeductionExceedsDebt,
		service.ErrDebtDeductionExceedsGross,
		service.ErrNegativeNetSalary,
		service.ErrInvalidLineIndex,
		parser.ErrEmptyNote,
		parser.ErrNoLines,
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

// writeServiceError maps service sentinels to 404, 409 or 400 with the
// sentinel text. Anything else is logged under msg and answered with 500.
func writeServiceError(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, pgx.ErrNoRows) {
		writeError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if t := matchAny(err, notFoundErrors); t != nil {
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
