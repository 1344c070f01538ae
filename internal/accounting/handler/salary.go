package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/money"
	"github.com/barberkas/api/internal/service"
	"github.com/barberkas/api/internal/slip"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// --- Store / service interfaces ---

// SalaryStore defines the database reads needed by salary handlers.
type SalaryStore interface {
	ListSalaryPeriods(ctx context.Context, arg database.ListSalaryPeriodsParams) ([]database.SalaryPeriod, error)
	ListSalaryDebts(ctx context.Context, arg database.ListSalaryDebtsParams) ([]database.SalaryDebt, error)
	GetBranch(ctx context.Context, id uuid.UUID) (database.Branch, error)
}

// SalaryServicer is satisfied by *service.SalaryService.
type SalaryServicer interface {
	CreatePeriod(ctx context.Context, req service.CreatePeriodRequest) (database.SalaryPeriod, error)
	DeletePeriod(ctx context.Context, branchID, periodID uuid.UUID) error
	Summary(ctx context.Context, branchID, periodID uuid.UUID) (*service.PeriodSummary, error)
	AddAdjustment(ctx context.Context, req service.AdjustmentRequest) (database.SalaryAdjustment, error)
	DeleteAdjustment(ctx context.Context, branchID, periodID, adjustmentID uuid.UUID) error
	CreateDebt(ctx context.Context, req service.CreateDebtRequest) (database.SalaryDebt, error)
	PayPeriod(ctx context.Context, req service.PayPeriodRequest) (*service.PayPeriodResult, error)
}

// --- SalaryHandler ---

// SalaryHandler handles salary periods, adjustments, kasbon and payment.
// All routes are back-office only; mount behind OWNER/ADMIN.
type SalaryHandler struct {
	svc   SalaryServicer
	store SalaryStore
}

// NewSalaryHandler creates a new SalaryHandler.
func NewSalaryHandler(svc SalaryServicer, store SalaryStore) *SalaryHandler {
	return &SalaryHandler{svc: svc, store: store}
}

// RegisterPeriodRoutes registers /branches/{bid}/salary/periods.
func (h *SalaryHandler) RegisterPeriodRoutes(r chi.Router) {
	r.Get("/", h.ListPeriods)
	r.Post("/", h.CreatePeriod)
	r.Get("/{id}", h.GetPeriod)
	r.Delete("/{id}", h.DeletePeriod)
	r.Post("/{id}/adjustments", h.AddAdjustment)
	r.Delete("/{id}/adjustments/{adjID}", h.DeleteAdjustment)
	r.Post("/{id}/pay", h.Pay)
	r.Get("/{id}/slip.pdf", h.Slip)
}

// RegisterDebtRoutes registers /branches/{bid}/salary/debts.
func (h *SalaryHandler) RegisterDebtRoutes(r chi.Router) {
	r.Get("/", h.ListDebts)
	r.Post("/", h.CreateDebt)
}

// --- Request / Response types ---

type createPeriodRequest struct {
	BarberID  string `json:"barber_id" validate:"required,uuid"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type adjustmentRequest struct {
	Kind        string `json:"kind" validate:"required,oneof=BONUS DEDUCTION"`
	Amount      string `json:"amount" validate:"required,money"`
	Description string `json:"description" validate:"required,max=255"`
}

type payRequest struct {
	AccountID     string `json:"account_id" validate:"required,uuid"`
	DebtDeduction string `json:"debt_deduction" validate:"omitempty,money"`
}

type createDebtRequest struct {
	BarberID    string `json:"barber_id" validate:"required,uuid"`
	AccountID   string `json:"account_id" validate:"required,uuid"`
	Amount      string `json:"amount" validate:"required,money"`
	Description string `json:"description" validate:"max=255"`
	DebtDate    string `json:"debt_date" validate:"omitempty,datetime=2006-01-02"`
}

type periodResponse struct {
	ID              uuid.UUID  `json:"id"`
	BarberID        uuid.UUID  `json:"barber_id"`
	StartDate       string     `json:"start_date"`
	EndDate         string     `json:"end_date"`
	Status          string     `json:"status"`
	BaseSalary      string     `json:"base_salary"`
	CommissionTotal *string    `json:"commission_total"`
	BonusTotal      *string    `json:"bonus_total"`
	DeductionTotal  *string    `json:"deduction_total"`
	DebtDeduction   *string    `json:"debt_deduction"`
	NetAmount       *string    `json:"net_amount"`
	PaidAt          *time.Time `json:"paid_at"`
	PaidBy          *uuid.UUID `json:"paid_by"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toPeriodResponse(p database.SalaryPeriod) periodResponse {
	resp := periodResponse{
		ID:              p.ID,
		BarberID:        p.BarberID,
		StartDate:       bizdate.Format(p.StartDate),
		EndDate:         bizdate.Format(p.EndDate),
		Status:          p.Status,
		BaseSalary:      money.String(p.BaseSalary),
		CommissionTotal: money.StringPtr(p.CommissionTotal),
		BonusTotal:      money.StringPtr(p.BonusTotal),
		DeductionTotal:  money.StringPtr(p.DeductionTotal),
		DebtDeduction:   money.StringPtr(p.DebtDeduction),
		NetAmount:       money.StringPtr(p.NetAmount),
		PaidBy:          uuidPtr(p.PaidBy),
		CreatedAt:       p.CreatedAt,
	}
	if p.PaidAt.Valid {
		t := p.PaidAt.Time
		resp.PaidAt = &t
	}
	return resp
}

type adjustmentResponse struct {
	ID          uuid.UUID `json:"id"`
	Kind        string    `json:"kind"`
	Amount      string    `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toAdjustmentResponse(a database.SalaryAdjustment) adjustmentResponse {
	return adjustmentResponse{
		ID:          a.ID,
		Kind:        a.Kind,
		Amount:      money.String(a.Amount),
		Description: a.Description,
		CreatedAt:   a.CreatedAt,
	}
}

type paymentResponse struct {
	ID        uuid.UUID `json:"id"`
	AccountID uuid.UUID `json:"account_id"`
	Amount    string    `json:"amount"`
	PaidBy    uuid.UUID `json:"paid_by"`
	PaidAt    time.Time `json:"paid_at"`
}

func toPaymentResponse(p database.SalaryPayment) paymentResponse {
	return paymentResponse{
		ID:        p.ID,
		AccountID: p.AccountID,
		Amount:    money.String(p.Amount),
		PaidBy:    p.PaidBy,
		PaidAt:    p.PaidAt,
	}
}

type summaryResponse struct {
	Period           periodResponse       `json:"period"`
	BarberName       string               `json:"barber_name"`
	BaseSalary       string               `json:"base_salary"`
	Commission       string               `json:"commission"`
	Bonus            string               `json:"bonus"`
	Deduction        string               `json:"deduction"`
	Gross            string               `json:"gross"`
	DebtDeduction    string               `json:"debt_deduction"`
	Net              string               `json:"net"`
	OutstandingDebt  string               `json:"outstanding_debt"`
	ServiceCount     int64                `json:"service_count"`
	Revenue          string               `json:"revenue"`
	TransactionCount int64                `json:"transaction_count"`
	DaysPresent      int64                `json:"days_present"`
	Adjustments      []adjustmentResponse `json:"adjustments"`
	Payment          *paymentResponse     `json:"payment"`
}

func toSummaryResponse(s *service.PeriodSummary) summaryResponse {
	resp := summaryResponse{
		Period:           toPeriodResponse(s.Period),
		BarberName:       s.BarberName,
		BaseSalary:       decimalString(s.BaseSalary),
		Commission:       decimalString(s.Commission),
		Bonus:            decimalString(s.Bonus),
		Deduction:        decimalString(s.Deduction),
		Gross:            decimalString(s.Gross),
		DebtDeduction:    decimalString(s.DebtDeduction),
		Net:              decimalString(s.Net),
		OutstandingDebt:  decimalString(s.OutstandingDebt),
		ServiceCount:     s.ServiceCount,
		Revenue:          decimalString(s.Revenue),
		TransactionCount: s.TransactionCount,
		DaysPresent:      s.DaysPresent,
		Adjustments:      make([]adjustmentResponse, len(s.Adjustments)),
	}
	for i, a := range s.Adjustments {
		resp.Adjustments[i] = toAdjustmentResponse(a)
	}
	if s.Payment != nil {
		p := toPaymentResponse(*s.Payment)
		resp.Payment = &p
	}
	return resp
}

type debtResponse struct {
	ID          uuid.UUID `json:"id"`
	BarberID    uuid.UUID `json:"barber_id"`
	AccountID   uuid.UUID `json:"account_id"`
	Amount      string    `json:"amount"`
	Remaining   string    `json:"remaining"`
	Description *string   `json:"description"`
	DebtDate    string    `json:"debt_date"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toDebtResponse(d database.SalaryDebt) debtResponse {
	return debtResponse{
		ID:          d.ID,
		BarberID:    d.BarberID,
		AccountID:   d.AccountID,
		Amount:      money.String(d.Amount),
		Remaining:   money.String(d.Remaining),
		Description: textPtr(d.Description),
		DebtDate:    bizdate.Format(d.DebtDate),
		Status:      d.Status,
		CreatedAt:   d.CreatedAt,
	}
}

type repaymentResponse struct {
	DebtID uuid.UUID `json:"debt_id"`
	Amount string    `json:"amount"`
}

// --- Period handlers ---

// ListPeriods handles GET /salary/periods?barber_id=&status=.
func (h *SalaryHandler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	barber, ok := optionalUUID(w, r, "barber_id")
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	if status != "" && status != enum.SalaryPeriodOpen && status != enum.SalaryPeriodPaid {
		writeError(w, http.StatusBadRequest, "status harus OPEN atau PAID")
		return
	}
	limit, offset := parsePagination(r)

	periods, err := h.store.ListSalaryPeriods(r.Context(), database.ListSalaryPeriodsParams{
		BranchID: bid,
		BarberID: barber,
		Status:   textOrNull(status),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		serverError(w, err, "list salary periods")
		return
	}
	resp := make([]periodResponse, len(periods))
	for i, p := range periods {
		resp[i] = toPeriodResponse(p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SalaryHandler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	var req createPeriodRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	start, ok := optionalDate(w, "start_date", req.StartDate)
	if !ok {
		return
	}
	end, ok := optionalDate(w, "end_date", req.EndDate)
	if !ok {
		return
	}

	period, err := h.svc.CreatePeriod(r.Context(), service.CreatePeriodRequest{
		BranchID:  bid,
		BarberID:  parseUUIDOrNil(req.BarberID),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		writeServiceError(w, err, "create salary period")
		return
	}
	writeJSON(w, http.StatusCreated, toPeriodResponse(period))
}

// GetPeriod returns the period with its live (or, once paid, frozen) summary.
func (h *SalaryHandler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "periode")
	if !ok {
		return
	}
	sum, err := h.svc.Summary(r.Context(), bid, id)
	if err != nil {
		writeServiceError(w, err, "salary summary")
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(sum))
}

func (h *SalaryHandler) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "periode")
	if !ok {
		return
	}
	if err := h.svc.DeletePeriod(r.Context(), bid, id); err != nil {
		writeServiceError(w, err, "delete salary period")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *SalaryHandler) AddAdjustment(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "periode")
	if !ok {
		return
	}
	var req adjustmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	adj, err := h.svc.AddAdjustment(r.Context(), service.AdjustmentRequest{
		BranchID:    bid,
		PeriodID:    id,
		Kind:        req.Kind,
		Amount:      parseAmount(req.Amount),
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, err, "add salary adjustment")
		return
	}
	writeJSON(w, http.StatusCreated, toAdjustmentResponse(adj))
}

func (h *SalaryHandler) DeleteAdjustment(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "periode")
	if !ok {
		return
	}
	adjID, ok := urlUUID(w, r, "adjID", "penyesuaian")
	if !ok {
		return
	}
	if err := h.svc.DeleteAdjustment(r.Context(), bid, id, adjID); err != nil {
		writeServiceError(w, err, "delete salary adjustment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Pay settles the period out of the given account.
func (h *SalaryHandler) Pay(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "periode")
	if !ok {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req payRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.PayPeriod(r.Context(), service.PayPeriodRequest{
		BranchID:      bid,
		PeriodID:      id,
		AccountID:     parseUUIDOrNil(req.AccountID),
		DebtDeduction: parseAmount(req.DebtDeduction),
		PaidBy:        claims.UserID,
	})
	if err != nil {
		writeServiceError(w, err, "pay salary")
		return
	}

	repayments := make([]repaymentResponse, len(res.Repayments))
	for i, rp := range res.Repayments {
		repayments[i] = repaymentResponse{DebtID: rp.DebtID, Amount: money.String(rp.Amount)}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":    toSummaryResponse(res.Summary),
		"payment":    toPaymentResponse(res.Payment),
		"repayments": repayments,
	})
}

// Slip renders the salary slip PDF of a period.
func (h *SalaryHandler) Slip(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	id, ok := urlUUID(w, r, "id", "periode")
	if !ok {
		return
	}
	sum, err := h.svc.Summary(r.Context(), bid, id)
	if err != nil {
		writeServiceError(w, err, "salary slip summary")
		return
	}
	branch, err := h.store.GetBranch(r.Context(), bid)
	if err != nil {
		writeServiceError(w, err, "salary slip branch")
		return
	}

	var buf bytes.Buffer
	if err := slip.Render(&buf, toSlip(branch.Name, sum)); err != nil {
		serverError(w, err, "render salary slip")
		return
	}

	name := fmt.Sprintf("slip-gaji-%s-%s.pdf", bizdate.Compact(sum.Period.StartDate), sum.Period.ID.String()[:8])
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Warn().Err(err).Msg("write salary slip")
	}
}

func toSlip(branchName string, s *service.PeriodSummary) slip.Slip {
	out := slip.Slip{
		BranchName:       branchName,
		BarberName:       s.BarberName,
		StartDate:        s.Period.StartDate.Time,
		EndDate:          s.Period.EndDate.Time,
		Status:           s.Period.Status,
		BaseSalary:       s.BaseSalary,
		Commission:       s.Commission,
		Bonus:            s.Bonus,
		Deduction:        s.Deduction,
		Gross:            s.Gross,
		DebtDeduction:    s.DebtDeduction,
		Net:              s.Net,
		ServiceCount:     s.ServiceCount,
		TransactionCount: s.TransactionCount,
		DaysPresent:      s.DaysPresent,
	}
	if s.Period.PaidAt.Valid {
		t := s.Period.PaidAt.Time.In(bizdate.Location)
		out.PaidAt = &t
	}
	for _, a := range s.Adjustments {
		out.Adjustments = append(out.Adjustments, slip.Adjustment{
			Kind:        a.Kind,
			Description: a.Description,
			Amount:      money.FromNumeric(a.Amount),
		})
	}
	return out
}

// --- Debt handlers ---

// ListDebts handles GET /salary/debts?barber_id=&status=.
func (h *SalaryHandler) ListDebts(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	barber, ok := optionalUUID(w, r, "barber_id")
	if !ok {
		return
	}
	status := r.URL.Query().Get("status")
	if status != "" && status != enum.DebtStatusOpen && status != enum.DebtStatusSettled {
		writeError(w, http.StatusBadRequest, "status harus OPEN atau SETTLED")
		return
	}

	debts, err := h.store.ListSalaryDebts(r.Context(), database.ListSalaryDebtsParams{
		BranchID: bid,
		BarberID: barber,
		Status:   textOrNull(status),
	})
	if err != nil {
		serverError(w, err, "list salary debts")
		return
	}

	resp := make([]debtResponse, len(debts))
	outstanding := decimal.Zero
	for i, d := range debts {
		resp[i] = toDebtResponse(d)
		outstanding = outstanding.Add(money.FromNumeric(d.Remaining))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"debts":       resp,
		"outstanding": decimalString(outstanding),
	})
}

// CreateDebt lends money (kasbon) to a barber out of an account.
func (h *SalaryHandler) CreateDebt(w http.ResponseWriter, r *http.Request) {
	bid, ok := branchID(w, r)
	if !ok {
		return
	}
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}
	var req createDebtRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	date, ok := optionalDate(w, "debt_date", req.DebtDate)
	if !ok {
		return
	}

	debt, err := h.svc.CreateDebt(r.Context(), service.CreateDebtRequest{
		BranchID:    bid,
		BarberID:    parseUUIDOrNil(req.BarberID),
		AccountID:   parseUUIDOrNil(req.AccountID),
		Amount:      parseAmount(req.Amount),
		Description: req.Description,
		DebtDate:    date,
		CreatedBy:   claims.UserID,
	})
	if err != nil {
		writeServiceError(w, err, "create salary debt")
		return
	}
	writeJSON(w, http.StatusCreated, toDebtResponse(debt))
}
