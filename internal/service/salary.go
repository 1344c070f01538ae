package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/metrics"
	"github.com/barberkas/api/internal/money"
	"github.com/barberkas/api/internal/ws"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the salary service.
var (
	ErrPeriodNotFound            = errors.New("periode gaji tidak ditemukan")
	ErrPeriodPaid                = errors.New("periode gaji sudah dibayar")
	ErrPeriodOverlap             = errors.New("periode gaji bertumpuk")
	ErrInvalidPeriodRange        = errors.New("tanggal mulai tidak boleh setelah tanggal selesai")
	ErrInvalidAdjustmentKind     = errors.New("jenis penyesuaian harus BONUS atau DEDUCTION")
	ErrAdjustmentNotFound        = errors.New("penyesuaian gaji tidak ditemukan")
	ErrNegativeDebtDeduction     = errors.New("potongan kasbon tidak boleh negatif")
	ErrDebtDeductionExceedsDebt  = errors.New("potongan kasbon melebihi sisa kasbon")
	ErrDebtDeductionExceedsGross = errors.New("potongan kasbon melebihi gaji kotor")
	ErrNegativeNetSalary         = errors.New("gaji bersih tidak boleh negatif")
)

// SalaryStore defines the DB methods needed for periods, debts and payment.
// Satisfied by *database.Queries.
type SalaryStore interface {
	LedgerStore
	GetBarber(ctx context.Context, arg database.GetBarberParams) (database.Barber, error)
	GetBarberForUpdate(ctx context.Context, arg database.GetBarberParams) (database.Barber, error)
	CountOverlappingPeriods(ctx context.Context, arg database.CountOverlappingPeriodsParams) (int64, error)
	CreateSalaryPeriod(ctx context.Context, arg database.CreateSalaryPeriodParams) (database.SalaryPeriod, error)
	GetSalaryPeriod(ctx context.Context, arg database.GetSalaryPeriodParams) (database.SalaryPeriod, error)
	GetSalaryPeriodForUpdate(ctx context.Context, arg database.GetSalaryPeriodParams) (database.SalaryPeriod, error)
	DeleteOpenSalaryPeriod(ctx context.Context, arg database.DeleteOpenSalaryPeriodParams) (uuid.UUID, error)
	MarkSalaryPeriodPaid(ctx context.Context, arg database.MarkSalaryPeriodPaidParams) (database.SalaryPeriod, error)
	CreateSalaryAdjustment(ctx context.Context, arg database.CreateSalaryAdjustmentParams) (database.SalaryAdjustment, error)
	ListSalaryAdjustments(ctx context.Context, periodID uuid.UUID) ([]database.SalaryAdjustment, error)
	DeleteSalaryAdjustment(ctx context.Context, arg database.DeleteSalaryAdjustmentParams) (uuid.UUID, error)
	SumBarberCommission(ctx context.Context, arg database.SumBarberCommissionParams) (database.SumBarberCommissionRow, error)
	CountPresentDays(ctx context.Context, arg database.CountPresentDaysParams) (int64, error)
	CreateSalaryDebt(ctx context.Context, arg database.CreateSalaryDebtParams) (database.SalaryDebt, error)
	ListOpenDebtsForUpdate(ctx context.Context, barberID uuid.UUID) ([]database.SalaryDebt, error)
	SumOutstandingDebt(ctx context.Context, barberID uuid.UUID) (pgtype.Numeric, error)
	ApplyDebtRepayment(ctx context.Context, arg database.ApplyDebtRepaymentParams) (database.SalaryDebt, error)
	CreateDebtRepayment(ctx context.Context, arg database.CreateDebtRepaymentParams) (database.DebtRepayment, error)
	CreateSalaryPayment(ctx context.Context, arg database.CreateSalaryPaymentParams) (database.SalaryPayment, error)
	GetSalaryPaymentByPeriod(ctx context.Context, periodID uuid.UUID) (database.SalaryPayment, error)
}

type NewSalaryStore func(db database.DBTX) SalaryStore

type SalaryService struct {
	pool      TxBeginner
	newStore  NewSalaryStore
	publisher Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewSalaryService(pool TxBeginner, newStore NewSalaryStore, publisher Publisher, m *metrics.Metrics) *SalaryService {
	return &SalaryService{
		pool:      pool,
		newStore:  newStore,
		publisher: publisherOrNop(publisher),
		metrics:   m,
		now:       time.Now,
	}
}

// PeriodSummary is the salary computation of one period. For a PAID period
// the money figures are the values snapshotted at payment.
type PeriodSummary struct {
	Period           database.SalaryPeriod       `json:"period"`
	BarberName       string                      `json:"barber_name"`
	BaseSalary       decimal.Decimal             `json:"base_salary"`
	Commission       decimal.Decimal             `json:"commission"`
	Bonus            decimal.Decimal             `json:"bonus"`
	Deduction        decimal.Decimal             `json:"deduction"`
	Gross            decimal.Decimal             `json:"gross"`
	DebtDeduction    decimal.Decimal             `json:"debt_deduction"`
	Net              decimal.Decimal             `json:"net"`
	OutstandingDebt  decimal.Decimal             `json:"outstanding_debt"`
	ServiceCount     int64                       `json:"service_count"`
	Revenue          decimal.Decimal             `json:"revenue"`
	TransactionCount int64                       `json:"transaction_count"`
	DaysPresent      int64                       `json:"days_present"`
	Adjustments      []database.SalaryAdjustment `json:"adjustments"`
	Payment          *database.SalaryPayment     `json:"payment,omitempty"`
}

type CreatePeriodRequest struct {
	BranchID  uuid.UUID
	BarberID  uuid.UUID
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

// CreatePeriod opens a salary period with the barber's current base salary.
func (s *SalaryService) CreatePeriod(ctx context.Context, req CreatePeriodRequest) (database.SalaryPeriod, error) {
	if req.StartDate.Time.After(req.EndDate.Time) {
		return database.SalaryPeriod{}, ErrInvalidPeriodRange
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.SalaryPeriod{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// The barber row lock serializes period creation per barber, so two
	// concurrent requests cannot both see no overlap.
	barber, err := store.GetBarberForUpdate(ctx, database.GetBarberParams{ID: req.BarberID, BranchID: req.BranchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.SalaryPeriod{}, ErrBarberNotFound
		}
		return database.SalaryPeriod{}, fmt.Errorf("lock barber: %w", err)
	}
	if !barber.IsActive {
		return database.SalaryPeriod{}, ErrBarberNotFound
	}

	n, err := store.CountOverlappingPeriods(ctx, database.CountOverlappingPeriodsParams{
		BarberID:  barber.ID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		return database.SalaryPeriod{}, fmt.Errorf("count overlapping periods: %w", err)
	}
	if n > 0 {
		return database.SalaryPeriod{}, ErrPeriodOverlap
	}

	period, err := store.CreateSalaryPeriod(ctx, database.CreateSalaryPeriodParams{
		BranchID:   req.BranchID,
		BarberID:   barber.ID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		BaseSalary: barber.BaseSalary,
	})
	if err != nil {
		return database.SalaryPeriod{}, fmt.Errorf("create salary period: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.SalaryPeriod{}, fmt.Errorf("commit: %w", err)
	}
	return period, nil
}

// DeletePeriod removes an OPEN period and its adjustments.
func (s *SalaryService) DeletePeriod(ctx context.Context, branchID, periodID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	if _, err := lockOpenPeriod(ctx, store, branchID, periodID); err != nil {
		return err
	}
	if _, err := store.DeleteOpenSalaryPeriod(ctx, database.DeleteOpenSalaryPeriodParams{
		ID:       periodID,
		BranchID: branchID,
	}); err != nil {
		return fmt.Errorf("delete salary period: %w", err)
	}
	return tx.Commit(ctx)
}

// Summary computes the live salary figures of a period.
func (s *SalaryService) Summary(ctx context.Context, branchID, periodID uuid.UUID) (*PeriodSummary, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	period, err := store.GetSalaryPeriod(ctx, database.GetSalaryPeriodParams{
		ID:       periodID,
		BranchID: branchID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPeriodNotFound
		}
		return nil, fmt.Errorf("get salary period: %w", err)
	}
	return summarize(ctx, store, period)
}

func summarize(ctx context.Context, store SalaryStore, period database.SalaryPeriod) (*PeriodSummary, error) {
	barber, err := store.GetBarber(ctx, database.GetBarberParams{
		ID:       period.BarberID,
		BranchID: period.BranchID,
	})
	if err != nil {
		return nil, fmt.Errorf("get barber: %w", err)
	}

	comm, err := store.SumBarberCommission(ctx, database.SumBarberCommissionParams{
		BarberID:  period.BarberID,
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
	})
	if err != nil {
		return nil, fmt.Errorf("sum barber commission: %w", err)
	}

	present, err := store.CountPresentDays(ctx, database.CountPresentDaysParams{
		BarberID:  period.BarberID,
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
	})
	if err != nil {
		return nil, fmt.Errorf("count present days: %w", err)
	}

	adjustments, err := store.ListSalaryAdjustments(ctx, period.ID)
	if err != nil {
		return nil, fmt.Errorf("list salary adjustments: %w", err)
	}

	outstanding, err := store.SumOutstandingDebt(ctx, period.BarberID)
	if err != nil {
		return nil, fmt.Errorf("sum outstanding debt: %w", err)
	}

	sum := &PeriodSummary{
		Period:           period,
		BarberName:       barber.Name,
		BaseSalary:       money.FromNumeric(period.BaseSalary),
		OutstandingDebt:  money.FromNumeric(outstanding),
		ServiceCount:     comm.ServiceCount,
		Revenue:          money.FromNumeric(comm.Revenue),
		TransactionCount: comm.TransactionCount,
		DaysPresent:      present,
		Adjustments:      adjustments,
	}

	if period.Status == enum.SalaryPeriodPaid {
		sum.Commission = money.FromNumeric(period.CommissionTotal)
		sum.Bonus = money.FromNumeric(period.BonusTotal)
		sum.Deduction = money.FromNumeric(period.DeductionTotal)
		sum.DebtDeduction = money.FromNumeric(period.DebtDeduction)
		payment, err := store.GetSalaryPaymentByPeriod(ctx, period.ID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get salary payment: %w", err)
		}
		if err == nil {
			sum.Payment = &payment
		}
	} else {
		sum.Commission = money.FromNumeric(comm.Commission)
		sum.Bonus, sum.Deduction = totalAdjustments(adjustments)
	}

	sum.Gross = sum.BaseSalary.Add(sum.Commission).Add(sum.Bonus).Sub(sum.Deduction)
	sum.Net = sum.Gross.Sub(sum.DebtDeduction)
	return sum, nil
}

func totalAdjustments(adjustments []database.SalaryAdjustment) (bonus, deduction decimal.Decimal) {
	for _, a := range adjustments {
		switch a.Kind {
		case enum.AdjustmentBonus:
			bonus = bonus.Add(money.FromNumeric(a.Amount))
		case enum.AdjustmentDeduction:
			deduction = deduction.Add(money.FromNumeric(a.Amount))
		}
	}
	return bonus, deduction
}

type AdjustmentRequest struct {
	BranchID    uuid.UUID
	PeriodID    uuid.UUID
	Kind        string
	Amount      decimal.Decimal
	Description string
}

// AddAdjustment adds a bonus or deduction to an OPEN period.
func (s *SalaryService) AddAdjustment(ctx context.Context, req AdjustmentRequest) (database.SalaryAdjustment, error) {
	if req.Kind != enum.AdjustmentBonus && req.Kind != enum.AdjustmentDeduction {
		return database.SalaryAdjustment{}, ErrInvalidAdjustmentKind
	}
	if !req.Amount.IsPositive() {
		return database.SalaryAdjustment{}, ErrNonPositiveAmount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.SalaryAdjustment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	if _, err := lockOpenPeriod(ctx, store, req.BranchID, req.PeriodID); err != nil {
		return database.SalaryAdjustment{}, err
	}

	adj, err := store.CreateSalaryAdjustment(ctx, database.CreateSalaryAdjustmentParams{
		PeriodID:    req.PeriodID,
		Kind:        req.Kind,
		Amount:      money.ToNumeric(req.Amount),
		Description: req.Description,
	})
	if err != nil {
		return database.SalaryAdjustment{}, fmt.Errorf("create salary adjustment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.SalaryAdjustment{}, fmt.Errorf("commit: %w", err)
	}
	return adj, nil
}

// DeleteAdjustment removes an adjustment from an OPEN period.
func (s *SalaryService) DeleteAdjustment(ctx context.Context, branchID, periodID, adjustmentID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	if _, err := lockOpenPeriod(ctx, store, branchID, periodID); err != nil {
		return err
	}

	if _, err := store.DeleteSalaryAdjustment(ctx, database.DeleteSalaryAdjustmentParams{
		ID:       adjustmentID,
		PeriodID: periodID,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAdjustmentNotFound
		}
		return fmt.Errorf("delete salary adjustment: %w", err)
	}
	return tx.Commit(ctx)
}

type CreateDebtRequest struct {
	BranchID    uuid.UUID
	BarberID    uuid.UUID
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Description string
	// DebtDate defaults to today when not valid.
	DebtDate  pgtype.Date
	CreatedBy uuid.UUID
}

// CreateDebt lends money to a barber (kasbon) out of a cash account.
func (s *SalaryService) CreateDebt(ctx context.Context, req CreateDebtRequest) (database.SalaryDebt, error) {
	if !req.Amount.IsPositive() {
		return database.SalaryDebt{}, ErrNonPositiveAmount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.SalaryDebt{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	barber, err := activeBarber(ctx, store, req.BranchID, req.BarberID)
	if err != nil {
		return database.SalaryDebt{}, err
	}
	acct, err := lockAccount(ctx, store, req.BranchID, req.AccountID)
	if err != nil {
		return database.SalaryDebt{}, err
	}
	if money.FromNumeric(acct.Balance).LessThan(req.Amount) {
		return database.SalaryDebt{}, ErrInsufficientBalance
	}

	debtDate := req.DebtDate
	if !debtDate.Valid {
		debtDate = bizdate.Of(s.now())
	}

	debt, err := store.CreateSalaryDebt(ctx, database.CreateSalaryDebtParams{
		BranchID:    req.BranchID,
		BarberID:    barber.ID,
		AccountID:   acct.ID,
		Amount:      money.ToNumeric(req.Amount),
		Description: textOrNull(req.Description),
		DebtDate:    debtDate,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return database.SalaryDebt{}, fmt.Errorf("create salary debt: %w", err)
	}

	_, mv, err := post(ctx, store, acct, posting{
		Direction:   enum.DirectionOut,
		Category:    enum.MovementDebt,
		Amount:      req.Amount,
		Description: "Kasbon " + barber.Name,
		RefType:     enum.RefSalaryDebt,
		RefID:       debt.ID,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return database.SalaryDebt{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return database.SalaryDebt{}, fmt.Errorf("commit: %w", err)
	}

	s.publisher.Publish(req.BranchID, ws.EventCashMovement, mv)
	return debt, nil
}

type PayPeriodRequest struct {
	BranchID      uuid.UUID
	PeriodID      uuid.UUID
	AccountID     uuid.UUID
	DebtDeduction decimal.Decimal
	PaidBy        uuid.UUID
}

type PayPeriodResult struct {
	Summary    *PeriodSummary           `json:"summary"`
	Payment    database.SalaryPayment   `json:"payment"`
	Repayments []database.DebtRepayment `json:"repayments"`
}

// PayPeriod settles an OPEN period: the net salary leaves the account, the
// debt deduction repays open debts oldest first and the computed totals are
// frozen on the period.
func (s *SalaryService) PayPeriod(ctx context.Context, req PayPeriodRequest) (*PayPeriodResult, error) {
	if req.DebtDeduction.IsNegative() {
		return nil, ErrNegativeDebtDeduction
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	period, err := lockOpenPeriod(ctx, store, req.BranchID, req.PeriodID)
	if err != nil {
		return nil, err
	}

	sum, err := summarize(ctx, store, period)
	if err != nil {
		return nil, err
	}

	if sum.Gross.IsNegative() {
		return nil, ErrNegativeNetSalary
	}
	if req.DebtDeduction.GreaterThan(sum.OutstandingDebt) {
		return nil, ErrDebtDeductionExceedsDebt
	}
	if req.DebtDeduction.GreaterThan(sum.Gross) {
		return nil, ErrDebtDeductionExceedsGross
	}
	net := sum.Gross.Sub(req.DebtDeduction)

	acct, err := lockAccount(ctx, store, req.BranchID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if net.IsPositive() {
		if _, _, err := post(ctx, store, acct, posting{
			Direction:   enum.DirectionOut,
			Category:    enum.MovementSalary,
			Amount:      net,
			Description: fmt.Sprintf("Gaji %s %s s/d %s", sum.BarberName, bizdate.Format(period.StartDate), bizdate.Format(period.EndDate)),
			RefType:     enum.RefSalaryPeriod,
			RefID:       period.ID,
			CreatedBy:   req.PaidBy,
		}); err != nil {
			return nil, err
		}
	}

	repayments, err := repayDebts(ctx, store, period, req.DebtDeduction)
	if err != nil {
		return nil, err
	}

	payment, err := store.CreateSalaryPayment(ctx, database.CreateSalaryPaymentParams{
		PeriodID:  period.ID,
		AccountID: acct.ID,
		Amount:    money.ToNumeric(net),
		PaidBy:    req.PaidBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create salary payment: %w", err)
	}

	paid, err := store.MarkSalaryPeriodPaid(ctx, database.MarkSalaryPeriodPaidParams{
		ID:              period.ID,
		CommissionTotal: money.ToNumeric(sum.Commission),
		BonusTotal:      money.ToNumeric(sum.Bonus),
		DeductionTotal:  money.ToNumeric(sum.Deduction),
		DebtDeduction:   money.ToNumeric(req.DebtDeduction),
		NetAmount:       money.ToNumeric(net),
		PaidBy:          uuidOrNull(req.PaidBy),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPeriodPaid
		}
		return nil, fmt.Errorf("mark salary period paid: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	sum.Period = paid
	sum.DebtDeduction = req.DebtDeduction
	sum.Net = net
	sum.OutstandingDebt = sum.OutstandingDebt.Sub(req.DebtDeduction)
	sum.Payment = &payment

	if s.metrics != nil {
		s.metrics.SalaryPayments.Inc()
	}
	s.publisher.Publish(req.BranchID, ws.EventSalaryPaid, sum)
	return &PayPeriodResult{Summary: sum, Payment: payment, Repayments: repayments}, nil
}

// repayDebts spreads amount over the barber's open debts, oldest first.
func repayDebts(ctx context.Context, store SalaryStore, period database.SalaryPeriod, amount decimal.Decimal) ([]database.DebtRepayment, error) {
	repayments := []database.DebtRepayment{}
	if !amount.IsPositive() {
		return repayments, nil
	}

	debts, err := store.ListOpenDebtsForUpdate(ctx, period.BarberID)
	if err != nil {
		return nil, fmt.Errorf("list open debts: %w", err)
	}

	left := amount
	for _, debt := range debts {
		if !left.IsPositive() {
			break
		}
		part := decimal.Min(left, money.FromNumeric(debt.Remaining))
		if !part.IsPositive() {
			continue
		}
		if _, err := store.ApplyDebtRepayment(ctx, database.ApplyDebtRepaymentParams{
			ID:     debt.ID,
			Amount: money.ToNumeric(part),
		}); err != nil {
			return nil, fmt.Errorf("apply debt repayment: %w", err)
		}
		rep, err := store.CreateDebtRepayment(ctx, database.CreateDebtRepaymentParams{
			DebtID:   debt.ID,
			PeriodID: period.ID,
			Amount:   money.ToNumeric(part),
		})
		if err != nil {
			return nil, fmt.Errorf("create debt repayment: %w", err)
		}
		repayments = append(repayments, rep)
		left = left.Sub(part)
	}

	if left.IsPositive() {
		return nil, ErrDebtDeductionExceedsDebt
	}
	return repayments, nil
}

// lockOpenPeriod loads a period FOR UPDATE and requires it to be OPEN.
func lockOpenPeriod(ctx context.Context, store SalaryStore, branchID, periodID uuid.UUID) (database.SalaryPeriod, error) {
	period, err := store.GetSalaryPeriodForUpdate(ctx, database.GetSalaryPeriodParams{
		ID:       periodID,
		BranchID: branchID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.SalaryPeriod{}, ErrPeriodNotFound
		}
		return database.SalaryPeriod{}, fmt.Errorf("lock salary period: %w", err)
	}
	if period.Status != enum.SalaryPeriodOpen {
		return database.SalaryPeriod{}, ErrPeriodPaid
	}
	return period, nil
}

func activeBarber(ctx context.Context, store SalaryStore, branchID, barberID uuid.UUID) (database.Barber, error) {
	barber, err := store.GetBarber(ctx, database.GetBarberParams{
		ID:       barberID,
		BranchID: branchID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Barber{}, ErrBarberNotFound
		}
		return database.Barber{}, fmt.Errorf("get barber: %w", err)
	}
	if !barber.IsActive {
		return database.Barber{}, ErrBarberNotFound
	}
	return barber, nil
}
