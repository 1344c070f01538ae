package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/metrics"
	"github.com/barberkas/api/internal/money"
	"github.com/barberkas/api/internal/sqlerr"
	"github.com/barberkas/api/internal/ws"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const dailyClosingConstraint = "daily_closings_branch_id_closing_date_key"

// Closing triggers, used as the metrics label.
const (
	TriggerManual    = "manual"
	TriggerScheduled = "scheduled"
)

var ErrAlreadyClosed = errors.New("tutup buku untuk tanggal ini sudah dilakukan")

// ClosingStore defines the DB methods needed for daily closing.
// Satisfied by *database.Queries.
type ClosingStore interface {
	GetDailySalesSummary(ctx context.Context, arg database.GetDailySalesSummaryParams) (database.GetDailySalesSummaryRow, error)
	SumExpenses(ctx context.Context, arg database.SumExpensesParams) (pgtype.Numeric, error)
	ListCashAccounts(ctx context.Context, branchID uuid.UUID) ([]database.CashAccount, error)
	CreateDailyClosing(ctx context.Context, arg database.CreateDailyClosingParams) (database.DailyClosing, error)
	GetDailyClosingByDate(ctx context.Context, arg database.GetDailyClosingByDateParams) (database.DailyClosing, error)
	ListBranches(ctx context.Context, includeInactive bool) ([]database.Branch, error)
}

type NewClosingStore func(db database.DBTX) ClosingStore

type ClosingService struct {
	pool      TxBeginner
	newStore  NewClosingStore
	publisher Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewClosingService(pool TxBeginner, newStore NewClosingStore, publisher Publisher, m *metrics.Metrics) *ClosingService {
	return &ClosingService{
		pool:      pool,
		newStore:  newStore,
		publisher: publisherOrNop(publisher),
		metrics:   m,
		now:       time.Now,
	}
}

// ClosingSummary is the state of one business day of a branch.
type ClosingSummary struct {
	Date             pgtype.Date
	TransactionCount int32
	TotalSales       decimal.Decimal
	CashSales        decimal.Decimal
	BankSales        decimal.Decimal
	QrisSales        decimal.Decimal
	TotalExpenses    decimal.Decimal
	Accounts         []database.CashAccount
	ClosingBalance   decimal.Decimal
	Closing          *database.DailyClosing
}

// Today is the current business date.
func (s *ClosingService) Today() pgtype.Date {
	return bizdate.Of(s.now())
}

// Summary reports sales, expenses and balances of a day, plus the closing
// record when the day is already closed.
func (s *ClosingService) Summary(ctx context.Context, branchID uuid.UUID, date pgtype.Date) (*ClosingSummary, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	sum, err := summarizeDay(ctx, store, branchID, date)
	if err != nil {
		return nil, err
	}

	closing, err := store.GetDailyClosingByDate(ctx, database.GetDailyClosingByDateParams{
		BranchID:    branchID,
		ClosingDate: date,
	})
	switch {
	case err == nil:
		sum.Closing = &closing
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, fmt.Errorf("get daily closing: %w", err)
	}
	return sum, nil
}

func summarizeDay(ctx context.Context, store ClosingStore, branchID uuid.UUID, date pgtype.Date) (*ClosingSummary, error) {
	sales, err := store.GetDailySalesSummary(ctx, database.GetDailySalesSummaryParams{
		BranchID:        branchID,
		TransactionDate: date,
	})
	if err != nil {
		return nil, fmt.Errorf("get daily sales summary: %w", err)
	}

	expenses, err := store.SumExpenses(ctx, database.SumExpensesParams{
		BranchID:  branchID,
		StartDate: date,
		EndDate:   date,
	})
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}

	accounts, err := store.ListCashAccounts(ctx, branchID)
	if err != nil {
		return nil, fmt.Errorf("list cash accounts: %w", err)
	}
	balance := decimal.Zero
	active := make([]database.CashAccount, 0, len(accounts))
	for _, a := range accounts {
		if !a.IsActive {
			continue
		}
		active = append(active, a)
		balance = balance.Add(money.FromNumeric(a.Balance))
	}

	return &ClosingSummary{
		Date:             date,
		TransactionCount: sales.TransactionCount,
		TotalSales:       money.FromNumeric(sales.TotalSales),
		CashSales:        money.FromNumeric(sales.CashSales),
		BankSales:        money.FromNumeric(sales.BankSales),
		QrisSales:        money.FromNumeric(sales.QrisSales),
		TotalExpenses:    money.FromNumeric(expenses),
		Accounts:         active,
		ClosingBalance:   balance,
	}, nil
}

type CloseRequest struct {
	BranchID uuid.UUID
	Date     pgtype.Date
	Notes    string
	// ClosedBy is uuid.Nil for scheduled closings.
	ClosedBy uuid.UUID
	Trigger  string
}

// Close snapshots the day's summary. Each branch closes a date only once.
func (s *ClosingService) Close(ctx context.Context, req CloseRequest) (database.DailyClosing, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.DailyClosing{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	sum, err := summarizeDay(ctx, store, req.BranchID, req.Date)
	if err != nil {
		return database.DailyClosing{}, err
	}

	closing, err := store.CreateDailyClosing(ctx, database.CreateDailyClosingParams{
		BranchID:         req.BranchID,
		ClosingDate:      req.Date,
		TransactionCount: sum.TransactionCount,
		TotalSales:       money.ToNumeric(sum.TotalSales),
		CashSales:        money.ToNumeric(sum.CashSales),
		BankSales:        money.ToNumeric(sum.BankSales),
		QrisSales:        money.ToNumeric(sum.QrisSales),
		TotalExpenses:    money.ToNumeric(sum.TotalExpenses),
		ClosingBalance:   money.ToNumeric(sum.ClosingBalance),
		Notes:            textOrNull(req.Notes),
		ClosedBy:         uuidOrNull(req.ClosedBy),
	})
	if err != nil {
		if sqlerr.IsUniqueViolation(err, dailyClosingConstraint) {
			return database.DailyClosing{}, ErrAlreadyClosed
		}
		return database.DailyClosing{}, fmt.Errorf("create daily closing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.DailyClosing{}, fmt.Errorf("commit: %w", err)
	}

	trigger := req.Trigger
	if trigger == "" {
		trigger = TriggerManual
	}
	if s.metrics != nil {
		s.metrics.DailyClosings.WithLabelValues(trigger).Inc()
	}
	s.publisher.Publish(req.BranchID, ws.EventDailyClosed, closing)
	return closing, nil
}

// CloseAllBranches closes date for every active branch that has not been
// closed yet. A failing branch does not stop the others; their errors are
// joined into the returned error.
func (s *ClosingService) CloseAllBranches(ctx context.Context, date pgtype.Date) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	branches, err := s.newStore(tx).ListBranches(ctx, false)
	tx.Rollback(ctx) //nolint:errcheck
	if err != nil {
		return 0, fmt.Errorf("list branches: %w", err)
	}

	closed := 0
	var errs []error
	for _, b := range branches {
		_, err := s.Close(ctx, CloseRequest{
			BranchID: b.ID,
			Date:     date,
			Notes:    "Tutup buku otomatis",
			Trigger:  TriggerScheduled,
		})
		switch {
		case err == nil:
			closed++
		case errors.Is(err, ErrAlreadyClosed):
			log.Debug().Str("branch_id", b.ID.String()).Str("date", bizdate.Format(date)).Msg("branch already closed")
		default:
			errs = append(errs, fmt.Errorf("branch %s: %w", b.ID, err))
		}
	}
	return closed, errors.Join(errs...)
}
