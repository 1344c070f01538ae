package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/barberkas/api/internal/accounting/matcher"
	"github.com/barberkas/api/internal/accounting/parser"
	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/money"
	"github.com/barberkas/api/internal/ws"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Errors returned by the expense service.
var (
	ErrExpenseCategoryNotFound = errors.New("kategori pengeluaran tidak ditemukan")
	ErrExpenseNotFound         = errors.New("pengeluaran tidak ditemukan")
	ErrUnresolvedLines         = errors.New("ada baris yang belum cocok dengan kategori")
	ErrInvalidLineIndex        = errors.New("nomor baris tidak valid")
)

// ExpenseStore defines the DB methods needed to book and refund expenses.
// Satisfied by *database.Queries.
type ExpenseStore interface {
	LedgerStore
	ListExpenseCategories(ctx context.Context, branchID uuid.UUID) ([]database.ExpenseCategory, error)
	GetExpenseCategory(ctx context.Context, arg database.GetExpenseCategoryParams) (database.ExpenseCategory, error)
	CreateExpense(ctx context.Context, arg database.CreateExpenseParams) (database.Expense, error)
	GetExpenseForUpdate(ctx context.Context, arg database.GetExpenseForUpdateParams) (database.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error
}

type NewExpenseStore func(db database.DBTX) ExpenseStore

type ExpenseService struct {
	pool      TxBeginner
	newStore  NewExpenseStore
	publisher Publisher
	now       func() time.Time
}

func NewExpenseService(pool TxBeginner, newStore NewExpenseStore, publisher Publisher) *ExpenseService {
	return &ExpenseService{
		pool:      pool,
		newStore:  newStore,
		publisher: publisherOrNop(publisher),
		now:       time.Now,
	}
}

type CreateExpenseRequest struct {
	BranchID    uuid.UUID
	CategoryID  uuid.UUID
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Description string
	// ExpenseDate defaults to today when not valid.
	ExpenseDate pgtype.Date
	CreatedBy   uuid.UUID
}

// Create books an expense and pays it out of the account.
func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (database.Expense, error) {
	if !req.Amount.IsPositive() {
		return database.Expense{}, ErrNonPositiveAmount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Expense{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	cat, err := store.GetExpenseCategory(ctx, database.GetExpenseCategoryParams{
		ID:       req.CategoryID,
		BranchID: req.BranchID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Expense{}, ErrExpenseCategoryNotFound
		}
		return database.Expense{}, fmt.Errorf("get expense category: %w", err)
	}
	if !cat.IsActive {
		return database.Expense{}, ErrExpenseCategoryNotFound
	}

	acct, err := lockAccount(ctx, store, req.BranchID, req.AccountID)
	if err != nil {
		return database.Expense{}, err
	}

	exp, _, err := s.book(ctx, store, acct, req)
	if err != nil {
		return database.Expense{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Expense{}, fmt.Errorf("commit: %w", err)
	}

	s.publisher.Publish(req.BranchID, ws.EventExpenseCreated, exp)
	return exp, nil
}

// book writes the expense row and its EXPENSE movement on a locked account.
// It returns the account as updated by the movement.
func (s *ExpenseService) book(ctx context.Context, store ExpenseStore, acct database.CashAccount, req CreateExpenseRequest) (database.Expense, database.CashAccount, error) {
	expenseDate := req.ExpenseDate
	if !expenseDate.Valid {
		expenseDate = bizdate.Of(s.now())
	}

	exp, err := store.CreateExpense(ctx, database.CreateExpenseParams{
		BranchID:    req.BranchID,
		CategoryID:  req.CategoryID,
		AccountID:   acct.ID,
		Amount:      money.ToNumeric(req.Amount),
		Description: req.Description,
		ExpenseDate: expenseDate,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return database.Expense{}, acct, fmt.Errorf("create expense: %w", err)
	}

	acct, _, err = post(ctx, store, acct, posting{
		Direction:   enum.DirectionOut,
		Category:    enum.MovementExpense,
		Amount:      req.Amount,
		Description: req.Description,
		RefType:     enum.RefExpense,
		RefID:       exp.ID,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return database.Expense{}, acct, err
	}
	return exp, acct, nil
}

// Delete removes an expense and credits its amount back to the account.
func (s *ExpenseService) Delete(ctx context.Context, branchID, expenseID, deletedBy uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	exp, err := store.GetExpenseForUpdate(ctx, database.GetExpenseForUpdateParams{
		ID:       expenseID,
		BranchID: branchID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("lock expense: %w", err)
	}

	// The refund goes back to the original account even if it has since been
	// deactivated.
	acct, err := store.GetCashAccountForUpdate(ctx, database.GetCashAccountForUpdateParams{
		ID:       exp.AccountID,
		BranchID: branchID,
	})
	if err != nil {
		return fmt.Errorf("lock account: %w", err)
	}

	if _, _, err := post(ctx, store, acct, posting{
		Direction:   enum.DirectionIn,
		Category:    enum.MovementExpenseRefund,
		Amount:      money.FromNumeric(exp.Amount),
		Description: "Batal: " + exp.Description,
		RefType:     enum.RefExpense,
		RefID:       exp.ID,
		CreatedBy:   deletedBy,
	}); err != nil {
		return err
	}

	if err := store.DeleteExpense(ctx, exp.ID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return tx.Commit(ctx)
}

type QuickEntryRequest struct {
	BranchID  uuid.UUID
	AccountID uuid.UUID
	Text      string
	Commit    bool
	// Overrides picks the category of a line by its index, resolving
	// ambiguous or unmatched lines.
	Overrides map[int]uuid.UUID
	CreatedBy uuid.UUID
}

type QuickEntryLine struct {
	Index       int               `json:"index"`
	RawText     string            `json:"raw_text"`
	Description string            `json:"description"`
	Qty         string            `json:"qty"`
	Unit        string            `json:"unit,omitempty"`
	Amount      string            `json:"amount"`
	Match       matcher.Result    `json:"match"`
	Expense     *database.Expense `json:"expense,omitempty"`
}

type QuickEntryResult struct {
	ExpenseDate string           `json:"expense_date"`
	Lines       []QuickEntryLine `json:"lines"`
	Warnings    []string         `json:"warnings"`
	Total       string           `json:"total"`
	Committed   bool             `json:"committed"`
}

// QuickEntry parses a free-text note and matches each line to a category.
// With Commit set every line is booked in one transaction; if any line is
// still unmatched or ambiguous nothing is booked and ErrUnresolvedLines is
// returned together with the preview.
func (s *ExpenseService) QuickEntry(ctx context.Context, req QuickEntryRequest) (*QuickEntryResult, error) {
	now := s.now().In(bizdate.Location)
	note, err := parser.Parse(req.Text, now)
	if err != nil {
		return nil, err
	}

	expenseDate := bizdate.Of(now)
	if note.HasDate() {
		expenseDate = bizdate.Of(note.Date)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	cats, err := store.ListExpenseCategories(ctx, req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("list expense categories: %w", err)
	}
	byID := make(map[uuid.UUID]matcher.Category, len(cats))
	candidates := make([]matcher.Category, 0, len(cats))
	for _, c := range cats {
		if !c.IsActive {
			continue
		}
		mc := matcher.Category{ID: c.ID, Name: c.Name, Keywords: c.Keywords}
		byID[c.ID] = mc
		candidates = append(candidates, mc)
	}
	m := matcher.New(candidates)

	for idx := range req.Overrides {
		if idx < 0 || idx >= len(note.Lines) {
			return nil, ErrInvalidLineIndex
		}
	}

	result := &QuickEntryResult{
		ExpenseDate: bizdate.Format(expenseDate),
		Lines:       make([]QuickEntryLine, 0, len(note.Lines)),
		Warnings:    note.Warnings,
		Total:       note.Total().StringFixed(2),
	}
	if result.Warnings == nil {
		result.Warnings = []string{}
	}

	resolved := true
	for i, l := range note.Lines {
		match := m.Match(l.Description)
		if catID, ok := req.Overrides[i]; ok {
			c, ok := byID[catID]
			if !ok {
				return nil, ErrExpenseCategoryNotFound
			}
			match = matcher.Result{Status: matcher.Matched, Category: &c}
		}
		if match.Status != matcher.Matched {
			resolved = false
		}
		result.Lines = append(result.Lines, QuickEntryLine{
			Index:       i,
			RawText:     l.RawText,
			Description: l.Description,
			Qty:         l.Qty.String(),
			Unit:        l.Unit,
			Amount:      l.Amount.StringFixed(2),
			Match:       match,
		})
	}

	if !req.Commit {
		return result, nil
	}
	if !resolved {
		return result, ErrUnresolvedLines
	}

	acct, err := lockAccount(ctx, store, req.BranchID, req.AccountID)
	if err != nil {
		return nil, err
	}
	if money.FromNumeric(acct.Balance).LessThan(note.Total()) {
		return nil, ErrInsufficientBalance
	}

	var created []database.Expense
	for i, l := range note.Lines {
		line := &result.Lines[i]
		desc := l.Description
		if l.Unit != "" {
			desc = fmt.Sprintf("%s %s%s", l.Description, l.Qty.String(), l.Unit)
		}
		var exp database.Expense
		exp, acct, err = s.book(ctx, store, acct, CreateExpenseRequest{
			BranchID:    req.BranchID,
			CategoryID:  line.Match.Category.ID,
			AccountID:   acct.ID,
			Amount:      l.Amount,
			Description: desc,
			ExpenseDate: expenseDate,
			CreatedBy:   req.CreatedBy,
		})
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		line.Expense = &exp
		created = append(created, exp)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	result.Committed = true

	for _, exp := range created {
		s.publisher.Publish(req.BranchID, ws.EventExpenseCreated, exp)
	}
	return result, nil
}
