package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/money"
	"github.com/barberkas/api/internal/ws"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Errors returned by the cashflow service.
var (
	ErrInvalidAccountKind   = errors.New("jenis akun harus CASH, BANK, atau QRIS")
	ErrSameAccount          = errors.New("akun asal dan tujuan tidak boleh sama")
	ErrDefaultAccountLocked = errors.New("akun default tidak dapat dihapus")
	ErrAccountHasBalance    = errors.New("saldo akun harus 0 sebelum dihapus")
	ErrNegativeOpening      = errors.New("saldo awal tidak boleh negatif")
)

// DefaultAccountNames are the names given to the per-kind default accounts.
var DefaultAccountNames = map[string]string{
	enum.AccountKindCash: "Kas Tunai",
	enum.AccountKindBank: "Rekening Bank",
	enum.AccountKindQRIS: "QRIS",
}

// CashflowStore defines the DB methods needed for account and ledger work.
// Satisfied by *database.Queries.
type CashflowStore interface {
	LedgerStore
	EnsureDefaultCashAccount(ctx context.Context, arg database.EnsureDefaultCashAccountParams) (int64, error)
	CreateCashAccount(ctx context.Context, arg database.CreateCashAccountParams) (database.CashAccount, error)
	DeactivateCashAccount(ctx context.Context, arg database.DeactivateCashAccountParams) (database.CashAccount, error)
}

type NewCashflowStore func(db database.DBTX) CashflowStore

type CashflowService struct {
	pool      TxBeginner
	newStore  NewCashflowStore
	publisher Publisher
}

func NewCashflowService(pool TxBeginner, newStore NewCashflowStore, publisher Publisher) *CashflowService {
	return &CashflowService{pool: pool, newStore: newStore, publisher: publisherOrNop(publisher)}
}

// EnsureDefaultAccounts creates the missing default accounts of the branch.
// It is safe to repeat and to run concurrently: the partial unique index on
// (branch_id, kind) WHERE is_default turns duplicates into no-ops.
func (s *CashflowService) EnsureDefaultAccounts(ctx context.Context, branchID uuid.UUID) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	created := 0
	for _, kind := range enum.AccountKinds {
		n, err := store.EnsureDefaultCashAccount(ctx, database.EnsureDefaultCashAccountParams{
			BranchID: branchID,
			Name:     DefaultAccountNames[kind],
			Kind:     kind,
		})
		if err != nil {
			return 0, fmt.Errorf("ensure default %s account: %w", kind, err)
		}
		created += int(n)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

type CreateAccountRequest struct {
	BranchID       uuid.UUID
	Name           string
	Kind           string
	OpeningBalance decimal.Decimal
	CreatedBy      uuid.UUID
}

// CreateAccount adds a non-default account. A positive opening balance is
// booked as an OPENING movement.
func (s *CashflowService) CreateAccount(ctx context.Context, req CreateAccountRequest) (database.CashAccount, error) {
	if !isAccountKind(req.Kind) {
		return database.CashAccount{}, ErrInvalidAccountKind
	}
	if req.OpeningBalance.IsNegative() {
		return database.CashAccount{}, ErrNegativeOpening
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.CashAccount{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	acct, err := store.CreateCashAccount(ctx, database.CreateCashAccountParams{
		BranchID: req.BranchID,
		Name:     req.Name,
		Kind:     req.Kind,
		Balance:  money.ToNumeric(decimal.Zero),
	})
	if err != nil {
		return database.CashAccount{}, fmt.Errorf("create account: %w", err)
	}

	if req.OpeningBalance.IsPositive() {
		acct, _, err = post(ctx, store, acct, posting{
			Direction:   enum.DirectionIn,
			Category:    enum.MovementOpening,
			Amount:      req.OpeningBalance,
			Description: "Saldo awal",
			CreatedBy:   req.CreatedBy,
		})
		if err != nil {
			return database.CashAccount{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return database.CashAccount{}, fmt.Errorf("commit: %w", err)
	}
	return acct, nil
}

// DeleteAccount deactivates an empty, non-default account.
func (s *CashflowService) DeleteAccount(ctx context.Context, branchID, accountID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	acct, err := lockAccount(ctx, store, branchID, accountID)
	if err != nil {
		return err
	}
	if acct.IsDefault {
		return ErrDefaultAccountLocked
	}
	if !money.FromNumeric(acct.Balance).IsZero() {
		return ErrAccountHasBalance
	}
	if _, err := store.DeactivateCashAccount(ctx, database.DeactivateCashAccountParams{
		ID:       acct.ID,
		BranchID: branchID,
	}); err != nil {
		return fmt.Errorf("deactivate account: %w", err)
	}
	return tx.Commit(ctx)
}

type MovementRequest struct {
	BranchID    uuid.UUID
	AccountID   uuid.UUID
	Amount      decimal.Decimal
	Description string
	CreatedBy   uuid.UUID
}

type MovementResult struct {
	Account  database.CashAccount
	Movement database.CashMovement
}

// Deposit adds money to an account.
func (s *CashflowService) Deposit(ctx context.Context, req MovementRequest) (*MovementResult, error) {
	return s.single(ctx, req, enum.DirectionIn, enum.MovementDeposit)
}

// Withdraw takes money out of an account. It fails with
// ErrInsufficientBalance instead of going below zero.
func (s *CashflowService) Withdraw(ctx context.Context, req MovementRequest) (*MovementResult, error) {
	return s.single(ctx, req, enum.DirectionOut, enum.MovementWithdrawal)
}

func (s *CashflowService) single(ctx context.Context, req MovementRequest, direction, category string) (*MovementResult, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	acct, err := lockAccount(ctx, store, req.BranchID, req.AccountID)
	if err != nil {
		return nil, err
	}

	acct, mv, err := post(ctx, store, acct, posting{
		Direction:   direction,
		Category:    category,
		Amount:      req.Amount,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.publisher.Publish(req.BranchID, ws.EventCashMovement, mv)
	return &MovementResult{Account: acct, Movement: mv}, nil
}

type TransferRequest struct {
	BranchID    uuid.UUID
	FromID      uuid.UUID
	ToID        uuid.UUID
	Amount      decimal.Decimal
	Description string
	CreatedBy   uuid.UUID
}

type TransferResult struct {
	TransferID uuid.UUID
	From       database.CashAccount
	To         database.CashAccount
	Out        database.CashMovement
	In         database.CashMovement
}

// Transfer moves money between two accounts of the same branch. Both rows are
// locked in ascending id order so opposing transfers cannot deadlock.
func (s *CashflowService) Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if req.FromID == req.ToID {
		return nil, ErrSameAccount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	first, second := req.FromID, req.ToID
	if bytes.Compare(first[:], second[:]) > 0 {
		first, second = second, first
	}
	locked := make(map[uuid.UUID]database.CashAccount, 2)
	for _, id := range []uuid.UUID{first, second} {
		acct, err := lockAccount(ctx, store, req.BranchID, id)
		if err != nil {
			return nil, err
		}
		locked[id] = acct
	}

	transferID := uuid.New()
	desc := req.Description
	if desc == "" {
		desc = fmt.Sprintf("Transfer %s ke %s", locked[req.FromID].Name, locked[req.ToID].Name)
	}

	from, out, err := post(ctx, store, locked[req.FromID], posting{
		Direction:   enum.DirectionOut,
		Category:    enum.MovementTransferOut,
		Amount:      req.Amount,
		Description: desc,
		RefType:     enum.RefTransfer,
		RefID:       transferID,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	to, in, err := post(ctx, store, locked[req.ToID], posting{
		Direction:   enum.DirectionIn,
		Category:    enum.MovementTransferIn,
		Amount:      req.Amount,
		Description: desc,
		RefType:     enum.RefTransfer,
		RefID:       transferID,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.publisher.Publish(req.BranchID, ws.EventCashMovement, []database.CashMovement{out, in})
	return &TransferResult{TransferID: transferID, From: from, To: to, Out: out, In: in}, nil
}

func isAccountKind(kind string) bool {
	for _, k := range enum.AccountKinds {
		if k == kind {
			return true
		}
	}
	return false
}
