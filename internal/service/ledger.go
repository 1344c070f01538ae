package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/money"
	"github.com/barberkas/api/internal/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const balanceCheckConstraint = "cash_accounts_balance_check"

// Ledger errors.
var (
	ErrInsufficientBalance   = errors.New("saldo tidak mencukupi")
	ErrAccountNotFound       = errors.New("akun kas tidak ditemukan")
	ErrAccountInactive       = errors.New("akun kas tidak aktif")
	ErrNonPositiveAmount     = errors.New("nominal harus lebih dari 0")
	ErrDefaultAccountMissing = errors.New("akun kas default belum dibuat")
)

// LedgerStore is the subset of queries every balance change needs.
type LedgerStore interface {
	GetCashAccountForUpdate(ctx context.Context, arg database.GetCashAccountForUpdateParams) (database.CashAccount, error)
	GetDefaultCashAccountForUpdate(ctx context.Context, arg database.GetDefaultCashAccountForUpdateParams) (database.CashAccount, error)
	AddCashAccountBalance(ctx context.Context, arg database.AddCashAccountBalanceParams) (database.CashAccount, error)
	CreateCashMovement(ctx context.Context, arg database.CreateCashMovementParams) (database.CashMovement, error)
}

// posting describes one balance change and the movement recording it.
type posting struct {
	Direction   string
	Category    string
	Amount      decimal.Decimal
	Description string
	RefType     string
	RefID       uuid.UUID
	CreatedBy   uuid.UUID
}

// lockAccount loads an active account of the branch with FOR UPDATE.
func lockAccount(ctx context.Context, store LedgerStore, branchID, accountID uuid.UUID) (database.CashAccount, error) {
	acct, err := store.GetCashAccountForUpdate(ctx, database.GetCashAccountForUpdateParams{
		ID:       accountID,
		BranchID: branchID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.CashAccount{}, ErrAccountNotFound
		}
		return database.CashAccount{}, fmt.Errorf("lock account: %w", err)
	}
	if !acct.IsActive {
		return database.CashAccount{}, ErrAccountInactive
	}
	return acct, nil
}

// lockDefaultAccount loads the branch's default account of kind with FOR UPDATE.
func lockDefaultAccount(ctx context.Context, store LedgerStore, branchID uuid.UUID, kind string) (database.CashAccount, error) {
	acct, err := store.GetDefaultCashAccountForUpdate(ctx, database.GetDefaultCashAccountForUpdateParams{
		BranchID: branchID,
		Kind:     kind,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.CashAccount{}, fmt.Errorf("%w: %s", ErrDefaultAccountMissing, kind)
		}
		return database.CashAccount{}, fmt.Errorf("lock default %s account: %w", kind, err)
	}
	return acct, nil
}

// post applies p to a locked account and writes its movement. OUT postings
// never take the balance below zero.
func post(ctx context.Context, store LedgerStore, acct database.CashAccount, p posting) (database.CashAccount, database.CashMovement, error) {
	if !p.Amount.IsPositive() {
		return acct, database.CashMovement{}, ErrNonPositiveAmount
	}

	delta := p.Amount
	if p.Direction == enum.DirectionOut {
		if money.FromNumeric(acct.Balance).LessThan(p.Amount) {
			return acct, database.CashMovement{}, ErrInsufficientBalance
		}
		delta = p.Amount.Neg()
	}

	updated, err := store.AddCashAccountBalance(ctx, database.AddCashAccountBalanceParams{
		ID:     acct.ID,
		Amount: money.ToNumeric(delta),
	})
	if err != nil {
		if sqlerr.IsCheckViolation(err, balanceCheckConstraint) {
			return acct, database.CashMovement{}, ErrInsufficientBalance
		}
		return acct, database.CashMovement{}, fmt.Errorf("update balance: %w", err)
	}

	mv, err := store.CreateCashMovement(ctx, database.CreateCashMovementParams{
		BranchID:      acct.BranchID,
		AccountID:     acct.ID,
		Direction:     p.Direction,
		Category:      p.Category,
		Amount:        money.ToNumeric(p.Amount),
		BalanceAfter:  updated.Balance,
		Description:   textOrNull(p.Description),
		ReferenceType: textOrNull(p.RefType),
		ReferenceID:   uuidOrNull(p.RefID),
		CreatedBy:     uuidOrNull(p.CreatedBy),
	})
	if err != nil {
		return acct, database.CashMovement{}, fmt.Errorf("create movement: %w", err)
	}
	return updated, mv, nil
}
