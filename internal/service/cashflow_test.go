package service

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/ws"
	"github.com/google/uuid"
)

func newTestCashflow(store *fakeStore) (*CashflowService, *mockTx, *recordingPublisher) {
	tx := &mockTx{}
	pub := &recordingPublisher{}
	newStore := func(db database.DBTX) CashflowStore { return store }
	return NewCashflowService(&mockTxBeginner{tx: tx}, newStore, pub), tx, pub
}

func TestEnsureDefaultAccounts_Idempotent(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestCashflow(store)
	branchID := uuid.New()

	created, err := svc.EnsureDefaultAccounts(context.Background(), branchID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 3 {
		t.Errorf("expected 3 accounts created, got %d", created)
	}

	created, err = svc.EnsureDefaultAccounts(context.Background(), branchID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created != 0 {
		t.Errorf("expected no accounts on second run, got %d", created)
	}
	if len(store.accounts) != 3 {
		t.Errorf("expected 3 accounts in store, got %d", len(store.accounts))
	}
}

func TestCreateAccount_OpeningBalance(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestCashflow(store)
	branchID := uuid.New()

	acct, err := svc.CreateAccount(context.Background(), CreateAccountRequest{
		BranchID:       branchID,
		Name:           "BCA Operasional",
		Kind:           enum.AccountKindBank,
		OpeningBalance: dec("500000"),
		CreatedBy:      uuid.New(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !numEquals(acct.Balance, "500000") {
		t.Errorf("expected balance 500000, got %v", acct.Balance)
	}
	if acct.IsDefault {
		t.Error("created account must not be default")
	}

	mvs := store.movementsFor(acct.ID)
	if len(mvs) != 1 {
		t.Fatalf("expected 1 movement, got %d", len(mvs))
	}
	if mvs[0].Category != enum.MovementOpening || mvs[0].Direction != enum.DirectionIn {
		t.Errorf("unexpected movement %s/%s", mvs[0].Direction, mvs[0].Category)
	}
}

func TestCreateAccount_Validation(t *testing.T) {
	svc, _, _ := newTestCashflow(newFakeStore())

	_, err := svc.CreateAccount(context.Background(), CreateAccountRequest{Name: "x", Kind: "EWALLET"})
	if !errors.Is(err, ErrInvalidAccountKind) {
		t.Errorf("expected ErrInvalidAccountKind, got %v", err)
	}

	_, err = svc.CreateAccount(context.Background(), CreateAccountRequest{
		Name:           "x",
		Kind:           enum.AccountKindCash,
		OpeningBalance: dec("-1"),
	})
	if !errors.Is(err, ErrNegativeOpening) {
		t.Errorf("expected ErrNegativeOpening, got %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestCashflow(store)
	branchID := uuid.New()

	def := store.addAccount(branchID, enum.AccountKindCash, "0", true)
	funded := store.addAccount(branchID, enum.AccountKindBank, "1000", false)
	empty := store.addAccount(branchID, enum.AccountKindQRIS, "0", false)

	if err := svc.DeleteAccount(context.Background(), branchID, def.ID); !errors.Is(err, ErrDefaultAccountLocked) {
		t.Errorf("expected ErrDefaultAccountLocked, got %v", err)
	}
	if err := svc.DeleteAccount(context.Background(), branchID, funded.ID); !errors.Is(err, ErrAccountHasBalance) {
		t.Errorf("expected ErrAccountHasBalance, got %v", err)
	}
	if err := svc.DeleteAccount(context.Background(), branchID, empty.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.accounts[empty.ID].IsActive {
		t.Error("expected account to be deactivated")
	}
	if err := svc.DeleteAccount(context.Background(), branchID, empty.ID); !errors.Is(err, ErrAccountInactive) {
		t.Errorf("expected ErrAccountInactive on repeat, got %v", err)
	}
}

func TestDeposit_CreditsAndPublishes(t *testing.T) {
	store := newFakeStore()
	svc, tx, pub := newTestCashflow(store)
	branchID := uuid.New()
	acct := store.addAccount(branchID, enum.AccountKindCash, "100000", true)

	res, err := svc.Deposit(context.Background(), MovementRequest{
		BranchID:  branchID,
		AccountID: acct.ID,
		Amount:    dec("50000"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !numEquals(res.Account.Balance, "150000") {
		t.Errorf("expected balance 150000, got %v", res.Account.Balance)
	}
	if !numEquals(res.Movement.BalanceAfter, "150000") {
		t.Errorf("expected balance_after 150000, got %v", res.Movement.BalanceAfter)
	}
	if res.Movement.Category != enum.MovementDeposit {
		t.Errorf("expected DEPOSIT, got %s", res.Movement.Category)
	}
	if tx.commits != 1 {
		t.Errorf("expected 1 commit, got %d", tx.commits)
	}
	if got := pub.types(); len(got) != 1 || got[0] != ws.EventCashMovement {
		t.Errorf("unexpected events %v", got)
	}
}

func TestWithdraw_InsufficientBalance(t *testing.T) {
	store := newFakeStore()
	svc, tx, pub := newTestCashflow(store)
	branchID := uuid.New()
	acct := store.addAccount(branchID, enum.AccountKindCash, "10000", true)

	_, err := svc.Withdraw(context.Background(), MovementRequest{
		BranchID:  branchID,
		AccountID: acct.ID,
		Amount:    dec("10000.01"),
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if !numEquals(store.accounts[acct.ID].Balance, "10000") {
		t.Error("balance must be unchanged")
	}
	if len(store.movements) != 0 {
		t.Error("no movement must be written")
	}
	if tx.commits != 0 {
		t.Error("transaction must not commit")
	}
	if len(pub.types()) != 0 {
		t.Error("nothing must be published")
	}
}

func TestWithdraw_ExactBalance(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestCashflow(store)
	branchID := uuid.New()
	acct := store.addAccount(branchID, enum.AccountKindCash, "10000", true)

	res, err := svc.Withdraw(context.Background(), MovementRequest{
		BranchID:  branchID,
		AccountID: acct.ID,
		Amount:    dec("10000"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !numEquals(res.Account.Balance, "0") {
		t.Errorf("expected zero balance, got %v", res.Account.Balance)
	}
}

func TestMovement_RejectsNonPositive(t *testing.T) {
	svc, _, _ := newTestCashflow(newFakeStore())
	for _, amount := range []string{"0", "-5"} {
		_, err := svc.Deposit(context.Background(), MovementRequest{AccountID: uuid.New(), Amount: dec(amount)})
		if !errors.Is(err, ErrNonPositiveAmount) {
			t.Errorf("amount %s: expected ErrNonPositiveAmount, got %v", amount, err)
		}
	}
}

func TestMovement_OtherBranchAccount(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestCashflow(store)
	acct := store.addAccount(uuid.New(), enum.AccountKindCash, "10000", true)

	_, err := svc.Deposit(context.Background(), MovementRequest{
		BranchID:  uuid.New(),
		AccountID: acct.ID,
		Amount:    dec("1"),
	})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestTransfer(t *testing.T) {
	store := newFakeStore()
	svc, _, pub := newTestCashflow(store)
	branchID := uuid.New()
	cash := store.addAccount(branchID, enum.AccountKindCash, "300000", true)
	bank := store.addAccount(branchID, enum.AccountKindBank, "0", true)

	res, err := svc.Transfer(context.Background(), TransferRequest{
		BranchID: branchID,
		FromID:   cash.ID,
		ToID:     bank.ID,
		Amount:   dec("200000"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !numEquals(res.From.Balance, "100000") || !numEquals(res.To.Balance, "200000") {
		t.Errorf("unexpected balances from=%v to=%v", res.From.Balance, res.To.Balance)
	}
	if res.Out.Category != enum.MovementTransferOut || res.In.Category != enum.MovementTransferIn {
		t.Errorf("unexpected categories %s/%s", res.Out.Category, res.In.Category)
	}
	if res.Out.ReferenceID.Bytes != res.TransferID || res.In.ReferenceID.Bytes != res.TransferID {
		t.Error("both movements must reference the transfer id")
	}
	if res.Out.Description.String != "Transfer Kas Tunai ke Rekening Bank" {
		t.Errorf("unexpected description %q", res.Out.Description.String)
	}
	if len(pub.types()) != 1 {
		t.Errorf("expected a single event, got %v", pub.types())
	}
}

func TestTransfer_LocksInAscendingIDOrder(t *testing.T) {
	tests := []struct {
		name      string
		lowToHigh bool
	}{
		{"from lower id", true},
		{"from higher id", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc, _, _ := newTestCashflow(store)
			branchID := uuid.New()
			a := store.addAccount(branchID, enum.AccountKindCash, "100000", true)
			b := store.addAccount(branchID, enum.AccountKindBank, "100000", true)
			low, high := a, b
			if bytes.Compare(low.ID[:], high.ID[:]) > 0 {
				low, high = high, low
			}
			from, to := low, high
			if !tt.lowToHigh {
				from, to = high, low
			}

			if _, err := svc.Transfer(context.Background(), TransferRequest{
				BranchID: branchID,
				FromID:   from.ID,
				ToID:     to.ID,
				Amount:   dec("10000"),
			}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := []string{"lock-account:" + low.ID.String(), "lock-account:" + high.ID.String()}
			if !slices.Equal(store.calls, want) {
				t.Errorf("lock order = %v, want %v", store.calls, want)
			}
			if !numEquals(store.accounts[from.ID].Balance, "90000") || !numEquals(store.accounts[to.ID].Balance, "110000") {
				t.Errorf("unexpected balances from=%v to=%v", store.accounts[from.ID].Balance, store.accounts[to.ID].Balance)
			}
		})
	}
}

func TestTransfer_SameAccount(t *testing.T) {
	svc, _, _ := newTestCashflow(newFakeStore())
	id := uuid.New()
	_, err := svc.Transfer(context.Background(), TransferRequest{FromID: id, ToID: id, Amount: dec("1")})
	if !errors.Is(err, ErrSameAccount) {
		t.Errorf("expected ErrSameAccount, got %v", err)
	}
}

func TestTransfer_Insufficient(t *testing.T) {
	store := newFakeStore()
	svc, _, _ := newTestCashflow(store)
	branchID := uuid.New()
	cash := store.addAccount(branchID, enum.AccountKindCash, "100", true)
	bank := store.addAccount(branchID, enum.AccountKindBank, "0", true)

	_, err := svc.Transfer(context.Background(), TransferRequest{
		BranchID: branchID,
		FromID:   cash.ID,
		ToID:     bank.ID,
		Amount:   dec("101"),
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if !numEquals(store.accounts[bank.ID].Balance, "0") {
		t.Error("destination must not be credited")
	}
}
