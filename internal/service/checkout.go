package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/barberkas/api/internal/bizdate"
	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/metrics"
	"github.com/barberkas/api/internal/money"
	"github.com/barberkas/api/internal/sqlerr"
	"github.com/barberkas/api/internal/ws"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const (
	maxTransactionNumberRetries = 3

	transactionNumberConstraint = "transactions_branch_id_transaction_number_key"
	idempotencyKeyConstraint    = "transactions_branch_id_idempotency_key_key"
)

// Errors returned by the checkout service.
var (
	ErrEmptyItems              = errors.New("item transaksi wajib diisi")
	ErrInvalidQuantity         = errors.New("jumlah item minimal 1")
	ErrCatalogItemNotFound     = errors.New("item katalog tidak ditemukan")
	ErrBarberRequired          = errors.New("layanan wajib memilih barber")
	ErrBarberNotFound          = errors.New("barber tidak ditemukan")
	ErrCustomerNotFound        = errors.New("pelanggan tidak ditemukan")
	ErrInvalidDiscount         = errors.New("diskon tidak valid")
	ErrNegativePayment         = errors.New("nominal pembayaran tidak boleh negatif")
	ErrPaymentMismatch         = errors.New("jumlah pembayaran harus sama dengan total")
	ErrCashReceivedTooLow      = errors.New("uang diterima kurang dari pembayaran tunai")
	ErrTransactionNotFound     = errors.New("transaksi tidak ditemukan")
	ErrTransactionNotCompleted = errors.New("transaksi sudah dibatalkan")
	ErrTransactionLocked       = errors.New("transaksi termasuk periode gaji yang sudah dibayar")
)

// errIdempotencyRace marks a checkout that lost the idempotency key race to a
// concurrent request with the same key.
var errIdempotencyRace = errors.New("idempotency key taken")

// CheckoutStore defines the DB methods needed for checkout and void.
// Satisfied by *database.Queries.
type CheckoutStore interface {
	LedgerStore
	GetTransactionByIdempotencyKey(ctx context.Context, arg database.GetTransactionByIdempotencyKeyParams) (database.Transaction, error)
	GetNextTransactionSeq(ctx context.Context, arg database.GetNextTransactionSeqParams) (int32, error)
	GetCatalogItem(ctx context.Context, arg database.GetCatalogItemParams) (database.CatalogItem, error)
	GetBarber(ctx context.Context, arg database.GetBarberParams) (database.Barber, error)
	GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error)
	CreateTransaction(ctx context.Context, arg database.CreateTransactionParams) (database.Transaction, error)
	CreateTransactionItem(ctx context.Context, arg database.CreateTransactionItemParams) (database.TransactionItem, error)
	ListTransactionItems(ctx context.Context, transactionID uuid.UUID) ([]database.TransactionItem, error)
	TouchCustomerVisit(ctx context.Context, arg database.TouchCustomerVisitParams) error
	GetTransactionForUpdate(ctx context.Context, arg database.GetTransactionForUpdateParams) (database.Transaction, error)
	CountPaidPeriodsForTransaction(ctx context.Context, arg database.CountPaidPeriodsForTransactionParams) (int64, error)
	VoidTransaction(ctx context.Context, arg database.VoidTransactionParams) (database.Transaction, error)
	ListMovementsByReference(ctx context.Context, arg database.ListMovementsByReferenceParams) ([]database.CashMovement, error)
}

type NewCheckoutStore func(db database.DBTX) CheckoutStore

// CheckoutRequest is the parsed input of a POS checkout.
type CheckoutRequest struct {
	BranchID       uuid.UUID
	CashierID      uuid.UUID
	CustomerID     uuid.UUID
	Items          []CheckoutItem
	DiscountType   string
	DiscountValue  decimal.Decimal
	Cash           decimal.Decimal
	Bank           decimal.Decimal
	Qris           decimal.Decimal
	CashReceived   decimal.Decimal
	IdempotencyKey string
	Notes          string
}

type CheckoutItem struct {
	CatalogItemID uuid.UUID
	BarberID      uuid.UUID
	Quantity      int32
}

type CheckoutResult struct {
	Transaction database.Transaction
	Items       []database.TransactionItem
	Duplicate   bool
}

// CheckoutService records POS sales and voids.
type CheckoutService struct {
	pool      TxBeginner
	newStore  NewCheckoutStore
	publisher Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewCheckoutService(pool TxBeginner, newStore NewCheckoutStore, publisher Publisher, m *metrics.Metrics) *CheckoutService {
	return &CheckoutService{
		pool:      pool,
		newStore:  newStore,
		publisher: publisherOrNop(publisher),
		metrics:   m,
		now:       time.Now,
	}
}

// Checkout validates the cart, books the transaction and credits each paid
// channel to the branch's default account of that kind.
//
// A request repeating an idempotency key returns the stored transaction with
// Duplicate set and moves no money.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
	}
	if req.Cash.IsNegative() || req.Bank.IsNegative() || req.Qris.IsNegative() || req.CashReceived.IsNegative() {
		return nil, ErrNegativePayment
	}
	switch req.DiscountType {
	case "", enum.DiscountTypeFixed:
	case enum.DiscountTypePercentage:
		if req.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return nil, ErrInvalidDiscount
		}
	default:
		return nil, ErrInvalidDiscount
	}
	if req.DiscountValue.IsNegative() {
		return nil, ErrInvalidDiscount
	}

	var lastErr error
	for attempt := 0; attempt < maxTransactionNumberRetries; attempt++ {
		result, err := s.checkoutTx(ctx, req)
		if err == nil {
			s.afterCheckout(result)
			return result, nil
		}
		if errors.Is(err, errIdempotencyRace) {
			result, err := s.replay(ctx, req.BranchID, req.IdempotencyKey)
			if err != nil {
				return nil, err
			}
			s.afterCheckout(result)
			return result, nil
		}
		if sqlerr.IsUniqueViolation(err, transactionNumberConstraint) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("allocate transaction number: %w", lastErr)
}

func (s *CheckoutService) afterCheckout(result *CheckoutResult) {
	if s.metrics != nil {
		s.metrics.Checkouts.WithLabelValues(strconv.FormatBool(result.Duplicate)).Inc()
	}
	if result.Duplicate {
		return
	}
	if s.metrics != nil {
		for channel, amount := range map[string]pgtype.Numeric{
			enum.AccountKindCash: result.Transaction.CashAmount,
			enum.AccountKindBank: result.Transaction.BankAmount,
			enum.AccountKindQRIS: result.Transaction.QrisAmount,
		} {
			s.metrics.CheckoutAmount.WithLabelValues(channel).Add(money.FromNumeric(amount).InexactFloat64())
		}
	}
	s.publisher.Publish(result.Transaction.BranchID, ws.EventTransactionCreated, result)
}

// replay loads the transaction stored under an idempotency key.
func (s *CheckoutService) replay(ctx context.Context, branchID uuid.UUID, key string) (*CheckoutResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	trx, err := store.GetTransactionByIdempotencyKey(ctx, database.GetTransactionByIdempotencyKeyParams{
		BranchID:       branchID,
		IdempotencyKey: textOrNull(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get transaction by idempotency key: %w", err)
	}
	items, err := store.ListTransactionItems(ctx, trx.ID)
	if err != nil {
		return nil, fmt.Errorf("list transaction items: %w", err)
	}
	return &CheckoutResult{Transaction: trx, Items: items, Duplicate: true}, nil
}

func (s *CheckoutService) checkoutTx(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	if req.IdempotencyKey != "" {
		existing, err := store.GetTransactionByIdempotencyKey(ctx, database.GetTransactionByIdempotencyKeyParams{
			BranchID:       req.BranchID,
			IdempotencyKey: textOrNull(req.IdempotencyKey),
		})
		switch {
		case err == nil:
			items, err := store.ListTransactionItems(ctx, existing.ID)
			if err != nil {
				return nil, fmt.Errorf("list transaction items: %w", err)
			}
			return &CheckoutResult{Transaction: existing, Items: items, Duplicate: true}, nil
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("get transaction by idempotency key: %w", err)
		}
	}

	// --- Price lines and commissions ---
	subtotal := decimal.Zero
	lines := make([]database.CreateTransactionItemParams, 0, len(req.Items))
	for i, item := range req.Items {
		cat, err := store.GetCatalogItem(ctx, database.GetCatalogItemParams{
			ID:       item.CatalogItemID,
			BranchID: req.BranchID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrCatalogItemNotFound)
			}
			return nil, fmt.Errorf("item[%d]: get catalog item: %w", i, err)
		}
		if !cat.IsActive {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrCatalogItemNotFound)
		}

		unitPrice := money.FromNumeric(cat.Price)
		lineTotal := unitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		subtotal = subtotal.Add(lineTotal)

		line := database.CreateTransactionItemParams{
			CatalogItemID:    cat.ID,
			ItemName:         cat.Name,
			Kind:             cat.Kind,
			Quantity:         item.Quantity,
			UnitPrice:        money.ToNumeric(unitPrice),
			Subtotal:         money.ToNumeric(lineTotal),
			CommissionRate:   money.ToNumeric(decimal.Zero),
			CommissionAmount: money.ToNumeric(decimal.Zero),
		}

		if cat.Kind == enum.CatalogKindService && item.BarberID == uuid.Nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrBarberRequired)
		}
		if item.BarberID != uuid.Nil {
			barber, err := store.GetBarber(ctx, database.GetBarberParams{
				ID:       item.BarberID,
				BranchID: req.BranchID,
			})
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, fmt.Errorf("item[%d]: %w", i, ErrBarberNotFound)
				}
				return nil, fmt.Errorf("item[%d]: get barber: %w", i, err)
			}
			if !barber.IsActive {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrBarberNotFound)
			}
			line.BarberID = uuidOrNull(barber.ID)

			if cat.Kind == enum.CatalogKindService {
				rate := money.FromNumeric(barber.CommissionRate)
				if cat.CommissionRate.Valid {
					rate = money.FromNumeric(cat.CommissionRate)
				}
				line.CommissionRate = money.ToNumeric(rate)
				line.CommissionAmount = money.ToNumeric(money.Percent(lineTotal, rate))
			}
		}
		lines = append(lines, line)
	}

	// --- Discount and payment split ---
	discountAmount := decimal.Zero
	switch req.DiscountType {
	case enum.DiscountTypePercentage:
		discountAmount = money.Percent(subtotal, req.DiscountValue)
	case enum.DiscountTypeFixed:
		if req.DiscountValue.GreaterThan(subtotal) {
			return nil, ErrInvalidDiscount
		}
		discountAmount = req.DiscountValue
	}
	total := subtotal.Sub(discountAmount)

	if !req.Cash.Add(req.Bank).Add(req.Qris).Equal(total) {
		return nil, ErrPaymentMismatch
	}

	cashReceived := decimal.Zero
	change := decimal.Zero
	if req.Cash.IsPositive() {
		cashReceived = req.CashReceived
		if cashReceived.IsZero() {
			cashReceived = req.Cash
		}
		if cashReceived.LessThan(req.Cash) {
			return nil, ErrCashReceivedTooLow
		}
		change = cashReceived.Sub(req.Cash)
	}

	customerID := pgtype.UUID{}
	if req.CustomerID != uuid.Nil {
		cust, err := store.GetCustomer(ctx, database.GetCustomerParams{
			ID:       req.CustomerID,
			BranchID: req.BranchID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrCustomerNotFound
			}
			return nil, fmt.Errorf("get customer: %w", err)
		}
		if !cust.IsActive {
			return nil, ErrCustomerNotFound
		}
		customerID = uuidOrNull(cust.ID)
	}

	// --- Number and header ---
	now := s.now()
	trxDate := bizdate.Of(now)
	seq, err := store.GetNextTransactionSeq(ctx, database.GetNextTransactionSeqParams{
		BranchID:        req.BranchID,
		TransactionDate: trxDate,
	})
	if err != nil {
		return nil, fmt.Errorf("get next transaction seq: %w", err)
	}

	discountValue := pgtype.Numeric{}
	if req.DiscountType != "" {
		discountValue = money.ToNumeric(req.DiscountValue)
	}

	trx, err := store.CreateTransaction(ctx, database.CreateTransactionParams{
		BranchID:          req.BranchID,
		TransactionNumber: fmt.Sprintf("TRX-%s-%03d", bizdate.Compact(trxDate), seq),
		CustomerID:        customerID,
		CashierID:         req.CashierID,
		Subtotal:          money.ToNumeric(subtotal),
		DiscountType:      textOrNull(req.DiscountType),
		DiscountValue:     discountValue,
		DiscountAmount:    money.ToNumeric(discountAmount),
		Total:             money.ToNumeric(total),
		CashAmount:        money.ToNumeric(req.Cash),
		BankAmount:        money.ToNumeric(req.Bank),
		QrisAmount:        money.ToNumeric(req.Qris),
		CashReceived:      money.ToNumeric(cashReceived),
		ChangeAmount:      money.ToNumeric(change),
		IdempotencyKey:    textOrNull(req.IdempotencyKey),
		Notes:             textOrNull(req.Notes),
		TransactionDate:   trxDate,
	})
	if err != nil {
		if req.IdempotencyKey != "" && sqlerr.IsUniqueViolation(err, idempotencyKeyConstraint) {
			return nil, errIdempotencyRace
		}
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	items := make([]database.TransactionItem, 0, len(lines))
	for i, line := range lines {
		line.TransactionID = trx.ID
		item, err := store.CreateTransactionItem(ctx, line)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: create transaction item: %w", i, err)
		}
		items = append(items, item)
	}

	// --- Ledger ---
	for _, part := range paymentParts(req.Cash, req.Bank, req.Qris) {
		acct, err := lockDefaultAccount(ctx, store, req.BranchID, part.kind)
		if err != nil {
			return nil, err
		}
		if _, _, err := post(ctx, store, acct, posting{
			Direction:   enum.DirectionIn,
			Category:    enum.MovementSale,
			Amount:      part.amount,
			Description: "Penjualan " + trx.TransactionNumber,
			RefType:     enum.RefTransaction,
			RefID:       trx.ID,
			CreatedBy:   req.CashierID,
		}); err != nil {
			return nil, err
		}
	}

	if customerID.Valid {
		if err := store.TouchCustomerVisit(ctx, database.TouchCustomerVisitParams{
			ID:       req.CustomerID,
			BranchID: req.BranchID,
		}); err != nil {
			return nil, fmt.Errorf("touch customer visit: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &CheckoutResult{Transaction: trx, Items: items}, nil
}

type paymentPart struct {
	kind   string
	amount decimal.Decimal
}

// paymentParts returns the non-zero payment channels in account-kind order.
// Checkout locks the default accounts in this order.
func paymentParts(cash, bank, qris decimal.Decimal) []paymentPart {
	var parts []paymentPart
	for _, p := range []paymentPart{
		{enum.AccountKindCash, cash},
		{enum.AccountKindBank, bank},
		{enum.AccountKindQRIS, qris},
	} {
		if p.amount.IsPositive() {
			parts = append(parts, p)
		}
	}
	return parts
}

type refund struct {
	accountID uuid.UUID
	amount    decimal.Decimal
}

// saleCredits sums the SALE movements of a transaction per account, so a void
// debits the accounts that were credited even if the defaults changed since.
// Accounts come back in ascending id order, the same order Transfer locks in.
// Transactions without movements fall back to the current default accounts.
func saleCredits(ctx context.Context, store CheckoutStore, trx database.Transaction) ([]refund, error) {
	movements, err := store.ListMovementsByReference(ctx, database.ListMovementsByReferenceParams{
		ReferenceType: textOrNull(enum.RefTransaction),
		ReferenceID:   uuidOrNull(trx.ID),
	})
	if err != nil {
		return nil, fmt.Errorf("list sale movements: %w", err)
	}

	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, m := range movements {
		if m.Category != enum.MovementSale || m.Direction != enum.DirectionIn {
			continue
		}
		totals[m.AccountID] = totals[m.AccountID].Add(money.FromNumeric(m.Amount))
	}

	if len(totals) == 0 {
		var out []refund
		for _, part := range paymentParts(
			money.FromNumeric(trx.CashAmount),
			money.FromNumeric(trx.BankAmount),
			money.FromNumeric(trx.QrisAmount),
		) {
			acct, err := lockDefaultAccount(ctx, store, trx.BranchID, part.kind)
			if err != nil {
				return nil, err
			}
			out = append(out, refund{accountID: acct.ID, amount: part.amount})
		}
		return out, nil
	}

	out := make([]refund, 0, len(totals))
	for id, amount := range totals {
		if amount.IsPositive() {
			out = append(out, refund{accountID: id, amount: amount})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].accountID[:], out[j].accountID[:]) < 0
	})
	return out, nil
}

type VoidRequest struct {
	BranchID      uuid.UUID
	TransactionID uuid.UUID
	Reason        string
	VoidedBy      uuid.UUID
}

// Void cancels a completed transaction and takes every credited amount back
// out of the account it went into.
func (s *CheckoutService) Void(ctx context.Context, req VoidRequest) (database.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Transaction{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	trx, err := store.GetTransactionForUpdate(ctx, database.GetTransactionForUpdateParams{
		ID:       req.TransactionID,
		BranchID: req.BranchID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Transaction{}, ErrTransactionNotFound
		}
		return database.Transaction{}, fmt.Errorf("lock transaction: %w", err)
	}
	if trx.Status != enum.TransactionStatusCompleted {
		return database.Transaction{}, ErrTransactionNotCompleted
	}

	paid, err := store.CountPaidPeriodsForTransaction(ctx, database.CountPaidPeriodsForTransactionParams{
		TransactionID:   trx.ID,
		TransactionDate: trx.TransactionDate,
	})
	if err != nil {
		return database.Transaction{}, fmt.Errorf("count paid periods: %w", err)
	}
	if paid > 0 {
		return database.Transaction{}, ErrTransactionLocked
	}

	refunds, err := saleCredits(ctx, store, trx)
	if err != nil {
		return database.Transaction{}, err
	}
	for _, r := range refunds {
		acct, err := lockAccount(ctx, store, req.BranchID, r.accountID)
		if err != nil {
			return database.Transaction{}, err
		}
		if _, _, err := post(ctx, store, acct, posting{
			Direction:   enum.DirectionOut,
			Category:    enum.MovementVoid,
			Amount:      r.amount,
			Description: "Pembatalan " + trx.TransactionNumber,
			RefType:     enum.RefTransaction,
			RefID:       trx.ID,
			CreatedBy:   req.VoidedBy,
		}); err != nil {
			return database.Transaction{}, err
		}
	}

	voided, err := store.VoidTransaction(ctx, database.VoidTransactionParams{
		ID:         trx.ID,
		VoidReason: textOrNull(req.Reason),
		VoidedBy:   uuidOrNull(req.VoidedBy),
	})
	if err != nil {
		return database.Transaction{}, fmt.Errorf("void transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Transaction{}, fmt.Errorf("commit: %w", err)
	}

	if s.metrics != nil {
		s.metrics.Voids.Inc()
	}
	s.publisher.Publish(req.BranchID, ws.EventTransactionVoided, voided)
	return voided, nil
}
