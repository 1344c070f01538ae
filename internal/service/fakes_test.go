package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/barberkas/api/internal/database"
	"github.com/barberkas/api/internal/enum"
	"github.com/barberkas/api/internal/money"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// --- pgx mocks ---

// mockTx implements pgx.Tx with only the methods services call.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr   error
	rollbackErr error
	commits     int
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	m.commits++
	return m.commitErr
}
func (m *mockTx) Rollback(ctx context.Context) error { return m.rollbackErr }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner.
type mockTxBeginner struct {
	tx  pgx.Tx
	err error
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.tx, m.err
}

// --- Publisher ---

type published struct {
	BranchID uuid.UUID
	Type     string
	Payload  any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(branchID uuid.UUID, eventType string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{BranchID: branchID, Type: eventType, Payload: payload})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// --- In-memory store ---

type attendanceKey struct {
	barberID uuid.UUID
	date     string
}

type closingKey struct {
	branchID uuid.UUID
	date     string
}

func dayKey(d pgtype.Date) string {
	return d.Time.Format("2006-01-02")
}

// fakeStore is an in-memory stand-in for *database.Queries that satisfies
// every service store interface. Writes are not rolled back on error, so
// tests only inspect state after failures that happen before any write.
type fakeStore struct {
	branches   []database.Branch
	accounts   map[uuid.UUID]*database.CashAccount
	movements  []database.CashMovement
	catalog    map[uuid.UUID]database.CatalogItem
	barbers    map[uuid.UUID]database.Barber
	customers  map[uuid.UUID]*database.Customer
	trx        map[uuid.UUID]*database.Transaction
	trxItems   map[uuid.UUID][]database.TransactionItem
	categories map[uuid.UUID]database.ExpenseCategory
	expenses   map[uuid.UUID]database.Expense
	periods    map[uuid.UUID]*database.SalaryPeriod
	adjust     map[uuid.UUID][]database.SalaryAdjustment
	debts      []*database.SalaryDebt
	repayments []database.DebtRepayment
	payments   map[uuid.UUID]database.SalaryPayment
	attendance map[attendanceKey]*database.Attendance
	closings   map[closingKey]database.DailyClosing

	// Canned aggregate results.
	commission      database.SumBarberCommissionRow
	presentDays     int64
	overlapping     int64
	paidPeriods     int64
	salesSummary    database.GetDailySalesSummaryRow
	expensesTotal   decimal.Decimal
	createTrxErrors []error
	nextSeq         int32

	// raceWinner, when set, is inserted by CreateTransaction, which then
	// fails on the idempotency key as a concurrent request would.
	raceWinner *database.Transaction

	// calls records lock and overlap queries in the order they ran.
	calls []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		accounts:   map[uuid.UUID]*database.CashAccount{},
		catalog:    map[uuid.UUID]database.CatalogItem{},
		barbers:    map[uuid.UUID]database.Barber{},
		customers:  map[uuid.UUID]*database.Customer{},
		trx:        map[uuid.UUID]*database.Transaction{},
		trxItems:   map[uuid.UUID][]database.TransactionItem{},
		categories: map[uuid.UUID]database.ExpenseCategory{},
		expenses:   map[uuid.UUID]database.Expense{},
		periods:    map[uuid.UUID]*database.SalaryPeriod{},
		adjust:     map[uuid.UUID][]database.SalaryAdjustment{},
		payments:   map[uuid.UUID]database.SalaryPayment{},
		attendance: map[attendanceKey]*database.Attendance{},
		closings:   map[closingKey]database.DailyClosing{},
		nextSeq:    1,
	}
}

// --- Seeding helpers ---

func num(s string) pgtype.Numeric {
	return money.ToNumeric(decimal.RequireFromString(s))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func numEquals(n pgtype.Numeric, want string) bool {
	return money.FromNumeric(n).Equal(decimal.RequireFromString(want))
}

func (f *fakeStore) addAccount(branchID uuid.UUID, kind, balance string, isDefault bool) *database.CashAccount {
	a := &database.CashAccount{
		ID:        uuid.New(),
		BranchID:  branchID,
		Name:      DefaultAccountNames[kind],
		Kind:      kind,
		Balance:   num(balance),
		IsDefault: isDefault,
		IsActive:  true,
	}
	f.accounts[a.ID] = a
	return a
}

func (f *fakeStore) addBarber(branchID uuid.UUID, name, baseSalary, rate string) database.Barber {
	b := database.Barber{
		ID:             uuid.New(),
		BranchID:       branchID,
		Name:           name,
		BaseSalary:     num(baseSalary),
		CommissionRate: num(rate),
		IsActive:       true,
	}
	f.barbers[b.ID] = b
	return b
}

func (f *fakeStore) addCatalog(branchID uuid.UUID, name, kind, price string, rate *string) database.CatalogItem {
	c := database.CatalogItem{
		ID:       uuid.New(),
		BranchID: branchID,
		Name:     name,
		Kind:     kind,
		Price:    num(price),
		IsActive: true,
	}
	if rate != nil {
		c.CommissionRate = num(*rate)
	}
	f.catalog[c.ID] = c
	return c
}

func (f *fakeStore) movementsFor(accountID uuid.UUID) []database.CashMovement {
	var out []database.CashMovement
	for _, m := range f.movements {
		if m.AccountID == accountID {
			out = append(out, m)
		}
	}
	return out
}

// --- LedgerStore ---

func (f *fakeStore) GetCashAccountForUpdate(ctx context.Context, arg database.GetCashAccountForUpdateParams) (database.CashAccount, error) {
	f.calls = append(f.calls, "lock-account:"+arg.ID.String())
	a, ok := f.accounts[arg.ID]
	if !ok || a.BranchID != arg.BranchID {
		return database.CashAccount{}, pgx.ErrNoRows
	}
	return *a, nil
}

func (f *fakeStore) GetDefaultCashAccountForUpdate(ctx context.Context, arg database.GetDefaultCashAccountForUpdateParams) (database.CashAccount, error) {
	for _, a := range f.accounts {
		if a.BranchID == arg.BranchID && a.Kind == arg.Kind && a.IsDefault && a.IsActive {
			return *a, nil
		}
	}
	return database.CashAccount{}, pgx.ErrNoRows
}

func (f *fakeStore) AddCashAccountBalance(ctx context.Context, arg database.AddCashAccountBalanceParams) (database.CashAccount, error) {
	a, ok := f.accounts[arg.ID]
	if !ok {
		return database.CashAccount{}, pgx.ErrNoRows
	}
	next := money.FromNumeric(a.Balance).Add(money.FromNumeric(arg.Amount))
	if next.IsNegative() {
		return database.CashAccount{}, &pgconn.PgError{Code: "23514", ConstraintName: balanceCheckConstraint}
	}
	a.Balance = money.ToNumeric(next)
	return *a, nil
}

func (f *fakeStore) CreateCashMovement(ctx context.Context, arg database.CreateCashMovementParams) (database.CashMovement, error) {
	m := database.CashMovement{
		ID:            uuid.New(),
		BranchID:      arg.BranchID,
		AccountID:     arg.AccountID,
		Direction:     arg.Direction,
		Category:      arg.Category,
		Amount:        arg.Amount,
		BalanceAfter:  arg.BalanceAfter,
		Description:   arg.Description,
		ReferenceType: arg.ReferenceType,
		ReferenceID:   arg.ReferenceID,
		CreatedBy:     arg.CreatedBy,
		CreatedAt:     time.Now(),
	}
	f.movements = append(f.movements, m)
	return m, nil
}

func (f *fakeStore) ListMovementsByReference(ctx context.Context, arg database.ListMovementsByReferenceParams) ([]database.CashMovement, error) {
	var out []database.CashMovement
	for _, m := range f.movements {
		if m.ReferenceType == arg.ReferenceType && m.ReferenceID == arg.ReferenceID {
			out = append(out, m)
		}
	}
	return out, nil
}

// --- Cash accounts ---

func (f *fakeStore) ListCashAccounts(ctx context.Context, branchID uuid.UUID) ([]database.CashAccount, error) {
	var out []database.CashAccount
	for _, a := range f.accounts {
		if a.BranchID == branchID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) EnsureDefaultCashAccount(ctx context.Context, arg database.EnsureDefaultCashAccountParams) (int64, error) {
	for _, a := range f.accounts {
		if a.BranchID == arg.BranchID && a.Kind == arg.Kind && a.IsDefault {
			return 0, nil
		}
	}
	a := f.addAccount(arg.BranchID, arg.Kind, "0", true)
	a.Name = arg.Name
	return 1, nil
}

func (f *fakeStore) CreateCashAccount(ctx context.Context, arg database.CreateCashAccountParams) (database.CashAccount, error) {
	a := &database.CashAccount{
		ID:       uuid.New(),
		BranchID: arg.BranchID,
		Name:     arg.Name,
		Kind:     arg.Kind,
		Balance:  arg.Balance,
		IsActive: true,
	}
	f.accounts[a.ID] = a
	return *a, nil
}

func (f *fakeStore) DeactivateCashAccount(ctx context.Context, arg database.DeactivateCashAccountParams) (database.CashAccount, error) {
	a, ok := f.accounts[arg.ID]
	if !ok || a.BranchID != arg.BranchID {
		return database.CashAccount{}, pgx.ErrNoRows
	}
	a.IsActive = false
	return *a, nil
}

// --- Checkout ---

func (f *fakeStore) GetTransactionByIdempotencyKey(ctx context.Context, arg database.GetTransactionByIdempotencyKeyParams) (database.Transaction, error) {
	for _, t := range f.trx {
		if t.BranchID == arg.BranchID && t.IdempotencyKey.Valid && t.IdempotencyKey.String == arg.IdempotencyKey.String {
			return *t, nil
		}
	}
	return database.Transaction{}, pgx.ErrNoRows
}

func (f *fakeStore) GetNextTransactionSeq(ctx context.Context, arg database.GetNextTransactionSeqParams) (int32, error) {
	return f.nextSeq, nil
}

func (f *fakeStore) GetCatalogItem(ctx context.Context, arg database.GetCatalogItemParams) (database.CatalogItem, error) {
	c, ok := f.catalog[arg.ID]
	if !ok || c.BranchID != arg.BranchID {
		return database.CatalogItem{}, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeStore) GetBarber(ctx context.Context, arg database.GetBarberParams) (database.Barber, error) {
	b, ok := f.barbers[arg.ID]
	if !ok || b.BranchID != arg.BranchID {
		return database.Barber{}, pgx.ErrNoRows
	}
	return b, nil
}

func (f *fakeStore) GetBarberForUpdate(ctx context.Context, arg database.GetBarberParams) (database.Barber, error) {
	f.calls = append(f.calls, "lock-barber")
	return f.GetBarber(ctx, arg)
}

func (f *fakeStore) GetCustomer(ctx context.Context, arg database.GetCustomerParams) (database.Customer, error) {
	c, ok := f.customers[arg.ID]
	if !ok || c.BranchID != arg.BranchID {
		return database.Customer{}, pgx.ErrNoRows
	}
	return *c, nil
}

func (f *fakeStore) CreateTransaction(ctx context.Context, arg database.CreateTransactionParams) (database.Transaction, error) {
	if len(f.createTrxErrors) > 0 {
		err := f.createTrxErrors[0]
		f.createTrxErrors = f.createTrxErrors[1:]
		if err != nil {
			return database.Transaction{}, err
		}
	}
	if w := f.raceWinner; w != nil {
		f.raceWinner = nil
		f.trx[w.ID] = w
		return database.Transaction{}, &pgconn.PgError{Code: "23505", ConstraintName: idempotencyKeyConstraint}
	}
	t := &database.Transaction{
		ID:                uuid.New(),
		BranchID:          arg.BranchID,
		TransactionNumber: arg.TransactionNumber,
		CustomerID:        arg.CustomerID,
		CashierID:         arg.CashierID,
		Status:            enum.TransactionStatusCompleted,
		Subtotal:          arg.Subtotal,
		DiscountType:      arg.DiscountType,
		DiscountValue:     arg.DiscountValue,
		DiscountAmount:    arg.DiscountAmount,
		Total:             arg.Total,
		CashAmount:        arg.CashAmount,
		BankAmount:        arg.BankAmount,
		QrisAmount:        arg.QrisAmount,
		CashReceived:      arg.CashReceived,
		ChangeAmount:      arg.ChangeAmount,
		IdempotencyKey:    arg.IdempotencyKey,
		Notes:             arg.Notes,
		TransactionDate:   arg.TransactionDate,
		CreatedAt:         time.Now(),
	}
	f.trx[t.ID] = t
	f.nextSeq++
	return *t, nil
}

func (f *fakeStore) CreateTransactionItem(ctx context.Context, arg database.CreateTransactionItemParams) (database.TransactionItem, error) {
	i := database.TransactionItem{
		ID:               uuid.New(),
		TransactionID:    arg.TransactionID,
		CatalogItemID:    arg.CatalogItemID,
		BarberID:         arg.BarberID,
		ItemName:         arg.ItemName,
		Kind:             arg.Kind,
		Quantity:         arg.Quantity,
		UnitPrice:        arg.UnitPrice,
		Subtotal:         arg.Subtotal,
		CommissionRate:   arg.CommissionRate,
		CommissionAmount: arg.CommissionAmount,
	}
	f.trxItems[arg.TransactionID] = append(f.trxItems[arg.TransactionID], i)
	return i, nil
}

func (f *fakeStore) ListTransactionItems(ctx context.Context, transactionID uuid.UUID) ([]database.TransactionItem, error) {
	return f.trxItems[transactionID], nil
}

func (f *fakeStore) TouchCustomerVisit(ctx context.Context, arg database.TouchCustomerVisitParams) error {
	c, ok := f.customers[arg.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	c.VisitCount++
	c.LastVisitAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	return nil
}

func (f *fakeStore) GetTransactionForUpdate(ctx context.Context, arg database.GetTransactionForUpdateParams) (database.Transaction, error) {
	t, ok := f.trx[arg.ID]
	if !ok || t.BranchID != arg.BranchID {
		return database.Transaction{}, pgx.ErrNoRows
	}
	return *t, nil
}

func (f *fakeStore) CountPaidPeriodsForTransaction(ctx context.Context, arg database.CountPaidPeriodsForTransactionParams) (int64, error) {
	return f.paidPeriods, nil
}

func (f *fakeStore) VoidTransaction(ctx context.Context, arg database.VoidTransactionParams) (database.Transaction, error) {
	t, ok := f.trx[arg.ID]
	if !ok || t.Status != enum.TransactionStatusCompleted {
		return database.Transaction{}, pgx.ErrNoRows
	}
	t.Status = enum.TransactionStatusVoided
	t.VoidReason = arg.VoidReason
	t.VoidedBy = arg.VoidedBy
	t.VoidedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	return *t, nil
}

// --- Expenses ---

func (f *fakeStore) ListExpenseCategories(ctx context.Context, branchID uuid.UUID) ([]database.ExpenseCategory, error) {
	var out []database.ExpenseCategory
	for _, c := range f.categories {
		if c.BranchID == branchID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeStore) GetExpenseCategory(ctx context.Context, arg database.GetExpenseCategoryParams) (database.ExpenseCategory, error) {
	c, ok := f.categories[arg.ID]
	if !ok || c.BranchID != arg.BranchID {
		return database.ExpenseCategory{}, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeStore) CreateExpense(ctx context.Context, arg database.CreateExpenseParams) (database.Expense, error) {
	e := database.Expense{
		ID:          uuid.New(),
		BranchID:    arg.BranchID,
		CategoryID:  arg.CategoryID,
		AccountID:   arg.AccountID,
		Amount:      arg.Amount,
		Description: arg.Description,
		ExpenseDate: arg.ExpenseDate,
		CreatedBy:   arg.CreatedBy,
		CreatedAt:   time.Now(),
	}
	f.expenses[e.ID] = e
	return e, nil
}

func (f *fakeStore) GetExpenseForUpdate(ctx context.Context, arg database.GetExpenseForUpdateParams) (database.Expense, error) {
	e, ok := f.expenses[arg.ID]
	if !ok || e.BranchID != arg.BranchID {
		return database.Expense{}, pgx.ErrNoRows
	}
	return e, nil
}

func (f *fakeStore) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	delete(f.expenses, id)
	return nil
}

// --- Salary ---

func (f *fakeStore) CountOverlappingPeriods(ctx context.Context, arg database.CountOverlappingPeriodsParams) (int64, error) {
	f.calls = append(f.calls, "count-overlap")
	return f.overlapping, nil
}

func (f *fakeStore) CreateSalaryPeriod(ctx context.Context, arg database.CreateSalaryPeriodParams) (database.SalaryPeriod, error) {
	p := &database.SalaryPeriod{
		ID:              uuid.New(),
		BranchID:        arg.BranchID,
		BarberID:        arg.BarberID,
		StartDate:       arg.StartDate,
		EndDate:         arg.EndDate,
		Status:          enum.SalaryPeriodOpen,
		BaseSalary:      arg.BaseSalary,
		CommissionTotal: num("0"),
		BonusTotal:      num("0"),
		DeductionTotal:  num("0"),
		DebtDeduction:   num("0"),
		NetAmount:       num("0"),
	}
	f.periods[p.ID] = p
	return *p, nil
}

func (f *fakeStore) GetSalaryPeriod(ctx context.Context, arg database.GetSalaryPeriodParams) (database.SalaryPeriod, error) {
	p, ok := f.periods[arg.ID]
	if !ok || p.BranchID != arg.BranchID {
		return database.SalaryPeriod{}, pgx.ErrNoRows
	}
	return *p, nil
}

func (f *fakeStore) GetSalaryPeriodForUpdate(ctx context.Context, arg database.GetSalaryPeriodParams) (database.SalaryPeriod, error) {
	return f.GetSalaryPeriod(ctx, arg)
}

func (f *fakeStore) DeleteOpenSalaryPeriod(ctx context.Context, arg database.DeleteOpenSalaryPeriodParams) (uuid.UUID, error) {
	p, ok := f.periods[arg.ID]
	if !ok || p.Status != enum.SalaryPeriodOpen {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(f.periods, arg.ID)
	delete(f.adjust, arg.ID)
	return arg.ID, nil
}

func (f *fakeStore) MarkSalaryPeriodPaid(ctx context.Context, arg database.MarkSalaryPeriodPaidParams) (database.SalaryPeriod, error) {
	p, ok := f.periods[arg.ID]
	if !ok || p.Status != enum.SalaryPeriodOpen {
		return database.SalaryPeriod{}, pgx.ErrNoRows
	}
	p.Status = enum.SalaryPeriodPaid
	p.CommissionTotal = arg.CommissionTotal
	p.BonusTotal = arg.BonusTotal
	p.DeductionTotal = arg.DeductionTotal
	p.DebtDeduction = arg.DebtDeduction
	p.NetAmount = arg.NetAmount
	p.PaidBy = arg.PaidBy
	p.PaidAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	return *p, nil
}

func (f *fakeStore) CreateSalaryAdjustment(ctx context.Context, arg database.CreateSalaryAdjustmentParams) (database.SalaryAdjustment, error) {
	a := database.SalaryAdjustment{
		ID:          uuid.New(),
		PeriodID:    arg.PeriodID,
		Kind:        arg.Kind,
		Amount:      arg.Amount,
		Description: arg.Description,
	}
	f.adjust[arg.PeriodID] = append(f.adjust[arg.PeriodID], a)
	return a, nil
}

func (f *fakeStore) ListSalaryAdjustments(ctx context.Context, periodID uuid.UUID) ([]database.SalaryAdjustment, error) {
	return f.adjust[periodID], nil
}

func (f *fakeStore) DeleteSalaryAdjustment(ctx context.Context, arg database.DeleteSalaryAdjustmentParams) (uuid.UUID, error) {
	list := f.adjust[arg.PeriodID]
	for i, a := range list {
		if a.ID == arg.ID {
			f.adjust[arg.PeriodID] = append(list[:i], list[i+1:]...)
			return a.ID, nil
		}
	}
	return uuid.Nil, pgx.ErrNoRows
}

func (f *fakeStore) SumBarberCommission(ctx context.Context, arg database.SumBarberCommissionParams) (database.SumBarberCommissionRow, error) {
	row := f.commission
	if !row.Commission.Valid {
		row.Commission = num("0")
	}
	if !row.Revenue.Valid {
		row.Revenue = num("0")
	}
	return row, nil
}

func (f *fakeStore) CountPresentDays(ctx context.Context, arg database.CountPresentDaysParams) (int64, error) {
	return f.presentDays, nil
}

func (f *fakeStore) CreateSalaryDebt(ctx context.Context, arg database.CreateSalaryDebtParams) (database.SalaryDebt, error) {
	d := &database.SalaryDebt{
		ID:          uuid.New(),
		BranchID:    arg.BranchID,
		BarberID:    arg.BarberID,
		AccountID:   arg.AccountID,
		Amount:      arg.Amount,
		Remaining:   arg.Amount,
		Description: arg.Description,
		DebtDate:    arg.DebtDate,
		Status:      enum.DebtStatusOpen,
		CreatedBy:   arg.CreatedBy,
		CreatedAt:   time.Now(),
	}
	f.debts = append(f.debts, d)
	return *d, nil
}

func (f *fakeStore) ListOpenDebtsForUpdate(ctx context.Context, barberID uuid.UUID) ([]database.SalaryDebt, error) {
	var out []database.SalaryDebt
	for _, d := range f.debts {
		if d.BarberID == barberID && d.Status == enum.DebtStatusOpen {
			out = append(out, *d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DebtDate.Time.Before(out[j].DebtDate.Time) })
	return out, nil
}

func (f *fakeStore) SumOutstandingDebt(ctx context.Context, barberID uuid.UUID) (pgtype.Numeric, error) {
	total := decimal.Zero
	for _, d := range f.debts {
		if d.BarberID == barberID && d.Status == enum.DebtStatusOpen {
			total = total.Add(money.FromNumeric(d.Remaining))
		}
	}
	return money.ToNumeric(total), nil
}

func (f *fakeStore) ApplyDebtRepayment(ctx context.Context, arg database.ApplyDebtRepaymentParams) (database.SalaryDebt, error) {
	for _, d := range f.debts {
		if d.ID != arg.ID || d.Status != enum.DebtStatusOpen {
			continue
		}
		left := money.FromNumeric(d.Remaining).Sub(money.FromNumeric(arg.Amount))
		d.Remaining = money.ToNumeric(left)
		if left.IsZero() {
			d.Status = enum.DebtStatusSettled
		}
		return *d, nil
	}
	return database.SalaryDebt{}, pgx.ErrNoRows
}

func (f *fakeStore) CreateDebtRepayment(ctx context.Context, arg database.CreateDebtRepaymentParams) (database.DebtRepayment, error) {
	r := database.DebtRepayment{ID: uuid.New(), DebtID: arg.DebtID, PeriodID: arg.PeriodID, Amount: arg.Amount}
	f.repayments = append(f.repayments, r)
	return r, nil
}

func (f *fakeStore) CreateSalaryPayment(ctx context.Context, arg database.CreateSalaryPaymentParams) (database.SalaryPayment, error) {
	p := database.SalaryPayment{
		ID:        uuid.New(),
		PeriodID:  arg.PeriodID,
		AccountID: arg.AccountID,
		Amount:    arg.Amount,
		PaidBy:    arg.PaidBy,
		PaidAt:    time.Now(),
	}
	f.payments[arg.PeriodID] = p
	return p, nil
}

func (f *fakeStore) GetSalaryPaymentByPeriod(ctx context.Context, periodID uuid.UUID) (database.SalaryPayment, error) {
	p, ok := f.payments[periodID]
	if !ok {
		return database.SalaryPayment{}, pgx.ErrNoRows
	}
	return p, nil
}

// --- Closing ---

func (f *fakeStore) GetDailySalesSummary(ctx context.Context, arg database.GetDailySalesSummaryParams) (database.GetDailySalesSummaryRow, error) {
	row := f.salesSummary
	for _, n := range []*pgtype.Numeric{&row.TotalSales, &row.CashSales, &row.BankSales, &row.QrisSales} {
		if !n.Valid {
			*n = num("0")
		}
	}
	return row, nil
}

func (f *fakeStore) SumExpenses(ctx context.Context, arg database.SumExpensesParams) (pgtype.Numeric, error) {
	return money.ToNumeric(f.expensesTotal), nil
}

func (f *fakeStore) CreateDailyClosing(ctx context.Context, arg database.CreateDailyClosingParams) (database.DailyClosing, error) {
	key := closingKey{arg.BranchID, dayKey(arg.ClosingDate)}
	if _, ok := f.closings[key]; ok {
		return database.DailyClosing{}, &pgconn.PgError{Code: "23505", ConstraintName: dailyClosingConstraint}
	}
	c := database.DailyClosing{
		ID:               uuid.New(),
		BranchID:         arg.BranchID,
		ClosingDate:      arg.ClosingDate,
		TransactionCount: arg.TransactionCount,
		TotalSales:       arg.TotalSales,
		CashSales:        arg.CashSales,
		BankSales:        arg.BankSales,
		QrisSales:        arg.QrisSales,
		TotalExpenses:    arg.TotalExpenses,
		ClosingBalance:   arg.ClosingBalance,
		Notes:            arg.Notes,
		ClosedBy:         arg.ClosedBy,
		CreatedAt:        time.Now(),
	}
	f.closings[key] = c
	return c, nil
}

func (f *fakeStore) GetDailyClosingByDate(ctx context.Context, arg database.GetDailyClosingByDateParams) (database.DailyClosing, error) {
	c, ok := f.closings[closingKey{arg.BranchID, dayKey(arg.ClosingDate)}]
	if !ok {
		return database.DailyClosing{}, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeStore) ListBranches(ctx context.Context, includeInactive bool) ([]database.Branch, error) {
	var out []database.Branch
	for _, b := range f.branches {
		if includeInactive || b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

// --- Attendance ---

func (f *fakeStore) GetAttendance(ctx context.Context, arg database.GetAttendanceParams) (database.Attendance, error) {
	a, ok := f.attendance[attendanceKey{arg.BarberID, dayKey(arg.AttendanceDate)}]
	if !ok {
		return database.Attendance{}, pgx.ErrNoRows
	}
	return *a, nil
}

func (f *fakeStore) CreateCheckIn(ctx context.Context, arg database.CreateCheckInParams) (database.Attendance, error) {
	key := attendanceKey{arg.BarberID, dayKey(arg.AttendanceDate)}
	if _, ok := f.attendance[key]; ok {
		return database.Attendance{}, &pgconn.PgError{Code: "23505", ConstraintName: attendanceConstraint}
	}
	a := &database.Attendance{
		ID:             uuid.New(),
		BranchID:       arg.BranchID,
		BarberID:       arg.BarberID,
		AttendanceDate: arg.AttendanceDate,
		Status:         enum.AttendancePresent,
		CheckIn:        pgtype.Timestamptz{Time: arg.CheckIn, Valid: true},
	}
	f.attendance[key] = a
	return *a, nil
}

func (f *fakeStore) SetCheckOut(ctx context.Context, arg database.SetCheckOutParams) (database.Attendance, error) {
	for _, a := range f.attendance {
		if a.ID == arg.ID && a.CheckIn.Valid && !a.CheckOut.Valid {
			a.CheckOut = pgtype.Timestamptz{Time: arg.CheckOut, Valid: true}
			return *a, nil
		}
	}
	return database.Attendance{}, pgx.ErrNoRows
}

func (f *fakeStore) UpsertAttendance(ctx context.Context, arg database.UpsertAttendanceParams) (database.Attendance, error) {
	key := attendanceKey{arg.BarberID, dayKey(arg.AttendanceDate)}
	a, ok := f.attendance[key]
	if !ok {
		a = &database.Attendance{
			ID:             uuid.New(),
			BranchID:       arg.BranchID,
			BarberID:       arg.BarberID,
			AttendanceDate: arg.AttendanceDate,
		}
		f.attendance[key] = a
	}
	a.Status = arg.Status
	a.Notes = arg.Notes
	return *a, nil
}
