package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Attendance struct {
	ID             uuid.UUID          `json:"id"`
	BranchID       uuid.UUID          `json:"branch_id"`
	BarberID       uuid.UUID          `json:"barber_id"`
	AttendanceDate pgtype.Date        `json:"attendance_date"`
	Status         string             `json:"status"`
	CheckIn        pgtype.Timestamptz `json:"check_in"`
	CheckOut       pgtype.Timestamptz `json:"check_out"`
	Notes          pgtype.Text        `json:"notes"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

type Barber struct {
	ID             uuid.UUID      `json:"id"`
	BranchID       uuid.UUID      `json:"branch_id"`
	Name           string         `json:"name"`
	Phone          pgtype.Text    `json:"phone"`
	BaseSalary     pgtype.Numeric `json:"base_salary"`
	CommissionRate pgtype.Numeric `json:"commission_rate"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type Branch struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Address   pgtype.Text `json:"address"`
	Phone     pgtype.Text `json:"phone"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type CashAccount struct {
	ID        uuid.UUID      `json:"id"`
	BranchID  uuid.UUID      `json:"branch_id"`
	Name      string         `json:"name"`
	Kind      string         `json:"kind"`
	Balance   pgtype.Numeric `json:"balance"`
	IsDefault bool           `json:"is_default"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type CashMovement struct {
	ID            uuid.UUID      `json:"id"`
	BranchID      uuid.UUID      `json:"branch_id"`
	AccountID     uuid.UUID      `json:"account_id"`
	Direction     string         `json:"direction"`
	Category      string         `json:"category"`
	Amount        pgtype.Numeric `json:"amount"`
	BalanceAfter  pgtype.Numeric `json:"balance_after"`
	Description   pgtype.Text    `json:"description"`
	ReferenceType pgtype.Text    `json:"reference_type"`
	ReferenceID   pgtype.UUID    `json:"reference_id"`
	CreatedBy     pgtype.UUID    `json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
}

type CatalogItem struct {
	ID             uuid.UUID      `json:"id"`
	BranchID       uuid.UUID      `json:"branch_id"`
	Name           string         `json:"name"`
	Kind           string         `json:"kind"`
	Price          pgtype.Numeric `json:"price"`
	CommissionRate pgtype.Numeric `json:"commission_rate"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type Customer struct {
	ID          uuid.UUID          `json:"id"`
	BranchID    uuid.UUID          `json:"branch_id"`
	Name        string             `json:"name"`
	Phone       pgtype.Text        `json:"phone"`
	Notes       pgtype.Text        `json:"notes"`
	VisitCount  int32              `json:"visit_count"`
	LastVisitAt pgtype.Timestamptz `json:"last_visit_at"`
	IsActive    bool               `json:"is_active"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

type DailyClosing struct {
	ID               uuid.UUID      `json:"id"`
	BranchID         uuid.UUID      `json:"branch_id"`
	ClosingDate      pgtype.Date    `json:"closing_date"`
	TransactionCount int32          `json:"transaction_count"`
	TotalSales       pgtype.Numeric `json:"total_sales"`
	CashSales        pgtype.Numeric `json:"cash_sales"`
	BankSales        pgtype.Numeric `json:"bank_sales"`
	QrisSales        pgtype.Numeric `json:"qris_sales"`
	TotalExpenses    pgtype.Numeric `json:"total_expenses"`
	ClosingBalance   pgtype.Numeric `json:"closing_balance"`
	Notes            pgtype.Text    `json:"notes"`
	ClosedBy         pgtype.UUID    `json:"closed_by"`
	CreatedAt        time.Time      `json:"created_at"`
}

type DebtRepayment struct {
	ID        uuid.UUID      `json:"id"`
	DebtID    uuid.UUID      `json:"debt_id"`
	PeriodID  uuid.UUID      `json:"period_id"`
	Amount    pgtype.Numeric `json:"amount"`
	CreatedAt time.Time      `json:"created_at"`
}

type Expense struct {
	ID          uuid.UUID      `json:"id"`
	BranchID    uuid.UUID      `json:"branch_id"`
	CategoryID  uuid.UUID      `json:"category_id"`
	AccountID   uuid.UUID      `json:"account_id"`
	Amount      pgtype.Numeric `json:"amount"`
	Description string         `json:"description"`
	ExpenseDate pgtype.Date    `json:"expense_date"`
	CreatedBy   uuid.UUID      `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
}

type ExpenseCategory struct {
	ID        uuid.UUID `json:"id"`
	BranchID  uuid.UUID `json:"branch_id"`
	Name      string    `json:"name"`
	Keywords  []string  `json:"keywords"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type SalaryAdjustment struct {
	ID          uuid.UUID      `json:"id"`
	PeriodID    uuid.UUID      `json:"period_id"`
	Kind        string         `json:"kind"`
	Amount      pgtype.Numeric `json:"amount"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
}

type SalaryDebt struct {
	ID          uuid.UUID      `json:"id"`
	BranchID    uuid.UUID      `json:"branch_id"`
	BarberID    uuid.UUID      `json:"barber_id"`
	AccountID   uuid.UUID      `json:"account_id"`
	Amount      pgtype.Numeric `json:"amount"`
	Remaining   pgtype.Numeric `json:"remaining"`
	Description pgtype.Text    `json:"description"`
	DebtDate    pgtype.Date    `json:"debt_date"`
	Status      string         `json:"status"`
	CreatedBy   uuid.UUID      `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
}

type SalaryPayment struct {
	ID        uuid.UUID      `json:"id"`
	PeriodID  uuid.UUID      `json:"period_id"`
	AccountID uuid.UUID      `json:"account_id"`
	Amount    pgtype.Numeric `json:"amount"`
	PaidBy    uuid.UUID      `json:"paid_by"`
	PaidAt    time.Time      `json:"paid_at"`
}

type SalaryPeriod struct {
	ID              uuid.UUID          `json:"id"`
	BranchID        uuid.UUID          `json:"branch_id"`
	BarberID        uuid.UUID          `json:"barber_id"`
	StartDate       pgtype.Date        `json:"start_date"`
	EndDate         pgtype.Date        `json:"end_date"`
	Status          string             `json:"status"`
	BaseSalary      pgtype.Numeric     `json:"base_salary"`
	CommissionTotal pgtype.Numeric     `json:"commission_total"`
	BonusTotal      pgtype.Numeric     `json:"bonus_total"`
	DeductionTotal  pgtype.Numeric     `json:"deduction_total"`
	DebtDeduction   pgtype.Numeric     `json:"debt_deduction"`
	NetAmount       pgtype.Numeric     `json:"net_amount"`
	PaidAt          pgtype.Timestamptz `json:"paid_at"`
	PaidBy          pgtype.UUID        `json:"paid_by"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type Transaction struct {
	ID                uuid.UUID          `json:"id"`
	BranchID          uuid.UUID          `json:"branch_id"`
	TransactionNumber string             `json:"transaction_number"`
	CustomerID        pgtype.UUID        `json:"customer_id"`
	CashierID         uuid.UUID          `json:"cashier_id"`
	Status            string             `json:"status"`
	Subtotal          pgtype.Numeric     `json:"subtotal"`
	DiscountType      pgtype.Text        `json:"discount_type"`
	DiscountValue     pgtype.Numeric     `json:"discount_value"`
	DiscountAmount    pgtype.Numeric     `json:"discount_amount"`
	Total             pgtype.Numeric     `json:"total"`
	CashAmount        pgtype.Numeric     `json:"cash_amount"`
	BankAmount        pgtype.Numeric     `json:"bank_amount"`
	QrisAmount        pgtype.Numeric     `json:"qris_amount"`
	CashReceived      pgtype.Numeric     `json:"cash_received"`
	ChangeAmount      pgtype.Numeric     `json:"change_amount"`
	IdempotencyKey    pgtype.Text        `json:"idempotency_key"`
	Notes             pgtype.Text        `json:"notes"`
	TransactionDate   pgtype.Date        `json:"transaction_date"`
	VoidReason        pgtype.Text        `json:"void_reason"`
	VoidedBy          pgtype.UUID        `json:"voided_by"`
	VoidedAt          pgtype.Timestamptz `json:"voided_at"`
	CreatedAt         time.Time          `json:"created_at"`
}

type TransactionItem struct {
	ID               uuid.UUID      `json:"id"`
	TransactionID    uuid.UUID      `json:"transaction_id"`
	CatalogItemID    uuid.UUID      `json:"catalog_item_id"`
	BarberID         pgtype.UUID    `json:"barber_id"`
	ItemName         string         `json:"item_name"`
	Kind             string         `json:"kind"`
	Quantity         int32          `json:"quantity"`
	UnitPrice        pgtype.Numeric `json:"unit_price"`
	Subtotal         pgtype.Numeric `json:"subtotal"`
	CommissionRate   pgtype.Numeric `json:"commission_rate"`
	CommissionAmount pgtype.Numeric `json:"commission_amount"`
}

type User struct {
	ID             uuid.UUID   `json:"id"`
	BranchID       uuid.UUID   `json:"branch_id"`
	Email          string      `json:"email"`
	HashedPassword string      `json:"hashed_password"`
	FullName       string      `json:"full_name"`
	Role           string      `json:"role"`
	Pin            pgtype.Text `json:"pin"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
