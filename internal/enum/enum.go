package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	TransactionStatusCompleted = "COMPLETED"
	TransactionStatusVoided    = "VOIDED"
)

const (
	SalaryPeriodOpen = "OPEN"
	SalaryPeriodPaid = "PAID"
)

const (
	DebtStatusOpen    = "OPEN"
	DebtStatusSettled = "SETTLED"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	UserRoleOwner   = "OWNER"
	UserRoleAdmin   = "ADMIN"
	UserRoleCashier = "CASHIER"
)

const (
	AccountKindCash = "CASH"
	AccountKindBank = "BANK"
	AccountKindQRIS = "QRIS"
)

const (
	CatalogKindService = "SERVICE"
	CatalogKindProduct = "PRODUCT"
)

const (
	AttendancePresent = "PRESENT"
	AttendanceLeave   = "LEAVE"
	AttendanceSick    = "SICK"
	AttendanceAbsent  = "ABSENT"
)

const (
	AdjustmentBonus     = "BONUS"
	AdjustmentDeduction = "DEDUCTION"
)

const (
	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

// ── Group B: Configurable labels (no DB constraint) ──

// Cash movement categories.
const (
	MovementOpening       = "OPENING"
	MovementSale          = "SALE"
	MovementVoid          = "VOID"
	MovementDeposit       = "DEPOSIT"
	MovementWithdrawal    = "WITHDRAWAL"
	MovementTransferIn    = "TRANSFER_IN"
	MovementTransferOut   = "TRANSFER_OUT"
	MovementExpense       = "EXPENSE"
	MovementExpenseRefund = "EXPENSE_REFUND"
	MovementSalary        = "SALARY"
	MovementDebt          = "DEBT"
)

// Reference types stored on cash movements.
const (
	RefTransaction  = "transaction"
	RefExpense      = "expense"
	RefSalaryPeriod = "salary_period"
	RefSalaryDebt   = "salary_debt"
	RefTransfer     = "transfer"
)

const (
	DiscountTypePercentage = "PERCENTAGE"
	DiscountTypeFixed      = "FIXED"
)

// AccountKinds lists the kinds that get a default account per branch, in display order.
var AccountKinds = []string{AccountKindCash, AccountKindBank, AccountKindQRIS}

var movementCategories = map[string]bool{
	MovementOpening:       true,
	MovementSale:          true,
	MovementVoid:          true,
	MovementDeposit:       true,
	MovementWithdrawal:    true,
	MovementTransferIn:    true,
	MovementTransferOut:   true,
	MovementExpense:       true,
	MovementExpenseRefund: true,
	MovementSalary:        true,
	MovementDebt:          true,
}

// IsMovementCategory reports whether c is a known cash movement category.
func IsMovementCategory(c string) bool {
	return movementCategories[c]
}
