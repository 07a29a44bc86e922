package budget

import (
	"time"

	"github.com/fatali-fataliyev/monthly_budget/internal/period"
	"github.com/shopspring/decimal"
)

// REQUESTS START:
type ExpenseRequest struct {
	Description string
	Value       decimal.Decimal
	Period      period.Period
	Category    string
	Icon        string
}

type LimitRequest struct {
	Value  decimal.Decimal
	Period period.Period
}

// ExpenseUpdate holds the fields a PUT sent. Nil fields keep the stored value.
type ExpenseUpdate struct {
	Description *string
	Value       *decimal.Decimal
	Period      *period.Period
	Category    *string
	Icon        *string
}

type LimitUpdate struct {
	Value  *decimal.Decimal
	Period *period.Period
}

// REQUESTS END:

// MODELS:

type Expense struct {
	ID          string
	Description string
	Value       decimal.Decimal
	Period      period.Period
	Category    string
	Icon        string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type MonthlyLimit struct {
	ID        string
	Value     decimal.Decimal
	Period    period.Period
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RESPONSES:

type Status string

const (
	StatusNoLimit     Status = "noLimit"
	StatusWithinLimit Status = "withinLimit"
	StatusOverLimit   Status = "overLimit"
)

type BudgetStatus struct {
	Period        period.Period
	LimitAmount   *decimal.Decimal
	TotalExpenses decimal.Decimal
	Remaining     *decimal.Decimal
	Status        Status
	UsagePercent  int
}

type CategoryProgress struct {
	Label        string
	Icon         string
	Spent        decimal.Decimal
	LimitAmount  *decimal.Decimal
	UsagePercent int
	IsCustom     bool
}

type CategoryBreakdown struct {
	Period      period.Period
	LimitAmount *decimal.Decimal
	Categories  []CategoryProgress
}
