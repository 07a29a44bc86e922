package storage

import (
	"time"

	"github.com/fatali-fataliyev/monthly_budget/internal/budget"
	"github.com/fatali-fataliyev/monthly_budget/internal/money"
	"github.com/fatali-fataliyev/monthly_budget/internal/period"
)

type dbExpense struct {
	ID          string
	Description string
	ValueCents  int64
	Month       int
	Year        int
	Category    string
	Icon        string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type dbLimit struct {
	ID         string
	ValueCents int64
	Month      int
	Year       int
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func expenseToDb(e budget.Expense) (dbExpense, error) {
	cents, err := money.ToCents(e.Value)
	if err != nil {
		return dbExpense{}, err
	}
	return dbExpense{
		ID:          e.ID,
		Description: e.Description,
		ValueCents:  cents,
		Month:       int(e.Period.Month),
		Year:        e.Period.Year,
		Category:    e.Category,
		Icon:        e.Icon,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   e.UpdatedAt.UTC(),
	}, nil
}

func (e dbExpense) toBudget() (budget.Expense, error) {
	value, err := money.ToDecimal(e.ValueCents)
	if err != nil {
		return budget.Expense{}, err
	}
	return budget.Expense{
		ID:          e.ID,
		Description: e.Description,
		Value:       value,
		Period:      period.Period{Year: e.Year, Month: time.Month(e.Month)},
		Category:    e.Category,
		Icon:        e.Icon,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt.UTC(),
		UpdatedAt:   e.UpdatedAt.UTC(),
	}, nil
}

func limitToDb(l budget.MonthlyLimit) (dbLimit, error) {
	cents, err := money.ToCents(l.Value)
	if err != nil {
		return dbLimit{}, err
	}
	return dbLimit{
		ID:         l.ID,
		ValueCents: cents,
		Month:      int(l.Period.Month),
		Year:       l.Period.Year,
		CreatedBy:  l.CreatedBy,
		CreatedAt:  l.CreatedAt.UTC(),
		UpdatedAt:  l.UpdatedAt.UTC(),
	}, nil
}

func (l dbLimit) toBudget() (budget.MonthlyLimit, error) {
	value, err := money.ToDecimal(l.ValueCents)
	if err != nil {
		return budget.MonthlyLimit{}, err
	}
	return budget.MonthlyLimit{
		ID:        l.ID,
		Value:     value,
		Period:    period.Period{Year: l.Year, Month: time.Month(l.Month)},
		CreatedBy: l.CreatedBy,
		CreatedAt: l.CreatedAt.UTC(),
		UpdatedAt: l.UpdatedAt.UTC(),
	}, nil
}
