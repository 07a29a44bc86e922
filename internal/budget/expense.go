package budget

import (
	"context"
	"fmt"
	"strings"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
	"github.com/fatali-fataliyev/monthly_budget/internal/money"
	"github.com/fatali-fataliyev/monthly_budget/internal/period"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MAX_DESCRIPTION_LENGTH   = 255
	MAX_CATEGORY_NAME_LENGTH = 100
	MAX_ICON_LENGTH          = 50
)

// MAX_AMOUNT matches the DECIMAL(10,2) columns clients were built against.
var MAX_AMOUNT = decimal.RequireFromString("99999999.99")

func validateAmount(value decimal.Decimal, what string) error {
	if !value.IsPositive() {
		return appErrors.New(appErrors.ErrInvalidInput, "%s must be greater than 0.", what)
	}
	if !value.Equal(value.Round(2)) {
		return appErrors.New(appErrors.ErrInvalidInput, "%s can have at most two decimal places.", what)
	}
	if value.GreaterThan(MAX_AMOUNT) {
		return appErrors.New(appErrors.ErrInvalidInput, "%s is too large, the limit is: %s", what, MAX_AMOUNT.StringFixed(2))
	}
	return nil
}

func (req *ExpenseRequest) validate() error {
	req.Description = strings.TrimSpace(req.Description)
	req.Icon = strings.TrimSpace(req.Icon)
	req.Category = normalizeCategory(req.Category)

	if req.Description == "" {
		return appErrors.New(appErrors.ErrInvalidInput, "Description cannot be empty!")
	}
	if len(req.Description) > MAX_DESCRIPTION_LENGTH {
		return appErrors.New(appErrors.ErrInvalidInput, "Description so long, maximum allowed length is: %d", MAX_DESCRIPTION_LENGTH)
	}
	if err := validateAmount(req.Value, "Expense value"); err != nil {
		return err
	}
	if err := req.Period.Validate(); err != nil {
		return err
	}
	if len(req.Category) > MAX_CATEGORY_NAME_LENGTH {
		return appErrors.New(appErrors.ErrInvalidInput, "Category name so long, maximum allowed length is: %d", MAX_CATEGORY_NAME_LENGTH)
	}
	if len(req.Icon) > MAX_ICON_LENGTH {
		return appErrors.New(appErrors.ErrInvalidInput, "Icon so long, maximum allowed length is: %d", MAX_ICON_LENGTH)
	}
	return nil
}

func (bt *BudgetTracker) SaveExpense(ctx context.Context, userId string, req ExpenseRequest) (Expense, error) {
	if err := req.validate(); err != nil {
		return Expense{}, err
	}
	if err := period.EnsureMutable(req.Period, bt.Today(), "expenses"); err != nil {
		return Expense{}, err
	}

	now := bt.Today()
	expense := Expense{
		ID:          uuid.New().String(),
		Description: req.Description,
		Value:       req.Value,
		Period:      req.Period,
		Category:    req.Category,
		Icon:        req.Icon,
		CreatedBy:   userId,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := bt.storage.SaveExpense(ctx, expense); err != nil {
		return Expense{}, fmt.Errorf("failed to save expense: %w", err)
	}
	return expense, nil
}

// merge overlays the sent fields on the stored expense.
func (u ExpenseUpdate) merge(stored Expense) ExpenseRequest {
	req := ExpenseRequest{
		Description: stored.Description,
		Value:       stored.Value,
		Period:      stored.Period,
		Category:    stored.Category,
		Icon:        stored.Icon,
	}
	if u.Description != nil {
		req.Description = *u.Description
	}
	if u.Value != nil {
		req.Value = *u.Value
	}
	if u.Period != nil {
		req.Period = *u.Period
	}
	if u.Category != nil {
		req.Category = *u.Category
	}
	if u.Icon != nil {
		req.Icon = *u.Icon
	}
	return req
}

// UpdateExpense changes the sent fields of an expense and keeps the rest. The
// stored period decides the lock: a frozen expense cannot be edited, not even
// to move it to an open month. The resulting period must be open as well.
func (bt *BudgetTracker) UpdateExpense(ctx context.Context, userId string, expenseId string, update ExpenseUpdate) (Expense, error) {
	expense, err := bt.storage.GetExpenseById(ctx, userId, expenseId)
	if err != nil {
		return Expense{}, err
	}

	today := bt.Today()
	if err := period.EnsureMutable(expense.Period, today, "expenses"); err != nil {
		return Expense{}, err
	}

	req := update.merge(expense)
	if err := req.validate(); err != nil {
		return Expense{}, err
	}
	if err := period.EnsureMutable(req.Period, today, "expenses"); err != nil {
		return Expense{}, err
	}

	expense.Description = req.Description
	expense.Value = req.Value
	expense.Period = req.Period
	expense.Category = req.Category
	expense.Icon = req.Icon
	expense.UpdatedAt = today

	if err := bt.storage.UpdateExpense(ctx, expense); err != nil {
		return Expense{}, fmt.Errorf("failed to update expense: %w", err)
	}
	return expense, nil
}

// DeleteExpense removes an expense of an open month and returns what was removed.
func (bt *BudgetTracker) DeleteExpense(ctx context.Context, userId string, expenseId string) (Expense, error) {
	expense, err := bt.storage.GetExpenseById(ctx, userId, expenseId)
	if err != nil {
		return Expense{}, err
	}
	if err := period.EnsureMutable(expense.Period, bt.Today(), "expenses"); err != nil {
		return Expense{}, err
	}

	if err := bt.storage.DeleteExpense(ctx, userId, expenseId); err != nil {
		return Expense{}, fmt.Errorf("failed to delete expense: %w", err)
	}
	return expense, nil
}

func (bt *BudgetTracker) GetExpenseById(ctx context.Context, userId string, expenseId string) (Expense, error) {
	return bt.storage.GetExpenseById(ctx, userId, expenseId)
}

func (bt *BudgetTracker) ListExpenses(ctx context.Context, userId string) ([]Expense, error) {
	expenses, err := bt.storage.GetExpenses(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses: %w", err)
	}
	return expenses, nil
}

func (bt *BudgetTracker) ListExpensesByPeriod(ctx context.Context, userId string, p period.Period) ([]Expense, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	expenses, err := bt.storage.GetExpensesByPeriod(ctx, userId, p)
	if err != nil {
		return nil, fmt.Errorf("failed to get expenses of %s: %w", p, err)
	}
	return expenses, nil
}

// SumExpenses is zero, never an error, when the period has no expenses.
func (bt *BudgetTracker) SumExpenses(ctx context.Context, userId string, p period.Period) (decimal.Decimal, error) {
	if err := p.Validate(); err != nil {
		return decimal.Zero, err
	}
	cents, err := bt.storage.SumExpenses(ctx, userId, p)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses of %s: %w", p, err)
	}
	return money.ToDecimal(cents)
}
