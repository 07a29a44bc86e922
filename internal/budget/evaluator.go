package budget

import (
	"context"
	"fmt"
	"sort"

	"github.com/fatali-fataliyev/monthly_budget/internal/money"
	"github.com/fatali-fataliyev/monthly_budget/internal/period"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func usagePercent(spent decimal.Decimal, limit *decimal.Decimal) int {
	if limit == nil || !limit.IsPositive() {
		return 0
	}
	return int(spent.Mul(hundred).Div(*limit).IntPart())
}

// Evaluate compares what was spent in a period against its limit.
func (bt *BudgetTracker) Evaluate(ctx context.Context, userId string, p period.Period) (BudgetStatus, error) {
	total, err := bt.SumExpenses(ctx, userId, p)
	if err != nil {
		return BudgetStatus{}, err
	}

	limit, err := bt.GetLimitByPeriod(ctx, userId, p)
	if err != nil {
		return BudgetStatus{}, err
	}

	status := BudgetStatus{
		Period:        p,
		TotalExpenses: total,
		Status:        StatusNoLimit,
	}
	if limit == nil {
		return status, nil
	}

	limitAmount := limit.Value
	remaining := limitAmount.Sub(total)

	status.LimitAmount = &limitAmount
	status.Remaining = &remaining
	status.UsagePercent = usagePercent(total, &limitAmount)
	if remaining.IsNegative() {
		status.Status = StatusOverLimit
	} else {
		status.Status = StatusWithinLimit
	}
	return status, nil
}

// EvaluateByCategory lists every default category, spent or not, followed by
// custom labels found on the period's expenses in alphabetical order.
func (bt *BudgetTracker) EvaluateByCategory(ctx context.Context, userId string, p period.Period) (CategoryBreakdown, error) {
	if err := p.Validate(); err != nil {
		return CategoryBreakdown{}, err
	}

	sums, err := bt.storage.SumExpensesByCategory(ctx, userId, p)
	if err != nil {
		return CategoryBreakdown{}, fmt.Errorf("failed to sum expenses by category of %s: %w", p, err)
	}

	limit, err := bt.GetLimitByPeriod(ctx, userId, p)
	if err != nil {
		return CategoryBreakdown{}, err
	}

	var limitAmount *decimal.Decimal
	if limit != nil {
		value := limit.Value
		limitAmount = &value
	}

	known := make(map[string]int64, len(defaultCategories))
	custom := make(map[string]int64)
	for label, cents := range sums {
		label = normalizeCategory(label)
		if _, ok := canonicalCategory(label); ok {
			known[label] += cents
			continue
		}
		custom[label] += cents
	}

	breakdown := CategoryBreakdown{
		Period:      p,
		LimitAmount: limitAmount,
		Categories:  make([]CategoryProgress, 0, len(defaultCategories)+len(custom)),
	}

	for _, c := range defaultCategories {
		spent, err := money.ToDecimal(known[c.Label])
		if err != nil {
			return CategoryBreakdown{}, err
		}
		breakdown.Categories = append(breakdown.Categories, CategoryProgress{
			Label:        c.Label,
			Icon:         c.Icon,
			Spent:        spent,
			LimitAmount:  limitAmount,
			UsagePercent: usagePercent(spent, limitAmount),
		})
	}

	customLabels := make([]string, 0, len(custom))
	for label := range custom {
		customLabels = append(customLabels, label)
	}
	sort.Strings(customLabels)

	for _, label := range customLabels {
		spent, err := money.ToDecimal(custom[label])
		if err != nil {
			return CategoryBreakdown{}, err
		}
		breakdown.Categories = append(breakdown.Categories, CategoryProgress{
			Label:        label,
			Spent:        spent,
			LimitAmount:  limitAmount,
			UsagePercent: usagePercent(spent, limitAmount),
			IsCustom:     true,
		})
	}

	return breakdown, nil
}
