package budget

import (
	"context"
	"fmt"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
	"github.com/fatali-fataliyev/monthly_budget/internal/period"
	"github.com/google/uuid"
)

func duplicateLimitError(p period.Period) error {
	return appErrors.New(appErrors.ErrDuplicateLimit, "A limit for %s already exists.", p.String())
}

func (req LimitRequest) validate() error {
	if err := validateAmount(req.Value, "Limit value"); err != nil {
		return err
	}
	return req.Period.Validate()
}

// SaveLimit creates the limit of a period. The existence check gives a clear
// error; the storage unique index on (user, year, month) is what actually
// guarantees a single limit when two requests race.
func (bt *BudgetTracker) SaveLimit(ctx context.Context, userId string, req LimitRequest) (MonthlyLimit, error) {
	if err := req.validate(); err != nil {
		return MonthlyLimit{}, err
	}
	if err := period.EnsureMutable(req.Period, bt.Today(), "limits"); err != nil {
		return MonthlyLimit{}, err
	}

	existing, err := bt.storage.GetLimitByPeriod(ctx, userId, req.Period)
	if err != nil {
		return MonthlyLimit{}, fmt.Errorf("failed to check limit existence: %w", err)
	}
	if existing != nil {
		return MonthlyLimit{}, duplicateLimitError(req.Period)
	}

	now := bt.Today()
	limit := MonthlyLimit{
		ID:        uuid.New().String(),
		Value:     req.Value,
		Period:    req.Period,
		CreatedBy: userId,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := bt.storage.SaveLimit(ctx, limit); err != nil {
		return MonthlyLimit{}, fmt.Errorf("failed to save limit: %w", err)
	}
	return limit, nil
}

// UpdateLimit changes the sent fields of a limit; a missing period keeps the
// limit in its month.
func (bt *BudgetTracker) UpdateLimit(ctx context.Context, userId string, limitId string, update LimitUpdate) (MonthlyLimit, error) {
	limit, err := bt.storage.GetLimitById(ctx, userId, limitId)
	if err != nil {
		return MonthlyLimit{}, err
	}

	today := bt.Today()
	if err := period.EnsureMutable(limit.Period, today, "limits"); err != nil {
		return MonthlyLimit{}, err
	}

	req := LimitRequest{Value: limit.Value, Period: limit.Period}
	if update.Value != nil {
		req.Value = *update.Value
	}
	if update.Period != nil {
		req.Period = *update.Period
	}
	if err := req.validate(); err != nil {
		return MonthlyLimit{}, err
	}
	if err := period.EnsureMutable(req.Period, today, "limits"); err != nil {
		return MonthlyLimit{}, err
	}

	if req.Period != limit.Period {
		other, err := bt.storage.GetLimitByPeriod(ctx, userId, req.Period)
		if err != nil {
			return MonthlyLimit{}, fmt.Errorf("failed to check limit existence: %w", err)
		}
		if other != nil && other.ID != limit.ID {
			return MonthlyLimit{}, duplicateLimitError(req.Period)
		}
	}

	limit.Value = req.Value
	limit.Period = req.Period
	limit.UpdatedAt = today

	if err := bt.storage.UpdateLimit(ctx, limit); err != nil {
		return MonthlyLimit{}, fmt.Errorf("failed to update limit: %w", err)
	}
	return limit, nil
}

func (bt *BudgetTracker) DeleteLimit(ctx context.Context, userId string, limitId string) (MonthlyLimit, error) {
	limit, err := bt.storage.GetLimitById(ctx, userId, limitId)
	if err != nil {
		return MonthlyLimit{}, err
	}
	if err := period.EnsureMutable(limit.Period, bt.Today(), "limits"); err != nil {
		return MonthlyLimit{}, err
	}

	if err := bt.storage.DeleteLimit(ctx, userId, limitId); err != nil {
		return MonthlyLimit{}, fmt.Errorf("failed to delete limit: %w", err)
	}
	return limit, nil
}

// GetLimitByPeriod returns nil when the period has no limit.
func (bt *BudgetTracker) GetLimitByPeriod(ctx context.Context, userId string, p period.Period) (*MonthlyLimit, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	limit, err := bt.storage.GetLimitByPeriod(ctx, userId, p)
	if err != nil {
		return nil, fmt.Errorf("failed to get limit of %s: %w", p, err)
	}
	return limit, nil
}

func (bt *BudgetTracker) ListLimits(ctx context.Context, userId string) ([]MonthlyLimit, error) {
	limits, err := bt.storage.GetLimits(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to get limits: %w", err)
	}
	return limits, nil
}
