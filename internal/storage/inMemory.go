package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
	"github.com/fatali-fataliyev/monthly_budget/internal/auth"
	"github.com/fatali-fataliyev/monthly_budget/internal/budget"
	"github.com/fatali-fataliyev/monthly_budget/internal/config"
	"github.com/fatali-fataliyev/monthly_budget/internal/period"
)

// InMemoryStorage keeps everything in process memory. It is used by tests and
// by the "memory" driver for local runs; amounts are kept as cents exactly
// like the SQL tables do.
type InMemoryStorage struct {
	mu       sync.RWMutex
	users    map[string]auth.User
	sessions map[string]auth.Session
	expenses map[string]dbExpense
	limits   map[string]dbLimit
}

var _ budget.Storage = (*InMemoryStorage)(nil)

func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{
		users:    make(map[string]auth.User),
		sessions: make(map[string]auth.Session),
		expenses: make(map[string]dbExpense),
		limits:   make(map[string]dbLimit),
	}
}

func (inMem *InMemoryStorage) GetStorageType() string {
	return config.DriverMemory
}

// --- USERS --- //

func (inMem *InMemoryStorage) SaveUser(ctx context.Context, user auth.User) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	for _, u := range inMem.users {
		if strings.EqualFold(u.Email, user.Email) {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrConflict,
				Message: "This email address is already registered.",
			}
		}
	}
	inMem.users[user.ID] = user
	return nil
}

func (inMem *InMemoryStorage) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	for _, u := range inMem.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return auth.User{}, appErrors.ErrorResponse{
		Code:    appErrors.ErrNotFound,
		Message: "User not found.",
	}
}

func (inMem *InMemoryStorage) GetUserById(ctx context.Context, userId string) (auth.User, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	u, ok := inMem.users[userId]
	if !ok {
		return auth.User{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrNotFound,
			Message: "User not found.",
		}
	}
	return u, nil
}

func (inMem *InMemoryStorage) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := inMem.GetUserByEmail(ctx, email)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// --- SESSIONS --- //

func (inMem *InMemoryStorage) SaveSession(ctx context.Context, session auth.Session) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	inMem.sessions[session.Token] = session
	return nil
}

func (inMem *InMemoryStorage) CheckSession(ctx context.Context, token string, now time.Time) (string, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	session, ok := inMem.sessions[strings.TrimSpace(token)]
	if !ok {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Session does not exist, please login.",
		}
	}
	if !session.ExpireAt.After(now) {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Your session expired, please login again.",
		}
	}
	return session.UserID, nil
}

func (inMem *InMemoryStorage) LogoutUser(ctx context.Context, userId string, token string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	if session, ok := inMem.sessions[token]; ok && session.UserID == userId {
		delete(inMem.sessions, token)
	}
	return nil
}

// --- EXPENSES --- //

func (inMem *InMemoryStorage) SaveExpense(ctx context.Context, expense budget.Expense) error {
	row, err := expenseToDb(expense)
	if err != nil {
		return err
	}

	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	inMem.expenses[row.ID] = row
	return nil
}

func (inMem *InMemoryStorage) UpdateExpense(ctx context.Context, expense budget.Expense) error {
	row, err := expenseToDb(expense)
	if err != nil {
		return err
	}

	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	stored, ok := inMem.expenses[row.ID]
	if !ok || stored.CreatedBy != row.CreatedBy {
		return expenseNotFound()
	}
	row.CreatedAt = stored.CreatedAt
	inMem.expenses[row.ID] = row
	return nil
}

func (inMem *InMemoryStorage) DeleteExpense(ctx context.Context, userId string, expenseId string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	stored, ok := inMem.expenses[expenseId]
	if !ok || stored.CreatedBy != userId {
		return expenseNotFound()
	}
	delete(inMem.expenses, expenseId)
	return nil
}

func (inMem *InMemoryStorage) GetExpenseById(ctx context.Context, userId string, expenseId string) (budget.Expense, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	stored, ok := inMem.expenses[expenseId]
	if !ok || stored.CreatedBy != userId {
		return budget.Expense{}, expenseNotFound()
	}
	return stored.toBudget()
}

// filterExpenses returns the matching rows newest period first, then newest
// creation first, the same order the SQL backends use.
func (inMem *InMemoryStorage) filterExpenses(match func(dbExpense) bool) ([]budget.Expense, error) {
	inMem.mu.RLock()
	rows := make([]dbExpense, 0)
	for _, row := range inMem.expenses {
		if match(row) {
			rows = append(rows, row)
		}
	}
	inMem.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year > rows[j].Year
		}
		if rows[i].Month != rows[j].Month {
			return rows[i].Month > rows[j].Month
		}
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})

	expenses := make([]budget.Expense, 0, len(rows))
	for _, row := range rows {
		expense, err := row.toBudget()
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

func (inMem *InMemoryStorage) GetExpenses(ctx context.Context, userId string) ([]budget.Expense, error) {
	return inMem.filterExpenses(func(row dbExpense) bool {
		return row.CreatedBy == userId
	})
}

func inPeriod(year int, month int, p period.Period) bool {
	return year == p.Year && month == int(p.Month)
}

func (inMem *InMemoryStorage) GetExpensesByPeriod(ctx context.Context, userId string, p period.Period) ([]budget.Expense, error) {
	return inMem.filterExpenses(func(row dbExpense) bool {
		return row.CreatedBy == userId && inPeriod(row.Year, row.Month, p)
	})
}

func (inMem *InMemoryStorage) SumExpenses(ctx context.Context, userId string, p period.Period) (int64, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	var total int64
	for _, row := range inMem.expenses {
		if row.CreatedBy == userId && inPeriod(row.Year, row.Month, p) {
			total += row.ValueCents
		}
	}
	return total, nil
}

func (inMem *InMemoryStorage) SumExpensesByCategory(ctx context.Context, userId string, p period.Period) (map[string]int64, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	sums := make(map[string]int64)
	for _, row := range inMem.expenses {
		if row.CreatedBy == userId && inPeriod(row.Year, row.Month, p) {
			sums[row.Category] += row.ValueCents
		}
	}
	return sums, nil
}

// --- LIMITS --- //

// periodTaken reports whether another limit of the user already covers the
// period. Callers hold the lock.
func (inMem *InMemoryStorage) periodTaken(row dbLimit) bool {
	for id, other := range inMem.limits {
		if id != row.ID && other.CreatedBy == row.CreatedBy && other.Year == row.Year && other.Month == row.Month {
			return true
		}
	}
	return false
}

func (inMem *InMemoryStorage) SaveLimit(ctx context.Context, limit budget.MonthlyLimit) error {
	row, err := limitToDb(limit)
	if err != nil {
		return err
	}

	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	if inMem.periodTaken(row) {
		return duplicateLimit()
	}
	inMem.limits[row.ID] = row
	return nil
}

func (inMem *InMemoryStorage) UpdateLimit(ctx context.Context, limit budget.MonthlyLimit) error {
	row, err := limitToDb(limit)
	if err != nil {
		return err
	}

	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	stored, ok := inMem.limits[row.ID]
	if !ok || stored.CreatedBy != row.CreatedBy {
		return limitNotFound()
	}
	if inMem.periodTaken(row) {
		return duplicateLimit()
	}
	row.CreatedAt = stored.CreatedAt
	inMem.limits[row.ID] = row
	return nil
}

func (inMem *InMemoryStorage) DeleteLimit(ctx context.Context, userId string, limitId string) error {
	inMem.mu.Lock()
	defer inMem.mu.Unlock()

	stored, ok := inMem.limits[limitId]
	if !ok || stored.CreatedBy != userId {
		return limitNotFound()
	}
	delete(inMem.limits, limitId)
	return nil
}

func (inMem *InMemoryStorage) GetLimitById(ctx context.Context, userId string, limitId string) (budget.MonthlyLimit, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	stored, ok := inMem.limits[limitId]
	if !ok || stored.CreatedBy != userId {
		return budget.MonthlyLimit{}, limitNotFound()
	}
	return stored.toBudget()
}

func (inMem *InMemoryStorage) GetLimitByPeriod(ctx context.Context, userId string, p period.Period) (*budget.MonthlyLimit, error) {
	inMem.mu.RLock()
	defer inMem.mu.RUnlock()

	for _, row := range inMem.limits {
		if row.CreatedBy == userId && inPeriod(row.Year, row.Month, p) {
			limit, err := row.toBudget()
			if err != nil {
				return nil, err
			}
			return &limit, nil
		}
	}
	return nil, nil
}

func (inMem *InMemoryStorage) GetLimits(ctx context.Context, userId string) ([]budget.MonthlyLimit, error) {
	inMem.mu.RLock()
	rows := make([]dbLimit, 0)
	for _, row := range inMem.limits {
		if row.CreatedBy == userId {
			rows = append(rows, row)
		}
	}
	inMem.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year > rows[j].Year
		}
		return rows[i].Month > rows[j].Month
	})

	limits := make([]budget.MonthlyLimit, 0, len(rows))
	for _, row := range rows {
		limit, err := row.toBudget()
		if err != nil {
			return nil, err
		}
		limits = append(limits, limit)
	}
	return limits, nil
}
