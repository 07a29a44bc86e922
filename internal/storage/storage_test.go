package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
	"github.com/fatali-fataliyev/monthly_budget/internal/auth"
	"github.com/fatali-fataliyev/monthly_budget/internal/budget"
	"github.com/fatali-fataliyev/monthly_budget/internal/period"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2025, time.July, 10, 12, 0, 0, 0, time.UTC)

type backend struct {
	store  budget.Storage
	userID string
}

// backends returns a fresh store of every kind, each already holding one user.
func backends(t *testing.T) map[string]backend {
	t.Helper()

	db, err := InitSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	stores := map[string]budget.Storage{
		"memory": NewInMemoryStorage(),
		"sqlite": NewSQLiteStorage(db),
	}

	result := make(map[string]backend, len(stores))
	for name, store := range stores {
		user := auth.User{
			ID:             uuid.New().String(),
			Name:           "John Doe",
			Email:          "john@example.com",
			PasswordHashed: "hash",
			BirthDate:      time.Date(1990, time.May, 1, 0, 0, 0, 0, time.UTC),
			CreatedAt:      createdAt,
		}
		require.NoError(t, store.SaveUser(context.Background(), user))
		result[name] = backend{store: store, userID: user.ID}
	}
	return result
}

func newExpense(userID string, value string, p period.Period, category string) budget.Expense {
	return budget.Expense{
		ID:          uuid.New().String(),
		Description: "Mercado",
		Value:       decimal.RequireFromString(value),
		Period:      p,
		Category:    category,
		CreatedBy:   userID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func newLimit(userID string, value string, p period.Period) budget.MonthlyLimit {
	return budget.MonthlyLimit{
		ID:        uuid.New().String(),
		Value:     decimal.RequireFromString(value),
		Period:    p,
		CreatedBy: userID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestUserStorage(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			taken, err := b.store.IsEmailTaken(ctx, "john@example.com")
			require.NoError(t, err)
			require.True(t, taken)

			taken, err = b.store.IsEmailTaken(ctx, "jane@example.com")
			require.NoError(t, err)
			require.False(t, taken)

			user, err := b.store.GetUserByEmail(ctx, "john@example.com")
			require.NoError(t, err)
			require.Equal(t, b.userID, user.ID)
			require.Equal(t, "John Doe", user.Name)

			_, err = b.store.GetUserById(ctx, "missing")
			require.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

			err = b.store.SaveUser(ctx, auth.User{
				ID:        uuid.New().String(),
				Name:      "Other",
				Email:     "john@example.com",
				BirthDate: createdAt,
				CreatedAt: createdAt,
			})
			require.True(t, appErrors.HasCode(err, appErrors.ErrConflict), "got: %v", err)
		})
	}
}

func TestSessionStorage(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			session := auth.Session{
				ID:        uuid.New().String(),
				Token:     "token-1",
				CreatedAt: createdAt,
				ExpireAt:  createdAt.Add(time.Hour),
				UserID:    b.userID,
			}
			require.NoError(t, b.store.SaveSession(ctx, session))

			userID, err := b.store.CheckSession(ctx, "token-1", createdAt.Add(time.Minute))
			require.NoError(t, err)
			require.Equal(t, b.userID, userID)

			_, err = b.store.CheckSession(ctx, "token-1", createdAt.Add(2*time.Hour))
			require.True(t, appErrors.HasCode(err, appErrors.ErrAuth))
			require.Equal(t, "Your session expired, please login again.", appErrors.MessageOf(err))

			require.NoError(t, b.store.LogoutUser(ctx, b.userID, "token-1"))
			_, err = b.store.CheckSession(ctx, "token-1", createdAt.Add(time.Minute))
			require.True(t, appErrors.HasCode(err, appErrors.ErrAuth))
		})
	}
}

func TestExpenseStorage(t *testing.T) {
	july := period.Period{Year: 2025, Month: time.July}
	august := period.Period{Year: 2025, Month: time.August}

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			total, err := b.store.SumExpenses(ctx, b.userID, july)
			require.NoError(t, err)
			require.Zero(t, total)

			first := newExpense(b.userID, "120.00", july, "Alimentação")
			second := newExpense(b.userID, "90.50", july, "Pets")
			third := newExpense(b.userID, "0.01", august, "Geral")
			for _, e := range []budget.Expense{first, second, third} {
				require.NoError(t, b.store.SaveExpense(ctx, e))
			}

			total, err = b.store.SumExpenses(ctx, b.userID, july)
			require.NoError(t, err)
			require.Equal(t, int64(21050), total)

			sums, err := b.store.SumExpensesByCategory(ctx, b.userID, july)
			require.NoError(t, err)
			require.Equal(t, map[string]int64{"Alimentação": 12000, "Pets": 9050}, sums)

			got, err := b.store.GetExpenseById(ctx, b.userID, second.ID)
			require.NoError(t, err)
			require.True(t, got.Value.Equal(decimal.RequireFromString("90.5")))
			require.Equal(t, july, got.Period)

			_, err = b.store.GetExpenseById(ctx, "someone-else", second.ID)
			require.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

			byPeriod, err := b.store.GetExpensesByPeriod(ctx, b.userID, july)
			require.NoError(t, err)
			require.Len(t, byPeriod, 2)

			all, err := b.store.GetExpenses(ctx, b.userID)
			require.NoError(t, err)
			require.Len(t, all, 3)
			require.Equal(t, third.ID, all[0].ID, "newest period comes first")

			second.Value = decimal.RequireFromString("10.00")
			second.Period = august
			require.NoError(t, b.store.UpdateExpense(ctx, second))

			total, err = b.store.SumExpenses(ctx, b.userID, august)
			require.NoError(t, err)
			require.Equal(t, int64(1001), total)

			require.NoError(t, b.store.DeleteExpense(ctx, b.userID, first.ID))
			err = b.store.DeleteExpense(ctx, b.userID, first.ID)
			require.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

			total, err = b.store.SumExpenses(ctx, b.userID, july)
			require.NoError(t, err)
			require.Zero(t, total)
		})
	}
}

func TestCategoryLabelsAreCaseSensitive(t *testing.T) {
	july := period.Period{Year: 2025, Month: time.July}

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, e := range []budget.Expense{
				newExpense(b.userID, "10.00", july, "Uber"),
				newExpense(b.userID, "2.50", july, "uber"),
				newExpense(b.userID, "1.00", july, "Uber"),
			} {
				require.NoError(t, b.store.SaveExpense(ctx, e))
			}

			sums, err := b.store.SumExpensesByCategory(ctx, b.userID, july)
			require.NoError(t, err)
			require.Equal(t, map[string]int64{"Uber": 1100, "uber": 250}, sums)
		})
	}
}

// The mysql backend is not exercised here, so its schema is checked to group
// categories byte-wise like the other backends.
func TestMySQLCategoryCollation(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/mysql/000003_create_expense.up.sql")
	require.NoError(t, err)

	var column string
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "category ") {
			column = line
		}
	}
	require.Contains(t, column, "COLLATE utf8mb4_bin")
}

func TestLimitStorage(t *testing.T) {
	july := period.Period{Year: 2025, Month: time.July}
	august := period.Period{Year: 2025, Month: time.August}

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			missing, err := b.store.GetLimitByPeriod(ctx, b.userID, july)
			require.NoError(t, err)
			require.Nil(t, missing)

			julyLimit := newLimit(b.userID, "500.00", july)
			require.NoError(t, b.store.SaveLimit(ctx, julyLimit))

			err = b.store.SaveLimit(ctx, newLimit(b.userID, "700.00", july))
			require.True(t, appErrors.HasCode(err, appErrors.ErrDuplicateLimit), "got: %v", err)

			augustLimit := newLimit(b.userID, "300.00", august)
			require.NoError(t, b.store.SaveLimit(ctx, augustLimit))

			augustLimit.Period = july
			err = b.store.UpdateLimit(ctx, augustLimit)
			require.True(t, appErrors.HasCode(err, appErrors.ErrDuplicateLimit), "got: %v", err)

			julyLimit.Value = decimal.RequireFromString("650.25")
			require.NoError(t, b.store.UpdateLimit(ctx, julyLimit))

			found, err := b.store.GetLimitByPeriod(ctx, b.userID, july)
			require.NoError(t, err)
			require.NotNil(t, found)
			require.Equal(t, julyLimit.ID, found.ID)
			require.True(t, found.Value.Equal(decimal.RequireFromString("650.25")))

			limits, err := b.store.GetLimits(ctx, b.userID)
			require.NoError(t, err)
			require.Len(t, limits, 2)
			require.Equal(t, august, limits[0].Period)

			require.NoError(t, b.store.DeleteLimit(ctx, b.userID, julyLimit.ID))
			_, err = b.store.GetLimitById(ctx, b.userID, julyLimit.ID)
			require.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
			err = b.store.DeleteLimit(ctx, b.userID, julyLimit.ID)
			require.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
		})
	}
}

func TestWithParam(t *testing.T) {
	require.Equal(t, "a.db?x=1", withParam("a.db", "x=1"))
	require.Equal(t, "a.db?x=1&y=2", withParam("a.db?x=1", "y=2"))
}
