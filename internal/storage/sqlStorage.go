package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
	"github.com/fatali-fataliyev/monthly_budget/internal/auth"
	"github.com/fatali-fataliyev/monthly_budget/internal/budget"
	"github.com/fatali-fataliyev/monthly_budget/internal/config"
	"github.com/fatali-fataliyev/monthly_budget/internal/contextutil"
	"github.com/fatali-fataliyev/monthly_budget/internal/period"
	"github.com/fatali-fataliyev/monthly_budget/logging"
	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	mysqlDuplicateEntry = 1062

	expenseColumns = "id, description, value_cents, month, year, category, icon, created_by, created_at, updated_at"
	limitColumns   = "id, value_cents, month, year, created_by, created_at, updated_at"
)

// SQLStorage serves both MySQL and SQLite, the queries are plain enough for
// both and only error classification differs.
type SQLStorage struct {
	db     *sql.DB
	driver string
}

var _ budget.Storage = (*SQLStorage)(nil)

func NewMySQLStorage(db *sql.DB) *SQLStorage {
	return &SQLStorage{db: db, driver: config.DriverMySQL}
}

func NewSQLiteStorage(db *sql.DB) *SQLStorage {
	return &SQLStorage{db: db, driver: config.DriverSQLite}
}

func (s *SQLStorage) GetStorageType() string {
	return s.driver
}

func (s *SQLStorage) isUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func internalError(ctx context.Context, where string, message string, err error) error {
	traceID := contextutil.TraceIDFromContext(ctx)
	logging.Logger.Errorf("[TraceID=%s] | failed in Storage.%s() function | Error: %v", traceID, where, err)
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrInternal,
		Message: message,
	}
}

// --- USERS --- //

func (s *SQLStorage) SaveUser(ctx context.Context, user auth.User) error {
	query := "INSERT INTO `user` (id, name, email, hashed_password, birth_date, created_at) VALUES (?, ?, ?, ?, ?, ?);"
	_, err := s.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.PasswordHashed, user.BirthDate, user.CreatedAt.UTC())
	if err != nil {
		if s.isUniqueViolation(err) {
			return appErrors.ErrorResponse{
				Code:    appErrors.ErrConflict,
				Message: "This email address is already registered.",
			}
		}
		return internalError(ctx, "SaveUser", "Registration failed, try again later.", err)
	}
	return nil
}

func (s *SQLStorage) getUser(ctx context.Context, where string, column string, value string) (auth.User, error) {
	query := "SELECT id, name, email, hashed_password, birth_date, created_at FROM `user` WHERE " + column + " = ?;"

	var user auth.User
	err := s.db.QueryRowContext(ctx, query, value).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHashed, &user.BirthDate, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, appErrors.ErrorResponse{
				Code:    appErrors.ErrNotFound,
				Message: "User not found.",
			}
		}
		return auth.User{}, internalError(ctx, where, "Failed to get user, try again later.", err)
	}
	return user, nil
}

func (s *SQLStorage) GetUserByEmail(ctx context.Context, email string) (auth.User, error) {
	return s.getUser(ctx, "GetUserByEmail", "email", email)
}

func (s *SQLStorage) GetUserById(ctx context.Context, userId string) (auth.User, error) {
	return s.getUser(ctx, "GetUserById", "id", userId)
}

func (s *SQLStorage) IsEmailTaken(ctx context.Context, email string) (bool, error) {
	query := "SELECT 1 FROM `user` WHERE email = ?;"

	var dummy int
	err := s.db.QueryRowContext(ctx, query, email).Scan(&dummy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, internalError(ctx, "IsEmailTaken", "Failed to check email availability, try again later.", err)
	}
	return true, nil
}

// --- SESSIONS --- //

func (s *SQLStorage) SaveSession(ctx context.Context, session auth.Session) error {
	query := "INSERT INTO session (id, token, created_at, expire_at, user_id) VALUES (?, ?, ?, ?, ?);"
	_, err := s.db.ExecContext(ctx, query, session.ID, session.Token, session.CreatedAt.UTC(), session.ExpireAt.UTC(), session.UserID)
	if err != nil {
		return internalError(ctx, "SaveSession", "Failed to create session, try again later.", err)
	}
	return nil
}

func (s *SQLStorage) CheckSession(ctx context.Context, token string, now time.Time) (string, error) {
	query := "SELECT user_id, expire_at FROM session WHERE token = ?;"

	var userID string
	var expireAt time.Time
	err := s.db.QueryRowContext(ctx, query, token).Scan(&userID, &expireAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.ErrorResponse{
				Code:    appErrors.ErrAuth,
				Message: "Session does not exist, please login.",
			}
		}
		return "", internalError(ctx, "CheckSession", "Failed to check session, please try again later.", err)
	}

	if !expireAt.After(now) {
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Your session expired, please login again.",
		}
	}
	return userID, nil
}

func (s *SQLStorage) LogoutUser(ctx context.Context, userId string, token string) error {
	query := "DELETE FROM session WHERE user_id = ? AND token = ?;"
	if _, err := s.db.ExecContext(ctx, query, userId, token); err != nil {
		return internalError(ctx, "LogoutUser", "Logout failed, try again later.", err)
	}
	return nil
}

// --- EXPENSES --- //

func expenseNotFound() error {
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrNotFound,
		Message: "The expense does not exist.",
	}
}

func (s *SQLStorage) SaveExpense(ctx context.Context, expense budget.Expense) error {
	row, err := expenseToDb(expense)
	if err != nil {
		return err
	}

	query := "INSERT INTO expense (" + expenseColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);"
	_, err = s.db.ExecContext(ctx, query, row.ID, row.Description, row.ValueCents, row.Month, row.Year, row.Category, row.Icon, row.CreatedBy, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return internalError(ctx, "SaveExpense", "Failed to save the expense, try again later.", err)
	}
	return nil
}

func (s *SQLStorage) UpdateExpense(ctx context.Context, expense budget.Expense) error {
	row, err := expenseToDb(expense)
	if err != nil {
		return err
	}

	query := "UPDATE expense SET description = ?, value_cents = ?, month = ?, year = ?, category = ?, icon = ?, updated_at = ? WHERE id = ? AND created_by = ?;"
	_, err = s.db.ExecContext(ctx, query, row.Description, row.ValueCents, row.Month, row.Year, row.Category, row.Icon, row.UpdatedAt, row.ID, row.CreatedBy)
	if err != nil {
		return internalError(ctx, "UpdateExpense", "Failed to update the expense, try again later.", err)
	}
	return nil
}

func (s *SQLStorage) DeleteExpense(ctx context.Context, userId string, expenseId string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expense WHERE id = ? AND created_by = ?;", expenseId, userId)
	if err != nil {
		return internalError(ctx, "DeleteExpense", "Failed to delete the expense, try again later.", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return internalError(ctx, "DeleteExpense", "Failed to delete the expense, try again later.", err)
	}
	if rowsAffected == 0 {
		return expenseNotFound()
	}
	return nil
}

func (s *SQLStorage) GetExpenseById(ctx context.Context, userId string, expenseId string) (budget.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expense WHERE id = ? AND created_by = ?;"

	var row dbExpense
	err := s.db.QueryRowContext(ctx, query, expenseId, userId).Scan(&row.ID, &row.Description, &row.ValueCents, &row.Month, &row.Year, &row.Category, &row.Icon, &row.CreatedBy, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return budget.Expense{}, expenseNotFound()
		}
		return budget.Expense{}, internalError(ctx, "GetExpenseById", "Failed to get the expense, try again later.", err)
	}
	return row.toBudget()
}

func (s *SQLStorage) processExpenseRows(ctx context.Context, rows *sql.Rows) ([]budget.Expense, error) {
	defer rows.Close()

	expenses := []budget.Expense{}
	for rows.Next() {
		var row dbExpense
		err := rows.Scan(&row.ID, &row.Description, &row.ValueCents, &row.Month, &row.Year, &row.Category, &row.Icon, &row.CreatedBy, &row.CreatedAt, &row.UpdatedAt)
		if err != nil {
			return nil, internalError(ctx, "processExpenseRows", "Failed to get expenses, try again later.", err)
		}
		expense, err := row.toBudget()
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, internalError(ctx, "processExpenseRows", "Failed to get expenses, try again later.", err)
	}
	return expenses, nil
}

func (s *SQLStorage) GetExpenses(ctx context.Context, userId string) ([]budget.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expense WHERE created_by = ? ORDER BY year DESC, month DESC, created_at DESC;"
	rows, err := s.db.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, internalError(ctx, "GetExpenses", "Failed to get expenses, try again later.", err)
	}
	return s.processExpenseRows(ctx, rows)
}

func (s *SQLStorage) GetExpensesByPeriod(ctx context.Context, userId string, p period.Period) ([]budget.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expense WHERE created_by = ? AND year = ? AND month = ? ORDER BY created_at DESC;"
	rows, err := s.db.QueryContext(ctx, query, userId, p.Year, int(p.Month))
	if err != nil {
		return nil, internalError(ctx, "GetExpensesByPeriod", "Failed to get expenses, try again later.", err)
	}
	return s.processExpenseRows(ctx, rows)
}

func (s *SQLStorage) SumExpenses(ctx context.Context, userId string, p period.Period) (int64, error) {
	query := "SELECT COALESCE(SUM(value_cents), 0) FROM expense WHERE created_by = ? AND year = ? AND month = ?;"

	var total int64
	if err := s.db.QueryRowContext(ctx, query, userId, p.Year, int(p.Month)).Scan(&total); err != nil {
		return 0, internalError(ctx, "SumExpenses", "Failed to calculate total, try again later.", err)
	}
	return total, nil
}

func (s *SQLStorage) SumExpensesByCategory(ctx context.Context, userId string, p period.Period) (map[string]int64, error) {
	query := "SELECT category, COALESCE(SUM(value_cents), 0) FROM expense WHERE created_by = ? AND year = ? AND month = ? GROUP BY category;"

	rows, err := s.db.QueryContext(ctx, query, userId, p.Year, int(p.Month))
	if err != nil {
		return nil, internalError(ctx, "SumExpensesByCategory", "Failed to calculate category totals, try again later.", err)
	}
	defer rows.Close()

	sums := make(map[string]int64)
	for rows.Next() {
		var category string
		var total int64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, internalError(ctx, "SumExpensesByCategory", "Failed to calculate category totals, try again later.", err)
		}
		sums[category] += total
	}
	if err := rows.Err(); err != nil {
		return nil, internalError(ctx, "SumExpensesByCategory", "Failed to calculate category totals, try again later.", err)
	}
	return sums, nil
}

// --- LIMITS --- //

func limitNotFound() error {
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrNotFound,
		Message: "The limit does not exist.",
	}
}

func duplicateLimit() error {
	return appErrors.ErrorResponse{
		Code:    appErrors.ErrDuplicateLimit,
		Message: "A limit for this month already exists.",
	}
}

func (s *SQLStorage) SaveLimit(ctx context.Context, limit budget.MonthlyLimit) error {
	row, err := limitToDb(limit)
	if err != nil {
		return err
	}

	query := "INSERT INTO monthly_limit (" + limitColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?);"
	_, err = s.db.ExecContext(ctx, query, row.ID, row.ValueCents, row.Month, row.Year, row.CreatedBy, row.CreatedAt, row.UpdatedAt)
	if err != nil {
		if s.isUniqueViolation(err) {
			return duplicateLimit()
		}
		return internalError(ctx, "SaveLimit", "Failed to save the limit, try again later.", err)
	}
	return nil
}

func (s *SQLStorage) UpdateLimit(ctx context.Context, limit budget.MonthlyLimit) error {
	row, err := limitToDb(limit)
	if err != nil {
		return err
	}

	query := "UPDATE monthly_limit SET value_cents = ?, month = ?, year = ?, updated_at = ? WHERE id = ? AND created_by = ?;"
	_, err = s.db.ExecContext(ctx, query, row.ValueCents, row.Month, row.Year, row.UpdatedAt, row.ID, row.CreatedBy)
	if err != nil {
		if s.isUniqueViolation(err) {
			return duplicateLimit()
		}
		return internalError(ctx, "UpdateLimit", "Failed to update the limit, try again later.", err)
	}
	return nil
}

func (s *SQLStorage) DeleteLimit(ctx context.Context, userId string, limitId string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM monthly_limit WHERE id = ? AND created_by = ?;", limitId, userId)
	if err != nil {
		return internalError(ctx, "DeleteLimit", "Failed to delete the limit, try again later.", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return internalError(ctx, "DeleteLimit", "Failed to delete the limit, try again later.", err)
	}
	if rowsAffected == 0 {
		return limitNotFound()
	}
	return nil
}

func (s *SQLStorage) scanLimit(row *sql.Row) (dbLimit, error) {
	var l dbLimit
	err := row.Scan(&l.ID, &l.ValueCents, &l.Month, &l.Year, &l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (s *SQLStorage) GetLimitById(ctx context.Context, userId string, limitId string) (budget.MonthlyLimit, error) {
	query := "SELECT " + limitColumns + " FROM monthly_limit WHERE id = ? AND created_by = ?;"

	row, err := s.scanLimit(s.db.QueryRowContext(ctx, query, limitId, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return budget.MonthlyLimit{}, limitNotFound()
		}
		return budget.MonthlyLimit{}, internalError(ctx, "GetLimitById", "Failed to get the limit, try again later.", err)
	}
	return row.toBudget()
}

func (s *SQLStorage) GetLimitByPeriod(ctx context.Context, userId string, p period.Period) (*budget.MonthlyLimit, error) {
	query := "SELECT " + limitColumns + " FROM monthly_limit WHERE created_by = ? AND year = ? AND month = ?;"

	row, err := s.scanLimit(s.db.QueryRowContext(ctx, query, userId, p.Year, int(p.Month)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, internalError(ctx, "GetLimitByPeriod", "Failed to get the limit, try again later.", err)
	}

	limit, err := row.toBudget()
	if err != nil {
		return nil, err
	}
	return &limit, nil
}

func (s *SQLStorage) GetLimits(ctx context.Context, userId string) ([]budget.MonthlyLimit, error) {
	query := "SELECT " + limitColumns + " FROM monthly_limit WHERE created_by = ? ORDER BY year DESC, month DESC;"

	rows, err := s.db.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, internalError(ctx, "GetLimits", "Failed to get limits, try again later.", err)
	}
	defer rows.Close()

	limits := []budget.MonthlyLimit{}
	for rows.Next() {
		var row dbLimit
		if err := rows.Scan(&row.ID, &row.ValueCents, &row.Month, &row.Year, &row.CreatedBy, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, internalError(ctx, "GetLimits", "Failed to get limits, try again later.", err)
		}
		limit, err := row.toBudget()
		if err != nil {
			return nil, err
		}
		limits = append(limits, limit)
	}
	if err := rows.Err(); err != nil {
		return nil, internalError(ctx, "GetLimits", "Failed to get limits, try again later.", err)
	}
	return limits, nil
}
