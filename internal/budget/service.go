package budget

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
	"github.com/fatali-fataliyev/monthly_budget/internal/auth"
	"github.com/fatali-fataliyev/monthly_budget/internal/contextutil"
	"github.com/fatali-fataliyev/monthly_budget/internal/period"
	"github.com/fatali-fataliyev/monthly_budget/logging"
	"github.com/google/uuid"
)

type BudgetTracker struct {
	storage     Storage
	tokens      *auth.TokenManager
	now         func() time.Time
	StorageType string
}

type Option func(bt *BudgetTracker)

// WithClock replaces time.Now, every period decision is taken against it.
func WithClock(now func() time.Time) Option {
	return func(bt *BudgetTracker) {
		bt.now = now
	}
}

func NewBudgetTracker(s Storage, tokens *auth.TokenManager, opts ...Option) *BudgetTracker {
	bt := &BudgetTracker{
		storage:     s,
		tokens:      tokens,
		now:         time.Now,
		StorageType: s.GetStorageType(),
	}
	for _, opt := range opts {
		opt(bt)
	}
	return bt
}

// Storage is implemented by the memory, MySQL and SQLite backends. Lookups by
// id are always scoped to the owner; a foreign id is reported as NOT FOUND.
type Storage interface {
	SaveUser(ctx context.Context, user auth.User) error
	GetUserByEmail(ctx context.Context, email string) (auth.User, error)
	GetUserById(ctx context.Context, userId string) (auth.User, error)
	IsEmailTaken(ctx context.Context, email string) (bool, error)

	SaveSession(ctx context.Context, session auth.Session) error
	CheckSession(ctx context.Context, token string, now time.Time) (userId string, err error)
	LogoutUser(ctx context.Context, userId string, token string) error

	SaveExpense(ctx context.Context, expense Expense) error
	UpdateExpense(ctx context.Context, expense Expense) error
	DeleteExpense(ctx context.Context, userId string, expenseId string) error
	GetExpenseById(ctx context.Context, userId string, expenseId string) (Expense, error)
	GetExpenses(ctx context.Context, userId string) ([]Expense, error)
	GetExpensesByPeriod(ctx context.Context, userId string, p period.Period) ([]Expense, error)
	SumExpenses(ctx context.Context, userId string, p period.Period) (int64, error)
	SumExpensesByCategory(ctx context.Context, userId string, p period.Period) (map[string]int64, error)

	SaveLimit(ctx context.Context, limit MonthlyLimit) error
	UpdateLimit(ctx context.Context, limit MonthlyLimit) error
	DeleteLimit(ctx context.Context, userId string, limitId string) error
	GetLimitById(ctx context.Context, userId string, limitId string) (MonthlyLimit, error)
	GetLimitByPeriod(ctx context.Context, userId string, p period.Period) (*MonthlyLimit, error)
	GetLimits(ctx context.Context, userId string) ([]MonthlyLimit, error)

	GetStorageType() string
}

// Today is the tracker's notion of now.
func (bt *BudgetTracker) Today() time.Time {
	return bt.now().UTC()
}

func (bt *BudgetTracker) SaveUser(ctx context.Context, newUser auth.NewUser) (string, auth.User, error) {
	newUser.Email = strings.ToLower(strings.TrimSpace(newUser.Email))

	birthDate, err := newUser.ValidateUserFields(bt.Today())
	if err != nil {
		return "", auth.User{}, err
	}

	isEmailTaken, err := bt.storage.IsEmailTaken(ctx, newUser.Email)
	if err != nil {
		return "", auth.User{}, fmt.Errorf("failed to check email availability: %w", err)
	}
	if isEmailTaken {
		return "", auth.User{}, appErrors.ErrorResponse{
			Code:    appErrors.ErrConflict,
			Message: fmt.Sprintf("This '%s' email address is already registered.", newUser.Email),
		}
	}

	hashedPassword, err := auth.HashPassword(newUser.PasswordPlain)
	if err != nil {
		return "", auth.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := auth.User{
		ID:             uuid.New().String(),
		Name:           CapitalizeFullName(strings.TrimSpace(newUser.Name)),
		Email:          newUser.Email,
		PasswordHashed: hashedPassword,
		BirthDate:      birthDate,
		CreatedAt:      bt.Today(),
	}

	if err := bt.storage.SaveUser(ctx, user); err != nil {
		return "", auth.User{}, fmt.Errorf("failed to registration: %w", err)
	}

	token, err := bt.openSession(ctx, user)
	if err != nil {
		return "", auth.User{}, fmt.Errorf("registration successful but failed to generate session: %w", err)
	}
	return token, user, nil
}

func CapitalizeFullName(name string) string {
	words := strings.Fields(name)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// GenerateSession logs a user in and returns a fresh bearer token.
func (bt *BudgetTracker) GenerateSession(ctx context.Context, credentials auth.UserCredentialsPure) (string, auth.User, error) {
	wrongCredentials := appErrors.ErrorResponse{
		Code:    appErrors.ErrAuth,
		Message: "Email or Password is incorrect",
	}

	user, err := bt.storage.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(credentials.Email)))
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrNotFound) {
			return "", auth.User{}, wrongCredentials
		}
		return "", auth.User{}, err
	}
	if !auth.ComparePasswords(user.PasswordHashed, credentials.PasswordPlain) {
		return "", auth.User{}, wrongCredentials
	}

	token, err := bt.openSession(ctx, user)
	if err != nil {
		return "", auth.User{}, err
	}
	return token, user, nil
}

func (bt *BudgetTracker) openSession(ctx context.Context, user auth.User) (string, error) {
	sessionID := uuid.New().String()

	token, expireAt, err := bt.tokens.Issue(user.ID, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to generate new session: %w", err)
	}

	session := auth.Session{
		ID:        sessionID,
		Token:     token,
		CreatedAt: bt.Today(),
		ExpireAt:  expireAt,
		UserID:    user.ID,
	}
	if err := bt.storage.SaveSession(ctx, session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return token, nil
}

// CheckSession resolves a bearer token to its user id. The token must be
// correctly signed, unexpired and backed by a session that was not logged out.
func (bt *BudgetTracker) CheckSession(ctx context.Context, token string) (string, error) {
	claims, err := bt.tokens.Verify(token)
	if err != nil {
		return "", err
	}

	userId, err := bt.storage.CheckSession(ctx, token, bt.Today())
	if err != nil {
		return "", err
	}

	if userId != claims.UserID {
		logging.Logger.Warnf("[TraceID=%s] | token subject does not match session owner", contextutil.TraceIDFromContext(ctx))
		return "", appErrors.ErrorResponse{
			Code:    appErrors.ErrAuth,
			Message: "Invalid token, please login.",
		}
	}
	return userId, nil
}

func (bt *BudgetTracker) LogoutUser(ctx context.Context, userId string, token string) error {
	if err := bt.storage.LogoutUser(ctx, userId, token); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

func (bt *BudgetTracker) GetAccountInfo(ctx context.Context, userId string) (auth.User, error) {
	user, err := bt.storage.GetUserById(ctx, userId)
	if err != nil {
		return auth.User{}, fmt.Errorf("failed to get account info: %w", err)
	}
	return user, nil
}
