package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
	"github.com/fatali-fataliyev/monthly_budget/internal/auth"
	"github.com/fatali-fataliyev/monthly_budget/internal/budget"
	"github.com/fatali-fataliyev/monthly_budget/internal/money"
	"github.com/fatali-fataliyev/monthly_budget/internal/period"
	"github.com/shopspring/decimal"
)

const TIME_LAYOUT = time.RFC3339

// REQUESTS START:
type SaveUserRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	BirthDate       string `json:"birthDate"`
}

type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// periodFields is shared by every body that targets a month. Either period
// ("2025-07") or month and year may be sent; nothing means the current month.
// referenceMonth, mes and ano are the names older clients send.
type periodFields struct {
	Period         string  `json:"period"`
	ReferenceMonth string  `json:"referenceMonth"`
	Month          flexInt `json:"month"`
	Year           flexInt `json:"year"`
	Mes            flexInt `json:"mes"`
	Ano            flexInt `json:"ano"`
}

// amountFields accepts value (or valor) as a JSON number or string ("12.34",
// "12,34") and valueCents as raw integer cents, which wins when present.
type amountFields struct {
	Value      json.RawMessage `json:"value"`
	Valor      json.RawMessage `json:"valor"`
	ValueCents *json.Number    `json:"valueCents"`
}

type ExpenseRequest struct {
	Description *string `json:"description"`
	Descricao   *string `json:"descricao"`
	Category    *string `json:"category"`
	Icon        *string `json:"icon"`
	Icone       *string `json:"icone"`
	amountFields
	periodFields
}

type LimitRequest struct {
	amountFields
	periodFields
}

// flexInt is an integer sent either as a JSON number or as a numeric string.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	if raw == "" || raw == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return appErrors.New(appErrors.ErrInvalidInput, "'%s' is not a whole number.", raw)
	}
	*n = flexInt(v)
	return nil
}

//REQUESTS END:

//RESPONSES:

type UserItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	BirthDate string `json:"birthDate"`
	CreatedAt string `json:"createdAt"`
}

type AuthResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    UserItem `json:"user"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ExpenseItem struct {
	ID          string        `json:"id"`
	Description string        `json:"description"`
	Value       string        `json:"value"`
	ValueCents  int64         `json:"valueCents"`
	Display     string        `json:"display"`
	Period      period.Period `json:"period"`
	Month       int           `json:"month"`
	Year        int           `json:"year"`
	Category    string        `json:"category"`
	Icon        string        `json:"icon"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
}

type LimitItem struct {
	ID         string        `json:"id"`
	Value      string        `json:"value"`
	ValueCents int64         `json:"valueCents"`
	Display    string        `json:"display"`
	Period     period.Period `json:"period"`
	Month      int           `json:"month"`
	Year       int           `json:"year"`
	CreatedAt  string        `json:"createdAt"`
	UpdatedAt  string        `json:"updatedAt"`
}

type ListExpenseResponse struct {
	Expenses []ExpenseItem `json:"expenses"`
}

type ListLimitResponse struct {
	Limits []LimitItem `json:"limits"`
}

type TotalResponse struct {
	Period  period.Period `json:"period"`
	Total   string        `json:"total"`
	Display string        `json:"display"`
}

type BudgetStatusResponse struct {
	Period        period.Period `json:"period"`
	LimitAmount   *string       `json:"limitAmount"`
	TotalExpenses string        `json:"totalExpenses"`
	Remaining     *string       `json:"remaining"`
	Status        string        `json:"status"`
	UsagePercent  int           `json:"usagePercent"`
	Display       string        `json:"display"`
}

type CategoryProgressItem struct {
	Label        string  `json:"label"`
	Icon         string  `json:"icon"`
	Spent        string  `json:"spent"`
	LimitAmount  *string `json:"limitAmount"`
	UsagePercent int     `json:"usagePercent"`
	IsCustom     bool    `json:"isCustom"`
}

type CategoryBreakdownResponse struct {
	Period      period.Period          `json:"period"`
	LimitAmount *string                `json:"limitAmount"`
	Categories  []CategoryProgressItem `json:"categories"`
}

type CategoryItem struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// RESPONSES END:

func httpStatusFromError(err error) int {
	switch appErrors.CodeOf(err) {
	case appErrors.ErrNotFound:
		return http.StatusNotFound
	case appErrors.ErrInvalidInput, appErrors.ErrInvalidValue, appErrors.ErrPeriodLocked, appErrors.ErrDuplicateLimit:
		return http.StatusBadRequest
	case appErrors.ErrAuth:
		return http.StatusUnauthorized
	case appErrors.ErrAccessDenied:
		return http.StatusForbidden
	case appErrors.ErrConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", appErrors.New(appErrors.ErrAuth, "Authorization header is required.")
	}
	scheme, token, found := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", appErrors.New(appErrors.ErrAuth, "Authorization header must be in the form 'Bearer <token>'.")
	}
	return token, nil
}

func (f periodFields) present() bool {
	return f.Period != "" || f.ReferenceMonth != "" || f.Month != 0 || f.Year != 0 || f.Mes != 0 || f.Ano != 0
}

func (f periodFields) resolve(today time.Time) (period.Period, error) {
	if !f.present() {
		return period.Current(today), nil
	}
	if raw := firstNonEmpty(f.Period, f.ReferenceMonth); raw != "" {
		return period.Parse(raw)
	}
	month, year := f.Month, f.Year
	if month == 0 {
		month = f.Mes
	}
	if year == 0 {
		year = f.Ano
	}
	return period.New(int(year), int(month))
}

// resolveUpdate is nil when the body names no period.
func (f periodFields) resolveUpdate() (*period.Period, error) {
	if !f.present() {
		return nil, nil
	}
	p, err := f.resolve(time.Time{})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func firstSet(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// periodFromQuery reads ?period=YYYY-MM or ?month=&year=, also under the names
// referenceMonth, mes and ano. found is false when none was sent.
func periodFromQuery(params url.Values) (p period.Period, found bool, err error) {
	if raw := firstNonEmpty(params.Get("period"), params.Get("referenceMonth")); raw != "" {
		p, err = period.Parse(raw)
		return p, true, err
	}

	rawMonth := firstNonEmpty(params.Get("month"), params.Get("mes"))
	rawYear := firstNonEmpty(params.Get("year"), params.Get("ano"))
	if rawMonth == "" && rawYear == "" {
		return period.Period{}, false, nil
	}
	month, err := strconv.Atoi(rawMonth)
	if err != nil {
		return period.Period{}, true, appErrors.New(appErrors.ErrInvalidInput, "Invalid month '%s'.", rawMonth)
	}
	year, err := strconv.Atoi(rawYear)
	if err != nil {
		return period.Period{}, true, appErrors.New(appErrors.ErrInvalidInput, "Invalid year '%s'.", rawYear)
	}
	p, err = period.New(year, month)
	return p, true, err
}

func (f amountFields) raw() string {
	for _, v := range []json.RawMessage{f.Value, f.Valor} {
		raw := strings.TrimSpace(string(v))
		if raw != "" && raw != "null" {
			return raw
		}
	}
	return ""
}

func (f amountFields) present() bool {
	return f.ValueCents != nil || f.raw() != ""
}

func (f amountFields) resolve() (decimal.Decimal, error) {
	if f.ValueCents != nil {
		cents, err := money.ParseCents(f.ValueCents.String())
		if err != nil {
			return decimal.Zero, err
		}
		return money.ToDecimal(cents)
	}

	raw := f.raw()
	if raw == "" {
		return decimal.Zero, appErrors.New(appErrors.ErrInvalidInput, "Value is required.")
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	return money.ParseAmount(raw)
}

// resolveUpdate is nil when the body sends no amount.
func (f amountFields) resolveUpdate() (*decimal.Decimal, error) {
	if !f.present() {
		return nil, nil
	}
	value, err := f.resolve()
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (req ExpenseRequest) toBudget(today time.Time) (budget.ExpenseRequest, error) {
	value, err := req.amountFields.resolve()
	if err != nil {
		return budget.ExpenseRequest{}, err
	}
	p, err := req.periodFields.resolve(today)
	if err != nil {
		return budget.ExpenseRequest{}, err
	}
	return budget.ExpenseRequest{
		Description: deref(firstSet(req.Description, req.Descricao)),
		Value:       value,
		Period:      p,
		Category:    deref(req.Category),
		Icon:        deref(firstSet(req.Icon, req.Icone)),
	}, nil
}

// toUpdate keeps only the fields the client sent.
func (req ExpenseRequest) toUpdate() (budget.ExpenseUpdate, error) {
	value, err := req.amountFields.resolveUpdate()
	if err != nil {
		return budget.ExpenseUpdate{}, err
	}
	p, err := req.periodFields.resolveUpdate()
	if err != nil {
		return budget.ExpenseUpdate{}, err
	}
	return budget.ExpenseUpdate{
		Description: firstSet(req.Description, req.Descricao),
		Value:       value,
		Period:      p,
		Category:    req.Category,
		Icon:        firstSet(req.Icon, req.Icone),
	}, nil
}

func (req LimitRequest) toBudget(today time.Time) (budget.LimitRequest, error) {
	value, err := req.amountFields.resolve()
	if err != nil {
		return budget.LimitRequest{}, err
	}
	p, err := req.periodFields.resolve(today)
	if err != nil {
		return budget.LimitRequest{}, err
	}
	return budget.LimitRequest{Value: value, Period: p}, nil
}

func (req LimitRequest) toUpdate() (budget.LimitUpdate, error) {
	value, err := req.amountFields.resolveUpdate()
	if err != nil {
		return budget.LimitUpdate{}, err
	}
	p, err := req.periodFields.resolveUpdate()
	if err != nil {
		return budget.LimitUpdate{}, err
	}
	return budget.LimitUpdate{Value: value, Period: p}, nil
}

func decimalPtrToHttp(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func UserToHttp(user auth.User) UserItem {
	return UserItem{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		BirthDate: user.BirthDate.Format(auth.BIRTH_DATE_LAYOUT),
		CreatedAt: user.CreatedAt.Format(TIME_LAYOUT),
	}
}

func ExpenseToHttp(expense budget.Expense, locale string) ExpenseItem {
	return ExpenseItem{
		ID:          expense.ID,
		Description: expense.Description,
		Value:       expense.Value.StringFixed(2),
		ValueCents:  expense.Value.Shift(2).IntPart(),
		Display:     money.Format(expense.Value, locale),
		Period:      expense.Period,
		Month:       int(expense.Period.Month),
		Year:        expense.Period.Year,
		Category:    expense.Category,
		Icon:        expense.Icon,
		CreatedAt:   expense.CreatedAt.Format(TIME_LAYOUT),
		UpdatedAt:   expense.UpdatedAt.Format(TIME_LAYOUT),
	}
}

func LimitToHttp(limit budget.MonthlyLimit, locale string) LimitItem {
	return LimitItem{
		ID:         limit.ID,
		Value:      limit.Value.StringFixed(2),
		ValueCents: limit.Value.Shift(2).IntPart(),
		Display:    money.Format(limit.Value, locale),
		Period:     limit.Period,
		Month:      int(limit.Period.Month),
		Year:       limit.Period.Year,
		CreatedAt:  limit.CreatedAt.Format(TIME_LAYOUT),
		UpdatedAt:  limit.UpdatedAt.Format(TIME_LAYOUT),
	}
}

func StatusToHttp(status budget.BudgetStatus, locale string) BudgetStatusResponse {
	display := money.Format(status.TotalExpenses, locale)
	if status.LimitAmount != nil {
		display += " / " + money.Format(*status.LimitAmount, locale)
	}
	return BudgetStatusResponse{
		Period:        status.Period,
		LimitAmount:   decimalPtrToHttp(status.LimitAmount),
		TotalExpenses: status.TotalExpenses.StringFixed(2),
		Remaining:     decimalPtrToHttp(status.Remaining),
		Status:        string(status.Status),
		UsagePercent:  status.UsagePercent,
		Display:       display,
	}
}

func BreakdownToHttp(breakdown budget.CategoryBreakdown) CategoryBreakdownResponse {
	items := make([]CategoryProgressItem, 0, len(breakdown.Categories))
	for _, c := range breakdown.Categories {
		items = append(items, CategoryProgressItem{
			Label:        c.Label,
			Icon:         c.Icon,
			Spent:        c.Spent.StringFixed(2),
			LimitAmount:  decimalPtrToHttp(c.LimitAmount),
			UsagePercent: c.UsagePercent,
			IsCustom:     c.IsCustom,
		})
	}
	return CategoryBreakdownResponse{
		Period:      breakdown.Period,
		LimitAmount: decimalPtrToHttp(breakdown.LimitAmount),
		Categories:  items,
	}
}
