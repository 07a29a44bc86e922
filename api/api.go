package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/0xcafe-io/iz"
	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
	"github.com/fatali-fataliyev/monthly_budget/internal/auth"
	"github.com/fatali-fataliyev/monthly_budget/internal/budget"
	"github.com/fatali-fataliyev/monthly_budget/internal/contextutil"
	"github.com/fatali-fataliyev/monthly_budget/internal/money"
	"github.com/fatali-fataliyev/monthly_budget/internal/period"
	"github.com/fatali-fataliyev/monthly_budget/logging"
)

type Api struct {
	Service *budget.BudgetTracker
	Locale  string
}

func NewApi(service *budget.BudgetTracker, locale string) *Api {
	if locale == "" {
		locale = money.DEFAULT_LOCALE
	}
	return &Api{
		Service: service,
		Locale:  locale,
	}
}

func errorResponse(r *iz.Request, err error) iz.Responder {
	status := httpStatusFromError(err)
	if status == http.StatusInternalServerError {
		traceID := contextutil.TraceIDFromContext(r.Context())
		logging.Logger.Errorf("[TraceID=%s] | %s %s failed | Error: %v", traceID, r.Method, r.URL.Path, err)
	}
	resp := appErrors.ErrorResponse{
		Code:    appErrors.CodeOf(err),
		Message: appErrors.MessageOf(err),
	}
	return iz.Respond().Status(status).JSON(resp)
}

func decodeBody(r *iz.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return appErrors.New(appErrors.ErrInvalidInput, "Invalid request body: %s", err.Error())
	}
	return nil
}

// authorize resolves the bearer token of the request. The returned responder
// is non-nil when the caller must stop.
func (api *Api) authorize(r *iz.Request) (userId string, token string, fail iz.Responder) {
	token, err := bearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return "", "", errorResponse(r, err)
	}

	userId, err = api.Service.CheckSession(r.Context(), token)
	if err != nil {
		return "", "", errorResponse(r, err)
	}
	return userId, token, nil
}

// --- USERS --- //

func (api *Api) SaveUserHandler(r *iz.Request) iz.Responder {
	var newUserReq SaveUserRequest
	if err := decodeBody(r, &newUserReq); err != nil {
		return errorResponse(r, err)
	}

	newUser := auth.NewUser{
		Name:                 newUserReq.Name,
		Email:                newUserReq.Email,
		PasswordPlain:        newUserReq.Password,
		PasswordConfirmation: newUserReq.ConfirmPassword,
		BirthDate:            newUserReq.BirthDate,
	}

	token, user, err := api.Service.SaveUser(r.Context(), newUser)
	if err != nil {
		return errorResponse(r, err)
	}

	resp := AuthResponse{
		Message: "Registration Completed",
		Token:   token,
		User:    UserToHttp(user),
	}
	return iz.Respond().Status(http.StatusCreated).JSON(resp)
}

func (api *Api) LoginUserHandler(r *iz.Request) iz.Responder {
	var loginRequest UserLoginRequest
	if err := decodeBody(r, &loginRequest); err != nil {
		return errorResponse(r, err)
	}

	credentials := auth.UserCredentialsPure{
		Email:         loginRequest.Email,
		PasswordPlain: loginRequest.Password,
	}

	token, user, err := api.Service.GenerateSession(r.Context(), credentials)
	if err != nil {
		return errorResponse(r, err)
	}

	resp := AuthResponse{
		Message: "You've logged in successfully!",
		Token:   token,
		User:    UserToHttp(user),
	}
	return iz.Respond().Status(http.StatusOK).JSON(resp)
}

func (api *Api) LogoutUserHandler(r *iz.Request) iz.Responder {
	userId, token, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	if err := api.Service.LogoutUser(r.Context(), userId, token); err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(MessageResponse{Message: "Logout successful."})
}

func (api *Api) GetAccountInfoHandler(r *iz.Request) iz.Responder {
	userId, _, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	user, err := api.Service.GetAccountInfo(r.Context(), userId)
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(UserToHttp(user))
}

func (api *Api) GetCategoriesHandler(r *iz.Request) iz.Responder {
	categories := budget.Categories()
	items := make([]CategoryItem, 0, len(categories))
	for _, c := range categories {
		items = append(items, CategoryItem{Label: c.Label, Icon: c.Icon})
	}
	return iz.Respond().Status(http.StatusOK).JSON(items)
}

// --- EXPENSES --- //

func (api *Api) SaveExpenseHandler(r *iz.Request) iz.Responder {
	userId, _, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	var body ExpenseRequest
	if err := decodeBody(r, &body); err != nil {
		return errorResponse(r, err)
	}
	req, err := body.toBudget(api.Service.Today())
	if err != nil {
		return errorResponse(r, err)
	}

	expense, err := api.Service.SaveExpense(r.Context(), userId, req)
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(http.StatusCreated).JSON(ExpenseToHttp(expense, api.Locale))
}

func (api *Api) ListExpensesHandler(r *iz.Request) iz.Responder {
	userId, _, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	p, found, err := periodFromQuery(r.URL.Query())
	if err != nil {
		return errorResponse(r, err)
	}

	var expenses []budget.Expense
	if found {
		expenses, err = api.Service.ListExpensesByPeriod(r.Context(), userId, p)
	} else {
		expenses, err = api.Service.ListExpenses(r.Context(), userId)
	}
	if err != nil {
		return errorResponse(r, err)
	}

	resp := ListExpenseResponse{Expenses: make([]ExpenseItem, 0, len(expenses))}
	for _, e := range expenses {
		resp.Expenses = append(resp.Expenses, ExpenseToHttp(e, api.Locale))
	}
	return iz.Respond().Status(http.StatusOK).JSON(resp)
}

func (api *Api) GetExpenseByIdHandler(r *iz.Request) iz.Responder {
	userId, _, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	expense, err := api.Service.GetExpenseById(r.Context(), userId, r.PathValue("id"))
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(ExpenseToHttp(expense, api.Locale))
}

func (api *Api) UpdateExpenseHandler(r *iz.Request) iz.Responder {
	userId, _, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	var body ExpenseRequest
	if err := decodeBody(r, &body); err != nil {
		return errorResponse(r, err)
	}
	update, err := body.toUpdate()
	if err != nil {
		return errorResponse(r, err)
	}

	expense, err := api.Service.UpdateExpense(r.Context(), userId, r.PathValue("id"), update)
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(ExpenseToHttp(expense, api.Locale))
}

func (api *Api) DeleteExpenseHandler(r *iz.Request) iz.Responder {
	userId, _, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	expense, err := api.Service.DeleteExpense(r.Context(), userId, r.PathValue("id"))
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(ExpenseToHttp(expense, api.Locale))
}

// requiredPeriod reads the period query, defaulting to the current month.
func (api *Api) requiredPeriod(r *iz.Request) (period.Period, error) {
	p, found, err := periodFromQuery(r.URL.Query())
	if err != nil {
		return period.Period{}, err
	}
	if !found {
		return period.Current(api.Service.Today()), nil
	}
	return p, nil
}

func (api *Api) GetExpensesTotalHandler(r *iz.Request) iz.Responder {
	userId, _, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	p, err := api.requiredPeriod(r)
	if err != nil {
		return errorResponse(r, err)
	}

	total, err := api.Service.SumExpenses(r.Context(), userId, p)
	if err != nil {
		return errorResponse(r, err)
	}

	resp := TotalResponse{
		Period:  p,
		Total:   total.StringFixed(2),
		Display: money.Format(total, api.Locale),
	}
	return iz.Respond().Status(http.StatusOK).JSON(resp)
}

// --- LIMITS --- //

func (api *Api) SaveLimitHandler(r *iz.Request) iz.Responder {
	userId, _, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	var body LimitRequest
	if err := decodeBody(r, &body); err != nil {
		return errorResponse(r, err)
	}
	req, err := body.toBudget(api.Service.Today())
	if err != nil {
		return errorResponse(r, err)
	}

	limit, err := api.Service.SaveLimit(r.Context(), userId, req)
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(http.StatusCreated).JSON(LimitToHttp(limit, api.Locale))
}

// ListLimitsHandler returns every limit, or with ?period= the limit of that
// month (404 when there is none).
func (api *Api) ListLimitsHandler(r *iz.Request) iz.Responder {
	userId, _, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	p, found, err := periodFromQuery(r.URL.Query())
	if err != nil {
		return errorResponse(r, err)
	}

	if found {
		limit, err := api.Service.GetLimitByPeriod(r.Context(), userId, p)
		if err != nil {
			return errorResponse(r, err)
		}
		if limit == nil {
			return errorResponse(r, appErrors.New(appErrors.ErrNotFound, "There is no limit for %s.", p))
		}
		return iz.Respond().Status(http.StatusOK).JSON(LimitToHttp(*limit, api.Locale))
	}

	limits, err := api.Service.ListLimits(r.Context(), userId)
	if err != nil {
		return errorResponse(r, err)
	}

	resp := ListLimitResponse{Limits: make([]LimitItem, 0, len(limits))}
	for _, l := range limits {
		resp.Limits = append(resp.Limits, LimitToHttp(l, api.Locale))
	}
	return iz.Respond().Status(http.StatusOK).JSON(resp)
}

func (api *Api) UpdateLimitHandler(r *iz.Request) iz.Responder {
	userId, _, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	var body LimitRequest
	if err := decodeBody(r, &body); err != nil {
		return errorResponse(r, err)
	}
	update, err := body.toUpdate()
	if err != nil {
		return errorResponse(r, err)
	}

	limit, err := api.Service.UpdateLimit(r.Context(), userId, r.PathValue("id"), update)
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(LimitToHttp(limit, api.Locale))
}

func (api *Api) DeleteLimitHandler(r *iz.Request) iz.Responder {
	userId, _, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	limit, err := api.Service.DeleteLimit(r.Context(), userId, r.PathValue("id"))
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(LimitToHttp(limit, api.Locale))
}

// --- BUDGET --- //

func (api *Api) GetBudgetStatusHandler(r *iz.Request) iz.Responder {
	userId, _, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	p, err := api.requiredPeriod(r)
	if err != nil {
		return errorResponse(r, err)
	}

	status, err := api.Service.Evaluate(r.Context(), userId, p)
	if err != nil {
		return errorResponse(r, err)
	}
	return iz.Respond().Status(http.StatusOK).JSON(StatusToHttp(status, api.Locale))
}

func (api *Api) GetCategoryBreakdownHandler(r *iz.Request) iz.Responder {
	userId, _, fail := api.authorize(r)
	if fail != nil {
		return fail
	}

	p, err := api.requiredPeriod(r)
	if err != nil {
		return errorResponse(r, err)
	}

	breakdown, err := api.Service.EvaluateByCategory(r.Context(), userId, p)
	if err != nil {
		return errorResponse(r, fmt.Errorf("category breakdown of %s: %w", p, err))
	}
	return iz.Respond().Status(http.StatusOK).JSON(BreakdownToHttp(breakdown))
}
