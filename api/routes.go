package api

import (
	"net/http"
	"time"

	"github.com/0xcafe-io/iz"
	"github.com/fatali-fataliyev/monthly_budget/internal/contextutil"
	"github.com/fatali-fataliyev/monthly_budget/logging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const TRACE_HEADER = "X-Trace-ID"

var (
	expensePaths = []string{"expenses", "despesas"}
	limitPaths   = []string{"limits", "monthly-limits", "limites"}
)

// Routes registers every endpoint on a fresh mux wrapped in the trace and
// access log middleware.
func (api *Api) Routes() http.Handler {
	server := http.NewServeMux()

	// USER ENDPOINTS.
	server.HandleFunc("POST /api/users", iz.Bind(api.SaveUserHandler))         // Create User
	server.HandleFunc("POST /api/login", iz.Bind(api.LoginUserHandler))        // Login User
	server.HandleFunc("POST /api/sessions", iz.Bind(api.LoginUserHandler))     // Login User
	server.HandleFunc("POST /api/logout", iz.Bind(api.LogoutUserHandler))      // Logout User
	server.HandleFunc("GET /api/users", iz.Bind(api.GetAccountInfoHandler))    // Account Info
	server.HandleFunc("GET /api/categories", iz.Bind(api.GetCategoriesHandler)) // Category suggestions

	// EXPENSE ENDPOINTS.
	for _, name := range expensePaths {
		base := "/api/" + name
		server.HandleFunc("POST "+base, iz.Bind(api.SaveExpenseHandler))
		server.HandleFunc("GET "+base, iz.Bind(api.ListExpensesHandler))
		server.HandleFunc("GET "+base+"/total", iz.Bind(api.GetExpensesTotalHandler))
		server.HandleFunc("GET "+base+"/{id}", iz.Bind(api.GetExpenseByIdHandler))
		server.HandleFunc("PUT "+base+"/{id}", iz.Bind(api.UpdateExpenseHandler))
		server.HandleFunc("DELETE "+base+"/{id}", iz.Bind(api.DeleteExpenseHandler))
	}

	server.HandleFunc("GET /api/total", iz.Bind(api.GetExpensesTotalHandler)) // Total, older clients

	// LIMIT ENDPOINTS.
	for _, name := range limitPaths {
		base := "/api/" + name
		server.HandleFunc("POST "+base, iz.Bind(api.SaveLimitHandler))
		server.HandleFunc("GET "+base, iz.Bind(api.ListLimitsHandler))
		server.HandleFunc("PUT "+base+"/{id}", iz.Bind(api.UpdateLimitHandler))
		server.HandleFunc("DELETE "+base+"/{id}", iz.Bind(api.DeleteLimitHandler))
	}

	// BUDGET ENDPOINTS.
	server.HandleFunc("GET /api/budget", iz.Bind(api.GetBudgetStatusHandler))                // Limit vs spent
	server.HandleFunc("GET /api/budget/categories", iz.Bind(api.GetCategoryBreakdownHandler)) // Spent per category

	return withTrace(server)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// withTrace gives every request a trace id, taken from the X-Trace-ID header
// when the client sent one, and logs the outcome.
func withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TRACE_HEADER)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		w.Header().Set(TRACE_HEADER, traceID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(contextutil.WithTraceID(r.Context(), traceID)))

		logging.Logger.WithFields(logrus.Fields{
			"trace_id": traceID,
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request handled")
	})
}
