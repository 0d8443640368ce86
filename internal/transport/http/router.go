package http

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"powercars-survey-service/internal/app"
)

// Container holds all dependencies for the router.
type Container struct {
	Survey       *app.SurveyService
	Analytics    *app.AnalyticsService
	Reports      *app.ReportService
	Auth         *app.AuthService
	LiveInterval time.Duration
}

// NewRouter creates the API router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	surveyHandler := NewSurveyHandler(c.Survey)
	dashboardHandler := NewDashboardHandler(c.Analytics)
	reportHandler := NewReportHandler(c.Reports)
	authHandler := NewAuthHandler(c.Auth)
	liveHandler := NewLiveHandler(c.Analytics, c.LiveInterval)

	authMW := NewAuthMiddleware(c.Auth)

	r.Use(corsMiddleware)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Public routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/survey/template", surveyHandler.Template).Methods("GET", "OPTIONS")
	api.HandleFunc("/survey/start", surveyHandler.Start).Methods("POST", "OPTIONS")
	api.HandleFunc("/survey/answer", surveyHandler.Answer).Methods("POST", "OPTIONS")
	api.HandleFunc("/survey/complete", surveyHandler.Complete).Methods("POST", "OPTIONS")

	// Dashboard and report routes require a bearer token. The live feed
	// authenticates via ?token= because browsers can't set websocket headers.
	authed := api.NewRoute().Subrouter()
	authed.Use(authMW.Require)

	authed.HandleFunc("/dashboard/stats", dashboardHandler.Stats).Methods("GET", "OPTIONS")
	authed.HandleFunc("/dashboard/satisfaction", dashboardHandler.Satisfaction).Methods("GET", "OPTIONS")
	authed.HandleFunc("/dashboard/hierarchy", dashboardHandler.Hierarchy).Methods("GET", "OPTIONS")
	authed.HandleFunc("/dashboard/issues", dashboardHandler.Issues).Methods("GET", "OPTIONS")
	authed.HandleFunc("/dashboard/live", liveHandler.ServeWS).Methods("GET")

	authed.HandleFunc("/reports/summary", reportHandler.Summary).Methods("GET", "OPTIONS")
	authed.HandleFunc("/reports/detailed", reportHandler.Detailed).Methods("GET", "OPTIONS")
	authed.HandleFunc("/reports/responses", reportHandler.Responses).Methods("GET", "OPTIONS")
	authed.HandleFunc("/reports/analytics", reportHandler.Analytics).Methods("GET", "OPTIONS")
	authed.HandleFunc("/reports/download/{name}", reportHandler.Download).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
