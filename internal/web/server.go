package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"StockBoard/internal/collector"
	"StockBoard/internal/config"
	"StockBoard/internal/model"
	"StockBoard/internal/report"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server serves the dashboard page and its JSON API.
type Server struct {
	Config    *config.Config
	Collector *collector.Collector
	Router    *mux.Router

	page *template.Template
}

// NewServer wires the routes for the dashboard.
func NewServer(cfg *config.Config, col *collector.Collector) *Server {
	s := &Server{
		Config:    cfg,
		Collector: col,
		page: template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
			"price": func(p float64) string { return report.FormatPrice(p, cfg.Dashboard.Currency) },
			"date":  func(t time.Time) string { return t.Format("2006-01-02") },
			"stamp": func(t time.Time) string { return t.Format("2006-01-02 15:04:05") },
			"pct":   report.FormatPercent,
		}).ParseFS(templateFS, "templates/dashboard.html")),
	}

	router := mux.NewRouter()
	router.Use(logRequests, recoverPanic)
	router.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/chart", s.handleChart).Methods(http.MethodGet)
	api.HandleFunc("/companies", s.handleCompanies).Methods(http.MethodGet)

	s.Router = router
	return s
}

// Handler returns the router wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.Config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.Router)
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Config.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] http server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Println("[INFO] http server stopped")
	return nil
}

// ParseSelection reads period, interval and symbols from a query string.
// Without any symbol, every company is selected unless the query comes from
// the dashboard form (form=1), in which case nothing is selected.
func ParseSelection(cfg *config.Config, q url.Values) (model.Selection, error) {
	sel := model.Selection{
		Period:   cfg.Dashboard.DefaultPeriod,
		Interval: cfg.Dashboard.DefaultInterval,
	}
	if v := q.Get("period"); v != "" {
		p, err := model.ParsePeriod(v)
		if err != nil {
			return sel, err
		}
		sel.Period = p
	}
	if v := q.Get("interval"); v != "" {
		i, err := model.ParseInterval(v)
		if err != nil {
			return sel, err
		}
		sel.Interval = i
	}

	symbols := q["symbol"]
	if len(symbols) == 0 && q.Get("form") == "" {
		sel.Companies = append([]model.Company(nil), cfg.Companies...)
		return sel, nil
	}

	companies, err := cfg.SelectCompanies(symbols)
	if err != nil {
		return sel, err
	}
	sel.Companies = companies
	return sel, nil
}

func (s *Server) build(w http.ResponseWriter, r *http.Request) (*model.Dashboard, bool) {
	sel, err := ParseSelection(s.Config, r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}
	dash, err := s.Collector.Build(r.Context(), sel)
	if err != nil {
		log.Printf("[ERROR] build dashboard: %v", err)
		writeError(w, http.StatusInternalServerError, err)
		return nil, false
	}
	return dash, true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, ok := s.build(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	dash, ok := s.build(w, r)
	if !ok {
		return
	}
	if dash.NoData {
		writeJSON(w, http.StatusOK, dash)
		return
	}
	writeJSON(w, http.StatusOK, ChartSpec(dash, s.Config.Dashboard.Currency))
}

func (s *Server) handleCompanies(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Config.Companies)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type companyOption struct {
	model.Company
	Checked bool
}

type pageData struct {
	Dashboard *model.Dashboard
	Periods   []model.Period
	Intervals []model.Interval
	Companies []companyOption
	ChartSpec template.JS
	Currency  string
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sel, err := ParseSelection(s.Config, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dash, err := s.Collector.Build(r.Context(), sel)
	if err != nil {
		log.Printf("[ERROR] build dashboard: %v", err)
		http.Error(w, "failed to build dashboard", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Dashboard: dash,
		Periods:   model.Periods,
		Intervals: model.Intervals,
		Currency:  s.Config.Dashboard.Currency,
	}
	selected := make(map[string]bool, len(sel.Companies))
	for _, co := range sel.Companies {
		selected[co.Symbol] = true
	}
	for _, co := range s.Config.Companies {
		data.Companies = append(data.Companies, companyOption{Company: co, Checked: selected[co.Symbol]})
	}
	if !dash.NoData {
		spec, err := json.Marshal(ChartSpec(dash, s.Config.Dashboard.Currency))
		if err != nil {
			http.Error(w, "failed to encode chart", http.StatusInternalServerError)
			return
		}
		data.ChartSpec = template.JS(spec)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		log.Printf("[ERROR] render page: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("[INFO] %s %s %s", r.Method, r.URL.RequestURI(), time.Since(start).Round(time.Millisecond))
	})
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[ERROR] panic serving %s: %v", r.URL.Path, rec)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
