// Package server exposes scans and backtests as a JSON API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"SignalScanner/internal/model"
	"SignalScanner/internal/scanner"
)

// Backtester runs a backtest for one symbol.
type Backtester interface {
	Backtest(ctx context.Context, symbol string) (*model.BacktestResult, error)
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Scanner    *scanner.Scanner
	Backtester Backtester
	Tickers    func() ([]string, error)
	Momentum   scanner.FilterConfig
	Dip        scanner.FilterConfig
	Gatherer   prometheus.Gatherer
	// RequestTimeout bounds one scan or backtest request.
	RequestTimeout time.Duration
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	if s.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		if s.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.RequestTimeout))
		}
		r.Get("/scan", s.handleScan)
		r.Get("/backtest/{symbol}", s.handleBacktest)
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("http server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("http server stopped")
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, model.ErrConfigurationMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrInsufficientHistory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.filterFromQuery(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := cfg.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	symbols, err := s.Tickers()
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	report, err := s.Scanner.Run(r.Context(), symbols)
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	render.JSON(w, r, scanner.Select(report, cfg, r.URL.Query().Get("group") == "sector"))
}

func (s *Server) handleBacktest(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))
	res, err := s.Backtester.Backtest(r.Context(), symbol)
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	render.JSON(w, r, res)
}

// filterFromQuery starts from the configured filter of the requested mode
// and applies any threshold given in the query string.
func (s *Server) filterFromQuery(r *http.Request) (scanner.FilterConfig, error) {
	q := r.URL.Query()
	cfg := s.Momentum
	switch scanner.Mode(q.Get("mode")) {
	case "", scanner.ModeMomentum:
	case scanner.ModeDip:
		cfg = s.Dip
	default:
		return cfg, fmt.Errorf("unknown mode %q", q.Get("mode"))
	}

	floats := map[string]*float64{
		"min_change":    &cfg.MinChange,
		"min_volume":    &cfg.MinVolume,
		"max_rsi":       &cfg.MaxRSI,
		"min_deviation": &cfg.MinDeviation,
		"min_dividend":  &cfg.MinDividend,
	}
	for key, dst := range floats {
		if v := q.Get(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return cfg, fmt.Errorf("%s: %w", key, err)
			}
			*dst = f
		}
	}
	if v := q.Get("min_safety"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("min_safety: %w", err)
		}
		cfg.MinSafety = n
	}
	if v := q.Get("fundamental"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("fundamental: %w", err)
		}
		cfg.FundamentalFilter = b
	}
	if v := q.Get("dip_policy"); v != "" {
		cfg.DipPolicy = scanner.DipPolicy(v)
	}
	return cfg, nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).Round(time.Millisecond),
		}).Info("http request")
	})
}
