package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bighogz/stockdiag/internal/brapi"
	"github.com/bighogz/stockdiag/internal/config"
	"github.com/bighogz/stockdiag/internal/dashboard"
	"github.com/bighogz/stockdiag/internal/httpclient"
	"github.com/bighogz/stockdiag/internal/logging"
	"github.com/bighogz/stockdiag/internal/models"
	"github.com/bighogz/stockdiag/internal/telemetry"
	"github.com/bighogz/stockdiag/internal/yahoo"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	shutdownTracing, err := telemetry.Setup(cfg.TraceStdout, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("init tracing")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newServer(cfg, newGateway(cfg)).routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("provider", cfg.Provider).
			Bool("token_configured", cfg.BrapiToken != "").
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	if err := shutdownTracing(ctx); err != nil {
		log.Error().Err(err).Msg("flush traces")
	}
}

func newGateway(cfg *config.Config) dashboard.Gateway {
	hc := httpclient.New(cfg.RequestTimeout, cfg.MaxRetries)
	if cfg.Provider == config.ProviderYahoo {
		return yahoo.New(cfg.YahooBaseURL, hc)
	}
	return brapi.New(cfg.BrapiToken, cfg.BrapiBaseURL, hc)
}

type server struct {
	svc        *dashboard.Service
	staticDir  string
	corsOrigin string
	now        func() time.Time
}

func newServer(cfg *config.Config, gw dashboard.Gateway) *server {
	return &server{
		svc:        dashboard.New(gw, cfg.IndexSymbol),
		staticDir:  cfg.StaticDir,
		corsOrigin: cfg.CORSOrigin,
		now:        time.Now,
	}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", securityHeaders(s.serveIndex))
	mux.HandleFunc("/static/", securityHeaders(s.serveStatic))
	mux.HandleFunc("/api/health", getOnly(s.handleHealth))
	mux.HandleFunc("/api/tickers/search", getOnly(s.handleSearch))
	mux.HandleFunc("/api/diagnosis", getOnly(s.handleDiagnosis))
	mux.HandleFunc("/api/market-overview", getOnly(s.handleOverview))
	return requestLogger(tracing(cors(s.corsOrigin, mux)))
}

func (s *server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	indexPath := safeStaticPath(s.staticDir, "index.html")
	if _, err := os.Stat(indexPath); indexPath != "" && err == nil {
		http.ServeFile(w, r, indexPath)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Frontend not found."})
}

func (s *server) serveStatic(w http.ResponseWriter, r *http.Request) {
	subpath := strings.TrimPrefix(r.URL.Path, "/static/")
	subpath = strings.TrimPrefix(subpath, "/")
	if subpath == "" || strings.Contains(subpath, "..") {
		http.NotFound(w, r)
		return
	}
	path := safeStaticPath(s.staticDir, subpath)
	if path == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := parseInt(q.Get("limit"), dashboard.DefaultSearchLimit)
	tickers, err := s.svc.SearchTickers(r.Context(), q.Get("q"), limit)
	if err != nil {
		if errors.Is(err, models.ErrMissingToken) {
			writeError(w, r, http.StatusInternalServerError, "API token not configured", "", err)
			return
		}
		writeError(w, r, http.StatusInternalServerError, "failed to search tickers", "", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]interface{}{"tickers": tickers})
}

func (s *server) handleDiagnosis(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol := strings.ToUpper(strings.TrimSpace(q.Get("symbol")))
	rep, err := s.svc.Diagnose(r.Context(), symbol, q.Get("period"))
	switch {
	case err == nil:
		jsonResponse(w, http.StatusOK, rep)
	case errors.Is(err, models.ErrSymbolRequired):
		writeError(w, r, http.StatusBadRequest, "symbol is required", "", err)
	case errors.Is(err, models.ErrMissingToken):
		writeError(w, r, http.StatusInternalServerError, "API token not configured", "", err)
	case errors.Is(err, models.ErrInvalidTicker):
		writeError(w, r, http.StatusBadRequest, "invalid ticker or no data available", symbol, err)
	case errors.Is(err, models.ErrNoHistory):
		writeError(w, r, http.StatusBadRequest, "no historical data available", symbol, err)
	default:
		writeError(w, r, http.StatusInternalServerError, "internal server error", "", err)
	}
}

func (s *server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := s.svc.Overview(r.Context())
	if err != nil {
		if errors.Is(err, models.ErrMissingToken) {
			writeError(w, r, http.StatusInternalServerError, "API token not configured", "", err)
			return
		}
		writeError(w, r, http.StatusInternalServerError, "failed to fetch market data", "", err)
		return
	}
	jsonResponse(w, http.StatusOK, ov)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg, symbol string, err error) {
	ev := log.Warn()
	if status >= 500 {
		ev = log.Error()
	}
	ev.Err(err).Str("path", r.URL.Path).Int("status", status).Msg(msg)

	body := map[string]string{"error": msg}
	if symbol != "" {
		body["symbol"] = symbol
	}
	jsonResponse(w, status, body)
}

func jsonResponse(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
