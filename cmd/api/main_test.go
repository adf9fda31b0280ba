package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bighogz/stockdiag/internal/config"
	"github.com/bighogz/stockdiag/internal/models"
)

type stubGateway struct {
	quote   *models.Quote
	err     error
	tickers []models.Ticker
	stocks  []models.Stock
}

func (g *stubGateway) History(ctx context.Context, symbol string, w models.Window) (*models.Quote, error) {
	return g.quote, g.err
}

func (g *stubGateway) SearchTickers(ctx context.Context, query string, limit int) ([]models.Ticker, error) {
	return g.tickers, g.err
}

func (g *stubGateway) ListStocks(ctx context.Context, opts models.ListOptions) ([]models.Stock, error) {
	return g.stocks, g.err
}

func testServer(t *testing.T, gw *stubGateway) http.Handler {
	t.Helper()
	cfg := &config.Config{IndexSymbol: "^BVSP", StaticDir: t.TempDir(), CORSOrigin: "*"}
	s := newServer(cfg, gw)
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s.routes()
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var body map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s %s: body is not JSON: %q", method, target, rec.Body.String())
		}
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	rec, body := do(t, testServer(t, &stubGateway{}), http.MethodGet, "/api/health")
	if rec.Code != http.StatusOK || body["status"] != "ok" || body["timestamp"] != "2026-01-02T03:04:05Z" {
		t.Errorf("health = %d %v", rec.Code, body)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("missing request id header")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec, body := do(t, testServer(t, &stubGateway{}), http.MethodPost, "/api/diagnosis?symbol=PETR4")
	if rec.Code != http.StatusMethodNotAllowed || body["error"] == nil {
		t.Errorf("POST = %d %v", rec.Code, body)
	}
}

func TestPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/diagnosis", nil)
	rec := httptest.NewRecorder()
	testServer(t, &stubGateway{}).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("OPTIONS = %d", rec.Code)
	}
}

func TestDiagnosis(t *testing.T) {
	gw := &stubGateway{quote: &models.Quote{
		Symbol: "PETR4",
		Price:  138,
		History: []models.PricePoint{
			{Date: 1, Close: 100}, {Date: 2, Close: 110}, {Date: 3, Close: 99}, {Date: 4, Close: 138},
		},
	}}
	rec, body := do(t, testServer(t, gw), http.MethodGet, "/api/diagnosis?symbol=petr4&period=1mo")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %v", rec.Code, body)
	}
	if body["symbol"] != "PETR4" || body["period"] != "1 month" || body["volatility"] != "High" || body["trend"] != "Up" {
		t.Errorf("body = %v", body)
	}
	if prices, ok := body["prices"].([]interface{}); !ok || len(prices) != 4 {
		t.Errorf("prices = %v", body["prices"])
	}
	if body["currentPrice"] != 138.0 {
		t.Errorf("currentPrice = %v", body["currentPrice"])
	}
}

func TestDiagnosis_Errors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		gw     *stubGateway
		status int
		msg    string
		symbol string
	}{
		{"missing symbol", "/api/diagnosis", &stubGateway{}, http.StatusBadRequest, "symbol is required", ""},
		{"invalid ticker", "/api/diagnosis?symbol=xxx", &stubGateway{err: models.ErrInvalidTicker}, http.StatusBadRequest, "invalid ticker or no data available", "XXX"},
		{"no history", "/api/diagnosis?symbol=abc", &stubGateway{quote: &models.Quote{Symbol: "ABC"}}, http.StatusBadRequest, "no historical data available", "ABC"},
		{"missing token", "/api/diagnosis?symbol=abc", &stubGateway{err: models.ErrMissingToken}, http.StatusInternalServerError, "API token not configured", ""},
		{"upstream failure", "/api/diagnosis?symbol=abc", &stubGateway{err: context.DeadlineExceeded}, http.StatusInternalServerError, "internal server error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, testServer(t, tt.gw), http.MethodGet, tt.target)
			if rec.Code != tt.status || body["error"] != tt.msg {
				t.Errorf("got %d %v, want %d %q", rec.Code, body, tt.status, tt.msg)
			}
			if tt.symbol != "" && body["symbol"] != tt.symbol {
				t.Errorf("symbol = %v, want %q", body["symbol"], tt.symbol)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	gw := &stubGateway{tickers: []models.Ticker{{Symbol: "PETR4", Name: "PETROBRAS PN"}}}
	h := testServer(t, gw)

	rec, body := do(t, h, http.MethodGet, "/api/tickers/search?q=PET&limit=8")
	tickers, _ := body["tickers"].([]interface{})
	if rec.Code != http.StatusOK || len(tickers) != 1 {
		t.Errorf("search = %d %v", rec.Code, body)
	}

	rec, body = do(t, h, http.MethodGet, "/api/tickers/search?q=")
	tickers, ok := body["tickers"].([]interface{})
	if rec.Code != http.StatusOK || !ok || len(tickers) != 0 {
		t.Errorf("empty search = %d %v", rec.Code, body)
	}

	rec, body = do(t, testServer(t, &stubGateway{err: models.ErrMissingToken}), http.MethodGet, "/api/tickers/search?q=PET")
	if rec.Code != http.StatusInternalServerError || body["error"] != "API token not configured" {
		t.Errorf("no token = %d %v", rec.Code, body)
	}
}

func TestOverview(t *testing.T) {
	change := 2.0
	gw := &stubGateway{
		quote:  &models.Quote{Symbol: "^BVSP", ShortName: "IBOVESPA", Price: 128000},
		stocks: []models.Stock{{Symbol: "VALE3", Change: &change, Volume: 100}},
	}
	rec, body := do(t, testServer(t, gw), http.MethodGet, "/api/market-overview")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %v", rec.Code, body)
	}
	if body["totalVolume"] != 100.0 {
		t.Errorf("totalVolume = %v", body["totalVolume"])
	}
	if idx, _ := body["indices"].([]interface{}); len(idx) != 1 {
		t.Errorf("indices = %v", body["indices"])
	}

	rec, body = do(t, testServer(t, &stubGateway{err: context.DeadlineExceeded}), http.MethodGet, "/api/market-overview")
	if rec.Code != http.StatusInternalServerError || body["error"] != "failed to fetch market data" {
		t.Errorf("failure = %d %v", rec.Code, body)
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{IndexSymbol: "^BVSP", StaticDir: dir}
	h := newServer(cfg, &stubGateway{}).routes()

	req := httptest.NewRequest(http.MethodGet, "/static/app.js", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "console.log(1)" {
		t.Errorf("static = %d %q", rec.Code, rec.Body.String())
	}

	rec, body := do(t, h, http.MethodGet, "/")
	if rec.Code != http.StatusOK || body["message"] != "Frontend not found." {
		t.Errorf("index fallback = %d %v", rec.Code, body)
	}
}

func TestSafeStaticPath(t *testing.T) {
	if got := safeStaticPath("static", "css/app.css"); got != filepath.Join("static", "css", "app.css") {
		t.Errorf("got %q", got)
	}
	if got := safeStaticPath("static", "../../etc/passwd"); got != "" {
		t.Errorf("traversal allowed: %q", got)
	}
}
