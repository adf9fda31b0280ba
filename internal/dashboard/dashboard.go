// Package dashboard wires a quote gateway to the metrics and diagnosis cores.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bighogz/stockdiag/internal/diagnosis"
	"github.com/bighogz/stockdiag/internal/logging"
	"github.com/bighogz/stockdiag/internal/metrics"
	"github.com/bighogz/stockdiag/internal/models"
	"github.com/bighogz/stockdiag/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
)

// Gateway is the upstream quote provider.
type Gateway interface {
	History(ctx context.Context, symbol string, w models.Window) (*models.Quote, error)
	SearchTickers(ctx context.Context, query string, limit int) ([]models.Ticker, error)
	ListStocks(ctx context.Context, opts models.ListOptions) ([]models.Stock, error)
}

const (
	DefaultSearchLimit = 10
	maxSearchLimit     = 50
)

type Service struct {
	gw          Gateway
	indexSymbol string
	now         func() time.Time
	log         zerolog.Logger
}

func New(gw Gateway, indexSymbol string) *Service {
	return &Service{
		gw:          gw,
		indexSymbol: indexSymbol,
		now:         time.Now,
		log:         logging.Component("dashboard"),
	}
}

// Diagnose fetches the history of symbol over period and describes it.
func (s *Service) Diagnose(ctx context.Context, symbol, period string) (*models.Report, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, models.ErrSymbolRequired
	}
	period = strings.TrimSpace(period)
	if period == "" {
		period = DefaultPeriod
	}

	ctx, span := telemetry.Tracer().Start(ctx, "dashboard.Diagnose")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol), attribute.String("period", period))

	q, err := s.gw.History(ctx, symbol, WindowFor(period))
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrInvalidTicker)
	}
	if len(q.History) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, models.ErrNoHistory)
	}

	if q.Symbol == "" {
		q.Symbol = symbol
	}
	prices, timestamps := q.Closes()
	sum := metrics.Analyze(prices)
	label := diagnosis.PeriodLabelFor(period)
	text, err := diagnosis.Generate(diagnosis.Input{
		Return:      sum.Return,
		Volatility:  sum.VolatilityClass,
		Trend:       sum.Trend,
		PeriodLabel: label,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("symbol", symbol).
		Str("period", period).
		Int("points", len(prices)).
		Float64("return", sum.Return).
		Stringer("volatility", sum.VolatilityClass).
		Stringer("trend", sum.Trend).
		Msg("diagnosis")

	return &models.Report{
		Symbol:          q.Symbol,
		ShortName:       q.ShortName,
		LongName:        q.LongName,
		LogoURL:         q.LogoURL,
		Period:          label,
		Return:          sum.Return,
		Volatility:      sum.VolatilityClass,
		VolatilityValue: sum.Volatility,
		MovingAverage:   sum.MovingAverage,
		Trend:           sum.Trend,
		Diagnosis:       text,
		Prices:          prices,
		Timestamps:      timestamps,
		CurrentPrice:    q.Price,
		ChangePercent:   q.ChangePercent,
	}, nil
}

// SearchTickers autocompletes query. A blank query returns an empty list
// without calling the gateway.
func (s *Service) SearchTickers(ctx context.Context, query string, limit int) ([]models.Ticker, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Ticker{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	limit = clamp(limit, 1, maxSearchLimit)
	tickers, err := s.gw.SearchTickers(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if tickers == nil {
		tickers = []models.Ticker{}
	}
	return tickers, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
