package models

import (
	"time"

	"github.com/bighogz/stockdiag/internal/metrics"
)

// Window selects the history span and bar size requested from a quote provider.
// The zero value asks for a snapshot without history.
type Window struct {
	Range    string
	Interval string
}

// PricePoint is one closing price; Date is unix seconds.
type PricePoint struct {
	Date  int64   `json:"date"`
	Close float64 `json:"close"`
}

// Quote is a snapshot of a symbol plus its historical closes, oldest first.
type Quote struct {
	Symbol        string       `json:"symbol"`
	ShortName     string       `json:"shortName"`
	LongName      string       `json:"longName"`
	LogoURL       string       `json:"logoUrl"`
	Price         float64      `json:"price"`
	Change        float64      `json:"change"`
	ChangePercent float64      `json:"changePercent"`
	History       []PricePoint `json:"history,omitempty"`
}

// Closes returns the closing prices and their timestamps as parallel slices.
func (q *Quote) Closes() ([]float64, []int64) {
	prices := make([]float64, len(q.History))
	dates := make([]int64, len(q.History))
	for i, p := range q.History {
		prices[i] = p.Close
		dates[i] = p.Date
	}
	return prices, dates
}

type Ticker struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Logo   string `json:"logo"`
	Sector string `json:"sector,omitempty"`
	Type   string `json:"type,omitempty"`
}

// Stock is a listed equity as returned by ranking queries. Change is nil when
// the provider has no value for the session.
type Stock struct {
	Symbol string   `json:"symbol"`
	Name   string   `json:"name"`
	Price  float64  `json:"price"`
	Change *float64 `json:"change"`
	Volume float64  `json:"volume"`
	Logo   string   `json:"logo"`
	Sector string   `json:"sector"`
}

type ListOptions struct {
	Limit     int
	Type      string
	SortBy    string
	SortOrder string
}

type Index struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
}

type Overview struct {
	Indices     []Index   `json:"indices"`
	TopGainers  []Stock   `json:"topGainers"`
	TopLosers   []Stock   `json:"topLosers"`
	MostTraded  []Stock   `json:"mostTraded"`
	TotalVolume float64   `json:"totalVolume"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Report is the diagnosis of one symbol over one period.
type Report struct {
	Symbol          string                  `json:"symbol"`
	ShortName       string                  `json:"shortName"`
	LongName        string                  `json:"longName"`
	LogoURL         string                  `json:"logoUrl"`
	Period          string                  `json:"period"`
	Return          float64                 `json:"return"`
	Volatility      metrics.VolatilityClass `json:"volatility"`
	VolatilityValue float64                 `json:"volatilityValue"`
	MovingAverage   float64                 `json:"movingAverage"`
	Trend           metrics.TrendClass      `json:"trend"`
	Diagnosis       string                  `json:"diagnosis"`
	Prices          []float64               `json:"prices"`
	Timestamps      []int64                 `json:"timestamps"`
	CurrentPrice    float64                 `json:"currentPrice"`
	ChangePercent   float64                 `json:"changePercent"`
}
