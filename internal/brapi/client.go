// Package brapi is the quote gateway for the brapi.dev B3 market data API.
package brapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bighogz/stockdiag/internal/httpclient"
	"github.com/bighogz/stockdiag/internal/logging"
	"github.com/bighogz/stockdiag/internal/models"
	"github.com/rs/zerolog"
)

const DefaultBaseURL = "https://brapi.dev/api"

type Client struct {
	Token   string
	BaseURL string
	HTTP    *httpclient.Client
	log     zerolog.Logger
}

func New(token, baseURL string, hc *httpclient.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = httpclient.Default
	}
	return &Client{
		Token:   token,
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    hc,
		log:     logging.Component("brapi"),
	}
}

type quoteResponse struct {
	Results []struct {
		Symbol                     string  `json:"symbol"`
		ShortName                  string  `json:"shortName"`
		LongName                   string  `json:"longName"`
		LogoURL                    string  `json:"logourl"`
		RegularMarketPrice         float64 `json:"regularMarketPrice"`
		RegularMarketChange        float64 `json:"regularMarketChange"`
		RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
		HistoricalDataPrice        []struct {
			Date  int64    `json:"date"`
			Close *float64 `json:"close"`
		} `json:"historicalDataPrice"`
	} `json:"results"`
}

type listResponse struct {
	Stocks []struct {
		Stock  string   `json:"stock"`
		Name   string   `json:"name"`
		Close  float64  `json:"close"`
		Change *float64 `json:"change"`
		Volume float64  `json:"volume"`
		Logo   string   `json:"logo"`
		Sector string   `json:"sector"`
		Type   string   `json:"type"`
	} `json:"stocks"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.Token == "" {
		return models.ErrMissingToken
	}
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.Token)
	h.Set("Accept", "application/json")
	c.log.Debug().Str("path", path).Msg("request")
	return c.HTTP.GetJSON(ctx, u, h, out)
}

// History returns the quote snapshot and closing prices for symbol. An empty
// window requests the snapshot only.
func (c *Client) History(ctx context.Context, symbol string, w models.Window) (*models.Quote, error) {
	params := url.Values{}
	if w.Range != "" {
		params.Set("range", w.Range)
	}
	if w.Interval != "" {
		params.Set("interval", w.Interval)
	}
	var data quoteResponse
	err := c.get(ctx, "/quote/"+url.PathEscape(symbol), params, &data)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("brapi %s: %w", symbol, models.ErrInvalidTicker)
		}
		return nil, fmt.Errorf("brapi quote %s: %w", symbol, err)
	}
	if len(data.Results) == 0 {
		return nil, fmt.Errorf("brapi %s: %w", symbol, models.ErrInvalidTicker)
	}
	r := data.Results[0]
	q := &models.Quote{
		Symbol:        r.Symbol,
		ShortName:     r.ShortName,
		LongName:      r.LongName,
		LogoURL:       r.LogoURL,
		Price:         r.RegularMarketPrice,
		Change:        r.RegularMarketChange,
		ChangePercent: r.RegularMarketChangePercent,
		History:       make([]models.PricePoint, 0, len(r.HistoricalDataPrice)),
	}
	for _, p := range r.HistoricalDataPrice {
		if p.Close == nil {
			continue
		}
		q.History = append(q.History, models.PricePoint{Date: p.Date, Close: *p.Close})
	}
	if dropped := len(r.HistoricalDataPrice) - len(q.History); dropped > 0 {
		c.log.Debug().Str("symbol", symbol).Int("dropped", dropped).Msg("skipped null closes")
	}
	return q, nil
}

func (c *Client) SearchTickers(ctx context.Context, query string, limit int) ([]models.Ticker, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("limit", strconv.Itoa(limit))
	var data listResponse
	if err := c.get(ctx, "/quote/list", params, &data); err != nil {
		return nil, fmt.Errorf("brapi search %q: %w", query, err)
	}
	out := make([]models.Ticker, 0, len(data.Stocks))
	for _, s := range data.Stocks {
		out = append(out, models.Ticker{
			Symbol: s.Stock,
			Name:   s.Name,
			Logo:   s.Logo,
			Sector: s.Sector,
			Type:   s.Type,
		})
	}
	return out, nil
}

func (c *Client) ListStocks(ctx context.Context, opts models.ListOptions) ([]models.Stock, error) {
	params := url.Values{}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Type != "" {
		params.Set("type", opts.Type)
	}
	if opts.SortBy != "" {
		params.Set("sortBy", opts.SortBy)
	}
	if opts.SortOrder != "" {
		params.Set("sortOrder", opts.SortOrder)
	}
	var data listResponse
	if err := c.get(ctx, "/quote/list", params, &data); err != nil {
		return nil, fmt.Errorf("brapi list: %w", err)
	}
	out := make([]models.Stock, 0, len(data.Stocks))
	for _, s := range data.Stocks {
		out = append(out, models.Stock{
			Symbol: s.Stock,
			Name:   s.Name,
			Price:  s.Close,
			Change: s.Change,
			Volume: s.Volume,
			Logo:   s.Logo,
			Sector: s.Sector,
		})
	}
	return out, nil
}

func isNotFound(err error) bool {
	var se *httpclient.StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusBadRequest
}
