// Package yahoo is a token-free quote gateway over the Yahoo Finance chart and
// search endpoints. B3 tickers are mapped to the ".SA" suffix Yahoo expects.
package yahoo

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

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// User-Agent required: Yahoo blocks generic clients (401/429)
const yahooUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const exchangeSuffix = ".SA"

type Client struct {
	BaseURL string
	HTTP    *httpclient.Client
	log     zerolog.Logger
}

func New(baseURL string, hc *httpclient.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = httpclient.Default
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    hc,
		log:     logging.Component("yahoo"),
	}
}

// ToYahooSymbol converts B3 symbols to Yahoo format: PETR4 -> PETR4.SA.
// Index symbols (^BVSP) and already-qualified symbols are left alone.
func ToYahooSymbol(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || strings.HasPrefix(s, "^") || strings.Contains(s, ".") {
		return s
	}
	return s + exchangeSuffix
}

// FromYahooSymbol converts Yahoo symbols back: PETR4.SA -> PETR4
func FromYahooSymbol(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), exchangeSuffix)
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				ShortName          string  `json:"shortName"`
				LongName           string  `json:"longName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		QuoteType string `json:"quoteType"`
		Sector    string `json:"sector"`
	} `json:"quotes"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	u := c.BaseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	h := http.Header{}
	h.Set("User-Agent", yahooUserAgent)
	h.Set("Accept", "application/json")
	return c.HTTP.GetJSON(ctx, u, h, out)
}

// History returns the chart for symbol. An empty window asks for one day of
// daily bars, enough for the snapshot fields.
func (c *Client) History(ctx context.Context, symbol string, w models.Window) (*models.Quote, error) {
	ysym := ToYahooSymbol(symbol)
	rng, interval := w.Range, w.Interval
	if rng == "" {
		rng = "1d"
	}
	if interval == "" {
		interval = "1d"
	}
	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", interval)

	var data chartResponse
	if err := c.get(ctx, "/v8/finance/chart/"+url.PathEscape(ysym), params, &data); err != nil {
		var se *httpclient.StatusError
		if errors.As(err, &se) && (se.StatusCode == http.StatusNotFound || se.StatusCode == http.StatusBadRequest) {
			return nil, fmt.Errorf("yahoo %s: %w", ysym, models.ErrInvalidTicker)
		}
		return nil, fmt.Errorf("yahoo chart %s: %w", ysym, err)
	}
	if data.Chart.Error != nil || len(data.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", ysym, models.ErrInvalidTicker)
	}

	r := data.Chart.Result[0]
	prev := r.Meta.ChartPreviousClose
	if prev == 0 {
		prev = r.Meta.PreviousClose
	}
	q := &models.Quote{
		Symbol:    FromYahooSymbol(r.Meta.Symbol),
		ShortName: r.Meta.ShortName,
		LongName:  r.Meta.LongName,
		Price:     r.Meta.RegularMarketPrice,
	}
	if q.Symbol == "" {
		q.Symbol = FromYahooSymbol(ysym)
	}
	if prev > 0 {
		q.Change = q.Price - prev
		q.ChangePercent = q.Change / prev * 100
	}
	if len(r.Indicators.Quote) > 0 && (w.Range != "" || w.Interval != "") {
		closes := r.Indicators.Quote[0].Close
		q.History = make([]models.PricePoint, 0, len(r.Timestamp))
		for i, ts := range r.Timestamp {
			if i >= len(closes) {
				break
			}
			if closes[i] == nil {
				continue
			}
			q.History = append(q.History, models.PricePoint{Date: ts, Close: *closes[i]})
		}
	}
	return q, nil
}

func (c *Client) SearchTickers(ctx context.Context, query string, limit int) ([]models.Ticker, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", strconv.Itoa(limit))
	params.Set("newsCount", "0")
	var data searchResponse
	if err := c.get(ctx, "/v1/finance/search", params, &data); err != nil {
		return nil, fmt.Errorf("yahoo search %q: %w", query, err)
	}
	out := make([]models.Ticker, 0, len(data.Quotes))
	for _, q := range data.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		out = append(out, models.Ticker{
			Symbol: FromYahooSymbol(q.Symbol),
			Name:   name,
			Sector: q.Sector,
			Type:   strings.ToLower(q.QuoteType),
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// ListStocks is not offered by the public Yahoo endpoints.
func (c *Client) ListStocks(ctx context.Context, opts models.ListOptions) ([]models.Stock, error) {
	c.log.Debug().Str("sort_by", opts.SortBy).Msg("ranked lists unavailable")
	return nil, fmt.Errorf("yahoo list: %w", models.ErrUnsupported)
}
