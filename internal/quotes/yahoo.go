package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LookupError describes a failed price lookup for one ticker.
type LookupError struct {
	Ticker string
	Reason string
	Err    error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("quote lookup for %s: %s: %v", e.Ticker, e.Reason, e.Err)
	}
	return fmt.Sprintf("quote lookup for %s: %s", e.Ticker, e.Reason)
}

func (e *LookupError) Unwrap() error { return e.Err }

const defaultYahooURL = "https://query2.finance.yahoo.com/v8/finance/chart"

// Yahoo fetches quotes from the Yahoo Finance chart endpoint. Bare
// tickers get the .SA suffix (B3 listings) before lookup.
type Yahoo struct {
	client  *http.Client
	baseURL string
}

// NewYahoo creates a Yahoo provider with a bounded-timeout client.
func NewYahoo() *Yahoo {
	return &Yahoo{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultYahooURL,
	}
}

// NewYahooWithBaseURL creates a Yahoo provider against a custom endpoint,
// for tests.
func NewYahooWithBaseURL(baseURL string, client *http.Client) *Yahoo {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Yahoo{client: client, baseURL: baseURL}
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice *float64 `json:"regularMarketPrice"`
				PreviousClose      *float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// Quote returns the latest market price for ticker, falling back to the
// previous close when no live price is present.
func (y *Yahoo) Quote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	symbol := ticker
	if !strings.Contains(symbol, ".") {
		symbol += ".SA"
	}
	url := fmt.Sprintf("%s/%s?interval=1d&range=1d", y.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, &LookupError{Ticker: ticker, Reason: "building request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "centavo/1.0")

	resp, err := y.client.Do(req)
	if err != nil {
		return decimal.Zero, &LookupError{Ticker: ticker, Reason: "fetching quote", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return decimal.Zero, &LookupError{Ticker: ticker, Reason: "rate limited"}
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, &LookupError{Ticker: ticker, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	var body chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, &LookupError{Ticker: ticker, Reason: "decoding response", Err: err}
	}
	if len(body.Chart.Result) == 0 {
		return decimal.Zero, &LookupError{Ticker: ticker, Reason: "empty result"}
	}

	meta := body.Chart.Result[0].Meta
	price := meta.RegularMarketPrice
	if price == nil {
		price = meta.PreviousClose
	}
	if price == nil || *price <= 0 {
		return decimal.Zero, &LookupError{Ticker: ticker, Reason: "no usable price in response"}
	}
	return decimal.NewFromFloat(*price), nil
}
