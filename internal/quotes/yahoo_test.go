package quotes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartBody(price string) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"regularMarketPrice":%s}}]}}`, price)
}

func TestYahoo_Quote(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, chartBody("32.57"))
	}))
	defer srv.Close()

	y := NewYahooWithBaseURL(srv.URL, srv.Client())
	price, err := y.Quote(context.Background(), "PETR4")
	require.NoError(t, err)
	assert.Equal(t, "32.57", price.String())

	// Bare B3 tickers get the exchange suffix.
	assert.Equal(t, "/PETR4.SA", gotPath)
}

func TestYahoo_Quote_SuffixedTickerUnchanged(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, chartBody("191.2"))
	}))
	defer srv.Close()

	y := NewYahooWithBaseURL(srv.URL, srv.Client())
	_, err := y.Quote(context.Background(), "AAPL.US")
	require.NoError(t, err)
	assert.Equal(t, "/AAPL.US", gotPath)
}

func TestYahoo_Quote_PreviousCloseFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"previousClose":28.4}}]}}`)
	}))
	defer srv.Close()

	y := NewYahooWithBaseURL(srv.URL, srv.Client())
	price, err := y.Quote(context.Background(), "VALE3")
	require.NoError(t, err)
	assert.Equal(t, "28.4", price.String())
}

func TestYahoo_Quote_Errors(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		reason  string
	}{
		{
			"rate limited",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) },
			"rate limited",
		},
		{
			"server error",
			func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			"status 500",
		},
		{
			"empty result",
			func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{"chart":{"result":[]}}`) },
			"empty result",
		},
		{
			"no price",
			func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, `{"chart":{"result":[{"meta":{}}]}}`) },
			"no usable price",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			y := NewYahooWithBaseURL(srv.URL, srv.Client())
			_, err := y.Quote(context.Background(), "PETR4")
			require.Error(t, err)
			var lookupErr *LookupError
			require.ErrorAs(t, err, &lookupErr)
			assert.Equal(t, "PETR4", lookupErr.Ticker)
			assert.Contains(t, lookupErr.Reason, tc.reason)
		})
	}
}

func TestStatic_Quote(t *testing.T) {
	provider := Static{"PETR4": decimal.RequireFromString("40.00")}

	price, err := provider.Quote(context.Background(), "PETR4")
	require.NoError(t, err)
	assert.Equal(t, "40", price.String())

	_, err = provider.Quote(context.Background(), "MISSING")
	assert.Error(t, err)
}
