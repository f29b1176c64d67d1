package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/bnema/wallet-accounts-cli/internal/ports"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co"

	maxResponseBytes      = 1 << 16
	defaultRequestTimeout = 10 * time.Second
)

var (
	ErrAPIKeyRequired = errors.New("alpha vantage api key is required")
	ErrRejected       = errors.New("alpha vantage rejected the request")
)

type globalQuote struct {
	Symbol           string `json:"01. symbol"`
	Price            string `json:"05. price"`
	LatestTradingDay string `json:"07. latest trading day"`
}

type globalQuoteResponse struct {
	Quote        *globalQuote `json:"Global Quote"`
	Note         string       `json:"Note"`
	Information  string       `json:"Information"`
	ErrorMessage string       `json:"Error Message"`
}

// Client calls the GLOBAL_QUOTE function of the Alpha Vantage query API.
type Client struct {
	BaseURL        string
	APIKey         string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	Clock          ports.Clock
}

var _ ports.QuoteSource = Client{}

func (c Client) GlobalQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return domain.Quote{}, ErrAPIKeyRequired
	}

	endpoint, err := c.endpoint(symbol)
	if err != nil {
		return domain.Quote{}, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("create quote request: %w", err)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("request quote: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return domain.Quote{}, fmt.Errorf("request quote: unexpected status %d", resp.StatusCode)
	}

	var payload globalQuoteResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return domain.Quote{}, fmt.Errorf("decode quote response: %w", err)
	}

	// Rate limits and bad keys still answer 200 with a message instead of a quote.
	if payload.Quote == nil {
		message := firstNonEmpty(payload.ErrorMessage, payload.Note, payload.Information, "missing Global Quote")
		return domain.Quote{}, fmt.Errorf("%w: %s", ErrRejected, message)
	}

	zerolog.Ctx(ctx).Debug().
		Str("symbol", payload.Quote.Symbol).
		Str("price", payload.Quote.Price).
		Msg("global quote")

	// An empty Global Quote object still counts as a reply for the symbol.
	return domain.Quote{
		Symbol:           firstNonEmpty(payload.Quote.Symbol, symbol),
		Price:            payload.Quote.Price,
		LatestTradingDay: payload.Quote.LatestTradingDay,
		FetchedAt:        c.now(),
	}, nil
}

func (c Client) endpoint(symbol string) (string, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	endpoint, err := url.JoinPath(base, "query")
	if err != nil {
		return "", fmt.Errorf("build quote url: %w", err)
	}

	values := url.Values{}
	values.Set("function", "GLOBAL_QUOTE")
	values.Set("symbol", symbol)
	values.Set("apikey", c.APIKey)

	return endpoint + "?" + values.Encode(), nil
}

func (c Client) now() time.Time {
	if c.Clock == nil {
		return time.Now().UTC()
	}
	return c.Clock.Now()
}

func (c Client) requestTimeout() time.Duration {
	if c.RequestTimeout > 0 {
		return c.RequestTimeout
	}
	return defaultRequestTimeout
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
