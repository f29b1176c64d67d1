package resolver

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
	"github.com/gregjones/httpcache"
	"github.com/rs/zerolog"
)

const (
	maxResponseBytes      = 1 << 16
	defaultRequestTimeout = 5 * time.Second
)

var ErrBaseURLRequired = errors.New("resolver base url is required")

type nameResponse struct {
	Name string `json:"name"`
}

type avatarResponse struct {
	URL string `json:"url"`
}

// Client looks up names and avatars from a name service:
//
//	GET {base}/names/{network}/{address}  -> {"name": "..."}
//	GET {base}/avatars/{network}/{name}   -> {"url": "..."}
//
// A 404 means nothing is registered and resolves to "".
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.NameResolver = Client{}

func (c Client) ResolveName(ctx context.Context, address string, network domain.Network) (string, error) {
	var payload nameResponse
	found, err := c.get(ctx, &payload, "names", string(network), address)
	if err != nil || !found {
		return "", err
	}

	return strings.TrimSpace(payload.Name), nil
}

func (c Client) ResolveAvatar(ctx context.Context, name string, network domain.Network) (string, error) {
	var payload avatarResponse
	found, err := c.get(ctx, &payload, "avatars", string(network), name)
	if err != nil || !found {
		return "", err
	}

	return strings.TrimSpace(payload.URL), nil
}

func (c Client) get(ctx context.Context, out any, segments ...string) (bool, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return false, ErrBaseURLRequired
	}

	endpoint, err := url.JoinPath(c.BaseURL, segments...)
	if err != nil {
		return false, fmt.Errorf("build resolver url: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("create resolver request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return false, fmt.Errorf("resolver request %s: %w", segments[0], err)
	}
	defer func() { _ = resp.Body.Close() }()

	zerolog.Ctx(ctx).Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Bool("cached", resp.Header.Get(httpcache.XFromCache) != "").
		Msg("resolver lookup")

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return false, fmt.Errorf("resolver request %s: unexpected status %d", segments[0], resp.StatusCode)
	}

	// The caching transport stores a response once its body hits EOF.
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return false, fmt.Errorf("read resolver response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("decode resolver response: %w", err)
	}

	return true, nil
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
