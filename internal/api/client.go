package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/rickgao/coinsync/internal/auth"
	"github.com/rickgao/coinsync/internal/rest"
)

// Defaults for the shared backoff baseline.
const (
	DefaultInitialDelay = 10 * time.Second
	DefaultBackoffStep  = 500 * time.Millisecond
)

// Endpoint paths relative to the base URL.
const (
	pathCoinsList   = "/api/v3/coins/list"
	pathSimplePrice = "/api/v3/simple/price"
	pathPing        = "/api/v3/ping"
	pathCoin        = "/api/v3/coins/{id}"
)

// Client provides access to the CoinGecko REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	backoff    *rest.Backoff
	limiter    *rate.Limiter
	observer   rest.Observer
	creds      *auth.Credentials
	userAgent  string

	executor *rest.Executor

	coinsList   *rest.Builder
	simplePrice *rest.Builder
	ping        *rest.Builder
	coinDetail  *rest.Builder
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client. baseURL is the scheme and host,
// without the /api/v3 prefix.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.backoff == nil {
		c.backoff = rest.NewBackoff(DefaultInitialDelay, DefaultBackoffStep)
	}

	execOpts := []rest.ExecutorOption{rest.WithLogger(c.logger)}
	if c.limiter != nil {
		execOpts = append(execOpts, rest.WithLimiter(c.limiter))
	}
	if c.observer != nil {
		execOpts = append(execOpts, rest.WithObserver(c.observer))
	}
	if c.userAgent != "" {
		execOpts = append(execOpts, rest.WithUserAgent(c.userAgent))
	}
	c.executor = rest.NewExecutor(c.httpClient, c.backoff, execOpts...)

	c.declare()
	return c
}

// declare builds the endpoint templates. A failing template is a programmer
// error, so MustBuild is used to check each one up front.
func (c *Client) declare() {
	base := rest.NewBuilder().SetBaseURL(c.baseURL)
	if c.creds != nil {
		base.SetConfigure(c.creds.Configure)
	}

	c.coinsList = base.Clone().
		SetPath(pathCoinsList).
		AddParam(rest.Prevalue("include_platform", "true")).
		SetTransform(rest.Transform(wrapCoins))

	c.simplePrice = base.Clone().
		SetPath(pathSimplePrice).
		AddParam(rest.Required("ids")).
		AddParam(rest.Prevalue("vs_currencies", "usd")).
		AddParam(rest.Prevalue("precision", "18")).
		AddParam(rest.Prevalue("include_last_updated_at", "true")).
		AddParam(rest.Prevalue("include_market_cap", "true")).
		SetTransform(rest.Transform(wrapRates))

	c.ping = base.Clone().
		SetPath(pathPing).
		SetTransform(rest.Transform(wrapPing))

	c.coinDetail = base.Clone().
		SetPath(pathCoin).
		AddRouteParam(rest.Route("id")).
		AddQueryParam(rest.Prevalue("localization", "false")).
		AddQueryParam(rest.Prevalue("tickers", "false")).
		AddQueryParam(rest.Prevalue("market_data", "true")).
		AddQueryParam(rest.Prevalue("community_data", "false")).
		AddQueryParam(rest.Prevalue("developer_data", "false")).
		AddQueryParam(rest.Prevalue("sparkline", "false")).
		SetTransform(rest.Transform(wrapCoin))

	for _, b := range []*rest.Builder{c.coinsList, c.simplePrice, c.ping, c.coinDetail} {
		b.MustBuild()
	}
}

// Backoff returns the baseline shared by every call of this client.
func (c *Client) Backoff() *rest.Backoff {
	return c.backoff
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBackoff shares b as the ban baseline.
func WithBackoff(b *rest.Backoff) ClientOption {
	return func(c *Client) {
		c.backoff = b
	}
}

// WithRateLimit caps outbound requests per minute. Zero disables the cap.
func WithRateLimit(perMinute int) ClientOption {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
}

// WithObserver reports per-request events, typically to metrics.
func WithObserver(o rest.Observer) ClientOption {
	return func(c *Client) {
		c.observer = o
	}
}

// WithCredentials attaches the plan's API key header to every request.
func WithCredentials(creds *auth.Credentials) ClientOption {
	return func(c *Client) {
		c.creds = creds
	}
}

// WithUserAgent overrides the default User-Agent.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}
