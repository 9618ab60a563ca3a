// Package client is a typed client for the bridge control API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/webinterop/internal/domain/component"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d", e.Status)
	}
	return fmt.Sprintf("server answered %d: %s", e.Status, e.Message)
}

// Status is the answer of GET /status.
type Status struct {
	Components []component.Info     `json:"components"`
	Metrics    *monitoring.Snapshot `json:"metrics,omitempty"`
}

// Config configures a Client.
type Config struct {
	Timeout    time.Duration
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
	// RequestsPerSecond throttles the client. Zero means unlimited.
	RequestsPerSecond float64
	UserAgent         string
}

// DefaultConfig returns the settings used by interopctl.
func DefaultConfig() Config {
	return Config{
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		MinWait:    200 * time.Millisecond,
		MaxWait:    5 * time.Second,
		UserAgent:  "webinterop-client/1.0",
	}
}

// Client talks to one server.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
}

// New creates a client for the server at baseURL.
func New(baseURL string, cfg Config) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.MinWait
	retryClient.RetryWaitMax = cfg.MaxWait
	retryClient.CheckRetry = checkRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = nil

	restyClient := resty.NewWithClient(retryClient.StandardClient())
	restyClient.
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetJSONMarshaler(sonic.Marshal).
		SetJSONUnmarshaler(sonic.Unmarshal)
	if cfg.UserAgent != "" {
		restyClient.SetHeader("User-Agent", cfg.UserAgent)
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return &Client{resty: restyClient, limiter: limiter}
}

// checkRetry retries connection failures and the answers that mean the
// server is temporarily unable to reach a browser.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true, nil
	}
	return false, nil
}

// Status returns the attached components and the server counters.
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var out Status
	if err := c.do(ctx, http.MethodGet, "/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Components lists the attached browser contexts.
func (c *Client) Components(ctx context.Context) ([]component.Info, error) {
	var out struct {
		Components []component.Info `json:"components"`
	}
	if err := c.do(ctx, http.MethodGet, "/components", nil, &out); err != nil {
		return nil, err
	}
	return out.Components, nil
}

// Events returns the notifications of a component after since.
func (c *Client) Events(ctx context.Context, id string, since uint64) ([]component.Event, error) {
	var out struct {
		Events []component.Event `json:"events"`
	}
	path := componentPath(id, "events") + "?since=" + strconv.FormatUint(since, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// GetLocation fetches the position of a component once.
func (c *Client) GetLocation(ctx context.Context, id string, opts *geolocation.PositionOptions) (*geolocation.Result, error) {
	var out geolocation.Result
	if err := c.do(ctx, http.MethodPost, componentPath(id, "geolocation/location"), opts.WireValue(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Watch starts a watch under key and reports whether it was created.
func (c *Client) Watch(ctx context.Context, id, key string) (bool, error) {
	var out struct {
		Created bool `json:"created"`
	}
	if err := c.do(ctx, http.MethodPost, componentPath(id, "geolocation/watches/"+url.PathEscape(key)), nil, &out); err != nil {
		return false, err
	}
	return out.Created, nil
}

// Unwatch stops the watch under key.
func (c *Client) Unwatch(ctx context.Context, id, key string) error {
	return c.do(ctx, http.MethodDelete, componentPath(id, "geolocation/watches/"+url.PathEscape(key)), nil, nil)
}

// AddResizers observes the elements of a component.
func (c *Client) AddResizers(ctx context.Context, id string, ids ...string) error {
	body := map[string][]string{"ids": ids}
	return c.do(ctx, http.MethodPost, componentPath(id, "observer/resizers"), body, nil)
}

// SetLogLevel sets the browser log level of module.
func (c *Client) SetLogLevel(ctx context.Context, id, module string, level interop.LogLevel) error {
	body := map[string]interop.LogLevel{"level": level}
	return c.do(ctx, http.MethodPut, componentPath(id, module+"/log-level"), body, nil)
}

// Log writes a message to the console of a component.
func (c *Client) Log(ctx context.Context, id string, level interop.LogLevel, message string) (bool, error) {
	var out struct {
		Logged bool `json:"logged"`
	}
	body := map[string]any{"level": level, "message": message}
	if err := c.do(ctx, http.MethodPost, componentPath(id, "logger/log"), body, &out); err != nil {
		return false, err
	}
	return out.Logged, nil
}

func componentPath(id, rest string) string {
	return "/components/" + url.PathEscape(id) + "/" + rest
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	apiErr := &APIError{}
	req := c.resty.R().SetContext(ctx).SetError(apiErr)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		return apiErr
	}
	return nil
}
