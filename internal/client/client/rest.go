package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/common"
	"github.com/dmitrijs2005/maintkeeper/internal/logging"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	restPrefix    = "/rest/v1/"
	authPrefix    = "/auth/v1/"
	storagePrefix = "/storage/v1/object/"

	contentTypeJSON = "application/json"
)

// Options configure a RESTClient.
type Options struct {
	BaseURL string
	APIKey  string
	// Timeout bounds a single request. Zero means no timeout.
	Timeout time.Duration
	// RequestsPerSecond limits outbound requests. Zero means unlimited.
	RequestsPerSecond float64
	Logger            logging.Logger
}

// RESTClient performs authenticated requests against the remote store.
type RESTClient struct {
	http    *resty.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	log     logging.Logger
}

// Request describes one call. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Token is the bearer credential. When empty the API key is sent instead.
	Token string
	// Body is encoded as JSON unless RawBody is set.
	Body        any
	RawBody     []byte
	ContentType string
	// ReturnRepresentation asks the store to echo written rows.
	ReturnRepresentation bool
	// Result, when non-nil, receives the decoded JSON response.
	Result any
}

func NewRESTClient(opts Options) *RESTClient {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	base := strings.TrimRight(opts.BaseURL, "/")

	h := resty.New().
		SetBaseURL(base).
		SetHeader("Accept", contentTypeJSON)
	if opts.Timeout > 0 {
		h.SetTimeout(opts.Timeout)
	}

	c := &RESTClient{http: h, baseURL: base, apiKey: opts.APIKey, log: log}
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *RESTClient) BaseURL() string { return c.baseURL }

// TablePath returns the REST path of a table.
func TablePath(table string) string { return restPrefix + table }

// Do sends req and decodes the response into req.Result.
func (c *RESTClient) Do(ctx context.Context, req Request) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.mapError(err)
		}
	}

	bearer := req.Token
	if bearer == "" {
		bearer = c.apiKey
	}

	r := c.http.R().
		SetContext(ctx).
		SetHeader(common.APIKeyHeaderName, c.apiKey).
		SetHeader(common.AuthorizationHeaderName, "Bearer "+bearer)
	if req.ReturnRepresentation {
		r.SetHeader(common.PreferHeaderName, common.PreferReturnRepresentation)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}

	switch {
	case req.RawBody != nil:
		ct := req.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		r.SetHeader("Content-Type", ct).SetBody(req.RawBody)
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		r.SetHeader("Content-Type", contentTypeJSON).SetBody(data)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	resp, err := r.Execute(method, req.Path)
	if err != nil {
		c.log.Warn(ctx, "remote request failed", "method", method, "path", req.Path, "error", err)
		return c.mapError(err)
	}

	c.log.Debug(ctx, "remote request", "method", method, "path", req.Path, "status", resp.StatusCode())

	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		apiErr := parseAPIError(resp.StatusCode(), resp.Body())
		c.log.Warn(ctx, "remote request rejected", "method", method, "path", req.Path,
			"status", apiErr.Status, "code", apiErr.Code, "message", apiErr.Message)
		return apiErr
	}

	if req.Result == nil {
		return nil
	}
	body := resp.Body()
	if len(body) == 0 {
		return common.ErrEmptyResponse
	}
	if err := json.Unmarshal(body, req.Result); err != nil {
		return fmt.Errorf("%w: decode response: %w", common.ErrRemoteRequestFailed, err)
	}
	return nil
}

// EqFilter builds a PostgREST equality filter value.
func EqFilter(v string) string { return "eq." + v }
