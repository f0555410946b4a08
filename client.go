// Package maxbot is a client for the MAX bot platform HTTP API
// with a resumable long polling update pipeline.
package maxbot

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"

	"github.com/jfk9w/maxbot/api"
	"github.com/jfk9w/maxbot/internal/logx"
)

const (
	DefaultBaseURL    = "https://botapi.max.ru"
	DefaultPollSlack  = 10 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = 500 * time.Millisecond

	maxLoggedBody = 512
)

type ClientOptions struct {

	// BaseURL is the platform API root. Default is DefaultBaseURL.
	BaseURL string

	// HTTPClient executes requests. Default is http.DefaultClient.
	HTTPClient *http.Client

	// PollSlack is added to the long polling timeout to get the request deadline.
	PollSlack time.Duration

	// Retries is the number of attempts for idempotent requests.
	Retries uint

	// RetryDelay is the initial delay between attempts of idempotent requests.
	RetryDelay time.Duration
}

// Client executes platform API requests authenticated with the bot access token.
type Client struct {
	token   string
	baseURL *url.URL
	http    *http.Client
	options ClientOptions
}

func NewClient(token string, options ClientOptions) (*Client, error) {
	if token == "" {
		return nil, errors.New("access token is empty")
	}

	if options.BaseURL == "" {
		options.BaseURL = DefaultBaseURL
	}

	if options.HTTPClient == nil {
		options.HTTPClient = http.DefaultClient
	}

	if options.PollSlack <= 0 {
		options.PollSlack = DefaultPollSlack
	}

	if options.Retries == 0 {
		options.Retries = DefaultRetries
	}

	if options.RetryDelay <= 0 {
		options.RetryDelay = DefaultRetryDelay
	}

	baseURL, err := url.Parse(options.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}

	return &Client{
		token:   token,
		baseURL: baseURL,
		http:    options.HTTPClient,
		options: options,
	}, nil
}

func (c *Client) String() string {
	return "client"
}

func log() logx.Ptr {
	return logx.Get("client")
}

// Execute performs an API request. Body is encoded as JSON when not nil,
// the response is decoded into resp when not nil.
// GET requests are retried on transport errors, rate limiting and server errors.
func (c *Client) Execute(ctx context.Context, method, path string, query url.Values, body, resp interface{}) error {
	if method != http.MethodGet {
		return c.execute(ctx, method, path, query, body, resp)
	}

	return retry.Do(
		func() error { return c.execute(ctx, method, path, query, body, resp) },
		retry.Context(ctx),
		retry.Attempts(c.options.Retries),
		retry.Delay(c.options.RetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTemporary),
		retry.OnRetry(func(n uint, err error) {
			log().Debugf("retry [%s %s]: attempt %d: %v", method, path, n+1, err)
		}),
	)
}

func (c *Client) execute(ctx context.Context, method, path string, query url.Values, body, resp interface{}) error {
	err := c.exchange(ctx, method, path, query, body, resp)
	if err != nil {
		log().Warnf("execute [%s %s]: %v", method, path, err)
	} else {
		log().Tracef("execute [%s %s]: ok", method, path)
	}

	return err
}

func (c *Client) exchange(ctx context.Context, method, path string, query url.Values, body, resp interface{}) error {
	values := make(url.Values, len(query)+1)
	for key, value := range query {
		values[key] = value
	}

	values.Set("access_token", c.token)

	endpoint := c.baseURL.JoinPath(path)
	endpoint.RawQuery = values.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return errors.Wrap(err, "create request")
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: stripURL(err)}
	}

	defer httpResp.Body.Close()
	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: stripURL(err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return newAPIError(httpResp, data)
	}

	if resp == nil {
		return nil
	}

	if err := json.Unmarshal(data, resp); err != nil {
		return &DecodeError{Path: path, Body: snippet(data), Err: err}
	}

	return nil
}

func newAPIError(resp *http.Response, data []byte) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body api.Error
	if err := json.Unmarshal(data, &body); err == nil && (body.Code != "" || body.Message != "") {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	} else {
		apiErr.Message = snippet(data)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}

	if value := resp.Header.Get("Retry-After"); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			apiErr.RetryAfter = time.Duration(seconds) * time.Second
		}
	}

	return apiErr
}

// stripURL removes the request URL from the error since it contains the access token.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}

	return err
}

func snippet(data []byte) string {
	if len(data) > maxLoggedBody {
		return string(data[:maxLoggedBody]) + "..."
	}

	return string(data)
}
