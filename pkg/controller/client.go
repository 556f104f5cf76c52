package controller

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	srvErrors "github.com/cyperf-demos/pan-demo-setup/pkg/errors"
)

const (
	DefaultTimeout = 60 * time.Second
	apiPrefix      = "/api/v2"
)

// RequestEditorFn is called on every request before it is sent.
type RequestEditorFn func(ctx context.Context, req *http.Request) error

type ClientOption func(*Client) error

// WithHTTPClient replaces the default client, which skips TLS verification.
func WithHTTPClient(doer *http.Client) ClientOption {
	return func(c *Client) error {
		c.httpClient = doer
		return nil
	}
}

func WithRequestEditorFn(fn RequestEditorFn) ClientOption {
	return func(c *Client) error {
		c.requestEditors = append(c.requestEditors, fn)
		return nil
	}
}

func WithCredentials(user, password string) ClientOption {
	return func(c *Client) error {
		c.user = user
		c.password = password
		return nil
	}
}

// WithEULA sets how an unaccepted EULA is handled. With interactive the user
// is asked on out and answers on in; otherwise CYPERF_EULA_ACCEPTED decides.
func WithEULA(interactive bool, in io.Reader, out io.Writer) ClientOption {
	return func(c *Client) error {
		c.eula = eulaPolicy{interactive: interactive, in: in, out: out}
		return nil
	}
}

// Client talks to the controller REST API.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	requestEditors []RequestEditorFn

	user     string
	password string
	eula     eulaPolicy

	mu           sync.Mutex
	token        string
	tokenExpires time.Time
	eulaAccepted bool
}

// NewClient creates a client for the controller at address, which is either a
// host or a full URL. A bare host is reached over https.
func NewClient(address string, opts ...ClientOption) (*Client, error) {
	baseURL := address
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid controller address %q: %w", address, err)
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				// The controller serves a self-signed certificate.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
			},
		},
	}
	for _, o := range opts {
		if err := o(c); err != nil {
			return nil, fmt.Errorf("failed to initialize controller client: %w", err)
		}
	}
	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// resource names what a request is about so a 404 can be reported precisely.
type resource struct {
	kind string
	id   string
}

type request struct {
	operation   string
	method      string
	path        string
	query       url.Values
	body        any
	contentType string
	rawBody     []byte
	target      resource
	anonymous   bool
}

// do sends the request and decodes a JSON response into out when out is not nil.
func (c *Client) do(ctx context.Context, r request, out any) error {
	resp, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && !r.anonymous {
		// The token may have expired between two calls.
		resp.Body.Close()
		c.resetToken()
		resp, err = c.send(ctx, r)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
	}

	if err := c.checkStatus(r, resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return srvErrors.NewServiceUnavailableError(0, err.Error())
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode response of %s: %w", r.operation, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	u := c.baseURL + r.path
	if strings.Contains(r.path, "://") {
		u = r.path
	}
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	contentType := r.contentType
	switch {
	case r.rawBody != nil:
		body = bytes.NewReader(r.rawBody)
	case r.body != nil:
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request of %s: %w", r.operation, err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if !r.anonymous {
		token, err := c.authorize(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, edit := range c.requestEditors {
		if err := edit(ctx, req); err != nil {
			return nil, err
		}
	}

	zap.S().Named("controller_client").Debugw("request", "operation", r.operation, "method", r.method, "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Connection refused or reset while the controller boots.
		return nil, srvErrors.NewServiceUnavailableError(0, err.Error())
	}
	return resp, nil
}

func (c *Client) checkStatus(r request, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := errorMessage(resp)
	switch {
	case resp.StatusCode >= 500:
		return srvErrors.NewServiceUnavailableError(resp.StatusCode, msg)
	case resp.StatusCode == http.StatusNotFound:
		kind, id := r.target.kind, r.target.id
		if kind == "" {
			kind = "resource"
			id = r.path
		}
		return srvErrors.NewResourceNotFoundError(kind, id)
	default:
		return srvErrors.NewRemoteCallError(r.operation, resp.StatusCode, msg)
	}
}

type apiError struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Error   string `json:"error"`
}

func errorMessage(resp *http.Response) string {
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(payload) == 0 {
		return resp.Status
	}
	var e apiError
	if err := json.Unmarshal(payload, &e); err == nil {
		for _, m := range []string{e.Message, e.Detail, e.Error} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(payload))
}
