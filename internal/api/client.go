// Package api is the client for the Ferroscope monitoring backend.
//
// Every call is a single POST with no retry or caching. A 401 from any
// authenticated endpoint is published to the configured AuthSink and the
// call returns its empty value with a nil error.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ferroscope/ferro/internal/errors"
	"github.com/ferroscope/ferro/internal/logger"
	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request id for correlating backend logs.
const RequestIDHeader = "X-Request-ID"

// TokenSource supplies the current auth token. It is consulted on every
// request so a token cleared by one call is never sent by a later one.
type TokenSource interface {
	Token() string
}

// AuthSink receives the global "session is no longer valid" signal along
// with the token the rejected request carried.
type AuthSink interface {
	Unauthorized(token string)
}

// StaticToken is a TokenSource for a fixed token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() string { return string(s) }

// Client talks to the monitoring API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	sink    AuthSink
	log     logger.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithTokenSource sets where the Authorization header comes from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithAuthSink sets the receiver for 401 responses.
func WithAuthSink(s AuthSink) Option {
	return func(c *Client) { c.sink = s }
}

// WithLogger sets the client's logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithClock overrides the time source used for default timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a client for baseURL (for example http://host:9000/view).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		tokens:  StaticToken(""),
		log:     logger.NewEnvLogger("[api]"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// ListNodes returns the fleet's node list.
func (c *Client) ListNodes(ctx context.Context) ([]Node, error) {
	var nodes []Node
	if _, err := c.call(ctx, request{endpoint: EndpointNodeList}, &nodes); err != nil {
		return nil, err
	}
	return orEmpty(nodes), nil
}

// LatestCPU returns the node's latest CPU reading, or a zero reading stamped
// with the current time when the backend has none.
func (c *Client) LatestCPU(ctx context.Context, nodeID int) (CPUSample, error) {
	var raw cpuStatRaw
	found, err := c.call(ctx, nodeRequest(EndpointLatestCPU, nodeID), &raw)
	if err != nil {
		return CPUSample{}, err
	}
	if !found {
		return CPUSample{CPU: 0, Timestamp: c.isoNow()}, nil
	}
	s := raw.sample()
	if s.Timestamp == "" {
		s.Timestamp = c.isoNow()
	}
	return s, nil
}

// LatestRAM returns the node's latest memory reading, or nil.
func (c *Client) LatestRAM(ctx context.Context, nodeID int) (*RAMSample, error) {
	var s RAMSample
	found, err := c.call(ctx, nodeRequest(EndpointLatestRAM, nodeID), &s)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

// CPUHistory returns past CPU readings, newest first.
func (c *Client) CPUHistory(ctx context.Context, nodeID int) ([]CPUSample, error) {
	var raw []cpuStatRaw
	if _, err := c.call(ctx, nodeRequest(EndpointCPUStat, nodeID), &raw); err != nil {
		return nil, err
	}
	out := make([]CPUSample, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.sample())
	}
	return out, nil
}

// RAMHistory returns past memory readings, newest first.
func (c *Client) RAMHistory(ctx context.Context, nodeID int) ([]RAMSample, error) {
	var samples []RAMSample
	if _, err := c.call(ctx, nodeRequest(EndpointRAMStat, nodeID), &samples); err != nil {
		return nil, err
	}
	return orEmpty(samples), nil
}

// NodeServices returns the services registered for a node.
func (c *Client) NodeServices(ctx context.Context, nodeID int) ([]Service, error) {
	var services []Service
	if _, err := c.call(ctx, nodeRequest(EndpointNodeServices, nodeID), &services); err != nil {
		return nil, err
	}
	return orEmpty(services), nil
}

// ServiceStatus returns the current health of each service on a node.
func (c *Client) ServiceStatus(ctx context.Context, nodeID int) ([]ServiceStatus, error) {
	var statuses []ServiceStatus
	if _, err := c.call(ctx, nodeRequest(EndpointServiceStatus, nodeID), &statuses); err != nil {
		return nil, err
	}
	return orEmpty(statuses), nil
}

// NodeInfo returns node metadata, or nil.
func (c *Client) NodeInfo(ctx context.Context, nodeID int) (*NodeInfo, error) {
	var info NodeInfo
	found, err := c.call(ctx, nodeRequest(EndpointNodeInfo, nodeID), &info)
	if err != nil || !found {
		return nil, err
	}
	return &info, nil
}

// Login exchanges credentials for a token. A 401 is returned as an AUTH
// error; an empty or 204 response returns nil.
func (c *Client) Login(ctx context.Context, creds LoginCredentials) (*LoginResponse, error) {
	var resp LoginResponse
	found, err := c.call(ctx, request{endpoint: EndpointLogin, body: creds, public: true}, &resp)
	if err != nil || !found {
		return nil, err
	}
	return &resp, nil
}

type request struct {
	endpoint string
	query    url.Values
	body     any
	// public requests carry no token and never publish 401s.
	public bool
}

func nodeRequest(endpoint string, nodeID int) request {
	return request{
		endpoint: endpoint,
		query:    url.Values{"node": []string{strconv.Itoa(nodeID)}},
	}
}

// call performs req and decodes a 2xx body into out. It reports false when
// the response carried no data: 401, 204, an empty body, or JSON null.
func (c *Client) call(ctx context.Context, req request, out any) (bool, error) {
	token := ""
	if !req.public {
		token = c.tokens.Token()
	}
	httpReq, err := c.newRequest(ctx, req, token)
	if err != nil {
		return false, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, errors.WrapWithCode(err, errors.ErrNetwork,
			fmt.Sprintf("Request to %s failed", req.endpoint),
			"Check that the monitoring API is reachable at "+c.baseURL)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		if req.public {
			c.log.Debug("%s rejected credentials", req.endpoint)
			authErr := errors.New(errors.ErrAuth, "Invalid credentials", "Check your username and password")
			authErr.Status = resp.StatusCode
			return false, authErr
		}
		c.log.Debug("%s returned 401, ending session", req.endpoint)
		if c.sink != nil {
			c.sink.Unauthorized(token)
		}
		return false, nil

	case resp.StatusCode == http.StatusNoContent:
		return false, nil

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return false, errors.NewServer(resp.StatusCode, serverMessage(resp.Body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, errors.WrapWithCode(err, errors.ErrNetwork,
			fmt.Sprintf("Reading %s response failed", req.endpoint), "")
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false, nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		fErr := errors.WrapWithCode(err, errors.ErrServer,
			fmt.Sprintf("Malformed response from %s", req.endpoint), "")
		fErr.Status = resp.StatusCode
		return false, fErr
	}
	return true, nil
}

func (c *Client) newRequest(ctx context.Context, req request, token string) (*http.Request, error) {
	target := c.baseURL + "/" + req.endpoint
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrNetwork, "Encoding request body failed", "")
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, target, body)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid API URL: "+target,
			"Check api.url in your config")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(RequestIDHeader, uuid.NewString())
	if !req.public {
		httpReq.Header.Set("Authorization", token)
	}
	return httpReq, nil
}

// serverMessage pulls the "message" field out of an error body, if any.
func serverMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil {
		return ""
	}
	if json.Unmarshal(data, &payload) != nil {
		return ""
	}
	return payload.Message
}

func (c *Client) isoNow() string {
	return c.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
