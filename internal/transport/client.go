// Package transport streams assistant replies from a server-sent events
// endpoint and reports them through a callback Handler.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"

	"github.com/diogo/streamchat/internal/conversation"
	apierrors "github.com/diogo/streamchat/internal/errors"
	"github.com/diogo/streamchat/internal/models"
)

// maxErrorBody limits how much of a failed response is kept for diagnostics
const maxErrorBody = 4096

// HTTPDoer is the subset of tls_client.HttpClient used by Client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client opens one event stream per turn
type Client struct {
	endpoint   string
	httpClient HTTPDoer
	headers    map[string]string
	timeout    time.Duration
	logger     zerolog.Logger
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient replaces the default TLS client
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithHeaders adds headers to every request
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// WithTimeout sets the overall request timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the given streaming endpoint
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	if endpoint == "" {
		return nil, apierrors.ErrNoEndpoint
	}

	client := &Client{
		endpoint: endpoint,
		headers:  models.DefaultHeaders(),
		timeout:  300 * time.Second,
		logger:   zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	client.logger = client.logger.With().Str("endpoint", endpoint).Logger()

	return client, nil
}

// Endpoint returns the streaming endpoint
func (c *Client) Endpoint() string {
	return c.endpoint
}

// turnPayload is the JSON body that starts a turn
type turnPayload struct {
	Message    string `json:"message"`
	SequenceID int    `json:"sequenceId"`
	SessionID  string `json:"sessionId,omitempty"`
}

// StreamTurn posts the user message and feeds the event stream to h.
//
// Exactly one terminal callback is made. Transport failures, non-2xx
// responses, and streams that end without a terminal event all arrive as
// OnFailure; the same error is returned. A server-sent final message or end
// of turn returns nil.
func (c *Client) StreamTurn(ctx context.Context, req conversation.TurnRequest, h Handler) error {
	logger := c.logger.With().
		Str("session_id", req.SessionID).
		Int("turn_id", req.TurnID).
		Int("sequence_id", req.SequenceID).
		Logger()

	fail := func(err error) error {
		logger.Warn().Err(err).Msg("Turn failed")
		h.OnFailure(err)
		return err
	}

	body, err := json.Marshal(turnPayload{
		Message:    req.Text,
		SequenceID: req.SequenceID,
		SessionID:  req.SessionID,
	})
	if err != nil {
		return fail(fmt.Errorf("failed to encode request: %w", err))
	}

	httpReq, err := http.NewRequest(http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq = httpReq.WithContext(ctx)

	for key, value := range c.headers {
		httpReq.Header.Set(key, value)
	}
	if req.SessionID != "" {
		httpReq.Header.Set(models.HeaderSessionID, req.SessionID)
	}
	httpReq.Header.Set(models.HeaderSequence, fmt.Sprintf("%d", req.SequenceID))

	logger.Debug().Msg("Opening stream")
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fail(apierrors.NewNetworkError("open stream", c.endpoint, err))
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fail(apierrors.NewAPIErrorWithBody(resp.StatusCode, c.endpoint, "stream request failed", string(errorBody)))
	}

	var (
		events      int
		terminated  bool
		terminalErr error
	)

	readErr := readFrames(resp.Body, func(f frame) error {
		ev, err := decodeEvent(f)
		if err != nil {
			logger.Warn().Err(err).Str("event", f.Event).Msg("Skipping undecodable event")
			return nil
		}
		if ev == nil {
			logger.Debug().Str("event", f.Event).Msg("Skipping unknown event")
			return nil
		}

		events++
		Dispatch(h, ev)

		if conversation.IsTerminal(ev) {
			terminated = true
			if fe, ok := ev.(conversation.FailureEvent); ok {
				terminalErr = fe.Err
			}
			return errStop
		}
		return nil
	})

	logger.Debug().
		Int("events", events).
		Dur("elapsed", time.Since(start)).
		Bool("terminated", terminated).
		Msg("Stream finished")

	if terminated {
		return terminalErr
	}
	if readErr != nil {
		return fail(apierrors.NewNetworkError("read stream", c.endpoint, readErr))
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fail(apierrors.NewNetworkError("read stream", c.endpoint, ctxErr))
	}
	return fail(&apierrors.StreamError{Err: apierrors.ErrStreamClosed})
}
