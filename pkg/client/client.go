// Package client is the remote side of the bridge. It POSTs action
// requests to the host-side server and classifies every transport
// failure into the shared taxonomy, so its caller always receives the
// one envelope shape and never sees a raw transport error.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fusionlink/fusionlink/internal/logging"
	"github.com/fusionlink/fusionlink/pkg/domain"
)

const (
	// DefaultHost is where the host-side server listens.
	DefaultHost = "localhost"
	// DefaultPort matches bridge.DefaultPort.
	DefaultPort = 3600
	// DefaultTimeout bounds one action call. The host-side executor
	// has no timeout of its own; a hung host surfaces here.
	DefaultTimeout = 10 * time.Second
)

// Remediation texts for transport failures. The remote caller cannot
// see host-side logs, so the messages say what to do, not just what
// broke.
const (
	connectionErrorMessage = "Cannot connect to the Fusion add-in bridge. Ask the user to check that the add-in is running."
	timeoutErrorMessage    = "The host took too long to respond. The operation may be complex or the host may be busy. Break complex operations into smaller steps."
	parseErrorMessage      = "Received an invalid response from the host. This may indicate a version mismatch. Ask the user to check that the bridge is up to date."
)

// Client calls bridge actions over HTTP.
type Client struct {
	host   string
	port   int
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAddr points the client at a non-default server address.
func WithAddr(host string, port int) Option {
	return func(c *Client) {
		c.host = host
		c.port = port
	}
}

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = timeout
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client with the default loopback target.
func New(opts ...Option) *Client {
	c := &Client{
		host:   DefaultHost,
		port:   DefaultPort,
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL is the server address the client dials.
func (c *Client) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.host, c.port)
}

// CallAction performs one POST to /{name} with params as the JSON
// body and normalizes every outcome into an envelope:
//
//   - HTTP 200 with success:true  -> the envelope as received
//   - HTTP 200 with success:false -> the embedded error, untouched
//   - HTTP non-200               -> the embedded error, or one noting the status
//   - transport failure          -> a client-side taxonomy error
//
// The caller branches on envelope.Success and envelope.Error.Type,
// never on a Go error.
func (c *Client) CallAction(ctx context.Context, name string, params map[string]any) domain.Envelope {
	if params == nil {
		params = map[string]any{}
	}
	url := fmt.Sprintf("%s/%s", c.BaseURL(), name)
	c.logger.Info("calling action", "action", name, "url", url)

	body, err := json.Marshal(params)
	if err != nil {
		return domain.Fail(domain.NewRequestError(fmt.Sprintf("Cannot encode parameters for action '%s': %v", name, err)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return domain.Fail(domain.NewRequestError(fmt.Sprintf("Cannot build request for action '%s': %v", name, err)))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return c.classifyTransportError(name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.classifyTransportError(name, err)
	}

	var env domain.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.logger.Error("failed to decode response", "action", name, "err", err)
		return domain.Fail(domain.NewResponseParseError(parseErrorMessage))
	}

	if resp.StatusCode == http.StatusOK {
		if env.Success {
			return env
		}
		// Logical error from the server: pass it through untouched.
		c.logger.Error("action failed", "action", name, "error", env.Error)
		if env.Error == nil {
			return domain.FailWith(domain.TypeUnknownError, "An unknown error occurred")
		}
		return domain.FailWith(env.Error.Type, env.Error.Message)
	}

	c.logger.Error("action failed with HTTP error", "action", name, "status", resp.StatusCode)
	errType := domain.TypeInternalServerError
	message := fmt.Sprintf("Server returned status %d", resp.StatusCode)
	if env.Error != nil {
		if env.Error.Type != "" {
			errType = env.Error.Type
		}
		if env.Error.Message != "" {
			message = env.Error.Message
		}
	}
	return domain.FailWith(errType, message)
}

// classifyTransportError folds a transport failure into the taxonomy
// with actionable remediation text.
func (c *Client) classifyTransportError(action string, err error) domain.Envelope {
	switch {
	case isTimeout(err):
		c.logger.Error("request timed out", "action", action, "err", err)
		return domain.Fail(domain.NewTimeoutError(timeoutErrorMessage))
	case isConnectionRefused(err):
		c.logger.Error("connection failed, is the add-in running?", "action", action, "err", err)
		return domain.Fail(domain.NewConnectionError(connectionErrorMessage))
	default:
		c.logger.Error("request failed", "action", action, "err", err)
		return domain.Fail(domain.NewRequestError(
			fmt.Sprintf("Network error while communicating with the host bridge: %v. Ask the user to check that the host is reachable.", err)))
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isConnectionRefused covers refused and unreachable dials.
func isConnectionRefused(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
