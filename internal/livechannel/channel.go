package livechannel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/click2print/orderdesk/internal/auth"
	"github.com/click2print/orderdesk/internal/connection"
	"github.com/click2print/orderdesk/internal/metrics"
	"github.com/click2print/orderdesk/internal/router"
)

// State is the channel lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosed     State = "closed"
	StateStopped    State = "stopped"
)

var (
	// ErrAuthenticationFailed means no usable bearer token was available, or
	// the server rejected it.
	ErrAuthenticationFailed = errors.New("authentication failed")

	ErrClosed         = errors.New("live channel closed")
	ErrAlreadyStarted = errors.New("live channel already started")
)

// Config configures a Channel.
type Config struct {
	// BaseURL is the HTTP API base the socket URL is derived from.
	BaseURL string

	// Path is appended to BaseURL. Default: DefaultPath.
	Path string

	ReconnectBaseDelay time.Duration // Default: 3s
	ReconnectMaxDelay  time.Duration // Default: 1m

	// Client tunes each socket. Its URL is ignored.
	Client connection.ClientConfig
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Path:               DefaultPath,
		ReconnectBaseDelay: 3 * time.Second,
		ReconnectMaxDelay:  time.Minute,
		Client:             connection.DefaultClientConfig(),
	}
}

// Option configures a Channel.
type Option func(*Channel)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Channel) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records state changes, attempts and dropped frames.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Channel) {
		c.metrics = m
	}
}

// Channel is a self-healing subscription to the monitoring socket.
type Channel struct {
	cfg     Config
	tokens  auth.TokenSource
	router  *router.Router
	backoff Backoff
	logger  *slog.Logger
	metrics *metrics.Metrics

	errors chan error
	wake   chan struct{}
	wg     sync.WaitGroup

	mu        sync.Mutex
	state     State
	started   bool
	closed    bool
	cancel    context.CancelFunc
	client    connection.Client
	closeOnce sync.Once
}

// New creates an idle Channel. Nothing is dialed until Start.
func New(cfg Config, tokens auth.TokenSource, opts ...Option) *Channel {
	defaults := DefaultConfig()
	if cfg.Path == "" {
		cfg.Path = defaults.Path
	}
	if cfg.ReconnectBaseDelay <= 0 {
		cfg.ReconnectBaseDelay = defaults.ReconnectBaseDelay
	}
	if cfg.ReconnectMaxDelay <= 0 {
		cfg.ReconnectMaxDelay = defaults.ReconnectMaxDelay
	}

	c := &Channel{
		cfg:     cfg,
		tokens:  tokens,
		backoff: Backoff{Base: cfg.ReconnectBaseDelay, Max: cfg.ReconnectMaxDelay},
		logger:  slog.Default(),
		errors:  make(chan error, 16),
		wake:    make(chan struct{}, 1),
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.router = router.New(c.logger, c.metrics)
	return c
}

// Start begins connecting in the background. The channel stops for good when
// ctx is done or Close is called.
func (c *Channel) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.started {
		return ErrAlreadyStarted
	}
	c.started = true

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	logger := c.logger.With("session", uuid.NewString())

	c.wg.Add(1)
	go c.run(runCtx, logger)

	return nil
}

// Close stops the channel: pending reconnects are cancelled and the socket is
// closed. It waits for the background goroutine, then closes Errors. Calling
// it again does nothing.
func (c *Channel) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		cancel := c.cancel
		client := c.client
		c.client = nil
		c.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if client != nil {
			client.Close()
		}

		c.wg.Wait()
		c.setState(StateStopped)
		close(c.errors)
		c.logger.Info("live channel stopped")
	})
	return nil
}

// Reconnect wakes a channel waiting for a token or for its backoff timer. It
// has no effect while connecting or open.
func (c *Channel) Reconnect() {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	if state != StateClosed {
		return
	}
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Subscribe registers h for frames of eventType. See router.Router.Subscribe.
func (c *Channel) Subscribe(eventType string, h router.Handler) (unsubscribe func()) {
	return c.router.Subscribe(eventType, h)
}

// Types lists the event types that have handlers.
func (c *Channel) Types() []string {
	return c.router.Types()
}

// Send writes data when the socket is open and reports whether it did.
// Nothing is queued for later.
func (c *Channel) Send(data []byte) bool {
	c.mu.Lock()
	client := c.client
	open := c.state == StateOpen
	c.mu.Unlock()

	if !open || client == nil {
		c.metrics.SendDropped()
		return false
	}
	if err := client.Send(data); err != nil {
		c.logger.Debug("send failed", "error", err)
		c.metrics.SendDropped()
		return false
	}
	return true
}

// Status returns the current state.
func (c *Channel) Status() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether the socket is open.
func (c *Channel) IsConnected() bool {
	return c.Status() == StateOpen
}

// Errors returns socket and authentication errors. Errors are dropped when
// nobody reads them. The channel is closed by Close.
func (c *Channel) Errors() <-chan error {
	return c.errors
}

// RouterStats returns dispatch statistics.
func (c *Channel) RouterStats() router.Stats {
	return c.router.Stats()
}

func (c *Channel) run(ctx context.Context, logger *slog.Logger) {
	defer c.wg.Done()
	defer c.setState(StateStopped)

	attempt := 0
	for ctx.Err() == nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			if !errors.Is(err, auth.ErrNoToken) {
				c.fail(logger, err)
				if !c.sleep(ctx, c.backoff.Delay(attempt)) {
					return
				}
				attempt++
				continue
			}
			c.authFailed(logger, err)
			if !c.waitForWake(ctx) {
				return
			}
			continue
		}

		endpoint, err := EndpointURL(c.cfg.BaseURL, c.cfg.Path, token)
		if err != nil {
			// A bad base URL will not fix itself.
			c.fail(logger, err)
			if !c.waitForWake(ctx) {
				return
			}
			continue
		}

		c.setState(StateConnecting)
		c.metrics.ConnectAttempt()

		clientCfg := c.cfg.Client
		clientCfg.URL = endpoint
		client := connection.NewClient(clientCfg, logger)

		if err := client.Connect(ctx); err != nil {
			client.Close()
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, connection.ErrUnauthorized) {
				c.authFailed(logger, err)
				if !c.waitForWake(ctx) {
					return
				}
				continue
			}
			c.fail(logger, err)
			delay := c.backoff.Delay(attempt)
			logger.Warn("connect failed, retrying", "error", err, "attempt", attempt+1, "delay", delay)
			if !c.sleep(ctx, delay) {
				return
			}
			attempt++
			continue
		}

		if !c.open(client) {
			client.Close()
			return
		}
		attempt = 0
		logger.Info("live channel open", "url", connection.RedactURL(endpoint))

		err = c.pump(ctx, client)
		c.drop(client)
		if ctx.Err() != nil {
			return
		}

		c.fail(logger, err)
		c.metrics.Reconnected()
		delay := c.backoff.Delay(attempt)
		logger.Warn("live channel closed, reconnecting", "error", err, "delay", delay)
		if !c.sleep(ctx, delay) {
			return
		}
		attempt++
	}
}

// pump routes frames until the socket fails or ctx is done. Frames read
// before the failure are dispatched before pump returns.
func (c *Channel) pump(ctx context.Context, client connection.Client) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-client.Errors():
			c.drain(client)
			return err
		case msg := <-client.Messages():
			c.router.Dispatch(msg)
		}
	}
}

// drain dispatches whatever the client had already queued.
func (c *Channel) drain(client connection.Client) {
	for {
		select {
		case msg := <-client.Messages():
			c.router.Dispatch(msg)
		default:
			return
		}
	}
}

// open publishes client as the live socket unless the channel was closed
// while dialing.
func (c *Channel) open(client connection.Client) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.client = client
	c.mu.Unlock()

	// A Reconnect that raced with this dial is already satisfied.
	select {
	case <-c.wake:
	default:
	}

	c.setState(StateOpen)
	return true
}

// drop closes client and forgets it.
func (c *Channel) drop(client connection.Client) {
	c.mu.Lock()
	if c.client == client {
		c.client = nil
	}
	c.mu.Unlock()

	client.Close()
	c.setState(StateClosed)
}

func (c *Channel) authFailed(logger *slog.Logger, cause error) {
	c.setState(StateClosed)
	c.metrics.AuthFailed()
	logger.Warn("no usable bearer token, waiting for reconnect", "error", cause)
	c.emit(fmt.Errorf("%w: %w", ErrAuthenticationFailed, cause))
}

func (c *Channel) fail(logger *slog.Logger, err error) {
	c.setState(StateClosed)
	if err == nil {
		err = errors.New("connection closed")
	}
	logger.Debug("live channel error", "error", err)
	c.emit(err)
}

func (c *Channel) emit(err error) {
	select {
	case c.errors <- err:
	default:
		c.logger.Debug("error channel full, dropping", "error", err)
	}
}

// sleep waits for d, a Reconnect call, or ctx. It returns false on ctx.
func (c *Channel) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-c.wake:
		return true
	case <-timer.C:
		return true
	}
}

func (c *Channel) waitForWake(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-c.wake:
		return true
	}
}

func (c *Channel) setState(s State) {
	c.mu.Lock()
	if c.state == StateStopped || c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	c.mu.Unlock()

	c.metrics.SetChannelState(string(s))
}
