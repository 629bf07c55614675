// Package connection owns the WebSocket link to the snapshot feed.
//
// A Manager keeps at most one live connection. When that connection ends for
// any reason it schedules exactly one reconnect after a fixed delay and keeps
// retrying forever, so an unattended display recovers on its own.
package connection

import (
	"context"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/dvdash/dashboard/internal/timerslot"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"k8s.io/utils/clock"
)

const (
	// ReconnectDelay is the fixed wait between a lost connection and the next attempt.
	ReconnectDelay = 3 * time.Second

	defaultIdleTimeout      = 60 * time.Second
	defaultHandshakeTimeout = 10 * time.Second
	messageBuffer           = 16
)

// Observer receives connection lifecycle events, typically for metrics.
type Observer interface {
	ConnectAttempt()
	ConnectFailed()
	Connected(bool)
}

type nopObserver struct{}

func (nopObserver) ConnectAttempt() {}
func (nopObserver) ConnectFailed()  {}
func (nopObserver) Connected(bool)  {}

type Option func(*Manager)

func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(m *Manager) { m.dialer = d }
}

// WithIdleTimeout sets how long a connection may stay silent before it is
// treated as lost. Zero disables the read deadline.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *Manager) { m.idleTimeout = d }
}

func WithHandshakeTimeout(d time.Duration) Option {
	return func(m *Manager) { m.handshakeTimeout = d }
}

func WithReconnectDelay(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.reconnectDelay = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(m *Manager) {
		if o != nil {
			m.observer = o
		}
	}
}

type Manager struct {
	endpoint         string
	dialer           *websocket.Dialer
	clock            clock.Clock
	logger           *slog.Logger
	observer         Observer
	reconnectDelay   time.Duration
	idleTimeout      time.Duration
	handshakeTimeout time.Duration

	messages  chan []byte
	connectCh chan struct{}
	connected atomic.Bool
	lastMsgAt atomic.Int64
}

func New(endpoint string, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		endpoint:         endpoint,
		dialer:           websocket.DefaultDialer,
		clock:            clock.RealClock{},
		logger:           logger,
		observer:         nopObserver{},
		reconnectDelay:   ReconnectDelay,
		idleTimeout:      defaultIdleTimeout,
		handshakeTimeout: defaultHandshakeTimeout,
		messages:         make(chan []byte, messageBuffer),
		connectCh:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Endpoint builds the feed URL. secure selects wss, matching a page that was
// itself served over TLS.
func Endpoint(host string, port int, path string, secure bool) string {
	scheme := "ws"
	if secure {
		scheme = "wss"
	}
	if path == "" {
		path = "/"
	}
	u := url.URL{Scheme: scheme, Host: net.JoinHostPort(host, strconv.Itoa(port)), Path: path}
	return u.String()
}

func (m *Manager) Endpoint() string {
	return m.endpoint
}

// Messages delivers raw frames in arrival order. The channel is never closed.
func (m *Manager) Messages() <-chan []byte {
	return m.messages
}

// Connected reports whether a connection is currently live.
func (m *Manager) Connected() bool {
	return m.connected.Load()
}

// LastMessageAt returns the arrival time of the most recent frame.
func (m *Manager) LastMessageAt() (time.Time, bool) {
	ns := m.lastMsgAt.Load()
	if ns == 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns).UTC(), true
}

// Connect asks the run loop to connect now. It is a no-op while a connection
// is live; otherwise it cancels any pending reconnect and dials immediately.
func (m *Manager) Connect() {
	select {
	case m.connectCh <- struct{}{}:
	default:
	}
}

type session struct {
	id   string
	conn *websocket.Conn
}

type sessionEnd struct {
	id  string
	err error
}

// Run dials the feed and keeps reconnecting until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	reconnect := timerslot.NewTimer(m.clock)
	defer reconnect.Stop()

	ended := make(chan sessionEnd, 1)
	var live *session

	dial := func() {
		reconnect.Stop()
		s, err := m.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.observer.ConnectFailed()
			m.logger.Warn("feed connect failed", "endpoint", m.endpoint, "retry_in", m.reconnectDelay.String(), "err", err)
			reconnect.Arm(m.reconnectDelay)
			return
		}
		live = s
		m.connected.Store(true)
		m.observer.Connected(true)
		m.logger.Info("feed connected", "endpoint", m.endpoint, "session", s.id)
		go m.read(ctx, s, ended)
	}

	dial()
	for {
		select {
		case <-ctx.Done():
			if live != nil {
				_ = live.conn.Close()
				m.connected.Store(false)
				m.observer.Connected(false)
			}
			return
		case <-m.connectCh:
			if live != nil {
				m.logger.Debug("connect requested while connected", "session", live.id)
				continue
			}
			dial()
		case <-reconnect.C():
			reconnect.Fired()
			if live != nil {
				continue
			}
			dial()
		case end := <-ended:
			if live == nil || end.id != live.id {
				continue
			}
			_ = live.conn.Close()
			live = nil
			m.connected.Store(false)
			m.observer.Connected(false)
			m.logger.Warn("feed connection closed", "session", end.id, "retry_in", m.reconnectDelay.String(), "err", end.err)
			reconnect.Arm(m.reconnectDelay)
		}
	}
}

func (m *Manager) dial(ctx context.Context) (*session, error) {
	m.observer.ConnectAttempt()
	dialCtx := ctx
	if m.handshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, m.handshakeTimeout)
		defer cancel()
	}
	conn, _, err := m.dialer.DialContext(dialCtx, m.endpoint, nil)
	if err != nil {
		return nil, err
	}
	return &session{id: uuid.NewString(), conn: conn}, nil
}

// read forwards frames until the connection fails, then reports the end of
// the session. Network deadlines use wall time, not the injected clock.
func (m *Manager) read(ctx context.Context, s *session, ended chan<- sessionEnd) {
	var err error
	defer func() {
		select {
		case ended <- sessionEnd{id: s.id, err: err}:
		case <-ctx.Done():
		}
	}()

	for {
		if m.idleTimeout > 0 {
			if err = s.conn.SetReadDeadline(time.Now().Add(m.idleTimeout)); err != nil {
				return
			}
		}
		var msg []byte
		_, msg, err = s.conn.ReadMessage()
		if err != nil {
			return
		}
		m.lastMsgAt.Store(time.Now().UnixNano())
		select {
		case m.messages <- msg:
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}
