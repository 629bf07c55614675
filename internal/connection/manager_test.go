package connection

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	testingclock "k8s.io/utils/clock/testing"
)

type countingObserver struct {
	attempts atomic.Int32
	failures atomic.Int32
}

func (o *countingObserver) ConnectAttempt() { o.attempts.Add(1) }
func (o *countingObserver) ConnectFailed()  { o.failures.Add(1) }
func (o *countingObserver) Connected(bool)  {}

// feedServer closes the first connection after sending one frame and keeps
// every later connection open until the test ends.
type feedServer struct {
	*httptest.Server
	accepted atomic.Int32
	done     chan struct{}
}

func newFeedServer(t *testing.T) *feedServer {
	t.Helper()
	fs := &feedServer{done: make(chan struct{})}
	upgrader := websocket.Upgrader{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		n := fs.accepted.Add(1)
		if n == 1 {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"uptime_seconds":1}`))
			return
		}
		<-fs.done
	}))
	t.Cleanup(func() {
		close(fs.done)
		fs.Close()
	})
	return fs
}

func (fs *feedServer) wsURL() string {
	return "ws" + strings.TrimPrefix(fs.URL, "http")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// settle gives the run loop a moment to act on anything it might wrongly do.
func settle() {
	time.Sleep(50 * time.Millisecond)
}

func TestReconnectFiresOnceAfterFixedDelay(t *testing.T) {
	fs := newFeedServer(t)
	fc := testingclock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	obs := &countingObserver{}
	m := New(fs.wsURL(), testLogger(), WithClock(fc), WithObserver(obs))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	select {
	case msg := <-m.Messages():
		if string(msg) != `{"uptime_seconds":1}` {
			t.Fatalf("unexpected frame %s", msg)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for first frame")
	}

	waitFor(t, "reconnect timer", fc.HasWaiters)
	if m.Connected() {
		t.Fatalf("expected disconnected state after peer close")
	}
	if got := obs.attempts.Load(); got != 1 {
		t.Fatalf("expected 1 attempt before delay, got %d", got)
	}

	fc.Step(ReconnectDelay - time.Millisecond)
	settle()
	if got := obs.attempts.Load(); got != 1 {
		t.Fatalf("expected no attempt before the delay elapsed, got %d", got)
	}

	fc.Step(time.Millisecond)
	waitFor(t, "second connection", func() bool { return fs.accepted.Load() == 2 })
	waitFor(t, "connected state", m.Connected)

	fc.Step(10 * ReconnectDelay)
	settle()
	if got := obs.attempts.Load(); got != 2 {
		t.Fatalf("expected exactly one reconnect attempt, got %d attempts", got)
	}
	if fc.HasWaiters() {
		t.Fatalf("expected no pending reconnect while connected")
	}
	if _, ok := m.LastMessageAt(); !ok {
		t.Fatalf("expected last message time to be recorded")
	}
}

func TestConnectWhileLiveIsIgnored(t *testing.T) {
	fs := newFeedServer(t)
	fs.accepted.Store(1) // skip the close-after-one-frame behavior
	fc := testingclock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	obs := &countingObserver{}
	m := New(fs.wsURL(), testLogger(), WithClock(fc), WithObserver(obs))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	waitFor(t, "connected state", m.Connected)
	m.Connect()
	m.Connect()
	settle()
	if got := obs.attempts.Load(); got != 1 {
		t.Fatalf("expected manual connect to be ignored while live, got %d attempts", got)
	}
	if got := fs.accepted.Load(); got != 2 {
		t.Fatalf("expected a single server-side connection, got %d", got-1)
	}
}

func TestManualConnectCancelsPendingReconnect(t *testing.T) {
	fs := newFeedServer(t)
	fc := testingclock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	obs := &countingObserver{}
	m := New(fs.wsURL(), testLogger(), WithClock(fc), WithObserver(obs))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	<-m.Messages()
	waitFor(t, "reconnect timer", fc.HasWaiters)

	m.Connect()
	waitFor(t, "manual connection", func() bool { return fs.accepted.Load() == 2 })
	waitFor(t, "connected state", m.Connected)
	if fc.HasWaiters() {
		t.Fatalf("expected manual connect to cancel the pending reconnect")
	}

	fc.Step(ReconnectDelay)
	settle()
	if got := obs.attempts.Load(); got != 2 {
		t.Fatalf("expected no duplicate socket from stale reconnect, got %d attempts", got)
	}
}

func TestDialFailureRetriesWithoutBackoff(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	fc := testingclock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	obs := &countingObserver{}
	m := New(url, testLogger(), WithClock(fc), WithObserver(obs))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	for attempt := int32(1); attempt <= 4; attempt++ {
		waitFor(t, "reconnect timer", fc.HasWaiters)
		if got := obs.failures.Load(); got != attempt {
			t.Fatalf("expected %d failures, got %d", attempt, got)
		}
		fc.Step(ReconnectDelay)
	}
	waitFor(t, "fifth attempt", func() bool { return obs.attempts.Load() == 5 })
}

func TestEndpoint(t *testing.T) {
	cases := []struct {
		host   string
		port   int
		path   string
		secure bool
		want   string
	}{
		{"dash.example.com", 8765, "", false, "ws://dash.example.com:8765/"},
		{"dash.example.com", 8765, "/", true, "wss://dash.example.com:8765/"},
		{"192.168.1.50", 9000, "/feed", false, "ws://192.168.1.50:9000/feed"},
		{"::1", 8765, "", false, "ws://[::1]:8765/"},
	}
	for _, tc := range cases {
		if got := Endpoint(tc.host, tc.port, tc.path, tc.secure); got != tc.want {
			t.Fatalf("Endpoint(%q,%d,%q,%v): expected %s got %s", tc.host, tc.port, tc.path, tc.secure, tc.want, got)
		}
	}
}
