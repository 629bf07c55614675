package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dvdash/dashboard/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAndGauges(t *testing.T) {
	m := New()

	m.ConnectAttempt()
	m.ConnectAttempt()
	m.ConnectFailed()
	m.Connected(true)
	m.MessageApplied()
	m.MessageMalformed()
	m.MessageMalformed()
	m.TablesReplaced([]model.TableName{model.TableClientsTalking, model.TableP25Status, model.TableClientsTalking})
	m.TalkingClients(3)
	m.FeedUptime(105)

	if got := testutil.ToFloat64(m.connectAttempts); got != 2 {
		t.Fatalf("expected 2 attempts, got %v", got)
	}
	if got := testutil.ToFloat64(m.connectFailures); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.connected); got != 1 {
		t.Fatalf("expected connected gauge 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.messages.WithLabelValues("malformed")); got != 2 {
		t.Fatalf("expected 2 malformed, got %v", got)
	}
	if got := testutil.ToFloat64(m.tableUpdates.WithLabelValues(string(model.TableClientsTalking))); got != 2 {
		t.Fatalf("expected 2 clients-talking updates, got %v", got)
	}
	if got := testutil.ToFloat64(m.feedUptime); got != 105 {
		t.Fatalf("expected uptime 105, got %v", got)
	}

	m.Connected(false)
	if got := testutil.ToFloat64(m.connected); got != 0 {
		t.Fatalf("expected connected gauge 0, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.TalkingClients(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "dvdash_clients_talking 2") {
		t.Fatalf("expected talking gauge in exposition, got:\n%s", body)
	}
}
