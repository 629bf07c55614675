// Package dashboard runs the per-message pipeline: decode, normalize, order
// the clients-talking list, resync uptime and reconcile the table views.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/dvdash/dashboard/internal/feed"
	"github.com/dvdash/dashboard/internal/model"
	"github.com/dvdash/dashboard/internal/normalizer"
	"github.com/dvdash/dashboard/internal/talkers"
	"github.com/dvdash/dashboard/internal/uptime"
	"github.com/dvdash/dashboard/internal/view"
	"k8s.io/utils/clock"
)

// ErrMalformed marks a message that was dropped before normalization.
var ErrMalformed = errors.New("malformed feed message")

// Reconciler applies canonical updates to the table views.
type Reconciler interface {
	Reconcile(ctx context.Context, update model.Update) ([]model.TableName, error)
}

// Observer receives pipeline outcomes, typically for metrics.
type Observer interface {
	MessageApplied()
	MessageMalformed()
	MessageFailed()
	TablesReplaced(names []model.TableName)
	TableRecords(name model.TableName, n int)
	TalkingClients(n int)
	FeedUptime(seconds int64)
}

type nopObserver struct{}

func (nopObserver) MessageApplied()                   {}
func (nopObserver) MessageMalformed()                 {}
func (nopObserver) MessageFailed()                    {}
func (nopObserver) TablesReplaced([]model.TableName)  {}
func (nopObserver) TableRecords(model.TableName, int) {}
func (nopObserver) TalkingClients(int)                {}
func (nopObserver) FeedUptime(int64)                  {}

// UptimeView is the uptime value as published to readers outside the loop.
type UptimeView struct {
	Synced  bool
	Seconds int64
}

// Dashboard owns the pipeline state. Process and Run must be called from a
// single goroutine; Uptime is safe from any goroutine.
type Dashboard struct {
	reconciler Reconciler
	uptime     *uptime.Extrapolator
	observer   Observer
	logger     *slog.Logger

	// -1 until the first correction.
	published atomic.Int64
}

func New(reconciler Reconciler, c clock.WithTicker, observer Observer, logger *slog.Logger) *Dashboard {
	if observer == nil {
		observer = nopObserver{}
	}
	d := &Dashboard{
		reconciler: reconciler,
		uptime:     uptime.New(c),
		observer:   observer,
		logger:     logger,
	}
	d.published.Store(-1)
	return d
}

// Process handles one raw feed message. A malformed message is dropped and
// every table keeps its previous rows.
func (d *Dashboard) Process(ctx context.Context, raw []byte) error {
	snap, err := feed.Decode(raw)
	if err != nil {
		d.observer.MessageMalformed()
		d.logger.Warn("dropping malformed feed message", "bytes", len(raw), "err", err)
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if rejected := snap.RejectedKeys(); len(rejected) > 0 {
		d.logger.Warn("skipping feed keys with unexpected types", "keys", rejected)
	}

	update := normalizer.Normalize(snap)
	if update.ClientsTalking != nil {
		update.ClientsTalking = talkers.Sort(update.ClientsTalking)
		d.observer.TalkingClients(talkers.Count(update.ClientsTalking))
	}
	if update.UptimeSeconds != nil {
		d.uptime.Correct(*update.UptimeSeconds)
		d.publish(d.uptime.Display())
	}

	touched, err := d.reconciler.Reconcile(ctx, update)
	if err != nil {
		d.observer.MessageFailed()
		d.logger.Error("reconcile failed", "touched", touched, "err", err)
		return err
	}
	d.recordCounts(update)
	d.observer.TablesReplaced(touched)
	d.observer.MessageApplied()

	shapes := normalizer.Describe(snap)
	d.logger.Debug("feed message applied",
		"clients_talking", shapes.ClientsTalking.String(),
		"last_heard", shapes.LastHeard.String(),
		"peers", shapes.Peers.String(),
		"tables", len(touched),
	)
	return nil
}

// Run consumes messages in arrival order and drives the uptime tick until
// ctx is done.
func (d *Dashboard) Run(ctx context.Context, messages <-chan []byte) {
	defer d.uptime.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case raw := <-messages:
			_ = d.Process(ctx, raw)
		case <-d.uptime.C():
			d.publish(d.uptime.Tick())
		}
	}
}

// Uptime returns the most recently published uptime value.
func (d *Dashboard) Uptime() UptimeView {
	v := d.published.Load()
	if v < 0 {
		return UptimeView{}
	}
	return UptimeView{Synced: true, Seconds: v}
}

func (d *Dashboard) publish(seconds int64) {
	d.published.Store(seconds)
	d.observer.FeedUptime(seconds)
}

func (d *Dashboard) recordCounts(update model.Update) {
	if update.ClientsTalking != nil {
		d.observer.TableRecords(model.TableClientsTalking, len(update.ClientsTalking))
	}
	if update.LastHeard != nil {
		d.observer.TableRecords(model.TableLastHeard, len(update.LastHeard))
	}
	if update.Peers != nil {
		d.observer.TableRecords(model.TablePeers, len(update.Peers))
	}
}

var _ Reconciler = (*view.Reconciler)(nil)
