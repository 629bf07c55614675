package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dvdash/dashboard/internal/model"
	"github.com/dvdash/dashboard/internal/storage"
	"k8s.io/utils/clock"
)

// Store persists whole row sets per table. Each ReplaceTable call must be atomic.
type Store interface {
	ReplaceTable(ctx context.Context, name model.TableName, rows []model.Row, at time.Time) (int64, error)
	LoadTable(ctx context.Context, name model.TableName) (model.TableState, error)
	LoadTables(ctx context.Context, names []model.TableName) (map[model.TableName]model.TableState, error)
}

// Table is a definition together with its current rows.
type Table struct {
	Definition
	Rows      []model.Row `json:"rows"`
	Version   int64       `json:"version"`
	UpdatedAt time.Time   `json:"updated_at"`
}

type replacement struct {
	name model.TableName
	rows []model.Row
}

// Reconciler maps canonical updates onto the six table targets.
type Reconciler struct {
	store  Store
	clock  clock.PassiveClock
	logger *slog.Logger
}

func New(store Store, c clock.PassiveClock, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: store, clock: c, logger: logger}
}

// Init shows the waiting placeholder in every table.
func (r *Reconciler) Init(ctx context.Context) error {
	now := r.clock.Now()
	for _, d := range definitions {
		if _, err := r.store.ReplaceTable(ctx, d.Name, []model.Row{placeholderRow(WaitingText, d.Columns())}, now); err != nil {
			return fmt.Errorf("init %s: %w", d.Name, err)
		}
	}
	return nil
}

// Reconcile replaces every table the update touches and returns their names
// in page order. Untouched tables keep their previous rows. Clients-talking
// records must already be sorted.
func (r *Reconciler) Reconcile(ctx context.Context, update model.Update) ([]model.TableName, error) {
	pending := make([]replacement, 0, len(definitions))
	add := func(name model.TableName, rows []model.Row) {
		pending = append(pending, replacement{name: name, rows: rows})
	}

	if update.ClientsTalking != nil {
		add(model.TableClientsTalking, clientsRows(update.ClientsTalking))
	}
	if update.LastHeard != nil {
		add(model.TableLastHeard, lastHeardRows(update.LastHeard))
	}
	if update.Peers != nil {
		add(model.TablePeers, peerRows(update.Peers))
	}
	if update.MMDVM != nil {
		add(model.TableMMDVMStatus, mmdvmRows(update.MMDVM))
	}
	if update.P25 != nil {
		add(model.TableP25Status, p25Rows(update.P25))
	}
	if update.YSF != nil {
		add(model.TableYSFStatus, ysfRows(update.YSF))
	}

	now := r.clock.Now()
	touched := make([]model.TableName, 0, len(pending))
	for _, p := range pending {
		def, err := Lookup(p.name)
		if err != nil {
			return touched, err
		}
		rows := p.rows
		if len(rows) == 0 {
			rows = []model.Row{placeholderRow(def.EmptyText, def.Columns())}
		}
		version, err := r.store.ReplaceTable(ctx, p.name, rows, now)
		if err != nil {
			return touched, fmt.Errorf("replace %s: %w", p.name, err)
		}
		if r.logger != nil {
			r.logger.Debug("table replaced", "table", p.name, "rows", len(rows), "version", version)
		}
		touched = append(touched, p.name)
	}
	return touched, nil
}

// Table returns one table with its current rows.
func (r *Reconciler) Table(ctx context.Context, name model.TableName) (Table, error) {
	def, err := Lookup(name)
	if err != nil {
		return Table{}, err
	}
	state, err := r.store.LoadTable(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return Table{Definition: def, Rows: []model.Row{placeholderRow(WaitingText, def.Columns())}}, nil
	}
	if err != nil {
		return Table{}, err
	}
	return Table{Definition: def, Rows: state.Rows, Version: state.Version, UpdatedAt: state.UpdatedAt}, nil
}

// Tables returns all six tables in page order from one consistent read.
func (r *Reconciler) Tables(ctx context.Context) ([]Table, error) {
	states, err := r.store.LoadTables(ctx, Names())
	if err != nil {
		return nil, err
	}
	out := make([]Table, 0, len(definitions))
	for _, def := range definitions {
		state, ok := states[def.Name]
		if !ok {
			out = append(out, Table{Definition: def, Rows: []model.Row{placeholderRow(WaitingText, def.Columns())}})
			continue
		}
		out = append(out, Table{Definition: def, Rows: state.Rows, Version: state.Version, UpdatedAt: state.UpdatedAt})
	}
	return out, nil
}
