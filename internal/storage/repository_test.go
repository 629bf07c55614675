package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/dvdash/dashboard/internal/model"
)

func newTestRepo(t *testing.T, ctx context.Context, dsn string) *Repository {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo, err := New(ctx, dsn, logger)
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func TestReplaceTableSwapsWholeRowSet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, ctx, filepath.Join(t.TempDir(), "test.db"))
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := []model.Row{
		{Cells: []model.Cell{{Text: "1"}, {Text: "M17", Badge: "m17"}, {Text: "W1AW"}}},
		{Cells: []model.Cell{{Text: "2"}, {Text: "DMR", Badge: "dmr"}, {Text: "K1ABC"}}},
		{Cells: []model.Cell{{Text: "3"}, {Text: "YSF", Badge: "ysf"}, {Text: "JA1XYZ"}}},
	}
	version, err := repo.ReplaceTable(ctx, model.TableClientsTalking, first, at)
	if err != nil {
		t.Fatalf("replace first: %v", err)
	}
	if version != 1 {
		t.Fatalf("expected version 1, got %d", version)
	}

	second := []model.Row{{Cells: []model.Cell{{Text: "No data"}}, Placeholder: true, Colspan: 7}}
	version, err = repo.ReplaceTable(ctx, model.TableClientsTalking, second, at.Add(time.Second))
	if err != nil {
		t.Fatalf("replace second: %v", err)
	}
	if version != 2 {
		t.Fatalf("expected version 2, got %d", version)
	}

	state, err := repo.LoadTable(ctx, model.TableClientsTalking)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state.Rows) != 1 {
		t.Fatalf("expected previous rows to be gone, got %d rows", len(state.Rows))
	}
	row := state.Rows[0]
	if !row.Placeholder || row.Colspan != 7 || row.Cells[0].Text != "No data" {
		t.Fatalf("unexpected placeholder row %+v", row)
	}
	if !state.UpdatedAt.Equal(at.Add(time.Second)) {
		t.Fatalf("unexpected updated_at %v", state.UpdatedAt)
	}
}

func TestLoadTablesSkipsUnwritten(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, ctx, MemoryDSN)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := []model.Row{{Cells: []model.Cell{{Text: "BM_3102"}, {Text: "20240101"}}}}
	if _, err := repo.ReplaceTable(ctx, model.TableMMDVMStatus, rows, at); err != nil {
		t.Fatalf("replace: %v", err)
	}

	tables, err := repo.LoadTables(ctx, []model.TableName{model.TableMMDVMStatus, model.TableP25Status})
	if err != nil {
		t.Fatalf("load tables: %v", err)
	}
	if len(tables) != 1 {
		t.Fatalf("expected only the written table, got %d", len(tables))
	}
	got := tables[model.TableMMDVMStatus]
	if len(got.Rows) != 1 || got.Rows[0].Cells[1].Text != "20240101" {
		t.Fatalf("unexpected rows %+v", got.Rows)
	}

	if _, err := repo.LoadTable(ctx, model.TableP25Status); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewClearsPreviousRun(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo, err := New(ctx, path, logger)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := repo.ReplaceTable(ctx, model.TablePeers, []model.Row{{Cells: []model.Cell{{Text: "1"}}}}, time.Now()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	_ = repo.Close()

	reopened := newTestRepo(t, ctx, path)
	if _, err := reopened.LoadTable(ctx, model.TablePeers); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected empty store after restart, got %v", err)
	}
}

func TestCellsJSONRoundTripFallbacks(t *testing.T) {
	if got := EncodeCellsJSON(nil); got != "[]" {
		t.Fatalf("expected [] for nil cells, got %s", got)
	}
	if got := ParseCellsJSON("not json"); len(got) != 0 {
		t.Fatalf("expected empty cells for invalid json, got %+v", got)
	}
}

func TestPing(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t, ctx, MemoryDSN)
	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	var missing *Repository
	if err := missing.Ping(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed for nil repository, got %v", err)
	}
}
