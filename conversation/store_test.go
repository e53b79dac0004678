package conversation

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/quarkbyte/finagent/dataset"
)

func storeRoundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if got, err := store.Get(ctx, "missing"); err != nil || got != nil {
		t.Fatalf("miss = (%v, %v), want (nil, nil)", got, err)
	}

	s := NewState("t1")
	s.Ticker = "AAPL"
	s.Tickers = []string{"AAPL", "GOOG"}
	s.ProcessedDataset = dataset.New("calendarYear", "earningsYield")
	s.ProcessedDataset.Append("2022", 0.05)
	s.ProcessedDataset.Append("2023", 0.06)
	s.Append(NewUserTurn("compare them"))

	if err := store.Put(ctx, "t1", s); err != nil {
		t.Fatalf("put: %v", err)
	}
	back, err := store.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if back.Ticker != "AAPL" || len(back.Tickers) != 2 {
		t.Errorf("restored = %+v", back)
	}
	years := back.ProcessedDataset.Strings("calendarYear")
	if len(years) != 2 || years[0] != "2022" || years[1] != "2023" {
		t.Errorf("row order = %v", years)
	}

	// Last write wins.
	s.Ticker = "MSFT"
	if err := store.Put(ctx, "t1", s); err != nil {
		t.Fatalf("second put: %v", err)
	}
	back, err = store.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if back.Ticker != "MSFT" {
		t.Errorf("ticker = %s, want MSFT", back.Ticker)
	}
}

func TestMemoryStore(t *testing.T) {
	storeRoundTrip(t, NewMemoryStore())
}

func TestMemoryStoreSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := NewState("t1")
	s.Ticker = "XOM"
	if err := store.Put(ctx, "t1", s); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _ := store.Get(ctx, "t1")
	got.Ticker = "mutated"
	again, _ := store.Get(ctx, "t1")
	if again.Ticker != "XOM" {
		t.Error("mutating a returned state must not affect the store")
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	storeRoundTrip(t, store)
}

func TestSQLiteStoreFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "threads.db")

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s := NewState("t9")
	s.CompanyName = "Exxon Mobil Corporation"
	if err := store.Put(ctx, "t9", s); err != nil {
		t.Fatalf("put: %v", err)
	}
	store.Close()

	// Reopen: state survives the process boundary.
	store, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	back, err := store.Get(ctx, "t9")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if back == nil || back.CompanyName != "Exxon Mobil Corporation" {
		t.Errorf("restored = %+v", back)
	}

	ids, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 1 || ids[0] != "t9" {
		t.Errorf("ids = %v", ids)
	}
	if err := store.Delete(ctx, "t9"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "t9"); err == nil {
		t.Error("deleting a missing thread should error")
	}
}
