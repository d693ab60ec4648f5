package metrics

import (
	"path/filepath"
	"testing"
	"time"

	"ai-kitchen/internal/database"
	"ai-kitchen/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewStore(db.SQL)
}

func TestStore(t *testing.T) {
	store := newTestStore(t)

	meta := shared.AgentMeta{
		AgentName: "Outline",
		Usage:     shared.TokenUsage{PromptTokens: 100, CompletionTokens: 40, Model: "gpt-4o"},
		Latency:   1500 * time.Millisecond,
	}
	if err := store.RecordMeta(meta); err != nil {
		t.Fatalf("RecordMeta failed: %v", err)
	}
	if err := store.RecordMeta(meta); err != nil {
		t.Fatalf("RecordMeta failed: %v", err)
	}
	// Calls without usage are not worth a row.
	if err := store.RecordMeta(shared.AgentMeta{AgentName: "RecipeDetail"}); err != nil {
		t.Fatalf("RecordMeta failed: %v", err)
	}
	old := MapUsage("RecipeDetail", shared.TokenUsage{PromptTokens: 7}, 0)
	old.Timestamp = time.Now().AddDate(0, 0, -60)
	if err := store.Record(old); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	t.Run("GetDailyUsage", func(t *testing.T) {
		usage, err := store.GetDailyUsage(7)
		if err != nil {
			t.Fatalf("GetDailyUsage failed: %v", err)
		}
		if len(usage) != 1 {
			t.Fatalf("Expected 1 day of usage, got %d: %+v", len(usage), usage)
		}
		u := usage[0]
		if u.Date != time.Now().UTC().Format("2006-01-02") {
			t.Errorf("Expected today's date, got '%s'", u.Date)
		}
		if u.TotalPrompt != 200 || u.TotalCompletion != 80 || u.TotalExecution != 2 {
			t.Errorf("Unexpected totals %+v", u)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		n, err := store.Cleanup(30)
		if err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 removed record, got %d", n)
		}
		usage, _ := store.GetDailyUsage(90)
		if len(usage) != 1 {
			t.Errorf("Expected only today's usage to remain, got %+v", usage)
		}
	})
}

func TestGetSysHealth(t *testing.T) {
	h := GetSysHealth(t.TempDir())
	if h.Goroutines == 0 {
		t.Error("Expected at least one goroutine")
	}
	if h.DataDiskSize != "0 B" {
		t.Errorf("Expected empty directory size, got '%s'", h.DataDiskSize)
	}
}
