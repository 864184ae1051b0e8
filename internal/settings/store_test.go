package settings

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"aria/internal/db"
	"aria/internal/playback"
)

func newStoreForTest(t *testing.T) (*Store, *sql.DB) {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "library.db")
	database, err := db.Bootstrap(databasePath)
	if err != nil {
		t.Fatalf("bootstrap test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewStore(database), database
}

func TestLoadReturnsDefaultsWhenEmpty(t *testing.T) {
	t.Parallel()

	store, _ := newStoreForTest(t)

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded != Defaults() {
		t.Fatalf("expected defaults, got %+v", loaded)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	store, _ := newStoreForTest(t)

	saved := Settings{
		Volume:      45,
		Muted:       true,
		Shuffle:     playback.ShuffleSmart,
		Repeat:      playback.RepeatAll,
		HistorySize: 20,
	}
	if err := store.Save(context.Background(), saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != saved {
		t.Fatalf("expected %+v, got %+v", saved, loaded)
	}
}

func TestSaveOverwritesSingleRow(t *testing.T) {
	t.Parallel()

	store, database := newStoreForTest(t)

	first := Defaults()
	first.Volume = 10
	if err := store.Save(context.Background(), first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := Defaults()
	second.Volume = 90
	if err := store.Save(context.Background(), second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var rowCount int
	if err := database.QueryRow("SELECT COUNT(1) FROM playback_settings").Scan(&rowCount); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rowCount != 1 {
		t.Fatalf("expected one settings row, got %d", rowCount)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Volume != 90 {
		t.Fatalf("expected volume 90, got %d", loaded.Volume)
	}
}

func TestLoadIgnoresUnparseableModes(t *testing.T) {
	t.Parallel()

	store, database := newStoreForTest(t)

	if _, err := database.Exec(`
		INSERT INTO playback_settings(id, volume, muted, shuffle_mode, repeat_mode, history_size, updated_at)
		VALUES (1, 70, 0, 'sideways', 'forever', 30, ?)
	`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		t.Fatalf("insert raw row: %v", err)
	}

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Volume != 70 || loaded.HistorySize != 30 {
		t.Fatalf("expected stored scalars to survive, got %+v", loaded)
	}
	if loaded.Shuffle != playback.ShuffleOff || loaded.Repeat != playback.RepeatOff {
		t.Fatalf("expected bad modes to fall back to off, got %+v", loaded)
	}
}

func TestPlaybackConfigMapping(t *testing.T) {
	t.Parallel()

	stored := Settings{
		Volume:      55,
		Muted:       true,
		Shuffle:     playback.ShuffleRandom,
		Repeat:      playback.RepeatOne,
		HistorySize: 15,
	}

	config := stored.PlaybackConfig()
	if config.Volume != 55 || config.Shuffle != playback.ShuffleRandom ||
		config.Repeat != playback.RepeatOne || config.HistorySize != 15 {
		t.Fatalf("unexpected config mapping: %+v", config)
	}
}
