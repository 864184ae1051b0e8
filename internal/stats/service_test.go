package stats

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"aria/internal/db"
)

func newStatsServiceForTest(t *testing.T) (*Service, *sql.DB) {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "library.db")
	database, err := db.Bootstrap(databasePath)
	if err != nil {
		t.Fatalf("bootstrap test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewService(database), database
}

func insertTrackForTest(t *testing.T, database *sql.DB, title string) int64 {
	t.Helper()

	now := time.Now().UTC().Format(time.RFC3339)

	fileResult, err := database.Exec(
		`INSERT INTO files(path, size, mtime_ns, file_exists, last_seen_at) VALUES (?, 123, 1, 1, ?)`,
		filepath.Join("/music", title+".flac"),
		now,
	)
	if err != nil {
		t.Fatalf("insert file row: %v", err)
	}

	fileID, err := fileResult.LastInsertId()
	if err != nil {
		t.Fatalf("read file id: %v", err)
	}

	trackResult, err := database.Exec(
		`INSERT INTO tracks(file_id, title, artist, album, album_artist, updated_at)
		 VALUES (?, ?, 'Artist', 'Album', 'Artist', ?)`,
		fileID,
		title,
		now,
	)
	if err != nil {
		t.Fatalf("insert track row: %v", err)
	}

	trackID, err := trackResult.LastInsertId()
	if err != nil {
		t.Fatalf("read track id: %v", err)
	}

	return trackID
}

func TestRecordPlayAndRecentlyPlayed(t *testing.T) {
	t.Parallel()

	service, database := newStatsServiceForTest(t)
	ctx := context.Background()

	first := insertTrackForTest(t, database, "First")
	second := insertTrackForTest(t, database, "Second")

	if err := service.RecordPlay(ctx, first); err != nil {
		t.Fatalf("record first play: %v", err)
	}
	if err := service.RecordPlay(ctx, second); err != nil {
		t.Fatalf("record second play: %v", err)
	}

	recent, err := service.RecentlyPlayed(ctx, 10)
	if err != nil {
		t.Fatalf("recently played: %v", err)
	}

	if len(recent) != 2 {
		t.Fatalf("expected 2 recent plays, got %d", len(recent))
	}
	// Most recent first; same-second timestamps fall back to insert order.
	if recent[0].TrackID != second || recent[1].TrackID != first {
		t.Fatalf("unexpected recent order: %+v", recent)
	}
	if recent[0].Title != "Second" || recent[0].Artist != "Artist" {
		t.Fatalf("expected track metadata joined in, got %+v", recent[0])
	}
}

func TestRecordPlayRejectsUnknownTrack(t *testing.T) {
	t.Parallel()

	service, _ := newStatsServiceForTest(t)

	if err := service.RecordPlay(context.Background(), 9999); err == nil {
		t.Fatalf("expected foreign key failure for unknown track")
	}
}

func TestMostPlayedOrdersByCount(t *testing.T) {
	t.Parallel()

	service, database := newStatsServiceForTest(t)
	ctx := context.Background()

	quiet := insertTrackForTest(t, database, "Quiet")
	favorite := insertTrackForTest(t, database, "Favorite")

	for range 3 {
		if err := service.RecordPlay(ctx, favorite); err != nil {
			t.Fatalf("record play: %v", err)
		}
	}
	if err := service.RecordPlay(ctx, quiet); err != nil {
		t.Fatalf("record play: %v", err)
	}

	top, err := service.MostPlayed(ctx, 10)
	if err != nil {
		t.Fatalf("most played: %v", err)
	}

	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].TrackID != favorite || top[0].PlayCount != 3 {
		t.Fatalf("expected favorite first with 3 plays, got %+v", top[0])
	}
	if top[1].TrackID != quiet || top[1].PlayCount != 1 {
		t.Fatalf("expected quiet second with 1 play, got %+v", top[1])
	}
}

func TestListLimitsAreClamped(t *testing.T) {
	t.Parallel()

	service, database := newStatsServiceForTest(t)
	ctx := context.Background()

	trackID := insertTrackForTest(t, database, "Only")
	if err := service.RecordPlay(ctx, trackID); err != nil {
		t.Fatalf("record play: %v", err)
	}

	if _, err := service.RecentlyPlayed(ctx, -5); err != nil {
		t.Fatalf("recently played with negative limit: %v", err)
	}
	if _, err := service.MostPlayed(ctx, 100000); err != nil {
		t.Fatalf("most played with huge limit: %v", err)
	}
}
