package library

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"aria/internal/db"
)

func newRepositoriesForTest(t *testing.T) (*BrowseRepository, *WatchedRootRepository, *sql.DB) {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "library.db")
	database, err := db.Bootstrap(databasePath)
	if err != nil {
		t.Fatalf("bootstrap test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewBrowseRepository(database), NewWatchedRootRepository(database), database
}

type trackSpec struct {
	title      string
	artist     string
	album      string
	trackNo    int
	durationMS int
	exists     bool
}

func insertTrackForTest(t *testing.T, database *sql.DB, spec trackSpec) int64 {
	t.Helper()

	now := time.Now().UTC().Format(time.RFC3339)
	exists := 0
	if spec.exists {
		exists = 1
	}

	fileResult, err := database.Exec(
		`INSERT INTO files(path, size, mtime_ns, file_exists, last_seen_at) VALUES (?, 123, 1, ?, ?)`,
		filepath.Join("/music", spec.artist, spec.album, spec.title+".flac"),
		exists,
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
		`INSERT INTO tracks(file_id, title, artist, album, album_artist, track_no, duration_ms, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fileID,
		spec.title,
		spec.artist,
		spec.album,
		spec.artist,
		spec.trackNo,
		spec.durationMS,
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

func TestTracksByIDsPreservesRequestOrder(t *testing.T) {
	t.Parallel()

	browse, _, database := newRepositoriesForTest(t)
	ctx := context.Background()

	first := insertTrackForTest(t, database, trackSpec{title: "One", artist: "A", album: "X", trackNo: 1, durationMS: 180000, exists: true})
	second := insertTrackForTest(t, database, trackSpec{title: "Two", artist: "A", album: "X", trackNo: 2, durationMS: 200000, exists: true})
	third := insertTrackForTest(t, database, trackSpec{title: "Three", artist: "B", album: "Y", trackNo: 1, durationMS: 150000, exists: true})

	tracks, err := browse.TracksByIDs(ctx, []int64{third, first, second})
	if err != nil {
		t.Fatalf("tracks by ids: %v", err)
	}

	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(tracks))
	}
	if tracks[0].ID != third || tracks[1].ID != first || tracks[2].ID != second {
		t.Fatalf("request order not preserved: %+v", tracks)
	}
}

func TestTracksByIDsSkipsMissingAndDeleted(t *testing.T) {
	t.Parallel()

	browse, _, database := newRepositoriesForTest(t)
	ctx := context.Background()

	present := insertTrackForTest(t, database, trackSpec{title: "Here", artist: "A", album: "X", trackNo: 1, exists: true})
	gone := insertTrackForTest(t, database, trackSpec{title: "Gone", artist: "A", album: "X", trackNo: 2, exists: false})

	tracks, err := browse.TracksByIDs(ctx, []int64{present, gone, 424242})
	if err != nil {
		t.Fatalf("tracks by ids: %v", err)
	}

	if len(tracks) != 1 || tracks[0].ID != present {
		t.Fatalf("expected only the existing track, got %+v", tracks)
	}
}

func TestGetTrackNotFound(t *testing.T) {
	t.Parallel()

	browse, _, _ := newRepositoriesForTest(t)

	if _, err := browse.GetTrack(context.Background(), 7); !errors.Is(err, ErrTrackNotFound) {
		t.Fatalf("expected ErrTrackNotFound, got %v", err)
	}
}

func TestListTracksSearchAndPaging(t *testing.T) {
	t.Parallel()

	browse, _, database := newRepositoriesForTest(t)
	ctx := context.Background()

	insertTrackForTest(t, database, trackSpec{title: "Blue Sky", artist: "A", album: "X", trackNo: 1, exists: true})
	insertTrackForTest(t, database, trackSpec{title: "Blue Moon", artist: "B", album: "Y", trackNo: 1, exists: true})
	insertTrackForTest(t, database, trackSpec{title: "Red Sun", artist: "B", album: "Y", trackNo: 2, exists: true})

	page, err := browse.ListTracks(ctx, "blue", "", "", 10, 0)
	if err != nil {
		t.Fatalf("list tracks: %v", err)
	}
	if page.Page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("expected 2 matches for blue, got %+v", page)
	}

	paged, err := browse.ListTracks(ctx, "", "", "", 2, 2)
	if err != nil {
		t.Fatalf("list tracks page 2: %v", err)
	}
	if paged.Page.Total != 3 || len(paged.Items) != 1 {
		t.Fatalf("expected total 3 with 1 on second page, got %+v", paged)
	}
}

func TestListTracksFiltersByArtistAndAlbum(t *testing.T) {
	t.Parallel()

	browse, _, database := newRepositoriesForTest(t)
	ctx := context.Background()

	insertTrackForTest(t, database, trackSpec{title: "One", artist: "Alpha", album: "First", trackNo: 1, exists: true})
	insertTrackForTest(t, database, trackSpec{title: "Two", artist: "Alpha", album: "Second", trackNo: 1, exists: true})
	insertTrackForTest(t, database, trackSpec{title: "Three", artist: "Beta", album: "First", trackNo: 1, exists: true})

	byArtist, err := browse.ListTracks(ctx, "", "alpha", "", 10, 0)
	if err != nil {
		t.Fatalf("filter by artist: %v", err)
	}
	if byArtist.Page.Total != 2 {
		t.Fatalf("expected 2 Alpha tracks, got %d", byArtist.Page.Total)
	}

	byBoth, err := browse.ListTracks(ctx, "", "alpha", "first", 10, 0)
	if err != nil {
		t.Fatalf("filter by artist and album: %v", err)
	}
	if byBoth.Page.Total != 1 || byBoth.Items[0].Title != "One" {
		t.Fatalf("expected only One, got %+v", byBoth)
	}
}

func TestListAlbumsGroupsTracks(t *testing.T) {
	t.Parallel()

	browse, _, database := newRepositoriesForTest(t)
	ctx := context.Background()

	insertTrackForTest(t, database, trackSpec{title: "One", artist: "Alpha", album: "First", trackNo: 1, exists: true})
	insertTrackForTest(t, database, trackSpec{title: "Two", artist: "Alpha", album: "First", trackNo: 2, exists: true})
	insertTrackForTest(t, database, trackSpec{title: "Three", artist: "Beta", album: "Other", trackNo: 1, exists: true})

	page, err := browse.ListAlbums(ctx, "", "", 10, 0)
	if err != nil {
		t.Fatalf("list albums: %v", err)
	}

	if page.Page.Total != 2 || len(page.Items) != 2 {
		t.Fatalf("expected 2 albums, got %+v", page)
	}
	if page.Items[0].Title != "First" || page.Items[0].TrackCount != 2 {
		t.Fatalf("expected First with 2 tracks, got %+v", page.Items[0])
	}
}

func TestAlbumTracksOrderedByTrackNumber(t *testing.T) {
	t.Parallel()

	browse, _, database := newRepositoriesForTest(t)
	ctx := context.Background()

	insertTrackForTest(t, database, trackSpec{title: "Closer", artist: "Alpha", album: "First", trackNo: 9, exists: true})
	insertTrackForTest(t, database, trackSpec{title: "Opener", artist: "Alpha", album: "First", trackNo: 1, exists: true})

	tracks, err := browse.AlbumTracks(ctx, "First", "Alpha")
	if err != nil {
		t.Fatalf("album tracks: %v", err)
	}

	if len(tracks) != 2 || tracks[0].Title != "Opener" || tracks[1].Title != "Closer" {
		t.Fatalf("unexpected album order: %+v", tracks)
	}

	if _, err := browse.AlbumTracks(ctx, "Nope", "Alpha"); !errors.Is(err, ErrAlbumNotFound) {
		t.Fatalf("expected ErrAlbumNotFound, got %v", err)
	}
}

func TestPlayableConversion(t *testing.T) {
	t.Parallel()

	durationMS := 214500
	summary := TrackSummary{
		ID:         42,
		Title:      "Song",
		Artist:     "Someone",
		Album:      "Somewhere",
		DurationMS: &durationMS,
		Path:       "/music/song.flac",
	}

	track := summary.Playable()
	if track.ID != "42" || track.Path != "/music/song.flac" {
		t.Fatalf("unexpected conversion: %+v", track)
	}
	if track.Duration != 214.5 {
		t.Fatalf("expected duration 214.5s, got %v", track.Duration)
	}

	bare := TrackSummary{ID: 7, Title: "Untimed", Path: "/music/x.mp3"}
	if got := bare.Playable(); got.Duration != 0 {
		t.Fatalf("expected zero duration without metadata, got %v", got.Duration)
	}
}

func TestWatchedRootLifecycle(t *testing.T) {
	t.Parallel()

	_, roots, _ := newRepositoriesForTest(t)
	ctx := context.Background()

	added, err := roots.Add(ctx, "/music")
	if err != nil {
		t.Fatalf("add root: %v", err)
	}
	if !added.Enabled || added.Path != "/music" {
		t.Fatalf("unexpected added root: %+v", added)
	}

	if err := roots.SetEnabled(ctx, added.ID, false); err != nil {
		t.Fatalf("disable root: %v", err)
	}

	listed, err := roots.List(ctx)
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	if len(listed) != 1 || listed[0].Enabled {
		t.Fatalf("expected one disabled root, got %+v", listed)
	}

	if err := roots.Delete(ctx, added.ID); err != nil {
		t.Fatalf("delete root: %v", err)
	}
	if err := roots.Delete(ctx, added.ID); !errors.Is(err, ErrWatchedRootNotFound) {
		t.Fatalf("expected ErrWatchedRootNotFound, got %v", err)
	}
}
