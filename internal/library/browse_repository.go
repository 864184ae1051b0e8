package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var ErrAlbumNotFound = errors.New("album not found")

var ErrTrackNotFound = errors.New("track not found")

type BrowseRepository struct {
	db *sql.DB
}

const defaultBrowseLimit = 50

const maxBrowseLimit = 500

func NewBrowseRepository(database *sql.DB) *BrowseRepository {
	return &BrowseRepository{db: database}
}

func (r *BrowseRepository) ListTracks(ctx context.Context, search string, artist string, album string, limit int, offset int) (TracksPage, error) {
	limit, offset = normalizePagination(limit, offset)

	whereClauses := []string{"f.file_exists = 1"}
	args := make([]any, 0, 8)

	if pattern := makeSearchPattern(search); pattern != "" {
		whereClauses = append(whereClauses, "(LOWER(t.title) LIKE ? OR LOWER(t.artist) LIKE ? OR LOWER(t.album) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if artistFilter := strings.TrimSpace(artist); artistFilter != "" {
		whereClauses = append(whereClauses, "LOWER(t.artist) = LOWER(?)")
		args = append(args, artistFilter)
	}
	if albumFilter := strings.TrimSpace(album); albumFilter != "" {
		whereClauses = append(whereClauses, "LOWER(t.album) = LOWER(?)")
		args = append(args, albumFilter)
	}

	whereSQL := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf(`
		SELECT COUNT(1)
		FROM tracks t
		JOIN files f ON f.id = t.file_id
		WHERE %s
	`, whereSQL)

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return TracksPage{}, fmt.Errorf("count tracks: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT
			t.id, t.title, t.artist, t.album, t.album_artist,
			t.disc_no, t.track_no, t.year, t.duration_ms, f.path
		FROM tracks t
		JOIN files f ON f.id = t.file_id
		WHERE %s
		ORDER BY
			LOWER(t.artist),
			LOWER(t.album),
			COALESCE(t.disc_no, 0),
			COALESCE(t.track_no, 0),
			LOWER(t.title)
		LIMIT ?
		OFFSET ?
	`, whereSQL)

	listArgs := append(cloneArgs(args), limit, offset)

	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return TracksPage{}, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	tracks, err := scanTrackRows(rows)
	if err != nil {
		return TracksPage{}, err
	}

	return TracksPage{
		Items: tracks,
		Page: PageInfo{
			Limit:  limit,
			Offset: offset,
			Total:  total,
		},
	}, nil
}

func (r *BrowseRepository) ListAlbums(ctx context.Context, search string, artist string, limit int, offset int) (AlbumsPage, error) {
	limit, offset = normalizePagination(limit, offset)

	whereClauses := []string{"f.file_exists = 1"}
	args := make([]any, 0, 4)

	if pattern := makeSearchPattern(search); pattern != "" {
		whereClauses = append(whereClauses, "(LOWER(t.album) LIKE ? OR LOWER(t.album_artist) LIKE ?)")
		args = append(args, pattern, pattern)
	}
	if artistFilter := strings.TrimSpace(artist); artistFilter != "" {
		whereClauses = append(whereClauses, "LOWER(t.album_artist) = LOWER(?)")
		args = append(args, artistFilter)
	}

	whereSQL := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf(`
		SELECT COUNT(1) FROM (
			SELECT 1
			FROM tracks t
			JOIN files f ON f.id = t.file_id
			WHERE %s
			GROUP BY LOWER(t.album), LOWER(t.album_artist)
		)
	`, whereSQL)

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return AlbumsPage{}, fmt.Errorf("count albums: %w", err)
	}

	listQuery := fmt.Sprintf(`
		SELECT
			t.album,
			t.album_artist,
			MIN(t.year) AS album_year,
			COUNT(1) AS track_count
		FROM tracks t
		JOIN files f ON f.id = t.file_id
		WHERE %s
		GROUP BY LOWER(t.album), LOWER(t.album_artist)
		ORDER BY LOWER(t.album_artist), LOWER(t.album)
		LIMIT ?
		OFFSET ?
	`, whereSQL)

	listArgs := append(cloneArgs(args), limit, offset)

	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return AlbumsPage{}, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	albums := make([]AlbumSummary, 0)
	for rows.Next() {
		var album AlbumSummary
		var year sql.NullInt64
		if scanErr := rows.Scan(&album.Title, &album.AlbumArtist, &year, &album.TrackCount); scanErr != nil {
			return AlbumsPage{}, fmt.Errorf("scan album row: %w", scanErr)
		}
		album.Year = intPointer(year)
		albums = append(albums, album)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return AlbumsPage{}, fmt.Errorf("iterate album rows: %w", rowsErr)
	}

	return AlbumsPage{
		Items: albums,
		Page: PageInfo{
			Limit:  limit,
			Offset: offset,
			Total:  total,
		},
	}, nil
}

// AlbumTracks returns the album's tracks in disc/track order, suitable for
// seeding a playback context.
func (r *BrowseRepository) AlbumTracks(ctx context.Context, title string, albumArtist string) ([]TrackSummary, error) {
	albumTitle := strings.TrimSpace(title)
	artistName := strings.TrimSpace(albumArtist)
	if albumTitle == "" {
		return nil, errors.New("album title is required")
	}

	whereClauses := []string{"f.file_exists = 1", "LOWER(t.album) = LOWER(?)"}
	args := []any{albumTitle}
	if artistName != "" {
		whereClauses = append(whereClauses, "LOWER(t.album_artist) = LOWER(?)")
		args = append(args, artistName)
	}

	query := fmt.Sprintf(`
		SELECT
			t.id, t.title, t.artist, t.album, t.album_artist,
			t.disc_no, t.track_no, t.year, t.duration_ms, f.path
		FROM tracks t
		JOIN files f ON f.id = t.file_id
		WHERE %s
		ORDER BY
			COALESCE(t.disc_no, 0),
			COALESCE(t.track_no, 0),
			LOWER(t.title),
			t.id
	`, strings.Join(whereClauses, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list album tracks for %q: %w", albumTitle, err)
	}
	defer rows.Close()

	tracks, err := scanTrackRows(rows)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, ErrAlbumNotFound
	}

	return tracks, nil
}

// TracksByIDs resolves the given track ids, preserving the request order.
// Missing or deleted tracks are skipped rather than failing the whole lookup.
func (r *BrowseRepository) TracksByIDs(ctx context.Context, trackIDs []int64) ([]TrackSummary, error) {
	if len(trackIDs) == 0 {
		return []TrackSummary{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(trackIDs)), ",")
	args := make([]any, len(trackIDs))
	for i, id := range trackIDs {
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT
			t.id, t.title, t.artist, t.album, t.album_artist,
			t.disc_no, t.track_no, t.year, t.duration_ms, f.path
		FROM tracks t
		JOIN files f ON f.id = t.file_id
		WHERE f.file_exists = 1
		  AND t.id IN (%s)
	`, placeholders)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("lookup tracks by ids: %w", err)
	}
	defer rows.Close()

	found, err := scanTrackRows(rows)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]TrackSummary, len(found))
	for _, track := range found {
		byID[track.ID] = track
	}

	ordered := make([]TrackSummary, 0, len(trackIDs))
	for _, id := range trackIDs {
		if track, ok := byID[id]; ok {
			ordered = append(ordered, track)
		}
	}

	return ordered, nil
}

func (r *BrowseRepository) GetTrack(ctx context.Context, trackID int64) (TrackSummary, error) {
	tracks, err := r.TracksByIDs(ctx, []int64{trackID})
	if err != nil {
		return TrackSummary{}, err
	}
	if len(tracks) == 0 {
		return TrackSummary{}, ErrTrackNotFound
	}

	return tracks[0], nil
}

func scanTrackRows(rows *sql.Rows) ([]TrackSummary, error) {
	tracks := make([]TrackSummary, 0)
	for rows.Next() {
		var track TrackSummary
		var discNo sql.NullInt64
		var trackNo sql.NullInt64
		var year sql.NullInt64
		var durationMS sql.NullInt64
		if err := rows.Scan(
			&track.ID,
			&track.Title,
			&track.Artist,
			&track.Album,
			&track.AlbumArtist,
			&discNo,
			&trackNo,
			&year,
			&durationMS,
			&track.Path,
		); err != nil {
			return nil, fmt.Errorf("scan track row: %w", err)
		}
		track.DiscNo = intPointer(discNo)
		track.TrackNo = intPointer(trackNo)
		track.Year = intPointer(year)
		track.DurationMS = intPointer(durationMS)
		tracks = append(tracks, track)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate track rows: %w", err)
	}

	return tracks, nil
}

func normalizePagination(limit int, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultBrowseLimit
	}
	if limit > maxBrowseLimit {
		limit = maxBrowseLimit
	}
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

func makeSearchPattern(search string) string {
	trimmed := strings.TrimSpace(search)
	if trimmed == "" {
		return ""
	}

	return "%" + strings.ToLower(trimmed) + "%"
}

func cloneArgs(args []any) []any {
	copyArgs := make([]any, len(args))
	copy(copyArgs, args)
	return copyArgs
}

func intPointer(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}

	intValue := int(value.Int64)
	return &intValue
}
