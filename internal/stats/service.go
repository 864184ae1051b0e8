package stats

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const defaultListLimit = 25

const maxListLimit = 100

type PlayedTrack struct {
	TrackID  int64  `json:"trackId"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	PlayedAt string `json:"playedAt"`
}

type TrackPlayCount struct {
	TrackID   int64  `json:"trackId"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Album     string `json:"album"`
	PlayCount int    `json:"playCount"`
}

type Service struct {
	db *sql.DB
}

func NewService(database *sql.DB) *Service {
	return &Service{db: database}
}

// RecordPlay appends a play-log row for the track. Unknown ids fail the
// foreign key check and are reported to the caller.
func (s *Service) RecordPlay(ctx context.Context, trackID int64) error {
	if _, err := s.db.ExecContext(
		ctx,
		"INSERT INTO play_log(track_id, played_at) VALUES (?, ?)",
		trackID,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("record play for track %d: %w", trackID, err)
	}

	return nil
}

func (s *Service) RecentlyPlayed(ctx context.Context, limit int) ([]PlayedTrack, error) {
	limit = normalizeLimit(limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.track_id, t.title, t.artist, t.album, p.played_at
		FROM play_log p
		JOIN tracks t ON t.id = p.track_id
		ORDER BY p.played_at DESC, p.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recently played: %w", err)
	}
	defer rows.Close()

	played := make([]PlayedTrack, 0, limit)
	for rows.Next() {
		var item PlayedTrack
		if scanErr := rows.Scan(&item.TrackID, &item.Title, &item.Artist, &item.Album, &item.PlayedAt); scanErr != nil {
			return nil, fmt.Errorf("scan recently played row: %w", scanErr)
		}
		played = append(played, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate recently played rows: %w", rowsErr)
	}

	return played, nil
}

func (s *Service) MostPlayed(ctx context.Context, limit int) ([]TrackPlayCount, error) {
	limit = normalizeLimit(limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.track_id, t.title, t.artist, t.album, COUNT(1) AS play_count
		FROM play_log p
		JOIN tracks t ON t.id = p.track_id
		GROUP BY p.track_id
		ORDER BY play_count DESC, LOWER(t.title)
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list most played: %w", err)
	}
	defer rows.Close()

	counts := make([]TrackPlayCount, 0, limit)
	for rows.Next() {
		var item TrackPlayCount
		if scanErr := rows.Scan(&item.TrackID, &item.Title, &item.Artist, &item.Album, &item.PlayCount); scanErr != nil {
			return nil, fmt.Errorf("scan most played row: %w", scanErr)
		}
		counts = append(counts, item)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate most played rows: %w", rowsErr)
	}

	return counts, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}

	return limit
}
