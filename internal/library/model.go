package library

import (
	"strconv"

	"aria/internal/playback"
)

type PageInfo struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

type TrackSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	AlbumArtist string `json:"albumArtist"`
	DiscNo      *int   `json:"discNo,omitempty"`
	TrackNo     *int   `json:"trackNo,omitempty"`
	Year        *int   `json:"year,omitempty"`
	DurationMS  *int   `json:"durationMs,omitempty"`
	Path        string `json:"path"`
}

type AlbumSummary struct {
	Title       string `json:"title"`
	AlbumArtist string `json:"albumArtist"`
	Year        *int   `json:"year,omitempty"`
	TrackCount  int    `json:"trackCount"`
}

type TracksPage struct {
	Items []TrackSummary `json:"items"`
	Page  PageInfo       `json:"page"`
}

type AlbumsPage struct {
	Items []AlbumSummary `json:"items"`
	Page  PageInfo       `json:"page"`
}

// Playable converts a library row into the shape the transport layer plays.
func (t TrackSummary) Playable() playback.Track {
	track := playback.Track{
		ID:     strconv.FormatInt(t.ID, 10),
		Title:  t.Title,
		Artist: t.Artist,
		Album:  t.Album,
		Path:   t.Path,
	}
	if t.DurationMS != nil {
		track.Duration = float64(*t.DurationMS) / 1000
	}

	return track
}
