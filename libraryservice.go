package main

import (
	"context"

	"aria/internal/library"
)

type LibraryService struct {
	browse *library.BrowseRepository
}

func NewLibraryService(browse *library.BrowseRepository) *LibraryService {
	return &LibraryService{browse: browse}
}

func (s *LibraryService) ListTracks(search string, artist string, album string, limit int, offset int) (library.TracksPage, error) {
	return s.browse.ListTracks(context.Background(), search, artist, album, limit, offset)
}

func (s *LibraryService) ListAlbums(search string, artist string, limit int, offset int) (library.AlbumsPage, error) {
	return s.browse.ListAlbums(context.Background(), search, artist, limit, offset)
}

func (s *LibraryService) GetAlbumTracks(title string, albumArtist string) ([]library.TrackSummary, error) {
	return s.browse.AlbumTracks(context.Background(), title, albumArtist)
}

func (s *LibraryService) GetTrack(trackID int64) (library.TrackSummary, error) {
	return s.browse.GetTrack(context.Background(), trackID)
}
