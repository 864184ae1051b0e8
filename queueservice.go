package main

import (
	"context"
	"fmt"

	"aria/internal/library"
	"aria/internal/playback"
)

type QueueService struct {
	manager *playback.Manager
	browse  *library.BrowseRepository
}

func NewQueueService(manager *playback.Manager, browse *library.BrowseRepository) *QueueService {
	return &QueueService{manager: manager, browse: browse}
}

func (s *QueueService) GetState() playback.QueueState {
	return s.manager.QueueSnapshot()
}

// SetQueue replaces the playback context with the given tracks and starts
// playing from the front, even when something else is already playing.
func (s *QueueService) SetQueue(trackIDs []int64) (playback.QueueState, error) {
	tracks, err := s.resolveTracks(trackIDs)
	if err != nil {
		return playback.QueueState{}, err
	}

	s.startContext(tracks)
	return s.manager.QueueSnapshot(), nil
}

// PlayAlbum loads an album as the playback context in disc/track order.
func (s *QueueService) PlayAlbum(title string, albumArtist string) (playback.QueueState, error) {
	tracks, err := s.browse.AlbumTracks(context.Background(), title, albumArtist)
	if err != nil {
		return playback.QueueState{}, err
	}

	playable := make([]playback.Track, len(tracks))
	for i, track := range tracks {
		playable[i] = track.Playable()
	}

	s.startContext(playable)
	return s.manager.QueueSnapshot(), nil
}

// startContext swaps in a new playback context. Play is a no-op while already
// playing, so the current track has to be stopped first for the new front of
// the queue to take over.
func (s *QueueService) startContext(tracks []playback.Track) {
	s.manager.Stop()
	s.manager.LoadPlaylist(tracks)
	s.manager.Play()
}

func (s *QueueService) PlayNext(trackID int64) (playback.QueueState, error) {
	track, err := s.browse.GetTrack(context.Background(), trackID)
	if err != nil {
		return playback.QueueState{}, fmt.Errorf("queue track %d: %w", trackID, err)
	}

	s.manager.AddToQueueNext(track.Playable())
	return s.manager.QueueSnapshot(), nil
}

func (s *QueueService) AddToQueue(trackID int64) (playback.QueueState, error) {
	track, err := s.browse.GetTrack(context.Background(), trackID)
	if err != nil {
		return playback.QueueState{}, fmt.Errorf("queue track %d: %w", trackID, err)
	}

	s.manager.AddToQueueEnd(track.Playable())
	return s.manager.QueueSnapshot(), nil
}

// AppendTracks extends the current playback context without clearing
// user-queued tracks.
func (s *QueueService) AppendTracks(trackIDs []int64) (playback.QueueState, error) {
	tracks, err := s.resolveTracks(trackIDs)
	if err != nil {
		return playback.QueueState{}, err
	}

	s.manager.AppendToQueue(tracks)
	return s.manager.QueueSnapshot(), nil
}

func (s *QueueService) RemoveTrack(index int) (playback.QueueState, error) {
	if _, ok := s.manager.RemoveFromQueue(index); !ok {
		return playback.QueueState{}, fmt.Errorf("queue index %d out of range", index)
	}

	return s.manager.QueueSnapshot(), nil
}

func (s *QueueService) Clear() playback.QueueState {
	s.manager.ClearQueue()
	return s.manager.QueueSnapshot()
}

func (s *QueueService) GetHistory() []playback.Track {
	return s.manager.History()
}

func (s *QueueService) SetShuffleMode(mode string) (playback.QueueState, error) {
	parsed, err := playback.ParseShuffleMode(mode)
	if err != nil {
		return playback.QueueState{}, err
	}

	s.manager.SetShuffleMode(parsed)
	return s.manager.QueueSnapshot(), nil
}

func (s *QueueService) SetRepeatMode(mode string) (playback.QueueState, error) {
	parsed, err := playback.ParseRepeatMode(mode)
	if err != nil {
		return playback.QueueState{}, err
	}

	s.manager.SetRepeatMode(parsed)
	return s.manager.QueueSnapshot(), nil
}

func (s *QueueService) resolveTracks(trackIDs []int64) ([]playback.Track, error) {
	summaries, err := s.browse.TracksByIDs(context.Background(), trackIDs)
	if err != nil {
		return nil, err
	}

	tracks := make([]playback.Track, len(summaries))
	for i, summary := range summaries {
		tracks[i] = summary.Playable()
	}

	return tracks, nil
}
