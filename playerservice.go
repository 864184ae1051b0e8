package main

import "aria/internal/playback"

type PlayerService struct {
	manager *playback.Manager
}

func NewPlayerService(manager *playback.Manager) *PlayerService {
	return &PlayerService{manager: manager}
}

func (s *PlayerService) GetStatus() playback.Status {
	return s.manager.Snapshot()
}

func (s *PlayerService) Play() playback.Status {
	s.manager.Play()
	return s.manager.Snapshot()
}

func (s *PlayerService) Pause() playback.Status {
	s.manager.Pause()
	return s.manager.Snapshot()
}

func (s *PlayerService) TogglePlayback() playback.Status {
	s.manager.TogglePlayback()
	return s.manager.Snapshot()
}

func (s *PlayerService) Stop() playback.Status {
	s.manager.Stop()
	return s.manager.Snapshot()
}

func (s *PlayerService) Next() playback.Status {
	s.manager.Next()
	return s.manager.Snapshot()
}

func (s *PlayerService) Previous() playback.Status {
	s.manager.Previous()
	return s.manager.Snapshot()
}

func (s *PlayerService) Seek(seconds float64) playback.Status {
	s.manager.Seek(seconds)
	return s.manager.Snapshot()
}

func (s *PlayerService) SeekPercent(percent float64) playback.Status {
	s.manager.SeekPercent(percent)
	return s.manager.Snapshot()
}

func (s *PlayerService) SetVolume(level int) playback.Status {
	s.manager.SetVolume(level)
	return s.manager.Snapshot()
}

func (s *PlayerService) Mute() playback.Status {
	s.manager.Mute()
	return s.manager.Snapshot()
}

func (s *PlayerService) Unmute() playback.Status {
	s.manager.Unmute()
	return s.manager.Snapshot()
}

func (s *PlayerService) ToggleMute() playback.Status {
	s.manager.ToggleMute()
	return s.manager.Snapshot()
}
