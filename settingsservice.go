package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"aria/internal/library"
	"aria/internal/scanner"
	"aria/internal/settings"
)

type SettingsService struct {
	roots    *library.WatchedRootRepository
	scanner  *scanner.Service
	playback *settings.Store
}

func NewSettingsService(roots *library.WatchedRootRepository, scanService *scanner.Service, playbackStore *settings.Store) *SettingsService {
	return &SettingsService{roots: roots, scanner: scanService, playback: playbackStore}
}

func (s *SettingsService) ListWatchedRoots() ([]library.WatchedRoot, error) {
	return s.roots.List(context.Background())
}

func (s *SettingsService) AddWatchedRoot(path string) (library.WatchedRoot, error) {
	cleaned, err := normalizePath(path)
	if err != nil {
		return library.WatchedRoot{}, err
	}

	root, err := s.roots.Add(context.Background(), cleaned)
	if err != nil {
		return library.WatchedRoot{}, err
	}

	s.restartWatcher()
	return root, nil
}

func (s *SettingsService) RemoveWatchedRoot(id int64) error {
	err := s.roots.Delete(context.Background(), id)
	if errors.Is(err, library.ErrWatchedRootNotFound) {
		return fmt.Errorf("watched root %d does not exist", id)
	}
	if err == nil {
		s.restartWatcher()
	}
	return err
}

func (s *SettingsService) SetWatchedRootEnabled(id int64, enabled bool) error {
	err := s.roots.SetEnabled(context.Background(), id, enabled)
	if errors.Is(err, library.ErrWatchedRootNotFound) {
		return fmt.Errorf("watched root %d does not exist", id)
	}
	if err == nil {
		s.restartWatcher()
	}
	return err
}

func (s *SettingsService) GetPlaybackSettings() (settings.Settings, error) {
	return s.playback.Load(context.Background())
}

// restartWatcher re-registers filesystem watches after the root set changes.
// Watch failures are not fatal to the settings operation itself.
func (s *SettingsService) restartWatcher() {
	if s.scanner == nil {
		return
	}
	_ = s.scanner.StartWatching()
}

func normalizePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is required")
	}

	absPath, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	return filepath.Clean(absPath), nil
}
