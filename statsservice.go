package main

import (
	"context"

	"aria/internal/stats"
)

type StatsService struct {
	stats *stats.Service
}

func NewStatsService(statsDomain *stats.Service) *StatsService {
	return &StatsService{stats: statsDomain}
}

func (s *StatsService) RecentlyPlayed(limit int) ([]stats.PlayedTrack, error) {
	return s.stats.RecentlyPlayed(context.Background(), limit)
}

func (s *StatsService) MostPlayed(limit int) ([]stats.TrackPlayCount, error) {
	return s.stats.MostPlayed(context.Background(), limit)
}
