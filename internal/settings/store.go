package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aria/internal/playback"
)

// Settings is the persisted playback state restored on startup.
type Settings struct {
	Volume      int                  `json:"volume"`
	Muted       bool                 `json:"muted"`
	Shuffle     playback.ShuffleMode `json:"shuffle"`
	Repeat      playback.RepeatMode  `json:"repeat"`
	HistorySize int                  `json:"historySize"`
}

func Defaults() Settings {
	return Settings{
		Volume:      playback.DefaultVolume,
		Muted:       false,
		Shuffle:     playback.ShuffleOff,
		Repeat:      playback.RepeatOff,
		HistorySize: playback.DefaultHistorySize,
	}
}

// PlaybackConfig maps stored settings onto the transport manager's config.
func (s Settings) PlaybackConfig() playback.Config {
	return playback.Config{
		Volume:      s.Volume,
		Shuffle:     s.Shuffle,
		Repeat:      s.Repeat,
		HistorySize: s.HistorySize,
	}
}

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) *Store {
	return &Store{db: database}
}

// Load returns the persisted settings, falling back to defaults when no row
// exists yet or when stored modes fail to parse.
func (s *Store) Load(ctx context.Context) (Settings, error) {
	loaded := Defaults()

	var muted int
	var shuffleRaw string
	var repeatRaw string
	err := s.db.QueryRowContext(ctx, `
		SELECT volume, muted, shuffle_mode, repeat_mode, history_size
		FROM playback_settings
		WHERE id = 1
	`).Scan(&loaded.Volume, &muted, &shuffleRaw, &repeatRaw, &loaded.HistorySize)
	if errors.Is(err, sql.ErrNoRows) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load playback settings: %w", err)
	}

	loaded.Muted = muted == 1

	if shuffle, parseErr := playback.ParseShuffleMode(shuffleRaw); parseErr == nil {
		loaded.Shuffle = shuffle
	}
	if repeat, parseErr := playback.ParseRepeatMode(repeatRaw); parseErr == nil {
		loaded.Repeat = repeat
	}

	return loaded, nil
}

func (s *Store) Save(ctx context.Context, settings Settings) error {
	muted := 0
	if settings.Muted {
		muted = 1
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO playback_settings(id, volume, muted, shuffle_mode, repeat_mode, history_size, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted,
			shuffle_mode = excluded.shuffle_mode,
			repeat_mode = excluded.repeat_mode,
			history_size = excluded.history_size,
			updated_at = excluded.updated_at
	`,
		settings.Volume,
		muted,
		string(settings.Shuffle),
		string(settings.Repeat),
		settings.HistorySize,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("save playback settings: %w", err)
	}

	return nil
}
