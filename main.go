package main

import (
	"context"
	"embed"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/wailsapp/wails/v3/pkg/application"

	"aria/internal/config"
	"aria/internal/db"
	"aria/internal/library"
	"aria/internal/playback"
	"aria/internal/scanner"
	"aria/internal/settings"
	"aria/internal/stats"
)

// Wails uses Go's `embed` package to embed the frontend files into the binary.
// Any files in the frontend/dist folder will be embedded into the binary and
// made available to the frontend.
// See https://pkg.go.dev/embed for more information.

//go:embed all:frontend/dist
var assets embed.FS

func init() {
	application.RegisterEvent[scanner.Progress](scanner.EventProgress)
	application.RegisterEvent[playback.Status](playback.EventNamePlayerState)
	application.RegisterEvent[playback.QueueState](playback.EventNameQueueState)
	application.RegisterEvent[string](playback.EventNamePlayerError)
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	paths, err := config.ResolvePaths("aria")
	if err != nil {
		fatal(logger, "resolve paths", err)
	}

	sqliteDB, err := db.Bootstrap(paths.DBPath)
	if err != nil {
		fatal(logger, "bootstrap database", err)
	}
	defer sqliteDB.Close()

	watchedRoots := library.NewWatchedRootRepository(sqliteDB)
	browseRepo := library.NewBrowseRepository(sqliteDB)
	settingsStore := settings.NewStore(sqliteDB)
	statsDomain := stats.NewService(sqliteDB)
	scannerDomain := scanner.NewService(sqliteDB, watchedRoots)

	stored, err := settingsStore.Load(context.Background())
	if err != nil {
		logger.Warn("loading playback settings failed, using defaults", "error", err)
		stored = settings.Defaults()
	}

	backend, err := playback.NewBackend()
	if err != nil {
		fatal(logger, "initialize audio backend", err)
	}

	manager := playback.NewManager(backend, stored.PlaybackConfig())
	defer manager.Close()
	if stored.Muted {
		manager.Mute()
	}

	settingsService := NewSettingsService(watchedRoots, scannerDomain, settingsStore)
	libraryService := NewLibraryService(browseRepo)
	queueService := NewQueueService(manager, browseRepo)
	playerService := NewPlayerService(manager)
	scannerService := NewScannerService(scannerDomain)
	statsService := NewStatsService(statsDomain)

	app := application.New(application.Options{
		Name:        "Aria",
		Description: "Desktop music player",
		Services: []application.Service{
			application.NewService(settingsService),
			application.NewService(libraryService),
			application.NewService(queueService),
			application.NewService(playerService),
			application.NewService(scannerService),
			application.NewService(statsService),
		},
		Assets: application.AssetOptions{
			Handler: application.AssetFileServerFS(assets),
		},
		Mac: application.MacOptions{
			ApplicationShouldTerminateAfterLastWindowClosed: true,
		},
	})

	scannerDomain.SetEmitter(func(eventName string, payload any) {
		app.Event.Emit(eventName, payload)
	})

	forwardPlayerEvents(app, manager)
	persistSettingsOnChange(logger, settingsStore, manager, stored.HistorySize)
	recordPlaysOnTrackChange(logger, statsDomain, manager)

	if err := scannerDomain.StartWatching(); err != nil {
		logger.Warn("scanner watcher disabled", "error", err)
	}
	defer scannerDomain.StopWatching()

	app.Window.NewWithOptions(application.WebviewWindowOptions{
		Title: "Aria",
		Mac: application.MacWindow{
			InvisibleTitleBarHeight: 50,
			Backdrop:                application.MacBackdropTranslucent,
			TitleBar:                application.MacTitleBarHiddenInset,
		},
		BackgroundColour: application.NewRGB(12, 18, 24),
		URL:              "/",
	})

	if err := app.Run(); err != nil {
		fatal(logger, "run application", err)
	}
}

// forwardPlayerEvents bridges the manager's typed events onto the Wails event
// bus for the webview.
func forwardPlayerEvents(app *application.App, manager *playback.Manager) {
	emitStatus := func(any) {
		app.Event.Emit(playback.EventNamePlayerState, manager.Snapshot())
	}

	manager.Subscribe(playback.EventState, emitStatus)
	manager.Subscribe(playback.EventTrack, emitStatus)
	manager.Subscribe(playback.EventPosition, emitStatus)
	manager.Subscribe(playback.EventVolume, emitStatus)
	manager.Subscribe(playback.EventMute, emitStatus)

	manager.Subscribe(playback.EventQueue, func(any) {
		app.Event.Emit(playback.EventNameQueueState, manager.QueueSnapshot())
	})
	manager.Subscribe(playback.EventShuffle, func(any) {
		app.Event.Emit(playback.EventNameQueueState, manager.QueueSnapshot())
	})
	manager.Subscribe(playback.EventRepeat, func(any) {
		app.Event.Emit(playback.EventNameQueueState, manager.QueueSnapshot())
	})

	manager.Subscribe(playback.EventError, func(payload any) {
		if err, ok := payload.(error); ok {
			app.Event.Emit(playback.EventNamePlayerError, err.Error())
		}
	})
}

// persistSettingsOnChange saves volume, mute, and mode changes so they
// survive a restart.
func persistSettingsOnChange(logger *slog.Logger, store *settings.Store, manager *playback.Manager, historySize int) {
	save := func(any) {
		status := manager.Snapshot()
		saved := settings.Settings{
			Volume:      status.Volume,
			Muted:       status.Muted,
			Shuffle:     status.Shuffle,
			Repeat:      status.Repeat,
			HistorySize: historySize,
		}
		if err := store.Save(context.Background(), saved); err != nil {
			logger.Warn("persisting playback settings failed", "error", err)
		}
	}

	manager.Subscribe(playback.EventVolume, save)
	manager.Subscribe(playback.EventMute, save)
	manager.Subscribe(playback.EventShuffle, save)
	manager.Subscribe(playback.EventRepeat, save)
}

// recordPlaysOnTrackChange appends to the play log once a newly loaded track
// actually reaches the playing state. Track events fire while the load is
// still in flight, so the track is held as pending until the playing
// transition confirms the load succeeded; resumes from pause carry no pending
// track and are not re-counted.
func recordPlaysOnTrackChange(logger *slog.Logger, statsDomain *stats.Service, manager *playback.Manager) {
	var mu sync.Mutex
	var pending *playback.Track

	manager.Subscribe(playback.EventTrack, func(payload any) {
		track, _ := payload.(*playback.Track)
		mu.Lock()
		pending = track
		mu.Unlock()
	})

	manager.Subscribe(playback.EventState, func(payload any) {
		state, ok := payload.(playback.State)
		if !ok || state != playback.StatePlaying {
			return
		}

		mu.Lock()
		track := pending
		pending = nil
		mu.Unlock()
		if track == nil {
			return
		}

		trackID, err := strconv.ParseInt(track.ID, 10, 64)
		if err != nil {
			// Tracks queued outside the library carry non-numeric ids.
			return
		}

		if err := statsDomain.RecordPlay(context.Background(), trackID); err != nil {
			logger.Warn("recording play failed", "track", track.ID, "error", err)
		}
	})
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
