package playback

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

const (
	DefaultVolume      = 80
	DefaultHistorySize = 50

	// Previous restarts the current track instead of going back once
	// playback is past this point.
	previousRestartThreshold = 3.0
)

// Config carries the persisted session defaults supplied at construction.
// The manager itself reads and writes no storage.
type Config struct {
	Volume      int
	Shuffle     ShuffleMode
	Repeat      RepeatMode
	HistorySize int
}

func DefaultConfig() Config {
	return Config{
		Volume:      DefaultVolume,
		Shuffle:     ShuffleOff,
		Repeat:      RepeatOff,
		HistorySize: DefaultHistorySize,
	}
}

// Status is the composite snapshot emitted to UI layers.
type Status struct {
	State        State       `json:"state"`
	Position     float64     `json:"position"`
	Duration     float64     `json:"duration,omitempty"`
	Volume       int         `json:"volume"`
	Muted        bool        `json:"muted"`
	Shuffle      ShuffleMode `json:"shuffle"`
	Repeat       RepeatMode  `json:"repeat"`
	CurrentTrack *Track      `json:"currentTrack,omitempty"`
	QueueLength  int         `json:"queueLength"`
	UpdatedAt    string      `json:"updatedAt"`
}

// Manager is the single authority for what is playing, what plays next, and
// what played before. All mutations are serialized by one mutex; events fire
// after the mutation commits, outside the lock.
type Manager struct {
	mu      sync.Mutex
	backend AudioBackend

	explicit      []Track
	source        []Track
	originalOrder []Track
	history       []Track
	historySize   int

	state    State
	current  *Track
	position float64

	shuffle ShuffleMode
	repeat  RepeatMode

	volume         int
	muted          bool
	previousVolume int

	// Bumped on every load and on stop; a completion whose generation no
	// longer matches was superseded and is discarded.
	loadGeneration uint64

	listeners        map[EventType]map[int]Handler
	nextSubscription int

	rng       *rand.Rand
	updatedAt time.Time
	closed    bool
}

func NewManager(backend AudioBackend, config Config) *Manager {
	historySize := config.HistorySize
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}

	manager := &Manager{
		backend:     backend,
		historySize: historySize,
		state:       StateStopped,
		shuffle:     config.Shuffle,
		repeat:      config.Repeat,
		volume:      clampVolume(config.Volume),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if manager.shuffle == "" {
		manager.shuffle = ShuffleOff
	}
	if manager.repeat == "" {
		manager.repeat = RepeatOff
	}

	backend.SetOnEnded(manager.handleEnded)
	backend.SetOnTimeUpdate(manager.handleTimeUpdate)
	backend.SetOnError(manager.handleBackendError)

	if err := backend.SetVolume(manager.volume); err != nil {
		slog.Warn("apply initial volume", "error", err)
	}

	return manager
}

// Play resumes paused playback, or pulls the next track when stopped. A
// redundant call while already playing is a no-op.
func (m *Manager) Play() {
	m.mu.Lock()
	switch m.state {
	case StatePlaying:
		m.mu.Unlock()
		return
	case StatePaused:
		m.state = StatePlaying
		m.touchLocked()
		m.mu.Unlock()

		if err := m.backend.Play(); err != nil {
			m.failPlayback(err)
			return
		}
		m.emit(EventState, StatePlaying)
		return
	}
	m.mu.Unlock()

	m.advance(false)
}

// Pause is only valid while playing; anything else is a no-op.
func (m *Manager) Pause() {
	m.mu.Lock()
	if m.state != StatePlaying {
		m.mu.Unlock()
		return
	}
	m.state = StatePaused
	m.touchLocked()
	m.mu.Unlock()

	if err := m.backend.Pause(); err != nil {
		m.failPlayback(err)
		return
	}
	m.emit(EventState, StatePaused)
}

func (m *Manager) TogglePlayback() {
	if m.State() == StatePlaying {
		m.Pause()
		return
	}
	m.Play()
}

// Stop unconditionally halts the backend, clears the current track, and
// invalidates any in-flight load.
func (m *Manager) Stop() {
	m.mu.Lock()
	m.loadGeneration++
	m.state = StateStopped
	m.current = nil
	m.position = 0
	m.touchLocked()
	m.mu.Unlock()

	if err := m.backend.Stop(); err != nil {
		slog.Warn("stop backend", "error", err)
	}

	m.emit(EventState, StateStopped)
	m.emit(EventTrack, (*Track)(nil))
}

func (m *Manager) Next() {
	m.advance(true)
}

// Previous restarts the current track when more than three seconds in,
// otherwise steps back through history. The displaced current track is
// pushed to the front of the explicit queue so it is not lost.
func (m *Manager) Previous() {
	position, err := m.backend.Position()
	if err != nil {
		slog.Warn("read backend position", "error", err)
		position = 0
	}
	if position > previousRestartThreshold {
		m.Seek(0)
		return
	}

	m.mu.Lock()
	previous, ok := m.popHistoryLocked()
	if !ok {
		m.mu.Unlock()
		m.Seek(0)
		return
	}
	if m.current != nil {
		m.explicit = append([]Track{*m.current}, m.explicit...)
	}
	m.touchLocked()
	m.mu.Unlock()

	m.emit(EventQueue, m.QueueSnapshot())
	m.loadAndPlay(previous)
}

// Seek delegates to the backend; the backend owns clamping against duration.
func (m *Manager) Seek(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}

	if err := m.backend.Seek(seconds); err != nil {
		slog.Warn("seek backend", "position", seconds, "error", err)
		return
	}

	m.mu.Lock()
	m.position = seconds
	m.touchLocked()
	m.mu.Unlock()

	m.emit(EventPosition, seconds)
}

func (m *Manager) SeekPercent(percent float64) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	duration, err := m.backend.Duration()
	if err != nil || duration <= 0 {
		return
	}

	m.Seek(duration * percent / 100)
}

func (m *Manager) SetVolume(level int) {
	level = clampVolume(level)

	m.mu.Lock()
	m.volume = level
	muted := m.muted
	m.touchLocked()
	m.mu.Unlock()

	if !muted {
		if err := m.backend.SetVolume(level); err != nil {
			slog.Warn("set backend volume", "volume", level, "error", err)
		}
	}

	m.emit(EventVolume, level)
}

func (m *Manager) Mute() {
	m.mu.Lock()
	if m.muted {
		m.mu.Unlock()
		return
	}
	m.muted = true
	m.previousVolume = m.volume
	m.touchLocked()
	m.mu.Unlock()

	if err := m.backend.SetVolume(0); err != nil {
		slog.Warn("mute backend", "error", err)
	}

	m.emit(EventMute, true)
}

func (m *Manager) Unmute() {
	m.mu.Lock()
	if !m.muted {
		m.mu.Unlock()
		return
	}
	m.muted = false
	if m.volume == 0 && m.previousVolume > 0 {
		m.volume = m.previousVolume
	}
	volume := m.volume
	m.touchLocked()
	m.mu.Unlock()

	if err := m.backend.SetVolume(volume); err != nil {
		slog.Warn("unmute backend", "volume", volume, "error", err)
	}

	m.emit(EventMute, false)
}

func (m *Manager) ToggleMute() {
	if m.Muted() {
		m.Unmute()
		return
	}
	m.Mute()
}

// advance is the shared path behind Next, end-of-track, and Play from
// stopped. pushHistory records the outgoing track (manual skip and natural
// end do; a cold-start Play does not).
func (m *Manager) advance(pushHistory bool) {
	m.mu.Lock()

	// Repeat-one lock: restart the same track, touch nothing else.
	if m.repeat == RepeatOne && m.current != nil {
		m.state = StatePlaying
		m.touchLocked()
		m.mu.Unlock()

		if err := m.backend.Seek(0); err != nil {
			m.failPlayback(err)
			return
		}
		if err := m.backend.Play(); err != nil {
			m.failPlayback(err)
			return
		}
		m.emit(EventState, StatePlaying)
		return
	}

	if pushHistory && m.current != nil {
		m.pushHistoryLocked(*m.current)
	}

	next, ok := m.dequeueLocked()
	m.mu.Unlock()

	if !ok {
		m.Stop()
		return
	}

	m.emit(EventQueue, m.QueueSnapshot())
	m.loadAndPlay(next)
}

// loadAndPlay owns the Loading -> Playing transition. A failed load leaves
// the failed track out of the queue and the manager stopped; there is no
// retry and no automatic skip.
func (m *Manager) loadAndPlay(track Track) {
	m.mu.Lock()
	m.loadGeneration++
	generation := m.loadGeneration
	current := track
	m.current = &current
	m.state = StateLoading
	m.position = 0
	m.touchLocked()
	m.mu.Unlock()

	m.emit(EventTrack, m.CurrentTrack())
	m.emit(EventState, StateLoading)

	err := m.backend.Load(track.Path)

	m.mu.Lock()
	if generation != m.loadGeneration {
		// Superseded by a newer load or a stop while we were waiting.
		m.mu.Unlock()
		return
	}
	if err != nil {
		m.state = StateStopped
		m.touchLocked()
		m.mu.Unlock()

		slog.Error("load track", "path", track.Path, "error", err)
		m.emit(EventState, StateStopped)
		m.emit(EventError, err)
		return
	}
	if duration, durationErr := m.backend.Duration(); durationErr == nil && duration > 0 {
		m.current.Duration = duration
	}
	m.state = StatePlaying
	m.touchLocked()
	m.mu.Unlock()

	if err := m.backend.Play(); err != nil {
		m.failPlayback(err)
		return
	}
	m.emit(EventState, StatePlaying)
}

func (m *Manager) failPlayback(err error) {
	m.mu.Lock()
	m.state = StateStopped
	m.touchLocked()
	m.mu.Unlock()

	slog.Error("playback failed", "error", err)
	m.emit(EventState, StateStopped)
	m.emit(EventError, err)
}

func (m *Manager) handleEnded() {
	m.advance(true)
}

func (m *Manager) handleTimeUpdate(position float64) {
	m.mu.Lock()
	m.position = position
	m.mu.Unlock()

	m.emit(EventPosition, position)
}

func (m *Manager) handleBackendError(err error) {
	m.failPlayback(err)
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) CurrentTrack() *Track {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil
	}

	track := *m.current
	return &track
}

func (m *Manager) Position() float64 {
	position, err := m.backend.Position()
	if err != nil {
		m.mu.Lock()
		defer m.mu.Unlock()
		return m.position
	}

	return position
}

func (m *Manager) Duration() float64 {
	duration, err := m.backend.Duration()
	if err == nil && duration > 0 {
		return duration
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		return m.current.Duration
	}
	return 0
}

func (m *Manager) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.volume
}

func (m *Manager) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

func (m *Manager) ShuffleMode() ShuffleMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shuffle
}

func (m *Manager) RepeatMode() RepeatMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repeat
}

func (m *Manager) Snapshot() Status {
	position := m.Position()
	duration := m.Duration()

	m.mu.Lock()
	defer m.mu.Unlock()

	status := Status{
		State:       m.state,
		Position:    position,
		Duration:    duration,
		Volume:      m.volume,
		Muted:       m.muted,
		Shuffle:     m.shuffle,
		Repeat:      m.repeat,
		QueueLength: len(m.explicit) + len(m.source),
	}
	if m.current != nil {
		track := *m.current
		status.CurrentTrack = &track
	}
	if !m.updatedAt.IsZero() {
		status.UpdatedAt = m.updatedAt.UTC().Format(time.RFC3339)
	}

	return status
}

// Close tears the session down: stops audio, releases the backend, and drops
// all subscribers.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.loadGeneration++
	m.state = StateStopped
	m.current = nil
	m.listeners = nil
	m.mu.Unlock()

	if err := m.backend.Stop(); err != nil {
		slog.Warn("stop backend on close", "error", err)
	}

	return m.backend.Close()
}

func (m *Manager) touchLocked() {
	m.updatedAt = time.Now().UTC()
}

func clampVolume(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}
