package playback

import "time"

// QueueState is the queue snapshot emitted to UI layers. Entries is the
// effective play order: explicit queue first, then the source queue.
type QueueState struct {
	Entries       []Track     `json:"entries"`
	ExplicitCount int         `json:"explicitCount"`
	Shuffle       ShuffleMode `json:"shuffle"`
	Repeat        RepeatMode  `json:"repeat"`
	Total         int         `json:"total"`
	UpdatedAt     string      `json:"updatedAt"`
}

// AddToQueueNext inserts a track at the front of the explicit queue.
func (m *Manager) AddToQueueNext(track Track) {
	m.mu.Lock()
	m.explicit = append([]Track{track}, m.explicit...)
	m.touchLocked()
	m.mu.Unlock()

	m.emit(EventQueue, m.QueueSnapshot())
}

// AddToQueueEnd appends a track to the explicit queue.
func (m *Manager) AddToQueueEnd(track Track) {
	m.mu.Lock()
	m.explicit = append(m.explicit, track)
	m.touchLocked()
	m.mu.Unlock()

	m.emit(EventQueue, m.QueueSnapshot())
}

// LoadPlaylist replaces the playback context wholesale: the source queue and
// its original-order snapshot take the given tracks and the explicit queue is
// cleared, mirroring how starting a playlist replaces rather than appends.
func (m *Manager) LoadPlaylist(tracks []Track) {
	m.mu.Lock()
	m.source = copyTracks(tracks)
	m.originalOrder = copyTracks(tracks)
	m.explicit = nil
	if m.shuffle != ShuffleOff {
		m.shuffleTracksLocked(m.shuffle, m.source)
	}
	m.touchLocked()
	m.mu.Unlock()

	m.emit(EventQueue, m.QueueSnapshot())
}

// AppendToQueue adds more tracks from the active context: the original-order
// snapshot grows unshuffled, the live source queue gets a shuffled copy when
// shuffle is active.
func (m *Manager) AppendToQueue(tracks []Track) {
	if len(tracks) == 0 {
		return
	}

	m.mu.Lock()
	m.originalOrder = append(m.originalOrder, copyTracks(tracks)...)
	added := copyTracks(tracks)
	if m.shuffle != ShuffleOff {
		m.shuffleTracksLocked(m.shuffle, added)
	}
	m.source = append(m.source, added...)
	m.touchLocked()
	m.mu.Unlock()

	m.emit(EventQueue, m.QueueSnapshot())
}

// RemoveFromQueue removes the entry at index over the combined view. An
// out-of-range index reports false rather than failing.
func (m *Manager) RemoveFromQueue(index int) (Track, bool) {
	m.mu.Lock()
	if index < 0 || index >= len(m.explicit)+len(m.source) {
		m.mu.Unlock()
		return Track{}, false
	}

	var removed Track
	if index < len(m.explicit) {
		removed = m.explicit[index]
		m.explicit = append(m.explicit[:index], m.explicit[index+1:]...)
	} else {
		sourceIndex := index - len(m.explicit)
		removed = m.source[sourceIndex]
		m.source = append(m.source[:sourceIndex], m.source[sourceIndex+1:]...)
	}
	m.touchLocked()
	m.mu.Unlock()

	m.emit(EventQueue, m.QueueSnapshot())
	return removed, true
}

func (m *Manager) ClearQueue() {
	m.mu.Lock()
	m.explicit = nil
	m.source = nil
	m.originalOrder = nil
	m.touchLocked()
	m.mu.Unlock()

	m.emit(EventQueue, m.QueueSnapshot())
}

// Queue returns the combined play order, explicit entries first.
func (m *Manager) Queue() []Track {
	m.mu.Lock()
	defer m.mu.Unlock()

	combined := make([]Track, 0, len(m.explicit)+len(m.source))
	combined = append(combined, m.explicit...)
	combined = append(combined, m.source...)
	return combined
}

func (m *Manager) QueueLength() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.explicit) + len(m.source)
}

func (m *Manager) History() []Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyTracks(m.history)
}

func (m *Manager) HasNext() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.explicit)+len(m.source) > 0 || m.repeat == RepeatOne
}

func (m *Manager) HasPrevious() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history) > 0 || m.repeat == RepeatOne
}

func (m *Manager) QueueSnapshot() QueueState {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]Track, 0, len(m.explicit)+len(m.source))
	entries = append(entries, m.explicit...)
	entries = append(entries, m.source...)

	state := QueueState{
		Entries:       entries,
		ExplicitCount: len(m.explicit),
		Shuffle:       m.shuffle,
		Repeat:        m.repeat,
		Total:         len(entries),
	}
	if !m.updatedAt.IsZero() {
		state.UpdatedAt = m.updatedAt.UTC().Format(time.RFC3339)
	}

	return state
}

// SetShuffleMode applies the shuffle mode transitions. Turning shuffle off
// restores the source queue from the pre-shuffle snapshot; turning it on
// snapshots first so the true original order survives the first shuffle of a
// session; switching random<->smart reshuffles without touching the snapshot.
func (m *Manager) SetShuffleMode(mode ShuffleMode) {
	m.mu.Lock()
	if mode == m.shuffle {
		m.mu.Unlock()
		return
	}

	switch {
	case mode == ShuffleOff:
		m.source = copyTracks(m.originalOrder)
	case m.shuffle == ShuffleOff:
		m.originalOrder = copyTracks(m.source)
		m.shuffleTracksLocked(mode, m.source)
	default:
		m.shuffleTracksLocked(mode, m.source)
	}
	m.shuffle = mode
	m.touchLocked()
	m.mu.Unlock()

	m.emit(EventShuffle, mode)
	m.emit(EventQueue, m.QueueSnapshot())
}

// SetRepeatMode is a pure state change; it takes effect through the queue
// resolution path only.
func (m *Manager) SetRepeatMode(mode RepeatMode) {
	m.mu.Lock()
	if mode == m.repeat {
		m.mu.Unlock()
		return
	}
	m.repeat = mode
	m.touchLocked()
	m.mu.Unlock()

	m.emit(EventRepeat, mode)
	m.emit(EventQueue, m.QueueSnapshot())
}

// dequeueLocked resolves what plays next: explicit head, then source head,
// then a repeat-all reseed from the original order. The repeat-one case is
// handled before this in advance().
func (m *Manager) dequeueLocked() (Track, bool) {
	if len(m.explicit) > 0 {
		track := m.explicit[0]
		m.explicit = m.explicit[1:]
		return track, true
	}

	if len(m.source) > 0 {
		track := m.source[0]
		m.source = m.source[1:]
		return track, true
	}

	if m.repeat == RepeatAll && len(m.originalOrder) > 0 {
		m.source = copyTracks(m.originalOrder)
		if m.shuffle != ShuffleOff {
			m.shuffleTracksLocked(m.shuffle, m.source)
		}
		track := m.source[0]
		m.source = m.source[1:]
		return track, true
	}

	return Track{}, false
}

func (m *Manager) pushHistoryLocked(track Track) {
	m.history = append(m.history, track)
	if len(m.history) > m.historySize {
		m.history = m.history[len(m.history)-m.historySize:]
	}
}

func (m *Manager) popHistoryLocked() (Track, bool) {
	if len(m.history) == 0 {
		return Track{}, false
	}

	track := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	return track, true
}

func copyTracks(tracks []Track) []Track {
	copied := make([]Track, len(tracks))
	copy(copied, tracks)
	return copied
}
