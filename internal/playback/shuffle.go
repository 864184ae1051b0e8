package playback

import "strings"

// shuffleTracksLocked reorders tracks in place. Random is an unbiased
// Fisher-Yates pass; smart additionally runs bounded swap corrections that
// push apart same-artist neighbours and break same-album runs.
func (m *Manager) shuffleTracksLocked(mode ShuffleMode, tracks []Track) {
	if mode == ShuffleOff || len(tracks) <= 1 {
		return
	}

	m.fisherYatesLocked(tracks)
	if mode == ShuffleSmart {
		m.smartCorrectionsLocked(tracks)
	}
}

func (m *Manager) fisherYatesLocked(tracks []Track) {
	for i := len(tracks) - 1; i > 0; i-- {
		j := m.rng.Intn(i + 1)
		tracks[i], tracks[j] = tracks[j], tracks[i]
	}
}

// smartCorrectionsLocked is a hill climb over random pair swaps: a swap is
// kept when it does not worsen the adjacency penalty. Attempts are bounded so
// large queues stay cheap; the result is best-effort, not optimal.
func (m *Manager) smartCorrectionsLocked(tracks []Track) {
	if len(tracks) <= 2 {
		return
	}

	attempts := len(tracks) * 20
	if attempts < 120 {
		attempts = 120
	}
	if attempts > 600 {
		attempts = 600
	}

	best := adjacencyPenalty(tracks)
	for attempt := 0; attempt < attempts && best > 0; attempt++ {
		i := m.rng.Intn(len(tracks))
		j := m.rng.Intn(len(tracks))
		if i == j {
			continue
		}

		tracks[i], tracks[j] = tracks[j], tracks[i]
		score := adjacencyPenalty(tracks)
		if score <= best {
			best = score
			continue
		}
		tracks[i], tracks[j] = tracks[j], tracks[i]
	}
}

func adjacencyPenalty(tracks []Track) int {
	penalty := 0
	for i := 1; i < len(tracks); i++ {
		if sameArtist(tracks[i], tracks[i-1]) {
			penalty += 12
		}
		if sameAlbum(tracks[i], tracks[i-1]) {
			penalty += 14
		}
		if i >= 2 && sameAlbum(tracks[i], tracks[i-1]) && sameAlbum(tracks[i], tracks[i-2]) {
			penalty += 40
		}
	}

	return penalty
}

func sameArtist(left Track, right Track) bool {
	leftArtist := strings.ToLower(strings.TrimSpace(left.Artist))
	rightArtist := strings.ToLower(strings.TrimSpace(right.Artist))
	if leftArtist == "" || rightArtist == "" {
		return false
	}

	return leftArtist == rightArtist
}

func sameAlbum(left Track, right Track) bool {
	leftAlbum := strings.ToLower(strings.TrimSpace(left.Album))
	rightAlbum := strings.ToLower(strings.TrimSpace(right.Album))
	if leftAlbum == "" || rightAlbum == "" {
		return false
	}

	return leftAlbum == rightAlbum
}
