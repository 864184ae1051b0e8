package playback

// Track identifies a playable item. Queue entries are copies; nothing
// mutates a Track after construction.
type Track struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album,omitempty"`
	Path     string  `json:"path"`
	Duration float64 `json:"duration,omitempty"`
}
