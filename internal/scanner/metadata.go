package scanner

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.senan.xyz/taglib"
)

var (
	trackPrefixPattern = regexp.MustCompile(`^\s*(\d{1,2})[\s._-]+(.+)$`)
	integerPattern     = regexp.MustCompile(`\d+`)
	yearPattern        = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// isAudioFile reports whether the path carries an audio extension the player
// can load.
func isAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".aac", ".aif", ".aiff", ".alac", ".flac", ".m4a", ".mp3", ".ogg", ".opus", ".wav", ".wma":
		return true
	}
	return false
}

// trackMetadata carries the fields the library serves. Pointer fields insert
// as NULL when unknown.
type trackMetadata struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	DiscNo      *int
	TrackNo     *int
	Year        *int
	DurationMS  *int
}

// readMetadata reads the file's tags, falling back to what the path layout
// suggests for anything the tags do not provide.
func readMetadata(rootPath string, path string) trackMetadata {
	meta := metadataFromPath(rootPath, path)

	if tags, err := taglib.ReadTags(path); err == nil {
		mergeTags(&meta, tags)
	}
	if props, err := taglib.ReadProperties(path); err == nil && props.Length > 0 {
		ms := int(props.Length.Milliseconds())
		meta.DurationMS = &ms
	}

	if meta.AlbumArtist == "" {
		meta.AlbumArtist = meta.Artist
	}

	return meta
}

// metadataFromPath derives artist/album from the first two directory levels
// under the root and title/track number from the filename.
func metadataFromPath(rootPath string, path string) trackMetadata {
	meta := trackMetadata{Artist: "Unknown Artist", Album: "Unknown Album"}

	rel, err := filepath.Rel(rootPath, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	segments := strings.Split(filepath.ToSlash(rel), "/")

	name := strings.TrimSuffix(segments[len(segments)-1], filepath.Ext(path))
	meta.TrackNo, meta.Title = splitTrackPrefix(name)

	if len(segments) > 1 && strings.TrimSpace(segments[0]) != "" {
		meta.Artist = strings.TrimSpace(segments[0])
	}
	if len(segments) > 2 && strings.TrimSpace(segments[1]) != "" {
		meta.Album = strings.TrimSpace(segments[1])
	}
	meta.AlbumArtist = meta.Artist

	return meta
}

// splitTrackPrefix peels a leading "NN - " style track number off a filename.
func splitTrackPrefix(name string) (*int, string) {
	if match := trackPrefixPattern.FindStringSubmatch(name); len(match) == 3 {
		if no, err := strconv.Atoi(match[1]); err == nil && no > 0 {
			return &no, strings.TrimSpace(match[2])
		}
	}
	return nil, strings.TrimSpace(name)
}

func mergeTags(meta *trackMetadata, tags map[string][]string) {
	if v := tagValue(tags, taglib.Title); v != "" {
		meta.Title = v
	}
	if v := tagValue(tags, taglib.Artist); v != "" {
		meta.Artist = v
	}
	if v := tagValue(tags, taglib.Album); v != "" {
		meta.Album = v
	}
	if v := tagValue(tags, taglib.AlbumArtist); v != "" {
		meta.AlbumArtist = v
	}
	if n := firstInt(tagValue(tags, taglib.TrackNumber)); n != nil {
		meta.TrackNo = n
	}
	if n := firstInt(tagValue(tags, taglib.DiscNumber)); n != nil {
		meta.DiscNo = n
	}
	if y := releaseYear(tagValue(tags, taglib.Date)); y != nil {
		meta.Year = y
	}
}

func tagValue(tags map[string][]string, key string) string {
	for _, value := range tags[key] {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// firstInt extracts the first positive integer, handling "3/12" style
// number-of-total values.
func firstInt(value string) *int {
	match := integerPattern.FindString(value)
	if match == "" {
		return nil
	}

	parsed, err := strconv.Atoi(match)
	if err != nil || parsed <= 0 {
		return nil
	}

	return &parsed
}

// releaseYear pulls a four-digit year out of date-like tag values, accepting
// bare numbers in a plausible range as a fallback.
func releaseYear(value string) *int {
	if match := yearPattern.FindString(value); match != "" {
		if parsed, err := strconv.Atoi(match); err == nil {
			return &parsed
		}
	}

	if parsed := firstInt(value); parsed != nil && *parsed >= 1000 && *parsed <= 3000 {
		return parsed
	}

	return nil
}
