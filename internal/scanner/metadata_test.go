package scanner

import (
	"path/filepath"
	"testing"
)

func TestSplitTrackPrefix(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input     string
		wantNo    int
		wantTitle string
	}{
		{"01 - Opening Theme", 1, "Opening Theme"},
		{"12. Twelve", 12, "Twelve"},
		{"7_Seven", 7, "Seven"},
		{"No Number Here", 0, "No Number Here"},
		{"00 - Zero Is Not A Track", 0, "00 - Zero Is Not A Track"},
	}

	for _, tc := range cases {
		gotNo, gotTitle := splitTrackPrefix(tc.input)
		if tc.wantNo == 0 {
			if gotNo != nil {
				t.Fatalf("%q: expected no track number, got %d", tc.input, *gotNo)
			}
		} else if gotNo == nil || *gotNo != tc.wantNo {
			t.Fatalf("%q: expected track %d, got %v", tc.input, tc.wantNo, gotNo)
		}
		if gotTitle != tc.wantTitle {
			t.Fatalf("%q: expected title %q, got %q", tc.input, tc.wantTitle, gotTitle)
		}
	}
}

func TestFirstInt(t *testing.T) {
	t.Parallel()

	if got := firstInt("3/12"); got == nil || *got != 3 {
		t.Fatalf("expected 3 from slash form, got %v", got)
	}
	if got := firstInt("  9 "); got == nil || *got != 9 {
		t.Fatalf("expected 9, got %v", got)
	}
	if got := firstInt("abc"); got != nil {
		t.Fatalf("expected nil for non-numeric, got %d", *got)
	}
	if got := firstInt(""); got != nil {
		t.Fatalf("expected nil for empty, got %d", *got)
	}
}

func TestReleaseYear(t *testing.T) {
	t.Parallel()

	if got := releaseYear("2019-05-01"); got == nil || *got != 2019 {
		t.Fatalf("expected 2019 from date form, got %v", got)
	}
	if got := releaseYear("1987"); got == nil || *got != 1987 {
		t.Fatalf("expected 1987, got %v", got)
	}
	if got := releaseYear("1350"); got == nil || *got != 1350 {
		t.Fatalf("expected fallback to plausible numeric year, got %v", got)
	}
	if got := releaseYear("12"); got != nil {
		t.Fatalf("expected nil for implausible year, got %d", *got)
	}
}

func TestMetadataFromPathLayout(t *testing.T) {
	t.Parallel()

	root := filepath.Join("/music")
	full := filepath.Join(root, "The Band", "Debut", "03 - Third Song.flac")

	meta := metadataFromPath(root, full)

	if meta.Artist != "The Band" || meta.Album != "Debut" {
		t.Fatalf("expected artist/album from directories, got %q / %q", meta.Artist, meta.Album)
	}
	if meta.Title != "Third Song" {
		t.Fatalf("expected title from filename, got %q", meta.Title)
	}
	if meta.TrackNo == nil || *meta.TrackNo != 3 {
		t.Fatalf("expected track 3, got %v", meta.TrackNo)
	}
	if meta.AlbumArtist != "The Band" {
		t.Fatalf("expected album artist from artist directory, got %q", meta.AlbumArtist)
	}
}

func TestMetadataFromPathShallowFile(t *testing.T) {
	t.Parallel()

	root := filepath.Join("/music")
	full := filepath.Join(root, "loose-file.mp3")

	meta := metadataFromPath(root, full)

	if meta.Artist != "Unknown Artist" || meta.Album != "Unknown Album" {
		t.Fatalf("expected unknown artist/album for shallow file, got %q / %q", meta.Artist, meta.Album)
	}
	if meta.Title != "loose-file" {
		t.Fatalf("expected filename title, got %q", meta.Title)
	}
}

func TestIsAudioFile(t *testing.T) {
	t.Parallel()

	if !isAudioFile("/music/a/track.FLAC") {
		t.Fatalf("expected uppercase audio extension to match")
	}
	if isAudioFile("/music/a/cover.jpg") {
		t.Fatalf("expected image files to be rejected")
	}
	if isAudioFile("/music/a/notes") {
		t.Fatalf("expected extensionless paths to be rejected")
	}
}
