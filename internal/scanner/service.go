package scanner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"aria/internal/library"
)

const EventProgress = "scanner:progress"

// How many indexed files between progress events.
const progressEvery = 25

type Progress struct {
	Phase   string `json:"phase"`
	Message string `json:"message"`
	Percent int    `json:"percent"`
	Status  string `json:"status"`
	At      string `json:"at"`
}

type Status struct {
	Running       bool   `json:"running"`
	LastRunAt     string `json:"lastRunAt"`
	LastError     string `json:"lastError,omitempty"`
	LastFilesSeen int    `json:"lastFilesSeen"`
	LastIndexed   int    `json:"lastIndexed"`
	LastSkipped   int    `json:"lastSkipped"`
}

type Emitter func(eventName string, payload any)

// Service indexes audio files under the enabled watched roots into the
// library tables. One scan runs at a time.
type Service struct {
	mu      sync.Mutex
	db      *sql.DB
	roots   *library.WatchedRootRepository
	emit    Emitter
	watcher *watcher

	running     bool
	lastRun     time.Time
	lastError   string
	lastSeen    int
	lastIndexed int
	lastSkipped int
}

// candidate is one audio file found during the collect phase.
type candidate struct {
	rootID   int64
	rootPath string
	path     string
	size     int64
	mtime    int64
}

type scanReport struct {
	seen    int
	indexed int
	skipped int
}

func NewService(database *sql.DB, roots *library.WatchedRootRepository) *Service {
	return &Service{db: database, roots: roots}
}

func (s *Service) SetEmitter(emitter Emitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emit = emitter
}

func (s *Service) TriggerFullScan() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scan already in progress")
	}
	s.running = true
	s.lastError = ""
	s.mu.Unlock()

	go s.runFullScan()
	return nil
}

func (s *Service) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := Status{
		Running:       s.running,
		LastError:     s.lastError,
		LastFilesSeen: s.lastSeen,
		LastIndexed:   s.lastIndexed,
		LastSkipped:   s.lastSkipped,
	}
	if !s.lastRun.IsZero() {
		status.LastRunAt = s.lastRun.UTC().Format(time.RFC3339)
	}

	return status
}

func (s *Service) runFullScan() {
	report, err := s.scanLibrary(context.Background())

	s.mu.Lock()
	s.running = false
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
		s.lastRun = time.Now().UTC()
		s.lastSeen = report.seen
		s.lastIndexed = report.indexed
		s.lastSkipped = report.skipped
	}
	s.mu.Unlock()

	if err != nil {
		s.progress("failed", err.Error(), 100, "failed")
		return
	}

	s.progress("done", fmt.Sprintf(
		"Scan complete: %d files seen, %d indexed, %d skipped",
		report.seen, report.indexed, report.skipped,
	), 100, "completed")
}

// scanLibrary runs in two phases: collect every audio file under the enabled
// roots, then index them in one transaction so a failed scan leaves the
// library untouched.
func (s *Service) scanLibrary(ctx context.Context) (scanReport, error) {
	s.progress("start", "Looking for music folders", 2, "running")

	roots, err := s.enabledRoots(ctx)
	if err != nil {
		return scanReport{}, err
	}
	if len(roots) == 0 {
		s.progress("done", "No enabled watched folders configured", 100, "completed")
		return scanReport{}, nil
	}

	var report scanReport
	candidates := collectCandidates(roots, &report.skipped)
	report.seen = len(candidates)
	s.progress("scan", fmt.Sprintf("Indexing %d files", len(candidates)), 10, "running")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return scanReport{}, fmt.Errorf("begin scan tx: %w", err)
	}
	defer tx.Rollback()

	if err := markFilesMissing(ctx, tx, roots); err != nil {
		return scanReport{}, err
	}

	seenAt := time.Now().UTC().Format(time.RFC3339)
	for i, found := range candidates {
		if i > 0 && i%progressEvery == 0 {
			percent := 10 + (i*80)/len(candidates)
			s.progress("scan", fmt.Sprintf("Indexed %d of %d files", i, len(candidates)), percent, "running")
		}

		indexed, indexErr := indexCandidate(ctx, tx, found, seenAt)
		if indexErr != nil {
			return scanReport{}, indexErr
		}
		if indexed {
			report.indexed++
		}
	}

	s.progress("cleanup", "Removing entries for missing files", 95, "running")
	if _, err := tx.ExecContext(
		ctx,
		"DELETE FROM tracks WHERE file_id IN (SELECT id FROM files WHERE file_exists = 0)",
	); err != nil {
		return scanReport{}, fmt.Errorf("prune missing tracks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return scanReport{}, fmt.Errorf("commit scan tx: %w", err)
	}

	return report, nil
}

func (s *Service) enabledRoots(ctx context.Context) ([]library.WatchedRoot, error) {
	roots, err := s.roots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list watched roots: %w", err)
	}

	enabled := make([]library.WatchedRoot, 0, len(roots))
	for _, root := range roots {
		if root.Enabled {
			enabled = append(enabled, root)
		}
	}

	return enabled, nil
}

func collectCandidates(roots []library.WatchedRoot, skipped *int) []candidate {
	var found []candidate
	for _, root := range roots {
		_ = filepath.WalkDir(root.Path, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				*skipped++
				return nil
			}
			if entry.IsDir() || !isAudioFile(path) {
				return nil
			}

			info, err := entry.Info()
			if err != nil {
				*skipped++
				return nil
			}

			found = append(found, candidate{
				rootID:   root.ID,
				rootPath: root.Path,
				path:     filepath.Clean(path),
				size:     info.Size(),
				mtime:    info.ModTime().UnixNano(),
			})
			return nil
		})
	}

	return found
}

// markFilesMissing flips file_exists off for every file under the roots being
// scanned; indexing flips it back on for files still present.
func markFilesMissing(ctx context.Context, tx *sql.Tx, roots []library.WatchedRoot) error {
	placeholders := make([]string, len(roots))
	args := make([]any, len(roots))
	for i, root := range roots {
		placeholders[i] = "?"
		args[i] = root.ID
	}

	query := "UPDATE files SET file_exists = 0 WHERE root_id IN (" + strings.Join(placeholders, ", ") + ")"
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark files missing: %w", err)
	}

	return nil
}

// indexCandidate refreshes the file row and re-reads metadata only when the
// file is new, changed since the last scan, or missing its track row.
func indexCandidate(ctx context.Context, tx *sql.Tx, found candidate, seenAt string) (bool, error) {
	fileID, changed, err := refreshFileRow(ctx, tx, found, seenAt)
	if err != nil {
		return false, err
	}

	if !changed {
		var hasTrack int
		if err := tx.QueryRowContext(
			ctx, "SELECT COUNT(1) FROM tracks WHERE file_id = ?", fileID,
		).Scan(&hasTrack); err != nil {
			return false, fmt.Errorf("check track for %s: %w", found.path, err)
		}
		if hasTrack > 0 {
			return false, nil
		}
	}

	meta := readMetadata(found.rootPath, found.path)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tracks(file_id, title, artist, album, album_artist, disc_no, track_no, year, duration_ms, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			album_artist = excluded.album_artist,
			disc_no = excluded.disc_no,
			track_no = excluded.track_no,
			year = excluded.year,
			duration_ms = excluded.duration_ms,
			updated_at = excluded.updated_at`,
		fileID, meta.Title, meta.Artist, meta.Album, meta.AlbumArtist,
		meta.DiscNo, meta.TrackNo, meta.Year, meta.DurationMS,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return false, fmt.Errorf("upsert track %s: %w", found.path, err)
	}

	return true, nil
}

// refreshFileRow upserts the files row and reports whether size or mtime
// moved since the last scan.
func refreshFileRow(ctx context.Context, tx *sql.Tx, found candidate, seenAt string) (int64, bool, error) {
	var fileID, knownSize, knownMTime int64
	err := tx.QueryRowContext(
		ctx, "SELECT id, size, mtime_ns FROM files WHERE path = ?", found.path,
	).Scan(&fileID, &knownSize, &knownMTime)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		result, insertErr := tx.ExecContext(ctx,
			"INSERT INTO files(path, root_id, size, mtime_ns, file_exists, last_seen_at) VALUES (?, ?, ?, ?, 1, ?)",
			found.path, found.rootID, found.size, found.mtime, seenAt,
		)
		if insertErr != nil {
			return 0, false, fmt.Errorf("insert file %s: %w", found.path, insertErr)
		}

		fileID, insertErr = result.LastInsertId()
		if insertErr != nil {
			return 0, false, fmt.Errorf("read file id %s: %w", found.path, insertErr)
		}
		return fileID, true, nil

	case err != nil:
		return 0, false, fmt.Errorf("look up file %s: %w", found.path, err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE files SET root_id = ?, size = ?, mtime_ns = ?, file_exists = 1, last_seen_at = ? WHERE id = ?",
		found.rootID, found.size, found.mtime, seenAt, fileID,
	); err != nil {
		return 0, false, fmt.Errorf("refresh file %s: %w", found.path, err)
	}

	return fileID, knownSize != found.size || knownMTime != found.mtime, nil
}

func (s *Service) progress(phase string, message string, percent int, status string) {
	s.mu.Lock()
	emit := s.emit
	s.mu.Unlock()

	if emit == nil {
		return
	}

	emit(EventProgress, Progress{
		Phase:   phase,
		Message: message,
		Percent: percent,
		Status:  status,
		At:      time.Now().UTC().Format(time.RFC3339),
	})
}
