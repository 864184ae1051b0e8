package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 2 * time.Second

// watcher rescans the library when files change under any enabled watched
// root. Events are debounced so a burst of copies triggers a single scan.
type watcher struct {
	fsWatcher *fsnotify.Watcher
	done      chan struct{}
}

// StartWatching begins filesystem watching for all enabled roots. Calling it
// again restarts the watcher, picking up root additions and removals.
func (s *Service) StartWatching() error {
	if err := s.StopWatching(); err != nil {
		return err
	}

	roots, err := s.roots.List(context.Background())
	if err != nil {
		return err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	watched := 0
	for _, root := range roots {
		if !root.Enabled {
			continue
		}
		if addErr := addRecursive(fsWatcher, root.Path); addErr != nil {
			fsWatcher.Close()
			return addErr
		}
		watched++
	}

	if watched == 0 {
		fsWatcher.Close()
		return nil
	}

	w := &watcher{
		fsWatcher: fsWatcher,
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	go s.watchLoop(w)
	return nil
}

func (s *Service) StopWatching() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w == nil {
		return nil
	}

	err := w.fsWatcher.Close()
	<-w.done
	return err
}

func (s *Service) watchLoop(w *watcher) {
	defer close(w.done)

	var debounce *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !relevantEvent(event) {
				continue
			}

			// New directories need their own watch before contents settle.
			if event.Op.Has(fsnotify.Create) {
				_ = addRecursive(w.fsWatcher, event.Name)
			}

			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
			} else {
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(watchDebounce)
			}
			pending = debounce.C

		case <-pending:
			pending = nil
			// A scan already in flight will pick up the change on the next
			// filesystem event.
			_ = s.TriggerFullScan()

		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
		}
	}
}

func relevantEvent(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}

	if filepath.Ext(event.Name) == "" {
		// Could be a directory.
		return true
	}

	return isAudioFile(event.Name)
}

func addRecursive(fsWatcher *fsnotify.Watcher, rootPath string) error {
	return filepath.WalkDir(rootPath, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Roots can disappear mid-walk; keep watching what remains.
			return nil
		}
		if !entry.IsDir() {
			return nil
		}

		return fsWatcher.Add(path)
	})
}
