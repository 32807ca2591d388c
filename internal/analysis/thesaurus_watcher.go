package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"careerpilot/internal/errors"
)

// ThesaurusWatcher watches a thesaurus file and reloads it into a
// Thesaurus when the file changes, so synonym tuning does not require a
// restart.
type ThesaurusWatcher struct {
	mu sync.Mutex

	path      string
	thesaurus *Thesaurus
	logger    *errors.Logger

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer
	lastModTime   time.Time

	stopChan   chan struct{}
	reloadChan chan struct{}
	running    bool
}

// NewThesaurusWatcher creates a watcher for the given thesaurus file.
func NewThesaurusWatcher(path string, thesaurus *Thesaurus, debounceDelay time.Duration, logger *errors.Logger) *ThesaurusWatcher {
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}
	return &ThesaurusWatcher{
		path:          path,
		thesaurus:     thesaurus,
		logger:        logger,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
	}
}

// Start performs an initial load and begins watching for changes.
func (tw *ThesaurusWatcher) Start() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.running {
		return fmt.Errorf("thesaurus watcher is already running")
	}

	if err := tw.thesaurus.LoadFile(tw.path); err != nil {
		return err
	}
	if stat, err := os.Stat(tw.path); err == nil {
		tw.lastModTime = stat.ModTime()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	tw.fsWatcher = watcher

	// Watch the directory as well so atomic writes (rename over the
	// file) are caught.
	if err := watcher.Add(tw.path); err != nil {
		if !os.IsNotExist(err) {
			tw.closeWatcher()
			return fmt.Errorf("failed to watch thesaurus file %s: %w", tw.path, err)
		}
	}
	if err := watcher.Add(filepath.Dir(tw.path)); err != nil {
		tw.closeWatcher()
		return fmt.Errorf("failed to watch thesaurus directory: %w", err)
	}

	tw.running = true
	go tw.watchLoop()

	if tw.logger != nil {
		tw.logger.Info("Thesaurus watcher started",
			"file", tw.path,
			"words", tw.thesaurus.Size(),
			"debounce_delay", tw.debounceDelay)
	}
	return nil
}

// Stop stops the watcher.
func (tw *ThesaurusWatcher) Stop() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if !tw.running {
		return nil
	}
	close(tw.stopChan)
	if tw.debounceTimer != nil {
		tw.debounceTimer.Stop()
	}
	tw.closeWatcher()
	tw.running = false

	if tw.logger != nil {
		tw.logger.Info("Thesaurus watcher stopped")
	}
	return nil
}

func (tw *ThesaurusWatcher) closeWatcher() {
	if tw.fsWatcher != nil {
		if err := tw.fsWatcher.Close(); err != nil && tw.logger != nil {
			tw.logger.LogError(err, "Failed to close thesaurus file watcher")
		}
	}
}

func (tw *ThesaurusWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-tw.fsWatcher.Events:
			if !ok {
				return
			}
			if tw.shouldProcessEvent(event) {
				tw.scheduleReload()
			}
		case err, ok := <-tw.fsWatcher.Errors:
			if !ok {
				return
			}
			if tw.logger != nil {
				tw.logger.LogError(err, "Thesaurus watcher error")
			}
		case <-tw.reloadChan:
			tw.reloadIfChanged()
		case <-tw.stopChan:
			return
		}
	}
}

func (tw *ThesaurusWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != filepath.Base(tw.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (tw *ThesaurusWatcher) scheduleReload() {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.debounceTimer != nil {
		tw.debounceTimer.Stop()
	}
	tw.debounceTimer = time.AfterFunc(tw.debounceDelay, func() {
		select {
		case tw.reloadChan <- struct{}{}:
		default:
			// reload already pending
		}
	})
}

func (tw *ThesaurusWatcher) reloadIfChanged() {
	stat, err := os.Stat(tw.path)
	if err != nil {
		return
	}
	tw.mu.Lock()
	changed := stat.ModTime().After(tw.lastModTime)
	if changed {
		tw.lastModTime = stat.ModTime()
	}
	tw.mu.Unlock()
	if !changed {
		return
	}

	if err := tw.thesaurus.LoadFile(tw.path); err != nil {
		if tw.logger != nil {
			tw.logger.LogError(err, "Failed to reload thesaurus file", "file", tw.path)
		}
		return
	}
	if tw.logger != nil {
		tw.logger.Info("Thesaurus reloaded", "file", tw.path, "words", tw.thesaurus.Size())
	}
}

// IsRunning reports whether the watcher is active.
func (tw *ThesaurusWatcher) IsRunning() bool {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.running
}
