package calendar

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const watchDebounce = 100 * time.Millisecond

// FileWatcher reports debounced writes to a set of files on Events().
type FileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	events  chan ChangeEvent
	mu      sync.Mutex
	timers  map[string]*time.Timer
	done    chan struct{}
	closed  bool
	once    sync.Once
}

func NewFileWatcher() (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		files:   make(map[string]bool),
		events:  make(chan ChangeEvent, 10),
		timers:  make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}

	go fw.watch()
	return fw, nil
}

// Events delivers one ChangeEvent per burst of writes to a watched file.
// The channel is closed by Close.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// AddFile watches path's directory so editors that replace the file by
// rename are still seen.
func (fw *FileWatcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.files[absPath] {
		return nil // Already watching
	}

	if err := fw.watcher.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	fw.files[absPath] = true
	return nil
}

func (fw *FileWatcher) RemoveFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.files[absPath] {
		return nil // Not watching
	}
	delete(fw.files, absPath)

	dir := filepath.Dir(absPath)
	for other := range fw.files {
		if filepath.Dir(other) == dir {
			return nil
		}
	}
	return fw.watcher.Remove(dir)
}

func (fw *FileWatcher) watch() {
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			fw.schedule(filepath.Clean(event.Name))

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("watcher: %v", err)

		case <-fw.done:
			return
		}
	}
}

// schedule debounces rapid events per file.
func (fw *FileWatcher) schedule(name string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.files[name] {
		return
	}
	if timer, exists := fw.timers[name]; exists {
		timer.Stop()
	}
	fw.timers[name] = time.AfterFunc(watchDebounce, func() {
		fw.mu.Lock()
		defer fw.mu.Unlock()
		delete(fw.timers, name)
		if fw.closed {
			return
		}

		select {
		case fw.events <- ChangeEvent{Path: name, Timestamp: time.Now()}:
		default:
			// Channel full, a refresh is already pending
		}
	})
}

func (fw *FileWatcher) Close() error {
	var err error
	fw.once.Do(func() {
		close(fw.done)
		err = fw.watcher.Close()

		fw.mu.Lock()
		for _, t := range fw.timers {
			t.Stop()
		}
		fw.closed = true
		close(fw.events)
		fw.mu.Unlock()
	})
	return err
}
