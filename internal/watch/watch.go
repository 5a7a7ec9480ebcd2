// Package watch signals when session files under the projects root
// change, so the presentation layer can refresh without polling.
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AlexNguyenz/history-hub/internal/claude"
)

// debounceDelay batches rapid writes to the same transcript into one
// refresh signal.
const debounceDelay = 500 * time.Millisecond

// Watcher watches the projects root and its project directories.
type Watcher struct {
	fsw     *fsnotify.Watcher
	root    string
	updates chan struct{}
}

// New creates a watcher over root. A missing root is not an error; the
// watcher simply stays quiet.
func New(root string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		root:    root,
		updates: make(chan struct{}, 1),
	}

	if _, err := os.Stat(root); err == nil {
		_ = fsw.Add(root)
		if entries, err := os.ReadDir(root); err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					_ = fsw.Add(filepath.Join(root, entry.Name()))
				}
			}
		}
	}

	return w, nil
}

// Updates starts the event loop and returns the channel that receives a
// signal whenever session files change.
func (w *Watcher) Updates() <-chan struct{} {
	go w.loop()
	return w.updates
}

func (w *Watcher) loop() {
	var debounce *time.Timer

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			// New project directories need their own watch.
			if event.Op&fsnotify.Create != 0 && filepath.Dir(event.Name) == w.root {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.fsw.Add(event.Name)
					w.signal()
					continue
				}
			}

			if !strings.HasSuffix(event.Name, claude.SessionFileExt) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, w.signal)

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) signal() {
	select {
	case w.updates <- struct{}{}:
	default:
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
