// Package watcher signals when files in a work tree change, with
// debouncing so a burst of writes produces one notification.
package watcher

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"reviewdiff/internal/log"
)

// Watcher monitors a repository work tree and its git metadata.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	root      string
	gitDir    string
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
}

type Config struct {
	// Root is the work tree, watched recursively.
	Root string
	// GitDir is watched non-recursively so staging and commits are seen.
	GitDir      string
	DebounceDur time.Duration
}

func DefaultConfig(root, gitDir string) Config {
	return Config{
		Root:        root,
		GitDir:      gitDir,
		DebounceDur: 300 * time.Millisecond,
	}
}

func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	gitDir := cfg.GitDir
	if gitDir == "" {
		gitDir = filepath.Join(cfg.Root, ".git")
	}

	return &Watcher{
		fsWatcher: fsw,
		root:      filepath.Clean(cfg.Root),
		gitDir:    filepath.Clean(gitDir),
		debounce:  cfg.DebounceDur,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start adds the watches and returns a channel that receives a signal
// after each debounced burst of changes.
func (w *Watcher) Start() (<-chan struct{}, error) {
	if err := w.addTree(w.root); err != nil {
		return nil, err
	}
	if info, err := os.Stat(w.gitDir); err == nil && info.IsDir() {
		if err := w.fsWatcher.Add(w.gitDir); err != nil {
			return nil, fmt.Errorf("watching directory %s: %w", w.gitDir, err)
		}
	}

	go w.loop()

	return w.onChange, nil
}

func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// addTree watches dir and every directory below it except git metadata.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories can vanish mid-walk.
			if path != dir {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" || path == w.gitDir {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return fmt.Errorf("watching directory %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 && filepath.Dir(event.Name) != w.gitDir {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						log.Warn(log.CatWatch, "watch new directory failed", "path", event.Name, "error", err)
					}
				}
			}

			if !w.isRelevantEvent(event) {
				continue
			}
			log.Debug(log.CatWatch, "change", "path", event.Name, "op", event.Op.String())

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = true

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				// Drop the signal if one is already queued.
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Warn(log.CatWatch, "fsnotify error", "error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent drops attribute-only changes and git metadata other than
// the index and HEAD.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if filepath.Dir(event.Name) == w.gitDir {
		base := filepath.Base(event.Name)
		return base == "index" || base == "HEAD"
	}
	return true
}
