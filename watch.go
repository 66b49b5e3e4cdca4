package inkwell

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const rebuildDebounce = 300 * time.Millisecond

// watch monitors the content and static trees and rebuilds the site when
// files change. Events are debounced so editor save bursts trigger one
// rebuild, and a rebuild is skipped entirely when the build index shows no
// source actually changed. A failed rebuild is logged, not fatal: the
// previous output keeps serving until the operator fixes the file.
func (s *Site) watch(stop <-chan struct{}) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		s.log.Error("watch disabled", "err", err)
		return
	}
	defer watcher.Close()

	for _, dir := range []string{s.Config.ContentDir, s.Config.StaticDir} {
		if err := addWatchTree(watcher, dir); err != nil {
			s.log.Warn("cannot watch directory", "dir", dir, "err", err)
		}
	}

	var timer *time.Timer
	var timerC <-chan time.Time
	force := false // a static asset changed; the index cannot tell
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// fsnotify watches are not recursive; new directories must be
			// registered as they appear or edits inside them go unseen.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if err := addWatchTree(watcher, ev.Name); err != nil {
						s.log.Warn("cannot watch directory", "dir", ev.Name, "err", err)
					}
				}
			}
			if !underDir(ev.Name, s.Config.ContentDir) {
				force = true
			}
			if timer == nil {
				timer = time.NewTimer(rebuildDebounce)
				timerC = timer.C
			} else {
				timer.Reset(rebuildDebounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("watch error", "err", err)
		case <-timerC:
			timer = nil
			timerC = nil
			s.rebuild(force)
			force = false
		}
	}
}

// addWatchTree registers dir and every directory below it with the watcher.
// A missing dir is fine; sites without static assets have none.
func addWatchTree(watcher *fsnotify.Watcher, dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}

// underDir reports whether path is dir itself or located inside it. A bare
// prefix check would misclassify siblings like "content-drafts" as being
// under "content".
func underDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." ||
		(rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (s *Site) rebuild(force bool) {
	s.cache.Invalidate()
	if !force {
		if changed, err := s.Changed(); err == nil && !changed {
			s.log.Debug("no source changes, skipping rebuild")
			return
		}
	}
	if _, err := s.Build(); err != nil {
		s.log.Error("rebuild failed", "err", err)
	}
}
