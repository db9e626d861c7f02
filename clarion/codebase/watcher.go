package codebase

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher keeps a Codebase in sync with the files on disk. OnChange,
// when set, is called after a file was parsed again or removed.
type FileWatcher struct {
	codebase *Codebase
	watcher  *fsnotify.Watcher
	done     chan struct{}
	OnChange func(path string)
}

func NewFileWatcher(c *Codebase) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileWatcher{
		codebase: c,
		watcher:  watcher,
		done:     make(chan struct{}),
	}, nil
}

// Start watches every directory below the root and handles events on a
// goroutine until Stop.
func (w *FileWatcher) Start() error {
	if err := w.addTree(w.codebase.RootDir()); err != nil {
		return err
	}
	go w.run()
	return nil
}

func (w *FileWatcher) Stop() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *FileWatcher) addTree(root string) error {
	cfg := w.codebase.Config()
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != cfg.Root && (strings.HasPrefix(d.Name(), ".") || cfg.Excluded(path)) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

func (w *FileWatcher) run() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warningf("watch: %s", err)
		}
	}
}

func (w *FileWatcher) handle(event fsnotify.Event) {
	path := event.Name
	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if w.codebase.GetFile(path) != nil {
			w.codebase.RemoveFile(path)
			w.changed(path)
		}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if info.IsDir() {
			if event.Has(fsnotify.Create) {
				if err := w.addTree(path); err != nil {
					log.Warningf("watch %s: %s", path, err)
				}
			}
			return
		}
		if !w.codebase.Config().Matches(path) {
			return
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return
		}
		if w.codebase.UpdateFile(path, content) {
			w.changed(path)
		}
	}
}

func (w *FileWatcher) changed(path string) {
	log.Debugf("changed: %s", path)
	if w.OnChange != nil {
		w.OnChange(path)
	}
}
