package environment

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/dissemia/disseminate/internal/docfile"
	"github.com/dissemia/disseminate/internal/eventbus"
)

// fsWatcher watches an environment's ProjectRoot for document files
// appearing and disappearing, publishing document.created/document.deleted
// on the environment's bus. Modeled on the teacher's ConfigWatcher: a
// fsnotify.Watcher plus a stop channel, run from a single goroutine.
type fsWatcher struct {
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// Watch starts watching e.ProjectRoot (recursively) for document files
// being created or removed. Calling Watch twice without an intervening
// Close returns an error.
func (e *Environment) Watch() error {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.watcher != nil {
		return fmt.Errorf("environment: already watching")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("environment: create watcher: %w", err)
	}

	err = filepath.WalkDir(e.ProjectRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == cacheDirName {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
	if err != nil {
		w.Close()
		return fmt.Errorf("environment: watch %s: %w", e.ProjectRoot, err)
	}

	fw := &fsWatcher{watcher: w, stopChan: make(chan struct{})}
	fw.wg.Add(1)
	go e.watchLoop(fw)
	e.watcher = fw
	return nil
}

// Close stops the environment's filesystem watcher, if running.
func (e *Environment) Close() error {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.watcher == nil {
		return nil
	}
	close(e.watcher.stopChan)
	err := e.watcher.watcher.Close()
	e.watcher.wg.Wait()
	e.watcher = nil
	return err
}

func (e *Environment) watchLoop(fw *fsWatcher) {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.stopChan:
			return
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Ext(ev.Name) != docfile.Ext {
				continue
			}
			if e.bus == nil {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				e.bus.Publish(eventbus.DocumentEvent{EventName: eventbus.DocumentCreated, Path: ev.Name})
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				e.bus.Publish(eventbus.DocumentEvent{EventName: eventbus.DocumentDeleted, Path: ev.Name})
			}
		case _, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
