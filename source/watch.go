package source

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches a shader directory and publishes a fresh Map snapshot
// after every change to a shader file in it.
//
// Snapshots are delivered on Updates with latest-wins semantics: if the
// consumer has not picked up the previous snapshot yet, it is replaced. The
// consumer applies snapshots on its own goroutine (typically once per frame),
// so nothing in the rendering path is touched from the watcher goroutine.
type Watcher struct {
	dir     string
	fsw     *fsnotify.Watcher
	updates chan Map
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// Watch starts watching dir.
func Watch(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("source: watch %s: %w", dir, err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("source: watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		fsw:     fsw,
		updates: make(chan Map, 1),
		errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Updates delivers new snapshots of the directory.
func (w *Watcher) Updates() <-chan Map { return w.updates }

// Errors delivers watch and read errors. Errors are dropped when the
// consumer falls behind.
func (w *Watcher) Errors() <-chan error { return w.errors }

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			snapshot, err := LoadDir(w.dir)
			if err != nil {
				w.report(err)
				continue
			}
			w.publish(snapshot)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.report(fmt.Errorf("source: watch %s: %w", w.dir, err))
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !IsShaderFile(filepath.Base(event.Name)) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}

// publish replaces any snapshot still waiting in the channel.
func (w *Watcher) publish(m Map) {
	select {
	case <-w.updates:
	default:
	}
	select {
	case w.updates <- m:
	case <-w.done:
	}
}

func (w *Watcher) report(err error) {
	select {
	case w.errors <- err:
	default:
	}
}
