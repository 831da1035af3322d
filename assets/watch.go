package assets

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceWindow = 100 * time.Millisecond

// Watcher reloads assets of a Server when their files change on disk. Only
// files the server has already loaded are reloaded.
type Watcher struct {
	watcher *fsnotify.Watcher
	server  *Server
	root    string
	exts    map[string]struct{}

	// Reloaded receives the handle of every successfully reloaded asset.
	Reloaded chan UntypedHandle
	Errors   chan error

	settled chan string
	cancel  context.CancelFunc
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher watches root and its subdirectories, including directories
// created later. root must be the directory the server's source is rooted at.
// With no exts, every extension is watched.
func NewWatcher(root string, server *Server, exts ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := addTree(w, root); err != nil {
		_ = w.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	watcher := &Watcher{
		watcher:  w,
		server:   server,
		root:     root,
		exts:     extensionSet(exts),
		Reloaded: make(chan UntypedHandle, 16),
		Errors:   make(chan error, 1),
		settled:  make(chan string),
		cancel:   cancel,
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}
	go watcher.run(ctx)
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		w.cancel()
		err = w.watcher.Close()
		<-w.done
		close(w.Reloaded)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.done)
	// a file is reloaded once it has been quiet for debounceWindow
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(w.watcher, event.Name); err != nil {
						w.sendErr(err)
					}
					continue
				}
			}
			if !w.isWatchedFile(event.Name) {
				continue
			}
			if t, ok := timers[event.Name]; ok {
				t.Reset(debounceWindow)
				continue
			}
			name := event.Name
			timers[name] = time.AfterFunc(debounceWindow, func() {
				select {
				case w.settled <- name:
				case <-w.closeCh:
				}
			})
		case name := <-w.settled:
			delete(timers, name)
			w.reload(ctx, name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendErr(err)
		case <-w.closeCh:
			return
		}
	}
}

// addTree watches dir and every directory below it.
func addTree(w *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}

func (w *Watcher) reload(ctx context.Context, name string) {
	p, ok := assetPathUnder(w.root, name)
	if !ok || !w.server.Tracked(p) {
		return
	}
	if err := w.server.Reload(ctx, p.String()); err != nil {
		w.sendErr(err)
		return
	}
	select {
	case w.Reloaded <- NewUntypedHandle(p):
	case <-w.closeCh:
	}
}

func (w *Watcher) sendErr(err error) {
	select {
	case w.Errors <- err:
	case <-w.closeCh:
	}
}

func (w *Watcher) isWatchedFile(name string) bool {
	if len(w.exts) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	_, ok := w.exts[ext]
	return ok
}

// assetPathUnder maps an OS path below root to the asset path the server
// knows it by.
func assetPathUnder(root, name string) (AssetPath, bool) {
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return AssetPath{}, false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return AssetPath{}, false
	}
	return NewAssetPath(rel), true
}

func extensionSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return set
}
