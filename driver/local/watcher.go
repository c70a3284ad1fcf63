package local

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// treeWatcher watches a directory and every directory below it. fsnotify
// only reports direct children, so directories created later are added as
// their create events arrive.
type treeWatcher struct {
	w *fsnotify.Watcher
}

func newTreeWatcher(root string) (*treeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	tw := &treeWatcher{w: w}
	if err := tw.addTree(root); err != nil {
		w.Close()
		return nil, err
	}
	return tw, nil
}

func (tw *treeWatcher) addTree(root string) error {
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			// Removed between listing and walking.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return tw.w.Add(p)
		}
		return nil
	})
}

// follow adds a newly created directory so changes inside it are seen.
func (tw *treeWatcher) follow(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) {
		return
	}
	if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
		_ = tw.addTree(event.Name)
	}
}

func (tw *treeWatcher) Events() <-chan fsnotify.Event {
	return tw.w.Events
}

func (tw *treeWatcher) Errors() <-chan error {
	return tw.w.Errors
}

func (tw *treeWatcher) Close() error {
	return tw.w.Close()
}
