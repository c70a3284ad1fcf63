// Package local provides a staging driver backed by a directory on disk.
package local

import (
	"context"
	"errors"
	"io"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/gobeaver/specscribe"
	"github.com/gobeaver/specscribe/intake"
)

// Adapter provides a local filesystem implementation of specscribe.FileSystem
type Adapter struct {
	root string
}

// New creates a new local filesystem adapter rooted at root, creating the
// directory if needed.
func New(root string) (*Adapter, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, err
	}

	return &Adapter{
		root: absRoot,
	}, nil
}

// Root returns the absolute root directory
func (a *Adapter) Root() string {
	return a.root
}

// resolve maps a slash-separated path onto the root, rejecting escapes.
func (a *Adapter) resolve(op, path string) (string, error) {
	fullPath := filepath.Join(a.root, filepath.FromSlash(filepath.Clean("/"+path)))
	if !isPathUnderRoot(a.root, fullPath) {
		return "", &specscribe.PathError{Op: op, Path: path, Err: specscribe.ErrNotAllowed}
	}
	return fullPath, nil
}

// Write implements specscribe.FileWriter
func (a *Adapter) Write(ctx context.Context, path string, content io.Reader, options ...specscribe.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.resolve("write", path)
	if err != nil {
		return err
	}
	if fullPath == a.root {
		return &specscribe.PathError{Op: "write", Path: path, Err: specscribe.ErrIsDir}
	}
	if isMetaName(filepath.Base(fullPath)) {
		return &specscribe.PathError{Op: "write", Path: path, Err: specscribe.ErrInvalidName}
	}

	opts := specscribe.ApplyOptions(options...)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return &specscribe.PathError{Op: "write", Path: path, Err: err}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !opts.Overwrite {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return &specscribe.PathError{Op: "write", Path: path, Err: specscribe.ErrExist}
		}
		return &specscribe.PathError{Op: "write", Path: path, Err: err}
	}

	// Options land before the content is copied.
	if err := writeMeta(fullPath, opts); err != nil {
		f.Close()
		os.Remove(fullPath)
		return &specscribe.PathError{Op: "write", Path: path, Err: err}
	}

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(fullPath)
		removeMeta(fullPath)
		return &specscribe.PathError{Op: "write", Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		removeMeta(fullPath)
		return &specscribe.PathError{Op: "write", Path: path, Err: err}
	}

	return nil
}

// Read implements specscribe.FileReader
func (a *Adapter) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.resolve("read", path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, &specscribe.PathError{Op: "read", Path: path, Err: mapError(err)}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &specscribe.PathError{Op: "read", Path: path, Err: err}
	}
	if info.IsDir() {
		f.Close()
		return nil, &specscribe.PathError{Op: "read", Path: path, Err: specscribe.ErrIsDir}
	}

	return f, nil
}

// ReadAll implements specscribe.FileReader
func (a *Adapter) ReadAll(ctx context.Context, path string) ([]byte, error) {
	rc, err := a.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FileExists implements specscribe.FileReader
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	fullPath, err := a.resolve("exists", path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &specscribe.PathError{Op: "exists", Path: path, Err: err}
	}

	return !info.IsDir(), nil
}

// Stat implements specscribe.FileReader
func (a *Adapter) Stat(ctx context.Context, path string) (*specscribe.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.resolve("stat", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, &specscribe.PathError{Op: "stat", Path: path, Err: mapError(err)}
	}

	fi := a.fileInfo(fullPath, info)
	return &fi, nil
}

// ListContents implements specscribe.FileReader
func (a *Adapter) ListContents(ctx context.Context, path string, recursive bool) ([]specscribe.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	fullPath, err := a.resolve("list", path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, &specscribe.PathError{Op: "list", Path: path, Err: mapError(err)}
	}
	if !info.IsDir() {
		return nil, &specscribe.PathError{Op: "list", Path: path, Err: specscribe.ErrNotDir}
	}

	var files []specscribe.FileInfo

	if recursive {
		err = filepath.Walk(fullPath, func(walkPath string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if walkPath == fullPath || (!info.IsDir() && isMetaName(info.Name())) {
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			files = append(files, a.fileInfo(walkPath, info))
			return nil
		})
		if err != nil {
			return nil, &specscribe.PathError{Op: "list", Path: path, Err: err}
		}
	} else {
		entries, err := os.ReadDir(fullPath)
		if err != nil {
			return nil, &specscribe.PathError{Op: "list", Path: path, Err: err}
		}

		files = make([]specscribe.FileInfo, 0, len(entries))
		for _, entry := range entries {
			if !entry.IsDir() && isMetaName(entry.Name()) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			files = append(files, a.fileInfo(filepath.Join(fullPath, entry.Name()), info))
		}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// Delete implements specscribe.FileWriter
func (a *Adapter) Delete(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.resolve("delete", path)
	if err != nil {
		return err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return &specscribe.PathError{Op: "delete", Path: path, Err: mapError(err)}
	}
	if info.IsDir() {
		return &specscribe.PathError{Op: "delete", Path: path, Err: specscribe.ErrIsDir}
	}

	if err := os.Remove(fullPath); err != nil {
		return &specscribe.PathError{Op: "delete", Path: path, Err: err}
	}
	if err := removeMeta(fullPath); err != nil {
		return &specscribe.PathError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

// DeleteDir implements specscribe.FileWriter
func (a *Adapter) DeleteDir(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	fullPath, err := a.resolve("deletedir", path)
	if err != nil {
		return err
	}
	if fullPath == a.root {
		return &specscribe.PathError{Op: "deletedir", Path: path, Err: specscribe.ErrNotAllowed}
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return &specscribe.PathError{Op: "deletedir", Path: path, Err: mapError(err)}
	}
	if !info.IsDir() {
		return &specscribe.PathError{Op: "deletedir", Path: path, Err: specscribe.ErrNotDir}
	}

	if err := os.RemoveAll(fullPath); err != nil {
		return &specscribe.PathError{Op: "deletedir", Path: path, Err: err}
	}
	return nil
}

// Checksum implements specscribe.CanChecksum
func (a *Adapter) Checksum(ctx context.Context, path string, algorithm specscribe.ChecksumAlgorithm) (string, error) {
	rc, err := a.Read(ctx, path)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	checksum, err := specscribe.CalculateChecksum(rc, algorithm)
	if err != nil {
		return "", &specscribe.PathError{Op: "checksum", Path: path, Err: err}
	}
	return checksum, nil
}

// Watch implements specscribe.CanWatch using fsnotify for native file system
// events. The filter is a glob over slash-separated paths relative to the
// root, e.g. "cv/**". The token is spent after the first matching change.
func (a *Adapter) Watch(ctx context.Context, filter string) (specscribe.ChangeToken, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	g, err := glob.Compile(filter, '/')
	if err != nil {
		return nil, &specscribe.PathError{Op: "watch", Path: filter, Err: err}
	}

	watchPath, err := a.resolve("watch", watchBase(filter))
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(watchPath, 0755); err != nil {
		return nil, &specscribe.PathError{Op: "watch", Path: filter, Err: err}
	}

	watcher, err := newTreeWatcher(watchPath)
	if err != nil {
		return nil, &specscribe.PathError{Op: "watch", Path: filter, Err: err}
	}

	token := specscribe.NewCallbackChangeToken()

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events():
				if !ok {
					return
				}
				watcher.follow(event)

				relPath, err := filepath.Rel(a.root, event.Name)
				if err != nil {
					continue
				}

				if g.Match(filepath.ToSlash(relPath)) {
					token.SignalChange()
					return
				}
			case _, ok := <-watcher.Errors():
				if !ok {
					return
				}
			}
		}
	}()

	return token, nil
}

func (a *Adapter) fileInfo(fullPath string, info os.FileInfo) specscribe.FileInfo {
	rel, err := filepath.Rel(a.root, fullPath)
	if err != nil {
		rel = info.Name()
	}

	fi := specscribe.FileInfo{
		Name:    info.Name(),
		Path:    filepath.ToSlash(rel),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}
	if info.IsDir() {
		return fi
	}

	fi.ContentType = getContentType(info.Name())
	if meta, ok := readMeta(fullPath); ok {
		if meta.ContentType != "" {
			fi.ContentType = meta.ContentType
		}
		fi.Metadata = meta.Metadata
	}
	return fi
}

// watchBase returns the directory part of filter before its first glob
// metacharacter.
func watchBase(filter string) string {
	idx := strings.IndexAny(filter, "*?[{")
	if idx < 0 {
		return filepath.Dir(filter)
	}
	prefix := filter[:idx]
	if slash := strings.LastIndex(prefix, "/"); slash >= 0 {
		return prefix[:slash]
	}
	return ""
}

// isPathUnderRoot checks if a path is under the root directory
func isPathUnderRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != "..")
}

// getContentType guesses a content type from the file extension
func getContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct := intake.MIMETypeForExtension(ext); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func mapError(err error) error {
	switch {
	case os.IsNotExist(err):
		return specscribe.ErrNotExist
	case os.IsPermission(err):
		return specscribe.ErrPermission
	default:
		return err
	}
}

// Ensure Adapter implements interfaces
var (
	_ specscribe.FileSystem  = (*Adapter)(nil)
	_ specscribe.CanChecksum = (*Adapter)(nil)
	_ specscribe.CanWatch    = (*Adapter)(nil)
)
