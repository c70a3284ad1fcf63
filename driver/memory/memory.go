// Package memory provides an in-memory staging driver. It is the default
// driver: staged documents live only as long as the process.
package memory

import (
	"bytes"
	"context"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/gobeaver/specscribe"
)

// memoryFile represents a file stored in memory
type memoryFile struct {
	content     []byte
	contentType string
	metadata    map[string]string
	modTime     time.Time
}

// watchEntry represents a single watch subscription
type watchEntry struct {
	filter glob.Glob
	token  *specscribe.CallbackChangeToken
}

// Adapter provides an in-memory implementation of specscribe.FileSystem
type Adapter struct {
	mu      sync.RWMutex
	files   map[string]*memoryFile
	maxSize int64 // Maximum total storage size (0 = unlimited)
	size    int64 // Current total size

	watchMu sync.RWMutex
	watches []*watchEntry
}

// Config holds configuration for the memory adapter
type Config struct {
	// MaxSize is the maximum total storage size in bytes (0 = unlimited)
	MaxSize int64
}

// New creates a new in-memory adapter
func New(cfg ...Config) *Adapter {
	var maxSize int64
	if len(cfg) > 0 {
		maxSize = cfg[0].MaxSize
	}

	return &Adapter{
		files:   make(map[string]*memoryFile),
		maxSize: maxSize,
	}
}

// Write implements specscribe.FileWriter
func (a *Adapter) Write(ctx context.Context, p string, content io.Reader, options ...specscribe.Option) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p = normalizePath(p)
	if !isValidPath(p) {
		return &specscribe.PathError{Op: "write", Path: p, Err: specscribe.ErrNotAllowed}
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return &specscribe.PathError{Op: "write", Path: p, Err: err}
	}

	opts := specscribe.ApplyOptions(options...)

	a.mu.Lock()
	defer a.mu.Unlock()

	existing, exists := a.files[p]
	if exists && !opts.Overwrite {
		return &specscribe.PathError{Op: "write", Path: p, Err: specscribe.ErrExist}
	}

	newSize := a.size + int64(len(data))
	if exists {
		newSize -= int64(len(existing.content))
	}
	if a.maxSize > 0 && newSize > a.maxSize {
		return &specscribe.PathError{Op: "write", Path: p, Err: specscribe.ErrNoSpace}
	}

	a.files[p] = &memoryFile{
		content:     data,
		contentType: opts.ContentType,
		metadata:    opts.Metadata,
		modTime:     time.Now(),
	}
	a.size = newSize

	go a.notifyWatchers(p)

	return nil
}

// Read implements specscribe.FileReader
func (a *Adapter) Read(ctx context.Context, p string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[p]
	if !exists {
		return nil, &specscribe.PathError{Op: "read", Path: p, Err: specscribe.ErrNotExist}
	}

	return io.NopCloser(bytes.NewReader(file.content)), nil
}

// ReadAll implements specscribe.FileReader
func (a *Adapter) ReadAll(ctx context.Context, p string) ([]byte, error) {
	rc, err := a.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// FileExists implements specscribe.FileReader
func (a *Adapter) FileExists(ctx context.Context, p string) (bool, error) {
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	_, exists := a.files[p]
	return exists, nil
}

// Stat implements specscribe.FileReader
func (a *Adapter) Stat(ctx context.Context, p string) (*specscribe.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	if file, ok := a.files[p]; ok {
		info := fileInfo(p, file)
		return &info, nil
	}

	if a.hasPrefixLocked(p + "/") {
		return &specscribe.FileInfo{Name: path.Base(p), Path: p, IsDir: true}, nil
	}

	return nil, &specscribe.PathError{Op: "stat", Path: p, Err: specscribe.ErrNotExist}
}

// ListContents implements specscribe.FileReader. Directories are implied
// by the paths of the files beneath them.
func (a *Adapter) ListContents(ctx context.Context, p string, recursive bool) ([]specscribe.FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p = normalizePath(p)
	prefix := ""
	if p != "" {
		prefix = p + "/"
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	if prefix != "" && !a.hasPrefixLocked(prefix) {
		return nil, &specscribe.PathError{Op: "list", Path: p, Err: specscribe.ErrNotExist}
	}

	var result []specscribe.FileInfo
	seenDirs := make(map[string]bool)

	for fp, file := range a.files {
		if !strings.HasPrefix(fp, prefix) {
			continue
		}
		rel := strings.TrimPrefix(fp, prefix)

		if recursive || !strings.Contains(rel, "/") {
			result = append(result, fileInfo(fp, file))
			continue
		}

		dir := prefix + rel[:strings.Index(rel, "/")]
		if !seenDirs[dir] {
			seenDirs[dir] = true
			result = append(result, specscribe.FileInfo{Name: path.Base(dir), Path: dir, IsDir: true})
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})

	return result, nil
}

// Delete implements specscribe.FileWriter
func (a *Adapter) Delete(ctx context.Context, p string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.Lock()
	defer a.mu.Unlock()

	file, exists := a.files[p]
	if !exists {
		return &specscribe.PathError{Op: "delete", Path: p, Err: specscribe.ErrNotExist}
	}

	a.size -= int64(len(file.content))
	delete(a.files, p)

	go a.notifyWatchers(p)

	return nil
}

// DeleteDir implements specscribe.FileWriter
func (a *Adapter) DeleteDir(ctx context.Context, p string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	p = normalizePath(p)
	if p == "" {
		return &specscribe.PathError{Op: "deletedir", Path: p, Err: specscribe.ErrNotAllowed}
	}
	prefix := p + "/"

	a.mu.Lock()
	defer a.mu.Unlock()

	var removed []string
	for fp, file := range a.files {
		if strings.HasPrefix(fp, prefix) {
			a.size -= int64(len(file.content))
			delete(a.files, fp)
			removed = append(removed, fp)
		}
	}

	if len(removed) == 0 {
		return &specscribe.PathError{Op: "deletedir", Path: p, Err: specscribe.ErrNotExist}
	}

	go func() {
		for _, fp := range removed {
			a.notifyWatchers(fp)
		}
	}()

	return nil
}

// Checksum implements specscribe.CanChecksum
func (a *Adapter) Checksum(ctx context.Context, p string, algorithm specscribe.ChecksumAlgorithm) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	p = normalizePath(p)

	a.mu.RLock()
	defer a.mu.RUnlock()

	file, exists := a.files[p]
	if !exists {
		return "", &specscribe.PathError{Op: "checksum", Path: p, Err: specscribe.ErrNotExist}
	}

	checksum, err := specscribe.CalculateChecksum(bytes.NewReader(file.content), algorithm)
	if err != nil {
		return "", &specscribe.PathError{Op: "checksum", Path: p, Err: err}
	}
	return checksum, nil
}

// Size returns the current total size of all stored files
func (a *Adapter) Size() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.size
}

// FileCount returns the number of files stored
func (a *Adapter) FileCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.files)
}

// Clear removes all files
func (a *Adapter) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.files = make(map[string]*memoryFile)
	a.size = 0
}

// Watch implements specscribe.CanWatch.
// Supports glob patterns like "cv/**", "*.pdf", "job-spec/*/*".
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

	token := specscribe.NewCallbackChangeToken()

	a.watchMu.Lock()
	a.watches = append(a.watches, &watchEntry{filter: g, token: token})
	a.watchMu.Unlock()

	// The token is spent after its first change.
	fired := make(chan struct{})
	var once sync.Once
	token.RegisterChangeCallback(func() {
		once.Do(func() { close(fired) })
	})

	go func() {
		select {
		case <-ctx.Done():
		case <-fired:
		}
		a.removeWatch(token)
	}()

	return token, nil
}

// notifyWatchers signals all watchers whose filter matches the given path
func (a *Adapter) notifyWatchers(p string) {
	a.watchMu.RLock()
	defer a.watchMu.RUnlock()

	for _, entry := range a.watches {
		if entry.filter.Match(p) {
			entry.token.SignalChange()
		}
	}
}

// removeWatch removes a watch entry by token
func (a *Adapter) removeWatch(token *specscribe.CallbackChangeToken) {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()

	for i, entry := range a.watches {
		if entry.token == token {
			a.watches[i] = a.watches[len(a.watches)-1]
			a.watches = a.watches[:len(a.watches)-1]
			return
		}
	}
}

// hasPrefixLocked reports whether any file lives under prefix.
// Must be called with lock held.
func (a *Adapter) hasPrefixLocked(prefix string) bool {
	for fp := range a.files {
		if strings.HasPrefix(fp, prefix) {
			return true
		}
	}
	return false
}

func fileInfo(p string, file *memoryFile) specscribe.FileInfo {
	return specscribe.FileInfo{
		Name:        path.Base(p),
		Path:        p,
		Size:        int64(len(file.content)),
		ModTime:     file.modTime,
		ContentType: file.contentType,
		Metadata:    file.metadata,
	}
}

// normalizePath normalizes a file path
func normalizePath(p string) string {
	p = strings.TrimPrefix(path.Clean(p), "/")
	if p == "." {
		return ""
	}
	return p
}

// isValidPath checks the path stays inside the store
func isValidPath(p string) bool {
	return p != "" && !strings.HasPrefix(p, "..")
}

// Ensure Adapter implements interfaces
var (
	_ specscribe.FileSystem  = (*Adapter)(nil)
	_ specscribe.CanChecksum = (*Adapter)(nil)
	_ specscribe.CanWatch    = (*Adapter)(nil)
)
