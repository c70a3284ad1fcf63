package local

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobeaver/specscribe"
)

// Write options are kept in a hidden sidecar next to each file,
// ".<name>.meta.json". Sidecars never show up in listings.
const metaSuffix = ".meta.json"

type fileMeta struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func metaPath(fullPath string) string {
	return filepath.Join(filepath.Dir(fullPath), "."+filepath.Base(fullPath)+metaSuffix)
}

func isMetaName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, metaSuffix)
}

// writeMeta records the write options for fullPath. A write without options
// drops any stale sidecar so the content type is guessed again.
func writeMeta(fullPath string, opts *specscribe.Options) error {
	if opts.ContentType == "" && len(opts.Metadata) == 0 {
		return removeMeta(fullPath)
	}

	data, err := json.Marshal(fileMeta{ContentType: opts.ContentType, Metadata: opts.Metadata})
	if err != nil {
		return err
	}
	return os.WriteFile(metaPath(fullPath), data, 0644)
}

func readMeta(fullPath string) (fileMeta, bool) {
	data, err := os.ReadFile(metaPath(fullPath))
	if err != nil {
		return fileMeta{}, false
	}

	var m fileMeta
	if err := json.Unmarshal(data, &m); err != nil {
		return fileMeta{}, false
	}
	return m, true
}

func removeMeta(fullPath string) error {
	if err := os.Remove(metaPath(fullPath)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
