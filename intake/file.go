package intake

import (
	"mime/multipart"
	"strings"
)

// CandidateFile is the file metadata needed for an intake decision.
// The payload itself is never inspected.
type CandidateFile struct {
	// Name is the client-supplied file name, including its extension.
	Name string

	// DeclaredType is the MIME type reported by the client. It may be empty.
	DeclaredType string

	// Size is the payload length in bytes.
	Size int64
}

// Extension returns the lower-cased extension of the file name, including
// the leading dot. A name without a dot yields the dot-prefixed whole name.
func (f CandidateFile) Extension() string {
	return extensionOf(f.Name)
}

// FromFileHeader builds a CandidateFile from an HTTP multipart part.
func FromFileHeader(header *multipart.FileHeader) CandidateFile {
	return CandidateFile{
		Name:         header.Filename,
		DeclaredType: header.Header.Get("Content-Type"),
		Size:         header.Size,
	}
}

// First reduces a multi-file selection to its first entry.
// It returns false when nothing was selected.
func First(headers []*multipart.FileHeader) (*multipart.FileHeader, bool) {
	if len(headers) == 0 || headers[0] == nil {
		return nil, false
	}
	return headers[0], true
}

// extensionOf takes everything after the last dot. Names without a dot are
// treated as being all extension.
func extensionOf(name string) string {
	ext := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		ext = name[i+1:]
	}
	return "." + strings.ToLower(ext)
}
