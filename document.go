package specscribe

import (
	"fmt"
	"time"

	"github.com/gobeaver/specscribe/intake"
)

// DocumentKind names an upload call site. Each kind has its own intake
// policy and its own directory in the staging area.
type DocumentKind string

const (
	KindJobSpec      DocumentKind = "job-spec"
	KindCV           DocumentKind = "cv"
	KindInterviewDoc DocumentKind = "interview-doc"
)

// Kinds lists every document kind in a stable order.
func Kinds() []DocumentKind {
	return []DocumentKind{KindJobSpec, KindCV, KindInterviewDoc}
}

// ParseKind converts a path segment into a DocumentKind.
func ParseKind(s string) (DocumentKind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// DefaultPolicy returns the built-in intake policy for a kind.
func (k DocumentKind) DefaultPolicy() intake.Policy {
	switch k {
	case KindJobSpec:
		return intake.JobSpecPolicy()
	case KindCV:
		return intake.CVPolicy()
	case KindInterviewDoc:
		return intake.InterviewDocPolicy()
	default:
		return intake.DefaultPolicy()
	}
}

// StagedDocument describes a file that passed intake and was written to
// the staging area.
type StagedDocument struct {
	ID                string            `json:"id"`
	Kind              DocumentKind      `json:"kind"`
	Name              string            `json:"name"`
	Path              string            `json:"path"`
	ContentType       string            `json:"content_type"`
	Size              int64             `json:"size"`
	Checksum          string            `json:"checksum"`
	ChecksumAlgorithm ChecksumAlgorithm `json:"checksum_algorithm"`
	StagedAt          time.Time         `json:"staged_at"`
}
