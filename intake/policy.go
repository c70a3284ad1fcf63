package intake

import (
	"errors"
	"strings"
)

// Size constants for easier policy configuration
const (
	KB = int64(1024)
	MB = KB * 1024
)

// Common specifiers
const (
	TypePDF  = "application/pdf"
	TypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	TypeText = "text/plain"
	ExtPDF   = ".pdf"
	ExtDOCX  = ".docx"
)

// Policy defines which files may pass intake.
type Policy struct {
	// MaxSize is the largest accepted size in bytes, inclusive.
	// Use the provided constants, e.g., 5 * MB.
	MaxSize int64

	// Accepted lists the allowed specifiers in order. Each entry is either a
	// MIME type ("application/pdf") or a dot-prefixed extension (".docx").
	// An empty list accepts any type.
	Accepted []string
}

// Check reports a misconfigured policy. Validate does not call it; a bad
// policy is a caller bug and belongs at configuration time.
func (p Policy) Check() error {
	if p.MaxSize <= 0 {
		return errors.New("max size must be positive")
	}
	return nil
}

// DefaultPolicy accepts PDF files up to 10MB.
func DefaultPolicy() Policy {
	return Policy{
		MaxSize:  10 * MB,
		Accepted: []string{TypePDF},
	}
}

// JobSpecPolicy accepts job specification documents: PDF or DOCX up to 5MB.
func JobSpecPolicy() Policy {
	return Policy{
		MaxSize:  5 * MB,
		Accepted: []string{TypePDF, ExtDOCX, TypeDOCX},
	}
}

// CVPolicy accepts candidate CVs: PDF or DOCX up to 5MB.
func CVPolicy() Policy {
	return Policy{
		MaxSize:  5 * MB,
		Accepted: []string{TypePDF, ExtDOCX, TypeDOCX},
	}
}

// InterviewDocPolicy accepts the job specification uploaded alongside a CV
// for interview question generation: PDF, DOCX or a declared text/plain
// file up to 5MB. A .txt name alone is not enough.
func InterviewDocPolicy() Policy {
	return Policy{
		MaxSize:  5 * MB,
		Accepted: []string{TypePDF, ExtDOCX, TypeDOCX, TypeText},
	}
}

// ParseSpecifiers splits a comma-separated specifier list such as
// "application/pdf, .docx". Blank entries are dropped.
func ParseSpecifiers(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}

	parts := strings.Split(list, ",")
	specs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			specs = append(specs, p)
		}
	}
	return specs
}
