package intake

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

// Variant styles a notice for display.
type Variant string

// VariantDestructive marks a notice for an action that failed.
const VariantDestructive Variant = "destructive"

// Notice is the user-facing rendering of a rejection.
type Notice struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// NoticeFor maps a rejection reason to display text, interpolating the
// limits from policy. It returns the zero Notice for an empty reason.
func NoticeFor(reason Reason, policy Policy) Notice {
	switch reason {
	case ReasonTooLarge:
		return Notice{
			Title:       "File too large",
			Description: fmt.Sprintf("The file exceeds the maximum size of %s.", FormatLimit(policy.MaxSize)),
			Variant:     VariantDestructive,
		}
	case ReasonUnsupportedType:
		return Notice{
			Title:       "Invalid file type",
			Description: "Please upload a file with one of these formats: " + strings.Join(policy.Accepted, ", "),
			Variant:     VariantDestructive,
		}
	default:
		return Notice{}
	}
}

// FormatLimit renders a byte limit the way the upload form shows it:
// whole mebibytes as "5MB", anything else as an IEC size.
func FormatLimit(size int64) string {
	if size > 0 && size%MB == 0 {
		return fmt.Sprintf("%dMB", size/MB)
	}
	if size < 0 {
		size = 0
	}
	return humanize.IBytes(uint64(size))
}
