package intake

import (
	"fmt"
	"mime/multipart"
	"strings"
)

// Outcome is the result of one intake decision: either accepted, carrying
// the file, or rejected with a Reason.
type Outcome struct {
	// File is the candidate that was checked.
	File CandidateFile

	// Reason is empty for an accepted file.
	Reason Reason

	message string
}

// Accepted reports whether the file passed both the size and type checks.
func (o Outcome) Accepted() bool {
	return o.Reason == ""
}

// Err returns nil for an accepted file and a *RejectionError otherwise.
func (o Outcome) Err() error {
	if o.Accepted() {
		return nil
	}
	return NewRejectionError(o.Reason, o.message)
}

func accepted(file CandidateFile) Outcome {
	return Outcome{File: file}
}

func rejected(file CandidateFile, reason Reason, message string) Outcome {
	return Outcome{File: file, Reason: reason, message: message}
}

// Validate decides whether file may proceed under policy.
//
// The size limit is inclusive. The type check runs only when the size check
// passed and the policy lists at least one specifier.
func Validate(file CandidateFile, policy Policy) Outcome {
	if file.Size > policy.MaxSize {
		return rejected(file, ReasonTooLarge,
			fmt.Sprintf("file size too big: %d bytes (max: %d bytes)", file.Size, policy.MaxSize))
	}

	if len(policy.Accepted) == 0 {
		return accepted(file)
	}

	if !isAcceptedType(file, policy.Accepted) {
		return rejected(file, ReasonUnsupportedType,
			fmt.Sprintf("file type %q with extension %s is not accepted; allowed types: %v",
				file.DeclaredType, file.Extension(), policy.Accepted))
	}

	return accepted(file)
}

// isAcceptedType checks the declared MIME type first, then falls back to
// the extension derived from the name.
func isAcceptedType(file CandidateFile, specifiers []string) bool {
	for _, spec := range specifiers {
		if strings.TrimSpace(spec) == file.DeclaredType {
			return true
		}
	}

	ext := file.Extension()
	for _, spec := range specifiers {
		spec = strings.TrimSpace(spec)
		if strings.HasPrefix(spec, ".") && strings.EqualFold(spec, ext) {
			return true
		}
	}
	return false
}

// Validator gates files for one call site.
type Validator interface {
	// Validate checks a file against the validator's policy
	Validate(file CandidateFile) Outcome

	// ValidateHeader checks an HTTP multipart part
	ValidateHeader(header *multipart.FileHeader) Outcome

	// Policy returns the policy in force
	Policy() Policy
}

// Gate implements the Validator interface for a fixed policy.
type Gate struct {
	policy Policy
}

// New creates a gate for the given policy
func New(policy Policy) *Gate {
	return &Gate{policy: policy}
}

// NewDefault creates a gate using DefaultPolicy
func NewDefault() *Gate {
	return &Gate{policy: DefaultPolicy()}
}

// Validate implements Validator
func (g *Gate) Validate(file CandidateFile) Outcome {
	return Validate(file, g.policy)
}

// ValidateHeader implements Validator
func (g *Gate) ValidateHeader(header *multipart.FileHeader) Outcome {
	return Validate(FromFileHeader(header), g.policy)
}

// Policy implements Validator
func (g *Gate) Policy() Policy {
	return g.policy
}
