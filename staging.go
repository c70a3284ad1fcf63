package specscribe

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gobeaver/specscribe/intake"
)

// StagingArea gates uploads through intake and writes accepted files to a
// FileSystem under <kind>/<id>/<name>.
type StagingArea struct {
	fs        FileSystem
	policies  map[DocumentKind]intake.Policy
	algorithm ChecksumAlgorithm
}

// StagingOption configures a StagingArea
type StagingOption func(*StagingArea)

// WithPolicy overrides the intake policy for one document kind
func WithPolicy(kind DocumentKind, policy intake.Policy) StagingOption {
	return func(s *StagingArea) {
		s.policies[kind] = policy
	}
}

// WithChecksumAlgorithm sets the algorithm used to fingerprint staged files
func WithChecksumAlgorithm(algorithm ChecksumAlgorithm) StagingOption {
	return func(s *StagingArea) {
		s.algorithm = algorithm
	}
}

// NewStagingArea creates a staging area over fs with the built-in policy
// for every kind, then applies options.
func NewStagingArea(fs FileSystem, options ...StagingOption) *StagingArea {
	s := &StagingArea{
		fs:        fs,
		policies:  make(map[DocumentKind]intake.Policy, len(Kinds())),
		algorithm: ChecksumXXHash,
	}
	for _, k := range Kinds() {
		s.policies[k] = k.DefaultPolicy()
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// FileSystem returns the backing filesystem
func (s *StagingArea) FileSystem() FileSystem {
	return s.fs
}

// Policy returns the intake policy for kind
func (s *StagingArea) Policy(kind DocumentKind) (intake.Policy, error) {
	policy, ok := s.policies[kind]
	if !ok {
		return intake.Policy{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return policy, nil
}

// Stage validates file against the kind's policy and, if accepted, writes
// content to the staging area. A rejected file returns the
// *intake.RejectionError from the decision and nothing is written.
//
// The size limit is enforced again on the stream, since a client-reported
// size cannot be trusted.
func (s *StagingArea) Stage(ctx context.Context, kind DocumentKind, file intake.CandidateFile, content io.Reader, options ...Option) (*StagedDocument, error) {
	policy, err := s.Policy(kind)
	if err != nil {
		return nil, err
	}

	if outcome := intake.Validate(file, policy); !outcome.Accepted() {
		return nil, outcome.Err()
	}

	hasher, err := NewHasher(s.algorithm)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	name := safeName(file.Name)
	target := path.Join(string(kind), id, name)
	contentType := intake.ContentTypeOf(file)

	limited := &SizeLimitReader{R: content, Limit: policy.MaxSize}
	body := io.TeeReader(limited, hasher)

	writeOpts := make([]Option, 0, len(options)+2)
	writeOpts = append(writeOpts,
		WithContentType(contentType),
		WithMetadata(map[string]string{
			"original_name": file.Name,
			"kind":          string(kind),
		}),
	)
	writeOpts = append(writeOpts, options...)

	if err := s.fs.Write(ctx, target, body, writeOpts...); err != nil {
		_ = s.fs.DeleteDir(ctx, path.Join(string(kind), id))
		return nil, err
	}

	return &StagedDocument{
		ID:                id,
		Kind:              kind,
		Name:              name,
		Path:              target,
		ContentType:       contentType,
		Size:              limited.N,
		Checksum:          hex.EncodeToString(hasher.Sum(nil)),
		ChecksumAlgorithm: s.algorithm,
		StagedAt:          time.Now().UTC(),
	}, nil
}

// Lookup returns a previously staged document
func (s *StagingArea) Lookup(ctx context.Context, kind DocumentKind, id string) (*StagedDocument, error) {
	dir, err := s.documentDir(kind, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.fs.ListContents(ctx, dir, false)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		return s.describe(ctx, kind, id, entry)
	}

	return nil, &PathError{Op: "lookup", Path: dir, Err: ErrNotExist}
}

// List returns every document staged under kind
func (s *StagingArea) List(ctx context.Context, kind DocumentKind) ([]StagedDocument, error) {
	if _, err := s.Policy(kind); err != nil {
		return nil, err
	}

	entries, err := s.fs.ListContents(ctx, string(kind), true)
	if err != nil {
		if IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	docs := make([]StagedDocument, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		// <kind>/<id>/<name>
		parts := strings.Split(strings.Trim(entry.Path, "/"), "/")
		if len(parts) != 3 {
			continue
		}
		doc, err := s.describe(ctx, kind, parts[1], entry)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// Discard removes a staged document
func (s *StagingArea) Discard(ctx context.Context, kind DocumentKind, id string) error {
	dir, err := s.documentDir(kind, id)
	if err != nil {
		return err
	}

	entries, err := s.fs.ListContents(ctx, dir, false)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return &PathError{Op: "discard", Path: dir, Err: ErrNotExist}
	}

	return s.fs.DeleteDir(ctx, dir)
}

// OnStaged invokes action whenever something changes under kind. The
// backing filesystem must support CanWatch.
func (s *StagingArea) OnStaged(ctx context.Context, kind DocumentKind, action func()) (cancel func(), err error) {
	watcher, ok := s.fs.(CanWatch)
	if !ok {
		return nil, fmt.Errorf("%w: filesystem does not support watching", ErrNotSupported)
	}
	if _, err := s.Policy(kind); err != nil {
		return nil, err
	}

	pattern := string(kind) + "/**"

	// Every driver watch shares watchCtx so cancel releases the pending one.
	watchCtx, stopWatch := context.WithCancel(ctx)

	// Surface a bad pattern or driver failure now rather than in the loop.
	first, err := watcher.Watch(watchCtx, pattern)
	if err != nil {
		stopWatch()
		return nil, err
	}

	produced := false
	stop := OnChange(watchCtx, func() (ChangeToken, error) {
		if !produced {
			produced = true
			return first, nil
		}
		return watcher.Watch(watchCtx, pattern)
	}, action)

	return func() {
		stop()
		stopWatch()
	}, nil
}

func (s *StagingArea) describe(ctx context.Context, kind DocumentKind, id string, entry FileInfo) (*StagedDocument, error) {
	checksum, err := ChecksumOf(ctx, s.fs, entry.Path, s.algorithm)
	if err != nil {
		return nil, err
	}

	contentType := entry.ContentType
	if contentType == "" {
		contentType = intake.ContentTypeOf(intake.CandidateFile{Name: entry.Name})
	}

	return &StagedDocument{
		ID:                id,
		Kind:              kind,
		Name:              entry.Name,
		Path:              entry.Path,
		ContentType:       contentType,
		Size:              entry.Size,
		Checksum:          checksum,
		ChecksumAlgorithm: s.algorithm,
		StagedAt:          entry.ModTime.UTC(),
	}, nil
}

func (s *StagingArea) documentDir(kind DocumentKind, id string) (string, error) {
	if _, err := s.Policy(kind); err != nil {
		return "", err
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", &PathError{Op: "lookup", Path: id, Err: ErrInvalidName}
	}
	return path.Join(string(kind), id), nil
}

// safeName strips any directory components a client put in the file name.
func safeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	switch name {
	case "", ".", "..", "/":
		return "document"
	}
	return name
}

// SizeLimitReader restricts the number of bytes read and returns a
// too-large rejection once the limit is exceeded.
type SizeLimitReader struct {
	R     io.Reader
	Limit int64
	N     int64
}

func (l *SizeLimitReader) Read(p []byte) (n int, err error) {
	n, err = l.R.Read(p)
	l.N += int64(n)
	if l.N > l.Limit {
		return n, intake.NewRejectionError(intake.ReasonTooLarge,
			fmt.Sprintf("file size exceeds limit of %d bytes", l.Limit))
	}
	return n, err
}
