package intake

import (
	"errors"
	"fmt"
	"testing"
)

func TestNoticeFor(t *testing.T) {
	policy := Policy{MaxSize: 5 * MB, Accepted: []string{"application/pdf", ".docx"}}

	tests := []struct {
		name   string
		reason Reason
		want   Notice
	}{
		{
			name:   "too large",
			reason: ReasonTooLarge,
			want: Notice{
				Title:       "File too large",
				Description: "The file exceeds the maximum size of 5MB.",
				Variant:     VariantDestructive,
			},
		},
		{
			name:   "unsupported type",
			reason: ReasonUnsupportedType,
			want: Notice{
				Title:       "Invalid file type",
				Description: "Please upload a file with one of these formats: application/pdf, .docx",
				Variant:     VariantDestructive,
			},
		},
		{
			name:   "accepted",
			reason: "",
			want:   Notice{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NoticeFor(tt.reason, policy); got != tt.want {
				t.Errorf("NoticeFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormatLimit(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{5 * MB, "5MB"},
		{10 * MB, "10MB"},
		{1536 * KB, "1.5 MiB"},
		{512, "512 B"},
		{0, "0 B"},
	}

	for _, tt := range tests {
		if got := FormatLimit(tt.size); got != tt.want {
			t.Errorf("FormatLimit(%d) = %q, want %q", tt.size, got, tt.want)
		}
	}
}

func TestIntake(t *testing.T) {
	policy := JobSpecPolicy()

	t.Run("accepted file is forwarded", func(t *testing.T) {
		var forwarded []CandidateFile
		var notices []Notice

		file := CandidateFile{Name: "spec.pdf", DeclaredType: TypePDF, Size: 1 * MB}
		outcome := Intake(file, policy,
			func(f CandidateFile) { forwarded = append(forwarded, f) },
			func(n Notice) { notices = append(notices, n) },
		)

		if !outcome.Accepted() {
			t.Fatalf("Intake() rejected: %v", outcome.Err())
		}
		if len(forwarded) != 1 || forwarded[0] != file {
			t.Errorf("forwarded = %+v, want [%+v]", forwarded, file)
		}
		if len(notices) != 0 {
			t.Errorf("notices = %+v, want none", notices)
		}
	})

	t.Run("rejected file only notifies", func(t *testing.T) {
		var forwarded []CandidateFile
		var notices []Notice

		file := CandidateFile{Name: "spec.pdf", DeclaredType: TypePDF, Size: 6 * MB}
		outcome := Intake(file, policy,
			func(f CandidateFile) { forwarded = append(forwarded, f) },
			func(n Notice) { notices = append(notices, n) },
		)

		if outcome.Reason != ReasonTooLarge {
			t.Errorf("reason = %q, want %q", outcome.Reason, ReasonTooLarge)
		}
		if len(forwarded) != 0 {
			t.Errorf("forwarded = %+v, want none", forwarded)
		}
		if len(notices) != 1 || notices[0].Title != "File too large" {
			t.Errorf("notices = %+v, want one too-large notice", notices)
		}
	})

	t.Run("nil callbacks", func(t *testing.T) {
		outcome := Intake(CandidateFile{Name: "x.png", Size: 1}, policy, nil, nil)
		if outcome.Reason != ReasonUnsupportedType {
			t.Errorf("reason = %q, want %q", outcome.Reason, ReasonUnsupportedType)
		}
	})
}

func TestRejectionError(t *testing.T) {
	err := NewRejectionError(ReasonTooLarge, "file size too big")
	if want := "intake rejected (too_large): file size too big"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	wrapped := fmt.Errorf("stage: %w", err)

	tests := []struct {
		name       string
		err        error
		rejection  bool
		reason     Reason
		isTooLarge bool
	}{
		{"direct", err, true, ReasonTooLarge, true},
		{"wrapped", wrapped, true, ReasonTooLarge, true},
		{"other reason", NewRejectionError(ReasonUnsupportedType, "x"), true, ReasonUnsupportedType, false},
		{"plain error", errors.New("boom"), false, "", false},
		{"nil", nil, false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRejection(tt.err); got != tt.rejection {
				t.Errorf("IsRejection() = %v, want %v", got, tt.rejection)
			}
			if got := ReasonOf(tt.err); got != tt.reason {
				t.Errorf("ReasonOf() = %q, want %q", got, tt.reason)
			}
			if got := IsReason(tt.err, ReasonTooLarge); got != tt.isTooLarge {
				t.Errorf("IsReason(TooLarge) = %v, want %v", got, tt.isTooLarge)
			}
		})
	}
}
