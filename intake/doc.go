// Package intake gates a user-selected file before it is handed on to the
// rest of the application. It checks the file's size and type against an
// acceptance policy and reports a typed outcome.
//
// Validation is a pure decision: it performs no I/O, holds no state, and is
// safe to call from any number of goroutines.
//
// # Quick Start
//
//	policy := intake.JobSpecPolicy()
//
//	outcome := intake.Validate(intake.CandidateFile{
//	    Name:         "resume.docx",
//	    DeclaredType: "",
//	    Size:         1_000_000,
//	}, policy)
//
//	if !outcome.Accepted() {
//	    notice := intake.NoticeFor(outcome.Reason, policy)
//	    // show notice.Title / notice.Description to the user
//	}
//
// Call sites that prefer callbacks use [Intake]:
//
//	intake.Intake(file, policy,
//	    func(f intake.CandidateFile) { stage(f) },
//	    func(n intake.Notice) { toast(n) },
//	)
//
// # Policies
//
// Pre-configured policies for the document kinds the application accepts:
//
//	intake.DefaultPolicy()      // PDF only - 10MB max
//	intake.JobSpecPolicy()      // PDF, DOCX - 5MB max
//	intake.CVPolicy()           // PDF, DOCX - 5MB max
//	intake.InterviewDocPolicy() // PDF, DOCX, text/plain - 5MB max
//
// Policies can be assembled with the builder:
//
//	policy := intake.NewBuilder().
//	    MaxSize(2 * intake.MB).
//	    Accept("application/pdf", ".md").
//	    Build()
//
// # Type Matching
//
// A specifier is either a MIME type, compared exactly against the declared
// type, or a dot-prefixed extension, compared case-insensitively against the
// extension taken from the file name. The declared type is checked first;
// browsers frequently send an empty or generic type for office documents, so
// the extension is the fallback.
//
// # Error Handling
//
// Rejections carry one of two reasons:
//
//	err := intake.Validate(file, policy).Err()
//	switch {
//	case intake.IsReason(err, intake.ReasonTooLarge):
//	    // over the size limit
//	case intake.IsReason(err, intake.ReasonUnsupportedType):
//	    // type and extension both unmatched
//	}
package intake
