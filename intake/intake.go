package intake

// AcceptFunc receives a file that passed intake.
type AcceptFunc func(file CandidateFile)

// NotifyFunc receives the notice for a rejected file.
type NotifyFunc func(notice Notice)

// Intake validates file and calls exactly one of accept or notify.
// A rejected file is never forwarded and always produces a notice.
func Intake(file CandidateFile, policy Policy, accept AcceptFunc, notify NotifyFunc) Outcome {
	outcome := Validate(file, policy)
	if outcome.Accepted() {
		if accept != nil {
			accept(file)
		}
		return outcome
	}

	if notify != nil {
		notify(NoticeFor(outcome.Reason, policy))
	}
	return outcome
}
