package voting

// Verdict is the outcome of evaluating a proposal at a given moment.
// Pending is the only non-terminal verdict; once a terminal verdict is
// reached it never changes.
type Verdict string

const (
	PENDING    Verdict = "PENDING"
	PASSED     Verdict = "PASSED"
	EXPIRED    Verdict = "EXPIRED"
	OVERRIDDEN Verdict = "OVERRIDDEN"
	WITHDRAWN  Verdict = "WITHDRAWN"
)

func (v Verdict) IsValid() bool {
	switch v {
	case PENDING, PASSED, EXPIRED, OVERRIDDEN, WITHDRAWN:
		return true
	}

	return false
}

func (v Verdict) IsTerminal() bool {
	switch v {
	case PASSED, EXPIRED, OVERRIDDEN, WITHDRAWN:
		return true
	}

	return false
}

// IsAccepted reports whether downstream consumers should treat the
// proposal as accepted. OVERRIDDEN is a Passed-equivalent outcome,
// tagged distinctly for audit.
func (v Verdict) IsAccepted() bool {
	return v == PASSED || v == OVERRIDDEN
}

func (v Verdict) String() string {
	return string(v)
}
