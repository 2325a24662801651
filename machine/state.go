package machine

// Purchase attempt states. One attempt walks
// Validate -> Funds -> Change -> Commit -> Done
// or stops at the first rejecting stage. Nothing is persisted across
// attempts and no shared state moves before Commit.
type State uint32

const (
	StateDefault State = iota
	StateValidate
	StateFunds
	StateChange
	StateCommit
	StateDone
)

func (s State) String() string {
	switch s {
	case StateDefault:
		return "Default"
	case StateValidate:
		return "Validate"
	case StateFunds:
		return "Funds"
	case StateChange:
		return "Change"
	case StateCommit:
		return "Commit"
	case StateDone:
		return "Done"
	}
	return "?"
}
