package coordinator

import "github.com/ardanlabs/powcontest/foundation/contest/ledger"

// Status represents the state of a transaction as seen by a client.
type Status int

// Set of transaction states.
const (
	Unknown Status = iota
	Solved
	Pending
)

// Code returns the wire value for the status.
func (s Status) Code() int {
	switch s {
	case Solved:
		return 0
	case Pending:
		return 1
	default:
		return -1
	}
}

// String implements the fmt.Stringer interface.
func (s Status) String() string {
	switch s {
	case Solved:
		return "solved"
	case Pending:
		return "pending"
	default:
		return "unknown"
	}
}

// StatusFromCode converts a wire value back into a status.
func StatusFromCode(code int) Status {
	switch code {
	case 0:
		return Solved
	case 1:
		return Pending
	default:
		return Unknown
	}
}

// =============================================================================

// Winner represents who, if anyone, solved a transaction.
type Winner struct {
	Status   Status
	ClientID ledger.ClientID
}

// Code returns the wire value: -1 for an unknown transaction, 0 when there is
// no winner yet, otherwise the winning client id.
func (w Winner) Code() int64 {
	switch w.Status {
	case Solved:
		return int64(w.ClientID)
	case Pending:
		return 0
	default:
		return -1
	}
}

// =============================================================================

// SolutionInfo describes the puzzle and its solution for a transaction.
type SolutionInfo struct {
	Status     Status
	Difficulty int
	Solution   string
}

// DifficultyCode returns the difficulty, or -1 for an unknown transaction.
func (si SolutionInfo) DifficultyCode() int {
	if si.Status == Unknown {
		return -1
	}
	return si.Difficulty
}
