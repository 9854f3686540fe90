package ledger

import "time"

// TxID uniquely identifies a transaction and the puzzle it carries.
type TxID uint64

// ClientID identifies a mining client.
type ClientID uint64

// Record represents a transaction held by the ledger.
type Record struct {
	ID         TxID      `json:"txid"`
	Difficulty int       `json:"difficulty"` // Number of 0's needed to solve the puzzle.
	Solution   string    `json:"solution"`   // Winning candidate, empty until solved.
	Winner     ClientID  `json:"winner"`     // Client who solved the puzzle, only valid when solved.
	Solved     bool      `json:"solved"`
	CreatedAt  time.Time `json:"created_at"`
	SolvedAt   time.Time `json:"solved_at,omitzero"`
}

// =============================================================================

// Outcome represents the result of a submission against the ledger.
type Outcome int

// Set of possible submission outcomes.
const (
	NotFound Outcome = iota
	Invalid
	Accepted
	AlreadySolved
)

// Code returns the wire value for the outcome.
func (o Outcome) Code() int {
	switch o {
	case Invalid:
		return 0
	case Accepted:
		return 1
	case AlreadySolved:
		return 2
	default:
		return -1
	}
}

// String implements the fmt.Stringer interface.
func (o Outcome) String() string {
	switch o {
	case Invalid:
		return "invalid"
	case Accepted:
		return "accepted"
	case AlreadySolved:
		return "already-solved"
	default:
		return "not-found"
	}
}

// OutcomeFromCode converts a wire value back into an outcome. Unknown values
// map to NotFound.
func OutcomeFromCode(code int) Outcome {
	switch code {
	case 0:
		return Invalid
	case 1:
		return Accepted
	case 2:
		return AlreadySolved
	default:
		return NotFound
	}
}
