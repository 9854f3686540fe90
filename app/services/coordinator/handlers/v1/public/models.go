package public

import (
	"time"

	"github.com/ardanlabs/powcontest/foundation/contest/coordinator"
	"github.com/ardanlabs/powcontest/foundation/contest/ledger"
)

type assignment struct {
	TxID uint64 `json:"txid"`
}

type challenge struct {
	TxID       uint64 `json:"txid"`
	Difficulty int    `json:"difficulty"`
	Algorithm  string `json:"algorithm"`
}

type status struct {
	TxID   uint64 `json:"txid"`
	Status int    `json:"status"`
}

type winner struct {
	TxID   uint64 `json:"txid"`
	Winner int64  `json:"winner"`
}

type solution struct {
	TxID       uint64 `json:"txid"`
	Status     int    `json:"status"`
	Difficulty int    `json:"difficulty"`
	Solution   string `json:"solution"`
}

// Submission is what a client sends to claim a transaction.
type Submission struct {
	TxID     *int64 `json:"txid" validate:"required,gte=0"`
	ClientID *int64 `json:"client_id" validate:"required,gte=0"`
	Solution string `json:"solution" validate:"max=1024"`
}

type submitResult struct {
	TxID   uint64 `json:"txid"`
	Result int    `json:"result"`
}

type tx struct {
	TxID       uint64    `json:"txid"`
	Difficulty int       `json:"difficulty"`
	Status     int       `json:"status"`
	Winner     int64     `json:"winner"`
	Solution   string    `json:"solution"`
	CreatedAt  time.Time `json:"created_at"`
	SolvedAt   time.Time `json:"solved_at,omitzero"`
}

func toTx(rec ledger.Record) tx {
	t := tx{
		TxID:       uint64(rec.ID),
		Difficulty: rec.Difficulty,
		Status:     coordinator.Pending.Code(),
		Solution:   rec.Solution,
		CreatedAt:  rec.CreatedAt,
		SolvedAt:   rec.SolvedAt,
	}

	if rec.Solved {
		t.Status = coordinator.Solved.Code()
		t.Winner = int64(rec.Winner)
	}

	return t
}
