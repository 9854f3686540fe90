package rpc

// Empty is the request for calls that take no input.
type Empty struct{}

// TxRequest identifies a transaction.
type TxRequest struct {
	TxID uint64 `json:"txid"`
}

// IntReply carries a single integer value.
type IntReply struct {
	Value uint64 `json:"value"`
}

// ChallengeReply carries the difficulty of a transaction.
type ChallengeReply struct {
	Challenge int    `json:"challenge"`
	Algorithm string `json:"algorithm"`
}

// StatusReply carries the state of a transaction.
type StatusReply struct {
	Status int `json:"status"`
}

// SubmitRequest carries a client's candidate for a transaction.
type SubmitRequest struct {
	TxID     uint64 `json:"txid"`
	ClientID uint64 `json:"client_id"`
	Solution string `json:"solution"`
}

// SubmitReply carries the result of a submission.
type SubmitReply struct {
	Result int `json:"result"`
}

// WinnerReply carries the winner of a transaction.
type WinnerReply struct {
	Winner int64 `json:"winner"`
}

// SolutionInfo carries the puzzle and solution for a transaction.
type SolutionInfo struct {
	Status    int    `json:"status"`
	Solution  string `json:"solution"`
	Challenge int    `json:"challenge"`
}
