// Package client provides an HTTP client for the coordinator's web api.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ardanlabs/powcontest/foundation/contest/session"
)

// ErrStatus is returned when the coordinator responds with a non 200 status.
var ErrStatus = errors.New("unexpected status")

// Tx represents a transaction as listed by the coordinator. Winner is only
// meaningful when the status reports the transaction as solved.
type Tx struct {
	TxID       uint64    `json:"txid"`
	Difficulty int       `json:"difficulty"`
	Status     int       `json:"status"`
	Winner     int64     `json:"winner"`
	Solution   string    `json:"solution"`
	CreatedAt  time.Time `json:"created_at"`
	SolvedAt   time.Time `json:"solved_at,omitzero"`
}

// HTTP calls the coordinator's v1 routes. It implements session.Client.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// New constructs a client for the coordinator at the specified url. A nil
// http client selects one with a 10 second timeout.
func New(baseURL string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	return &HTTP{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

// Assign returns the transaction to work on.
func (h *HTTP) Assign(ctx context.Context) (uint64, error) {
	var resp struct {
		TxID uint64 `json:"txid"`
	}
	if err := h.get(ctx, "/v1/tx/assign", &resp); err != nil {
		return 0, err
	}
	return resp.TxID, nil
}

// Challenge returns the puzzle for the transaction.
func (h *HTTP) Challenge(ctx context.Context, txID uint64) (session.Challenge, error) {
	var ch session.Challenge
	if err := h.get(ctx, fmt.Sprintf("/v1/tx/challenge/%d", txID), &ch); err != nil {
		return session.Challenge{}, err
	}
	return ch, nil
}

// Status returns the state of the transaction.
func (h *HTTP) Status(ctx context.Context, txID uint64) (int, error) {
	var resp struct {
		Status int `json:"status"`
	}
	if err := h.get(ctx, fmt.Sprintf("/v1/tx/status/%d", txID), &resp); err != nil {
		return 0, err
	}
	return resp.Status, nil
}

// Submit sends a candidate for the transaction.
func (h *HTTP) Submit(ctx context.Context, txID uint64, clientID uint64, candidate string) (int, error) {
	req := struct {
		TxID     uint64 `json:"txid"`
		ClientID uint64 `json:"client_id"`
		Solution string `json:"solution"`
	}{
		TxID:     txID,
		ClientID: clientID,
		Solution: candidate,
	}

	var resp struct {
		Result int `json:"result"`
	}
	if err := h.do(ctx, http.MethodPost, "/v1/tx/submit", req, &resp); err != nil {
		return 0, err
	}
	return resp.Result, nil
}

// Winner returns the winner of the transaction.
func (h *HTTP) Winner(ctx context.Context, txID uint64) (int64, error) {
	var resp struct {
		Winner int64 `json:"winner"`
	}
	if err := h.get(ctx, fmt.Sprintf("/v1/tx/winner/%d", txID), &resp); err != nil {
		return 0, err
	}
	return resp.Winner, nil
}

// Solution returns the puzzle and solution for the transaction.
func (h *HTTP) Solution(ctx context.Context, txID uint64) (session.Solution, error) {
	var sol session.Solution
	if err := h.get(ctx, fmt.Sprintf("/v1/tx/solution/%d", txID), &sol); err != nil {
		return session.Solution{}, err
	}
	return sol, nil
}

// Transactions returns every transaction the coordinator knows about.
func (h *HTTP) Transactions(ctx context.Context) ([]Tx, error) {
	var txs []Tx
	if err := h.get(ctx, "/v1/tx/list", &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// =============================================================================

func (h *HTTP) get(ctx context.Context, path string, v any) error {
	return h.do(ctx, http.MethodGet, path, nil, v)
}

func (h *HTTP) do(ctx context.Context, method string, path string, body any, v any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var er struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&er)
		return fmt.Errorf("%s %s: %w: %d: %s", method, path, ErrStatus, resp.StatusCode, er.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
