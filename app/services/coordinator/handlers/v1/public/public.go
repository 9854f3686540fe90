// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/powcontest/business/web/errs"
	"github.com/ardanlabs/powcontest/foundation/contest/coordinator"
	"github.com/ardanlabs/powcontest/foundation/contest/ledger"
	"github.com/ardanlabs/powcontest/foundation/events"
	"github.com/ardanlabs/powcontest/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of contest endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	Coord *coordinator.Coordinator
	WS    websocket.Upgrader
	Evts  *events.Hub
}

// Assign returns the lowest transaction still waiting for a solution.
func (h Handlers) Assign(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id := h.Coord.Assign()

	return web.Respond(ctx, w, assignment{TxID: uint64(id)}, http.StatusOK)
}

// Challenge returns the difficulty of the specified transaction.
func (h Handlers) Challenge(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := web.ParamUint(r, "txid")
	if err != nil {
		return errs.NewBadRequest(err)
	}

	difficulty, _ := h.Coord.Challenge(ledger.TxID(id))

	resp := challenge{
		TxID:       id,
		Difficulty: difficulty,
		Algorithm:  h.Coord.Algorithm(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Status returns the state of the specified transaction.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := web.ParamUint(r, "txid")
	if err != nil {
		return errs.NewBadRequest(err)
	}

	s := h.Coord.Status(ledger.TxID(id))

	return web.Respond(ctx, w, status{TxID: id, Status: s.Code()}, http.StatusOK)
}

// Winner returns the client who solved the specified transaction.
func (h Handlers) Winner(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := web.ParamUint(r, "txid")
	if err != nil {
		return errs.NewBadRequest(err)
	}

	win := h.Coord.WinnerOf(ledger.TxID(id))

	return web.Respond(ctx, w, winner{TxID: id, Winner: win.Code()}, http.StatusOK)
}

// Solution returns the puzzle and solution for the specified transaction.
func (h Handlers) Solution(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := web.ParamUint(r, "txid")
	if err != nil {
		return errs.NewBadRequest(err)
	}

	si := h.Coord.SolutionOf(ledger.TxID(id))

	resp := solution{
		TxID:       id,
		Status:     si.Status.Code(),
		Difficulty: si.DifficultyCode(),
		Solution:   si.Solution,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Submit validates a candidate solution for a transaction on behalf of a
// client.
func (h Handlers) Submit(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var sub Submission
	if err := web.Decode(r, &sub); err != nil {
		return errs.NewBadRequest(fmt.Errorf("unable to decode payload: %w", err))
	}

	id := ledger.TxID(*sub.TxID)
	client := ledger.ClientID(*sub.ClientID)

	out := h.Coord.Submit(id, client, sub.Solution)

	h.Log.Infow("submit", "traceid", v.TraceID, "txid", id, "client", client, "outcome", out)

	return web.Respond(ctx, w, submitResult{TxID: uint64(id), Result: out.Code()}, http.StatusOK)
}

// Transactions returns every transaction known to the coordinator.
func (h Handlers) Transactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	recs := h.Coord.Transactions()

	txs := make([]tx, len(recs))
	for i, rec := range recs {
		txs[i] = toTx(rec)
	}

	return web.Respond(ctx, w, txs, http.StatusOK)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	// Need this to handle CORS on the websocket.
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// This upgrades the HTTP connection to a websocket connection.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	// This provides a channel for receiving events from the coordinator.
	ch := h.Evts.Subscribe(v.TraceID)
	defer h.Evts.Unsubscribe(v.TraceID)

	// This keeps the client's socket alive.
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case evt, open := <-ch:

			// If the channel is closed, release the websocket.
			if !open {
				return nil
			}

			if err := c.WriteJSON(evt); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
