package rpc

import (
	"context"
	"fmt"

	"github.com/ardanlabs/powcontest/foundation/contest/session"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client calls the miner service over grpc. It implements session.Client.
type Client struct {
	conn *grpc.ClientConn
}

// Dial constructs a client for the specified target. Extra options are
// applied after the defaults.
func Dial(target string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codecName)),
	}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("rpc dial %s: %w", target, err)
	}

	return &Client{conn: conn}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Assign returns the transaction to work on.
func (c *Client) Assign(ctx context.Context) (uint64, error) {
	var resp IntReply
	if err := c.conn.Invoke(ctx, methodAssign, &Empty{}, &resp); err != nil {
		return 0, err
	}
	return resp.Value, nil
}

// Challenge returns the puzzle for the transaction.
func (c *Client) Challenge(ctx context.Context, txID uint64) (session.Challenge, error) {
	var resp ChallengeReply
	if err := c.conn.Invoke(ctx, methodChallenge, &TxRequest{TxID: txID}, &resp); err != nil {
		return session.Challenge{}, err
	}
	return session.Challenge{TxID: txID, Difficulty: resp.Challenge, Algorithm: resp.Algorithm}, nil
}

// Status returns the state of the transaction.
func (c *Client) Status(ctx context.Context, txID uint64) (int, error) {
	var resp StatusReply
	if err := c.conn.Invoke(ctx, methodStatus, &TxRequest{TxID: txID}, &resp); err != nil {
		return 0, err
	}
	return resp.Status, nil
}

// Submit sends a candidate for the transaction.
func (c *Client) Submit(ctx context.Context, txID uint64, clientID uint64, candidate string) (int, error) {
	req := SubmitRequest{
		TxID:     txID,
		ClientID: clientID,
		Solution: candidate,
	}

	var resp SubmitReply
	if err := c.conn.Invoke(ctx, methodSubmit, &req, &resp); err != nil {
		return 0, err
	}
	return resp.Result, nil
}

// Winner returns the winner of the transaction.
func (c *Client) Winner(ctx context.Context, txID uint64) (int64, error) {
	var resp WinnerReply
	if err := c.conn.Invoke(ctx, methodWinner, &TxRequest{TxID: txID}, &resp); err != nil {
		return 0, err
	}
	return resp.Winner, nil
}

// Solution returns the puzzle and solution for the transaction.
func (c *Client) Solution(ctx context.Context, txID uint64) (session.Solution, error) {
	var resp SolutionInfo
	if err := c.conn.Invoke(ctx, methodSolution, &TxRequest{TxID: txID}, &resp); err != nil {
		return session.Solution{}, err
	}

	sol := session.Solution{
		TxID:       txID,
		Status:     resp.Status,
		Difficulty: resp.Challenge,
		Solution:   resp.Solution,
	}

	return sol, nil
}
