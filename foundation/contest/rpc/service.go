package rpc

import (
	"context"

	"github.com/ardanlabs/powcontest/foundation/contest/coordinator"
	"github.com/ardanlabs/powcontest/foundation/contest/ledger"
	"google.golang.org/grpc"
)

// Full method names for the miner service.
const (
	serviceName     = "miner.Miner"
	methodAssign    = "/miner.Miner/getTransactionID"
	methodChallenge = "/miner.Miner/getChallenge"
	methodStatus    = "/miner.Miner/getTransactionStatus"
	methodSubmit    = "/miner.Miner/submitChallenge"
	methodWinner    = "/miner.Miner/getWinner"
	methodSolution  = "/miner.Miner/getSolution"
)

// MinerServer is the set of calls the miner service provides.
type MinerServer interface {
	GetTransactionID(context.Context, *Empty) (*IntReply, error)
	GetChallenge(context.Context, *TxRequest) (*ChallengeReply, error)
	GetTransactionStatus(context.Context, *TxRequest) (*StatusReply, error)
	SubmitChallenge(context.Context, *SubmitRequest) (*SubmitReply, error)
	GetWinner(context.Context, *TxRequest) (*WinnerReply, error)
	GetSolution(context.Context, *TxRequest) (*SolutionInfo, error)
}

// =============================================================================

// Service implements MinerServer on top of a coordinator.
type Service struct {
	Coord *coordinator.Coordinator
}

// GetTransactionID returns the lowest unsolved transaction.
func (s Service) GetTransactionID(ctx context.Context, _ *Empty) (*IntReply, error) {
	return &IntReply{Value: uint64(s.Coord.Assign())}, nil
}

// GetChallenge returns the difficulty of a transaction, -1 if unknown.
func (s Service) GetChallenge(ctx context.Context, req *TxRequest) (*ChallengeReply, error) {
	d, _ := s.Coord.Challenge(ledger.TxID(req.TxID))
	return &ChallengeReply{Challenge: d, Algorithm: s.Coord.Algorithm()}, nil
}

// GetTransactionStatus returns the state of a transaction.
func (s Service) GetTransactionStatus(ctx context.Context, req *TxRequest) (*StatusReply, error) {
	return &StatusReply{Status: s.Coord.Status(ledger.TxID(req.TxID)).Code()}, nil
}

// SubmitChallenge validates a client's candidate for a transaction.
func (s Service) SubmitChallenge(ctx context.Context, req *SubmitRequest) (*SubmitReply, error) {
	out := s.Coord.Submit(ledger.TxID(req.TxID), ledger.ClientID(req.ClientID), req.Solution)
	return &SubmitReply{Result: out.Code()}, nil
}

// GetWinner returns the winner of a transaction.
func (s Service) GetWinner(ctx context.Context, req *TxRequest) (*WinnerReply, error) {
	return &WinnerReply{Winner: s.Coord.WinnerOf(ledger.TxID(req.TxID)).Code()}, nil
}

// GetSolution returns the puzzle and solution of a transaction.
func (s Service) GetSolution(ctx context.Context, req *TxRequest) (*SolutionInfo, error) {
	si := s.Coord.SolutionOf(ledger.TxID(req.TxID))
	return &SolutionInfo{Status: si.Status.Code(), Solution: si.Solution, Challenge: si.DifficultyCode()}, nil
}

// =============================================================================

// serviceDesc describes the miner service to grpc.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*MinerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "getTransactionID",
			Handler: unary(methodAssign, func(srv MinerServer, ctx context.Context, req *Empty) (any, error) {
				return srv.GetTransactionID(ctx, req)
			}),
		},
		{
			MethodName: "getChallenge",
			Handler: unary(methodChallenge, func(srv MinerServer, ctx context.Context, req *TxRequest) (any, error) {
				return srv.GetChallenge(ctx, req)
			}),
		},
		{
			MethodName: "getTransactionStatus",
			Handler: unary(methodStatus, func(srv MinerServer, ctx context.Context, req *TxRequest) (any, error) {
				return srv.GetTransactionStatus(ctx, req)
			}),
		},
		{
			MethodName: "submitChallenge",
			Handler: unary(methodSubmit, func(srv MinerServer, ctx context.Context, req *SubmitRequest) (any, error) {
				return srv.SubmitChallenge(ctx, req)
			}),
		},
		{
			MethodName: "getWinner",
			Handler: unary(methodWinner, func(srv MinerServer, ctx context.Context, req *TxRequest) (any, error) {
				return srv.GetWinner(ctx, req)
			}),
		},
		{
			MethodName: "getSolution",
			Handler: unary(methodSolution, func(srv MinerServer, ctx context.Context, req *TxRequest) (any, error) {
				return srv.GetSolution(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "miner.proto",
}

// RegisterMinerServer registers the miner service with a grpc server.
func RegisterMinerServer(s grpc.ServiceRegistrar, srv MinerServer) {
	s.RegisterService(&serviceDesc, srv)
}

// unary adapts a typed call into a grpc method handler, decoding the request
// and running it through any interceptor.
func unary[Req any](fullMethod string, call func(srv MinerServer, ctx context.Context, req *Req) (any, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(MinerServer), ctx, in)
		}

		info := grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}

		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MinerServer), ctx, req.(*Req))
		}

		return interceptor(ctx, in, &info, handler)
	}
}
