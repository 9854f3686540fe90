// Package cmd contains the miner app.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/powcontest/foundation/contest/client"
	"github.com/ardanlabs/powcontest/foundation/contest/rpc"
	"github.com/ardanlabs/powcontest/foundation/contest/session"
	"github.com/spf13/cobra"
)

var (
	transport string
	url       string
	rpcHost   string
	clientID  uint64
	timeout   time.Duration
)

// Set of supported transports.
const (
	transportHTTP = "http"
	transportGRPC = "grpc"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&transport, "transport", "t", transportHTTP, "Transport to the coordinator: http or grpc.")
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the coordinator's web api.")
	rootCmd.PersistentFlags().StringVarP(&rpcHost, "rpc", "r", "localhost:50052", "Host of the coordinator's rpc api.")
	rootCmd.PersistentFlags().Uint64VarP(&clientID, "client-id", "c", 1, "Id this client competes under.")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Deadline for a single call to the coordinator.")
}

var rootCmd = &cobra.Command{
	Use:          "miner",
	Short:        "Compete in the proof of work mining contest",
	SilenceUsage: true,
}

// Execute runs the command selected on the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// =============================================================================

// connect constructs the coordinator client for the selected transport. The
// returned function releases the connection.
func connect() (session.Client, func(), error) {
	switch transport {
	case transportHTTP:
		return client.New(url, nil), func() {}, nil

	case transportGRPC:
		c, err := rpc.Dial(rpcHost)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { c.Close() }, nil
	}

	return nil, nil, fmt.Errorf("transport %q not supported", transport)
}
