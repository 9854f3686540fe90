// This program performs administrative tasks for the mining contest.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powcontest/app/tooling/admin/commands"
	"github.com/ardanlabs/powcontest/foundation/contest/client"
	"github.com/ardanlabs/powcontest/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("ADMIN")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		if !errors.Is(err, commands.ErrHelp) {
			log.Errorw("startup", "ERROR", err)
		}
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {
	cfg := struct {
		conf.Version
		Args    conf.Args
		URL     string        `conf:"default:http://localhost:8080"`
		Timeout time.Duration `conf:"default:10s"`
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "proof of work mining contest admin",
		},
	}

	const prefix = "ADMIN"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	return processCommands(ctx, cfg.Args, client.New(cfg.URL, nil))
}

// processCommands handles the execution of the commands specified on
// the command line.
func processCommands(ctx context.Context, args conf.Args, c *client.HTTP) error {
	switch args.Num(0) {
	case "txs":
		if err := commands.Transactions(ctx, args, c); err != nil {
			return fmt.Errorf("getting transactions: %w", err)
		}

	case "winners":
		if err := commands.Winners(ctx, args, c); err != nil {
			return fmt.Errorf("getting winners: %w", err)
		}

	default:
		fmt.Println("txs [open|solved]: list the transactions")
		fmt.Println("winners [client]:  count the transactions won by each client")
		return commands.ErrHelp
	}

	return nil
}
