package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/powcontest/app/services/coordinator/handlers"
	"github.com/ardanlabs/powcontest/foundation/contest/coordinator"
	"github.com/ardanlabs/powcontest/foundation/contest/ledger"
	"github.com/ardanlabs/powcontest/foundation/contest/pow"
	"github.com/ardanlabs/powcontest/foundation/contest/rpc"
	"github.com/ardanlabs/powcontest/foundation/events"
	"github.com/ardanlabs/powcontest/foundation/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

// config is all the configuration for the application and the default values.
type config struct {
	conf.Version
	Web struct {
		ReadTimeout     time.Duration `conf:"default:5s"`
		WriteTimeout    time.Duration `conf:"default:10s"`
		IdleTimeout     time.Duration `conf:"default:120s"`
		ShutdownTimeout time.Duration `conf:"default:20s"`
		DebugHost       string        `conf:"default:0.0.0.0:7080"`
		PublicHost      string        `conf:"default:0.0.0.0:8080"`
		RPCHost         string        `conf:"default:0.0.0.0:50052"`
	}
	Contest struct {
		GenesisDifficulty int    `conf:"default:0"`
		MinDifficulty     int    `conf:"default:1"`
		MaxDifficulty     int    `conf:"default:4"`
		Hash              string `conf:"default:sha1"`
	}
	Log struct {
		File       string
		MaxSizeMB  int `conf:"default:100"`
		MaxBackups int `conf:"default:3"`
		MaxAgeDays int `conf:"default:28"`
	}
}

func main() {

	// =========================================================================
	// Configuration

	cfg := config{
		Version: conf.Version{
			Build: build,
			Desc:  "proof of work mining contest coordinator",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "COORD"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return
		}
		fmt.Println("parsing config:", err)
		os.Exit(1)
	}

	// Construct the application logger. The log file is optional.
	log, err := logger.NewRotating(prefix, logger.Rotation{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log, cfg); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger, cfg config) error {

	// =========================================================================
	// App Starting

	fmt.Println(`  ____   _____        __   ____ ___  _   _ _____ _____ ____ _____ `)
	fmt.Println(` |  _ \ / _ \ \      / /  / ___/ _ \| \ | |_   _| ____/ ___|_   _|`)
	fmt.Println(` | |_) | | | \ \ /\ / /  | |  | | | |  \| | | | |  _| \___ \ | |  `)
	fmt.Println(` |  __/| |_| |\ V  V /   | |__| |_| | |\  | | | | |___ ___) || |  `)
	fmt.Println(` |_|    \___/  \_/\_/     \____\___/|_| \_| |_| |_____|____/ |_|  `)
	fmt.Print("\n")

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Contest Support

	// The contest packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Publish(s)
	}

	oracle, err := pow.New(cfg.Contest.Hash)
	if err != nil {
		return fmt.Errorf("selecting hash: %w", err)
	}

	// The ledger owns every transaction and its puzzle.
	ldgr, err := ledger.New(ledger.Config{
		Oracle:        oracle,
		MinDifficulty: cfg.Contest.MinDifficulty,
		MaxDifficulty: cfg.Contest.MaxDifficulty,
		EvHandler:     ledger.EventHandler(ev),
	})
	if err != nil {
		return fmt.Errorf("constructing ledger: %w", err)
	}

	// The coordinator provides the contest api on top of the ledger and
	// creates transaction 0.
	coord, err := coordinator.New(coordinator.Config{
		Ledger:            ldgr,
		GenesisDifficulty: cfg.Contest.GenesisDifficulty,
		Registerer:        prometheus.DefaultRegisterer,
		EvHandler:         coordinator.EventHandler(ev),
	})
	if err != nil {
		return fmt.Errorf("constructing coordinator: %w", err)
	}

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, coord, prometheus.DefaultGatherer)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listeners. Use a
	// buffered channel so the goroutines can exit if we don't collect them.
	serverErrors := make(chan error, 2)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		Coord:    coord,
		Evts:     evts,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Start RPC Service

	log.Infow("startup", "status", "initializing rpc support")

	rpcServer := rpc.NewServer(log, coord)

	// Start the service listening for rpc calls.
	go func() {
		serverErrors <- rpcServer.ListenAndServe(cfg.Web.RPCHost)
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Close()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Both listeners are asked to shed load. A failure to stop one
		// doesn't stop us from trying the other.
		var errs error

		log.Infow("shutdown", "status", "shutdown rpc started")
		if err := rpcServer.Shutdown(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("could not stop rpc service gracefully: %w", err))
		}

		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			errs = multierr.Append(errs, fmt.Errorf("could not stop public service gracefully: %w", err))
		}

		return errs
	}
}
