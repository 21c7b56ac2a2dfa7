package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/ardanlabs/toyledger/app/services/node/handlers"
	"github.com/ardanlabs/toyledger/foundation/blockchain/cipher"
	"github.com/ardanlabs/toyledger/foundation/blockchain/digest"
	"github.com/ardanlabs/toyledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/toyledger/foundation/blockchain/state"
	"github.com/ardanlabs/toyledger/foundation/blockchain/storage/disk"
	"github.com/ardanlabs/toyledger/foundation/blockchain/storage/leveldb"
	"github.com/ardanlabs/toyledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/toyledger/foundation/events"
	"github.com/ardanlabs/toyledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
			CorsOrigins     []string      `conf:"default:*"`
		}
		Ledger struct {
			Storage      string `conf:"default:disk,help:memory|disk|leveldb"`
			DBPath       string `conf:"default:zblock/blocks"`
			Sync         bool   `conf:"default:false"`
			KeyFile      string `conf:"default:zblock/node.key.json"`
			HashStrategy string `conf:"default:sha256,help:sha256|blake3"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "toy ledger node",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Ledger Support

	// The node signs every transaction it accepts with its own key pair. The
	// pair is generated and saved on first start.
	keyPair, err := loadKeyPair(cfg.Ledger.KeyFile)
	if err != nil {
		return err
	}
	log.Infow("startup", "status", "key pair loaded", "public", keyPair.Public)

	hashStrategy, err := digest.Lookup(cfg.Ledger.HashStrategy)
	if err != nil {
		return err
	}

	storage, err := openStorage(cfg.Ledger.Storage, cfg.Ledger.DBPath, cfg.Ledger.Sync)
	if err != nil {
		return err
	}

	// The ledger packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)
	}

	// The state value represents the ledger node and manages the chain and
	// the pending block.
	st, err := state.New(state.Config{
		KeyPair:      keyPair,
		Storage:      storage,
		HashStrategy: hashStrategy,
		EvHandler:    ev,
	})
	if err != nil {
		storage.Close()
		return err
	}
	defer st.Shutdown()

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, st)

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

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown:    shutdown,
		Log:         log,
		State:       st,
		Evts:        evts,
		CorsOrigins: cfg.Web.CorsOrigins,
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
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}

// loadKeyPair reads the node key pair, generating and saving one when the
// file doesn't exist yet.
func loadKeyPair(path string) (cipher.KeyPair, error) {
	kp, err := cipher.LoadKeyPair(path)
	switch {
	case err == nil:
		return kp, nil

	case !errors.Is(err, fs.ErrNotExist):
		return cipher.KeyPair{}, fmt.Errorf("unable to load key pair for node: %w", err)
	}

	kp, err = cipher.GenerateKeyPair()
	if err != nil {
		return cipher.KeyPair{}, fmt.Errorf("generating key pair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return cipher.KeyPair{}, err
	}

	if err := cipher.SaveKeyPair(path, kp); err != nil {
		return cipher.KeyPair{}, err
	}

	return kp, nil
}

// openStorage constructs the configured block storage.
func openStorage(kind string, dbPath string, sync bool) (ledger.Storage, error) {
	switch kind {
	case "memory":
		return memory.New()

	case "disk":
		return disk.New(dbPath)

	case "leveldb":
		return leveldb.New(dbPath, sync)
	}

	return nil, fmt.Errorf("unknown storage %q", kind)
}
