package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abhisek/ipquiz/internal/catalog"
	"github.com/abhisek/ipquiz/internal/config"
	"github.com/abhisek/ipquiz/internal/logging"
	"github.com/abhisek/ipquiz/internal/store"
)

// runtime is what every command works against: resolved config, a logger,
// the store chain and the catalog loaded from it.
type runtime struct {
	cfg     config.Config
	log     *logrus.Logger
	repo    *store.Chain
	catalog *catalog.Catalog
	gate    *catalog.Gate
	closers []func() error
}

// resolveConfig reads the environment, then applies the persistent flags.
// Precedence is flag > env > default.
func resolveConfig(cmd *cobra.Command) config.Config {
	cfg := config.Load()
	if b, _ := cmd.Flags().GetString("backend"); b != "" {
		cfg.Store.Backend = b
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.Store.DBPath = p
		cfg.Store.FilePath = p
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.LogLevel = l
	}
	return cfg
}

// openRuntime builds the runtime. With logToFile the logger writes to the
// log file instead of stderr, for the terminal UI.
func openRuntime(cmd *cobra.Command, logToFile bool) (*runtime, error) {
	cfg := resolveConfig(cmd)
	rt := &runtime{cfg: cfg}

	if err := rt.openLogger(logToFile); err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.Store.Backend == store.BackendSQLite && cfg.Store.DBPath != "" {
		if err := store.EnsureDir(cfg.Store.DBPath); err != nil {
			rt.Close()
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	}
	repo, err := store.OpenRepo(ctx, cfg.Store, rt.log)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.repo = repo
	rt.closers = append(rt.closers, repo.Close)

	rt.catalog = catalog.New(repo, rt.log)
	if err := rt.catalog.Load(ctx, repo); err != nil {
		rt.Close()
		return nil, fmt.Errorf("load bank: %w", err)
	}
	rt.gate = catalog.NewGate(repo)
	return rt, nil
}

func (rt *runtime) openLogger(toFile bool) error {
	cfg := rt.cfg
	if !toFile {
		log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		rt.log = log
		return nil
	}

	path := cfg.LogFile
	if path == "" {
		var err error
		if path, err = config.DefaultLogFile(); err != nil {
			// No writable state dir: run without logs rather than corrupt the screen.
			rt.log = logging.Discard()
			return nil
		}
	}
	log, closeFn, err := logging.OpenFile(path, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	rt.log = log
	rt.closers = append(rt.closers, closeFn)
	return nil
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil && rt.log != nil {
			rt.log.WithError(err).Debug("Close failed")
		}
	}
	rt.closers = nil
}

// events returns the backend's event repo or an error naming the backend
// when it keeps no events.
func (rt *runtime) events() (store.EventRepo, error) {
	ev := rt.repo.Events()
	if ev == nil {
		return nil, fmt.Errorf("backend %q does not record events; use sqlite or postgres", rt.cfg.Store.Backend)
	}
	return ev, nil
}

// requirePIN checks the --pin flag against the gate.
func (rt *runtime) requirePIN(cmd *cobra.Command) error {
	pin, _ := cmd.Flags().GetString("pin")
	if pin == "" {
		pin = envPIN()
	}
	if pin == "" {
		return errors.New("admin command: pass --pin or set IPQUIZ_PIN")
	}
	if err := rt.gate.Verify(cmd.Context(), pin); err != nil {
		if errors.Is(err, catalog.ErrWrongPIN) {
			return fmt.Errorf("admin command: %w", err)
		}
		return err
	}
	return nil
}

// reportMutation turns a catalog error into the command result. A change
// kept in memory but not saved is an error for a one-shot CLI.
func reportMutation(w io.Writer, err error, ok string) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(w, ok)
	return nil
}

func envPIN() string {
	return os.Getenv("IPQUIZ_PIN")
}

func addPINFlag(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().String("pin", "", "Admin PIN (or IPQUIZ_PIN)")
	}
}
