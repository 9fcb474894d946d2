package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/tally/internal/codec"
	"github.com/hpungsan/tally/internal/config"
	"github.com/hpungsan/tally/internal/interp"
	"github.com/hpungsan/tally/internal/logging"
	"github.com/hpungsan/tally/internal/storage"
	"github.com/hpungsan/tally/internal/tasklist"
)

// env is everything a command needs once the persisted list is loaded.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	repo   *storage.Repository
	list   *tasklist.List
	interp *interp.Interpreter
}

// openEnv loads config, opens the configured store and loads the list.
// A list that fails to load is never overwritten: the command fails instead.
func openEnv(c *cli.Context) (*env, error) {
	baseDir, err := resolveBaseDir(c.String("dir"))
	if err != nil {
		return nil, err
	}

	cwd, _ := os.Getwd()
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	logger := newLogger(cfg, c.App.ErrWriter)

	dataPath := cfg.DataPath(baseDir)
	store, err := storage.Open(storage.Backend(cfg.Backend), dataPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dataPath, err)
	}
	repo := storage.NewRepository(store, codec.Decoder{StrictDates: cfg.StrictDates()}, logger)

	tasks, err := repo.Load(c.Context)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("cannot load tasks from %s (fix or move the file and try again): %w", dataPath, err)
	}
	logger.Debug("tasks loaded", "path", dataPath, "backend", cfg.Backend, "count", len(tasks))

	list := tasklist.New(tasks...)
	return &env{
		cfg:    cfg,
		logger: logger,
		repo:   repo,
		list:   list,
		interp: interp.New(list, repo, interp.Options{
			StrictDates: cfg.StrictDates(),
			MaxTasks:    cfg.MaxTasks,
			Logger:      logger,
		}),
	}, nil
}

func (e *env) Close() error {
	return e.repo.Close()
}

// withEnv runs fn with a loaded env and closes it afterwards.
func withEnv(fn func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(c, e)
	}
}

// resolveBaseDir returns dir, or ~/.tally when dir is empty.
func resolveBaseDir(dir string) (string, error) {
	if dir != "" {
		return filepath.Abs(dir)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".tally"), nil
}

// newLogger builds the stderr logger tagged with a per-process session id.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}, w).
		With("session", newSessionID())
}

func newSessionID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}
