package storage

import (
	"context"
	"log/slog"

	"github.com/hpungsan/tally/internal/codec"
	"github.com/hpungsan/tally/internal/errors"
	"github.com/hpungsan/tally/internal/logging"
	"github.com/hpungsan/tally/internal/task"
)

// Repository loads and saves whole task lists through a LineStore.
type Repository struct {
	store   LineStore
	decoder codec.Decoder
	logger  *slog.Logger
}

// NewRepository creates a Repository. logger may be nil.
func NewRepository(store LineStore, decoder codec.Decoder, logger *slog.Logger) *Repository {
	return &Repository{
		store:   store,
		decoder: decoder,
		logger:  logging.Module(logger, "storage"),
	}
}

// Load reconstructs the list from the store. Any malformed line aborts
// the load with a format error; I/O failures are storage errors.
func (r *Repository) Load(ctx context.Context) ([]task.Task, error) {
	lines, err := r.store.ReadLines(ctx)
	if err != nil {
		return nil, errors.NewStorage("load", err)
	}
	tasks, err := r.decoder.DecodeAll(lines)
	if err != nil {
		r.logger.Error("load aborted", "error", err)
		return nil, err
	}
	r.logger.Debug("loaded tasks", "count", len(tasks))
	return tasks, nil
}

// Save rewrites the store with tasks in order.
func (r *Repository) Save(ctx context.Context, tasks []task.Task) error {
	if err := r.store.WriteLines(ctx, codec.EncodeAll(tasks)); err != nil {
		return errors.NewStorage("save", err)
	}
	r.logger.Debug("saved tasks", "count", len(tasks))
	return nil
}

// Close closes the underlying store.
func (r *Repository) Close() error {
	return r.store.Close()
}
