// Package store provides Collection, a file-backed repository for one
// homogeneous collection of records kept as a single XML document.
//
// Every call re-reads the file; nothing is cached between calls. Writes
// replace the whole document atomically (temp file + rename), and a
// per-collection mutex serializes load-mutate-save sequences so that two
// concurrent inserts cannot overwrite each other.
package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/journal/internal/platform/markup"
)

// Operation names reported to an Observer.
const (
	OpLoad       = "load"
	OpSave       = "save"
	OpUpdate     = "update"
	OpInitialize = "initialize"
)

// Schema names the root and item elements of a collection document.
type Schema struct {
	Collection string
	Item       string
}

// Observer receives the outcome of every store operation.
type Observer interface {
	ObserveStoreOp(collection, op string, elapsed time.Duration, err error)
}

// Option configures a Collection.
type Option func(*options)

type options struct {
	observer Observer
	logger   zerolog.Logger
}

// WithObserver reports each operation to o.
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(opts *options) { opts.logger = l }
}

// Collection is the store for one collection file. The zero value is not
// usable; construct with New. A Collection is safe for concurrent use.
type Collection[T any] struct {
	path   string
	schema Schema
	opts   options

	mu sync.Mutex
}

// New returns a Collection backed by the file at path.
func New[T any](path string, schema Schema, opt ...Option) *Collection[T] {
	o := options{logger: zerolog.Nop()}
	for _, fn := range opt {
		fn(&o)
	}
	return &Collection[T]{path: path, schema: schema, opts: o}
}

// Path returns the backing file path.
func (c *Collection[T]) Path() string { return c.path }

// Schema returns the collection and item tags.
func (c *Collection[T]) Schema() Schema { return c.schema }

// Load reads and decodes the whole collection.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	items, err := c.load(ctx)
	c.observe(OpLoad, start, err)
	return items, err
}

// Save replaces the collection with items.
func (c *Collection[T]) Save(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	err := c.save(ctx, items)
	c.observe(OpSave, start, err)
	return err
}

// Update loads the collection, passes it to fn and saves what fn returns,
// all while holding the collection lock. If fn fails the file is left
// untouched and fn's error is returned as is.
func (c *Collection[T]) Update(ctx context.Context, fn func([]T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	err := c.update(ctx, fn)
	c.observe(OpUpdate, start, err)
	return err
}

func (c *Collection[T]) update(ctx context.Context, fn func([]T) ([]T, error)) error {
	items, err := c.load(ctx)
	if err != nil {
		return err
	}
	next, err := fn(items)
	if err != nil {
		return err
	}
	return c.save(ctx, next)
}

// Initialize creates the backing file holding seed when it does not exist
// yet. It is a no-op for an existing file, so it is safe on every start.
func (c *Collection[T]) Initialize(seed []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	err := c.initialize(seed)
	c.observe(OpInitialize, start, err)
	return err
}

func (c *Collection[T]) initialize(seed []T) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return &WriteError{Path: c.path, Err: err}
	}
	_, err := os.Stat(c.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return &ReadError{Path: c.path, Err: err}
	}

	if seed == nil {
		seed = []T{}
	}
	if err := c.save(context.Background(), seed); err != nil {
		return err
	}
	c.opts.logger.Info().
		Str("collection", c.schema.Collection).
		Str("path", c.path).
		Int("items", len(seed)).
		Msg("collection file created")
	return nil
}

func (c *Collection[T]) load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, &ReadError{Path: c.path, Err: err}
	}
	items, err := markup.DecodeCollection[T](data, c.schema.Collection, c.schema.Item)
	if err != nil {
		return nil, &ReadError{Path: c.path, Err: err}
	}
	c.opts.logger.Debug().
		Str("collection", c.schema.Collection).
		Int("items", len(items)).
		Int("bytes", len(data)).
		Msg("collection loaded")
	return items, nil
}

func (c *Collection[T]) save(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := markup.EncodeCollection(items, c.schema.Collection, c.schema.Item)
	if err != nil {
		return &WriteError{Path: c.path, Err: err}
	}
	if err := writeFileAtomic(c.path, data, 0o644); err != nil {
		return &WriteError{Path: c.path, Err: err}
	}
	c.opts.logger.Debug().
		Str("collection", c.schema.Collection).
		Int("items", len(items)).
		Int("bytes", len(data)).
		Msg("collection saved")
	return nil
}

func (c *Collection[T]) observe(op string, start time.Time, err error) {
	if c.opts.observer == nil {
		return
	}
	c.opts.observer.ObserveStoreOp(c.schema.Collection, op, time.Since(start), err)
}
