// Package directory loads the stores the current user may switch into and keeps the
// in-memory store directory.
package directory

import (
	"context"
	"sync"

	"github.com/martory/go-tenant-session/internal/metrics"
	"github.com/martory/go-tenant-session/stores"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrStale is returned by Refresh when a newer load was issued while this one ran
	ErrStale = errors.New("directory load superseded by a newer one")
	// ErrClosed is returned by Refresh after Close
	ErrClosed = errors.New("directory closed")
)

// Directory holds the last applied load. Each Refresh takes a number from a monotonic
// counter; a result is applied only if no later Refresh has been issued since.
type Directory struct {
	loader  *Loader
	session SessionState
	logger  zerolog.Logger
	metrics metrics.Recorder

	mu     sync.RWMutex
	stores []stores.Store
	notice string
	source string
	loaded bool
	closed bool
	issued uint64
}

// Option configures a Directory
type Option func(*Directory)

func WithLogger(logger zerolog.Logger) Option {
	return func(d *Directory) { d.logger = logger }
}

func WithMetrics(m metrics.Recorder) Option {
	return func(d *Directory) { d.metrics = m }
}

func New(loader *Loader, sess SessionState, opts ...Option) *Directory {
	d := &Directory{
		loader:  loader,
		session: sess,
		logger:  log.Logger,
		metrics: metrics.Nop{},
		stores:  []stores.Store{},
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Refresh loads the directory and applies the result. It returns ErrStale when a later
// Refresh was issued before this one finished, and ErrClosed after Close; in both cases
// the directory is left untouched.
func (d *Directory) Refresh(ctx context.Context) (Result, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return Result{}, ErrClosed
	}
	d.issued++
	epoch := d.issued
	d.mu.Unlock()

	res := d.loader.Load(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return res, ErrClosed
	}
	if epoch < d.issued {
		d.metrics.RecordStaleDiscard()
		d.logger.Debug().Uint64("epoch", epoch).Uint64("latest", d.issued).Msg("discarding stale store directory")
		return res, ErrStale
	}
	d.stores = res.Stores
	d.notice = res.Notice
	d.source = res.Source
	d.loaded = true
	return res, nil
}

// Close stops later loads from being applied
func (d *Directory) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

// Stores returns a copy of the directory in backend order
func (d *Directory) Stores() []stores.Store {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]stores.Store, len(d.stores))
	copy(out, d.stores)
	return out
}

// Notice returns the user facing message of the last applied load, if any
func (d *Directory) Notice() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.notice
}

// Source returns the tier that produced the last applied load
func (d *Directory) Source() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.source
}

// Loaded reports whether any load has been applied
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Contains reports whether target is in the directory
func (d *Directory) Contains(target stores.Store) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return stores.Contains(d.stores, target)
}

// Current returns the directory entry matching the session's tenant, a synthesized
// minimal store when the session knows a tenant the directory lacks, or nil when no
// tenant is selected.
func (d *Directory) Current() *stores.Store {
	d.mu.RLock()
	list := d.stores
	d.mu.RUnlock()

	if id, ok := d.session.ActiveTenantID(); ok {
		if s, found := stores.FindByID(list, id); found {
			return &s
		}
	} else if sub, ok := d.session.ActiveTenant(); ok {
		if s, found := stores.FindBySubdomain(list, sub); found {
			return &s
		}
	}
	if s, ok := d.session.ActiveStore(); ok {
		return &s
	}
	return nil
}

// IsCurrent reports whether s is the current store
func (d *Directory) IsCurrent(s stores.Store) bool {
	cur := d.Current()
	if cur == nil {
		return false
	}
	return cur.Same(s)
}
