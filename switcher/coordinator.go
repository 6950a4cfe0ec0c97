// Package switcher moves the session between the stores a user can access.
package switcher

import (
	"context"
	"strings"
	"sync"

	"github.com/martory/go-tenant-session/directory"
	"github.com/martory/go-tenant-session/events"
	"github.com/martory/go-tenant-session/internal/errors"
	"github.com/martory/go-tenant-session/internal/metrics"
	"github.com/martory/go-tenant-session/stores"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State of the coordinator
type State int

const (
	Idle State = iota
	Switching
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Switching:
		return "switching"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Switch results, also used as metric labels
const (
	ResultSwitched = "switched"
	ResultNoop     = "noop"
	ResultDenied   = "denied"
	ResultFailed   = "failed"
)

// TenantSession is the part of the session the coordinator writes. *session.Session satisfies it.
type TenantSession interface {
	SetTenant(subdomain string, id int64) error
	ActiveTenant() (string, bool)
	ActiveTenantID() (int64, bool)
}

// Publisher delivers the change notification. *events.Bus satisfies it.
type Publisher interface {
	Publish(ev events.StoreChanged)
}

// Directory is used to check the target is accessible. *directory.Directory satisfies it.
type Directory interface {
	Contains(target stores.Store) bool
	Refresh(ctx context.Context) (directory.Result, error)
}

// Coordinator runs store switches: guard, optional access check, persist, publish.
// Concurrent switches are not serialized; the last persisted write wins.
type Coordinator struct {
	session TenantSession
	bus     Publisher
	dir     Directory
	logger  zerolog.Logger
	metrics metrics.Recorder

	mu       sync.Mutex
	state    State
	inFlight int
	lastErr  error
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithDirectory checks every target against dir before persisting it
func WithDirectory(dir Directory) Option {
	return func(c *Coordinator) { c.dir = dir }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

func WithMetrics(m metrics.Recorder) Option {
	return func(c *Coordinator) { c.metrics = m }
}

func New(sess TenantSession, bus Publisher, opts ...Option) *Coordinator {
	c := &Coordinator{
		session: sess,
		bus:     bus,
		logger:  log.Logger,
		metrics: metrics.Nop{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns the current state. Failed is kept until the next Switch or Reset.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the error of the last failed switch while the state is Failed
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Reset acknowledges a failure and returns to Idle
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight == 0 {
		c.state = Idle
		c.lastErr = nil
	}
}

// CanSwitchTo reports whether target is a valid switch: the current store is not.
func (c *Coordinator) CanSwitchTo(target stores.Store) bool {
	if target.ID <= 0 || strings.TrimSpace(target.Subdomain) == "" {
		return false
	}
	return !c.isCurrent(target)
}

// Switch makes target the active store. Switching to the current store does nothing and
// returns false. On success the StoreChanged event is published before any of then run.
func (c *Coordinator) Switch(ctx context.Context, target stores.Store, then ...func()) (bool, error) {
	if target.ID <= 0 || strings.TrimSpace(target.Subdomain) == "" {
		err := errors.Wrapf(errors.ErrInvalidRequest, "[Coordinator.Switch] store %q/%d", target.Subdomain, target.ID)
		c.metrics.RecordSwitch(ResultDenied)
		return false, err
	}
	if c.isCurrent(target) {
		c.metrics.RecordSwitch(ResultNoop)
		c.logger.Debug().Int64("store_id", target.ID).Msg("switch to current store ignored")
		return false, nil
	}

	c.begin()
	logger := c.logger.With().Int64("store_id", target.ID).Str("subdomain", target.Subdomain).Logger()

	if c.dir != nil && !c.accessible(ctx, target, logger) {
		err := errors.Wrapf(errors.ErrStoreNotAccessible, "[Coordinator.Switch] %s", target.Subdomain)
		c.finish(err)
		c.metrics.RecordSwitch(ResultDenied)
		return false, err
	}

	if err := c.session.SetTenant(target.Subdomain, target.ID); err != nil {
		logger.Error().Err(err).Msg("persisting active store failed")
		err = errors.Wrapf(errors.ErrSwitchFailed, "[Coordinator.Switch] persist %s: %v", target.Subdomain, err)
		c.finish(err)
		c.metrics.RecordSwitch(ResultFailed)
		return false, err
	}

	c.bus.Publish(events.StoreChanged{Store: target})
	c.finish(nil)
	c.metrics.RecordSwitch(ResultSwitched)
	logger.Info().Msg("switched store")

	for _, fn := range then {
		if fn != nil {
			fn()
		}
	}
	return true, nil
}

// UserMessage returns the short text to show for a Switch error
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errors.ErrStoreNotAccessible):
		return "you do not have access to this store"
	case errors.Is(err, errors.ErrInvalidRequest):
		return "invalid store"
	}
	return errors.ErrSwitchFailed.Error()
}

func (c *Coordinator) isCurrent(target stores.Store) bool {
	if id, ok := c.session.ActiveTenantID(); ok {
		return id == target.ID
	}
	if sub, ok := c.session.ActiveTenant(); ok {
		return strings.EqualFold(sub, target.Subdomain)
	}
	return false
}

// accessible checks the directory, refreshing it once when the target is missing
func (c *Coordinator) accessible(ctx context.Context, target stores.Store, logger zerolog.Logger) bool {
	if c.dir.Contains(target) {
		return true
	}
	logger.Debug().Msg("target missing from store directory, refreshing")
	if _, err := c.dir.Refresh(ctx); err != nil && !errors.Is(err, directory.ErrStale) {
		logger.Warn().Err(err).Msg("store directory refresh failed")
	}
	return c.dir.Contains(target)
}

func (c *Coordinator) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight++
	c.state = Switching
	c.lastErr = nil
}

func (c *Coordinator) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--
	if err != nil {
		c.lastErr = err
	}
	if c.inFlight > 0 {
		return
	}
	if c.lastErr != nil {
		c.state = Failed
	} else {
		c.state = Idle
	}
}
