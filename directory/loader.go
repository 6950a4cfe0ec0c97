package directory

import (
	"context"
	"time"

	"github.com/martory/go-tenant-session/internal/metrics"
	"github.com/martory/go-tenant-session/stores"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Result is the outcome of one directory load. Stores is never nil.
type Result struct {
	Stores []stores.Store
	// Source names the tier that produced Stores, "" when every tier failed
	Source string
	// Notice is the message of the first tier that was reached and rejected the call
	Notice string
}

// StoreCache receives stores loaded from the backend
type StoreCache interface {
	CacheStores(list []stores.Store) error
}

// Loader walks the tiers in order until one succeeds.
type Loader struct {
	tiers   []Strategy
	cache   StoreCache
	logger  zerolog.Logger
	metrics metrics.Recorder
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithCache persists fresh backend results
func WithCache(c StoreCache) LoaderOption {
	return func(l *Loader) { l.cache = c }
}

func WithLoaderLogger(logger zerolog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

func WithLoaderMetrics(m metrics.Recorder) LoaderOption {
	return func(l *Loader) { l.metrics = m }
}

func NewLoader(tiers []Strategy, opts ...LoaderOption) *Loader {
	l := &Loader{
		tiers:   tiers,
		logger:  log.Logger,
		metrics: metrics.Nop{},
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load never fails: when no tier succeeds the result holds an empty directory.
func (l *Loader) Load(ctx context.Context) Result {
	start := time.Now()
	res := Result{Stores: []stores.Store{}}

	for _, tier := range l.tiers {
		tr := tier.Load(ctx)
		l.metrics.RecordTierOutcome(tier.Name(), tr.Kind.String())
		logger := l.logger.With().Str("tier", tier.Name()).Logger()

		switch tr.Kind {
		case TierSuccess:
			if tr.Stores != nil {
				res.Stores = tr.Stores
			}
			res.Source = tier.Name()
			if tr.Fresh && l.cache != nil {
				if err := l.cache.CacheStores(res.Stores); err != nil {
					logger.Warn().Err(err).Msg("caching store directory failed")
				}
			}
			l.metrics.RecordDirectoryLoad(res.Source, len(res.Stores), time.Since(start))
			return res
		case TierUnreachable:
			logger.Debug().Err(tr.Err).Msg("store directory tier unreachable")
		case TierRejected:
			logger.Warn().Err(tr.Err).Str("server_message", tr.Message).Bool("notice", res.Notice == "").
				Msg("store directory tier rejected")
			if res.Notice == "" {
				res.Notice = tr.Message
				if res.Notice == "" {
					res.Notice = "failed to load stores"
				}
			}
		case TierEmpty:
			logger.Debug().Msg("store directory tier empty")
		}
	}

	l.metrics.RecordDirectoryLoad("none", 0, time.Since(start))
	return res
}
