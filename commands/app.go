package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"vetclinic/config"
	"vetclinic/database"
	sqlsession "vetclinic/database/repository/session"
	"vetclinic/middleware"
	"vetclinic/services/api"
	"vetclinic/services/batch"
	"vetclinic/services/booking"
	"vetclinic/services/enrichment"
	"vetclinic/services/events"
	"vetclinic/services/reminder"
	"vetclinic/services/session"
	"vetclinic/utils"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// App holds the collaborators a command needs. It is built once per invocation.
type App struct {
	Cfg       config.Config
	Logger    *zap.Logger
	Store     session.Store
	API       *api.Client
	Batch     *batch.Engine
	Events    events.Publisher
	Reminders *reminder.Scheduler

	out     io.Writer
	probes  []utils.Probe
	mu      sync.Mutex
	closers []func() error
	closed  bool
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger, out io.Writer) (*App, error) {
	a := &App{Cfg: cfg, Logger: logger, out: out}

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Tokens:  middleware.StaticToken(cfg.APIToken),
		Limiter: middleware.NewLimiter(cfg.APIRatePerSec, cfg.APIBurst),
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	a.API = client
	a.probes = append(a.probes, utils.Probe{Name: "api", Check: client.Ping})

	if err := a.openStore(ctx); err != nil {
		a.Close()
		return nil, err
	}

	policy, err := batch.ParsePolicy(cfg.BatchOnPartialFailure)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Batch = batch.New(batch.Config{Workers: cfg.BatchWorkers, Policy: policy, Logger: logger})

	a.Events = events.NopPublisher{}
	if cfg.KafkaBrokers != "" {
		p, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Events = p
		a.addCloser(p.Close)
		brokers := events.SplitBrokers(cfg.KafkaBrokers)
		a.probes = append(a.probes, utils.Probe{Name: "kafka", Check: func(ctx context.Context) error {
			conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
			if err != nil {
				return err
			}
			return conn.Close()
		}})
	}

	if cfg.RemindersEnabled {
		a.Reminders = reminder.NewScheduler(reminder.RedisOpt(cfg), logger)
		a.addCloser(a.Reminders.Close)
	}
	return a, nil
}

// namespace separates session state per user: an explicit SESSION_NAMESPACE wins, otherwise the
// token's subject is used when it has one.
func namespace(cfg config.Config) string {
	if cfg.SessionNamespace != "" && cfg.SessionNamespace != "default" {
		return cfg.SessionNamespace
	}
	if sub := middleware.TokenSubject(cfg.APIToken); sub != "" {
		return sub
	}
	return "default"
}

func (a *App) openStore(ctx context.Context) error {
	ns := namespace(a.Cfg)
	switch a.Cfg.SessionBackend {
	case "memory":
		a.Store = session.NewMemoryStore()
	case "redis":
		client, err := utils.SessionCacheClient(ctx, a.Cfg)
		if err != nil {
			return err
		}
		a.addCloser(client.Close)
		a.Store = session.NewRedisStore(client, ns, a.Cfg.SessionTTL)
		a.probes = append(a.probes, utils.Probe{Name: "redis", Check: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}})
	default:
		db, err := database.Open(a.Cfg.SessionDBPath)
		if err != nil {
			return err
		}
		a.addCloser(db.Close)
		store := sqlsession.NewSQLStore(db, ns)
		if a.Cfg.SessionTTL > 0 {
			if n, err := store.PurgeOlderThan(ctx, time.Now().Add(-a.Cfg.SessionTTL)); err != nil {
				a.Logger.Warn("failed to purge stale session slots", zap.Error(err))
			} else if n > 0 {
				a.Logger.Debug("purged stale session slots", zap.Int64("count", n))
			}
		}
		a.Store = store
		a.probes = append(a.probes, utils.Probe{Name: "sqlite", Check: db.SQL.PingContext})
	}
	return nil
}

// Deps wires a booking screen to this invocation.
func (a *App) Deps() booking.Deps {
	d := booking.Deps{
		Store:     a.Store,
		API:       a.API,
		Batch:     a.Batch,
		Events:    a.Events,
		Navigator: newCLINavigator(a.out),
		Logger:    a.Logger,
	}
	if a.Reminders != nil {
		d.Reminders = a.Reminders
	}
	return d
}

// Geocoder returns the clinic geocoder, or nil when no provider is configured. The Redis cache
// is attached in the background; lookups wait for it through the deferred geocoder.
func (a *App) Geocoder(ctx context.Context) enrichment.Geocoder {
	if a.Cfg.GoogleAPIKey == "" {
		return nil
	}
	google := enrichment.NewGoogleGeocoder(a.Cfg.GoogleAPIKey)
	deferred := enrichment.NewDeferredGeocoder()
	go func() {
		client, err := utils.GeocodeCacheClient(ctx, a.Cfg)
		if err != nil {
			a.Logger.Debug("geocode cache unavailable", zap.Error(err))
			deferred.Provide(google)
			return
		}
		a.addCloser(client.Close)
		deferred.Provide(enrichment.NewCachedGeocoder(google, client, a.Cfg.GeocodeCacheTTL, a.Logger))
	}()
	return deferred
}

// Recommender returns the configured recommendation source.
func (a *App) Recommender(ctx context.Context) (enrichment.Recommender, error) {
	if a.Cfg.Recommender != "gemini" {
		return enrichment.NewAPIRecommender(a.API), nil
	}
	gc, err := enrichment.NewGeminiClient(ctx, a.Cfg.GeminiAPIKey, a.Cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	a.addCloser(gc.Close)
	return enrichment.NewGeminiRecommender(gc), nil
}

// addCloser registers fn to run on Close. After Close, fn runs immediately.
func (a *App) addCloser(fn func() error) {
	a.mu.Lock()
	if !a.closed {
		a.closers = append(a.closers, fn)
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()
	if err := fn(); err != nil {
		a.Logger.Debug("late release failed", zap.Error(err))
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.closed = true
	a.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to release resources: %w", errors.Join(errs...))
	}
	return nil
}
