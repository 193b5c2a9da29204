// Package app is the composition root: it turns a config into a ready
// router with every service wired.
package app

import (
	"context"

	firebase "firebase.google.com/go"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"carenow-backend/internal/auth"
	"carenow-backend/internal/availability"
	"carenow-backend/internal/booking"
	"carenow-backend/internal/bookingflow"
	"carenow-backend/internal/catalog"
	"carenow-backend/internal/config"
	"carenow-backend/internal/flowsession"
	"carenow-backend/internal/handlers"
	"carenow-backend/internal/metrics"
	"carenow-backend/internal/models"
	"carenow-backend/internal/notification"
	"carenow-backend/internal/partner"
	"carenow-backend/internal/payment"
	"carenow-backend/internal/realtime"
	"carenow-backend/internal/repository"
	"carenow-backend/internal/repository/gormrepo"
	"carenow-backend/internal/repository/memory"
	"carenow-backend/internal/review"
	"carenow-backend/internal/routes"
	"carenow-backend/pkg/clock"
	"carenow-backend/pkg/errs"
)

type App struct {
	Router  *gin.Engine
	Metrics *metrics.Metrics
	Repos   repository.Repositories

	closers []func() error
	log     zerolog.Logger
}

type options struct {
	clock clock.Clock
}

type Option func(*options)

// WithClock replaces the wall clock, for tests.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

func New(ctx context.Context, cfg config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	o := options{clock: clock.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Metrics: metrics.New(), log: log}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	// 1. Storage
	repos, err := a.openStore(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	a.Repos = repos

	// 2. Firebase (optional)
	fbApp, err := config.NewFirebaseApp(ctx, cfg.Firebase)
	if err != nil {
		return nil, err
	}
	messenger, identity, tracking, err := a.firebaseServices(ctx, fbApp, cfg, o.clock)
	if err != nil {
		return nil, err
	}

	// 3. Services
	catalogSvc := catalog.NewService(repos.Services, cfg.Booking.CatalogTTL, a.Metrics, log)
	availabilitySvc := availability.NewService(repos.Partners, repos.Bookings, cfg.Booking.SearchRadiusKM, log)
	notificationSvc := notification.NewService(repos.Notifications, repos.Users, messenger, a.Metrics, log)
	bookingSvc := booking.NewService(booking.Deps{
		Repos:    repos,
		Schedule: availabilitySvc,
		Tracker:  tracking,
		Notifier: notificationSvc,
		Payments: payment.NewGateway(cfg.Midtrans),
		Clock:    o.clock,
		Metrics:  a.Metrics,
		Log:      log,
	})
	reviewSvc := review.NewService(repos, notificationSvc, o.clock, log)
	partnerSvc := partner.NewService(repos, notificationSvc, log)
	authSvc := auth.NewService(auth.Deps{
		Repos:    repos,
		Identity: identity,
		Devices:  notificationSvc,
		Notifier: notificationSvc,
		Secret:   cfg.JWT.Secret,
		TokenTTL: cfg.JWT.Duration,
		Log:      log,
	})
	bridge := realtime.NewBridge(tracking, a.Metrics, log)
	sessions := flowsession.NewManager(cfg.Booking.FlowSessionTTL, func(actor models.Actor) *bookingflow.Machine {
		return bookingflow.NewMachine(actor, catalogSvc, availabilitySvc, bookingSvc,
			bookingflow.WithClock(o.clock),
			bookingflow.WithLogger(log),
		)
	}, log)

	// 4. HTTP
	gin.SetMode(cfg.Server.GinMode)
	a.Router = gin.New()
	routes.SetupRoutes(a.Router, cfg, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authSvc),
		Catalog:      handlers.NewCatalogHandler(catalogSvc),
		Partner:      handlers.NewPartnerHandler(partnerSvc, availabilitySvc, reviewSvc, bookingSvc),
		BookingFlow:  handlers.NewBookingFlowHandler(sessions),
		Booking:      handlers.NewBookingHandler(bookingSvc, bridge),
		Payment:      handlers.NewPaymentHandler(bookingSvc, log),
		Review:       handlers.NewReviewHandler(reviewSvc),
		Notification: handlers.NewNotificationHandler(notificationSvc),
		Admin:        handlers.NewAdminHandler(bookingSvc, catalogSvc, partnerSvc, notificationSvc),
		Finance:      handlers.NewFinanceHandler(bookingSvc),
	}, a.Metrics, log)

	ok = true
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg config.DBConfig) (repository.Repositories, error) {
	switch cfg.Driver {
	case "memory":
		store := memory.NewStore()
		if cfg.Seed {
			if err := store.Seed(ctx); err != nil {
				return repository.Repositories{}, errs.Wrap(err, "seed memory store")
			}
			a.log.Info().Msg("memory store seeded with demo catalog")
		}
		a.log.Warn().Msg("using in-memory store, data is lost on restart")
		return store.Repositories(), nil

	case "mysql", "":
		db, err := config.ConnectDB(cfg, a.log)
		if err != nil {
			return repository.Repositories{}, err
		}
		sqlDB, err := db.DB()
		if err == nil {
			a.closers = append(a.closers, sqlDB.Close)
		}
		return gormrepo.New(db), nil

	default:
		return repository.Repositories{}, errs.Newf("unknown DB_DRIVER %q", cfg.Driver)
	}
}

// firebaseServices returns the Firebase-backed implementations, or the
// in-process ones when Firebase is not configured.
func (a *App) firebaseServices(ctx context.Context, fbApp *firebase.App, cfg config.Config, c clock.Clock) (notification.Messenger, auth.IdentityProvider, realtime.Store, error) {
	if fbApp == nil {
		a.log.Warn().Msg("firebase not configured: push is logged only, tracking runs in process")
		return notification.NewLogMessenger(a.log), auth.DisabledIdentity{}, realtime.NewHub(c, cfg.Booking.TrackingQueueSize), nil
	}

	messenger, err := notification.NewFCMMessenger(ctx, fbApp)
	if err != nil {
		return nil, nil, nil, err
	}
	identity, err := auth.NewFirebaseIdentity(ctx, fbApp)
	if err != nil {
		return nil, nil, nil, err
	}
	fs, err := fbApp.Firestore(ctx)
	if err != nil {
		return nil, nil, nil, errs.Wrap(err, "init firestore client")
	}
	a.closers = append(a.closers, fs.Close)
	return messenger, identity, realtime.NewFirestoreStore(fs, cfg.Firebase.TrackingCollection, c), nil
}

// Close releases database and Firestore connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}
