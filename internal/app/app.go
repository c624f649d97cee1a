package app

import (
	"context"
	"fmt"
	"time"

	"github.com/aquamarinepk/aqm"
	aqmevents "github.com/aquamarinepk/aqm/events"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/meetupclub/meetup/internal/auth"
	"github.com/meetupclub/meetup/internal/bookings"
	"github.com/meetupclub/meetup/internal/events"
	"github.com/meetupclub/meetup/internal/menu"
	appmongo "github.com/meetupclub/meetup/internal/mongo"
	"github.com/meetupclub/meetup/internal/orders"
	"github.com/meetupclub/meetup/internal/staff"
	"github.com/meetupclub/meetup/internal/stream"
)

const (
	defaultSessionTTL = 12 * time.Hour

	// Delivery code attempts refill slowly so a courier typo is cheap but
	// a brute force of the 4-digit space is not.
	otpRefillInterval = 10 * time.Second
	otpBurst          = 5
)

// App wires every component of the service together and exposes the
// combined HTTP surface plus the start and stop lifecycle.
type App struct {
	config *aqm.Config
	logger aqm.Logger

	conn       *appmongo.Conn
	orderRepo  *appmongo.OrderRepo
	menuRepo   *appmongo.MenuItemRepo
	bookRepo   *appmongo.BookingRepo
	staffRepo  *appmongo.StaffRepo
	userRepo   *appmongo.UserRepo
	cache      *orders.OrderStateCache
	hub        *stream.Hub
	subscriber *events.OrderEventSubscriber
	sessions   *auth.SessionStore

	orderHandler *orders.Handler
	menuHandler  *menu.Handler
	bookHandler  *bookings.Handler
	staffHandler *staff.Handler
	authHandler  *auth.Handler
	sseHandler   *stream.SSEHandler

	seedCancel context.CancelFunc
}

type Deps struct {
	Publisher  aqmevents.Publisher
	Subscriber aqmevents.Subscriber
}

func New(deps Deps, config *aqm.Config, logger aqm.Logger) (*App, error) {
	secretStr, _ := config.GetString("auth.jwt.secret")
	if secretStr == "" {
		return nil, fmt.Errorf("auth.jwt.secret is required")
	}

	conn := appmongo.NewConn(config, logger)
	orderRepo := appmongo.NewOrderRepo(conn, logger)
	menuRepo := appmongo.NewMenuItemRepo(conn, logger)
	bookRepo := appmongo.NewBookingRepo(conn, logger)
	staffRepo := appmongo.NewStaffRepo(conn, logger)
	userRepo := appmongo.NewUserRepo(conn, logger)

	hub := stream.NewHub(logger)
	cache := orders.NewOrderStateCache(orderRepo, logger)
	cache.SetBroadcaster(hub)

	limiter := orders.NewOTPLimiter(rate.Every(otpRefillInterval), otpBurst)

	sessionTTL := defaultSessionTTL
	if ttlStr, _ := config.GetString("auth.session.ttl"); ttlStr != "" {
		if parsed, err := time.ParseDuration(ttlStr); err == nil {
			sessionTTL = parsed
		}
	}
	sessions := auth.NewSessionStore(sessionTTL)

	orderHandler := orders.NewHandler(orders.HandlerDeps{
		Repo:       orderRepo,
		Cache:      cache,
		Publisher:  deps.Publisher,
		OTPLimiter: limiter,
	}, config, logger)

	authHandler := auth.NewHandler(auth.HandlerDeps{
		Users:    userRepo,
		Sessions: sessions,
		Secret:   []byte(secretStr),
	}, config, logger)

	app := &App{
		config:       config,
		logger:       logger,
		conn:         conn,
		orderRepo:    orderRepo,
		menuRepo:     menuRepo,
		bookRepo:     bookRepo,
		staffRepo:    staffRepo,
		userRepo:     userRepo,
		cache:        cache,
		hub:          hub,
		sessions:     sessions,
		subscriber:   events.NewOrderEventSubscriber(deps.Subscriber, cache, logger),
		orderHandler: orderHandler,
		menuHandler:  menu.NewHandler(menuRepo, config, logger),
		bookHandler:  bookings.NewHandler(bookRepo, config, logger),
		staffHandler: staff.NewHandler(staffRepo, config, logger),
		authHandler:  authHandler,
		sseHandler:   stream.NewSSEHandler(hub, logger),
	}

	return app, nil
}

// RegisterRoutes mounts the public storefront surface and the
// session-gated admin surface.
func (a *App) RegisterRoutes(r chi.Router) {
	a.orderHandler.RegisterPublicRoutes(r)
	a.menuHandler.RegisterPublicRoutes(r)
	a.bookHandler.RegisterPublicRoutes(r)
	a.authHandler.RegisterRoutes(r)

	r.Get("/track/{orderNumber}/events", a.sseHandler.TrackOrderEvents)

	r.Route("/admin", func(r chi.Router) {
		r.Use(a.authHandler.SessionMiddleware)

		a.orderHandler.RegisterAdminRoutes(r)
		a.menuHandler.RegisterAdminRoutes(r)
		a.bookHandler.RegisterAdminRoutes(r)
		a.staffHandler.RegisterAdminRoutes(r)

		r.Get("/orders/events", a.sseHandler.AdminOrderEvents)
	})
}

// Start connects storage, creates indexes, warms the order cache and
// begins consuming the orders topic.
func (a *App) Start(ctx context.Context) error {
	if err := a.conn.Start(ctx); err != nil {
		return err
	}

	for _, idx := range []interface {
		EnsureIndexes(ctx context.Context) error
	}{a.orderRepo, a.menuRepo, a.bookRepo, a.staffRepo, a.userRepo} {
		if err := idx.EnsureIndexes(ctx); err != nil {
			return err
		}
	}

	if err := a.cache.Warm(ctx); err != nil {
		a.logger.Errorf("Order cache warm failed, continuing cold: %v", err)
	}

	if err := a.subscriber.Start(ctx); err != nil {
		return err
	}

	seedCtx, cancel := context.WithCancel(context.Background())
	a.seedCancel = cancel
	if err := auth.SeedingFunc(seedCtx, a.userRepo, a.config, a.logger)(ctx); err != nil {
		return err
	}

	return nil
}

func (a *App) Stop(ctx context.Context) error {
	if a.seedCancel != nil {
		a.seedCancel()
	}
	if a.sessions != nil {
		a.sessions.Stop()
	}
	return a.conn.Stop(ctx)
}
