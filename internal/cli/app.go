// Package cli is the seller console: subcommands that drive the product,
// reservation and stream resource stores and the auth session from the
// terminal.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"live-commerce/internal/auth"
	"live-commerce/internal/catalog"
	"live-commerce/internal/config"
	"live-commerce/internal/resource"
	"live-commerce/internal/session"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrUsage is returned when the arguments do not name a known command.
var ErrUsage = errors.New("invalid usage")

type (
	productStore     = resource.Store[catalog.ProductInput, catalog.Product, catalog.ProductView]
	reservationStore = resource.Store[catalog.ReservationInput, catalog.Reservation, catalog.ReservationView]
	streamStore      = resource.Store[catalog.StreamInput, catalog.Stream, catalog.StreamView]
)

type App struct {
	out    io.Writer
	errOut io.Writer
	logger *zap.Logger
	now    func() time.Time

	sessions     *session.Manager
	auth         *auth.Client
	products     *productStore
	reservations *reservationStore
	streams      *streamStore

	redis *redis.Client
}

// New wires the console from cfg. Command output goes to out, errors and
// usage to errOut.
func New(cfg *config.Config, logger *zap.Logger, out, errOut io.Writer) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	app := &App{out: out, errOut: errOut, logger: logger, now: time.Now}

	store, err := app.sessionStore(cfg)
	if err != nil {
		return nil, err
	}
	app.sessions = session.NewManager(store, logger)

	tr := resource.NewTransport(&http.Client{Timeout: cfg.API.Timeout}, app.sessions.Authorize, logger)

	products, err := catalog.NewProductClient(cfg.API.ProductsURL, cfg.API.AssetBaseURL, tr)
	if err != nil {
		return nil, fmt.Errorf("products client: %w", err)
	}
	reservations, err := catalog.NewReservationClient(cfg.API.ReservationsURL, tr)
	if err != nil {
		return nil, fmt.Errorf("reservations client: %w", err)
	}
	streams, err := catalog.NewStreamClient(cfg.API.StreamsURL, tr)
	if err != nil {
		return nil, fmt.Errorf("streams client: %w", err)
	}

	app.auth = auth.NewClient(cfg.API.AuthURL, tr, app.sessions, logger)
	app.products = resource.NewStore(products)
	app.reservations = resource.NewStore(reservations)
	app.streams = resource.NewStore(streams)
	return app, nil
}

func (a *App) sessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Store {
	case "", "file":
		return session.NewFileStore(cfg.Session.File), nil
	case "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return session.NewRedisStore(a.redis, cfg.Session.Key, cfg.Session.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

// Close releases the redis connection of a redis-backed session.
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// Run executes one command. The persisted session is loaded first so the
// command's requests carry its token.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return ErrUsage
	}

	if err := a.sessions.Hydrate(ctx); err != nil {
		a.logger.Warn("Continuing without session", zap.Error(err))
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "register":
		return a.register(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami()
	case "access":
		return a.access(rest)
	case "products":
		return a.productsCmd(ctx, rest)
	case "reservations":
		return a.reservationsCmd(ctx, rest)
	case "streams":
		return a.streamsCmd(ctx, rest)
	case "help", "-h", "--help":
		a.usage()
		return nil
	default:
		fmt.Fprintf(a.errOut, "unknown command %q\n\n", cmd)
		a.usage()
		return ErrUsage
	}
}

// Fail prints err the way every command failure is shown.
func (a *App) Fail(err error) {
	fmt.Fprintln(a.errOut, danger("error:"), err)
}

func (a *App) done(format string, args ...interface{}) {
	fmt.Fprintln(a.out, success("✓"), fmt.Sprintf(format, args...))
}

func (a *App) usage() {
	fmt.Fprint(a.errOut, `usage: console [-v] <command> [args]

commands:
  login -email E -password P
  register -username U -email E -password P [-role user|seller|admin]
  logout
  whoami
  access PATH

  products list [-category C] [-q TEXT] [-live true|false]
  products get ID
  products create -name N [-description D] [-price 0] [-stock 0] [-category C] [-sku S] [-live] [-image FILE]
  products update ID [same flags as create]
  products delete ID

  reservations list
  reservations get ID
  reservations create -name N -phone P -email E [-products 1,2] [-date YYYY-MM-DD] [-time HH:MM]
  reservations delete ID

  streams list [-status SCHEDULED|LIVE|ENDED]
  streams get ID
  streams create -title T -description D [-host ID]
  streams delete ID
`)
}
