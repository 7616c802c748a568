package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/config"
	"github.com/dmitrijs2005/gophsocial/internal/client/credstore"
	"github.com/dmitrijs2005/gophsocial/internal/client/gateway"
	"github.com/dmitrijs2005/gophsocial/internal/client/router"
	"github.com/dmitrijs2005/gophsocial/internal/client/services"
	"github.com/dmitrijs2005/gophsocial/internal/client/session"
	"github.com/dmitrijs2005/gophsocial/internal/client/storage"
	"github.com/dmitrijs2005/gophsocial/internal/client/views"
	"github.com/dmitrijs2005/gophsocial/internal/filex"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
)

const tracerName = "github.com/dmitrijs2005/gophsocial/client"

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	store *session.Store
	deps  *views.Deps
	nav   *router.History

	sortBy client.SortOrder

	// The page on screen. Commands act on it when it shows their target.
	feed    *views.FeedView
	thread  *views.ThreadView
	profile *views.ProfileView

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local database and wires the client stack. reg receives
// the gateway metrics and may be nil.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger, reg prometheus.Registerer) (*App, error) {
	log = logging.OrNop(log)

	if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, err
	}
	db, err := storage.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	creds, err := credstore.New(ctx, db, credstore.Options{
		MaxAge: c.CredentialMaxAge,
		Secure: c.SecureStorage,
		Origin: c.APIBaseURL,
		Logger: log,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := session.New(creds, log)
	gw := gateway.New(c.APIBaseURL, store,
		gateway.WithTimeout(c.RequestTimeout),
		gateway.WithLogger(log),
		gateway.WithMetrics(gateway.NewMetrics(reg)),
		gateway.WithTracer(otel.Tracer(tracerName)),
	)

	a := newApp(c, log, store, client.New(gw), os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, log logging.Logger, store *session.Store, api *client.API, in io.Reader, out io.Writer) *App {
	log = logging.OrNop(log)
	nav := router.NewHistory(router.PathHome)
	return &App{
		config: c,
		log:    log,
		store:  store,
		nav:    nav,
		sortBy: client.SortLatest,
		deps: &views.Deps{
			Session:          store,
			Posts:            api.Posts,
			Comments:         api.Comments,
			Users:            api.Users,
			Likes:            services.NewLikeService(api.Posts, store),
			Follows:          services.NewFollowService(api.Users, store),
			Auth:             services.NewAuthService(api.Users, store, log),
			Nav:              nav,
			Log:              log,
			FeedPageSize:     c.FeedPageSize,
			TrendingPageSize: c.TrendingPageSize,
		},
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Run blocks in the REPL and closes the database when it returns.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.store.Authenticated()
}

// show makes one page current and forgets the others.
func (a *App) show(feed *views.FeedView, thread *views.ThreadView, profile *views.ProfileView) {
	a.feed, a.thread, a.profile = feed, thread, profile
}
