package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/storeadmin/internal/client/cache"
	"github.com/dmitrijs2005/storeadmin/internal/client/client"
	"github.com/dmitrijs2005/storeadmin/internal/client/config"
	"github.com/dmitrijs2005/storeadmin/internal/client/nav"
	"github.com/dmitrijs2005/storeadmin/internal/client/notify"
	"github.com/dmitrijs2005/storeadmin/internal/client/services"
	"github.com/dmitrijs2005/storeadmin/internal/client/session"
	"github.com/dmitrijs2005/storeadmin/internal/filex"
	"github.com/dmitrijs2005/storeadmin/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const (
	dataDir       = "data"
	defaultDBFile = "storeadmin.db"
	pingTimeout   = 3 * time.Second
)

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	sessions *session.Store
	router   *nav.Router
	cache    *cache.Cache
	auth     services.AuthService
	list     *services.ProductList
	products services.ProductService
	editor   *services.Editor

	reader *bufio.Reader
	out    io.Writer

	mu   sync.RWMutex
	mode Mode
}

// NewApp opens the local database, restores the persisted session and wires
// the services to the backend at c.ServerURL. Input comes from stdin and
// output goes to stdout.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	return newApp(ctx, c, log, os.Stdin, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	dsn, err := databasePath(c.DBPath)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, dsn)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", dsn, "error", err)
		return nil, err
	}

	sessions := session.New(ctx, db, log)

	api, err := client.NewHTTPClient(c.ServerURL, sessions,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	router := nav.NewRouter(sessions, nav.ViewHome)
	notifier := notify.NewConsole(out, log)
	qc := cache.New()
	products := services.NewProductService(api, sessions, qc, notifier, log)

	return &App{
		config:   c,
		log:      log,
		db:       db,
		sessions: sessions,
		router:   router,
		cache:    qc,
		auth:     services.NewAuthService(api, sessions, router, notifier, log),
		list:     services.NewProductList(api, qc, c.SearchDebounce, nil, log),
		products: products,
		editor:   services.NewEditor(products),
		reader:   bufio.NewReader(in),
		out:      out,
	}, nil
}

// databasePath resolves where the session database lives, creating the
// directory when needed. An empty path means data/storeadmin.db under the
// working directory.
func databasePath(path string) (string, error) {
	if path == "" {
		dir, err := filex.EnsureSubdDir(dataDir)
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, defaultDBFile), nil
	}
	if err := filex.EnsureParentDir(path); err != nil {
		return "", err
	}
	return path, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Read().IsAuthenticated()
}

// Run starts the connectivity watcher and the REPL, and blocks until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to the store admin CLI (type 'help' for commands)")
	if a.router.Current() == nav.ViewLogin {
		fmt.Fprintln(a.out, "You are not signed in. Type 'login' or 'register'.")
	}

	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	scanner := bufio.NewScanner(a.reader)
	runREPL(ctx, a, a.getStatus, scanner)
	return nil
}

// Close stops the pending search and releases the database.
func (a *App) Close() error {
	if a.list != nil {
		a.list.Close()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// StartOnlineStatusWatcher pings the backend right away and then every
// interval, flipping the mode between online and offline. It returns when
// ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.auth.Ping(pctx)
	cancel()

	if err != nil {
		a.log.Debug(ctx, "ping failed", "error", err)
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// getStatus renders the prompt prefix, e.g. "(ada@example.org online)".
func (a *App) getStatus() string {
	s := ""
	if u := a.sessions.Read().User; u != nil {
		s = u.Email + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}
