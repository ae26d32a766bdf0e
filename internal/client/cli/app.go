package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/agrisonic/agrisonic/internal/client/client"
	"github.com/agrisonic/agrisonic/internal/client/config"
	"github.com/agrisonic/agrisonic/internal/client/metrics"
	"github.com/agrisonic/agrisonic/internal/client/services"
	"github.com/agrisonic/agrisonic/internal/client/store"
	"github.com/agrisonic/agrisonic/internal/logging"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	store   *store.Store
	metrics *metrics.Collector

	authService services.AuthService
	weather     *services.WeatherClient
	crop        *services.CropClient
	market      *services.MarketClient

	reader *bufio.Reader
	out    io.Writer

	mu       sync.Mutex
	loggedIn bool
	userName string
}

// NewApp opens the local database and builds every service on top of it.
// Close releases the database.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log, err := logging.New(logging.Options{
		Backend: c.LogBackend,
		Level:   c.LogLevel,
		Format:  c.LogFormat,
	})
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	st := store.New(db, store.WithDefaultLanguage(c.DefaultLanguage), store.WithLogger(log))
	m := metrics.NewCollector()

	gw, err := client.NewGateway(client.Config{
		BaseURL:        c.ServerBaseURL,
		ConnectTimeout: c.ConnectTimeout,
		WriteTimeout:   c.WriteTimeout,
		ReadTimeout:    c.ReadTimeout,
	}, st.Credentials(), client.WithLogger(log), client.WithMetrics(m))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:      c,
		log:         log,
		db:          db,
		store:       st,
		metrics:     m,
		authService: services.NewSessionManager(gw, st, log),
		weather:     services.NewWeatherClient(gw),
		crop:        services.NewCropClient(gw),
		market:      services.NewMarketClient(gw),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

// Restore resumes the stored session, if any, without contacting the
// backend.
func (a *App) Restore(ctx context.Context) error {
	ok, err := a.authService.RestoreSession(ctx)
	if err != nil {
		return err
	}
	if ok {
		a.log.Info(ctx, "session restored")
	}
	return nil
}

// Run restores the session, follows session changes in the background and
// blocks in the REPL until the user leaves or ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Restore(ctx); err != nil {
		a.log.Warn(ctx, "stored session unavailable", "error", err)
	}
	if err := a.watchSession(ctx); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Welcome to Agrisonic (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.authService.State() == services.Authenticated
}

func (a *App) setLoggedIn(ctx context.Context, in bool) {
	a.mu.Lock()
	changed := a.loggedIn != in
	a.loggedIn = in
	a.mu.Unlock()

	if !changed {
		return
	}
	if in {
		a.log.Info(ctx, "session stored")
	} else {
		a.log.Info(ctx, "session cleared")
	}
}

func (a *App) setUserName(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.userName = name
}

// watchSession follows the credential and profile streams of the store so
// the prompt reflects changes made by any command. It returns once both
// subscriptions are in place; the streams end with ctx.
func (a *App) watchSession(ctx context.Context) error {
	creds, err := a.store.Credentials().Subscribe(ctx)
	if err != nil {
		return err
	}
	profiles, err := a.store.Profiles().Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for creds != nil || profiles != nil {
			select {
			case c, ok := <-creds:
				if !ok {
					creds = nil
					continue
				}
				a.setLoggedIn(ctx, c.IsLoggedIn)
			case u, ok := <-profiles:
				if !ok {
					profiles = nil
					continue
				}
				if u == nil {
					a.setUserName("")
				} else {
					a.setUserName(u.Name)
				}
			}
		}
	}()
	return nil
}

func (a *App) getStatus() string {
	a.mu.Lock()
	name, in := a.userName, a.loggedIn
	a.mu.Unlock()

	s := a.authService.State().String()
	if in && name != "" {
		s = name + " " + s
	}
	return fmt.Sprintf("(%s)", s)
}
