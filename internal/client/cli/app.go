package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/dmitrijs2005/talentmatch/internal/client/client"
	"github.com/dmitrijs2005/talentmatch/internal/client/config"
	"github.com/dmitrijs2005/talentmatch/internal/client/services"
	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/identity/session"
	"github.com/dmitrijs2005/talentmatch/internal/identity/verification"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config   *config.Config
	auth     services.AuthService
	profiles session.Profiles
	manager  *session.Manager
	db       *sql.DB
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time

	mu            sync.Mutex
	mode          Mode
	pendingEmail  string
	resendIn      time.Duration
	countdownGen  int
	stopCountdown context.CancelFunc
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, c.LogLevel, os.Stderr)

	db, err := client.InitDatabase(ctx, c.CachePath)
	if err != nil {
		logger.Error(ctx, "error initializing session cache", "path", c.CachePath, "error", err)
		return nil, err
	}

	apiClient, err := client.NewIdentityClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config:   c,
		auth:     services.NewRemoteCredentials(apiClient, services.NewSessionCache(db), logger),
		profiles: services.NewRemoteProfiles(apiClient),
		db:       db,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		now:      time.Now,
	}, nil
}

// Run restores the cached session and blocks in the REPL until the user
// exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.close(ctx)

	device := identity.Device{Platform: runtime.GOOS + "/" + runtime.GOARCH, UserAgent: "talentmatch-cli"}

	return session.WithSession(ctx, a.auth, a.profiles, a.logger, func(ctx context.Context, m *session.Manager) error {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		a.manager = m
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

		printlnFn("Welcome to talentmatch CLI (type 'help' for commands)")
		runREPL(ctx, a, a.getStatus, a.reader)
		return nil
	}, session.WithDevice(device))
}

func (a *App) close(ctx context.Context) {
	if err := a.auth.Close(ctx); err != nil {
		a.logger.Warn(ctx, "closing client", "error", err)
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// setMode records the connectivity mode and reports whether it changed.
func (a *App) setMode(ctx context.Context, mode Mode) bool {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", mode)
	}
	return changed
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) isLoggedIn() bool {
	return a.manager != nil && a.manager.Snapshot().SignedIn()
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.auth.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

// startCountdown replaces any running resend countdown with one ending d
// from now. The latest remaining time is kept for the prompt.
func (a *App) startCountdown(ctx context.Context, d time.Duration) {
	a.mu.Lock()
	if a.stopCountdown != nil {
		a.stopCountdown()
	}
	ctx, cancel := context.WithCancel(ctx)
	a.stopCountdown = cancel
	a.countdownGen++
	gen := a.countdownGen
	a.resendIn = d
	a.mu.Unlock()

	ticks := verification.Countdown(ctx, a.now().Add(d), time.Second, a.now)
	go func() {
		for left := range ticks {
			a.mu.Lock()
			if a.countdownGen == gen {
				a.resendIn = left
			}
			a.mu.Unlock()
		}
	}()
}

func (a *App) clearCountdown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopCountdown != nil {
		a.stopCountdown()
		a.stopCountdown = nil
	}
	a.countdownGen++
	a.resendIn = 0
}

func (a *App) resendRemaining() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resendIn
}

func (a *App) setPending(email string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pendingEmail = email
}

func (a *App) pending() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pendingEmail
}
