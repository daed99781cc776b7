// Package server wires the identity service together: storage, migrations,
// the resend gate, mail delivery, metrics, the provisioning reconciler and
// the gRPC endpoint. It also owns graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/talentmatch/internal/identity/registration"
	"github.com/dmitrijs2005/talentmatch/internal/identity/verification"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
	"github.com/dmitrijs2005/talentmatch/internal/server/config"
	"github.com/dmitrijs2005/talentmatch/internal/server/mail"
	"github.com/dmitrijs2005/talentmatch/internal/server/metrics"
	"github.com/dmitrijs2005/talentmatch/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/talentmatch/internal/server/services"
	"github.com/dmitrijs2005/talentmatch/internal/server/throttle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	gs "github.com/dmitrijs2005/talentmatch/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	redis      *redis.Client
	reconciler *registration.Reconciler
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, c.LogLevel, os.Stdout)

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	gate, rdb, err := newGate(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("throttle init error: %w", err)
	}

	mailer, err := newMailer(ctx, c, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mail init error: %w", err)
	}

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)

	credentials := services.NewCredentialService(db, rm, c, logger)
	profiles := services.NewProfileService(db, rm)

	reconciler := registration.NewReconciler(profiles, logger,
		registration.WithGrace(c.ProvisioningGrace),
		registration.WithFaultHook(func(string) { recorder.ProvisioningFault() }),
	)

	lifecycle := verification.New(services.NewCodeStore(db, rm), mailer, logger,
		verification.WithTTL(c.VerificationCodeTTL),
		verification.WithCooldown(c.ResendCooldown),
		verification.WithGate(gate),
		verification.WithObserver(recorder),
	)

	workflow := registration.New(credentials, profiles, reconciler, logger)
	accounts := services.NewAccountService(workflow, lifecycle, credentials, profiles, mailer, recorder, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		redis:      rdb,
		reconciler: reconciler,
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, accounts, credentials),
	}, nil
}

// newGate returns the Redis gate when an address is configured and the
// in-process gate otherwise. The client is returned so it can be closed.
func newGate(ctx context.Context, c *config.Config) (verification.Gate, *redis.Client, error) {
	if c.RedisAddr == "" {
		return throttle.NewMemoryGate(), nil, nil
	}
	rdb, err := throttle.Connect(ctx, c.RedisAddr, 0)
	if err != nil {
		return nil, nil, err
	}
	return throttle.NewRedisGate(rdb), rdb, nil
}

func newMailer(ctx context.Context, c *config.Config, logger logging.Logger) (verification.Mailer, error) {
	switch c.MailProvider {
	case config.MailProviderLog:
		return mail.NewLogDispatcher(c.MailFrom, logger), nil
	case config.MailProviderSES:
		return mail.NewSESDispatcher(ctx, mail.SESConfig{
			Region:          c.AWSRegion,
			AccessKeyID:     c.AWSAccessKeyID,
			SecretAccessKey: c.AWSSecretAccessKey,
			Endpoint:        c.AWSEndpoint,
			From:            c.MailFrom,
		})
	default:
		return nil, fmt.Errorf("unknown mail provider %q", c.MailProvider)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.grpcServer.Run(ctx); err != nil {
		app.logger.Error(ctx, "grpc server failed", "error", err)
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if app.config.MetricsAddr == "" {
		return
	}
	if err := metrics.Serve(ctx, app.config.MetricsAddr, prometheus.DefaultGatherer, app.logger); err != nil {
		app.logger.Error(ctx, "metrics server failed", "error", err)
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)
	app.reconciler.Start(ctx)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startMetricsServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.close(ctx)
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "redis close failed", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
