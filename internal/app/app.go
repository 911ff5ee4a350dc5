package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/orderdesk/internal/config"
	"github.com/polkiloo/orderdesk/internal/pkg/auth"
	"github.com/polkiloo/orderdesk/internal/usecase"
	"github.com/polkiloo/orderdesk/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newDeskFacade,
		newHTTPServer,
		newRetentionScheduler,
	),
	fx.Invoke(registerLifecycle),
)

type facadeParams struct {
	fx.In

	Intake    *usecase.IntakeUseCase
	Lifecycle *usecase.LifecycleUseCase
	Browse    *usecase.BrowseUseCase
	Templates *usecase.TemplateUseCase
	Hasher    auth.PasswordHasher
	Strategy  auth.Strategy
	Config    *config.Config
}

func newDeskFacade(p facadeParams) *DeskFacade {
	return NewDeskFacade(
		p.Intake,
		p.Lifecycle,
		p.Browse,
		p.Templates,
		p.Hasher,
		p.Strategy,
		p.Config.AdminID,
		p.Config.AdminPasswordHash,
	)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *DeskFacade
	Config *config.Config
	Logger *slog.Logger
}

func newRetentionScheduler(p workerParams) *worker.RetentionScheduler {
	return worker.NewRetentionScheduler(
		p.Facade,
		p.Config.SweepInterval,
		p.Config.SweepInitialDelay,
		p.Config.RetentionWindow(),
		worker.NewBackup(p.Config.BackupSource, p.Config.BackupDir, p.Config.BackupKeep),
		p.Logger,
	)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Scheduler  *worker.RetentionScheduler
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting orderdesk", slog.String("addr", p.Server.Addr))
			p.Scheduler.Start(ctx)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			p.Scheduler.Stop()

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("orderdesk stopped")
			return nil
		},
	})
}
