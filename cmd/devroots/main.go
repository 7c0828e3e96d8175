package main

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/fx"

	"devroots/config"
	"devroots/internal/delivery"
	"devroots/internal/delivery/http"
	"devroots/internal/delivery/http/middleware"
	"devroots/internal/delivery/http/router/handler"
	deliverymiddleware "devroots/internal/delivery/middleware"
	"devroots/internal/infra/auth"
	logs "devroots/internal/infra/log"
	"devroots/internal/infra/persistence/memory"
	"devroots/internal/infra/persistence/postgres"
	"devroots/internal/infra/pubsub"
	"devroots/internal/usecase"
	"devroots/internal/usecase/impl"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Logger     *slog.Logger
	Deliveries []delivery.Delivery `group:"deliveries"`
}

type bootstrapParams struct {
	fx.In
	fx.Lifecycle

	Bootstrap usecase.BootstrapUsecase
}

func main() {
	cfg, err := config.New()
	if err != nil {
		slog.Error("Failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	fx.New(
		fx.Supply(cfg),
		injectInfra(),
		injectRepo(cfg),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			bootstrapAdmin,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			logs.New,
			context.Background,
		),
		pubsub.Module,
	)
}

// injectRepo selects the store backing every repository.
func injectRepo(cfg *config.Config) fx.Option {
	if cfg.Storage.Driver == config.StorageDriverMemory {
		return memory.Module
	}

	return postgres.Module
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewIntegrityGuard,
			impl.NewAccountService,
			impl.NewCategoryService,
			impl.NewBlogService,
			impl.NewCommentService,
			impl.NewBootstrapService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
			deliverymiddleware.NewRequestIDMiddleware,
			deliverymiddleware.NewLoggerMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewUserHandler,
			handler.NewCategoryHandler,
			handler.NewBlogHandler,
			handler.NewCommentHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// bootstrapAdmin runs after the store hooks, so migrations are applied first.
func bootstrapAdmin(params bootstrapParams) {
	params.Append(fx.Hook{
		OnStart: params.Bootstrap.EnsureAdmin,
	})
}

func startServer(ctx context.Context, params startServerParams) {
	params.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for _, delivery := range params.Deliveries {
				go func() {
					if err := delivery.Serve(ctx); err != nil {
						params.Logger.Error("Failed to start server", slog.Any("error", err))
						os.Exit(1)
					}
				}()
			}

			return nil
		},
	})
}
