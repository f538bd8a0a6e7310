package main

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/fx"

	"locus/config"
	"locus/internal/delivery"
	"locus/internal/delivery/http"
	"locus/internal/delivery/http/router/handler"
	"locus/internal/domain/repository"
	logs "locus/internal/infra/log"
	"locus/internal/infra/persistence/yamlstore"
	"locus/internal/usecase/impl"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectUsecase(),
		injectHandler(),
		injectDelivery(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			yamlstore.New,
			func(store *yamlstore.Store) repository.ConfigStore { return store },
			func(store *yamlstore.Store) repository.LocationRepository { return store },
			func(store *yamlstore.Store) repository.ProfileRepository { return store },
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewEProfileService,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewGeolocHandler,
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

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
