// Package app wires configuration, storage, the city directory and the
// weather client into a runnable Telegram bot.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/weatherbot/core/bootstrap"
	"github.com/m3rciful/weatherbot/core/logger"
	tg "github.com/m3rciful/weatherbot/core/telegram"
	"github.com/m3rciful/weatherbot/core/telegram/router"
	"github.com/m3rciful/weatherbot/core/telegram/state"
	"github.com/m3rciful/weatherbot/internal/bot"
	"github.com/m3rciful/weatherbot/internal/cities"
	"github.com/m3rciful/weatherbot/internal/config"
	"github.com/m3rciful/weatherbot/internal/profile"
	"github.com/m3rciful/weatherbot/internal/weather"
)

// App holds the composed bot.
type App struct {
	cfg      *config.Config
	infra    *bootstrap.Result
	registry *tg.Registry
	states   state.Manager
	cities   *cities.Directory
	handlers *bot.Handlers
}

// Bootstrap initialises logging, storage and handlers for cfg.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	return build(ctx, cfg, bootstrap.Options{})
}

// build lets tests replace the infrastructure hooks of bootstrap.Options.
func build(ctx context.Context, cfg *config.Config, hooks bootstrap.Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}

	opts := hooks
	opts.Config = cfg.CoreConfig()
	opts.Database = cfg.DatabaseConfig()
	opts.Migrations = bootstrap.Migrations{FS: profile.Migrations, Dir: profile.MigrationsDir}
	infra, err := bootstrap.Run(opts)
	if err != nil {
		return nil, err
	}

	var store profile.Store
	if infra.DB != nil {
		store = profile.NewPostgresStore(infra.DB)
	} else {
		store = profile.NewFileStore(cfg.Storage.ProfilesPath)
	}
	profiles := profile.NewService(store)

	if err := bootstrap.RunSeeders(ctx, []bootstrap.Seeder{
		profile.ImportSeeder(cfg.Storage.ImportPath, profiles),
	}); err != nil {
		_ = infra.Close()
		return nil, err
	}

	var src cities.Source
	if cfg.Cities.Path != "" {
		src = cities.FileSource(cfg.Cities.Path)
	}
	dir := cities.New(src)

	timeout := time.Duration(cfg.Weather.TimeoutSeconds) * time.Second
	client := weather.NewClient(weather.Options{
		APIKey:     cfg.Weather.APIKey,
		BaseURL:    cfg.Weather.BaseURL,
		Country:    cfg.Weather.Country,
		Lang:       cfg.Weather.Lang,
		Timeout:    timeout,
		HTTPClient: tg.BuildHTTPClientWith(tg.ClientOptions{Timeout: timeout}),
	})

	states := state.NewMemoryManager()
	handlers, err := bot.New(bot.Deps{
		Profiles: profiles,
		Cities:   dir,
		Weather:  client,
		States:   states,
	})
	if err != nil {
		_ = infra.Close()
		return nil, err
	}

	reg := tg.NewRegistry()
	if err := handlers.Register(reg); err != nil {
		_ = infra.Close()
		return nil, err
	}

	logger.App.LogAttrs(ctx, slog.LevelInfo, "app bootstrapped",
		slog.String("event", "bootstrap"),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("cities_source", sourceName(cfg)),
	)

	return &App{
		cfg:      cfg,
		infra:    infra,
		registry: reg,
		states:   states,
		cities:   dir,
		handlers: handlers,
	}, nil
}

func sourceName(cfg *config.Config) string {
	if cfg.Cities.Path != "" {
		return cfg.Cities.Path
	}
	return cities.EmbeddedSource().Name()
}

// TelegramRunOptions builds middlewares, routes and lifecycle hooks for the runtime.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	if a == nil || a.cfg == nil {
		return tg.RunOptions{}, fmt.Errorf("app: not bootstrapped")
	}
	core := a.cfg.CoreConfig()

	mws := tg.DefaultMiddlewares(core, a.handlers.OnLimited, tg.Middleware{
		Name: "fsm_clear",
		Use:  state.ClearOnCommand(a.states),
	})

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{AdminID: core.Telegram.AdminID})
	routes = append(routes, router.CallbackRoute(a.registry))
	routes = append(routes, router.TextRoutes(a.states)...)

	return tg.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: mws,
		Routes:      routes,
		OnError:     a.handlers.OnError,
		OnStart: func(ctx context.Context, _ tg.Runtime) error {
			a.cities.EnsureLoaded(ctx)
			return nil
		},
		OnStop: func(context.Context, tg.Runtime) error {
			return a.Close()
		},
	}, nil
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return a.infra.Close()
}
