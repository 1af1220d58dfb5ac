package wiring

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/felixgeelhaar/hybridai/internal/infrastructure/config"
	"github.com/felixgeelhaar/hybridai/internal/infrastructure/metrics"
	"github.com/felixgeelhaar/hybridai/internal/infrastructure/sse"
	"github.com/felixgeelhaar/hybridai/pkg/application"
	"github.com/felixgeelhaar/hybridai/pkg/credentials"
	"github.com/felixgeelhaar/hybridai/pkg/progress"
	"github.com/felixgeelhaar/hybridai/pkg/testrunner"
)

// AppServices exposes the application layer wired to configuration.
type AppServices struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	Resolver *credentials.Resolver
	Router   *application.RouterService
	// Events is set when Options.Events was given.
	Events *sse.Broadcaster
}

// Options tune BuildAppServices for the surface being started.
type Options struct {
	// Progress receives status messages; nil disables them.
	Progress io.Writer
	// Env is the environment snapshot; nil captures the process environment.
	Env        map[string]string
	HTTPClient *http.Client
	Metrics    *metrics.Metrics
	// Events receives routing and phase events for streaming.
	Events *sse.Broadcaster
}

// BuildAppServices constructs the router service and its collaborators.
func BuildAppServices(cfg *config.Config, logger zerolog.Logger, opts Options) *AppServices {
	env := opts.Env
	if env == nil {
		env = credentials.EnvSnapshot()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	resolver := credentials.NewResolver(env,
		credentials.WithFiles(cfg.Credentials.LocalFile, cfg.Credentials.GlobalFile))

	announcer := progress.New(opts.Progress,
		progress.WithInterval(cfg.Progress.Interval),
		progress.WithEnabled(cfg.Progress.Enabled && opts.Progress != nil))

	var observer application.Observer = m
	if opts.Events != nil {
		observer = application.Observers{m, opts.Events}
	}

	orchestratorOpts := []application.OrchestratorOption{
		application.WithAnnouncer(announcer),
		application.WithObserver(observer),
		application.WithLogger(logger),
	}
	if cfg.Local.AutoSelect {
		orchestratorOpts = append(orchestratorOpts, application.WithModelSelector(application.NewModelSelector()))
	}

	router := application.NewRouterService(
		RouterConfigFromConfig(cfg),
		resolver,
		NewBackendFactory(cfg, opts.HTTPClient, m),
		testrunner.NewSyntaxRunner(testrunner.WithTimeout(cfg.Timeouts.Tests)),
		orchestratorOpts...,
	)

	return &AppServices{
		Config:   cfg,
		Logger:   logger,
		Metrics:  m,
		Resolver: resolver,
		Router:   router,
		Events:   opts.Events,
	}
}
