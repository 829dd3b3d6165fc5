// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/tunestream/internal/adapter/audio/bass"
	audiomock "github.com/tejashwikalptaru/tunestream/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/resolver/httpresolver"
	"github.com/tejashwikalptaru/tunestream/internal/adapter/source/httpsource"
	fyneui "github.com/tejashwikalptaru/tunestream/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/tunestream/internal/config"
	"github.com/tejashwikalptaru/tunestream/internal/domain"
	"github.com/tejashwikalptaru/tunestream/internal/logger"
	"github.com/tejashwikalptaru/tunestream/internal/ports"
	"github.com/tejashwikalptaru/tunestream/internal/service"
)

// AppID is the Fyne application identifier; it also names the preferences store.
const AppID = "com.tunestream.app"

// ErrNoTracks is returned when the catalogue has nothing to play.
var ErrNoTracks = errors.New("catalogue returned no tracks")

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for the commands
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	cfg     *config.Config
	fyneApp fyne.App

	// Infrastructure
	eventBus  *eventbus.SyncEventBus
	transport ports.Transport
	resolver  ports.TrackResolver
	source    ports.PlaylistSource

	// Repositories
	preferencesRepo *memory.PreferencesRepository

	// Services
	session           *service.SessionService
	preferenceService *service.PreferenceService

	// UI, nil when headless
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
}

// Options selects how the application is assembled.
type Options struct {
	Config *config.Config

	// Headless skips the window and presenter
	Headless bool

	// LogOutput defaults to stderr
	LogOutput io.Writer

	// HTTPClient is shared by the resolver and the source (nil for defaults)
	HTTPClient *http.Client

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App

	// Transport overrides the configured audio output (tests)
	Transport ports.Transport
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{cfg: cfg}

	// Step 1: Create logger
	loggerCfg := logger.FromSettings(cfg.LogLevel, cfg.LogFormat)
	loggerCfg.Output = opts.LogOutput
	app.logger = logger.NewLogger(loggerCfg)
	app.logger.Info("initializing application",
		slog.String("app_id", AppID),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 2: Create Fyne application (preferences live there even when headless)
	if opts.TestFyneApp != nil {
		app.fyneApp = opts.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(AppID)
	}

	// Step 3: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus(app.logger.With(slog.String("component", "eventbus")))

	// Step 4: Create the audio transport
	transport, err := app.newTransport(opts.Transport)
	if err != nil {
		return nil, err
	}
	app.transport = transport

	// Step 5: Create the remote adapters
	resolver, err := httpresolver.New(app.logger, httpresolver.Config{
		BaseURL:   cfg.Resolver.BaseURL,
		Timeout:   cfg.Resolver.Timeout,
		UserAgent: "TuneStream/" + Version,
	}, opts.HTTPClient)
	if err != nil {
		app.closeTransport()
		return nil, err
	}
	app.resolver = resolver

	source, err := httpsource.New(app.logger, httpsource.Config{
		BaseURL: cfg.Source.BaseURL,
		Timeout: cfg.Source.Timeout,
	}, opts.HTTPClient)
	if err != nil {
		app.closeTransport()
		return nil, err
	}
	app.source = source

	// Step 6: Create repositories
	app.preferencesRepo = memory.NewPreferencesRepository(app.fyneApp.Preferences())
	app.preferencesRepo.SetDefaultVolume(cfg.Playback.InitialVolume)

	// Step 7: Create services (with dependency injection)
	app.preferenceService = service.NewPreferenceService(app.logger, app.preferencesRepo, app.eventBus)
	app.session = service.NewSessionService(app.logger, app.transport, app.resolver, app.eventBus, service.SessionOptions{
		PreloadThreshold: cfg.Playback.PreloadThreshold,
		InitialVolume:    app.preferenceService.GetVolume(),
	})

	// Step 8: Load saved state
	app.loadSavedState()

	// Step 9: Create UI
	if !opts.Headless {
		app.mainWindow = fyneui.NewMainWindow(app.fyneApp)
		app.presenter = fyneui.NewPresenter(
			app.logger,
			app.session,
			app.source,
			app.resolver,
			app.preferenceService,
			app.eventBus,
			app.mainWindow,
		)
		app.mainWindow.SetPresenter(app.presenter)
	}

	return app, nil
}

func (a *Application) newTransport(override ports.Transport) (ports.Transport, error) {
	switch {
	case override != nil:
		return override, nil
	case a.cfg.Audio.Mock:
		a.logger.Info("using silent mock transport")
		return audiomock.NewTransport(a.logger, a.eventBus), nil
	default:
		t := bass.NewTransport(a.logger, a.eventBus, bass.Config{
			Device:           a.cfg.Audio.Device,
			SampleRate:       a.cfg.Audio.SampleRate,
			ProgressInterval: a.cfg.Playback.ProgressInterval,
		})
		if err := t.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize audio transport: %w", err)
		}
		return t, nil
	}
}

// loadSavedState restores volume and shuffle mode from the previous run.
func (a *Application) loadSavedState() {
	if err := a.session.SetVolume(a.preferenceService.GetVolume()); err != nil {
		a.logger.Warn("failed to restore volume", slog.Any("error", err))
	}
	a.session.SetShuffleMode(a.preferenceService.GetShuffleMode())
}

// Run shows the window and blocks until it is closed.
func (a *Application) Run() error {
	if a.mainWindow == nil {
		return errors.New("application was built headless")
	}

	a.logger.Info("TuneStream started")
	a.presenter.OnRecommendationsClicked()
	a.mainWindow.ShowAndRun()
	return nil
}

// Session returns the playback session.
func (a *Application) Session() *service.SessionService {
	return a.session
}

// Source returns the catalogue client.
func (a *Application) Source() ports.PlaylistSource {
	return a.source
}

// Resolver returns the audio resolver.
func (a *Application) Resolver() ports.TrackResolver {
	return a.resolver
}

// EventBus returns the application event bus.
func (a *Application) EventBus() ports.EventBus {
	return a.eventBus
}

// Preferences returns the preference service.
func (a *Application) Preferences() *service.PreferenceService {
	return a.preferenceService
}

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger {
	return a.logger
}

// SearchAndPlay fetches a playlist (recommendations when query is empty)
// and starts its first track.
func (a *Application) SearchAndPlay(ctx context.Context, query string) (*domain.Playlist, error) {
	var (
		pl  *domain.Playlist
		err error
	)
	if query == "" {
		pl, err = a.source.Recommendations(ctx)
	} else {
		pl, err = a.source.Search(ctx, query)
		if err == nil {
			if perr := a.preferenceService.SetLastQuery(query); perr != nil {
				a.logger.Warn("failed to save last query", slog.Any("error", perr))
			}
		}
	}
	if err != nil {
		return nil, err
	}
	if pl.Len() == 0 {
		return pl, fmt.Errorf("no tracks for %q: %w", pl.SourceTag, ErrNoTracks)
	}

	a.session.ResetForContext(pl)
	return pl, a.session.PlayTrack(ctx, pl.Tracks[0], 0, pl)
}

// Shutdown gracefully shuts down the application.
// It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() error {
	var errs []error
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		// Shutdown UI and presenter
		if a.presenter != nil {
			a.presenter.Shutdown()
		}

		// Shutdown services (in reverse order of creation)
		if err := a.session.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("session: %w", err))
		}
		if err := a.preferenceService.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("preferences: %w", err))
		}

		if err := a.closeTransport(); err != nil {
			errs = append(errs, fmt.Errorf("transport: %w", err))
		}
		if err := a.eventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}

		a.logger.Info("application shutdown complete")
	})
	return errors.Join(errs...)
}

func (a *Application) closeTransport() error {
	if a.transport == nil {
		return nil
	}
	return a.transport.Close()
}
