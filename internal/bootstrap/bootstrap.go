package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"voicecast-server-go/internal/app/services"
	"voicecast-server-go/internal/domain/script"
	"voicecast-server-go/internal/domain/tts"
	ttscache "voicecast-server-go/internal/domain/tts/cache"
	"voicecast-server-go/internal/domain/voice"
	platformconfig "voicecast-server-go/internal/platform/config"
	platformerrors "voicecast-server-go/internal/platform/errors"
	platformlogging "voicecast-server-go/internal/platform/logging"
	platformstorage "voicecast-server-go/internal/platform/storage"
	httptransport "voicecast-server-go/internal/transport/http"

	_ "voicecast-server-go/internal/domain/tts/adapters/edge"
	_ "voicecast-server-go/internal/domain/tts/adapters/elevenlabs"
)

type stepFn func(context.Context, *appState) error

type initStep struct {
	ID        string
	Title     string
	DependsOn []string
	Kind      platformerrors.Kind
	Execute   stepFn
}

type appState struct {
	configPath string

	config    *platformconfig.Config
	logger    *platformlogging.Logger
	db        *gorm.DB
	registry  *voice.Registry
	provider  tts.Provider
	generator services.ScriptGenerator
}

// Run drives the whole service lifecycle: configuration, dependency
// initialisation, HTTP serving and graceful shutdown.
func Run(ctx context.Context, configPath string) error {
	state := &appState{configPath: configPath}

	steps := InitGraph()
	if err := executeInitSteps(ctx, steps, state); err != nil {
		return err
	}

	config := state.config
	logger := state.logger
	if config == nil || logger == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"bootstrap state validation",
			"config/logger not initialised",
		)
	}

	defer func() {
		if state.provider != nil {
			if closeErr := state.provider.Close(); closeErr != nil {
				logger.WarnTag("BOOT", "TTS provider did not close cleanly: %v", closeErr)
			}
		}
	}()

	logBootstrapGraph(steps, logger)

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	if _, err := startHTTPServer(state, group, groupCtx); err != nil {
		cancel()
		return err
	}

	if err := waitForShutdown(signalCtx, cancel, logger, group); err != nil {
		return err
	}

	logger.InfoTag("BOOT", "service stopped")
	logger.Close()
	return nil
}

func logBootstrapGraph(steps []initStep, logger *platformlogging.Logger) {
	if logger == nil {
		return
	}
	logger.InfoTag("BOOT", "initialisation overview")
	for _, step := range steps {
		logger.InfoTag("BOOT", "  %s", step.Title)
	}
}

func executeInitSteps(ctx context.Context, steps []initStep, state *appState) error {
	if state == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"execute init steps",
			"nil bootstrap state",
		)
	}

	completed := make(map[string]struct{}, len(steps))
	for _, step := range steps {
		for _, dep := range step.DependsOn {
			if _, ok := completed[dep]; !ok {
				return platformerrors.New(
					platformerrors.KindBootstrap,
					step.ID,
					fmt.Sprintf("dependency %s not satisfied", dep),
				)
			}
		}
		if step.Execute == nil {
			return platformerrors.New(
				platformerrors.KindBootstrap,
				step.ID,
				"missing execute function",
			)
		}
		if err := step.Execute(ctx, state); err != nil {
			var typed *platformerrors.Error
			if errors.As(err, &typed) {
				return err
			}

			kind := step.Kind
			if kind == "" {
				kind = platformerrors.KindBootstrap
			}
			return platformerrors.Wrap(kind, step.ID, "bootstrap step failed", err)
		}
		completed[step.ID] = struct{}{}
	}
	return nil
}

func InitGraph() []initStep {
	return []initStep{
		{
			ID:      "config:load",
			Title:   "Load configuration",
			Kind:    platformerrors.KindConfig,
			Execute: loadConfigStep,
		},
		{
			ID:        "logging:init-provider",
			Title:     "Initialise logging provider",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindBootstrap,
			Execute:   initLoggingStep,
		},
		{
			ID:        "storage:open-database",
			Title:     "Open database",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindStorage,
			Execute:   openDatabaseStep,
		},
		{
			ID:        "voices:init-registry",
			Title:     "Initialise voice registry",
			DependsOn: []string{"config:load"},
			Kind:      platformerrors.KindConfig,
			Execute:   initRegistryStep,
		},
		{
			ID:        "tts:init-provider",
			Title:     "Initialise TTS provider",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindSynthesis,
			Execute:   initTTSStep,
		},
		{
			ID:        "script:init-generator",
			Title:     "Initialise script generator",
			DependsOn: []string{"config:load", "logging:init-provider"},
			Kind:      platformerrors.KindScript,
			Execute:   initScriptGeneratorStep,
		},
	}
}

func loadConfigStep(_ context.Context, state *appState) error {
	result, err := platformconfig.NewLoader(state.configPath).Load()
	if err != nil {
		return err
	}
	state.config = result.Config
	return nil
}

func initLoggingStep(_ context.Context, state *appState) error {
	if state == nil || state.config == nil {
		return platformerrors.New(
			platformerrors.KindBootstrap,
			"logging:init-provider",
			"config not loaded",
		)
	}

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    state.config.Log.Level,
		Dir:      state.config.Log.Dir,
		Filename: state.config.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "logging:init-provider", "failed to initialise logging", err)
	}

	state.logger = logger
	platformlogging.DefaultLogger = logger

	logger.InfoTag("BOOT", "logging ready [%s]", state.config.Log.Level)
	return nil
}

func openDatabaseStep(_ context.Context, state *appState) error {
	db, err := platformstorage.Open(state.config.Database.Path)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage, "storage:open-database", "failed to open database", err)
	}
	state.db = db

	state.logger.InfoTag("STORE", "database ready at %s", state.config.Database.Path)
	return nil
}

func initRegistryStep(_ context.Context, state *appState) error {
	speakers := state.config.Speakers
	if speakers.NarratorVoice == "" {
		return platformerrors.New(
			platformerrors.KindConfig,
			"voices:init-registry",
			"narrator_voice is required",
		)
	}
	state.registry = voice.NewRegistry(speakers.NarratorVoice, speakers.Voices)
	return nil
}

func initTTSStep(_ context.Context, state *appState) error {
	selected := state.config.Selected.TTS
	ttsCfg, ok := state.config.TTS[selected]
	if !ok {
		return platformerrors.New(
			platformerrors.KindConfig,
			"tts:init-provider",
			fmt.Sprintf("selected TTS module %q is not configured", selected),
		)
	}

	provider, err := tts.Create(&ttsCfg, state.logger)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindSynthesis, "tts:init-provider", "failed to create TTS provider", err)
	}

	if state.config.Cache.Enabled {
		cached, err := ttscache.Wrap(provider, state.config.Cache, state.logger)
		if err != nil {
			provider.Close()
			return platformerrors.Wrap(platformerrors.KindSynthesis, "tts:init-provider", "failed to attach fragment cache", err)
		}
		provider = cached
		state.logger.InfoTag("TTS", "fragment cache enabled at %s", state.config.Cache.Addr)
	}

	state.provider = provider
	state.logger.InfoTag("TTS", "provider %s ready", selected)
	return nil
}

func initScriptGeneratorStep(_ context.Context, state *appState) error {
	generator, err := script.NewGenerator(state.config.LLM, state.logger)
	if err != nil {
		// Script generation is optional. Without an API key the server still
		// imports conversations and synthesizes caller-supplied scripts.
		state.logger.WarnTag("SCRIPT", "script generator disabled: %v", err)
		return nil
	}
	state.generator = generator
	return nil
}

func startHTTPServer(state *appState, g *errgroup.Group, groupCtx context.Context) (*http.Server, error) {
	config := state.config
	logger := state.logger

	httpRouter, err := httptransport.Build(httptransport.Options{
		Config: config,
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	router := httpRouter.Engine

	router.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api") {
			c.JSON(http.StatusNotFound, httptransport.APIResponse{
				Success: false,
				Data:    gin.H{},
				Message: "api not found",
				Code:    http.StatusNotFound,
			})
			return
		}
		c.File(config.Server.StaticDir + "/index.html")
	})

	svc := services.NewVoiceCastService(
		config,
		logger,
		state.registry,
		state.provider,
		state.generator,
		platformstorage.NewSessionRepository(state.db),
		platformstorage.NewProfileRepository(state.db),
		platformstorage.NewGenerationRepository(state.db),
	)
	httptransport.NewWebAPI(svc, config, logger).RegisterRoutes(httpRouter.API)

	httpServer := &http.Server{
		Addr:    config.Server.IP + ":" + strconv.Itoa(config.Server.Port),
		Handler: router,
	}

	g.Go(func() error {
		logger.InfoTag("HTTP", "server listening on http://%s", httpServer.Addr)

		go func() {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.ErrorTag("HTTP", "server shutdown failed: %v", err)
			} else {
				logger.InfoTag("HTTP", "server shut down cleanly")
			}
		}()

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorTag("HTTP", "server failed: %v", err)
			return err
		}
		return nil
	})

	return httpServer, nil
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	logger *platformlogging.Logger,
	g *errgroup.Group,
) error {
	<-ctx.Done()
	logger.InfoTag("BOOT", "shutdown signal received, cleaning up")

	cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logger.ErrorTag("BOOT", "error during shutdown: %v", err)
			return err
		}
		logger.InfoTag("BOOT", "all services stopped")
	case <-time.After(15 * time.Second):
		logger.ErrorTag("BOOT", "shutdown timed out, exiting")
		return errors.New("shutdown timed out")
	}
	return nil
}
