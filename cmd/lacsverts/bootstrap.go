package main

import (
	"fmt"

	"lacsverts/cmd/lacsverts/app"
	"lacsverts/internal/api"
	"lacsverts/internal/auth"
	"lacsverts/internal/browser"
	"lacsverts/internal/config"
	"lacsverts/internal/logging"
	"lacsverts/internal/session"

	"go.uber.org/zap"
)

// runtimeEnv is everything a command needs, built from the config file,
// the environment and the global flags.
type runtimeEnv struct {
	cfg     *config.Config
	client  *api.Client
	store   session.Store
	gateway *auth.Gateway
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	if backendURLFlag != "" {
		cfg.BackendURL = backendURLFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func bootstrap() (*runtimeEnv, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if err := logging.Initialize(logging.Options{
		Enabled:    cfg.Logging.Enabled,
		Level:      cfg.Logging.Level,
		Dir:        cfg.Logging.Dir,
		Categories: cfg.Logging.Categories,
	}); err != nil {
		logger.Warn("file logging disabled", zap.Error(err))
	}
	if verbose {
		_ = logging.SetLevel("debug")
	}
	logging.Get(logging.CategoryBoot).Info("starting",
		zap.String("backend", cfg.BackendURL),
		zap.String("session_backend", cfg.Session.Backend))

	opts := []api.Option{api.WithLogger(logging.Get(logging.CategoryAPI))}
	if d := cfg.GetRequestTimeout(); d > 0 {
		opts = append(opts, api.WithTimeout(d))
	}
	if cfg.HTTP.UserAgent != "" {
		opts = append(opts, api.WithUserAgent(cfg.HTTP.UserAgent))
	}
	client, err := api.New(cfg.BackendURL, opts...)
	if err != nil {
		return nil, err
	}

	store, err := session.Open(cfg.Session.Backend, cfg.Session.Path)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	return &runtimeEnv{
		cfg:     cfg,
		client:  client,
		store:   store,
		gateway: auth.NewGateway(cfg.Auth.ProviderURL, client, store),
	}, nil
}

// authFlow builds the login flow. withBrowser drives a controlled browser.
func (e *runtimeEnv) authFlow(withBrowser bool) *app.AuthFlow {
	flow := &app.AuthFlow{
		Gateway:      e.gateway,
		CallbackAddr: e.cfg.Auth.CallbackAddr,
		LoginTimeout: e.cfg.GetLoginTimeout(),
	}
	if withBrowser {
		flow.Browser = browser.NewLogin(browser.Config{Headless: e.cfg.Auth.Headless})
	}
	return flow
}

func (e *runtimeEnv) currentSession() session.Session {
	sess, err := session.Current(e.store)
	if err != nil {
		logger.Warn("failed to read session", zap.Error(err))
		return session.Anonymous()
	}
	return sess
}

func (e *runtimeEnv) Close() {
	e.client.Close()
	if err := session.Close(e.store); err != nil {
		logger.Warn("failed to close session store", zap.Error(err))
	}
	logging.CloseAll()
}
