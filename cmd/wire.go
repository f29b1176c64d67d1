package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bnema/wallet-accounts-cli/internal/adapters/notify/terminal"
	"github.com/bnema/wallet-accounts-cli/internal/adapters/quotes/alphavantage"
	statusadapter "github.com/bnema/wallet-accounts-cli/internal/adapters/render/status"
	redisrepo "github.com/bnema/wallet-accounts-cli/internal/adapters/repo/redis"
	tomlrepo "github.com/bnema/wallet-accounts-cli/internal/adapters/repo/toml"
	"github.com/bnema/wallet-accounts-cli/internal/adapters/resolver"
	chainstore "github.com/bnema/wallet-accounts-cli/internal/adapters/secrets/chain"
	localwallet "github.com/bnema/wallet-accounts-cli/internal/adapters/wallet/local"
	"github.com/bnema/wallet-accounts-cli/internal/application"
	"github.com/bnema/wallet-accounts-cli/internal/domain"
	"github.com/bnema/wallet-accounts-cli/internal/logger"
	"github.com/bnema/wallet-accounts-cli/internal/ports"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	keyProfilesBackend   = "profiles.backend"
	keyRedisAddr         = "redis.addr"
	keyRedisPrefix       = "redis.prefix"
	keyResolverBaseURL   = "resolver.base_url"
	keyResolverCacheDir  = "resolver.cache_dir"
	keyWalletAddresses   = "wallet.addresses"
	keyReconnectInterval = "reconnect.interval"
	keyReconnectAttempts = "reconnect.attempts"
	keyPortfolioBaseURL  = "portfolio.base_url"
	keyPortfolioSymbol   = "portfolio.symbol"
	keyLogDev            = "log.dev"

	backendTOML  = "toml"
	backendRedis = "redis"

	envAlphaVantageKey = "WA_ALPHA_VANTAGE_API_KEY"
)

type app struct {
	cfg         *viper.Viper
	logger      zerolog.Logger
	reconciler  *application.Reconciler
	provider    *localwallet.Provider
	sessions    ports.SessionStore
	credentials ports.CredentialStore
	notifier    *terminal.Notifier
	out         *switchWriter
	picker      *walletPicker

	statusRenderer func(application.Status, statusadapter.RenderOptions) (string, error)
	httpClient     *http.Client
	now            func() time.Time
	closers        []func() error
}

func wireApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.Setup(cfg.GetBool(keyLogDev))
	clock := ports.SystemClock{}
	out := &switchWriter{w: os.Stdout}
	notifier := terminal.New(out, log)
	picker := &walletPicker{}

	providerRepo, err := tomlrepo.NewProviderSessionRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire provider session repository: %w", err)
	}
	provider := localwallet.NewProvider(providerRepo, picker.Select, clock)

	sessions, err := tomlrepo.NewSessionRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	a := &app{
		cfg:            cfg,
		logger:         log,
		provider:       provider,
		sessions:       sessions,
		notifier:       notifier,
		out:            out,
		picker:         picker,
		statusRenderer: statusadapter.Render,
		httpClient:     http.DefaultClient,
		now:            time.Now,
	}

	profiles, err := a.wireProfileStore(clock)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	a.credentials, err = chainstore.NewPassFirstWithFileFallback("", filepath.Join(homeDir, tomlrepo.ConfigDir, "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire credential store chain: %w", err)
	}

	var names ports.NameResolver
	if baseURL := cfg.GetString(keyResolverBaseURL); baseURL != "" {
		names = resolver.Client{
			BaseURL:    baseURL,
			HTTPClient: resolver.NewCachingHTTPClient(cfg.GetString(keyResolverCacheDir)),
		}
	}

	a.reconciler = application.NewReconciler(application.ReconcilerDeps{
		Provider: provider,
		Resolver: names,
		Profiles: profiles,
		Sessions: sessions,
		Notifier: notifier,
		Clock:    clock,
	}, application.ReconcilerOptions{
		Budget: application.WaitBudget{
			Interval: cfg.GetDuration(keyReconnectInterval),
			Attempts: cfg.GetInt(keyReconnectAttempts),
		},
		Logger: &log,
	})

	return a, nil
}

func (a *app) wireProfileStore(clock ports.Clock) (ports.ProfileStore, error) {
	switch backend := strings.ToLower(a.cfg.GetString(keyProfilesBackend)); backend {
	case "", backendTOML:
		repo, err := tomlrepo.NewProfileRepository(a.cfg, clock)
		if err != nil {
			return nil, fmt.Errorf("wire profile repository: %w", err)
		}
		return repo, nil
	case backendRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		store, err := redisrepo.NewProfileStore(ctx, redisrepo.Config{
			Addr:   a.cfg.GetString(keyRedisAddr),
			Prefix: a.cfg.GetString(keyRedisPrefix),
		}, clock)
		if err != nil {
			return nil, fmt.Errorf("wire redis profile store: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported %s %q (want %s or %s)", keyProfilesBackend, backend, backendTOML, backendRedis)
	}
}

// seedKnownWallets registers wallet.addresses from config with the provider.
func (a *app) seedKnownWallets(ctx context.Context) error {
	for _, address := range a.cfg.GetStringSlice(keyWalletAddresses) {
		if _, err := a.provider.AddWallet(ctx, address); err != nil {
			return fmt.Errorf("register configured wallet %q: %w", address, err)
		}
	}
	return nil
}

func (a *app) quoteSource(ctx context.Context) (ports.QuoteSource, error) {
	apiKey, err := a.credentials.Get(ctx, domain.AlphaVantageAPIKey)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		zerolog.Ctx(ctx).Debug().Err(err).Msg("alpha vantage key not in credential store")
		apiKey = envOrDefault(envAlphaVantageKey, "")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: run `wa portfolio set-key` or set %s", alphavantage.ErrAPIKeyRequired, envAlphaVantageKey)
	}

	return alphavantage.Client{
		BaseURL:    a.cfg.GetString(keyPortfolioBaseURL),
		APIKey:     apiKey,
		HTTPClient: a.httpClient,
	}, nil
}

func (a *app) close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

func loadConfig() (*viper.Viper, error) {
	cfg := viper.New()
	cfg.SetConfigName("config")
	cfg.SetConfigType("toml")
	if homeDir, err := os.UserHomeDir(); err == nil {
		cfg.AddConfigPath(filepath.Join(homeDir, tomlrepo.ConfigDir))
	}

	cfg.SetEnvPrefix("WA")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault(keyProfilesBackend, backendTOML)
	cfg.SetDefault(keyRedisAddr, "127.0.0.1:6379")
	cfg.SetDefault(keyRedisPrefix, redisrepo.DefaultPrefix)
	cfg.SetDefault(keyReconnectInterval, application.DefaultWaitBudget.Interval)
	cfg.SetDefault(keyReconnectAttempts, application.DefaultWaitBudget.Attempts)
	cfg.SetDefault(keyPortfolioBaseURL, alphavantage.DefaultBaseURL)
	cfg.SetDefault(keyPortfolioSymbol, application.DefaultProbeSymbol)
	cfg.SetDefault(keyLogDev, false)

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// switchWriter lets toasts follow the running command's output stream.
type switchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *switchWriter) set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
