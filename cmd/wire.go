package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/kvist-dev/guestpass/internal/adapters/anythingllm"
	"github.com/kvist-dev/guestpass/internal/adapters/profiles"
	"github.com/kvist-dev/guestpass/internal/adapters/repo/jsonfile"
	chainstore "github.com/kvist-dev/guestpass/internal/adapters/secrets/chain"
	"github.com/kvist-dev/guestpass/internal/application"
	"github.com/kvist-dev/guestpass/internal/ports"
	"github.com/spf13/viper"
)

const (
	configDir  = ".guestpass"
	envPrefix  = "GUESTPASS"
	apiKeyName = "platform/api-key"
)

type app struct {
	cfg        *viper.Viper
	logger     *log.Logger
	clock      ports.Clock
	httpClient *http.Client
	sessions   ports.SessionRepository
	secrets    ports.SecretStore
	status     *application.StatusService
}

func wireApp() (*app, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg := viper.New()
	cfg.SetConfigName("config")
	cfg.SetConfigType("toml")
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault("log.level", "info")
	cfg.SetDefault("platform.base_url", "http://localhost:3001/api")
	cfg.SetDefault("platform.request_timeout", "30s")
	cfg.SetDefault("retry.max_attempts", 3)
	cfg.SetDefault("retry.base_delay", "1s")
	cfg.SetDefault("documents.folder", "custom-documents")
	cfg.SetDefault("documents.attach", true)
	cfg.SetDefault("association.enabled", true)
	cfg.SetDefault("provision.settle_delay", "2s")
	cfg.SetDefault("profiles.path", filepath.Join(homeDir, configDir, "profiles.toml"))

	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if level, err := log.ParseLevel(cfg.GetString("log.level")); err == nil {
		logger.SetLevel(level)
	}

	clock := ports.SystemClock{}

	sessions, err := jsonfile.NewRepository(cfg, clock, logger)
	if err != nil {
		return nil, fmt.Errorf("wire session repository: %w", err)
	}

	secrets, err := chainstore.NewEnvFirstWithFileFallback(envPrefix, filepath.Join(homeDir, configDir, "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		clock:      clock,
		httpClient: http.DefaultClient,
		sessions:   sessions,
		secrets:    secrets,
		status:     application.NewStatusService(sessions),
	}, nil
}

// platform builds the remote client lazily so commands that never touch the
// platform (auth, sessions) work without an API key.
func (a *app) platform(ctx context.Context) (ports.Platform, error) {
	apiKey, err := a.secrets.Get(ctx, apiKeyName)
	if err != nil {
		return nil, fmt.Errorf("resolve platform api key (set %s_PLATFORM_API_KEY or run `guestpass auth set`): %w", envPrefix, err)
	}

	client, err := anythingllm.NewClient(anythingllm.Config{
		BaseURL:         a.cfg.GetString("platform.base_url"),
		APIKey:          apiKey,
		DocumentFolder:  a.cfg.GetString("documents.folder"),
		AttachDocuments: a.cfg.GetBool("documents.attach"),
		AssociateUsers:  a.cfg.GetBool("association.enabled"),
		MaxAttempts:     a.cfg.GetInt("retry.max_attempts"),
		RetryBaseDelay:  a.cfg.GetDuration("retry.base_delay"),
		RequestTimeout:  a.cfg.GetDuration("platform.request_timeout"),
	}, a.httpClient, a.clock, a.logger)
	if err != nil {
		return nil, fmt.Errorf("wire platform client: %w", err)
	}

	return client, nil
}

func (a *app) provisionService(platform ports.Platform) *application.ProvisionService {
	return application.NewProvisionService(platform, a.sessions, a.clock, a.logger, a.cfg.GetDuration("provision.settle_delay"))
}

func (a *app) cleanupService(platform ports.Platform) *application.CleanupService {
	return application.NewCleanupService(platform, a.sessions, a.logger)
}

func (a *app) workspaceProfiles() (*profiles.Set, error) {
	return profiles.Load(a.cfg.GetString("profiles.path"))
}
