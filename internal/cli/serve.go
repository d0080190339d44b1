package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bountyhub/bountyhub/internal/config"
	"github.com/bountyhub/bountyhub/internal/server"
	"github.com/bountyhub/bountyhub/internal/service"
	"github.com/bountyhub/bountyhub/pkg/integrations/github"
	"github.com/bountyhub/bountyhub/pkg/session"
	"github.com/bountyhub/bountyhub/pkg/storage"
)

// serveCommand creates the serve command that runs the HTTP server.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the BountyHub HTTP server",
		Long: `Start the BountyHub server: GitHub OAuth login, the webhook
delivery endpoint, and the JSON API for managing bounties.

Configuration is read from bountyhub.toml (or --config) with secrets
overridable via BOUNTYHUB_* environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			store, err := newStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close(context.Background())

			sessions, states, err := newSessionStores(ctx, cfg)
			if err != nil {
				return err
			}

			svc := service.New(store, service.HookConfig{
				URL:    cfg.WebhookURL(),
				Secret: cfg.GitHub.WebhookSecret,
			}, logger)

			oauth := github.NewOAuthClient(github.OAuthConfig{
				ClientID:     cfg.GitHub.ClientID,
				ClientSecret: cfg.GitHub.ClientSecret,
				RedirectURI:  cfg.RedirectURL(),
			})

			factory := func(token string) (server.GitHub, error) {
				return github.NewClient(token, cfg.GitHubCacheTTL())
			}

			srv, err := server.New(cfg, svc, sessions, states, oauth, factory, logger)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.DefaultPath, "path to config file")
	return cmd
}

// newStore builds the bounty store selected by the config.
func newStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.Storage.Backend {
	case "mongo":
		return storage.NewMongoStore(ctx, storage.MongoConfig{
			URI:      cfg.Storage.MongoURI,
			Database: cfg.Storage.MongoDatabase,
		})
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newSessionStores builds the session and OAuth state stores selected by
// the config.
func newSessionStores(ctx context.Context, cfg config.Config) (session.Store, session.StateStore, error) {
	switch cfg.Session.Backend {
	case "redis":
		rcfg := session.RedisConfig{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
			DB:       cfg.Session.RedisDB,
		}
		sessions, err := session.NewRedisStore(ctx, rcfg)
		if err != nil {
			return nil, nil, err
		}
		states, err := session.NewRedisStateStore(ctx, rcfg)
		if err != nil {
			return nil, nil, err
		}
		return sessions, states, nil
	case "memory":
		return session.NewMemoryStore(), session.NewMemoryStateStore(), nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
