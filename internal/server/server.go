// Package server implements the BountyHub HTTP server: GitHub OAuth
// login, the webhook delivery endpoint, and a JSON API for managing
// bounties and watched repositories.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bountyhub/bountyhub/internal/config"
	"github.com/bountyhub/bountyhub/internal/service"
	apperrors "github.com/bountyhub/bountyhub/pkg/errors"
	"github.com/bountyhub/bountyhub/pkg/integrations/github"
	"github.com/bountyhub/bountyhub/pkg/session"
)

// OAuth is the OAuth surface the server needs. *github.OAuthClient
// satisfies it; tests substitute a fake.
type OAuth interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*github.OAuthToken, error)
}

// GitHub extends the service's API surface with the user-facing reads
// the server exposes. *github.Client satisfies it.
type GitHub interface {
	service.GitHubClient
	FetchUser(ctx context.Context) (*github.User, error)
	FetchAdminRepos(ctx context.Context) ([]github.Repo, error)
}

// GitHubFactory builds an API client for an OAuth access token. One
// client per session token keeps each user within their own rate limit.
type GitHubFactory func(token string) (GitHub, error)

// Server is the BountyHub HTTP server.
type Server struct {
	cfg      config.Config
	svc      *service.Service
	sessions session.Store
	states   session.StateStore
	oauth    OAuth
	newGH    GitHubFactory
	bot      GitHub
	logger   *log.Logger

	http *http.Server
}

// New assembles a Server. The bot client (from config's api_token) is
// used for webhook-driven updates that run outside any user session.
func New(cfg config.Config, svc *service.Service, sessions session.Store, states session.StateStore, oauth OAuth, factory GitHubFactory, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	bot, err := factory(cfg.GitHub.APIToken)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		svc:      svc,
		sessions: sessions,
		states:   states,
		oauth:    oauth,
		newGH:    factory,
		bot:      bot,
		logger:   logger,
	}
	s.http = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)

	r.Get("/auth/github/login", s.handleLogin)
	r.Get("/auth/github/callback", s.handleCallback)
	r.Post("/auth/logout", s.handleLogout)

	r.Post("/webhooks/github", s.handleWebhook)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.requireSession)

		r.Get("/user", s.handleUser)
		r.Get("/repos", s.handleListRepos)
		r.Post("/repos/{owner}/{repo}/watch", s.handleWatchRepo)
		r.Delete("/repos/{owner}/{repo}/watch", s.handleUnwatchRepo)
		r.Get("/repos/{owner}/{repo}/bounties", s.handleRepoBounties)

		r.Post("/bounties", s.handleOpenBounty)
		r.Get("/bounties", s.handleListBounties)
		r.Get("/bounties/{id}", s.handleGetBounty)
		r.Post("/bounties/{id}/paid", s.handleMarkPaid)
		r.Post("/bounties/{id}/cancel", s.handleCancel)
	})

	return r
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves HTTP until ctx is cancelled, then drains in-flight
// requests for up to 10 seconds.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Server.Addr, "base_url", s.cfg.Server.BaseURL)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// logRequests logs each request with method, path, status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code apperrors.Code, msg string) {
	respondJSON(w, status, map[string]string{"code": string(code), "error": msg})
}

// repoParams pulls and validates the owner/repo URL parameters.
func repoParams(r *http.Request) (owner, repo string, err error) {
	owner = chi.URLParam(r, "owner")
	repo = chi.URLParam(r, "repo")
	if err := github.ValidateRepoRef(owner, repo); err != nil {
		return "", "", err
	}
	return owner, repo, nil
}

// secureCookies reports whether the deployment is served over HTTPS.
func (s *Server) secureCookies() bool {
	return strings.HasPrefix(s.cfg.Server.BaseURL, "https://")
}
