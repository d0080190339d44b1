package server

import (
	"context"
	"net/http"

	apperrors "github.com/bountyhub/bountyhub/pkg/errors"
	"github.com/bountyhub/bountyhub/pkg/session"
)

// sessionCookie is the cookie carrying the session ID.
const sessionCookie = "bountyhub_session"

// handleLogin starts the OAuth flow: generate a single-use state token
// and redirect the browser to GitHub's authorization page.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := s.states.Generate(r.Context(), session.DefaultStateTTL)
	if err != nil {
		s.logger.Error("state generation failed", "err", err)
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "could not start login")
		return
	}
	http.Redirect(w, r, s.oauth.AuthorizationURL(state), http.StatusFound)
}

// handleCallback finishes the OAuth flow: validate the state token,
// exchange the code for an access token, and establish a session.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		respondError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "missing code or state")
		return
	}

	ok, err := s.states.Validate(ctx, state)
	if err != nil {
		s.logger.Error("state validation failed", "err", err)
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "could not validate login")
		return
	}
	if !ok {
		respondError(w, http.StatusForbidden, apperrors.ErrCodeForbidden, "invalid or expired state token")
		return
	}

	token, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Error("code exchange failed", "err", err)
		respondError(w, http.StatusBadGateway, apperrors.ErrCodeNetwork, "github code exchange failed")
		return
	}

	gh, err := s.newGH(token.AccessToken)
	if err != nil {
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "could not create api client")
		return
	}
	user, err := gh.FetchUser(ctx)
	if err != nil {
		s.logger.Error("user fetch failed", "err", err)
		respondError(w, http.StatusBadGateway, apperrors.ErrCodeNetwork, "could not fetch github user")
		return
	}

	sess, err := session.New(token.AccessToken, user, session.DefaultTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "could not create session")
		return
	}
	if err := s.sessions.Set(ctx, sess); err != nil {
		s.logger.Error("session store failed", "err", err)
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "could not store session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})

	s.logger.Info("user logged in", "user", user.Login)
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout deletes the session and clears the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if err := s.sessions.Delete(r.Context(), cookie.Value); err != nil {
			s.logger.Warn("session delete failed", "err", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

const sessionKey ctxKey = 0

// requireSession authenticates API requests via the session cookie.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil {
			respondError(w, http.StatusUnauthorized, apperrors.ErrCodeUnauthorized, "not logged in")
			return
		}

		sess, err := s.sessions.Get(r.Context(), cookie.Value)
		if err != nil || sess == nil {
			respondError(w, http.StatusUnauthorized, apperrors.ErrCodeSessionExpired, "session expired")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

// sessionFromContext retrieves the session attached by requireSession.
func sessionFromContext(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey).(*session.Session)
	return sess
}

// githubForSession builds an API client for the session's access token.
func (s *Server) githubForSession(sess *session.Session) (GitHub, error) {
	return s.newGH(sess.AccessToken)
}
