package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bountyhub/bountyhub/internal/service"
	"github.com/bountyhub/bountyhub/pkg/bounty"
	apperrors "github.com/bountyhub/bountyhub/pkg/errors"
)

// handleUser returns the logged-in user's GitHub profile.
func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	respondJSON(w, http.StatusOK, sess.User)
}

// handleListRepos lists the repositories the user administers, i.e. the
// repositories that can be watched for bounties.
func (s *Server) handleListRepos(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	gh, err := s.githubForSession(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "could not create api client")
		return
	}

	repos, err := gh.FetchAdminRepos(r.Context())
	if err != nil {
		s.logger.Error("repo listing failed", "user", sess.User.Login, "err", err)
		respondError(w, http.StatusBadGateway, apperrors.ErrCodeNetwork, "could not list repositories")
		return
	}
	respondJSON(w, http.StatusOK, repos)
}

func (s *Server) handleWatchRepo(w http.ResponseWriter, r *http.Request) {
	owner, repo, err := repoParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidRepo, err.Error())
		return
	}

	sess := sessionFromContext(r.Context())
	gh, err := s.githubForSession(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "could not create api client")
		return
	}

	hook, err := s.svc.WatchRepo(r.Context(), gh, owner, repo)
	if err != nil {
		s.logger.Error("watch failed", "repo", owner+"/"+repo, "err", err)
		respondError(w, http.StatusBadGateway, apperrors.ErrCodeNetwork, "could not install webhook")
		return
	}
	respondJSON(w, http.StatusCreated, hook)
}

func (s *Server) handleUnwatchRepo(w http.ResponseWriter, r *http.Request) {
	owner, repo, err := repoParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidRepo, err.Error())
		return
	}

	sess := sessionFromContext(r.Context())
	gh, err := s.githubForSession(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "could not create api client")
		return
	}

	if err := s.svc.UnwatchRepo(r.Context(), gh, owner, repo); err != nil {
		s.logger.Error("unwatch failed", "repo", owner+"/"+repo, "err", err)
		respondError(w, http.StatusBadGateway, apperrors.ErrCodeNetwork, "could not remove webhook")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRepoBounties(w http.ResponseWriter, r *http.Request) {
	owner, repo, err := repoParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidRepo, err.Error())
		return
	}

	bounties, err := s.svc.ListByRepo(r.Context(), owner, repo)
	if err != nil {
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "could not list bounties")
		return
	}
	if bounties == nil {
		bounties = []*bounty.Bounty{}
	}
	respondJSON(w, http.StatusOK, bounties)
}

// openBountyRequest is the POST /bounties payload.
type openBountyRequest struct {
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	IssueNumber int    `json:"issue_number"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

func (s *Server) handleOpenBounty(w http.ResponseWriter, r *http.Request) {
	var req openBountyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "invalid json body")
		return
	}

	sess := sessionFromContext(r.Context())
	gh, err := s.githubForSession(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "could not create api client")
		return
	}

	b, err := s.svc.OpenBounty(r.Context(), gh, service.OpenParams{
		Owner:       req.Owner,
		Repo:        req.Repo,
		IssueNumber: req.IssueNumber,
		AmountCents: req.AmountCents,
		Currency:    req.Currency,
		Funder:      sess.User.Login,
	})
	if err != nil {
		if errors.Is(err, bounty.ErrInvalidAmount) {
			respondError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidAmount, err.Error())
			return
		}
		s.logger.Error("open bounty failed", "repo", req.Owner+"/"+req.Repo, "err", err)
		respondError(w, http.StatusUnprocessableEntity, apperrors.ErrCodeInvalidInput, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, b)
}

func (s *Server) handleListBounties(w http.ResponseWriter, r *http.Request) {
	status := bounty.Status(r.URL.Query().Get("status"))
	if status == "" {
		status = bounty.StatusOpen
	}
	if !status.Valid() {
		respondError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidStatus, "unknown status "+string(status))
		return
	}

	bounties, err := s.svc.ListByStatus(r.Context(), status)
	if err != nil {
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "could not list bounties")
		return
	}
	if bounties == nil {
		bounties = []*bounty.Bounty{}
	}
	respondJSON(w, http.StatusOK, bounties)
}

func (s *Server) handleGetBounty(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if service.IsNotFound(err) {
		respondError(w, http.StatusNotFound, apperrors.ErrCodeBountyNotFound, "bounty not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "could not load bounty")
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.svc.MarkPaid)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.svc.Cancel)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, gh service.GitHubClient, id string) (*bounty.Bounty, error)) {
	sess := sessionFromContext(r.Context())
	gh, err := s.githubForSession(sess)
	if err != nil {
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "could not create api client")
		return
	}

	b, err := op(r.Context(), gh, chi.URLParam(r, "id"))
	if service.IsNotFound(err) {
		respondError(w, http.StatusNotFound, apperrors.ErrCodeBountyNotFound, "bounty not found")
		return
	}
	if errors.Is(err, bounty.ErrInvalidTransition) {
		respondError(w, http.StatusConflict, apperrors.ErrCodeInvalidTransition, err.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, b)
}
