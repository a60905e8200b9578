package server

import (
	"errors"
	"net/http"

	"gitpen-go/internal/gitpen"
)

type repoRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Visibility  *bool  `json:"visibility"`
}

func (s *Server) handleCreateRepo(w http.ResponseWriter, r *http.Request) {
	var req repoRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "repository name is required")
		return
	}

	visibility := true
	if req.Visibility != nil {
		visibility = *req.Visibility
	}

	repo, err := s.db.CreateRepository(requestUserID(r), req.Name, req.Description, visibility)
	if err != nil {
		s.serverError(w, "creating repository", err)
		return
	}

	s.logger.Info("repository created", "repo", repo.ID, "name", repo.Name)
	s.writeJSON(w, http.StatusCreated, repo)
}

func (s *Server) handleListRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := s.db.ListRepositories()
	if err != nil {
		s.serverError(w, "listing repositories", err)
		return
	}
	s.writeJSON(w, http.StatusOK, repos)
}

func (s *Server) handleListReposForUser(w http.ResponseWriter, r *http.Request) {
	repos, err := s.db.ListRepositoriesByOwner(r.PathValue("userID"))
	if err != nil {
		s.serverError(w, "listing user repositories", err)
		return
	}
	s.writeJSON(w, http.StatusOK, repos)
}

func (s *Server) handleGetRepo(w http.ResponseWriter, r *http.Request) {
	repo, err := s.db.FindRepositoryByID(r.PathValue("id"))
	if err != nil {
		s.serverError(w, "fetching repository", err)
		return
	}
	if repo == nil {
		s.writeError(w, http.StatusNotFound, "repository not found")
		return
	}
	s.writeJSON(w, http.StatusOK, repo)
}

func (s *Server) handleGetRepoByName(w http.ResponseWriter, r *http.Request) {
	repo, err := s.db.FindRepositoryByName(r.PathValue("name"))
	if err != nil {
		s.serverError(w, "fetching repository", err)
		return
	}
	if repo == nil {
		s.writeError(w, http.StatusNotFound, "repository not found")
		return
	}
	s.writeJSON(w, http.StatusOK, repo)
}

func (s *Server) handleUpdateRepo(w http.ResponseWriter, r *http.Request) {
	var req repoRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	repo, err := s.db.UpdateRepository(r.PathValue("id"), req.Name, req.Description)
	if err != nil {
		s.serverError(w, "updating repository", err)
		return
	}
	if repo == nil {
		s.writeError(w, http.StatusNotFound, "repository not found")
		return
	}
	s.writeJSON(w, http.StatusOK, repo)
}

func (s *Server) handleToggleRepo(w http.ResponseWriter, r *http.Request) {
	repo, err := s.db.ToggleRepositoryVisibility(r.PathValue("id"))
	if err != nil {
		s.serverError(w, "toggling repository visibility", err)
		return
	}
	if repo == nil {
		s.writeError(w, http.StatusNotFound, "repository not found")
		return
	}
	s.writeJSON(w, http.StatusOK, repo)
}

func (s *Server) handleDeleteRepo(w http.ResponseWriter, r *http.Request) {
	err := s.db.DeleteRepository(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, gitpen.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "repository not found")
			return
		}
		s.serverError(w, "deleting repository", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "repository deleted"})
}

// Listing endpoints proxy the remote object store.

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, folders, err := s.svc.ListFiles(r.Context(), r.PathValue("id"))
	if err != nil {
		s.serverError(w, "listing repository files", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"files":           files,
		"folderStructure": folders,
	})
}

func (s *Server) handleListCommits(w http.ResponseWriter, r *http.Request) {
	commits, err := s.svc.ListCommits(r.Context(), r.PathValue("id"))
	if err != nil {
		s.serverError(w, "listing commits", err)
		return
	}
	s.writeJSON(w, http.StatusOK, commits)
}

func (s *Server) handleCommitCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.svc.CommitCounts(r.Context(), r.PathValue("id"))
	if err != nil {
		s.serverError(w, "counting commits", err)
		return
	}
	s.writeJSON(w, http.StatusOK, counts)
}

// handleUserCommitCounts aggregates the per-day histogram across every
// repository the user owns. Same-day commits in different repositories
// share a bucket.
func (s *Server) handleUserCommitCounts(w http.ResponseWriter, r *http.Request) {
	repos, err := s.db.ListRepositoriesByOwner(r.PathValue("userID"))
	if err != nil {
		s.serverError(w, "listing user repositories", err)
		return
	}

	var commits []gitpen.CommitRecord
	for _, repo := range repos {
		rc, err := s.svc.ListCommits(r.Context(), repo.ID)
		if err != nil {
			s.serverError(w, "listing commits", err)
			return
		}
		commits = append(commits, rc...)
	}
	s.writeJSON(w, http.StatusOK, gitpen.CountByDay(commits))
}
