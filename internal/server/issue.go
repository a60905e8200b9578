package server

import (
	"errors"
	"net/http"

	"gitpen-go/internal/gitpen"
)

type issueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		s.writeError(w, http.StatusBadRequest, "issue title is required")
		return
	}

	repoID := r.PathValue("repoID")
	repo, err := s.db.FindRepositoryByID(repoID)
	if err != nil {
		s.serverError(w, "looking up repository", err)
		return
	}
	if repo == nil {
		s.writeError(w, http.StatusNotFound, "repository not found")
		return
	}

	issue, err := s.db.CreateIssue(repoID, req.Title, req.Description)
	if err != nil {
		s.serverError(w, "creating issue", err)
		return
	}

	s.logger.Info("issue created", "issue", issue.ID, "repo", repoID)
	s.writeJSON(w, http.StatusCreated, issue)
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.db.ListIssuesByRepository(r.PathValue("repoID"))
	if err != nil {
		s.serverError(w, "listing issues", err)
		return
	}
	s.writeJSON(w, http.StatusOK, issues)
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	issue, err := s.db.FindIssueByID(r.PathValue("id"))
	if err != nil {
		s.serverError(w, "fetching issue", err)
		return
	}
	if issue == nil {
		s.writeError(w, http.StatusNotFound, "issue not found")
		return
	}
	s.writeJSON(w, http.StatusOK, issue)
}

func (s *Server) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status == "" {
		req.Status = "open"
	}

	issue, err := s.db.UpdateIssue(r.PathValue("id"), req.Title, req.Description, req.Status)
	if err != nil {
		s.serverError(w, "updating issue", err)
		return
	}
	if issue == nil {
		s.writeError(w, http.StatusNotFound, "issue not found")
		return
	}
	s.writeJSON(w, http.StatusOK, issue)
}

func (s *Server) handleDeleteIssue(w http.ResponseWriter, r *http.Request) {
	err := s.db.DeleteIssue(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, gitpen.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "issue not found")
			return
		}
		s.serverError(w, "deleting issue", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "issue deleted"})
}
