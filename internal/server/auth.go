package server

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		s.writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	existing, err := s.db.FindUserByEmail(req.Email)
	if err != nil {
		s.serverError(w, "looking up user", err)
		return
	}
	if existing != nil {
		s.writeError(w, http.StatusConflict, "user already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.serverError(w, "hashing password", err)
		return
	}

	user, err := s.db.CreateUser(req.Username, req.Email, string(hash))
	if err != nil {
		s.serverError(w, "creating user", err)
		return
	}

	token, err := s.tokens.Issue(user.ID, s.clock.Now())
	if err != nil {
		s.serverError(w, "issuing token", err)
		return
	}

	s.logger.Info("user created", "user", user.ID)
	s.writeJSON(w, http.StatusCreated, authResponse{Token: token, UserID: user.ID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.db.FindUserByEmail(req.Email)
	if err != nil {
		s.serverError(w, "looking up user", err)
		return
	}
	if user == nil {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.tokens.Issue(user.ID, s.clock.Now())
	if err != nil {
		s.serverError(w, "issuing token", err)
		return
	}

	s.logger.Info("user logged in", "user", user.ID)
	s.writeJSON(w, http.StatusOK, authResponse{Token: token, UserID: user.ID})
}
