package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/swahili-learn/backend/internal/auth"
	"github.com/swahili-learn/backend/internal/user"
)

type registerReq struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=guest student instructor"`
}

// POST /auth/register
// Admin accounts are never self-service; the role defaults to student.
func RegisterHandler(users *user.SQLStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.Role == "" {
			req.Role = user.RoleStudent
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeErr(w, err)
			return
		}
		u := user.User{
			ID:           uuid.NewString(),
			Username:     req.Username,
			Role:         req.Role,
			PasswordHash: hash,
			CreatedAt:    time.Now().Unix(),
		}
		if err := users.Create(r.Context(), u); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /auth/login
func LoginHandler(users *user.SQLStore, authSvc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, "bad request: "+err.Error(), http.StatusBadRequest)
			return
		}
		u, err := users.GetByUsername(r.Context(), req.Username)
		if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := authSvc.Issue(u.ID, u.Role)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access_token": tok, "role": u.Role})
	}
}
