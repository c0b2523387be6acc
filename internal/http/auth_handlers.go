package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"courseaca-backend-go/internal/models"
	"courseaca-backend-go/internal/services"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
	Role         string `json:"role"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type UserInfoResponse struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// Register creates a student or teacher account. Admin accounts are
// provisioned out of band.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Password) == "" {
		WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	role, ok := services.ParseRole(req.Role)
	if !ok || role == services.RoleAdmin {
		WriteError(w, http.StatusBadRequest, "Role should be STUDENT or TEACHER")
		return
	}
	var exists bool
	if err := s.DB.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = $1)`, email); err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if exists {
		WriteError(w, http.StatusConflict, "User already exists")
		return
	}
	hash, err := s.Tokens.HashPassword(req.Password)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	userID := uuid.NewString()
	_, err = s.DB.Exec(`
INSERT INTO users (id, first_name, last_name, email, password_hash, role, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, userID, strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), email, hash, string(role), time.Now().UTC())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"userId": userID, "email": email})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Password) == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	var user models.User
	if err := s.DB.Get(&user, `SELECT * FROM users WHERE lower(email) = $1`, email); err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	if !s.Tokens.VerifyPassword(req.Password, user.PasswordHash) {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	role, ok := services.ParseRole(user.Role)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.writeTokenPair(w, user.ID, role)
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Authentication failed")
		return
	}
	token, claims, err := s.Tokens.ParseToken(req.RefreshToken)
	if err != nil || !token.Valid || claims["typ"] != "refresh" {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	var rawRole string
	if err := s.DB.Get(&rawRole, `SELECT role FROM users WHERE id = $1`, userID); err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	role, ok := services.ParseRole(rawRole)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.writeTokenPair(w, userID, role)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UserInfo returns the authenticated caller's account.
func (s *Server) UserInfo(w http.ResponseWriter, r *http.Request) {
	identity, _ := CurrentIdentity(r)
	var user models.User
	if err := s.DB.Get(&user, `SELECT * FROM users WHERE id = $1`, identity.UserID); err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	WriteJSON(w, http.StatusOK, UserInfoResponse{
		UserID:    identity.UserID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      string(identity.Role),
	})
}

func (s *Server) writeTokenPair(w http.ResponseWriter, userID string, role services.Role) {
	access, exp, err := s.Tokens.CreateAccessToken(userID, role)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	refresh, err := s.Tokens.CreateRefreshToken(userID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    exp,
		Role:         string(role),
	})
}
