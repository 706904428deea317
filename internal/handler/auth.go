package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/colegiosync/colegiosync/internal/auth"
	"github.com/colegiosync/colegiosync/internal/middleware"
	"github.com/colegiosync/colegiosync/internal/model"
	"github.com/colegiosync/colegiosync/internal/store"
	"github.com/colegiosync/colegiosync/internal/token"
)

type AuthHandler struct {
	users  *store.UserStore
	tokens *token.Service
	logger *slog.Logger
}

func NewAuthHandler(us *store.UserStore, ts *token.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: us, tokens: ts, logger: logger}
}

// setAuthCookie writes the session cookie. SameSite=None because the SPA is
// served from a different origin than the API.
func (h *AuthHandler) setAuthCookie(w http.ResponseWriter, signed string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(token.TTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)

	if req.Email == "" || req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email, nombre y contraseña son requeridos")
		return
	}

	role := auth.RoleParent
	if req.Role != "" {
		parsed, err := auth.ParseRole(req.Role)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Rol inválido")
			return
		}
		role = parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al registrar usuario")
		return
	}

	user, err := h.users.Create(req.Email, req.Name, string(hash), role)
	if err == store.ErrDuplicate {
		writeError(w, http.StatusConflict, "El email ya está registrado")
		return
	}
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al registrar usuario")
		return
	}

	signed, err := h.tokens.Issue(user.Identity())
	if err != nil {
		h.logger.Error("issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al registrar usuario")
		return
	}
	h.setAuthCookie(w, signed)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email y contraseña son requeridos")
		return
	}

	user, err := h.users.GetByEmail(strings.TrimSpace(req.Email))
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al iniciar sesión")
		return
	}
	// Missing user and wrong password answer identically.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}

	signed, err := h.tokens.Issue(user.Identity())
	if err != nil {
		h.logger.Error("issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al iniciar sesión")
		return
	}
	h.setAuthCookie(w, signed)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    user,
	})
}

// Logout handles POST /auth/logout. The token stays valid until expiry;
// logout only clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
	writeSuccess(w)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get current user", "error", err)
		writeError(w, http.StatusInternalServerError, "Error al obtener usuario")
		return
	}
	if user == nil {
		// Valid token for an account deleted since issuance.
		writeError(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, map[string]*model.User{"user": user})
}
