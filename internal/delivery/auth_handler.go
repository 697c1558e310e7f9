package delivery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/dreamcatcher/internal/domain"
	"github.com/Vovarama1992/dreamcatcher/internal/notificator"
	"github.com/Vovarama1992/dreamcatcher/internal/ports"
)

type AuthHandler struct {
	auth ports.AuthService
	log  *logger.ZapLogger
}

func NewAuthHandler(auth ports.AuthService, log *logger.ZapLogger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid json"))
		return
	}

	if _, err := h.auth.SignUp(r.Context(), req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, ports.ErrEmailTaken):
			writeError(w, http.StatusConflict, err)
		case errors.Is(err, domain.ErrInvalidEmail), errors.Is(err, domain.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, err)
		default:
			h.log.Log(logger.LogEntry{Level: "error", Message: "sign up failed", Error: err})
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"event":    notificator.Success("Registration successful. Please check your email to verify your account."),
		"redirect": "/login",
	})
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing token"))
		return
	}

	if _, err := h.auth.VerifyEmail(r.Context(), token); err != nil {
		if errors.Is(err, ports.ErrTokenNotFound) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		h.log.Log(logger.LogEntry{Level: "error", Message: "verify failed", Error: err})
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"event":    notificator.Success("Email confirmed. You can log in now."),
		"redirect": "/login",
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid json"))
		return
	}

	token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, err)
		case errors.Is(err, domain.ErrNotVerified):
			writeError(w, http.StatusForbidden, err)
		default:
			h.log.Log(logger.LogEntry{Level: "error", Message: "login failed", Error: err})
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":    token,
		"redirect": "/dashboard",
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, UserFromContext(r.Context()))
}
