package delivery

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/dreamcatcher/internal/notificator"
	"github.com/Vovarama1992/dreamcatcher/internal/ports"
	"github.com/Vovarama1992/dreamcatcher/internal/recorder"
)

// ShellHandler отдаёт дашборд (пользователь, рекордер, список снов) и делает выход.
type ShellHandler struct {
	auth      ports.AuthService
	dreams    ports.DreamService
	recorders *recorder.Manager
	log       *logger.ZapLogger
}

func NewShellHandler(auth ports.AuthService, dreams ports.DreamService, recorders *recorder.Manager, log *logger.ZapLogger) *ShellHandler {
	return &ShellHandler{
		auth:      auth,
		dreams:    dreams,
		recorders: recorders,
		log:       log,
	}
}

func (h *ShellHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	resp := map[string]any{
		"title":    "Welcome to Dreamcatcher, " + user.Email,
		"user":     user,
		"recorder": h.recorders.Get(user.ID).Status(),
	}

	dreams, err := h.dreams.List(r.Context(), user.ID)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "dashboard: list dreams", Error: err})
		resp["dreams"] = []ports.DreamRecord{}
		resp["event"] = notificator.Failure(err)
	} else {
		resp["dreams"] = dreams
	}

	writeJSON(w, http.StatusOK, resp)
}

// Logout: при ошибке сессия остаётся как была
func (h *ShellHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := h.auth.SignOut(r.Context(), tokenFromContext(r.Context())); err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "sign out failed", Error: err})
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.recorders.Forget(user.ID)
	writeJSON(w, http.StatusOK, map[string]any{"redirect": "/"})
}
