package delivery

import (
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/dreamcatcher/internal/notificator"
	"github.com/Vovarama1992/dreamcatcher/internal/ports"
)

type DreamHandler struct {
	dreams ports.DreamService
	log    *logger.ZapLogger
}

func NewDreamHandler(dreams ports.DreamService, log *logger.ZapLogger) *DreamHandler {
	return &DreamHandler{
		dreams: dreams,
		log:    log,
	}
}

// GET /dreams: сны текущего пользователя, новые сверху. При ошибке список пустой.
func (h *DreamHandler) List(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	dreams, err := h.dreams.List(r.Context(), user.ID)
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "db error", Error: err})
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"dreams": []ports.DreamRecord{},
			"event":  notificator.Failure(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"dreams": dreams})
}
