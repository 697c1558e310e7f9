package delivery

import (
	"encoding/json"
	"net/http"

	"github.com/Vovarama1992/dreamcatcher/internal/notificator"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError: ошибка уходит клиенту как destructive-событие с сырым текстом
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"event": notificator.Failure(err)})
}
