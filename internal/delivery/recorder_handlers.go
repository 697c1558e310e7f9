package delivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/dreamcatcher/internal/notificator"
	"github.com/Vovarama1992/dreamcatcher/internal/recorder"
	"github.com/Vovarama1992/dreamcatcher/internal/workflow"
)

// DreamUploader: цепочка upload → transcribe → interpret → insert
type DreamUploader interface {
	Run(ctx context.Context, ownerID string, blob []byte) (*workflow.Result, error)
}

type RecorderHandler struct {
	recorders *recorder.Manager
	uploader  DreamUploader
	log       *logger.ZapLogger
}

func NewRecorderHandler(recorders *recorder.Manager, uploader DreamUploader, log *logger.ZapLogger) *RecorderHandler {
	return &RecorderHandler{
		recorders: recorders,
		uploader:  uploader,
		log:       log,
	}
}

func (h *RecorderHandler) Status(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, h.recorders.Get(user.ID).Status())
}

// POST /recorder/record: тело запроса и есть поток с микрофона.
// Ответ приходит, когда запись остановлена: клиентом, по /recorder/stop или по потолку.
func (h *RecorderHandler) Record(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	rec := h.recorders.Get(user.ID)

	rc := http.NewResponseController(w)
	mic := recorder.NewStreamMicrophone(r.Body).WithInterrupt(func() error {
		return rc.SetReadDeadline(time.Now())
	})

	done, err := rec.Start(r.Context(), mic)
	if err != nil {
		h.writeRecorderError(w, err)
		return
	}

	select {
	case <-done:
	case <-r.Context().Done():
		_ = rec.Stop()
		<-done
	}

	st := rec.Status()
	if st.State == recorder.StateIdle && st.Error != "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"recorder": st,
			"event":    notificator.Failure(errors.New(st.Error)),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recorder": st})
}

func (h *RecorderHandler) Stop(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	rec := h.recorders.Get(user.ID)

	if err := rec.Stop(); err != nil {
		h.writeRecorderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recorder": rec.Status()})
}

func (h *RecorderHandler) Upload(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	rec := h.recorders.Get(user.ID)

	var res *workflow.Result
	// отмены посреди загрузки нет: отключение клиента не обрывает цепочку
	ctx := context.WithoutCancel(r.Context())
	err := rec.Upload(ctx, func(ctx context.Context, blob []byte) error {
		out, err := h.uploader.Run(ctx, user.ID, blob)
		res = out
		return err
	})

	var stepErr *workflow.StepError
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]any{
			"event":    notificator.Success("Dream recorded and interpreted successfully!"),
			"dream":    res.Record,
			"recorder": rec.Status(),
		})
	case errors.As(err, &stepErr):
		h.log.Log(logger.LogEntry{Level: "error", Message: "upload dream failed at " + string(stepErr.Step), Error: err})
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"event":    notificator.Failure(err),
			"step":     stepErr.Step,
			"recorder": rec.Status(),
		})
	default:
		h.writeRecorderError(w, err)
	}
}

func (h *RecorderHandler) Discard(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	rec := h.recorders.Get(user.ID)

	if err := rec.Discard(); err != nil {
		h.writeRecorderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recorder": rec.Status()})
}

func (h *RecorderHandler) writeRecorderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, recorder.ErrInvalidState):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, recorder.ErrMicrophone):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, recorder.ErrEmptyRecording):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		h.log.Log(logger.LogEntry{Level: "error", Message: "recorder error", Error: err})
		writeError(w, http.StatusInternalServerError, err)
	}
}
