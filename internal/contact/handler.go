package contact

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-coinova/pkg/utilities"
)

const (
	msgSent       = "Your message has been sent successfully!"
	msgSendFailed = "An error occurred while sending your message."
)

// Handler exposes the contact workflow over HTTP.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type ContactRequest struct {
	Name    utilities.Text `json:"name"`
	Email   utilities.Text `json:"email"`
	Message utilities.Text `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warnw("invalid contact payload", "err", err)
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: msgSendFailed})
		return
	}

	if err := h.svc.Submit(r.Context(), req.Name.String(), req.Email.String(), req.Message.String()); err != nil {
		h.logger.Errorw("error handling contact form", "err", err)
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: msgSendFailed})
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: msgSent})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
