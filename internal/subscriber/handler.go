package subscriber

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-coinova/pkg/utilities"
)

const (
	msgSubscribed        = "Subscription successful!"
	msgAlreadySubscribed = "Email already subscribed."
	msgSubscribeFailed   = "An error occurred while subscribing."
)

// Handler exposes the subscription workflow over HTTP.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// SubscribeRequest request body for the subscribe endpoint. Scalar values
// are accepted for every field and kept as text.
type SubscribeRequest struct {
	Name  utilities.Text `json:"name"`
	Email utilities.Text `json:"email"`
	Phone utilities.Text `json:"phone"`
}

// MessageResponse is the only response shape either endpoint returns.
type MessageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// bad bodies share the generic failure response
		h.logger.Warnw("invalid subscribe payload", "err", err)
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: msgSubscribeFailed})
		return
	}

	err := h.svc.Subscribe(r.Context(), req.Name.String(), req.Email.String(), req.Phone.String())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, MessageResponse{Message: msgSubscribed})
	case errors.Is(err, ErrAlreadySubscribed):
		writeJSON(w, http.StatusBadRequest, MessageResponse{Message: msgAlreadySubscribed})
	default:
		h.logger.Errorw("error subscribing user", "err", err)
		writeJSON(w, http.StatusInternalServerError, MessageResponse{Message: msgSubscribeFailed})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
