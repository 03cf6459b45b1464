package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/internal/services"
	"github.com/AnshRaj112/serenify-journal/pkg/utils"
)

type AIHandler struct {
	journals *services.JournalService
	logger   *zap.Logger
}

func NewAIHandler(journals *services.JournalService, logger *zap.Logger) *AIHandler {
	return &AIHandler{journals: journals, logger: logger}
}

type RespondRequest struct {
	Thought string `json:"thought"`
}

type RespondResponse struct {
	Reply string `json:"reply"`
}

// Respond returns an AI reply to a thought without saving anything.
func (h *AIHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if msg, ok := validationMessage(utils.ValidateThought(req.Thought)); ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	reply, err := h.journals.Reply(r.Context(), req.Thought)
	if errors.Is(err, services.ErrNoResponder) {
		writeError(w, http.StatusServiceUnavailable, "AI replies are not configured")
		return
	}
	if err != nil {
		h.logger.Warn("ai reply failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "Failed to get AI response")
		return
	}

	writeJSON(w, http.StatusOK, RespondResponse{Reply: reply})
}
