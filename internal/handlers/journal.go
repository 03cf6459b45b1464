package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/services"
)

type JournalHandler struct {
	journals *services.JournalService
	logger   *zap.Logger
}

func NewJournalHandler(journals *services.JournalService, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{journals: journals, logger: logger}
}

type CreateEntryRequest struct {
	Thought string `json:"thought"`
	Mood    string `json:"mood"`
}

type CreateEntryResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	AIReply string               `json:"aiReply"`
	Entry   *models.JournalEntry `json:"entry,omitempty"`
	Support string               `json:"support,omitempty"`
}

type ListEntriesResponse struct {
	Success bool                  `json:"success"`
	Entries []models.JournalEntry `json:"entries"`
	Total   int                   `json:"total"`
}

// MoodPoint is one element of the moods response.
type MoodPoint struct {
	Date      string      `json:"date"`
	CreatedAt time.Time   `json:"createdAt"`
	Mood      models.Mood `json:"mood"`
	MoodScore int         `json:"moodScore"`
	Thought   string      `json:"thought"`
	AIReply   string      `json:"aiReply,omitempty"`
}

// Create saves a journal entry for the caller. The entry is returned with
// its AI reply when one could be produced.
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	mood, _ := models.ParseMood(req.Mood)

	// no store timeout here: the AI call carries its own deadline
	res, err := h.journals.Create(r.Context(), p.UserID, req.Thought, mood)
	if msg, ok := validationMessage(err); ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if errors.Is(err, services.ErrEntryLimitReached) {
		writeError(w, http.StatusForbidden, "Journal entry limit reached")
		return
	}
	if err != nil {
		h.logger.Error("create journal entry", zap.String("user_id", p.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to save journal entry")
		return
	}

	resp := CreateEntryResponse{
		Success: true,
		Message: "Journal entry saved",
		AIReply: res.Entry.AIReply,
		Entry:   &res.Entry,
	}
	if res.CrisisSupport {
		resp.Support = services.CrisisSupportMessage
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List returns the caller's entries, newest first.
func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	entries, err := h.journals.List(ctx, p.UserID)
	if err != nil {
		h.logger.Error("list journal entries", zap.String("user_id", p.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load journal entries")
		return
	}
	if entries == nil {
		entries = []models.JournalEntry{}
	}

	writeJSON(w, http.StatusOK, ListEntriesResponse{Success: true, Entries: entries, Total: len(entries)})
}

// Streak returns {totalDays, streak} for the caller.
func (h *JournalHandler) Streak(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	summary, err := h.journals.Streak(ctx, p.UserID)
	if err != nil {
		h.logger.Error("compute streak", zap.String("user_id", p.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to compute streak")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Moods returns the mood series for {userId}, oldest first. Callers may only
// read their own series.
func (h *JournalHandler) Moods(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	if chi.URLParam(r, "userId") != p.UserID {
		writeError(w, http.StatusForbidden, "You can only view your own moods")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	series, err := h.journals.MoodSeries(ctx, p.UserID)
	if err != nil {
		h.logger.Error("load mood series", zap.String("user_id", p.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to load moods")
		return
	}

	points := []MoodPoint{}
	for pt := range series {
		points = append(points, MoodPoint{
			Date:      services.DayKey(pt.Date),
			CreatedAt: pt.Date,
			Mood:      pt.Mood,
			MoodScore: pt.MoodScore,
			Thought:   pt.Entry.Thought,
			AIReply:   pt.Entry.AIReply,
		})
	}
	writeJSON(w, http.StatusOK, points)
}

// Export downloads the caller's journal as a text file.
func (h *JournalHandler) Export(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	format := services.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = services.ExportText
	}
	if format != services.ExportText {
		writeError(w, http.StatusBadRequest, "Unsupported export format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	series, err := h.journals.MoodSeries(ctx, p.UserID)
	if err != nil {
		h.logger.Error("load journal for export", zap.String("user_id", p.UserID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to export journal")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+services.ExportFilename(format)+`"`)
	if err := services.WriteJournalText(w, series); err != nil {
		h.logger.Warn("write journal export", zap.String("user_id", p.UserID), zap.Error(err))
	}
}
