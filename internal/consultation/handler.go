package consultation

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"rural-health-assistant/internal/agent"
	"rural-health-assistant/internal/history"
	"rural-health-assistant/internal/patient"
	"rural-health-assistant/internal/session"
	"rural-health-assistant/internal/voice"
)

type Handler struct {
	svc   *Service
	voice *voice.Pipeline
}

func NewHandler(svc *Service, voicePipeline *voice.Pipeline) *Handler {
	return &Handler{svc: svc, voice: voicePipeline}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNoActiveSession) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"inference_reachable": h.svc.Reachable(r.Context()),
	})
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	entry, err := h.svc.Submit(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// HandleVoiceUpload transcribes a recorded audio clip into the pending
// input slot. Unintelligible audio is a retryable 422, not a failure.
func (h *Handler) HandleVoiceUpload(w http.ResponseWriter, r *http.Request) {
	// Voice notes are short; 10MB is plenty.
	r.ParseMultipartForm(10 << 20)

	file, _, err := r.FormFile("audio")
	if err != nil {
		http.Error(w, "Error retrieving audio file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		http.Error(w, "Failed to read audio file", http.StatusInternalServerError)
		return
	}

	text, err := h.voice.Transcribe(r.Context(), buf.Bytes())
	if err != nil {
		if errors.Is(err, agent.ErrUnintelligible) {
			http.Error(w, "No se pudo entender el audio. Inténtalo de nuevo.", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Transcription failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// HandleVoiceTake consumes the pending transcript; a second read returns
// empty.
func (h *Handler) HandleVoiceTake(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"text": h.voice.TakePending()})
}

func (h *Handler) HandleClearTranscript(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearTranscript(); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleCheckin(w http.ResponseWriter, r *http.Request) {
	var c patient.Checkin
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	res, err := h.svc.SubmitCheckin(r.Context(), c)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleCheckins(w http.ResponseWriter, r *http.Request) {
	checkins, err := h.svc.Checkins(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, checkins)
}

func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	t := history.Type(r.URL.Query().Get("type"))
	p := history.Period(r.URL.Query().Get("period"))

	entries, err := h.svc.FilteredHistory(r.Context(), t, p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearHistory(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleHerbalConsult(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.HerbalConsult(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	analysis, err := h.svc.Trends(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"analysis": analysis})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/status", h.HandleStatus)
	r.Post("/consultation", h.HandleSubmit)
	r.Post("/consultation/voice", h.HandleVoiceUpload)
	r.Get("/consultation/voice", h.HandleVoiceTake)
	r.Post("/consultation/clear", h.HandleClearTranscript)
	r.Post("/checkin", h.HandleCheckin)
	r.Get("/checkins", h.HandleCheckins)
	r.Get("/history", h.HandleHistory)
	r.Get("/history/stats", h.HandleStats)
	r.Post("/history/clear", h.HandleClearHistory)
	r.Post("/catalog/herbal/{slug}/consult", h.HandleHerbalConsult)
	r.Get("/trends", h.HandleTrends)
}
