package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"rural-health-assistant/internal/session"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type buildRequest struct {
	Format string `json:"format"` // "pdf" or "json"
	Config
}

func (h *Handler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	switch req.Format {
	case "json":
		export, err := h.svc.BuildJSON(r.Context(), req.Config)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(export)

	case "pdf":
		path, warning, err := h.svc.BuildPDF(r.Context(), req.Config)
		if err != nil {
			writeError(w, err)
			return
		}
		defer os.Remove(path)

		if warning != "" {
			w.Header().Set("X-Report-Warning", warning)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="reporte_medico_%s.pdf"`, time.Now().Format("20060102_1504")))
		http.ServeFile(w, r, path)

	default:
		http.Error(w, "Unknown report format", http.StatusBadRequest)
	}
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	export, err := h.svc.Export(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(export)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNoActiveSession) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/report", h.HandleBuild)
	r.Get("/history/export", h.HandleExport)
}
