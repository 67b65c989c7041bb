package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	herbal  *Catalog
	generic *Catalog
}

func NewHandler(herbal, generic *Catalog) *Handler {
	return &Handler{herbal: herbal, generic: generic}
}

func (h *Handler) byKind(r *http.Request) *Catalog {
	if Kind(chi.URLParam(r, "kind")) == KindHerbal {
		return h.herbal
	}
	if Kind(chi.URLParam(r, "kind")) == KindGeneric {
		return h.generic
	}
	return nil
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	c := h.byKind(r)
	if c == nil {
		http.Error(w, "Unknown catalog", http.StatusNotFound)
		return
	}

	entries := c.Search(r.URL.Query().Get("q"))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(entries)
}

// HandleAdd appends a new catalog entry. Intended for healthcare providers
// extending the local reference tables.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	c := h.byKind(r)
	if c == nil {
		http.Error(w, "Unknown catalog", http.StatusNotFound)
		return
	}

	var e Entry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	slug, err := c.Add(e)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"slug": slug})
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/catalog/{kind}", h.HandleList)
	r.Post("/catalog/{kind}", h.HandleAdd)
}
