package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/remasterhq/remaster/modules/auth"
)

// Handlers owns the HTTP surface of the catalog module.
type Handlers struct {
	service *Service
	gate    *auth.Gate
}

func NewHandlers(service *Service, gate *auth.Gate) *Handlers {
	return &Handlers{service: service, gate: gate}
}

// Router mounts the public queries and the session-gated creator
// routes.
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/remasters", h.listRemasters)
	r.Get("/remasters/{id}", h.getRemaster)

	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireSession)
		r.Get("/user/remasters", h.userRemasters)
		r.Get("/user/remasters/{id}", h.userRemaster)
		r.Post("/remasters", h.createRemaster)
	})

	return r
}

func (h *Handlers) listRemasters(w http.ResponseWriter, r *http.Request) {
	remasters, err := h.service.ListRemasters(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, remasters)
}

func (h *Handlers) getRemaster(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	remaster, err := h.service.GetRemaster(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if remaster == nil {
		writeError(w, http.StatusNotFound, "Remaster Not Found")
		return
	}
	writeJSON(w, http.StatusOK, remaster)
}

func (h *Handlers) userRemasters(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not Authenticated")
		return
	}
	remasters, err := h.service.UserRemasters(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, remasters)
}

func (h *Handlers) userRemaster(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not Authenticated")
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	remaster, err := h.service.UserRemaster(r.Context(), user.ID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if remaster == nil {
		writeError(w, http.StatusNotFound, "Remaster Not Found")
		return
	}
	writeJSON(w, http.StatusOK, remaster)
}

func (h *Handlers) createRemaster(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not Authenticated")
		return
	}
	var input CreateRemasterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid Request Body")
		return
	}
	remaster, err := h.service.CreateRemaster(r.Context(), user.ID, input)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusCreated, remaster)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
