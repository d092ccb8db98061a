package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/isdelr/devlink/internal/auth"
	"github.com/isdelr/devlink/internal/models"
	"github.com/isdelr/devlink/internal/services"
)

// DeveloperHandler handles HTTP requests for developer records. Every route
// sits behind auth.Middleware and acts on the caller's records only.
type DeveloperHandler struct {
	service      services.DeveloperServiceProvider
	searchDomain bool
}

// NewDeveloperHandler creates a new DeveloperHandler. searchDomain makes the
// search parameter also match the domain field.
func NewDeveloperHandler(service services.DeveloperServiceProvider, searchDomain bool) *DeveloperHandler {
	return &DeveloperHandler{service: service, searchDomain: searchDomain}
}

func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Not authorized"})
	}
	return id, ok
}

// GetAll lists the caller's developers, filtered by the domain, techstack and
// search query parameters.
func (h *DeveloperHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	filter := models.ParseDeveloperFilter(r.URL.Query(), h.searchDomain)
	devs, err := h.service.ListDevelopers(r.Context(), owner, filter)
	if err != nil {
		writeError(w, r, err, "Failed to retrieve developers")
		return
	}
	writeJSON(w, http.StatusOK, devs)
}

// Stats returns the dashboard summary of the caller's developers.
func (h *DeveloperHandler) Stats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Stats(r.Context(), owner)
	if err != nil {
		writeError(w, r, err, "Failed to compute developer stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Get handles the request to get a single developer by its ID.
func (h *DeveloperHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	dev, err := h.service.GetDeveloper(r.Context(), id, owner)
	if err != nil {
		writeError(w, r, err, "Failed to get developer by ID")
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// Create handles the request to create a new developer.
func (h *DeveloperHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var payload models.DeveloperInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err, "Rejected developer body")
		return
	}

	dev, err := h.service.CreateDeveloper(r.Context(), owner, payload)
	if err != nil {
		writeError(w, r, err, "Failed to create developer")
		return
	}
	writeJSON(w, http.StatusCreated, dev)
}

// Update handles the request to replace an existing developer.
func (h *DeveloperHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var payload models.DeveloperInput
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, r, err, "Rejected developer body")
		return
	}

	id := chi.URLParam(r, "id")
	dev, err := h.service.UpdateDeveloper(r.Context(), id, owner, payload)
	if err != nil {
		writeError(w, r, err, "Failed to update developer")
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// Delete handles the permanent deletion of a developer.
func (h *DeveloperHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.DeleteDeveloper(r.Context(), id, owner); err != nil {
		writeError(w, r, err, "Failed to delete developer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Developer removed"})
}
