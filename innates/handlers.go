package innates

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/innate-go/apperror"
	"github.com/user/innate-go/auth"
)

// Handler exposes the innate endpoints.
type Handler struct {
	service Service
}

// NewHandler creates a new Handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the innate routes. Reads are public; mutations sit
// behind the RequireAuth guard.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/", h.list)
	router.Get("/{id}", h.get)
	router.With(auth.RequireAuth).Post("/", h.create)
	router.With(auth.RequireAuth).Put("/{id}", h.update)
	router.With(auth.RequireAuth).Delete("/{id}", h.delete)
}

// list godoc
// @Summary List innates
// @Description Returns a page of all innates, newest first.
// @Tags innates
// @Produce json
// @Param page query int false "1-based page number"
// @Param per_page query int false "page size"
// @Success 200 {object} PaginatedInnatesResponse
// @Router /api/v1/innates [get]
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagingParams(r)
	resp, err := h.service.ListPage(r.Context(), page, perPage)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	innate, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, innate)
}

// create godoc
// @Summary Create an innate
// @Tags innates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param innateBody body NewInnateRequest true "Innate content"
// @Success 201 {object} Innate
// @Failure 401 {object} apperror.ErrorResponse "Not authenticated"
// @Router /api/v1/innates [post]
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
		return
	}

	var req NewInnateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	if req.Title == "" || req.Innated == "" {
		auth.WriteError(w, r, apperror.NewBadRequestError("title and innated are required", nil))
		return
	}

	innate, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, innate)
}

// update godoc
// @Summary Update an innate
// @Description Owner-only; non-owners receive 403, missing ids 404.
// @Tags innates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Innate id"
// @Param innateBody body UpdateInnateRequest true "Replacement content"
// @Success 200 {object} Innate
// @Failure 403 {object} apperror.ErrorResponse "Not the owner"
// @Failure 404 {object} apperror.ErrorResponse "No such innate"
// @Router /api/v1/innates/{id} [put]
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
		return
	}
	id, err := idParam(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	var req UpdateInnateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
		return
	}
	defer r.Body.Close()

	if req.Title == "" || req.Innated == "" {
		auth.WriteError(w, r, apperror.NewBadRequestError("title and innated are required", nil))
		return
	}

	innate, err := h.service.Update(r.Context(), id, userID, req)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, innate)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
		return
	}
	id, err := idParam(r)
	if err != nil {
		auth.WriteError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		auth.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "innate deleted"})
}

// HandleListByUser serves GET /api/v1/users/{username}/innates.
func (h *Handler) HandleListByUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		page, perPage := pagingParams(r)

		resp, err := h.service.ListByOwner(r.Context(), username, page, perPage)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func idParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, apperror.NewBadRequestError("invalid innate id", nil)
	}
	return id, nil
}

func pagingParams(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	return page, perPage
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}
