package users

import (
	"encoding/json"
	"net/http"

	"github.com/user/innate-go/apperror"
	"github.com/user/innate-go/auth"
)

// maxAvatarUpload bounds the multipart body for avatar uploads.
const maxAvatarUpload = 5 << 20 // 5MB

// UserHandlers provides the HTTP endpoints for profile management.
type UserHandlers struct {
	service *UserService
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service *UserService) *UserHandlers {
	return &UserHandlers{service: service}
}

// HandleGetProfile godoc
// @Summary Get current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} apperror.ErrorResponse "Not authenticated"
// @Failure 404 {object} apperror.ErrorResponse "User not found"
// @Router /users/me [get]
func (h *UserHandlers) HandleGetProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}

		profile, err := h.service.GetProfile(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(profile)
	}
}

// HandleUpdateAccount godoc
// @Summary Update current user's username or email
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param accountBody body UpdateAccountRequest true "Fields to update"
// @Success 200 {object} ProfileResponse
// @Failure 409 {object} apperror.ErrorResponse "Username or email already taken"
// @Router /users/me [put]
func (h *UserHandlers) HandleUpdateAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}

		var req UpdateAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request payload", err))
			return
		}
		defer r.Body.Close()

		if req.Username == nil && req.Email == nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("no fields provided for update", nil))
			return
		}

		profile, err := h.service.UpdateAccount(r.Context(), userID, &req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(profile)
	}
}

// HandleUploadAvatar accepts a multipart upload under the "picture" field,
// resizes it, and makes it the account's profile image.
func (h *UserHandlers) HandleUploadAvatar() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxAvatarUpload)
		if err := r.ParseMultipartForm(maxAvatarUpload); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid multipart upload", err))
			return
		}

		file, _, err := r.FormFile("picture")
		if err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("picture file is required", err))
			return
		}
		defer file.Close()

		profile, err := h.service.UpdateAvatar(r.Context(), userID, file)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(profile)
	}
}
