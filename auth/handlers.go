package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/innate-go/apperror"
)

// Handlers wraps the AuthService with HTTP endpoints.
type Handlers struct {
	service *AuthService
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *AuthService) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister godoc
// @Summary User registration
// @Description Registers a new user account.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "Registration details"
// @Success 201 {object} auth.User "User created"
// @Failure 400 {object} apperror.ErrorResponse "Missing or malformed fields"
// @Failure 409 {object} apperror.ErrorResponse "Username or email already taken"
// @Failure 500 {object} apperror.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.Username == "" || req.Email == "" || req.Password == "" {
			WriteError(w, r, apperror.NewBadRequestError("username, email, and password are required", nil))
			return
		}

		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, user)
	}
}

// HandleLogin godoc
// @Summary User login
// @Description Verifies credentials and establishes a session.
// @Tags auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Login credentials"
// @Success 200 {object} auth.SessionResponse "Session established"
// @Failure 400 {object} apperror.ErrorResponse "Missing fields"
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.Email == "" || req.Password == "" {
			WriteError(w, r, apperror.NewBadRequestError("email and password are required", nil))
			return
		}

		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			WriteError(w, r, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    resp.Token,
			Path:     "/",
			MaxAge:   int(resp.ExpiresIn),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleLogout clears the session cookie. The token itself stays valid until
// expiry; there is no server-side session state to invalidate.
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
	}
}

// HandleRequestReset godoc
// @Summary Request a password reset
// @Description Emails a time-limited reset link to the account's address.
// @Tags auth
// @Accept json
// @Produce json
// @Param resetBody body auth.ResetRequestRequest true "Account email"
// @Success 200 {object} map[string]string "Reset email sent"
// @Failure 404 {object} apperror.ErrorResponse "No account with that email"
// @Failure 502 {object} apperror.ErrorResponse "Email could not be sent"
// @Router /auth/reset_password [post]
func (h *Handlers) HandleRequestReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetRequestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.Email == "" {
			WriteError(w, r, apperror.NewBadRequestError("email is required", nil))
			return
		}

		if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "an email has been sent with password reset instructions",
		})
	}
}

// HandleSubmitReset godoc
// @Summary Submit a password reset
// @Description Sets a new password for the account encoded in a valid reset token.
// @Tags auth
// @Accept json
// @Produce json
// @Param token path string true "Reset token"
// @Param resetBody body auth.ResetSubmitRequest true "New password"
// @Success 200 {object} map[string]string "Password updated"
// @Failure 401 {object} apperror.ErrorResponse "Token is invalid or expired"
// @Router /auth/reset_password/{token} [post]
func (h *Handlers) HandleSubmitReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")

		var req ResetSubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, r, apperror.NewBadRequestError("invalid request body: "+err.Error(), nil))
			return
		}
		defer r.Body.Close()

		if req.Password == "" {
			WriteError(w, r, apperror.NewBadRequestError("password is required", nil))
			return
		}

		if err := h.service.ResetPassword(r.Context(), token, req.Password); err != nil {
			WriteError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "your password has been updated"})
	}
}

// writeJSON serializes data with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		}
	}
}

// WriteError converts any error into the standard apperror response. Errors
// that are not already *AppError are wrapped as internal errors so no raw
// failure detail escapes.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}
	writeJSON(w, appErr.StatusCode(), appErr.ToResponse())
}
