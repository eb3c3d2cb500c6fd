package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/modernshop/internal/apperror"
	"github.com/sakif/modernshop/internal/model"
	"github.com/sakif/modernshop/internal/service"
)

// MinPasswordLength is the shortest new password the account page accepts.
const MinPasswordLength = 8

// AuthHandler exposes the auth store.
//
// The session lives in the store, not in a cookie: this is a single-session
// mock backend, and every client talking to it shares one signed-in user.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// sessionResponse is AuthState as the client sees it, loading flag included.
type sessionResponse struct {
	User            *model.User `json:"user"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	IsLoading       bool        `json:"isLoading"`
}

type userResponse struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// HandleSession reconciles and returns the current session.
//
// HTTP: GET /api/auth/session
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	st := h.auth.CheckAuth()
	writeJSON(w, http.StatusOK, sessionResponse{
		User:            st.User,
		IsAuthenticated: st.IsAuthenticated,
		IsLoading:       st.IsLoading,
	})
}

// HandleLogin signs in.
//
// HTTP: POST /api/auth/login
// REQUEST BODY: {"email": "...", "password": "..."}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Success: true, User: user})
}

// HandleSignup registers and signs in.
//
// HTTP: POST /api/auth/signup
// REQUEST BODY: {"email", "password", "firstName", "lastName", "phone"?}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupData
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, apperror.ValidationFailed("email", "email is required"))
		return
	}
	if req.Password == "" {
		writeError(w, apperror.ValidationFailed("password", "password is required"))
		return
	}

	user, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{Success: true, User: user})
}

// HandleLogout ends the session.
//
// HTTP: POST /api/auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout()
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// HandleUpdateProfile changes profile fields of the signed-in user.
// Fields left out of the body are kept.
//
// HTTP: PATCH /api/auth/profile
// REQUEST BODY: {"firstName"?, "lastName"?, "phone"?, "avatar"?}
func (h *AuthHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req model.ProfileUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{Success: true, User: user})
}

// HandleResetPassword simulates sending a reset email.
//
// HTTP: POST /api/auth/reset-password
// REQUEST BODY: {"email": "..."}
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{
		Success: true,
		Message: "Password reset instructions have been sent to your email",
	})
}

// HandleChangePassword replaces the signed-in user's password.
//
// HTTP: POST /api/auth/change-password
// REQUEST BODY: {"currentPassword", "newPassword", "confirmPassword"}
//
// Checks run in this order: signed in, confirmation match, minimum length.
// The last two are form rules of the account page and run before the store
// is touched.
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	// A signed-out caller gets "Not authenticated" whatever else is wrong.
	if h.auth.State().User == nil {
		writeError(w, apperror.NotAuthenticated())
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeError(w, apperror.ValidationFailed("confirmPassword", "New passwords do not match"))
		return
	}
	if len(req.NewPassword) < MinPasswordLength {
		writeError(w, apperror.ValidationFailed("newPassword", "New password must be at least 8 characters long"))
		return
	}

	if err := h.auth.ChangePassword(r.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: "Password changed successfully!"})
}
