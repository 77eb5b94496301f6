package handler

import (
	"errors"
	"net/http"

	"github.com/gatekeep/gatekeep-go/internal/middleware"
	"github.com/gatekeep/gatekeep-go/internal/model"
	"github.com/gatekeep/gatekeep-go/internal/service"
)

const (
	msgUserCreated    = "User created successfully"
	msgUserExists     = "User already exists"
	msgSignupFailed   = "Error creating user"
	msgLoginOK        = "Login successful"
	msgBadCredentials = "Invalid username or password"
	msgLoginFailed    = "Error logging in"
	msgProfileOK      = "Protected data accessed successfully"
	msgProfileFailed  = "Error fetching profile"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// HandleSignup handles POST /signup requests.
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req model.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.service.Signup(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUsernameRequired),
			errors.Is(err, service.ErrPasswordRequired),
			errors.Is(err, service.ErrPasswordTooLong),
			errors.Is(err, service.ErrFieldTooLong):
			writeJSON(w, http.StatusBadRequest, messageResponse(err.Error()))
		case errors.Is(err, service.ErrUserExists):
			writeJSON(w, http.StatusBadRequest, messageResponse(msgUserExists))
		default:
			middleware.LoggerFromContext(r.Context()).Error("signup failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, messageResponse(msgSignupFailed))
		}
		return
	}

	middleware.LoggerFromContext(r.Context()).Info("user created", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, messageResponse(msgUserCreated))
}

// HandleLogin handles POST /login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, messageResponse(msgBadCredentials))
			return
		}
		middleware.LoggerFromContext(r.Context()).Error("login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse(msgLoginFailed))
		return
	}

	writeJSON(w, http.StatusOK, model.LoginResponse{Message: msgLoginOK, Token: token})
}

// HandleProfile handles GET /profile requests. It must sit behind middleware.JWTAuth.
func (h *AuthHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse(middleware.MsgNoToken))
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			writeJSON(w, http.StatusUnauthorized, messageResponse(middleware.MsgInvalidToken))
			return
		}
		middleware.LoggerFromContext(r.Context()).Error("profile lookup failed", "error", err, "user_id", userID)
		writeJSON(w, http.StatusInternalServerError, messageResponse(msgProfileFailed))
		return
	}

	writeJSON(w, http.StatusOK, model.ProfileResponse{Message: msgProfileOK, User: profile})
}
