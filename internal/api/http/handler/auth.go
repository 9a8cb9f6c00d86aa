package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/modulehub/internal/logger"
	"github.com/dtroode/modulehub/internal/model"
)

// AuthService defines signup, login and profile lookup operations.
type AuthService interface {
	Signup(ctx context.Context, params model.SignupParams) (model.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetUser(ctx context.Context, userID uuid.UUID) (model.User, error)
}

// Auth handles HTTP endpoints for users and authentication.
type Auth struct {
	authService    AuthService
	contextManager model.ContextManager
	maxBodyBytes   int64
	logger         *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, contextManager model.ContextManager, maxBodyBytes int64, logger *logger.Logger) *Auth {
	return &Auth{
		authService:    authService,
		contextManager: contextManager,
		maxBodyBytes:   maxBodyBytes,
		logger:         logger,
	}
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r signupRequest) validate() error {
	if r.Email == "" {
		return model.NewInputError("email is required")
	}
	addr, err := mail.ParseAddress(r.Email)
	if err != nil || addr.Address != r.Email {
		return model.NewInputError("email is not a valid address")
	}
	if r.Password == "" {
		return model.NewInputError("password is required")
	}
	return nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Signup handles POST /users/signup.
func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := req.validate(); err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.logger.Debug("Auth handler: processing signup request",
		"email", req.Email)

	user, err := h.authService.Signup(r.Context(), model.SignupParams{
		Profile: model.User{
			Email:     req.Email,
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		},
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error("Auth handler: signup failed",
			"email", req.Email,
			"error", err.Error())
		handleError(w, h.logger, err)
		return
	}

	h.logger.Info("Auth handler: signup completed",
		"user_id", user.ID)

	writeJSON(w, http.StatusOK, user)
}

// Login handles POST /users/login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, h.maxBodyBytes, &req); err != nil {
		handleError(w, h.logger, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		handleError(w, h.logger, model.NewInputError("email and password are required"))
		return
	}

	token, err := h.authService.Login(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		h.logger.Info("Auth handler: login failed",
			"email", req.Email,
			"error", err.Error())
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// WhoAmI handles GET /whoAmI and writes the caller's user id as plain text.
func (h *Auth) WhoAmI(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		handleError(w, h.logger, model.ErrUnauthenticated)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, userID.String())
}

// WhoAmIProfile handles POST /whoAmI and writes the caller's profile.
func (h *Auth) WhoAmIProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		handleError(w, h.logger, model.ErrUnauthenticated)
		return
	}

	h.writeUser(w, r, userID)
}

// GetUser handles GET /users/{id}.
func (h *Auth) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handleError(w, h.logger, model.NewInputError("invalid user id"))
		return
	}

	h.writeUser(w, r, userID)
}

func (h *Auth) writeUser(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	user, err := h.authService.GetUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Auth handler: failed to get user",
			"user_id", userID,
			"error", err.Error())
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
