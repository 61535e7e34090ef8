// Package httpapi exposes the account operations over HTTP/JSON. It owns
// request decoding, the error-to-status mapping, and the bearer-token
// middleware; all business decisions stay in the services layer.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"siams/internal/logging"
	"siams/internal/server/models"
	"siams/internal/server/services"
	"siams/internal/shared"
)

// AccountService is the slice of the services layer the handlers need.
type AccountService interface {
	Register(ctx context.Context, username, password, email string) (*services.RegistrationResult, error)
	ConfirmEmail(ctx context.Context, token, email string) error
	Login(ctx context.Context, username, password string) (*services.Session, error)
	RequestAdmin(ctx context.Context, actorUsername string) error
	ApproveAdminRequest(ctx context.Context, adminUsername, targetUserID string) error
	RejectAdminRequest(ctx context.Context, adminUsername, targetUserID string) error
	ListUsers(ctx context.Context, adminUsername string) ([]*models.User, error)
	UpdateUser(ctx context.Context, adminUsername, targetUserID string, update services.UserUpdate) error
	SoftDeleteUser(ctx context.Context, adminUsername, targetUserID string) error
	ListLogs(ctx context.Context, adminUsername string, limit int) ([]*models.LogEntry, error)
}

// Handler holds the HTTP handlers for the account API.
type Handler struct {
	service AccountService
	logger  logging.Logger
}

func NewHandler(service AccountService, logger logging.Logger) *Handler {
	return &Handler{service: service, logger: logger.With("module", "httpapi")}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the service sentinels onto HTTP statuses. Anything
// unrecognized, including dependency failures, is a plain 500 so internals
// never leak to the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, shared.ErrorInvalidRequest),
		errors.Is(err, shared.ErrorWeakPassword):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrorInvalidCredentials),
		errors.Is(err, shared.ErrorInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, shared.ErrorEmailNotConfirmed),
		errors.Is(err, shared.ErrorUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, shared.ErrorUserNotFound),
		errors.Is(err, shared.ErrorNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrorUsernameTaken),
		errors.Is(err, shared.ErrorEmailTaken),
		errors.Is(err, shared.ErrorAlreadyAdmin),
		errors.Is(err, shared.ErrorRequestPending),
		errors.Is(err, shared.ErrorInvalidState):
		status = http.StatusConflict
	default:
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return shared.ErrorInvalidRequest
	}
	return nil
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type registerResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	EmailSent bool   `json:"email_sent"`
}

// Register handles POST /api/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.service.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{
		ID:        res.User.ID,
		Username:  res.User.Username,
		Email:     res.User.Email,
		EmailSent: res.EmailSent,
	})
}

type confirmRequest struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// ConfirmEmail handles both the mailed link (GET /confirm-email?token=&email=)
// and the API form (POST /api/confirm-email).
func (h *Handler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req.Token = q.Get("token")
		req.Email = q.Get("email")
	} else if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.ConfirmEmail(r.Context(), req.Token, req.Email); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login handles POST /api/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:    session.Token,
		Username: session.Username,
		Role:     string(session.Role),
	})
}

// RequestAdmin handles POST /api/admin-request for the authenticated user.
func (h *Handler) RequestAdmin(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.RequestAdmin(r.Context(), claims.Name); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "pending"})
}

type userResponse struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	IsEmailConfirmed bool      `json:"is_email_confirmed"`
	IsAdminRequested bool      `json:"is_admin_requested"`
	CreatedAt        time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Role:             string(u.Role),
		IsEmailConfirmed: u.IsEmailConfirmed,
		IsAdminRequested: u.IsAdminRequested,
		CreatedAt:        u.CreatedAt,
	}
}

// ListUsers handles GET /api/users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	list, err := h.service.ListUsers(r.Context(), claims.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UpdateUser handles PUT /api/users/{id}.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	err = h.service.UpdateUser(r.Context(), claims.Name, chi.URLParam(r, "id"), services.UserUpdate{
		Username: req.Username,
		Email:    req.Email,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteUser handles DELETE /api/users/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.service.SoftDeleteUser(r.Context(), claims.Name, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ApproveAdmin handles POST /api/users/{id}/approve-admin.
func (h *Handler) ApproveAdmin(w http.ResponseWriter, r *http.Request) {
	h.decideAdmin(w, r, h.service.ApproveAdminRequest, "approved")
}

// RejectAdmin handles POST /api/users/{id}/reject-admin.
func (h *Handler) RejectAdmin(w http.ResponseWriter, r *http.Request) {
	h.decideAdmin(w, r, h.service.RejectAdminRequest, "rejected")
}

func (h *Handler) decideAdmin(w http.ResponseWriter, r *http.Request,
	decide func(ctx context.Context, adminUsername, targetUserID string) error, status string) {

	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := decide(r.Context(), claims.Name, chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

type logEntryResponse struct {
	ID          int64     `json:"id"`
	Action      string    `json:"action"`
	Timestamp   time.Time `json:"timestamp"`
	PerformedBy string    `json:"performed_by"`
	UserID      *string   `json:"user_id,omitempty"`
}

// ListLogs handles GET /api/logs?limit=N.
func (h *Handler) ListLogs(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.service.ListLogs(r.Context(), claims.Name, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := make([]logEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, logEntryResponse{
			ID:          e.ID,
			Action:      e.Action,
			Timestamp:   e.Timestamp,
			PerformedBy: e.PerformedBy,
			UserID:      e.UserID,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
