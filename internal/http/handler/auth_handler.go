package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/docuchat/auth-service/internal/http/response"
	"github.com/docuchat/auth-service/internal/observability"
	"github.com/docuchat/auth-service/internal/service"
)

// AuthHandler is the thin wire boundary around the auth service: decode
// fields, invoke one operation, map the outcome to a status code and JSON
// body. Malformed or absent JSON is treated as empty fields so the service's
// missing-field message applies.
type AuthHandler struct {
	authSvc       service.AuthServiceInterface
	allowedDomain string
}

func NewAuthHandler(authSvc service.AuthServiceInterface, allowedDomain string) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, allowedDomain: allowedDomain}
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Username    string `json:"username"`
	NewPassword string `json:"newPassword"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "register", status, time.Since(start))
	}()

	var in registerRequest
	_ = json.NewDecoder(r.Body).Decode(&in)

	res, err := h.authSvc.Register(in.Email, in.Username, in.Password)
	if err != nil {
		status = "failure"
		h.writeRegisterError(w, r, err)
		return
	}
	observability.Audit(r, "auth.register.success", "user_id", res.ID, "username", res.Username)
	observability.RecordAuthAttempt(r.Context(), "register", "success")
	response.JSON(w, r, http.StatusCreated, map[string]any{
		"message":    "Registration successful. You can now log in.",
		"id":         res.ID,
		"email":      res.Email,
		"username":   res.Username,
		"isVerified": true,
	})
}

func (h *AuthHandler) writeRegisterError(w http.ResponseWriter, r *http.Request, err error) {
	observability.RecordAuthAttempt(r.Context(), "register", "failure")
	var inputErr *service.InvalidInputError
	switch {
	case errors.As(err, &inputErr):
		observability.Audit(r, "auth.register.rejected", "reason", "validation")
		observability.RecordValidationFailure(r.Context(), "register")
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", inputErr.Message)
	case errors.Is(err, service.ErrDomainNotAllowed):
		// Register reports domain rejection as a plain bad request so the
		// endpoint gives nothing away about account existence.
		observability.Audit(r, "auth.register.rejected", "reason", "domain_policy")
		response.Error(w, r, http.StatusBadRequest, "DOMAIN_POLICY",
			fmt.Sprintf("Only %s email addresses can register", h.allowedDomain))
	case errors.Is(err, service.ErrIdentityTaken):
		observability.Audit(r, "auth.register.rejected", "reason", "conflict")
		response.Error(w, r, http.StatusConflict, "CONFLICT", "Email or username already in use")
	default:
		h.writeInternal(w, r, "auth.register.failed", err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "login", status, time.Since(start))
	}()

	var in loginRequest
	_ = json.NewDecoder(r.Body).Decode(&in)

	res, err := h.authSvc.Login(in.Username, in.Password)
	if err != nil {
		status = "failure"
		h.writeLoginError(w, r, err)
		return
	}
	observability.Audit(r, "auth.login.success", "user_id", res.ID)
	observability.RecordAuthAttempt(r.Context(), "login", "success")
	response.JSON(w, r, http.StatusOK, map[string]any{
		"message":  "Login successful",
		"id":       res.ID,
		"username": res.Username,
		"email":    res.Email,
		"token":    res.Token,
	})
}

func (h *AuthHandler) writeLoginError(w http.ResponseWriter, r *http.Request, err error) {
	observability.RecordAuthAttempt(r.Context(), "login", "failure")
	var inputErr *service.InvalidInputError
	switch {
	case errors.As(err, &inputErr):
		observability.RecordValidationFailure(r.Context(), "login")
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", inputErr.Message)
	case errors.Is(err, service.ErrUserNotFound):
		observability.Audit(r, "auth.login.rejected", "reason", "unknown_user")
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "User does not exist. Please register.")
	case errors.Is(err, service.ErrDomainNotAllowed):
		observability.Audit(r, "auth.login.rejected", "reason", "domain_policy")
		response.Error(w, r, http.StatusForbidden, "DOMAIN_POLICY",
			fmt.Sprintf("Only %s users can log in", h.allowedDomain))
	case errors.Is(err, service.ErrInvalidCredentials):
		observability.Audit(r, "auth.login.rejected", "reason", "bad_credentials")
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid credentials")
	default:
		h.writeInternal(w, r, "auth.login.failed", err)
	}
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		observability.RecordAuthRequestDuration(r.Context(), "reset_password", status, time.Since(start))
	}()

	var in resetPasswordRequest
	_ = json.NewDecoder(r.Body).Decode(&in)

	if err := h.authSvc.ResetPassword(in.Username, in.NewPassword); err != nil {
		status = "failure"
		h.writeResetError(w, r, err)
		return
	}
	observability.Audit(r, "auth.reset_password.success", "username", in.Username)
	observability.RecordAuthAttempt(r.Context(), "reset_password", "success")
	response.JSON(w, r, http.StatusOK, map[string]any{
		"message": "Password reset successful. Please log in with your new password.",
	})
}

func (h *AuthHandler) writeResetError(w http.ResponseWriter, r *http.Request, err error) {
	observability.RecordAuthAttempt(r.Context(), "reset_password", "failure")
	var inputErr *service.InvalidInputError
	switch {
	case errors.As(err, &inputErr):
		observability.RecordValidationFailure(r.Context(), "reset_password")
		response.Error(w, r, http.StatusBadRequest, "VALIDATION", inputErr.Message)
	case errors.Is(err, service.ErrUserNotFound):
		observability.Audit(r, "auth.reset_password.rejected", "reason", "unknown_user")
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrDomainNotAllowed):
		observability.Audit(r, "auth.reset_password.rejected", "reason", "domain_policy")
		response.Error(w, r, http.StatusForbidden, "DOMAIN_POLICY",
			fmt.Sprintf("Only %s users can reset password", h.allowedDomain))
	default:
		h.writeInternal(w, r, "auth.reset_password.failed", err)
	}
}

// writeInternal logs the cause server-side and returns a generic message;
// store and hashing details never reach the caller.
func (h *AuthHandler) writeInternal(w http.ResponseWriter, r *http.Request, event string, err error) {
	slog.ErrorContext(r.Context(), event, "error", err)
	observability.Audit(r, event, "reason", "internal")
	response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "Server error")
}
