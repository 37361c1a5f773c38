package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"auth-service/internal/dto/request"
	"auth-service/internal/usecase"
	"auth-service/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body")
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		h.rejectInvalid(w, validationErrors)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.logFailure("register", err)
		utils.ResponseAppError(w, err)
		return
	}

	utils.ResponseCreated(w, "Registration successful", resp)
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body")
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		h.rejectInvalid(w, validationErrors)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.logFailure("login", err)
		utils.ResponseAppError(w, err)
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// Logout handles POST /logout. The refresh token to revoke comes in the body.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req request.LogoutRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body")
		return
	}

	if req.RefreshToken == "" {
		utils.ResponseBadRequest(w, "Refresh token not provided")
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.logFailure("logout", err)
		utils.ResponseAppError(w, err)
		return
	}

	utils.ResponseSuccess(w, "Logged out successfully", nil)
}

// ForgotPassword handles POST /forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ForgotPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body")
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		h.rejectInvalid(w, validationErrors)
		return
	}

	confirmation, err := h.service.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.logFailure("forgot password", err)
		utils.ResponseAppError(w, err)
		return
	}

	utils.ResponseSuccess(w, confirmation, nil)
}

// VerifyOTP handles POST /verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyOTPRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body")
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		h.rejectInvalid(w, validationErrors)
		return
	}

	if err := h.service.VerifyOTP(r.Context(), &req); err != nil {
		h.logFailure("verify OTP", err)
		utils.ResponseAppError(w, err)
		return
	}

	utils.ResponseSuccess(w, "OTP verified successfully", nil)
}

// ResetPassword handles POST /reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body")
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		h.rejectInvalid(w, validationErrors)
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		h.logFailure("reset password", err)
		utils.ResponseAppError(w, err)
		return
	}

	utils.ResponseSuccess(w, "Password reset successfully", nil)
}

// VerifyToken handles POST /verify-token. Responds with a bare JSON boolean;
// any lookup miss is simply false, never an error.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	accessToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

	if accessToken == "" {
		utils.ResponseJSON(w, http.StatusOK, false)
		return
	}

	valid, err := h.service.VerifyToken(r.Context(), accessToken)
	if err != nil {
		h.logFailure("verify token", err)
		utils.ResponseAppError(w, err)
		return
	}

	utils.ResponseJSON(w, http.StatusOK, valid)
}

// rejectInvalid answers 422 and logs the flattened field errors.
func (h *AuthHandler) rejectInvalid(w http.ResponseWriter, errs map[string]string) {
	h.log.Warn("Validation failed", zap.String("errors", utils.FormatValidationErrors(errs)))
	utils.ResponseValidationError(w, errs)
}

func (h *AuthHandler) logFailure(operation string, err error) {
	if utils.KindOf(err) == utils.KindInternal {
		h.log.Error("Failed to "+operation, zap.Error(err))
		return
	}
	h.log.Warn(operation+" rejected", zap.Error(err))
}
