package wire

import (
	"auth-service/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler) {
	// ==================== PUBLIC ROUTES ====================
	// All on the gate's allow-list
	r.Post("/login", authHandler.Login)
	r.Post("/register", authHandler.Register)
	r.Post("/forgot-password", authHandler.ForgotPassword)
	r.Post("/verify-otp", authHandler.VerifyOTP)
	r.Post("/reset-password", authHandler.ResetPassword)
	r.Post("/verify-token", authHandler.VerifyToken)

	// ==================== PROTECTED ROUTES ====================
	// Logout passes the gate like any other authenticated request
	r.Post("/logout", authHandler.Logout)
}
