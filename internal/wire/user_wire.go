package wire

import (
	"auth-service/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireUser(r chi.Router, userHandler *adaptor.UserHandler) {
	// Authenticated profile
	r.Get("/me", userHandler.GetProfile)

	// Admin-prefixed, the gate additionally requires the admin claim here
	r.Get("/admin/users", userHandler.GetAllUsers)
}
