package adaptor

import (
	"net/http"

	"auth-service/internal/dto/request"
	"auth-service/internal/usecase"
	"auth-service/pkg/utils"

	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

// GetProfile handles GET /me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	// Set by the auth middleware
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		h.log.Error("Failed to get profile", zap.Error(err), zap.String("user_id", userID.String()))
		utils.ResponseAppError(w, err)
		return
	}

	utils.ResponseSuccess(w, "Profile retrieved successfully", profile)
}

// GetAllUsers handles GET /admin/users?page=1&per_page=10 (admin only)
func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	users, err := h.service.GetAllUsers(r.Context(), req)
	if err != nil {
		h.log.Error("Failed to get all users", zap.Error(err))
		utils.ResponseAppError(w, err)
		return
	}

	utils.ResponseSuccess(w, "Users retrieved successfully", users)
}
