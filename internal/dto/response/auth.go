package response

import (
	"time"

	"auth-service/internal/data/entity"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse is the login payload: the user plus the freshly issued pair.
// The refresh token is returned once here, logout needs it back.
type AuthResponse struct {
	UserResponse
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	}
}

func AuthToResponse(user *entity.User, pair *entity.TokenPair) *AuthResponse {
	resp := &AuthResponse{
		UserResponse: UserToResponse(user),
	}

	if pair != nil {
		resp.AccessToken = pair.AccessToken
		resp.RefreshToken = pair.RefreshToken
	}

	return resp
}
