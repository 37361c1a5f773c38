package usecase

import (
	"auth-service/internal/data/repository"
	"auth-service/pkg/mailer"
	"auth-service/pkg/token"
	"auth-service/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Token TokenService
	Auth  AuthService
	User  UserService
}

func NewService(
	repo *repository.Repository,
	issuer *token.Issuer,
	mail mailer.Mailer,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	tokens := NewTokenService(repo, issuer, log)

	return &Service{
		Token: tokens,
		Auth:  NewAuthService(repo, tokens, mail, config, log),
		User:  NewUserService(repo.User, log),
	}
}
