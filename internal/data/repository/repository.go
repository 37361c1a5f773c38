package repository

import (
	"auth-service/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	User  UserRepository
	Token TokenRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:  NewUserRepository(db, log),
		Token: NewTokenRepository(db, log),
	}
}
