package wire

import (
	"net/http"
	"time"

	"auth-service/internal/adaptor"
	"auth-service/internal/data/repository"
	"auth-service/internal/usecase"
	"auth-service/pkg/mailer"
	"auth-service/pkg/middleware"
	"auth-service/pkg/token"
	"auth-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired application
type App struct {
	Router *chi.Mux
}

// Wiring initializes all dependencies. Store handles, the token issuer and
// the mailer are constructed once here and passed down by reference, no
// module-level singletons.
func Wiring(repo *repository.Repository, mail mailer.Mailer, config *utils.Config, logger *zap.Logger) *App {
	issuer := token.NewIssuer(
		config.JWT.AccessSecret,
		config.JWT.RefreshSecret,
		time.Duration(config.JWT.AccessExpiryHours)*time.Hour,
		time.Duration(config.JWT.RefreshExpiryDays)*24*time.Hour,
	)

	service := usecase.NewService(repo, issuer, mail, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, service, issuer, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	service *usecase.Service,
	issuer *token.Issuer,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware; the auth gate itself knows the public allow-list
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())
	r.Use(middleware.AuthJWT(repo.Token, service.Token, issuer, config, logger))

	r.Route(config.App.APIPrefix, func(r chi.Router) {
		wireAuth(r, handler.Auth)
		wireUser(r, handler.User)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
