package middleware

import (
	"net/http"
	"regexp"
	"strings"

	"auth-service/internal/data/repository"
	"auth-service/internal/usecase"
	"auth-service/pkg/token"
	"auth-service/pkg/utils"

	"go.uber.org/zap"
)

// publicPaths lists the routes that skip the gate, each with and without a
// trailing slash.
func publicPaths(prefix string) map[string]bool {
	routes := []string{
		"/login",
		"/register",
		"/forgot-password",
		"/verify-otp",
		"/reset-password",
		"/verify-token",
	}

	public := map[string]bool{"/health": true}
	for _, route := range routes {
		public[prefix+route] = true
		public[prefix+route+"/"] = true
	}

	return public
}

// AuthJWT is the request gate: every non-public request needs a bearer access
// token that verifies against the access secret AND still exists in the token
// store. An expired (but otherwise valid) token is silently refreshed through
// the lifecycle manager; the replacement is set on the response so the client
// can pick it up. Every other verification failure is a hard deny.
func AuthJWT(
	tokenRepo repository.TokenRepository,
	tokens usecase.TokenService,
	issuer *token.Issuer,
	config *utils.Config,
	logger *zap.Logger,
) func(http.Handler) http.Handler {
	public := publicPaths(config.App.APIPrefix)
	adminRoute := regexp.MustCompile("(?i)^" + regexp.QuoteMeta(config.App.APIPrefix) + "/admin/")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if public[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			// 1. Extract bearer token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}
			accessToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			// 2. Verify signature; only expiry opens the refresh path
			claims, outcome := issuer.VerifyAccess(accessToken)
			switch outcome {
			case token.OutcomeExpired:
				newAccessToken, err := tokens.RefreshOnExpiry(r.Context(), accessToken)
				if err != nil {
					logger.Warn("Silent refresh denied",
						zap.Error(err),
						zap.String("path", r.URL.Path))
					utils.ResponseAppError(w, err)
					return
				}

				accessToken = newAccessToken
				r.Header.Set("Authorization", "Bearer "+newAccessToken)
				w.Header().Set("Authorization", "Bearer "+newAccessToken)

				claims, outcome = issuer.VerifyAccess(newAccessToken)
				if outcome != token.OutcomeValid {
					utils.ResponseUnauthorized(w, "Invalid token")
					return
				}

			case token.OutcomeInvalid:
				logger.Warn("Invalid access token", zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid token")
				return
			}

			// 3. Revocation check: the pair must still exist in the store
			pair, err := tokenRepo.FindByAccessToken(r.Context(), accessToken)
			if err != nil {
				logger.Error("Failed to look up token pair", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}
			if pair == nil {
				logger.Warn("Access token not found in store", zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Token does not exist")
				return
			}

			// Admin-prefixed routes additionally need the admin claim
			if adminRoute.MatchString(r.URL.Path) && !claims.IsAdmin {
				logger.Warn("Non-admin token on admin route",
					zap.String("user_id", claims.UserID),
					zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Admin access required")
				return
			}

			userID, err := utils.ParseUUID(claims.UserID)
			if err != nil {
				utils.ResponseUnauthorized(w, "Invalid token")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID, claims.IsAdmin)
			ctx = utils.SetTokenContext(ctx, accessToken)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
