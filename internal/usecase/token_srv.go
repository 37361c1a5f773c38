package usecase

import (
	"context"
	"errors"
	"time"

	"auth-service/internal/data/entity"
	"auth-service/internal/data/repository"
	"auth-service/pkg/token"
	"auth-service/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenService owns the token-pair lifecycle: issuance, the one-pair-per-user
// invariant, verification, silent refresh on expiry, and revocation.
type TokenService interface {
	IssueForUser(ctx context.Context, user *entity.User) (*entity.TokenPair, error)
	VerifyAccessToken(ctx context.Context, accessToken string) (bool, error)
	RefreshOnExpiry(ctx context.Context, expiredAccessToken string) (string, error)
	Revoke(ctx context.Context, refreshToken string) error
}

type tokenService struct {
	repo   *repository.Repository
	issuer *token.Issuer
	log    *zap.Logger
}

func NewTokenService(repo *repository.Repository, issuer *token.Issuer, log *zap.Logger) TokenService {
	return &tokenService{
		repo:   repo,
		issuer: issuer,
		log:    log,
	}
}

// IssueForUser mints a new pair and makes it the user's only one. The delete
// and the insert are separate statements; a crash in between just forces a
// re-login, it can never leave two live pairs behind.
func (s *tokenService) IssueForUser(ctx context.Context, user *entity.User) (*entity.TokenPair, error) {
	accessToken, refreshToken, err := s.issuer.IssuePair(user.ID, user.IsAdmin)
	if err != nil {
		return nil, s.signingError(err)
	}

	if err := s.repo.Token.DeleteByUserID(ctx, user.ID); err != nil {
		s.log.Error("Failed to remove previous token pair",
			zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, utils.WrapAppError(utils.KindInternal, "failed to issue tokens", err)
	}

	pair := &entity.TokenPair{
		BaseSimple: entity.BaseSimple{
			ID:        utils.GenerateUUID(),
			CreatedAt: time.Now(),
		},
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}

	if err := s.repo.Token.Create(ctx, pair); err != nil {
		s.log.Error("Failed to persist token pair",
			zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, utils.WrapAppError(utils.KindInternal, "failed to issue tokens", err)
	}

	s.log.Info("Token pair issued", zap.String("user_id", user.ID.String()))

	return pair, nil
}

// VerifyAccessToken reports whether the presented access token belongs to a
// live pair. Validity is checked indirectly: the pair must exist in the
// store, the user it references must exist, and the stored refresh token
// must verify against the refresh secret. A structurally valid access token
// that is not in the store is not authenticated.
func (s *tokenService) VerifyAccessToken(ctx context.Context, accessToken string) (bool, error) {
	pair, err := s.repo.Token.FindByAccessToken(ctx, accessToken)
	if err != nil {
		return false, utils.WrapAppError(utils.KindInternal, "failed to verify token", err)
	}
	if pair == nil {
		return false, nil
	}

	claims, err := s.issuer.DecodeUnverified(pair.RefreshToken)
	if err != nil {
		s.log.Warn("Stored refresh token is not decodable",
			zap.Error(err), zap.String("user_id", pair.UserID.String()))
		return false, nil
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return false, nil
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return false, utils.WrapAppError(utils.KindInternal, "failed to verify token", err)
	}
	if user == nil {
		return false, nil
	}

	if _, outcome := s.issuer.VerifyRefresh(pair.RefreshToken); outcome != token.OutcomeValid {
		return false, nil
	}

	return true, nil
}

// RefreshOnExpiry rotates the access token of the pair stored under the
// expired one. Only the access token changes; the refresh token stays. Any
// failure along the chain denies, it never falls through to authenticated.
func (s *tokenService) RefreshOnExpiry(ctx context.Context, expiredAccessToken string) (string, error) {
	pair, err := s.repo.Token.FindByAccessToken(ctx, expiredAccessToken)
	if err != nil {
		return "", utils.WrapAppError(utils.KindInternal, "failed to refresh token", err)
	}
	if pair == nil {
		return "", utils.NewAppError(utils.KindUnauthorized, "Token does not exist")
	}

	claims, outcome := s.issuer.VerifyRefresh(pair.RefreshToken)
	if outcome != token.OutcomeValid {
		s.log.Warn("Stored refresh token failed verification",
			zap.String("user_id", pair.UserID.String()),
			zap.String("outcome", outcome.String()))
		return "", utils.NewAppError(utils.KindUnauthorized, "Invalid refresh token")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return "", utils.NewAppError(utils.KindUnauthorized, "Invalid user!")
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return "", utils.WrapAppError(utils.KindInternal, "failed to refresh token", err)
	}
	if user == nil {
		return "", utils.NewAppError(utils.KindUnauthorized, "Invalid user!")
	}

	newAccessToken, err := s.issuer.IssueAccess(user.ID, user.IsAdmin)
	if err != nil {
		return "", s.signingError(err)
	}

	if err := s.repo.Token.UpdateAccessToken(ctx, pair.ID, newAccessToken); err != nil {
		return "", utils.WrapAppError(utils.KindInternal, "failed to refresh token", err)
	}

	s.log.Info("Access token rotated", zap.String("user_id", user.ID.String()))

	return newAccessToken, nil
}

// Revoke deletes the pair holding the given refresh token.
func (s *tokenService) Revoke(ctx context.Context, refreshToken string) error {
	pair, err := s.repo.Token.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		return utils.WrapAppError(utils.KindInternal, "failed to revoke token", err)
	}
	if pair == nil {
		return utils.NewAppError(utils.KindNotFound, "Token not found")
	}

	if err := s.repo.Token.DeleteByRefreshToken(ctx, refreshToken); err != nil {
		return utils.WrapAppError(utils.KindInternal, "failed to revoke token", err)
	}

	s.log.Info("Token pair revoked", zap.String("user_id", pair.UserID.String()))

	return nil
}

func (s *tokenService) signingError(err error) error {
	if errors.Is(err, token.ErrMissingSecret) {
		s.log.Error("Token signing secrets are not configured", zap.Error(err))
		return utils.WrapAppError(utils.KindConfiguration, "Token signing is misconfigured", err)
	}
	return utils.WrapAppError(utils.KindInternal, "failed to sign tokens", err)
}
