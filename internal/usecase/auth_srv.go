package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth-service/internal/data/entity"
	"auth-service/internal/data/repository"
	"auth-service/internal/dto/request"
	"auth-service/internal/dto/response"
	"auth-service/pkg/mailer"
	"auth-service/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) error
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error
	VerifyToken(ctx context.Context, accessToken string) (bool, error)
}

type authService struct {
	repo   *repository.Repository
	tokens TokenService
	mail   mailer.Mailer
	config *utils.Config
	log    *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	tokens TokenService,
	mail mailer.Mailer,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		tokens: tokens,
		mail:   mail,
		config: config,
		log:    log,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error) {
	// 1. Check email is not taken yet
	existing, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to check email", zap.Error(err), zap.String("email", req.Email))
		return nil, utils.WrapAppError(utils.KindInternal, "User registration failed", err)
	}
	if existing != nil {
		return nil, utils.NewAppError(utils.KindConflict, "Email already exists")
	}

	// 2. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, utils.WrapAppError(utils.KindInternal, "User registration failed", err)
	}

	// 3. Create user entity
	now := time.Now()
	user := &entity.User{
		Base: entity.Base{
			ID:        utils.GenerateUUID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hashedPassword,
	}

	// 4. Save user. Concurrent registrations can slip past the pre-check,
	// the unique index on email is the real guard.
	if err := s.repo.User.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, utils.NewAppError(utils.KindConflict, "Email already exists")
		}
		s.log.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
		return nil, utils.WrapAppError(utils.KindInternal, "User registration failed", err)
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	// 1. Find user by email
	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to find user for login", zap.Error(err), zap.String("email", req.Email))
		return nil, utils.WrapAppError(utils.KindInternal, "Login failed", err)
	}
	if user == nil {
		return nil, utils.NewAppError(utils.KindNotFound, "User not found")
	}

	// 2. Check password
	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Incorrect password", zap.String("user_id", user.ID.String()))
		return nil, utils.NewAppError(utils.KindInvalidCredential, "Incorrect password")
	}

	// 3. Issue pair; replaces any pair from an earlier login
	pair, err := s.tokens.IssueForUser(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return response.AuthToResponse(user, pair), nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return err
	}

	s.log.Info("User logged out")
	return nil
}

// ForgotPassword stores a fresh OTP on the user row and emails it. The OTP
// state is persisted before the send, so a transport failure does not lose
// the flow, the client can retry the email.
func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		s.log.Error("Failed to find user for password reset", zap.Error(err), zap.String("email", email))
		return "", utils.WrapAppError(utils.KindInternal, "Forgot password failed", err)
	}
	if user == nil {
		return "", utils.NewAppError(utils.KindNotFound, "User not found")
	}

	otp := utils.GenerateOTP()
	expiresAt := time.Now().Add(time.Duration(s.config.OTP.ExpiryMinutes) * time.Minute)

	user.ResetPasswordOTP = &otp
	user.ResetPasswordExpires = &expiresAt
	user.UpdatedAt = time.Now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to store OTP", zap.Error(err), zap.String("email", email))
		return "", utils.WrapAppError(utils.KindInternal, "Forgot password failed", err)
	}

	s.log.Info("Password reset OTP generated",
		zap.String("user_id", user.ID.String()),
		zap.Time("expires_at", expiresAt))

	body := fmt.Sprintf("Your OTP for password reset is %d. It is valid for %d minutes.",
		otp, s.config.OTP.ExpiryMinutes)

	confirmation, err := s.mail.Send(ctx, email, "Reset Password", body)
	if err != nil {
		s.log.Error("Failed to send OTP email", zap.Error(err), zap.String("email", email))
		return "", utils.WrapAppError(utils.KindTransport, "Failed to send OTP email", err)
	}

	return confirmation, nil
}

// VerifyOTP checks the submitted code against the stored one and its expiry.
// On success the stored OTP becomes the consumed marker, so the same code
// can never verify twice.
func (s *authService) VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) error {
	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to find user for OTP verify", zap.Error(err), zap.String("email", req.Email))
		return utils.WrapAppError(utils.KindInternal, "OTP verification failed", err)
	}
	if user == nil {
		return utils.NewAppError(utils.KindNotFound, "User not found")
	}

	if user.ResetPasswordOTP == nil ||
		*user.ResetPasswordOTP != req.OTP ||
		user.ResetPasswordExpires == nil ||
		user.ResetPasswordExpires.Before(time.Now()) {
		s.log.Warn("Invalid or expired OTP submitted", zap.String("email", req.Email))
		return utils.NewAppError(utils.KindInvalidCredential, "Invalid or expired OTP")
	}

	consumed := entity.OTPConsumed
	user.ResetPasswordOTP = &consumed
	user.ResetPasswordExpires = nil
	user.UpdatedAt = time.Now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to mark OTP consumed", zap.Error(err), zap.String("email", req.Email))
		return utils.WrapAppError(utils.KindInternal, "OTP verification failed", err)
	}

	s.log.Info("OTP verified", zap.String("user_id", user.ID.String()))

	return nil
}

// ResetPassword requires a prior successful VerifyOTP (consumed marker
// present), then rehashes the password and clears the OTP state.
func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error {
	user, err := s.repo.User.FindByEmail(ctx, req.Email)
	if err != nil {
		s.log.Error("Failed to find user for password reset", zap.Error(err), zap.String("email", req.Email))
		return utils.WrapAppError(utils.KindInternal, "Password reset failed", err)
	}
	if user == nil {
		return utils.NewAppError(utils.KindNotFound, "User not found")
	}

	if user.ResetPasswordOTP == nil || *user.ResetPasswordOTP != entity.OTPConsumed {
		return utils.NewAppError(utils.KindInvalidCredential, "OTP not verified")
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		s.log.Error("Failed to hash new password", zap.Error(err))
		return utils.WrapAppError(utils.KindInternal, "Password reset failed", err)
	}

	user.PasswordHash = hashedPassword
	user.ResetPasswordOTP = nil
	user.ResetPasswordExpires = nil
	user.UpdatedAt = time.Now()

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.log.Error("Failed to update password", zap.Error(err), zap.String("email", req.Email))
		return utils.WrapAppError(utils.KindInternal, "Password reset failed", err)
	}

	s.log.Info("Password reset", zap.String("user_id", user.ID.String()))

	return nil
}

func (s *authService) VerifyToken(ctx context.Context, accessToken string) (bool, error) {
	return s.tokens.VerifyAccessToken(ctx, accessToken)
}
