package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"auth-service/internal/data/entity"
	"auth-service/internal/data/repository"
	"auth-service/internal/dto/request"
	"auth-service/pkg/token"
	"auth-service/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type authFixture struct {
	users  *fakeUserRepo
	tokens *fakeTokenRepo
	mail   *fakeMailer
	svc    AuthService
	tokSvc TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	mail := &fakeMailer{}
	repo := &repository.Repository{User: users, Token: tokens}
	issuer := token.NewIssuer(testAccessSecret, testRefreshSecret, 24*time.Hour, 60*24*time.Hour)
	config := &utils.Config{OTP: utils.OTPConfig{ExpiryMinutes: 10}}

	tokSvc := NewTokenService(repo, issuer, zap.NewNop())

	return &authFixture{
		users:  users,
		tokens: tokens,
		mail:   mail,
		svc:    NewAuthService(repo, tokSvc, mail, config, zap.NewNop()),
		tokSvc: tokSvc,
	}
}

func (f *authFixture) register(t *testing.T, email, password string) {
	t.Helper()

	phone := "+12025550123"
	_, err := f.svc.Register(context.Background(), &request.RegisterRequest{
		Name:     "Alice",
		Email:    email,
		Password: password,
		Phone:    &phone,
	})
	require.NoError(t, err)
}

func (f *authFixture) storedUser(t *testing.T, email string) *entity.User {
	t.Helper()

	user, err := f.users.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

func TestRegisterLoginLogoutScenario(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	f.register(t, "a@x.com", "Passw0rd!")

	user := f.storedUser(t, "a@x.com")
	assert.NotEqual(t, "Passw0rd!", user.PasswordHash, "password must be stored hashed")
	assert.False(t, user.IsAdmin)

	// Wrong password
	_, err := f.svc.Login(ctx, &request.LoginRequest{Email: "a@x.com", Password: "nope"})
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidCredential, utils.KindOf(err))

	// Unknown user
	_, err = f.svc.Login(ctx, &request.LoginRequest{Email: "b@x.com", Password: "Passw0rd!"})
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))

	// Correct login
	resp, err := f.svc.Login(ctx, &request.LoginRequest{Email: "a@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, 1, f.tokens.countForUser(user.ID))

	// Second login replaces the pair
	resp2, err := f.svc.Login(ctx, &request.LoginRequest{Email: "a@x.com", Password: "Passw0rd!"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.tokens.countForUser(user.ID))

	// Logout revokes, after which the access token verifies false
	require.NoError(t, f.svc.Logout(ctx, resp2.RefreshToken))
	assert.Equal(t, 0, f.tokens.countForUser(user.ID))

	ok, err := f.svc.VerifyToken(ctx, resp2.AccessToken)
	require.NoError(t, err)
	assert.False(t, ok)

	// Logging out twice reports not found
	err = f.svc.Logout(ctx, resp2.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com", "Passw0rd!")

	_, err := f.svc.Register(context.Background(), &request.RegisterRequest{
		Name:     "Alice Again",
		Email:    "a@x.com",
		Password: "Passw0rd!",
	})
	require.Error(t, err)
	assert.Equal(t, utils.KindConflict, utils.KindOf(err))
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.ForgotPassword(context.Background(), "nobody@x.com")
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
	assert.Empty(t, f.mail.sent)
}

func TestForgotPasswordStoresOTPAndSendsEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", "Passw0rd!")

	confirmation, err := f.svc.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Password reset OTP sent to your email", confirmation)

	user := f.storedUser(t, "a@x.com")
	require.NotNil(t, user.ResetPasswordOTP)
	assert.GreaterOrEqual(t, *user.ResetPasswordOTP, 1000)
	assert.LessOrEqual(t, *user.ResetPasswordOTP, 9999)

	require.NotNil(t, user.ResetPasswordExpires)
	remaining := time.Until(*user.ResetPasswordExpires)
	assert.Greater(t, remaining, 9*time.Minute)
	assert.LessOrEqual(t, remaining, 10*time.Minute)

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "a@x.com", f.mail.sent[0].To)
	assert.Equal(t, "Reset Password", f.mail.sent[0].Subject)
	assert.Contains(t, f.mail.sent[0].Body, fmt.Sprint(*user.ResetPasswordOTP))
}

func TestForgotPasswordEmailFailureKeepsOTP(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", "Passw0rd!")
	f.mail.fail = true

	_, err := f.svc.ForgotPassword(ctx, "a@x.com")
	require.Error(t, err)
	assert.Equal(t, utils.KindTransport, utils.KindOf(err))

	// OTP state was persisted before the send attempt
	user := f.storedUser(t, "a@x.com")
	assert.NotNil(t, user.ResetPasswordOTP)
	assert.NotNil(t, user.ResetPasswordExpires)
}

func TestVerifyOTPAndResetPasswordFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", "Passw0rd!")

	_, err := f.svc.ForgotPassword(ctx, "a@x.com")
	require.NoError(t, err)
	otp := *f.storedUser(t, "a@x.com").ResetPasswordOTP

	// Resetting before verification is rejected
	err = f.svc.ResetPassword(ctx, &request.ResetPasswordRequest{Email: "a@x.com", NewPassword: "N3wPass!"})
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidCredential, utils.KindOf(err))

	// Wrong code
	wrong := otp + 1
	if wrong > 9999 {
		wrong = 1000
	}
	err = f.svc.VerifyOTP(ctx, &request.VerifyOTPRequest{Email: "a@x.com", OTP: wrong})
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidCredential, utils.KindOf(err))

	// Correct code within the window
	require.NoError(t, f.svc.VerifyOTP(ctx, &request.VerifyOTPRequest{Email: "a@x.com", OTP: otp}))

	user := f.storedUser(t, "a@x.com")
	require.NotNil(t, user.ResetPasswordOTP)
	assert.Equal(t, entity.OTPConsumed, *user.ResetPasswordOTP)
	assert.Nil(t, user.ResetPasswordExpires)

	// Same code cannot verify twice
	err = f.svc.VerifyOTP(ctx, &request.VerifyOTPRequest{Email: "a@x.com", OTP: otp})
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidCredential, utils.KindOf(err))

	// Reset succeeds after verification and clears the OTP state
	oldHash := user.PasswordHash
	require.NoError(t, f.svc.ResetPassword(ctx, &request.ResetPasswordRequest{Email: "a@x.com", NewPassword: "N3wPass!"}))

	user = f.storedUser(t, "a@x.com")
	assert.NotEqual(t, oldHash, user.PasswordHash)
	assert.Nil(t, user.ResetPasswordOTP)
	assert.Nil(t, user.ResetPasswordExpires)

	// Old password no longer works, new one does
	_, err = f.svc.Login(ctx, &request.LoginRequest{Email: "a@x.com", Password: "Passw0rd!"})
	require.Error(t, err)
	_, err = f.svc.Login(ctx, &request.LoginRequest{Email: "a@x.com", Password: "N3wPass!"})
	require.NoError(t, err)
}

func TestVerifyOTPExpiredWindow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.register(t, "a@x.com", "Passw0rd!")

	// Plant an already-expired OTP directly
	user := f.storedUser(t, "a@x.com")
	otp := 4321
	expired := time.Now().Add(-time.Minute)
	user.ResetPasswordOTP = &otp
	user.ResetPasswordExpires = &expired
	require.NoError(t, f.users.Update(ctx, user))

	err := f.svc.VerifyOTP(ctx, &request.VerifyOTPRequest{Email: "a@x.com", OTP: otp})
	require.Error(t, err)
	assert.Equal(t, utils.KindInvalidCredential, utils.KindOf(err))
}

func TestVerifyTokenNeverLeaksInternals(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	ok, err := f.svc.VerifyToken(ctx, "completely-bogus")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.svc.VerifyToken(ctx, strings.Repeat("a", 4096))
	require.NoError(t, err)
	assert.False(t, ok)
}
