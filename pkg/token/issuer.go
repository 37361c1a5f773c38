package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Outcome is the result of a signature check. Expiry is kept separate from
// every other failure because only an expired access token may be refreshed.
type Outcome int

const (
	OutcomeValid Outcome = iota
	OutcomeExpired
	OutcomeInvalid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeExpired:
		return "expired"
	default:
		return "invalid"
	}
}

// ErrMissingSecret reports a signer constructed without its secrets. This is
// a deployment problem, not something a request can recover from.
var ErrMissingSecret = errors.New("token: signing secret is not configured")

type Claims struct {
	jwt.RegisteredClaims
	UserID  string `json:"id"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
}

// Issuer mints and checks the access/refresh token pair. Access tokens carry
// the admin flag and are signed with the access secret; refresh tokens carry
// only the user id and are signed with a distinct refresh secret.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssuePair mints a fresh access/refresh pair for the user. No side effects;
// persistence is the lifecycle manager's job.
func (i *Issuer) IssuePair(userID uuid.UUID, isAdmin bool) (accessToken, refreshToken string, err error) {
	accessToken, err = i.IssueAccess(userID, isAdmin)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = i.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(i.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID.String(),
	}, i.refreshSecret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// IssueAccess mints an access token only. Used by the silent refresh path,
// which leaves the refresh token untouched.
func (i *Issuer) IssueAccess(userID uuid.UUID, isAdmin bool) (string, error) {
	return i.sign(Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(i.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:  userID.String(),
		IsAdmin: isAdmin,
	}, i.accessSecret)
}

// sign sets a unique jti before signing. iat/exp have second precision, so
// without it two tokens minted for the same user within one second would be
// byte-identical.
func (i *Issuer) sign(claims Claims, secret []byte) (string, error) {
	if len(i.accessSecret) == 0 || len(i.refreshSecret) == 0 {
		return "", ErrMissingSecret
	}

	claims.ID = uuid.NewString()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// VerifyAccess checks an access token against the access secret.
func (i *Issuer) VerifyAccess(tokenString string) (*Claims, Outcome) {
	return verify(tokenString, i.accessSecret)
}

// VerifyRefresh checks a refresh token against the refresh secret.
func (i *Issuer) VerifyRefresh(tokenString string) (*Claims, Outcome) {
	return verify(tokenString, i.refreshSecret)
}

func verify(tokenString string, secret []byte) (*Claims, Outcome) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		// Claims are populated even when the token is only expired
		if errors.Is(err, jwt.ErrTokenExpired) {
			return claims, OutcomeExpired
		}
		return nil, OutcomeInvalid
	}
	if !parsed.Valid {
		return nil, OutcomeInvalid
	}

	return claims, OutcomeValid
}

// DecodeUnverified extracts claims without checking the signature. The
// lifecycle manager uses it to read the user id off a stored refresh token
// before verifying that token cryptographically.
func (i *Issuer) DecodeUnverified(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}
