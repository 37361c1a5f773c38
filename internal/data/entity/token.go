package entity

import "github.com/google/uuid"

// TokenPair is the single live access/refresh pair of one user. The user_id
// column is unique: issuing a new pair always replaces the old one.
type TokenPair struct {
	BaseSimple
	UserID       uuid.UUID `db:"user_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
}
