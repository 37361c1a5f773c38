package entity

import "time"

// OTPConsumed replaces a reset OTP once it has been verified. Real OTPs are
// in [1000, 9999], so the marker can never collide with one. It lets the
// reset-password step require a prior successful verify-otp while making the
// original code unusable a second time.
const OTPConsumed = 1

type User struct {
	Base
	Name         string  `db:"name"`
	Email        string  `db:"email"`
	Phone        *string `db:"phone"`
	PasswordHash string  `db:"password"`
	IsAdmin      bool    `db:"is_admin"`

	// Password-reset OTP state, nil outside an active reset flow
	ResetPasswordOTP     *int       `db:"reset_password_otp"`
	ResetPasswordExpires *time.Time `db:"reset_password_expires"`
}
