package utils

import (
	"math/rand"

	"github.com/google/uuid"
)

// ==================== UUID ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// ==================== OTP ====================

// GenerateOTP creates a 4-digit reset passcode in [1000, 9999]
func GenerateOTP() int {
	return 1000 + rand.Intn(9000)
}
