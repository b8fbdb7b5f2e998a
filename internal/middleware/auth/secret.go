package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashSecret creates a bcrypt hash of a one-time secret. A cost outside
// bcrypt's range falls back to bcrypt.DefaultCost.
func HashSecret(secret string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifySecret reports whether secret matches the stored bcrypt hash. An
// empty hash never matches.
func VerifySecret(hashedSecret, secret string) bool {
	if hashedSecret == "" || secret == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret)) == nil
}
