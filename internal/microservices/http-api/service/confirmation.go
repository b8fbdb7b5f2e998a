package service

import (
	"context"
	"strings"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/middleware/auth"

	"github.com/google/uuid"
)

// ConfirmationCodes issues and checks the one-time codes exchanged for a token.
type ConfirmationCodes interface {
	// Issue generates a fresh code and stores its hash on user. The caller
	// persists the user.
	Issue(user *models.User) (string, error)
	Validate(user *models.User, code string) bool
}

// ConfirmationSender delivers an issued code to the user out of band.
type ConfirmationSender interface {
	Send(ctx context.Context, user *models.User, code string) error
}

type bcryptCodes struct {
	cost int
}

func NewConfirmationCodes(cost int) ConfirmationCodes {
	return &bcryptCodes{cost: cost}
}

func (b *bcryptCodes) Issue(user *models.User) (string, error) {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")
	hash, err := auth.HashSecret(code, b.cost)
	if err != nil {
		return "", err
	}
	user.ConfirmationCodeHash = hash
	return code, nil
}

func (b *bcryptCodes) Validate(user *models.User, code string) bool {
	if user == nil {
		return false
	}
	return auth.VerifySecret(user.ConfirmationCodeHash, code)
}
