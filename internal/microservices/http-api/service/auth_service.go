package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"reviewhub/internal/config"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/repository"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Claims are the access token claims.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Signup(ctx context.Context, username, email string) (*models.User, error)
	ExchangeToken(ctx context.Context, username, code string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	store          repository.Store
	codes          ConfirmationCodes
	sender         ConfirmationSender
	jwtSecret      []byte
	accessTokenTTL time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

func NewAuthService(
	store repository.Store,
	codes ConfirmationCodes,
	sender ConfirmationSender,
	cfg *config.Config,
	logger *slog.Logger,
) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		store:          store,
		codes:          codes,
		sender:         sender,
		jwtSecret:      []byte(cfg.JWTSecret),
		accessTokenTTL: cfg.AccessTokenTTL,
		logger:         logger,
		now:            time.Now,
	}
}

// Signup registers an unconfirmed user and sends a confirmation code. Signing
// up again with the same username and email re-issues the code; a username or
// email that belongs to someone else is rejected.
func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if err := models.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if email == "" || len(email) > models.EmailMaxLength {
		return nil, fmt.Errorf("%w: email must be 1..%d characters", ErrInvalidInput, models.EmailMaxLength)
	}

	var (
		user *models.User
		code string
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		byName, err := lookup(tx.Users().FindByUsername(ctx, username))
		if err != nil {
			return err
		}
		byEmail, err := lookup(tx.Users().FindByEmail(ctx, email))
		if err != nil {
			return err
		}

		switch {
		case byName != nil && byEmail != nil && byName.ID == byEmail.ID:
			user = byName
		case byName != nil || byEmail != nil:
			var errs []error
			if byName != nil {
				errs = append(errs, ErrUsernameTaken)
			}
			if byEmail != nil {
				errs = append(errs, ErrEmailTaken)
			}
			return errors.Join(errs...)
		default:
			user = &models.User{Username: username, Email: email, Role: models.RoleUser}
		}

		code, err = s.codes.Issue(user)
		if err != nil {
			return err
		}
		if user.ID == "" {
			return uniqueUserError(tx.Users().Create(ctx, user))
		}
		return notFound(uniqueUserError(tx.Users().Update(ctx, user)), "user")
	})
	if err != nil {
		return nil, err
	}

	if err := s.sender.Send(ctx, user, code); err != nil {
		s.logger.Error("confirmation_send_failed", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.logger.Info("signup", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// ExchangeToken trades a confirmation code for an access token. The code is
// single use: a successful exchange confirms the user and burns it.
func (s *authService) ExchangeToken(ctx context.Context, username, code string) (string, error) {
	var user *models.User
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		user, err = tx.Users().FindByUsername(ctx, username)
		if err != nil {
			return notFound(err, "user")
		}
		if !s.codes.Validate(user, code) {
			return ErrInvalidConfirmationCode
		}
		user.Confirm()
		return notFound(tx.Users().Update(ctx, user), "user")
	})
	if err != nil {
		return "", err
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", err
	}
	s.logger.Info("token_issued", "user_id", user.ID)
	return token, nil
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// lookup turns a not-found result into (nil, nil).
func lookup(user *models.User, err error) (*models.User, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return user, err
}

// uniqueUserError maps a unique violation on users to the taken errors. The
// constraint does not say which column clashed, so both are reported.
func uniqueUserError(err error) error {
	if errors.Is(err, repository.ErrDuplicateKey) {
		return errors.Join(ErrUsernameTaken, ErrEmailTaken)
	}
	return err
}
