package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/policy"
	"reviewhub/internal/microservices/http-api/repository"
)

// UserInput is an admin-supplied user record.
type UserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Role      string
}

// UserPatch carries the optional fields of a profile update. Role is
// honoured only on the admin path.
type UserPatch struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Role      *string
}

type UserService interface {
	List(ctx context.Context, actor *models.User, search string, page, pageSize int) ([]models.User, int64, error)
	Create(ctx context.Context, actor *models.User, in UserInput) (*models.User, error)
	Get(ctx context.Context, actor *models.User, username string) (*models.User, error)
	Update(ctx context.Context, actor *models.User, username string, patch UserPatch) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, username string) error

	Me(ctx context.Context, actor *models.User) (*models.User, error)
	UpdateMe(ctx context.Context, actor *models.User, patch UserPatch) (*models.User, error)
}

type userService struct {
	store   repository.Store
	ratings *RatingAggregator
	logger  *slog.Logger
}

func NewUserService(store repository.Store, ratings *RatingAggregator, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{store: store, ratings: ratings, logger: logger}
}

func (s *userService) List(ctx context.Context, actor *models.User, search string, page, pageSize int) ([]models.User, int64, error) {
	if !policy.Can(actor, policy.Read, policy.Resource{Kind: policy.User}) {
		return nil, 0, ErrForbidden
	}
	return s.store.Users().List(ctx, strings.TrimSpace(search), page, pageSize)
}

func (s *userService) Create(ctx context.Context, actor *models.User, in UserInput) (*models.User, error) {
	if !policy.Can(actor, policy.Create, policy.Resource{Kind: policy.User}) {
		return nil, ErrForbidden
	}

	role := models.RoleUser
	if in.Role != "" {
		r, err := models.ParseRole(in.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRole, err)
		}
		role = r
	}

	user := &models.User{
		Username:  in.Username,
		Email:     strings.TrimSpace(in.Email),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Bio:       in.Bio,
		Role:      role,
	}
	if err := validateIdentity(user); err != nil {
		return nil, err
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := ensureIdentityFree(ctx, tx, user); err != nil {
			return err
		}
		return uniqueUserError(tx.Users().Create(ctx, user))
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user_created", "user_id", user.ID, "role", user.Role, "actor_id", actor.ID)
	return user, nil
}

func (s *userService) Get(ctx context.Context, actor *models.User, username string) (*models.User, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if !policy.Can(actor, policy.Read, policy.Resource{Kind: policy.User, OwnerID: user.ID}) {
		return nil, ErrForbidden
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, actor *models.User, username string, patch UserPatch) (*models.User, error) {
	if !policy.Can(actor, policy.Update, policy.Resource{Kind: policy.User}) {
		return nil, ErrForbidden
	}
	if patch.Role != nil && !policy.Can(actor, policy.ChangeRole, policy.Resource{Kind: policy.User}) {
		return nil, ErrForbidden
	}

	var user *models.User
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		user, err = tx.Users().FindByUsername(ctx, username)
		if err != nil {
			return notFound(err, "user")
		}
		if patch.Role != nil {
			role, err := models.ParseRole(*patch.Role)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidRole, err)
			}
			user.Role = role
		}
		return applyProfile(ctx, tx, user, patch)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user_updated", "user_id", user.ID, "role", user.Role, "actor_id", actor.ID)
	return user, nil
}

// Delete removes the account. Its reviews go with it, so the ratings of the
// titles it reviewed are recomputed in the same transaction.
func (s *userService) Delete(ctx context.Context, actor *models.User, username string) error {
	if !policy.Can(actor, policy.Delete, policy.Resource{Kind: policy.User}) {
		return ErrForbidden
	}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		user, err := tx.Users().FindByUsername(ctx, username)
		if err != nil {
			return notFound(err, "user")
		}

		titleIDs, err := tx.Reviews().TitleIDsByAuthor(ctx, user.ID)
		if err != nil {
			return err
		}
		for _, id := range titleIDs {
			if _, err := tx.Titles().LockByID(ctx, id); err != nil {
				return notFound(err, "title")
			}
		}

		if err := tx.Users().Delete(ctx, user.ID); err != nil {
			return notFound(err, "user")
		}
		for _, id := range titleIDs {
			if _, err := s.ratings.Recompute(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("user_deleted", "username", username, "actor_id", actor.ID)
	return nil
}

// Me reloads the acting user so the response reflects the stored row.
func (s *userService) Me(ctx context.Context, actor *models.User) (*models.User, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	user, err := s.store.Users().FindByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// UpdateMe edits the acting user's profile. A role in the patch is ignored.
func (s *userService) UpdateMe(ctx context.Context, actor *models.User, patch UserPatch) (*models.User, error) {
	if !policy.Can(actor, policy.EditProfile, policy.Resource{Kind: policy.User, OwnerID: actorID(actor)}) {
		return nil, ErrForbidden
	}
	patch.Role = nil

	var user *models.User
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		user, err = tx.Users().FindByID(ctx, actor.ID)
		if err != nil {
			return notFound(err, "user")
		}
		return applyProfile(ctx, tx, user, patch)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile_updated", "user_id", user.ID)
	return user, nil
}

// applyProfile copies the non-role fields of patch onto user, validates and saves.
func applyProfile(ctx context.Context, tx repository.Store, user *models.User, patch UserPatch) error {
	renamed := patch.Username != nil && *patch.Username != user.Username
	reEmailed := patch.Email != nil && strings.TrimSpace(*patch.Email) != user.Email

	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if err := validateIdentity(user); err != nil {
		return err
	}

	if renamed || reEmailed {
		if err := ensureIdentityFree(ctx, tx, user); err != nil {
			return err
		}
	}
	return notFound(uniqueUserError(tx.Users().Update(ctx, user)), "user")
}

func validateIdentity(user *models.User) error {
	if err := models.ValidateUsername(user.Username); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if user.Email == "" || len(user.Email) > models.EmailMaxLength {
		return fmt.Errorf("%w: email must be 1..%d characters", ErrInvalidInput, models.EmailMaxLength)
	}
	return nil
}

// ensureIdentityFree fails if the username or email already belongs to
// another user.
func ensureIdentityFree(ctx context.Context, tx repository.Store, user *models.User) error {
	var errs []error

	other, err := lookup(tx.Users().FindByUsername(ctx, user.Username))
	if err != nil {
		return err
	}
	if other != nil && other.ID != user.ID {
		errs = append(errs, ErrUsernameTaken)
	}

	other, err = lookup(tx.Users().FindByEmail(ctx, user.Email))
	if err != nil {
		return err
	}
	if other != nil && other.ID != user.ID {
		errs = append(errs, ErrEmailTaken)
	}
	return errors.Join(errs...)
}

func actorID(actor *models.User) string {
	if actor == nil {
		return ""
	}
	return actor.ID
}
