package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a flat set of user roles. Capabilities are looked up per action,
// roles are never compared by order.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

var ErrUnknownRole = errors.New("unknown role")

// ParseRole converts a raw string into a Role, rejecting anything outside the set.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleModerator, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

const (
	UsernameMaxLength = 150
	EmailMaxLength    = 254
)

var (
	ErrInvalidUsername = errors.New("invalid username")

	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
)

// ValidateUsername enforces the allowed charset and reserves "me" for the
// self-service endpoint.
func ValidateUsername(username string) error {
	if username == "" || len(username) > UsernameMaxLength {
		return fmt.Errorf("%w: length must be 1..%d", ErrInvalidUsername, UsernameMaxLength)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: only letters, digits and @/./+/-/_ are allowed", ErrInvalidUsername)
	}
	if strings.EqualFold(username, "me") {
		return fmt.Errorf("%w: \"me\" is reserved", ErrInvalidUsername)
	}
	return nil
}

type User struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email       string `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName   string `gorm:"size:150" json:"first_name"`
	LastName    string `gorm:"size:150" json:"last_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	Role        Role   `gorm:"size:16;default:'user';not null" json:"role"`
	IsStaff     bool   `gorm:"default:false;not null" json:"-"`
	IsSuperuser bool   `gorm:"default:false;not null" json:"-"`

	// unconfirmed until the first successful code exchange
	Confirmed            bool   `gorm:"default:false;not null" json:"-"`
	ConfirmationCodeHash string `gorm:"column:confirmation_code_hash" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID and default role before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}

// IsAdmin is true for the admin role and for staff or superuser accounts.
func (user *User) IsAdmin() bool {
	if user == nil {
		return false
	}
	return user.Role == RoleAdmin || user.IsStaff || user.IsSuperuser
}

func (user *User) IsModerator() bool {
	return user != nil && user.Role == RoleModerator
}

// Confirm moves the user from unconfirmed to confirmed and burns the
// one-time confirmation code.
func (user *User) Confirm() {
	user.Confirmed = true
	user.ConfirmationCodeHash = ""
}
