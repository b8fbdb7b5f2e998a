// Package policy decides whether an actor may perform an action on a
// resource. It holds no state and never touches storage; callers load the
// resource owner first and pass it in.
package policy

import "reviewhub/internal/microservices/http-api/models"

type Action int

const (
	Read Action = iota
	Create
	Update
	Delete
	ChangeRole
	EditProfile
)

func (a Action) String() string {
	switch a {
	case Read:
		return "read"
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case ChangeRole:
		return "change_role"
	case EditProfile:
		return "edit_profile"
	}
	return "unknown"
}

type Kind int

const (
	Category Kind = iota
	Genre
	Title
	Review
	Comment
	User
)

func (k Kind) String() string {
	switch k {
	case Category:
		return "category"
	case Genre:
		return "genre"
	case Title:
		return "title"
	case Review:
		return "review"
	case Comment:
		return "comment"
	case User:
		return "user"
	}
	return "unknown"
}

// Resource identifies what is being acted on. OwnerID is the author for
// reviews and comments and the account itself for users; it is empty for
// collections and catalog entries.
type Resource struct {
	Kind    Kind
	OwnerID string
}

// Can reports whether actor may perform action on res. A nil actor is anonymous.
func Can(actor *models.User, action Action, res Resource) bool {
	switch res.Kind {
	case Category, Genre, Title:
		return canCatalog(actor, action)
	case Review, Comment:
		return canAuthored(actor, action, res.OwnerID)
	case User:
		return canUser(actor, action, res.OwnerID)
	}
	return false
}

func canCatalog(actor *models.User, action Action) bool {
	switch action {
	case Read:
		return true
	case Create, Update, Delete:
		return actor.IsAdmin()
	}
	return false
}

func canAuthored(actor *models.User, action Action, ownerID string) bool {
	switch action {
	case Read:
		return true
	case Create:
		return actor != nil
	case Update, Delete:
		if actor == nil {
			return false
		}
		return isOwner(actor, ownerID) || actor.IsModerator() || actor.IsAdmin()
	}
	return false
}

func canUser(actor *models.User, action Action, ownerID string) bool {
	if actor == nil {
		return false
	}
	switch action {
	case Read:
		return isOwner(actor, ownerID) || actor.IsAdmin()
	case EditProfile:
		return isOwner(actor, ownerID)
	case Create, Update, Delete, ChangeRole:
		return actor.IsAdmin()
	}
	return false
}

func isOwner(actor *models.User, ownerID string) bool {
	return ownerID != "" && actor.ID == ownerID
}
