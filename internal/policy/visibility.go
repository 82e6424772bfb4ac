// Package policy contains the pure authorization predicates for posts.
// It has no dependencies on the store or transport layers.
package policy

import (
	"inkwell/internal/models"
)

// Actor is the verified identity performing a request. A nil *Actor means
// the request is anonymous.
type Actor struct {
	ID   uint
	Role models.UserRole
	// Name is the actor's display name, used for stamping updated_by.
	Name string
}

// IsAdmin reports whether the actor is present and has the admin role.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// Visible reports whether the actor may observe the post's existence and
// content. Published posts are visible to everyone, including anonymous
// readers. Drafts and scheduled posts are visible only to their author and
// to admins.
func Visible(post *models.Post, actor *Actor) bool {
	if post.Status == models.PostStatusPublished {
		return true
	}
	if actor == nil {
		return false
	}
	return actor.ID == post.AuthorID || actor.Role == models.RoleAdmin
}

// CanModify reports whether the actor may mutate (update, delete) the post.
func CanModify(post *models.Post, actor *Actor) bool {
	if actor == nil {
		return false
	}
	return actor.ID == post.AuthorID || actor.Role == models.RoleAdmin
}
