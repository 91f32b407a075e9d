// Package access decides who may read, edit, share, or delete a collection
// and governs membership and share-link state transitions. It is pure: every
// operation checks the caller against a loaded Collection and either mutates
// that record in memory or returns a structured *Error. Persistence is the
// caller's job.
package access

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"docpdf/internal/models"
)

// Role is the closed set of collection roles. Owner is a computed position
// held by Collection.CreatedBy and is never stored in the member list.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleOwner  Role = "owner"
)

// Rank places roles on the total order viewer < editor < owner. Unknown
// roles rank below viewer so a corrupted entry never grants access.
func (r Role) Rank() int {
	switch r {
	case RoleViewer:
		return 1
	case RoleEditor:
		return 2
	case RoleOwner:
		return 3
	default:
		return 0
	}
}

// ParseAssignableRole accepts the roles a member may hold. Owner is reserved
// for the collection creator and is rejected here.
func ParseAssignableRole(s string) (Role, error) {
	switch Role(s) {
	case RoleViewer, RoleEditor:
		return Role(s), nil
	default:
		return "", InvalidArgument("role", "must be viewer or editor")
	}
}

// HasAccess reports whether userID holds at least the required role on c.
// The owner always passes; a public collection grants viewer access to
// anyone. Owner-level requirements are never requested through this path:
// call sites gate owner-only operations on identity directly.
func HasAccess(c *models.Collection, userID primitive.ObjectID, required Role) bool {
	if c.CreatedBy == userID {
		return true
	}
	if c.IsPublic && required == RoleViewer {
		return true
	}
	m := findMember(c, userID)
	if m == nil {
		return false
	}
	return Role(m.Role).Rank() >= required.Rank()
}

// AddMember grants targetID a role on c. The caller needs editor access,
// the target must not be the owner, and duplicate adds are rejected rather
// than upserted.
func AddMember(c *models.Collection, callerID, targetID primitive.ObjectID, role string, now time.Time) error {
	if !HasAccess(c, callerID, RoleEditor) {
		return Forbidden("caller_id", "editor access required to add members")
	}
	r, err := ParseAssignableRole(role)
	if err != nil {
		return err
	}
	if c.CreatedBy == targetID {
		return Conflict("user_id", "user is already the collection owner")
	}
	if findMember(c, targetID) != nil {
		return Conflict("user_id", "user is already a member")
	}
	c.Members = append(c.Members, models.Member{User: targetID, Role: string(r), AddedAt: now})
	c.UpdatedAt = now
	return nil
}

// UpdateMemberRole changes an existing member's role. The owner's role can
// never be modified through this path, not even by the owner.
func UpdateMemberRole(c *models.Collection, callerID, targetID primitive.ObjectID, newRole string, now time.Time) error {
	if !HasAccess(c, callerID, RoleEditor) {
		return Forbidden("caller_id", "editor access required to modify roles")
	}
	r, err := ParseAssignableRole(newRole)
	if err != nil {
		return err
	}
	if c.CreatedBy == targetID {
		return Conflict("user_id", "cannot modify owner role")
	}
	m := findMember(c, targetID)
	if m == nil {
		return NotFound("user_id", "member not found")
	}
	m.Role = string(r)
	c.UpdatedAt = now
	return nil
}

// RemoveMember removes targetID from c. The owner may remove anyone;
// any member may remove themselves regardless of role. Nobody else may
// remove a member, editors included. The owner cannot be removed.
func RemoveMember(c *models.Collection, callerID, targetID primitive.ObjectID, now time.Time) error {
	if c.CreatedBy != callerID && callerID != targetID {
		return Forbidden("caller_id", "only the owner or the member themselves may remove a member")
	}
	if c.CreatedBy == targetID {
		return Conflict("user_id", "cannot remove owner")
	}
	for i := range c.Members {
		if c.Members[i].User == targetID {
			c.Members = append(c.Members[:i], c.Members[i+1:]...)
			c.UpdatedAt = now
			return nil
		}
	}
	return NotFound("user_id", "member not found")
}

// CanDeleteCollection gates deletion: owner only, and only once the
// collection holds no documents. Counting documents is the caller's query.
func CanDeleteCollection(c *models.Collection, callerID primitive.ObjectID, documentCount int64) error {
	if c.CreatedBy != callerID {
		return Forbidden("caller_id", "only the owner may delete the collection")
	}
	if documentCount > 0 {
		return Conflict("collection_id", "collection still holds documents; move or delete them first")
	}
	return nil
}

func findMember(c *models.Collection, userID primitive.ObjectID) *models.Member {
	for i := range c.Members {
		if c.Members[i].User == userID {
			return &c.Members[i]
		}
	}
	return nil
}
