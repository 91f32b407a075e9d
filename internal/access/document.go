package access

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"docpdf/internal/models"
)

// DocumentHasAccess mirrors the collection check for single documents:
// owner, or public for reads, or an explicit share grant. Write access
// requires a write-level grant.
func DocumentHasAccess(d *models.Document, userID primitive.ObjectID, permission string) bool {
	if d.UploadedBy == userID {
		return true
	}
	if d.IsPublic && permission == models.PermissionRead {
		return true
	}
	for i := range d.SharedWith {
		if d.SharedWith[i].User != userID {
			continue
		}
		if permission == models.PermissionRead {
			return true
		}
		return permission == models.PermissionWrite && d.SharedWith[i].Permission == models.PermissionWrite
	}
	return false
}

// CanModifyDocument reports whether the user may edit or delete a document:
// the uploader, or an admin.
func CanModifyDocument(d *models.Document, user *models.User) bool {
	return d.UploadedBy == user.ID || user.Role == models.UserRoleAdmin
}
