package access

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"docpdf/internal/models"
)

const shareTokenBytes = 32

// GenerateShareToken issues a fresh share token on c, replacing any prior
// token. Generate and regenerate are the same effect. Recognized expiresIn
// values ("1h", "24h", "7d", "30d") set an expiry relative to now; anything
// else, the empty string included, stores the token without one. Expiry is
// stored at issuance but not enforced on any read path.
func GenerateShareToken(c *models.Collection, callerID primitive.ObjectID, expiresIn string, now time.Time) error {
	if !HasAccess(c, callerID, RoleEditor) {
		return Forbidden("caller_id", "editor access required to manage sharing")
	}

	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("failed to generate share token: %w", err)
	}

	c.ShareToken = hex.EncodeToString(buf)
	c.ShareTokenExpiresAt = shareExpiry(expiresIn, now)
	c.UpdatedAt = now
	return nil
}

// RevokeShareToken clears the token and its expiry.
func RevokeShareToken(c *models.Collection, callerID primitive.ObjectID, now time.Time) error {
	if !HasAccess(c, callerID, RoleEditor) {
		return Forbidden("caller_id", "editor access required to manage sharing")
	}
	c.ShareToken = ""
	c.ShareTokenExpiresAt = nil
	c.UpdatedAt = now
	return nil
}

// ShareURL builds the externally consumed share link for a token.
func ShareURL(appURL, token string) string {
	if token == "" {
		return ""
	}
	return appURL + "/collections/shared/" + token
}

// Unrecognized values deliberately fall through to no expiration.
func shareExpiry(expiresIn string, now time.Time) *time.Time {
	var at time.Time
	switch expiresIn {
	case "1h":
		at = now.Add(time.Hour)
	case "24h":
		at = now.Add(24 * time.Hour)
	case "7d":
		at = now.AddDate(0, 0, 7)
	case "30d":
		at = now.AddDate(0, 0, 30)
	default:
		return nil
	}
	return &at
}
