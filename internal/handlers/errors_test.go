package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"docpdf/internal/access"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		conflictStatus int
		wantStatus     int
	}{
		{"unauthorized", access.Unauthorized("credentials", "bad password"), http.StatusConflict, http.StatusUnauthorized},
		{"forbidden", access.Forbidden("collection_id", "no access"), http.StatusConflict, http.StatusForbidden},
		{"not found", access.NotFound("collection_id", "collection not found"), http.StatusConflict, http.StatusNotFound},
		{"invalid argument", access.InvalidArgument("role", "unknown role"), http.StatusConflict, http.StatusBadRequest},
		{"conflict as 409", access.Conflict("email", "email already registered"), http.StatusConflict, http.StatusConflict},
		{"conflict as 400", access.Conflict("user_id", "user is already a member"), http.StatusBadRequest, http.StatusBadRequest},
		{"unknown error", errors.New("boom"), http.StatusConflict, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err, tt.conflictStatus)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), "error")
		})
	}
}
