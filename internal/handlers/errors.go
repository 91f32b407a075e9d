package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"docpdf/internal/access"
	"docpdf/internal/utils"
)

// writeError translates a service error into an HTTP response. Conflicts map
// to conflictStatus because some endpoints report them as 409 and others,
// matching the membership API, as plain 400s.
func writeError(w http.ResponseWriter, err error, conflictStatus int) {
	var e *access.Error
	if errors.As(err, &e) {
		status := http.StatusInternalServerError
		switch e.Kind {
		case access.KindUnauthorized:
			status = http.StatusUnauthorized
		case access.KindForbidden:
			status = http.StatusForbidden
		case access.KindNotFound:
			status = http.StatusNotFound
		case access.KindInvalidArgument:
			status = http.StatusBadRequest
		case access.KindConflict:
			status = conflictStatus
		}
		utils.SendJSONError(w, e.Reason, status)
		return
	}

	log.Error().Err(err).Msg("Unhandled service error")
	utils.SendJSONError(w, "Internal server error", http.StatusInternalServerError)
}
