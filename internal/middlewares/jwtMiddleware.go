package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"docpdf/internal/utils"
)

// AuthMiddleware rejects requests without a valid bearer access token and
// stores the subject's id under the "userID" context key.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			utils.SendJSONError(w, "Missing token", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(header, "Bearer ") {
			utils.SendJSONError(w, "Invalid token format", http.StatusUnauthorized)
			return
		}
		tokenString := header[len("Bearer "):]

		claims, err := utils.VerifyAccessToken(tokenString)
		if err != nil {
			log.Debug().Err(err).Msg("Rejected access token")
			utils.SendJSONError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), "userID", claims.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
