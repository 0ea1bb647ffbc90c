package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/auth"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// withAuth verifies the bearer token and stores the owner's user id in the
// request context. Requests without a valid token get 401.
func (s *HTTPServer) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthHeaderName)
		if !strings.HasPrefix(header, common.AuthSchemePrefix) {
			s.writeError(r.Context(), w, common.ErrInvalidToken)
			return
		}

		accessToken := strings.TrimPrefix(header, common.AuthSchemePrefix)
		userID, err := auth.GetUserIDFromToken(accessToken, s.jwtSecret)
		if err != nil {
			s.writeError(r.Context(), w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

func userIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}
