package middleware

import (
	"net/http"
	"strings"

	"carematch/pkg/logger"

	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-Id"

// requestID reuses a caller supplied id so traces can be joined across services.
func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(HeaderRequestID)); id != "" && len(id) <= 128 {
		return id
	}
	return uuid.NewString()
}

func requestIDFrom(r *http.Request) string {
	return logger.RequestIDFromContext(r.Context())
}
