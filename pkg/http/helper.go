package http

import (
	"net/http"
	"strconv"
	"strings"

	"carematch/pkg/config"
	apperrors "carematch/pkg/errors"
)

// HeaderUserID carries the acting user's id. Authentication happens upstream; this service trusts it.
const HeaderUserID = "X-User-Id"

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ActorID returns the caller identity from the X-User-Id header, or "" when absent.
func ActorID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderUserID))
}

// RequireActorID is ActorID for operations that cannot run anonymously.
func RequireActorID(r *http.Request) (string, error) {
	id := ActorID(r)
	if id == "" {
		return "", apperrors.Unauthorized("missing " + HeaderUserID + " header")
	}
	return id, nil
}
