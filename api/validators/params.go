package validators

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/homeservices-backend/pkg/errors"
)

// PathString returns a trimmed, required path parameter.
func PathString(r *http.Request, key string) (string, error) {
	value := strings.TrimSpace(chi.URLParam(r, key))
	if value == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, key+" is required").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// PathUUID parses a path parameter as a UUID. Malformed ids are reported as
// not found because no stored row can carry them.
func PathUUID(r *http.Request, key, notFoundMessage string) (uuid.UUID, error) {
	raw, err := PathString(r, key)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return id, nil
}

// PathInt parses a numeric path parameter.
func PathInt(r *http.Request, key string) (int, error) {
	raw, err := PathString(r, key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" must be numeric").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}
