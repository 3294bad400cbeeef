package transport

import (
	"net/http"
	"strconv"

	"live-commerce/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// passthrough stands in for a route guard when none is configured
func passthrough(next http.Handler) http.Handler { return next }

func guardOrPassthrough(guard func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if guard == nil {
		return passthrough
	}
	return guard
}

// idParam reads the {id} URL parameter. It answers 400 itself when the id is
// not a positive integer.
func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id: "+raw)
		return 0, false
	}
	return id, true
}
