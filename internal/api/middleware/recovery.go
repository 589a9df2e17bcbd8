package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/lettercrush/internal/api/apierr"
	"github.com/mcoot/lettercrush/internal/dependencies/random"
	"github.com/mcoot/lettercrush/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Panics are answered with a JSON internal error.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

// Logging creates request logging middleware for the API
func Logging(logger *slog.Logger, rng random.Random) func(http.Handler) http.Handler {
	return middleware.Logging(logger.With(slog.String("component", "api")), rng)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
