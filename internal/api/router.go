package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/lettercrush/internal/api/apierr"
	"github.com/mcoot/lettercrush/internal/api/handler"
	"github.com/mcoot/lettercrush/internal/api/middleware"
	"github.com/mcoot/lettercrush/internal/api/response"
	"github.com/mcoot/lettercrush/internal/api/sse"
	"github.com/mcoot/lettercrush/internal/dependencies/random"
	"github.com/mcoot/lettercrush/internal/model"
	"github.com/mcoot/lettercrush/internal/services/dictionary"
	"github.com/mcoot/lettercrush/internal/services/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger       *slog.Logger
	Sessions     session.ManagerInterface
	HighScores   handler.HighScoreLister
	Dictionaries map[model.Language]*dictionary.Service
	HubManager   *sse.HubManager
	RequestIDs   random.Random
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(cfg.Sessions, cfg.HubManager)
	highScoreHandler := handler.NewHighScoreHandler(cfg.HighScores)
	dictionaryHandler := handler.NewDictionaryHandler(cfg.Dictionaries)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger, cfg.RequestIDs))

	api.HandleFunc("/health", healthHandler(cfg.Sessions)).Methods(http.MethodGet)

	// Sessions
	api.HandleFunc("/sessions", sessionHandler.Create).Methods(http.MethodPost)
	sessions := api.PathPrefix("/sessions/{id}").Subrouter()
	sessions.HandleFunc("", sessionHandler.Get).Methods(http.MethodGet)
	sessions.HandleFunc("", sessionHandler.Delete).Methods(http.MethodDelete)
	sessions.HandleFunc("/select", sessionHandler.Select).Methods(http.MethodPost)
	sessions.HandleFunc("/select", sessionHandler.ClearSelection).Methods(http.MethodDelete)
	sessions.HandleFunc("/words", sessionHandler.Submit).Methods(http.MethodPost)
	sessions.HandleFunc("/swap", sessionHandler.Swap).Methods(http.MethodPost)
	sessions.HandleFunc("/pause", sessionHandler.Pause).Methods(http.MethodPost)
	sessions.HandleFunc("/resume", sessionHandler.Resume).Methods(http.MethodPost)
	sessions.HandleFunc("/recover", sessionHandler.Recover).Methods(http.MethodPost)
	sessions.HandleFunc("/restart", sessionHandler.Restart).Methods(http.MethodPost)
	sessions.HandleFunc("/hint", sessionHandler.Hint).Methods(http.MethodGet)
	sessions.HandleFunc("/events", sessionHandler.Events).Methods(http.MethodGet)

	api.HandleFunc("/highscores", highScoreHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/dictionary/{lang}/check/{word}", dictionaryHandler.Check).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		apierr.WriteError(w, apierr.NewNotFoundError("Route not found"))
	})

	return r
}

func healthHandler(sessions session.ManagerInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.OK(w, response.HealthResponse{
			Status:   "ok",
			Sessions: sessions.Count(),
		})
	}
}
