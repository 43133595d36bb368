package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	analysishandler "github.com/duetlabs/duet/backend/internal/handler/analysis"
	gamehandler "github.com/duetlabs/duet/backend/internal/handler/game"
	"github.com/duetlabs/duet/backend/internal/handler/live"
	questionhandler "github.com/duetlabs/duet/backend/internal/handler/question"
	"github.com/duetlabs/duet/backend/internal/handler/stream"
	middlewarePkg "github.com/duetlabs/duet/backend/internal/middleware"
	"github.com/duetlabs/duet/backend/internal/model/question"
	analysisservice "github.com/duetlabs/duet/backend/internal/service/analysis"
	gameservice "github.com/duetlabs/duet/backend/internal/service/game"
)

// NewRouter wires HTTP routes to core services. The analysis surfaces are
// only mounted when the pipeline has a model behind it.
func NewRouter(deck question.Deck, gameSvc *gameservice.Service, analysisSvc *analysisservice.Service, hub *live.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	questionHandler := questionhandler.New(deck)
	gameHandler := gamehandler.New(gameSvc, deck)
	liveHandler := live.New(hub, gameSvc)

	r.Route("/api", func(api chi.Router) {
		questionHandler.RegisterRoutes(api)
		gameHandler.RegisterRoutes(api)
		liveHandler.RegisterRoutes(api)

		if analysisSvc != nil {
			analysishandler.New(analysisSvc, gameSvc).RegisterRoutes(api)
			stream.New(analysisSvc, gameSvc).RegisterRoutes(api)
		}
	})

	return r
}
