// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripcraft/internal/http/handlers"
	"tripcraft/internal/http/middleware"
	"tripcraft/internal/infra"
	"tripcraft/internal/modules/aiusage"
	"tripcraft/internal/modules/assistant"
	"tripcraft/internal/modules/itinerary"
	"tripcraft/internal/modules/trip"
)

type ServerDeps struct {
	Assistant *assistant.Service
	Itinerary *itinerary.Service
	Trips     *trip.Service
	Usage     *aiusage.Service
	Verifier  infra.TokenVerifier
	Limiter   *middleware.RateLimiter

	// TrustedProxies lists the proxy addresses or CIDRs whose forwarding
	// headers are believed. Empty means the peer address is the client.
	TrustedProxies []string
}

type Server struct {
	assistant *assistant.Service
	itinerary *itinerary.Service
	trips     *trip.Service
	usage     *aiusage.Service
	verifier  infra.TokenVerifier
	limiter   *middleware.RateLimiter
	proxies   []string
}

func NewServer(deps ServerDeps) *Server {
	return &Server{
		assistant: deps.Assistant,
		itinerary: deps.Itinerary,
		trips:     deps.Trips,
		usage:     deps.Usage,
		verifier:  deps.Verifier,
		limiter:   deps.Limiter,
		proxies:   deps.TrustedProxies,
	}
}

// Routes builds the gin engine. Trip routes are only mounted when both a
// trip service and a token verifier are configured.
func (s *Server) Routes() http.Handler {
	r := gin.New()
	if err := r.SetTrustedProxies(s.proxies); err != nil {
		log.Printf("http: ignoring trusted proxies %v: %v", s.proxies, err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.Recovery(), middleware.Logging())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")

	if s.assistant != nil {
		h := handlers.NewAssistantHandler(s.assistant)
		api.POST("/assistant/chat", middleware.RateLimit(s.limiter), h.Chat)
		api.GET("/assistant/sessions/:id", h.History)
		api.DELETE("/assistant/sessions/:id", h.Reset)
	}

	if s.itinerary != nil {
		h := handlers.NewItineraryHandler(s.itinerary)
		api.POST("/itineraries/generate", middleware.RateLimit(s.limiter), h.Generate)
	}

	if s.trips != nil && s.verifier != nil {
		h := handlers.NewTripHandler(s.trips, s.usage)
		authed := api.Group("", middleware.Auth(s.verifier))
		authed.POST("/trips", h.Create)
		authed.GET("/trips", h.List)
		authed.GET("/trips/:id", h.Get)
		authed.PUT("/trips/:id", h.Update)
		authed.DELETE("/trips/:id", h.Delete)
		authed.POST("/trips/:id/itinerary", middleware.RateLimit(s.limiter), h.GenerateItinerary)
		authed.GET("/trips/:id/calendar.ics", h.Calendar)
		authed.GET("/usage", h.Usage)
	}

	return r
}
