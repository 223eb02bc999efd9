// README: Itinerary generation handler; always answers with a structured plan after validation.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tripcraft/internal/modules/itinerary"
)

// itineraryTimeout covers two model calls at the larger output budget.
const itineraryTimeout = 90 * time.Second

type ItineraryHandler struct {
	itinerary *itinerary.Service
}

func NewItineraryHandler(svc *itinerary.Service) *ItineraryHandler {
	return &ItineraryHandler{itinerary: svc}
}

type tripSpecReq struct {
	Destination string   `json:"destination"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	Budget      float64  `json:"budget"`
	Travelers   int      `json:"travelers"`
	Interests   []string `json:"interests"`
	TripType    string   `json:"trip_type"`
}

func (r tripSpecReq) spec() (itinerary.TripSpec, error) {
	start, err := time.Parse(itinerary.DateLayout, strings.TrimSpace(r.StartDate))
	if err != nil {
		return itinerary.TripSpec{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", itinerary.ErrInvalidRequest)
	}
	end, err := time.Parse(itinerary.DateLayout, strings.TrimSpace(r.EndDate))
	if err != nil {
		return itinerary.TripSpec{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", itinerary.ErrInvalidRequest)
	}
	return itinerary.TripSpec{
		Destination: r.Destination,
		StartDate:   start,
		EndDate:     end,
		Budget:      r.Budget,
		Travelers:   r.Travelers,
		Interests:   r.Interests,
		TripType:    r.TripType,
	}, nil
}

type itineraryResp struct {
	Itinerary []itinerary.DaySchedule `json:"itinerary"`
	Source    itinerary.Source        `json:"source"`
}

// Generate handles POST /api/itineraries/generate.
func (h *ItineraryHandler) Generate(c *gin.Context) {
	var req tripSpecReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	spec, err := req.spec()
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), itineraryTimeout)
	defer cancel()

	it, src, err := h.itinerary.Plan(ctx, spec)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(c, http.StatusOK, itineraryResp{Itinerary: it.Days, Source: src})
}
