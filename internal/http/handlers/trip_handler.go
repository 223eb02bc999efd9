// README: Trip handlers (CRUD, itinerary generation, calendar export, quota); all require auth.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripcraft/internal/http/middleware"
	"tripcraft/internal/modules/aiusage"
	"tripcraft/internal/modules/trip"
)

type TripHandler struct {
	trips *trip.Service
	usage *aiusage.Service
}

// NewTripHandler wires trip routes; usage may be nil when metering is off.
func NewTripHandler(trips *trip.Service, usage *aiusage.Service) *TripHandler {
	return &TripHandler{trips: trips, usage: usage}
}

type tripReq struct {
	Title string `json:"title"`
	tripSpecReq
}

func (r tripReq) details() (trip.Details, error) {
	spec, err := r.spec()
	if err != nil {
		return trip.Details{}, err
	}
	return trip.Details{
		Title:       r.Title,
		Destination: spec.Destination,
		StartDate:   spec.StartDate,
		EndDate:     spec.EndDate,
		Budget:      spec.Budget,
		Travelers:   spec.Travelers,
		Interests:   spec.Interests,
		TripType:    spec.TripType,
	}, nil
}

// Create handles POST /api/trips.
func (h *TripHandler) Create(c *gin.Context) {
	var req tripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := req.details()
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	t, err := h.trips.Create(c.Request.Context(), trip.CreateCommand{OwnerUID: middleware.CallerUID(c), Details: d})
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, t)
}

// List handles GET /api/trips.
func (h *TripHandler) List(c *gin.Context) {
	trips, err := h.trips.List(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"trips": trips})
}

// Get handles GET /api/trips/:id.
func (h *TripHandler) Get(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	t, err := h.trips.Get(c.Request.Context(), middleware.CallerUID(c), id)
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

// Update handles PUT /api/trips/:id.
func (h *TripHandler) Update(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	var req tripReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	d, err := req.details()
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	t, err := h.trips.Update(c.Request.Context(), trip.UpdateCommand{ID: id, OwnerUID: middleware.CallerUID(c), Details: d})
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

// Delete handles DELETE /api/trips/:id.
func (h *TripHandler) Delete(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	if err := h.trips.Delete(c.Request.Context(), middleware.CallerUID(c), id); err != nil {
		writeTripError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GenerateItinerary handles POST /api/trips/:id/itinerary.
func (h *TripHandler) GenerateItinerary(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), itineraryTimeout)
	defer cancel()

	t, err := h.trips.GenerateItinerary(ctx, middleware.CallerUID(c), id)
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

// Calendar handles GET /api/trips/:id/calendar.ics.
func (h *TripHandler) Calendar(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	doc, err := h.trips.Calendar(c.Request.Context(), middleware.CallerUID(c), id)
	if err != nil {
		writeTripError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="trip-`+id+`.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(doc))
}

// Usage handles GET /api/usage.
func (h *TripHandler) Usage(c *gin.Context) {
	if h.usage == nil {
		writeError(c, http.StatusNotFound, "usage metering is disabled")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	u, err := h.usage.Usage(ctx, middleware.CallerUID(c))
	if err != nil {
		writeTripError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, u)
}

func tripID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid trip id")
		return "", false
	}
	return id, true
}
