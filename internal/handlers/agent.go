package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-console/internal/analytics"
	"marketplace-console/internal/bookings"
	"marketplace-console/internal/search"
)

// PropertySearcher is the listing search index
type PropertySearcher interface {
	FilterSearch(params search.FilterParams) (*search.SearchResult, error)
}

// AgentHandler handles agent console requests
type AgentHandler struct {
	bookings  *bookings.Service
	analytics *analytics.Service
	search    PropertySearcher
}

// NewAgentHandler creates a new agent handler. searcher may be nil.
func NewAgentHandler(b *bookings.Service, a *analytics.Service, searcher PropertySearcher) *AgentHandler {
	return &AgentHandler{bookings: b, analytics: a, search: searcher}
}

// SearchProperties runs a filtered listing search
func (h *AgentHandler) SearchProperties(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search not available"})
		return
	}
	var params search.FilterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.search.FilterSearch(params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListBookings returns bookings, filterable by property or status
func (h *AgentHandler) ListBookings(c *gin.Context) {
	rows, err := h.bookings.List(c.Request.Context(), listQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bookings": rows,
		"count":    len(rows),
	})
}

// GetBooking returns one booking
func (h *AgentHandler) GetBooking(c *gin.Context) {
	b, err := h.bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// EditBooking changes dates or amounts; edited dates recompute the totals
func (h *AgentHandler) EditBooking(c *gin.Context) {
	raw, err := bindRaw(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if err := h.bookings.Edit(c.Request.Context(), id, raw); err != nil {
		respondError(c, err)
		return
	}
	h.GetBooking(c)
}

// UpdateBookingStatus overwrites booking, payment or deposit status
func (h *AgentHandler) UpdateBookingStatus(c *gin.Context) {
	raw, err := bindRaw(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	changes, err := h.bookings.UpdateStatus(c.Request.Context(), c.Param("id"), raw, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":      c.Param("id"),
		"changes": changes,
	})
}

// GetBookingHistory returns the status change history of a booking
func (h *AgentHandler) GetBookingHistory(c *gin.Context) {
	history, err := h.bookings.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"booking_id": c.Param("id"),
		"history":    history,
		"count":      len(history),
	})
}

// GetAnalytics returns the dashboard of ?agent_id, or of every listing
func (h *AgentHandler) GetAnalytics(c *gin.Context) {
	d, err := h.analytics.Dashboard(c.Request.Context(), c.Query("agent_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
