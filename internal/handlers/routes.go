package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-console/internal/models"
	"marketplace-console/internal/realtime"
)

// Registrar mounts collection routes; *Resource[T] implements it
type Registrar interface {
	Register(g *gin.RouterGroup, path string, mutate ...gin.HandlerFunc)
}

// Routes collects everything mounted on the router. Nil parts are skipped.
type Routes struct {
	Admin *AdminHandler
	Agent *AgentHandler
	CS    *CSHandler
	Queue *QueueHandler
	Hub   *realtime.Hub

	Locations      Registrar
	ErrorLogs      Registrar
	Properties     Registrar
	PropertyImages Registrar
	Inquiries      Registrar
	Tickets        Registrar

	// Limit guards every mutation route
	Limit gin.HandlerFunc
	// Health overrides the default liveness response
	Health gin.HandlerFunc
}

// streamable are the collections the consoles may watch
var streamable = []string{
	models.CollectionLocations,
	models.CollectionProperties,
	models.CollectionRentalBookings,
	models.CollectionInquiries,
	models.CollectionCustomerComplaints,
	models.CollectionErrorLogs,
	models.CollectionLiveChatSessions,
	models.CollectionLiveChatMessages,
}

// Register mounts the API on r
func (rt Routes) Register(r *gin.Engine) {
	var mutate []gin.HandlerFunc
	if rt.Limit != nil {
		mutate = []gin.HandlerFunc{rt.Limit}
	}
	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return chain(mutate, h)
	}

	health := rt.Health
	if health == nil {
		health = func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		}
	}
	r.GET("/health", health)

	api := r.Group("/api")
	api.GET("/i18n", GetLocales)
	api.GET("/i18n/:locale", GetTranslations)
	if rt.Hub != nil {
		api.GET("/stream/:collection", Stream(rt.Hub, streamable...))
	}

	if h := rt.Admin; h != nil {
		admin := api.Group("/admin")
		if rt.Locations != nil {
			rt.Locations.Register(admin, "/locations", mutate...)
		}
		if rt.ErrorLogs != nil {
			rt.ErrorLogs.Register(admin, "/error-logs", mutate...)
		}
		admin.GET("/location-search", h.SearchLocations)
		admin.POST("/error-logs/:id/resolve", write(h.ResolveErrorLog)...)

		admin.GET("/provinces/analysis", h.GetProvinceAnalysis)
		admin.GET("/provinces/reference", h.GetProvinceReference)
		admin.GET("/provinces/runs", h.GetStandardizationRuns)
		admin.POST("/provinces/standardize", write(h.StandardizeProvince)...)

		admin.GET("/sync/status", h.GetSyncStatus)
		admin.POST("/sync", write(h.TriggerSync)...)

		admin.GET("/seo", h.GetSEOSettings)
		admin.PUT("/seo", write(h.UpdateSEOSettings)...)
		admin.GET("/seo/score", h.GetSEOScore)
		admin.POST("/seo/audit", write(h.RunSEOAudit)...)

		admin.GET("/cleanup/stats", h.GetCleanupStats)
		admin.POST("/cleanup", write(h.RunCleanup)...)
		admin.GET("/delete-logs", h.GetDeleteLogs)
		admin.GET("/diagnostics", h.GetDiagnostics)
	}

	if h := rt.Agent; h != nil {
		agent := api.Group("/agent")
		if rt.Properties != nil {
			rt.Properties.Register(agent, "/properties", mutate...)
		}
		if rt.PropertyImages != nil {
			rt.PropertyImages.Register(agent, "/property-images", mutate...)
		}
		if rt.Inquiries != nil {
			rt.Inquiries.Register(agent, "/inquiries", mutate...)
		}
		agent.GET("/property-search", h.SearchProperties)
		agent.GET("/bookings", h.ListBookings)
		agent.GET("/bookings/:id", h.GetBooking)
		agent.GET("/bookings/:id/history", h.GetBookingHistory)
		agent.PATCH("/bookings/:id", write(h.EditBooking)...)
		agent.PATCH("/bookings/:id/status", write(h.UpdateBookingStatus)...)
		agent.GET("/analytics", h.GetAnalytics)
	}

	if h := rt.CS; h != nil {
		cs := api.Group("/cs")
		if rt.Tickets != nil {
			rt.Tickets.Register(cs, "/tickets", mutate...)
		}
		cs.POST("/tickets/:id/resolve", write(h.ResolveTicket)...)
		cs.POST("/tickets/:id/reopen", write(h.ReopenTicket)...)

		cs.GET("/chat/sessions", h.ListSessions)
		cs.GET("/chat/sessions/:id/messages", h.ListMessages)
		cs.POST("/chat/sessions/:id/messages", write(h.PostMessage)...)
		cs.POST("/chat/sessions/:id/assign", write(h.AssignSession)...)
		cs.POST("/chat/sessions/:id/close", write(h.CloseSession)...)
		cs.POST("/chat/sessions/:id/read", write(h.MarkRead)...)

		cs.GET("/settings", h.GetSettings)
		cs.PUT("/settings", write(h.UpdateSettings)...)
	}

	if h := rt.Queue; h != nil {
		api.GET("/queue", h.List)
		api.GET("/queue/stats", h.GetStats)
		api.POST("/queue", write(h.Enqueue)...)
		api.POST("/queue/sync", write(h.Sync)...)
	}
}
