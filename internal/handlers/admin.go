package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-console/internal/cleanup"
	"marketplace-console/internal/diagnostics"
	"marketplace-console/internal/logging"
	"marketplace-console/internal/models"
	"marketplace-console/internal/procedures"
	"marketplace-console/internal/provinces"
	"marketplace-console/internal/scheduler"
	"marketplace-console/internal/seo"
	"marketplace-console/internal/settings"
	"marketplace-console/internal/store"
	"marketplace-console/internal/support"
)

// syncTimeout bounds a manually triggered location sync
const syncTimeout = 10 * time.Minute

// LocationSearcher is the location search index
type LocationSearcher interface {
	SearchLocations(query string, limit int64) ([]models.Location, int64, error)
}

// AdminHandler handles admin console requests
type AdminHandler struct {
	provinces   *provinces.Service
	runs        *provinces.RunLog
	syncer      *procedures.Syncer
	scheduler   *scheduler.Scheduler
	settings    *settings.Service
	auditor     *seo.Auditor
	support     *support.Service
	cleanup     *cleanup.Service
	retention   cleanup.Options
	deletes     *store.DeleteLogs
	diagnostics *diagnostics.Service
	locations   LocationSearcher
}

// AdminDeps are the services behind the admin routes. Optional ones may be nil.
type AdminDeps struct {
	Provinces   *provinces.Service
	Runs        *provinces.RunLog
	Syncer      *procedures.Syncer
	Scheduler   *scheduler.Scheduler
	Settings    *settings.Service
	Auditor     *seo.Auditor
	Support     *support.Service
	Cleanup     *cleanup.Service
	Retention   cleanup.Options
	Deletes     *store.DeleteLogs
	Diagnostics *diagnostics.Service
	Locations   LocationSearcher
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(d AdminDeps) *AdminHandler {
	if d.Retention.RetentionDays <= 0 {
		d.Retention = cleanup.DefaultOptions()
	}
	return &AdminHandler{
		provinces:   d.Provinces,
		runs:        d.Runs,
		syncer:      d.Syncer,
		scheduler:   d.Scheduler,
		settings:    d.Settings,
		auditor:     d.Auditor,
		support:     d.Support,
		cleanup:     d.Cleanup,
		retention:   d.Retention,
		deletes:     d.Deletes,
		diagnostics: d.Diagnostics,
		locations:   d.Locations,
	}
}

// GetProvinceAnalysis returns duplicate groups and missing provinces
func (h *AdminHandler) GetProvinceAnalysis(c *gin.Context) {
	a, err := h.provinces.Analysis(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// GetProvinceReference returns the official province list
func (h *AdminHandler) GetProvinceReference(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"provinces": provinces.Reference(),
		"count":     len(provinces.Reference()),
		"cities":    provinces.OfficialCities,
		"regencies": provinces.OfficialRegencies,
		"total":     provinces.OfficialTotal,
	})
}

// StandardizeProvince rewrites every spelling of a duplicate group to the canonical one
func (h *AdminHandler) StandardizeProvince(c *gin.Context) {
	var req struct {
		Key string `json:"key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logging.Logger.Infof("Admin: Standardizing province group %s", req.Key)
	run, err := h.provinces.Standardize(c.Request.Context(), req.Key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// GetStandardizationRuns returns the latest standardization runs with their steps
func (h *AdminHandler) GetStandardizationRuns(c *gin.Context) {
	if h.runs == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []models.StandardizationRun{}, "count": 0})
		return
	}
	runs, err := h.runs.Recent(c.Request.Context(), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// SearchLocations queries the location index
func (h *AdminHandler) SearchLocations(c *gin.Context) {
	if h.locations == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search not available"})
		return
	}
	hits, total, err := h.locations.SearchLocations(c.Query("q"), int64(queryInt(c, "limit", 20)))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits, "total_hits": total})
}

// TriggerSync runs the location sync procedure and reports its outcome
func (h *AdminHandler) TriggerSync(c *gin.Context) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Mode == "" {
		req.Mode = procedures.ModeFull
	}

	logging.Logger.Infof("Admin: Manual %s location sync requested", req.Mode)
	ctx, cancel := context.WithTimeout(c.Request.Context(), syncTimeout)
	defer cancel()

	result, err := h.syncer.Run(ctx, req.Mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetSyncStatus returns the last sync outcome and the circuit state
func (h *AdminHandler) GetSyncStatus(c *gin.Context) {
	state, err := h.syncer.State(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{
		"running": h.syncer.Running(),
		"state":   state,
	}
	if b := h.syncer.Breaker(); b != nil {
		resp["breaker"] = b.Status()
	}
	if h.scheduler != nil {
		resp["scheduled_jobs"] = h.scheduler.Entries()
	}
	c.JSON(http.StatusOK, resp)
}

// GetSEOSettings returns the saved SEO settings
func (h *AdminHandler) GetSEOSettings(c *gin.Context) {
	s, err := h.settings.SEO(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// UpdateSEOSettings saves the fields present in the body
func (h *AdminHandler) UpdateSEOSettings(c *gin.Context) {
	raw, err := bindRaw(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.settings.UpdateSEO(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetSEOScore scores the saved settings
func (h *AdminHandler) GetSEOScore(c *gin.Context) {
	report, err := h.settings.Score(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// RunSEOAudit compares a live page with the saved settings
func (h *AdminHandler) RunSEOAudit(c *gin.Context) {
	if h.auditor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "SEO audit not configured"})
		return
	}
	var req struct {
		Path string `json:"path"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, err := h.settings.SEO(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	result, err := h.auditor.Audit(c.Request.Context(), *s, req.Path)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResolveErrorLog marks an error log resolved
func (h *AdminHandler) ResolveErrorLog(c *gin.Context) {
	id := c.Param("id")
	if err := h.support.ResolveErrorLog(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "resolved": true})
}

// RunCleanup deletes resolved error logs past retention
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	var req struct {
		RetentionDays    int   `json:"retention_days"`
		MaxDeletionCount int   `json:"max_deletion_count"`
		DryRun           *bool `json:"dry_run"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := h.retention
	if req.RetentionDays > 0 {
		opts.RetentionDays = req.RetentionDays
	}
	if req.MaxDeletionCount > 0 {
		opts.MaxDeletionCount = req.MaxDeletionCount
	}
	// dry run unless asked otherwise
	opts.DryRun = req.DryRun == nil || *req.DryRun

	logging.Logger.Infof("Admin: Running cleanup (retention: %d days, max: %d, dry-run: %v)",
		opts.RetentionDays, opts.MaxDeletionCount, opts.DryRun)

	result, err := h.cleanup.PurgeResolvedErrorLogs(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCleanupStats returns deletion statistics
func (h *AdminHandler) GetCleanupStats(c *gin.Context) {
	stats, err := h.cleanup.Stats(c.Request.Context(), queryInt(c, "retention_days", h.retention.RetentionDays))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetDeleteLogs returns recent delete log entries
func (h *AdminHandler) GetDeleteLogs(c *gin.Context) {
	logs, err := h.deletes.Recent(c.Request.Context(), c.Query("collection"), queryInt(c, "limit", 100))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"logs":  logs,
		"count": len(logs),
	})
}

// GetDiagnostics returns the system health report
func (h *AdminHandler) GetDiagnostics(c *gin.Context) {
	report := h.diagnostics.Run(c.Request.Context())
	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, report)
}
