package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-console/internal/opqueue"
	"marketplace-console/internal/scheduler"
)

// QueueHandler handles the offline operation queue
type QueueHandler struct {
	queue     *opqueue.Queue
	worker    *scheduler.QueueWorker
	batchSize int
}

// NewQueueHandler creates a queue handler. worker may be nil, in which case
// flushes run directly against the queue.
func NewQueueHandler(q *opqueue.Queue, worker *scheduler.QueueWorker, batchSize int) *QueueHandler {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &QueueHandler{queue: q, worker: worker, batchSize: batchSize}
}

// Enqueue stores an operation made while offline
func (h *QueueHandler) Enqueue(c *gin.Context) {
	var req opqueue.EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ClientID == "" {
		req.ClientID = actor(c)
	}
	op, err := h.queue.Enqueue(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, op)
}

// Sync replays the due operations now
func (h *QueueHandler) Sync(c *gin.Context) {
	var (
		result *opqueue.FlushResult
		err    error
	)
	if h.worker != nil {
		result, err = h.worker.FlushNow(c.Request.Context())
	} else {
		result, err = h.queue.Flush(c.Request.Context(), h.batchSize)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetStats counts operations by status
func (h *QueueHandler) GetStats(c *gin.Context) {
	stats, err := h.queue.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"operations": stats}
	if h.worker != nil {
		resp["worker"] = h.worker.Status()
	}
	c.JSON(http.StatusOK, resp)
}

// List returns recent operations, optionally by ?status
func (h *QueueHandler) List(c *gin.Context) {
	ops, err := h.queue.List(c.Request.Context(), c.Query("status"), queryInt(c, "limit", 100))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"operations": ops,
		"count":      len(ops),
	})
}
