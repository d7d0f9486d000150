package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-console/internal/livechat"
	"marketplace-console/internal/settings"
	"marketplace-console/internal/support"
)

// CSHandler handles customer service console requests
type CSHandler struct {
	support  *support.Service
	chat     *livechat.Service
	settings *settings.Service
}

// NewCSHandler creates a new customer service handler
func NewCSHandler(s *support.Service, chat *livechat.Service, st *settings.Service) *CSHandler {
	return &CSHandler{support: s, chat: chat, settings: st}
}

// ResolveTicket closes out a ticket with a resolution note
func (h *CSHandler) ResolveTicket(c *gin.Context) {
	var req struct {
		Resolution string `json:"resolution"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if err := h.support.ResolveTicket(c.Request.Context(), id, req.Resolution, actor(c)); err != nil {
		respondError(c, err)
		return
	}
	t, err := h.support.Tickets().Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// ReopenTicket puts a ticket back in progress
func (h *CSHandler) ReopenTicket(c *gin.Context) {
	id := c.Param("id")
	if err := h.support.ReopenTicket(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "reopened": true})
}

// ListSessions returns chat sessions, optionally by ?status
func (h *CSHandler) ListSessions(c *gin.Context) {
	sessions, err := h.chat.Sessions(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// ListMessages returns the messages of a session
func (h *CSHandler) ListMessages(c *gin.Context) {
	messages, err := h.chat.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": c.Param("id"),
		"messages":   messages,
		"count":      len(messages),
	})
}

// PostMessage sends an agent reply
func (h *CSHandler) PostMessage(c *gin.Context) {
	raw, err := bindRaw(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.chat.Reply(c.Request.Context(), c.Param("id"), actor(c), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// AssignSession hands a session to an agent, the caller by default
func (h *CSHandler) AssignSession(c *gin.Context) {
	var req struct {
		AgentID string `json:"agent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.AgentID == "" {
		req.AgentID = actor(c)
	}
	if err := h.chat.Assign(c.Request.Context(), c.Param("id"), req.AgentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "agent_id": req.AgentID})
}

// CloseSession ends a conversation
func (h *CSHandler) CloseSession(c *gin.Context) {
	if err := h.chat.CloseSession(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "closed": true})
}

// MarkRead marks the customer's messages read
func (h *CSHandler) MarkRead(c *gin.Context) {
	n, err := h.chat.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "marked": n})
}

// GetSettings returns the caller's CS preferences
func (h *CSHandler) GetSettings(c *gin.Context) {
	userID := settingsUser(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	s, err := h.settings.CS(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// UpdateSettings saves the caller's CS preferences
func (h *CSHandler) UpdateSettings(c *gin.Context) {
	userID := settingsUser(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	raw, err := bindRaw(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s, err := h.settings.UpdateCS(c.Request.Context(), userID, raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func settingsUser(c *gin.Context) string {
	if id := c.Query("user_id"); id != "" {
		return id
	}
	return actor(c)
}
