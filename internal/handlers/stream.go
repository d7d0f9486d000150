package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace-console/internal/realtime"
)

const (
	streamBuffer    = 32
	streamKeepAlive = 25 * time.Second
)

// Stream serves collection change events as server-sent events. The
// connection ends when the client goes away.
func Stream(hub *realtime.Hub, collections ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(collections))
	for _, c := range collections {
		allowed[c] = true
	}

	return func(c *gin.Context) {
		collection := c.Param("collection")
		if !allowed[collection] {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown collection " + collection})
			return
		}

		ctx := c.Request.Context()
		events := hub.Watch(ctx, collection, streamBuffer)
		keepAlive := time.NewTicker(streamKeepAlive)
		defer keepAlive.Stop()

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")
		c.SSEvent("ready", gin.H{"collection": collection})
		c.Writer.Flush()

		c.Stream(func(w io.Writer) bool {
			select {
			case e, ok := <-events:
				if !ok {
					return false
				}
				c.SSEvent(string(e.Type), e)
				return true
			case <-keepAlive.C:
				c.SSEvent("ping", time.Now().Unix())
				return true
			case <-ctx.Done():
				return false
			}
		})
	}
}
