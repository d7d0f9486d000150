package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace-console/internal/bookings"
	"marketplace-console/internal/cleanup"
	"marketplace-console/internal/crud"
	"marketplace-console/internal/forms"
	"marketplace-console/internal/livechat"
	"marketplace-console/internal/logging"
	"marketplace-console/internal/opqueue"
	"marketplace-console/internal/procedures"
	"marketplace-console/internal/provinces"
	"marketplace-console/internal/store"
)

// ActorHeader names the console user performing a mutation
const ActorHeader = "X-Console-User"

// respondError maps service errors to status codes
func respondError(c *gin.Context, err error) {
	var verr *forms.ValidationError
	var perr *provinces.PartialFailureError
	var rerr *procedures.RemoteError

	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
	case errors.As(err, &perr):
		c.JSON(http.StatusBadGateway, gin.H{"error": perr.Error(), "run": perr.Run})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, crud.ErrConfirmationRequired),
		errors.Is(err, store.ErrUnknownColumn),
		errors.Is(err, procedures.ErrInvalidMode),
		errors.Is(err, bookings.ErrInvalidRange),
		errors.Is(err, provinces.ErrEmptyGroup),
		errors.Is(err, opqueue.ErrUnknownCollection),
		errors.Is(err, cleanup.ErrInvalidRetention),
		errors.Is(err, cleanup.ErrSafetyLimit):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, procedures.ErrCircuitOpen):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, procedures.ErrSyncInProgress),
		errors.Is(err, livechat.ErrSessionClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, procedures.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.As(err, &rerr):
		c.JSON(http.StatusBadGateway, gin.H{"error": rerr.Error()})
	default:
		logging.Logger.Errorf("API: %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// bindRaw reads a flat JSON object as raw form input. Numbers and booleans
// are passed on as their literal text, null as the empty string.
func bindRaw(c *gin.Context) (map[string]string, error) {
	var body map[string]interface{}
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	raw := make(map[string]string, len(body))
	for k, v := range body {
		switch val := v.(type) {
		case nil:
			raw[k] = ""
		case string:
			raw[k] = val
		case json.Number:
			raw[k] = val.String()
		case bool:
			raw[k] = strconv.FormatBool(val)
		default:
			return nil, fmt.Errorf("field %s must be a scalar", k)
		}
	}
	return raw, nil
}

// listQuery reads ?filter[col]=v&order=col desc&limit=n&offset=n
func listQuery(c *gin.Context) store.Query {
	q := store.Query{
		Order:  c.Query("order"),
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}
	if filters := c.QueryMap("filter"); len(filters) > 0 {
		q.Filters = make(map[string]interface{}, len(filters))
		for k, v := range filters {
			q.Filters[k] = filterValue(v)
		}
	}
	return q
}

// booleans are matched as booleans, everything else as text
func filterValue(v string) interface{} {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func actor(c *gin.Context) string {
	return c.GetHeader(ActorHeader)
}
