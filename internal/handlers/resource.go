package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace-console/internal/crud"
)

// Resource exposes one collection editor as list/get/create/update/delete routes
type Resource[T any] struct {
	editor *crud.Editor[T]
}

// NewResource wraps an editor
func NewResource[T any](editor *crud.Editor[T]) *Resource[T] {
	return &Resource[T]{editor: editor}
}

// Register mounts the routes under path. mutate runs before every write.
func (r *Resource[T]) Register(g *gin.RouterGroup, path string, mutate ...gin.HandlerFunc) {
	g.GET(path, r.List)
	g.GET(path+"/:id", r.Get)
	g.GET(path+"/:id/pending", r.Pending)
	g.POST(path, chain(mutate, r.Create)...)
	g.PATCH(path+"/:id", chain(mutate, r.Update)...)
	g.DELETE(path+"/:id", chain(mutate, r.Delete)...)
}

// chain returns a fresh handler list so routes never share a backing array
func chain(mw []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+1)
	return append(append(out, mw...), h)
}

// List returns the filtered collection
func (r *Resource[T]) List(c *gin.Context) {
	rows, err := r.editor.List(c.Request.Context(), listQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"collection": r.editor.Collection(),
		"items":      rows,
		"count":      len(rows),
	})
}

// Get returns one record
func (r *Resource[T]) Get(c *gin.Context) {
	row, err := r.editor.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// Create validates the body and inserts it
func (r *Resource[T]) Create(c *gin.Context) {
	raw, err := bindRaw(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := r.editor.Create(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// Update writes the fields present in the body
func (r *Resource[T]) Update(c *gin.Context) {
	raw, err := bindRaw(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if err := r.editor.Update(c.Request.Context(), id, raw); err != nil {
		respondError(c, err)
		return
	}
	row, err := r.editor.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

// Delete removes a record; ?confirm=true is required
func (r *Resource[T]) Delete(c *gin.Context) {
	id := c.Param("id")
	confirmed := c.Query("confirm") == "true"
	if err := r.editor.Delete(c.Request.Context(), id, confirmed, actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

// Pending reports in-flight mutations on a record
func (r *Resource[T]) Pending(c *gin.Context) {
	id := c.Param("id")
	c.JSON(http.StatusOK, gin.H{
		"id":     id,
		"update": r.editor.Pending("update", id),
		"delete": r.editor.Pending("delete", id),
	})
}
