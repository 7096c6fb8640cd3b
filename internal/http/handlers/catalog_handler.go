// Catalog HTTP handlers: tags and ingredients.
//
// Both catalogs are read-only over HTTP; entries are managed by the seed
// fixtures loaded at startup.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ListTags returns every tag, ordered by name.
func (h *Handlers) ListTags(c *gin.Context) {
	tags, err := h.catalogSvc.ListTags(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, tags)
}

// GetTag returns a single tag by id.
func (h *Handlers) GetTag(c *gin.Context) {
	tag, err := h.catalogSvc.GetTag(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, tag)
}

// ListIngredients returns ingredients, optionally restricted to names
// starting with the case-insensitive `name` query parameter.
func (h *Handlers) ListIngredients(c *gin.Context) {
	prefix := strings.TrimSpace(c.Query("name"))
	items, err := h.catalogSvc.ListIngredients(c.Request.Context(), prefix)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, items)
}

// GetIngredient returns a single ingredient by id.
func (h *Handlers) GetIngredient(c *gin.Context) {
	ing, err := h.catalogSvc.GetIngredient(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ing)
}
