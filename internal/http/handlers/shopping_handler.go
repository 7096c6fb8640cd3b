package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DownloadShoppingCart renders the caller's consolidated shopping list as a
// plain-text attachment. Amounts of the same ingredient across cart recipes
// are summed into one line.
func (h *Handlers) DownloadShoppingCart(c *gin.Context) {
	text, err := h.shoppingSvc.Render(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	c.Header("Content-Disposition", `attachment; filename="shopping_list.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}
