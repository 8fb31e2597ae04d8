package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterHealth(router gin.IRouter) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
