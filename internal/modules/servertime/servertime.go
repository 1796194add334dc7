package servertime

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the clock sync endpoint. The app stamps
// recorded_at with the device clock and uses this endpoint to measure
// its offset: t2 is taken on receive, t3 right before the reply.
func RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/server-time", func(c *gin.Context) {
		t2 := time.Now().UnixMilli()
		c.JSON(http.StatusOK, gin.H{
			"t2": t2,
			"t3": time.Now().UnixMilli(),
		})
	})
}
