package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetUsage(c *gin.Context) {
	who, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	stats, err := s.quotasvc.UsageStats(c.Request.Context(), who.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
