package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	advisordomain "github.com/joseikin-rescue/server/internal/advisor/domain"
)

func (s *Server) PostChat(c *gin.Context) {
	who, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req advisordomain.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.advisorsvc.Ask(c.Request.Context(), who.ID, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
