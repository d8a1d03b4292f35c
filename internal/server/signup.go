package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	userdomain "github.com/joseikin-rescue/server/internal/user/domain"
)

type SignupRequest struct {
	DisplayName string `json:"display_name"`
}

func (s *Server) Signup(c *gin.Context) {
	who, ok := currentUser(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.usersvc.Provision(c.Request.Context(), who, userdomain.ProvisionRequest{
		DisplayName: req.DisplayName,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
