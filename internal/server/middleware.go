package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joseikin-rescue/server/internal/identity"
)

const contextUserKey = "authenticated_user"

func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		who, err := s.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserKey, who)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

func currentUser(c *gin.Context) (identity.AuthenticatedUser, bool) {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return identity.AuthenticatedUser{}, false
	}
	who, ok := value.(identity.AuthenticatedUser)
	return who, ok
}
