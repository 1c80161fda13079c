package handlers

import (
	"net/http"
	"strconv"

	"restaurant_pos/internal/apperrors"
	"restaurant_pos/internal/models"
	"restaurant_pos/internal/services"

	"github.com/gin-gonic/gin"
)

const actorContextKey = "actor"

// ActorMiddleware resolves the acting staff member from the X-Actor-ID
// header. When X-Actor-PIN is present it is verified against the stored
// bcrypt hash; access-level enforcement itself happens in the state machine.
func ActorMiddleware(actorService services.ActorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		idHeader := c.GetHeader("X-Actor-ID")
		if idHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": apperrors.CodeForbidden, "error": "X-Actor-ID header required"})
			return
		}
		id, err := strconv.ParseUint(idHeader, 10, 32)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": apperrors.CodeValidation, "error": "invalid X-Actor-ID"})
			return
		}

		var actor *models.Actor
		if pin := c.GetHeader("X-Actor-PIN"); pin != "" {
			actor, err = actorService.Authenticate(uint(id), pin)
		} else {
			actor, err = actorService.GetActor(uint(id))
		}
		if err != nil {
			respondError(c, err)
			c.Abort()
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

func currentActor(c *gin.Context) *models.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(*models.Actor); ok {
			return actor
		}
	}
	return nil
}
