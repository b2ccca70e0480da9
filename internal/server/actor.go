package server

import (
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/civitas/internal/authorization"
)

const (
	headerActorID    = "X-Actor-ID"
	headerActorName  = "X-Actor-Name"
	headerActorRoles = "X-Actor-Roles"
	headerActorAdmin = "X-Actor-Admin"

	actorContextKey = "actor"
)

// ActorRequired reads the chat member the gateway acts for and stores it on
// the request.
func (s *Server) ActorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := actorFromHeaders(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		c.Set(actorContextKey, actor)
		c.Next()
	}
}

func actorFromHeaders(c *gin.Context) (authorization.Actor, bool) {
	id := strings.TrimSpace(c.GetHeader(headerActorID))
	if id == "" {
		return authorization.Actor{}, false
	}
	admin, _ := strconv.ParseBool(strings.TrimSpace(c.GetHeader(headerActorAdmin)))
	return authorization.Actor{
		ID:      id,
		Name:    strings.TrimSpace(c.GetHeader(headerActorName)),
		RoleIDs: authorization.ParseRoleIDs(c.GetHeader(headerActorRoles)),
		Admin:   admin,
	}, true
}

func actorFromContext(c *gin.Context) authorization.Actor {
	if v, ok := c.Get(actorContextKey); ok {
		if actor, ok := v.(authorization.Actor); ok {
			return actor
		}
	}
	return authorization.Actor{}
}

func guildParam(c *gin.Context) string {
	return strings.TrimSpace(c.Param("guild_id"))
}

func parseIDParam(c *gin.Context, name string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param(name)))
	if err != nil || id == 0 {
		return 0, newValidationError(name, "invalid_"+name, "invalid "+name)
	}
	return id, nil
}

func parseOptionalID(field, value string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	id, err := snowflake.ParseString(trimmed)
	if err != nil || id == 0 {
		return 0, newValidationError(field, "invalid_"+field, "invalid "+field)
	}
	return id, nil
}
