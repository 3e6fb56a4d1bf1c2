package middleware

import (
	"strings"

	"screen_balance_backend/internal/config"
	"screen_balance_backend/internal/service"
	"screen_balance_backend/internal/util"
	"screen_balance_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const HeaderUserID = "X-User-ID"

// IdentityMiddleware resolves whose data a request touches. Login happens upstream; this only
// reads the identity it left behind: a bearer token signed with jwt.secret, else the
// X-User-ID header, else the configured single-user id. With jwt.required set, only a valid
// token is accepted.
func IdentityMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}

		userID := ""
		if tokenString != "" && cfg.JWT.Secret != "" {
			claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
			if err != nil {
				logger.Log.Debug("JWT解析错误", zap.Error(err))
				util.Unauthorized(c)
				c.Abort()
				return
			}
			userID = claims.UserID
		} else if cfg.JWT.Required {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		if userID == "" {
			userID = c.GetHeader(HeaderUserID)
		}
		if userID == "" {
			userID = cfg.Engine.DefaultUserID
		}
		if err := service.ValidateIdentifier("user_id", userID); err != nil {
			util.BadRequest(c, err.Error())
			c.Abort()
			return
		}

		c.Set(util.ContextUserID, userID)
		c.Next()
	}
}
