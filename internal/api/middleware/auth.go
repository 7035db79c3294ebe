package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"bem-planning/backend/pkg/jwt"
	"bem-planning/backend/pkg/response"
)

// 上下文键，handler 通过 actorFrom 读取
const (
	CtxUserID       = "user_id"
	CtxRole         = "role"
	CtxInstructorID = "instructor_id"
)

// JWTAuth 校验 Authorization: Bearer <token>，并将调用方身份注入上下文。
// 令牌由统一认证服务签发，本服务只做验签。
func JWTAuth(jwtMgr *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token == "" {
			response.Unauthorized(c, 10002, "缺少或无效的认证头")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(token)
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			response.Unauthorized(c, 10002, "Token 已过期")
			c.Abort()
			return
		case err != nil:
			response.Unauthorized(c, 10002, "Token 无效")
			c.Abort()
			return
		}

		if claims.TokenType != "access" || claims.UserID == "" {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxInstructorID, claims.InstructorID)

		c.Next()
	}
}

// RoleAuth 仅允许指定角色访问
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if role == "" {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, 10003, "无权限访问")
			c.Abort()
			return
		}
		c.Next()
	}
}
