package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bem-planning/backend/pkg/response"
)

// BodyLimit 限制请求体大小；Content-Length 已超限时直接拒绝，
// 否则由 MaxBytesReader 在读取时截断，绑定阶段返回参数错误
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
