package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"bem-planning/backend/config"
	"bem-planning/backend/internal/api/handler"
	"bem-planning/backend/internal/api/middleware"
	"bem-planning/backend/internal/model"
	"bem-planning/backend/pkg/jwt"
	"bem-planning/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎；db 为 nil 时健康检查不探测数据库
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", healthCheck(db))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	v1.Use(middleware.RateLimit(rdb, cfg.Server.RateLimit, cfg.Server.RateWindow, logger))
	{
		planners := []string{model.RoleAdmin, model.RoleCoordinator}

		scheduling := v1.Group("/scheduling", middleware.RoleAuth(planners...))
		{
			scheduling.GET("/suggestions", h.Scheduling.Suggest)
			scheduling.POST("/plans", h.Scheduling.GeneratePlan)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", middleware.RoleAuth(planners...), h.Session.Create)
			sessions.POST("/:id/complete", h.Session.Complete) // 授课教师或协调员（Service 层鉴权）
		}
	}

	return r
}

func healthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "up"})
	}
}
