package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meliofog/iam-stock/config"
	"github.com/meliofog/iam-stock/internal/api/handler"
	"github.com/meliofog/iam-stock/internal/api/middleware"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时上传接口不限流；db 为 nil 时 /health 不检查数据库
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.RateLimiter, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(cors.New(corsConfig(cfg.Server.CORS)))
	// 导出的 xlsx 本身已是压缩格式
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`/export$`})))

	// ── 健康检查 ──
	r.GET("/health", healthHandler(db))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		v1.GET("/dashboard", h.Dashboard.Summary)

		// 档案模块
		records := v1.Group("/records")
		{
			records.GET("", h.Record.ListRecords)
			records.POST("", h.Record.CreateRecord)
			records.GET("/:id", h.Record.GetRecord)
			records.PUT("/:id", h.Record.UpdateRecord)
			records.DELETE("/:id", h.Record.DeleteRecord)
			records.GET("/:id/equipment", h.Equipment.ListRecordEquipment)
			records.GET("/:id/export", h.Export.ExportRecord)
		}

		// 设备模块
		equipment := v1.Group("/equipment")
		{
			equipment.GET("", h.Equipment.ListEquipment)
			equipment.POST("", h.Equipment.CreateEquipment)
			equipment.GET("/:id", h.Equipment.GetEquipment)
			equipment.PUT("/:id", h.Equipment.UpdateEquipment)
			equipment.DELETE("/:id", h.Equipment.DeleteEquipment)
		}

		// 表格导入（限流 + 请求体上限）
		v1.POST("/imports",
			middleware.RateLimit(limiter, cfg.Import.RateLimit, cfg.Import.RateWindow, logger),
			middleware.BodyLimit(uploadLimit(cfg.Server.MaxUploadMB)),
			h.Import.Import,
		)
	}

	return r
}

// uploadLimit 上传请求体上限，额外 1MB 留给 multipart 边界与表单字段
func uploadLimit(maxMB int64) int64 {
	if maxMB <= 0 {
		return 0
	}
	return (maxMB + 1) << 20
}

func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range c.AllowOrigins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	if len(c.AllowOrigins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	cc.AllowOrigins = c.AllowOrigins
	return cc
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
				err = sqlDB.PingContext(ctx)
				cancel()
			}
			if err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
