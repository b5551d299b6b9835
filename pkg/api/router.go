package api

import (
	"github.com/gin-gonic/gin"

	"github.com/LENAX/job-processing/pkg/api/handler"
	"github.com/LENAX/job-processing/pkg/api/middleware"
	"github.com/LENAX/job-processing/pkg/core/engine"
)

// SetupRouter 设置路由
func SetupRouter(eng *engine.Engine, version string) *gin.Engine {
	// 设置gin模式
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 全局中间件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger(eng.Logger()))
	router.Use(middleware.CORS())
	router.Use(middleware.BodyLimit(eng.Config().JobProcessing.Server.MaxBodyBytes))

	// 创建handlers
	orderHandler := handler.NewOrderHandler(eng, engine.WithCallLogging(eng, eng.Logger()))
	jobHandler := handler.NewJobHandler(eng, orderHandler)
	healthHandler := handler.NewHealthHandler(eng, version)

	// 健康检查路由（不带前缀）
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// 兼容旧接口
	router.POST("/api/orderedTasks", orderHandler.LegacyOrderedTasks)

	// API v1 路由组
	v1 := router.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.POST("/order", orderHandler.Order)
			jobs.POST("/inspect", orderHandler.Inspect)

			// Job定义目录
			jobs.GET("", jobHandler.List)
			jobs.POST("", jobHandler.Upsert)
			jobs.GET("/:name", jobHandler.Get)
			jobs.DELETE("/:name", jobHandler.Delete)
			jobs.GET("/:name/orderedTasks", jobHandler.OrderedTasks)
			jobs.POST("/:name/orderedTasks", jobHandler.OrderedTasks)
		}
	}

	return router
}
