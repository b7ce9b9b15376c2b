package router

import (
	"github.com/laixingyu123/ay4/serve/admin"
	"github.com/laixingyu123/ay4/serve/keeper"
	"github.com/laixingyu123/ay4/serve/record"

	"github.com/gin-gonic/gin"
)

// InitRoutes 初始化路由
func InitRoutes(r *gin.Engine) {

	adminHandler := admin.NewHandler()
	keeperHandler := keeper.NewHandler()
	recordHandler := record.NewHandler()

	// 路由组 /api
	api := r.Group("/api")
	{
		api.POST("/admin/login", adminHandler.HandleLogin)   // 管理员登录
		api.POST("/admin/logout", adminHandler.HandleLogout) // 管理员登出

		// 需要认证的路由组
		authApi := api.Group("/")
		authApi.Use(admin.AuthMiddleware())
		{
			authApi.POST("/keeper/run", keeperHandler.HandleRunBatch)            // 发起批量维护
			authApi.GET("/keeper/state", keeperHandler.HandleQueryState)         // 查询批次运行状态
			authApi.POST("/record/results", recordHandler.HandleQueryResults)    // 分页查询运行结果
			authApi.POST("/record/balances", recordHandler.HandleQueryBalances)  // 查询账号额度榜
		}
	}
}
