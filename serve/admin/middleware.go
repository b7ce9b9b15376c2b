package admin

import (
	"net/http"

	"github.com/laixingyu123/ay4/cmn"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware 管理员认证中间件
// 验证管理员是否已登录，并将管理员名存储到上下文中
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取session
		session, err := sessionStore.Get(c.Request, adminSessionKey)
		if err != nil {
			z.Error("failed to get session", zap.Error(err))
			c.JSON(http.StatusOK, cmn.ReplyProto{
				Status: 401,
				Msg:    "未登录或登录已过期",
			})
			c.Abort()
			return
		}

		// 检查session中是否有管理员名
		adminName, ok := session.Values["admin_name"].(string)
		if !ok || adminName == "" {
			z.Error("admin_name not found in session")
			c.JSON(http.StatusOK, cmn.ReplyProto{
				Status: 401,
				Msg:    "未登录或登录已过期",
			})
			c.Abort()
			return
		}

		// 管理员账号是配置项，改过配置后旧session直接作废
		if adminName != adminUsername {
			z.Warn("session admin no longer valid", zap.String("admin_name", adminName))
			c.JSON(http.StatusOK, cmn.ReplyProto{
				Status: 401,
				Msg:    "登录已失效，请重新登录",
			})
			c.Abort()
			return
		}

		// 将管理员名存储到上下文中，供后续处理器使用
		c.Set("admin_name", adminName)

		// 继续处理请求
		c.Next()
	}
}

// GetCurrentAdminName 从上下文中获取当前登录管理员名
// 该函数需要在AuthMiddleware之后使用
func GetCurrentAdminName(c *gin.Context) (string, bool) {
	adminName, exists := c.Get("admin_name")
	if !exists {
		return "", false
	}

	nameStr, ok := adminName.(string)
	if !ok {
		return "", false
	}

	return nameStr, true
}
