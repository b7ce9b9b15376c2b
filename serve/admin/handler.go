package admin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/laixingyu123/ay4/cmn"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler interface {
	// HandleLogin 处理管理员登录
	HandleLogin(c *gin.Context)

	// HandleLogout 处理管理员登出
	HandleLogout(c *gin.Context)
}

type handler struct {
}

func NewHandler() Handler {
	return &handler{}
}

// HandleLogin 处理管理员登录
func (h *handler) HandleLogin(c *gin.Context) {
	var req cmn.ReqProto
	err := c.ShouldBindJSON(&req)
	if err != nil {
		z.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: 1,
			Msg:    "请求参数错误，请检查是否符合请求协议",
		})
		return
	}

	type data struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var d data
	err = json.Unmarshal(req.Data, &d)
	if err != nil {
		z.Error("failed to unmarshal request data", zap.Error(err))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: 1,
			Msg:    "请求数据格式错误",
		})
		return
	}

	if d.Username == "" || d.Password == "" {
		z.Error("username or password is empty")
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: 1,
			Msg:    "用户名和密码不能为空",
		})
		return
	}

	if d.Username != adminUsername || d.Password != adminPassword {
		z.Warn("admin login rejected", zap.String("username", d.Username))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: 1,
			Msg:    "用户名或密码错误",
		})
		return
	}

	// 创建session
	session, err := sessionStore.Get(c.Request, adminSessionKey)
	if err != nil {
		z.Error("failed to get session", zap.Error(err))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: -1,
			Msg:    "创建session失败",
		})
		return
	}

	// 设置session值
	session.Values["admin_name"] = d.Username
	session.Values["login_time"] = time.Now().Unix()

	// 保存session
	err = session.Save(c.Request, c.Writer)
	if err != nil {
		z.Error("failed to save session", zap.Error(err))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: -1,
			Msg:    "保存session失败",
		})
		return
	}

	z.Info("admin login successful", zap.String("username", d.Username))

	c.JSON(http.StatusOK, cmn.ReplyProto{
		Status: 0,
		Msg:    "登录成功",
	})
	return
}

// HandleLogout 处理管理员登出
func (h *handler) HandleLogout(c *gin.Context) {
	session, err := sessionStore.Get(c.Request, adminSessionKey)
	if err != nil {
		z.Error("failed to get session", zap.Error(err))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: -1,
			Msg:    "获取session失败",
		})
		return
	}

	// MaxAge设为-1让浏览器立即删除cookie
	session.Options.MaxAge = -1
	err = session.Save(c.Request, c.Writer)
	if err != nil {
		z.Error("failed to clear session", zap.Error(err))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: -1,
			Msg:    "清除session失败",
		})
		return
	}

	c.JSON(http.StatusOK, cmn.ReplyProto{
		Status: 0,
		Msg:    "已登出",
	})
	return
}
