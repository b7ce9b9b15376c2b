package keeper

import (
	"encoding/json"
	"net/http"

	"github.com/laixingyu123/ay4/cmn"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler interface {
	HandleRunBatch(c *gin.Context)
	HandleQueryState(c *gin.Context)
}

type handler struct {
}

func NewHandler() Handler {
	return &handler{}
}

// HandleRunBatch 处理手动触发批量维护
// 请求体 Data 可携带账号列表，不带则使用配置文件中的账号
func (h *handler) HandleRunBatch(c *gin.Context) {
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

	batchAccounts := Accounts()
	if len(req.Data) > 0 {
		var provided []Account
		err = json.Unmarshal(req.Data, &provided)
		if err != nil {
			z.Error("failed to unmarshal accounts", zap.Error(err))
			c.JSON(http.StatusOK, cmn.ReplyProto{
				Status: 1,
				Msg:    "账号列表解析失败",
			})
			return
		}
		if len(provided) > 0 {
			batchAccounts = provided
		}
	}

	if len(batchAccounts) == 0 {
		z.Warn("no accounts to run")
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: 1,
			Msg:    "没有可维护的账号",
		})
		return
	}

	batchId, err := LaunchBatch("manual", batchAccounts)
	if err != nil {
		z.Warn("failed to launch batch", zap.Error(err))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: 1,
			Msg:    "已有批次在运行中，请稍后再试",
		})
		return
	}

	responseJson, err := json.Marshal(map[string]any{
		"batchId":  batchId,
		"accounts": len(batchAccounts),
	})
	if err != nil {
		z.Error("failed to marshal response data", zap.Error(err))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: -1,
			Msg:    "响应数据序列化失败",
		})
		return
	}

	c.JSON(http.StatusOK, cmn.ReplyProto{
		Status: 0,
		Msg:    "批量维护已启动",
		Data:   responseJson,
	})
}

// HandleQueryState 查询当前运行状态和最近一次批次摘要
func (h *handler) HandleQueryState(c *gin.Context) {
	isRunning, last := State()

	responseJson, err := json.Marshal(map[string]any{
		"running": isRunning,
		"last":    last,
	})
	if err != nil {
		z.Error("failed to marshal state", zap.Error(err))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: -1,
			Msg:    "响应数据序列化失败",
		})
		return
	}

	c.JSON(http.StatusOK, cmn.ReplyProto{
		Status: 0,
		Msg:    "查询成功",
		Data:   responseJson,
	})
}
