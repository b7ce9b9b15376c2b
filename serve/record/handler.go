package record

import (
	"encoding/json"
	"net/http"

	"github.com/laixingyu123/ay4/cmn"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler interface {
	// HandleQueryResults 分页查询运行结果
	HandleQueryResults(c *gin.Context)

	// HandleQueryBalances 查询账号额度榜
	HandleQueryBalances(c *gin.Context)
}

type handlerImpl struct {
}

func NewHandler() Handler {
	return &handlerImpl{}
}

// resultFilter 运行结果查询过滤条件
type resultFilter struct {
	Username string `json:"username"` // 账号用户名，空则不过滤
	Success  *bool  `json:"success"`  // 成功状态，空则不过滤
}

func (h *handlerImpl) HandleQueryResults(c *gin.Context) {
	if !cmn.DBEnabled() {
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: 1,
			Msg:    "运行记录功能未开启",
		})
		return
	}

	var req cmn.ReqProto
	if err := c.ShouldBindJSON(&req); err != nil {
		z.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: 1,
			Msg:    "请求参数错误，请检查是否符合请求协议",
		})
		return
	}

	page := req.Page
	pageSize := req.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	var filter resultFilter
	if len(req.Filter) > 0 {
		if err := json.Unmarshal(req.Filter, &filter); err != nil {
			z.Error("failed to unmarshal filter", zap.Error(err))
			c.JSON(http.StatusOK, cmn.ReplyProto{
				Status: 1,
				Msg:    "过滤条件格式错误",
			})
			return
		}
	}

	items, totalCount, err := QueryRunResults(c.Request.Context(), page, pageSize, filter.Username, filter.Success)
	if err != nil {
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: -1,
			Msg:    "查询运行结果失败",
		})
		return
	}

	data, err := json.Marshal(items)
	if err != nil {
		z.Error("failed to marshal results", zap.Error(err))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: -1,
			Msg:    "序列化查询结果失败",
		})
		return
	}

	c.JSON(http.StatusOK, cmn.ReplyProto{
		Status:   0,
		Msg:      "查询成功",
		Data:     data,
		RowCount: totalCount,
	})
}

func (h *handlerImpl) HandleQueryBalances(c *gin.Context) {
	if !cmn.DBEnabled() {
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: 1,
			Msg:    "运行记录功能未开启",
		})
		return
	}

	var req cmn.ReqProto
	if err := c.ShouldBindJSON(&req); err != nil {
		z.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: 1,
			Msg:    "请求参数错误，请检查是否符合请求协议",
		})
		return
	}

	page := req.Page
	pageSize := req.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	items, totalCount, err := QueryBalanceBoard(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: -1,
			Msg:    "查询额度榜失败",
		})
		return
	}

	data, err := json.Marshal(items)
	if err != nil {
		z.Error("failed to marshal balances", zap.Error(err))
		c.JSON(http.StatusOK, cmn.ReplyProto{
			Status: -1,
			Msg:    "序列化查询结果失败",
		})
		return
	}

	c.JSON(http.StatusOK, cmn.ReplyProto{
		Status:   0,
		Msg:      "查询成功",
		Data:     data,
		RowCount: totalCount,
	})
}
