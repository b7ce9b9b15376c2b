package shop_core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

const (
	// MaxBatchSize 商店单次入库接口的记录数上限
	MaxBatchSize = 100

	KeyTypeOneAPI = "oneapi"
	KeyTypeNewAPI = "newapi"
	KeyTypeOther  = "other"

	maxKeyLength        = 500
	maxSourceNameLength = 200
)

// KeyRecord 一条待入库的密钥记录
type KeyRecord struct {
	Key        string  `json:"key"`                  // 密钥本体
	KeyType    string  `json:"keyType"`              // 密钥所属网关类型
	Quota      float64 `json:"quota"`                // 折算后的售卖额度
	IsSold     bool    `json:"isSold"`               // 入库即未售出
	SourceName string  `json:"sourceName,omitempty"` // 来源标注：账号&令牌名
	AccountRef string  `json:"accountRef,omitempty"` // 账号外部引用
}

type Service interface {
	// PublishKeys 把一批密钥记录追加进商店库存，返回入库数量
	// 批次超限或字段不合法时原样返回校验错误，不发请求
	PublishKeys(ctx context.Context, records []KeyRecord) (int, error)
}

type httpServiceImpl struct {
}

func NewService() Service {
	if !enable {
		return nil
	}
	return &httpServiceImpl{}
}

func (*httpServiceImpl) PublishKeys(ctx context.Context, records []KeyRecord) (int, error) {
	if !enable {
		return 0, fmt.Errorf("shop module is disabled")
	}
	if len(records) == 0 {
		return 0, nil
	}

	err := validateRecords(records)
	if err != nil {
		z.Error("key records rejected by local validation", zap.Error(err))
		return 0, err
	}

	type publishRequest struct {
		Records []KeyRecord `json:"records"`
	}

	type publishReply struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}

	payload, err := json.Marshal(publishRequest{Records: records})
	if err != nil {
		z.Error("failed to marshal publish request", zap.Error(err))
		return 0, fmt.Errorf("failed to marshal publish request: %w", err)
	}

	fastReq := fasthttp.AcquireRequest()
	fastResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(fastReq)
	defer fasthttp.ReleaseResponse(fastResp)

	fastReq.SetRequestURI(apiUrl)
	fastReq.Header.SetMethod("POST")
	fastReq.Header.SetContentType("application/json")
	fastReq.Header.Set("Authorization", "Bearer "+token)
	fastReq.SetBody(payload)

	// 发送请求
	client := &fasthttp.Client{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if deadline, ok := ctx.Deadline(); ok {
		err = client.DoDeadline(fastReq, fastResp, deadline)
	} else {
		err = client.Do(fastReq, fastResp)
	}
	if err != nil {
		z.Error("failed to send publish request to shop", zap.Error(err))
		return 0, fmt.Errorf("failed to send publish request to shop: %w", err)
	}

	var reply publishReply
	err = json.Unmarshal(fastResp.Body(), &reply)
	if err != nil {
		z.Error("failed to unmarshal shop reply", zap.Error(err))
		return 0, fmt.Errorf("failed to unmarshal shop reply: %w", err)
	}

	if !reply.Success {
		z.Error("shop rejected publish request",
			zap.Int("count", len(records)),
			zap.String("message", reply.Message))
		return 0, fmt.Errorf("shop rejected publish request: %s", reply.Message)
	}

	z.Info("keys published to shop", zap.Int("count", len(records)))

	return len(records), nil
}

// validateRecords 按商店的入库规则做本地校验
// 规则：单批不超过 100 条，key 长度 1-500，keyType 限定枚举，
// quota 不得为负，sourceName 不超过 200 字符
func validateRecords(records []KeyRecord) error {
	if len(records) > MaxBatchSize {
		return fmt.Errorf("batch size %d exceeds shop limit %d", len(records), MaxBatchSize)
	}

	for i, record := range records {
		if len(record.Key) == 0 || len(record.Key) > maxKeyLength {
			return fmt.Errorf("record %d: key length must be within 1-%d, got %d", i, maxKeyLength, len(record.Key))
		}
		switch record.KeyType {
		case KeyTypeOneAPI, KeyTypeNewAPI, KeyTypeOther:
		default:
			return fmt.Errorf("record %d: keyType %q is not supported", i, record.KeyType)
		}
		if record.Quota < 0 {
			return fmt.Errorf("record %d: quota must not be negative, got %v", i, record.Quota)
		}
		if len(record.SourceName) > maxSourceNameLength {
			return fmt.Errorf("record %d: sourceName length must not exceed %d, got %d", i, maxSourceNameLength, len(record.SourceName))
		}
	}

	return nil
}
