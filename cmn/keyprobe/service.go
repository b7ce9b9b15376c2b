package keyprobe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/laixingyu123/ay4/cmn"

	"go.uber.org/zap"
)

type Service interface {
	// Probe 用给定密钥通过网关的中转接口发一次最小对话请求，
	// 验证密钥确实能用，返回模型的应答内容
	Probe(key string) (string, error)
}

type relayImpl struct {
}

func NewService() Service {
	return &relayImpl{}
}

func (*relayImpl) Probe(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("probe key is empty")
	}

	// 请求消息结构
	type Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	// 请求体结构
	type ChatRequest struct {
		Model     string    `json:"model"`
		Messages  []Message `json:"messages"`
		Stream    bool      `json:"stream"`
		MaxTokens int       `json:"max_tokens"`
	}

	// 响应体结构（只取content字段）
	type ChatResponse struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	}

	url := baseUrl + "/v1/chat/completions"

	// 构造请求体，一个 token 的应答足够证明密钥可用
	requestBody := ChatRequest{
		Model: model,
		Messages: []Message{
			{Role: "user", Content: "ping"},
		},
		Stream:    false,
		MaxTokens: 1,
	}

	// 序列化为 JSON
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		logger.Error("json marshal fail")
		return "", err
	}

	// 构造 HTTP 请求
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		logger.Error("new request fail")
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	// 执行请求
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Error("close response body fail")
		}
	}(resp.Body)

	// 读取响应
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("read response body fail")
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		logger.Warn("relay refused probe request",
			zap.String("key", cmn.MaskKey(key)),
			zap.Int("status", resp.StatusCode))
		return "", fmt.Errorf("relay refused probe request, status: %d", resp.StatusCode)
	}

	// 解析响应 JSON
	var chatResp ChatResponse
	err = json.Unmarshal(body, &chatResp)
	if err != nil {
		logger.Error("json unmarshal fail")
		return "", err
	}

	if len(chatResp.Choices) > 0 {
		logger.Info("key probe succeeded", zap.String("key", cmn.MaskKey(key)))
		return chatResp.Choices[0].Message.Content, nil
	}

	logger.Warn("no response message found")
	return "", fmt.Errorf("no response message found")
}
