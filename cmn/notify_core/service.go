package notify_core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

type Service interface {
	// NotifyRunSummary 推送一次批量运行的结果摘要
	NotifyRunSummary(title string, content string) error
}

type webhookServiceImpl struct {
}

type serverChanServiceImpl struct {
}

func NewService() Service {
	switch platform {
	case "webhook":
		return &webhookServiceImpl{}
	case "serverchan":
		return &serverChanServiceImpl{}
	default:
		z.Warn("notify platform is not supported", zap.String("platform", platform))
	}
	return nil
}

// NotifyRunSummary 推送运行摘要
func (*webhookServiceImpl) NotifyRunSummary(title string, content string) error {
	if webhookConfig.ApiUrl == "" {
		z.Error("notify is not enabled")
		return fmt.Errorf("webhook apiUrl is empty")
	}
	if title == "" {
		z.Error("notify title is empty")
		return fmt.Errorf("notify title is empty")
	}

	// 构造请求体
	payload, err := json.Marshal(map[string]string{
		"title":   title,
		"content": content,
	})
	if err != nil {
		z.Error("failed to marshal notify payload", zap.Error(err))
		return err
	}

	// 发送 POST 请求
	resp, err := http.Post(webhookConfig.ApiUrl, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		z.Error("failed to send notify request", zap.Error(err))
		return fmt.Errorf("failed to send notify request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			z.Error("failed to close body", zap.Error(err))
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		z.Error("webhook refused notify request", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("webhook refused notify request, status: %d", resp.StatusCode)
	}

	z.Info("run summary notified", zap.String("title", title))

	return nil
}

// NotifyRunSummary 推送运行摘要
func (*serverChanServiceImpl) NotifyRunSummary(title string, content string) error {
	if serverChanConfig.SendKey == "" {
		z.Error("notify is not enabled")
		return fmt.Errorf("serverchan sendKey is empty")
	}
	if title == "" {
		z.Error("notify title is empty")
		return fmt.Errorf("notify title is empty")
	}

	// 构造请求参数
	form := url.Values{}
	form.Set("title", title)
	form.Set("desp", content)

	apiUrl := fmt.Sprintf("https://sctapi.ftqq.com/%s.send", serverChanConfig.SendKey)

	// 发送 POST 请求
	resp, err := http.PostForm(apiUrl, form)
	if err != nil {
		z.Error("failed to send notify request", zap.Error(err))
		return fmt.Errorf("failed to send notify request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			z.Error("failed to close body", zap.Error(err))
		}
	}(resp.Body)

	// 读取返回结果
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		z.Error("failed to read notify response", zap.Error(err))
		return fmt.Errorf("failed to read notify response: %w", err)
	}

	z.Info("run summary notified", zap.String("response", string(body)))

	return nil
}
