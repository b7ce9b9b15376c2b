package notify_core

import (
	"fmt"

	"github.com/spf13/viper"
)

// 初始化通用 webhook 配置
func initWebhookConfig() error {
	webhookConfig.ApiUrl = viper.GetString("notify.data.apiUrl")
	if webhookConfig.ApiUrl == "" {
		z.Error("webhook apiUrl is empty")
		return fmt.Errorf("webhook apiUrl is empty")
	}
	return nil
}

// 初始化 Server酱 配置
func initServerChanConfig() error {
	serverChanConfig.SendKey = viper.GetString("notify.data.sendKey")
	if serverChanConfig.SendKey == "" {
		z.Error("serverchan sendKey is empty")
		return fmt.Errorf("serverchan sendKey is empty")
	}
	return nil
}
