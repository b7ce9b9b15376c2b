package notify_core

import (
	"github.com/laixingyu123/ay4/cmn"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	z        *zap.Logger
	enable   bool
	platform string

	webhookConfig WebhookConfig

	serverChanConfig ServerChanConfig
)

func Init() {
	z = cmn.GetLogger()

	// 如果没有开启通知服务，则不进行初始化
	enable = viper.GetBool("notify.enable")
	if !enable {
		cmn.MiniLogger.Info("[ -- ] notify module is disabled")
		return
	}

	platform = viper.GetString("notify.platform")
	switch platform {
	case "webhook":
		err := initWebhookConfig()
		if err != nil {
			z.Fatal("[ FAIL ] init webhook notify config", zap.Error(err))
		}
	case "serverchan":
		err := initServerChanConfig()
		if err != nil {
			z.Fatal("[ FAIL ] init serverchan notify config", zap.Error(err))
		}
	default:
		z.Fatal("[ FAIL ] notify platform is not supported", zap.String("platform", platform))
	}

	cmn.MiniLogger.Info("[ OK ] notify module initialed", zap.String("platform", platform))
}

// Enabled 通知模块是否已开启
func Enabled() bool {
	return enable
}
