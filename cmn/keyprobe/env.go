package keyprobe

import (
	"github.com/laixingyu123/ay4/cmn"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	enable bool

	baseUrl string
	model   string
)

func Init() {
	logger = cmn.GetLogger()

	enable = viper.GetBool("keyprobe.enable")
	if !enable {
		cmn.MiniLogger.Info("[ -- ] keyprobe module disabled")
		return
	}

	baseUrl = viper.GetString("keyprobe.baseUrl")
	if baseUrl == "" {
		logger.Fatal("[ FAIL ] keyprobe.baseUrl is empty")
	}

	model = viper.GetString("keyprobe.model")
	if model == "" {
		logger.Fatal("[ FAIL ] keyprobe.model is empty")
	}

	cmn.MiniLogger.Info("[ OK ] keyprobe module initialed", zap.String("model", model))
}

// Enabled 密钥探活是否已开启
func Enabled() bool {
	return enable
}
