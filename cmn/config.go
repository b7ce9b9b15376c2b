package cmn

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InitConfig 初始化配置模块
// 配置文件为 JSON 格式的 .config，从当前目录向上逐级查找，
// 便于在子目录中运行测试时也能读到同一份配置
func InitConfig() {
	viper.SetConfigName(".config")
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.AddConfigPath("../../..")

	err := viper.ReadInConfig()
	if err != nil {
		logger.Fatal("[ FAIL ] failed to read config file", zap.Error(err))
	}

	MiniLogger.Info("[ OK ] config module initialed", zap.String("path", viper.ConfigFileUsed()))
}
