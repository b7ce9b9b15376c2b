package shop_core

import (
	"github.com/laixingyu123/ay4/cmn"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	enable  bool
	apiUrl  string
	token   string
	keyType string
)

var z *zap.Logger

func Init() {
	z = cmn.GetLogger()

	// 未开启时新建的令牌不上架，只在本地留痕
	enable = viper.GetBool("shop.enable")
	if !enable {
		cmn.MiniLogger.Info("[ -- ] shop module disabled")
		return
	}

	apiUrl = viper.GetString("shop.apiUrl")
	if apiUrl == "" {
		z.Fatal("[ FAIL ] shop.apiUrl is empty")
	}

	token = viper.GetString("shop.token")
	if token == "" {
		z.Fatal("[ FAIL ] shop.token is empty")
	}

	keyType = viper.GetString("shop.keyType")
	if keyType == "" {
		keyType = KeyTypeNewAPI
	}
	if keyType != KeyTypeOneAPI && keyType != KeyTypeNewAPI && keyType != KeyTypeOther {
		z.Fatal("[ FAIL ] shop.keyType is not supported", zap.String("keyType", keyType))
	}

	cmn.MiniLogger.Info("[ OK ] shop module initialed",
		zap.String("apiUrl", apiUrl),
		zap.String("keyType", keyType))
}

// Enabled 上架模块是否已开启
func Enabled() bool {
	return enable
}

// KeyType 上架密钥的网关类型
func KeyType() string {
	return keyType
}
