package gateway_core

import (
	"github.com/laixingyu123/ay4/cmn"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	// 网关识别操作账号的请求头
	apiUserHeader = "New-Api-User"

	// 登录成功后网关下发的会话Cookie名称
	sessionCookieName = "session"

	// 新建令牌的默认名称和默认额度
	defaultTokenName  = "default"
	defaultTokenQuota = 500000
)

var (
	// resalePrefix 以该前缀命名的新建令牌视为待上架令牌
	resalePrefix string

	// quotaPerUnit 网关额度换算成售卖单位的除数
	quotaPerUnit int64
)

var z *zap.Logger

func Init() {
	z = cmn.GetLogger()

	resalePrefix = viper.GetString("gateway.resalePrefix")
	if resalePrefix == "" {
		resalePrefix = "SALE_"
	}

	quotaPerUnit = viper.GetInt64("gateway.quotaPerUnit")
	if quotaPerUnit <= 0 {
		quotaPerUnit = 500000
	}

	cmn.MiniLogger.Info("[ OK ] gateway-core module initialized",
		zap.String("resalePrefix", resalePrefix),
		zap.Int64("quotaPerUnit", quotaPerUnit))
}

// ResalePrefix 待上架令牌的命名前缀
func ResalePrefix() string {
	return resalePrefix
}

// QuotaPerUnit 额度换算除数
func QuotaPerUnit() int64 {
	return quotaPerUnit
}
