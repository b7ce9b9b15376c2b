package browser_core

import (
	"time"

	"github.com/laixingyu123/ay4/cmn"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	// 默认伪装成桌面版 Chrome，网关前置的 WAF 会拦截裸 UA
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

	defaultTimeoutSec = 10
)

var (
	platform  string
	targetUrl string
	userAgent string
	timeout   time.Duration
)

var z *zap.Logger

func Init() {
	z = cmn.GetLogger()

	platform = viper.GetString("browser.platform")
	if platform == "" {
		platform = "fasthttp"
	}

	targetUrl = viper.GetString("browser.targetUrl")
	if targetUrl == "" {
		z.Fatal("[ FAIL ] browser.targetUrl is empty")
	}

	userAgent = viper.GetString("browser.userAgent")
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	timeoutSec := viper.GetInt("browser.timeoutSec")
	if timeoutSec <= 0 {
		timeoutSec = defaultTimeoutSec
	}
	timeout = time.Duration(timeoutSec) * time.Second

	cmn.MiniLogger.Info("[ OK ] browser-core module initialized",
		zap.String("platform", platform),
		zap.String("targetUrl", targetUrl))
}
