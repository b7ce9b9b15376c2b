package keeper

import (
	"context"
	"time"

	"github.com/laixingyu123/ay4/cmn"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var z *zap.Logger

var (
	accounts []Account

	// 账号之间的间隔抖动区间，目标站点对突发流量敏感
	pacingMin time.Duration
	pacingMax time.Duration

	scheduleHour     int
	scheduleMinute   int
	scheduleLocation string
)

func Init() {
	z = cmn.GetLogger()

	err := viper.UnmarshalKey("keeper.accounts", &accounts)
	if err != nil {
		z.Fatal("[ FAIL ] failed to parse keeper.accounts", zap.Error(err))
	}
	if len(accounts) == 0 {
		z.Warn("no accounts configured under keeper.accounts")
	}

	minSec := viper.GetInt("keeper.pacing.minSec")
	if minSec <= 0 {
		minSec = 3
	}
	maxSec := viper.GetInt("keeper.pacing.maxSec")
	if maxSec < minSec {
		maxSec = minSec
	}
	pacingMin = time.Duration(minSec) * time.Second
	pacingMax = time.Duration(maxSec) * time.Second

	// 定时批量维护
	if viper.GetBool("keeper.schedule.enable") {
		scheduleHour = viper.GetInt("keeper.schedule.hour")
		scheduleMinute = viper.GetInt("keeper.schedule.minute")
		scheduleLocation = viper.GetString("keeper.schedule.location")
		if scheduleLocation == "" {
			scheduleLocation = "Asia/Shanghai"
		}

		go maintainer(context.Background())

		cmn.MiniLogger.Info("[ OK ] keeper module initialed",
			zap.Int("accounts", len(accounts)),
			zap.Int("scheduleHour", scheduleHour),
			zap.Int("scheduleMinute", scheduleMinute))
		return
	}

	cmn.MiniLogger.Info("[ OK ] keeper module initialed", zap.Int("accounts", len(accounts)))
}

// Accounts 配置文件中声明的账号列表
func Accounts() []Account {
	return accounts
}
